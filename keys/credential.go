package keys

import (
	"crypto/x509"
	"errors"
	"fmt"
)

// SigningCredential bundles a private key with its certificate chain, ready
// to hand to a signature container.
type SigningCredential struct {
	// Certificate is the end-entity signing certificate.
	Certificate *x509.Certificate

	// PrivateKey is the matching private key.
	PrivateKey PrivateKey

	// CACerts are the issuing certificates, if known.
	CACerts []*x509.Certificate
}

// Chain returns the certificates ordered signing certificate first.
func (c *SigningCredential) Chain() []*x509.Certificate {
	chain := make([]*x509.Certificate, 0, len(c.CACerts)+1)
	chain = append(chain, c.Certificate)
	return append(chain, c.CACerts...)
}

// LoadSigningCredential loads a credential from separate certificate and key
// files. The certificate file may carry the whole chain, signing certificate
// first.
func LoadSigningCredential(certFile, keyFile string, passphrase []byte) (*SigningCredential, error) {
	certs, err := LoadCertsFromPemDer(certFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load certificate: %w", err)
	}

	key, err := LoadPrivateKeyFromPemDer(keyFile, passphrase)
	if err != nil {
		return nil, fmt.Errorf("failed to load private key: %w", err)
	}

	return &SigningCredential{
		Certificate: certs[0],
		PrivateKey:  key,
		CACerts:     certs[1:],
	}, nil
}

// NewSigningCredential builds a credential from in-memory parts.
func NewSigningCredential(cert *x509.Certificate, key PrivateKey, caCerts []*x509.Certificate) (*SigningCredential, error) {
	if cert == nil {
		return nil, errors.New("certificate is required")
	}
	if key == nil {
		return nil, errors.New("private key is required")
	}
	return &SigningCredential{
		Certificate: cert,
		PrivateKey:  key,
		CACerts:     caCerts,
	}, nil
}
