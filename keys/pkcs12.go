package keys

import (
	"crypto"
	"fmt"
	"os"

	pkcs12 "software.sslmate.com/src/go-pkcs12"
)

// LoadPKCS12 loads a signing credential from a PKCS#12 keystore file.
func LoadPKCS12(filename, password string) (*SigningCredential, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filename, err)
	}
	return LoadPKCS12Data(data, password)
}

// LoadPKCS12Data loads a signing credential from PKCS#12 keystore bytes.
func LoadPKCS12Data(data []byte, password string) (*SigningCredential, error) {
	key, cert, caCerts, err := pkcs12.DecodeChain(data, password)
	if err != nil {
		return nil, fmt.Errorf("failed to decode PKCS#12 keystore: %w", err)
	}

	signer, ok := key.(crypto.Signer)
	if !ok {
		return nil, fmt.Errorf("%w: %T", ErrUnknownKeyType, key)
	}

	return &SigningCredential{
		Certificate: cert,
		PrivateKey:  signer,
		CACerts:     caCerts,
	}, nil
}

// EncodePKCS12 packs a signing credential into a PKCS#12 keystore.
func EncodePKCS12(cred *SigningCredential, password string) ([]byte, error) {
	return pkcs12.Modern.Encode(cred.PrivateKey, cred.Certificate, cred.CACerts, password)
}
