package timestamps

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/asn1"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/georgepadayatti/pdfsig/pkcs7"
)

// DummyTSAClient acts as its own timestamp authority for testing purposes.
// It grants every request and signs the token with the provided certificate.
type DummyTSAClient struct {
	// TSACert is the TSA signing certificate.
	TSACert *x509.Certificate

	// TSAKey is the TSA private key.
	TSAKey crypto.Signer

	// CertsToEmbed are additional certificates to include in the token.
	CertsToEmbed []*x509.Certificate

	// FixedTime is a fixed time to use instead of the current time.
	FixedTime *time.Time

	// Policy is the TSA policy OID.
	Policy asn1.ObjectIdentifier
}

// NewDummyTSAClient creates a dummy TSA client.
func NewDummyTSAClient(cert *x509.Certificate, key crypto.Signer) *DummyTSAClient {
	return &DummyTSAClient{
		TSACert: cert,
		TSAKey:  key,
		Policy:  asn1.ObjectIdentifier{1, 3, 6, 1, 4, 1, 4146, 2, 2},
	}
}

// WithCertsToEmbed adds certificates to embed in tokens.
func (d *DummyTSAClient) WithCertsToEmbed(certs []*x509.Certificate) *DummyTSAClient {
	d.CertsToEmbed = certs
	return d
}

// WithFixedTime sets a fixed token time.
func (d *DummyTSAClient) WithFixedTime(t time.Time) *DummyTSAClient {
	d.FixedTime = &t
	return d
}

// DigestAlgorithm returns the hash used for message imprints.
func (d *DummyTSAClient) DigestAlgorithm() crypto.Hash {
	return crypto.SHA256
}

// GetTimestampToken issues a token covering the given imprint digest.
func (d *DummyTSAClient) GetTimestampToken(imprint []byte) ([]byte, error) {
	genTime := time.Now().UTC()
	if d.FixedTime != nil {
		genTime = *d.FixedTime
	}

	serialNumber, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 128))
	if err != nil {
		return nil, err
	}

	tstInfo := pkcs7.TSTInfo{
		Version: 1,
		Policy:  d.Policy,
		MessageImprint: pkcs7.MessageImprint{
			HashAlgorithm: pkcs7.AlgorithmIdentifier{
				Algorithm:  pkcs7.OIDSHA256,
				Parameters: asn1.NullRawValue,
			},
			HashedMessage: imprint,
		},
		SerialNumber: serialNumber,
		GenTime:      genTime,
	}

	tstInfoBytes, err := asn1.Marshal(tstInfo)
	if err != nil {
		return nil, fmt.Errorf("failed to encode TSTInfo: %w", err)
	}

	return d.signToken(tstInfoBytes)
}

// signToken wraps the DER TSTInfo in a signed CMS structure.
func (d *DummyTSAClient) signToken(tstInfoBytes []byte) ([]byte, error) {
	digest := sha256.Sum256(tstInfoBytes)

	// Already in ascending DER order, the content-type attribute encodes
	// shorter than the message-digest one.
	signedAttrs := []pkcs7.Attribute{
		{
			Type: pkcs7.OIDContentType,
			Values: []asn1.RawValue{{
				FullBytes: mustMarshal(pkcs7.OIDTSTInfo),
			}},
		},
		{
			Type: pkcs7.OIDMessageDigest,
			Values: []asn1.RawValue{{
				Class: asn1.ClassUniversal,
				Tag:   asn1.TagOctetString,
				Bytes: digest[:],
			}},
		},
	}

	attrBytes, err := asn1.Marshal(signedAttrs)
	if err != nil {
		return nil, err
	}
	// Signed attributes are signed under their SET OF tag.
	attrBytes[0] = 0x31

	signature, err := d.sign(attrBytes)
	if err != nil {
		return nil, err
	}

	si := pkcs7.SignerInfo{
		Version: 1,
		SID: pkcs7.IssuerAndSerialNumber{
			Issuer:       asn1.RawValue{FullBytes: d.TSACert.RawIssuer},
			SerialNumber: d.TSACert.SerialNumber,
		},
		DigestAlgorithm: pkcs7.AlgorithmIdentifier{
			Algorithm:  pkcs7.OIDSHA256,
			Parameters: asn1.NullRawValue,
		},
		SignedAttrs: signedAttrs,
		SignatureAlgorithm: pkcs7.AlgorithmIdentifier{
			Algorithm:  pkcs7.OIDSHA256WithRSA,
			Parameters: asn1.NullRawValue,
		},
		Signature: signature,
	}

	certBytes := []asn1.RawValue{{FullBytes: d.TSACert.Raw}}
	for _, cert := range d.CertsToEmbed {
		certBytes = append(certBytes, asn1.RawValue{FullBytes: cert.Raw})
	}

	eContent, err := asn1.Marshal(tstInfoBytes)
	if err != nil {
		return nil, err
	}

	signedData := pkcs7.SignedData{
		Version: 3,
		DigestAlgorithms: []pkcs7.AlgorithmIdentifier{{
			Algorithm:  pkcs7.OIDSHA256,
			Parameters: asn1.NullRawValue,
		}},
		EncapContentInfo: pkcs7.EncapsulatedContentInfo{
			EContentType: pkcs7.OIDTSTInfo,
			EContent: asn1.RawValue{
				Class:      asn1.ClassUniversal,
				Tag:        asn1.TagOctetString,
				FullBytes:  eContent,
				IsCompound: false,
			},
		},
		Certificates: certBytes,
		SignerInfos:  []pkcs7.SignerInfo{si},
	}

	signedDataBytes, err := asn1.Marshal(signedData)
	if err != nil {
		return nil, err
	}

	contentInfo := pkcs7.ContentInfo{
		ContentType: pkcs7.OIDSignedData,
		Content: asn1.RawValue{
			Class:      asn1.ClassContextSpecific,
			Tag:        0,
			IsCompound: true,
			Bytes:      signedDataBytes,
		},
	}

	return asn1.Marshal(contentInfo)
}

func (d *DummyTSAClient) sign(data []byte) ([]byte, error) {
	digest := sha256.Sum256(data)

	switch key := d.TSAKey.(type) {
	case *rsa.PrivateKey:
		return rsa.SignPKCS1v15(rand.Reader, key, crypto.SHA256, digest[:])
	default:
		return nil, errors.New("unsupported key type - dummy TSA supports RSA only")
	}
}

func mustMarshal(v interface{}) []byte {
	data, err := asn1.Marshal(v)
	if err != nil {
		panic(err)
	}
	return data
}

// NewTestTSAClient creates a dummy TSA client with a fresh self-signed
// certificate.
func NewTestTSAClient() (*DummyTSAClient, error) {
	privateKey, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		return nil, fmt.Errorf("failed to generate key: %w", err)
	}

	template := &x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject: pkix.Name{
			CommonName:   "Test TSA",
			Organization: []string{"Test"},
		},
		NotBefore:             time.Now().Add(-time.Hour),
		NotAfter:              time.Now().Add(365 * 24 * time.Hour),
		KeyUsage:              x509.KeyUsageDigitalSignature,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageTimeStamping},
		BasicConstraintsValid: true,
	}

	certDER, err := x509.CreateCertificate(rand.Reader, template, template, &privateKey.PublicKey, privateKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create certificate: %w", err)
	}

	cert, err := x509.ParseCertificate(certDER)
	if err != nil {
		return nil, fmt.Errorf("failed to parse certificate: %w", err)
	}

	return NewDummyTSAClient(cert, privateKey), nil
}
