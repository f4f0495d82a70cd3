package pkcs7

import (
	"crypto"
	"crypto/dsa"
	"crypto/ecdsa"
	"crypto/rsa"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/asn1"
	"fmt"
	"hash"
	"strings"

	"golang.org/x/crypto/ripemd160"
)

// digestEntry ties a digest algorithm name to its OID and hash constructor.
type digestEntry struct {
	oid  asn1.ObjectIdentifier
	hash crypto.Hash
	new  func() hash.Hash
}

// allowedDigests is the set of digest algorithms accepted for signing.
// Names are matched after normalization (uppercase, dashes stripped).
var allowedDigests = map[string]digestEntry{
	"SHA1":      {OIDSHA1, crypto.SHA1, sha1.New},
	"SHA256":    {OIDSHA256, crypto.SHA256, sha256.New},
	"SHA384":    {OIDSHA384, crypto.SHA384, sha512.New384},
	"SHA512":    {OIDSHA512, crypto.SHA512, sha512.New},
	"RIPEMD160": {OIDRIPEMD160, crypto.RIPEMD160, ripemd160.New},
}

// normalizeDigestName maps the spellings accepted for a digest algorithm
// ("sha-256", "SHA256") onto the registry key.
func normalizeDigestName(name string) string {
	return strings.ReplaceAll(strings.ToUpper(name), "-", "")
}

// DigestOIDForName returns the OID for an allowed digest algorithm name.
func DigestOIDForName(name string) (asn1.ObjectIdentifier, error) {
	entry, ok := allowedDigests[normalizeDigestName(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownHashAlgorithm, name)
	}
	return entry.oid, nil
}

// NewDigestForName returns a fresh hash for an allowed digest algorithm name.
func NewDigestForName(name string) (hash.Hash, error) {
	entry, ok := allowedDigests[normalizeDigestName(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownHashAlgorithm, name)
	}
	return entry.new(), nil
}

// HashTypeForName returns the crypto.Hash for an allowed digest algorithm name.
func HashTypeForName(name string) (crypto.Hash, error) {
	entry, ok := allowedDigests[normalizeDigestName(name)]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownHashAlgorithm, name)
	}
	return entry.hash, nil
}

// NewDigestForOID returns a fresh hash for a digest algorithm OID.
func NewDigestForOID(oid asn1.ObjectIdentifier) (hash.Hash, error) {
	for _, entry := range allowedDigests {
		if entry.oid.Equal(oid) {
			return entry.new(), nil
		}
	}
	return nil, fmt.Errorf("%w: %v", ErrUnknownHashAlgorithm, oid)
}

// HashTypeForOID returns the crypto.Hash for a digest algorithm OID.
func HashTypeForOID(oid asn1.ObjectIdentifier) (crypto.Hash, error) {
	for _, entry := range allowedDigests {
		if entry.oid.Equal(oid) {
			return entry.hash, nil
		}
	}
	return 0, fmt.Errorf("%w: %v", ErrUnknownHashAlgorithm, oid)
}

// DigestNameForOID returns the registry name for a digest algorithm OID, or
// the OID's string form when it is not in the registry.
func DigestNameForOID(oid asn1.ObjectIdentifier) string {
	for name, entry := range allowedDigests {
		if entry.oid.Equal(oid) {
			return name
		}
	}
	return oid.String()
}

// keyAlgorithmName derives the key algorithm name from a public key.
func keyAlgorithmName(pub interface{}) (string, error) {
	switch pub.(type) {
	case *rsa.PublicKey:
		return "RSA", nil
	case *dsa.PublicKey:
		return "DSA", nil
	case *ecdsa.PublicKey:
		return "ECDSA", nil
	default:
		return "", fmt.Errorf("%w: %T", ErrUnknownKeyAlgorithm, pub)
	}
}

// encryptionOIDForKeyAlgorithm returns the digest-encryption algorithm OID
// recorded in SignerInfo for a key algorithm name.
func encryptionOIDForKeyAlgorithm(keyAlg string) (asn1.ObjectIdentifier, error) {
	switch strings.ToUpper(keyAlg) {
	case "RSA":
		return OIDRSAEncryption, nil
	case "DSA":
		return OIDDSA, nil
	case "ECDSA", "EC":
		return OIDECDSAPublicKey, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownKeyAlgorithm, keyAlg)
	}
}

// keyAlgorithmNameForOID maps a digest-encryption algorithm OID back to its
// key algorithm name. Signature algorithm OIDs that bind a digest (for
// example sha256WithRSAEncryption) map to the bare key algorithm.
func keyAlgorithmNameForOID(oid asn1.ObjectIdentifier) string {
	switch {
	case oid.Equal(OIDRSAEncryption),
		oid.Equal(OIDSHA1WithRSA),
		oid.Equal(OIDSHA256WithRSA),
		oid.Equal(OIDSHA384WithRSA),
		oid.Equal(OIDSHA512WithRSA):
		return "RSA"
	case oid.Equal(OIDDSA):
		return "DSA"
	case oid.Equal(OIDECDSAPublicKey),
		oid.Equal(OIDECDSAWithSHA1),
		oid.Equal(OIDECDSAWithSHA256),
		oid.Equal(OIDECDSAWithSHA384),
		oid.Equal(OIDECDSAWithSHA512):
		return "ECDSA"
	default:
		return oid.String()
	}
}
