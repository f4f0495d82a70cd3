package pkcs7

import (
	"errors"
	"testing"
)

func TestDigestOIDForName(t *testing.T) {
	tests := []struct {
		name     string
		expected string
	}{
		{"SHA1", "1.3.14.3.2.26"},
		{"sha-1", "1.3.14.3.2.26"},
		{"SHA256", "2.16.840.1.101.3.4.2.1"},
		{"SHA-256", "2.16.840.1.101.3.4.2.1"},
		{"SHA384", "2.16.840.1.101.3.4.2.2"},
		{"SHA512", "2.16.840.1.101.3.4.2.3"},
		{"RIPEMD160", "1.3.36.3.2.1"},
	}
	for _, tt := range tests {
		oid, err := DigestOIDForName(tt.name)
		if err != nil {
			t.Errorf("DigestOIDForName(%s) failed: %v", tt.name, err)
			continue
		}
		if oid.String() != tt.expected {
			t.Errorf("DigestOIDForName(%s) = %s, want %s", tt.name, oid.String(), tt.expected)
		}
	}
}

func TestDigestOIDForNameUnknown(t *testing.T) {
	if _, err := DigestOIDForName("MD5"); !errors.Is(err, ErrUnknownHashAlgorithm) {
		t.Errorf("Expected ErrUnknownHashAlgorithm for MD5, got %v", err)
	}
}

func TestDigestNameForOID(t *testing.T) {
	if name := DigestNameForOID(OIDSHA256); name != "SHA256" {
		t.Errorf("Expected SHA256, got %s", name)
	}
	// Unknown OIDs fall back to the dotted form.
	if name := DigestNameForOID(OIDData); name != "1.2.840.113549.1.7.1" {
		t.Errorf("Expected dotted OID, got %s", name)
	}
}

func TestEncryptionOIDForKeyAlgorithm(t *testing.T) {
	tests := []struct {
		keyAlg   string
		expected string
	}{
		{"RSA", "1.2.840.113549.1.1.1"},
		{"DSA", "1.2.840.10040.4.1"},
		{"ECDSA", "1.2.840.10045.2.1"},
		{"EC", "1.2.840.10045.2.1"},
	}
	for _, tt := range tests {
		oid, err := encryptionOIDForKeyAlgorithm(tt.keyAlg)
		if err != nil {
			t.Errorf("encryptionOIDForKeyAlgorithm(%s) failed: %v", tt.keyAlg, err)
			continue
		}
		if oid.String() != tt.expected {
			t.Errorf("encryptionOIDForKeyAlgorithm(%s) = %s, want %s", tt.keyAlg, oid.String(), tt.expected)
		}
	}

	if _, err := encryptionOIDForKeyAlgorithm("GOST"); !errors.Is(err, ErrUnknownKeyAlgorithm) {
		t.Errorf("Expected ErrUnknownKeyAlgorithm, got %v", err)
	}
}

func TestKeyAlgorithmNameForOID(t *testing.T) {
	if name := keyAlgorithmNameForOID(OIDSHA256WithRSA); name != "RSA" {
		t.Errorf("Expected RSA, got %s", name)
	}
	if name := keyAlgorithmNameForOID(OIDECDSAWithSHA384); name != "ECDSA" {
		t.Errorf("Expected ECDSA, got %s", name)
	}
	if name := keyAlgorithmNameForOID(OIDDSA); name != "DSA" {
		t.Errorf("Expected DSA, got %s", name)
	}
}
