package twophase

import (
	"bytes"
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/hex"
	"errors"
	"math/big"
	"strings"
	"testing"
	"time"

	"github.com/georgepadayatti/pdfsig/pkcs7"
)

func generateTestCertAndKey(t *testing.T) (*x509.Certificate, *rsa.PrivateKey) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("Failed to generate key: %v", err)
	}

	template := &x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject: pkix.Name{
			CommonName:   "Test Signer",
			Organization: []string{"Test Org"},
		},
		NotBefore:             time.Now(),
		NotAfter:              time.Now().Add(365 * 24 * time.Hour),
		KeyUsage:              x509.KeyUsageDigitalSignature,
		BasicConstraintsValid: true,
	}

	certDER, err := x509.CreateCertificate(rand.Reader, template, template, &key.PublicKey, key)
	if err != nil {
		t.Fatalf("Failed to create certificate: %v", err)
	}
	cert, err := x509.ParseCertificate(certDER)
	if err != nil {
		t.Fatalf("Failed to parse certificate: %v", err)
	}
	return cert, key
}

func TestPrepareDocumentForSignature(t *testing.T) {
	content := []byte("document content before signing")
	doc := NewDocument(content)
	signer := NewSigner(doc)

	prepared, err := signer.PrepareDocumentForSignature("Signature1", "SHA256", 1024)
	if err != nil {
		t.Fatalf("PrepareDocumentForSignature failed: %v", err)
	}

	if prepared.FieldName != "Signature1" {
		t.Errorf("Expected field Signature1, got %s", prepared.FieldName)
	}
	if len(prepared.Digest) != sha256.Size {
		t.Errorf("Expected SHA-256 digest, got %d bytes", len(prepared.Digest))
	}
	if len(prepared.ByteRange) != 4 {
		t.Fatalf("Expected 4 byte range entries, got %d", len(prepared.ByteRange))
	}

	// The digest must cover exactly the ranges excluding the placeholder.
	h := sha256.New()
	digest, err := DigestByteRange(doc.Bytes(), prepared.ByteRange, h)
	if err != nil {
		t.Fatalf("DigestByteRange failed: %v", err)
	}
	if !bytes.Equal(digest, prepared.Digest) {
		t.Error("Prepared digest does not match the byte ranges")
	}

	if signer.State() != StatePrepared {
		t.Errorf("Expected StatePrepared, got %v", signer.State())
	}
}

func TestPrepareTwiceFailsAlreadyClosed(t *testing.T) {
	doc := NewDocument([]byte("content"))
	signer := NewSigner(doc)

	first, err := signer.PrepareDocumentForSignature("Signature1", "SHA256", 512)
	if err != nil {
		t.Fatalf("First prepare failed: %v", err)
	}

	if _, err := signer.PrepareDocumentForSignature("Signature2", "SHA256", 512); !errors.Is(err, ErrAlreadyClosed) {
		t.Fatalf("Expected ErrAlreadyClosed, got %v", err)
	}

	// The first preparation must stay valid.
	h := sha256.New()
	digest, err := DigestByteRange(doc.Bytes(), first.ByteRange, h)
	if err != nil {
		t.Fatalf("DigestByteRange failed: %v", err)
	}
	if !bytes.Equal(digest, first.Digest) {
		t.Error("First preparation was invalidated by the rejected second call")
	}
}

func TestPrepareUnknownDigestAlgorithm(t *testing.T) {
	signer := NewSigner(NewDocument([]byte("content")))
	if _, err := signer.PrepareDocumentForSignature("Signature1", "FOO123", 512); !errors.Is(err, pkcs7.ErrUnknownHashAlgorithm) {
		t.Fatalf("Expected ErrUnknownHashAlgorithm, got %v", err)
	}
}

func TestAddSignatureNoSuchField(t *testing.T) {
	doc := NewDocument([]byte("content"))
	signer := NewSigner(doc)
	if _, err := signer.PrepareDocumentForSignature("Signature1", "SHA256", 512); err != nil {
		t.Fatalf("Prepare failed: %v", err)
	}

	var out bytes.Buffer
	err := AddSignatureToPreparedDocument(doc, "Nonexistent", &out, []byte{1, 2, 3})
	if !errors.Is(err, ErrNoSuchField) {
		t.Fatalf("Expected ErrNoSuchField, got %v", err)
	}
	if !strings.Contains(err.Error(), "Nonexistent") {
		t.Errorf("Error should name the field, got %q", err.Error())
	}
}

func TestAddSignatureFieldNotLast(t *testing.T) {
	doc := NewDocument([]byte("content"))
	signer := NewSigner(doc)
	if _, err := signer.PrepareDocumentForSignature("Signature1", "SHA256", 512); err != nil {
		t.Fatalf("Prepare failed: %v", err)
	}

	// A second signature field added afterwards means Signature1 no longer
	// covers the whole document.
	if _, err := doc.AddSignatureField("Signature2", 512); err != nil {
		t.Fatalf("AddSignatureField failed: %v", err)
	}

	var out bytes.Buffer
	err := AddSignatureToPreparedDocument(doc, "Signature1", &out, []byte{1, 2, 3})
	if !errors.Is(err, ErrFieldNotCoveringDocument) {
		t.Fatalf("Expected ErrFieldNotCoveringDocument, got %v", err)
	}
	if !strings.Contains(err.Error(), "Signature1") {
		t.Errorf("Error should name the field, got %q", err.Error())
	}
}

func TestAddSignatureNotEnoughSpace(t *testing.T) {
	doc := NewDocument([]byte("content"))
	signer := NewSigner(doc)
	if _, err := signer.PrepareDocumentForSignature("Signature1", "SHA256", 16); err != nil {
		t.Fatalf("Prepare failed: %v", err)
	}

	var out bytes.Buffer
	oversized := bytes.Repeat([]byte{0xFF}, 17)
	err := AddSignatureToPreparedDocument(doc, "Signature1", &out, oversized)
	if !errors.Is(err, ErrNotEnoughSpace) {
		t.Fatalf("Expected ErrNotEnoughSpace, got %v", err)
	}
	// Both sizes are reported in signature bytes, the unit callers reserve
	// in.
	if !strings.Contains(err.Error(), "need 17 bytes, have 16") {
		t.Errorf("Error should report sizes in signature bytes, got %q", err.Error())
	}
	if out.Len() != 0 {
		t.Error("Output must not be written on failure")
	}
}

func TestAddSignatureBoundaryFit(t *testing.T) {
	doc := NewDocument([]byte("content"))
	signer := NewSigner(doc)
	if _, err := signer.PrepareDocumentForSignature("Signature1", "SHA256", 16); err != nil {
		t.Fatalf("Prepare failed: %v", err)
	}

	// Exactly the reserved size must fit.
	var out bytes.Buffer
	exact := bytes.Repeat([]byte{0xAB}, 16)
	if err := AddSignatureToPreparedDocument(doc, "Signature1", &out, exact); err != nil {
		t.Fatalf("Expected exact-size signature to fit: %v", err)
	}
}

func TestCompletionPreservesCoveredBytes(t *testing.T) {
	content := []byte("document content that the digest covers")
	doc := NewDocument(content)
	signer := NewSigner(doc)

	prepared, err := signer.PrepareDocumentForSignature("Signature1", "SHA256", 64)
	if err != nil {
		t.Fatalf("Prepare failed: %v", err)
	}

	var out bytes.Buffer
	signature := bytes.Repeat([]byte{0xC3}, 48)
	if err := AddSignatureToPreparedDocument(doc, "Signature1", &out, signature); err != nil {
		t.Fatalf("AddSignatureToPreparedDocument failed: %v", err)
	}

	completed := out.Bytes()
	if len(completed) != len(doc.Bytes()) {
		t.Fatalf("Completed document length changed: %d != %d", len(completed), len(doc.Bytes()))
	}

	// The digest over the covered ranges must be unchanged.
	h := sha256.New()
	digest, err := DigestByteRange(completed, prepared.ByteRange, h)
	if err != nil {
		t.Fatalf("DigestByteRange failed: %v", err)
	}
	if !bytes.Equal(digest, prepared.Digest) {
		t.Error("Completion modified bytes covered by the digest")
	}

	// The reserved region holds the hex-encoded signature.
	field := doc.Field("Signature1")
	region := completed[field.ContentsStart+1 : field.ContentsEnd-1]
	decoded, err := hex.DecodeString(string(region))
	if err != nil {
		t.Fatalf("Region is not valid hex: %v", err)
	}
	if !bytes.Equal(decoded[:len(signature)], signature) {
		t.Error("Signature bytes not found in the reserved region")
	}
}

func TestTwoPhaseCMSCycle(t *testing.T) {
	cert, key := generateTestCertAndKey(t)
	content := []byte("document signed in two phases with a CMS container")
	doc := NewDocument(content)
	signer := NewSigner(doc)

	prepared, err := signer.PrepareDocumentForSignature("Signature1", "SHA256", DefaultReservedBytes)
	if err != nil {
		t.Fatalf("Prepare failed: %v", err)
	}

	// Phase 2: build a container without the key, sign the attribute bytes
	// externally, inject the result.
	container, err := pkcs7.NewSigner(nil, []*x509.Certificate{cert}, prepared.DigestAlgorithm, false)
	if err != nil {
		t.Fatalf("NewSigner failed: %v", err)
	}
	attrBytes, err := container.AuthenticatedAttributeBytes(prepared.Digest, nil, nil, pkcs7.SubFilterAdbePKCS7Detached)
	if err != nil {
		t.Fatalf("AuthenticatedAttributeBytes failed: %v", err)
	}
	attrDigest := sha256.Sum256(attrBytes)
	sigValue, err := rsa.SignPKCS1v15(rand.Reader, key, crypto.SHA256, attrDigest[:])
	if err != nil {
		t.Fatalf("External signing failed: %v", err)
	}
	if err := container.SetExternalSignatureValue(sigValue, nil, "RSA"); err != nil {
		t.Fatalf("SetExternalSignatureValue failed: %v", err)
	}

	var out bytes.Buffer
	if err := AddContainerToPreparedDocument(doc, &out, container, prepared, pkcs7.SubFilterAdbePKCS7Detached); err != nil {
		t.Fatalf("AddContainerToPreparedDocument failed: %v", err)
	}

	// Extract and verify the embedded CMS structure against the completed
	// document's byte ranges.
	completed := out.Bytes()
	field := doc.Field("Signature1")
	region := completed[field.ContentsStart+1 : field.ContentsEnd-1]
	cmsBytes, err := hex.DecodeString(string(region))
	if err != nil {
		t.Fatalf("Failed to decode signature region: %v", err)
	}

	parsed, err := pkcs7.Parse(cmsBytes, pkcs7.SubFilterAdbePKCS7Detached)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	br := field.ByteRange
	parsed.Update(completed[br[0] : br[0]+br[1]])
	parsed.Update(completed[br[2] : br[2]+br[3]])

	ok, err := parsed.VerifySignatureIntegrityAndAuthenticity()
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if !ok {
		t.Error("Expected two-phase signature to verify")
	}
}

func TestCloseRejectsPreparation(t *testing.T) {
	signer := NewSigner(NewDocument([]byte("content")))
	signer.Close()
	if _, err := signer.PrepareDocumentForSignature("Signature1", "SHA256", 512); !errors.Is(err, ErrAlreadyClosed) {
		t.Fatalf("Expected ErrAlreadyClosed, got %v", err)
	}
}

func TestRestoreDocument(t *testing.T) {
	doc := NewDocument([]byte("content to restore"))
	signer := NewSigner(doc)
	prepared, err := signer.PrepareDocumentForSignature("Signature1", "SHA256", 512)
	if err != nil {
		t.Fatalf("Prepare failed: %v", err)
	}

	field := doc.Field("Signature1")
	restored, err := RestoreDocument(doc.Bytes(), []*SignatureField{{
		Name:          field.Name,
		ContentsStart: field.ContentsStart,
		ContentsEnd:   field.ContentsEnd,
		ByteRange:     field.ByteRange,
	}})
	if err != nil {
		t.Fatalf("RestoreDocument failed: %v", err)
	}

	// Completing the restored document must work exactly like completing
	// the original.
	var out bytes.Buffer
	signature := bytes.Repeat([]byte{0xAB}, 32)
	if err := AddSignatureToPreparedDocument(restored, "Signature1", &out, signature); err != nil {
		t.Fatalf("AddSignatureToPreparedDocument failed: %v", err)
	}

	h := sha256.New()
	digest, err := DigestByteRange(out.Bytes(), prepared.ByteRange, h)
	if err != nil {
		t.Fatalf("DigestByteRange failed: %v", err)
	}
	if !bytes.Equal(digest, prepared.Digest) {
		t.Error("Restored completion modified covered bytes")
	}
}

func TestRestoreDocumentRejectsBadFields(t *testing.T) {
	content := []byte("plain content without a placeholder")

	cases := []struct {
		name  string
		field *SignatureField
	}{
		{"NoName", &SignatureField{ContentsStart: 0, ContentsEnd: 4}},
		{"OutOfBounds", &SignatureField{Name: "Sig", ContentsStart: 10, ContentsEnd: int64(len(content)) + 5}},
		{"NotAPlaceholder", &SignatureField{Name: "Sig", ContentsStart: 0, ContentsEnd: 4}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := RestoreDocument(content, []*SignatureField{tc.field}); !errors.Is(err, ErrInvalidByteRange) {
				t.Fatalf("Expected ErrInvalidByteRange, got %v", err)
			}
		})
	}

	doc := NewDocument(content)
	if _, err := doc.AddSignatureField("Sig", 64); err != nil {
		t.Fatalf("AddSignatureField failed: %v", err)
	}
	field := doc.Field("Sig")
	duplicate := []*SignatureField{field, field}
	if _, err := RestoreDocument(doc.Bytes(), duplicate); !errors.Is(err, ErrFieldExists) {
		t.Fatalf("Expected ErrFieldExists, got %v", err)
	}
}

func TestFindLastSignatureField(t *testing.T) {
	doc := NewDocument([]byte("content with a signature to find"))
	signer := NewSigner(doc)
	prepared, err := signer.PrepareDocumentForSignature("Signature1", "SHA256", 256)
	if err != nil {
		t.Fatalf("Prepare failed: %v", err)
	}

	signature := bytes.Repeat([]byte{0x5A}, 100)
	var out bytes.Buffer
	if err := AddSignatureToPreparedDocument(doc, "Signature1", &out, signature); err != nil {
		t.Fatalf("AddSignatureToPreparedDocument failed: %v", err)
	}

	field, found, err := FindLastSignatureField("Signature1", out.Bytes())
	if err != nil {
		t.Fatalf("FindLastSignatureField failed: %v", err)
	}
	if field.Name != "Signature1" {
		t.Errorf("Expected field name Signature1, got %s", field.Name)
	}
	if len(field.ByteRange) != 4 {
		t.Fatalf("Expected 4 byte range entries, got %d", len(field.ByteRange))
	}
	for i, v := range prepared.ByteRange {
		if field.ByteRange[i] != v {
			t.Errorf("ByteRange[%d] = %d, want %d", i, field.ByteRange[i], v)
		}
	}
	if !bytes.Equal(found[:len(signature)], signature) {
		t.Error("Recovered signature bytes do not match")
	}

	// The remainder of the region is zero padding.
	for _, b := range found[len(signature):] {
		if b != 0 {
			t.Error("Padding bytes should be zero")
			break
		}
	}
}

func TestFindLastSignatureFieldNoPlaceholder(t *testing.T) {
	if _, _, err := FindLastSignatureField("Signature1", []byte("no signature here")); !errors.Is(err, ErrNoSuchField) {
		t.Fatalf("Expected ErrNoSuchField, got %v", err)
	}
	if _, _, err := FindLastSignatureField("Signature1", []byte("dangling bracket >")); !errors.Is(err, ErrNoSuchField) {
		t.Fatalf("Expected ErrNoSuchField, got %v", err)
	}
}
