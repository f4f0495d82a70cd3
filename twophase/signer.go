package twophase

import (
	"fmt"
	"io"
	"strings"

	"github.com/georgepadayatti/pdfsig/pkcs7"
)

// State tracks a signer instance's lifecycle.
type State int

const (
	// StateOpen means the signer has not produced a prepared document yet.
	StateOpen State = iota
	// StatePrepared means a placeholder was reserved and the digest handed
	// out; the instance accepts no further preparation calls.
	StatePrepared
	// StateClosed means the instance was explicitly closed.
	StateClosed
)

// PreparedSignature is the phase-1 output: the digest to be signed
// externally and the byte ranges it covers.
type PreparedSignature struct {
	FieldName       string
	Digest          []byte
	DigestAlgorithm string
	ByteRange       []int64
}

// Signer prepares a document for external signing. An instance may prepare
// at most one document.
type Signer struct {
	doc   *Document
	state State
}

// NewSigner creates a two-phase signer over a document.
func NewSigner(doc *Document) *Signer {
	return &Signer{doc: doc}
}

// State returns the signer's lifecycle state.
func (s *Signer) State() State {
	return s.state
}

// Close marks the signer as closed.
func (s *Signer) Close() {
	s.state = StateClosed
}

// PrepareDocumentForSignature reserves a signature placeholder of the given
// byte budget and returns the digest of the covered ranges. It may be called
// at most once; later calls fail with ErrAlreadyClosed.
func (s *Signer) PrepareDocumentForSignature(fieldName, digestAlgorithm string, reservedBytes int) (*PreparedSignature, error) {
	if s.state != StateOpen {
		return nil, ErrAlreadyClosed
	}

	h, err := pkcs7.NewDigestForName(digestAlgorithm)
	if err != nil {
		return nil, err
	}

	field, err := s.doc.AddSignatureField(fieldName, reservedBytes)
	if err != nil {
		return nil, err
	}
	s.state = StatePrepared

	digest, err := DigestByteRange(s.doc.Bytes(), field.ByteRange, h)
	if err != nil {
		return nil, err
	}

	return &PreparedSignature{
		FieldName:       fieldName,
		Digest:          digest,
		DigestAlgorithm: digestAlgorithm,
		ByteRange:       append([]int64(nil), field.ByteRange...),
	}, nil
}

// AddSignatureToPreparedDocument writes the final signature bytes into the
// reserved region of a prepared document and writes the completed document to
// output. It is stateless: any prepared document can be completed by any
// caller holding the signature value. All bytes outside the reserved region
// are written unchanged, keeping the phase-1 digest valid.
func AddSignatureToPreparedDocument(doc *Document, fieldName string, output io.Writer, signature []byte) error {
	field := doc.Field(fieldName)
	if field == nil {
		return fmt.Errorf("%w: %q", ErrNoSuchField, fieldName)
	}
	if !field.CoversDocument(int64(len(doc.Bytes()))) {
		return fmt.Errorf("%w: %q", ErrFieldNotCoveringDocument, fieldName)
	}

	hexSig := fmt.Sprintf("%X", signature)
	availableSpace := field.ContentsEnd - field.ContentsStart - 2
	if int64(len(hexSig)) > availableSpace {
		return fmt.Errorf("%w: need %d bytes, have %d", ErrNotEnoughSpace, len(signature), availableSpace/2)
	}
	paddedHex := hexSig + strings.Repeat("0", int(availableSpace)-len(hexSig))

	docBytes := doc.Bytes()
	result := make([]byte, len(docBytes))
	copy(result, docBytes)
	copy(result[field.ContentsStart+1:], paddedHex)

	if _, err := output.Write(result); err != nil {
		return fmt.Errorf("failed to write completed document: %w", err)
	}
	return nil
}

// AddContainerToPreparedDocument encodes a signature container carrying an
// externally produced signature value and injects the result into the
// prepared document. The container must have been fed the same digest that
// was signed externally.
func AddContainerToPreparedDocument(doc *Document, output io.Writer, c *pkcs7.SignatureContainer, prepared *PreparedSignature, flavor pkcs7.SubFilter) error {
	encoded, err := c.Encode(prepared.Digest, nil, nil, nil, flavor)
	if err != nil {
		return fmt.Errorf("failed to encode signature container: %w", err)
	}
	return AddSignatureToPreparedDocument(doc, prepared.FieldName, output, encoded)
}
