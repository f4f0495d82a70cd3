// Package twophase splits signing into a local prepare step that reserves a
// signature placeholder and returns the digest to be signed externally, and a
// completion step that injects the externally produced signature into the
// exact reserved byte range.
package twophase

import (
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
)

// Common errors
var (
	ErrAlreadyClosed            = errors.New("this signer instance is already closed")
	ErrNoSuchField              = errors.New("no such signature field")
	ErrFieldExists              = errors.New("signature field already exists")
	ErrFieldNotCoveringDocument = errors.New("signature field is not the last one and does not cover the whole document")
	ErrNotEnoughSpace           = errors.New("available space is not enough")
	ErrInvalidByteRange         = errors.New("invalid byte range")
)

// DefaultReservedBytes is the default byte budget reserved for a signature.
const DefaultReservedBytes = 16 * 1024

// SignatureField records a reserved signature region inside a document. The
// contents region is the hex string between the angle brackets; ByteRange
// lists the two covered ranges as [start1, len1, start2, len2].
type SignatureField struct {
	Name          string
	ContentsStart int64
	ContentsEnd   int64
	ByteRange     []int64
}

// CoversDocument reports whether the field's byte ranges reach the end of a
// document of the given length, i.e. no content was appended after it.
func (f *SignatureField) CoversDocument(docLen int64) bool {
	if len(f.ByteRange) != 4 {
		return false
	}
	return f.ByteRange[2]+f.ByteRange[3] == docLen
}

// Document is a byte-range document: a flat byte buffer plus the named
// signature fields reserved inside it. It stands in for the PDF file model;
// signature semantics only depend on the byte ranges.
type Document struct {
	data   []byte
	fields []*SignatureField
}

// NewDocument wraps raw content into a document.
func NewDocument(content []byte) *Document {
	return &Document{data: append([]byte(nil), content...)}
}

// Bytes returns the current document bytes.
func (d *Document) Bytes() []byte {
	return d.data
}

// Field returns the named signature field, or nil.
func (d *Document) Field(name string) *SignatureField {
	for _, f := range d.fields {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// Fields returns the signature fields in the order they were added.
func (d *Document) Fields() []*SignatureField {
	return d.fields
}

// AddSignatureField appends a signature placeholder reserving space for
// reservedBytes of signature data (stored hex encoded, so the region holds
// twice that many characters between the angle brackets). The new field's
// byte ranges cover the whole document except the placeholder contents.
func (d *Document) AddSignatureField(name string, reservedBytes int) (*SignatureField, error) {
	if d.Field(name) != nil {
		return nil, fmt.Errorf("%w: %q", ErrFieldExists, name)
	}
	if reservedBytes <= 0 {
		return nil, fmt.Errorf("reserved size must be positive, got %d", reservedBytes)
	}

	placeholder := make([]byte, 2*reservedBytes+3)
	placeholder[0] = '\n'
	placeholder[1] = '<'
	for i := 2; i < len(placeholder)-1; i++ {
		placeholder[i] = '0'
	}
	placeholder[len(placeholder)-1] = '>'

	contentsStart := int64(len(d.data)) + 1
	d.data = append(d.data, placeholder...)
	contentsEnd := int64(len(d.data))

	field := &SignatureField{
		Name:          name,
		ContentsStart: contentsStart,
		ContentsEnd:   contentsEnd,
		ByteRange: []int64{
			0, contentsStart,
			contentsEnd, int64(len(d.data)) - contentsEnd,
		},
	}
	d.fields = append(d.fields, field)
	return field, nil
}

// RestoreDocument rebuilds a document from previously prepared bytes and the
// signature fields recorded during preparation. Field regions are validated
// against the content before being attached.
func RestoreDocument(content []byte, fields []*SignatureField) (*Document, error) {
	doc := NewDocument(content)
	for _, f := range fields {
		if f.Name == "" {
			return nil, fmt.Errorf("%w: field has no name", ErrInvalidByteRange)
		}
		if doc.Field(f.Name) != nil {
			return nil, fmt.Errorf("%w: %q", ErrFieldExists, f.Name)
		}
		if f.ContentsStart < 0 || f.ContentsEnd > int64(len(content)) || f.ContentsStart >= f.ContentsEnd {
			return nil, fmt.Errorf("%w: contents region of %q out of bounds", ErrInvalidByteRange, f.Name)
		}
		if content[f.ContentsStart] != '<' || content[f.ContentsEnd-1] != '>' {
			return nil, fmt.Errorf("%w: contents region of %q is not a placeholder", ErrInvalidByteRange, f.Name)
		}
		restored := &SignatureField{
			Name:          f.Name,
			ContentsStart: f.ContentsStart,
			ContentsEnd:   f.ContentsEnd,
			ByteRange:     append([]int64(nil), f.ByteRange...),
		}
		doc.fields = append(doc.fields, restored)
	}
	return doc, nil
}

// FindLastSignatureField locates the signature placeholder written last into
// a completed document and returns its field together with the decoded
// signature bytes. The hex region keeps its zero padding; CMS parsing treats
// the padding as trailing data.
func FindLastSignatureField(name string, content []byte) (*SignatureField, []byte, error) {
	end := int64(len(content))
	for end > 0 && (content[end-1] == '\n' || content[end-1] == '\r') {
		end--
	}
	if end == 0 || content[end-1] != '>' {
		return nil, nil, fmt.Errorf("%w: no signature placeholder found", ErrNoSuchField)
	}

	start := end - 2
	for start >= 0 && content[start] != '<' {
		start--
	}
	if start < 0 {
		return nil, nil, fmt.Errorf("%w: unterminated signature placeholder", ErrNoSuchField)
	}

	signature, err := hex.DecodeString(string(content[start+1 : end-1]))
	if err != nil {
		return nil, nil, fmt.Errorf("signature region is not valid hex: %w", err)
	}

	field := &SignatureField{
		Name:          name,
		ContentsStart: start,
		ContentsEnd:   end,
		ByteRange: []int64{
			0, start,
			end, int64(len(content)) - end,
		},
	}
	return field, signature, nil
}

// DigestByteRange feeds the two covered ranges into the hash and returns the
// digest.
func DigestByteRange(document []byte, byteRange []int64, h hash.Hash) ([]byte, error) {
	if len(byteRange) != 4 {
		return nil, ErrInvalidByteRange
	}

	start1, end1 := byteRange[0], byteRange[0]+byteRange[1]
	if start1 < 0 || end1 > int64(len(document)) || start1 > end1 {
		return nil, fmt.Errorf("%w: part 1 out of bounds [%d:%d]", ErrInvalidByteRange, start1, end1)
	}
	h.Write(document[start1:end1])

	start2, end2 := byteRange[2], byteRange[2]+byteRange[3]
	if start2 < 0 || end2 > int64(len(document)) || start2 > end2 {
		return nil, fmt.Errorf("%w: part 2 out of bounds [%d:%d]", ErrInvalidByteRange, start2, end2)
	}
	h.Write(document[start2:end2])

	return h.Sum(nil), nil
}
