package pkcs7

import (
	"bytes"
	"encoding/asn1"
	"math/big"
	"sort"
	"time"
)

// AlgorithmIdentifier represents an algorithm identifier.
type AlgorithmIdentifier struct {
	Algorithm  asn1.ObjectIdentifier
	Parameters asn1.RawValue `asn1:"optional"`
}

// ContentInfo represents a CMS ContentInfo structure.
type ContentInfo struct {
	ContentType asn1.ObjectIdentifier
	Content     asn1.RawValue `asn1:"explicit,optional,tag:0"`
}

// EncapsulatedContentInfo represents encapsulated content.
type EncapsulatedContentInfo struct {
	EContentType asn1.ObjectIdentifier
	EContent     asn1.RawValue `asn1:"explicit,optional,tag:0"`
}

// SignedData represents a CMS SignedData structure as built for signing.
type SignedData struct {
	Version          int
	DigestAlgorithms []AlgorithmIdentifier `asn1:"set"`
	EncapContentInfo EncapsulatedContentInfo
	Certificates     []asn1.RawValue `asn1:"optional,implicit,tag:0,set"`
	CRLs             []asn1.RawValue `asn1:"optional,implicit,tag:1"`
	SignerInfos      []SignerInfo    `asn1:"set"`
}

// SignedDataRaw captures SignerInfos as raw bytes for parsing, so that the
// exact encoding of each signer's attributes survives.
type SignedDataRaw struct {
	Version          int
	DigestAlgorithms []AlgorithmIdentifier `asn1:"set"`
	EncapContentInfo EncapsulatedContentInfo
	Certificates     []asn1.RawValue `asn1:"optional,implicit,tag:0,set"`
	CRLs             []asn1.RawValue `asn1:"optional,implicit,tag:1"`
	SignerInfos      []asn1.RawValue `asn1:"set"`
}

// SignerInfo represents a signer's information.
// Note: SID is IssuerAndSerialNumber directly (not wrapped in SignerIdentifier)
// because SignerIdentifier is a CHOICE in ASN.1, not a SEQUENCE.
type SignerInfo struct {
	Version            int
	SID                IssuerAndSerialNumber
	DigestAlgorithm    AlgorithmIdentifier
	SignedAttrs        []Attribute `asn1:"optional,implicit,tag:0,set"`
	SignatureAlgorithm AlgorithmIdentifier
	Signature          []byte
	UnsignedAttrs      []Attribute `asn1:"optional,implicit,tag:1,set"`
}

// SignerInfoRaw is used for parsing to capture raw attribute bytes.
type SignerInfoRaw struct {
	Version            int
	SID                IssuerAndSerialNumber
	DigestAlgorithm    AlgorithmIdentifier
	SignedAttrs        asn1.RawValue `asn1:"optional,tag:0"`
	SignatureAlgorithm AlgorithmIdentifier
	Signature          []byte
	UnsignedAttrs      asn1.RawValue `asn1:"optional,tag:1"`
}

// IssuerAndSerialNumber identifies a certificate by issuer and serial.
type IssuerAndSerialNumber struct {
	Issuer       asn1.RawValue
	SerialNumber *big.Int
}

// Attribute represents a CMS attribute.
type Attribute struct {
	Type   asn1.ObjectIdentifier
	Values []asn1.RawValue `asn1:"set"`
}

// SigningCertificateV2 represents the ESS signing certificate attribute.
type SigningCertificateV2 struct {
	Certs []ESSCertIDv2
}

// ESSCertIDv2 represents a certificate identifier.
type ESSCertIDv2 struct {
	HashAlgorithm AlgorithmIdentifier `asn1:"optional"`
	CertHash      []byte
	IssuerSerial  IssuerSerial `asn1:"optional"`
}

// IssuerSerial identifies a certificate by issuer and serial.
type IssuerSerial struct {
	Issuer       GeneralNames
	SerialNumber *big.Int
}

// GeneralNames represents a sequence of GeneralName.
type GeneralNames struct {
	Names []asn1.RawValue
}

// RevocationInfoArchival is the Adobe attribute carrying revocation evidence
// inside the signed attributes: CRLs under tag 0, OCSP responses under tag 1.
type RevocationInfoArchival struct {
	CRLs         []asn1.RawValue `asn1:"optional,explicit,tag:0"`
	OCSPs        []asn1.RawValue `asn1:"optional,explicit,tag:1"`
	OtherRevInfo []asn1.RawValue `asn1:"optional,explicit,tag:2"`
}

// ocspResponseEnvelope is the OCSPResponse framing each basic response is
// wrapped in before archival: status successful plus a tagged response.
type ocspResponseEnvelope struct {
	Status   asn1.Enumerated
	Response ocspResponseBytes `asn1:"explicit,optional,tag:0"`
}

type ocspResponseBytes struct {
	ResponseType asn1.ObjectIdentifier
	Response     []byte
}

// SignaturePolicy identifies an explicit signature policy for CAdES-EPES.
type SignaturePolicy struct {
	PolicyOID  asn1.ObjectIdentifier
	HashAlgOID asn1.ObjectIdentifier
	PolicyHash []byte
	PolicyURI  string
}

// signaturePolicyID is the wire form of the signature-policy attribute value.
type signaturePolicyID struct {
	SigPolicyID   asn1.ObjectIdentifier
	SigPolicyHash otherHashAlgAndValue
}

type otherHashAlgAndValue struct {
	HashAlgorithm AlgorithmIdentifier
	HashValue     []byte
}

// TSTInfo represents the TSTInfo structure from RFC 3161.
type TSTInfo struct {
	Version        int
	Policy         asn1.ObjectIdentifier
	MessageImprint MessageImprint
	SerialNumber   *big.Int
	GenTime        time.Time
	Accuracy       Accuracy        `asn1:"optional"`
	Ordering       bool            `asn1:"optional"`
	Nonce          *big.Int        `asn1:"optional"`
	TSA            asn1.RawValue   `asn1:"optional,tag:0"`
	Extensions     []asn1.RawValue `asn1:"optional,tag:1"`
}

// Accuracy represents the timestamp accuracy.
type Accuracy struct {
	Seconds int `asn1:"optional"`
	Millis  int `asn1:"optional,tag:0"`
	Micros  int `asn1:"optional,tag:1"`
}

// MessageImprint represents the hash of the timestamped data.
type MessageImprint struct {
	HashAlgorithm AlgorithmIdentifier
	HashedMessage []byte
}

// derSortAttributes sorts attributes by their DER encoding.
// This ensures consistent ordering as Go's asn1 package sorts SET elements.
func derSortAttributes(attrs []Attribute) []Attribute {
	type attrWithDER struct {
		attr Attribute
		der  []byte
	}
	attrsWithDER := make([]attrWithDER, len(attrs))
	for i, attr := range attrs {
		der, _ := asn1.Marshal(attr)
		attrsWithDER[i] = attrWithDER{attr: attr, der: der}
	}

	sort.Slice(attrsWithDER, func(i, j int) bool {
		return bytes.Compare(attrsWithDER[i].der, attrsWithDER[j].der) < 0
	})

	result := make([]Attribute, len(attrs))
	for i, awd := range attrsWithDER {
		result[i] = awd.attr
	}
	return result
}

// parseAttributeSet decodes a concatenation of Attribute SEQUENCEs, the
// content of an implicitly tagged attribute SET.
func parseAttributeSet(data []byte) ([]Attribute, error) {
	var attrs []Attribute
	rest := data
	for len(rest) > 0 {
		var attr Attribute
		var err error
		rest, err = asn1.Unmarshal(rest, &attr)
		if err != nil {
			return nil, err
		}
		attrs = append(attrs, attr)
	}
	return attrs, nil
}
