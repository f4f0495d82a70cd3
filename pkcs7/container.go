// Package pkcs7 assembles, parses and verifies CMS/PKCS#7 SignedData
// signature containers for PDF signatures.
package pkcs7

import (
	"bytes"
	"crypto"
	"crypto/dsa"
	"crypto/ecdsa"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/asn1"
	"errors"
	"fmt"
	"hash"
	"math/big"
	"time"
)

// TimestampClient obtains RFC 3161 timestamp tokens from an authority.
// DigestAlgorithm is the hash the client uses for the message imprint.
type TimestampClient interface {
	DigestAlgorithm() crypto.Hash
	GetTimestampToken(imprint []byte) ([]byte, error)
}

// SignatureContainer assembles a CMS SignedData structure for signing, or
// holds the parsed state of an existing one for verification. Exactly one
// SignerInfo is supported.
type SignatureContainer struct {
	version       int
	signerVersion int

	signCert     *x509.Certificate
	certificates []*x509.Certificate
	chain        []*x509.Certificate

	digestAlgorithmOIDs []asn1.ObjectIdentifier
	digestAlgorithmOID  asn1.ObjectIdentifier
	encryptionOID       asn1.ObjectIdentifier
	keyAlgorithm        string

	priv crypto.Signer

	// rsaData is the embedded content for the non-detached form. A non-nil
	// empty slice marks the placeholder allocated at construction time.
	rsaData         []byte
	encryptedDigest []byte

	signedAttrs []Attribute
	sigAttr     []byte
	sigAttrDer  []byte
	digestAttr  []byte

	externalSignature []byte

	messageDigest hash.Hash
	sigDigest     hash.Hash
	encContDigest hash.Hash

	subFilter SubFilter
	isTsp     bool

	timestampToken []byte
	tstInfo        *TSTInfo

	ocspBytes [][]byte
	crlBytes  [][]byte

	signingTime time.Time
	signPolicy  *SignaturePolicy

	verified     bool
	verifyResult bool
	verifyErr    error
}

// NewSigner creates a container for producing a new signature. priv may be
// nil for external (two-phase or remote) signing; in that case the key
// algorithm is supplied later through SetExternalSignatureValue. When
// embedContent is set the content digested through Update is embedded into
// the SignedData instead of being detached.
func NewSigner(priv crypto.Signer, chain []*x509.Certificate, digestAlgorithm string, embedContent bool) (*SignatureContainer, error) {
	if len(chain) == 0 {
		return nil, errors.New("certificate chain must not be empty")
	}

	digestOID, err := DigestOIDForName(digestAlgorithm)
	if err != nil {
		return nil, err
	}

	c := &SignatureContainer{
		version:             1,
		signerVersion:       1,
		signCert:            chain[0],
		certificates:        append([]*x509.Certificate(nil), chain...),
		digestAlgorithmOIDs: []asn1.ObjectIdentifier{digestOID},
		digestAlgorithmOID:  digestOID,
		priv:                priv,
		signingTime:         time.Now().UTC(),
	}

	if priv != nil {
		keyAlg, err := keyAlgorithmName(priv.Public())
		if err != nil {
			return nil, err
		}
		if keyAlg == "ECDSA" {
			// ECDSA keys are only supported through the external
			// signature path.
			return nil, fmt.Errorf("%w: %s", ErrUnknownKeyAlgorithm, keyAlg)
		}
		c.keyAlgorithm = keyAlg
		c.encryptionOID, err = encryptionOIDForKeyAlgorithm(keyAlg)
		if err != nil {
			return nil, err
		}
	}

	c.messageDigest, _ = NewDigestForOID(digestOID)
	c.sigDigest, _ = NewDigestForOID(digestOID)
	if embedContent {
		c.rsaData = []byte{}
		c.encContDigest, _ = NewDigestForOID(digestOID)
	}

	return c, nil
}

// Parse decodes an existing CMS signature for verification. subFilter selects
// the signature profile: CAdES mode enforces the signing-certificate-v2
// attribute, and the timestamp profile reparses the whole SignedData as an
// RFC 3161 timestamp token.
func Parse(contentsKey []byte, subFilter SubFilter) (*SignatureContainer, error) {
	var contentInfo ContentInfo
	if _, err := asn1.Unmarshal(contentsKey, &contentInfo); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotSignedData, err)
	}
	if !contentInfo.ContentType.Equal(OIDSignedData) {
		return nil, ErrNotSignedData
	}

	var signedData SignedDataRaw
	if _, err := asn1.Unmarshal(contentInfo.Content.Bytes, &signedData); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotSignedData, err)
	}

	c := &SignatureContainer{
		version:   signedData.Version,
		subFilter: subFilter,
	}

	for _, alg := range signedData.DigestAlgorithms {
		c.digestAlgorithmOIDs = append(c.digestAlgorithmOIDs, alg.Algorithm)
	}

	if len(signedData.EncapContentInfo.EContent.Bytes) > 0 {
		var content []byte
		if _, err := asn1.Unmarshal(signedData.EncapContentInfo.EContent.Bytes, &content); err != nil {
			return nil, fmt.Errorf("failed to parse encapsulated content: %w", err)
		}
		c.rsaData = content
	}

	for _, certRaw := range signedData.Certificates {
		cert, err := x509.ParseCertificate(certRaw.FullBytes)
		if err != nil {
			continue
		}
		c.certificates = append(c.certificates, cert)
	}

	if len(signedData.SignerInfos) == 0 {
		return nil, fmt.Errorf("%w: no signer information found", ErrNotSignedData)
	}
	if len(signedData.SignerInfos) > 1 {
		return nil, ErrOneSignerOnly
	}

	var signerInfo SignerInfoRaw
	if _, err := asn1.Unmarshal(signedData.SignerInfos[0].FullBytes, &signerInfo); err != nil {
		return nil, fmt.Errorf("failed to parse SignerInfo: %w", err)
	}
	c.signerVersion = signerInfo.Version
	c.digestAlgorithmOID = signerInfo.DigestAlgorithm.Algorithm
	c.encryptionOID = signerInfo.SignatureAlgorithm.Algorithm
	c.keyAlgorithm = keyAlgorithmNameForOID(c.encryptionOID)
	c.encryptedDigest = signerInfo.Signature

	c.signCert = findCertificate(c.certificates, signerInfo.SID)
	if c.signCert == nil {
		return nil, fmt.Errorf("%w: serial %v", ErrSigningCertificateNotFound, signerInfo.SID.SerialNumber)
	}

	if len(signerInfo.SignedAttrs.Bytes) > 0 {
		if err := c.parseSignedAttributes(signerInfo.SignedAttrs); err != nil {
			return nil, err
		}
	}

	if len(signerInfo.UnsignedAttrs.Bytes) > 0 {
		c.parseUnsignedAttributes(signerInfo.UnsignedAttrs)
	}

	if subFilter.IsTimestamp() {
		c.isTsp = true
		tstInfo, err := parseTimestampTSTInfo(signedData.EncapContentInfo)
		if err != nil {
			return nil, err
		}
		c.tstInfo = tstInfo
		// The document digest is computed with the token's imprint hash.
		c.digestAlgorithmOID = tstInfo.MessageImprint.HashAlgorithm.Algorithm
	}

	var err error
	c.messageDigest, err = NewDigestForOID(c.digestAlgorithmOID)
	if err != nil {
		return nil, err
	}
	c.sigDigest, _ = NewDigestForOID(c.digestAlgorithmOID)
	if c.rsaData != nil {
		c.encContDigest, _ = NewDigestForOID(c.digestAlgorithmOID)
	}

	c.chain = buildSignatureChain(c.signCert, c.certificates)

	return c, nil
}

// ParseLegacy decodes the legacy adbe.x509.rsa_sha1 form: a bare PKCS#1
// signature value with certificates carried outside the signature blob.
func ParseLegacy(contentsKey []byte, certs []*x509.Certificate) (*SignatureContainer, error) {
	if len(certs) == 0 {
		return nil, errors.New("certificate chain must not be empty")
	}

	var sigValue []byte
	if _, err := asn1.Unmarshal(contentsKey, &sigValue); err != nil {
		return nil, fmt.Errorf("failed to parse signature value: %w", err)
	}

	c := &SignatureContainer{
		version:             1,
		signerVersion:       1,
		subFilter:           SubFilterAdbeX509RSASHA1,
		signCert:            certs[0],
		certificates:        append([]*x509.Certificate(nil), certs...),
		digestAlgorithmOID:  OIDSHA1,
		digestAlgorithmOIDs: []asn1.ObjectIdentifier{OIDSHA1},
		encryptionOID:       OIDRSAEncryption,
		keyAlgorithm:        "RSA",
		encryptedDigest:     sigValue,
	}
	c.messageDigest, _ = NewDigestForOID(OIDSHA1)
	c.sigDigest, _ = NewDigestForOID(OIDSHA1)
	c.chain = buildSignatureChain(c.signCert, c.certificates)

	return c, nil
}

// findCertificate locates a certificate by issuer and serial number.
func findCertificate(certs []*x509.Certificate, sid IssuerAndSerialNumber) *x509.Certificate {
	for _, cert := range certs {
		if sid.SerialNumber == nil || cert.SerialNumber.Cmp(sid.SerialNumber) != 0 {
			continue
		}
		if len(sid.Issuer.FullBytes) == 0 || bytes.Equal(cert.RawIssuer, sid.Issuer.FullBytes) {
			return cert
		}
	}
	return nil
}

// parseSignedAttributes extracts the authenticated attribute state: the raw
// attribute bytes as transmitted (with the SET tag restored), a DER
// re-encoding used as a verification fallback, the message digest attribute,
// optional signing time and archived revocation data, and the CAdES signing
// certificate check.
func (c *SignatureContainer) parseSignedAttributes(raw asn1.RawValue) error {
	// FullBytes carries the implicit [0] tag; the signed bytes are the
	// same content under a SET tag.
	c.sigAttr = append([]byte(nil), raw.FullBytes...)
	c.sigAttr[0] = 0x31

	attrs, err := parseAttributeSet(raw.Bytes)
	if err != nil {
		return fmt.Errorf("failed to parse signed attributes: %w", err)
	}
	c.signedAttrs = attrs

	// Some producers emit BER or unsorted sets; keep a strict DER
	// re-encoding for a second verification attempt.
	derAttrs, err := asn1.Marshal(derSortAttributes(attrs))
	if err == nil {
		derAttrs[0] = 0x31
		c.sigAttrDer = derAttrs
	}

	foundCades := false
	for _, attr := range attrs {
		switch {
		case attr.Type.Equal(OIDMessageDigest):
			if len(attr.Values) > 0 {
				var digest []byte
				if _, err := asn1.Unmarshal(attr.Values[0].FullBytes, &digest); err != nil {
					return fmt.Errorf("failed to parse message digest attribute: %w", err)
				}
				c.digestAttr = digest
			}
		case attr.Type.Equal(OIDSigningTime):
			if len(attr.Values) > 0 {
				var signingTime time.Time
				if _, err := asn1.Unmarshal(attr.Values[0].FullBytes, &signingTime); err == nil {
					c.signingTime = signingTime
				}
			}
		case attr.Type.Equal(OIDAdobeRevocationArchival):
			if len(attr.Values) > 0 {
				if err := c.parseRevocationArchival(attr.Values[0].FullBytes); err != nil {
					return err
				}
			}
		case attr.Type.Equal(OIDSigningCertificateV2):
			if len(attr.Values) > 0 {
				if err := c.checkSigningCertificateV2(attr.Values[0].FullBytes); err != nil {
					return err
				}
				foundCades = true
			}
		}
	}

	if c.digestAttr == nil {
		return ErrMissingMessageDigest
	}
	if c.subFilter.IsCAdES() && !foundCades {
		return errors.New("CAdES object doesn't contain signing certificate attribute")
	}

	return nil
}

// checkSigningCertificateV2 verifies that the signing certificate hash stored
// in the ESS attribute matches the actual signing certificate.
func (c *SignatureContainer) checkSigningCertificateV2(value []byte) error {
	var signingCert SigningCertificateV2
	if _, err := asn1.Unmarshal(value, &signingCert); err != nil {
		return fmt.Errorf("failed to parse signing certificate attribute: %w", err)
	}
	if len(signingCert.Certs) == 0 {
		return ErrCertificateMismatch
	}

	essCert := signingCert.Certs[0]
	hashOID := essCert.HashAlgorithm.Algorithm
	if len(hashOID) == 0 {
		// Absent hash algorithm defaults to SHA-256 per RFC 5035.
		hashOID = OIDSHA256
	}
	h, err := NewDigestForOID(hashOID)
	if err != nil {
		return err
	}
	h.Write(c.signCert.Raw)
	if !bytes.Equal(h.Sum(nil), essCert.CertHash) {
		return ErrCertificateMismatch
	}
	return nil
}

// parseUnsignedAttributes searches the unsigned attributes for an RFC 3161
// timestamp token. Unknown attributes are ignored.
func (c *SignatureContainer) parseUnsignedAttributes(raw asn1.RawValue) {
	attrs, err := parseAttributeSet(raw.Bytes)
	if err != nil {
		return
	}
	for _, attr := range attrs {
		if attr.Type.Equal(OIDTimeStampToken) && len(attr.Values) > 0 {
			c.timestampToken = attr.Values[0].FullBytes
			if tstInfo, err := ParseTimestampToken(c.timestampToken); err == nil {
				c.tstInfo = tstInfo
			}
			return
		}
	}
}

// Update feeds content bytes into the container's digest accumulators.
// Callers must cover the exact byte ranges protected by the signature before
// calling Encode or VerifySignatureIntegrityAndAuthenticity.
func (c *SignatureContainer) Update(p []byte) {
	if c.rsaData != nil || c.digestAttr != nil || c.isTsp {
		c.messageDigest.Write(p)
		if c.encContDigest != nil && c.digestAttr != nil {
			// Verification of the embedded-content form cross-checks
			// the raw content digest against the embedded value.
			c.encContDigest.Write(p)
		}
	} else {
		c.messageDigest.Write(p)
		c.sigDigest.Write(p)
	}
}

// SetExternalSignatureValue supplies a signature value produced outside this
// container, for two-phase or remote signing. embeddedContent replaces the
// embedded content value when the non-detached form is used. keyAlgorithm
// must be RSA, DSA or ECDSA.
func (c *SignatureContainer) SetExternalSignatureValue(signatureValue, embeddedContent []byte, keyAlgorithm string) error {
	if keyAlgorithm != "" {
		oid, err := encryptionOIDForKeyAlgorithm(keyAlgorithm)
		if err != nil {
			return err
		}
		c.keyAlgorithm = keyAlgorithm
		c.encryptionOID = oid
	}
	c.externalSignature = signatureValue
	if embeddedContent != nil {
		c.rsaData = embeddedContent
	}
	return nil
}

// SetSignaturePolicy attaches an explicit signature policy identifier that
// will be included in the authenticated attributes.
func (c *SignatureContainer) SetSignaturePolicy(policy *SignaturePolicy) {
	c.signPolicy = policy
}

// SetSigningTime overrides the signing time recorded at construction.
func (c *SignatureContainer) SetSigningTime(t time.Time) {
	c.signingTime = t.UTC()
}

// Encode produces the final DER SignedData. secondDigest is the content
// digest placed into the message-digest authenticated attribute; when nil the
// signature is computed directly over the accumulated content with no
// authenticated attributes. A timestamp client failure only omits the
// timestamp attribute; encoding failures are fatal.
func (c *SignatureContainer) Encode(secondDigest []byte, tsa TimestampClient, ocsps, crls [][]byte, flavor SubFilter) ([]byte, error) {
	if c.rsaData != nil && len(c.rsaData) == 0 {
		c.rsaData = c.messageDigest.Sum(nil)
	}

	if len(c.encryptionOID) == 0 {
		return nil, fmt.Errorf("%w: no key algorithm available", ErrUnknownKeyAlgorithm)
	}

	var signedAttrs []Attribute
	var sigValue []byte
	if secondDigest != nil {
		attrs, attrBytes, err := c.authenticatedAttributes(secondDigest, ocsps, crls, flavor)
		if err != nil {
			return nil, err
		}
		signedAttrs = attrs
		c.sigAttr = attrBytes

		if c.externalSignature != nil {
			sigValue = c.externalSignature
		} else {
			sigValue, err = c.signBytes(attrBytes)
			if err != nil {
				return nil, err
			}
		}
	} else {
		if c.externalSignature != nil {
			sigValue = c.externalSignature
		} else {
			var err error
			sigValue, err = c.signDigest(c.sigDigest.Sum(nil))
			if err != nil {
				return nil, err
			}
		}
	}
	c.encryptedDigest = sigValue

	signerInfo := SignerInfo{
		Version: c.signerVersion,
		SID: IssuerAndSerialNumber{
			Issuer:       asn1.RawValue{FullBytes: c.signCert.RawIssuer},
			SerialNumber: c.signCert.SerialNumber,
		},
		DigestAlgorithm: AlgorithmIdentifier{
			Algorithm:  c.digestAlgorithmOID,
			Parameters: asn1.RawValue{Tag: 5}, // NULL
		},
		SignedAttrs: signedAttrs,
		SignatureAlgorithm: AlgorithmIdentifier{
			Algorithm:  c.encryptionOID,
			Parameters: encryptionParameters(c.encryptionOID),
		},
		Signature: sigValue,
	}

	if tsa != nil {
		if tsToken := c.fetchTimestampToken(tsa, sigValue); tsToken != nil {
			signerInfo.UnsignedAttrs = []Attribute{{
				Type:   OIDTimeStampToken,
				Values: []asn1.RawValue{{FullBytes: tsToken}},
			}}
			c.timestampToken = tsToken
		}
	}

	encapContent := EncapsulatedContentInfo{EContentType: OIDData}
	if c.rsaData != nil {
		contentBytes, err := asn1.Marshal(c.rsaData)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal embedded content: %w", err)
		}
		encapContent.EContent = asn1.RawValue{
			Class:      asn1.ClassContextSpecific,
			Tag:        0,
			IsCompound: true,
			Bytes:      contentBytes,
		}
	}

	signedData := SignedData{
		Version: c.version,
		DigestAlgorithms: []AlgorithmIdentifier{{
			Algorithm:  c.digestAlgorithmOID,
			Parameters: asn1.RawValue{Tag: 5},
		}},
		EncapContentInfo: encapContent,
		SignerInfos:      []SignerInfo{signerInfo},
	}
	for _, cert := range c.certificates {
		signedData.Certificates = append(signedData.Certificates,
			asn1.RawValue{FullBytes: cert.Raw})
	}

	signedDataBytes, err := asn1.Marshal(signedData)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal signed data: %w", err)
	}

	contentInfo := ContentInfo{
		ContentType: OIDSignedData,
		Content:     asn1.RawValue{Class: 2, Tag: 0, IsCompound: true, Bytes: signedDataBytes},
	}
	out, err := asn1.Marshal(contentInfo)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal content info: %w", err)
	}
	return out, nil
}

// fetchTimestampToken requests an RFC 3161 token over the signature value.
// Failures are swallowed: a missing timestamp never invalidates the
// signature itself.
func (c *SignatureContainer) fetchTimestampToken(tsa TimestampClient, sigValue []byte) []byte {
	h := tsa.DigestAlgorithm().New()
	h.Write(sigValue)
	token, err := tsa.GetTimestampToken(h.Sum(nil))
	if err != nil {
		return nil
	}
	return token
}

func encryptionParameters(oid asn1.ObjectIdentifier) asn1.RawValue {
	if oid.Equal(OIDRSAEncryption) {
		return asn1.RawValue{Tag: 5} // NULL
	}
	return asn1.RawValue{}
}

// signBytes digests data with the container's digest algorithm and signs it.
func (c *SignatureContainer) signBytes(data []byte) ([]byte, error) {
	h, err := NewDigestForOID(c.digestAlgorithmOID)
	if err != nil {
		return nil, err
	}
	h.Write(data)
	return c.signDigest(h.Sum(nil))
}

// signDigest signs a precomputed digest with the private key.
func (c *SignatureContainer) signDigest(digest []byte) ([]byte, error) {
	if c.priv == nil {
		return nil, errors.New("no private key available: supply an external signature value")
	}
	hashType, err := HashTypeForOID(c.digestAlgorithmOID)
	if err != nil {
		return nil, err
	}
	switch key := c.priv.(type) {
	case *rsa.PrivateKey:
		return rsa.SignPKCS1v15(rand.Reader, key, hashType, digest)
	default:
		return c.priv.Sign(rand.Reader, digest, hashType)
	}
}

// VerifySignatureIntegrityAndAuthenticity checks the digest and the raw
// cryptographic signature. The result is memoized: repeat calls return the
// cached outcome without re-running cryptographic work.
func (c *SignatureContainer) VerifySignatureIntegrityAndAuthenticity() (bool, error) {
	if c.verified {
		return c.verifyResult, c.verifyErr
	}
	c.verified = true
	c.verifyResult, c.verifyErr = c.verify()
	return c.verifyResult, c.verifyErr
}

func (c *SignatureContainer) verify() (bool, error) {
	if c.isTsp {
		if c.tstInfo == nil {
			return false, errors.New("timestamp signature has no TSTInfo")
		}
		imprint := c.messageDigest.Sum(nil)
		return bytes.Equal(imprint, c.tstInfo.MessageImprint.HashedMessage), nil
	}

	if c.sigAttr != nil || c.sigAttrDer != nil {
		contentDigest := c.messageDigest.Sum(nil)
		digestsMatch := bytes.Equal(contentDigest, c.digestAttr)

		if c.rsaData != nil {
			if !digestsMatch {
				// Embedded-content signers may compute the digest
				// attribute over the stored content digest rather than
				// the content itself. Accept that form as well.
				h, err := NewDigestForOID(c.digestAlgorithmOID)
				if err != nil {
					return false, err
				}
				h.Write(c.rsaData)
				digestsMatch = bytes.Equal(h.Sum(nil), c.digestAttr)
			}
			if c.encContDigest != nil && !bytes.Equal(c.encContDigest.Sum(nil), c.rsaData) {
				// Content fidelity for the embedded-content form.
				digestsMatch = false
			}
		}

		sigOK, err := c.verifyOverBytes(c.sigAttr)
		if err != nil {
			return false, err
		}
		if !sigOK && c.sigAttrDer != nil && !bytes.Equal(c.sigAttr, c.sigAttrDer) {
			sigOK, err = c.verifyOverBytes(c.sigAttrDer)
			if err != nil {
				return false, err
			}
		}
		return digestsMatch && sigOK, nil
	}

	// No authenticated attributes: the signature covers the content digest
	// directly.
	return c.verifySignature(c.sigDigest.Sum(nil))
}

// verifyOverBytes digests the attribute bytes and verifies the signature
// value over them.
func (c *SignatureContainer) verifyOverBytes(data []byte) (bool, error) {
	h, err := NewDigestForOID(c.digestAlgorithmOID)
	if err != nil {
		return false, err
	}
	h.Write(data)
	return c.verifySignature(h.Sum(nil))
}

// dsaSignature is the SEQUENCE {r, s} form of a DSA signature value.
type dsaSignature struct {
	R, S *big.Int
}

// verifySignature checks the raw signature value over a digest with the
// signing certificate's public key. A mismatched signature is a false
// result; structural problems (unsupported key, undecodable signature) are
// errors.
func (c *SignatureContainer) verifySignature(digest []byte) (bool, error) {
	hashType, err := HashTypeForOID(c.digestAlgorithmOID)
	if err != nil {
		return false, err
	}
	switch pub := c.signCert.PublicKey.(type) {
	case *rsa.PublicKey:
		if err := rsa.VerifyPKCS1v15(pub, hashType, digest, c.encryptedDigest); err != nil {
			if errors.Is(err, rsa.ErrVerification) {
				return false, nil
			}
			return false, err
		}
		return true, nil
	case *ecdsa.PublicKey:
		return ecdsa.VerifyASN1(pub, digest, c.encryptedDigest), nil
	case *dsa.PublicKey:
		var sig dsaSignature
		if _, err := asn1.Unmarshal(c.encryptedDigest, &sig); err != nil {
			return false, fmt.Errorf("failed to parse DSA signature: %w", err)
		}
		return dsa.Verify(pub, digest, sig.R, sig.S), nil
	default:
		return false, fmt.Errorf("%w: %T", ErrUnknownKeyAlgorithm, c.signCert.PublicKey)
	}
}

// SigningCertificate returns the certificate the signature was made with.
func (c *SignatureContainer) SigningCertificate() *x509.Certificate {
	return c.signCert
}

// Certificates returns all certificates carried by the container.
func (c *SignatureContainer) Certificates() []*x509.Certificate {
	return c.certificates
}

// SignatureChain returns the certificate chain starting at the signing
// certificate, ordered by the issuer-signs-subject walk.
func (c *SignatureContainer) SignatureChain() []*x509.Certificate {
	if c.chain == nil {
		c.chain = buildSignatureChain(c.signCert, c.certificates)
	}
	return c.chain
}

// DigestAlgorithmName returns the name of the signer's digest algorithm.
func (c *SignatureContainer) DigestAlgorithmName() string {
	return DigestNameForOID(c.digestAlgorithmOID)
}

// KeyAlgorithmName returns the signer's key algorithm name.
func (c *SignatureContainer) KeyAlgorithmName() string {
	return c.keyAlgorithm
}

// SignatureAlgorithmName returns the combined signature algorithm name, for
// example SHA256withRSA.
func (c *SignatureContainer) SignatureAlgorithmName() string {
	return DigestNameForOID(c.digestAlgorithmOID) + "with" + c.keyAlgorithm
}

// SigningTime returns the claimed signing time from the signing-time
// attribute, or the construction time for a signing container. The zero time
// means no date is available.
func (c *SignatureContainer) SigningTime() time.Time {
	return c.signingTime
}

// TimestampTime returns the generation time of the RFC 3161 timestamp token,
// or an error when no token is present.
func (c *SignatureContainer) TimestampTime() (time.Time, error) {
	if c.tstInfo == nil {
		return time.Time{}, ErrNoSignatureDate
	}
	return c.tstInfo.GenTime, nil
}

// TimestampToken returns the raw RFC 3161 token bytes, if any.
func (c *SignatureContainer) TimestampToken() []byte {
	return c.timestampToken
}

// OCSPResponses returns basic OCSP responses archived in the signed
// attributes.
func (c *SignatureContainer) OCSPResponses() [][]byte {
	return c.ocspBytes
}

// CRLs returns CRLs archived in the signed attributes.
func (c *SignatureContainer) CRLs() [][]byte {
	return c.crlBytes
}
