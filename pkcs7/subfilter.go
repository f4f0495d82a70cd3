package pkcs7

import "fmt"

// SubFilter selects the signature encoding profile of a signature container.
type SubFilter int

const (
	// SubFilterAdbePKCS7Detached is a detached CMS signature.
	SubFilterAdbePKCS7Detached SubFilter = iota
	// SubFilterAdbePKCS7SHA1 embeds the SHA-1 content digest in the CMS.
	SubFilterAdbePKCS7SHA1
	// SubFilterAdbeX509RSASHA1 is a bare PKCS#1 signature with an external
	// certificate (the legacy non-CMS form).
	SubFilterAdbeX509RSASHA1
	// SubFilterETSICAdESDetached is a detached CMS signature in CAdES mode,
	// requiring the signing-certificate-v2 attribute.
	SubFilterETSICAdESDetached
	// SubFilterETSIRFC3161 is a document timestamp: the whole SignedData is
	// an RFC 3161 timestamp token.
	SubFilterETSIRFC3161
)

// String returns the subfilter name as written into the signature dictionary.
func (s SubFilter) String() string {
	switch s {
	case SubFilterAdbePKCS7Detached:
		return "adbe.pkcs7.detached"
	case SubFilterAdbePKCS7SHA1:
		return "adbe.pkcs7.sha1"
	case SubFilterAdbeX509RSASHA1:
		return "adbe.x509.rsa_sha1"
	case SubFilterETSICAdESDetached:
		return "ETSI.CAdES.detached"
	case SubFilterETSIRFC3161:
		return "ETSI.RFC3161"
	default:
		return "unknown"
	}
}

// ParseSubFilter maps a subfilter name onto its SubFilter value.
func ParseSubFilter(name string) (SubFilter, error) {
	switch name {
	case "adbe.pkcs7.detached":
		return SubFilterAdbePKCS7Detached, nil
	case "adbe.pkcs7.sha1":
		return SubFilterAdbePKCS7SHA1, nil
	case "adbe.x509.rsa_sha1":
		return SubFilterAdbeX509RSASHA1, nil
	case "ETSI.CAdES.detached":
		return SubFilterETSICAdESDetached, nil
	case "ETSI.RFC3161":
		return SubFilterETSIRFC3161, nil
	default:
		return 0, fmt.Errorf("%w: %s", ErrUnknownSubFilter, name)
	}
}

// IsCAdES reports whether the subfilter requires the CAdES profile.
func (s SubFilter) IsCAdES() bool {
	return s == SubFilterETSICAdESDetached
}

// IsTimestamp reports whether the subfilter marks a document timestamp.
func (s SubFilter) IsTimestamp() bool {
	return s == SubFilterETSIRFC3161
}
