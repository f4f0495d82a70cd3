package pkcs7

import "errors"

// Common errors
var (
	ErrUnknownHashAlgorithm       = errors.New("unknown hash algorithm")
	ErrUnknownKeyAlgorithm        = errors.New("unknown key algorithm")
	ErrNotSignedData              = errors.New("not a valid PKCS#7 object - not signed data")
	ErrOneSignerOnly              = errors.New("this PKCS#7 object has multiple signer infos - only one is supported at this time")
	ErrSigningCertificateNotFound = errors.New("can't find signing certificate with issuer and serial number")
	ErrCertificateMismatch        = errors.New("signing certificate doesn't match the ESS information")
	ErrMissingMessageDigest       = errors.New("authenticated attribute is missing the digest")
	ErrUnknownSubFilter           = errors.New("unknown signature subfilter")
	ErrUnsupportedAlgorithm       = errors.New("unsupported algorithm")
	ErrNoSignatureDate            = errors.New("no signature date available")
)
