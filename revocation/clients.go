package revocation

import (
	"crypto/x509"
	"time"

	"golang.org/x/crypto/ocsp"
)

// OCSPClient supplies encoded OCSP responses for a certificate and its
// issuer.
type OCSPClient interface {
	GetEncodedResponses(cert, issuer *x509.Certificate) ([][]byte, error)
}

// CRLClient supplies encoded CRLs for a certificate.
type CRLClient interface {
	GetEncodedCRLs(cert *x509.Certificate) ([][]byte, error)
}

// ValidationOCSPClient carries OCSP evidence already held in memory, each
// response pre-tagged with its generation date and temporal context. The
// validator consumes the tagged evidence directly instead of re-parsing and
// re-dating it.
type ValidationOCSPClient struct {
	evidence []OCSPEvidence
}

// NewValidationOCSPClient creates an empty in-memory OCSP client.
func NewValidationOCSPClient() *ValidationOCSPClient {
	return &ValidationOCSPClient{}
}

// AddResponse registers a parsed response with its provenance.
func (c *ValidationOCSPClient) AddResponse(resp *ocsp.Response, raw []byte, generationDate time.Time, context TimeBasedContext) {
	c.evidence = append(c.evidence, OCSPEvidence{
		Response:              resp,
		Raw:                   raw,
		TrustedGenerationDate: generationDate,
		Context:               context,
	})
}

// Evidence returns the registered evidence.
func (c *ValidationOCSPClient) Evidence() []OCSPEvidence {
	return c.evidence
}

// GetEncodedResponses returns the raw bytes of all registered responses.
func (c *ValidationOCSPClient) GetEncodedResponses(cert, issuer *x509.Certificate) ([][]byte, error) {
	var raws [][]byte
	for _, ev := range c.evidence {
		raws = append(raws, ev.Raw)
	}
	return raws, nil
}

// ValidationCRLClient carries CRL evidence already held in memory, each list
// pre-tagged with its generation date and temporal context.
type ValidationCRLClient struct {
	evidence []CRLEvidence
}

// NewValidationCRLClient creates an empty in-memory CRL client.
func NewValidationCRLClient() *ValidationCRLClient {
	return &ValidationCRLClient{}
}

// AddCRL registers a parsed CRL with its provenance.
func (c *ValidationCRLClient) AddCRL(list *x509.RevocationList, raw []byte, generationDate time.Time, context TimeBasedContext) {
	c.evidence = append(c.evidence, CRLEvidence{
		List:                  list,
		Raw:                   raw,
		TrustedGenerationDate: generationDate,
		Context:               context,
	})
}

// Evidence returns the registered evidence.
func (c *ValidationCRLClient) Evidence() []CRLEvidence {
	return c.evidence
}

// GetEncodedCRLs returns the raw bytes of all registered CRLs.
func (c *ValidationCRLClient) GetEncodedCRLs(cert *x509.Certificate) ([][]byte, error) {
	var raws [][]byte
	for _, ev := range c.evidence {
		raws = append(raws, ev.Raw)
	}
	return raws, nil
}
