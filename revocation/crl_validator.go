package revocation

import (
	"crypto/x509"
	"fmt"
	"time"
)

const crlCheckName = "CRL response check."

// CRLValidator checks a single CRL against a certificate. Like the OCSP
// validator it records INDETERMINATE items instead of returning errors, so
// that one unusable CRL does not end the revocation check.
type CRLValidator struct {
	// Freshness is the maximum acceptable age of the CRL. Zero means
	// DefaultFreshness.
	Freshness time.Duration
	// FreshnessHistorical overrides Freshness for evidence tagged with
	// ContextHistorical. Zero means Freshness applies to both contexts.
	FreshnessHistorical time.Duration
}

// NewCRLValidator creates a validator with default settings.
func NewCRLValidator() *CRLValidator {
	return &CRLValidator{}
}

func (v *CRLValidator) freshness(context TimeBasedContext) time.Duration {
	if context == ContextHistorical && v.FreshnessHistorical > 0 {
		return v.FreshnessHistorical
	}
	if v.Freshness > 0 {
		return v.Freshness
	}
	return DefaultFreshness
}

// Validate checks one piece of CRL evidence for the given certificate at
// validationTime and records the outcome on the report. Freshness is judged
// against the evidence's trusted generation date. A clean pass adds no items.
func (v *CRLValidator) Validate(report *ValidationReport, cert, issuer *x509.Certificate, evidence CRLEvidence, validationTime time.Time) {
	list := evidence.List
	if issuer == nil || list.CheckSignatureFrom(issuer) != nil {
		report.AddItem(ReportItem{
			CheckName: crlCheckName,
			Message:   MsgCRLIssuerNoCommonRoot,
			Status:    StatusIndeterminate,
		})
		return
	}

	if list.ThisUpdate.After(validationTime) {
		report.AddItem(ReportItem{
			CheckName: crlCheckName,
			Message:   fmt.Sprintf("CRL is not yet valid: thisUpdate %s is after validation time %s.", list.ThisUpdate, validationTime),
			Status:    StatusIndeterminate,
		})
		return
	}
	if !list.NextUpdate.IsZero() && validationTime.After(list.NextUpdate) {
		report.AddItem(ReportItem{
			CheckName: crlCheckName,
			Message:   fmt.Sprintf("CRL is expired: nextUpdate %s is before validation time %s.", list.NextUpdate, validationTime),
			Status:    StatusIndeterminate,
		})
		return
	}
	generated := evidence.TrustedGenerationDate
	if generated.IsZero() {
		generated = validationTime
	}
	if generated.Sub(list.ThisUpdate) > v.freshness(evidence.Context) {
		report.AddItem(ReportItem{
			CheckName: crlCheckName,
			Message:   fmt.Sprintf("CRL is not fresh enough: thisUpdate %s is too far before its trusted generation date %s.", list.ThisUpdate, generated),
			Status:    StatusIndeterminate,
		})
		return
	}

	for _, entry := range list.RevokedCertificateEntries {
		if entry.SerialNumber.Cmp(cert.SerialNumber) != 0 {
			continue
		}
		status := StatusInvalid
		if entry.RevocationTime.After(validationTime) {
			status = StatusInfo
		}
		report.AddItem(ReportItem{
			CheckName: crlCheckName,
			Message:   fmt.Sprintf("Certificate was revoked at %s.", entry.RevocationTime),
			Status:    status,
		})
		return
	}
}
