package revocation

import (
	"crypto/x509"
	"fmt"
	"time"

	"golang.org/x/crypto/ocsp"
)

const (
	// DefaultFreshness bounds the age of revocation data relative to the
	// validation time.
	DefaultFreshness = 30 * 24 * time.Hour

	ocspCheckName = "OCSP response check."
)

// OCSPValidator checks a single OCSP response against a certificate. Every
// problem is reported as an INDETERMINATE item rather than an error, so that
// the caller can fall through to the next piece of revocation data.
type OCSPValidator struct {
	// TrustedResponders are accepted as response signers even when the
	// responder certificate cannot be tied to the issuer.
	TrustedResponders []*x509.Certificate
	// Freshness is the maximum acceptable age of the response. Zero means
	// DefaultFreshness.
	Freshness time.Duration
	// FreshnessHistorical overrides Freshness for evidence tagged with
	// ContextHistorical. Zero means Freshness applies to both contexts.
	FreshnessHistorical time.Duration
}

// NewOCSPValidator creates a validator with default settings.
func NewOCSPValidator() *OCSPValidator {
	return &OCSPValidator{}
}

func (v *OCSPValidator) freshness(context TimeBasedContext) time.Duration {
	if context == ContextHistorical && v.FreshnessHistorical > 0 {
		return v.FreshnessHistorical
	}
	if v.Freshness > 0 {
		return v.Freshness
	}
	return DefaultFreshness
}

// Validate checks one piece of OCSP evidence for the given certificate at
// validationTime and records the outcome on the report. Freshness is judged
// against the evidence's trusted generation date. A clean pass adds no items.
func (v *OCSPValidator) Validate(report *ValidationReport, cert, issuer *x509.Certificate, evidence OCSPEvidence, validationTime time.Time) {
	resp := evidence.Response
	if resp.SerialNumber == nil || cert.SerialNumber.Cmp(resp.SerialNumber) != 0 {
		report.AddItem(ReportItem{
			CheckName: ocspCheckName,
			Message:   MsgSerialNumbersDoNotMatch,
			Status:    StatusIndeterminate,
		})
		return
	}

	if !v.checkResponseSignature(report, issuer, resp) {
		return
	}

	if resp.ThisUpdate.After(validationTime) {
		report.AddItem(ReportItem{
			CheckName: ocspCheckName,
			Message:   fmt.Sprintf("OCSP response is not yet valid: thisUpdate %s is after validation time %s.", resp.ThisUpdate, validationTime),
			Status:    StatusIndeterminate,
		})
		return
	}
	if !resp.NextUpdate.IsZero() && validationTime.After(resp.NextUpdate) {
		report.AddItem(ReportItem{
			CheckName: ocspCheckName,
			Message:   fmt.Sprintf("OCSP response is expired: nextUpdate %s is before validation time %s.", resp.NextUpdate, validationTime),
			Status:    StatusIndeterminate,
		})
		return
	}
	generated := evidence.TrustedGenerationDate
	if generated.IsZero() {
		generated = validationTime
	}
	if generated.Sub(resp.ThisUpdate) > v.freshness(evidence.Context) {
		report.AddItem(ReportItem{
			CheckName: ocspCheckName,
			Message:   fmt.Sprintf("OCSP response is not fresh enough: thisUpdate %s is too far before its trusted generation date %s.", resp.ThisUpdate, generated),
			Status:    StatusIndeterminate,
		})
		return
	}

	switch resp.Status {
	case ocsp.Good:
		// Clean pass.
	case ocsp.Revoked:
		status := StatusInvalid
		if resp.RevokedAt.After(validationTime) {
			// Revoked after the time of interest, not yet effective.
			status = StatusInfo
		}
		report.AddItem(ReportItem{
			CheckName: ocspCheckName,
			Message:   fmt.Sprintf("Certificate was revoked at %s.", resp.RevokedAt),
			Status:    status,
		})
	default:
		report.AddItem(ReportItem{
			CheckName: ocspCheckName,
			Message:   "OCSP responder does not know the certificate status.",
			Status:    StatusIndeterminate,
		})
	}
}

// checkResponseSignature verifies the response signature against the issuer,
// a delegated responder certificate signed by the issuer, or an explicitly
// trusted responder. Returns false after recording an item when no signer
// can be established.
func (v *OCSPValidator) checkResponseSignature(report *ValidationReport, issuer *x509.Certificate, resp *ocsp.Response) bool {
	if issuer != nil {
		if err := resp.CheckSignatureFrom(issuer); err == nil {
			return true
		}
		if resp.Certificate != nil {
			if err := resp.Certificate.CheckSignatureFrom(issuer); err == nil {
				if err := resp.CheckSignatureFrom(resp.Certificate); err == nil {
					return true
				}
			}
		}
	}

	for _, responder := range v.TrustedResponders {
		if err := resp.CheckSignatureFrom(responder); err == nil {
			report.AddItem(ReportItem{
				CheckName: ocspCheckName,
				Message:   MsgTrustedOCSPResponder,
				Status:    StatusInfo,
			})
			return true
		}
	}

	report.AddItem(ReportItem{
		CheckName: ocspCheckName,
		Message:   "OCSP response could not be verified: no trusted signer found.",
		Status:    StatusIndeterminate,
	})
	return false
}
