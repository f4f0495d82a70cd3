// Package revocation determines the revocation status of certificates from
// OCSP responses and CRLs gathered out of signatures, document security
// stores, and online sources. Freshest data is consulted first, and an
// inconclusive answer falls through to the next piece of evidence.
package revocation

import (
	"bytes"
	"crypto/x509"
	"encoding/asn1"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/crypto/ocsp"
)

// Messages recorded on validation reports. Tests and the merge loop match on
// these strings, so they are named constants rather than inline literals.
const (
	MsgRevocationDataCheck     = "Revocation data check."
	MsgNoRevocationData        = "Certificate revocation status cannot be checked: no revocation data is available or the status cannot be determined."
	MsgSelfSignedCertificate   = "Certificate is self-signed. Revocation data will not be checked."
	MsgValidityAssured         = "Certificate is expected to be valid for its whole lifetime. Revocation data will not be checked."
	MsgOCSPNoCheck             = "Certificate has the id-pkix-ocsp-nocheck extension. Revocation data will not be checked."
	MsgTrustedOCSPResponder    = "OCSP response is signed by an explicitly trusted responder."
	MsgCannotParseOCSP         = "Unable to parse OCSP response."
	MsgCannotParseCRL          = "Unable to parse CRL."
	MsgSerialNumbersDoNotMatch = "OCSP response serial number does not match the certificate serial number."
	MsgCRLIssuerNoCommonRoot   = "CRL issuer and certificate issuer do not share a common root."
)

var (
	oidValidityAssured = asn1.ObjectIdentifier{0, 4, 0, 194121, 2, 1}
	oidOCSPNoCheck     = asn1.ObjectIdentifier{1, 3, 6, 1, 5, 5, 7, 48, 1, 5}
)

// CertificateSource tells the validator in what role a certificate is being
// checked. Some short circuits only apply to specific roles.
type CertificateSource int

const (
	// SourceSigner is the signing certificate itself.
	SourceSigner CertificateSource = iota
	// SourceCertIssuer is an intermediate certificate of the signing chain.
	SourceCertIssuer
	// SourceOCSPIssuer is the certificate of an OCSP responder.
	SourceOCSPIssuer
	// SourceCRLIssuer is the certificate of a CRL issuer.
	SourceCRLIssuer
	// SourceTimestamp is the certificate of a timestamp authority.
	SourceTimestamp
)

// String returns the name of the source.
func (s CertificateSource) String() string {
	switch s {
	case SourceSigner:
		return "signer"
	case SourceCertIssuer:
		return "certificate issuer"
	case SourceOCSPIssuer:
		return "OCSP issuer"
	case SourceCRLIssuer:
		return "CRL issuer"
	case SourceTimestamp:
		return "timestamp"
	default:
		return "unknown"
	}
}

// OnlineFetching controls when the validator reaches out to OCSP responders
// and CRL distribution points over the network.
type OnlineFetching int

const (
	// FetchIfNoOtherDataAvailable goes online only when the registered
	// clients produced no usable data.
	FetchIfNoOtherDataAvailable OnlineFetching = iota
	// FetchAlways goes online in addition to the registered clients.
	FetchAlways
	// FetchNever restricts validation to the registered clients.
	FetchNever
)

// Validator checks the revocation status of a certificate against all
// available OCSP and CRL data, freshest first.
type Validator struct {
	ocspClients []OCSPClient
	crlClients  []CRLClient

	onlineFetching OnlineFetching
	fetcherConfig  *FetcherConfig

	ocspValidator *OCSPValidator
	crlValidator  *CRLValidator

	clock clockwork.Clock
}

// NewValidator creates a validator with no registered clients, default
// sub-validators, and online fetching enabled as a fallback.
func NewValidator() *Validator {
	return &Validator{
		onlineFetching: FetchIfNoOtherDataAvailable,
		fetcherConfig:  DefaultFetcherConfig(),
		ocspValidator:  NewOCSPValidator(),
		crlValidator:   NewCRLValidator(),
		clock:          clockwork.NewRealClock(),
	}
}

// AddOCSPClient registers an OCSP data source. Clients are consulted in
// registration order.
func (v *Validator) AddOCSPClient(client OCSPClient) *Validator {
	v.ocspClients = append(v.ocspClients, client)
	return v
}

// AddCRLClient registers a CRL data source. Clients are consulted in
// registration order.
func (v *Validator) AddCRLClient(client CRLClient) *Validator {
	v.crlClients = append(v.crlClients, client)
	return v
}

// WithOnlineFetching sets the online fetching policy.
func (v *Validator) WithOnlineFetching(mode OnlineFetching) *Validator {
	v.onlineFetching = mode
	return v
}

// WithFetcherConfig sets the configuration used for online fetching.
func (v *Validator) WithFetcherConfig(config *FetcherConfig) *Validator {
	v.fetcherConfig = config
	return v
}

// WithOCSPValidator replaces the OCSP sub-validator.
func (v *Validator) WithOCSPValidator(ov *OCSPValidator) *Validator {
	v.ocspValidator = ov
	return v
}

// WithCRLValidator replaces the CRL sub-validator.
func (v *Validator) WithCRLValidator(cv *CRLValidator) *Validator {
	v.crlValidator = cv
	return v
}

// WithClock replaces the time source, mainly for tests.
func (v *Validator) WithClock(clock clockwork.Clock) *Validator {
	v.clock = clock
	return v
}

// Validate determines the revocation status of cert, issued by issuer, in
// the given role at validationTime, and records the outcome on the report.
// Evidence is tried in order of decreasing thisUpdate; an inconclusive piece
// of evidence is demoted to informational items and the next one is tried.
func (v *Validator) Validate(report *ValidationReport, cert, issuer *x509.Certificate, source CertificateSource, validationTime time.Time) {
	if v.shortCircuit(report, cert, source) {
		return
	}

	ocsps := v.collectOCSP(report, cert, issuer)
	crls := v.collectCRL(report, cert)
	sortOCSPByFreshness(ocsps)
	sortCRLByFreshness(crls)

	i, j := 0, 0
	for i < len(ocsps) || j < len(crls) {
		scratch := NewValidationReport()

		useOCSP := i < len(ocsps) &&
			(j >= len(crls) || !ocsps[i].Response.ThisUpdate.Before(crls[j].List.ThisUpdate))
		if useOCSP {
			v.ocspValidator.Validate(scratch, cert, issuer, ocsps[i], validationTime)
			i++
		} else {
			v.crlValidator.Validate(scratch, cert, issuer, crls[j], validationTime)
			j++
		}

		if scratch.ValidationResult() != ResultIndeterminate {
			report.Merge(scratch)
			return
		}

		// Inconclusive. Keep the diagnostics around as informational
		// items and move on to the next piece of evidence, except for
		// the two messages that only mean "this data was not about
		// this certificate".
		for _, item := range scratch.Failures() {
			if item.Message == MsgSerialNumbersDoNotMatch || item.Message == MsgCRLIssuerNoCommonRoot {
				continue
			}
			report.AddItem(ReportItem{
				CheckName: item.CheckName,
				Message:   item.Message,
				Status:    StatusInfo,
				Cause:     item.Cause,
			})
		}
	}

	report.AddItem(ReportItem{
		CheckName: MsgRevocationDataCheck,
		Message:   MsgNoRevocationData,
		Status:    StatusIndeterminate,
	})
}

// shortCircuit handles certificates whose revocation status need not be
// checked at all. It records an informational item and reports true when
// validation can stop here.
func (v *Validator) shortCircuit(report *ValidationReport, cert *x509.Certificate, source CertificateSource) bool {
	if isSelfSigned(cert) {
		report.AddItem(ReportItem{
			CheckName: MsgRevocationDataCheck,
			Message:   MsgSelfSignedCertificate,
			Status:    StatusInfo,
		})
		return true
	}

	for _, ext := range cert.Extensions {
		if ext.Id.Equal(oidValidityAssured) {
			report.AddItem(ReportItem{
				CheckName: MsgRevocationDataCheck,
				Message:   MsgValidityAssured,
				Status:    StatusInfo,
			})
			return true
		}
		if source == SourceOCSPIssuer && ext.Id.Equal(oidOCSPNoCheck) {
			report.AddItem(ReportItem{
				CheckName: MsgRevocationDataCheck,
				Message:   MsgOCSPNoCheck,
				Status:    StatusInfo,
			})
			return true
		}
	}
	return false
}

func isSelfSigned(cert *x509.Certificate) bool {
	if !bytes.Equal(cert.RawIssuer, cert.RawSubject) {
		return false
	}
	return cert.CheckSignature(cert.SignatureAlgorithm, cert.RawTBSCertificate, cert.Signature) == nil
}

// collectOCSP gathers OCSP evidence from the registered clients and, policy
// permitting, from the responders named in the certificate. Responses that
// cannot be parsed are noted as informational items and skipped.
func (v *Validator) collectOCSP(report *ValidationReport, cert, issuer *x509.Certificate) []OCSPEvidence {
	var evidence []OCSPEvidence
	for _, client := range v.ocspClients {
		evidence = append(evidence, v.ocspEvidenceFrom(report, client, cert, issuer)...)
	}

	if v.onlineFetching == FetchAlways ||
		(v.onlineFetching == FetchIfNoOtherDataAvailable && len(evidence) == 0) {
		online := NewOnlineOCSPClient(v.fetcherConfig)
		evidence = append(evidence, v.ocspEvidenceFrom(report, online, cert, issuer)...)
	}
	return evidence
}

func (v *Validator) ocspEvidenceFrom(report *ValidationReport, client OCSPClient, cert, issuer *x509.Certificate) []OCSPEvidence {
	// In-memory clients carry pre-tagged evidence; use it directly so the
	// trusted generation dates survive.
	if vc, ok := client.(*ValidationOCSPClient); ok {
		return vc.Evidence()
	}

	raws, err := client.GetEncodedResponses(cert, issuer)
	if err != nil {
		report.AddItem(ReportItem{
			CheckName: MsgRevocationDataCheck,
			Message:   fmt.Sprintf("OCSP client failed: %v", err),
			Status:    StatusInfo,
			Cause:     err,
		})
		return nil
	}

	var evidence []OCSPEvidence
	for _, raw := range raws {
		resp, err := ocsp.ParseResponse(raw, nil)
		if err != nil {
			report.AddItem(ReportItem{
				CheckName: MsgRevocationDataCheck,
				Message:   MsgCannotParseOCSP,
				Status:    StatusInfo,
				Cause:     err,
			})
			continue
		}
		evidence = append(evidence, OCSPEvidence{
			Response:              resp,
			Raw:                   raw,
			TrustedGenerationDate: v.clock.Now(),
			Context:               ContextPresent,
		})
	}
	return evidence
}

// collectCRL gathers CRL evidence from the registered clients and, policy
// permitting, from the certificate's distribution points. CRLs that cannot
// be parsed are noted as informational items and skipped.
func (v *Validator) collectCRL(report *ValidationReport, cert *x509.Certificate) []CRLEvidence {
	var evidence []CRLEvidence
	for _, client := range v.crlClients {
		evidence = append(evidence, v.crlEvidenceFrom(report, client, cert)...)
	}

	if v.onlineFetching == FetchAlways ||
		(v.onlineFetching == FetchIfNoOtherDataAvailable && len(evidence) == 0) {
		online := NewOnlineCRLClient(v.fetcherConfig)
		evidence = append(evidence, v.crlEvidenceFrom(report, online, cert)...)
	}
	return evidence
}

func (v *Validator) crlEvidenceFrom(report *ValidationReport, client CRLClient, cert *x509.Certificate) []CRLEvidence {
	if vc, ok := client.(*ValidationCRLClient); ok {
		return vc.Evidence()
	}

	raws, err := client.GetEncodedCRLs(cert)
	if err != nil {
		report.AddItem(ReportItem{
			CheckName: MsgRevocationDataCheck,
			Message:   fmt.Sprintf("CRL client failed: %v", err),
			Status:    StatusInfo,
			Cause:     err,
		})
		return nil
	}

	var evidence []CRLEvidence
	for _, raw := range raws {
		list, err := x509.ParseRevocationList(raw)
		if err != nil {
			report.AddItem(ReportItem{
				CheckName: MsgRevocationDataCheck,
				Message:   MsgCannotParseCRL,
				Status:    StatusInfo,
				Cause:     err,
			})
			continue
		}
		evidence = append(evidence, CRLEvidence{
			List:                  list,
			Raw:                   raw,
			TrustedGenerationDate: v.clock.Now(),
			Context:               ContextPresent,
		})
	}
	return evidence
}
