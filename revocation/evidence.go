package revocation

import (
	"crypto/x509"
	"sort"
	"time"

	"golang.org/x/crypto/ocsp"
)

// TimeBasedContext tags revocation evidence with its temporal origin:
// historical evidence was embedded in or archived with the signature,
// present evidence was fetched during the current validation run.
type TimeBasedContext int

const (
	// ContextHistorical marks evidence produced at signing or archival time.
	ContextHistorical TimeBasedContext = iota
	// ContextPresent marks freshly fetched evidence.
	ContextPresent
)

// String returns the context name.
func (c TimeBasedContext) String() string {
	if c == ContextPresent {
		return "present"
	}
	return "historical"
}

// OCSPEvidence wraps one parsed OCSP single response together with the date
// it is trusted to have been produced and its temporal context. Evidence is
// immutable once constructed.
type OCSPEvidence struct {
	Response              *ocsp.Response
	Raw                   []byte
	TrustedGenerationDate time.Time
	Context               TimeBasedContext
}

// CRLEvidence wraps one parsed CRL together with the date it is trusted to
// have been produced and its temporal context.
type CRLEvidence struct {
	List                  *x509.RevocationList
	Raw                   []byte
	TrustedGenerationDate time.Time
	Context               TimeBasedContext
}

// sortOCSPByFreshness orders OCSP evidence descending by this-update.
func sortOCSPByFreshness(evidence []OCSPEvidence) {
	sort.SliceStable(evidence, func(i, j int) bool {
		return evidence[i].Response.ThisUpdate.After(evidence[j].Response.ThisUpdate)
	})
}

// sortCRLByFreshness orders CRL evidence descending by this-update.
func sortCRLByFreshness(evidence []CRLEvidence) {
	sort.SliceStable(evidence, func(i, j int) bool {
		return evidence[i].List.ThisUpdate.After(evidence[j].List.ThisUpdate)
	})
}
