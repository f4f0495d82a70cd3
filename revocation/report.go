// Package revocation collects OCSP and CRL evidence for certificates from
// multiple sources and reconciles it freshest-first into a validation
// verdict.
package revocation

import "fmt"

// ValidationResult is the aggregated outcome of a validation report.
type ValidationResult int

const (
	// ResultValid means no failures were recorded.
	ResultValid ValidationResult = iota
	// ResultInvalid means at least one check failed conclusively.
	ResultInvalid
	// ResultIndeterminate means a check could not reach a conclusion.
	ResultIndeterminate
)

// String returns the result name.
func (r ValidationResult) String() string {
	switch r {
	case ResultValid:
		return "VALID"
	case ResultInvalid:
		return "INVALID"
	case ResultIndeterminate:
		return "INDETERMINATE"
	default:
		return "UNKNOWN"
	}
}

// ItemStatus is the severity of a single report item.
type ItemStatus int

const (
	// StatusInfo records information without affecting the outcome.
	StatusInfo ItemStatus = iota
	// StatusInvalid records a conclusive failure.
	StatusInvalid
	// StatusIndeterminate records an inconclusive check.
	StatusIndeterminate
)

// String returns the status name.
func (s ItemStatus) String() string {
	switch s {
	case StatusInfo:
		return "INFO"
	case StatusInvalid:
		return "INVALID"
	case StatusIndeterminate:
		return "INDETERMINATE"
	default:
		return "UNKNOWN"
	}
}

// ReportItem is a single diagnostic recorded during validation.
type ReportItem struct {
	CheckName string
	Message   string
	Status    ItemStatus
	Cause     error
}

// String returns a readable form of the item.
func (i ReportItem) String() string {
	if i.Cause != nil {
		return fmt.Sprintf("[%s] %s: %s (%v)", i.Status, i.CheckName, i.Message, i.Cause)
	}
	return fmt.Sprintf("[%s] %s: %s", i.Status, i.CheckName, i.Message)
}

// ValidationReport accumulates the diagnostics of a validation run.
type ValidationReport struct {
	items []ReportItem
}

// NewValidationReport creates an empty report.
func NewValidationReport() *ValidationReport {
	return &ValidationReport{}
}

// AddItem appends a diagnostic to the report.
func (r *ValidationReport) AddItem(item ReportItem) {
	r.items = append(r.items, item)
}

// Items returns all recorded diagnostics.
func (r *ValidationReport) Items() []ReportItem {
	return r.items
}

// Failures returns the diagnostics with a non-informational status.
func (r *ValidationReport) Failures() []ReportItem {
	var failures []ReportItem
	for _, item := range r.items {
		if item.Status != StatusInfo {
			failures = append(failures, item)
		}
	}
	return failures
}

// Merge appends all items of another report.
func (r *ValidationReport) Merge(other *ValidationReport) {
	r.items = append(r.items, other.items...)
}

// ValidationResult aggregates the item statuses: any invalid item makes the
// report invalid, otherwise any indeterminate item makes it indeterminate.
func (r *ValidationReport) ValidationResult() ValidationResult {
	result := ResultValid
	for _, item := range r.items {
		switch item.Status {
		case StatusInvalid:
			return ResultInvalid
		case StatusIndeterminate:
			result = ResultIndeterminate
		}
	}
	return result
}
