package revocation

import (
	"errors"
	"strings"
	"testing"
)

func TestValidationResultPrecedence(t *testing.T) {
	report := NewValidationReport()
	if got := report.ValidationResult(); got != ResultValid {
		t.Fatalf("empty report: got %v, want %v", got, ResultValid)
	}

	report.AddItem(ReportItem{CheckName: "check", Message: "note", Status: StatusInfo})
	if got := report.ValidationResult(); got != ResultValid {
		t.Fatalf("info only: got %v, want %v", got, ResultValid)
	}

	report.AddItem(ReportItem{CheckName: "check", Message: "unclear", Status: StatusIndeterminate})
	if got := report.ValidationResult(); got != ResultIndeterminate {
		t.Fatalf("with indeterminate: got %v, want %v", got, ResultIndeterminate)
	}

	report.AddItem(ReportItem{CheckName: "check", Message: "bad", Status: StatusInvalid})
	if got := report.ValidationResult(); got != ResultInvalid {
		t.Fatalf("with invalid: got %v, want %v", got, ResultInvalid)
	}
}

func TestReportFailuresExcludeInfo(t *testing.T) {
	report := NewValidationReport()
	report.AddItem(ReportItem{CheckName: "check", Message: "note", Status: StatusInfo})
	report.AddItem(ReportItem{CheckName: "check", Message: "unclear", Status: StatusIndeterminate})
	report.AddItem(ReportItem{CheckName: "check", Message: "bad", Status: StatusInvalid})

	failures := report.Failures()
	if len(failures) != 2 {
		t.Fatalf("got %d failures, want 2", len(failures))
	}
	for _, item := range failures {
		if item.Status == StatusInfo {
			t.Fatalf("info item reported as failure: %v", item)
		}
	}
}

func TestReportMerge(t *testing.T) {
	a := NewValidationReport()
	a.AddItem(ReportItem{CheckName: "check", Message: "first", Status: StatusInfo})

	b := NewValidationReport()
	b.AddItem(ReportItem{CheckName: "check", Message: "second", Status: StatusInvalid})

	a.Merge(b)
	if len(a.Items()) != 2 {
		t.Fatalf("got %d items after merge, want 2", len(a.Items()))
	}
	if got := a.ValidationResult(); got != ResultInvalid {
		t.Fatalf("got %v after merge, want %v", got, ResultInvalid)
	}
}

func TestReportItemString(t *testing.T) {
	item := ReportItem{
		CheckName: "Revocation data check.",
		Message:   "something happened",
		Status:    StatusIndeterminate,
		Cause:     errors.New("root cause"),
	}
	s := item.String()
	if !strings.Contains(s, "Revocation data check.") || !strings.Contains(s, "something happened") {
		t.Fatalf("item string missing fields: %q", s)
	}
}
