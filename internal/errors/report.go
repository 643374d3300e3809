package errors

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/sunholo/actor-ir/internal/ast"
)

// Report is the structured diagnostic every internal failure in this
// repository carries, generalizing the teacher's internal/errors.Report
// (Schema/Code/Phase/Message/Span/Data) to a Reason instead of a
// versioned Code, since there is no end-user code catalogue to key
// against (spec.md §1 Non-goals).
type Report struct {
	Schema  string         `json:"schema"`         // always "actor-ir.diagnostic/v1"
	Reason  Reason         `json:"reason"`
	Phase   string         `json:"phase"`          // "tailcall", "check", "await"
	Message string         `json:"message"`
	Span    *ast.Span      `json:"span,omitempty"`
	Data    map[string]any `json:"data,omitempty"`
}

// ReportError wraps a Report as an error so errors.As can recover the
// structure from an opaque error return.
type ReportError struct {
	Rep *Report
}

func (e *ReportError) Error() string {
	if e.Rep == nil {
		return "unknown error"
	}
	return e.Rep.Message
}

// AsReport attempts to extract a Report from an error chain.
func AsReport(err error) (*Report, bool) {
	var re *ReportError
	if errors.As(err, &re) {
		return re.Rep, true
	}
	return nil, false
}

// WrapReport wraps a Report as a ReportError.
func WrapReport(r *Report) error {
	if r == nil {
		return nil
	}
	return &ReportError{Rep: r}
}

// ToJSON converts a Report to JSON (deterministic, sorted keys by
// encoding/json's default struct-field order).
func (r *Report) ToJSON(compact bool) (string, error) {
	var data []byte
	var err error
	if compact {
		data, err = json.Marshal(r)
	} else {
		data, err = json.MarshalIndent(r, "", "  ")
	}
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// NewIllTyped builds the checker's single failure shape (spec §4.3.3,
// §6.3): "Ill-typed intermediate code after <phase>: <position>: IR
// type error: <text>".
func NewIllTyped(phase string, span ast.Span, reason Reason, text string) *Report {
	return &Report{
		Schema:  "actor-ir.diagnostic/v1",
		Reason:  reason,
		Phase:   phase,
		Message: fmt.Sprintf("Ill-typed intermediate code after %s: %s: IR type error: %s", phase, span, text),
		Span:    &span,
	}
}

// NewPrecondition builds a transform precondition-violation report
// (spec §7) — a bug in the transform itself or its input, never a user
// error.
func NewPrecondition(phase string, span ast.Span, text string) *Report {
	return &Report{
		Schema:  "actor-ir.diagnostic/v1",
		Reason:  ReasonPrecondition,
		Phase:   phase,
		Message: fmt.Sprintf("%s: precondition violated at %s: %s", phase, span, text),
		Span:    &span,
	}
}
