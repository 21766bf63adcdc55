package musicxml

import (
	"fmt"
	"log/slog"
)

// Code classifies a recoverable import problem.
type Code string

const (
	CodeInvalidNumber     Code = "invalid-number"
	CodeUnknownValue      Code = "unknown-value"
	CodeMissingDuration   Code = "missing-duration"
	CodeMissingPitch      Code = "missing-pitch"
	CodeTupletDiscarded   Code = "tuplet-discarded"
	CodeTupletUnclosed    Code = "tuplet-unclosed"
	CodeTupletUnopened    Code = "tuplet-unopened"
	CodeTupletMismatch    Code = "tuplet-ratio-mismatch"
	CodeBeamUnclosed      Code = "beam-unclosed"
	CodeEmptyChord        Code = "empty-chord"
	CodeOrphanChordNote   Code = "orphan-chord-note"
	CodeUnmatchedSpanner  Code = "unmatched-spanner"
	CodeUndeclaredPart    Code = "undeclared-part"
	CodeIncompleteHarmony Code = "incomplete-harmony"
	CodeUnknownDirection  Code = "unknown-direction"
)

// Diagnostic is one recoverable problem found during import. Part and
// Measure locate it when known.
type Diagnostic struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
	Part    string `json:"part,omitempty"`
	Measure string `json:"measure,omitempty"`
}

func (d Diagnostic) String() string {
	switch {
	case d.Part != "" && d.Measure != "":
		return fmt.Sprintf("%s (part %s, measure %s): %s", d.Code, d.Part, d.Measure, d.Message)
	case d.Part != "":
		return fmt.Sprintf("%s (part %s): %s", d.Code, d.Part, d.Message)
	}
	return fmt.Sprintf("%s: %s", d.Code, d.Message)
}

// Diagnostics is the ordered list of problems from one import.
type Diagnostics []Diagnostic

// Count returns how many diagnostics carry code.
func (ds Diagnostics) Count(code Code) int {
	n := 0
	for _, d := range ds {
		if d.Code == code {
			n++
		}
	}
	return n
}

// Has reports whether any diagnostic carries code.
func (ds Diagnostics) Has(code Code) bool { return ds.Count(code) > 0 }

// reporter accumulates diagnostics for one import and tracks the current
// location.
type reporter struct {
	list    Diagnostics
	part    string
	measure string
	logger  *slog.Logger
}

func (r *reporter) at(part, measure string) {
	r.part = part
	r.measure = measure
}

func (r *reporter) warn(code Code, format string, args ...any) {
	d := Diagnostic{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Part:    r.part,
		Measure: r.measure,
	}
	r.list = append(r.list, d)
	if r.logger != nil {
		r.logger.Debug("musicxml: "+d.Message,
			slog.String("code", string(code)),
			slog.String("part", d.Part),
			slog.String("measure", d.Measure))
	}
}
