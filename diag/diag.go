// Package diag implements the diagnostic sink: a typed accumulator for the
// lint items the parser and resolver produce, with an error cap and an
// on/off switch for style-severity diagnostics.
package diag

import (
	"fmt"
	"sort"

	"github.com/aledsdavies/rlint/token"
)

// Severity is the closed set of diagnostic severities.
type Severity int

const (
	Style Severity = iota
	Info
	Warning
	Error
)

func (s Severity) String() string {
	switch s {
	case Style:
		return "style"
	case Info:
		return "info"
	case Warning:
		return "warning"
	case Error:
		return "error"
	default:
		return "unknown"
	}
}

// Diagnostic is a single lint item: a half-open source range, a severity,
// and a human-readable message.
type Diagnostic struct {
	Range    token.Range
	Severity Severity
	Message  string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: %s: %s", d.Range, d.Severity, d.Message)
}

// Sink accumulates diagnostics for a single analysis pass. It is not safe
// for concurrent use — each Parse/Lint call constructs its own Sink.
type Sink struct {
	items            []Diagnostic
	errorCount       int
	maxErrors        int
	recordStyleLint  bool
	stopped          bool
}

// NewSink creates a Sink. maxErrors <= 0 falls back to the default of 1000,
// matching options.max_errors's documented default.
func NewSink(maxErrors int, recordStyleLint bool) *Sink {
	if maxErrors <= 0 {
		maxErrors = 1000
	}
	return &Sink{maxErrors: maxErrors, recordStyleLint: recordStyleLint}
}

// Stopped reports whether the error cap has already been hit; once true,
// the parser core should stop driving further tokens through the sink.
func (s *Sink) Stopped() bool { return s.stopped }

// Add records a diagnostic. Style diagnostics are dropped when style
// recording is off. Once the error cap is hit, a single "too many errors"
// diagnostic is appended and every subsequent Add (of any severity) is a
// no-op — this is what makes the error cap test property exact: precisely
// max_errors+1 error-severity diagnostics, none after.
func (s *Sink) Add(d Diagnostic) {
	if s.stopped {
		return
	}
	if d.Severity == Style && !s.recordStyleLint {
		return
	}

	if d.Severity == Error {
		if s.errorCount >= s.maxErrors {
			s.items = append(s.items, Diagnostic{
				Range:    d.Range,
				Severity: Error,
				Message:  "too many errors emitted; stopping now",
			})
			s.errorCount++
			s.stopped = true
			return
		}
		s.errorCount++
	}

	s.items = append(s.items, d)
}

// ErrorCount returns the number of error-severity diagnostics recorded so
// far, including the cap's own terminal diagnostic once stopped.
func (s *Sink) ErrorCount() int { return s.errorCount }

// HasErrors reports whether any error-severity diagnostic was recorded.
func (s *Sink) HasErrors() bool { return s.errorCount > 0 }

// Diagnostics returns the accumulated diagnostics sorted by start position,
// per the resolver's determinism contract.
func (s *Sink) Diagnostics() []Diagnostic {
	out := make([]Diagnostic, len(s.items))
	copy(out, s.items)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Range.Start.Less(out[j].Range.Start)
	})
	return out
}

// The following helpers build the exact diagnostics named in the error
// handling taxonomy. Keeping message construction here (rather than
// scattered across the parser/resolver) keeps wording consistent.

func UnexpectedToken(r token.Range, got string, expected string) Diagnostic {
	msg := fmt.Sprintf("unexpected token '%s'", got)
	if expected != "" {
		msg += ", expected " + expected
	}
	return Diagnostic{Range: r, Severity: Error, Message: msg}
}

func UnexpectedClosingBracket(r token.Range, got string) Diagnostic {
	return Diagnostic{Range: r, Severity: Error, Message: fmt.Sprintf("unexpected closing bracket '%s'", got)}
}

func UnmatchedBracketHere(r token.Range, opener string) Diagnostic {
	return Diagnostic{Range: r, Severity: Info, Message: fmt.Sprintf("unmatched bracket '%s' here", opener)}
}

func UnexpectedEndOfDocument(r token.Range) Diagnostic {
	return Diagnostic{Range: r, Severity: Error, Message: "unexpected end of document"}
}

func NoSymbolNamed(r token.Range, symbol string, candidate string) Diagnostic {
	msg := fmt.Sprintf("no symbol named '%s' in scope", symbol)
	if candidate != "" {
		msg += fmt.Sprintf("; did you mean '%s'?", candidate)
	}
	return Diagnostic{Range: r, Severity: Warning, Message: msg}
}

func DefinedAfterUsage(r token.Range, symbol string) Diagnostic {
	return Diagnostic{Range: r, Severity: Info, Message: fmt.Sprintf("'%s' is defined after it is used", symbol)}
}

func ExpectedWhitespace(r token.Range) Diagnostic {
	return Diagnostic{Range: r, Severity: Style, Message: "expected whitespace"}
}

func UnnecessaryWhitespace(r token.Range) Diagnostic {
	return Diagnostic{Range: r, Severity: Style, Message: "unnecessary whitespace"}
}
