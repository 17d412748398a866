// Package rlint is the public entry point: Parse runs the tokenizer and
// parser core to produce a scope tree and diagnostics; Lint additionally
// runs the resolver against a caller-supplied external-symbol set.
package rlint

import (
	"sort"

	"github.com/aledsdavies/rlint/diag"
	"github.com/aledsdavies/rlint/parser"
	"github.com/aledsdavies/rlint/resolver"
	"github.com/aledsdavies/rlint/scope"
)

// Options configures a Parse or Lint call.
type Options struct {
	// RecordStyleLint turns on whitespace-style diagnostics. Default false.
	RecordStyleLint bool
	// MaxErrors caps the number of error-severity diagnostics before the
	// pass stops early. Zero or negative falls back to 1000.
	MaxErrors int
}

func (o Options) toParserOpts() []parser.Opt {
	var opts []parser.Opt
	if o.RecordStyleLint {
		opts = append(opts, parser.WithRecordStyleLint())
	}
	if o.MaxErrors > 0 {
		opts = append(opts, parser.WithMaxErrors(o.MaxErrors))
	}
	return opts
}

// ParseResults is the result of a Parse call: the root of the scope tree
// the pass built, plus every diagnostic the tokenizer and parser recorded.
type ParseResults struct {
	ScopeTree   *scope.Node
	Diagnostics []diag.Diagnostic
}

// ErrorCount returns the number of error-severity diagnostics.
func (r ParseResults) ErrorCount() int {
	n := 0
	for _, d := range r.Diagnostics {
		if d.Severity == diag.Error {
			n++
		}
	}
	return n
}

// HasErrors reports whether any error-severity diagnostic was recorded.
func (r ParseResults) HasErrors() bool { return r.ErrorCount() > 0 }

// Parse tokenizes and parses source, returning the scope tree it built and
// every diagnostic recorded along the way. It is a synchronous, pure
// function of its inputs: no I/O, no shared state across calls.
func Parse(source string, opts Options) ParseResults {
	p := parser.New(source, opts.toParserOpts()...)
	root, diags := p.Run()
	return ParseResults{ScopeTree: root, Diagnostics: diags}
}

// Lint runs Parse, then runs the resolver against externals and merges its
// warning/info diagnostics into the parser's own, sorted by start
// position. originPath is metadata only — the resolver never inspects it;
// callers may use it (e.g. via internal/symbolsource) to decide which
// external-symbol manifest to load before calling Lint.
func Lint(source, originPath string, externals map[string]struct{}, opts Options) []diag.Diagnostic {
	_ = originPath

	results := Parse(source, opts)
	resolved := resolver.Resolve(results.ScopeTree, externals)

	all := make([]diag.Diagnostic, 0, len(results.Diagnostics)+len(resolved))
	all = append(all, results.Diagnostics...)
	all = append(all, resolved...)

	sort.SliceStable(all, func(i, j int) bool {
		return all[i].Range.Start.Less(all[j].Range.Start)
	})
	return all
}
