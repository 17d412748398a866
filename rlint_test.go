package rlint

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/aledsdavies/rlint/diag"
)

func TestParseReturnsScopeAndDiagnostics(t *testing.T) {
	results := Parse("x <- 1\ny <- x\n", Options{})
	if results.HasErrors() {
		t.Fatalf("unexpected errors: %v", results.Diagnostics)
	}
	if _, ok := results.ScopeTree.Defined["x"]; !ok {
		t.Error("expected x defined in the returned scope tree")
	}
}

func TestParseErrorCountTracksErrorSeverityOnly(t *testing.T) {
	results := Parse("if x {}\n", Options{})
	if results.ErrorCount() == 0 {
		t.Error("expected at least one error for the missing '(' after if")
	}
	if !results.HasErrors() {
		t.Error("HasErrors should be true when ErrorCount > 0")
	}
}

func TestLintReportsUnresolvedReference(t *testing.T) {
	diags := Lint("y <- unknown_symbol\n", "file.R", nil, Options{})
	found := false
	for _, d := range diags {
		if d.Severity == diag.Warning {
			found = true
		}
	}
	if !found {
		t.Error("expected an unresolved-reference warning from Lint")
	}
}

func TestLintHonorsExternals(t *testing.T) {
	externals := map[string]struct{}{"print": {}}
	diags := Lint("print(1)\n", "file.R", externals, Options{})
	for _, d := range diags {
		if d.Severity == diag.Warning {
			t.Errorf("print should have been filtered by externals, got %v", d)
		}
	}
}

func TestLintMergesAndSortsParserAndResolverDiagnostics(t *testing.T) {
	diags := Lint("f(a\nb <- unresolved_name\n", "file.R", nil, Options{})
	for i := 1; i < len(diags); i++ {
		if diags[i].Range.Start.Less(diags[i-1].Range.Start) {
			t.Errorf("diagnostics not sorted: %v", diags)
			break
		}
	}
	var sawError, sawWarning bool
	for _, d := range diags {
		switch d.Severity {
		case diag.Error:
			sawError = true
		case diag.Warning:
			sawWarning = true
		}
	}
	if !sawError || !sawWarning {
		t.Errorf("expected both a parser error and a resolver warning, got %v", diags)
	}
}

func TestToJSONHumanOneBased(t *testing.T) {
	results := Parse("if x {}\n", Options{})
	out := ToJSON(results.Diagnostics, true)
	if len(out) == 0 {
		t.Fatal("expected at least one JSON diagnostic")
	}
	if out[0].StartRow < 1 || out[0].StartColumn < 1 {
		t.Errorf("human-facing JSON positions should be 1-based, got row=%d col=%d", out[0].StartRow, out[0].StartColumn)
	}
}

func TestToJSONZeroBased(t *testing.T) {
	results := Parse("if x {}\n", Options{})
	out := ToJSON(results.Diagnostics, false)
	if len(out) == 0 {
		t.Fatal("expected at least one JSON diagnostic")
	}
	if out[0].StartRow != results.Diagnostics[0].Range.Start.Row {
		t.Errorf("zero-based JSON row should match the internal position exactly")
	}
}

func TestParseDiagnosticMessagesForUnterminatedCall(t *testing.T) {
	results := Parse("f(a, b\n", Options{})

	var messages []string
	for _, d := range results.Diagnostics {
		messages = append(messages, d.Message)
	}

	want := []string{"unexpected end of document"}
	if diff := cmp.Diff(want, messages); diff != "" {
		t.Errorf("diagnostic messages mismatch (-want +got):\n%s", diff)
	}
}

func TestToJSONFieldShape(t *testing.T) {
	results := Parse("if x {}\n", Options{})
	out := ToJSON(results.Diagnostics, true)
	d := out[0]
	if d.Type == "" || d.Text == "" || d.Raw == "" {
		t.Errorf("expected Type/Text/Raw populated, got %+v", d)
	}
}
