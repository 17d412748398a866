package parser

import (
	"testing"

	"github.com/aledsdavies/rlint/diag"
	"github.com/aledsdavies/rlint/scope"
)

func run(src string, opts ...Opt) (*scope.Node, []diag.Diagnostic) {
	return New(src, opts...).Run()
}

func TestSimpleDefinitionAndReference(t *testing.T) {
	root, diags := run("x <- 1\ny <- x\n")
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	if _, ok := root.Defined["x"]; !ok {
		t.Error("expected x defined at root scope")
	}
	if _, ok := root.Defined["y"]; !ok {
		t.Error("expected y defined at root scope")
	}
	if _, ok := root.Referenced["x"]; !ok {
		t.Error("expected x referenced at root scope")
	}
}

func TestRightAssignDefinesTarget(t *testing.T) {
	root, _ := run("1 -> x\n")
	if _, ok := root.Defined["x"]; !ok {
		t.Error("-> must define its right-hand identifier")
	}
}

func TestSuperAssignArrows(t *testing.T) {
	root, _ := run("x <<- 1\n2 ->> y\n")
	if _, ok := root.Defined["x"]; !ok {
		t.Error("<<- must define x")
	}
	if _, ok := root.Defined["y"]; !ok {
		t.Error("->> must define y")
	}
}

func TestEqualsAtTopLevelDefines(t *testing.T) {
	root, _ := run("x = 1\n")
	if _, ok := root.Defined["x"]; !ok {
		t.Error("= at top level must define x")
	}
}

func TestEqualsInArgumentListIsNamedArgNotDefinition(t *testing.T) {
	root, _ := run("f(x = 1)\n")
	if _, ok := root.Defined["x"]; ok {
		t.Error("named-argument '=' inside a call must not define x")
	}
	if _, ok := root.Referenced["x"]; ok {
		t.Error("named-argument label must not be referenced either")
	}
}

func TestFunctionCreatesChildScopeWithFormals(t *testing.T) {
	root, _ := run("f <- function(a, b = 2) { a + b }\n")
	if len(root.Children) != 1 {
		t.Fatalf("expected one child scope for the function body, got %d", len(root.Children))
	}
	child := root.Children[0]
	if _, ok := child.Defined["a"]; !ok {
		t.Error("expected formal 'a' defined in the function's scope")
	}
	if _, ok := child.Defined["b"]; !ok {
		t.Error("expected formal 'b' defined in the function's scope")
	}
	if _, ok := child.Referenced["a"]; !ok {
		t.Error("expected 'a' referenced in the function body")
	}
	if _, ok := child.Referenced["b"]; !ok {
		t.Error("expected 'b' referenced in the function body")
	}
}

func TestFunctionDefaultValueEvaluatedInParentScope(t *testing.T) {
	root, _ := run("y <- 1\nf <- function(a, b = y) { a }\n")
	child := root.Children[0]
	if _, ok := child.Referenced["y"]; ok {
		t.Error("default-value reference to y must not be recorded in the child scope")
	}
	if _, ok := root.Referenced["y"]; !ok {
		t.Error("default-value reference to y must be recorded in the parent (defining) scope")
	}
}

func TestBodylessFunctionExpressionForm(t *testing.T) {
	root, _ := run("f <- function(a) a + 1\ng <- 2\n")
	if len(root.Children) != 1 {
		t.Fatalf("expected one function scope, got %d", len(root.Children))
	}
	if _, ok := root.Defined["g"]; !ok {
		t.Error("g must still be defined at top level after the bodyless function expression ends")
	}
}

func TestIfElseChaining(t *testing.T) {
	root, _ := run("if (a) {\n  x <- 1\n} else {\n  x <- 2\n}\n")
	if len(root.Defined["x"]) != 2 {
		t.Errorf("expected two definitions of x (one per branch), got %d", len(root.Defined["x"]))
	}
	if _, ok := root.Referenced["a"]; !ok {
		t.Error("expected condition 'a' referenced")
	}
}

func TestElseIfChaining(t *testing.T) {
	root, _ := run("if (a) {\n  x <- 1\n} else if (b) {\n  x <- 2\n} else {\n  x <- 3\n}\n")
	if len(root.Defined["x"]) != 3 {
		t.Errorf("expected three definitions of x across the else-if chain, got %d", len(root.Defined["x"]))
	}
	if _, ok := root.Referenced["b"]; !ok {
		t.Error("expected else-if condition 'b' referenced")
	}
}

func TestIfExpressionFormTerminatesOnNewline(t *testing.T) {
	root, _ := run("if (a) x <- 1\ny <- 2\n")
	if _, ok := root.Defined["x"]; !ok {
		t.Error("expected x defined inside the bodyless if")
	}
	if _, ok := root.Defined["y"]; !ok {
		t.Error("y must be defined at top level, not swallowed into the if's expression body")
	}
}

func TestForLoopDefinesLoopVariable(t *testing.T) {
	root, _ := run("for (i in xs) {\n  y <- i\n}\n")
	if _, ok := root.Defined["i"]; !ok {
		t.Error("expected the for-loop variable 'i' to be defined")
	}
	if _, ok := root.Referenced["xs"]; !ok {
		t.Error("expected the iterable 'xs' to be referenced")
	}
}

func TestWhileAndRepeatLoops(t *testing.T) {
	root, _ := run("while (cond) {\n  x <- 1\n}\nrepeat {\n  break\n}\n")
	if _, ok := root.Referenced["cond"]; !ok {
		t.Error("expected while condition referenced")
	}
	if _, ok := root.Defined["x"]; !ok {
		t.Error("expected x defined in the while body")
	}
}

func TestNamespaceQualifiedReferenceDoesNotResolveLocally(t *testing.T) {
	root, _ := run("pkg::foo()\n")
	if _, ok := root.Referenced["foo"]; ok {
		t.Error("pkg::foo must not be recorded as an ordinary reference to foo")
	}
	if _, ok := root.InternalQualified["pkg"]["foo"]; !ok {
		t.Error("expected foo recorded under InternalQualified[pkg]")
	}
}

func TestExportedNamespaceQualifiedReference(t *testing.T) {
	root, _ := run("pkg:::bar\n")
	if _, ok := root.ExportedQualified["pkg"]["bar"]; !ok {
		t.Error("expected bar recorded under ExportedQualified[pkg]")
	}
}

func TestBacktickIdentifierNormalizedForScope(t *testing.T) {
	root, _ := run("`my var` <- 1\nx <- `my var`\n")
	if _, ok := root.Defined["my var"]; !ok {
		t.Error("expected the backtick identifier's stripped form defined")
	}
	if _, ok := root.Referenced["my var"]; !ok {
		t.Error("expected the backtick identifier's stripped form referenced")
	}
}

func TestNSEFunctionSuppressesArgumentReferences(t *testing.T) {
	root, _ := run("library(dplyr)\n")
	if _, ok := root.Referenced["dplyr"]; ok {
		t.Error("library()'s argument must not be recorded as a reference")
	}
}

func TestNSESuppressionDoesNotLeakToSiblingCalls(t *testing.T) {
	root, _ := run("library(dplyr)\nf(x)\n")
	if _, ok := root.Referenced["x"]; !ok {
		t.Error("a later ordinary call's argument must still be referenced")
	}
}

func TestOrdinaryCallArgumentsAreReferenced(t *testing.T) {
	root, _ := run("f(x, y)\n")
	if _, ok := root.Referenced["x"]; !ok {
		t.Error("expected x referenced as a call argument")
	}
	if _, ok := root.Referenced["y"]; !ok {
		t.Error("expected y referenced as a call argument")
	}
}

func TestIndexingReferencesSubject(t *testing.T) {
	root, _ := run("v[1]\nw[[2]]\n")
	if _, ok := root.Referenced["v"]; !ok {
		t.Error("expected v referenced before [")
	}
	if _, ok := root.Referenced["w"]; !ok {
		t.Error("expected w referenced before [[")
	}
}

func TestMismatchedClosingBracketStillPopsAndDiagnoses(t *testing.T) {
	_, diags := run("f(a]\n")
	found := false
	for _, d := range diags {
		if d.Severity == diag.Error {
			found = true
		}
	}
	if !found {
		t.Error("expected an error diagnostic for the mismatched closing bracket")
	}
}

func TestUnterminatedConstructReportsEndOfDocumentOnce(t *testing.T) {
	_, diags := run("f(a, b\n")
	count := 0
	for _, d := range diags {
		if d.Message == "unexpected end of document" {
			count++
		}
	}
	if count != 1 {
		t.Errorf("expected exactly one unexpected-end-of-document diagnostic, got %d", count)
	}
}

func TestNestedUnterminatedConstructsEachReportOnce(t *testing.T) {
	_, diags := run("f(g(h(x\n")
	count := 0
	for _, d := range diags {
		if d.Message == "unexpected end of document" {
			count++
		}
	}
	if count != 3 {
		t.Errorf("expected one unexpected-end-of-document diagnostic per unterminated opener, got %d", count)
	}
}

func TestMissingOpenParenAfterIfEmitsDiagnostic(t *testing.T) {
	_, diags := run("if x { }\n")
	if len(diags) == 0 {
		t.Error("expected a diagnostic for a missing '(' after if")
	}
}

func TestStyleLintOffByDefault(t *testing.T) {
	_, diags := run("x<-1\n")
	for _, d := range diags {
		if d.Severity == diag.Style {
			t.Errorf("style diagnostics must be off by default, got %v", d)
		}
	}
}

func TestStyleLintFlagsMissingSpaceAroundArrow(t *testing.T) {
	_, diags := run("x<-1\n", WithRecordStyleLint())
	found := false
	for _, d := range diags {
		if d.Severity == diag.Style {
			found = true
		}
	}
	if !found {
		t.Error("expected a style diagnostic for '<-' with no surrounding space")
	}
}

func TestStyleLintFlagsUnnecessarySpaceAroundNamespaceOperator(t *testing.T) {
	_, diags := run("pkg :: foo\n", WithRecordStyleLint())
	found := false
	for _, d := range diags {
		if d.Severity == diag.Style {
			found = true
		}
	}
	if !found {
		t.Error("expected a style diagnostic for space around '::'")
	}
}

func TestMaxErrorsCapsParserDiagnostics(t *testing.T) {
	_, diags := run("]]]]]]]]]]\n", WithMaxErrors(3))
	errCount := 0
	for _, d := range diags {
		if d.Severity == diag.Error {
			errCount++
		}
	}
	if errCount != 4 {
		t.Errorf("error count = %d, want maxErrors+1 = 4", errCount)
	}
}
