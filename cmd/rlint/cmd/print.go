package cmd

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/aledsdavies/rlint/diag"
)

var (
	severityColor = map[diag.Severity]*color.Color{
		diag.Error:   color.New(color.FgRed, color.Bold),
		diag.Warning: color.New(color.FgYellow, color.Bold),
		diag.Info:    color.New(color.FgCyan),
		diag.Style:   color.New(color.FgHiBlack),
	}
)

// printDiagnostics writes a human-readable rendering of diags to w, one
// line per diagnostic, 1-indexed for humans — the internal 0-based
// positions are adjusted only here, at the print boundary.
func printDiagnostics(w io.Writer, path string, diags []diag.Diagnostic) {
	for _, d := range diags {
		sev := severityColor[d.Severity]
		fmt.Fprintf(w, "%s:%d:%d: %s: %s\n",
			path,
			d.Range.Start.Row+1,
			d.Range.Start.Column+1,
			sev.Sprint(d.Severity.String()),
			d.Message,
		)
	}
}
