package rlint

import "github.com/aledsdavies/rlint/diag"

// JSONDiagnostic mirrors the flat RPC-facing diagnostic shape: a single
// object per diagnostic with dotted start/end keys rather than nested
// position objects, matching the JSON surface RPC consumers expect.
type JSONDiagnostic struct {
	StartRow    int    `json:"start.row"`
	StartColumn int    `json:"start.column"`
	EndRow      int    `json:"end.row"`
	EndColumn   int    `json:"end.column"`
	Text        string `json:"text"`
	Raw         string `json:"raw"`
	Type        string `json:"type"`
}

// ToJSON converts diagnostics to their RPC-facing form. Internally all
// positions are 0-based; humanOneBased adds 1 to every row/column, which
// callers should do only at the boundary where positions reach a human or
// a 1-based external protocol — the scope/diag packages themselves stay
// 0-based throughout.
func ToJSON(diags []diag.Diagnostic, humanOneBased bool) []JSONDiagnostic {
	offset := 0
	if humanOneBased {
		offset = 1
	}

	out := make([]JSONDiagnostic, len(diags))
	for i, d := range diags {
		out[i] = JSONDiagnostic{
			StartRow:    d.Range.Start.Row + offset,
			StartColumn: d.Range.Start.Column + offset,
			EndRow:      d.Range.End.Row + offset,
			EndColumn:   d.Range.End.Column + offset,
			Text:        d.Message,
			Raw:         d.Message,
			Type:        d.Severity.String(),
		}
	}
	return out
}
