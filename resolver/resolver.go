// Package resolver walks a completed scope tree and reports references that
// no definition — local, ancestor, or externally supplied — accounts for.
package resolver

import (
	"sort"

	"github.com/aledsdavies/rlint/diag"
	"github.com/aledsdavies/rlint/scope"
	"github.com/aledsdavies/rlint/token"
)

// unresolved is one reference position that the visibility rule could not
// account for, kept alongside the node it was recorded in so step 4 (the
// defined-after-usage check) can consult that same node's Defined map.
type unresolved struct {
	node   *scope.Node
	symbol string
	pos    token.Position
}

// Resolve runs the four-step algorithm against root: collect every
// unresolved reference via a deterministic parent-before-children,
// insertion-order traversal; drop anything present in externals; emit a
// "no symbol named" warning (with a case-insensitive suggestion when one
// exists) for what remains; and emit a "defined after it is used" info for
// any same-scope definition that comes later. The returned diagnostics are
// sorted by start position.
func Resolve(root *scope.Node, externals map[string]struct{}) []diag.Diagnostic {
	var items []unresolved

	root.Walk(func(n *scope.Node) {
		for symbol, positions := range n.Referenced {
			for _, pos := range positions {
				if n.Resolves(symbol, pos) {
					continue
				}
				items = append(items, unresolved{node: n, symbol: symbol, pos: pos})
			}
		}
	})

	var out []diag.Diagnostic
	for _, item := range items {
		if _, ok := externals[item.symbol]; ok {
			continue
		}

		candidate, _ := item.node.SuggestSimilarSymbolFor(item.symbol)
		r := token.Range{Start: item.pos, End: item.pos}
		out = append(out, diag.NoSymbolNamed(r, item.symbol, candidate))

		for _, defPos := range item.node.DefinedAfter(item.symbol, item.pos) {
			defRange := token.Range{Start: defPos, End: defPos}
			out = append(out, diag.DefinedAfterUsage(defRange, item.symbol))
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Range.Start.Less(out[j].Range.Start)
	})
	return out
}
