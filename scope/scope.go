// Package scope implements the lexical scope tree the parser builds in
// place of a full AST: one node per root/function-body scope, each holding
// maps of defined and referenced symbol names to their ordered positions.
package scope

import (
	"sort"
	"strings"

	"github.com/aledsdavies/rlint/token"
)

// Node is a lexical scope frame. Children are owned exclusively by their
// parent (the root transitively owns the whole tree); Parent is a
// non-owning back-reference, so the tree has no reference cycles in the
// ownership sense even though node<->parent pointers are mutual.
type Node struct {
	Name     string
	OpenPos  token.Position
	Parent   *Node
	Children []*Node

	// Defined and Referenced map a symbol's original-cased spelling to the
	// ordered sequence of positions it was defined/referenced at within
	// this scope (not including descendant scopes).
	Defined    map[string][]token.Position
	Referenced map[string][]token.Position

	// InternalQualified and ExportedQualified map a package name to the set
	// of names referenced as pkg::name / pkg:::name respectively. These are
	// recorded separately from Referenced and never participate in
	// unresolved-reference resolution.
	InternalQualified map[string]map[string]struct{}
	ExportedQualified map[string]map[string]struct{}
}

// NewRoot creates the root scope node, opened at the origin position.
func NewRoot() *Node {
	return newNode("<root>", token.Position{}, nil)
}

func newNode(name string, openPos token.Position, parent *Node) *Node {
	return &Node{
		Name:              name,
		OpenPos:           openPos,
		Parent:            parent,
		Defined:           make(map[string][]token.Position),
		Referenced:        make(map[string][]token.Position),
		InternalQualified: make(map[string]map[string]struct{}),
		ExportedQualified: make(map[string]map[string]struct{}),
	}
}

// NewChild creates a new function-body scope opened at openPos, appends it
// to n's children in order, and returns it. Only function literals spawn
// scopes (braced or single-expression bodies alike) — bare braces are
// blocks, not scopes.
func (n *Node) NewChild(name string, openPos token.Position) *Node {
	child := newNode(name, openPos, n)
	n.Children = append(n.Children, child)
	return child
}

// Define records name as defined at pos in this scope.
func (n *Node) Define(name string, pos token.Position) {
	n.Defined[name] = append(n.Defined[name], pos)
}

// Reference records name as referenced at pos in this scope.
func (n *Node) Reference(name string, pos token.Position) {
	n.Referenced[name] = append(n.Referenced[name], pos)
}

// ReferenceInternalQualified records a pkg::name reference. It never
// contributes to Referenced — qualified references are resolved against
// the named package, not the local scope chain.
func (n *Node) ReferenceInternalQualified(pkg, name string) {
	addQualified(n.InternalQualified, pkg, name)
}

// ReferenceExportedQualified records a pkg:::name reference.
func (n *Node) ReferenceExportedQualified(pkg, name string) {
	addQualified(n.ExportedQualified, pkg, name)
}

func addQualified(m map[string]map[string]struct{}, pkg, name string) {
	set, ok := m[pkg]
	if !ok {
		set = make(map[string]struct{})
		m[pkg] = set
	}
	set[name] = struct{}{}
}

// Resolves reports whether a reference to name at pos is visible from this
// scope: either this scope itself defines name at a position ≤ pos
// (same-scope visibility is order-dependent), or any ancestor (including
// root) defines name at any position at all (ancestor visibility is total).
func (n *Node) Resolves(name string, pos token.Position) bool {
	if positions, ok := n.Defined[name]; ok {
		for _, p := range positions {
			if p.LessEq(pos) {
				return true
			}
		}
	}
	for anc := n.Parent; anc != nil; anc = anc.Parent {
		if len(anc.Defined[name]) > 0 {
			return true
		}
	}
	return false
}

// DefinedAfter returns, in ascending order, every position at which name is
// defined in this scope strictly after pos. Used by the resolver to emit
// "defined after it is used" info diagnostics.
func (n *Node) DefinedAfter(name string, pos token.Position) []token.Position {
	var after []token.Position
	for _, p := range n.Defined[name] {
		if pos.Less(p) {
			after = append(after, p)
		}
	}
	sort.Slice(after, func(i, j int) bool { return after[i].Less(after[j]) })
	return after
}

// SuggestSimilarSymbolFor searches this node, then its ancestors in order —
// mirroring the original implementation's recursive parent walk rather than
// a single-scope check — for a defined symbol whose lowercase spelling
// matches name's but whose casing differs. When a scope has more than one
// such candidate, the alphabetically first is returned, keeping the choice
// deterministic across runs.
func (n *Node) SuggestSimilarSymbolFor(name string) (string, bool) {
	lower := strings.ToLower(name)
	for node := n; node != nil; node = node.Parent {
		var candidates []string
		for defined := range node.Defined {
			if defined != name && strings.ToLower(defined) == lower {
				candidates = append(candidates, defined)
			}
		}
		if len(candidates) > 0 {
			sort.Strings(candidates)
			return candidates[0], true
		}
	}
	return "", false
}

// Walk visits n and every descendant in parent-before-children,
// insertion-order order — the traversal order the resolver's determinism
// contract requires.
func (n *Node) Walk(visit func(*Node)) {
	visit(n)
	for _, child := range n.Children {
		child.Walk(visit)
	}
}
