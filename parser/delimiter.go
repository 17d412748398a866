package parser

import (
	"github.com/aledsdavies/rlint/diag"
	"github.com/aledsdavies/rlint/token"
)

// delimiterStack is a LIFO of open-delimiter tokens, generalized from the
// teacher's bracket tracker to the four delimiter kinds this language
// needs: paren, brace, bracket, double-bracket.
type delimiterStack struct {
	stack []token.Token
}

// push records an opening delimiter token.
func (d *delimiterStack) push(tok token.Token) {
	d.stack = append(d.stack, tok)
}

// empty reports whether the stack holds no open delimiters.
func (d *delimiterStack) empty() bool { return len(d.stack) == 0 }

// pop consults the top against the closing token's complement. If the top
// is empty or does not complement closer, it emits an unexpected-closing-
// bracket error (with an unmatched-bracket info pointing at the mismatched
// opener, when one exists) and still pops whatever was on top, per the
// delimiter-stack rule: mismatches are diagnosed but never halt parsing.
func (d *delimiterStack) pop(closer token.Token, sink *diag.Sink) {
	wantOpen, hasComplement := closer.Kind.Complement()
	if !hasComplement {
		return
	}

	if len(d.stack) == 0 {
		sink.Add(diag.UnexpectedClosingBracket(closer.Range(), closer.String()))
		return
	}

	top := d.stack[len(d.stack)-1]
	d.stack = d.stack[:len(d.stack)-1]

	if top.Kind != wantOpen {
		sink.Add(diag.UnexpectedClosingBracket(closer.Range(), closer.String()))
		sink.Add(diag.UnmatchedBracketHere(top.Range(), top.String()))
	}
}

// drain emits "unexpected end of document" for every residual open
// delimiter, in the order they were opened (outermost first), and empties
// the stack.
func (d *delimiterStack) drain(sink *diag.Sink, eofPos token.Position) {
	eofRange := token.Range{Start: eofPos, End: eofPos}
	for range d.stack {
		sink.Add(diag.UnexpectedEndOfDocument(eofRange))
	}
	d.stack = nil
}
