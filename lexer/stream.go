package lexer

import "github.com/aledsdavies/rlint/token"

// FoldTrivia collapses a full, lossless token slice (as produced by
// Lexer.Tokenize) into the significant-only subsequence the parser
// consumes, folding each run of Whitespace/Newline/Comment tokens into the
// SpaceBefore/NewlineBefore flags of the token that follows it.
func FoldTrivia(tokens []token.Token) []token.Token {
	folded := make([]token.Token, 0, len(tokens))

	spaceBefore := false
	newlineBefore := false

	for _, tok := range tokens {
		if tok.Kind.IsTrivia() {
			if tok.Kind == token.Newline {
				newlineBefore = true
			} else if tok.Kind == token.Whitespace {
				spaceBefore = true
			}
			continue
		}

		tok.SpaceBefore = spaceBefore
		tok.NewlineBefore = newlineBefore
		folded = append(folded, tok)

		spaceBefore = false
		newlineBefore = false
	}

	return folded
}

// TokenStream is a cursor over a folded (trivia-free) token slice, used by
// the parser core. It supports one-token lookahead, which is all the
// grammar's state-stack transitions need.
type TokenStream struct {
	tokens []token.Token
	idx    int
}

// NewTokenStream wraps an already-folded token slice. Callers scanning raw
// source should pass lexer.FoldTrivia(lex.Tokenize()).
func NewTokenStream(folded []token.Token) *TokenStream {
	if len(folded) == 0 || folded[len(folded)-1].Kind != token.EOF {
		folded = append(folded, token.Token{Kind: token.EOF})
	}
	return &TokenStream{tokens: folded}
}

// Peek returns the current token without consuming it.
func (s *TokenStream) Peek() token.Token { return s.tokens[s.idx] }

// PeekAt returns the token n positions ahead of the current one (0 == Peek),
// clamped to the final EOF token if n runs past the end.
func (s *TokenStream) PeekAt(n int) token.Token {
	i := s.idx + n
	if i >= len(s.tokens) {
		i = len(s.tokens) - 1
	}
	return s.tokens[i]
}

// Next consumes and returns the current token, advancing the cursor. At
// EOF it keeps returning the EOF token without advancing further.
func (s *TokenStream) Next() token.Token {
	tok := s.tokens[s.idx]
	if tok.Kind != token.EOF {
		s.idx++
	}
	return tok
}

// AtEOF reports whether the stream is positioned at the terminal token.
func (s *TokenStream) AtEOF() bool { return s.tokens[s.idx].Kind == token.EOF }
