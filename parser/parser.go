// Package parser drives token consumption through the explicit delimiter
// and parse-state stacks, recording symbol definitions and references into
// a scope tree instead of building an abstract syntax tree.
package parser

import (
	"io"
	"log/slog"
	"os"

	"github.com/aledsdavies/rlint/diag"
	"github.com/aledsdavies/rlint/lexer"
	"github.com/aledsdavies/rlint/scope"
	"github.com/aledsdavies/rlint/token"
)

// nseFunctions is the hard-coded non-standard-evaluation function list:
// calls to any of these suppress reference recording for every argument in
// that call, matching the only behavior the original linter this was
// modeled on exhibits (SessionLinter's makeNSEFunctions).
var nseFunctions = map[string]bool{
	"library":     true,
	"require":     true,
	"quote":       true,
	"substitute":  true,
	"enquote":     true,
	"expression":  true,
	"evalq":       true,
	"subset":      true,
}

func newLogger(envVar string) *slog.Logger {
	if os.Getenv(envVar) == "" {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelDebug,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey || a.Key == slog.LevelKey {
				return slog.Attr{}
			}
			return a
		},
	}))
}

// frameMeta is carried alongside every parse-state push, so popping a state
// also restores the scope and suppression context that was active before
// it, without needing a second hand-maintained stack to stay in sync.
type frameMeta struct {
	suppressRefs bool
	restoreScope *scope.Node
}

// Parser drives a single analysis pass. It is not safe for concurrent use.
type Parser struct {
	stream *lexer.TokenStream
	states *stateStack
	delims *delimiterStack
	sink   *diag.Sink
	cfg    *Config
	logger *slog.Logger

	root  *scope.Node
	scope *scope.Node
	meta  []frameMeta

	prevSignificant token.Token

	pendingFunctionScope *scope.Node
	atFormalNamePosition bool

	expectForVar bool
}

// New constructs a Parser over source text, ready to Run.
func New(source string, opts ...Opt) *Parser {
	cfg := newConfig(opts)
	lex := lexer.New(source)
	tokens := lex.Tokenize()
	folded := lexer.FoldTrivia(tokens)

	root := scope.NewRoot()
	sink := diag.NewSink(cfg.MaxErrors, cfg.RecordStyleLint)
	for _, d := range lex.Diagnostics() {
		sink.Add(d)
	}

	return &Parser{
		stream: lexer.NewTokenStream(folded),
		states: newStateStack(),
		delims: &delimiterStack{},
		sink:   sink,
		cfg:    cfg,
		logger: newLogger("RLINT_DEBUG_PARSER"),
		root:   root,
		scope:  root,
		meta:   []frameMeta{{suppressRefs: false, restoreScope: nil}},
	}
}

// Run drives the pass to completion and returns the root scope node and the
// accumulated diagnostics, sorted by start position.
func (p *Parser) Run() (*scope.Node, []diag.Diagnostic) {
	for {
		if p.sink.Stopped() {
			break
		}

		tok := p.stream.Peek()
		p.closeTerminatedExpressionStates(tok)

		if tok.Kind == token.EOF {
			break
		}

		tok = p.stream.Next()
		p.dispatch(tok)
	}

	p.finalize()
	return p.root, p.sink.Diagnostics()
}

func (p *Parser) dispatch(tok token.Token) {
	p.logger.Debug("[PARSER] dispatch", "kind", tok.Kind, "pos", tok.Pos, "state", p.states.top())

	switch {
	case tok.Kind == token.Identifier:
		if !p.checkForVar(tok) {
			p.handleIdentifier(tok)
		}
	case tok.Kind == token.Operator:
		p.handleOperator(tok)
	case tok.Kind == token.LParen:
		p.handleLParen(tok)
	case tok.Kind == token.RParen:
		p.handleRParen(tok)
	case tok.Kind == token.LBrace:
		p.handleLBrace(tok)
	case tok.Kind == token.RBrace:
		p.handleRBrace(tok)
	case tok.Kind == token.LBracket:
		p.handleLBracket(tok)
	case tok.Kind == token.RBracket:
		p.handleRBracket(tok)
	case tok.Kind == token.LDoubleBracket:
		p.handleLDoubleBracket(tok)
	case tok.Kind == token.RDoubleBracket:
		p.handleRDoubleBracket(tok)
	case tok.Kind == token.Comma:
		p.handleComma(tok)
	case tok.Kind == token.Semicolon:
		p.prevSignificant = tok
	case tok.Kind == token.KeywordIf:
		p.handleIf(tok)
	case tok.Kind == token.KeywordWhile:
		p.handleWhile(tok)
	case tok.Kind == token.KeywordFor:
		p.handleFor(tok)
	case tok.Kind == token.KeywordRepeat:
		p.handleRepeat(tok)
	case tok.Kind == token.KeywordFunction:
		p.handleFunction(tok)
	default:
		// Literals (TRUE/FALSE/NULL/NA/Inf/NaN), break/next/return, a bare
		// keyword-in or keyword-else reached outside the contexts that
		// consume them explicitly, and illegal tokens (already diagnosed by
		// the tokenizer) carry no reference semantics — skip and continue.
		p.prevSignificant = tok
	}
}

// ---- identifiers, assignment, qualified references ----

func (p *Parser) handleIdentifier(tok token.Token) {
	name := token.StripBackticks(tok.Text)

	if p.states.top() == StateFunctionArgumentList && p.atFormalNamePosition {
		if p.pendingFunctionScope != nil {
			p.pendingFunctionScope.Define(name, tok.Pos)
		}
		p.atFormalNamePosition = false
		p.prevSignificant = tok
		return
	}

	peek1 := p.stream.Peek()
	if peek1.Kind == token.Operator {
		switch {
		case peek1.Operator == token.OpNamespaceInternal || peek1.Operator == token.OpNamespaceExported:
			p.stream.Next()
			p.styleCheckOperator(peek1)
			nameTok := p.stream.Next()
			if nameTok.Kind == token.Identifier {
				qualified := token.StripBackticks(nameTok.Text)
				if peek1.Operator == token.OpNamespaceInternal {
					p.scope.ReferenceInternalQualified(name, qualified)
				} else {
					p.scope.ReferenceExportedQualified(name, qualified)
				}
			}
			p.prevSignificant = nameTok
			return

		case peek1.Operator.IsDefinitionArrow():
			p.stream.Next()
			p.styleCheckOperator(peek1)
			p.scope.Define(name, tok.Pos)
			p.prevSignificant = peek1
			return

		case peek1.Operator == token.OpEquals:
			p.stream.Next()
			p.styleCheckOperator(peek1)
			if !p.states.inArgumentList() {
				p.scope.Define(name, tok.Pos)
			}
			// Inside an argument list this identifier is a named-argument
			// label: neither a definition nor a reference.
			p.prevSignificant = peek1
			return
		}
	}

	if !p.suppressed() {
		p.scope.Reference(name, tok.Pos)
	}
	p.prevSignificant = tok
}

// handleOperator processes operators not already consumed inline by
// handleIdentifier's lookahead: principally the right-assigning arrows
// (->, ->>), whose target name follows the operator, and every ordinary
// binary/unary operator, which only needs a style check.
func (p *Parser) handleOperator(tok token.Token) {
	if tok.Operator.IsDefinitionArrowRight() {
		p.styleCheckOperator(tok)
		peek := p.stream.Peek()
		if peek.Kind == token.Identifier {
			p.stream.Next()
			name := token.StripBackticks(peek.Text)
			p.scope.Define(name, peek.Pos)
			p.prevSignificant = peek
			return
		}
		p.prevSignificant = tok
		return
	}

	p.styleCheckOperator(tok)
	p.prevSignificant = tok
}

// suppressed reports whether reference recording is currently suppressed —
// true anywhere lexically inside the argument list of a call to a
// non-standard-evaluation function.
func (p *Parser) suppressed() bool {
	return p.meta[len(p.meta)-1].suppressRefs
}

// ---- state stack push/pop with scope and suppression bookkeeping ----

func (p *Parser) pushState(st ParseState, localSuppress bool, newScope *scope.Node) {
	restore := p.scope
	suppress := p.suppressed() || localSuppress
	p.states.push(st)
	p.meta = append(p.meta, frameMeta{suppressRefs: suppress, restoreScope: restore})
	if newScope != nil {
		p.scope = newScope
	}
	p.logger.Debug("[PARSER] pushState", "state", st, "suppressRefs", suppress, "newScope", newScope != nil)
}

func (p *Parser) popState(expected ParseState, tok token.Token) {
	ok := p.states.pop(expected)
	if len(p.meta) > 1 {
		frame := p.meta[len(p.meta)-1]
		p.meta = p.meta[:len(p.meta)-1]
		p.scope = frame.restoreScope
	}
	p.logger.Debug("[PARSER] popState", "expected", expected, "ok", ok)
	if !ok {
		p.sink.Add(diag.UnexpectedToken(tok.Range(), tok.String(), expected.String()))
	}
}

// ---- delimiters ----

func (p *Parser) handleLParen(tok token.Token) {
	if p.prevSignificant.Kind == token.Identifier {
		callee := token.StripBackticks(p.prevSignificant.Text)
		p.delims.push(tok)
		p.pushState(StateParenArgumentList, nseFunctions[callee], nil)
		p.checkOpenDelimiterEdge()
		p.prevSignificant = tok
		return
	}

	p.delims.push(tok)
	p.pushState(StateWithinParens, false, nil)
	p.checkOpenDelimiterEdge()
	p.prevSignificant = tok
}

func (p *Parser) handleRParen(tok token.Token) {
	if tok.SpaceBefore {
		p.styleUnnecessarySpace(tok)
	}
	p.delims.pop(tok, p.sink)

	switch p.states.top() {
	case StateIfCondition:
		p.popState(StateIfCondition, tok)
		p.openControlFlowBody(StateIfStatement, StateIfExpression)
	case StateWhileCondition:
		p.popState(StateWhileCondition, tok)
		p.openControlFlowBody(StateWhileStatement, StateWhileExpression)
	case StateForCondition:
		p.popState(StateForCondition, tok)
		p.openControlFlowBody(StateForStatement, StateForExpression)
	case StateFunctionArgumentList:
		p.popState(StateFunctionArgumentList, tok)
		child := p.pendingFunctionScope
		p.pendingFunctionScope = nil
		p.atFormalNamePosition = false
		peek := p.stream.Peek()
		if peek.Kind == token.LBrace {
			brace := p.stream.Next()
			p.delims.push(brace)
			p.pushState(StateFunctionStatement, false, child)
		} else {
			p.pushState(StateFunctionExpression, false, child)
		}
	case StateParenArgumentList:
		p.popState(StateParenArgumentList, tok)
	case StateWithinParens:
		p.popState(StateWithinParens, tok)
	}
	p.prevSignificant = tok
}

// openControlFlowBody peeks the upcoming body token and pushes the
// statement variant (body opens with a brace) or the expression variant
// (single-expression body), consuming the opening brace inline when present.
func (p *Parser) openControlFlowBody(statement, expression ParseState) {
	peek := p.stream.Peek()
	if peek.Kind == token.LBrace {
		brace := p.stream.Next()
		p.delims.push(brace)
		p.pushState(statement, false, nil)
		return
	}
	p.pushState(expression, false, nil)
}

func (p *Parser) handleLBrace(tok token.Token) {
	p.delims.push(tok)
	p.pushState(StateWithinBraces, false, nil)
	p.prevSignificant = tok
}

func (p *Parser) handleRBrace(tok token.Token) {
	p.delims.pop(tok, p.sink)

	switch p.states.top() {
	case StateWithinBraces:
		p.popState(StateWithinBraces, tok)
	case StateFunctionStatement:
		p.popState(StateFunctionStatement, tok)
	case StateIfStatement:
		p.popState(StateIfStatement, tok)
		p.handleElseChaining()
	case StateWhileStatement:
		p.popState(StateWhileStatement, tok)
	case StateForStatement:
		p.popState(StateForStatement, tok)
	case StateRepeatStatement:
		p.popState(StateRepeatStatement, tok)
	}
	p.prevSignificant = tok
}

// handleElseChaining is called immediately after an if-statement/expression
// body closes. If the next significant token is `else`, it consumes it and
// opens the else body the same way an if body opens — unless the else body
// is itself `else if (...)`, in which case no extra frame is pushed; the
// upcoming `if` keyword will drive its own condition/body normally.
func (p *Parser) handleElseChaining() {
	peek := p.stream.Peek()
	if peek.Kind != token.KeywordElse {
		return
	}
	p.stream.Next()
	p.prevSignificant = peek

	body := p.stream.Peek()
	switch {
	case body.Kind == token.LBrace:
		brace := p.stream.Next()
		p.delims.push(brace)
		p.pushState(StateIfStatement, false, nil)
	case body.Kind == token.KeywordIf:
		// else-if chaining: let the next loop iteration's handleIf drive it.
	default:
		p.pushState(StateIfExpression, false, nil)
	}
}

func (p *Parser) handleLBracket(tok token.Token) {
	var callee string
	isCall := p.prevSignificant.Kind == token.Identifier
	if isCall {
		callee = token.StripBackticks(p.prevSignificant.Text)
	}
	p.delims.push(tok)
	p.pushState(StateSingleBracketArgumentList, isCall && nseFunctions[callee], nil)
	p.checkOpenDelimiterEdge()
	p.prevSignificant = tok
}

func (p *Parser) handleRBracket(tok token.Token) {
	if tok.SpaceBefore {
		p.styleUnnecessarySpace(tok)
	}
	p.delims.pop(tok, p.sink)
	if p.states.top() == StateSingleBracketArgumentList {
		p.popState(StateSingleBracketArgumentList, tok)
	}
	p.prevSignificant = tok
}

func (p *Parser) handleLDoubleBracket(tok token.Token) {
	var callee string
	isCall := p.prevSignificant.Kind == token.Identifier
	if isCall {
		callee = token.StripBackticks(p.prevSignificant.Text)
	}
	p.delims.push(tok)
	p.pushState(StateDoubleBracketArgumentList, isCall && nseFunctions[callee], nil)
	p.checkOpenDelimiterEdge()
	p.prevSignificant = tok
}

func (p *Parser) handleRDoubleBracket(tok token.Token) {
	if tok.SpaceBefore {
		p.styleUnnecessarySpace(tok)
	}
	p.delims.pop(tok, p.sink)
	if p.states.top() == StateDoubleBracketArgumentList {
		p.popState(StateDoubleBracketArgumentList, tok)
	}
	p.prevSignificant = tok
}

func (p *Parser) handleComma(tok token.Token) {
	if p.cfg.RecordStyleLint {
		if tok.SpaceBefore {
			p.sink.Add(diag.UnnecessaryWhitespace(tok.Range()))
		}
		next := p.stream.Peek()
		if next.Kind != token.EOF && !next.SpaceBefore && !next.NewlineBefore && !next.Kind.IsCloseDelimiter() {
			p.sink.Add(diag.ExpectedWhitespace(next.Range()))
		}
	}
	if p.states.top() == StateFunctionArgumentList {
		p.atFormalNamePosition = true
	}
	p.prevSignificant = tok
}

// ---- control flow keywords ----

func (p *Parser) handleIf(tok token.Token) {
	p.prevSignificant = tok
	p.expectOpenParenFor(StateIfCondition)
}

func (p *Parser) handleWhile(tok token.Token) {
	p.prevSignificant = tok
	p.expectOpenParenFor(StateWhileCondition)
}

func (p *Parser) handleFor(tok token.Token) {
	p.prevSignificant = tok
	opened := p.expectOpenParenFor(StateForCondition)
	if opened {
		p.expectForVar = true
	}
}

// expectOpenParenFor consumes the `(` that must follow if/while/for and
// pushes the corresponding condition state. Returns false (with an
// unexpected-token diagnostic) if the next token is not `(`.
func (p *Parser) expectOpenParenFor(condition ParseState) bool {
	peek := p.stream.Peek()
	if peek.Kind != token.LParen {
		p.sink.Add(diag.UnexpectedToken(peek.Range(), peek.String(), "("))
		return false
	}
	paren := p.stream.Next()
	p.delims.push(paren)
	p.pushState(condition, false, nil)
	p.prevSignificant = paren
	return true
}

func (p *Parser) handleRepeat(tok token.Token) {
	p.prevSignificant = tok
	peek := p.stream.Peek()
	if peek.Kind == token.LBrace {
		brace := p.stream.Next()
		p.delims.push(brace)
		p.pushState(StateRepeatStatement, false, nil)
		return
	}
	p.pushState(StateRepeatExpression, false, nil)
}

func (p *Parser) handleFunction(tok token.Token) {
	p.prevSignificant = tok
	peek := p.stream.Peek()
	if peek.Kind != token.LParen {
		p.sink.Add(diag.UnexpectedToken(peek.Range(), peek.String(), "("))
		return
	}
	paren := p.stream.Next()
	p.delims.push(paren)

	child := p.scope.NewChild("<function>", paren.Pos)
	p.pendingFunctionScope = child
	p.atFormalNamePosition = true
	p.pushState(StateFunctionArgumentList, false, nil)
	p.prevSignificant = paren
}

// ---- for-loop variable ----
//
// handleIdentifier is called for every identifier including the for-loop
// variable; the for-loop variable needs to be defined rather than
// referenced, and the following `in` keyword consumed. This is handled as
// a pre-step in dispatch via checkForVar, invoked before handleIdentifier
// when expectForVar is set.

func (p *Parser) checkForVar(tok token.Token) bool {
	if !p.expectForVar || p.states.top() != StateForCondition {
		return false
	}
	name := token.StripBackticks(tok.Text)
	p.scope.Define(name, tok.Pos)
	p.expectForVar = false
	p.prevSignificant = tok

	peek := p.stream.Peek()
	if peek.Kind == token.KeywordIn {
		p.stream.Next()
		p.prevSignificant = peek
	}
	return true
}

// ---- expression-form control-flow body termination ----

func isExpressionState(st ParseState) bool {
	switch st {
	case StateIfExpression, StateWhileExpression, StateForExpression, StateRepeatExpression, StateFunctionExpression:
		return true
	default:
		return false
	}
}

// closeTerminatedExpressionStates pops any *-expression control-flow state
// sitting on top of the stack once the upcoming token signals that the
// single-expression body has ended: a semicolon, end of stream, a closing
// delimiter, or a newline outside any parenthetical context.
func (p *Parser) closeTerminatedExpressionStates(upcoming token.Token) {
	for isExpressionState(p.states.top()) && p.terminatesExpressionBody(upcoming) {
		top := p.states.top()
		// The upcoming token itself is used for any diagnostics the pop
		// might emit (mismatches are not expected here since we only pop
		// states we just confirmed are on top).
		switch top {
		case StateIfExpression:
			p.popState(StateIfExpression, upcoming)
			p.handleElseChaining()
		case StateWhileExpression:
			p.popState(StateWhileExpression, upcoming)
		case StateForExpression:
			p.popState(StateForExpression, upcoming)
		case StateRepeatExpression:
			p.popState(StateRepeatExpression, upcoming)
		case StateFunctionExpression:
			p.popState(StateFunctionExpression, upcoming)
		}
	}
}

func (p *Parser) terminatesExpressionBody(tok token.Token) bool {
	if tok.Kind == token.Semicolon || tok.Kind == token.EOF {
		return true
	}
	if tok.Kind.IsCloseDelimiter() {
		return true
	}
	if tok.NewlineBefore && !p.states.inParentheticalScope() {
		return true
	}
	return false
}

// ---- whitespace style lint ----

func (p *Parser) styleCheckOperator(opTok token.Token) {
	if !p.cfg.RecordStyleLint {
		return
	}
	// Unary + and - (at the start of an expression) carry no surrounding-
	// space requirement.
	if opTok.Operator == token.OpPlus || opTok.Operator == token.OpMinus {
		prev := p.prevSignificant.Kind
		if opTok.NewlineBefore || prev == token.EOF || prev == token.Operator || prev == token.Comma ||
			prev == token.Semicolon || prev.IsOpenDelimiter() || prev == token.KeywordElse || prev == token.KeywordIn {
			return
		}
	}
	next := p.stream.Peek()
	switch {
	case opTok.Operator.RequiresSurroundingSpace():
		if !opTok.SpaceBefore {
			p.sink.Add(diag.ExpectedWhitespace(opTok.Range()))
		}
		if !next.SpaceBefore && !next.NewlineBefore {
			p.sink.Add(diag.ExpectedWhitespace(next.Range()))
		}
	case opTok.Operator.ForbidsSurroundingSpace():
		if opTok.SpaceBefore {
			p.sink.Add(diag.UnnecessaryWhitespace(opTok.Range()))
		}
		if next.SpaceBefore {
			p.sink.Add(diag.UnnecessaryWhitespace(next.Range()))
		}
	}
}

func (p *Parser) styleUnnecessarySpace(tok token.Token) {
	if !p.cfg.RecordStyleLint {
		return
	}
	p.sink.Add(diag.UnnecessaryWhitespace(tok.Range()))
}

// checkOpenDelimiterEdge flags whitespace immediately after an opening (,
// [, or [[ when it abuts real content (an empty argument list has nothing
// to flag).
func (p *Parser) checkOpenDelimiterEdge() {
	if !p.cfg.RecordStyleLint {
		return
	}
	next := p.stream.Peek()
	if next.Kind == token.EOF || next.Kind.IsCloseDelimiter() {
		return
	}
	if next.SpaceBefore {
		p.sink.Add(diag.UnnecessaryWhitespace(next.Range()))
	}
}

// ---- finalize ----

// finalize pops every remaining parse state down to top-level (restoring
// scope pointers as it goes) and drains the delimiter stack. Diagnostics
// for unterminated constructs come entirely from the delimiter drain — by
// construction, every pushed state other than top-level and the
// expression-form control-flow states corresponds to a still-open
// delimiter, so reporting both would double-count the same mistake.
func (p *Parser) finalize() {
	eof := p.stream.Peek()
	for p.states.top() != StateTopLevel {
		top := p.states.top()
		p.states.pop(top)
		if len(p.meta) > 1 {
			frame := p.meta[len(p.meta)-1]
			p.meta = p.meta[:len(p.meta)-1]
			p.scope = frame.restoreScope
		}
	}
	p.delims.drain(p.sink, eof.Pos)
}
