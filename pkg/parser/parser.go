// Package parser implements the JSONata Pratt ("Top Down Operator
// Precedence") recursive-descent parser: it consumes the pkg/lexer token
// stream and produces a pkg/types.ASTNode tree. Parent-slot resolution is
// a separate post-parse pass in pkg/ancestry, not performed here.
package parser

import (
	"fmt"

	"github.com/secondlayerco/jsonata/pkg/lexer"
	"github.com/secondlayerco/jsonata/pkg/types"
)

// Parser holds the cursor state over a single expression's token stream.
type Parser struct {
	lex     *lexer.Lexer
	current lexer.Token
	prev    lexer.Token
	errors  []error
	opts    CompileOptions
	depth   int
	srcText string
}

// NewParser creates a parser for input, primed with its first token.
func NewParser(input string, opts ...CompileOption) *Parser {
	options := defaultCompileOptions()
	for _, opt := range opts {
		opt(&options)
	}

	p := &Parser{lex: lexer.NewLexer(input), opts: options, srcText: input}
	p.advance()
	return p
}

// Parse runs the parser to completion and returns the parsed expression
// (ancestry resolution is applied by the caller, typically the root
// jsonata package, not here — see pkg/ancestry).
func (p *Parser) Parse() (*types.Expression, error) {
	if p.current.Type == lexer.TokenError {
		return nil, p.lex.Error()
	}
	if p.current.Type == lexer.TokenEOF {
		return nil, p.err(types.ErrEmptyExpression, "empty expression")
	}

	node, err := p.parseExpression(0)
	if err != nil {
		return nil, err
	}

	if p.current.Type != lexer.TokenEOF {
		return nil, p.err(types.ErrSyntaxError, fmt.Sprintf("unexpected token: %s", p.current.Value))
	}

	expr := types.NewExpression(node, p.source())
	for _, e := range p.errors {
		expr.AddError(e)
	}
	return expr, nil
}

// Errors returns parse errors accumulated in recovery mode.
func (p *Parser) Errors() []error { return p.errors }

func (p *Parser) source() string {
	// lexer does not expose input directly, so NewParser keeps a copy in
	// srcText.
	return p.srcText
}

// precedence is the binding-power table (levels 10/20/25/30/40/50/60/70/
// 75/80). One deliberate placement: `^` (sort) binds at 70 alongside
// object-grouping `{`, just below `.`, so that both operate on the entire
// preceding path sequence (`a.b^(>u)` sorts all of a.b, `a.b{k:v}` groups
// all of it) rather than scoping to the final step only — the tuple-based
// evaluator sorts and groups whole sequences, and scoping either operator
// inside the last step would run it once per parent tuple instead.
var precedence = map[lexer.TokenType]int{
	lexer.TokenAssign: 10,

	lexer.TokenCondition: 20,
	lexer.TokenCoalesce:  20,
	lexer.TokenRange:     20,

	lexer.TokenOr: 25,

	lexer.TokenAnd: 30,

	lexer.TokenEqual:        40,
	lexer.TokenNotEqual:     40,
	lexer.TokenLess:         40,
	lexer.TokenLessEqual:    40,
	lexer.TokenGreater:      40,
	lexer.TokenGreaterEqual: 40,
	lexer.TokenIn:           40,
	lexer.TokenApply:        40,

	lexer.TokenConcat: 50,
	lexer.TokenPlus:   50,
	lexer.TokenMinus:  50,

	lexer.TokenMult: 60,
	lexer.TokenDiv:  60,
	lexer.TokenMod:  60,

	lexer.TokenSort:      70,
	lexer.TokenBraceOpen: 70,

	lexer.TokenDot:        75,
	lexer.TokenDescendent: 75,

	lexer.TokenBracketOpen: 80,
	lexer.TokenParenOpen:   80,
	lexer.TokenAt:          80,
	lexer.TokenHash:        80,
}

func (p *Parser) getPrecedence(tt lexer.TokenType) int {
	if prec, ok := precedence[tt]; ok {
		return prec
	}
	return 0
}

func (p *Parser) advance() {
	p.prev = p.current
	p.current = p.lex.Next(p.isRegexContext())
}

// isRegexContext reports whether a bare `/` at the *current* cursor should
// be read as a regex literal rather than the division operator, based on
// the token seen just before advancing onto it.
func (p *Parser) isRegexContext() bool {
	switch p.prev.Type {
	case lexer.TokenEqual, lexer.TokenNotEqual, lexer.TokenApply,
		lexer.TokenComma, lexer.TokenParenOpen, lexer.TokenBracketOpen,
		lexer.TokenColon, lexer.TokenEOF:
		return true
	default:
		return false
	}
}

func (p *Parser) expect(tt lexer.TokenType) error {
	if p.current.Type != tt {
		return p.err(types.ErrExpectedToken, fmt.Sprintf("expected %s but got %s", tt.String(), p.current.Type.String()))
	}
	p.advance()
	return nil
}

func (p *Parser) err(code types.ErrorCode, message string) error {
	e := &types.Error{
		Code:     code,
		Message:  message,
		Position: p.current.Position,
		Token:    p.current.Value,
	}
	p.errors = append(p.errors, e)
	return e
}

func (p *Parser) enter() error {
	p.depth++
	if p.depth > p.opts.MaxDepth {
		return p.err(types.ErrStackOverflow, "expression nesting exceeds maximum depth")
	}
	return nil
}

func (p *Parser) leave() { p.depth-- }

// parseExpression implements Pratt's algorithm: parse a prefix ("nud")
// term, then keep folding in infix ("led") operators whose precedence
// exceeds rbp, the caller's minimum binding power.
func (p *Parser) parseExpression(rbp int) (*types.ASTNode, error) {
	if err := p.enter(); err != nil {
		return nil, err
	}
	defer p.leave()

	left, err := p.parsePrefix()
	if err != nil {
		return nil, err
	}

	for rbp < p.getPrecedence(p.current.Type) {
		left, err = p.parseInfix(left)
		if err != nil {
			return nil, err
		}
	}

	return left, nil
}
