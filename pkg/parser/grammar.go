package parser

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf16"

	"github.com/secondlayerco/jsonata/pkg/lexer"
	"github.com/secondlayerco/jsonata/pkg/types"
)

// parsePrefix parses a "nud" (null denotation) term: one that stands on its
// own without needing a left-hand side.
func (p *Parser) parsePrefix() (*types.ASTNode, error) {
	token := p.current

	switch token.Type {
	case lexer.TokenString:
		return p.parseString()
	case lexer.TokenNumber:
		return p.parseNumber()
	case lexer.TokenBoolean:
		return p.parseBoolean()
	case lexer.TokenNull:
		return p.parseNull()
	case lexer.TokenName, lexer.TokenNameEsc:
		if token.Value == "function" || token.Value == "λ" {
			return p.parseLambda()
		}
		return p.parseName()
	case lexer.TokenVariable:
		return p.parseVariable()
	case lexer.TokenMinus:
		return p.parseUnaryMinus()
	case lexer.TokenLess, lexer.TokenGreater:
		return p.parseUnaryComparison()
	case lexer.TokenMod:
		return p.parseParent()
	case lexer.TokenParenOpen:
		return p.parseGrouping()
	case lexer.TokenBracketOpen:
		return p.parseArrayConstructor()
	case lexer.TokenBraceOpen:
		return p.parseObjectConstructor()
	case lexer.TokenDescendent:
		return p.parseDescendentPrefix()
	case lexer.TokenMult:
		return p.parseWildcard()
	case lexer.TokenRegex:
		return p.parseRegex()
	case lexer.TokenPipe:
		return p.parseTransform()
	case lexer.TokenCondition:
		// leading ?: with no condition is invalid; caught generically below
		return nil, p.err(types.ErrSyntaxError, "unexpected '?'")
	case lexer.TokenAnd, lexer.TokenOr, lexer.TokenIn:
		return p.parseNameFromKeyword()
	default:
		return nil, p.err(types.ErrSyntaxError, fmt.Sprintf("unexpected token: %s", token.Type.String()))
	}
}

// parseInfix parses a "led" (left denotation) continuation given the
// already-parsed left operand.
func (p *Parser) parseInfix(left *types.ASTNode) (*types.ASTNode, error) {
	token := p.current

	switch token.Type {
	case lexer.TokenDot:
		return p.parsePath(left)
	case lexer.TokenDescendent:
		return p.parseDescendent(left)
	case lexer.TokenBracketOpen:
		return p.parseFilter(left)
	case lexer.TokenAt:
		return p.parseFocus(left)
	case lexer.TokenHash:
		return p.parseIndexBind(left)
	case lexer.TokenBraceOpen:
		return p.parseObjectConstructorWithLeft(left)
	case lexer.TokenParenOpen:
		return p.parseFunctionCall(left)
	case lexer.TokenCondition:
		return p.parseConditional(left)
	case lexer.TokenRange:
		return p.parseRange(left)
	case lexer.TokenApply:
		return p.parseApply(left)
	case lexer.TokenSort:
		return p.parseSort(left)
	case lexer.TokenAssign:
		return p.parseAssignment(left)
	case lexer.TokenPlus, lexer.TokenMinus, lexer.TokenMult, lexer.TokenDiv, lexer.TokenMod,
		lexer.TokenEqual, lexer.TokenNotEqual, lexer.TokenLess, lexer.TokenLessEqual,
		lexer.TokenGreater, lexer.TokenGreaterEqual, lexer.TokenConcat,
		lexer.TokenAnd, lexer.TokenOr, lexer.TokenIn, lexer.TokenCoalesce:
		return p.parseBinaryOp(left)
	default:
		return nil, p.err(types.ErrSyntaxError, fmt.Sprintf("unexpected infix token: %s", token.Type.String()))
	}
}

func unescapeString(s string) (string, error) {
	if !strings.Contains(s, "\\") {
		return s, nil
	}

	var result strings.Builder
	result.Grow(len(s))

	for i := 0; i < len(s); i++ {
		if s[i] != '\\' {
			result.WriteByte(s[i])
			continue
		}

		i++
		if i >= len(s) {
			return "", fmt.Errorf("invalid escape sequence at end of string")
		}

		switch s[i] {
		case 'n':
			result.WriteByte('\n')
		case 't':
			result.WriteByte('\t')
		case 'r':
			result.WriteByte('\r')
		case 'b':
			result.WriteByte('\b')
		case 'f':
			result.WriteByte('\f')
		case '\\':
			result.WriteByte('\\')
		case '"':
			result.WriteByte('"')
		case '\'':
			result.WriteByte('\'')
		case '/':
			result.WriteByte('/')
		case 'u':
			if i+4 >= len(s) {
				return "", fmt.Errorf("invalid \\u escape: not enough characters")
			}
			hex := s[i+1 : i+5]
			codePoint, err := strconv.ParseUint(hex, 16, 16)
			if err != nil {
				return "", fmt.Errorf("invalid \\u escape: %s", hex)
			}
			i += 4
			r := rune(codePoint)

			if r >= 0xD800 && r <= 0xDBFF {
				if i+6 >= len(s) || s[i+1] != '\\' || s[i+2] != 'u' {
					result.WriteRune(r)
				} else {
					lowHex := s[i+3 : i+7]
					lowCodePoint, err := strconv.ParseUint(lowHex, 16, 16)
					if err != nil {
						result.WriteRune(r)
					} else {
						low := rune(lowCodePoint)
						if low >= 0xDC00 && low <= 0xDFFF {
							decoded := utf16.Decode([]uint16{uint16(r), uint16(low)})
							if len(decoded) > 0 {
								result.WriteRune(decoded[0])
								i += 6
							} else {
								result.WriteRune(r)
							}
						} else {
							result.WriteRune(r)
						}
					}
				}
			} else {
				result.WriteRune(r)
			}
		default:
			return "", fmt.Errorf("invalid escape sequence: \\%c", s[i])
		}
	}

	return result.String(), nil
}

func (p *Parser) parseString() (*types.ASTNode, error) {
	node := types.NewASTNode(types.NodeString, p.current.Position)
	unescaped, err := unescapeString(p.current.Value)
	if err != nil {
		return nil, p.err(types.ErrUnknownEscape, fmt.Sprintf("invalid string literal: %v", err))
	}
	node.StrValue = unescaped
	p.advance()
	return node, nil
}

func (p *Parser) parseNumber() (*types.ASTNode, error) {
	node := types.NewASTNode(types.NodeNumber, p.current.Position)
	val, err := strconv.ParseFloat(p.current.Value, 64)
	if err != nil {
		return nil, p.err(types.ErrNumberOutOfRange, fmt.Sprintf("invalid number: %s", p.current.Value))
	}
	node.NumValue = val
	p.advance()
	return node, nil
}

func (p *Parser) parseBoolean() (*types.ASTNode, error) {
	node := types.NewASTNode(types.NodeBoolean, p.current.Position)
	node.Value = p.current.Value
	p.advance()
	return node, nil
}

func (p *Parser) parseNull() (*types.ASTNode, error) {
	node := types.NewASTNode(types.NodeNull, p.current.Position)
	p.advance()
	return node, nil
}

func (p *Parser) parseName() (*types.ASTNode, error) {
	node := types.NewASTNode(types.NodeName, p.current.Position)
	node.Value = p.current.Value
	p.advance()
	return node, nil
}

func (p *Parser) parseNameFromKeyword() (*types.ASTNode, error) {
	node := types.NewASTNode(types.NodeName, p.current.Position)
	node.Value = p.current.Value
	p.advance()
	return node, nil
}

func (p *Parser) parseVariable() (*types.ASTNode, error) {
	node := types.NewASTNode(types.NodeVariable, p.current.Position)
	node.Value = p.current.Value
	p.advance()
	return node, nil
}

func (p *Parser) parseUnaryMinus() (*types.ASTNode, error) {
	pos := p.current.Position
	p.advance()

	expr, err := p.parseExpression(70)
	if err != nil {
		return nil, err
	}

	node := types.NewASTNode(types.NodeUnary, pos)
	node.Value = "-"
	node.LHS = expr
	return node, nil
}

// parseUnaryComparison handles `<` / `>` used as a sort-direction marker on
// a sort term, e.g. `^(<price)`. A bare sort term with no marker defaults
// to ascending and is parsed directly by parseExpression inside parseSort.
func (p *Parser) parseUnaryComparison() (*types.ASTNode, error) {
	pos := p.current.Position
	op := p.current.Value
	p.advance()

	expr, err := p.parseExpression(70)
	if err != nil {
		return nil, err
	}

	node := types.NewASTNode(types.NodeUnary, pos)
	node.Value = op
	node.LHS = expr
	return node, nil
}

// parseParent parses `%`, the static parent reference.
// Ancestry resolution (pkg/ancestry) fills in node.Parent after parsing.
func (p *Parser) parseParent() (*types.ASTNode, error) {
	pos := p.current.Position
	p.advance()
	node := types.NewASTNode(types.NodeParent, pos)
	node.Value = "%"
	return node, nil
}

// parseFocus parses `step@$v`, binding the context value of step (as it is
// navigated within the enclosing predicate) to $v.
func (p *Parser) parseFocus(left *types.ASTNode) (*types.ASTNode, error) {
	pos := p.current.Position
	p.advance() // skip '@'
	if p.current.Type != lexer.TokenVariable {
		return nil, p.err(types.ErrBadFocusTarget, "expected variable after '@'")
	}
	node := types.NewASTNode(types.NodeFocus, pos)
	node.LHS = left
	node.Value = p.current.Value
	p.advance()
	return node, nil
}

// parseIndexBind parses `step#$i`, binding the 0-based index of step (as
// it is navigated within the enclosing predicate) to $i.
func (p *Parser) parseIndexBind(left *types.ASTNode) (*types.ASTNode, error) {
	pos := p.current.Position
	p.advance() // skip '#'
	if p.current.Type != lexer.TokenVariable {
		return nil, p.err(types.ErrBadIndexTarget, "expected variable after '#'")
	}
	node := types.NewASTNode(types.NodeIndexBind, pos)
	node.LHS = left
	node.Value = p.current.Value
	p.advance()
	return node, nil
}

func (p *Parser) parseGrouping() (*types.ASTNode, error) {
	startPos := p.current.Position
	p.advance() // skip '('

	if p.current.Type == lexer.TokenParenClose {
		// The empty pair `()` is the unit value: an empty block evaluating
		// to no result, not JSON null.
		node := types.NewASTNode(types.NodeBlock, startPos)
		p.advance()
		return node, nil
	}

	var exprs []*types.ASTNode
	hasSemicolon := false

	for p.current.Type != lexer.TokenParenClose {
		expr, err := p.parseExpression(0)
		if err != nil {
			return nil, err
		}
		exprs = append(exprs, expr)

		if p.current.Type != lexer.TokenSemicolon {
			break
		}
		hasSemicolon = true
		p.advance()
	}

	if err := p.expect(lexer.TokenParenClose); err != nil {
		return nil, err
	}

	if len(exprs) == 1 && !hasSemicolon {
		// A single parenthesized expression is grouping, not a scope: an
		// assignment written as `($x := v)` binds into the enclosing block,
		// so `(($d := $f); $d(21))` sees $d in its second statement. Only a
		// `;`-separated sequence introduces its own scope.
		parens := types.NewASTNode(types.NodeParens, startPos)
		parens.LHS = exprs[0]
		return parens, nil
	}

	block := types.NewASTNode(types.NodeBlock, startPos)
	block.Expressions = exprs
	return block, nil
}

func (p *Parser) parseArrayConstructor() (*types.ASTNode, error) {
	pos := p.current.Position
	p.advance()

	node := types.NewASTNode(types.NodeArray, pos)
	node.ConsArray = true

	if p.current.Type == lexer.TokenBracketClose {
		p.advance()
		return node, nil
	}

	for {
		expr, err := p.parseExpression(0)
		if err != nil {
			return nil, err
		}
		node.Expressions = append(node.Expressions, expr)

		if p.current.Type == lexer.TokenBracketClose {
			p.advance()
			break
		}
		if err := p.expect(lexer.TokenComma); err != nil {
			return nil, err
		}
	}

	return node, nil
}

func (p *Parser) parseObjectConstructor() (*types.ASTNode, error) {
	pos := p.current.Position
	p.advance()

	node := types.NewASTNode(types.NodeObject, pos)

	if p.current.Type == lexer.TokenBraceClose {
		p.advance()
		return node, nil
	}

	for {
		key, err := p.parseExpression(0)
		if err != nil {
			return nil, err
		}
		if err := p.expect(lexer.TokenColon); err != nil {
			return nil, err
		}
		value, err := p.parseExpression(0)
		if err != nil {
			return nil, err
		}

		pair := types.NewASTNode(types.NodeBinary, key.Position)
		pair.Value = ":"
		pair.LHS = key
		pair.RHS = value
		node.Expressions = append(node.Expressions, pair)

		if p.current.Type == lexer.TokenBraceClose {
			p.advance()
			break
		}
		if err := p.expect(lexer.TokenComma); err != nil {
			return nil, err
		}
	}

	return node, nil
}

// parseObjectConstructorWithLeft parses `expr{k:v}`, object-grouping
// aggregation. It is represented as NodeGroupBy so the
// evaluator need not branch on IsGrouping to tell it apart from a plain
// object literal.
func (p *Parser) parseObjectConstructorWithLeft(left *types.ASTNode) (*types.ASTNode, error) {
	node, err := p.parseObjectConstructor()
	if err != nil {
		return nil, err
	}
	node.Type = types.NodeGroupBy
	node.LHS = left
	return node, nil
}

func (p *Parser) parsePath(left *types.ASTNode) (*types.ASTNode, error) {
	pos := p.current.Position
	p.advance()

	right, err := p.parseExpression(precedence[lexer.TokenDot])
	if err != nil {
		return nil, err
	}

	node := types.NewASTNode(types.NodePath, pos)
	node.LHS = left
	node.RHS = right
	// expr[] keeps its array shape through the enclosing path, whichever
	// side of the dot it appears on.
	if left.KeepArray || right.KeepArray {
		node.KeepArray = true
	}
	return node, nil
}

func (p *Parser) parseDescendent(left *types.ASTNode) (*types.ASTNode, error) {
	pos := p.current.Position
	p.advance()
	if p.current.Type == lexer.TokenDot {
		p.advance()
	}

	right, err := p.parseExpression(precedence[lexer.TokenDescendent])
	if err != nil {
		return nil, err
	}

	node := types.NewASTNode(types.NodeDescendant, pos)
	node.LHS = left
	node.RHS = right
	if left.KeepArray {
		node.KeepArray = true
	}
	return node, nil
}

func (p *Parser) parseDescendentPrefix() (*types.ASTNode, error) {
	pos := p.current.Position
	p.advance()
	if p.current.Type == lexer.TokenDot {
		p.advance()
	}

	left := types.NewASTNode(types.NodeVariable, pos)

	var right *types.ASTNode
	var err error

	switch p.current.Type {
	case lexer.TokenEOF, lexer.TokenSemicolon, lexer.TokenParenClose,
		lexer.TokenBracketClose, lexer.TokenBracketOpen, lexer.TokenBraceClose,
		lexer.TokenComma, lexer.TokenDot:
		// no continuation
	default:
		right, err = p.parseExpression(precedence[lexer.TokenDescendent])
		if err != nil {
			return nil, err
		}
	}

	node := types.NewASTNode(types.NodeDescendant, pos)
	node.LHS = left
	node.RHS = right
	return node, nil
}

func (p *Parser) parseWildcard() (*types.ASTNode, error) {
	pos := p.current.Position
	p.advance()
	return types.NewASTNode(types.NodeWildcard, pos), nil
}

func (p *Parser) parseRegex() (*types.ASTNode, error) {
	node := types.NewASTNode(types.NodeRegex, p.current.Position)
	node.Value = p.current.Value
	p.advance()
	return node, nil
}

func (p *Parser) parseFilter(left *types.ASTNode) (*types.ASTNode, error) {
	pos := p.current.Position
	p.advance()

	if p.current.Type == lexer.TokenBracketClose {
		p.advance()
		node := types.NewASTNode(types.NodeFilter, pos)
		node.LHS = left
		node.KeepArray = true
		return node, nil
	}

	filter, err := p.parseExpression(0)
	if err != nil {
		return nil, err
	}
	if err := p.expect(lexer.TokenBracketClose); err != nil {
		return nil, err
	}

	node := types.NewASTNode(types.NodeFilter, pos)
	node.LHS = left
	node.RHS = filter
	return node, nil
}

func (p *Parser) parseBinaryOp(left *types.ASTNode) (*types.ASTNode, error) {
	op := p.current
	prec := p.getPrecedence(op.Type)
	p.advance()

	right, err := p.parseExpression(prec)
	if err != nil {
		return nil, err
	}

	node := types.NewASTNode(types.NodeBinary, op.Position)
	node.Value = operatorString(op.Type)
	node.LHS = left
	node.RHS = right
	return node, nil
}

// parseFunctionCall parses `callee(args)`. A `?` in argument position is a
// placeholder for partial application; its presence flips
// IsGrouping on, which the evaluator reads as "build a PartialApplication
// callable, do not invoke immediately".
func (p *Parser) parseFunctionCall(callee *types.ASTNode) (*types.ASTNode, error) {
	pos := p.current.Position
	p.advance()

	node := types.NewASTNode(types.NodeFunctionCall, pos)
	if callee.Type == types.NodeName {
		node.Value = callee.Value
	} else {
		node.LHS = callee
	}

	hasPlaceholder := false

	if p.current.Type != lexer.TokenParenClose {
		for {
			if p.current.Type == lexer.TokenCondition {
				placeholder := types.NewASTNode(types.NodePlaceholder, p.current.Position)
				node.Arguments = append(node.Arguments, placeholder)
				hasPlaceholder = true
				p.advance()
			} else {
				arg, err := p.parseExpression(0)
				if err != nil {
					return nil, err
				}
				node.Arguments = append(node.Arguments, arg)
			}

			if p.current.Type == lexer.TokenParenClose {
				break
			}
			if err := p.expect(lexer.TokenComma); err != nil {
				return nil, err
			}
		}
	}

	if err := p.expect(lexer.TokenParenClose); err != nil {
		return nil, err
	}

	node.IsGrouping = hasPlaceholder
	return node, nil
}

// parseConditional parses `cond ? then : else`, including the Elvis form
// `cond ?: else`: when `?` is immediately
// followed by `:`, the expression becomes a `?:` binary that yields its
// left side when defined and its right side otherwise.
func (p *Parser) parseConditional(condition *types.ASTNode) (*types.ASTNode, error) {
	pos := p.current.Position
	p.advance() // skip '?'

	if p.current.Type == lexer.TokenColon {
		p.advance()
		rhs, err := p.parseExpression(precedence[lexer.TokenCondition] - 1)
		if err != nil {
			return nil, err
		}
		node := types.NewASTNode(types.NodeBinary, pos)
		node.Value = "?:"
		node.LHS = condition
		node.RHS = rhs
		return node, nil
	}

	node := types.NewASTNode(types.NodeCondition, pos)
	node.LHS = condition

	thenExpr, err := p.parseExpression(0)
	if err != nil {
		return nil, err
	}
	node.RHS = thenExpr

	if p.current.Type == lexer.TokenColon {
		p.advance()
		elseExpr, err := p.parseExpression(precedence[lexer.TokenCondition] - 1)
		if err != nil {
			return nil, err
		}
		node.Steps = []*types.ASTNode{elseExpr}
	}

	return node, nil
}

// parseLambda parses `function($a, $b){ body }` with an optional
// `<sig>` signature annotation.
func (p *Parser) parseLambda() (*types.ASTNode, error) {
	pos := p.current.Position
	p.advance() // skip 'function'/'λ'

	node := types.NewASTNode(types.NodeLambda, pos)

	if err := p.expect(lexer.TokenParenOpen); err != nil {
		return nil, err
	}

	if p.current.Type != lexer.TokenParenClose {
		for {
			if p.current.Type != lexer.TokenVariable {
				return nil, p.err(types.ErrBadParamList, "expected variable in lambda parameter list")
			}
			param := types.NewASTNode(types.NodeVariable, p.current.Position)
			param.Value = p.current.Value
			node.Arguments = append(node.Arguments, param)
			p.advance()

			if p.current.Type == lexer.TokenParenClose {
				break
			}
			if err := p.expect(lexer.TokenComma); err != nil {
				return nil, err
			}
		}
	}
	p.advance() // skip ')'

	if p.current.Type == lexer.TokenLess {
		sig, err := p.parseSignature()
		if err != nil {
			return nil, err
		}
		node.Signature = sig
	}

	if err := p.expect(lexer.TokenBraceOpen); err != nil {
		return nil, err
	}

	body, err := p.parseExpression(0)
	if err != nil {
		return nil, err
	}
	node.RHS = body

	if err := p.expect(lexer.TokenBraceClose); err != nil {
		return nil, err
	}

	return node, nil
}

// parseSignature consumes a `<...>` function signature as raw text; actual
// interpretation (type codes, arity) happens in pkg/evaluator/signature.go.
func (p *Parser) parseSignature() (*types.Signature, error) {
	var raw strings.Builder
	raw.WriteByte('<')
	p.advance() // skip '<'

	depth := 1
	for depth > 0 && p.current.Type != lexer.TokenEOF {
		switch p.current.Type {
		case lexer.TokenLess:
			depth++
			raw.WriteByte('<')
		case lexer.TokenGreater:
			depth--
			if depth > 0 {
				raw.WriteByte('>')
			}
		default:
			raw.WriteString(p.current.Value)
		}
		if depth > 0 {
			p.advance()
		}
	}

	if p.current.Type != lexer.TokenGreater {
		return nil, p.err(types.ErrExpectedToken, "expected '>' to close function signature")
	}
	raw.WriteByte('>')
	p.advance()

	return &types.Signature{Raw: raw.String()}, nil
}

func (p *Parser) parseRange(left *types.ASTNode) (*types.ASTNode, error) {
	pos := p.current.Position
	prec := p.getPrecedence(lexer.TokenRange)
	p.advance()

	right, err := p.parseExpression(prec)
	if err != nil {
		return nil, err
	}

	node := types.NewASTNode(types.NodeRange, pos)
	node.LHS = left
	node.RHS = right
	return node, nil
}

func (p *Parser) parseApply(left *types.ASTNode) (*types.ASTNode, error) {
	pos := p.current.Position
	prec := p.getPrecedence(lexer.TokenApply)
	p.advance()

	right, err := p.parseExpression(prec)
	if err != nil {
		return nil, err
	}

	node := types.NewASTNode(types.NodeChain, pos)
	node.LHS = left
	node.RHS = right
	return node, nil
}

// parseSort parses `expr^(term, ...)`, one or more sort terms each
// optionally prefixed with `<`/`>` (parsed as NodeUnary by
// parseUnaryComparison) to mark ascending/descending.
func (p *Parser) parseSort(left *types.ASTNode) (*types.ASTNode, error) {
	pos := p.current.Position
	p.advance() // skip '^'

	if p.current.Type != lexer.TokenParenOpen {
		return nil, p.err(types.ErrSyntaxError, "expected '(' after '^' operator")
	}
	p.advance()

	node := types.NewASTNode(types.NodeSort, pos)
	node.LHS = left

	for {
		term, err := p.parseExpression(0)
		if err != nil {
			return nil, err
		}
		node.Expressions = append(node.Expressions, term)

		if p.current.Type == lexer.TokenComma {
			p.advance()
			continue
		}
		break
	}

	if p.current.Type != lexer.TokenParenClose {
		return nil, p.err(types.ErrSyntaxError, "expected ')' in sort expression")
	}
	p.advance()

	return node, nil
}

func (p *Parser) parseAssignment(left *types.ASTNode) (*types.ASTNode, error) {
	if left.Type != types.NodeVariable {
		return nil, p.err(types.ErrAssignToNonVar, "left-hand side of assignment must be a variable")
	}

	pos := p.current.Position
	prec := p.getPrecedence(lexer.TokenAssign)
	p.advance()

	right, err := p.parseExpression(prec - 1)
	if err != nil {
		return nil, err
	}

	node := types.NewASTNode(types.NodeAssignment, pos)
	node.Value = left.Value
	node.LHS = left
	node.RHS = right
	return node, nil
}

// parseTransform parses `|path|update, delete|` (delete is optional). Only
// parsed, never evaluated: reaching it at evaluation time raises D3013.
func (p *Parser) parseTransform() (*types.ASTNode, error) {
	pos := p.current.Position
	p.advance() // skip first '|'

	path, err := p.parseExpression(0)
	if err != nil {
		return nil, err
	}
	if err := p.expect(lexer.TokenPipe); err != nil {
		return nil, err
	}

	update, err := p.parseExpression(0)
	if err != nil {
		return nil, err
	}

	node := types.NewASTNode(types.NodeTransform, pos)
	node.LHS = path
	node.RHS = update

	if p.current.Type == lexer.TokenComma {
		p.advance()
		del, err := p.parseExpression(0)
		if err != nil {
			return nil, err
		}
		node.Steps = []*types.ASTNode{del}
	}

	if err := p.expect(lexer.TokenPipe); err != nil {
		return nil, err
	}

	return node, nil
}

func operatorString(tt lexer.TokenType) string {
	switch tt {
	case lexer.TokenPlus:
		return "+"
	case lexer.TokenMinus:
		return "-"
	case lexer.TokenMult:
		return "*"
	case lexer.TokenDiv:
		return "/"
	case lexer.TokenMod:
		return "%"
	case lexer.TokenEqual:
		return "="
	case lexer.TokenNotEqual:
		return "!="
	case lexer.TokenLess:
		return "<"
	case lexer.TokenLessEqual:
		return "<="
	case lexer.TokenGreater:
		return ">"
	case lexer.TokenGreaterEqual:
		return ">="
	case lexer.TokenConcat:
		return "&"
	case lexer.TokenAnd:
		return "and"
	case lexer.TokenOr:
		return "or"
	case lexer.TokenIn:
		return "in"
	case lexer.TokenCoalesce:
		return "??"
	default:
		return tt.String()
	}
}
