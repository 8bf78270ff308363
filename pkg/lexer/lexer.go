package lexer

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/secondlayerco/jsonata/pkg/types"
)

const eof = -1

// Lexer converts a JSONata expression into a sequence of tokens, following
// Rob Pike's "Lexical Scanning in Go" technique: a start/current cursor pair
// over the source string, with newToken() slicing the accepted run.
type Lexer struct {
	input   string
	length  int
	start   int
	current int
	width   int
	err     error
}

// NewLexer creates a lexer over input, ready for repeated Next calls.
func NewLexer(input string) *Lexer {
	return &Lexer{input: input, length: len(input)}
}

// Next returns the next token. Once the input is exhausted, it returns
// TokenEOF forever. allowRegex tells Next whether a bare `/` should be
// scanned as the start of a regex literal or the division operator — the
// parser tracks this based on grammatical position.
func (l *Lexer) Next(allowRegex bool) Token {
	l.skipWhitespace()
	if l.err != nil {
		return l.error(types.ErrCommentNotClosed, l.err.Error())
	}

	ch := l.nextRune()
	if ch == eof {
		return l.eof()
	}

	if allowRegex && ch == '/' {
		l.ignore()
		return l.scanRegex(ch)
	}

	if rts := lookupSymbol2(ch); rts != nil {
		for _, rt := range rts {
			if l.acceptRune(rt.r) {
				return l.newToken(rt.tt)
			}
		}
	}

	if tt := lookupSymbol1(ch); tt > 0 {
		return l.newToken(tt)
	}

	if ch == '"' || ch == '\'' {
		l.ignore()
		return l.scanString(ch)
	}

	if ch >= '0' && ch <= '9' {
		l.backup()
		return l.scanNumber()
	}

	if ch == '`' {
		l.ignore()
		return l.scanEscapedName(ch)
	}

	l.backup()
	return l.scanName()
}

// Error returns the first error encountered while scanning, if any.
func (l *Lexer) Error() error {
	return l.err
}

func (l *Lexer) scanRegex(delim rune) Token {
	var depth int

Loop:
	for {
		switch l.nextRune() {
		case delim:
			if depth == 0 {
				break Loop
			}
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
		case '\\':
			if r := l.nextRune(); r != eof && r != '\n' {
				break
			}
			fallthrough
		case eof, '\n':
			return l.error(types.ErrRegexNotClosed, "unterminated regular expression")
		}
	}

	l.backup()
	t := l.newToken(TokenRegex)
	l.acceptRune(delim)
	l.ignore()

	if l.acceptAll(isRegexFlag) {
		flags := l.newToken(TokenType(0))
		// `g` has no Go inline-flag equivalent; match-all behavior is the
		// concern of the function consuming the regex, so it is accepted
		// and dropped here.
		inline := strings.ReplaceAll(flags.Value, "g", "")
		if inline != "" {
			t.Value = fmt.Sprintf("(?%s)%s", inline, t.Value)
		}
	}

	return t
}

func (l *Lexer) scanString(quote rune) Token {
Loop:
	for {
		switch l.nextRune() {
		case quote:
			break Loop
		case '\\':
			if r := l.nextRune(); r != eof {
				break
			}
			fallthrough
		case eof:
			return l.error(types.ErrStringNotClosed, "unterminated string literal")
		}
	}

	l.backup()
	t := l.newToken(TokenString)
	l.acceptRune(quote)
	l.ignore()
	return t
}

func (l *Lexer) scanNumber() Token {
	if !l.acceptRune('0') {
		l.accept(isNonZeroDigit)
		l.acceptAll(isDigit)
	}

	if l.acceptRune('.') {
		if !l.acceptAll(isDigit) {
			// No digits after the dot: it may be the start of `..` (range),
			// so don't consume it as part of the number.
			l.backup()
			return l.newToken(TokenNumber)
		}
	}

	if l.acceptRunes2('e', 'E') {
		l.acceptRunes2('+', '-')
		l.acceptAll(isDigit)
	}

	return l.newToken(TokenNumber)
}

func (l *Lexer) scanEscapedName(quote rune) Token {
Loop:
	for {
		switch l.nextRune() {
		case quote:
			break Loop
		case eof, '\n':
			return l.error(types.ErrNameNotClosed, "unterminated escaped name")
		}
	}

	l.backup()
	t := l.newToken(TokenNameEsc)
	l.acceptRune(quote)
	l.ignore()
	return t
}

func (l *Lexer) scanName() Token {
	isVar := l.acceptRune('$')
	if isVar {
		l.ignore()
	}

	for {
		ch := l.nextRune()
		if ch == eof {
			break
		}
		if isWhitespace(ch) {
			l.backup()
			break
		}
		if lookupSymbol1(ch) > 0 || lookupSymbol2(ch) != nil {
			l.backup()
			break
		}
	}

	t := l.newToken(TokenName)

	if isVar {
		t.Type = TokenVariable
	} else if tt := lookupKeyword(t.Value); tt > 0 {
		t.Type = tt
	}

	return t
}

func (l *Lexer) eof() Token {
	return Token{Type: TokenEOF, Position: l.current}
}

func (l *Lexer) error(code types.ErrorCode, message string) Token {
	t := l.newToken(TokenError)
	l.err = &types.Error{
		Code:     code,
		Message:  message,
		Position: t.Position,
		Token:    t.Value,
	}
	return t
}

func (l *Lexer) newToken(tt TokenType) Token {
	t := Token{
		Type:     tt,
		Value:    l.input[l.start:l.current],
		Position: l.start,
	}
	l.width = 0
	l.start = l.current
	return t
}

func (l *Lexer) nextRune() rune {
	if l.err != nil || l.current >= l.length {
		l.width = 0
		return eof
	}
	r, w := utf8.DecodeRuneInString(l.input[l.current:])
	l.width = w
	l.current += w
	return r
}

func (l *Lexer) backup() {
	l.current -= l.width
}

func (l *Lexer) ignore() {
	l.start = l.current
}

func (l *Lexer) acceptRune(r rune) bool {
	return l.accept(func(c rune) bool { return c == r })
}

func (l *Lexer) acceptRunes2(r1, r2 rune) bool {
	return l.accept(func(c rune) bool { return c == r1 || c == r2 })
}

func (l *Lexer) accept(isValid func(rune) bool) bool {
	if isValid(l.nextRune()) {
		return true
	}
	l.backup()
	return false
}

func (l *Lexer) acceptAll(isValid func(rune) bool) bool {
	var matched bool
	for l.accept(isValid) {
		matched = true
	}
	return matched
}

func (l *Lexer) skipWhitespace() {
	for {
		if l.err != nil {
			return
		}

		l.acceptAll(isWhitespace)
		l.ignore()

		if l.acceptRune('/') {
			if l.acceptRune('*') {
				for {
					ch := l.nextRune()
					if ch == eof {
						l.err = &types.Error{
							Code:     types.ErrCommentNotClosed,
							Message:  "unclosed comment",
							Position: l.current,
						}
						return
					}
					if ch == '*' {
						if l.acceptRune('/') {
							break
						}
					}
				}
				l.ignore()
			} else {
				l.backup()
				break
			}
		} else {
			break
		}
	}
}

func isWhitespace(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\r', '\v':
		return true
	default:
		return false
	}
}

func isRegexFlag(r rune) bool {
	switch r {
	case 'i', 'm', 's', 'g':
		return true
	default:
		return false
	}
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isNonZeroDigit(r rune) bool {
	return r >= '1' && r <= '9'
}
