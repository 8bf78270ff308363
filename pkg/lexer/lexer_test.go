package lexer

import "testing"

type lexerCase struct {
	name     string
	input    string
	expected []Token
}

func collect(input string) []Token {
	lex := NewLexer(input)
	var toks []Token
	for {
		tok := lex.Next(false)
		toks = append(toks, tok)
		if tok.Type == TokenEOF || tok.Type == TokenError {
			break
		}
	}
	return toks
}

func runLexerCases(t *testing.T, cases []lexerCase) {
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := collect(tc.input)
			if len(got) != len(tc.expected) {
				t.Fatalf("token count: got %d (%v), want %d (%v)", len(got), got, len(tc.expected), tc.expected)
			}
			for i, want := range tc.expected {
				if got[i].Type != want.Type || got[i].Value != want.Value {
					t.Errorf("token %d: got {%v %q}, want {%v %q}", i, got[i].Type, got[i].Value, want.Type, want.Value)
				}
			}
		})
	}
}

func TestLexerLiterals(t *testing.T) {
	runLexerCases(t, []lexerCase{
		{"name", "abc", []Token{{Type: TokenName, Value: "abc"}, {Type: TokenEOF}}},
		{"number", "42.5", []Token{{Type: TokenNumber, Value: "42.5"}, {Type: TokenEOF}}},
		{"double quoted string", `"hi"`, []Token{{Type: TokenString, Value: "hi"}, {Type: TokenEOF}}},
		{"single quoted string", `'hi'`, []Token{{Type: TokenString, Value: "hi"}, {Type: TokenEOF}}},
		{"variable", "$x", []Token{{Type: TokenVariable, Value: "x"}, {Type: TokenEOF}}},
		{"bare dollar", "$", []Token{{Type: TokenVariable, Value: ""}, {Type: TokenEOF}}},
		{"backtick name", "`a b`", []Token{{Type: TokenNameEsc, Value: "a b"}, {Type: TokenEOF}}},
		{"boolean true", "true", []Token{{Type: TokenBoolean, Value: "true"}, {Type: TokenEOF}}},
		{"null", "null", []Token{{Type: TokenNull, Value: "null"}, {Type: TokenEOF}}},
	})
}

func TestLexerOperators(t *testing.T) {
	runLexerCases(t, []lexerCase{
		{"descendant", "**", []Token{{Type: TokenDescendent, Value: "**"}, {Type: TokenEOF}}},
		{"chain", "~>", []Token{{Type: TokenApply, Value: "~>"}, {Type: TokenEOF}}},
		{"assign", ":=", []Token{{Type: TokenAssign, Value: ":="}, {Type: TokenEOF}}},
		{"range", "1..2", []Token{
			{Type: TokenNumber, Value: "1"},
			{Type: TokenRange, Value: ".."},
			{Type: TokenNumber, Value: "2"},
			{Type: TokenEOF},
		}},
		{"coalesce", "??", []Token{{Type: TokenCoalesce, Value: "??"}, {Type: TokenEOF}}},
		{"focus", "@", []Token{{Type: TokenAt, Value: "@"}, {Type: TokenEOF}}},
		{"index bind", "#", []Token{{Type: TokenHash, Value: "#"}, {Type: TokenEOF}}},
	})
}

func TestLexerRegexContext(t *testing.T) {
	lex := NewLexer(`/ab[c/]d/i`)
	tok := lex.Next(true)
	if tok.Type != TokenRegex {
		t.Fatalf("expected regex token, got %v %q", tok.Type, tok.Value)
	}
}

func TestLexerBlockComment(t *testing.T) {
	lex := NewLexer("/* a comment */ abc")
	tok := lex.Next(false)
	if tok.Type != TokenName || tok.Value != "abc" {
		t.Fatalf("expected name 'abc' after comment, got %v %q", tok.Type, tok.Value)
	}
}

func TestLexerUnterminatedString(t *testing.T) {
	lex := NewLexer(`"unterminated`)
	tok := lex.Next(false)
	if tok.Type != TokenError {
		t.Fatalf("expected error token for unterminated string, got %v", tok.Type)
	}
	if lex.Error() == nil {
		t.Fatal("expected non-nil Error() after unterminated string")
	}
}

func TestLexerUnterminatedBacktickName(t *testing.T) {
	lex := NewLexer("`unterminated")
	tok := lex.Next(false)
	if tok.Type != TokenError {
		t.Fatalf("expected error token for unterminated name, got %v", tok.Type)
	}
}
