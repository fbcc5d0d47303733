package lexer

import (
	"testing"

	"github.com/stride-lang/stride/internal/source"
	"github.com/stride-lang/stride/internal/token"
)

func TestTokenizeDeclaration(t *testing.T) {
	input := `fn add(a: i32, b: i32) : i32 -> { return a + b; }`
	f := source.New("test.sr", input)

	want := []struct {
		typ    token.Type
		lexeme string
	}{
		{token.FN, "fn"},
		{token.IDENT, "add"},
		{token.LPAREN, "("},
		{token.IDENT, "a"},
		{token.COLON, ":"},
		{token.IDENT, "i32"},
		{token.COMMA, ","},
		{token.IDENT, "b"},
		{token.COLON, ":"},
		{token.IDENT, "i32"},
		{token.RPAREN, ")"},
		{token.COLON, ":"},
		{token.IDENT, "i32"},
		{token.DASH_RARROW, "->"},
		{token.LBRACE, "{"},
		{token.RETURN, "return"},
		{token.IDENT, "a"},
		{token.PLUS, "+"},
		{token.IDENT, "b"},
		{token.SEMICOLON, ";"},
		{token.RBRACE, "}"},
		{token.EOF, ""},
	}

	toks := Tokenize(f)
	if len(toks) != len(want) {
		t.Fatalf("token count = %d, want %d", len(toks), len(want))
	}
	for i, w := range want {
		if toks[i].Type != w.typ || toks[i].Lexeme != w.lexeme {
			t.Errorf("token %d = (%v, %q), want (%v, %q)", i, toks[i].Type, toks[i].Lexeme, w.typ, w.lexeme)
		}
	}
}

func TestTokenizeOperatorsAndLiterals(t *testing.T) {
	tests := []struct {
		input  string
		typ    token.Type
		lexeme string
	}{
		{"42", token.INTEGER, "42"},
		{"42L", token.LONG_INTEGER, "42"},
		{"0xFF", token.HEX, "0xFF"},
		{"1.5", token.FLOAT, "1.5"},
		{"1.5D", token.DOUBLE, "1.5"},
		{"2D", token.DOUBLE, "2"},
		{`"hi"`, token.STRING, "hi"},
		{`"a\nb"`, token.STRING, "a\nb"},
		{"'x'", token.CHAR, "x"},
		{"true", token.BOOLEAN, "true"},
		{"false", token.BOOLEAN, "false"},
		{"nil", token.NIL, "nil"},
		{"::", token.DOUBLE_COLON, "::"},
		{"...", token.THREE_DOTS, "..."},
		{"->", token.DASH_RARROW, "->"},
		{"<-", token.LARROW, "<-"},
		{"=>", token.RARROW, "=>"},
		{"==", token.DOUBLE_EQUALS, "=="},
		{"!=", token.BANG_EQUALS, "!="},
		{"<=", token.LEQUALS, "<="},
		{">=", token.GEQUALS, ">="},
		{"&&", token.DOUBLE_AMPERSAND, "&&"},
		{"||", token.DOUBLE_PIPE, "||"},
		{"%", token.PERCENT, "%"},
		{"mut", token.MUT, "mut"},
		{"use", token.USE, "use"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			toks := Tokenize(source.New("test.sr", tt.input))
			if toks[0].Type != tt.typ {
				t.Fatalf("type = %v, want %v", toks[0].Type, tt.typ)
			}
			if toks[0].Lexeme != tt.lexeme {
				t.Fatalf("lexeme = %q, want %q", toks[0].Lexeme, tt.lexeme)
			}
		})
	}
}

func TestTokenizeSkipsComments(t *testing.T) {
	input := "a // line comment\n/* block\ncomment */ b"
	toks := Tokenize(source.New("test.sr", input))
	if len(toks) != 3 {
		t.Fatalf("token count = %d, want 3 (a, b, EOF)", len(toks))
	}
	if toks[0].Lexeme != "a" || toks[1].Lexeme != "b" {
		t.Fatalf("tokens = %q, %q, want a, b", toks[0].Lexeme, toks[1].Lexeme)
	}
}

func TestTokenOffsetsAreByteIndices(t *testing.T) {
	input := "let x = 42;"
	toks := Tokenize(source.New("test.sr", input))

	wantOffsets := []int{0, 4, 6, 8, 10}
	for i, off := range wantOffsets {
		if toks[i].Pos.Offset != off {
			t.Errorf("token %d offset = %d, want %d", i, toks[i].Pos.Offset, off)
		}
	}
}
