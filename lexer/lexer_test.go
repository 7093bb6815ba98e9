package lexer

import (
	"nilan/token"
	"testing"
)

func tokenTypes_(tokens []token.Token) []token.TokenType {
	types := make([]token.TokenType, len(tokens))
	for i, tok := range tokens {
		types[i] = tok.TokenType
	}
	return types
}

func TestScanPunctuationAndOperators(t *testing.T) {
	input := `( ) { } , ; . ? : = == ! != < <= > >= + - * / += -= *= /= ++ --`
	lex := New(input)
	tokens, err := lex.Scan()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []token.TokenType{
		token.LPA, token.RPA, token.LCUR, token.RCUR, token.COMMA, token.SEMICOLON,
		token.DOT, token.QUESTION, token.COLON, token.ASSIGN, token.EQUAL_EQUAL,
		token.BANG, token.NOT_EQUAL, token.LESS, token.LESS_EQUAL, token.LARGER,
		token.LARGER_EQUAL, token.ADD, token.SUB, token.MULT, token.DIV,
		token.PLUS_EQUAL, token.MINUS_EQUAL, token.STAR_EQUAL, token.SLASH_EQUAL,
		token.INCREMENT, token.DECREMENT, token.EOF,
	}

	got := tokenTypes_(tokens)
	if len(got) != len(want) {
		t.Fatalf("token count = %d, want %d (%v)", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestScanKeywords(t *testing.T) {
	input := "and or class else false true nil if while for fun return print var this super break continue switch case default instanceof"
	lex := New(input)
	tokens, err := lex.Scan()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []token.TokenType{
		token.AND, token.OR, token.CLASS, token.ELSE, token.FALSE, token.TRUE,
		token.NIL, token.IF, token.WHILE, token.FOR, token.FUNC, token.RETURN,
		token.PRINT, token.VAR, token.THIS, token.SUPER, token.BREAK,
		token.CONTINUE, token.SWITCH, token.CASE, token.DEFAULT, token.INSTANCEOF,
		token.EOF,
	}
	got := tokenTypes_(tokens)
	if len(got) != len(want) {
		t.Fatalf("token count = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestScanNumber(t *testing.T) {
	tests := []struct {
		input string
		want  float64
	}{
		{"42", 42},
		{"3.14", 3.14},
		{"0.5", 0.5},
	}
	for _, tt := range tests {
		lex := New(tt.input)
		tokens, err := lex.Scan()
		if err != nil {
			t.Fatalf("input %q: unexpected error: %v", tt.input, err)
		}
		if tokens[0].TokenType != token.NUMBER {
			t.Fatalf("input %q: token type = %v, want NUMBER", tt.input, tokens[0].TokenType)
		}
		if tokens[0].Literal.(float64) != tt.want {
			t.Errorf("input %q: literal = %v, want %v", tt.input, tokens[0].Literal, tt.want)
		}
	}
}

func TestScanPropertyAccessDoesNotSwallowDot(t *testing.T) {
	lex := New("a.b")
	tokens, err := lex.Scan()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []token.TokenType{token.IDENTIFIER, token.DOT, token.IDENTIFIER, token.EOF}
	got := tokenTypes_(tokens)
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestScanStringLiteral(t *testing.T) {
	lex := New(`"hello world"`)
	tokens, err := lex.Scan()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tokens[0].TokenType != token.STRING {
		t.Fatalf("token type = %v, want STRING", tokens[0].TokenType)
	}
	if tokens[0].Literal.(string) != "hello world" {
		t.Errorf("literal = %q, want %q", tokens[0].Literal, "hello world")
	}
}

func TestScanUnclosedStringIsAnError(t *testing.T) {
	lex := New(`"hello`)
	_, err := lex.Scan()
	if err == nil {
		t.Fatal("expected an error for an unclosed string literal")
	}
}

func TestScanLineComment(t *testing.T) {
	lex := New("var a = 1; // this is a comment\nvar b = 2;")
	tokens, err := lex.Scan()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, tok := range tokens {
		if tok.TokenType == token.IDENTIFIER && tok.Lexeme == "this" {
			t.Fatalf("comment body leaked into token stream: %v", tokens)
		}
	}
}

func TestScanTracksLineNumbers(t *testing.T) {
	lex := New("var a = 1;\nvar b = 2;\nvar c = 3;")
	tokens, err := lex.Scan()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var lines []int32
	for _, tok := range tokens {
		if tok.TokenType == token.IDENTIFIER && len(tok.Lexeme) == 1 {
			lines = append(lines, tok.Line)
		}
	}
	want := []int32{1, 2, 3}
	if len(lines) != len(want) {
		t.Fatalf("identifier lines = %v, want %v", lines, want)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("identifier[%d] line = %d, want %d", i, lines[i], want[i])
		}
	}
}
