package formula

import (
	"errors"
	"testing"

	"github.com/vogtb/go-formula/packages/channel"
)

func tokenTypes(tokens []Token) []TokenType {
	types := make([]TokenType, len(tokens))
	for i, tok := range tokens {
		types[i] = tok.Type
	}
	return types
}

func assertTokenTypes(t *testing.T, source string, want ...TokenType) {
	t.Helper()
	tokens, err := Tokenize(source)
	if err != nil {
		t.Fatalf("Tokenize(%q) failed: %v", source, err)
	}
	got := tokenTypes(tokens)
	if len(got) != len(want) {
		t.Fatalf("Tokenize(%q) = %v, want %v", source, got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Tokenize(%q)[%d] = %s, want %s", source, i, got[i], want[i])
		}
	}
}

func TestLexerTokenTypes(t *testing.T) {
	t.Run("Arithmetic", func(t *testing.T) {
		assertTokenTypes(t, "=1+2*3-4/5",
			TokenNumber, TokenPlus, TokenNumber, TokenMultiply, TokenNumber,
			TokenMinus, TokenNumber, TokenDivide, TokenNumber, TokenEOF)
	})

	t.Run("Call with range", func(t *testing.T) {
		assertTokenTypes(t, `=SUM(A1:B2, "x")`,
			TokenIdentifier, TokenLeftParen, TokenIdentifier, TokenColon, TokenIdentifier,
			TokenComma, TokenString, TokenRightParen, TokenEOF)
	})

	t.Run("Whitespace is skipped", func(t *testing.T) {
		assertTokenTypes(t, "=  1 \t+\n 2  ", TokenNumber, TokenPlus, TokenNumber, TokenEOF)
	})

	t.Run("Identifiers", func(t *testing.T) {
		assertTokenTypes(t, "=_x1 + rate_2", TokenIdentifier, TokenPlus, TokenIdentifier, TokenEOF)
	})

	t.Run("Only equals", func(t *testing.T) {
		assertTokenTypes(t, "=", TokenEOF)
	})
}

func TestLexerTextMode(t *testing.T) {
	tests := []string{"hello world", "", "1+2", " =1", `"quoted"`}

	for _, source := range tests {
		t.Run(source, func(t *testing.T) {
			tokens, err := Tokenize(source)
			if err != nil {
				t.Fatalf("Tokenize(%q) failed: %v", source, err)
			}
			if len(tokens) != 2 {
				t.Fatalf("Tokenize(%q) = %v, want TEXT and EOF", source, tokens)
			}
			if tokens[0].Type != TokenText || tokens[0].Value != source {
				t.Errorf("first token = %v, want TEXT(%q)", tokens[0], source)
			}
			if tokens[1].Type != TokenEOF {
				t.Errorf("second token = %v, want EOF", tokens[1])
			}
		})
	}
}

func TestLexerPositions(t *testing.T) {
	tokens, err := Tokenize(`=A1 + "ab"`)
	if err != nil {
		t.Fatalf("Tokenize failed: %v", err)
	}

	want := []Token{
		{Type: TokenIdentifier, Value: "A1", Pos: 1, Length: 2},
		{Type: TokenPlus, Value: "+", Pos: 4, Length: 1},
		{Type: TokenString, Value: "ab", Pos: 6, Length: 4},
		{Type: TokenEOF, Pos: 10},
	}
	if len(tokens) != len(want) {
		t.Fatalf("got %v, want %v", tokens, want)
	}
	for i := range want {
		if tokens[i] != want[i] {
			t.Errorf("token %d = %+v, want %+v", i, tokens[i], want[i])
		}
	}
}

func TestLexerPositionsCountRunes(t *testing.T) {
	tokens, err := Tokenize(`="世界" + 1`)
	if err != nil {
		t.Fatalf("Tokenize failed: %v", err)
	}
	if tokens[0].Value != "世界" || tokens[0].Length != 4 {
		t.Errorf("string token = %+v, want value 世界 with length 4", tokens[0])
	}
	if tokens[1].Pos != 6 {
		t.Errorf("PLUS at %d, want 6", tokens[1].Pos)
	}
}

func TestLexerNumbers(t *testing.T) {
	tests := map[string]string{
		"=42":    "42",
		"=3.14":  "3.14",
		"=1.2.3": "1.2.3",
		"=10.":   "10.",
	}

	for source, want := range tests {
		t.Run(source, func(t *testing.T) {
			tokens, err := Tokenize(source)
			if err != nil {
				t.Fatalf("Tokenize(%q) failed: %v", source, err)
			}
			if tokens[0].Type != TokenNumber || tokens[0].Value != want {
				t.Errorf("got %v, want NUMBER(%q)", tokens[0], want)
			}
		})
	}
}

func TestLexerErrors(t *testing.T) {
	tests := []struct {
		source string
		pos    int
	}{
		{"=1+$", 3},
		{"=.5", 1},
		{"=A1 & B1", 4},
		{`=1 + "open`, 5},
	}

	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			tokens, err := Tokenize(tt.source)
			var lexErr *LexError
			if !errors.As(err, &lexErr) {
				t.Fatalf("Tokenize(%q) error = %v, want LexError", tt.source, err)
			}
			if lexErr.Pos != tt.pos {
				t.Errorf("LexError at %d, want %d", lexErr.Pos, tt.pos)
			}

			// the stream still ends with exactly one EOF
			eofs := 0
			for _, tok := range tokens {
				if tok.Type == TokenEOF {
					eofs++
				}
			}
			if eofs != 1 || tokens[len(tokens)-1].Type != TokenEOF {
				t.Errorf("tokens = %v, want a single trailing EOF", tokens)
			}
		})
	}
}

func TestLexerClosesChannel(t *testing.T) {
	for _, source := range []string{"=1+2", "=1+$", "text"} {
		t.Run(source, func(t *testing.T) {
			tokens := channel.New[Token]()
			_ = NewLexer(source).Lex(tokens)

			for tokens.Receiving() {
				if _, err := tokens.Pop(); err != nil {
					t.Fatalf("Pop() failed while receiving: %v", err)
				}
			}
			if _, err := tokens.Pop(); !errors.Is(err, channel.ErrClosed) {
				t.Errorf("Pop() after drain = %v, want ErrClosed", err)
			}
		})
	}
}

func TestLexerEOFOnce(t *testing.T) {
	tokens, err := Tokenize("=SUM(1, 2)")
	if err != nil {
		t.Fatalf("Tokenize failed: %v", err)
	}
	eofs := 0
	for _, tok := range tokens {
		if tok.Type == TokenEOF {
			eofs++
		}
	}
	if eofs != 1 {
		t.Errorf("got %d EOF tokens, want 1", eofs)
	}
}
