package scanner_test

import (
	"testing"

	"github.com/orus-lang/orus/lang/scanner"
	"github.com/orus-lang/orus/lang/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func toks(t *testing.T, src string) []token.Token {
	t.Helper()
	s := scanner.New("test.orus", src)
	lexemes := s.All()
	require.Empty(t, s.Errs())
	out := make([]token.Token, len(lexemes))
	for i, lx := range lexemes {
		out[i] = lx.Tok
	}
	return out
}

func TestScanPunctuationAndKeywords(t *testing.T) {
	got := toks(t, "let mut x: i32 = 1 + 2 * 3\n")
	want := []token.Token{
		token.LET, token.MUT, token.IDENT, token.COLON, token.IDENT, token.EQ,
		token.INT, token.PLUS, token.INT, token.STAR, token.INT, token.NEWLINE, token.EOF,
	}
	assert.Equal(t, want, got)
}

func TestScanNewlineTransparentInsideParens(t *testing.T) {
	got := toks(t, "fn add(\n  a: i32,\n  b: i32\n) -> i32 {\n  return a + b\n}\n")
	// no NEWLINE tokens should appear until after the closing ')' of the
	// parameter list lets paren-depth drop back to zero.
	depth := 0
	for _, tk := range got {
		switch tk {
		case token.LPAREN:
			depth++
		case token.RPAREN:
			depth--
		case token.NEWLINE:
			require.Zero(t, depth, "newline observed while inside parens")
		}
	}
}

func TestScanCompoundAssignAndArrow(t *testing.T) {
	got := toks(t, "x += 1\nfn f() -> i32 { return 0 }\n")
	assert.Contains(t, got, token.PLUS_EQ)
	assert.Contains(t, got, token.ARROW)
}

func TestScanHexAndUnsignedIntLiterals(t *testing.T) {
	s := scanner.New("test.orus", "0xFFu 10_000 3.14 1e10")
	lexemes := s.All()
	require.Empty(t, s.Errs())
	require.Len(t, lexemes, 5) // 4 literals + EOF
	for _, lx := range lexemes[:4] {
		assert.Equal(t, token.INT, lx.Tok, "scanner stages all numeric literals as INT; float re-tagging happens in the parser")
	}
}

func TestScanUnterminatedString(t *testing.T) {
	s := scanner.New("test.orus", "\"abc")
	s.All()
	require.NotEmpty(t, s.Errs())
}

func TestScanSemicolonDiagnosed(t *testing.T) {
	s := scanner.New("test.orus", "x = 1; y = 2\n")
	s.All()
	require.NotEmpty(t, s.Errs())
}
