// Package scanner turns Orus source text into a stream of token.Lexeme
// values. The language core treats this as an external collaborator (see
// spec §1): the parser only depends on the token.Lexeme contract, not on
// this package's internals. It is kept here because a parser with nothing
// to consume cannot be grounded or tested.
package scanner

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/orus-lang/orus/lang/token"
)

// Scanner turns a source buffer into a sequence of token.Lexeme.
type Scanner struct {
	src  string
	file string

	start, offset int
	line, col     int

	// parenDepth tracks unbalanced ( and [ nesting; while > 0, newlines are
	// transparent (spec §4.1).
	parenDepth int
	// afterContinuation is true right after a token that makes a following
	// newline transparent (binary op, comma, '(' , '[').
	afterContinuation bool

	pending []token.Lexeme
	errs    []error
}

// New creates a Scanner over src, associated with the given file name for
// error reporting.
func New(file, src string) *Scanner {
	return &Scanner{src: src, file: file, line: 1, col: 1}
}

// Errs returns the lexical errors accumulated so far.
func (s *Scanner) Errs() []error { return s.errs }

// All scans the entire source and returns the resulting lexemes, always
// terminated by a single token.EOF lexeme.
func (s *Scanner) All() []token.Lexeme {
	var out []token.Lexeme
	for {
		lx := s.Next()
		out = append(out, lx)
		if lx.Tok == token.EOF {
			return out
		}
	}
}

// Next scans and returns the next lexeme.
func (s *Scanner) Next() token.Lexeme {
	if len(s.pending) > 0 {
		lx := s.pending[0]
		s.pending = s.pending[1:]
		return lx
	}
	return s.scanOne()
}

func (s *Scanner) errAt(line, col int, format string, args ...interface{}) {
	s.errs = append(s.errs, fmt.Errorf("%s:%d:%d: %s", s.file, line, col, fmt.Sprintf(format, args...)))
}

func (s *Scanner) peekByte() byte {
	if s.offset >= len(s.src) {
		return 0
	}
	return s.src[s.offset]
}

func (s *Scanner) peekByte2() byte {
	if s.offset+1 >= len(s.src) {
		return 0
	}
	return s.src[s.offset+1]
}

func (s *Scanner) advance() byte {
	b := s.src[s.offset]
	s.offset++
	if b == '\n' {
		s.line++
		s.col = 1
	} else {
		s.col++
	}
	return b
}

func (s *Scanner) match(b byte) bool {
	if s.peekByte() != b {
		return false
	}
	s.advance()
	return true
}

func (s *Scanner) make(tok token.Token, line, col int) token.Lexeme {
	return token.Lexeme{Tok: tok, Lit: s.src[s.start:s.offset], Pos: token.MakePos(line, col)}
}

func (s *Scanner) scanOne() token.Lexeme {
	for {
		s.skipSpacesAndComments()
		if s.offset >= len(s.src) {
			return token.Lexeme{Tok: token.EOF, Pos: token.MakePos(s.line, s.col)}
		}

		line, col := s.line, s.col
		s.start = s.offset
		b := s.advance()

		switch {
		case b == '\n':
			if s.parenDepth > 0 || s.afterContinuation {
				continue
			}
			s.afterContinuation = false
			return s.make(token.NEWLINE, line, col)
		case isDigit(b):
			s.afterContinuation = false
			return s.scanNumber(line, col)
		case isIdentStart(b):
			s.afterContinuation = false
			return s.scanIdent(line, col)
		case b == '"':
			s.afterContinuation = false
			return s.scanString(line, col)
		}

		lx, transparent := s.scanPunct(b, line, col)
		s.afterContinuation = transparent
		return lx
	}
}

func (s *Scanner) skipSpacesAndComments() {
	for s.offset < len(s.src) {
		b := s.src[s.offset]
		switch {
		case b == ' ' || b == '\t' || b == '\r':
			s.advance()
		case b == '#':
			for s.offset < len(s.src) && s.src[s.offset] != '\n' {
				s.advance()
			}
		default:
			return
		}
	}
}

func isDigit(b byte) bool      { return b >= '0' && b <= '9' }
func isHexDigit(b byte) bool   { return isDigit(b) || (b >= 'a' && b <= 'f') || (b >= 'A' && b <= 'F') }
func isIdentStart(b byte) bool { return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || b >= utf8.RuneSelf }
func isIdentCont(b byte) bool  { return isIdentStart(b) || isDigit(b) }

func (s *Scanner) scanIdent(line, col int) token.Lexeme {
	for s.offset < len(s.src) && isIdentCont(s.src[s.offset]) {
		s.advance()
	}
	lit := s.src[s.start:s.offset]
	if lit == "_" {
		return token.Lexeme{Tok: token.UNDERSCORE, Lit: lit, Pos: token.MakePos(line, col)}
	}
	if tok, ok := token.Keywords[lit]; ok {
		return token.Lexeme{Tok: tok, Lit: lit, Pos: token.MakePos(line, col)}
	}
	return token.Lexeme{Tok: token.IDENT, Lit: lit, Pos: token.MakePos(line, col)}
}

// scanNumber implements spec §4.1's numeric literal rules: underscores are
// stripped by the parser (the raw lexeme keeps them so error messages can
// show the original text), a trailing u/U forces unsigned, 0x/0X selects
// hex, and the presence of '.', 'e' or 'E' selects float.
func (s *Scanner) scanNumber(line, col int) token.Lexeme {
	isHex := false
	if s.src[s.start] == '0' && (s.peekByte() == 'x' || s.peekByte() == 'X') {
		isHex = true
		s.advance()
		for s.offset < len(s.src) && (isHexDigit(s.src[s.offset]) || s.src[s.offset] == '_') {
			s.advance()
		}
		if s.offset < len(s.src) && (s.peekByte() == 'u' || s.peekByte() == 'U') {
			s.advance()
		}
		return s.make(token.INT, line, col)
	}

	for s.offset < len(s.src) && (isDigit(s.src[s.offset]) || s.src[s.offset] == '_') {
		s.advance()
	}

	isFloat := false
	if s.peekByte() == '.' && isDigit(s.peekByte2()) {
		isFloat = true
		s.advance()
		for s.offset < len(s.src) && (isDigit(s.src[s.offset]) || s.src[s.offset] == '_') {
			s.advance()
		}
	}
	if s.peekByte() == 'e' || s.peekByte() == 'E' {
		isFloat = true
		s.advance()
		if s.peekByte() == '+' || s.peekByte() == '-' {
			s.advance()
		}
		for s.offset < len(s.src) && isDigit(s.src[s.offset]) {
			s.advance()
		}
	}
	if !isFloat && !isHex && (s.peekByte() == 'u' || s.peekByte() == 'U') {
		s.advance()
	}
	return s.make(token.INT, line, col) // FLOAT is re-tagged by parser by inspecting the raw text (see parser.parseNumber)
}

func (s *Scanner) scanString(line, col int) token.Lexeme {
	var sb strings.Builder
	for s.offset < len(s.src) {
		b := s.peekByte()
		if b == '"' {
			s.advance()
			return token.Lexeme{Tok: token.STRING, Lit: sb.String(), Pos: token.MakePos(line, col)}
		}
		if b == '\n' || s.offset >= len(s.src) {
			break
		}
		s.advance()
		if b == '\\' {
			esc := s.peekByte()
			s.advance()
			switch esc {
			case 'n':
				sb.WriteByte('\n')
			case 't':
				sb.WriteByte('\t')
			case '\\':
				sb.WriteByte('\\')
			case '"':
				sb.WriteByte('"')
			default:
				s.errAt(line, col, "invalid escape sequence \\%c", esc)
				sb.WriteByte(esc)
			}
			continue
		}
		sb.WriteByte(b)
	}
	s.errAt(line, col, "unterminated string literal")
	return token.Lexeme{Tok: token.STRING, Lit: sb.String(), Pos: token.MakePos(line, col)}
}

// scanPunct scans a punctuation token and reports whether it makes a
// following newline transparent (binary operator, comma, '(' or '[').
func (s *Scanner) scanPunct(b byte, line, col int) (token.Lexeme, bool) {
	mk := func(tok token.Token) token.Lexeme { return s.make(tok, line, col) }

	switch b {
	case '+':
		if s.match('=') {
			return mk(token.PLUS_EQ), true
		}
		return mk(token.PLUS), true
	case '-':
		if s.match('=') {
			return mk(token.MINUS_EQ), true
		}
		if s.match('>') {
			return mk(token.ARROW), true
		}
		return mk(token.MINUS), true
	case '*':
		if s.match('=') {
			return mk(token.STAR_EQ), true
		}
		return mk(token.STAR), true
	case '/':
		if s.match('=') {
			return mk(token.SLASH_EQ), true
		}
		return mk(token.SLASH), true
	case '%':
		if s.match('=') {
			return mk(token.PERCENT_EQ), true
		}
		return mk(token.PERCENT), true
	case '&':
		return mk(token.AMPERSAND), true
	case '|':
		return mk(token.PIPE), true
	case '^':
		return mk(token.CIRCUMFLEX), true
	case '~':
		return mk(token.TILDE), false
	case '.':
		if s.match('.') {
			return mk(token.DOTDOT), true
		}
		return mk(token.DOT), false
	case ',':
		return mk(token.COMMA), true
	case '=':
		if s.match('=') {
			return mk(token.EQEQ), true
		}
		if s.match('>') {
			return mk(token.FATARROW), true
		}
		return mk(token.EQ), true
	case ':':
		if s.match(':') {
			return mk(token.COLONCOLON), true
		}
		return mk(token.COLON), true
	case '?':
		return mk(token.QUESTION), true
	case '(':
		s.parenDepth++
		return mk(token.LPAREN), true
	case ')':
		if s.parenDepth > 0 {
			s.parenDepth--
		}
		return mk(token.RPAREN), false
	case '[':
		s.parenDepth++
		return mk(token.LBRACK), true
	case ']':
		if s.parenDepth > 0 {
			s.parenDepth--
		}
		return mk(token.RBRACK), false
	case '{':
		return mk(token.LBRACE), true
	case '}':
		return mk(token.RBRACE), false
	case '<':
		if s.match('<') {
			return mk(token.LTLT), true
		}
		if s.match('=') {
			return mk(token.LE), true
		}
		return mk(token.LT), true
	case '>':
		if s.match('>') {
			return mk(token.GTGT), true
		}
		if s.match('=') {
			return mk(token.GE), true
		}
		return mk(token.GT), true
	case '!':
		if s.match('=') {
			return mk(token.NEQ), true
		}
		s.errAt(line, col, "unexpected character %q", b)
		return mk(token.ILLEGAL), false
	case ';':
		// semicolons are diagnosed and skipped (spec §4.1).
		s.errAt(line, col, "unexpected ';', statements are newline-terminated")
		return s.scanOne(), false
	default:
		s.errAt(line, col, "unexpected character %q", b)
		return mk(token.ILLEGAL), false
	}
}
