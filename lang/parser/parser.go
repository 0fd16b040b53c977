// Package parser implements Orus's Pratt-style expression and statement
// parser (spec §4.1). It consumes a token.Lexeme stream and produces a
// typed *ast.Chunk plus an out error flag; no type information is filled
// in at this stage (that is the compiler's job, spec §4.2).
package parser

import (
	"errors"

	"github.com/orus-lang/orus/internal/diag"
	"github.com/orus-lang/orus/lang/ast"
	"github.com/orus-lang/orus/lang/token"
)

// TokenSource is the interface the parser consumes. *scanner.Scanner
// implements it; tests can supply a canned slice-backed source instead.
type TokenSource interface {
	Next() token.Lexeme
}

// Precedence levels, lowest to highest (spec §4.1 table).
const (
	precNone       = iota
	precAssign     // = += -= *= /= %=
	precTernary    // ?:
	precOr         // or
	precAnd        // and
	precBitOr      // |
	precBitXor     // ^
	precBitAnd     // &
	precEquality   // == !=
	precComparison // < > <= >=
	precShift      // << >>
	precTerm       // + -
	precFactor     // * / %
	precUnary      // - not ~
	precCall       // . () [] as
)

type (
	prefixFn func(p *Parser) ast.Expr
	infixFn  func(p *Parser, left ast.Expr) ast.Expr
)

type rule struct {
	prefix prefixFn
	infix  infixFn
	prec   int
}

// Parser turns a token.Lexeme stream into a typed AST.
type Parser struct {
	src  TokenSource
	file string

	cur, prev token.Lexeme
	hadError  bool
	panicMode bool
	errs      []*diag.Error

	// inFunction > 0 while parsing a function body, used to reject
	// `return`/`break`/`continue` outside their enclosing construct and to
	// reject `let` at module top level / `const`+`static` inside functions.
	inFunction int
	loopDepth  int

	// noStructLit suppresses struct-literal recognition while parsing a
	// condition that is immediately followed by a block, e.g. `if Point { }`
	// must parse `Point` as a variable reference, not the head of a struct
	// literal competing with the block's opening brace.
	noStructLit int

	rules map[token.Token]rule
}

// condExpr parses a condition expression in a context where a following
// `{` belongs to a block, not a struct literal.
func (p *Parser) condExpr() ast.Expr {
	p.noStructLit++
	e := p.expression(precOr)
	p.noStructLit--
	return e
}

// New creates a Parser reading lexemes from src, with file used for error
// reporting.
func New(file string, src TokenSource) *Parser {
	p := &Parser{src: src, file: file}
	p.rules = p.buildRules()
	p.advance()
	return p
}

// Errs returns the accumulated parse errors.
func (p *Parser) Errs() []*diag.Error { return p.errs }

// HadError reports whether any error was recorded.
func (p *Parser) HadError() bool { return p.hadError }

// ParseChunk parses an entire token stream into a top-level chunk.
func (p *Parser) ParseChunk() *ast.Chunk {
	start := p.cur.Pos
	ch := &ast.Chunk{Name: p.file, Start: start}
	p.skipNewlines()
	for p.cur.Tok != token.EOF {
		if stmt := p.recoverStmt(p.topLevelStmt); stmt != nil {
			ch.Stmts = append(ch.Stmts, stmt)
		}
		p.skipNewlines()
	}
	ch.End = p.cur.Pos
	return ch
}

// ---- token plumbing ----

func (p *Parser) advance() {
	p.prev = p.cur
	for {
		p.cur = p.src.Next()
		if p.cur.Tok != token.ILLEGAL {
			break
		}
	}
}

func (p *Parser) check(tok token.Token) bool { return p.cur.Tok == tok }

func (p *Parser) match(tok token.Token) bool {
	if !p.check(tok) {
		return false
	}
	p.advance()
	return true
}

// errPanicMode is panicked by expect on a missing token and recovered at
// the statement level, where the offending statement is dropped and
// parsing resumes at the next statement boundary.
var errPanicMode = errors.New("parser: panic mode")

func (p *Parser) expect(tok token.Token, context string) token.Lexeme {
	if p.cur.Tok == tok {
		cur := p.cur
		p.advance()
		return cur
	}
	p.errorAt(p.cur, "expected %s %s, found %s", tok.GoString(), context, p.cur.Tok.GoString())
	panic(errPanicMode)
}

// recoverStmt wraps a statement-parsing function so that a panic(errPanicMode)
// raised anywhere below it (by expect) unwinds to this statement boundary,
// synchronizes, and yields nil rather than a half-built node.
func (p *Parser) recoverStmt(parse func() ast.Stmt) (stmt ast.Stmt) {
	defer func() {
		if r := recover(); r != nil {
			if r != errPanicMode {
				panic(r)
			}
			p.synchronize()
			stmt = nil
		}
	}()
	return parse()
}

func (p *Parser) skipNewlines() {
	for p.cur.Tok == token.NEWLINE {
		p.advance()
	}
}

// endOfStmt consumes the newline terminating a statement (spec §4.1:
// "Statement terminator: newline"). It tolerates EOF, `}` and `,` (the
// separator after a match arm's statement) without consuming them, since
// those also end a statement implicitly.
func (p *Parser) endOfStmt() {
	if p.cur.Tok == token.NEWLINE {
		p.advance()
		return
	}
	if p.cur.Tok == token.EOF || p.cur.Tok == token.RBRACE || p.cur.Tok == token.COMMA {
		return
	}
	p.errorAt(p.cur, "expected end of statement, found %s", p.cur.Tok.GoString())
	p.synchronize()
}

func (p *Parser) errorAt(lx token.Lexeme, format string, args ...interface{}) {
	if p.panicMode {
		return
	}
	p.panicMode = true
	p.hadError = true
	line, col := lx.Pos.LineCol()
	p.errs = append(p.errs, diag.New(diag.Parse, diag.Span{File: p.file, Line: line, Column: col, Length: len(lx.Lit)}, format, args...))
}

// synchronize implements spec §4.1's panic-mode recovery: skip tokens
// until a statement boundary (newline or a start-of-statement keyword). It
// always consumes the token that triggered the error before looking for a
// boundary, guaranteeing forward progress.
func (p *Parser) synchronize() {
	p.panicMode = false
	if p.cur.Tok != token.EOF {
		p.advance()
	}
	for p.cur.Tok != token.EOF {
		if p.prev.Tok == token.NEWLINE {
			return
		}
		switch p.cur.Tok {
		case token.LET, token.CONST, token.STATIC, token.FN, token.STRUCT, token.IMPL,
			token.IF, token.WHILE, token.FOR, token.MATCH, token.TRY, token.RETURN,
			token.BREAK, token.CONTINUE, token.USE, token.PRINT:
			return
		}
		p.advance()
	}
}

func lineOf(pos token.Pos) int { return pos.Line() }
