package parser

import (
	"github.com/orus-lang/orus/lang/ast"
	"github.com/orus-lang/orus/lang/token"
)

// topLevelStmt parses one top-level statement. Only `let`/`static` are
// distinguished from function-local statements: module-level mutable
// bindings must use `static`, while `let` is reserved for function bodies
// (spec §4.1).
func (p *Parser) topLevelStmt() ast.Stmt {
	switch p.cur.Tok {
	case token.STATIC:
		return p.staticStmt()
	case token.CONST:
		return p.constStmt()
	case token.FN:
		return p.funcStmt("")
	case token.STRUCT:
		return p.structStmt()
	case token.IMPL:
		return p.implStmt()
	case token.USE:
		return p.useStmt()
	case token.LET:
		p.errorAt(p.cur, "'let' is not allowed at module top level, use 'static' instead")
		return p.letStmt(false)
	default:
		return p.statement()
	}
}

// statement parses one statement inside a function body or block.
func (p *Parser) statement() ast.Stmt {
	switch p.cur.Tok {
	case token.LET:
		return p.letStmt(false)
	case token.CONST:
		return p.constStmt()
	case token.PRINT:
		return p.printStmt()
	case token.IF:
		return p.ifStmt()
	case token.WHILE:
		return p.whileStmt()
	case token.FOR:
		return p.forStmt()
	case token.MATCH:
		return p.matchStmt()
	case token.TRY:
		return p.tryStmt()
	case token.RETURN:
		return p.returnStmt()
	case token.BREAK:
		return p.breakStmt()
	case token.CONTINUE:
		return p.continueStmt()
	case token.FN:
		return p.funcStmt("")
	case token.STRUCT:
		return p.structStmt()
	case token.IMPL:
		return p.implStmt()
	case token.USE:
		return p.useStmt()
	case token.LBRACE:
		return p.blockStmt()
	default:
		return p.exprStmt()
	}
}

// block parses a `{ stmt* }` sequence.
func (p *Parser) block() *ast.Block {
	lbrace := p.expect(token.LBRACE, "to start block").Pos
	b := &ast.Block{Start: lbrace}
	p.skipNewlines()
	for !p.check(token.RBRACE) && p.cur.Tok != token.EOF {
		if s := p.recoverStmt(p.statement); s != nil {
			b.Stmts = append(b.Stmts, s)
		}
		p.skipNewlines()
	}
	b.End = p.expect(token.RBRACE, "to close block").Pos
	return b
}

func (p *Parser) blockStmt() ast.Stmt {
	b := p.block()
	return &ast.BlockStmt{StmtBase: ast.NewStmtBase(lineOf(b.Start)), Body: b}
}

func (p *Parser) typeExpr() *ast.TypeExpr {
	if p.match(token.LBRACK) {
		elem := p.typeExpr()
		p.expect(token.RBRACK, "to close array type")
		return &ast.TypeExpr{Name: "array", Elem: elem}
	}
	nameTok := p.expect(token.IDENT, "type name")
	te := &ast.TypeExpr{Name: nameTok.Lit}
	if p.match(token.LT) {
		for {
			te.Generics = append(te.Generics, p.typeExpr())
			if !p.match(token.COMMA) {
				break
			}
		}
		p.expect(token.GT, "to close generic argument list")
	}
	return te
}

func (p *Parser) letStmt(global bool) ast.Stmt {
	pos := p.cur.Pos
	p.advance() // 'let'
	mut := p.match(token.MUT)
	nameTok := p.expect(token.IDENT, "after 'let'")
	var typ *ast.TypeExpr
	if p.match(token.COLON) {
		typ = p.typeExpr()
	}
	p.expect(token.EQ, "in let statement")
	value := p.parseExpr()
	endPos := p.cur.Pos
	p.endOfStmt()
	return &ast.LetStmt{
		StmtBase: ast.NewStmtBase(lineOf(pos)),
		Name:     nameTok.Lit,
		Mut:      mut,
		Type:     typ,
		Value:    value,
		Pos:      pos,
		EndPos:   endPos,
		Global:   global,
	}
}

func (p *Parser) staticStmt() ast.Stmt {
	pos := p.cur.Pos
	p.advance() // 'static'
	mut := p.match(token.MUT)
	nameTok := p.expect(token.IDENT, "after 'static'")
	var typ *ast.TypeExpr
	if p.match(token.COLON) {
		typ = p.typeExpr()
	}
	p.expect(token.EQ, "in static statement")
	value := p.parseExpr()
	endPos := p.cur.Pos
	p.endOfStmt()
	return &ast.StaticStmt{
		StmtBase: ast.NewStmtBase(lineOf(pos)),
		Name:     nameTok.Lit,
		Mut:      mut,
		Type:     typ,
		Value:    value,
		Pos:      pos,
		EndPos:   endPos,
	}
}

func (p *Parser) constStmt() ast.Stmt {
	pos := p.cur.Pos
	p.advance() // 'const'
	nameTok := p.expect(token.IDENT, "after 'const'")
	var typ *ast.TypeExpr
	if p.match(token.COLON) {
		typ = p.typeExpr()
	}
	p.expect(token.EQ, "in const statement")
	valExpr := p.parseExpr()
	lit, ok := valExpr.(*ast.LiteralExpr)
	if !ok {
		p.errorAt(p.prev, "const initializer must be a literal")
		lit = &ast.LiteralExpr{Pos: pos}
	}
	endPos := p.cur.Pos
	p.endOfStmt()
	return &ast.ConstStmt{
		StmtBase: ast.NewStmtBase(lineOf(pos)),
		Name:     nameTok.Lit,
		Type:     typ,
		Value:    lit,
		Pos:      pos,
		EndPos:   endPos,
	}
}

func (p *Parser) exprStmt() ast.Stmt {
	pos := p.cur.Pos
	x := p.parseExpr()
	p.endOfStmt()
	return &ast.ExprStmt{StmtBase: ast.NewStmtBase(lineOf(pos)), X: x, Pos: pos}
}

// printStmt parses `print(expr)` or `print(fmt, args...)`. Per spec §4.1,
// when more than one argument is present the first must be a string
// literal (the format string); that constraint is enforced here rather
// than left to the compiler, since it is purely syntactic.
func (p *Parser) printStmt() ast.Stmt {
	pos := p.cur.Pos
	p.advance() // 'print'
	p.expect(token.LPAREN, "after 'print'")
	format := p.parseExpr()
	var args []ast.Expr
	for p.match(token.COMMA) {
		if len(args) == 0 {
			if lit, ok := format.(*ast.LiteralExpr); !ok || lit.Tok != token.STRING {
				p.errorAt(p.prev, "print format argument must be a string literal when additional arguments are given")
			}
		}
		args = append(args, p.parseExpr())
	}
	p.expect(token.RPAREN, "to close 'print'")
	endPos := p.cur.Pos
	p.endOfStmt()
	return &ast.PrintStmt{StmtBase: ast.NewStmtBase(lineOf(pos)), Format: format, Args: args, Pos: pos, EndPos: endPos}
}

func (p *Parser) ifStmt() ast.Stmt {
	pos := p.cur.Pos
	p.advance() // 'if'
	st := &ast.IfStmt{StmtBase: ast.NewStmtBase(lineOf(pos)), Pos: pos}
	cond := p.condExpr()
	body := p.block()
	st.Branches = append(st.Branches, ast.IfBranch{Cond: cond, Body: body})
	for p.check(token.ELIF) {
		p.advance()
		c := p.condExpr()
		b := p.block()
		st.Branches = append(st.Branches, ast.IfBranch{Cond: c, Body: b})
	}
	if p.match(token.ELSE) {
		st.Else = p.block()
	}
	st.EndPos = p.prev.Pos
	return st
}

func (p *Parser) whileStmt() ast.Stmt {
	pos := p.cur.Pos
	p.advance() // 'while'
	cond := p.condExpr()
	p.loopDepth++
	body := p.block()
	p.loopDepth--
	return &ast.WhileStmt{StmtBase: ast.NewStmtBase(lineOf(pos)), Cond: cond, Body: body, Pos: pos, EndPos: p.prev.Pos}
}

// forStmt parses `for ident in start..end[..step] { }` and the
// `for ident in range(start, end[, step]) { }` form, which desugars
// identically (spec §4.1, §4.2).
func (p *Parser) forStmt() ast.Stmt {
	pos := p.cur.Pos
	p.advance() // 'for'
	nameTok := p.expect(token.IDENT, "loop variable")
	p.expect(token.IN, "in for statement")

	var start, end, step ast.Expr
	if p.check(token.IDENT) && p.cur.Lit == "range" {
		p.advance()
		p.expect(token.LPAREN, "after 'range'")
		start = p.condExpr()
		p.expect(token.COMMA, "in 'range' call")
		end = p.condExpr()
		if p.match(token.COMMA) {
			step = p.condExpr()
		}
		p.expect(token.RPAREN, "to close 'range' call")
	} else {
		start = p.condExpr()
		p.expect(token.DOTDOT, "in for-range expression")
		end = p.condExpr()
		if p.match(token.DOTDOT) {
			step = p.condExpr()
		}
	}

	p.loopDepth++
	body := p.block()
	p.loopDepth--
	return &ast.ForRangeStmt{
		StmtBase: ast.NewStmtBase(lineOf(pos)),
		Var:      nameTok.Lit,
		Start:    start,
		End:      end,
		Step:     step,
		Body:     body,
		Pos:      pos,
		EndPos:   p.prev.Pos,
	}
}

// matchStmt parses `match value { pattern => stmt, _ => stmt }`.
func (p *Parser) matchStmt() ast.Stmt {
	pos := p.cur.Pos
	p.advance() // 'match'
	value := p.condExpr()
	p.expect(token.LBRACE, "to start match body")
	p.skipNewlines()
	st := &ast.MatchStmt{StmtBase: ast.NewStmtBase(lineOf(pos)), Value: value, Pos: pos}
	for !p.check(token.RBRACE) && p.cur.Tok != token.EOF {
		var pattern ast.Expr
		if p.match(token.UNDERSCORE) {
			pattern = nil
		} else {
			pattern = p.expression(precOr)
		}
		p.expect(token.FATARROW, "in match arm")
		var body ast.Stmt
		if p.check(token.LBRACE) {
			body = p.blockStmt()
		} else {
			body = p.statement()
		}
		st.Arms = append(st.Arms, ast.MatchArm{Pattern: pattern, Body: body})
		p.match(token.COMMA)
		p.skipNewlines()
	}
	st.EndPos = p.expect(token.RBRACE, "to close match").Pos
	return st
}

func (p *Parser) tryStmt() ast.Stmt {
	pos := p.cur.Pos
	p.advance() // 'try'
	body := p.block()
	p.expect(token.CATCH, "after try block")
	errTok := p.expect(token.IDENT, "caught error name")
	handler := p.block()
	return &ast.TryStmt{
		StmtBase: ast.NewStmtBase(lineOf(pos)),
		Body:     body,
		ErrName:  errTok.Lit,
		Handler:  handler,
		Pos:      pos,
		EndPos:   p.prev.Pos,
	}
}

func (p *Parser) returnStmt() ast.Stmt {
	pos := p.cur.Pos
	p.advance() // 'return'
	if p.inFunction == 0 {
		p.errorAt(p.prev, "'return' outside function")
	}
	var value ast.Expr
	if p.cur.Tok != token.NEWLINE && p.cur.Tok != token.RBRACE && p.cur.Tok != token.EOF {
		value = p.parseExpr()
	}
	p.endOfStmt()
	return &ast.ReturnStmt{StmtBase: ast.NewStmtBase(lineOf(pos)), Value: value, Pos: pos}
}

func (p *Parser) breakStmt() ast.Stmt {
	pos := p.cur.Pos
	p.advance()
	if p.loopDepth == 0 {
		p.errorAt(p.prev, "'break' outside loop")
	}
	p.endOfStmt()
	return &ast.BreakStmt{StmtBase: ast.NewStmtBase(lineOf(pos)), Pos: pos}
}

func (p *Parser) continueStmt() ast.Stmt {
	pos := p.cur.Pos
	p.advance()
	if p.loopDepth == 0 {
		p.errorAt(p.prev, "'continue' outside loop")
	}
	p.endOfStmt()
	return &ast.ContinueStmt{StmtBase: ast.NewStmtBase(lineOf(pos)), Pos: pos}
}

func (p *Parser) useStmt() ast.Stmt {
	pos := p.cur.Pos
	p.advance() // 'use'
	var path []string
	first := p.expect(token.IDENT, "module path")
	path = append(path, first.Lit)
	for p.match(token.COLONCOLON) {
		seg := p.expect(token.IDENT, "in module path")
		path = append(path, seg.Lit)
	}
	alias := ""
	if p.match(token.AS) {
		aliasTok := p.expect(token.IDENT, "after 'as'")
		alias = aliasTok.Lit
	}
	endPos := p.cur.Pos
	p.endOfStmt()
	return &ast.UseStmt{StmtBase: ast.NewStmtBase(lineOf(pos)), Path: path, Alias: alias, Pos: pos, EndPos: endPos}
}

// funcStmt parses `fn name<G...>(params) [-> T] { body }`. structName is
// set by implStmt when parsing a method inside `impl`.
func (p *Parser) funcStmt(structName string) ast.Stmt {
	pos := p.cur.Pos
	p.advance() // 'fn'
	nameTok := p.expect(token.IDENT, "function name")

	var generics []string
	if p.match(token.LT) {
		for {
			g := p.expect(token.IDENT, "generic parameter")
			generics = append(generics, g.Lit)
			if !p.match(token.COMMA) {
				break
			}
		}
		p.expect(token.GT, "to close generic parameter list")
	}

	p.expect(token.LPAREN, "after function name")
	var params []ast.Param
	if structName != "" && p.check(token.IDENT) && p.cur.Lit == "self" {
		p.advance()
		params = append(params, ast.Param{Name: "self"})
		p.match(token.COMMA)
	}
	if !p.check(token.RPAREN) {
		for {
			pname := p.expect(token.IDENT, "parameter name")
			p.expect(token.COLON, "after parameter name")
			ptype := p.typeExpr()
			params = append(params, ast.Param{Name: pname.Lit, Type: ptype})
			if !p.match(token.COMMA) {
				break
			}
		}
	}
	p.expect(token.RPAREN, "to close parameter list")

	var ret *ast.TypeExpr
	if p.match(token.ARROW) {
		ret = p.typeExpr()
	}

	p.inFunction++
	body := p.block()
	p.inFunction--

	return &ast.FuncStmt{
		StmtBase:   ast.NewStmtBase(lineOf(pos)),
		Name:       nameTok.Lit,
		StructName: structName,
		Generics:   generics,
		Params:     params,
		Return:     ret,
		Body:       body,
		Pos:        pos,
		EndPos:     p.prev.Pos,
	}
}

func (p *Parser) structStmt() ast.Stmt {
	pos := p.cur.Pos
	p.advance() // 'struct'
	nameTok := p.expect(token.IDENT, "struct name")

	var generics []string
	if p.match(token.LT) {
		for {
			g := p.expect(token.IDENT, "generic parameter")
			generics = append(generics, g.Lit)
			if !p.match(token.COMMA) {
				break
			}
		}
		p.expect(token.GT, "to close generic parameter list")
	}

	p.expect(token.LBRACE, "to start struct body")
	p.skipNewlines()
	var fields []ast.Param
	for !p.check(token.RBRACE) && p.cur.Tok != token.EOF {
		fname := p.expect(token.IDENT, "field name")
		p.expect(token.COLON, "after field name")
		ftype := p.typeExpr()
		fields = append(fields, ast.Param{Name: fname.Lit, Type: ftype})
		if !p.match(token.COMMA) {
			p.skipNewlines()
			continue
		}
		p.skipNewlines()
	}
	endPos := p.expect(token.RBRACE, "to close struct body").Pos

	return &ast.StructStmt{
		StmtBase: ast.NewStmtBase(lineOf(pos)),
		Name:     nameTok.Lit,
		Generics: generics,
		Fields:   fields,
		Pos:      pos,
		EndPos:   endPos,
	}
}

func (p *Parser) implStmt() ast.Stmt {
	pos := p.cur.Pos
	p.advance() // 'impl'
	nameTok := p.expect(token.IDENT, "struct name")

	var generics []string
	if p.match(token.LT) {
		for {
			g := p.expect(token.IDENT, "generic parameter")
			generics = append(generics, g.Lit)
			if !p.match(token.COMMA) {
				break
			}
		}
		p.expect(token.GT, "to close generic parameter list")
	}

	p.expect(token.LBRACE, "to start impl body")
	p.skipNewlines()
	var methods []*ast.FuncStmt
	for !p.check(token.RBRACE) && p.cur.Tok != token.EOF {
		if !p.check(token.FN) {
			p.errorAt(p.cur, "expected method declaration in impl body")
			p.synchronize()
			p.skipNewlines()
			continue
		}
		m := p.funcStmt(nameTok.Lit).(*ast.FuncStmt)
		methods = append(methods, m)
		p.skipNewlines()
	}
	endPos := p.expect(token.RBRACE, "to close impl body").Pos

	return &ast.ImplStmt{
		StmtBase:   ast.NewStmtBase(lineOf(pos)),
		StructName: nameTok.Lit,
		Generics:   generics,
		Methods:    methods,
		Pos:        pos,
		EndPos:     endPos,
	}
}
