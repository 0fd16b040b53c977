package compiler

import (
	"fmt"

	"github.com/orus-lang/orus/internal/diag"
	"github.com/orus-lang/orus/lang/ast"
	"github.com/orus-lang/orus/lang/types"
)

// maxSlots is the size of the VM's globals table (spec §3 "VM state":
// "globals[256]"). Orus has no separate locals array: every `let` binding
// and every function parameter is allocated a slot in this same table,
// resolved at compile time by a lexical scope chain (see scope below) but
// never reused across distinct declaration sites, so that a call to one
// function can never clobber a value another (still-live, further up the
// call stack) function already copied onto the VM stack. See DESIGN.md.
const maxSlots = 256

// maxFuncs mirrors the VM's function table size (spec §3: "function table
// indexed 0..255").
const maxFuncs = 256

// scope is one lexical level of name resolution. It never owns slot
// storage itself — slots come from the Compiler's single monotonic
// counter — it only maps names visible at this level to the slot a
// declaration was given.
type scope struct {
	parent *scope
	vars   map[string]*binding
}

type binding struct {
	slot int
	typ  types.Type
	mut  bool
}

// funcSig is a function's compile-time signature: its parameter/return
// types (for call-site type checking) and its place in the VM's function
// table (spec §3).
type funcSig struct {
	Name        string
	ParamTypes  []types.Type
	ParamNames  []string
	Return      types.Type
	Index       int
	EntryOffset int
}

// loopCtx accumulates the forward jump placeholders a loop's `break` and
// `continue` statements need patched once the loop's bytecode shape is
// fully known (spec §4.2 "every forward jump emitted by the compiler is
// patched before the surrounding construct closes").
type loopCtx struct {
	breakJumps    []int
	continueJumps []int
}

// Compiler is Orus's fused type-checker and bytecode emitter: a single
// tree walk over the parsed AST that both resolves types and emits
// instructions into a Chunk (spec §4.2).
type Compiler struct {
	chunk *Chunk
	file  string
	errs  []*diag.Error

	top      *scope
	scope    *scope
	nextSlot int

	structs *types.Registry

	funcs   map[string]*funcSig
	curFunc *funcSig

	curGenerics map[string]bool

	natives       map[string]*nativeSig
	moduleAliases map[string]string

	loops []*loopCtx

	globalsInfo []GlobalInfo
}

// Compile type-checks and compiles a parsed file into a Chunk. structs is
// the type registry populated by earlier files in the same program (or a
// fresh registry for a standalone script); the returned errors are
// accumulated rather than stopping at the first one, matching the
// parser's own recovery discipline.
func Compile(file string, chunkAST *ast.Chunk, structs *types.Registry) (*Chunk, []*diag.Error) {
	c := &Compiler{
		chunk:         NewChunk(),
		file:          file,
		structs:       structs,
		funcs:         map[string]*funcSig{},
		natives:       builtinNatives(),
		moduleAliases: map[string]string{},
	}
	c.top = &scope{vars: map[string]*binding{}}
	c.scope = c.top

	c.declareTopLevel(chunkAST.Stmts)
	for _, s := range chunkAST.Stmts {
		c.compileStmt(s)
	}

	line := 1
	if len(c.chunk.Lines) > 0 {
		line = c.chunk.Lines[len(c.chunk.Lines)-1]
	}
	c.emit(NIL, line)
	c.emit(RETURN, line)

	c.chunk.Functions = c.functionInfos()
	c.chunk.Globals = c.globalsInfo
	return c.chunk, c.errs
}

func (c *Compiler) functionInfos() []FuncInfo {
	infos := make([]FuncInfo, len(c.funcs))
	for _, sig := range c.funcs {
		infos[sig.Index] = FuncInfo{Name: sig.Name, EntryOffset: sig.EntryOffset, Arity: len(sig.ParamTypes)}
	}
	return infos
}

// declareTopLevel forward-declares every struct and function in chunkAST
// before any bytecode is emitted, so mutually recursive functions and
// forward references to structs/functions (in any order) resolve
// correctly regardless of where they appear textually.
func (c *Compiler) declareTopLevel(stmts []ast.Stmt) {
	for _, s := range stmts {
		if st, ok := s.(*ast.StructStmt); ok {
			c.declareStruct(st)
		}
	}
	for _, s := range stmts {
		switch n := s.(type) {
		case *ast.FuncStmt:
			c.declareFunc(n)
		case *ast.ImplStmt:
			for _, m := range n.Methods {
				c.declareFunc(m)
			}
		}
	}
}

func (c *Compiler) declareStruct(st *ast.StructStmt) {
	c.curGenerics = genericSet(st.Generics)
	fields := make([]types.Field, len(st.Fields))
	for i, f := range st.Fields {
		ft, err := c.resolveTypeExpr(f.Type)
		if err != nil {
			c.errorf(st.Line(), "%s", err)
			ft = types.Nil
		}
		fields[i] = types.Field{Name: f.Name, Type: ft}
	}
	c.curGenerics = nil
	sty := &types.StructType{Name: st.Name, Fields: fields}
	if !c.structs.Declare(sty) {
		c.errorf(st.Line(), "struct %q already declared", st.Name)
	}
}

func (c *Compiler) declareFunc(fn *ast.FuncStmt) {
	name := fn.Name
	if fn.StructName != "" {
		name = fn.StructName + "_" + fn.Name
	}
	if _, exists := c.funcs[name]; exists {
		c.errorf(fn.Line(), "function %q already declared", name)
		return
	}
	c.curGenerics = genericSet(fn.Generics)
	defer func() { c.curGenerics = nil }()

	paramTypes := make([]types.Type, 0, len(fn.Params))
	for _, p := range fn.Params {
		if p.Name == "self" && p.Type == nil {
			st, ok := c.structs.Lookup(fn.StructName)
			if !ok {
				c.errorf(fn.Line(), "impl target %q not declared", fn.StructName)
				paramTypes = append(paramTypes, types.Nil)
				continue
			}
			paramTypes = append(paramTypes, st)
			continue
		}
		pt, err := c.resolveTypeExpr(p.Type)
		if err != nil {
			c.errorf(fn.Line(), "%s", err)
			pt = types.Nil
		}
		paramTypes = append(paramTypes, pt)
	}

	ret := types.Void
	if fn.Return != nil {
		rt, err := c.resolveTypeExpr(fn.Return)
		if err != nil {
			c.errorf(fn.Line(), "%s", err)
		} else {
			ret = rt
		}
	}

	idx := len(c.funcs)
	if idx >= maxFuncs {
		c.errorf(fn.Line(), "too many functions (limit %d)", maxFuncs)
		return
	}
	c.funcs[name] = &funcSig{
		Name:       name,
		ParamTypes: paramTypes,
		ParamNames: paramNames(fn.Params),
		Return:     ret,
		Index:      idx,
	}
}

// resolveTypeExpr turns a parsed type annotation into a types.Type,
// consulting the struct registry and the current function/struct's
// generic parameter set.
func (c *Compiler) resolveTypeExpr(te *ast.TypeExpr) (types.Type, error) {
	if te == nil {
		return types.Void, nil
	}
	if te.Name == "array" {
		elem, err := c.resolveTypeExpr(te.Elem)
		if err != nil {
			return nil, err
		}
		return &types.ArrayType{Elem: elem}, nil
	}
	if c.curGenerics != nil && c.curGenerics[te.Name] {
		return &types.GenericType{Name: te.Name}, nil
	}
	if t, ok := types.ByName(te.Name); ok {
		return t, nil
	}
	if st, ok := c.structs.Lookup(te.Name); ok {
		return st, nil
	}
	return nil, fmt.Errorf("unknown type %q", te.Name)
}

func genericSet(names []string) map[string]bool {
	if len(names) == 0 {
		return nil
	}
	m := make(map[string]bool, len(names))
	for _, n := range names {
		m[n] = true
	}
	return m
}

func paramNames(params []ast.Param) []string {
	names := make([]string, len(params))
	for i, p := range params {
		names[i] = p.Name
	}
	return names
}

// declareLocal allocates a fresh, permanent slot in the flat globals table
// for name, visible from the current scope downward. Slots are never
// freed or reused (see maxSlots doc), so distinct declaration sites never
// alias each other's storage even when their names collide.
func (c *Compiler) declareLocal(name string, typ types.Type, mut bool, line int) (int, bool) {
	if c.nextSlot >= maxSlots {
		c.errorf(line, "too many live bindings (limit %d)", maxSlots)
		return 0, false
	}
	slot := c.nextSlot
	c.nextSlot++
	c.scope.vars[name] = &binding{slot: slot, typ: typ, mut: mut}
	return slot, true
}

func (c *Compiler) resolve(name string) (*binding, bool) {
	for s := c.scope; s != nil; s = s.parent {
		if b, ok := s.vars[name]; ok {
			return b, true
		}
	}
	return nil, false
}

func (c *Compiler) pushScope() { c.scope = &scope{parent: c.scope, vars: map[string]*binding{}} }
func (c *Compiler) popScope()  { c.scope = c.scope.parent }

func (c *Compiler) emit(op Opcode, line int) int { return c.chunk.Write(op, line) }
func (c *Compiler) emitByte(b byte, line int)    { c.chunk.WriteByte(b, line) }
func (c *Compiler) emitUint16(v uint16, line int) {
	c.chunk.WriteUint16(v, line)
}

// emitJump writes op followed by a 16-bit placeholder and returns the
// placeholder's offset, to be filled in later by patchJump once the jump
// target is known (spec §4.2's forward-patch model).
func (c *Compiler) emitJump(op Opcode, line int) int {
	c.emit(op, line)
	pos := len(c.chunk.Code)
	c.emitUint16(0xFFFF, line)
	return pos
}

func (c *Compiler) patchJump(pos int) {
	offset := len(c.chunk.Code) - (pos + 2)
	if offset < 0 || offset > 0xFFFF {
		c.errorf(c.chunk.LineAt(pos), "jump offset out of range")
		return
	}
	c.chunk.patchUint16At(pos, uint16(offset))
}

// emitLoop writes a backward OP_LOOP to start (spec §4.3: "a positive
// 16-bit offset subtracted from ip").
func (c *Compiler) emitLoop(start int, line int) {
	c.emit(LOOP, line)
	offset := len(c.chunk.Code) + 2 - start
	if offset < 0 || offset > 0xFFFF {
		c.errorf(line, "loop body too large")
		offset = 0
	}
	c.emitUint16(uint16(offset), line)
}

func (c *Compiler) errorf(line int, format string, args ...interface{}) {
	c.errs = append(c.errs, diag.New(diag.Type, diag.Span{File: c.file, Line: line}, format, args...))
}
