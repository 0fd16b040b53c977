// Package machine implements the Orus bytecode interpreter: a stack-based
// virtual machine that executes a *compiler.Chunk (spec §4.4), plus the
// mark-and-sweep garbage collector over lang/value's heap objects.
//
// The teacher's own machine package runs a register-style, closure-capable
// interpreter with DUP/EXCH stack juggling, freevar cells and a
// defer/catch stack, because its source language is dynamically scoped and
// the opcode set is built around Starlark's data model (see machine.go's
// license header crediting starlark-go). Orus is statically typed with a
// flat globals table and no closures, so the loop below keeps the
// teacher's shape — a single Thread-like struct, a `switch op` dispatch
// loop reading one opcode at a time, frames tracked on an explicit slice —
// but the opcode set and frame bookkeeping are rebuilt for the compiler's
// own table (see DESIGN.md).
package machine

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/orus-lang/orus/internal/diag"
	"github.com/orus-lang/orus/lang/compiler"
	"github.com/orus-lang/orus/lang/value"
)

const (
	maxCallDepth = 1024
	maxStackSize = 1 << 16
)

// Machine is a single execution context: its own globals table, operand
// stack, call/try stacks and heap. Every field below Stdout/Stderr/Stdin/
// MaxSteps/Trace is private bookkeeping; set the public fields before calling
// Run, mirroring the teacher's Thread (Stdout/Stderr/Stdin set directly,
// lazily defaulted to the OS streams on first use).
type Machine struct {
	Stdout   io.Writer
	Stderr   io.Writer
	Stdin    io.Reader
	MaxSteps int

	// Trace, when set, writes one line per executed instruction to Stderr
	// (spec §6: "--trace enables instruction tracing").
	Trace bool

	chunk     *compiler.Chunk
	file      string
	globals   [256]value.Value
	stack     []value.Value
	callStack []callFrame
	tryStack  []tryFrame
	natives   []NativeFunc

	objects        value.Object
	bytesAllocated int
	nextGC         int

	stdinReader *bufio.Reader
	steps       int
	lastError   *diag.Error

	initialized bool
}

// New returns a Machine ready to Run a chunk.
func New() *Machine {
	return &Machine{natives: nativeTable()}
}

func (m *Machine) init() {
	if m.initialized {
		return
	}
	m.initialized = true
	if m.Stdout == nil {
		m.Stdout = os.Stdout
	}
	if m.Stderr == nil {
		m.Stderr = os.Stderr
	}
	if m.Stdin == nil {
		m.Stdin = os.Stdin
	}
	m.initGC()
}

// LastError returns the diag.Error of the most recent uncaught runtime
// error, or nil if the last Run completed without one (spec §4.7:
// "Runtime errors allocate an Error object, store it in vm.lastError").
func (m *Machine) LastError() *diag.Error { return m.lastError }

// Global reads a slot of the flat globals table directly. lang/modules uses
// this to read a module's exported bindings once its chunk has run, since a
// module's `pub` globals are never re-exposed through the operand stack.
func (m *Machine) Global(slot int) value.Value { return m.globals[slot] }

func (m *Machine) push(v value.Value) { m.stack = append(m.stack, v) }

func (m *Machine) pop() value.Value {
	n := len(m.stack) - 1
	v := m.stack[n]
	m.stack = m.stack[:n]
	return v
}

func (m *Machine) peek() value.Value { return m.stack[len(m.stack)-1] }

func (m *Machine) readByte(pc int) byte { return m.chunk.Code[pc] }

func (m *Machine) readUint16(pc int) uint16 {
	return uint16(m.chunk.Code[pc])<<8 | uint16(m.chunk.Code[pc+1])
}

// Run executes chunk from its first instruction and returns the value
// left by the terminating top-level RETURN (spec §4.2: Compile always
// emits a trailing `NIL; RETURN`), or the uncaught runtime error.
func (m *Machine) Run(file string, chunk *compiler.Chunk) (value.Value, error) {
	m.init()
	m.chunk = chunk
	m.file = file
	m.stack = m.stack[:0]
	m.callStack = m.callStack[:0]
	m.tryStack = m.tryStack[:0]
	m.lastError = nil
	return m.loop(0)
}

// loop runs the fetch-decode-execute cycle starting at pc until a
// top-level RETURN, an uncaught error, or a step-count cancellation.
func (m *Machine) loop(pc int) (value.Value, error) {
	code := m.chunk.Code
	for {
		if m.MaxSteps > 0 {
			m.steps++
			if m.steps > m.MaxSteps {
				return value.Nil, fmt.Errorf("machine: exceeded %d steps", m.MaxSteps)
			}
		}

		line := m.chunk.LineAt(pc)
		op := compiler.Opcode(code[pc])
		pc++

		if m.Trace {
			fmt.Fprintf(m.Stderr, "%04d %s\n", pc-1, op)
		}

		switch op {
		case compiler.NOP:
			// nop

		case compiler.CONSTANT:
			idx := m.readByte(pc)
			pc++
			m.push(m.chunk.Constants[idx])

		case compiler.NIL:
			m.push(value.Nil)
		case compiler.TRUE:
			m.push(value.Bool(true))
		case compiler.FALSE:
			m.push(value.Bool(false))
		case compiler.POP:
			m.pop()

		case compiler.DEFINE_GLOBAL:
			slot := m.readByte(pc)
			pc++
			m.globals[slot] = m.pop()

		case compiler.GET_GLOBAL:
			slot := m.readByte(pc)
			pc++
			m.push(m.globals[slot])

		case compiler.SET_GLOBAL:
			slot := m.readByte(pc)
			pc++
			m.globals[slot] = m.peek()

		case compiler.ADD_I32, compiler.SUB_I32, compiler.MUL_I32, compiler.DIV_I32, compiler.MOD_I32,
			compiler.ADD_I64, compiler.SUB_I64, compiler.MUL_I64, compiler.DIV_I64, compiler.MOD_I64,
			compiler.ADD_U32, compiler.SUB_U32, compiler.MUL_U32, compiler.DIV_U32, compiler.MOD_U32,
			compiler.ADD_U64, compiler.SUB_U64, compiler.MUL_U64, compiler.DIV_U64, compiler.MOD_U64,
			compiler.ADD_F64, compiler.SUB_F64, compiler.MUL_F64, compiler.DIV_F64:
			y := m.pop()
			x := m.pop()
			z, derr := m.arith(op, x, y, line)
			if derr != nil {
				if handled, newPC := m.raise(derr); handled {
					pc = newPC
					continue
				}
				m.lastError = derr
				return value.Nil, derr
			}
			m.push(z)

		case compiler.NEGATE_I32, compiler.NEGATE_I64, compiler.NEGATE_U32, compiler.NEGATE_U64, compiler.NEGATE_F64:
			x := m.pop()
			m.push(negate(op, x))

		case compiler.NOT:
			x := m.pop()
			m.push(value.Bool(!x.AsBool()))

		case compiler.BIT_NOT:
			x := m.pop()
			m.push(bitNot(x))

		case compiler.BIT_AND, compiler.BIT_OR, compiler.BIT_XOR, compiler.SHL, compiler.SHR:
			y := m.pop()
			x := m.pop()
			m.push(bitwise(op, x, y))

		case compiler.EQUAL:
			y := m.pop()
			x := m.pop()
			m.push(value.Bool(value.Equal(x, y)))
		case compiler.NOT_EQUAL:
			y := m.pop()
			x := m.pop()
			m.push(value.Bool(!value.Equal(x, y)))

		case compiler.LESS_I32, compiler.LESS_I64, compiler.LESS_U32, compiler.LESS_U64, compiler.LESS_F64,
			compiler.LESS_EQUAL_I32, compiler.LESS_EQUAL_I64, compiler.LESS_EQUAL_U32, compiler.LESS_EQUAL_U64, compiler.LESS_EQUAL_F64,
			compiler.GREATER_I32, compiler.GREATER_I64, compiler.GREATER_U32, compiler.GREATER_U64, compiler.GREATER_F64,
			compiler.GREATER_EQUAL_I32, compiler.GREATER_EQUAL_I64, compiler.GREATER_EQUAL_U32, compiler.GREATER_EQUAL_U64, compiler.GREATER_EQUAL_F64:
			y := m.pop()
			x := m.pop()
			m.push(value.Bool(compare(op, x, y)))

		case compiler.I32_TO_F64:
			x := m.pop()
			m.push(value.F64(float64(x.AsI32())))
		case compiler.U32_TO_F64:
			x := m.pop()
			m.push(value.F64(float64(x.AsU32())))

		case compiler.CAST:
			tag := m.readByte(pc)
			pc++
			m.push(cast(m.pop(), tag))

		case compiler.JUMP:
			off := m.readUint16(pc)
			pc += 2
			pc += int(off)

		case compiler.JUMP_IF_FALSE:
			off := m.readUint16(pc)
			pc += 2
			if !m.peek().AsBool() {
				pc += int(off)
			}

		case compiler.JUMP_IF_TRUE:
			off := m.readUint16(pc)
			pc += 2
			if m.peek().AsBool() {
				pc += int(off)
			}

		case compiler.LOOP:
			off := m.readUint16(pc)
			pc += 2
			pc -= int(off)

		case compiler.CALL:
			funcIdx := m.readByte(pc)
			_ = m.readByte(pc + 1) // argc: the callee's own prologue pops exactly this many
			pc += 2
			if len(m.callStack) >= maxCallDepth || len(m.stack) >= maxStackSize {
				derr := diag.New(diag.RuntimeStackOverflow, diag.Span{File: m.file, Line: line}, "call stack exceeded depth %d", maxCallDepth)
				if handled, newPC := m.raise(derr); handled {
					pc = newPC
					continue
				}
				m.lastError = derr
				return value.Nil, derr
			}
			fi := m.chunk.Functions[funcIdx]
			m.callStack = append(m.callStack, callFrame{returnPC: pc, funcName: fi.Name})
			pc = fi.EntryOffset

		case compiler.CALL_NATIVE:
			nativeIdx := m.readByte(pc)
			argc := m.readByte(pc + 1)
			pc += 2
			args := append([]value.Value(nil), m.stack[len(m.stack)-int(argc):]...)
			m.stack = m.stack[:len(m.stack)-int(argc)]
			result, err := m.natives[nativeIdx](m, args)
			if err != nil {
				derr := diag.New(diag.RuntimeUnknown, diag.Span{File: m.file, Line: line}, "%s", err)
				if handled, newPC := m.raise(derr); handled {
					pc = newPC
					continue
				}
				m.lastError = derr
				return value.Nil, derr
			}
			m.push(result)

		case compiler.RETURN:
			result := m.pop()
			if len(m.callStack) == 0 {
				return result, nil
			}
			frame := m.callStack[len(m.callStack)-1]
			m.callStack = m.callStack[:len(m.callStack)-1]
			pc = frame.returnPC
			m.push(result)

		case compiler.TRY_PUSH:
			off := m.readUint16(pc)
			base := pc + 2
			target := base + int(off)
			slot := m.readByte(pc + 2)
			pc += 3
			m.tryStack = append(m.tryStack, tryFrame{
				handlerPC:  target,
				errSlot:    int(slot),
				stackDepth: len(m.stack),
				callDepth:  len(m.callStack),
			})

		case compiler.TRY_POP:
			m.tryStack = m.tryStack[:len(m.tryStack)-1]

		case compiler.PRINT:
			fmt.Fprintln(m.Stdout, m.pop().String())

		case compiler.ARRAY_LITERAL:
			n := int(m.readUint16(pc))
			pc += 2
			elems := append([]value.Value(nil), m.stack[len(m.stack)-n:]...)
			m.stack = m.stack[:len(m.stack)-n]
			m.push(value.Arr(m.newArray(elems)))

		case compiler.INDEX_GET:
			idx := m.pop()
			arr := m.pop()
			v, derr := m.indexGet(arr, idx, line)
			if derr != nil {
				if handled, newPC := m.raise(derr); handled {
					pc = newPC
					continue
				}
				m.lastError = derr
				return value.Nil, derr
			}
			m.push(v)

		case compiler.INDEX_SET:
			v := m.pop()
			idx := m.pop()
			arr := m.pop()
			derr := m.indexSet(arr, idx, v, line)
			if derr != nil {
				if handled, newPC := m.raise(derr); handled {
					pc = newPC
					continue
				}
				m.lastError = derr
				return value.Nil, derr
			}
			m.push(v)

		case compiler.SLICE:
			hi := m.pop()
			lo := m.pop()
			arr := m.pop()
			v, derr := m.slice(arr, lo, hi, line)
			if derr != nil {
				if handled, newPC := m.raise(derr); handled {
					pc = newPC
					continue
				}
				m.lastError = derr
				return value.Nil, derr
			}
			m.push(v)

		case compiler.STRUCT_LITERAL:
			nameIdx := m.readByte(pc)
			n := int(m.readByte(pc + 1))
			pc += 2
			fields := append([]value.Value(nil), m.stack[len(m.stack)-n:]...)
			m.stack = m.stack[:len(m.stack)-n]
			name := m.chunk.Constants[nameIdx].AsString().Data
			m.push(value.Struct(m.newStruct(name, fields)))

		case compiler.GET_FIELD:
			idx := m.readByte(pc)
			pc++
			s := m.pop()
			m.push(s.AsStruct().Fields[idx])

		case compiler.SET_FIELD:
			idx := m.readByte(pc)
			pc++
			v := m.pop()
			s := m.pop()
			s.AsStruct().Fields[idx] = v
			m.push(v)

		default:
			return value.Nil, fmt.Errorf("machine: unimplemented opcode %s", op)
		}
	}
}

// raise looks for an active try frame covering the current point of
// execution. If one exists, it unwinds the operand and call stacks to the
// frame's recorded depth, binds the error into the frame's reserved
// global slot, and returns the handler's entry point (spec §4.4: "the
// innermost active try frame catches"). Otherwise it reports that nothing
// caught the error.
func (m *Machine) raise(derr *diag.Error) (handled bool, pc int) {
	if len(m.tryStack) == 0 {
		return false, 0
	}
	tf := m.tryStack[len(m.tryStack)-1]
	m.tryStack = m.tryStack[:len(m.tryStack)-1]
	m.stack = m.stack[:tf.stackDepth]
	m.callStack = m.callStack[:tf.callDepth]
	errObj := m.newError(derr.Kind.String(), derr.Message, derr.Span.File, derr.Span.Line, derr.Span.Column)
	m.globals[tf.errSlot] = value.Err(errObj)
	return true, tf.handlerPC
}
