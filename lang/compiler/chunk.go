package compiler

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/orus-lang/orus/lang/value"
)

// magic identifies an Orus bytecode cache file (spec §4.3).
var magic = [4]byte{'O', 'R', 'U', 'S'}

// Chunk is an append-only byte buffer plus its parallel line table and
// constant pool (spec §3 "Chunk", §4.3).
type Chunk struct {
	Code      []byte
	Lines     []int // Lines[i] is the source line for Code[i]
	Constants []value.Value

	// Mtime is the modification time (unix nanoseconds) of the source file
	// this chunk was compiled from, used to validate a bytecode cache entry
	// (spec §4.6 step 5). Zero for chunks that never came from a tracked
	// file (e.g. REPL entries).
	Mtime int64

	// Functions and Globals are metadata spec §3 assigns to "VM state"
	// rather than the chunk proper, but a cached chunk is useless to a
	// fresh process without them (CALL needs entry offsets, module loading
	// needs to know which globals are exported), so this implementation
	// persists them as a trailing, spec-format-compatible extension after
	// the spec-format fields. Determinism/round-trip (spec §8 property 2) is preserved:
	// Deserialize(Serialize(c)) reproduces every field of c, including
	// these.
	Functions []FuncInfo
	Globals   []GlobalInfo
}

// FuncInfo is one entry of the VM's function table (spec §3 "function
// table indexed 0..255").
type FuncInfo struct {
	Name        string
	EntryOffset int
	Arity       int
}

// GlobalInfo names a slot in the VM's globals table, used by the module
// loader to compute a module's exports (spec §4.6 step 6).
type GlobalInfo struct {
	Name   string
	Slot   int
	Public bool
}

// NewChunk returns an empty chunk.
func NewChunk() *Chunk { return &Chunk{} }

// Write appends a single opcode byte, recording line for it.
func (c *Chunk) Write(op Opcode, line int) int {
	c.Code = append(c.Code, byte(op))
	c.Lines = append(c.Lines, line)
	return len(c.Code) - 1
}

// WriteByte appends a single raw operand byte under the same source line as
// the instruction it belongs to.
func (c *Chunk) WriteByte(b byte, line int) {
	c.Code = append(c.Code, b)
	c.Lines = append(c.Lines, line)
}

// WriteUint16 appends a big-endian 16-bit operand (spec §4.3: "2 bytes
// (big-endian) for jump offsets").
func (c *Chunk) WriteUint16(v uint16, line int) {
	c.WriteByte(byte(v>>8), line)
	c.WriteByte(byte(v), line)
}

// AddConstant appends v to the constant pool and returns its index.
// Duplicates are allowed (spec §4.3: "Constant pool is append-only; writing
// a duplicate constant is allowed").
func (c *Chunk) AddConstant(v value.Value) int {
	c.Constants = append(c.Constants, v)
	return len(c.Constants) - 1
}

// LineAt returns the source line recorded for the instruction at offset.
func (c *Chunk) LineAt(offset int) int {
	if offset < 0 || offset >= len(c.Lines) {
		return -1
	}
	return c.Lines[offset]
}

// patchUint16At overwrites the big-endian uint16 at code offset off.
func (c *Chunk) patchUint16At(off int, v uint16) {
	c.Code[off] = byte(v >> 8)
	c.Code[off+1] = byte(v)
}

func (c *Chunk) readUint16At(off int) uint16 {
	return uint16(c.Code[off])<<8 | uint16(c.Code[off+1])
}

// Serialize encodes the chunk per spec §4.3:
//
//	magic(4) | version(2) | mtime(8) | codeLen(4) | code | constCount(2) | constants | linesLen(4) | lines
func (c *Chunk) Serialize() ([]byte, error) {
	var buf bytes.Buffer
	buf.Write(magic[:])
	binary.Write(&buf, binary.BigEndian, uint16(Version))
	binary.Write(&buf, binary.BigEndian, c.Mtime)
	binary.Write(&buf, binary.BigEndian, uint32(len(c.Code)))
	buf.Write(c.Code)
	binary.Write(&buf, binary.BigEndian, uint16(len(c.Constants)))
	for _, k := range c.Constants {
		if err := encodeConstant(&buf, k); err != nil {
			return nil, err
		}
	}
	binary.Write(&buf, binary.BigEndian, uint32(len(c.Lines)))
	for _, ln := range c.Lines {
		binary.Write(&buf, binary.BigEndian, uint32(ln))
	}
	binary.Write(&buf, binary.BigEndian, uint16(len(c.Functions)))
	for _, fn := range c.Functions {
		writeString(&buf, fn.Name)
		binary.Write(&buf, binary.BigEndian, uint32(fn.EntryOffset))
		binary.Write(&buf, binary.BigEndian, uint16(fn.Arity))
	}
	binary.Write(&buf, binary.BigEndian, uint16(len(c.Globals)))
	for _, g := range c.Globals {
		writeString(&buf, g.Name)
		binary.Write(&buf, binary.BigEndian, uint16(g.Slot))
		if g.Public {
			buf.WriteByte(1)
		} else {
			buf.WriteByte(0)
		}
	}
	return buf.Bytes(), nil
}

func writeString(buf *bytes.Buffer, s string) {
	binary.Write(buf, binary.BigEndian, uint32(len(s)))
	buf.WriteString(s)
}

func readString(r *bytes.Reader) (string, error) {
	var n uint32
	if err := binary.Read(r, binary.BigEndian, &n); err != nil {
		return "", err
	}
	b := make([]byte, n)
	if _, err := r.Read(b); err != nil {
		return "", err
	}
	return string(b), nil
}

// Deserialize rejects the cache (returns ok=false) on any header mismatch:
// wrong magic, wrong version, or mtime that does not match wantMtime
// (spec §4.3, §4.6 step 5: "Rejects on any mismatch").
func Deserialize(data []byte, wantMtime int64) (chunk *Chunk, ok bool) {
	r := bytes.NewReader(data)
	var gotMagic [4]byte
	if _, err := r.Read(gotMagic[:]); err != nil || gotMagic != magic {
		return nil, false
	}
	var version uint16
	if err := binary.Read(r, binary.BigEndian, &version); err != nil || version != Version {
		return nil, false
	}
	var mtime int64
	if err := binary.Read(r, binary.BigEndian, &mtime); err != nil || mtime != wantMtime {
		return nil, false
	}
	var codeLen uint32
	if err := binary.Read(r, binary.BigEndian, &codeLen); err != nil {
		return nil, false
	}
	code := make([]byte, codeLen)
	if _, err := r.Read(code); err != nil {
		return nil, false
	}
	var constCount uint16
	if err := binary.Read(r, binary.BigEndian, &constCount); err != nil {
		return nil, false
	}
	constants := make([]value.Value, constCount)
	for i := range constants {
		k, err := decodeConstant(r)
		if err != nil {
			return nil, false
		}
		constants[i] = k
	}
	var linesLen uint32
	if err := binary.Read(r, binary.BigEndian, &linesLen); err != nil {
		return nil, false
	}
	lines := make([]int, linesLen)
	for i := range lines {
		var ln uint32
		if err := binary.Read(r, binary.BigEndian, &ln); err != nil {
			return nil, false
		}
		lines[i] = int(ln)
	}
	var funcCount uint16
	if err := binary.Read(r, binary.BigEndian, &funcCount); err != nil {
		return nil, false
	}
	functions := make([]FuncInfo, funcCount)
	for i := range functions {
		name, err := readString(r)
		if err != nil {
			return nil, false
		}
		var entry uint32
		var arity uint16
		if err := binary.Read(r, binary.BigEndian, &entry); err != nil {
			return nil, false
		}
		if err := binary.Read(r, binary.BigEndian, &arity); err != nil {
			return nil, false
		}
		functions[i] = FuncInfo{Name: name, EntryOffset: int(entry), Arity: int(arity)}
	}
	var globalCount uint16
	if err := binary.Read(r, binary.BigEndian, &globalCount); err != nil {
		return nil, false
	}
	globals := make([]GlobalInfo, globalCount)
	for i := range globals {
		name, err := readString(r)
		if err != nil {
			return nil, false
		}
		var slot uint16
		if err := binary.Read(r, binary.BigEndian, &slot); err != nil {
			return nil, false
		}
		pub, err := r.ReadByte()
		if err != nil {
			return nil, false
		}
		globals[i] = GlobalInfo{Name: name, Slot: int(slot), Public: pub != 0}
	}
	return &Chunk{Code: code, Lines: lines, Constants: constants, Mtime: mtime, Functions: functions, Globals: globals}, true
}

// constant pool tags, distinct from value.Kind because only primitive and
// string constants are ever interned directly; arrays/errors/structs are
// always built at runtime.
const (
	ctagNil byte = iota
	ctagBool
	ctagI32
	ctagI64
	ctagU32
	ctagU64
	ctagF64
	ctagString
)

func encodeConstant(buf *bytes.Buffer, v value.Value) error {
	switch v.Kind() {
	case value.KindNil:
		buf.WriteByte(ctagNil)
	case value.KindBool:
		buf.WriteByte(ctagBool)
		if v.AsBool() {
			buf.WriteByte(1)
		} else {
			buf.WriteByte(0)
		}
	case value.KindI32:
		buf.WriteByte(ctagI32)
		binary.Write(buf, binary.BigEndian, v.AsI32())
	case value.KindI64:
		buf.WriteByte(ctagI64)
		binary.Write(buf, binary.BigEndian, v.AsI64())
	case value.KindU32:
		buf.WriteByte(ctagU32)
		binary.Write(buf, binary.BigEndian, v.AsU32())
	case value.KindU64:
		buf.WriteByte(ctagU64)
		binary.Write(buf, binary.BigEndian, v.AsU64())
	case value.KindF64:
		buf.WriteByte(ctagF64)
		binary.Write(buf, binary.BigEndian, v.AsF64())
	case value.KindString:
		buf.WriteByte(ctagString)
		writeString(buf, v.AsString().Data)
	default:
		return fmt.Errorf("compiler: cannot serialize constant of kind %s", v.Kind())
	}
	return nil
}

func decodeConstant(r *bytes.Reader) (value.Value, error) {
	tag, err := r.ReadByte()
	if err != nil {
		return value.Nil, err
	}
	switch tag {
	case ctagNil:
		return value.Nil, nil
	case ctagBool:
		b, err := r.ReadByte()
		return value.Bool(b != 0), err
	case ctagI32:
		var v int32
		err := binary.Read(r, binary.BigEndian, &v)
		return value.I32(v), err
	case ctagI64:
		var v int64
		err := binary.Read(r, binary.BigEndian, &v)
		return value.I64(v), err
	case ctagU32:
		var v uint32
		err := binary.Read(r, binary.BigEndian, &v)
		return value.U32(v), err
	case ctagU64:
		var v uint64
		err := binary.Read(r, binary.BigEndian, &v)
		return value.U64(v), err
	case ctagF64:
		var v float64
		err := binary.Read(r, binary.BigEndian, &v)
		return value.F64(v), err
	case ctagString:
		s, err := readString(r)
		if err != nil {
			return value.Nil, err
		}
		return value.Str(value.NewString(s)), nil
	default:
		return value.Nil, fmt.Errorf("compiler: unknown constant tag %d", tag)
	}
}
