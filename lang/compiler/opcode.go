// Package compiler implements Orus's fused type-checker and bytecode
// emitter (spec §4.2), the Chunk data type and its serialization format
// (spec §4.3).
package compiler

import "fmt"

// Increment this to force recompilation of cached bytecode files (spec
// §4.3's chunk header `version` field).
const Version = 1

// Opcode identifies a single bytecode instruction. Stack-picture comments
// follow the convention "before OP after": the values popped are listed
// before OP, the values left behind after.
type Opcode uint8

//nolint:revive
const (
	NOP Opcode = iota // - NOP -

	CONSTANT // - CONSTANT<k> value
	NIL      // - NIL Nil
	TRUE     // - TRUE True
	FALSE    // - FALSE False
	POP      // x POP -

	// Orus has no separate locals array (spec §3's VM state lists only a
	// globals table): function parameters and block-scoped `let` bindings
	// are each allocated their own slot in the same flat globals[256] table
	// the compiler's scope chain resolves names to at compile time, exactly
	// like a module-level `static`. See DESIGN.md for why this is not the
	// same as aliasing-by-name across unrelated functions.
	DEFINE_GLOBAL // value DEFINE_GLOBAL<global> -
	GET_GLOBAL    // - GET_GLOBAL<global> value
	SET_GLOBAL    // value SET_GLOBAL<global> value (not popped, spec §9 open question)

	// binary arithmetic, ordered i32/i64/u32/u64/f64 per operator (spec §4.2 table)
	ADD_I32
	SUB_I32
	MUL_I32
	DIV_I32
	MOD_I32
	ADD_I64
	SUB_I64
	MUL_I64
	DIV_I64
	MOD_I64
	ADD_U32
	SUB_U32
	MUL_U32
	DIV_U32
	MOD_U32
	ADD_U64
	SUB_U64
	MUL_U64
	DIV_U64
	MOD_U64
	ADD_F64
	SUB_F64
	MUL_F64
	DIV_F64

	// unary
	NEGATE_I32
	NEGATE_I64
	NEGATE_U32 // wraps two's-complement, spec §9 open question resolution
	NEGATE_U64
	NEGATE_F64
	NOT      // bool NOT bool
	BIT_NOT  // int BIT_NOT int

	// bitwise/shift, untyped by width beyond "is it an integer" (spec §4.1
	// lists the operators but the opcode table in §4.2 is "selected", not
	// exhaustive; see DESIGN.md for the rationale of one opcode per operator
	// here instead of one per width)
	BIT_AND
	BIT_OR
	BIT_XOR
	SHL
	SHR

	// comparisons
	EQUAL
	NOT_EQUAL
	LESS_I32
	LESS_I64
	LESS_U32
	LESS_U64
	LESS_F64
	LESS_EQUAL_I32
	LESS_EQUAL_I64
	LESS_EQUAL_U32
	LESS_EQUAL_U64
	LESS_EQUAL_F64
	GREATER_I32
	GREATER_I64
	GREATER_U32
	GREATER_U64
	GREATER_F64
	GREATER_EQUAL_I32
	GREATER_EQUAL_I64
	GREATER_EQUAL_U32
	GREATER_EQUAL_U64
	GREATER_EQUAL_F64

	// numeric promotion (spec §4.2 "Emission")
	I32_TO_F64
	U32_TO_F64
	CAST // value CAST<typeTag> value, explicit `as` conversion

	// control flow
	JUMP          // - JUMP<off16> -
	JUMP_IF_FALSE // bool JUMP_IF_FALSE<off16> bool (not popped)
	JUMP_IF_TRUE  // bool JUMP_IF_TRUE<off16> bool (not popped)
	LOOP          // - LOOP<off16> -

	CALL        // args... CALL<func,argc> result
	CALL_NATIVE // args... CALL_NATIVE<native,argc> result
	RETURN      // value RETURN -

	TRY_PUSH // - TRY_PUSH<handlerOff16,varLocal> -
	TRY_POP  // - TRY_POP -

	PRINT // value PRINT -

	ARRAY_LITERAL // x1..xn ARRAY_LITERAL<n> array
	INDEX_GET     // arr idx INDEX_GET value
	INDEX_SET     // arr idx value INDEX_SET value (not popped)
	SLICE         // arr lo hi SLICE array

	STRUCT_LITERAL // f1..fn STRUCT_LITERAL<nameConst,n> struct
	GET_FIELD      // struct GET_FIELD<fieldIdx> value
	SET_FIELD      // struct value SET_FIELD<fieldIdx> value (not popped)

	maxOpcode
)

var opcodeNames = [...]string{
	NOP: "NOP", CONSTANT: "CONSTANT", NIL: "NIL", TRUE: "TRUE", FALSE: "FALSE", POP: "POP",
	DEFINE_GLOBAL: "DEFINE_GLOBAL", GET_GLOBAL: "GET_GLOBAL", SET_GLOBAL: "SET_GLOBAL",
	ADD_I32: "ADD_I32", SUB_I32: "SUB_I32", MUL_I32: "MUL_I32", DIV_I32: "DIV_I32", MOD_I32: "MOD_I32",
	ADD_I64: "ADD_I64", SUB_I64: "SUB_I64", MUL_I64: "MUL_I64", DIV_I64: "DIV_I64", MOD_I64: "MOD_I64",
	ADD_U32: "ADD_U32", SUB_U32: "SUB_U32", MUL_U32: "MUL_U32", DIV_U32: "DIV_U32", MOD_U32: "MOD_U32",
	ADD_U64: "ADD_U64", SUB_U64: "SUB_U64", MUL_U64: "MUL_U64", DIV_U64: "DIV_U64", MOD_U64: "MOD_U64",
	ADD_F64: "ADD_F64", SUB_F64: "SUB_F64", MUL_F64: "MUL_F64", DIV_F64: "DIV_F64",
	NEGATE_I32: "NEGATE_I32", NEGATE_I64: "NEGATE_I64", NEGATE_U32: "NEGATE_U32", NEGATE_U64: "NEGATE_U64", NEGATE_F64: "NEGATE_F64",
	NOT: "NOT", BIT_NOT: "BIT_NOT", BIT_AND: "BIT_AND", BIT_OR: "BIT_OR", BIT_XOR: "BIT_XOR", SHL: "SHL", SHR: "SHR",
	EQUAL: "EQUAL", NOT_EQUAL: "NOT_EQUAL",
	LESS_I32: "LESS_I32", LESS_I64: "LESS_I64", LESS_U32: "LESS_U32", LESS_U64: "LESS_U64", LESS_F64: "LESS_F64",
	LESS_EQUAL_I32: "LESS_EQUAL_I32", LESS_EQUAL_I64: "LESS_EQUAL_I64", LESS_EQUAL_U32: "LESS_EQUAL_U32", LESS_EQUAL_U64: "LESS_EQUAL_U64", LESS_EQUAL_F64: "LESS_EQUAL_F64",
	GREATER_I32: "GREATER_I32", GREATER_I64: "GREATER_I64", GREATER_U32: "GREATER_U32", GREATER_U64: "GREATER_U64", GREATER_F64: "GREATER_F64",
	GREATER_EQUAL_I32: "GREATER_EQUAL_I32", GREATER_EQUAL_I64: "GREATER_EQUAL_I64", GREATER_EQUAL_U32: "GREATER_EQUAL_U32", GREATER_EQUAL_U64: "GREATER_EQUAL_U64", GREATER_EQUAL_F64: "GREATER_EQUAL_F64",
	I32_TO_F64: "I32_TO_F64", U32_TO_F64: "U32_TO_F64", CAST: "CAST",
	JUMP: "JUMP", JUMP_IF_FALSE: "JUMP_IF_FALSE", JUMP_IF_TRUE: "JUMP_IF_TRUE", LOOP: "LOOP",
	CALL: "CALL", CALL_NATIVE: "CALL_NATIVE", RETURN: "RETURN",
	TRY_PUSH: "TRY_PUSH", TRY_POP: "TRY_POP", PRINT: "PRINT",
	ARRAY_LITERAL: "ARRAY_LITERAL", INDEX_GET: "INDEX_GET", INDEX_SET: "INDEX_SET", SLICE: "SLICE",
	STRUCT_LITERAL: "STRUCT_LITERAL", GET_FIELD: "GET_FIELD", SET_FIELD: "SET_FIELD",
}

func (op Opcode) String() string {
	if int(op) < len(opcodeNames) && opcodeNames[op] != "" {
		return opcodeNames[op]
	}
	return fmt.Sprintf("Opcode(%d)", op)
}

// operandWidth returns the number of operand bytes following op in the code
// stream (spec §4.3: "operand width is fixed per opcode").
func operandWidth(op Opcode) int {
	switch op {
	case DEFINE_GLOBAL, GET_GLOBAL, SET_GLOBAL, CONSTANT,
		CAST, GET_FIELD, SET_FIELD:
		return 1
	case JUMP, JUMP_IF_FALSE, JUMP_IF_TRUE, LOOP, CALL, CALL_NATIVE, ARRAY_LITERAL:
		return 2
	case TRY_PUSH:
		return 3 // handler offset (2 bytes) + local slot (1 byte)
	case STRUCT_LITERAL:
		return 2 // name constant index (1 byte) + field count (1 byte)
	default:
		return 0
	}
}
