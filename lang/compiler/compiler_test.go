package compiler_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/orus-lang/orus/lang/compiler"
	"github.com/orus-lang/orus/lang/parser"
	"github.com/orus-lang/orus/lang/scanner"
	"github.com/orus-lang/orus/lang/types"
	"github.com/orus-lang/orus/lang/value"
)

func TestCompileEmitsFinalNilReturn(t *testing.T) {
	sc := scanner.New("test.orus", "static x = 1")
	p := parser.New("test.orus", sc)
	chunkAST := p.ParseChunk()
	require.False(t, p.HadError())

	chunk, errs := compiler.Compile("test.orus", chunkAST, types.NewRegistry())
	require.Empty(t, errs)

	require.GreaterOrEqual(t, len(chunk.Code), 2)
	last2 := chunk.Code[len(chunk.Code)-2:]
	require.Equal(t, []byte{byte(compiler.NIL), byte(compiler.RETURN)}, last2)
}

func TestCompileRecordsPublicGlobals(t *testing.T) {
	sc := scanner.New("test.orus", "static greeting = \"hi\"\nconst answer = 42")
	p := parser.New("test.orus", sc)
	chunkAST := p.ParseChunk()
	require.False(t, p.HadError())

	chunk, errs := compiler.Compile("test.orus", chunkAST, types.NewRegistry())
	require.Empty(t, errs)

	names := map[string]bool{}
	for _, g := range chunk.Globals {
		names[g.Name] = g.Public
	}
	require.True(t, names["greeting"])
	require.True(t, names["answer"])
}

func TestCompileRecordsFunctions(t *testing.T) {
	sc := scanner.New("test.orus", "fn add(a: i32, b: i32) -> i32 { return a + b }")
	p := parser.New("test.orus", sc)
	chunkAST := p.ParseChunk()
	require.False(t, p.HadError())

	chunk, errs := compiler.Compile("test.orus", chunkAST, types.NewRegistry())
	require.Empty(t, errs)

	require.Len(t, chunk.Functions, 1)
	require.Equal(t, "add", chunk.Functions[0].Name)
	require.Equal(t, 2, chunk.Functions[0].Arity)
}

func TestCompileTopLevelLetIsRejected(t *testing.T) {
	sc := scanner.New("test.orus", "let x = 1")
	p := parser.New("test.orus", sc)
	p.ParseChunk()
	require.True(t, p.HadError())
	require.NotEmpty(t, p.Errs())
}

func TestCompileUndefinedVariableIsTypeError(t *testing.T) {
	sc := scanner.New("test.orus", "fn main() { print(missing) } main()")
	p := parser.New("test.orus", sc)
	chunkAST := p.ParseChunk()
	require.False(t, p.HadError())

	_, errs := compiler.Compile("test.orus", chunkAST, types.NewRegistry())
	require.NotEmpty(t, errs)
}

func TestChunkSerializeDeserializeRoundTrip(t *testing.T) {
	sc := scanner.New("test.orus", "fn add(a: i32, b: i32) -> i32 { return a + b }\nstatic total = add(1, 2)")
	p := parser.New("test.orus", sc)
	chunkAST := p.ParseChunk()
	require.False(t, p.HadError())

	chunk, errs := compiler.Compile("test.orus", chunkAST, types.NewRegistry())
	require.Empty(t, errs)
	chunk.Mtime = 1234567

	data, err := chunk.Serialize()
	require.NoError(t, err)

	got, ok := compiler.Deserialize(data, 1234567)
	require.True(t, ok)
	require.Equal(t, chunk.Code, got.Code)
	require.Equal(t, chunk.Lines, got.Lines)
	require.Equal(t, chunk.Constants, got.Constants)
	require.Equal(t, chunk.Functions, got.Functions)
	require.Equal(t, chunk.Globals, got.Globals)
}

func TestDeserializeRejectsMtimeMismatch(t *testing.T) {
	chunk := compiler.NewChunk()
	chunk.Write(compiler.NIL, 1)
	chunk.Write(compiler.RETURN, 1)
	chunk.Mtime = 100

	data, err := chunk.Serialize()
	require.NoError(t, err)

	_, ok := compiler.Deserialize(data, 999)
	require.False(t, ok)
}

func TestDeserializeRejectsGarbage(t *testing.T) {
	_, ok := compiler.Deserialize([]byte("not a chunk"), 0)
	require.False(t, ok)
}

func TestConstantPoolAllowsDuplicates(t *testing.T) {
	c := compiler.NewChunk()
	i1 := c.AddConstant(value.I32(7))
	i2 := c.AddConstant(value.I32(7))
	require.NotEqual(t, i1, i2)
	require.Len(t, c.Constants, 2)
}
