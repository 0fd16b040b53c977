package machine_test

import (
	"bytes"
	"testing"

	"github.com/orus-lang/orus/lang/compiler"
	"github.com/orus-lang/orus/lang/machine"
	"github.com/orus-lang/orus/lang/parser"
	"github.com/orus-lang/orus/lang/scanner"
	"github.com/orus-lang/orus/lang/types"
	"github.com/stretchr/testify/require"
)

// run compiles and executes src end to end, returning everything it
// printed. It mirrors spec §8's worked examples, which are phrased as
// source-in/stdout-out pairs.
func run(t *testing.T, src string) string {
	t.Helper()
	sc := scanner.New("test.orus", src)
	p := parser.New("test.orus", sc)
	chunk := p.ParseChunk()
	require.False(t, p.HadError(), "parse errors: %v", p.Errs())

	bc, errs := compiler.Compile("test.orus", chunk, types.NewRegistry())
	require.Empty(t, errs, "compile errors: %v", errs)

	var out bytes.Buffer
	m := machine.New()
	m.Stdout = &out
	_, err := m.Run("test.orus", bc)
	require.NoError(t, err)
	return out.String()
}

func TestPrintLiteral(t *testing.T) {
	require.Equal(t, "hi\n", run(t, `print("hi")`))
}

func TestForRangeAccumulates(t *testing.T) {
	src := "fn main() {\n" +
		"  let mut s = 0\n" +
		"  for i in 0..5 {\n" +
		"    s = s + i\n" +
		"  }\n" +
		"  print(s)\n" +
		"}\n" +
		"main()\n"
	require.Equal(t, "10\n", run(t, src))
}

func TestRecursiveFactorial(t *testing.T) {
	src := "fn fact(n: i32) -> i32 {\n" +
		"  if n <= 1 {\n" +
		"    return 1\n" +
		"  }\n" +
		"  return n * fact(n - 1)\n" +
		"}\n" +
		"print(fact(5))\n"
	require.Equal(t, "120\n", run(t, src))
}

func TestIntLiteralWidensToF64(t *testing.T) {
	src := "fn main() {\n" +
		"  let x: f64 = 1 + 2.5\n" +
		"  print(x)\n" +
		"}\n" +
		"main()\n"
	require.Equal(t, "3.5\n", run(t, src))
}

func TestArrayIndexSet(t *testing.T) {
	src := "fn main() {\n" +
		"  let a = [1, 2, 3]\n" +
		"  a[1] = 9\n" +
		"  print(a[1])\n" +
		"}\n" +
		"main()\n"
	require.Equal(t, "9\n", run(t, src))
}

func TestTryCatchDivisionByZero(t *testing.T) {
	src := "fn main() {\n" +
		"  try {\n" +
		"    let z = 1 / 0\n" +
		"  } catch e {\n" +
		"    print(\"caught\")\n" +
		"  }\n" +
		"}\n" +
		"main()\n"
	require.Equal(t, "caught\n", run(t, src))
}

func TestWhileBreakContinue(t *testing.T) {
	src := "fn main() {\n" +
		"  let mut i = 0\n" +
		"  let mut sum = 0\n" +
		"  while i < 10 {\n" +
		"    i = i + 1\n" +
		"    if i == 5 {\n" +
		"      continue\n" +
		"    }\n" +
		"    if i > 8 {\n" +
		"      break\n" +
		"    }\n" +
		"    sum = sum + i\n" +
		"  }\n" +
		"  print(sum)\n" +
		"}\n" +
		"main()\n"
	require.Equal(t, "31\n", run(t, src))
}

func TestStructFieldAccess(t *testing.T) {
	src := "struct Point { x: i32, y: i32 }\n" +
		"fn main() {\n" +
		"  let p = Point { x: 3, y: 4 }\n" +
		"  print(p.x + p.y)\n" +
		"}\n" +
		"main()\n"
	require.Equal(t, "7\n", run(t, src))
}
