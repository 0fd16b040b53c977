package machine

import (
	"bufio"
	"math"
	"strings"
	"time"

	"github.com/orus-lang/orus/lang/value"
)

// NativeFunc is the runtime counterpart of lang/compiler's nativeSig: args
// arrive already popped off the operand stack in call order.
type NativeFunc func(m *Machine, args []value.Value) (value.Value, error)

// nativeTable returns the runtime implementations indexed exactly like
// lang/compiler's builtinNatives() (see that file's doc comment: "the index
// here and the index registered at runtime must agree").
func nativeTable() []NativeFunc {
	return []NativeFunc{
		nativeSprintf,
		nativeMathSqrt,
		nativeMathAbs,
		nativeMathFloor,
		nativeMathCeil,
		nativeMathPow,
		nativeMathMin,
		nativeMathMax,
		nativeStringLen,
		nativeStringUpper,
		nativeStringLower,
		nativeStringTrim,
		nativeIoReadLine,
		nativeTimeNow,
	}
}

// nativeSprintf backs the multi-argument form of `print`: the format
// string uses `{}` placeholders filled positionally from the remaining
// arguments, Rust-format-macro style.
func nativeSprintf(m *Machine, args []value.Value) (value.Value, error) {
	if len(args) == 0 {
		return value.Str(m.newString("")), nil
	}
	format := args[0].AsString().Data
	rest := args[1:]
	var b strings.Builder
	i := 0
	for {
		idx := strings.Index(format, "{}")
		if idx < 0 {
			b.WriteString(format)
			break
		}
		b.WriteString(format[:idx])
		if i < len(rest) {
			b.WriteString(rest[i].String())
			i++
		}
		format = format[idx+2:]
	}
	return value.Str(m.newString(b.String())), nil
}

func nativeMathSqrt(m *Machine, args []value.Value) (value.Value, error) {
	return value.F64(math.Sqrt(args[0].AsF64())), nil
}

func nativeMathAbs(m *Machine, args []value.Value) (value.Value, error) {
	return value.F64(math.Abs(args[0].AsF64())), nil
}

func nativeMathFloor(m *Machine, args []value.Value) (value.Value, error) {
	return value.F64(math.Floor(args[0].AsF64())), nil
}

func nativeMathCeil(m *Machine, args []value.Value) (value.Value, error) {
	return value.F64(math.Ceil(args[0].AsF64())), nil
}

func nativeMathPow(m *Machine, args []value.Value) (value.Value, error) {
	return value.F64(math.Pow(args[0].AsF64(), args[1].AsF64())), nil
}

func nativeMathMin(m *Machine, args []value.Value) (value.Value, error) {
	return value.F64(math.Min(args[0].AsF64(), args[1].AsF64())), nil
}

func nativeMathMax(m *Machine, args []value.Value) (value.Value, error) {
	return value.F64(math.Max(args[0].AsF64(), args[1].AsF64())), nil
}

func nativeStringLen(m *Machine, args []value.Value) (value.Value, error) {
	return value.I32(int32(len(args[0].AsString().Data))), nil
}

func nativeStringUpper(m *Machine, args []value.Value) (value.Value, error) {
	return value.Str(m.newString(strings.ToUpper(args[0].AsString().Data))), nil
}

func nativeStringLower(m *Machine, args []value.Value) (value.Value, error) {
	return value.Str(m.newString(strings.ToLower(args[0].AsString().Data))), nil
}

func nativeStringTrim(m *Machine, args []value.Value) (value.Value, error) {
	return value.Str(m.newString(strings.TrimSpace(args[0].AsString().Data))), nil
}

func nativeIoReadLine(m *Machine, args []value.Value) (value.Value, error) {
	if m.stdinReader == nil {
		m.stdinReader = bufio.NewReader(m.Stdin)
	}
	line, err := m.stdinReader.ReadString('\n')
	line = strings.TrimRight(line, "\r\n")
	if err != nil && line == "" {
		return value.Str(m.newString("")), nil
	}
	return value.Str(m.newString(line)), nil
}

func nativeTimeNow(m *Machine, args []value.Value) (value.Value, error) {
	return value.F64(float64(time.Now().UnixNano()) / 1e9), nil
}
