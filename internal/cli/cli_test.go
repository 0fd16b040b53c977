package cli_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mna/mainer"
	"github.com/stretchr/testify/require"

	"github.com/orus-lang/orus/internal/cli"
)

func stdio(stdin string) (mainer.Stdio, *bytes.Buffer, *bytes.Buffer) {
	var out, errOut bytes.Buffer
	return mainer.Stdio{
		Stdin:  strings.NewReader(stdin),
		Stdout: &out,
		Stderr: &errOut,
	}, &out, &errOut
}

func TestVersionFlag(t *testing.T) {
	c := cli.Cmd{BuildVersion: "1.2.3", BuildDate: "2026-01-01"}
	sio, out, _ := stdio("")
	code := c.Main([]string{"orus", "--version"}, sio)
	require.Equal(t, cli.ExitSuccess, code)
	require.Contains(t, out.String(), "1.2.3")
}

func TestHelpFlag(t *testing.T) {
	c := cli.Cmd{}
	sio, out, _ := stdio("")
	code := c.Main([]string{"orus", "--help"}, sio)
	require.Equal(t, cli.ExitSuccess, code)
	require.Contains(t, out.String(), "usage:")
}

func TestRunMissingFile(t *testing.T) {
	c := cli.Cmd{}
	sio, _, _ := stdio("")
	code := c.Main([]string{"orus", "/does/not/exist.orus"}, sio)
	require.Equal(t, cli.ExitIOError, code)
}

func TestRunCompileError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.orus")
	require.NoError(t, os.WriteFile(path, []byte("fn main() { let }"), 0o644))

	c := cli.Cmd{}
	sio, _, errOut := stdio("")
	code := c.Main([]string{"orus", path}, sio)
	require.Equal(t, cli.ExitCompileError, code)
	require.NotEmpty(t, errOut.String())
}

func TestRunSuccess(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ok.orus")
	require.NoError(t, os.WriteFile(path, []byte(`fn main() { print("hi") } main()`), 0o644))

	c := cli.Cmd{}
	sio, out, _ := stdio("")
	code := c.Main([]string{"orus", path}, sio)
	require.Equal(t, cli.ExitSuccess, code)
	require.Equal(t, "hi\n", out.String())
}

func TestRunRuntimeError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "panics.orus")
	require.NoError(t, os.WriteFile(path, []byte("fn main() {\n  let x = 1 / 0\n  print(x)\n}\nmain()\n"), 0o644))

	c := cli.Cmd{}
	sio, _, errOut := stdio("")
	code := c.Main([]string{"orus", path}, sio)
	require.Equal(t, cli.ExitRuntimeError, code)
	require.NotEmpty(t, errOut.String())
}

func TestReplEvaluatesEachLine(t *testing.T) {
	c := cli.Cmd{}
	sio, out, _ := stdio("print(\"a\")\nprint(\"b\")\n")
	code := c.Main([]string{"orus"}, sio)
	require.Equal(t, cli.ExitSuccess, code)
	require.Contains(t, out.String(), "a\n")
	require.Contains(t, out.String(), "b\n")
}

func TestTooManyArgumentsIsInvalid(t *testing.T) {
	c := cli.Cmd{}
	require.NoError(t, c.Validate())
	c2 := cli.Cmd{}
	sio, _, errOut := stdio("")
	code := c2.Main([]string{"orus", "a.orus", "b.orus"}, sio)
	require.Equal(t, cli.ExitUsage, code)
	require.NotEmpty(t, errOut.String())
}
