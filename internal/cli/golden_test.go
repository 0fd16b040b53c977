package cli_test

import (
	"bytes"
	"flag"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mna/mainer"

	"github.com/orus-lang/orus/internal/cli"
	"github.com/orus-lang/orus/internal/filetest"
)

var testUpdateRunTests = flag.Bool("test.update-run-tests", false, "If set, replace expected cli run test results with actual results.")

// TestRun drives cli.Cmd.Main end to end against every testdata/in/*.orus
// file and compares stdout/stderr to the golden files in testdata/out, the
// same source-file-plus-golden-result shape the teacher uses for its
// scanner/parser/resolver test suites.
func TestRun(t *testing.T) {
	srcDir, resultDir := filepath.Join("testdata", "in"), filepath.Join("testdata", "out")

	for _, fi := range filetest.SourceFiles(t, srcDir, ".orus") {
		t.Run(fi.Name(), func(t *testing.T) {
			var out, errOut bytes.Buffer
			c := cli.Cmd{}
			sio := mainer.Stdio{
				Stdin:  strings.NewReader(""),
				Stdout: &out,
				Stderr: &errOut,
			}
			c.Main([]string{"orus", filepath.Join(srcDir, fi.Name())}, sio)

			filetest.DiffOutput(t, fi, out.String(), resultDir, testUpdateRunTests)
			filetest.DiffErrors(t, fi, errOut.String(), resultDir, testUpdateRunTests)
		})
	}
}
