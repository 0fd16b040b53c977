package modules_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/orus-lang/orus/lang/modules"
	"github.com/stretchr/testify/require"
)

func writeModule(t *testing.T, dir, name, src string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(src), 0o644))
}

func TestCompileModuleFromDisk(t *testing.T) {
	dir := t.TempDir()
	writeModule(t, dir, "greet.orus", "static greeting = \"hi\"\n")

	l := modules.NewLoader("", t.TempDir())
	mod, derr := l.CompileModule(filepath.Join(dir, "greet"))
	require.Nil(t, derr)
	require.Equal(t, "greet", mod.Name)
	require.Contains(t, mod.Exports, "greeting")
	require.False(t, mod.Executed)
}

func TestCompileModuleIsCached(t *testing.T) {
	dir := t.TempDir()
	writeModule(t, dir, "once.orus", "static x = 1\n")

	l := modules.NewLoader("", "")
	first, derr := l.CompileModule(filepath.Join(dir, "once"))
	require.Nil(t, derr)
	second, derr := l.CompileModule(filepath.Join(dir, "once"))
	require.Nil(t, derr)
	require.Same(t, first, second)
}

func TestUseRunsOnceAndExposesExports(t *testing.T) {
	dir := t.TempDir()
	writeModule(t, dir, "counter.orus", "static total = 2 + 3\n")

	l := modules.NewLoader("", "")
	path := filepath.Join(dir, "counter")
	mod, derr := l.Use(path)
	require.Nil(t, derr)
	require.True(t, mod.Executed)

	v, ok := mod.Export("total")
	require.True(t, ok)
	require.Equal(t, int32(5), v.AsI32())

	again, derr := l.Use(path)
	require.Nil(t, derr)
	require.Same(t, mod, again)
}

func TestModuleNotFound(t *testing.T) {
	l := modules.NewLoader("", "")
	_, derr := l.CompileModule("does/not/exist")
	require.NotNil(t, derr)
}

func TestEmbeddedStdlibFallback(t *testing.T) {
	l := modules.NewLoader(t.TempDir(), "")
	mod, derr := l.CompileModule("mathx")
	require.Nil(t, derr)
	require.True(t, mod.FromEmbedded)
	require.Contains(t, mod.Functions, "clamp")
	require.Contains(t, mod.Functions, "hypot")
}

func TestCachePersistsAcrossLoaders(t *testing.T) {
	dir := t.TempDir()
	cacheDir := t.TempDir()
	writeModule(t, dir, "cached.orus", "static y = 7\n")
	path := filepath.Join(dir, "cached")

	l1 := modules.NewLoader("", cacheDir)
	_, derr := l1.CompileModule(path)
	require.Nil(t, derr)

	entries, err := os.ReadDir(cacheDir)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	l2 := modules.NewLoader("", cacheDir)
	mod, derr := l2.CompileModule(path)
	require.Nil(t, derr)
	require.Contains(t, mod.Exports, "y")
}
