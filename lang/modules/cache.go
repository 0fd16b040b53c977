package modules

import (
	"os"
	"path/filepath"

	"github.com/orus-lang/orus/lang/compiler"
)

// cachePathFor returns cacheDir/basename.obc for a module's disk path
// (spec §4.6 step 5: "bytecode cache file ... cachePath/basename.obc").
func cachePathFor(cacheDir, diskPath string) string {
	base := filepath.Base(diskPath)
	ext := filepath.Ext(base)
	base = base[:len(base)-len(ext)]
	return filepath.Join(cacheDir, base+".obc")
}

// loadCache reads and validates a cache entry, returning ok=false on any
// read error or mtime mismatch, at which point the caller recompiles
// (spec §4.3: "rejection is silent, fall back to recompile").
func loadCache(cacheDir, diskPath string, mtime int64) (*compiler.Chunk, bool) {
	if cacheDir == "" {
		return nil, false
	}
	data, err := os.ReadFile(cachePathFor(cacheDir, diskPath))
	if err != nil {
		return nil, false
	}
	return compiler.Deserialize(data, mtime)
}

// writeCache persists a freshly compiled chunk. Failures are non-fatal: a
// missing or unwritable cache directory degrades to "always recompile",
// never to a load failure.
func writeCache(cacheDir, diskPath string, c *compiler.Chunk) {
	if cacheDir == "" {
		return
	}
	data, err := c.Serialize()
	if err != nil {
		return
	}
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return
	}
	_ = os.WriteFile(cachePathFor(cacheDir, diskPath), data, 0o644)
}
