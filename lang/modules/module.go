// Package modules implements the module loader (spec §4.6): resolving a
// `use` path to source, compiling it, caching the resulting bytecode on
// disk, and running each module's top level exactly once.
package modules

import (
	"github.com/orus-lang/orus/lang/compiler"
	"github.com/orus-lang/orus/lang/machine"
	"github.com/orus-lang/orus/lang/value"
)

// Module is one entry of the loader's cache: a compiled chunk plus
// everything needed to run it lazily and read back its exports (spec §4.6
// step 6: "{name, path, chunk, exports, executed, diskPath, mtime,
// fromEmbedded}").
type Module struct {
	Name         string
	Path         string
	Chunk        *compiler.Chunk
	Exports      map[string]int // global name -> slot in m's own machine
	Functions    map[string]int // function name -> index into Chunk.Functions
	Executed     bool
	DiskPath     string
	Mtime        int64
	FromEmbedded bool

	m *machine.Machine
}

// Export returns the current value of a module's exported global. It does
// not run the module: before Loader.Use has run it, the slot still holds
// its initial value. ok is false if name is not exported.
func (mod *Module) Export(name string) (v value.Value, ok bool) {
	slot, ok := mod.Exports[name]
	if !ok {
		return value.Nil, false
	}
	return mod.m.Global(slot), true
}

// exportsOf collects every Public global from a freshly compiled chunk
// (spec §4.6 step 6: "every global introduced during this module's
// compilation that is marked pub").
func exportsOf(c *compiler.Chunk) map[string]int {
	exports := make(map[string]int)
	for _, g := range c.Globals {
		if g.Public {
			exports[g.Name] = g.Slot
		}
	}
	return exports
}

// functionsOf collects a module's top-level functions. lang/compiler has no
// `pub` keyword (see its compileUseStmt/declareTopLevel doc comments): every
// top-level fn is implicitly exported, the same rule exportsOf applies to
// static/const globals.
func functionsOf(c *compiler.Chunk) map[string]int {
	fns := make(map[string]int, len(c.Functions))
	for i, fn := range c.Functions {
		fns[fn.Name] = i
	}
	return fns
}
