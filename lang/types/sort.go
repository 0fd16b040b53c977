package types

import "golang.org/x/exp/slices"

// sortStrings sorts names in place. Registry.Names uses this so that
// disassembly dumps and "no such type" suggestions are deterministic
// despite the underlying swiss map having no stable iteration order.
func sortStrings(names []string) {
	slices.Sort(names)
}
