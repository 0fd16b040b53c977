// Package stdlib embeds the fallback module table consulted after disk
// resolution fails (spec §6: "compile-time table of {path, source} pairs").
package stdlib

import "embed"

//go:embed src
var files embed.FS

// Lookup returns the embedded source for path (without its .orus suffix
// trimmed, matching how lang/modules joins `use` segments), if any ships in
// the embedded table.
func Lookup(path string) (string, bool) {
	data, err := files.ReadFile("src/" + path + ".orus")
	if err != nil {
		return "", false
	}
	return string(data), true
}
