// Package stacktrace trims goroutine dumps down to this module's frames.
package stacktrace

import "strings"

const marker = "/internal/"

// InternalPaths returns the "internal/<pkg>/<file>.go:<line>" locations
// found in a debug.Stack dump, in call order.
func InternalPaths(stack []byte) []string {
	var paths []string

	for _, line := range strings.Split(string(stack), "\n") {
		line = strings.TrimSpace(line)

		idx := strings.Index(line, ".go:")
		if idx == -1 {
			continue
		}

		start := strings.Index(line, marker)
		if start == -1 || start > idx {
			continue
		}

		loc := line[start+1:]
		if sp := strings.IndexByte(loc, ' '); sp != -1 {
			loc = loc[:sp]
		}
		paths = append(paths, loc)
	}

	return paths
}
