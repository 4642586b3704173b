package watch

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"
)

// DefaultIgnore are always skipped. Each pattern is matched against every
// path segment and against the whole root-relative path.
var DefaultIgnore = []string{".git", ".engram", "node_modules", "dist", ".*"}

// Ignorer decides which paths produce no change events.
type Ignorer struct {
	globs []glob.Glob
}

// NewIgnorer compiles DefaultIgnore plus extra patterns.
func NewIgnorer(extra []string) (*Ignorer, error) {
	ig := &Ignorer{}
	for _, p := range append(append([]string{}, DefaultIgnore...), extra...) {
		g, err := glob.Compile(p, '/')
		if err != nil {
			return nil, fmt.Errorf("ignore pattern %q: %w", p, err)
		}
		ig.globs = append(ig.globs, g)
	}
	return ig, nil
}

// Match reports whether rel, a path relative to the watch root, is ignored.
func (ig *Ignorer) Match(rel string) bool {
	rel = filepath.ToSlash(filepath.Clean(rel))
	if rel == "." || rel == "" {
		return false
	}
	for _, g := range ig.globs {
		if g.Match(rel) {
			return true
		}
		for _, seg := range strings.Split(rel, "/") {
			if g.Match(seg) {
				return true
			}
		}
	}
	return false
}
