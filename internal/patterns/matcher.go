// Package patterns filters changed paths against the user's ignore globs.
package patterns

import (
	"strings"

	"stagr/internal/errors"
	"stagr/pkg/types"

	"github.com/gobwas/glob"
)

// Matcher holds a set of compiled ignore patterns.
//
// Patterns use '/' as separator: "*" stays within one path component while
// "**" crosses directories. A path is ignored when it, or any of its parent
// directories, matches a pattern, so "vendor" hides everything under vendor/.
type Matcher struct {
	sources  []string
	compiled []glob.Glob
}

// NewMatcher compiles patterns. An empty or malformed pattern yields a
// config error of kind InvalidPattern naming the offending pattern.
func NewMatcher(patterns []string) (*Matcher, error) {
	m := &Matcher{
		sources:  make([]string, 0, len(patterns)),
		compiled: make([]glob.Glob, 0, len(patterns)),
	}

	for _, p := range patterns {
		p = strings.TrimSpace(p)
		if p == "" {
			return nil, errors.NewConfigError("empty ignore pattern", p, errors.InvalidPattern, nil)
		}

		g, err := glob.Compile(strings.TrimSuffix(p, "/"), '/')
		if err != nil {
			return nil, errors.NewConfigError("invalid ignore pattern", p, errors.InvalidPattern, err)
		}
		m.sources = append(m.sources, p)
		m.compiled = append(m.compiled, g)
	}

	return m, nil
}

// Patterns returns the patterns as given.
func (m *Matcher) Patterns() []string {
	return append([]string(nil), m.sources...)
}

// Empty reports whether the matcher ignores nothing.
func (m *Matcher) Empty() bool {
	return m == nil || len(m.compiled) == 0
}

// Match reports whether path should be ignored.
func (m *Matcher) Match(path string) bool {
	if m.Empty() {
		return false
	}
	path = strings.Trim(path, "/")

	for p := path; p != ""; p = parent(p) {
		for _, g := range m.compiled {
			if g.Match(p) {
				return true
			}
		}
	}
	return false
}

// Filter returns the items whose path is not ignored, in their original order.
func (m *Matcher) Filter(items []types.StatusItem) []types.StatusItem {
	if m.Empty() {
		return items
	}

	kept := make([]types.StatusItem, 0, len(items))
	for _, item := range items {
		if !m.Match(item.Path) {
			kept = append(kept, item)
		}
	}
	return kept
}

func parent(p string) string {
	if idx := strings.LastIndex(p, "/"); idx >= 0 {
		return p[:idx]
	}
	return ""
}
