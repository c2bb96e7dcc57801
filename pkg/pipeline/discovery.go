package pipeline

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/gnana997/glot/pkg/parser"
)

// Discover walks cfg.Root applying the include and ignore globs and returns
// sorted absolute paths of parseable files.
func Discover(cfg Config) ([]string, error) {
	ignores := cfg.ignores()
	m, err := newMatcher(cfg.Includes, ignores)
	if err != nil {
		return nil, err
	}

	absRoot, err := filepath.Abs(cfg.Root)
	if err != nil {
		return nil, fmt.Errorf("resolve root path: %w", err)
	}

	var files []string
	err = filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Unreadable directories surface as read errors later if any
			// file beneath them matters.
			return nil
		}
		rel, relErr := filepath.Rel(absRoot, path)
		if relErr != nil || rel == "." {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if m.ignored(rel) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if m.included(rel) && parser.IsSupported(path) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(files)
	return files, nil
}

// matcher applies include and ignore globs to slash-separated relative paths.
type matcher struct {
	includes []string
	ignores  []string
}

func newMatcher(includes, ignores []string) (*matcher, error) {
	for _, p := range ignores {
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("invalid ignore pattern: %s", p)
		}
	}
	for _, p := range includes {
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("invalid include pattern: %s", p)
		}
	}
	return &matcher{includes: includes, ignores: ignores}, nil
}

func (m *matcher) ignored(rel string) bool {
	for _, p := range m.ignores {
		if ok, _ := doublestar.Match(p, rel); ok {
			return true
		}
	}
	return false
}

func (m *matcher) included(rel string) bool {
	if len(m.includes) == 0 {
		return true
	}
	for _, p := range m.includes {
		if ok, _ := doublestar.Match(p, rel); ok {
			return true
		}
	}
	return false
}

// Matches reports whether path, absolute or relative to cfg.Root, would be
// picked up by Discover.
func Matches(cfg Config, path string) bool {
	m, rel, ok := cfg.match(path)
	return ok && !m.ignored(rel) && m.included(rel) && parser.IsSupported(path)
}

// Ignored reports whether path, absolute or relative to cfg.Root, matches an
// ignore glob. Paths outside the root are ignored.
func Ignored(cfg Config, path string) bool {
	m, rel, ok := cfg.match(path)
	return !ok || m.ignored(rel)
}

func (c Config) match(path string) (*matcher, string, bool) {
	m, err := newMatcher(c.Includes, c.ignores())
	if err != nil {
		return nil, "", false
	}
	rel := path
	if filepath.IsAbs(path) {
		absRoot, err := filepath.Abs(c.Root)
		if err != nil {
			return nil, "", false
		}
		if rel, err = filepath.Rel(absRoot, path); err != nil {
			return nil, "", false
		}
	}
	rel = filepath.ToSlash(rel)
	if rel == ".." || strings.HasPrefix(rel, "../") {
		return nil, "", false
	}
	return m, rel, true
}
