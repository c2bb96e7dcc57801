// Package autofix writes directive comments back into source files:
// message-keys declarations above unresolved dynamic keys and hardcoded
// suppressions above user-visible literal text.
package autofix

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/gnana997/glot/pkg/analyzer"
	"github.com/gnana997/glot/pkg/resolver"
	"github.com/gnana997/glot/pkg/source"
)

// Kind is the directive a fix inserts.
type Kind int

const (
	// DeclareKeys inserts `glot-message-keys "…"`.
	DeclareKeys Kind = iota
	// SuppressHardcoded inserts `glot-disable-next-line hardcoded`.
	SuppressHardcoded
)

func (k Kind) String() string {
	if k == SuppressHardcoded {
		return "suppress_hardcoded"
	}
	return "declare_keys"
}

func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Fix is one comment to insert above Context.Line. Fixes of the same kind
// on the same line merge into one comment.
type Fix struct {
	Context  source.Context `json:"context"`
	Kind     Kind           `json:"kind"`
	Patterns []string       `json:"patterns,omitempty"`
}

// Comment renders the fix in its comment style without indentation.
func (f Fix) Comment() string {
	var directive string
	switch f.Kind {
	case DeclareKeys:
		quoted := make([]string, len(f.Patterns))
		for i, p := range f.Patterns {
			quoted[i] = `"` + p + `"`
		}
		directive = "glot-message-keys " + strings.Join(quoted, ", ")
	case SuppressHardcoded:
		directive = "glot-disable-next-line hardcoded"
	}
	return f.Context.CommentStyle.Format(directive)
}

// Stats counts what Apply did. Processed is the number of comments
// inserted (or that would be, on a dry run).
type Stats struct {
	Processed     int `json:"processed"`
	Skipped       int `json:"skipped"`
	FilesModified int `json:"files_modified"`
}

// FromUnresolved plans declarations for usages with an inferred pattern.
// The second result counts usages that have none and cannot be fixed.
func FromUnresolved(usages []resolver.UnresolvedKeyUsage) ([]Fix, int) {
	var fixes []Fix
	unfixable := 0
	for _, u := range usages {
		if u.Pattern == "" {
			unfixable++
			continue
		}
		fixes = append(fixes, Fix{Context: u.Context, Kind: DeclareKeys, Patterns: []string{u.Pattern}})
	}
	return group(fixes), unfixable
}

// FromHardcoded plans one suppression per line with hardcoded text.
func FromHardcoded(findings []analyzer.HardcodedText) []Fix {
	fixes := make([]Fix, 0, len(findings))
	for _, h := range findings {
		fixes = append(fixes, Fix{Context: h.Context, Kind: SuppressHardcoded})
	}
	return group(fixes)
}

type lineKey struct {
	file string
	line int
	kind Kind
}

// group merges fixes on the same file, line and kind. A JSX comment wins
// when any merged usage needs one.
func group(fixes []Fix) []Fix {
	index := map[lineKey]int{}
	var out []Fix
	for _, f := range fixes {
		k := lineKey{f.Context.File, f.Context.Line, f.Kind}
		i, ok := index[k]
		if !ok {
			index[k] = len(out)
			f.Patterns = append([]string(nil), f.Patterns...)
			out = append(out, f)
			continue
		}
		g := &out[i]
		for _, p := range f.Patterns {
			if !contains(g.Patterns, p) {
				g.Patterns = append(g.Patterns, p)
			}
		}
		if f.Context.CommentStyle == source.StyleJSX {
			g.Context.CommentStyle = source.StyleJSX
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].Context, out[j].Context
		if a.File != b.File {
			return a.File < b.File
		}
		return a.Line < b.Line
	})
	return out
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// Options controls Apply.
type Options struct {
	// DryRun counts what would change without writing.
	DryRun bool
}

// Apply inserts the fixes, bottom-up per file so earlier line numbers stay
// valid. A fix is skipped when its line is out of range or the same
// comment already sits directly above it.
func Apply(fixes []Fix, opts Options) (Stats, error) {
	byFile := map[string][]Fix{}
	var files []string
	for _, f := range fixes {
		if _, ok := byFile[f.Context.File]; !ok {
			files = append(files, f.Context.File)
		}
		byFile[f.Context.File] = append(byFile[f.Context.File], f)
	}
	sort.Strings(files)

	var stats Stats
	for _, path := range files {
		inserted, skipped, err := applyFile(path, byFile[path], opts)
		stats.Skipped += skipped
		if err != nil {
			return stats, err
		}
		stats.Processed += inserted
		if inserted > 0 {
			stats.FilesModified++
		}
	}
	return stats, nil
}

func applyFile(path string, fixes []Fix, opts Options) (inserted, skipped int, err error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, 0, fmt.Errorf("stat %s: %w", path, err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, 0, fmt.Errorf("read %s: %w", path, err)
	}
	content := string(data)

	newline := "\n"
	if strings.Contains(content, "\r\n") {
		newline = "\r\n"
	}
	trailing := strings.HasSuffix(content, newline)
	lines := strings.Split(strings.TrimSuffix(content, newline), newline)

	sort.SliceStable(fixes, func(i, j int) bool {
		if fixes[i].Context.Line != fixes[j].Context.Line {
			return fixes[i].Context.Line > fixes[j].Context.Line
		}
		return fixes[i].Kind > fixes[j].Kind
	})

	for _, f := range fixes {
		at := f.Context.Line - 1
		if at < 0 || at >= len(lines) {
			skipped++
			continue
		}
		target := lines[at]
		if f.Context.SourceLine != "" {
			target = f.Context.SourceLine
		}
		comment := indentOf(target) + f.Comment()
		if at > 0 && strings.TrimSpace(lines[at-1]) == strings.TrimSpace(comment) {
			skipped++
			continue
		}
		lines = append(lines[:at], append([]string{comment}, lines[at:]...)...)
		inserted++
	}

	if inserted == 0 || opts.DryRun {
		return inserted, skipped, nil
	}
	out := strings.Join(lines, newline)
	if trailing {
		out += newline
	}
	if err := os.WriteFile(path, []byte(out), info.Mode().Perm()); err != nil {
		return 0, skipped, fmt.Errorf("write %s: %w", path, err)
	}
	return inserted, skipped, nil
}

func indentOf(line string) string {
	return line[:len(line)-len(strings.TrimLeft(line, " \t"))]
}
