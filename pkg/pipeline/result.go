package pipeline

import (
	"sort"

	"github.com/gnana997/glot/pkg/analyzer"
	"github.com/gnana997/glot/pkg/comments"
	"github.com/gnana997/glot/pkg/registry"
	"github.com/gnana997/glot/pkg/resolver"
	"github.com/gnana997/glot/pkg/source"
)

// Stats summarizes a run.
type Stats struct {
	FilesDiscovered  int            `json:"files_discovered"`
	FilesParsed      int            `json:"files_parsed"`
	ParseFailures    int            `json:"parse_failures"`
	Workers          int            `json:"workers"`
	LocaleKeys       int            `json:"locale_keys"`
	Registries       map[string]int `json:"registries,omitempty"`
	Calls            int            `json:"calls"`
	SchemaCalls      int            `json:"schema_calls"`
	ResolvedUsages   int            `json:"resolved_usages"`
	UnresolvedUsages int            `json:"unresolved_usages"`
	HardcodedTexts   int            `json:"hardcoded_texts"`

	DiscoveryTimeMs int64 `json:"discovery_time_ms"`
	CollectTimeMs   int64 `json:"collect_time_ms"`
	ResolveTimeMs   int64 `json:"resolve_time_ms"`
	TotalTimeMs     int64 `json:"total_time_ms"`
}

// FileReport is everything a run found in one file.
type FileReport struct {
	Path            string                        `json:"path"`
	ParseFailed     bool                          `json:"parse_failed,omitempty"`
	Calls           int                           `json:"calls"`
	SchemaCalls     int                           `json:"schema_calls"`
	Resolved        []resolver.ResolvedKeyUsage   `json:"resolved,omitempty"`
	Unresolved      []resolver.UnresolvedKeyUsage `json:"unresolved,omitempty"`
	Hardcoded       []analyzer.HardcodedText      `json:"hardcoded,omitempty"`
	PatternWarnings []comments.PatternWarning     `json:"pattern_warnings,omitempty"`
}

// Result is the output of a run. Root is absolute and Files are sorted by
// path.
type Result struct {
	Root       string               `json:"root"`
	Files      []FileReport         `json:"files"`
	Registries *registry.Registries `json:"-"`
	// UnresolvedNested lists, per schema, nested calls that name no schema.
	UnresolvedNested map[string][]string `json:"unresolved_nested,omitempty"`
	Stats            Stats               `json:"stats"`
}

// KeyUsages is one key with every place it is used.
type KeyUsages struct {
	Key    string                      `json:"key"`
	Usages []resolver.ResolvedKeyUsage `json:"usages"`
}

// ResolvedKeys groups resolved usages by key, sorted by key. Usages keep
// file order.
func (r *Result) ResolvedKeys() []KeyUsages {
	byKey := map[string][]resolver.ResolvedKeyUsage{}
	for _, f := range r.Files {
		for _, u := range f.Resolved {
			byKey[u.Key] = append(byKey[u.Key], u)
		}
	}
	out := make([]KeyUsages, 0, len(byKey))
	for k, usages := range byKey {
		out = append(out, KeyUsages{Key: k, Usages: usages})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// KeySet returns the distinct resolved keys.
func (r *Result) KeySet() map[string]struct{} {
	out := map[string]struct{}{}
	for _, f := range r.Files {
		for _, u := range f.Resolved {
			out[u.Key] = struct{}{}
		}
	}
	return out
}

// Unresolved returns every unresolved usage in file order.
func (r *Result) Unresolved() []resolver.UnresolvedKeyUsage {
	var out []resolver.UnresolvedKeyUsage
	for _, f := range r.Files {
		out = append(out, f.Unresolved...)
	}
	return out
}

// Hardcoded returns every hardcoded text finding in file order.
func (r *Result) Hardcoded() []analyzer.HardcodedText {
	var out []analyzer.HardcodedText
	for _, f := range r.Files {
		out = append(out, f.Hardcoded...)
	}
	return out
}

// PatternWarning is a rejected message-keys pattern with its file.
type PatternWarning struct {
	source.Location
	Pattern string `json:"pattern"`
}

// PatternWarnings returns the rejected declaration patterns of every file.
func (r *Result) PatternWarnings() []PatternWarning {
	var out []PatternWarning
	for _, f := range r.Files {
		for _, w := range f.PatternWarnings {
			out = append(out, PatternWarning{
				Location: source.Location{File: f.Path, Line: w.Line},
				Pattern:  w.Pattern,
			})
		}
	}
	return out
}
