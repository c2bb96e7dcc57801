// Package keyglob matches dotted message keys against `*` patterns.
//
// A `*` matches within a single dot-separated segment and never crosses a
// dot: `errors.*` matches `errors.E001` but not `errors.network.timeout`.
// Segments may mix literal text and wildcards (`btn*Label`).
package keyglob

import (
	"sort"
	"strings"
)

// IsGlob reports whether pattern contains a wildcard.
func IsGlob(pattern string) bool {
	return strings.Contains(pattern, "*")
}

// Match reports whether key matches pattern. Matching is case-sensitive and
// requires the same number of segments.
func Match(pattern, key string) bool {
	ps := strings.Split(pattern, ".")
	ks := strings.Split(key, ".")
	if len(ps) != len(ks) {
		return false
	}
	for i := range ps {
		if !matchSegment(ps[i], ks[i]) {
			return false
		}
	}
	return true
}

// Expand returns the keys matching pattern in sorted order. A pattern
// without wildcards yields itself only when present in keys.
func Expand(pattern string, keys map[string]struct{}) []string {
	if !IsGlob(pattern) {
		if _, ok := keys[pattern]; ok {
			return []string{pattern}
		}
		return nil
	}

	var out []string
	for key := range keys {
		if Match(pattern, key) {
			out = append(out, key)
		}
	}
	sort.Strings(out)
	return out
}

func matchSegment(pattern, text string) bool {
	if pattern == "*" {
		return true
	}
	if !strings.Contains(pattern, "*") {
		return pattern == text
	}

	parts := strings.Split(pattern, "*")
	first, last := parts[0], parts[len(parts)-1]
	if !strings.HasPrefix(text, first) {
		return false
	}
	pos := len(first)
	end := len(text)
	if last != "" {
		if !strings.HasSuffix(text, last) || pos+len(last) > len(text) {
			return false
		}
		end = len(text) - len(last)
	}

	for _, part := range parts[1 : len(parts)-1] {
		if part == "" {
			continue
		}
		idx := strings.Index(text[pos:end], part)
		if idx < 0 {
			return false
		}
		pos += idx + len(part)
	}
	return true
}
