package comments

import (
	"math"
	"sort"

	"github.com/gnana997/glot/pkg/keyglob"
)

// maxCommentChain bounds how many stacked comment lines a directive may
// reach across.
const maxCommentChain = 10

// Comment is one source comment with delimiters removed.
type Comment struct {
	Text      string
	StartLine int
	EndLine   int
	// Standalone is true when nothing but whitespace (or the `{` of a JSX
	// comment) precedes the comment on its line.
	Standalone bool
}

// Range is an inclusive line range.
type Range struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Contains reports whether line lies in [Start, End].
func (r Range) Contains(line int) bool {
	return line >= r.Start && line <= r.End
}

// PatternWarning records a message-keys pattern that was rejected.
type PatternWarning struct {
	Line    int    `json:"line"`
	Pattern string `json:"pattern"`
}

// Suppressions holds the disabled lines and ranges per rule.
type Suppressions struct {
	lines  map[Rule]map[int]bool
	ranges map[Rule][]Range
}

// IsSuppressed reports whether rule is disabled at line.
func (s *Suppressions) IsSuppressed(line int, rule Rule) bool {
	if s == nil {
		return false
	}
	if s.lines[rule][line] {
		return true
	}
	for _, r := range s.ranges[rule] {
		if r.Contains(line) {
			return true
		}
	}
	return false
}

// RulesAt returns the rules disabled at line, in rule order.
func (s *Suppressions) RulesAt(line int) []Rule {
	var rules []Rule
	for _, r := range AllRules {
		if s.IsSuppressed(line, r) {
			rules = append(rules, r)
		}
	}
	return rules
}

// Ranges returns the disabled ranges for rule.
func (s *Suppressions) Ranges(rule Rule) []Range {
	return s.ranges[rule]
}

func (s *Suppressions) addLine(rule Rule, line int) {
	if s.lines[rule] == nil {
		s.lines[rule] = map[int]bool{}
	}
	s.lines[rule][line] = true
}

// KeyDeclaration is the set of patterns a glot-message-keys comment asserts.
type KeyDeclaration struct {
	Absolute []string `json:"absolute,omitempty"`
	// Relative patterns keep their leading `.`.
	Relative []string `json:"relative,omitempty"`
}

// Expand resolves the declaration for a call site. Absolute globs expand
// against keys; relative patterns are prefixed with each namespace first.
// A pattern that is not a glob, or a glob that matches nothing, is kept
// verbatim so a missing-key check can still report it.
func (d KeyDeclaration) Expand(namespaces []string, keys map[string]struct{}) []string {
	var out []string
	for _, p := range d.Absolute {
		out = append(out, expandOne(p, keys)...)
	}
	for _, p := range d.Relative {
		rest := p[1:]
		for _, ns := range namespaces {
			full := rest
			if ns != "" {
				full = ns + "." + rest
			}
			out = append(out, expandOne(full, keys)...)
		}
	}
	return out
}

func expandOne(pattern string, keys map[string]struct{}) []string {
	if !keyglob.IsGlob(pattern) {
		return []string{pattern}
	}
	if matched := keyglob.Expand(pattern, keys); len(matched) > 0 {
		return matched
	}
	return []string{pattern}
}

// Declarations maps the line a declaration ends on to the declaration.
type Declarations struct {
	entries      map[int]KeyDeclaration
	commentLines map[int]bool
}

// Lookup finds the declaration for a call on line. The call's own line wins,
// then the line above; past that the search continues upward only through
// an unbroken run of comment lines.
func (d *Declarations) Lookup(line int) (KeyDeclaration, bool) {
	if d == nil {
		return KeyDeclaration{}, false
	}
	if decl, ok := d.entries[line]; ok {
		return decl, true
	}
	for i, l := 0, line-1; i < maxCommentChain && l >= 1; i, l = i+1, l-1 {
		if decl, ok := d.entries[l]; ok {
			return decl, true
		}
		if !d.commentLines[l] {
			break
		}
	}
	return KeyDeclaration{}, false
}

// Len returns the number of declarations.
func (d *Declarations) Len() int {
	return len(d.entries)
}

// FileComments is everything the directive store knows about one file.
type FileComments struct {
	Suppressions *Suppressions
	Declarations *Declarations
	Warnings     []PatternWarning
}

// Collect builds the directive store from a file's comments.
func Collect(comments []Comment) *FileComments {
	sorted := append([]Comment(nil), comments...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].StartLine < sorted[j].StartLine })

	fc := &FileComments{
		Suppressions: &Suppressions{lines: map[Rule]map[int]bool{}, ranges: map[Rule][]Range{}},
		Declarations: &Declarations{entries: map[int]KeyDeclaration{}, commentLines: map[int]bool{}},
	}
	for _, c := range sorted {
		if !c.Standalone {
			continue
		}
		for l := c.StartLine; l <= c.EndLine; l++ {
			fc.Declarations.commentLines[l] = true
		}
	}

	open := map[Rule]int{}
	for _, c := range sorted {
		d, ok := ParseDirective(c.Text)
		for _, p := range d.Rejected {
			fc.Warnings = append(fc.Warnings, PatternWarning{Line: c.EndLine, Pattern: p})
		}
		if !ok {
			continue
		}

		switch d.Kind {
		case Disable:
			for _, r := range d.Rules {
				if _, already := open[r]; !already {
					open[r] = c.StartLine
				}
			}
		case Enable:
			for _, r := range d.Rules {
				if start, ok := open[r]; ok {
					fc.Suppressions.ranges[r] = append(fc.Suppressions.ranges[r], Range{Start: start, End: c.StartLine - 1})
					delete(open, r)
				}
			}
		case DisableNextLine:
			target := nextCodeLine(c.EndLine, fc.Declarations.commentLines)
			for _, r := range d.Rules {
				fc.Suppressions.addLine(r, target)
			}
		case MessageKeys:
			fc.Declarations.entries[c.EndLine] = d.Declaration
		}
	}

	for _, r := range AllRules {
		if start, ok := open[r]; ok {
			fc.Suppressions.ranges[r] = append(fc.Suppressions.ranges[r], Range{Start: start, End: math.MaxInt})
		}
	}
	return fc
}

// nextCodeLine skips stacked comment lines below a disable-next-line.
func nextCodeLine(line int, commentLines map[int]bool) int {
	next := line + 1
	for i := 0; i < maxCommentChain && commentLines[next]; i++ {
		next++
	}
	return next
}
