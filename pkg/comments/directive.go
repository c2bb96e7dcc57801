// Package comments parses glot directive comments into suppressions and key
// declarations indexed by line.
package comments

import (
	"regexp"
	"sort"
	"strings"
)

// Rule is a diagnostic rule that directives can suppress.
type Rule int

const (
	Hardcoded Rule = iota
	Untranslated
)

// AllRules lists every suppressible rule.
var AllRules = []Rule{Hardcoded, Untranslated}

func (r Rule) String() string {
	switch r {
	case Hardcoded:
		return "hardcoded"
	case Untranslated:
		return "untranslated"
	}
	return "unknown"
}

// MarshalText encodes the rule by name.
func (r Rule) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// ParseRule parses a rule name, case-insensitively.
func ParseRule(s string) (Rule, bool) {
	switch strings.ToLower(s) {
	case "hardcoded":
		return Hardcoded, true
	case "untranslated":
		return Untranslated, true
	}
	return 0, false
}

// DirectiveKind identifies a glot directive.
type DirectiveKind int

const (
	Disable DirectiveKind = iota
	Enable
	DisableNextLine
	MessageKeys
)

const (
	prefixDisableNextLine = "glot-disable-next-line"
	prefixDisable         = "glot-disable"
	prefixEnable          = "glot-enable"
	prefixMessageKeys     = "glot-message-keys"
)

// Directive is one parsed directive comment.
type Directive struct {
	Kind        DirectiveKind
	Rules       []Rule
	Declaration KeyDeclaration
	// Rejected holds message-keys patterns that failed validation.
	Rejected []string
}

var quotedPattern = regexp.MustCompile(`"([^"]+)"`)

// ParseDirective parses comment text with its delimiters already stripped.
// A message-keys directive without a single valid pattern is not a directive.
func ParseDirective(text string) (Directive, bool) {
	text = strings.TrimSpace(text)

	if rest, ok := stripPrefix(text, prefixDisableNextLine); ok {
		return Directive{Kind: DisableNextLine, Rules: parseRules(rest)}, true
	}
	if rest, ok := stripPrefix(text, prefixDisable); ok {
		return Directive{Kind: Disable, Rules: parseRules(rest)}, true
	}
	if rest, ok := stripPrefix(text, prefixEnable); ok {
		return Directive{Kind: Enable, Rules: parseRules(rest)}, true
	}
	if rest, ok := stripPrefix(text, prefixMessageKeys); ok {
		return parseMessageKeys(rest)
	}
	return Directive{}, false
}

// stripPrefix requires whitespace or end of text after the prefix.
func stripPrefix(text, prefix string) (string, bool) {
	rest, ok := strings.CutPrefix(text, prefix)
	if !ok {
		return "", false
	}
	if rest != "" && rest[0] != ' ' && rest[0] != '\t' && rest[0] != '\n' && rest[0] != '\r' {
		return "", false
	}
	return rest, true
}

// parseRules: no names means every rule, unknown names are dropped, and
// a list with no known names fails open to every rule.
func parseRules(rest string) []Rule {
	seen := map[Rule]bool{}
	for _, tok := range strings.Fields(rest) {
		if r, ok := ParseRule(tok); ok {
			seen[r] = true
		}
	}
	if len(seen) == 0 {
		return append([]Rule(nil), AllRules...)
	}
	rules := make([]Rule, 0, len(seen))
	for r := range seen {
		rules = append(rules, r)
	}
	sort.Slice(rules, func(i, j int) bool { return rules[i] < rules[j] })
	return rules
}

func parseMessageKeys(rest string) (Directive, bool) {
	d := Directive{Kind: MessageKeys}
	for _, m := range quotedPattern.FindAllStringSubmatch(rest, -1) {
		p := m[1]
		if !ValidPattern(p) {
			d.Rejected = append(d.Rejected, p)
			continue
		}
		if strings.HasPrefix(p, ".") {
			d.Declaration.Relative = append(d.Declaration.Relative, p)
		} else {
			d.Declaration.Absolute = append(d.Declaration.Absolute, p)
		}
	}
	if len(d.Declaration.Absolute) == 0 && len(d.Declaration.Relative) == 0 {
		return d, false
	}
	return d, true
}

// ValidPattern checks a declaration pattern. A leading `.` (relative) is
// ignored. Empty segments, a bare `*` first segment followed by more
// segments, and an all-`*` pattern are rejected.
func ValidPattern(pattern string) bool {
	p := strings.TrimPrefix(pattern, ".")
	segments := strings.Split(p, ".")
	if segments[0] == "*" && len(segments) > 1 {
		return false
	}
	allWild := true
	for _, s := range segments {
		if s == "" {
			return false
		}
		if s != "*" {
			allWild = false
		}
	}
	return !allWild
}
