package analyzer

import (
	"github.com/gnana997/glot/pkg/scope"
	"github.com/gnana997/glot/pkg/source"
	"github.com/gnana997/glot/pkg/valuesource"
)

// CallKind distinguishes `t(key)` from `t.raw(key)` and friends.
type CallKind int

const (
	CallDirect CallKind = iota
	CallMethod
)

func (k CallKind) String() string {
	if k == CallMethod {
		return "method"
	}
	return "direct"
}

// TranslationMethods are the translator methods that take a key.
var TranslationMethods = []string{"raw", "rich", "markup"}

// IteratorMethods are the array methods whose callback parameter is bound
// to the array's elements.
var IteratorMethods = []string{"map", "forEach", "filter", "find", "some", "every", "flatMap"}

// RawCall is a translation call as written, before key resolution.
type RawCall struct {
	Context  source.Context
	Source   scope.TranslationSource
	Argument valuesource.Source
	Kind     CallKind
	// Method is raw, rich or markup when Kind is CallMethod.
	Method string
}

// SchemaCall is a call to a registered schema function, e.g. loginSchema(t).
type SchemaCall struct {
	Name string
	// Namespace is "" when it cannot be determined at the call site.
	Namespace string
	Line      int
	Col       int
}

// HardcodedText is user-visible text that bypasses the translator.
type HardcodedText struct {
	Context source.Context `json:"context"`
	Text    string         `json:"text"`
}

// Result holds everything found in one file.
type Result struct {
	Path        string
	Calls       []RawCall
	SchemaCalls []SchemaCall
	Hardcoded   []HardcodedText
}

// DefaultCheckedAttributes are the JSX attributes inspected for hardcoded
// text.
var DefaultCheckedAttributes = []string{
	"placeholder",
	"title",
	"alt",
	"aria-label",
	"aria-description",
	"aria-placeholder",
	"aria-roledescription",
	"aria-valuetext",
}

// Options configures hardcoded-text detection.
type Options struct {
	// CheckedAttributes defaults to DefaultCheckedAttributes when nil.
	CheckedAttributes []string
	// IgnoreTexts are exact (trimmed) texts never reported.
	IgnoreTexts []string
}
