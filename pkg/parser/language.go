package parser

import (
	"path/filepath"
	"strings"
	"unsafe"

	ts "github.com/tree-sitter/go-tree-sitter"
	ts_javascript "github.com/tree-sitter/tree-sitter-javascript/bindings/go"
	ts_typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"
)

// Dialect selects the tree-sitter grammar used for a file.
type Dialect int

const (
	// DialectTypeScript is plain TypeScript (.ts, .mts, .cts).
	DialectTypeScript Dialect = iota
	// DialectTSX is TypeScript with JSX (.tsx).
	DialectTSX
	// DialectJavaScript covers .js/.jsx/.mjs/.cjs; the grammar parses JSX natively.
	DialectJavaScript
	// DialectUnknown marks unsupported files.
	DialectUnknown
)

// String returns the dialect name used in logs.
func (d Dialect) String() string {
	switch d {
	case DialectTypeScript:
		return "typescript"
	case DialectTSX:
		return "tsx"
	case DialectJavaScript:
		return "javascript"
	default:
		return "unknown"
	}
}

// DialectFor detects the dialect from a file extension.
func DialectFor(filePath string) Dialect {
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".ts", ".mts", ".cts":
		return DialectTypeScript
	case ".tsx":
		return DialectTSX
	case ".js", ".jsx", ".mjs", ".cjs":
		return DialectJavaScript
	default:
		return DialectUnknown
	}
}

// IsSupported reports whether filePath can be parsed.
func IsSupported(filePath string) bool {
	return DialectFor(filePath) != DialectUnknown
}

// SupportsJSX reports whether the dialect's grammar accepts JSX syntax.
func (d Dialect) SupportsJSX() bool {
	return d == DialectTSX || d == DialectJavaScript
}

// Language returns the tree-sitter language of the dialect, nil for
// DialectUnknown.
func (d Dialect) Language() *ts.Language {
	ptr, ok := d.grammar()
	if !ok {
		return nil
	}
	return ts.NewLanguage(ptr)
}

func (d Dialect) grammar() (unsafe.Pointer, bool) {
	switch d {
	case DialectTypeScript:
		return ts_typescript.LanguageTypescript(), true
	case DialectTSX:
		return ts_typescript.LanguageTSX(), true
	case DialectJavaScript:
		return ts_javascript.Language(), true
	default:
		return nil, false
	}
}
