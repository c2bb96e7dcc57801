// Package pipeline runs key resolution over a source tree: discovery,
// parallel registry collection, the merge barrier, schema warm-up, and
// parallel analysis and resolution.
package pipeline

// Config controls a pipeline run.
type Config struct {
	// Root is the source directory to scan.
	Root string
	// Includes are doublestar globs relative to Root. Empty matches every
	// supported source file.
	Includes []string
	// Ignores are doublestar globs relative to Root. A matching directory
	// is not descended into.
	Ignores []string
	// IgnoreTestFiles adds TestFileIgnores to Ignores.
	IgnoreTestFiles bool

	// MessagesRoot and PrimaryLocale locate the key set used to expand
	// message-keys globs. An empty MessagesRoot expands nothing.
	MessagesRoot  string
	PrimaryLocale string

	// CheckedAttributes overrides the JSX attributes inspected for
	// hardcoded text. Nil keeps the analyzer defaults.
	CheckedAttributes []string
	// IgnoreTexts are exact texts never reported as hardcoded.
	IgnoreTexts []string

	// Workers caps the worker pool. 0 uses util.GetOptimalPoolSize.
	Workers int
}

// DefaultIncludes matches every file the parser supports.
var DefaultIncludes = []string{"**/*.{ts,tsx,js,jsx,mts,cts,mjs,cjs}"}

// DefaultIgnores skips dependency, build and tool directories.
var DefaultIgnores = []string{
	"node_modules/**",
	"**/node_modules/**",
	".git/**",
	"dist/**",
	"build/**",
	".next/**",
	"coverage/**",
	"out/**",
	".glot/**",
	"**/*.d.ts",
}

// TestFileIgnores skip tests, stories and mocks.
var TestFileIgnores = []string{
	"**/*.test.*",
	"**/*.spec.*",
	"**/*.stories.*",
	"**/__tests__/**",
	"**/__mocks__/**",
}

// DefaultConfig scans root with the default globs and the "en" locale.
func DefaultConfig(root string) Config {
	return Config{
		Root:          root,
		Includes:      append([]string(nil), DefaultIncludes...),
		Ignores:       append([]string(nil), DefaultIgnores...),
		PrimaryLocale: "en",
	}
}

func (c Config) ignores() []string {
	if !c.IgnoreTestFiles {
		return c.Ignores
	}
	out := append([]string(nil), c.Ignores...)
	return append(out, TestFileIgnores...)
}
