package parser

import (
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestParseTypeScript(t *testing.T) {
	manager := NewParserManager(testLogger())
	defer manager.Close()

	tree, err := manager.Parse([]byte(`const t = useTranslations("Common") as any;`), DialectTypeScript)
	require.NoError(t, err)
	defer tree.Close()

	root := tree.RootNode()
	assert.Equal(t, "program", root.Kind())
	assert.False(t, root.HasError())
}

func TestParseTSX(t *testing.T) {
	manager := NewParserManager(testLogger())
	defer manager.Close()

	src := []byte(`export function Title() { return <h1>{t("title")}</h1>; }`)
	tree, err := manager.Parse(src, DialectTSX)
	require.NoError(t, err)
	defer tree.Close()

	assert.Contains(t, tree.RootNode().ToSexp(), "jsx_element")
}

func TestParseJavaScriptWithJSX(t *testing.T) {
	manager := NewParserManager(testLogger())
	defer manager.Close()

	tree, err := manager.Parse([]byte(`const el = <div title="x" />;`), DialectJavaScript)
	require.NoError(t, err)
	defer tree.Close()

	assert.Contains(t, tree.RootNode().ToSexp(), "jsx_self_closing_element")
}

func TestParseFile(t *testing.T) {
	manager := NewParserManager(testLogger())
	defer manager.Close()

	testCases := []struct {
		path    string
		wantErr bool
	}{
		{"app/page.tsx", false},
		{"lib/keys.ts", false},
		{"legacy/index.jsx", false},
		{"legacy/server.mjs", false},
		{"styles/site.css", true},
	}

	for _, tc := range testCases {
		t.Run(tc.path, func(t *testing.T) {
			tree, err := manager.ParseFile([]byte(`const a = 1;`), tc.path)
			if tc.wantErr {
				require.ErrorIs(t, err, ErrUnsupportedFile)
				return
			}
			require.NoError(t, err)
			tree.Close()
		})
	}
}

func TestParseUnknownDialect(t *testing.T) {
	manager := NewParserManager(testLogger())
	defer manager.Close()

	_, err := manager.Parse([]byte(`x`), DialectUnknown)
	assert.Error(t, err)
}

func TestParseKeepsPartialTree(t *testing.T) {
	manager := NewParserManager(testLogger())
	defer manager.Close()

	tree, err := manager.Parse([]byte(`const t = useTranslations("a"; t("k");`), DialectTypeScript)
	require.NoError(t, err)
	defer tree.Close()

	assert.True(t, tree.RootNode().HasError())
}

func TestDialectFor(t *testing.T) {
	assert.Equal(t, DialectTSX, DialectFor("a/B.TSX"))
	assert.Equal(t, DialectTypeScript, DialectFor("a/b.cts"))
	assert.Equal(t, DialectJavaScript, DialectFor("a/b.jsx"))
	assert.Equal(t, DialectUnknown, DialectFor("a/b.json"))
	assert.True(t, DialectTSX.SupportsJSX())
	assert.False(t, DialectTypeScript.SupportsJSX())
	assert.True(t, IsSupported("x.js"))
}
