package mcp

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnana997/glot/pkg/mcplog"
	"github.com/gnana997/glot/pkg/pipeline"
	"github.com/gnana997/glot/pkg/util"
)

// --- helpers ---

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, filepath.FromSlash(name))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func testServer(t *testing.T, logger *mcplog.Logger) *Server {
	t.Helper()
	root := t.TempDir()
	writeFile(t, root, "src/app/page.tsx", `
export default function Page({ id }) {
  const t = useTranslations("Home");
  t(`+"`other.${id}`"+`);
  return (
    <p>
      {t("title")}
      Welcome
    </p>
  );
}
`)
	writeFile(t, root, "src/app/nav.tsx", `
export function Nav({ key }) {
  const t = useTranslations("Nav");
  t(key);
  return <nav title="Main menu">{t("home")}</nav>;
}
`)
	writeFile(t, root, "messages/en.json", `{"Home": {"title": "Home"}, "Nav": {"home": "Home"}}`)

	cfg := pipeline.DefaultConfig(filepath.Join(root, "src"))
	cfg.MessagesRoot = filepath.Join(root, "messages")
	cfg.Workers = 2

	runner := pipeline.NewRunner(util.NopLogger())
	t.Cleanup(func() { runner.Close() })
	return NewServer(cfg, runner, logger)
}

func handlerFor(t *testing.T, s *Server, name string) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	t.Helper()
	switch name {
	case "scan_overview":
		return s.handleScanOverview
	case "list_unresolved":
		return s.handleListUnresolved
	case "list_resolved_keys":
		return s.handleListResolvedKeys
	case "scan_hardcoded":
		return s.handleScanHardcoded
	case "get_config":
		return s.handleGetConfig
	}
	t.Fatalf("unknown tool: %s", name)
	return nil
}

func callTool(t *testing.T, s *Server, req mcp.CallToolRequest) *mcp.CallToolResult {
	t.Helper()
	result, err := handlerFor(t, s, req.Params.Name)(context.Background(), req)
	require.NoError(t, err)
	require.NotNil(t, result)
	return result
}

func makeRequest(toolName string, args map[string]any) mcp.CallToolRequest {
	var arguments any
	if args != nil {
		arguments = args
	}
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      toolName,
			Arguments: arguments,
		},
	}
}

func resultJSON(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, result.Content)
	textContent, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected TextContent, got %T", result.Content[0])
	return textContent.Text
}

type list struct {
	Total     int              `json:"total"`
	Truncated bool             `json:"truncated"`
	Items     []map[string]any `json:"items"`
}

func decodeList(t *testing.T, result *mcp.CallToolResult) list {
	t.Helper()
	assert.False(t, result.IsError, resultJSON(t, result))
	var l list
	require.NoError(t, json.Unmarshal([]byte(resultJSON(t, result)), &l))
	return l
}

// --- scan_overview ---

func TestHandleScanOverview(t *testing.T) {
	s := testServer(t, nil)
	result := callTool(t, s, makeRequest("scan_overview", nil))
	assert.False(t, result.IsError)

	var overview map[string]any
	require.NoError(t, json.Unmarshal([]byte(resultJSON(t, result)), &overview))
	assert.Equal(t, float64(2), overview["files_discovered"])
	assert.Equal(t, float64(2), overview["distinct_keys"])
	assert.Equal(t, float64(2), overview["unresolved_usages"])
}

// --- list_unresolved ---

func TestHandleListUnresolved(t *testing.T) {
	s := testServer(t, nil)
	l := decodeList(t, callTool(t, s, makeRequest("list_unresolved", nil)))
	require.Equal(t, 2, l.Total)

	byFile := map[string]map[string]any{}
	for _, item := range l.Items {
		byFile[item["file"].(string)] = item
	}
	page := byFile["app/page.tsx"]
	require.NotNil(t, page)
	assert.Equal(t, "template_with_expr", page["reason"])
	assert.Equal(t, "Home.other.*", page["pattern"])
	assert.Equal(t, float64(4), page["line"])

	nav := byFile["app/nav.tsx"]
	require.NotNil(t, nav)
	assert.Equal(t, "variable_key", nav["reason"])
	assert.NotContains(t, nav, "pattern")
}

func TestHandleListUnresolved_FileAndLimit(t *testing.T) {
	s := testServer(t, nil)
	l := decodeList(t, callTool(t, s, makeRequest("list_unresolved", map[string]any{"file": "app/nav.tsx"})))
	require.Equal(t, 1, l.Total)
	assert.Equal(t, "app/nav.tsx", l.Items[0]["file"])

	abs := filepath.Join(s.cfg.Root, "app", "page.tsx")
	l = decodeList(t, callTool(t, s, makeRequest("list_unresolved", map[string]any{"file": abs})))
	assert.Equal(t, 1, l.Total)

	l = decodeList(t, callTool(t, s, makeRequest("list_unresolved", map[string]any{"limit": 1.0})))
	assert.Equal(t, 2, l.Total)
	assert.True(t, l.Truncated)
	assert.Len(t, l.Items, 1)
}

// --- list_resolved_keys ---

func TestHandleListResolvedKeys(t *testing.T) {
	s := testServer(t, nil)
	l := decodeList(t, callTool(t, s, makeRequest("list_resolved_keys", nil)))
	require.Equal(t, 2, l.Total)
	assert.Equal(t, "Home.title", l.Items[0]["key"])
	assert.Equal(t, "Nav.home", l.Items[1]["key"])
	assert.Len(t, l.Items[0]["usages"], 1)
}

func TestHandleListResolvedKeys_PrefixWithoutUsages(t *testing.T) {
	s := testServer(t, nil)
	l := decodeList(t, callTool(t, s, makeRequest("list_resolved_keys", map[string]any{
		"prefix":         "Nav.",
		"include_usages": false,
	})))
	require.Equal(t, 1, l.Total)
	assert.Equal(t, "Nav.home", l.Items[0]["key"])
	assert.Equal(t, float64(1), l.Items[0]["count"])
	assert.NotContains(t, l.Items[0], "usages")
}

// --- scan_hardcoded ---

func TestHandleScanHardcoded(t *testing.T) {
	s := testServer(t, nil)
	l := decodeList(t, callTool(t, s, makeRequest("scan_hardcoded", nil)))
	require.Equal(t, 2, l.Total)

	texts := map[string]string{}
	for _, item := range l.Items {
		texts[item["text"].(string)] = item["file"].(string)
	}
	assert.Equal(t, "app/page.tsx", texts["Welcome"])
	assert.Equal(t, "app/nav.tsx", texts["Main menu"])

	l = decodeList(t, callTool(t, s, makeRequest("scan_hardcoded", map[string]any{"file": "app/page.tsx"})))
	require.Equal(t, 1, l.Total)
	assert.Equal(t, "jsx", l.Items[0]["comment_style"], "text on its own child line")
	assert.Equal(t, float64(8), l.Items[0]["line"])

	l = decodeList(t, callTool(t, s, makeRequest("scan_hardcoded", map[string]any{"file": "app/nav.tsx"})))
	require.Equal(t, 1, l.Total)
	assert.Equal(t, "js", l.Items[0]["comment_style"], "attribute text")
}

// --- get_config ---

func TestHandleGetConfig(t *testing.T) {
	s := testServer(t, nil)
	result := callTool(t, s, makeRequest("get_config", nil))

	var cfg map[string]any
	require.NoError(t, json.Unmarshal([]byte(resultJSON(t, result)), &cfg))
	assert.Equal(t, s.cfg.Root, cfg["source_root"])
	assert.Equal(t, "en", cfg["primary_locale"])
	assert.NotEmpty(t, cfg["includes"])
}

// --- errors ---

func TestHandlers_ScanFailureIsToolError(t *testing.T) {
	s := testServer(t, nil)
	s.cfg.PrimaryLocale = "zz"
	result := callTool(t, s, makeRequest("scan_overview", nil))
	assert.True(t, result.IsError)
	assert.Contains(t, resultJSON(t, result), "scan failed")
}

// --- middleware ---

func TestLoggingMiddleware(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mcp.jsonl")
	logger, err := mcplog.Open(path)
	require.NoError(t, err)

	s := testServer(t, logger)
	handler := s.loggingMiddleware()(s.handleListUnresolved)
	_, err = handler(context.Background(), makeRequest("list_unresolved", map[string]any{"file": "app/nav.tsx"}))
	require.NoError(t, err)
	require.NoError(t, logger.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 1)

	var entry mcplog.Entry
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "list_unresolved", entry.Tool)
	assert.Equal(t, "app/nav.tsx", entry.Args["file"])
	assert.Positive(t, entry.ResponseBytes)
	assert.Nil(t, entry.Error)
}
