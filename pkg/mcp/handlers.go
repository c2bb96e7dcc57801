package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/gnana997/glot/pkg/pipeline"
	"github.com/gnana997/glot/pkg/source"
)

const (
	defaultFindingLimit = 100
	defaultKeyLimit     = 500
)

type location struct {
	File string `json:"file"`
	Line int    `json:"line"`
	Col  int    `json:"col"`
}

type unresolvedItem struct {
	location
	Reason     string `json:"reason"`
	SourceLine string `json:"source_line,omitempty"`
	Hint       string `json:"hint,omitempty"`
	Pattern    string `json:"pattern,omitempty"`
}

type keyItem struct {
	Key    string     `json:"key"`
	Count  int        `json:"count"`
	Usages []location `json:"usages,omitempty"`
}

type hardcodedItem struct {
	location
	Text         string              `json:"text"`
	CommentStyle source.CommentStyle `json:"comment_style"`
}

type listResponse[T any] struct {
	Total     int  `json:"total"`
	Truncated bool `json:"truncated,omitempty"`
	Items     []T  `json:"items"`
}

func newList[T any](items []T, limit int) listResponse[T] {
	resp := listResponse[T]{Total: len(items), Items: items}
	if limit > 0 && len(items) > limit {
		resp.Items = items[:limit]
		resp.Truncated = true
	}
	if resp.Items == nil {
		resp.Items = []T{}
	}
	return resp
}

func (s *Server) handleScanOverview(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	res, err := s.scan(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("scan failed: %v", err)), nil
	}
	overview := struct {
		pipeline.Stats
		DistinctKeys     int                 `json:"distinct_keys"`
		PatternWarnings  int                 `json:"pattern_warnings"`
		UnresolvedNested map[string][]string `json:"unresolved_nested,omitempty"`
	}{
		Stats:            res.Stats,
		DistinctKeys:     len(res.KeySet()),
		PatternWarnings:  len(res.PatternWarnings()),
		UnresolvedNested: res.UnresolvedNested,
	}
	return jsonResult(overview)
}

func (s *Server) handleListUnresolved(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	res, err := s.scan(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("scan failed: %v", err)), nil
	}
	file := req.GetString("file", "")

	var items []unresolvedItem
	for _, u := range res.Unresolved() {
		if !s.fileMatches(u.Context.File, file) {
			continue
		}
		items = append(items, unresolvedItem{
			location:   s.location(u.Context.Location),
			Reason:     u.Reason.String(),
			SourceLine: strings.TrimSpace(u.Context.SourceLine),
			Hint:       u.Hint,
			Pattern:    u.Pattern,
		})
	}
	return jsonResult(newList(items, req.GetInt("limit", defaultFindingLimit)))
}

func (s *Server) handleListResolvedKeys(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	res, err := s.scan(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("scan failed: %v", err)), nil
	}
	prefix := req.GetString("prefix", "")
	withUsages := req.GetBool("include_usages", true)

	var items []keyItem
	for _, ku := range res.ResolvedKeys() {
		if !strings.HasPrefix(ku.Key, prefix) {
			continue
		}
		item := keyItem{Key: ku.Key, Count: len(ku.Usages)}
		if withUsages {
			for _, u := range ku.Usages {
				item.Usages = append(item.Usages, s.location(u.Context.Location))
			}
		}
		items = append(items, item)
	}
	return jsonResult(newList(items, req.GetInt("limit", defaultKeyLimit)))
}

func (s *Server) handleScanHardcoded(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	res, err := s.scan(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("scan failed: %v", err)), nil
	}
	file := req.GetString("file", "")

	var items []hardcodedItem
	for _, h := range res.Hardcoded() {
		if !s.fileMatches(h.Context.File, file) {
			continue
		}
		items = append(items, hardcodedItem{
			location:     s.location(h.Context.Location),
			Text:         h.Text,
			CommentStyle: h.Context.CommentStyle,
		})
	}
	return jsonResult(newList(items, req.GetInt("limit", defaultFindingLimit)))
}

func (s *Server) handleGetConfig(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := s.cfg
	return jsonResult(map[string]any{
		"source_root":        cfg.Root,
		"includes":           cfg.Includes,
		"ignores":            cfg.Ignores,
		"ignore_test_files":  cfg.IgnoreTestFiles,
		"messages_root":      cfg.MessagesRoot,
		"primary_locale":     cfg.PrimaryLocale,
		"checked_attributes": cfg.CheckedAttributes,
		"ignore_texts":       cfg.IgnoreTexts,
	})
}

// location reports paths relative to the source root.
func (s *Server) location(loc source.Location) location {
	return location{File: s.relative(loc.File), Line: loc.Line, Col: loc.Col}
}

func (s *Server) relative(path string) string {
	root, err := filepath.Abs(s.cfg.Root)
	if err != nil {
		return path
	}
	rel, err := filepath.Rel(root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}
	return filepath.ToSlash(rel)
}

// fileMatches accepts absolute paths and paths relative to the source root.
func (s *Server) fileMatches(path, want string) bool {
	if want == "" {
		return true
	}
	if filepath.IsAbs(want) {
		return filepath.Clean(want) == path
	}
	return s.relative(path) == filepath.ToSlash(filepath.Clean(want))
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(b)), nil
}
