// Package mcplog appends one JSON line per MCP tool call to a log file.
package mcplog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
)

// Entry is one logged tool call.
type Entry struct {
	Time          string         `json:"ts"`
	Tool          string         `json:"tool"`
	Args          map[string]any `json:"args"`
	DurationMs    int64          `json:"duration_ms"`
	ResponseBytes int            `json:"response_bytes"`
	// IsError is set for tool-level failures reported inside the result.
	IsError bool    `json:"is_error,omitempty"`
	Error   *string `json:"error"`
}

// NewEntry builds the entry for a finished call.
func NewEntry(tool string, args map[string]any, start time.Time, result *mcp.CallToolResult, err error) Entry {
	e := Entry{
		Time:          start.UTC().Format(time.RFC3339),
		Tool:          tool,
		Args:          SanitizeArgs(args),
		DurationMs:    time.Since(start).Milliseconds(),
		ResponseBytes: ResponseBytes(result),
		IsError:       result != nil && result.IsError,
	}
	if err != nil {
		msg := err.Error()
		e.Error = &msg
	}
	return e
}

// Logger appends entries to a file. Safe for concurrent use.
type Logger struct {
	mu  sync.Mutex
	f   *os.File
	enc *json.Encoder
}

// Open opens path for appending, creating parent directories. An empty
// path returns a nil Logger, which discards writes.
func Open(path string) (*Logger, error) {
	if path == "" {
		return nil, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("mcplog: create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("mcplog: open log file: %w", err)
	}
	return &Logger{f: f, enc: json.NewEncoder(f)}, nil
}

// Write appends e. Callers ignore the error so logging never changes a
// tool result.
func (l *Logger) Write(e Entry) error {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.enc.Encode(e)
}

// Close closes the log file.
func (l *Logger) Close() error {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.f.Close()
}

// maxArgString is the longest string argument logged verbatim.
const maxArgString = 128

// SanitizeArgs copies args, replacing long strings with a "<key>_len"
// entry holding their length.
func SanitizeArgs(args map[string]any) map[string]any {
	out := make(map[string]any, len(args))
	for k, v := range args {
		if s, ok := v.(string); ok && len(s) > maxArgString {
			out[k+"_len"] = len(s)
			continue
		}
		out[k] = v
	}
	return out
}

// ResponseBytes is the JSON size of a result's content, 0 for nil.
func ResponseBytes(result *mcp.CallToolResult) int {
	if result == nil {
		return 0
	}
	b, err := json.Marshal(result.Content)
	if err != nil {
		return 0
	}
	return len(b)
}
