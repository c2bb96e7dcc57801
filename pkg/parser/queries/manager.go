// Package queries compiles, caches and runs tree-sitter queries per dialect.
package queries

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	ts "github.com/tree-sitter/go-tree-sitter"

	"github.com/gnana997/glot/pkg/parser"
)

// QueryType identifies a query.
type QueryType int

const (
	// QueryComments captures every comment node, JSX `{/* */}` bodies
	// included, as comment.node.
	QueryComments QueryType = iota
)

// String returns the string representation of a QueryType.
func (qt QueryType) String() string {
	switch qt {
	case QueryComments:
		return "comments"
	default:
		return "unknown"
	}
}

// All supported grammars name comment nodes "comment".
const commentsQuery = `(comment) @comment.node`

// queryKey uniquely identifies a compiled query (dialect + type).
type queryKey struct {
	dialect parser.Dialect
	qtype   QueryType
}

// QueryManager compiles queries lazily and caches them per dialect.
// Safe for concurrent use; a compiled query is shared by every cursor.
//
//	qm := queries.NewQueryManager(logger)
//	defer qm.Close()
//
//	matches, err := qm.Run(tree, parser.DialectTSX, queries.QueryComments, src)
type QueryManager struct {
	cache  map[queryKey]*ts.Query
	mutex  sync.RWMutex
	logger *slog.Logger
}

// NewQueryManager creates a new query manager. Logger can be nil.
func NewQueryManager(logger *slog.Logger) *QueryManager {
	if logger == nil {
		logger = slog.Default()
	}
	return &QueryManager{
		cache:  make(map[queryKey]*ts.Query),
		logger: logger,
	}
}

// GetQuery returns the compiled query for dialect and type, compiling it on
// first use.
func (qm *QueryManager) GetQuery(dialect parser.Dialect, qtype QueryType) (*ts.Query, error) {
	key := queryKey{dialect: dialect, qtype: qtype}

	qm.mutex.RLock()
	query, exists := qm.cache[key]
	qm.mutex.RUnlock()
	if exists {
		return query, nil
	}

	qm.mutex.Lock()
	defer qm.mutex.Unlock()

	// Another goroutine may have compiled it.
	if query, exists = qm.cache[key]; exists {
		return query, nil
	}

	queryString, err := queryString(qtype)
	if err != nil {
		return nil, err
	}
	lang := dialect.Language()
	if lang == nil {
		return nil, fmt.Errorf("no grammar for dialect %s", dialect)
	}

	query, qerr := ts.NewQuery(lang, queryString)
	if qerr != nil {
		return nil, fmt.Errorf("failed to compile %s query for %s: %s", qtype, dialect, qerr.Message)
	}
	qm.cache[key] = query

	qm.logger.Debug("compiled query", "dialect", dialect.String(), "type", qtype.String())
	return query, nil
}

func queryString(qtype QueryType) (string, error) {
	switch qtype {
	case QueryComments:
		return commentsQuery, nil
	default:
		return "", fmt.Errorf("unknown query type: %d", qtype)
	}
}

// Run compiles (or reuses) the query and executes it on tree.
func (qm *QueryManager) Run(tree *ts.Tree, dialect parser.Dialect, qtype QueryType, source []byte) ([]QueryMatch, error) {
	query, err := qm.GetQuery(dialect, qtype)
	if err != nil {
		return nil, err
	}
	return qm.ExecuteQuery(tree, query, source)
}

// ExecuteQuery runs a compiled query on a parse tree. Matches come back in
// document order.
func (qm *QueryManager) ExecuteQuery(tree *ts.Tree, query *ts.Query, source []byte) ([]QueryMatch, error) {
	if tree == nil {
		return nil, fmt.Errorf("tree is nil")
	}
	if query == nil {
		return nil, fmt.Errorf("query is nil")
	}

	cursor := ts.NewQueryCursor()
	defer cursor.Close()

	iter := cursor.Matches(query, tree.RootNode(), source)
	captureNames := query.CaptureNames()

	var matches []QueryMatch
	for {
		match := iter.Next()
		if match == nil {
			break
		}

		captures := make([]QueryCapture, 0, len(match.Captures))
		for _, capture := range match.Captures {
			var name string
			if int(capture.Index) < len(captureNames) {
				name = captureNames[capture.Index]
			}
			category, field := parseCaptureName(name)
			node := capture.Node
			captures = append(captures, QueryCapture{
				Name:     name,
				Category: category,
				Field:    field,
				Node:     &node,
				Text:     node.Utf8Text(source),
			})
		}

		matches = append(matches, QueryMatch{
			PatternIndex: uint32(match.PatternIndex),
			Captures:     captures,
		})
	}
	return matches, nil
}

// Nodes returns the nodes captured under name across all matches.
func Nodes(matches []QueryMatch, name string) []*ts.Node {
	var out []*ts.Node
	for _, m := range matches {
		for _, c := range m.Captures {
			if c.Name == name {
				out = append(out, c.Node)
			}
		}
	}
	return out
}

// Close releases all compiled queries. The manager must not be used
// afterwards.
func (qm *QueryManager) Close() error {
	qm.mutex.Lock()
	defer qm.mutex.Unlock()

	qm.logger.Debug("closing QueryManager", "queries_compiled", len(qm.cache))
	for key, query := range qm.cache {
		if query != nil {
			query.Close()
		}
		delete(qm.cache, key)
	}
	return nil
}

// QueryMatch is a single pattern match.
type QueryMatch struct {
	PatternIndex uint32
	Captures     []QueryCapture
}

// QueryCapture is a single captured node.
type QueryCapture struct {
	// Name is the full capture name, e.g. "comment.node".
	Name string
	// Category and Field split Name at the first dot; Field is empty when
	// Name has none.
	Category string
	Field    string

	Node *ts.Node
	Text string
}

func parseCaptureName(name string) (category, field string) {
	category, field, _ = strings.Cut(name, ".")
	return category, field
}
