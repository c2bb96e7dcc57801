// Package parser wraps tree-sitter with pooled, per-dialect parsers.
package parser

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	ts "github.com/tree-sitter/go-tree-sitter"

	"github.com/gnana997/glot/pkg/util"
)

// ErrUnsupportedFile is returned by ParseFile for extensions outside TS/JS.
var ErrUnsupportedFile = errors.New("unsupported file extension")

// ParserManager hands out tree-sitter parsers from lazily created pools.
//
// Callers own the returned trees and must Close them. The manager itself
// must be closed once no more parses will be issued.
//
//	pm := parser.NewParserManager(logger)
//	defer pm.Close()
//
//	tree, err := pm.ParseFile(src, "app/page.tsx")
//	if err != nil {
//	    return err
//	}
//	defer tree.Close()
type ParserManager struct {
	pools    map[Dialect]*parserPool
	poolSize int
	mutex    sync.RWMutex
	logger   *slog.Logger

	parses int
}

// NewParserManager creates a manager whose pools hold up to
// util.GetOptimalPoolSize() parsers each.
func NewParserManager(logger *slog.Logger) *ParserManager {
	return NewParserManagerWithSize(logger, 0)
}

// NewParserManagerWithSize is NewParserManager with an explicit pool size.
// A size <= 0 uses the CPU-based default, which matches the worker count.
func NewParserManagerWithSize(logger *slog.Logger, size int) *ParserManager {
	if logger == nil {
		logger = slog.Default()
	}
	return &ParserManager{
		pools:    make(map[Dialect]*parserPool),
		poolSize: util.WorkerCount(0, size),
		logger:   logger,
	}
}

// Parse parses source with the grammar for dialect.
//
// Trees containing syntax errors are still returned; tree-sitter recovers
// locally and the rest of the file stays usable.
func (pm *ParserManager) Parse(source []byte, dialect Dialect) (*ts.Tree, error) {
	if dialect == DialectUnknown {
		return nil, fmt.Errorf("cannot parse unknown dialect")
	}

	pool := pm.pool(dialect)

	parser, err := pool.acquire()
	if err != nil {
		return nil, fmt.Errorf("acquire %s parser: %w", dialect, err)
	}
	tree := parser.Parse(source, nil)
	pool.release(parser)

	pm.mutex.Lock()
	pm.parses++
	pm.mutex.Unlock()

	if tree == nil {
		return nil, fmt.Errorf("%s parser returned no tree", dialect)
	}
	if tree.RootNode().HasError() {
		pm.logger.Debug("parse tree contains errors", "dialect", dialect.String())
	}
	return tree, nil
}

// ParseFile detects the dialect from filePath and parses source.
func (pm *ParserManager) ParseFile(source []byte, filePath string) (*ts.Tree, error) {
	dialect := DialectFor(filePath)
	if dialect == DialectUnknown {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFile, filePath)
	}
	return pm.Parse(source, dialect)
}

// pool returns the pool for dialect, creating it under the write lock.
func (pm *ParserManager) pool(dialect Dialect) *parserPool {
	pm.mutex.RLock()
	p, ok := pm.pools[dialect]
	pm.mutex.RUnlock()
	if ok {
		return p
	}

	pm.mutex.Lock()
	defer pm.mutex.Unlock()
	if p, ok = pm.pools[dialect]; ok {
		return p
	}
	p = newParserPool(dialect, pm.poolSize, pm.logger)
	pm.pools[dialect] = p
	return p
}

// Stats returns parser usage counters.
func (pm *ParserManager) Stats() ParserStats {
	pm.mutex.RLock()
	defer pm.mutex.RUnlock()

	created := 0
	for _, p := range pm.pools {
		created += p.createdCount()
	}
	return ParserStats{ParsersCreated: created, ParsesCalled: pm.parses}
}

// ParserStats contains parser usage counters.
type ParserStats struct {
	ParsersCreated int
	ParsesCalled   int
}

// Close releases every pooled parser. The manager must not be used afterwards.
func (pm *ParserManager) Close() error {
	pm.mutex.Lock()
	defer pm.mutex.Unlock()

	closed := 0
	for _, p := range pm.pools {
		closed += p.close()
	}
	pm.pools = make(map[Dialect]*parserPool)

	pm.logger.Debug("parser manager closed", "parsers_closed", closed, "parses", pm.parses)
	return nil
}
