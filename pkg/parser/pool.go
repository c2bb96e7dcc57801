package parser

import (
	"fmt"
	"log/slog"
	"sync"

	ts "github.com/tree-sitter/go-tree-sitter"
)

// parserPool keeps up to maxSize parsers for one dialect.
//
// Parsers are created lazily; once maxSize parsers exist, acquire blocks
// until one is released.
type parserPool struct {
	pool    chan *ts.Parser
	dialect Dialect
	maxSize int

	mutex   sync.Mutex
	created int

	logger *slog.Logger
}

func newParserPool(dialect Dialect, maxSize int, logger *slog.Logger) *parserPool {
	return &parserPool{
		pool:    make(chan *ts.Parser, maxSize),
		dialect: dialect,
		maxSize: maxSize,
		logger:  logger,
	}
}

func (p *parserPool) acquire() (*ts.Parser, error) {
	select {
	case parser := <-p.pool:
		return parser, nil
	default:
	}

	p.mutex.Lock()
	if p.created >= p.maxSize {
		p.mutex.Unlock()
		return <-p.pool, nil
	}

	grammar, ok := p.dialect.grammar()
	if !ok {
		p.mutex.Unlock()
		return nil, fmt.Errorf("no grammar for dialect %s", p.dialect)
	}

	parser := ts.NewParser()
	if err := parser.SetLanguage(ts.NewLanguage(grammar)); err != nil {
		parser.Close()
		p.mutex.Unlock()
		return nil, fmt.Errorf("set language %s: %w", p.dialect, err)
	}
	p.created++
	created := p.created
	p.mutex.Unlock()

	p.logger.Debug("created parser", "dialect", p.dialect.String(), "pool_size", created)
	return parser, nil
}

func (p *parserPool) release(parser *ts.Parser) {
	if parser == nil {
		return
	}
	select {
	case p.pool <- parser:
	default:
		parser.Close()
		p.logger.Warn("parser pool full, closing excess parser", "dialect", p.dialect.String())
	}
}

func (p *parserPool) close() int {
	close(p.pool)
	n := 0
	for parser := range p.pool {
		parser.Close()
		n++
	}
	return n
}

func (p *parserPool) createdCount() int {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	return p.created
}
