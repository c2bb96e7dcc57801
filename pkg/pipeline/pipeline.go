package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	ts "github.com/tree-sitter/go-tree-sitter"

	"github.com/gnana997/glot/pkg/analyzer"
	"github.com/gnana997/glot/pkg/comments"
	"github.com/gnana997/glot/pkg/locale"
	"github.com/gnana997/glot/pkg/parser"
	"github.com/gnana997/glot/pkg/parser/queries"
	"github.com/gnana997/glot/pkg/registry"
	"github.com/gnana997/glot/pkg/resolver"
	"github.com/gnana997/glot/pkg/schema"
	"github.com/gnana997/glot/pkg/util"
)

// Runner executes pipeline runs. The parser pools and compiled queries
// survive across runs, so a watcher should reuse one Runner. Runs must not
// overlap.
type Runner struct {
	pm  *parser.ParserManager
	qm  *queries.QueryManager
	log *slog.Logger
}

// NewRunner creates a runner. A nil logger uses slog.Default().
func NewRunner(logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		pm:  parser.NewParserManager(logger),
		qm:  queries.NewQueryManager(logger),
		log: logger,
	}
}

// Close releases the parser pools and compiled queries.
func (r *Runner) Close() error {
	qerr := r.qm.Close()
	if err := r.pm.Close(); err != nil {
		return err
	}
	return qerr
}

// Run is a one-shot NewRunner, Run, Close.
func Run(ctx context.Context, cfg Config, logger *slog.Logger) (*Result, error) {
	r := NewRunner(logger)
	defer r.Close()
	return r.Run(ctx, cfg)
}

// parsedFile is the per-file state carried from collection to resolution.
type parsedFile struct {
	path     string
	src      []byte
	tree     *ts.Tree
	registry *registry.FileResult
	comments *comments.FileComments
	failed   bool
}

// Run scans cfg.Root. Read errors and cancellation fail the run; a file
// that cannot be parsed is counted and contributes nothing.
func (r *Runner) Run(ctx context.Context, cfg Config) (*Result, error) {
	totalStart := time.Now()
	stats := Stats{}

	msgs, err := locale.Load(cfg.MessagesRoot, cfg.PrimaryLocale)
	if err != nil {
		return nil, fmt.Errorf("load primary locale: %w", err)
	}
	stats.LocaleKeys = len(msgs.Entries)

	// Phase 1: discovery
	discoveryStart := time.Now()
	files, err := Discover(cfg)
	if err != nil {
		return nil, fmt.Errorf("discovery failed: %w", err)
	}
	stats.FilesDiscovered = len(files)
	stats.DiscoveryTimeMs = time.Since(discoveryStart).Milliseconds()
	r.log.Info("discovery complete", "files", len(files), "ms", stats.DiscoveryTimeMs)

	root, err := filepath.Abs(cfg.Root)
	if err != nil {
		return nil, fmt.Errorf("discovery failed: %w", err)
	}
	result := &Result{Root: root, Files: make([]FileReport, 0, len(files))}
	if len(files) == 0 {
		result.Registries = registry.NewRegistries()
		stats.TotalTimeMs = time.Since(totalStart).Milliseconds()
		result.Stats = stats
		return result, nil
	}

	cache := util.NewFileCache(&util.FileCacheConfig{Logger: r.log})
	defer cache.Close()

	workers := util.WorkerCount(len(files), cfg.Workers)
	stats.Workers = workers

	known := make(map[string]bool, len(files))
	for _, f := range files {
		known[f] = true
	}
	exists := registry.ExistsIn(known)

	parsed := make([]parsedFile, len(files))
	defer func() {
		for _, pf := range parsed {
			if pf.tree != nil {
				pf.tree.Close()
			}
		}
	}()

	// Phase 2: parse, collect registries and comment directives
	collectStart := time.Now()
	_, err = runPool(ctx, workers, len(files), r.log, func(_ context.Context, i int) error {
		path := files[i]
		src, err := cache.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read source: %w", err)
		}
		pf := parsedFile{path: path, src: src}
		tree, err := r.pm.ParseFile(src, path)
		if err != nil {
			r.log.Warn("parse failed", "file", path, "error", err)
			pf.failed = true
			parsed[i] = pf
			return nil
		}
		pf.tree = tree
		parsed[i] = pf

		matches, err := r.qm.Run(tree, parser.DialectFor(path), queries.QueryComments, src)
		if err != nil {
			return fmt.Errorf("scan comments in %s: %w", path, err)
		}
		parsed[i].registry = registry.NewCollector(exists).Collect(path, tree.RootNode(), src)
		parsed[i].comments = comments.Collect(comments.FromNodes(queries.Nodes(matches, "comment.node"), src))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("collection failed: %w", err)
	}

	// Merge in sorted file order; Merge itself is order-independent.
	fileResults := make([]*registry.FileResult, 0, len(parsed))
	for _, pf := range parsed {
		if pf.failed {
			stats.ParseFailures++
			continue
		}
		fileResults = append(fileResults, pf.registry)
	}
	stats.FilesParsed = len(fileResults)
	regs := registry.Merge(fileResults...)
	stats.Registries = regs.Counts()

	schemas, err := schema.NewCache(regs.Schemas)
	if err != nil {
		return nil, err
	}
	schemas.Warm()
	stats.CollectTimeMs = time.Since(collectStart).Milliseconds()
	r.log.Info("registries complete",
		"parsed", stats.FilesParsed, "failed", stats.ParseFailures,
		"schemas", schemas.Len(), "ms", stats.CollectTimeMs)

	// Phase 3: analyze and resolve; needs the merged registries and the
	// warmed schema cache.
	resolveStart := time.Now()
	an := analyzer.New(regs, analyzer.Options{
		CheckedAttributes: cfg.CheckedAttributes,
		IgnoreTexts:       cfg.IgnoreTexts,
	})
	res := resolver.New(schemas, msgs.Keys())
	reports := make([]FileReport, len(parsed))
	_, err = runPool(ctx, workers, len(parsed), r.log, func(_ context.Context, i int) error {
		pf := parsed[i]
		report := FileReport{Path: pf.path, ParseFailed: pf.failed}
		if !pf.failed {
			ar := an.Analyze(pf.path, pf.tree.RootNode(), pf.src, pf.comments)
			usages := res.ResolveFile(ar, pf.comments)
			report.Calls = len(ar.Calls)
			report.SchemaCalls = len(ar.SchemaCalls)
			report.Resolved = usages.Resolved
			report.Unresolved = usages.Unresolved
			report.Hardcoded = ar.Hardcoded
			report.PatternWarnings = pf.comments.Warnings
		}
		reports[i] = report
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("resolution failed: %w", err)
	}
	stats.ResolveTimeMs = time.Since(resolveStart).Milliseconds()

	for _, rep := range reports {
		stats.Calls += rep.Calls
		stats.SchemaCalls += rep.SchemaCalls
		stats.ResolvedUsages += len(rep.Resolved)
		stats.UnresolvedUsages += len(rep.Unresolved)
		stats.HardcodedTexts += len(rep.Hardcoded)
	}
	r.log.Info("resolution complete",
		"resolved", stats.ResolvedUsages, "unresolved", stats.UnresolvedUsages,
		"hardcoded", stats.HardcodedTexts, "ms", stats.ResolveTimeMs)

	result.Files = reports
	result.Registries = regs
	result.UnresolvedNested = schemas.UnresolvedNested()
	stats.TotalTimeMs = time.Since(totalStart).Milliseconds()
	result.Stats = stats
	return result, nil
}

// IsCanceled reports whether err ends a run because its context was done.
func IsCanceled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
