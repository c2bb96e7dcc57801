package util

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/edsrzf/mmap-go"
)

// FileCache hands out read-only views of source files backed by mmap.
//
// Views stay valid until Invalidate or Close is called for the file, so a
// caller must copy any bytes it wants to keep past that point. Tree-sitter
// copies node text into Go strings, which is why a pipeline run can close its
// cache as soon as every file has been analyzed.
//
// Safe for concurrent use.
type FileCache interface {
	// ReadFile returns the file contents, mapping the file on first access.
	ReadFile(path string) ([]byte, error)

	// Invalidate drops a cached file so the next ReadFile sees fresh contents.
	Invalidate(path string)

	// Size returns the number of cached files.
	Size() int

	// Stats returns cumulative cache counters.
	Stats() FileCacheStats

	// Close unmaps every cached file.
	Close() error
}

// FileCacheConfig controls FileCache behavior.
type FileCacheConfig struct {
	// MaxFiles caps the number of cached files. 0 means unlimited.
	MaxFiles int

	// Logger for mmap fallbacks and close errors. Defaults to slog.Default().
	Logger *slog.Logger
}

// DefaultFileCacheConfig returns limits sized for medium monorepos.
func DefaultFileCacheConfig() *FileCacheConfig {
	return &FileCacheConfig{MaxFiles: 20000}
}

// FileCacheStats tracks cache counters.
type FileCacheStats struct {
	Hits         int64
	Misses       int64
	MmapFailures int64
	FilesCached  int
	BytesMapped  int64
}

// ErrCacheFull is returned when MaxFiles would be exceeded.
var ErrCacheFull = errors.New("file cache limit reached")

type mappedFile struct {
	data mmap.MMap
	file *os.File
	heap []byte // fallback when mmap fails or the file is empty
}

func (m *mappedFile) bytes() []byte {
	if m.heap != nil || m.data == nil {
		return m.heap
	}
	return m.data
}

func (m *mappedFile) release() error {
	var errs []error
	if m.data != nil {
		if err := m.data.Unmap(); err != nil {
			errs = append(errs, err)
		}
	}
	if m.file != nil {
		if err := m.file.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

type fileCache struct {
	config *FileCacheConfig
	logger *slog.Logger

	mu    sync.RWMutex
	files map[string]*mappedFile

	statsMu sync.Mutex
	stats   FileCacheStats
}

// NewFileCache creates a FileCache. A nil config uses DefaultFileCacheConfig.
func NewFileCache(config *FileCacheConfig) FileCache {
	if config == nil {
		config = DefaultFileCacheConfig()
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &fileCache{
		config: config,
		logger: logger,
		files:  make(map[string]*mappedFile),
	}
}

func (fc *fileCache) ReadFile(path string) ([]byte, error) {
	fc.mu.RLock()
	if mf, ok := fc.files[path]; ok {
		fc.mu.RUnlock()
		fc.count(func(s *FileCacheStats) { s.Hits++ })
		return mf.bytes(), nil
	}
	fc.mu.RUnlock()

	fc.mu.Lock()
	defer fc.mu.Unlock()

	// Another goroutine may have loaded it while we waited.
	if mf, ok := fc.files[path]; ok {
		fc.count(func(s *FileCacheStats) { s.Hits++ })
		return mf.bytes(), nil
	}

	fc.count(func(s *FileCacheStats) { s.Misses++ })

	if fc.config.MaxFiles > 0 && len(fc.files) >= fc.config.MaxFiles {
		return nil, fmt.Errorf("%w: %d files", ErrCacheFull, fc.config.MaxFiles)
	}

	mf, err := fc.load(path)
	if err != nil {
		return nil, err
	}
	fc.files[path] = mf
	fc.count(func(s *FileCacheStats) { s.BytesMapped += int64(len(mf.bytes())) })
	return mf.bytes(), nil
}

// load maps path read-only, falling back to os.ReadFile. Caller holds mu.
func (fc *fileCache) load(path string) (*mappedFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %q: %w", path, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stat %q: %w", path, err)
	}
	if info.IsDir() {
		f.Close()
		return nil, fmt.Errorf("read %q: is a directory", path)
	}
	// Zero-length files cannot be mapped.
	if info.Size() == 0 {
		f.Close()
		return &mappedFile{heap: []byte{}}, nil
	}

	data, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		f.Close()
		fc.logger.Warn("mmap failed, using fallback", "file", path, "error", err)
		fc.count(func(s *FileCacheStats) { s.MmapFailures++ })
		heap, readErr := os.ReadFile(path)
		if readErr != nil {
			return nil, fmt.Errorf("read %q: %w", path, readErr)
		}
		return &mappedFile{heap: heap}, nil
	}
	return &mappedFile{data: data, file: f}, nil
}

func (fc *fileCache) Invalidate(path string) {
	fc.mu.Lock()
	mf, ok := fc.files[path]
	delete(fc.files, path)
	fc.mu.Unlock()

	if ok {
		if err := mf.release(); err != nil {
			fc.logger.Warn("failed to release cached file", "file", path, "error", err)
		}
	}
}

func (fc *fileCache) Size() int {
	fc.mu.RLock()
	defer fc.mu.RUnlock()
	return len(fc.files)
}

func (fc *fileCache) Stats() FileCacheStats {
	size := fc.Size()
	fc.statsMu.Lock()
	defer fc.statsMu.Unlock()
	s := fc.stats
	s.FilesCached = size
	return s
}

func (fc *fileCache) Close() error {
	fc.mu.Lock()
	defer fc.mu.Unlock()

	var errs []error
	for path, mf := range fc.files {
		if err := mf.release(); err != nil {
			errs = append(errs, fmt.Errorf("release %q: %w", path, err))
		}
	}
	fc.files = make(map[string]*mappedFile)

	fc.logger.Debug("file cache closed",
		"hits", fc.stats.Hits,
		"misses", fc.stats.Misses,
		"mmap_failures", fc.stats.MmapFailures)

	return errors.Join(errs...)
}

func (fc *fileCache) count(update func(*FileCacheStats)) {
	fc.statsMu.Lock()
	update(&fc.stats)
	fc.statsMu.Unlock()
}
