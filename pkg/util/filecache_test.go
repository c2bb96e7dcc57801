package util

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupSourceFiles(t *testing.T) map[string]string {
	t.Helper()

	dir := t.TempDir()
	files := map[string]string{
		"page.tsx": `export default function Page() { return <p>{t("title")}</p>; }`,
		"keys.ts":  `export const KEYS = ["a", "b"] as const;`,
		"empty.ts": ``,
		"utf8.tsx": `const label = "你好";`,
	}
	paths := make(map[string]string, len(files))
	for name, content := range files {
		p := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(p, []byte(content), 0644))
		paths[name] = p
	}
	return paths
}

func TestFileCache_ReadFile(t *testing.T) {
	paths := setupSourceFiles(t)
	cache := NewFileCache(&FileCacheConfig{Logger: NopLogger()})
	defer cache.Close()

	data, err := cache.ReadFile(paths["keys.ts"])
	require.NoError(t, err)
	assert.Equal(t, `export const KEYS = ["a", "b"] as const;`, string(data))
	assert.Equal(t, 1, cache.Size())

	// Second read is a hit.
	_, err = cache.ReadFile(paths["keys.ts"])
	require.NoError(t, err)
	stats := cache.Stats()
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
	assert.Equal(t, 1, stats.FilesCached)
}

func TestFileCache_EmptyFile(t *testing.T) {
	paths := setupSourceFiles(t)
	cache := NewFileCache(&FileCacheConfig{Logger: NopLogger()})
	defer cache.Close()

	data, err := cache.ReadFile(paths["empty.ts"])
	require.NoError(t, err)
	assert.Empty(t, data)
}

func TestFileCache_UTF8(t *testing.T) {
	paths := setupSourceFiles(t)
	cache := NewFileCache(&FileCacheConfig{Logger: NopLogger()})
	defer cache.Close()

	data, err := cache.ReadFile(paths["utf8.tsx"])
	require.NoError(t, err)
	assert.Contains(t, string(data), "你好")
}

func TestFileCache_FileNotFound(t *testing.T) {
	cache := NewFileCache(&FileCacheConfig{Logger: NopLogger()})
	defer cache.Close()

	_, err := cache.ReadFile(filepath.Join(t.TempDir(), "missing.ts"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Equal(t, 0, cache.Size())
}

func TestFileCache_MaxFiles(t *testing.T) {
	paths := setupSourceFiles(t)
	cache := NewFileCache(&FileCacheConfig{MaxFiles: 1, Logger: NopLogger()})
	defer cache.Close()

	_, err := cache.ReadFile(paths["page.tsx"])
	require.NoError(t, err)

	_, err = cache.ReadFile(paths["keys.ts"])
	require.ErrorIs(t, err, ErrCacheFull)
}

func TestFileCache_Invalidate(t *testing.T) {
	paths := setupSourceFiles(t)
	cache := NewFileCache(&FileCacheConfig{Logger: NopLogger()})
	defer cache.Close()

	_, err := cache.ReadFile(paths["keys.ts"])
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(paths["keys.ts"], []byte(`export const KEYS = ["c"];`), 0644))
	cache.Invalidate(paths["keys.ts"])
	assert.Equal(t, 0, cache.Size())

	data, err := cache.ReadFile(paths["keys.ts"])
	require.NoError(t, err)
	assert.Equal(t, `export const KEYS = ["c"];`, string(data))
}

func TestFileCache_ConcurrentAccess(t *testing.T) {
	paths := setupSourceFiles(t)
	cache := NewFileCache(&FileCacheConfig{Logger: NopLogger()})
	defer cache.Close()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for _, p := range paths {
				_, err := cache.ReadFile(p)
				assert.NoError(t, err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, len(paths), cache.Size())
}
