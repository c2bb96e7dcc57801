package parser

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

// 100 goroutines share pools smaller than the goroutine count.
func TestConcurrentParsing(t *testing.T) {
	manager := NewParserManagerWithSize(testLogger(), 4)
	defer manager.Close()

	const numGoroutines = 100
	sources := map[Dialect][]byte{
		DialectTypeScript: []byte(`const KEYS = ["a", "b"] as const;`),
		DialectTSX:        []byte(`const el = <p>{t("k")}</p>;`),
		DialectJavaScript: []byte(`export default function () { return 1; }`),
	}
	dialects := []Dialect{DialectTypeScript, DialectTSX, DialectJavaScript}

	var wg sync.WaitGroup
	errs := make(chan error, numGoroutines)
	for i := 0; i < numGoroutines; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			d := dialects[i%len(dialects)]
			tree, err := manager.Parse(sources[d], d)
			if err != nil {
				errs <- err
				return
			}
			tree.Close()
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}

	stats := manager.Stats()
	assert.Equal(t, numGoroutines, stats.ParsesCalled)
	assert.LessOrEqual(t, stats.ParsersCreated, 4*len(dialects))
}
