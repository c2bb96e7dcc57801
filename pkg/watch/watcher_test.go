package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnana997/glot/pkg/pipeline"
	"github.com/gnana997/glot/pkg/util"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func waitRun(t *testing.T, runs <-chan Run) Run {
	t.Helper()
	select {
	case r := <-runs:
		return r
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for pipeline run")
		return Run{}
	}
}

func startWatcher(t *testing.T, cfg pipeline.Config) (*Watcher, <-chan Run) {
	t.Helper()
	runner := pipeline.NewRunner(util.NopLogger())
	t.Cleanup(func() { runner.Close() })

	runs := make(chan Run, 16)
	w, err := New(cfg, runner, Options{Debounce: 20 * time.Millisecond}, util.NopLogger(), func(r Run) { runs <- r })
	require.NoError(t, err)
	require.NoError(t, w.Start(context.Background()))
	t.Cleanup(func() { w.Stop() })
	return w, runs
}

func TestWatcher_RerunsOnSourceChange(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "page.tsx"), `
const t = useTranslations("A");
t("one");
`)
	w, runs := startWatcher(t, pipeline.DefaultConfig(root))

	initial := waitRun(t, runs)
	require.NoError(t, initial.Err)
	assert.Empty(t, initial.Changed)
	assert.Contains(t, initial.Result.KeySet(), "A.one")

	nested := filepath.Join(root, "feature", "card.tsx")
	require.NoError(t, os.MkdirAll(filepath.Dir(nested), 0o755))
	// Give the watcher a moment to register the new directory.
	time.Sleep(100 * time.Millisecond)
	writeFile(t, nested, `
const t = useTranslations("B");
t("two");
`)

	var next Run
	for {
		next = waitRun(t, runs)
		if _, ok := next.Result.KeySet()["B.two"]; ok {
			break
		}
	}
	require.NoError(t, next.Err)
	assert.Contains(t, next.Changed, nested)
	assert.GreaterOrEqual(t, w.Stats().Runs, 2)
	assert.True(t, w.Stats().IsRunning)
}

func TestWatcher_IgnoresUnrelatedFiles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "page.ts"), `export {}`)
	w, runs := startWatcher(t, pipeline.DefaultConfig(root))
	waitRun(t, runs)

	writeFile(t, filepath.Join(root, "notes.md"), "# notes")
	writeFile(t, filepath.Join(root, "node_modules", "x.ts"), "export {}")

	select {
	case r := <-runs:
		t.Fatalf("unexpected run for %v", r.Changed)
	case <-time.After(300 * time.Millisecond):
	}
	assert.Equal(t, 1, w.Stats().Runs)
}

func TestWatcher_RerunsOnMessageChange(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(root, "src")
	messages := filepath.Join(root, "messages")
	writeFile(t, filepath.Join(src, "a.ts"), `export {}`)
	writeFile(t, filepath.Join(messages, "en.json"), `{"a": "A"}`)

	cfg := pipeline.DefaultConfig(src)
	cfg.MessagesRoot = messages
	_, runs := startWatcher(t, cfg)
	initial := waitRun(t, runs)
	require.NoError(t, initial.Err)
	assert.Equal(t, 1, initial.Result.Stats.LocaleKeys)

	writeFile(t, filepath.Join(messages, "en.json"), `{"a": "A", "b": "B"}`)
	var next Run
	for {
		next = waitRun(t, runs)
		if next.Result != nil && next.Result.Stats.LocaleKeys == 2 {
			break
		}
	}
	assert.Contains(t, next.Changed, filepath.Join(messages, "en.json"))
}

func TestWatcher_StopIsIdempotent(t *testing.T) {
	root := t.TempDir()
	runner := pipeline.NewRunner(util.NopLogger())
	defer runner.Close()

	w, err := New(pipeline.DefaultConfig(root), runner, Options{}, nil, nil)
	require.NoError(t, err)
	require.NoError(t, w.Start(context.Background()))
	assert.Error(t, w.Start(context.Background()))
	require.NoError(t, w.Stop())
	require.NoError(t, w.Stop())
	assert.False(t, w.Stats().IsRunning)
	assert.Error(t, w.Start(context.Background()))
}
