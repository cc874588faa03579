package reload

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/cognicore/textkit/pkg/textkit"
	"github.com/cognicore/textkit/pkg/textkit/config"
	"github.com/cognicore/textkit/pkg/textkit/internalerr"
	"github.com/cognicore/textkit/pkg/textkit/sentiment"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func startWatcher(t *testing.T, loader *config.Loader) <-chan *textkit.Analyzer {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())

	loaded := make(chan *textkit.Analyzer, 16)
	w := &Watcher{
		Loader:   loader,
		Debounce: 20 * time.Millisecond,
		OnLoad:   func(a *textkit.Analyzer) { loaded <- a },
		Log:      quietLogger(),
	}

	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		if err := <-done; err != nil {
			t.Errorf("Run: %v", err)
		}
	})
	return loaded
}

// rewriteUntil keeps rewriting path until an analyzer arrives, since the
// watch may not be registered when the first write lands.
func rewriteUntil(t *testing.T, path, content string, loaded <-chan *textkit.Analyzer) *textkit.Analyzer {
	t.Helper()
	deadline := time.After(5 * time.Second)
	tick := time.NewTicker(100 * time.Millisecond)
	defer tick.Stop()

	for {
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
		select {
		case a := <-loaded:
			return a
		case <-tick.C:
		case <-deadline:
			t.Fatal("Timed out waiting for reload")
		}
	}
}

func TestWatchReloadsLexicon(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lexicon.yaml")
	if err := os.WriteFile(path, []byte("positive: [good]\nnegative: [bad]\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	loaded := startWatcher(t, &config.Loader{LexiconPath: path})
	a := rewriteUntil(t, path, "positive: [zorp]\nnegative: [bad]\n", loaded)

	if got := a.Analyze("such zorp").Sentiment; got != sentiment.Positive {
		t.Errorf("Reloaded lexicon not applied: got %v", got)
	}
}

func TestWatchKeepsServingOnBadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lexicon.yaml")
	if err := os.WriteFile(path, []byte("positive: [good]\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	loaded := startWatcher(t, &config.Loader{LexiconPath: path})

	for i := 0; i < 5; i++ {
		if err := os.WriteFile(path, []byte("positive: [unclosed\n"), 0o644); err != nil {
			t.Fatal(err)
		}
		time.Sleep(60 * time.Millisecond)
	}
	select {
	case <-loaded:
		t.Fatal("Invalid file must not produce an analyzer")
	case <-time.After(200 * time.Millisecond):
	}

	a := rewriteUntil(t, path, "negative: [meh]\n", loaded)
	if got := a.Analyze("meh").Sentiment; got != sentiment.Negative {
		t.Errorf("Expected Negative after fix, got %v", got)
	}
}

func TestWatchIgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "intents.yaml")
	content := "rules:\n  - intent: farewell\n    triggers: [ciao]\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	loaded := startWatcher(t, &config.Loader{IntentsPath: path})

	for i := 0; i < 5; i++ {
		if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
		time.Sleep(40 * time.Millisecond)
	}
	select {
	case <-loaded:
		t.Fatal("Unrelated file triggered a reload")
	case <-time.After(200 * time.Millisecond):
	}
}

func TestWatchRequiresFiles(t *testing.T) {
	err := Watch(context.Background(), &config.Loader{}, func(*textkit.Analyzer) {})
	if !errors.Is(err, internalerr.ErrInvalidConfig) {
		t.Errorf("Expected ErrInvalidConfig, got %v", err)
	}
}
