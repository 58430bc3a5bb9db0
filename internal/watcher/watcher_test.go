package watcher

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/leslieo2/go-hot-reload/internal/config"
	"github.com/leslieo2/go-hot-reload/internal/observability"
)

func testWatcherConfig() config.WatcherConfig {
	cfg := config.DefaultWatcherConfig()
	cfg.PollInterval = 20 * time.Millisecond
	cfg.Extensions = nil // allow everything unless a test says otherwise
	return cfg
}

func newTestWatcher(t *testing.T, cfg config.WatcherConfig) *FileWatcher {
	t.Helper()
	return NewFileWatcher(cfg, observability.NewNopLogger())
}

// eventCollector records delivered events for assertions.
type eventCollector struct {
	mu     sync.Mutex
	events []WatchEvent
}

func (c *eventCollector) handle(ev WatchEvent) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, ev)
}

func (c *eventCollector) byType(typ EventType) []WatchEvent {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []WatchEvent
	for _, ev := range c.events {
		if ev.Type == typ {
			out = append(out, ev)
		}
	}
	return out
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("MkdirAll failed: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
}

func TestWatch_Errors(t *testing.T) {
	w := newTestWatcher(t, testWatcherConfig())

	if err := w.Watch("does-not-exist"); !errors.Is(err, ErrPathNotFound) {
		t.Errorf("expected ErrPathNotFound, got %v", err)
	}

	file := filepath.Join(t.TempDir(), "f.txt")
	writeFile(t, file, "x")
	if err := w.Watch(file); !errors.Is(err, ErrNotADirectory) {
		t.Errorf("expected ErrNotADirectory, got %v", err)
	}
}

func TestWatch_InitialScanEmitsNothing(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.css"), "a")
	writeFile(t, filepath.Join(dir, "sub", "b.css"), "b")

	w := newTestWatcher(t, testWatcherConfig())
	collector := &eventCollector{}
	w.OnEvent(collector.handle)

	if err := w.Watch(dir); err != nil {
		t.Fatalf("Watch() failed: %v", err)
	}

	// a.css, sub/, sub/b.css
	if got := w.FileCount(); got != 3 {
		t.Errorf("FileCount() = %d, want 3", got)
	}
	if len(collector.events) != 0 {
		t.Errorf("initial scan emitted %d events, want 0", len(collector.events))
	}
}

func TestDiff_CreateModifyDelete(t *testing.T) {
	dir := t.TempDir()
	existing := filepath.Join(dir, "existing.css")
	writeFile(t, existing, "old")

	w := newTestWatcher(t, testWatcherConfig())
	collector := &eventCollector{}
	w.OnEvent(collector.handle)
	if err := w.Watch(dir); err != nil {
		t.Fatalf("Watch() failed: %v", err)
	}

	// Create
	created := filepath.Join(dir, "new.css")
	writeFile(t, created, "new")
	w.pollOnce()
	if evs := collector.byType(EventCreated); len(evs) != 1 || evs[0].Path != created {
		t.Fatalf("expected one created event for %s, got %v", created, evs)
	}

	// Modify: bump mtime explicitly so the test does not depend on fs clock
	// resolution.
	future := time.Now().Add(time.Hour)
	if err := os.Chtimes(existing, future, future); err != nil {
		t.Fatalf("Chtimes failed: %v", err)
	}
	w.pollOnce()
	if evs := collector.byType(EventModified); len(evs) != 1 || evs[0].Path != existing {
		t.Fatalf("expected one modified event for %s, got %v", existing, evs)
	}

	// Delete
	if err := os.Remove(created); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	w.pollOnce()
	if evs := collector.byType(EventDeleted); len(evs) != 1 || evs[0].Path != created {
		t.Fatalf("expected one deleted event for %s, got %v", created, evs)
	}
}

func TestDiff_DirectoryEvents(t *testing.T) {
	dir := t.TempDir()

	w := newTestWatcher(t, testWatcherConfig())
	collector := &eventCollector{}
	w.OnEvent(collector.handle)
	if err := w.Watch(dir); err != nil {
		t.Fatalf("Watch() failed: %v", err)
	}

	sub := filepath.Join(dir, "styles")
	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatalf("Mkdir failed: %v", err)
	}
	w.pollOnce()
	if evs := collector.byType(EventDirCreated); len(evs) != 1 || evs[0].Path != sub {
		t.Fatalf("expected one dir_created event, got %v", evs)
	}

	if err := os.Remove(sub); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	w.pollOnce()
	if evs := collector.byType(EventDirDeleted); len(evs) != 1 {
		t.Fatalf("expected one dir_deleted event, got %v", evs)
	}
}

func TestExtensionFilter(t *testing.T) {
	dir := t.TempDir()

	cfg := testWatcherConfig()
	cfg.Extensions = []string{".css"}
	w := newTestWatcher(t, cfg)
	collector := &eventCollector{}
	w.OnEvent(collector.handle)
	if err := w.Watch(dir); err != nil {
		t.Fatalf("Watch() failed: %v", err)
	}

	writeFile(t, filepath.Join(dir, "a.css"), "a")
	writeFile(t, filepath.Join(dir, "b.log"), "b")
	w.pollOnce()

	evs := collector.byType(EventCreated)
	if len(evs) != 1 || filepath.Ext(evs[0].Path) != ".css" {
		t.Fatalf("expected only the .css creation to be delivered, got %v", evs)
	}
}

func TestIgnorePatterns(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "target", "debug", "app"), "bin")
	writeFile(t, filepath.Join(dir, "src", "main.css"), "css")

	cfg := testWatcherConfig()
	cfg.IgnorePatterns = []string{"target/**"}
	w := newTestWatcher(t, cfg)
	if err := w.Watch(dir); err != nil {
		t.Fatalf("Watch() failed: %v", err)
	}

	// src/, src/main.css; nothing under target/
	if got := w.FileCount(); got != 2 {
		t.Errorf("FileCount() = %d, want 2", got)
	}
}

func TestUnwatch(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.css"), "a")

	w := newTestWatcher(t, testWatcherConfig())
	if err := w.Watch(dir); err != nil {
		t.Fatalf("Watch() failed: %v", err)
	}
	if w.FileCount() == 0 {
		t.Fatal("expected tracked files after Watch()")
	}

	w.Unwatch(dir)
	if got := w.FileCount(); got != 0 {
		t.Errorf("FileCount() after Unwatch = %d, want 0", got)
	}
}

func TestStartStop(t *testing.T) {
	w := newTestWatcher(t, testWatcherConfig())

	if err := w.Start(); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}
	if !w.IsRunning() {
		t.Fatal("watcher should be running after Start()")
	}
	if err := w.Start(); !errors.Is(err, ErrAlreadyRunning) {
		t.Fatalf("expected ErrAlreadyRunning on second Start(), got %v", err)
	}

	w.Stop()
	if w.IsRunning() {
		t.Fatal("watcher should not be running after Stop()")
	}
	// Stop again should be a no-op
	w.Stop()
}

func TestPollLoop_DeliversEvents(t *testing.T) {
	dir := t.TempDir()

	w := newTestWatcher(t, testWatcherConfig())
	collector := &eventCollector{}
	w.OnEvent(collector.handle)
	if err := w.Watch(dir); err != nil {
		t.Fatalf("Watch() failed: %v", err)
	}
	if err := w.Start(); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}
	defer w.Stop()

	writeFile(t, filepath.Join(dir, "live.css"), "x")

	deadline := time.After(2 * time.Second)
	for {
		if evs := collector.byType(EventCreated); len(evs) == 1 {
			return
		}
		select {
		case <-deadline:
			t.Fatal("timed out waiting for created event from poll loop")
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestMaxDepth(t *testing.T) {
	dir := t.TempDir()
	deep := dir
	for i := 0; i < 5; i++ {
		deep = filepath.Join(deep, "d")
	}
	writeFile(t, filepath.Join(deep, "leaf.css"), "x")

	cfg := testWatcherConfig()
	cfg.MaxDepth = 2
	w := newTestWatcher(t, cfg)
	if err := w.Watch(dir); err != nil {
		t.Fatalf("Watch() failed: %v", err)
	}

	// Directories within depth are tracked, the deep leaf is not.
	w.mu.Lock()
	_, leafTracked := w.states[filepath.Join(deep, "leaf.css")]
	w.mu.Unlock()
	if leafTracked {
		t.Error("leaf beyond max depth should not be tracked")
	}
}
