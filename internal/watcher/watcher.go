package watcher

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/leslieo2/go-hot-reload/internal/config"
	"github.com/leslieo2/go-hot-reload/internal/observability"
)

var (
	ErrPathNotFound   = errors.New("watch path does not exist")
	ErrNotADirectory  = errors.New("watch path is not a directory")
	ErrAlreadyRunning = errors.New("watcher already running")
)

// FileWatcher polls watched directories and diffs snapshots into typed
// events. It owns the file state table; all access goes through its methods.
type FileWatcher struct {
	cfg    config.WatcherConfig
	logger *observability.Logger

	mu      sync.Mutex
	roots   map[string]struct{}
	states  map[string]FileState
	handler Handler
	running bool

	done chan struct{}
	wg   sync.WaitGroup
}

// NewFileWatcher creates a watcher from configuration. Directories are
// registered with Watch before Start.
func NewFileWatcher(cfg config.WatcherConfig, logger *observability.Logger) *FileWatcher {
	return &FileWatcher{
		cfg:    cfg,
		logger: logger,
		roots:  make(map[string]struct{}),
		states: make(map[string]FileState),
	}
}

// OnEvent registers the handler invoked for each emitted event. Must be set
// before Start.
func (w *FileWatcher) OnEvent(h Handler) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.handler = h
}

// Watch validates the directory, performs the initial scan and registers it.
// No events are emitted for the initial scan.
func (w *FileWatcher) Watch(dir string) error {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("failed to get absolute path: %w", err)
	}

	info, err := os.Stat(absDir)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrPathNotFound, absDir)
		}
		return fmt.Errorf("failed to stat %s: %w", absDir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s", ErrNotADirectory, absDir)
	}

	snapshot := w.scan(absDir)

	w.mu.Lock()
	defer w.mu.Unlock()
	w.roots[absDir] = struct{}{}
	for p, st := range snapshot {
		w.states[p] = st
	}

	w.logger.Info("watching directory",
		zap.String("path", absDir),
		zap.Int("files", len(snapshot)))
	return nil
}

// Unwatch removes a directory and every tracked entry rooted under it.
func (w *FileWatcher) Unwatch(dir string) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.roots, absDir)
	for p := range w.states {
		if p == absDir || strings.HasPrefix(p, absDir+string(filepath.Separator)) {
			delete(w.states, p)
		}
	}
	w.logger.Info("stopped watching directory", zap.String("path", absDir))
}

// Start spawns the poll loop. It fails with ErrAlreadyRunning on double start.
func (w *FileWatcher) Start() error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return ErrAlreadyRunning
	}
	w.running = true
	w.done = make(chan struct{})
	w.mu.Unlock()

	w.wg.Add(1)
	go w.pollLoop()
	w.logger.Info("file watcher started", zap.Duration("poll_interval", w.cfg.PollInterval))
	return nil
}

// Stop terminates the poll loop. Safe to call multiple times.
func (w *FileWatcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	close(w.done)
	w.mu.Unlock()

	w.wg.Wait()
	w.logger.Info("file watcher stopped")
}

// IsRunning returns whether the poll loop is active.
func (w *FileWatcher) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

// FileCount returns the number of tracked paths.
func (w *FileWatcher) FileCount() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.states)
}

func (w *FileWatcher) pollLoop() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.done:
			return
		case <-ticker.C:
			w.pollOnce()
		}
	}
}

// pollOnce re-scans every watched root and emits events for the diff.
func (w *FileWatcher) pollOnce() {
	w.mu.Lock()
	roots := make([]string, 0, len(w.roots))
	for r := range w.roots {
		roots = append(roots, r)
	}
	w.mu.Unlock()
	sort.Strings(roots)

	now := time.Now()
	for _, root := range roots {
		snapshot := w.scan(root)
		events := w.diff(root, snapshot, now)
		for _, ev := range events {
			w.emit(ev)
		}
	}
}

// diff compares a fresh snapshot of root against the state table, updates the
// table, and returns the events in detection order: creations and
// modifications first, then deletions.
func (w *FileWatcher) diff(root string, snapshot map[string]FileState, now time.Time) []WatchEvent {
	w.mu.Lock()
	defer w.mu.Unlock()

	var events []WatchEvent

	paths := make([]string, 0, len(snapshot))
	for p := range snapshot {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	for _, p := range paths {
		st := snapshot[p]
		prev, known := w.states[p]
		if !known {
			typ := EventCreated
			if st.IsDir {
				typ = EventDirCreated
			}
			events = append(events, WatchEvent{Type: typ, Path: p, Size: st.Size, IsDir: st.IsDir, Timestamp: now})
		} else if !prev.equal(st) {
			typ := EventModified
			if prev.ModTime.Equal(st.ModTime) && prev.Size == st.Size && prev.IsDir == st.IsDir {
				typ = EventPermChanged
			}
			events = append(events, WatchEvent{Type: typ, Path: p, Size: st.Size, IsDir: st.IsDir, Timestamp: now})
		}
		w.states[p] = st
	}

	prefix := root + string(filepath.Separator)
	for p, prev := range w.states {
		if p != root && !strings.HasPrefix(p, prefix) {
			continue
		}
		if _, seen := snapshot[p]; seen {
			continue
		}
		typ := EventDeleted
		if prev.IsDir {
			typ = EventDirDeleted
		}
		events = append(events, WatchEvent{Type: typ, Path: p, Size: prev.Size, IsDir: prev.IsDir, Timestamp: now})
		delete(w.states, p)
	}

	return events
}

// scan walks root and returns the current snapshot, honoring ignore patterns
// and the file count and depth bounds. Read errors on individual entries are
// logged and skipped.
func (w *FileWatcher) scan(root string) map[string]FileState {
	snapshot := make(map[string]FileState)
	w.scanDir(root, root, 0, snapshot)
	return snapshot
}

func (w *FileWatcher) scanDir(root, dir string, depth int, snapshot map[string]FileState) {
	if depth > w.cfg.MaxDepth {
		w.logger.Warn("max depth exceeded, skipping subtree",
			zap.String("path", dir), zap.Int("max_depth", w.cfg.MaxDepth))
		return
	}
	if len(snapshot) >= w.cfg.MaxFiles {
		return
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		w.logger.Debug("failed to read directory", zap.String("path", dir), zap.Error(err))
		return
	}

	for _, entry := range entries {
		if len(snapshot) >= w.cfg.MaxFiles {
			w.logger.Warn("max file count reached, truncating scan",
				zap.String("root", root), zap.Int("max_files", w.cfg.MaxFiles))
			return
		}

		full := filepath.Join(dir, entry.Name())
		rel, err := filepath.Rel(root, full)
		if err != nil {
			rel = entry.Name()
		}
		if ignored(rel, w.cfg.IgnorePatterns) {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			w.logger.Debug("failed to stat entry", zap.String("path", full), zap.Error(err))
			continue
		}

		snapshot[full] = FileState{
			ModTime: info.ModTime(),
			Size:    info.Size(),
			IsDir:   info.IsDir(),
			Mode:    info.Mode().Perm(),
		}

		if info.IsDir() {
			w.scanDir(root, full, depth+1, snapshot)
		}
	}
}

// emit applies the extension allow-list and delivers the event to the
// registered handler. Directory events always pass the filter.
func (w *FileWatcher) emit(ev WatchEvent) {
	if !ev.IsDir && !w.allowedExtension(ev.Path) {
		return
	}

	w.mu.Lock()
	handler := w.handler
	w.mu.Unlock()

	w.logger.Debug("file system event",
		zap.String("type", string(ev.Type)),
		zap.String("path", ev.Path))

	if handler != nil {
		handler(ev)
	}
}

func (w *FileWatcher) allowedExtension(path string) bool {
	if len(w.cfg.Extensions) == 0 {
		return true
	}
	ext := strings.ToLower(filepath.Ext(path))
	for _, allowed := range w.cfg.Extensions {
		if ext == strings.ToLower(allowed) {
			return true
		}
	}
	return false
}
