package hotreload

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/leslieo2/go-hot-reload/internal/builder"
	"github.com/leslieo2/go-hot-reload/internal/config"
	"github.com/leslieo2/go-hot-reload/internal/detector"
	"github.com/leslieo2/go-hot-reload/internal/observability"
	"github.com/leslieo2/go-hot-reload/internal/watcher"
	"github.com/leslieo2/go-hot-reload/internal/wsserver"
)

// State is the lifecycle state of the pipeline.
type State int

const (
	StateStopped State = iota
	StateStarting
	StateRunning
	StatePaused
	StateError
)

func (s State) String() string {
	switch s {
	case StateStopped:
		return "stopped"
	case StateStarting:
		return "starting"
	case StateRunning:
		return "running"
	case StatePaused:
		return "paused"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

var (
	ErrAlreadyRunning       = errors.New("hot reload pipeline already running")
	ErrNotRunning           = errors.New("hot reload pipeline not running")
	ErrCSSInjectionDisabled = errors.New("css injection is disabled")
	ErrRefreshDisabled      = errors.New("browser auto-refresh is disabled")
)

// Stats is a point-in-time snapshot of the whole pipeline.
type Stats struct {
	State            string
	FilesWatched     int
	PendingChanges   int
	QueueDepth       int
	ConnectedClients int
	Builds           builder.BuildStats
	Uptime           time.Duration
}

// Manager owns the watch -> debounce -> build -> notify pipeline and the
// lifecycle of every component in it.
type Manager struct {
	cfg     *config.Config
	logger  *observability.Logger
	metrics *observability.Metrics

	watcher    *watcher.FileWatcher
	aggregator *detector.Aggregator
	builder    *builder.Manager
	server     *wsserver.Server
	listeners  *listenerRegistry

	mu        sync.RWMutex
	state     State
	lastErr   error
	startTime time.Time
}

// New wires the pipeline components together. Nothing starts until Start.
func New(cfg *config.Config, logger *observability.Logger, metrics *observability.Metrics, tracer *observability.Tracer) *Manager {
	m := &Manager{
		cfg:       cfg,
		logger:    logger,
		metrics:   metrics,
		listeners: newListenerRegistry(),
		state:     StateStopped,
	}

	m.watcher = watcher.NewFileWatcher(cfg.Watcher, logger)
	m.watcher.OnEvent(m.handleWatchEvent)

	m.aggregator = detector.NewAggregator(cfg.Watcher.Debounce, m.handleBatch, logger)

	m.builder = builder.NewManager(cfg.Build, logger, metrics, tracer)
	m.builder.OnStart(m.handleBuildStart)
	m.builder.OnResult(m.handleBuildResult)

	if m.notificationsEnabled() {
		m.server = wsserver.NewServer(cfg.WebSocket, logger, metrics)
	}
	return m
}

func (m *Manager) notificationsEnabled() bool {
	return m.cfg.HotReload.AutoRefreshBrowser || m.cfg.HotReload.EnableCSSInjection
}

// State returns the current pipeline state.
func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// LastError returns the error that moved the pipeline to StateError, if any.
func (m *Manager) LastError() error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastErr
}

// AddListener registers a lifecycle listener under a unique name.
func (m *Manager) AddListener(name string, fn Listener) {
	m.listeners.add(name, fn)
}

// RemoveListener drops the listener registered under name.
func (m *Manager) RemoveListener(name string) {
	m.listeners.remove(name)
}

// Start validates the watch directories and brings every component up.
// On any failure the pipeline moves to StateError and Start returns the
// underlying error.
func (m *Manager) Start() error {
	m.mu.Lock()
	if m.state == StateRunning || m.state == StatePaused || m.state == StateStarting {
		m.mu.Unlock()
		return ErrAlreadyRunning
	}
	m.state = StateStarting
	m.mu.Unlock()

	for _, dir := range m.cfg.Watcher.Directories {
		if err := m.watcher.Watch(dir); err != nil {
			return m.failStart(fmt.Errorf("watch %s: %w", dir, err))
		}
	}

	if m.server != nil {
		if err := m.server.Start(); err != nil {
			return m.failStart(fmt.Errorf("start websocket server: %w", err))
		}
	}

	if err := m.builder.Start(); err != nil {
		if m.server != nil {
			m.server.Stop()
		}
		return m.failStart(fmt.Errorf("start build workers: %w", err))
	}

	m.aggregator.Start()

	if err := m.watcher.Start(); err != nil {
		m.aggregator.Stop()
		m.builder.Stop()
		if m.server != nil {
			m.server.Stop()
		}
		return m.failStart(fmt.Errorf("start file watcher: %w", err))
	}

	m.mu.Lock()
	m.state = StateRunning
	m.startTime = time.Now()
	m.mu.Unlock()

	m.logger.Info("hot reload pipeline started",
		zap.Strings("directories", m.cfg.Watcher.Directories),
		zap.Duration("debounce", m.cfg.Watcher.Debounce),
		zap.Bool("notifications", m.server != nil))
	return nil
}

func (m *Manager) failStart(err error) error {
	m.mu.Lock()
	m.state = StateError
	m.lastErr = err
	m.mu.Unlock()
	m.logger.Error("hot reload pipeline failed to start", zap.Error(err))
	return err
}

// Stop shuts every component down in reverse start order. Stopping a
// pipeline that never started is a no-op.
func (m *Manager) Stop() {
	m.mu.Lock()
	if m.state != StateRunning && m.state != StatePaused {
		m.mu.Unlock()
		return
	}
	m.state = StateStopped
	m.mu.Unlock()

	m.watcher.Stop()
	m.aggregator.Stop()
	m.builder.Stop()
	if m.server != nil {
		m.server.Stop()
	}

	m.logger.Info("hot reload pipeline stopped")
}

// Pause keeps every component running but discards watch events, so no
// new builds are scheduled until Resume.
func (m *Manager) Pause() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != StateRunning {
		return ErrNotRunning
	}
	m.state = StatePaused
	m.logger.Info("hot reload pipeline paused")
	return nil
}

// Resume re-enables build scheduling after Pause. Changes made while
// paused are not replayed.
func (m *Manager) Resume() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != StatePaused {
		return ErrNotRunning
	}
	m.state = StateRunning
	m.logger.Info("hot reload pipeline resumed")
	return nil
}

// InjectCSS pushes css to every connected browser without a rebuild.
func (m *Manager) InjectCSS(css string) error {
	if !m.cfg.HotReload.EnableCSSInjection {
		return ErrCSSInjectionDisabled
	}
	if m.State() != StateRunning && m.State() != StatePaused {
		return ErrNotRunning
	}

	delivered, err := m.server.Broadcast(wsserver.NewCSSHotReload(nil, css))
	if err != nil {
		return fmt.Errorf("broadcast css: %w", err)
	}

	ev := newEvent(EventCSSInjected)
	ev.Success = true
	ev.Message = fmt.Sprintf("css delivered to %d clients", delivered)
	m.listeners.dispatch(ev)

	m.logger.Debug("css injected", zap.Int("clients", delivered))
	return nil
}

// RefreshBrowser asks every connected browser to do a full page reload.
func (m *Manager) RefreshBrowser(reason string) error {
	if m.server == nil {
		return ErrRefreshDisabled
	}
	if m.State() != StateRunning && m.State() != StatePaused {
		return ErrNotRunning
	}

	delivered, err := m.server.Broadcast(wsserver.NewFullReload(reason))
	if err != nil {
		return fmt.Errorf("broadcast reload: %w", err)
	}

	ev := newEvent(EventBrowserRefresh)
	ev.Success = true
	ev.Message = reason
	m.listeners.dispatch(ev)

	m.logger.Debug("browser refresh broadcast", zap.Int("clients", delivered), zap.String("reason", reason))
	return nil
}

// TriggerReload runs a full build immediately, bypassing the queue and
// debounce, then refreshes browsers when the build succeeds and
// auto-refresh is on.
func (m *Manager) TriggerReload(ctx context.Context) (builder.BuildResult, error) {
	if m.State() != StateRunning && m.State() != StatePaused {
		return builder.BuildResult{}, ErrNotRunning
	}

	result := m.builder.ReloadAll(ctx)
	if !result.Success {
		return result, fmt.Errorf("full rebuild failed: %s", strings.Join(result.Errors, "; "))
	}
	if m.cfg.HotReload.AutoRefreshBrowser {
		if err := m.RefreshBrowser("manual reload"); err != nil && !errors.Is(err, ErrRefreshDisabled) {
			return result, err
		}
	}
	return result, nil
}

// Stats snapshots the whole pipeline.
func (m *Manager) Stats() Stats {
	m.mu.RLock()
	state := m.state
	started := m.startTime
	m.mu.RUnlock()

	s := Stats{
		State:          state.String(),
		FilesWatched:   m.watcher.FileCount(),
		PendingChanges: m.aggregator.PendingCount(),
		QueueDepth:     m.builder.QueueDepth(),
		Builds:         m.builder.Stats(),
	}
	if m.server != nil {
		s.ConnectedClients = m.server.ClientCount()
	}
	if state == StateRunning || state == StatePaused {
		s.Uptime = time.Since(started)
	}
	return s
}

// Healthy reports whether the pipeline and its components are up.
func (m *Manager) Healthy() bool {
	if m.State() != StateRunning && m.State() != StatePaused {
		return false
	}
	if m.server != nil && m.server.State() != wsserver.StateRunning {
		return false
	}
	return m.watcher.IsRunning() && m.builder.IsRunning()
}

func (m *Manager) handleWatchEvent(ev watcher.WatchEvent) {
	if m.State() != StateRunning {
		return
	}
	m.metrics.WatchEvents.WithLabelValues(string(ev.Type)).Inc()

	le := newEvent(EventFileChanged)
	le.Paths = []string{ev.Path}
	le.Success = true
	le.Message = string(ev.Type)
	m.listeners.dispatch(le)

	if ev.IsDir {
		return
	}
	m.aggregator.Observe(ev.Path)
}

func (m *Manager) handleBatch(paths []string) {
	if m.State() != StateRunning {
		return
	}
	m.builder.Enqueue(paths)
}

func (m *Manager) handleBuildStart(task builder.BuildTask) {
	ev := newEvent(EventBuildStarted)
	ev.Paths = task.Files
	ev.Message = string(task.Type)
	m.listeners.dispatch(ev)

	if m.server != nil {
		msg := fmt.Sprintf("%s build started (%d files)", task.Type, len(task.Files))
		m.server.Broadcast(wsserver.NewBuildStatus("building", msg))
	}
}

func (m *Manager) handleBuildResult(task builder.BuildTask, result builder.BuildResult) {
	ev := newEvent(EventBuildCompleted)
	ev.Paths = task.Files
	ev.Success = result.Success
	ev.Errors = result.Errors
	ev.Message = string(task.Type)
	m.listeners.dispatch(ev)

	if !result.Success {
		errEv := newEvent(EventError)
		errEv.Paths = task.Files
		errEv.Errors = result.Errors
		errEv.Message = fmt.Sprintf("%s build failed", task.Type)
		m.listeners.dispatch(errEv)
	}

	if m.server == nil {
		return
	}

	if !result.Success {
		m.server.Broadcast(wsserver.NewBuildStatus("failed", strings.Join(result.Errors, "; ")))
		m.server.Broadcast(wsserver.NewError(fmt.Sprintf("%s build failed", task.Type), "build"))
		return
	}

	m.server.Broadcast(wsserver.NewBuildStatus("success",
		fmt.Sprintf("%s build finished in %s", task.Type, result.Duration.Round(time.Millisecond))))

	switch {
	case task.Type == builder.BuildHotReload && m.cfg.HotReload.EnableCSSInjection:
		m.server.Broadcast(wsserver.NewCSSHotReload(task.Files, ""))
	case m.cfg.HotReload.AutoRefreshBrowser:
		m.server.Broadcast(wsserver.NewFullReload(fmt.Sprintf("%s build succeeded", task.Type)))
	}
}
