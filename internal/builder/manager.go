package builder

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/leslieo2/go-hot-reload/internal/config"
	"github.com/leslieo2/go-hot-reload/internal/constants"
	"github.com/leslieo2/go-hot-reload/internal/detector"
	"github.com/leslieo2/go-hot-reload/internal/observability"
)

var ErrAlreadyRunning = errors.New("reload manager already running")

// StartHandler is invoked when a worker begins a task attempt.
type StartHandler func(task BuildTask)

// ResultHandler is invoked once per terminal outcome: a success, or a failure
// that has exhausted its retries.
type ResultHandler func(task BuildTask, result BuildResult)

// Manager owns the build queue and the worker pool. It executes the external
// build command per task, retries failures up to the configured limit, and
// keeps running statistics.
type Manager struct {
	cfg     config.BuildConfig
	logger  *observability.Logger
	metrics *observability.Metrics
	tracer  *observability.Tracer

	queue *taskQueue
	stats *statsTracker

	mu       sync.Mutex
	onStart  StartHandler
	onResult ResultHandler
	running  bool

	done chan struct{}
	wg   sync.WaitGroup
}

func NewManager(cfg config.BuildConfig, logger *observability.Logger, metrics *observability.Metrics, tracer *observability.Tracer) *Manager {
	return &Manager{
		cfg:     cfg,
		logger:  logger,
		metrics: metrics,
		tracer:  tracer,
		queue:   newTaskQueue(),
		stats:   newStatsTracker(),
	}
}

// OnStart registers the task-started callback. Must be set before Start.
func (m *Manager) OnStart(h StartHandler) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onStart = h
}

// OnResult registers the terminal-outcome callback. Must be set before Start.
func (m *Manager) OnResult(h ResultHandler) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onResult = h
}

// Enqueue classifies a debounced batch into one build task and queues it.
// Returns the queued task.
func (m *Manager) Enqueue(files []string) *BuildTask {
	changes := detector.ClassifyAll(files)
	buildType, priority := classifyTask(changes, m.cfg.Incremental)
	task := newTask(files, buildType, priority)

	m.queue.push(task)
	m.metrics.QueueDepth.Set(float64(m.queue.len()))

	m.logger.Info("build task queued",
		zap.String("task_id", task.ID),
		zap.String("build_type", string(task.Type)),
		zap.Int("priority", task.Priority),
		zap.Int("files", len(task.Files)))
	return task
}

// ReloadAll builds everything immediately, bypassing the queue.
func (m *Manager) ReloadAll(ctx context.Context) BuildResult {
	task := newTask(nil, BuildFull, detector.ChangeFull.Priority())
	return m.runDirect(ctx, task)
}

// IncrementalBuild builds the given files immediately, bypassing the queue.
func (m *Manager) IncrementalBuild(ctx context.Context, files []string) BuildResult {
	task := newTask(files, BuildIncremental, detector.ChangeIncremental.Priority())
	return m.runDirect(ctx, task)
}

func (m *Manager) runDirect(ctx context.Context, task *BuildTask) BuildResult {
	m.notifyStart(*task)
	result := m.execute(ctx, task)
	m.record(result)
	m.notifyResult(*task, result)
	return result
}

// Start launches the worker pool.
func (m *Manager) Start() error {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return ErrAlreadyRunning
	}
	m.running = true
	m.done = make(chan struct{})
	m.mu.Unlock()

	workers := m.cfg.Workers
	if workers > constants.MaxBuildWorkers {
		workers = constants.MaxBuildWorkers
	}
	for i := 0; i < workers; i++ {
		m.wg.Add(1)
		go m.workerLoop(i)
	}
	m.logger.Info("reload manager started", zap.Int("workers", workers))
	return nil
}

// Stop terminates the worker pool. Safe to call multiple times.
func (m *Manager) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	m.running = false
	close(m.done)
	m.mu.Unlock()

	m.wg.Wait()
	m.logger.Info("reload manager stopped")
}

// IsRunning returns whether the worker pool is active.
func (m *Manager) IsRunning() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

// Stats returns a copy of the running build statistics.
func (m *Manager) Stats() BuildStats {
	return m.stats.snapshot()
}

// QueueDepth returns the number of queued tasks.
func (m *Manager) QueueDepth() int {
	return m.queue.len()
}

func (m *Manager) workerLoop(id int) {
	defer m.wg.Done()

	ticker := time.NewTicker(constants.QueuePollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-m.done:
			return
		case <-ticker.C:
			for {
				task := m.queue.pop()
				if task == nil {
					break
				}
				m.metrics.QueueDepth.Set(float64(m.queue.len()))
				m.runTask(task, id)

				select {
				case <-m.done:
					return
				default:
				}
			}
		}
	}
}

// runTask executes one attempt and either retries or surfaces the terminal
// outcome.
func (m *Manager) runTask(task *BuildTask, workerID int) {
	m.logger.Debug("worker building",
		zap.Int("worker", workerID),
		zap.String("task_id", task.ID),
		zap.Int("retry", task.RetryCount))
	m.notifyStart(*task)

	result := m.execute(context.Background(), task)
	m.record(result)

	if !result.Success && m.cfg.RetryOnFailure && task.RetryCount < m.cfg.MaxRetries {
		task.RetryCount++
		m.metrics.BuildRetries.Inc()
		m.logger.Warn("build failed, retrying",
			zap.String("task_id", task.ID),
			zap.Int("retry", task.RetryCount),
			zap.Int("max_retries", m.cfg.MaxRetries))

		select {
		case <-m.done:
			return
		case <-time.After(m.cfg.RetryInterval):
		}
		m.queue.pushFront(task)
		m.metrics.QueueDepth.Set(float64(m.queue.len()))
		return
	}

	if result.Success {
		m.logger.Info("build succeeded",
			zap.String("task_id", task.ID),
			zap.Duration("duration", result.Duration))
	} else {
		m.logger.Error("build failed",
			zap.String("task_id", task.ID),
			zap.Int("exit_code", result.ExitCode),
			zap.Strings("errors", result.Errors))
	}
	m.notifyResult(*task, result)
}

func (m *Manager) record(result BuildResult) {
	m.stats.record(result)
	m.metrics.RecordBuild(string(result.Type), result.Success, result.Duration)
}

func (m *Manager) notifyStart(task BuildTask) {
	m.mu.Lock()
	h := m.onStart
	m.mu.Unlock()
	if h != nil {
		h(task)
	}
}

func (m *Manager) notifyResult(task BuildTask, result BuildResult) {
	m.mu.Lock()
	h := m.onResult
	m.mu.Unlock()
	if h != nil {
		h(task, result)
	}
}
