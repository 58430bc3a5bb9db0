package detector

import (
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/leslieo2/go-hot-reload/internal/constants"
	"github.com/leslieo2/go-hot-reload/internal/observability"
)

// BatchHandler receives one debounced batch of changed paths.
type BatchHandler func(paths []string)

// Aggregator coalesces bursts of file events. Each observed path refreshes
// its last-seen instant; a sweeper batches paths that have been quiet for the
// full debounce window. A path appears at most once in the pending map.
type Aggregator struct {
	debounce time.Duration
	handler  BatchHandler
	logger   *observability.Logger

	mu      sync.Mutex
	pending map[string]time.Time
	running bool

	done chan struct{}
	wg   sync.WaitGroup
}

func NewAggregator(debounce time.Duration, handler BatchHandler, logger *observability.Logger) *Aggregator {
	return &Aggregator{
		debounce: debounce,
		handler:  handler,
		logger:   logger,
		pending:  make(map[string]time.Time),
	}
}

// Observe refreshes the last-seen instant for a path. Work is never triggered
// from here; only the sweeper produces batches.
func (a *Aggregator) Observe(path string) {
	a.mu.Lock()
	a.pending[path] = time.Now()
	a.mu.Unlock()
}

// PendingCount returns the number of paths awaiting quiescence.
func (a *Aggregator) PendingCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.pending)
}

// Start spawns the sweeper loop.
func (a *Aggregator) Start() {
	a.mu.Lock()
	if a.running {
		a.mu.Unlock()
		return
	}
	a.running = true
	a.done = make(chan struct{})
	a.mu.Unlock()

	a.wg.Add(1)
	go a.sweepLoop()
	a.logger.Info("debounce aggregator started", zap.Duration("debounce", a.debounce))
}

// Stop terminates the sweeper. Safe to call multiple times.
func (a *Aggregator) Stop() {
	a.mu.Lock()
	if !a.running {
		a.mu.Unlock()
		return
	}
	a.running = false
	close(a.done)
	a.mu.Unlock()

	a.wg.Wait()
	a.logger.Info("debounce aggregator stopped")
}

func (a *Aggregator) sweepLoop() {
	defer a.wg.Done()

	ticker := time.NewTicker(constants.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-a.done:
			return
		case <-ticker.C:
			a.sweep(time.Now())
		}
	}
}

// sweep removes entries quiet for at least the debounce window and hands them
// to the handler as one batch. The handler runs outside the lock.
func (a *Aggregator) sweep(now time.Time) {
	a.mu.Lock()
	var batch []string
	for path, lastSeen := range a.pending {
		if now.Sub(lastSeen) >= a.debounce {
			batch = append(batch, path)
			delete(a.pending, path)
		}
	}
	a.mu.Unlock()

	if len(batch) == 0 {
		return
	}
	sort.Strings(batch)

	a.logger.Debug("debounced change batch", zap.Int("files", len(batch)))
	a.handler(batch)
}
