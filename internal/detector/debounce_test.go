package detector

import (
	"sync"
	"testing"
	"time"

	"github.com/leslieo2/go-hot-reload/internal/observability"
)

type batchCollector struct {
	mu      sync.Mutex
	batches [][]string
}

func (b *batchCollector) handle(paths []string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.batches = append(b.batches, paths)
}

func (b *batchCollector) count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.batches)
}

func TestSweep_DebounceIdempotence(t *testing.T) {
	collector := &batchCollector{}
	a := NewAggregator(50*time.Millisecond, collector.handle, observability.NewNopLogger())

	// N events on the same path within the window collapse to one entry.
	for i := 0; i < 10; i++ {
		a.Observe("src/main.css")
	}
	if got := a.PendingCount(); got != 1 {
		t.Fatalf("PendingCount() = %d, want 1", got)
	}

	// Not yet quiet long enough.
	a.sweep(time.Now())
	if collector.count() != 0 {
		t.Fatal("sweep fired before the debounce window elapsed")
	}

	// Past the window the path is batched exactly once.
	a.sweep(time.Now().Add(100 * time.Millisecond))
	if collector.count() != 1 {
		t.Fatalf("expected 1 batch, got %d", collector.count())
	}
	if got := collector.batches[0]; len(got) != 1 || got[0] != "src/main.css" {
		t.Fatalf("unexpected batch contents: %v", got)
	}
	if a.PendingCount() != 0 {
		t.Error("pending map should be empty after sweep")
	}

	// No second batch for the same quiescent period.
	a.sweep(time.Now().Add(time.Second))
	if collector.count() != 1 {
		t.Errorf("expected no further batches, got %d", collector.count())
	}
}

func TestSweep_RefreshDelaysBatch(t *testing.T) {
	collector := &batchCollector{}
	a := NewAggregator(200*time.Millisecond, collector.handle, observability.NewNopLogger())

	a.Observe("a.css")
	time.Sleep(100 * time.Millisecond)
	a.Observe("a.css") // refresh resets the quiet period

	a.sweep(time.Now().Add(150 * time.Millisecond))
	if collector.count() != 0 {
		t.Fatal("refreshed entry swept before its window elapsed")
	}

	a.sweep(time.Now().Add(250 * time.Millisecond))
	if collector.count() != 1 {
		t.Fatalf("expected 1 batch after window, got %d", collector.count())
	}
}

func TestSweep_BatchesMultiplePaths(t *testing.T) {
	collector := &batchCollector{}
	a := NewAggregator(10*time.Millisecond, collector.handle, observability.NewNopLogger())

	a.Observe("b.css")
	a.Observe("a.css")
	a.sweep(time.Now().Add(50 * time.Millisecond))

	if collector.count() != 1 {
		t.Fatalf("expected one combined batch, got %d", collector.count())
	}
	batch := collector.batches[0]
	if len(batch) != 2 || batch[0] != "a.css" || batch[1] != "b.css" {
		t.Fatalf("unexpected batch: %v", batch)
	}
}

func TestAggregator_StartStop(t *testing.T) {
	collector := &batchCollector{}
	a := NewAggregator(20*time.Millisecond, collector.handle, observability.NewNopLogger())

	a.Start()
	a.Start() // no-op

	a.Observe("live.css")

	deadline := time.After(2 * time.Second)
	for collector.count() == 0 {
		select {
		case <-deadline:
			t.Fatal("sweeper never produced a batch")
		case <-time.After(10 * time.Millisecond):
		}
	}

	a.Stop()
	a.Stop() // no-op
}
