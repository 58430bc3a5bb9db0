package builder

import "sync"

// taskQueue is a priority queue over build tasks: descending priority, FIFO
// within equal priority. At most one hot reload task is ever queued; a new
// one evicts the old.
type taskQueue struct {
	mu    sync.Mutex
	tasks []*BuildTask
}

func newTaskQueue() *taskQueue {
	return &taskQueue{}
}

// push inserts a task in priority order, coalescing hot reload tasks first.
func (q *taskQueue) push(task *BuildTask) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if task.Type == BuildHotReload {
		q.removeHotReloadLocked()
	}

	idx := len(q.tasks)
	for i, t := range q.tasks {
		if t.Priority < task.Priority {
			idx = i
			break
		}
	}
	q.tasks = append(q.tasks, nil)
	copy(q.tasks[idx+1:], q.tasks[idx:])
	q.tasks[idx] = task
}

// pushFront re-queues a task ahead of everything, used for retries.
func (q *taskQueue) pushFront(task *BuildTask) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.tasks = append([]*BuildTask{task}, q.tasks...)
}

// pop removes and returns the highest-priority task, or nil when empty.
func (q *taskQueue) pop() *BuildTask {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.tasks) == 0 {
		return nil
	}
	task := q.tasks[0]
	q.tasks = q.tasks[1:]
	return task
}

func (q *taskQueue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.tasks)
}

func (q *taskQueue) removeHotReloadLocked() {
	kept := q.tasks[:0]
	for _, t := range q.tasks {
		if t.Type != BuildHotReload {
			kept = append(kept, t)
		}
	}
	q.tasks = kept
}
