package builder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueue_PriorityOrder(t *testing.T) {
	q := newTaskQueue()
	low := newTask(nil, BuildHotReload, 1)
	high := newTask(nil, BuildFull, 3)
	mid := newTask(nil, BuildIncremental, 2)

	q.push(low)
	q.push(high)
	q.push(mid)

	assert.Equal(t, high.ID, q.pop().ID)
	assert.Equal(t, mid.ID, q.pop().ID)
	assert.Equal(t, low.ID, q.pop().ID)
	assert.Nil(t, q.pop())
}

func TestQueue_FIFOWithinPriority(t *testing.T) {
	q := newTaskQueue()
	first := newTask(nil, BuildIncremental, 2)
	second := newTask(nil, BuildIncremental, 2)

	q.push(first)
	q.push(second)

	assert.Equal(t, first.ID, q.pop().ID)
	assert.Equal(t, second.ID, q.pop().ID)
}

func TestQueue_HotReloadCoalescing(t *testing.T) {
	q := newTaskQueue()
	stale := newTask([]string{"a.css"}, BuildHotReload, 1)
	fresh := newTask([]string{"b.css"}, BuildHotReload, 1)

	q.push(stale)
	q.push(fresh)

	require.Equal(t, 1, q.len(), "enqueuing two hot reload tasks must leave exactly one")
	assert.Equal(t, fresh.ID, q.pop().ID)
}

func TestQueue_CoalescingKeepsOtherTypes(t *testing.T) {
	q := newTaskQueue()
	full := newTask(nil, BuildFull, 3)
	hot := newTask(nil, BuildHotReload, 1)
	replacement := newTask(nil, BuildHotReload, 1)

	q.push(full)
	q.push(hot)
	q.push(replacement)

	assert.Equal(t, 2, q.len())
	assert.Equal(t, full.ID, q.pop().ID)
	assert.Equal(t, replacement.ID, q.pop().ID)
}

func TestQueue_PushFront(t *testing.T) {
	q := newTaskQueue()
	queued := newTask(nil, BuildFull, 3)
	retried := newTask(nil, BuildIncremental, 2)

	q.push(queued)
	q.pushFront(retried)

	assert.Equal(t, retried.ID, q.pop().ID, "retried task must jump the queue")
	assert.Equal(t, queued.ID, q.pop().ID)
}
