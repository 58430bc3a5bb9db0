package hotreload

import "sync"

type namedListener struct {
	name string
	fn   Listener
}

// listenerRegistry keeps listeners in registration order and dispatches
// events to a snapshot taken outside the lock, so a listener may safely
// add or remove listeners from within its callback.
type listenerRegistry struct {
	mu        sync.RWMutex
	listeners []namedListener
}

func newListenerRegistry() *listenerRegistry {
	return &listenerRegistry{}
}

// add registers fn under name, replacing any listener with the same name
// while keeping its original position.
func (r *listenerRegistry) add(name string, fn Listener) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, l := range r.listeners {
		if l.name == name {
			r.listeners[i].fn = fn
			return
		}
	}
	r.listeners = append(r.listeners, namedListener{name: name, fn: fn})
}

func (r *listenerRegistry) remove(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, l := range r.listeners {
		if l.name == name {
			r.listeners = append(r.listeners[:i], r.listeners[i+1:]...)
			return
		}
	}
}

func (r *listenerRegistry) count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.listeners)
}

func (r *listenerRegistry) dispatch(ev Event) {
	r.mu.RLock()
	snapshot := make([]namedListener, len(r.listeners))
	copy(snapshot, r.listeners)
	r.mu.RUnlock()

	for _, l := range snapshot {
		l.fn(ev)
	}
}
