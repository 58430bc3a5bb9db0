package hotreload

import (
	"testing"
)

func TestListenerRegistry_DispatchOrder(t *testing.T) {
	reg := newListenerRegistry()

	var order []string
	reg.add("b", func(Event) { order = append(order, "b") })
	reg.add("a", func(Event) { order = append(order, "a") })
	reg.add("c", func(Event) { order = append(order, "c") })

	reg.dispatch(newEvent(EventFileChanged))

	want := []string{"b", "a", "c"}
	if len(order) != len(want) {
		t.Fatalf("dispatched to %d listeners, want %d", len(order), len(want))
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("dispatch order = %v, want %v", order, want)
		}
	}
}

func TestListenerRegistry_ReplaceKeepsPosition(t *testing.T) {
	reg := newListenerRegistry()

	var order []string
	reg.add("first", func(Event) { order = append(order, "first") })
	reg.add("second", func(Event) { order = append(order, "second") })
	reg.add("first", func(Event) { order = append(order, "replaced") })

	if reg.count() != 2 {
		t.Fatalf("count = %d, want 2", reg.count())
	}

	reg.dispatch(newEvent(EventError))
	if order[0] != "replaced" || order[1] != "second" {
		t.Fatalf("dispatch order = %v, want [replaced second]", order)
	}
}

func TestListenerRegistry_Remove(t *testing.T) {
	reg := newListenerRegistry()

	calls := 0
	reg.add("only", func(Event) { calls++ })
	reg.remove("only")
	reg.remove("missing") // no-op

	reg.dispatch(newEvent(EventBuildStarted))
	if calls != 0 {
		t.Fatalf("removed listener called %d times", calls)
	}
	if reg.count() != 0 {
		t.Fatalf("count = %d, want 0", reg.count())
	}
}

func TestListenerRegistry_ListenerCanRemoveItself(t *testing.T) {
	reg := newListenerRegistry()

	calls := 0
	reg.add("once", func(Event) {
		calls++
		reg.remove("once")
	})

	reg.dispatch(newEvent(EventBuildCompleted))
	reg.dispatch(newEvent(EventBuildCompleted))

	if calls != 1 {
		t.Fatalf("listener called %d times, want 1", calls)
	}
}
