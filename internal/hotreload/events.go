package hotreload

import "time"

// EventType identifies one pipeline lifecycle notification.
type EventType string

const (
	EventFileChanged    EventType = "file_changed"
	EventBuildStarted   EventType = "build_started"
	EventBuildCompleted EventType = "build_completed"
	EventCSSInjected    EventType = "css_injected"
	EventBrowserRefresh EventType = "browser_refresh"
	EventError          EventType = "error"
)

// Event is delivered to registered listeners as the pipeline progresses.
type Event struct {
	Type      EventType
	Paths     []string
	Success   bool
	Errors    []string
	Message   string
	Timestamp time.Time
}

// Listener receives pipeline events. Listeners are invoked synchronously
// in registration order; a slow listener delays the pipeline.
type Listener func(Event)

func newEvent(t EventType) Event {
	return Event{Type: t, Timestamp: time.Now()}
}
