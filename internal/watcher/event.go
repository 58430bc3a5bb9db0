package watcher

import (
	"io/fs"
	"time"
)

// EventType identifies the kind of change detected for a path.
type EventType string

const (
	EventCreated     EventType = "created"
	EventModified    EventType = "modified"
	EventDeleted     EventType = "deleted"
	EventRenamed     EventType = "renamed"
	EventDirCreated  EventType = "dir_created"
	EventDirDeleted  EventType = "dir_deleted"
	EventPermChanged EventType = "perm_changed"
	EventOther       EventType = "other"
)

// WatchEvent describes one detected file system change. Events are never
// mutated after creation.
type WatchEvent struct {
	Type      EventType
	Path      string
	OldPath   string // set only for rename events
	Size      int64
	IsDir     bool
	Timestamp time.Time
}

// FileState is the recorded snapshot of one watched path.
type FileState struct {
	ModTime time.Time
	Size    int64
	IsDir   bool
	Mode    fs.FileMode
}

func (s FileState) equal(o FileState) bool {
	return s.ModTime.Equal(o.ModTime) && s.Size == o.Size && s.IsDir == o.IsDir && s.Mode == o.Mode
}

// Handler receives watch events as they are detected.
type Handler func(WatchEvent)
