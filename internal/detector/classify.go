package detector

import (
	"path/filepath"
	"strings"
	"time"
)

// ChangeType describes how expensive it is to apply a file change.
type ChangeType int

const (
	// ChangeHotReload can be pushed to a running page without a rebuild of
	// anything but styles.
	ChangeHotReload ChangeType = iota
	// ChangeIncremental needs a rebuild of the affected unit.
	ChangeIncremental
	// ChangeFull needs a rebuild of everything.
	ChangeFull
)

func (c ChangeType) String() string {
	switch c {
	case ChangeHotReload:
		return "hot_reload"
	case ChangeIncremental:
		return "incremental"
	case ChangeFull:
		return "full"
	}
	return "unknown"
}

// Priority orders change types for build scheduling. Full rebuilds outrank
// incremental ones, which outrank cheap hot reloads.
func (c ChangeType) Priority() int {
	switch c {
	case ChangeFull:
		return 3
	case ChangeIncremental:
		return 2
	default:
		return 1
	}
}

// FileChange is one classified change.
type FileChange struct {
	Path       string
	Type       ChangeType
	DetectedAt time.Time
}

// Critical reports whether the change forces a full rebuild regardless of
// what else is in the batch.
func (f FileChange) Critical() bool {
	return isCriticalFile(f.Path)
}

var hotReloadExtensions = map[string]bool{
	".css":  true,
	".scss": true,
	".sass": true,
	".less": true,
}

// criticalFiles are build manifests and scripts whose change invalidates the
// whole build graph.
var criticalFiles = map[string]bool{
	"go.mod":            true,
	"go.sum":            true,
	"cargo.toml":        true,
	"cargo.lock":        true,
	"package.json":      true,
	"package-lock.json": true,
	"yarn.lock":         true,
	"makefile":          true,
	"build.rs":          true,
	"build.sh":          true,
}

func isCriticalFile(path string) bool {
	return criticalFiles[strings.ToLower(filepath.Base(path))]
}

// Classify maps a changed path to its change type.
func Classify(path string) FileChange {
	fc := FileChange{Path: path, DetectedAt: time.Now()}
	switch {
	case isCriticalFile(path):
		fc.Type = ChangeFull
	case hotReloadExtensions[strings.ToLower(filepath.Ext(path))]:
		fc.Type = ChangeHotReload
	default:
		fc.Type = ChangeIncremental
	}
	return fc
}

// ClassifyAll classifies a batch of paths.
func ClassifyAll(paths []string) []FileChange {
	changes := make([]FileChange, 0, len(paths))
	for _, p := range paths {
		changes = append(changes, Classify(p))
	}
	return changes
}
