package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/leslieo2/go-hot-reload/internal/constants"
)

// WatcherConfig contains file watcher configuration
type WatcherConfig struct {
	Directories    []string      `json:"directories" yaml:"directories"`
	Extensions     []string      `json:"extensions" yaml:"extensions"`
	IgnorePatterns []string      `json:"ignore_patterns" yaml:"ignore_patterns"`
	PollInterval   time.Duration `json:"poll_interval" yaml:"poll_interval"`
	Debounce       time.Duration `json:"debounce" yaml:"debounce"`
	MaxFiles       int           `json:"max_files" yaml:"max_files"`
	MaxDepth       int           `json:"max_depth" yaml:"max_depth"`
}

// DefaultWatcherConfig returns default watcher configuration
func DefaultWatcherConfig() WatcherConfig {
	return WatcherConfig{
		Directories:    []string{"src"},
		Extensions:     []string{".css", ".scss", ".sass", ".less", ".html", ".js", ".ts", ".go", ".rs"},
		IgnorePatterns: []string{"target/**", "node_modules/**", "**/.git/**", "**/*.tmp", "**/*.swp"},
		PollInterval:   500 * time.Millisecond,
		Debounce:       300 * time.Millisecond,
		MaxFiles:       constants.WatcherMaxFiles,
		MaxDepth:       constants.WatcherMaxDepth,
	}
}

// Validate validates watcher configuration
func (w *WatcherConfig) Validate() error {
	if len(w.Directories) == 0 {
		return fmt.Errorf("at least one watch directory is required")
	}
	if w.PollInterval <= 0 {
		return fmt.Errorf("poll interval must be positive")
	}
	if w.Debounce < 0 {
		return fmt.Errorf("debounce time must be non-negative")
	}
	if w.MaxFiles <= 0 {
		return fmt.Errorf("max files must be positive")
	}
	if w.MaxDepth <= 0 {
		return fmt.Errorf("max depth must be positive")
	}
	for _, ext := range w.Extensions {
		if !strings.HasPrefix(ext, ".") {
			return fmt.Errorf("extension %q must start with a dot", ext)
		}
	}
	return nil
}
