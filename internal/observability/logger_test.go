package observability

import (
	"testing"

	"github.com/leslieo2/go-hot-reload/internal/config"
)

func TestNewLogger(t *testing.T) {
	tests := []struct {
		name    string
		config  config.LoggingConfig
		wantErr bool
	}{
		{
			name: "production json",
			config: config.LoggingConfig{
				Level:       "info",
				Format:      "json",
				Output:      "stdout",
				Development: false,
			},
		},
		{
			name: "development console",
			config: config.LoggingConfig{
				Level:       "debug",
				Format:      "console",
				Output:      "stdout",
				Development: true,
			},
		},
		{
			name: "invalid level falls back to info",
			config: config.LoggingConfig{
				Level:  "invalid",
				Format: "json",
				Output: "stdout",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := NewLogger(tt.config)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewLogger() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && logger == nil {
				t.Fatal("NewLogger() returned nil logger")
			}
		})
	}
}

func TestNewNopLogger(t *testing.T) {
	logger := NewNopLogger()
	if logger == nil {
		t.Fatal("NewNopLogger() returned nil")
	}
	logger.Info("discarded")
}
