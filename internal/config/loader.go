package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/leslieo2/go-hot-reload/internal/constants"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// LoadConfig loads configuration with precedence:
// 1. Explicit CLI flags (highest priority)
// 2. Environment variables
// 3. Configuration file values
// 4. Default configuration values (lowest priority)
func LoadConfig(configFile string, cliFlags *CLIFlags) (*Config, error) {
	config := DefaultConfig()

	if configFile != "" {
		fileConfig, err := loadFromFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
		mergeConfig(config, fileConfig)
	}

	loadFromEnv(config)

	if cliFlags != nil {
		overrideWithCLI(config, cliFlags)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// CLIFlags contains CLI flag values that can override configuration
// This struct is used to pass CLI flag values without using the flag package directly
type CLIFlags struct {
	WatchDirs         *[]string
	WatchExtensions   *[]string
	IgnorePatterns    *[]string
	PollInterval      *time.Duration
	Debounce          *time.Duration
	Host              *string
	Port              *string
	MetricsPort       *string
	MaxConnections    *int
	HeartbeatInterval *time.Duration
	ConnectionTimeout *time.Duration
	AutoRefresh       *bool
	CSSInjection      *bool
	BuildCommand      *string
	BuildArgs         *[]string
	BuildDir          *string
	BuildTimeout      *time.Duration
	MaxRetries        *int
	RetryInterval     *time.Duration
	Workers           *int
	LogLevel          *string
}

// loadFromFile loads configuration from a YAML or JSON file
func loadFromFile(filePath string) (*Config, error) {
	if !filepath.IsAbs(filePath) {
		absPath, err := filepath.Abs(filePath)
		if err != nil {
			return nil, fmt.Errorf("failed to get absolute path for %s: %w", filePath, err)
		}
		filePath = absPath
	}

	if strings.Contains(filepath.Clean(filePath), "..") {
		return nil, fmt.Errorf("invalid config file path %s: path contains directory traversal attempts", filePath)
	}

	data, err := os.ReadFile(filePath) // #nosec G304 - file path validated above
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", filePath, err)
	}

	config := &Config{}
	ext := filepath.Ext(filePath)
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, config)
	case ".json":
		err = json.Unmarshal(data, config)
	default:
		return nil, fmt.Errorf("unsupported config file format: %s", ext)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", filePath, err)
	}

	return config, nil
}

// loadFromEnv loads configuration from environment variables
func loadFromEnv(config *Config) {
	if val := os.Getenv(constants.EnvWatchDirs); val != "" {
		config.Watcher.Directories = splitList(val)
	}
	if val := os.Getenv(constants.EnvWatchExtensions); val != "" {
		config.Watcher.Extensions = splitList(val)
	}
	if val := os.Getenv(constants.EnvIgnorePatterns); val != "" {
		config.Watcher.IgnorePatterns = splitList(val)
	}
	if val := os.Getenv(constants.EnvPollInterval); val != "" {
		if duration, err := time.ParseDuration(val); err == nil {
			config.Watcher.PollInterval = duration
		}
	}
	if val := os.Getenv(constants.EnvDebounce); val != "" {
		if duration, err := time.ParseDuration(val); err == nil {
			config.Watcher.Debounce = duration
		}
	}
	if val := os.Getenv(constants.EnvHost); val != "" {
		config.WebSocket.Host = val
	}
	if val := os.Getenv(constants.EnvPort); val != "" {
		config.WebSocket.Port = val
	}
	if val := os.Getenv(constants.EnvMetricsPort); val != "" {
		config.Observability.Metrics.Port = val
	}
	if val := os.Getenv(constants.EnvMaxConnections); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			config.WebSocket.MaxConnections = n
		}
	}
	if val := os.Getenv(constants.EnvHeartbeatInterval); val != "" {
		if duration, err := time.ParseDuration(val); err == nil {
			config.WebSocket.HeartbeatInterval = duration
		}
	}
	if val := os.Getenv(constants.EnvConnectionTimeout); val != "" {
		if duration, err := time.ParseDuration(val); err == nil {
			config.WebSocket.ConnectionTimeout = duration
		}
	}
	if val := os.Getenv(constants.EnvAutoRefresh); val != "" {
		if enabled, err := strconv.ParseBool(val); err == nil {
			config.HotReload.AutoRefreshBrowser = enabled
		}
	}
	if val := os.Getenv(constants.EnvCSSInjection); val != "" {
		if enabled, err := strconv.ParseBool(val); err == nil {
			config.HotReload.EnableCSSInjection = enabled
		}
	}
	if val := os.Getenv(constants.EnvBuildCommand); val != "" {
		config.Build.Command = val
	}
	if val := os.Getenv(constants.EnvBuildTimeout); val != "" {
		if duration, err := time.ParseDuration(val); err == nil {
			config.Build.Timeout = duration
		}
	}
	if val := os.Getenv(constants.EnvMaxRetries); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			config.Build.MaxRetries = n
		}
	}
	if val := os.Getenv(constants.EnvRetryInterval); val != "" {
		if duration, err := time.ParseDuration(val); err == nil {
			config.Build.RetryInterval = duration
		}
	}
	if val := os.Getenv(constants.EnvWorkers); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			config.Build.Workers = n
		}
	}
	if val := os.Getenv(constants.EnvLogLevel); val != "" {
		config.Observability.Logging.Level = val
	}
}

// overrideWithCLI overrides configuration with CLI flag values
// Only explicitly set CLI flags override other configuration sources
func overrideWithCLI(config *Config, flags *CLIFlags) {
	if flags == nil {
		return
	}

	if flags.WatchDirs != nil && flagChanged("watch-dir") {
		config.Watcher.Directories = *flags.WatchDirs
	}
	if flags.WatchExtensions != nil && flagChanged("extension") {
		config.Watcher.Extensions = *flags.WatchExtensions
	}
	if flags.IgnorePatterns != nil && flagChanged("ignore") {
		config.Watcher.IgnorePatterns = *flags.IgnorePatterns
	}
	if flags.PollInterval != nil && flagChanged("poll-interval") {
		config.Watcher.PollInterval = *flags.PollInterval
	}
	if flags.Debounce != nil && flagChanged("debounce") {
		config.Watcher.Debounce = *flags.Debounce
	}
	if flags.Host != nil && flagChanged("host") {
		config.WebSocket.Host = *flags.Host
	}
	if flags.Port != nil && flagChanged("port") {
		config.WebSocket.Port = *flags.Port
	}
	if flags.MetricsPort != nil && flagChanged("metrics-port") {
		config.Observability.Metrics.Port = *flags.MetricsPort
	}
	if flags.MaxConnections != nil && flagChanged("max-connections") {
		config.WebSocket.MaxConnections = *flags.MaxConnections
	}
	if flags.HeartbeatInterval != nil && flagChanged("heartbeat-interval") {
		config.WebSocket.HeartbeatInterval = *flags.HeartbeatInterval
	}
	if flags.ConnectionTimeout != nil && flagChanged("connection-timeout") {
		config.WebSocket.ConnectionTimeout = *flags.ConnectionTimeout
	}
	if flags.AutoRefresh != nil && flagChanged("auto-refresh") {
		config.HotReload.AutoRefreshBrowser = *flags.AutoRefresh
	}
	if flags.CSSInjection != nil && flagChanged("css-injection") {
		config.HotReload.EnableCSSInjection = *flags.CSSInjection
	}
	if flags.BuildCommand != nil && flagChanged("build-command") {
		config.Build.Command = *flags.BuildCommand
	}
	if flags.BuildArgs != nil && flagChanged("build-arg") {
		config.Build.Args = *flags.BuildArgs
	}
	if flags.BuildDir != nil && flagChanged("build-dir") {
		config.Build.WorkingDir = *flags.BuildDir
	}
	if flags.BuildTimeout != nil && flagChanged("build-timeout") {
		config.Build.Timeout = *flags.BuildTimeout
	}
	if flags.MaxRetries != nil && flagChanged("max-retries") {
		config.Build.MaxRetries = *flags.MaxRetries
	}
	if flags.RetryInterval != nil && flagChanged("retry-interval") {
		config.Build.RetryInterval = *flags.RetryInterval
	}
	if flags.Workers != nil && flagChanged("workers") {
		config.Build.Workers = *flags.Workers
	}
	if flags.LogLevel != nil && flagChanged("log-level") {
		config.Observability.Logging.Level = *flags.LogLevel
	}
}

func flagChanged(name string) bool {
	f := pflag.Lookup(name)
	return f != nil && f.Changed
}

// mergeConfig merges file configuration into the base configuration
func mergeConfig(base *Config, file *Config) {
	if len(file.Watcher.Directories) > 0 {
		base.Watcher.Directories = file.Watcher.Directories
	}
	if len(file.Watcher.Extensions) > 0 {
		base.Watcher.Extensions = file.Watcher.Extensions
	}
	if len(file.Watcher.IgnorePatterns) > 0 {
		base.Watcher.IgnorePatterns = file.Watcher.IgnorePatterns
	}
	if file.Watcher.PollInterval > 0 {
		base.Watcher.PollInterval = file.Watcher.PollInterval
	}
	if file.Watcher.Debounce > 0 {
		base.Watcher.Debounce = file.Watcher.Debounce
	}
	if file.Watcher.MaxFiles > 0 {
		base.Watcher.MaxFiles = file.Watcher.MaxFiles
	}
	if file.Watcher.MaxDepth > 0 {
		base.Watcher.MaxDepth = file.Watcher.MaxDepth
	}

	if file.Build.Command != "" {
		base.Build.Command = file.Build.Command
	}
	if len(file.Build.Args) > 0 {
		base.Build.Args = file.Build.Args
	}
	if file.Build.WorkingDir != "" {
		base.Build.WorkingDir = file.Build.WorkingDir
	}
	if len(file.Build.Env) > 0 {
		base.Build.Env = file.Build.Env
	}
	if file.Build.Timeout > 0 {
		base.Build.Timeout = file.Build.Timeout
	}
	if file.Build.MaxRetries > 0 {
		base.Build.MaxRetries = file.Build.MaxRetries
	}
	if file.Build.RetryInterval > 0 {
		base.Build.RetryInterval = file.Build.RetryInterval
	}
	if file.Build.RetryOnFailure != base.Build.RetryOnFailure {
		base.Build.RetryOnFailure = file.Build.RetryOnFailure
	}
	if file.Build.Workers > 0 {
		base.Build.Workers = file.Build.Workers
	}

	if file.WebSocket.Host != "" {
		base.WebSocket.Host = file.WebSocket.Host
	}
	if file.WebSocket.Port != "" {
		base.WebSocket.Port = file.WebSocket.Port
	}
	if file.WebSocket.MaxConnections > 0 {
		base.WebSocket.MaxConnections = file.WebSocket.MaxConnections
	}
	if file.WebSocket.HeartbeatInterval > 0 {
		base.WebSocket.HeartbeatInterval = file.WebSocket.HeartbeatInterval
	}
	if file.WebSocket.ConnectionTimeout > 0 {
		base.WebSocket.ConnectionTimeout = file.WebSocket.ConnectionTimeout
	}
	if file.WebSocket.AdmissionRPS > 0 {
		base.WebSocket.AdmissionRPS = file.WebSocket.AdmissionRPS
	}
	if file.WebSocket.AdmissionBurst > 0 {
		base.WebSocket.AdmissionBurst = file.WebSocket.AdmissionBurst
	}

	if file.HotReload.AutoRefreshBrowser != base.HotReload.AutoRefreshBrowser {
		base.HotReload.AutoRefreshBrowser = file.HotReload.AutoRefreshBrowser
	}
	if file.HotReload.EnableCSSInjection != base.HotReload.EnableCSSInjection {
		base.HotReload.EnableCSSInjection = file.HotReload.EnableCSSInjection
	}

	if file.Observability.Logging.Level != "" {
		base.Observability.Logging.Level = file.Observability.Logging.Level
	}
	if file.Observability.Logging.Format != "" {
		base.Observability.Logging.Format = file.Observability.Logging.Format
	}
	if file.Observability.Logging.Output != "" {
		base.Observability.Logging.Output = file.Observability.Logging.Output
	}
	if file.Observability.Metrics.Enabled != base.Observability.Metrics.Enabled {
		base.Observability.Metrics = file.Observability.Metrics
	}
	if file.Observability.Metrics.Port != "" {
		base.Observability.Metrics.Port = file.Observability.Metrics.Port
	}
	if file.Observability.Metrics.Path != "" {
		base.Observability.Metrics.Path = file.Observability.Metrics.Path
	}
	if file.Observability.Tracing.Enabled != base.Observability.Tracing.Enabled {
		base.Observability.Tracing = file.Observability.Tracing
	}
}

func splitList(val string) []string {
	parts := strings.Split(val, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
