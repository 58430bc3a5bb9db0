package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/leslieo2/go-hot-reload/internal/config"
	"github.com/leslieo2/go-hot-reload/internal/hotreload"
	"github.com/leslieo2/go-hot-reload/internal/observability"
)

var version = "dev"

func main() {
	// Parse CLI flags
	configFile := pflag.String("config", "", "Path to configuration file (YAML or JSON)")
	showVersion := pflag.Bool("version", false, "Print version and exit")

	// Watcher configuration
	watchDirs := pflag.StringSlice("watch-dir", []string{"src"}, "Directory to watch (repeatable)")
	extensions := pflag.StringSlice("extension", nil, "File extension to watch, e.g. .css (repeatable; empty watches everything)")
	ignorePatterns := pflag.StringSlice("ignore", nil, "Glob pattern to ignore, e.g. 'target/**' (repeatable)")
	pollInterval := pflag.Duration("poll-interval", 500*time.Millisecond, "File system polling interval")
	debounce := pflag.Duration("debounce", 300*time.Millisecond, "Quiet period before a batch of changes is built")

	// WebSocket configuration
	host := pflag.String("host", "localhost", "Host for the browser notification server")
	port := pflag.String("port", "35729", "Port for the browser notification server")
	metricsPort := pflag.String("metrics-port", "9090", "Port for the metrics and health server")
	maxConnections := pflag.Int("max-connections", 100, "Maximum concurrent browser connections")
	heartbeatInterval := pflag.Duration("heartbeat-interval", 30*time.Second, "Interval between server heartbeat pings")
	connectionTimeout := pflag.Duration("connection-timeout", 5*time.Minute, "Idle time before a browser connection is evicted")

	// Hot reload behavior
	autoRefresh := pflag.Bool("auto-refresh", true, "Refresh browsers after successful builds")
	cssInjection := pflag.Bool("css-injection", true, "Push CSS changes without a full page reload")

	// Build configuration
	buildCommand := pflag.String("build-command", "make", "Command to run for rebuilds")
	buildArgs := pflag.StringSlice("build-arg", nil, "Argument passed to the build command (repeatable)")
	buildDir := pflag.String("build-dir", "", "Working directory for the build command")
	buildTimeout := pflag.Duration("build-timeout", 5*time.Minute, "Maximum duration of a single build")
	maxRetries := pflag.Int("max-retries", 2, "Retries after a failed build")
	retryInterval := pflag.Duration("retry-interval", time.Second, "Delay before retrying a failed build")
	workers := pflag.Int("workers", 2, "Concurrent build workers")

	// Observability
	logLevel := pflag.String("log-level", "info", "Log level: debug, info, warn, error")

	pflag.Usage = printUsage
	pflag.Parse()

	if *showVersion {
		fmt.Printf("go-hot-reload %s\n", version)
		return
	}

	cliFlags := &config.CLIFlags{
		WatchDirs:         watchDirs,
		WatchExtensions:   extensions,
		IgnorePatterns:    ignorePatterns,
		PollInterval:      pollInterval,
		Debounce:          debounce,
		Host:              host,
		Port:              port,
		MetricsPort:       metricsPort,
		MaxConnections:    maxConnections,
		HeartbeatInterval: heartbeatInterval,
		ConnectionTimeout: connectionTimeout,
		AutoRefresh:       autoRefresh,
		CSSInjection:      cssInjection,
		BuildCommand:      buildCommand,
		BuildArgs:         buildArgs,
		BuildDir:          buildDir,
		BuildTimeout:      buildTimeout,
		MaxRetries:        maxRetries,
		RetryInterval:     retryInterval,
		Workers:           workers,
		LogLevel:          logLevel,
	}

	// Load configuration with precedence (CLI > Env > File > Defaults)
	cfg, err := config.LoadConfig(*configFile, cliFlags)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Observability.Logging)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	metrics := observability.NewMetrics()
	if err := metrics.Register(); err != nil {
		logger.Fatal("failed to register metrics", zap.Error(err))
	}

	tracer, err := observability.NewTracer(cfg.Observability.Tracing)
	if err != nil {
		logger.Fatal("failed to initialize tracer", zap.Error(err))
	}

	manager := hotreload.New(cfg, logger, metrics, tracer)

	var health *observability.HealthServer
	if cfg.Observability.Metrics.Enabled {
		health = observability.NewHealthServer(
			cfg.MetricsAddress(), cfg.Observability.Metrics.Path, version, metrics, logger)
		health.AddCheck("pipeline", manager.Healthy)
		go func() {
			if err := health.Start(); err != nil {
				logger.Error("metrics server stopped", zap.Error(err))
			}
		}()
	}

	if err := manager.Start(); err != nil {
		logger.Fatal("failed to start hot reload pipeline", zap.Error(err))
	}
	metrics.SetHealthStatus(true)

	logger.Info("go-hot-reload running",
		zap.String("version", version),
		zap.Strings("watch_dirs", cfg.Watcher.Directories),
		zap.String("websocket", cfg.WebSocketAddress()),
		zap.String("build_command", cfg.Build.Command))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))

	metrics.SetHealthStatus(false)
	manager.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if health != nil {
		if err := health.Shutdown(ctx); err != nil {
			logger.Error("metrics server shutdown failed", zap.Error(err))
		}
	}
	if err := tracer.Shutdown(ctx); err != nil {
		logger.Error("tracer shutdown failed", zap.Error(err))
	}
}

// printUsage prints the usage information
func printUsage() {
	fmt.Fprintf(os.Stderr, "Usage: %s [flags]\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "\nConfiguration options:\n")
	fmt.Fprintf(os.Stderr, "  --config\t\tPath to configuration file (YAML or JSON)\n")
	fmt.Fprintf(os.Stderr, "\nWatcher configuration:\n")
	fmt.Fprintf(os.Stderr, "  --watch-dir\t\tDirectory to watch, repeatable (default: src)\n")
	fmt.Fprintf(os.Stderr, "  --extension\t\tFile extension to watch, repeatable (default: all files)\n")
	fmt.Fprintf(os.Stderr, "  --ignore\t\tGlob pattern to ignore, repeatable\n")
	fmt.Fprintf(os.Stderr, "  --poll-interval\tFile system polling interval (default: 500ms)\n")
	fmt.Fprintf(os.Stderr, "  --debounce\t\tQuiet period before building a batch (default: 300ms)\n")
	fmt.Fprintf(os.Stderr, "\nBrowser notification:\n")
	fmt.Fprintf(os.Stderr, "  --host\t\tNotification server host (default: localhost)\n")
	fmt.Fprintf(os.Stderr, "  --port\t\tNotification server port (default: 35729)\n")
	fmt.Fprintf(os.Stderr, "  --max-connections\tMaximum browser connections (default: 100)\n")
	fmt.Fprintf(os.Stderr, "  --heartbeat-interval\tServer heartbeat interval (default: 30s)\n")
	fmt.Fprintf(os.Stderr, "  --connection-timeout\tIdle eviction timeout (default: 5m)\n")
	fmt.Fprintf(os.Stderr, "  --auto-refresh\tRefresh browsers after successful builds (default: true)\n")
	fmt.Fprintf(os.Stderr, "  --css-injection\tPush CSS without full reloads (default: true)\n")
	fmt.Fprintf(os.Stderr, "\nBuild configuration:\n")
	fmt.Fprintf(os.Stderr, "  --build-command\tCommand to run for rebuilds (default: make)\n")
	fmt.Fprintf(os.Stderr, "  --build-arg\t\tBuild command argument, repeatable\n")
	fmt.Fprintf(os.Stderr, "  --build-dir\t\tWorking directory for builds\n")
	fmt.Fprintf(os.Stderr, "  --build-timeout\tMaximum build duration (default: 5m)\n")
	fmt.Fprintf(os.Stderr, "  --max-retries\t\tRetries after a failed build (default: 2)\n")
	fmt.Fprintf(os.Stderr, "  --workers\t\tConcurrent build workers (default: 2)\n")
	fmt.Fprintf(os.Stderr, "\nObservability:\n")
	fmt.Fprintf(os.Stderr, "  --metrics-port\tMetrics and health server port (default: 9090)\n")
	fmt.Fprintf(os.Stderr, "  --log-level\t\tLog level: debug, info, warn, error (default: info)\n")
	fmt.Fprintf(os.Stderr, "\nEnvironment variables:\n")
	fmt.Fprintf(os.Stderr, "  GO_HOT_RELOAD_WATCH_DIRS, GO_HOT_RELOAD_WATCH_EXTENSIONS, GO_HOT_RELOAD_POLL_INTERVAL\n")
	fmt.Fprintf(os.Stderr, "  GO_HOT_RELOAD_DEBOUNCE, GO_HOT_RELOAD_HOST, GO_HOT_RELOAD_PORT\n")
	fmt.Fprintf(os.Stderr, "  GO_HOT_RELOAD_BUILD_COMMAND, GO_HOT_RELOAD_BUILD_TIMEOUT, GO_HOT_RELOAD_WORKERS\n")
	fmt.Fprintf(os.Stderr, "  GO_HOT_RELOAD_METRICS_PORT, GO_HOT_RELOAD_LOG_LEVEL\n")
	fmt.Fprintf(os.Stderr, "\nExample usage:\n")
	fmt.Fprintf(os.Stderr, "  %s --watch-dir ./src --extension .css --extension .x --build-command make\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "  %s --config ./go-hot-reload.yaml\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "  GO_HOT_RELOAD_PORT=35730 %s --watch-dir ./assets\n", os.Args[0])
}
