package constants

import "time"

// Environment variable constants
const (
	EnvWatchDirs         = "GO_HOT_RELOAD_WATCH_DIRS"
	EnvWatchExtensions   = "GO_HOT_RELOAD_WATCH_EXTENSIONS"
	EnvIgnorePatterns    = "GO_HOT_RELOAD_IGNORE_PATTERNS"
	EnvPollInterval      = "GO_HOT_RELOAD_POLL_INTERVAL"
	EnvDebounce          = "GO_HOT_RELOAD_DEBOUNCE"
	EnvHost              = "GO_HOT_RELOAD_HOST"
	EnvPort              = "GO_HOT_RELOAD_PORT"
	EnvMetricsPort       = "GO_HOT_RELOAD_METRICS_PORT"
	EnvMaxConnections    = "GO_HOT_RELOAD_MAX_CONNECTIONS"
	EnvHeartbeatInterval = "GO_HOT_RELOAD_HEARTBEAT_INTERVAL"
	EnvConnectionTimeout = "GO_HOT_RELOAD_CONNECTION_TIMEOUT"
	EnvAutoRefresh       = "GO_HOT_RELOAD_AUTO_REFRESH"
	EnvCSSInjection      = "GO_HOT_RELOAD_CSS_INJECTION"
	EnvBuildCommand      = "GO_HOT_RELOAD_BUILD_COMMAND"
	EnvBuildTimeout      = "GO_HOT_RELOAD_BUILD_TIMEOUT"
	EnvMaxRetries        = "GO_HOT_RELOAD_MAX_RETRIES"
	EnvRetryInterval     = "GO_HOT_RELOAD_RETRY_INTERVAL"
	EnvWorkers           = "GO_HOT_RELOAD_WORKERS"
	EnvLogLevel          = "GO_HOT_RELOAD_LOG_LEVEL"
)

// WebSocket protocol constants
const (
	// WebSocketGUID is the fixed GUID appended to the client key when
	// computing Sec-WebSocket-Accept, per RFC 6455 section 4.2.2.
	WebSocketGUID = "258EAFA5-E914-47DA-95CA-C5AB0DC85B11"

	HeaderUpgrade      = "Upgrade"
	HeaderConnection   = "Connection"
	HeaderWSKey        = "Sec-WebSocket-Key"
	HeaderWSAccept     = "Sec-WebSocket-Accept"
	HeaderWSVersion    = "Sec-WebSocket-Version"
	HeaderUserAgent    = "User-Agent"
	UpgradeWebSocket   = "websocket"
	WSProtocolVersion  = "13"
	MaxHandshakeBytes  = 4096

	// MaxFramePayloadBytes caps inbound frame payloads. Clients only send
	// small JSON control messages, so the advertised length is validated
	// before any allocation.
	MaxFramePayloadBytes = 1 << 20
)

// WebSocket frame opcodes
const (
	OpcodeContinuation = 0x0
	OpcodeText         = 0x1
	OpcodeBinary       = 0x2
	OpcodeClose        = 0x8
	OpcodePing         = 0x9
	OpcodePong         = 0xA
)

// Build output markers used to classify compiler output lines.
const (
	MarkerError        = "error:"
	MarkerErrorCode    = "error["
	MarkerWarning      = "warning:"
	MarkerWarningCode  = "warning["
)

// Watcher internal constants
const (
	// WatcherMaxFiles bounds the number of files tracked per scan.
	WatcherMaxFiles = 10000
	// WatcherMaxDepth bounds directory recursion during a scan.
	WatcherMaxDepth = 20
)

// Aggregator internal constants
const (
	// SweepInterval is how often the debounce sweeper checks pending changes.
	SweepInterval = 100 * time.Millisecond
)

// Builder internal constants
const (
	// MaxBuildWorkers caps the configured parallelism.
	MaxBuildWorkers = 4
	// QueuePollInterval is how long an idle worker waits before re-checking
	// the queue.
	QueuePollInterval = 50 * time.Millisecond
)

// WebSocket server internal constants
const (
	// CleanupInterval is how often idle clients are swept.
	CleanupInterval = 60 * time.Second
	// AdmissionCleanupInterval is the expiry interval for per-IP admission
	// limiters.
	AdmissionCleanupInterval = 5 * time.Minute
	// AdmissionMaxCacheSize bounds the admission limiter cache.
	AdmissionMaxCacheSize = 10000
)

// Paths served by the metrics listener.
const (
	PathHealth  = "/health"
	PathReady   = "/ready"
	PathMetrics = "/metrics"
)
