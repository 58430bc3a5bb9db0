package observability

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/leslieo2/go-hot-reload/internal/constants"
)

type HealthStatus struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	Uptime    string                 `json:"uptime"`
	Metrics   map[string]interface{} `json:"metrics,omitempty"`
	Checks    map[string]bool        `json:"checks"`
}

// HealthCheck reports whether one subsystem is currently healthy.
type HealthCheck func() bool

// HealthServer serves /metrics and /health on the metrics port.
type HealthServer struct {
	server    *http.Server
	metrics   *Metrics
	logger    *Logger
	version   string
	startTime time.Time

	mu     sync.RWMutex
	checks map[string]HealthCheck
}

func NewHealthServer(addr, metricsPath, version string, metrics *Metrics, logger *Logger) *HealthServer {
	hs := &HealthServer{
		metrics:   metrics,
		logger:    logger,
		version:   version,
		startTime: time.Now(),
		checks:    make(map[string]HealthCheck),
	}

	mux := http.NewServeMux()
	mux.Handle(metricsPath, metrics.Handler())
	mux.HandleFunc(constants.PathHealth, hs.handleHealth)
	mux.HandleFunc(constants.PathReady, hs.handleHealth)

	hs.server = &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	}
	return hs
}

// AddCheck registers a named subsystem check.
func (h *HealthServer) AddCheck(name string, check HealthCheck) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.checks[name] = check
}

func (h *HealthServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	checks := make(map[string]bool, len(h.checks))
	healthy := true
	for name, check := range h.checks {
		ok := check()
		checks[name] = ok
		if !ok {
			healthy = false
		}
	}
	h.mu.RUnlock()

	h.metrics.SetHealthStatus(healthy)

	status := HealthStatus{
		Status:    "healthy",
		Timestamp: time.Now(),
		Version:   h.version,
		Uptime:    time.Since(h.startTime).String(),
		Checks:    checks,
	}
	code := http.StatusOK
	if !healthy {
		status.Status = "unhealthy"
		code = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(status); err != nil {
		h.logger.Error("failed to encode health status", zap.Error(err))
	}
}

// Start serves until Shutdown; it returns http.ErrServerClosed on clean stop.
func (h *HealthServer) Start() error {
	h.logger.Info("metrics server listening", zap.String("addr", h.server.Addr))
	return h.server.ListenAndServe()
}

func (h *HealthServer) Shutdown(ctx context.Context) error {
	return h.server.Shutdown(ctx)
}
