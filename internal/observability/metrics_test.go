package observability

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestMetricsRegister(t *testing.T) {
	m := NewMetrics()
	if err := m.Register(); err != nil {
		t.Fatalf("Register() failed: %v", err)
	}
	if m.Handler() == nil {
		t.Fatal("Handler() returned nil after Register()")
	}
}

func TestRecordBuild(t *testing.T) {
	m := NewMetrics()
	if err := m.Register(); err != nil {
		t.Fatalf("Register() failed: %v", err)
	}

	m.RecordBuild("hot_reload", true, 120*time.Millisecond)
	m.RecordBuild("full", false, 3*time.Second)
	m.ConnectedClients.Set(2)

	req := httptest.NewRequest("GET", "/metrics", nil)
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, req)

	body := rec.Body.String()
	for _, want := range []string{
		`hotreload_builds_total{build_type="hot_reload",result="success"} 1`,
		`hotreload_builds_total{build_type="full",result="failure"} 1`,
		`hotreload_websocket_clients 2`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics output missing %q", want)
		}
	}
}

func TestSetHealthStatus(t *testing.T) {
	m := NewMetrics()
	if err := m.Register(); err != nil {
		t.Fatalf("Register() failed: %v", err)
	}

	m.SetHealthStatus(true)
	m.SetHealthStatus(false)

	req := httptest.NewRequest("GET", "/metrics", nil)
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, req)

	if !strings.Contains(rec.Body.String(), "hotreload_health_status 0") {
		t.Error("expected health status gauge to be 0")
	}
}
