package monitoring

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kilianp07/powerfleet/config"
	coremon "github.com/kilianp07/powerfleet/core/monitoring"
)

func TestNewSentryMonitorEmptyDSN(t *testing.T) {
	m, err := NewSentryMonitor(config.SentryConfig{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := m.(coremon.NopMonitor); !ok {
		t.Fatalf("expected NopMonitor, got %T", m)
	}
}

func TestNewSentryMonitorInvalidDSN(t *testing.T) {
	if _, err := NewSentryMonitor(config.SentryConfig{DSN: "not a dsn"}); err == nil {
		t.Fatal("expected error for invalid DSN")
	}
}

func TestSentryMonitorSendsEvents(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/api/1/") {
			hits.Add(1)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	dsn := "http://public@" + strings.TrimPrefix(srv.URL, "http://") + "/1"
	m, err := NewSentryMonitor(config.SentryConfig{DSN: dsn, Environment: "test"})
	if err != nil {
		t.Fatalf("new monitor: %v", err)
	}
	m.CaptureException(errors.New("boom"), map[string]string{"plan_id": "p1"})
	m.CaptureException(nil, nil)
	if !m.Flush(5 * time.Second) {
		t.Fatal("flush timed out")
	}
	if hits.Load() != 1 {
		t.Fatalf("expected 1 event, got %d", hits.Load())
	}
	Close(m, time.Second)
}
