package http

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/ahmed34535/yourtravelsearch-production-sub003/internal/metrics"
)

func TestRouter_GetHold(t *testing.T) {
	t.Parallel()

	svc := &stubHoldService{hold: activeHold()}
	rec := httptest.NewRecorder()
	NewRouter(newTestRouter(svc, nil, nil)).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/holds/abc", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if svc.gotID != "abc" {
		t.Fatalf("expected id abc, got %q", svc.gotID)
	}
}

func TestRouter_Metrics(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	m := metrics.New("holds", reg)
	m.Transition("pay", "ok")

	s := newTestRouter(nil, nil, nil)
	s.Metrics = reg
	rec := httptest.NewRecorder()
	NewRouter(s).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "holds_") {
		t.Fatalf("expected namespaced metrics, got %q", rec.Body.String())
	}
}

func TestRouter_HealthWithoutDatabase(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	NewRouter(Services{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}
