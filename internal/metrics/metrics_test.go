package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func counterValue(t *testing.T, reg *prometheus.Registry, name string, labels map[string]string) float64 {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatal(err)
	}
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
	next:
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if labels[lp.GetName()] != lp.GetValue() {
					continue next
				}
			}
			if m.GetCounter() != nil {
				return m.GetCounter().GetValue()
			}
			return float64(m.GetHistogram().GetSampleCount())
		}
	}
	return 0
}

func TestMetricsRecord(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(WithRegistry(reg))

	m.GateDecision("redirect_login")
	m.GateDecision("redirect_login")
	m.GateDecision("continue")
	m.AuthResponse("login", http.StatusUnauthorized)
	m.ObserveBackend("login", "ok", 15*time.Millisecond)

	if got := counterValue(t, reg, "octavia_web_gate_decisions_total", map[string]string{"decision": "redirect_login"}); got != 2 {
		t.Errorf("redirect_login = %v, want 2", got)
	}
	if got := counterValue(t, reg, "octavia_web_auth_responses_total", map[string]string{"handler": "login", "status": "401"}); got != 1 {
		t.Errorf("login 401 = %v, want 1", got)
	}
	if got := counterValue(t, reg, "octavia_web_backend_request_duration_seconds", map[string]string{"operation": "login", "outcome": "ok"}); got != 1 {
		t.Errorf("backend samples = %v, want 1", got)
	}
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.GateDecision("continue")
	m.AuthResponse("logout", http.StatusOK)
	m.ObserveBackend("me", "error", time.Second)
}

func TestHandler(t *testing.T) {
	reg := prometheus.NewRegistry()
	New(WithRegistry(reg), WithNamespace("test")).GateDecision("continue")

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "test_web_gate_decisions_total") {
		t.Errorf("exposition does not contain gate metric:\n%s", rec.Body.String())
	}
}
