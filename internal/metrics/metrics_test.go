package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

// counterValue returns the value of the named counter whose labels include
// all of want.
func counterValue(t *testing.T, reg *prometheus.Registry, name string, want map[string]string) float64 {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, metric := range mf.GetMetric() {
			matched := 0
			for _, lp := range metric.GetLabel() {
				if v, ok := want[lp.GetName()]; ok && v == lp.GetValue() {
					matched++
				}
			}
			if matched == len(want) {
				return metric.GetCounter().GetValue()
			}
		}
	}
	return 0
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.ObserveContribution(100)
	m.ObserveMilestone(25)
	m.ObserveChatMessage()
	m.ObserveNudge()
	m.ObserveCommand("save", true)

	h := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
}

func TestContributionCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)
	m.ObserveContribution(250)
	m.ObserveContribution(750)
	m.ObserveMilestone(50)

	if got := counterValue(t, reg, "croowa_contributions_total", nil); got != 2 {
		t.Errorf("contributions = %v, want 2", got)
	}
	if got := counterValue(t, reg, "croowa_contributed_minor_units_total", nil); got != 1000 {
		t.Errorf("contributed amount = %v, want 1000", got)
	}
	if got := counterValue(t, reg, "croowa_milestones_unlocked_total", map[string]string{"percentage": "50"}); got != 1 {
		t.Errorf("milestones{50} = %v, want 1", got)
	}
}

func TestMiddlewareLabelsByPattern(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/goals/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	h := m.Middleware(mux)
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/goals/abc", nil))

	labels := map[string]string{"route": "GET /api/goals/{id}", "method": "GET", "code": "404"}
	if got := counterValue(t, reg, "croowa_http_requests_total", labels); got != 1 {
		t.Errorf("requests = %v, want 1", got)
	}

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if !strings.Contains(rec.Body.String(), "croowa_http_requests_total") {
		t.Error("metrics output is missing croowa_http_requests_total")
	}
}
