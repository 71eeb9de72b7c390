package observability

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestRegisterCollectorReturnsExistingOnDuplicate(t *testing.T) {
	opts := prometheus.CounterOpts{Name: "observability_test_duplicate_total", Help: "test"}

	first, err := RegisterCollector(prometheus.NewCounter(opts))
	if err != nil {
		t.Fatalf("registering first collector: %v", err)
	}
	t.Cleanup(func() { prometheus.Unregister(first) })

	second, err := RegisterCollector(prometheus.NewCounter(opts))
	if err != nil {
		t.Fatalf("registering duplicate collector: %v", err)
	}

	if first != second {
		t.Fatal("expected the already registered collector to be returned")
	}
}

func TestPrometheusHandlerServesRegisteredCollector(t *testing.T) {
	c, err := RegisterCollector(prometheus.NewCounter(prometheus.CounterOpts{Name: "observability_test_served_total", Help: "test"}))
	if err != nil {
		t.Fatalf("registering collector: %v", err)
	}
	t.Cleanup(func() { prometheus.Unregister(c) })
	c.Inc()

	w := httptest.NewRecorder()
	PrometheusHandler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
	}
	if !strings.Contains(w.Body.String(), "observability_test_served_total 1") {
		t.Fatalf("expected counter in exposition, got:\n%s", w.Body.String())
	}
}
