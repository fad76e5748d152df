package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"
)

func TestCounter_SameNameSameCounter(t *testing.T) {
	c := NewCollector()
	a := c.Counter("relaybot_test_total", "test counter")
	b := c.Counter("relaybot_test_total", "test counter")
	a.Inc()
	b.Inc()
	if a.Value() != 2 {
		t.Errorf("expected shared counter value 2, got %d", a.Value())
	}
}

func TestHistogram_Observe(t *testing.T) {
	c := NewCollector()
	h := c.Histogram("relaybot_test_seconds", "test histogram", []float64{1, 5})
	h.Observe(0.5)
	h.Observe(3)
	h.Observe(10)

	if h.count != 3 {
		t.Errorf("expected count 3, got %d", h.count)
	}
	if h.buckets[0].count != 1 {
		t.Errorf("expected 1 observation <= 1, got %d", h.buckets[0].count)
	}
	if h.buckets[1].count != 2 {
		t.Errorf("expected 2 observations <= 5, got %d", h.buckets[1].count)
	}
}

func TestHandler_Exposition(t *testing.T) {
	c := NewCollector()
	c.Counter("relaybot_events_total", "events seen").Inc()
	c.Histogram("relaybot_latency_seconds", "latency", []float64{1}).Observe(0.2)

	rr := httptest.NewRecorder()
	c.Handler()(rr, httptest.NewRequest("GET", "/metrics", nil))

	body := rr.Body.String()
	for _, want := range []string{
		"# TYPE relaybot_events_total counter",
		"relaybot_events_total 1",
		"# TYPE relaybot_latency_seconds histogram",
		`relaybot_latency_seconds_bucket{le="1"} 1`,
		"relaybot_latency_seconds_count 1",
		"relaybot_uptime_seconds",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("exposition missing %q:\n%s", want, body)
		}
	}
	if ct := rr.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Errorf("unexpected content type: %s", ct)
	}
}
