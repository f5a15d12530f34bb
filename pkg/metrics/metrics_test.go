package metrics

import (
	"strings"
	"testing"
)

func TestCounterRender(t *testing.T) {
	r := New()
	c := r.Counter(WithLabels("fetch_total", "site", "archive"), "Total fetches.")
	c.Add(3)
	r.Counter(WithLabels("fetch_total", "site", "odysee"), "").Inc()

	out := r.Render()
	for _, want := range []string{
		"# HELP fetch_total Total fetches.",
		"# TYPE fetch_total counter",
		`fetch_total{site="archive"} 3`,
		`fetch_total{site="odysee"} 1`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("render missing %q:\n%s", want, out)
		}
	}
}

func TestGauge(t *testing.T) {
	r := New()
	g := r.Gauge("inflight", "")
	g.Inc()
	g.Inc()
	g.Dec()
	if g.Value() != 1 {
		t.Fatalf("gauge = %d, want 1", g.Value())
	}
	if !strings.Contains(r.Render(), "inflight 1") {
		t.Errorf("render missing gauge line:\n%s", r.Render())
	}
}

func TestHistogramCumulative(t *testing.T) {
	r := New()
	h := r.Histogram("latency_seconds", "", []float64{0.1, 1, 10})
	h.Observe(0.05)
	h.Observe(0.5)
	h.Observe(0.7)
	h.Observe(100) // above all buckets, only counted in +Inf

	out := r.Render()
	for _, want := range []string{
		`latency_seconds_bucket{le="0.1"} 1`,
		`latency_seconds_bucket{le="1"} 3`,
		`latency_seconds_bucket{le="10"} 3`,
		`latency_seconds_bucket{le="+Inf"} 4`,
		"latency_seconds_count 4",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("render missing %q:\n%s", want, out)
		}
	}
}

func TestSameNameReturnsSameMetric(t *testing.T) {
	r := New()
	a := r.Counter("hits", "")
	b := r.Counter("hits", "")
	if a != b {
		t.Fatal("expected the same counter instance")
	}
}

func TestWithLabels(t *testing.T) {
	if got := WithLabels("foo", "k", "v", "x", "y"); got != `foo{k="v",x="y"}` {
		t.Fatalf("WithLabels = %q", got)
	}
	if got := WithLabels("foo", "dangling"); got != "foo" {
		t.Fatalf("odd kvs should return base name, got %q", got)
	}
}
