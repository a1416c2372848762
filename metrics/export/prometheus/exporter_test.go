package prometheus

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	dineauth "github.com/hostline/dineauth"
)

type fakeSource struct {
	snapshot dineauth.MetricsSnapshot
	dropped  uint64
}

func (f fakeSource) MetricsSnapshot() dineauth.MetricsSnapshot { return f.snapshot }
func (f fakeSource) AuditDropped() uint64                      { return f.dropped }

func TestRenderEmptyWhenMetricsDisabled(t *testing.T) {
	exp := NewExporterFromSource(fakeSource{
		snapshot: dineauth.MetricsSnapshot{
			Counters:   map[dineauth.MetricID]uint64{},
			Histograms: map[dineauth.MetricID][]uint64{},
		},
		dropped: 0,
	})

	if got := exp.Render(); got != "" {
		t.Fatalf("expected empty output for disabled metrics, got:\n%s", got)
	}
}

func TestRenderIncludesCounterAndHistogram(t *testing.T) {
	exp := NewExporterFromSource(fakeSource{
		snapshot: dineauth.MetricsSnapshot{
			Counters: map[dineauth.MetricID]uint64{
				dineauth.MetricLoginSuccess:      7,
				dineauth.MetricRefreshRejected:   2,
				dineauth.MetricRetryAfterRefresh: 5,
			},
			Histograms: map[dineauth.MetricID][]uint64{
				dineauth.MetricRequestLatency: {1, 2, 3, 4, 5, 6, 7, 8},
			},
		},
		dropped: 2,
	})

	out := exp.Render()
	if !strings.Contains(out, "dineauth_login_success_total 7") {
		t.Fatalf("expected login_success counter in output, got:\n%s", out)
	}
	if !strings.Contains(out, "dineauth_refresh_rejected_total 2") {
		t.Fatalf("expected refresh_rejected counter in output, got:\n%s", out)
	}
	if !strings.Contains(out, "dineauth_request_latency_seconds_bucket{le=\"0.005\"} 1") {
		t.Fatalf("expected first histogram bucket in output, got:\n%s", out)
	}
	if !strings.Contains(out, "dineauth_request_latency_seconds_bucket{le=\"+Inf\"} 36") {
		t.Fatalf("expected +Inf cumulative bucket in output, got:\n%s", out)
	}
	if !strings.Contains(out, "dineauth_audit_dropped_total 2") {
		t.Fatalf("expected audit dropped counter in output, got:\n%s", out)
	}
}

func TestHandlerWritesPrometheusContentType(t *testing.T) {
	exp := NewExporterFromSource(fakeSource{
		snapshot: dineauth.MetricsSnapshot{
			Counters:   map[dineauth.MetricID]uint64{dineauth.MetricLoginSuccess: 1},
			Histograms: map[dineauth.MetricID][]uint64{},
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	exp.Handler().ServeHTTP(rec, req)

	if got := rec.Header().Get("Content-Type"); !strings.Contains(got, "text/plain") {
		t.Fatalf("expected prometheus content type, got %q", got)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func BenchmarkRender(b *testing.B) {
	exp := NewExporterFromSource(fakeSource{
		snapshot: dineauth.MetricsSnapshot{
			Counters: map[dineauth.MetricID]uint64{
				dineauth.MetricLoginSuccess:      1000,
				dineauth.MetricLoginFailure:      40,
				dineauth.MetricRefreshSuccess:    800,
				dineauth.MetricRefreshRejected:   10,
				dineauth.MetricSessionRestored:   120,
				dineauth.MetricRetryAfterRefresh: 95,
				dineauth.MetricTwoFactorRequired: 300,
			},
			Histograms: map[dineauth.MetricID][]uint64{
				dineauth.MetricRequestLatency: {10, 20, 30, 40, 50, 60, 70, 80},
			},
		},
		dropped: 0,
	})

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = exp.Render()
	}
}
