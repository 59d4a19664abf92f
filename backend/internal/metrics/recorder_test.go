package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

func TestPrometheusRecorder(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)
	pr.ObserveRenderDuration("chat", 2*time.Millisecond)
	pr.ObserveRenderedBytes("chat", 512)
	pr.IncRenderResult("chat", ResultSuccess)
	pr.IncEmojiOperation("create", ResultClientError)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	if len(mfs) != 4 {
		t.Fatalf("expected 4 metric families, got %d", len(mfs))
	}
}

func TestHTTPHandler(t *testing.T) {
	reg := prom.NewRegistry()
	NewPrometheusRecorder(reg).IncRenderResult("document", ResultNotModified)

	rec := httptest.NewRecorder()
	HTTPHandler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `chatmark_render_results_total{mode="document",result="not_modified"} 1`) {
		t.Errorf("metrics output missing counter:\n%s", rec.Body.String())
	}
}

func TestNilRecorderIsSafe(t *testing.T) {
	var pr *PrometheusRecorder
	pr.ObserveRenderDuration("chat", time.Second)
	pr.IncRenderResult("chat", ResultSuccess)

	var r Recorder = NoopRecorder{}
	r.IncEmojiOperation("list", ResultSuccess)
}

func TestResultForStatus(t *testing.T) {
	tests := map[int]ResultLabel{
		200: ResultSuccess,
		201: ResultSuccess,
		304: ResultNotModified,
		404: ResultClientError,
		500: ResultServerError,
	}
	for status, want := range tests {
		if got := ResultForStatus(status); got != want {
			t.Errorf("ResultForStatus(%d) = %s, want %s", status, got, want)
		}
	}
}
