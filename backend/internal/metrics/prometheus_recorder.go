package metrics

import (
	"net/http"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	renderDuration *prom.HistogramVec
	renderedBytes  *prom.HistogramVec
	renderResults  *prom.CounterVec
	emojiOps       *prom.CounterVec
}

// NewPrometheusRecorder constructs the metrics and registers them on reg.
// A nil reg gets a fresh registry.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		renderDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "chatmark",
			Name:      "render_duration_seconds",
			Help:      "Time spent rendering one message",
			Buckets:   prom.ExponentialBuckets(0.0005, 2, 12),
		}, []string{"mode"}),
		renderedBytes: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "chatmark",
			Name:      "rendered_bytes",
			Help:      "Size of rendered HTML",
			Buckets:   prom.ExponentialBuckets(64, 4, 8),
		}, []string{"mode"}),
		renderResults: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "chatmark",
			Name:      "render_results_total",
			Help:      "Render requests by outcome",
		}, []string{"mode", "result"}),
		emojiOps: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "chatmark",
			Name:      "emoji_operations_total",
			Help:      "Custom emoji API calls by operation and outcome",
		}, []string{"op", "result"}),
	}
	reg.MustRegister(pr.renderDuration, pr.renderedBytes, pr.renderResults, pr.emojiOps)
	return pr
}

func (p *PrometheusRecorder) ObserveRenderDuration(mode string, d time.Duration) {
	if p == nil || p.renderDuration == nil {
		return
	}
	p.renderDuration.WithLabelValues(mode).Observe(d.Seconds())
}

func (p *PrometheusRecorder) ObserveRenderedBytes(mode string, n int) {
	if p == nil || p.renderedBytes == nil {
		return
	}
	p.renderedBytes.WithLabelValues(mode).Observe(float64(n))
}

func (p *PrometheusRecorder) IncRenderResult(mode string, result ResultLabel) {
	if p == nil || p.renderResults == nil {
		return
	}
	p.renderResults.WithLabelValues(mode, string(result)).Inc()
}

func (p *PrometheusRecorder) IncEmojiOperation(op string, result ResultLabel) {
	if p == nil || p.emojiOps == nil {
		return
	}
	p.emojiOps.WithLabelValues(op, string(result)).Inc()
}

// HTTPHandler returns an http.Handler that serves the metrics in reg.
func HTTPHandler(reg *prom.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{EnableOpenMetrics: true})
}
