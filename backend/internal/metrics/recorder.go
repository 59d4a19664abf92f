// Package metrics records render and emoji API metrics.
package metrics

import "time"

// ResultLabel enumerates request outcomes for counters.
type ResultLabel string

const (
	ResultSuccess     ResultLabel = "success"
	ResultNotModified ResultLabel = "not_modified"
	ResultClientError ResultLabel = "client_error"
	ResultServerError ResultLabel = "server_error"
)

// Recorder defines observability hooks for the service. Implementations may
// forward to Prometheus; NoopRecorder is the default when metrics are off.
type Recorder interface {
	ObserveRenderDuration(mode string, d time.Duration)
	ObserveRenderedBytes(mode string, n int)
	IncRenderResult(mode string, result ResultLabel)
	IncEmojiOperation(op string, result ResultLabel)
}

// NoopRecorder is a Recorder that does nothing.
type NoopRecorder struct{}

func (NoopRecorder) ObserveRenderDuration(string, time.Duration) {}
func (NoopRecorder) ObserveRenderedBytes(string, int)            {}
func (NoopRecorder) IncRenderResult(string, ResultLabel)         {}
func (NoopRecorder) IncEmojiOperation(string, ResultLabel)       {}

// ResultForStatus maps an HTTP status code to a ResultLabel.
func ResultForStatus(status int) ResultLabel {
	switch {
	case status == 304:
		return ResultNotModified
	case status >= 500:
		return ResultServerError
	case status >= 400:
		return ResultClientError
	default:
		return ResultSuccess
	}
}
