// Package metrics provides observability hooks for configuration resolution.
//
// Components receive a Recorder through dependency injection and default to
// NoopRecorder, so callers never need nil checks:
//
//	resolver := config.NewResolver(config.WithRecorder(metrics.NewPrometheusRecorder(reg)))
package metrics

import "time"

// Outcome labels a resolution result.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeFailure Outcome = "failure"
)

// Recorder defines observability hooks for configuration resolution.
type Recorder interface {
	ObserveResolveDuration(d time.Duration)
	IncResolveOutcome(outcome Outcome, kind string) // kind: error kind on failure, empty on success
	SetPluginCount(n int)
	SetAliasCount(n int)
	IncReload()
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveResolveDuration(time.Duration) {}
func (NoopRecorder) IncResolveOutcome(Outcome, string)    {}
func (NoopRecorder) SetPluginCount(int)                   {}
func (NoopRecorder) SetAliasCount(int)                    {}
func (NoopRecorder) IncReload()                           {}
