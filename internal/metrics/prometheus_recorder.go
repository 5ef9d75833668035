package metrics

import (
	"net/http"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	promhttp "github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	resolveDuration prom.Histogram
	resolveOutcomes *prom.CounterVec
	plugins         prom.Gauge
	aliases         prom.Gauge
	reloads         prom.Counter
}

// NewPrometheusRecorder constructs and registers Prometheus metrics on reg.
// A nil reg gets a fresh private registry.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		resolveDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: "buildconf",
			Name:      "resolve_duration_seconds",
			Help:      "Duration of configuration resolution",
			Buckets:   prom.ExponentialBuckets(0.0005, 2, 12),
		}),
		resolveOutcomes: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "buildconf",
			Name:      "resolve_outcomes_total",
			Help:      "Configuration resolution outcomes by result and error kind",
		}, []string{"outcome", "kind"}),
		plugins: prom.NewGauge(prom.GaugeOpts{
			Namespace: "buildconf",
			Name:      "plugins",
			Help:      "Plugins in the last resolved configuration",
		}),
		aliases: prom.NewGauge(prom.GaugeOpts{
			Namespace: "buildconf",
			Name:      "aliases",
			Help:      "Aliases in the last resolved configuration",
		}),
		reloads: prom.NewCounter(prom.CounterOpts{
			Namespace: "buildconf",
			Name:      "reloads_total",
			Help:      "Configuration reloads triggered by file changes",
		}),
	}
	reg.MustRegister(pr.resolveDuration, pr.resolveOutcomes, pr.plugins, pr.aliases, pr.reloads)
	return pr
}

func (p *PrometheusRecorder) ObserveResolveDuration(d time.Duration) {
	p.resolveDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncResolveOutcome(outcome Outcome, kind string) {
	p.resolveOutcomes.WithLabelValues(string(outcome), kind).Inc()
}

func (p *PrometheusRecorder) SetPluginCount(n int) { p.plugins.Set(float64(n)) }
func (p *PrometheusRecorder) SetAliasCount(n int)  { p.aliases.Set(float64(n)) }
func (p *PrometheusRecorder) IncReload()           { p.reloads.Inc() }

// HTTPHandler returns an http.Handler that serves Prometheus metrics for the provided registry.
func HTTPHandler(reg *prom.Registry) http.Handler {
	if reg == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{EnableOpenMetrics: true})
}
