package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// metrics holds the console's Prometheus instruments. They live on their
// own registry so several consoles can coexist in one process.
type metrics struct {
	registry *prometheus.Registry

	briefsGenerated prometheus.Counter
	sourceFailures  *prometheus.CounterVec
	printJobs       *prometheus.CounterVec
	renderDuration  prometheus.Histogram
}

func newMetrics() *metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &metrics{
		registry: reg,
		briefsGenerated: factory.NewCounter(prometheus.CounterOpts{
			Name: "briefs_generated_total",
			Help: "Daily briefs generated successfully",
		}),
		sourceFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "source_failures_total",
			Help: "Data-source slots that degraded during a run",
		}, []string{"source"}),
		printJobs: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "print_jobs_total",
			Help: "Print attempts by outcome",
		}, []string{"status"}),
		renderDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "render_duration_seconds",
			Help:    "Time from aggregation start to written outputs",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
	}
}

func (m *metrics) handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
