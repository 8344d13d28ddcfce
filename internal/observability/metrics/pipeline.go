package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type PipelineMetrics struct {
	registry *prometheus.Registry

	jobsTotal   *prometheus.CounterVec
	jobDuration *prometheus.HistogramVec
	itemsTotal  *prometheus.CounterVec
	queueDepth  prometheus.Gauge
	replyLag    prometheus.Histogram
}

func NewPipelineMetrics(service string) *PipelineMetrics {
	registry := prometheus.NewRegistry()

	jobsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   "pricer",
			Subsystem:   "pipeline",
			Name:        "jobs_total",
			Help:        "Finalized jobs by outcome (priced, empty, dropped).",
			ConstLabels: prometheus.Labels{"service": service},
		},
		[]string{"outcome"},
	)
	jobDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace:   "pricer",
			Subsystem:   "pipeline",
			Name:        "job_duration_seconds",
			Help:        "Time from claiming a request to finalizing its job.",
			Buckets:     []float64{0.5, 1, 2, 5, 10, 30, 60, 120, 300},
			ConstLabels: prometheus.Labels{"service": service},
		},
		[]string{"outcome"},
	)
	itemsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   "pricer",
			Subsystem:   "pipeline",
			Name:        "line_items_total",
			Help:        "Resolved line items by pricing source (oracle, catalog, unresolved).",
			ConstLabels: prometheus.Labels{"service": service},
		},
		[]string{"outcome"},
	)
	queueDepth := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace:   "pricer",
			Subsystem:   "pipeline",
			Name:        "queue_depth",
			Help:        "Requests waiting for the single-flight engine.",
			ConstLabels: prometheus.Labels{"service": service},
		},
	)
	replyLag := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace:   "pricer",
			Subsystem:   "pipeline",
			Name:        "oracle_reply_lag_seconds",
			Help:        "Delay between sending an article and its oracle reply.",
			Buckets:     []float64{0.5, 1, 2, 5, 10, 20, 30, 60},
			ConstLabels: prometheus.Labels{"service": service},
		},
	)

	registry.MustRegister(jobsTotal, jobDuration, itemsTotal, queueDepth, replyLag)

	return &PipelineMetrics{
		registry:    registry,
		jobsTotal:   jobsTotal,
		jobDuration: jobDuration,
		itemsTotal:  itemsTotal,
		queueDepth:  queueDepth,
		replyLag:    replyLag,
	}
}

func (m *PipelineMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *PipelineMetrics) JobFinished(outcome string, duration time.Duration) {
	m.jobsTotal.WithLabelValues(outcome).Inc()
	m.jobDuration.WithLabelValues(outcome).Observe(duration.Seconds())
}

func (m *PipelineMetrics) ItemResolved(outcome string) {
	m.itemsTotal.WithLabelValues(outcome).Inc()
}

func (m *PipelineMetrics) ObserveQueueDepth(depth int) {
	m.queueDepth.Set(float64(depth))
}

func (m *PipelineMetrics) ObserveReplyLag(lag time.Duration) {
	if lag < 0 {
		return
	}
	m.replyLag.Observe(lag.Seconds())
}
