package api

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/pbaille/journal/internal/domain"
)

type metrics struct {
	registry        *prometheus.Registry
	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	entriesAnalyzed prometheus.Counter
	tasksExtracted  prometheus.Counter
	perspectives    *prometheus.CounterVec
}

func newMetrics() *metrics {
	m := &metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "journal",
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status code.",
		}, []string{"route", "code"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "journal",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
		entriesAnalyzed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "journal",
			Name:      "entries_analyzed_total",
			Help:      "Entries passed through the analysis engine.",
		}),
		tasksExtracted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "journal",
			Name:      "tasks_extracted_total",
			Help:      "Tasks extracted by the analysis engine.",
		}),
		perspectives: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "journal",
			Name:      "perspectives_extracted_total",
			Help:      "Perspectives extracted by the analysis engine, by type.",
		}, []string{"type"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requests,
		m.requestDuration,
		m.entriesAnalyzed,
		m.tasksExtracted,
		m.perspectives,
	)
	return m
}

func (m *metrics) observeResult(entries int, result domain.ProcessedResult) {
	m.entriesAnalyzed.Add(float64(entries))
	m.tasksExtracted.Add(float64(len(result.Tasks)))
	for _, p := range result.Perspectives {
		m.perspectives.WithLabelValues(string(p.Type)).Inc()
	}
}
