// Package prom implements ports.Metrics with Prometheus counters and
// exposes them as an http.Handler.
package prom

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the pipeline counters on a private registry.
type Metrics struct {
	registry    *prometheus.Registry
	decisions   *prometheus.CounterVec
	parsed      *prometheus.CounterVec
	parseFailed prometheus.Counter
	readFailed  prometheus.Counter
	deleted     prometheus.Counter
}

// New registers the counters on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		decisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "codetrail",
			Name:      "index_decisions_total",
			Help:      "Changes considered for indexing, by outcome.",
		}, []string{"outcome"}),
		parsed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "codetrail",
			Name:      "files_parsed_total",
			Help:      "Files parsed successfully, by language.",
		}, []string{"language"}),
		parseFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "codetrail",
			Name:      "parse_failures_total",
			Help:      "Files whose parse failed.",
		}),
		readFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "codetrail",
			Name:      "read_failures_total",
			Help:      "Admitted files that could not be read.",
		}),
		deleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "codetrail",
			Name:      "deletions_total",
			Help:      "Removals forwarded to the index.",
		}),
	}
	m.registry.MustRegister(m.decisions, m.parsed, m.parseFailed, m.readFailed, m.deleted)
	return m
}

func (m *Metrics) Admitted() { m.decisions.WithLabelValues("admitted").Inc() }

func (m *Metrics) Denied() { m.decisions.WithLabelValues("denied").Inc() }

func (m *Metrics) Parsed(language string) { m.parsed.WithLabelValues(language).Inc() }

func (m *Metrics) ParseFailed() { m.parseFailed.Inc() }

func (m *Metrics) ReadFailed() { m.readFailed.Inc() }

func (m *Metrics) Deleted() { m.deleted.Inc() }

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
