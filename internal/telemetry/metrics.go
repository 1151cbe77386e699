// Package telemetry exposes pipeline counters over prometheus. A nil *Metrics
// is valid everywhere and records nothing.
package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	pagesFetched    *prometheus.CounterVec
	fetchErrors     *prometheus.CounterVec
	recordsAccepted *prometheus.CounterVec
	recordsRejected *prometheus.CounterVec
	importSaved     prometheus.Counter
	importSkipped   prometheus.Counter
	importErrors    prometheus.Counter
}

// New registers the pipeline metric set on reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		pagesFetched: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "quotemill_pages_fetched_total",
			Help: "Pages fetched per source, success or failure.",
		}, []string{"source"}),
		fetchErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "quotemill_fetch_errors_total",
			Help: "Fetch failures per source, by error class.",
		}, []string{"source", "class"}),
		recordsAccepted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "quotemill_records_accepted_total",
			Help: "Records passing validation per source.",
		}, []string{"source"}),
		recordsRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "quotemill_records_rejected_total",
			Help: "Candidates rejected by validation per source.",
		}, []string{"source"}),
		importSaved: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "quotemill_import_saved_total",
			Help: "Quotations inserted by the importer.",
		}),
		importSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "quotemill_import_skipped_total",
			Help: "Quotations skipped as duplicates or invalid.",
		}),
		importErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "quotemill_import_errors_total",
			Help: "Per-record import errors.",
		}),
	}
	reg.MustRegister(
		m.pagesFetched, m.fetchErrors,
		m.recordsAccepted, m.recordsRejected,
		m.importSaved, m.importSkipped, m.importErrors,
	)
	return m
}

func (m *Metrics) PageFetched(source string) {
	if m == nil {
		return
	}
	m.pagesFetched.WithLabelValues(source).Inc()
}

func (m *Metrics) FetchError(source, class string) {
	if m == nil {
		return
	}
	m.fetchErrors.WithLabelValues(source, class).Inc()
}

func (m *Metrics) RecordAccepted(source string) {
	if m == nil {
		return
	}
	m.recordsAccepted.WithLabelValues(source).Inc()
}

func (m *Metrics) RecordRejected(source string) {
	if m == nil {
		return
	}
	m.recordsRejected.WithLabelValues(source).Inc()
}

func (m *Metrics) ImportSaved(n int) {
	if m == nil {
		return
	}
	m.importSaved.Add(float64(n))
}

func (m *Metrics) ImportSkipped(n int) {
	if m == nil {
		return
	}
	m.importSkipped.Add(float64(n))
}

func (m *Metrics) ImportError() {
	if m == nil {
		return
	}
	m.importErrors.Inc()
}
