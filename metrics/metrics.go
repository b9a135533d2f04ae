// Package metrics exposes the Prometheus collectors recorded by the API.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "invoiceflow_http_requests_total",
		Help: "HTTP requests by method, route and status.",
	}, []string{"method", "route", "status"})

	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "invoiceflow_http_request_duration_seconds",
		Help:    "HTTP request latency.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	InvoicesComputed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "invoiceflow_invoices_computed_total",
		Help: "Invoice computations by type and outcome (preview, created, updated).",
	}, []string{"type", "outcome"})

	FreeLinesGenerated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "invoiceflow_free_lines_generated_total",
		Help: "Scheme free lines derived from primary lines.",
	})

	AmbiguousSchemeMatches = promauto.NewCounter(prometheus.CounterOpts{
		Name: "invoiceflow_ambiguous_scheme_matches_total",
		Help: "Lines where more than one active scheme applied.",
	})

	PagesRendered = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "invoiceflow_document_pages_rendered_total",
		Help: "Document pages rendered by document type.",
	}, []string{"document"})

	SchemeCacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "invoiceflow_scheme_cache_lookups_total",
		Help: "Scheme cache lookups by result (hit, miss).",
	}, []string{"result"})

	JournalSyncs = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "invoiceflow_journal_syncs_total",
		Help: "Accounting syncs by result.",
	}, []string{"result"})
)
