// Package metrics registers the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequestsTotal counts handled requests by route, method and status.
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "invoicedesk",
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests.",
	}, []string{"method", "route", "status"})

	// HTTPRequestDuration observes request latency by route.
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "invoicedesk",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})

	// ExtractedFieldsTotal counts fields found per extraction, by parser.
	ExtractedFieldsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "invoicedesk",
		Name:      "extracted_fields_total",
		Help:      "Invoice fields recovered by extraction.",
	}, []string{"parser", "field"})

	// ExtractionsTotal counts extraction runs by parser and outcome.
	ExtractionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "invoicedesk",
		Name:      "extractions_total",
		Help:      "Field extraction runs.",
	}, []string{"parser", "outcome"})

	// RecognitionsTotal counts OCR runs by input kind and outcome.
	RecognitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "invoicedesk",
		Name:      "text_recognitions_total",
		Help:      "Text recognition runs.",
	}, []string{"kind", "outcome"})
)

// ObserveExtraction records one extraction result.
func ObserveExtraction(parser string, fields []string) {
	outcome := "empty"
	if len(fields) > 0 {
		outcome = "fields_found"
	}
	ExtractionsTotal.WithLabelValues(parser, outcome).Inc()
	for _, f := range fields {
		ExtractedFieldsTotal.WithLabelValues(parser, f).Inc()
	}
}
