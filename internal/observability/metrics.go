// Package observability exports pedigree service metrics to Prometheus.
//
// Recorder implements the service MetricsRecorder seam plus the optional
// COI and completeness distributions. No metric carries an individual ID.
package observability

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "pedigree"

// Recorder holds the Prometheus collectors.
type Recorder struct {
	// QueriesTotal counts operations by name and outcome (success, error).
	QueriesTotal *prometheus.CounterVec
	// QueryDuration observes operation latency by name.
	QueryDuration *prometheus.HistogramVec
	// COIPercentage observes calculated coefficients of inbreeding.
	COIPercentage prometheus.Histogram
	// CompletenessPercentage observes pedigree completeness scores.
	CompletenessPercentage prometheus.Histogram
}

// NewRecorder registers the collectors on reg; a nil reg uses a private
// registry so repeated construction in tests never collides.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	f := promauto.With(reg)
	return &Recorder{
		QueriesTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "queries_total",
			Help:      "Pedigree service operations by outcome.",
		}, []string{"operation", "status"}),
		QueryDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "query_duration_seconds",
			Help:      "Pedigree service operation latency.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 8),
		}, []string{"operation"}),
		COIPercentage: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "coi_percentage",
			Help:      "Calculated coefficients of inbreeding, in percent.",
			Buckets:   []float64{0, 1, 3.125, 6.25, 12.5, 25, 50, 100},
		}),
		CompletenessPercentage: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "completeness_percentage",
			Help:      "Pedigree completeness scores, in percent.",
			Buckets:   prometheus.LinearBuckets(10, 10, 10),
		}),
	}
}

// Observe implements core.MetricsRecorder.
func (r *Recorder) Observe(_ context.Context, operation string, success bool, duration time.Duration) {
	if operation == "" {
		return
	}
	status := "success"
	if !success {
		status = "error"
	}
	r.QueriesTotal.WithLabelValues(operation, status).Inc()
	r.QueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// ObserveCOI implements core.AnalyticsRecorder.
func (r *Recorder) ObserveCOI(_ context.Context, percentage float64) {
	r.COIPercentage.Observe(percentage)
}

// ObserveCompleteness implements core.AnalyticsRecorder.
func (r *Recorder) ObserveCompleteness(_ context.Context, percentage float64) {
	r.CompletenessPercentage.Observe(percentage)
}

// WriteTextfile dumps gatherer in the node-exporter textfile format.
func WriteTextfile(path string, gatherer prometheus.Gatherer) error {
	return prometheus.WriteToTextfile(path, gatherer)
}
