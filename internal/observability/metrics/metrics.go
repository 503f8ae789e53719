package metrics

import (
	"log"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricPrefix = "meterprofile_"

	ResultSuccess  = "success"
	ResultRejected = "rejected"
	ResultError    = "error"
)

var (
	registerOnce sync.Once

	extractTotal   *prometheus.CounterVec
	extractLatency *prometheus.HistogramVec
	detectTotal    *prometheus.CounterVec

	rowsProcessed prometheus.Counter
	rowsSkipped   prometheus.Counter

	jobsSubmitted prometheus.Counter
	jobsRejected  prometheus.Counter
)

// Init registers the service metrics. Safe to call more than once.
func Init(logger *log.Logger) {
	registerOnce.Do(func() {
		extractTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "extract_total",
				Help: "Total extraction runs by result",
			},
			[]string{"result"},
		)
		extractLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "extract_latency_seconds",
				Help:    "Extraction latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"result"},
		)
		detectTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "detect_total",
				Help: "Total detect-only runs by result",
			},
			[]string{"result"},
		)
		rowsProcessed = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: metricPrefix + "rows_processed_total",
				Help: "Total rows folded into profiles",
			},
		)
		rowsSkipped = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: metricPrefix + "rows_skipped_total",
				Help: "Total rows skipped during extraction",
			},
		)
		jobsSubmitted = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: metricPrefix + "jobs_submitted_total",
				Help: "Total background extraction jobs accepted",
			},
		)
		jobsRejected = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: metricPrefix + "jobs_rejected_total",
				Help: "Total background extraction jobs refused",
			},
		)

		prometheus.MustRegister(
			extractTotal,
			extractLatency,
			detectTotal,
			rowsProcessed,
			rowsSkipped,
			jobsSubmitted,
			jobsRejected,
		)
		if logger != nil {
			logger.Printf("metrics registered")
		}
	})
}

// ObserveExtract records one extraction run.
func ObserveExtract(result string, duration time.Duration, processed, skipped int) {
	if extractTotal == nil {
		return
	}
	extractTotal.WithLabelValues(result).Inc()
	extractLatency.WithLabelValues(result).Observe(duration.Seconds())
	rowsProcessed.Add(float64(processed))
	rowsSkipped.Add(float64(skipped))
}

// ObserveDetect records one detect-only run.
func ObserveDetect(result string) {
	if detectTotal == nil {
		return
	}
	detectTotal.WithLabelValues(result).Inc()
}

// IncJobSubmitted counts an accepted background job.
func IncJobSubmitted() {
	if jobsSubmitted != nil {
		jobsSubmitted.Inc()
	}
}

// IncJobRejected counts a refused background job.
func IncJobRejected() {
	if jobsRejected != nil {
		jobsRejected.Inc()
	}
}
