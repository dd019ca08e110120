package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains all Prometheus metrics for the speech coach service
type Metrics struct {
	// Upload pipeline metrics
	UploadsTotal       prometheus.Counter
	UploadFailures     prometheus.Counter
	ConversionFailures prometheus.Counter
	UploadDuration     prometheus.Histogram

	// Allocator metrics
	CounterPersistFailures prometheus.Counter

	// Analysis metrics
	AnalyzeRequests prometheus.Counter
	AnalyzeFailures prometheus.Counter
	AnalyzeRetries  prometheus.Counter
	AnalyzeUnparsed prometheus.Counter
	AnalyzeDuration prometheus.Histogram
}

// New creates and registers all metrics with the given registerer
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		UploadsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "speechcoach_uploads_total",
			Help: "Total number of accepted audio uploads",
		}),
		UploadFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "speechcoach_upload_failures_total",
			Help: "Total number of uploads that failed before conversion",
		}),
		ConversionFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "speechcoach_conversion_failures_total",
			Help: "Total number of failed ffmpeg conversions",
		}),
		UploadDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "speechcoach_upload_duration_seconds",
			Help:    "Time to store and convert an uploaded clip",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 12),
		}),
		CounterPersistFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "speechcoach_counter_persist_failures_total",
			Help: "Total number of failed writes of the filename counter file",
		}),
		AnalyzeRequests: factory.NewCounter(prometheus.CounterOpts{
			Name: "speechcoach_analyze_requests_total",
			Help: "Total number of analysis requests sent to the model provider",
		}),
		AnalyzeFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "speechcoach_analyze_failures_total",
			Help: "Total number of analysis requests that failed at the provider",
		}),
		AnalyzeRetries: factory.NewCounter(prometheus.CounterOpts{
			Name: "speechcoach_analyze_retries_total",
			Help: "Total number of strict-JSON retries after an unparseable model response",
		}),
		AnalyzeUnparsed: factory.NewCounter(prometheus.CounterOpts{
			Name: "speechcoach_analyze_unparsed_total",
			Help: "Total number of analyses whose model output stayed unparseable after retry",
		}),
		AnalyzeDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "speechcoach_analyze_duration_seconds",
			Help:    "End-to-end time of a model analysis request",
			Buckets: prometheus.ExponentialBuckets(0.25, 2, 12),
		}),
	}
}
