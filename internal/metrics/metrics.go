package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "videoingest",
		Name:      "http_requests_total",
		Help:      "Total HTTP requests by method, path and status code.",
	}, []string{"method", "path", "status"})

	HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "videoingest",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request duration in seconds.",
		Buckets:   []float64{0.05, 0.1, 0.3, 0.5, 1, 2, 5, 10, 30},
	}, []string{"method", "path"})

	PipelineJobsScheduledTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "videoingest",
		Name:      "pipeline_jobs_scheduled_total",
		Help:      "Total number of videos scheduled onto the pipeline worker pool.",
	})

	PipelineJobsCompletedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "videoingest",
		Name:      "pipeline_jobs_completed_total",
		Help:      "Total number of pipeline jobs reaching a terminal status, by status.",
	}, []string{"status"})

	PipelineStepDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "videoingest",
		Name:      "pipeline_step_duration_seconds",
		Help:      "Duration of each pipeline step in seconds.",
		Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30},
	}, []string{"step"})

	PipelineQueueDepth = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "videoingest",
		Name:      "pipeline_queue_depth",
		Help:      "Number of videos scheduled but not yet claimed by a worker.",
	})

	PipelineWorkersBusy = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "videoingest",
		Name:      "pipeline_workers_busy",
		Help:      "Number of pipeline workers currently processing a video.",
	})

	StreamerBytesServedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "videoingest",
		Name:      "streamer_bytes_served_total",
		Help:      "Total bytes served by the Range Streamer.",
	})

	StreamerRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "videoingest",
		Name:      "streamer_requests_total",
		Help:      "Total Range Streamer requests by outcome (full, partial, not_satisfiable).",
	}, []string{"outcome"})

	PushHubClientsConnected = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "videoingest",
		Name:      "push_hub_clients_connected",
		Help:      "Number of websocket clients currently connected to the Push Hub.",
	})

	PushHubEventsDroppedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "videoingest",
		Name:      "push_hub_events_dropped_total",
		Help:      "Total events dropped because a subscriber's buffer was full.",
	})

	AnalyzerFlaggedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "videoingest",
		Name:      "analyzer_verdict_total",
		Help:      "Total Sensitivity Analyzer verdicts by outcome (safe, flagged).",
	}, []string{"verdict"})
)

// Register attaches every metric to reg. Called once from process wiring;
// tests construct their own registry or rely on promauto-free vars never
// touching prometheus.DefaultRegisterer until Register runs.
func Register(reg prometheus.Registerer) {
	reg.MustRegister(
		HTTPRequestsTotal,
		HTTPRequestDuration,
		PipelineJobsScheduledTotal,
		PipelineJobsCompletedTotal,
		PipelineStepDuration,
		PipelineQueueDepth,
		PipelineWorkersBusy,
		StreamerBytesServedTotal,
		StreamerRequestsTotal,
		PushHubClientsConnected,
		PushHubEventsDroppedTotal,
		AnalyzerFlaggedTotal,
	)
}
