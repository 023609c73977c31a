package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ClientMetrics instruments outbound HTTP calls made through
// MonitorRequest (the downloader).
type ClientMetrics struct {
	RetryCount      *prometheus.GaugeVec
	FailureCount    *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
}

// PipelineMetrics instruments the job control plane and render pipeline.
type PipelineMetrics struct {
	JobsSubmitted        *prometheus.CounterVec
	JobsCompleted        *prometheus.CounterVec
	JobsFailed           *prometheus.CounterVec
	JobDuration          *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	TranscriptionDuration prometheus.Histogram
	SelectionCandidates   prometheus.Histogram
	ClipsSelected         prometheus.Histogram

	RenderAttempts      *prometheus.CounterVec
	RenderDuration      *prometheus.HistogramVec
	RenderStageFailures *prometheus.CounterVec

	QueueDepth      prometheus.Gauge
	QueueClaimAge   prometheus.Histogram
	HeartbeatMissed prometheus.Counter
}

var Metrics = struct {
	Client   ClientMetrics
	Pipeline PipelineMetrics
}{
	Client: ClientMetrics{
		RetryCount: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Name: "viralclip_client_retry_count",
			Help: "Number of retries for the most recent outbound request, by host.",
		}, []string{"host"}),
		FailureCount: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "viralclip_client_failure_count",
			Help: "Count of outbound request failures, by host and status code.",
		}, []string{"host", "status_code"}),
		RequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name: "viralclip_client_request_duration_seconds",
			Help: "Outbound request duration, by host.",
		}, []string{"host"}),
	},
	Pipeline: PipelineMetrics{
		JobsSubmitted: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "viralclip_jobs_submitted_total",
			Help: "Number of jobs enqueued.",
		}, []string{}),
		JobsCompleted: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "viralclip_jobs_completed_total",
			Help: "Number of jobs that reached the completed state.",
		}, []string{}),
		JobsFailed: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "viralclip_jobs_failed_total",
			Help: "Number of jobs that reached the failed state, by reason kind.",
		}, []string{"reason"}),
		JobDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "viralclip_job_duration_seconds",
			Help:    "Wall-clock time from claim to terminal state.",
			Buckets: prometheus.ExponentialBuckets(5, 2, 12),
		}, []string{"result"}),
		HTTPRequestsInFlight: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "viralclip_http_requests_in_flight",
			Help: "Number of control-API requests currently being handled.",
		}),
		TranscriptionDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name: "viralclip_transcription_duration_seconds",
			Help: "Time spent in the ASR adapter per job.",
		}),
		SelectionCandidates: promauto.NewHistogram(prometheus.HistogramOpts{
			Name: "viralclip_selection_candidates",
			Help: "Number of candidate windows produced by the clip selector.",
		}),
		ClipsSelected: promauto.NewHistogram(prometheus.HistogramOpts{
			Name: "viralclip_clips_selected",
			Help: "Number of clips selected for rendering.",
		}),
		RenderAttempts: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "viralclip_render_attempts_total",
			Help: "Per-clip render attempts, by result.",
		}, []string{"result"}),
		RenderDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name: "viralclip_render_duration_seconds",
			Help: "Per-clip render duration, by stage.",
		}, []string{"stage"}),
		RenderStageFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "viralclip_render_stage_failures_total",
			Help: "Per-clip render failures, by stage.",
		}, []string{"stage"}),
		QueueDepth: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "viralclip_queue_depth",
			Help: "Approximate number of queued jobs observed at last poll.",
		}),
		QueueClaimAge: promauto.NewHistogram(prometheus.HistogramOpts{
			Name: "viralclip_queue_claim_age_seconds",
			Help: "Time a job spent queued before being claimed.",
		}),
		HeartbeatMissed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "viralclip_heartbeat_missed_total",
			Help: "Number of times a worker's claim was released due to missed heartbeats.",
		}),
	},
}
