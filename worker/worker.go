// Package worker implements the claim/run/report loop (§4.I): claim a
// job from the broker, run the pipeline straight-line and
// single-threaded, and report progress and the final result back
// through the broker and the status sidecar.
package worker

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"
	"time"

	"github.com/clipforge/viralclip/asr"
	"github.com/clipforge/viralclip/caption"
	"github.com/clipforge/viralclip/clients"
	"github.com/clipforge/viralclip/config"
	caterrs "github.com/clipforge/viralclip/errors"
	"github.com/clipforge/viralclip/downloader"
	"github.com/clipforge/viralclip/face"
	"github.com/clipforge/viralclip/job"
	"github.com/clipforge/viralclip/log"
	"github.com/clipforge/viralclip/metrics"
	"github.com/clipforge/viralclip/progress"
	"github.com/clipforge/viralclip/queue"
	"github.com/clipforge/viralclip/selector"
	"github.com/clipforge/viralclip/status"
	"github.com/clipforge/viralclip/template"
)

// Capabilities are the injected, once-per-process dependencies the
// pipeline runs against (§9, "Global mutable state" redesign note) —
// constructed once and passed explicitly instead of living as
// long-lived worker-instance attributes.
type Capabilities struct {
	ASRModel       asr.Model
	Sentiment      selector.SentimentAdapter
	Sampler        face.FrameSampler
	Extractor      face.FeatureExtractor
	Downloader     *downloader.Downloader
	Templates      *template.Catalog
	Translator     caption.Translator
	Transliterator caption.Transliterator

	// Uploader and Bucket are optional: when both are set, the worker
	// mirrors every successfully rendered clip to S3-compatible storage
	// after the job completes (§3 DOMAIN STACK).
	Uploader clients.S3
	Bucket   string
}

// Worker owns one broker connection and processes jobs one at a time.
// Pools scale horizontally by running N Workers against the same
// broker under distinct names.
type Worker struct {
	Name        string
	Broker      *queue.Broker
	Sidecar     *status.Sidecar
	Caps        Capabilities
	WorkDirRoot string
	OutputDir   string
}

// New builds a Worker. name should default to config.DefaultWorkerName
// unless the deployment runs more than one worker process.
func New(name string, broker *queue.Broker, sidecar *status.Sidecar, caps Capabilities, workDirRoot, outputDir string) *Worker {
	return &Worker{Name: name, Broker: broker, Sidecar: sidecar, Caps: caps, WorkDirRoot: workDirRoot, OutputDir: outputDir}
}

// Run cleans up any stale registration left by a prior crash under this
// worker's name, then loops claim -> process until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	if err := w.Broker.CleanStaleRegistration(ctx, w.Name); err != nil {
		log.LogError("", "failed to clean stale worker registration", err, "worker", w.Name)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		payload, err := w.Broker.DequeueBlocking(ctx, w.Name, config.DequeueBlockingInterval)
		if err != nil {
			log.LogError("", "dequeue failed", err, "worker", w.Name)
			continue
		}
		if payload == nil {
			continue
		}

		w.processJob(ctx, *payload)
	}
}

func (w *Worker) processJob(ctx context.Context, payload job.Payload) {
	jobID := payload.JobID
	workDir := filepath.Join(w.WorkDirRoot, jobID)
	claimedAt := time.Now()

	defer func() {
		if err := os.RemoveAll(workDir); err != nil {
			log.LogError(jobID, "failed to clean job working directory", err, "dir", workDir)
		}
		if err := w.Broker.ClearCancel(ctx, jobID); err != nil {
			log.LogError(jobID, "failed to clear cancel flag", err)
		}
	}()

	if err := os.MkdirAll(workDir, 0755); err != nil {
		w.failJob(ctx, jobID, caterrs.NewInternalError(err))
		return
	}

	jobCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	heartbeatDone := make(chan struct{})
	go w.heartbeatLoop(ctx, jobID, heartbeatDone)
	defer close(heartbeatDone)

	sink := newMultiSink(w.Broker, w.Sidecar)
	reporter := progress.NewReporter(jobCtx, sink, jobID)
	defer reporter.Stop()

	defer func() {
		if r := recover(); r != nil {
			err := caterrs.NewInternalError(fmt.Errorf("panic: %v\n%s", r, debug.Stack()))
			w.failJob(ctx, jobID, err)
		}
	}()

	if err := validatePayload(payload); err != nil {
		w.failJob(ctx, jobID, err)
		return
	}

	clips, err := w.runPipeline(jobCtx, jobID, payload, workDir, reporter)
	if err != nil && !errors.Is(err, caterrs.SelectionEmpty) {
		if w.cancelled(ctx, jobID) {
			w.failJob(ctx, jobID, fmt.Errorf("cancelled"))
			return
		}
		w.failJob(ctx, jobID, err)
		return
	}
	if errors.Is(err, caterrs.SelectionEmpty) {
		log.Log(jobID, "no clips survived selection, completing with empty result")
		clips = nil
	}

	if err := w.Broker.Complete(ctx, jobID, clips); err != nil {
		log.LogError(jobID, "failed to record job completion", err)
	}
	if err := w.Sidecar.WriteTerminal(jobID, job.StateCompleted, "done", clips); err != nil {
		log.LogError(jobID, "failed to write terminal sidecar status", err)
	}
	metrics.Metrics.Pipeline.JobsCompleted.WithLabelValues().Inc()
	metrics.Metrics.Pipeline.JobDuration.WithLabelValues("completed").Observe(time.Since(claimedAt).Seconds())

	w.uploadClips(jobID, clips)
}

// uploadClips mirrors every successfully rendered clip to S3-compatible
// storage when an uploader is configured. A per-file failure is logged
// and does not affect the job's already-recorded completion.
func (w *Worker) uploadClips(jobID string, clips []job.ClipRecord) {
	if w.Caps.Uploader == nil || w.Caps.Bucket == "" {
		return
	}
	for _, clip := range clips {
		if clip.Status != job.ClipDone {
			continue
		}
		key := jobID + "/" + filepath.Base(clip.OutputPath)
		if err := w.Caps.Uploader.UploadFile(w.Caps.Bucket, key, clip.OutputPath); err != nil {
			log.LogError(jobID, "failed to upload clip to S3", err, "path", clip.OutputPath)
		}
	}
}

func (w *Worker) heartbeatLoop(ctx context.Context, jobID string, done <-chan struct{}) {
	ticker := time.NewTicker(config.HeartbeatInterval)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := w.Broker.Heartbeat(ctx, w.Name, jobID); err != nil {
				log.LogError(jobID, "heartbeat failed", err, "worker", w.Name)
			}
		}
	}
}

func (w *Worker) cancelled(ctx context.Context, jobID string) bool {
	cancelled, err := w.Broker.IsCancelled(ctx, jobID)
	if err != nil {
		return false
	}
	return cancelled
}

func (w *Worker) failJob(ctx context.Context, jobID string, err error) {
	reason, traceback := classify(err)
	log.LogError(jobID, "job failed", err, "reason", reason)
	if brokerErr := w.Broker.Fail(ctx, jobID, reason, traceback); brokerErr != nil {
		log.LogError(jobID, "failed to record job failure", brokerErr)
	}
	if sidecarErr := w.Sidecar.WriteTerminal(jobID, job.StateFailed, reason, nil); sidecarErr != nil {
		log.LogError(jobID, "failed to write terminal sidecar status", sidecarErr)
	}
	metrics.Metrics.Pipeline.JobsFailed.WithLabelValues(reasonKind(err)).Inc()
}

// reasonKind maps a pipeline error to a coarse label for the
// viralclip_jobs_failed_total metric, avoiding unbounded label
// cardinality from raw error messages.
func reasonKind(err error) string {
	switch {
	case caterrs.IsValidationError(err):
		return "validation"
	case caterrs.IsObjectNotFound(err):
		return "not_found"
	case err.Error() == "cancelled":
		return "cancelled"
	default:
		return "internal"
	}
}

func classify(err error) (reason, traceback string) {
	var internal caterrs.InternalError
	if ok := asInternalError(err, &internal); ok {
		return internal.Error(), internal.Trace
	}
	return err.Error(), ""
}

func asInternalError(err error, target *caterrs.InternalError) bool {
	if ie, ok := err.(caterrs.InternalError); ok {
		*target = ie
		return true
	}
	return false
}

func validatePayload(p job.Payload) error {
	if p.JobID == "" {
		return caterrs.NewValidationError("job_id is required")
	}
	if p.SourceURL == "" {
		return caterrs.NewValidationError("source_url is required")
	}
	return nil
}
