package worker

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/clipforge/viralclip/asr"
	"github.com/clipforge/viralclip/caption"
	"github.com/clipforge/viralclip/config"
	caterrs "github.com/clipforge/viralclip/errors"
	"github.com/clipforge/viralclip/face"
	"github.com/clipforge/viralclip/job"
	"github.com/clipforge/viralclip/log"
	"github.com/clipforge/viralclip/media"
	"github.com/clipforge/viralclip/metrics"
	"github.com/clipforge/viralclip/progress"
	"github.com/clipforge/viralclip/render"
	"github.com/clipforge/viralclip/selector"
)

// runPipeline drives one job from a bare source URL to a finished clip
// list: download, probe, transcribe, select, then render each clip in
// turn. A per-clip failure is recorded on that clip's record and does
// not stop the remaining clips; the job only fails outright if every
// selected clip fails, or if an earlier stage (download, transcription,
// selection) itself errors.
func (w *Worker) runPipeline(ctx context.Context, jobID string, payload job.Payload, workDir string, reporter *progress.Reporter) ([]job.ClipRecord, error) {
	reporter.Set(0, "downloading", "downloading source video")
	sourcePath, _, err := w.Caps.Downloader.Download(ctx, jobID, payload.SourceURL, filepath.Join(workDir, "source_*"))
	if err != nil {
		return nil, err
	}
	if err := w.checkCancelled(ctx, jobID); err != nil {
		return nil, err
	}

	duration, err := media.ProbeDuration(ctx, jobID, sourcePath, config.ProbeTimeout)
	if err != nil {
		return nil, err
	}

	reporter.Set(0.1, "extracting_audio", "extracting audio track")
	audioPath := filepath.Join(workDir, "audio.wav")
	if err := media.ExtractAudio(ctx, jobID, sourcePath, audioPath, 16000, 1); err != nil {
		return nil, err
	}
	if err := w.checkCancelled(ctx, jobID); err != nil {
		return nil, err
	}

	reporter.Set(0.15, "transcribing", "transcribing speech")
	transcribeStart := time.Now()
	segments, detectedLanguage, err := asr.Transcribe(ctx, w.Caps.ASRModel, audioPath, asr.Options{Language: payload.VideoLanguage})
	metrics.Metrics.Pipeline.TranscriptionDuration.Observe(time.Since(transcribeStart).Seconds())
	if err != nil {
		return nil, err
	}
	log.Log(jobID, "transcription complete", "detected_language", detectedLanguage, "segments", len(segments))
	segments = restrictTimeframe(segments, payload.TimeframeStart, payload.TimeframeEnd)
	if err := w.checkCancelled(ctx, jobID); err != nil {
		return nil, err
	}

	minLen, maxLen, targetLen := clipLengthKnobs(payload)
	reporter.Set(0.3, "selecting", "selecting clip candidates")
	candidates := selector.Segment(segments, minLen, maxLen, targetLen)
	metrics.Metrics.Pipeline.SelectionCandidates.Observe(float64(len(candidates)))
	if len(candidates) == 0 {
		return nil, caterrs.SelectionEmpty
	}
	ranked := selector.Rank(candidates, targetLen, w.Caps.Sentiment)
	selected := selector.SelectTop(ranked, payload.MaxClips, duration, targetLen)
	metrics.Metrics.Pipeline.ClipsSelected.Observe(float64(len(selected)))
	if len(selected) == 0 {
		return nil, caterrs.SelectionEmpty
	}

	template, err := w.Caps.Templates.Get(payload.OpusTemplate)
	if err != nil {
		return nil, caterrs.NewValidationError("unknown opus_template %q", payload.OpusTemplate)
	}

	translator, transliterator, targetLanguage := captionAdapters(w.Caps, payload, detectedLanguage)
	speakerAt := w.speakerAtFunc(audioPath)
	renderer := render.NewRenderer(w.Caps.Sampler)

	outputDir := payload.OutputDir
	if outputDir == "" {
		outputDir = w.OutputDir
	}

	clips := make([]job.ClipRecord, 0, len(selected))
	var successCount int
	for i, candidate := range selected {
		if err := w.checkCancelled(ctx, jobID); err != nil {
			return nil, err
		}

		reporter.Set(0.3+0.65*float64(i)/float64(len(selected)), "rendering",
			fmt.Sprintf("rendering clip %d of %d", i+1, len(selected)))

		renderStart := time.Now()
		record, err := renderer.RenderClip(ctx, render.Options{
			JobID:          jobID,
			Index:          i,
			SourcePath:     sourcePath,
			WorkDir:        workDir,
			OutputDir:      outputDir,
			Candidate:      candidate,
			Template:       template,
			Layout:         payload.Layout,
			LayoutAware:    true,
			Translator:     translator,
			Transliterator: transliterator,
			TargetLanguage: targetLanguage,
			SpeakerAt:      speakerAt,
		})
		metrics.Metrics.Pipeline.RenderDuration.WithLabelValues("clip").Observe(time.Since(renderStart).Seconds())
		if err != nil {
			log.LogError(jobID, "clip render failed", err, "index", i)
			metrics.Metrics.Pipeline.RenderAttempts.WithLabelValues("failure").Inc()
			metrics.Metrics.Pipeline.RenderStageFailures.WithLabelValues(record.FailedStage).Inc()
		} else {
			successCount++
			metrics.Metrics.Pipeline.RenderAttempts.WithLabelValues("success").Inc()
		}
		clips = append(clips, record)
	}

	if successCount == 0 {
		return clips, caterrs.NewRenderError("rendering", fmt.Errorf("all %d clips failed", len(selected)))
	}

	reporter.Set(0.97, "finalizing", "writing analysis")
	if err := render.WriteAnalysis(outputDir, clips, targetLen); err != nil {
		log.LogError(jobID, "failed to write analysis file", err)
	}

	return clips, nil
}

func (w *Worker) checkCancelled(ctx context.Context, jobID string) error {
	if w.cancelled(ctx, jobID) {
		return fmt.Errorf("cancelled")
	}
	return nil
}

func clipLengthKnobs(p job.Payload) (minLen, maxLen, targetLen float64) {
	minLen = p.MinClipLength
	if minLen <= 0 {
		minLen = config.DefaultMinClipLengthSecs
	}
	maxLen = p.MaxClipLength
	if maxLen <= 0 {
		maxLen = config.DefaultMaxClipLengthSecs
	}
	targetLen = p.TargetClipLength
	if targetLen <= 0 {
		targetLen = config.DefaultTargetClipLengthSecs
	}
	return minLen, maxLen, targetLen
}

func restrictTimeframe(segments []job.TranscriptSegment, start, end int) []job.TranscriptSegment {
	if start <= 0 && end <= 0 {
		return segments
	}
	var out []job.TranscriptSegment
	for _, seg := range segments {
		if start > 0 && seg.Start < float64(start) {
			continue
		}
		if end > 0 && seg.End > float64(end) {
			continue
		}
		out = append(out, seg)
	}
	return out
}

func captionAdapters(caps Capabilities, p job.Payload, detectedLanguage string) (caption.Translator, caption.Transliterator, string) {
	if !p.TranslateCaptions || p.CaptionLanguage == "" {
		return nil, nil, ""
	}
	if caps.Translator != nil {
		return caps.Translator, nil, p.CaptionLanguage
	}
	if caps.Transliterator != nil {
		return nil, caps.Transliterator, ""
	}
	return nil, nil, ""
}

// speakerAtFunc builds the closure the speaker_colored_block recipe
// uses to label which speaker is active at a given transcript time, or
// nil when no feature extractor is configured.
func (w *Worker) speakerAtFunc(audioPath string) func(t float64) string {
	if w.Caps.Extractor == nil {
		return nil
	}
	return func(t float64) string {
		return face.VoiceWindow(w.Caps.Extractor, audioPath, t, t+1)
	}
}
