// Package render implements the per-clip rendering pipeline (§4.G):
// cut, re-frame, adjust timestamps, compile captions, burn, emit a
// clip record. A job's clips render sequentially to bound peak memory;
// a per-clip failure is isolated and does not stop later clips.
package render

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/clipforge/viralclip/caption"
	"github.com/clipforge/viralclip/config"
	caterrs "github.com/clipforge/viralclip/errors"
	"github.com/clipforge/viralclip/face"
	"github.com/clipforge/viralclip/job"
	"github.com/clipforge/viralclip/log"
	"github.com/clipforge/viralclip/media"
)

// Options configures one clip render.
type Options struct {
	JobID           string
	Index           int
	SourcePath      string
	WorkDir         string
	OutputDir       string
	Candidate       job.CandidateWindow
	Template        job.StyleTemplate
	Layout          job.Layout
	LayoutAware     bool
	PreferLeftFace  bool
	Translator      caption.Translator
	Transliterator  caption.Transliterator
	TargetLanguage  string
	SpeakerAt       func(t float64) string
}

// Renderer drives clips through the state machine, sharing a
// per-source face-coordinate cache across clips from the same job.
type Renderer struct {
	faces *faceCache
}

// NewRenderer builds a Renderer backed by the given face sampler,
// which may be nil for layouts that never need auto-framing.
func NewRenderer(sampler face.FrameSampler) *Renderer {
	return &Renderer{faces: newFaceCache(sampler)}
}

// RenderClip runs one clip through pending -> cutting -> reframing ->
// compiling -> burning -> done, cleaning up every intermediate file
// regardless of outcome. On failure the returned ClipRecord carries
// Status=ClipFailed, FailedStage and FailureMessage; the caller decides
// whether to continue to the next clip.
func (r *Renderer) RenderClip(ctx context.Context, opts Options) (job.ClipRecord, error) {
	record := job.ClipRecord{
		Index:      opts.Index,
		SourcePath: opts.SourcePath,
		Start:      opts.Candidate.Start,
		End:        opts.Candidate.End,
		Layout:     opts.Layout,
		Template:   opts.Template.Name,
		Duration:   opts.Candidate.Duration(),
		Score:      opts.Candidate.Score.Total,
		Text:       opts.Candidate.Text,
		Status:     job.ClipPending,
	}

	intermediates := newCleanupSet()
	defer intermediates.removeAll(opts.JobID)

	cutPath := filepath.Join(opts.WorkDir, fmt.Sprintf("clip_%d_cut.mp4", opts.Index))
	intermediates.add(cutPath)
	record.Status = job.ClipCutting
	if err := media.Cut(ctx, opts.JobID, opts.SourcePath, cutPath, opts.Candidate.Start, opts.Candidate.Duration()); err != nil {
		return fail(record, "cutting", err)
	}

	canvasWidth, canvasHeight := canvasFor(opts.Layout)
	reframedPath := filepath.Join(opts.WorkDir, fmt.Sprintf("clip_%d_reframed.mp4", opts.Index))
	intermediates.add(reframedPath)
	record.Status = job.ClipReframing

	params := media.ReframeParams{CanvasWidth: canvasWidth, CanvasHeight: canvasHeight}
	if opts.Layout == job.LayoutAuto {
		x, y := r.faces.centerFor(opts.SourcePath, opts.Candidate.Start, opts.Candidate.End,
			float64(canvasWidth), float64(canvasHeight), opts.PreferLeftFace)
		params.FaceX, params.FaceY = x, y
		params.ZoomFactor = config.DefaultAutoZoomFactor
	}
	if err := media.Reframe(ctx, opts.JobID, cutPath, reframedPath, string(opts.Layout), params); err != nil {
		return fail(record, "reframing", err)
	}

	record.Status = job.ClipCompiling
	segments := shiftSegments(opts.Candidate.Segments, opts.Candidate.Start)

	var err error
	if opts.Translator != nil && opts.TargetLanguage != "" {
		segments, err = caption.Translate(segments, opts.Translator, opts.TargetLanguage)
	} else if opts.Transliterator != nil {
		segments, err = caption.Transliterate(segments, opts.Transliterator)
	}
	if err != nil {
		return fail(record, "compiling", caterrs.NewRenderError("compiling", err))
	}

	doc, err := caption.Compile(segments, caption.Options{
		Template:     opts.Template,
		Layout:       string(opts.Layout),
		LayoutAware:  opts.LayoutAware,
		CanvasWidth:  canvasWidth,
		CanvasHeight: canvasHeight,
		Seed:         seedFor(opts.JobID, opts.Index),
		SpeakerAt:    opts.SpeakerAt,
	})
	if err != nil {
		return fail(record, "compiling", caterrs.NewRenderError("compiling", err))
	}

	subsPath := filepath.Join(opts.WorkDir, fmt.Sprintf("clip_%d.ass", opts.Index))
	intermediates.add(subsPath)
	if err := os.WriteFile(subsPath, []byte(doc.Render()), 0644); err != nil {
		return fail(record, "compiling", caterrs.NewRenderError("compiling", err))
	}

	record.Status = job.ClipBurning
	outputName := OutputFileName(opts.JobID, opts.Index, opts.Candidate.Score.Total, opts.Layout, opts.Template.Name)
	outputPath := filepath.Join(opts.OutputDir, outputName)
	if err := media.BurnSubtitles(ctx, opts.JobID, reframedPath, subsPath, outputPath); err != nil {
		return fail(record, "burning", err)
	}

	record.Status = job.ClipDone
	record.OutputPath = outputPath
	log.Log(opts.JobID, "clip rendered", "index", opts.Index, "output", outputPath)
	return record, nil
}

func fail(record job.ClipRecord, stage string, err error) (job.ClipRecord, error) {
	record.Status = job.ClipFailed
	record.FailedStage = stage
	record.FailureMessage = err.Error()
	return record, err
}

func canvasFor(layout job.Layout) (int, int) {
	if layout == job.LayoutAuto {
		return config.AutoCanvasWidth, config.AutoCanvasHeight
	}
	return config.CanvasWidth, config.CanvasHeight
}

// seedFor derives a stable per-clip seed so caption.Compile's
// randomized recipes (bubble pop, explode jitter) are reproducible
// across re-renders of the same job and clip index.
func seedFor(jobID string, index int) int64 {
	var h int64 = 1469598103934665603
	for _, c := range jobID {
		h ^= int64(c)
		h *= 1099511628211
	}
	return h ^ int64(index)
}

// shiftSegments shifts every word and segment time by -offset so the
// caption script aligns with the 0-based intermediate (§4.G step 3).
func shiftSegments(segments []job.TranscriptSegment, offset float64) []job.TranscriptSegment {
	out := make([]job.TranscriptSegment, len(segments))
	for i, seg := range segments {
		words := make([]job.WordToken, len(seg.Words))
		for j, w := range seg.Words {
			words[j] = job.WordToken{Start: w.Start - offset, End: w.End - offset, Text: w.Text}
		}
		out[i] = job.TranscriptSegment{Start: seg.Start - offset, End: seg.End - offset, Text: seg.Text, Words: words}
	}
	return out
}

type cleanupSet struct {
	paths []string
}

func newCleanupSet() *cleanupSet {
	return &cleanupSet{}
}

func (c *cleanupSet) add(path string) {
	c.paths = append(c.paths, path)
}

func (c *cleanupSet) removeAll(jobID string) {
	for _, p := range c.paths {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			log.LogError(jobID, "failed to clean up intermediate file", err, "path", p)
		}
	}
}
