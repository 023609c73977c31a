package media

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"github.com/clipforge/viralclip/config"
	caterrs "github.com/clipforge/viralclip/errors"
	"github.com/clipforge/viralclip/log"
	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// ExtractAudio produces a linear PCM WAV from src.
func ExtractAudio(ctx context.Context, jobID, src, dst string, sampleRate, channels int) error {
	ctx, cancel := context.WithTimeout(ctx, config.AudioExtractTimeout)
	defer cancel()

	var stderr bytes.Buffer
	err := ffmpeg.Input(src).
		Output(dst, ffmpeg.KwArgs{
			"vn":       "",
			"ar":       sampleRate,
			"ac":       channels,
			"c:a":      "pcm_s16le",
		}).
		OverWriteOutput().WithErrorOutput(&stderr).WithContext(ctx).Run()
	if err != nil {
		log.LogError(jobID, "extracting audio failed", err, "stderr", stderr.String())
		return caterrs.NewExtractError(fmt.Errorf("%s: %w", stderr.String(), err))
	}
	return nil
}

// Cut re-encodes the [start, start+duration) range from src to dst
// (libx264 video, AAC audio). It always re-encodes; it has no
// stream-copy mode.
func Cut(ctx context.Context, jobID, src, dst string, start, duration float64) error {
	ctx, cancel := context.WithTimeout(ctx, config.CutTimeout)
	defer cancel()

	var stderr bytes.Buffer
	err := ffmpeg.Input(src, ffmpeg.KwArgs{"ss": start}).
		Output(dst, ffmpeg.KwArgs{
			"t":        duration,
			"c:v":      "libx264",
			"c:a":      "aac",
			"avoid_negative_ts": "make_zero",
		}).
		OverWriteOutput().WithErrorOutput(&stderr).WithContext(ctx).Run()
	if err != nil {
		log.LogError(jobID, "cutting clip failed", err, "stderr", stderr.String())
		return caterrs.NewRenderError("cutting", fmt.Errorf("%s: %w", stderr.String(), err))
	}
	return nil
}

// ReframeParams carries layout-specific parameters for Reframe.
type ReframeParams struct {
	CanvasWidth, CanvasHeight int
	FaceX, FaceY              float64
	ZoomFactor                float64
}

// Reframe transforms src onto the target canvas per the requested layout
// mode (§4.A): fit (letterbox+blur), fill (scale-to-cover+crop), square
// (centered inset+blur) or auto (face-centered crop+zoom).
func Reframe(ctx context.Context, jobID, src, dst string, mode string, p ReframeParams) error {
	ctx, cancel := context.WithTimeout(ctx, config.CutTimeout)
	defer cancel()

	w, h := p.CanvasWidth, p.CanvasHeight
	var filter string
	switch mode {
	case "fill":
		filter = fmt.Sprintf("scale=%d:%d:force_original_aspect_ratio=increase,crop=%d:%d", w, h, w, h)
	case "square":
		insetH := int(float64(h) * 0.625)
		filter = fmt.Sprintf(
			"split[bg][fg];[bg]scale=%d:%d,boxblur=20:5[bg2];[fg]scale=%d:%d:force_original_aspect_ratio=decrease[fg2];[bg2][fg2]overlay=(W-w)/2:(H-h)/2",
			w, h, w, insetH,
		)
	case "auto":
		zoom := p.ZoomFactor
		if zoom <= 0 {
			zoom = config.DefaultAutoZoomFactor
		}
		cropW, cropH := float64(w)/zoom, float64(h)/zoom
		cropX := p.FaceX - cropW/2
		cropY := p.FaceY - cropH/2
		filter = fmt.Sprintf("crop=%d:%d:%d:%d,scale=%d:%d", int(cropW), int(cropH), int(cropX), int(cropY), w, h)
	default: // fit
		filter = fmt.Sprintf(
			"split[bg][fg];[bg]scale=%d:%d,boxblur=20:5[bg2];[fg]scale=%d:-2[fg2];[bg2][fg2]overlay=(W-w)/2:(H-h)/2",
			w, h, w,
		)
	}

	var stderr bytes.Buffer
	err := ffmpeg.Input(src).
		Output(dst, ffmpeg.KwArgs{
			"vf":  filter,
			"c:v": "libx264",
			"c:a": "copy",
		}).
		OverWriteOutput().WithErrorOutput(&stderr).WithContext(ctx).Run()
	if err != nil {
		log.LogError(jobID, "reframing clip failed", err, "mode", mode, "stderr", stderr.String())
		return caterrs.NewRenderError("reframing", fmt.Errorf("%s: %w", stderr.String(), err))
	}
	return nil
}

// BurnSubtitles overlays subs onto src, re-encoding video and
// stream-copying audio.
func BurnSubtitles(ctx context.Context, jobID, src, subs, dst string) error {
	ctx, cancel := context.WithTimeout(ctx, config.BurnTimeout)
	defer cancel()

	var stderr bytes.Buffer
	err := ffmpeg.Input(src).
		Output(dst, ffmpeg.KwArgs{
			"vf":  fmt.Sprintf("ass=%s", subs),
			"c:v": "libx264",
			"c:a": "copy",
		}).
		OverWriteOutput().WithErrorOutput(&stderr).WithContext(ctx).Run()
	if err != nil {
		log.LogError(jobID, "burning subtitles failed", err, "stderr", stderr.String())
		return caterrs.NewRenderError("burning", fmt.Errorf("%s: %w", stderr.String(), err))
	}
	return nil
}

// Concat produces a single MP4 from N intermediate parts sharing codec
// parameters, using ffmpeg's concat demuxer via a generated list file.
func Concat(ctx context.Context, jobID string, parts []string, dst, listFile string) error {
	ctx, cancel := context.WithTimeout(ctx, config.CutTimeout)
	defer cancel()

	if err := writeConcatList(listFile, parts); err != nil {
		log.LogError(jobID, "writing concat list failed", err, "listFile", listFile)
		return caterrs.NewRenderError("compiling", err)
	}

	var stderr bytes.Buffer
	err := ffmpeg.Input(listFile, ffmpeg.KwArgs{"f": "concat", "safe": "0"}).
		Output(dst, ffmpeg.KwArgs{"c": "copy"}).
		OverWriteOutput().WithErrorOutput(&stderr).WithContext(ctx).Run()
	if err != nil {
		log.LogError(jobID, "concatenating clip parts failed", err, "stderr", stderr.String())
		return caterrs.NewRenderError("compiling", fmt.Errorf("%s: %w", stderr.String(), err))
	}
	return nil
}

func writeConcatList(listFile string, parts []string) error {
	var buf bytes.Buffer
	for _, p := range parts {
		fmt.Fprintf(&buf, "file '%s'\n", p)
	}
	return os.WriteFile(listFile, buf.Bytes(), 0644)
}
