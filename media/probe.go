// Package media is the thin, sequential façade over ffmpeg/ffprobe that
// the renderer drives: probe, extract-audio, cut, reframe, burn-subtitles
// and concat (§4.A). Every operation spawns a child process, captures
// its stderr (logged only on failure), and runs under a timeout: the
// probes take one from the caller, the others use config's
// per-operation timeouts.
package media

import (
	"context"
	"fmt"
	"time"

	caterrs "github.com/clipforge/viralclip/errors"
	"github.com/clipforge/viralclip/log"
	"gopkg.in/vansante/go-ffprobe.v2"
)

// ProbeDuration returns the duration in seconds of the media at path.
func ProbeDuration(ctx context.Context, jobID, path string, timeout time.Duration) (float64, error) {
	probeCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	data, err := ffprobe.ProbeURL(probeCtx, path)
	if err != nil {
		return 0, caterrs.NewProbeError(err)
	}
	if data.Format == nil {
		return 0, caterrs.NewProbeError(fmt.Errorf("no format information for %s", path))
	}
	if data.FirstVideoStream() == nil {
		return 0, caterrs.NewProbeError(fmt.Errorf("no decodable video stream in %s", path))
	}

	duration := data.Format.DurationSeconds
	log.Log(jobID, "probed source duration", "path", path, "duration", duration)
	return duration, nil
}

// Info is the subset of ffprobe's output the video-info endpoint (§4.J)
// surfaces to callers deciding whether a source is worth enqueuing.
type Info struct {
	DurationSeconds float64
	Width           int
	Height          int
	Codec           string
	FormatName      string
}

// ProbeInfo probes a remote or local source without downloading it first,
// the way GET /video-info does ahead of a POST /jobs submission.
func ProbeInfo(ctx context.Context, jobID, path string, timeout time.Duration) (Info, error) {
	probeCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	data, err := ffprobe.ProbeURL(probeCtx, path)
	if err != nil {
		return Info{}, caterrs.NewProbeError(err)
	}
	if data.Format == nil {
		return Info{}, caterrs.NewProbeError(fmt.Errorf("no format information for %s", path))
	}

	info := Info{
		DurationSeconds: data.Format.DurationSeconds,
		FormatName:      data.Format.FormatName,
	}
	if v := data.FirstVideoStream(); v != nil {
		info.Width = v.Width
		info.Height = v.Height
		info.Codec = v.CodecName
	}

	log.Log(jobID, "probed video info", "path", path, "duration", info.DurationSeconds, "width", info.Width, "height", info.Height)
	return info, nil
}
