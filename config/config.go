package config

import "time"

var Version string

// Used so that we can generate fixed timestamps in tests
var Clock TimestampGenerator = RealTimestampGenerator{}

// Path to the media toolchain binaries (ffmpeg/ffprobe). The media
// package does not read it.
var PathMediaToolchainDir = "/usr/local/bin"

// Output canvas for vertical short-form playback.
const (
	CanvasWidth  = 1080
	CanvasHeight = 1920

	// Smaller canvas the implementer may fall back to for the
	// memory-intensive auto layout.
	AutoCanvasWidth  = 720
	AutoCanvasHeight = 1280
)

// Default re-frame zoom factor for layout=auto.
const DefaultAutoZoomFactor = 3.0

// Default worker registry name, stable across restarts.
const DefaultWorkerName = "opus-caption-worker"

// Maximum concurrent jobs a single broker installation is expected to
// carry in flight; purely advisory, no middleware enforces it.
const MaxJobsInFlight = 8

// The maximum allowed input file size.
const MaxInputFileSizeBytes = 30 * 1024 * 1024 * 1024 // 30 GiB

// Child-process timeouts, per §5 of the spec.
var (
	DownloadTimeout     = 30 * time.Minute
	AudioExtractTimeout = 5 * time.Minute
	CutTimeout          = 10 * time.Minute
	BurnTimeout         = 10 * time.Minute
	ProbeTimeout        = 60 * time.Second
	// Bounded secondary wait after a kill signal before giving up on reap.
	KillReapTimeout = 20 * time.Second
)

// Retry policy for the remote downloader — the only component the spec allows to retry.
const (
	DownloadMaxAttempts  = 3
	DownloadRetryBackoff = 3 * time.Second
)

// Default clip-length knobs, overridable per job.
const (
	DefaultMinClipLengthSecs    = 20
	DefaultMaxClipLengthSecs    = 60
	DefaultTargetClipLengthSecs = 30
	DefaultClipDurationSecs     = 30
)

// Automatic selection ceilings by source video duration, per §4.E.
type ceilingRule struct {
	MinDuration time.Duration
	Ceiling     int
}

var SelectionCeilings = []ceilingRule{
	{MinDuration: 20 * time.Minute, Ceiling: 10},
	{MinDuration: 10 * time.Minute, Ceiling: 8},
	{MinDuration: 5 * time.Minute, Ceiling: 5},
	{MinDuration: 2 * time.Minute, Ceiling: 3},
	{MinDuration: 0, Ceiling: 2},
}

// AutomaticCeiling returns the automatic ceiling for a given video duration.
func AutomaticCeiling(total time.Duration) int {
	for _, rule := range SelectionCeilings {
		if total >= rule.MinDuration {
			return rule.Ceiling
		}
	}
	return SelectionCeilings[len(SelectionCeilings)-1].Ceiling
}

// Heartbeat/claim tuning for the job queue broker.
var (
	HeartbeatInterval       = 10 * time.Second
	HeartbeatMissedAllowed  = 3
	ClaimStaleAfter         = HeartbeatInterval * time.Duration(HeartbeatMissedAllowed)
	DequeueBlockingInterval = 5 * time.Second
)
