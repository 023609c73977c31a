// Package progress throttles progress snapshots for a running job. It
// backs the worker's per-stage progress reporting (§4.I) and drives both
// the broker's update_progress RPC (§4.H) and the status sidecar file
// (§4.K) through a pluggable Sink.
package progress

import (
	"context"
	"errors"
	"fmt"
	"math"
	"runtime/debug"
	"sort"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/clipforge/viralclip/log"
)

var Clock = clock.New()

var progressReportBuckets = []float64{0, 0.25, 0.5, 0.75, 1}

const minProgressReportInterval = 10 * time.Second
const progressCheckInterval = 1 * time.Second

// Sink receives a throttled progress update. Implementations include the
// job queue broker (update_progress) and the status sidecar writer.
type Sink interface {
	UpdateProgress(jobID string, percentage int, stage, message string) error
}

type Reporter struct {
	ctx    context.Context
	cancel context.CancelFunc
	sink   Sink
	jobID  string

	mu                   sync.Mutex
	getProgress          func() float64
	scaleStart, scaleEnd float64
	stage, message       string

	lastReport   time.Time
	lastProgress float64
}

func NewReporter(ctx context.Context, sink Sink, jobID string) *Reporter {
	ctx, cancel := context.WithCancel(ctx)
	p := &Reporter{
		ctx:    ctx,
		cancel: cancel,
		sink:   sink,
		jobID:  jobID,
	}
	go p.mainLoop()
	return p
}

func (p *Reporter) Stop() {
	p.cancel()
}

// Track sets the progress function for the current stage, along with
// the proportion of overall job progress ([scaleStart,end]) that stage
// occupies, and the stage/message pair to report alongside it.
func (p *Reporter) Track(getProgress func() float64, end float64, stage, message string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if end < p.scaleStart || end > 1 {
		log.LogError(p.jobID, fmt.Sprintf("invalid end progress set jobID=%s lastProgress=%f endProgress=%f", p.jobID, p.lastProgress, end), errors.New("invalid end progress set"))
		if end > 1 {
			end = 1
		} else {
			end = p.scaleStart
		}
	}
	p.getProgress, p.scaleStart, p.scaleEnd = getProgress, p.scaleEnd, end
	p.stage, p.message = stage, message
}

// Set reports a single fixed value for the given stage, e.g. on stage entry.
func (p *Reporter) Set(val float64, stage, message string) {
	p.Track(func() float64 { return 1 }, val, stage, message)
}

func (p *Reporter) TrackCount(getCount func() uint64, size uint64, endProgress float64, stage, message string) {
	p.Track(func() float64 {
		if size == 0 {
			return 1
		}
		return float64(getCount()) / float64(size)
	}, endProgress, stage, message)
}

func (p *Reporter) mainLoop() {
	defer func() {
		if r := recover(); r != nil {
			log.LogError(p.jobID, fmt.Sprintf("panic reporting progress: value=%q stack:\n%s", r, string(debug.Stack())), errors.New("panic reporting job progress"))
		}
	}()
	timer := Clock.Ticker(progressCheckInterval)
	defer timer.Stop()
	for {
		select {
		case <-p.ctx.Done():
			return
		case <-timer.C:
			p.reportOnce()
		}
	}
}

func (p *Reporter) reportOnce() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.getProgress == nil {
		return
	}

	progress := p.calcProgress()
	if progress <= p.lastProgress {
		return
	}
	if !shouldReportProgress(progress, p.lastProgress, p.lastReport) {
		return
	}

	pct := int(math.Round(progress * 100))
	if err := p.sink.UpdateProgress(p.jobID, pct, p.stage, p.message); err != nil {
		log.LogError(p.jobID, fmt.Sprintf("error updating job progress jobID=%s progress=%v", p.jobID, progress), err)
		return
	}
	p.lastReport, p.lastProgress = Clock.Now(), progress
}

func shouldReportProgress(new, old float64, lastReportedAt time.Time) bool {
	return progressBucket(new) != progressBucket(old) ||
		Clock.Since(lastReportedAt) >= minProgressReportInterval
}

func (p *Reporter) calcProgress() float64 {
	val := p.getProgress()
	val = math.Max(val, 0)
	val = math.Min(val, 0.99)
	val = p.scaleStart + val*(p.scaleEnd-p.scaleStart)
	val = math.Round(val*1000) / 1000
	return val
}

func progressBucket(progress float64) int {
	return sort.SearchFloat64s(progressReportBuckets, progress)
}
