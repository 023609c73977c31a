package progress

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/require"
)

// counter is a trivial thread-safe accumulator used to drive TrackCount
// in these tests; it stands in for a download/render byte counter.
type counter struct {
	n uint64
}

func (c *counter) Accumulate(delta uint64) {
	atomic.AddUint64(&c.n, delta)
}

func (c *counter) Size() uint64 {
	return atomic.LoadUint64(&c.n)
}

type recordingSink struct {
	updates []sinkUpdate
}

type sinkUpdate struct {
	jobID      string
	percentage int
	stage      string
	message    string
}

func (s *recordingSink) UpdateProgress(jobID string, percentage int, stage, message string) error {
	s.updates = append(s.updates, sinkUpdate{jobID, percentage, stage, message})
	return nil
}

func TestProgressNotificationThrottling(t *testing.T) {
	mock, acc, sink, cleanup := setup(t)
	defer cleanup()

	acc.Accumulate(1)
	forward(mock, 1*time.Second)

	acc.Accumulate(1)
	forward(mock, 1*time.Second)

	require.Equal(t, 1, len(sink.updates))
}

func TestProgressNotificationInterval(t *testing.T) {
	mock, acc, sink, cleanup := setup(t)
	defer cleanup()

	acc.Accumulate(1)
	forward(mock, 1*time.Second)

	acc.Accumulate(1)
	forward(mock, 10*time.Second)

	require.Equal(t, 2, len(sink.updates))
}

func TestProgressBucketChange(t *testing.T) {
	mock, acc, sink, cleanup := setup(t)
	defer cleanup()

	acc.Accumulate(1)
	forward(mock, 1*time.Second)

	acc.Accumulate(25)
	forward(mock, 1*time.Second)

	require.Equal(t, 2, len(sink.updates))
}

func TestFastProgressBucketChange(t *testing.T) {
	mock, acc, sink, cleanup := setup(t)
	defer cleanup()

	acc.Accumulate(1)
	forward(mock, 1*time.Second)

	acc.Accumulate(25)
	forward(mock, 500*time.Millisecond)

	require.Equal(t, 1, len(sink.updates))
}

func TestReporterReportsStageAndMessage(t *testing.T) {
	mock, acc, sink, cleanup := setup(t)
	defer cleanup()

	acc.Accumulate(50)
	forward(mock, 1*time.Second)

	require.NotEmpty(t, sink.updates)
	last := sink.updates[len(sink.updates)-1]
	require.Equal(t, "job-1", last.jobID)
	require.Equal(t, "rendering", last.stage)
}

func setup(t require.TestingT) (*clock.Mock, *counter, *recordingSink, func()) {
	var realClock = Clock
	var mock = clock.NewMock()
	Clock = mock

	sink := &recordingSink{}
	acc := &counter{}

	reporter := NewReporter(context.Background(), sink, "job-1")
	reporter.TrackCount(acc.Size, 100, 1, "rendering", "burning subtitles")

	return mock, acc, sink, func() {
		Clock = realClock
		reporter.Stop()
	}
}

func forward(mock *clock.Mock, duration time.Duration) {
	time.Sleep(1 * time.Millisecond)
	mock.Add(duration)
}
