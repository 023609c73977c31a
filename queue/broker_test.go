package queue

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/clipforge/viralclip/job"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestBroker(t *testing.T) (*Broker, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewBroker(client), mr
}

func TestEnqueueDequeueComplete(t *testing.T) {
	b, _ := newTestBroker(t)
	ctx := context.Background()

	payload := job.Payload{JobID: "job-1", SourceURL: "https://example.com/v.mp4"}
	require.NoError(t, b.Enqueue(ctx, "job-1", payload))

	require.ErrorIs(t, b.Enqueue(ctx, "job-1", payload), ErrAlreadyExists)

	got, err := b.DequeueBlocking(ctx, "worker-a", time.Second)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, "job-1", got.JobID)

	require.NoError(t, b.Complete(ctx, "job-1", nil))

	rec, found, err := b.Get(ctx, "job-1")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, job.StateCompleted, rec.State)
}

func TestQueueDepth(t *testing.T) {
	b, _ := newTestBroker(t)
	ctx := context.Background()

	depth, err := b.QueueDepth(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(0), depth)

	require.NoError(t, b.Enqueue(ctx, "job-1", job.Payload{JobID: "job-1"}))
	require.NoError(t, b.Enqueue(ctx, "job-2", job.Payload{JobID: "job-2"}))

	depth, err = b.QueueDepth(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(2), depth)
}

func TestReleaseStaleRequeuesExpiredClaim(t *testing.T) {
	b, mr := newTestBroker(t)
	ctx := context.Background()

	require.NoError(t, b.Enqueue(ctx, "job-1", job.Payload{JobID: "job-1"}))
	_, err := b.DequeueBlocking(ctx, "worker-a", time.Second)
	require.NoError(t, err)

	mr.FastForward(2 * time.Hour)

	released, err := b.ReleaseStale(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, released)

	rec, found, err := b.Get(ctx, "job-1")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, job.StateQueued, rec.State)
}

func TestRepairRegistryRemovesTerminalJobClaims(t *testing.T) {
	b, _ := newTestBroker(t)
	ctx := context.Background()

	require.NoError(t, b.Enqueue(ctx, "job-1", job.Payload{JobID: "job-1"}))
	_, err := b.DequeueBlocking(ctx, "worker-a", time.Second)
	require.NoError(t, err)
	require.NoError(t, b.Complete(ctx, "job-1", nil))

	repaired, err := b.RepairRegistry(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, repaired)

	_, found, err := b.Get(ctx, "job-1")
	require.NoError(t, err)
	require.True(t, found)
}

func TestRepairRegistryLeavesLiveClaimsAlone(t *testing.T) {
	b, _ := newTestBroker(t)
	ctx := context.Background()

	require.NoError(t, b.Enqueue(ctx, "job-2", job.Payload{JobID: "job-2"}))
	_, err := b.DequeueBlocking(ctx, "worker-b", time.Second)
	require.NoError(t, err)

	repaired, err := b.RepairRegistry(ctx)
	require.NoError(t, err)
	require.Equal(t, 0, repaired)

	rec, found, err := b.Get(ctx, "job-2")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, job.StateRunning, rec.State)
}

func TestCancelFlagLifecycle(t *testing.T) {
	b, _ := newTestBroker(t)
	ctx := context.Background()

	cancelled, err := b.IsCancelled(ctx, "job-1")
	require.NoError(t, err)
	require.False(t, cancelled)

	require.NoError(t, b.RequestCancel(ctx, "job-1"))
	cancelled, err = b.IsCancelled(ctx, "job-1")
	require.NoError(t, err)
	require.True(t, cancelled)

	require.NoError(t, b.ClearCancel(ctx, "job-1"))
	cancelled, err = b.IsCancelled(ctx, "job-1")
	require.NoError(t, err)
	require.False(t, cancelled)
}
