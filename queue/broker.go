package queue

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/clipforge/viralclip/config"
	caterrs "github.com/clipforge/viralclip/errors"
	"github.com/clipforge/viralclip/job"
	"github.com/clipforge/viralclip/metrics"
	goredis "github.com/redis/go-redis/v9"
)

const keyPrefix = "viralclip"

// Broker is the Redis-backed job queue (§4.H). All cross-worker
// coordination goes through it; every other piece of worker state is
// local to the worker process or on disk in the job's working
// directory.
type Broker struct {
	client goredis.UniversalClient
}

// NewBroker wraps a Redis client (or a miniredis-backed one in tests)
// as the job broker.
func NewBroker(client goredis.UniversalClient) *Broker {
	return &Broker{client: client}
}

func jobKey(jobID string) string    { return fmt.Sprintf("%s:job:%s", keyPrefix, jobID) }
func workerKey(name string) string  { return fmt.Sprintf("%s:worker:%s", keyPrefix, name) }
func queueListKey() string          { return keyPrefix + ":queue" }

// ErrAlreadyExists is returned by Enqueue when the job id is already
// registered in a non-terminal state.
var ErrAlreadyExists = errors.New("job id already enqueued")

// Enqueue atomically registers payload under jobID, rejecting it if the
// id is already claimed by a job that hasn't reached a terminal state.
func (b *Broker) Enqueue(ctx context.Context, jobID string, payload job.Payload) error {
	key := jobKey(jobID)

	txf := func(tx *goredis.Tx) error {
		existing, err := tx.Get(ctx, key).Bytes()
		if err != nil && !errors.Is(err, goredis.Nil) {
			return err
		}
		if err == nil {
			rec, parseErr := unmarshalRecord(existing)
			if parseErr == nil && !isTerminal(rec.State) {
				return ErrAlreadyExists
			}
		}

		rec := Record{Payload: payload, State: job.StateQueued, EnqueuedAt: nowUnixMilli()}
		data, err := rec.marshal()
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
			pipe.Set(ctx, key, data, 0)
			pipe.LPush(ctx, queueListKey(), jobID)
			return nil
		})
		return err
	}

	err := b.client.Watch(ctx, txf, key)
	if errors.Is(err, ErrAlreadyExists) {
		return ErrAlreadyExists
	}
	if err != nil {
		return caterrs.NewBrokerError(err)
	}
	return nil
}

// DequeueBlocking pops the next job id FIFO, waiting up to timeout for
// one to arrive, and marks it running under workerID. Returns nil, nil
// on timeout with nothing to claim.
func (b *Broker) DequeueBlocking(ctx context.Context, workerID string, timeout time.Duration) (*job.Payload, error) {
	result, err := b.client.BRPop(ctx, timeout, queueListKey()).Result()
	if errors.Is(err, goredis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, caterrs.NewBrokerError(err)
	}
	if len(result) < 2 {
		return nil, caterrs.NewBrokerError(fmt.Errorf("unexpected BRPOP reply: %v", result))
	}
	jobID := result[1]

	key := jobKey(jobID)
	var payload job.Payload
	txf := func(tx *goredis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if err != nil {
			return err
		}
		rec, err := unmarshalRecord(data)
		if err != nil {
			return err
		}
		rec.State = job.StateRunning
		rec.WorkerID = workerID
		rec.ClaimedAt = nowUnixMilli()
		payload = rec.Payload

		updated, err := rec.marshal()
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
			pipe.Set(ctx, key, updated, 0)
			return nil
		})
		return err
	}
	if err := b.client.Watch(ctx, txf, key); err != nil {
		return nil, caterrs.NewBrokerError(err)
	}

	if err := b.registerClaim(ctx, workerID, jobID); err != nil {
		return nil, caterrs.NewBrokerError(err)
	}

	return &payload, nil
}

func (b *Broker) registerClaim(ctx context.Context, workerID, jobID string) error {
	key := workerKey(workerID)
	if err := b.client.HSet(ctx, key, "job_id", jobID, "heartbeat_at", nowUnixMilli()).Err(); err != nil {
		return err
	}
	return b.client.Expire(ctx, key, config.ClaimStaleAfter).Err()
}

// Heartbeat refreshes workerID's liveness token so its claim on jobID
// is not considered stale.
func (b *Broker) Heartbeat(ctx context.Context, workerID, jobID string) error {
	key := workerKey(workerID)
	if err := b.client.HSet(ctx, key, "job_id", jobID, "heartbeat_at", nowUnixMilli()).Err(); err != nil {
		return caterrs.NewBrokerError(err)
	}
	if err := b.client.Expire(ctx, key, config.ClaimStaleAfter).Err(); err != nil {
		return caterrs.NewBrokerError(err)
	}
	return nil
}

// CleanStaleRegistration deletes a worker's registry hash unconditionally.
// A worker calls this for its own stable name at startup (§4.I) before
// registering fresh, so a crash that left a dangling hash never blocks
// the next run under the same name.
func (b *Broker) CleanStaleRegistration(ctx context.Context, workerID string) error {
	if err := b.client.Del(ctx, workerKey(workerID)).Err(); err != nil {
		return caterrs.NewBrokerError(err)
	}
	return nil
}

// ReleaseStale re-queues any job whose claiming worker's registration
// has expired (missed heartbeats past the threshold), letting another
// worker pick it up.
func (b *Broker) ReleaseStale(ctx context.Context) (int, error) {
	prefix := jobKey("")
	iter := b.client.Scan(ctx, 0, prefix+"*", 100).Iterator()
	var released int
	for iter.Next(ctx) {
		data, err := b.client.Get(ctx, iter.Val()).Bytes()
		if err != nil {
			continue
		}
		rec, err := unmarshalRecord(data)
		if err != nil || rec.State != job.StateRunning || rec.WorkerID == "" {
			continue
		}
		exists, err := b.client.Exists(ctx, workerKey(rec.WorkerID)).Result()
		if err != nil || exists > 0 {
			continue
		}
		if err := b.requeue(ctx, iter.Val()[len(prefix):]); err == nil {
			released++
			metrics.Metrics.Pipeline.HeartbeatMissed.Inc()
		}
	}
	if err := iter.Err(); err != nil {
		return released, caterrs.NewBrokerError(err)
	}
	return released, nil
}

func (b *Broker) requeue(ctx context.Context, jobID string) error {
	key := jobKey(jobID)
	txf := func(tx *goredis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if err != nil {
			return err
		}
		rec, err := unmarshalRecord(data)
		if err != nil {
			return err
		}
		if rec.State != job.StateRunning {
			return nil
		}
		rec.State = job.StateQueued
		rec.WorkerID = ""
		updated, err := rec.marshal()
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
			pipe.Set(ctx, key, updated, 0)
			pipe.LPush(ctx, queueListKey(), jobID)
			return nil
		})
		return err
	}
	return b.client.Watch(ctx, txf, key)
}

// Fail marks jobID failed with reason and traceback. Idempotent: a
// second call on an already-terminal job is a no-op.
func (b *Broker) Fail(ctx context.Context, jobID, reason, traceback string) error {
	return b.transition(ctx, jobID, func(rec *Record) {
		rec.State = job.StateFailed
		rec.Error = reason
		rec.Traceback = traceback
	})
}

// Complete marks jobID completed with the rendered clip result.
// Idempotent like Fail.
func (b *Broker) Complete(ctx context.Context, jobID string, result []job.ClipRecord) error {
	return b.transition(ctx, jobID, func(rec *Record) {
		rec.State = job.StateCompleted
		rec.Result = result
	})
}

func (b *Broker) transition(ctx context.Context, jobID string, apply func(rec *Record)) error {
	key := jobKey(jobID)
	txf := func(tx *goredis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, goredis.Nil) {
			return nil
		}
		if err != nil {
			return err
		}
		rec, err := unmarshalRecord(data)
		if err != nil {
			return err
		}
		if isTerminal(rec.State) {
			return nil
		}
		apply(&rec)
		updated, err := rec.marshal()
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
			pipe.Set(ctx, key, updated, 0)
			return nil
		})
		return err
	}
	if err := b.client.Watch(ctx, txf, key); err != nil {
		return caterrs.NewBrokerError(err)
	}
	return nil
}

// UpdateProgress stores the latest snapshot without a state transition,
// implementing progress.Sink so a *Reporter can drive it directly.
func (b *Broker) UpdateProgress(jobID string, percentage int, stage, message string) error {
	ctx := context.Background()
	key := jobKey(jobID)
	txf := func(tx *goredis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if err != nil {
			return err
		}
		rec, err := unmarshalRecord(data)
		if err != nil {
			return err
		}
		rec.Progress = job.ProgressSnapshot{
			State:      rec.State,
			Percentage: percentage,
			Stage:      stage,
			Message:    message,
			Timestamp:  nowUnixMilli(),
		}
		updated, err := rec.marshal()
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
			pipe.Set(ctx, key, updated, 0)
			return nil
		})
		return err
	}
	if err := b.client.Watch(ctx, txf, key); err != nil {
		return caterrs.NewBrokerError(err)
	}
	return nil
}

// Get returns the current record for jobID. The bool is false when the
// id is unknown, so callers can surface the "not_found" sentinel
// instead of raising.
func (b *Broker) Get(ctx context.Context, jobID string) (Record, bool, error) {
	data, err := b.client.Get(ctx, jobKey(jobID)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return Record{}, false, nil
	}
	if err != nil {
		return Record{}, false, caterrs.NewBrokerError(err)
	}
	rec, err := unmarshalRecord(data)
	if err != nil {
		return Record{}, false, caterrs.NewBrokerError(err)
	}
	return rec, true, nil
}

func isTerminal(s job.State) bool {
	return s == job.StateCompleted || s == job.StateFailed
}

func cancelKey(jobID string) string { return fmt.Sprintf("%s:cancel:%s", keyPrefix, jobID) }

// RequestCancel sets the cancellation flag a worker polls at stage
// boundaries (§5, "Cancellation"). It does not itself change job
// state; the worker observing the flag is responsible for the
// transition to failed/"cancelled".
func (b *Broker) RequestCancel(ctx context.Context, jobID string) error {
	if err := b.client.Set(ctx, cancelKey(jobID), "1", 0).Err(); err != nil {
		return caterrs.NewBrokerError(err)
	}
	return nil
}

// IsCancelled reports whether RequestCancel has been called for jobID.
func (b *Broker) IsCancelled(ctx context.Context, jobID string) (bool, error) {
	n, err := b.client.Exists(ctx, cancelKey(jobID)).Result()
	if err != nil {
		return false, caterrs.NewBrokerError(err)
	}
	return n > 0, nil
}

// ClearCancel removes the cancellation flag once a job reaches a
// terminal state, so the key doesn't linger forever.
func (b *Broker) ClearCancel(ctx context.Context, jobID string) error {
	if err := b.client.Del(ctx, cancelKey(jobID)).Err(); err != nil {
		return caterrs.NewBrokerError(err)
	}
	return nil
}

// QueueDepth returns the number of jobs currently waiting to be
// claimed. Callers poll this periodically to drive the
// viralclip_queue_depth gauge.
func (b *Broker) QueueDepth(ctx context.Context) (int64, error) {
	n, err := b.client.LLen(ctx, queueListKey()).Result()
	if err != nil {
		return 0, caterrs.NewBrokerError(err)
	}
	return n, nil
}

// RepairRegistry sweeps every worker:* registration hash and deletes
// the ones left dangling by a crash: a hash with no TTL (Expire never
// landed) or one whose claimed job is already terminal. Unlike
// CleanStaleRegistration, which a worker calls for its own name at
// startup, this is an operator tool for clearing out a whole fleet's
// stale claims after a bad deploy, without waiting for each one to
// expire naturally. It returns the number of hashes removed.
func (b *Broker) RepairRegistry(ctx context.Context) (int, error) {
	iter := b.client.Scan(ctx, 0, workerKey("*"), 100).Iterator()
	var repaired int
	for iter.Next(ctx) {
		workerName := iter.Val()

		ttl, err := b.client.TTL(ctx, workerName).Result()
		if err != nil {
			continue
		}
		if ttl < 0 {
			if err := b.client.Del(ctx, workerName).Err(); err == nil {
				repaired++
			}
			continue
		}

		jobID, err := b.client.HGet(ctx, workerName, "job_id").Result()
		if err != nil || jobID == "" {
			continue
		}
		rec, found, err := b.Get(ctx, jobID)
		if err != nil || !found {
			continue
		}
		if isTerminal(rec.State) {
			if err := b.client.Del(ctx, workerName).Err(); err == nil {
				repaired++
			}
		}
	}
	if err := iter.Err(); err != nil {
		return repaired, caterrs.NewBrokerError(err)
	}
	return repaired, nil
}
