// Package queue implements the job broker (§4.H): atomic enqueue,
// blocking dequeue by a FIFO worker claim, heartbeat-based claim
// release, terminal transitions, and progress snapshots, all backed by
// Redis.
package queue

import (
	"encoding/json"

	"github.com/clipforge/viralclip/config"
	"github.com/clipforge/viralclip/job"
)

// Record is the full broker-side state of one job: its payload plus
// whatever state/progress/result the worker has reported so far.
type Record struct {
	Payload    job.Payload          `json:"payload"`
	State      job.State            `json:"state"`
	Progress   job.ProgressSnapshot `json:"progress"`
	Result     []job.ClipRecord     `json:"result,omitempty"`
	Error      string               `json:"error,omitempty"`
	Traceback  string               `json:"traceback,omitempty"`
	WorkerID   string               `json:"workerId,omitempty"`
	EnqueuedAt int64                `json:"enqueuedAt"`
	ClaimedAt  int64                `json:"claimedAt,omitempty"`
}

func (r Record) marshal() ([]byte, error) {
	return json.Marshal(r)
}

func unmarshalRecord(data []byte) (Record, error) {
	var r Record
	err := json.Unmarshal(data, &r)
	return r, err
}

// nowUnixMilli uses the injectable config.Clock so broker tests can run
// against a FixedTimestampGenerator.
func nowUnixMilli() int64 { return config.Clock.GetTime().UnixMilli() }
