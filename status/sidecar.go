// Package status writes the status sidecar file (§4.K): a JSON
// snapshot of a job's latest progress, mirrored to disk as an
// out-of-band channel parallel to the broker so downstream tooling can
// observe progress without broker access.
package status

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/clipforge/viralclip/config"
	"github.com/clipforge/viralclip/job"
)

// snapshot is the wire schema from §6: "Status snapshot file".
type snapshot struct {
	JobID      string           `json:"jobId"`
	Status     string           `json:"status"`
	Progress   int              `json:"progress"`
	Stage      string           `json:"stage"`
	Message    string           `json:"message"`
	Timestamp  int64            `json:"timestamp"`
	Clips      []job.ClipRecord `json:"clips,omitempty"`
}

// statusFor maps a job.State to the sidecar's own status vocabulary,
// which is coarser than the broker's state machine (no "queued").
func statusFor(state job.State) string {
	switch state {
	case job.StateCompleted:
		return "completed"
	case job.StateFailed:
		return "error"
	default:
		return "processing"
	}
}

// Sidecar implements progress.Sink by overwriting a per-job JSON file
// in place. Writes are serialized per sidecar instance; callers
// typically hold one Sidecar per worker process.
type Sidecar struct {
	mu        sync.Mutex
	outputDir string
}

// New returns a Sidecar that writes under outputDir.
func New(outputDir string) *Sidecar {
	return &Sidecar{outputDir: outputDir}
}

func (s *Sidecar) path(jobID string) string {
	return filepath.Join(s.outputDir, jobID+"_status.json")
}

// UpdateProgress overwrites the sidecar file for jobID. It implements
// progress.Sink so a *progress.Reporter can write here directly,
// independent of the broker.
func (s *Sidecar) UpdateProgress(jobID string, percentage int, stage, message string) error {
	return s.write(jobID, job.StateRunning, percentage, stage, message, nil)
}

// WriteTerminal records the final state (completed or failed) along
// with the rendered clip list, if any.
func (s *Sidecar) WriteTerminal(jobID string, state job.State, message string, clips []job.ClipRecord) error {
	percentage := 0
	if state == job.StateCompleted {
		percentage = 100
	}
	return s.write(jobID, state, percentage, "done", message, clips)
}

func (s *Sidecar) write(jobID string, state job.State, percentage int, stage, message string, clips []job.ClipRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := snapshot{
		JobID:     jobID,
		Status:    statusFor(state),
		Progress:  percentage,
		Stage:     stage,
		Message:   message,
		Timestamp: config.Clock.GetTime().UnixMilli(),
		Clips:     clips,
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}

	tmp := s.path(jobID) + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, s.path(jobID))
}
