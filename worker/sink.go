package worker

import "github.com/clipforge/viralclip/log"

// multiSink fans one progress update out to several sinks (the broker
// and the status sidecar), logging a single sink's error and still
// updating the rest so one channel's outage never blocks the other; the
// first error is returned.
type multiSink struct {
	sinks []sink
}

type sink interface {
	UpdateProgress(jobID string, percentage int, stage, message string) error
}

func newMultiSink(sinks ...sink) *multiSink {
	return &multiSink{sinks: sinks}
}

func (m *multiSink) UpdateProgress(jobID string, percentage int, stage, message string) error {
	var firstErr error
	for _, s := range m.sinks {
		if err := s.UpdateProgress(jobID, percentage, stage, message); err != nil {
			log.LogError(jobID, "progress sink update failed", err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}
