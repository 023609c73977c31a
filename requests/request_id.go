// Package requests extracts or mints the job id that correlates a single
// Control API request (§4.J) across logs, metrics and the broker.
package requests

import (
	"net/http"

	"github.com/google/uuid"
)

const jobIDHeader = "X-Job-Id"

// GetJobID returns the caller-supplied job id header if present, otherwise
// mints a new one and stamps it back onto the request so downstream
// handlers observe the same value.
func GetJobID(req *http.Request) string {
	jobID := req.Header.Get(jobIDHeader)
	if jobID != "" {
		return jobID
	}
	jobID = uuid.NewString()
	req.Header.Set(jobIDHeader, jobID)
	return jobID
}
