// Package handlers implements the Control API (§4.J): submit a job,
// poll its state, list and stream finished clips, read the template
// catalog, a health check, and a remote-metadata probe.
package handlers

import (
	"net/http"
	"strings"

	"github.com/clipforge/viralclip/log"
	"github.com/clipforge/viralclip/queue"
	"github.com/clipforge/viralclip/status"
	"github.com/clipforge/viralclip/template"
)

// ViralClipHandlersCollection holds the dependencies every Control API
// handler reads from: the job broker, the output directory clips and
// status files live under, and the style template catalog.
type ViralClipHandlersCollection struct {
	Broker    *queue.Broker
	Sidecar   *status.Sidecar
	Templates *template.Catalog
	OutputDir string
}

// isBrokenPipe reports whether err is the client-disconnect family of
// write errors §4.J says to swallow rather than log as a failure.
func isBrokenPipe(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "broken pipe") || strings.Contains(msg, "connection reset")
}

// writeResponseBody writes b to w, swallowing and warning-logging a
// broken-pipe write error instead of surfacing it as a handler failure.
func writeResponseBody(w http.ResponseWriter, jobID string, b []byte) {
	if _, err := w.Write(b); err != nil {
		logBrokenPipeOrWarn(jobID, err)
	}
}

// logBrokenPipeOrWarn logs a response-write failure at warning level
// when it's the expected client-disconnect case, error level otherwise.
func logBrokenPipeOrWarn(jobID string, err error) {
	if isBrokenPipe(err) {
		log.Log(jobID, "client disconnected during response write", "level", "warn", "err", err.Error())
		return
	}
	log.LogError(jobID, "failed to write HTTP response", err)
}
