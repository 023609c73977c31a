package handlers

import (
	"encoding/json"
	"net/http"

	caterrs "github.com/clipforge/viralclip/errors"
	"github.com/julienschmidt/httprouter"
)

type cancelJobResponse struct {
	JobID     string `json:"job_id"`
	Cancelled bool   `json:"cancelled"`
}

// CancelJob handles POST /jobs/{id}/cancel: sets the cancellation flag
// the worker polls at stage boundaries (§5 "Cancellation"). It does not
// itself wait for the worker to observe it.
func (h *ViralClipHandlersCollection) CancelJob() httprouter.Handle {
	return func(w http.ResponseWriter, req *http.Request, ps httprouter.Params) {
		jobID := ps.ByName("id")

		if err := h.Broker.RequestCancel(req.Context(), jobID); err != nil {
			caterrs.WriteHTTPInternalServerError(w, "failed to request cancellation", err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		data, err := json.Marshal(cancelJobResponse{JobID: jobID, Cancelled: true})
		if err != nil {
			caterrs.WriteHTTPInternalServerError(w, "failed to marshal response", err)
			return
		}
		writeResponseBody(w, jobID, data)
	}
}
