package handlers

import (
	"encoding/json"
	"net/http"

	caterrs "github.com/clipforge/viralclip/errors"
	"github.com/clipforge/viralclip/job"
	"github.com/clipforge/viralclip/requests"
	"github.com/julienschmidt/httprouter"
)

type listTemplatesResponse struct {
	Templates []job.StyleTemplate `json:"templates"`
}

// ListTemplates handles GET /templates: the style catalog loaded once
// at service start (§4.J, §6 "Template catalog").
func (h *ViralClipHandlersCollection) ListTemplates() httprouter.Handle {
	return func(w http.ResponseWriter, req *http.Request, _ httprouter.Params) {
		jobID := requests.GetJobID(req)

		w.Header().Set("Content-Type", "application/json")
		data, err := json.Marshal(listTemplatesResponse{Templates: h.Templates.All()})
		if err != nil {
			caterrs.WriteHTTPInternalServerError(w, "failed to marshal response", err)
			return
		}
		writeResponseBody(w, jobID, data)
	}
}
