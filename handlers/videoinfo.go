package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/clipforge/viralclip/config"
	caterrs "github.com/clipforge/viralclip/errors"
	"github.com/clipforge/viralclip/media"
	"github.com/clipforge/viralclip/requests"
	"github.com/julienschmidt/httprouter"
)

type videoInfoResponse struct {
	DurationSeconds float64 `json:"duration_seconds"`
	Width           int     `json:"width"`
	Height          int     `json:"height"`
	Codec           string  `json:"codec"`
	Format          string  `json:"format"`
}

// VideoInfo handles GET /video-info?video_id=…: probes a remote source
// ahead of submission without downloading it (§4.J).
func (h *ViralClipHandlersCollection) VideoInfo() httprouter.Handle {
	return func(w http.ResponseWriter, req *http.Request, _ httprouter.Params) {
		jobID := requests.GetJobID(req)

		videoID := req.URL.Query().Get("video_id")
		if videoID == "" {
			caterrs.WriteHTTPBadRequest(w, "video_id is required", nil)
			return
		}

		info, err := media.ProbeInfo(req.Context(), jobID, videoID, config.ProbeTimeout)
		if err != nil {
			caterrs.WriteHTTPBadRequest(w, "failed to probe video", err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		data, err := json.Marshal(videoInfoResponse{
			DurationSeconds: info.DurationSeconds,
			Width:           info.Width,
			Height:          info.Height,
			Codec:           info.Codec,
			Format:          info.FormatName,
		})
		if err != nil {
			caterrs.WriteHTTPInternalServerError(w, "failed to marshal response", err)
			return
		}
		writeResponseBody(w, jobID, data)
	}
}
