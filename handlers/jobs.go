package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	caterrs "github.com/clipforge/viralclip/errors"
	"github.com/clipforge/viralclip/job"
	"github.com/clipforge/viralclip/log"
	"github.com/clipforge/viralclip/metrics"
	"github.com/clipforge/viralclip/queue"
	"github.com/clipforge/viralclip/requests"
	"github.com/julienschmidt/httprouter"
	"github.com/xeipuuv/gojsonschema"
)

// submitJobSchema is the JSON Schema for the POST /jobs body, validated
// up front the same way the teacher validates its upload request
// bodies before ever unmarshaling into a typed struct.
var submitJobSchema = mustCompileSchema(`{
	"type": "object",
	"properties": {
		"job_id": { "type": "string", "minLength": 1 },
		"source_url": { "type": "string", "minLength": 1 },
		"opus_template": { "type": "string" },
		"clip_duration": { "type": "integer" },
		"layout": { "type": "string", "enum": ["", "fit", "fill", "square", "auto"] },
		"timeframe_start": { "type": "integer" },
		"timeframe_end": { "type": "integer" },
		"min_clip_length": { "type": "number" },
		"max_clip_length": { "type": "number" },
		"target_clip_length": { "type": "number" },
		"max_clips": { "type": "integer" },
		"video_language": { "type": "string" },
		"translate_captions": { "type": "boolean" },
		"caption_language": { "type": "string" },
		"original_filename": { "type": "string" }
	},
	"required": ["job_id", "source_url"]
}`)

func mustCompileSchema(raw string) *gojsonschema.Schema {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(raw))
	if err != nil {
		panic(err)
	}
	return schema
}

// submitJobRequest is the POST /jobs body (§4.J, §6 "Submission form
// fields" — accepted here as JSON rather than multipart, since the
// only binary payload is the remote source URL the worker itself
// downloads).
type submitJobRequest struct {
	JobID             string     `json:"job_id"`
	SourceURL         string     `json:"source_url"`
	OpusTemplate      string     `json:"opus_template"`
	ClipDuration      int        `json:"clip_duration"`
	Layout            job.Layout `json:"layout"`
	TimeframeStart    int        `json:"timeframe_start"`
	TimeframeEnd      int        `json:"timeframe_end"`
	MinClipLength     float64    `json:"min_clip_length"`
	MaxClipLength     float64    `json:"max_clip_length"`
	TargetClipLength  float64    `json:"target_clip_length"`
	MaxClips          int        `json:"max_clips"`
	VideoLanguage     string     `json:"video_language"`
	TranslateCaptions bool       `json:"translate_captions"`
	CaptionLanguage   string     `json:"caption_language"`
	OriginalFilename  string     `json:"original_filename"`
}

type submitJobResponse struct {
	JobID string `json:"job_id"`
}

// SubmitJob handles POST /jobs: validates and enqueues a job, returning
// 200 with the job id on success or 400 on a validation failure.
func (h *ViralClipHandlersCollection) SubmitJob() httprouter.Handle {
	return func(w http.ResponseWriter, req *http.Request, _ httprouter.Params) {
		jobID := requests.GetJobID(req)

		payloadBytes, err := io.ReadAll(req.Body)
		if err != nil {
			caterrs.WriteHTTPInternalServerError(w, "cannot read request body", err)
			return
		}

		result, err := submitJobSchema.Validate(gojsonschema.NewBytesLoader(payloadBytes))
		if err != nil {
			caterrs.WriteHTTPInternalServerError(w, "cannot validate request body", err)
			return
		}
		if !result.Valid() {
			caterrs.WriteHTTPBadBodySchema("POST /jobs", w, result.Errors())
			return
		}

		var body submitJobRequest
		if err := json.Unmarshal(payloadBytes, &body); err != nil {
			caterrs.WriteHTTPBadRequest(w, "invalid JSON body", err)
			return
		}

		layout := body.Layout
		if layout == "" {
			layout = job.LayoutFit
		}
		clipDuration := body.ClipDuration
		if clipDuration <= 0 {
			clipDuration = 30
		}

		payload := job.Payload{
			JobID:             body.JobID,
			SourceURL:         body.SourceURL,
			OpusTemplate:      body.OpusTemplate,
			ClipDuration:      clipDuration,
			Layout:            layout,
			TimeframeStart:    body.TimeframeStart,
			TimeframeEnd:      body.TimeframeEnd,
			MinClipLength:     body.MinClipLength,
			MaxClipLength:     body.MaxClipLength,
			TargetClipLength:  body.TargetClipLength,
			MaxClips:          body.MaxClips,
			VideoLanguage:     body.VideoLanguage,
			TranslateCaptions: body.TranslateCaptions,
			CaptionLanguage:   body.CaptionLanguage,
			OutputDir:         h.OutputDir,
			OriginalFilename:  body.OriginalFilename,
		}

		if err := h.Broker.Enqueue(req.Context(), body.JobID, payload); err != nil {
			if errors.Is(err, queue.ErrAlreadyExists) {
				caterrs.WriteHTTPBadRequest(w, "job_id already enqueued", nil)
				return
			}
			caterrs.WriteHTTPInternalServerError(w, "failed to enqueue job", err)
			return
		}
		metrics.Metrics.Pipeline.JobsSubmitted.WithLabelValues().Inc()

		w.Header().Set("Content-Type", "application/json")
		data, err := json.Marshal(submitJobResponse{JobID: body.JobID})
		if err != nil {
			caterrs.WriteHTTPInternalServerError(w, "failed to marshal response", err)
			return
		}
		writeResponseBody(w, jobID, data)
	}
}

// jobView is the wire shape of GET /jobs/{id}'s "job" field (§6): state
// is one of PROCESSING, COMPLETED, FAILED or not_found.
type jobView struct {
	State    string           `json:"state"`
	Progress int              `json:"progress"`
	Stage    string           `json:"stage,omitempty"`
	Message  string           `json:"message,omitempty"`
	Result   []job.ClipRecord `json:"result,omitempty"`
	Error    string           `json:"error,omitempty"`
}

type jobStatusResponse struct {
	Job jobView `json:"job"`
}

// GetJob handles GET /jobs/{id}. An unknown id is not a 404 — it comes
// back as state "not_found" with 200, so pollers that raced the enqueue
// can simply retry (§4.J).
func (h *ViralClipHandlersCollection) GetJob() httprouter.Handle {
	return func(w http.ResponseWriter, req *http.Request, ps httprouter.Params) {
		jobID := ps.ByName("id")

		rec, found, err := h.Broker.Get(req.Context(), jobID)
		if err != nil {
			caterrs.WriteHTTPInternalServerError(w, "failed to read job state", err)
			return
		}

		var view jobView
		if !found {
			view = jobView{State: "not_found"}
		} else {
			view = jobView{
				State:    stateLabel(rec.State),
				Progress: rec.Progress.Percentage,
				Stage:    rec.Progress.Stage,
				Message:  rec.Progress.Message,
				Result:   rec.Result,
				Error:    rec.Error,
			}
		}

		w.Header().Set("Content-Type", "application/json")
		data, err := json.Marshal(jobStatusResponse{Job: view})
		if err != nil {
			log.LogError(jobID, "failed to marshal job status", err)
			caterrs.WriteHTTPInternalServerError(w, "failed to marshal response", err)
			return
		}
		writeResponseBody(w, jobID, data)
	}
}

func stateLabel(s job.State) string {
	switch s {
	case job.StateQueued, job.StateRunning:
		return "PROCESSING"
	case job.StateCompleted:
		return "COMPLETED"
	case job.StateFailed:
		return "FAILED"
	default:
		return "not_found"
	}
}
