package handlers

import (
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	caterrs "github.com/clipforge/viralclip/errors"
	"github.com/clipforge/viralclip/requests"
	"github.com/julienschmidt/httprouter"
)

type clipFile struct {
	Filename string `json:"filename"`
	SizeBytes int64  `json:"size_bytes"`
}

type listClipsResponse struct {
	Clips []clipFile `json:"clips"`
}

// ListClips handles GET /clips: the finished MP4 files currently
// sitting in the output directory (§4.J).
func (h *ViralClipHandlersCollection) ListClips() httprouter.Handle {
	return func(w http.ResponseWriter, req *http.Request, _ httprouter.Params) {
		jobID := requests.GetJobID(req)

		entries, err := os.ReadDir(h.OutputDir)
		if err != nil {
			caterrs.WriteHTTPInternalServerError(w, "failed to list output directory", err)
			return
		}

		clips := make([]clipFile, 0, len(entries))
		for _, entry := range entries {
			if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".mp4") {
				continue
			}
			info, err := entry.Info()
			if err != nil {
				continue
			}
			clips = append(clips, clipFile{Filename: entry.Name(), SizeBytes: info.Size()})
		}

		w.Header().Set("Content-Type", "application/json")
		data, err := json.Marshal(listClipsResponse{Clips: clips})
		if err != nil {
			caterrs.WriteHTTPInternalServerError(w, "failed to marshal response", err)
			return
		}
		writeResponseBody(w, jobID, data)
	}
}

// ServeOutput handles GET /outputs/{filename}: streams a finished file
// out of the output directory. Filenames are taken only by base name so
// a request can't traverse outside OutputDir.
func (h *ViralClipHandlersCollection) ServeOutput() httprouter.Handle {
	return func(w http.ResponseWriter, req *http.Request, ps httprouter.Params) {
		filename := filepath.Base(ps.ByName("filename"))

		path := filepath.Join(h.OutputDir, filename)
		f, err := os.Open(path)
		if err != nil {
			if os.IsNotExist(err) {
				caterrs.WriteHTTPNotFound(w, "output not found", nil)
				return
			}
			caterrs.WriteHTTPInternalServerError(w, "failed to open output", err)
			return
		}
		defer f.Close()

		stat, err := f.Stat()
		if err != nil {
			caterrs.WriteHTTPInternalServerError(w, "failed to stat output", err)
			return
		}

		http.ServeContent(w, req, filename, stat.ModTime(), f)
	}
}
