package render

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/clipforge/viralclip/config"
	"github.com/clipforge/viralclip/job"
)

type analysisSettings struct {
	TargetLength float64 `json:"target_length"`
	Version      string  `json:"version"`
}

type analysisDocument struct {
	Clips      []job.ClipRecord `json:"clips"`
	TotalClips int              `json:"total_clips"`
	Settings   analysisSettings `json:"settings"`
}

// WriteAnalysis writes the optional per-render clip metadata file
// (§6, "Final clip metadata file") to {outputDir}/viral_clips_analysis.json.
func WriteAnalysis(outputDir string, clips []job.ClipRecord, targetLength float64) error {
	doc := analysisDocument{
		Clips:      clips,
		TotalClips: len(clips),
		Settings:   analysisSettings{TargetLength: targetLength, Version: config.Version},
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(outputDir, "viral_clips_analysis.json"), data, 0644)
}
