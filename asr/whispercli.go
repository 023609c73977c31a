package asr

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/clipforge/viralclip/job"
)

// WhisperCLI shells out to a local whisper.cpp/faster-whisper binary and
// parses its word-timestamped JSON output. It is the default production
// Model: no network dependency, runs entirely against the worker's local
// media toolchain.
type WhisperCLI struct {
	BinPath string
	Model   string
}

// NewWhisperCLI builds a WhisperCLI adapter. binPath and model default to
// "whisper" and "small" when empty, matching the upstream CLI's defaults.
func NewWhisperCLI(binPath, model string) *WhisperCLI {
	if binPath == "" {
		binPath = "whisper"
	}
	if model == "" {
		model = "small"
	}
	return &WhisperCLI{BinPath: binPath, Model: model}
}

func (w *WhisperCLI) Transcribe(ctx context.Context, audioPath string, opts Options) ([]job.TranscriptSegment, string, error) {
	outDir, err := os.MkdirTemp(filepath.Dir(audioPath), "whisper-")
	if err != nil {
		return nil, "", fmt.Errorf("whisper: creating output dir: %w", err)
	}
	defer os.RemoveAll(outDir)

	args := []string{
		audioPath,
		"--model", w.Model,
		"--output_format", "json",
		"--output_dir", outDir,
		"--word_timestamps", strconv.FormatBool(opts.WordTimestamps),
	}
	if opts.Language != "" {
		args = append(args, "--language", opts.Language)
	}
	if opts.InitialPrompt != "" {
		args = append(args, "--initial_prompt", opts.InitialPrompt)
	}
	if opts.BeamSize > 0 {
		args = append(args, "--beam_size", strconv.Itoa(opts.BeamSize))
	}

	cmd := exec.CommandContext(ctx, w.BinPath, args...)
	var stderr strings.Builder
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, "", fmt.Errorf("whisper: %w (%s)", err, strings.TrimSpace(stderr.String()))
	}

	base := strings.TrimSuffix(filepath.Base(audioPath), filepath.Ext(audioPath))
	raw, err := os.ReadFile(filepath.Join(outDir, base+".json"))
	if err != nil {
		return nil, "", fmt.Errorf("whisper: reading output: %w", err)
	}

	var out whisperOutput
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, "", fmt.Errorf("whisper: parsing output: %w", err)
	}

	segments := make([]job.TranscriptSegment, len(out.Segments))
	for i, s := range out.Segments {
		words := make([]job.WordToken, len(s.Words))
		for j, wd := range s.Words {
			words[j] = job.WordToken{Start: wd.Start, End: wd.End, Text: strings.TrimSpace(wd.Word)}
		}
		segments[i] = job.TranscriptSegment{Start: s.Start, End: s.End, Text: strings.TrimSpace(s.Text), Words: words}
	}
	return segments, out.Language, nil
}

type whisperOutput struct {
	Language string           `json:"language"`
	Segments []whisperSegment `json:"segments"`
}

type whisperSegment struct {
	Start float64       `json:"start"`
	End   float64       `json:"end"`
	Text  string        `json:"text"`
	Words []whisperWord `json:"words"`
}

type whisperWord struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Word  string  `json:"word"`
}
