// Package asr adapts an external speech-to-text model behind the single
// transcribe operation (§4.B), applying the language policy for Hindi
// and stripping Whisper hallucinations from known-Hindi transcripts.
package asr

import (
	"context"
	"regexp"
	"strings"

	caterrs "github.com/clipforge/viralclip/errors"
	"github.com/clipforge/viralclip/job"
)

const devanagariHint = "यह एक हिन्दी वीडियो है।"

// Options configures one transcription request.
type Options struct {
	Language         string
	WordTimestamps   bool
	InitialPrompt    string
	BeamSize         int
}

// Model is the external speech-to-text engine. Production wiring calls
// out to a local whisper.cpp/faster-whisper process; tests substitute a
// stub.
type Model interface {
	Transcribe(ctx context.Context, audioPath string, opts Options) (segments []job.TranscriptSegment, detectedLanguage string, err error)
}

// Transcribe runs the language policy around a single Model call:
// Hindi requests get a Devanagari-script hint, auto-detected Hindi
// without a hint triggers one re-transcription, and known-Hindi output
// has its hallucinated tokens stripped.
func Transcribe(ctx context.Context, m Model, audioPath string, opts Options) ([]job.TranscriptSegment, string, error) {
	opts.WordTimestamps = true
	if opts.Language == "hi" {
		opts.InitialPrompt = devanagariHint
	}

	segments, lang, err := m.Transcribe(ctx, audioPath, opts)
	if err != nil {
		return nil, "", caterrs.NewTranscriptionError(err)
	}
	if len(segments) == 0 {
		return nil, "", caterrs.NewTranscriptionError(errNoSegments)
	}

	if opts.Language == "" && lang == "hi" && opts.InitialPrompt == "" {
		opts.InitialPrompt = devanagariHint
		segments, lang, err = m.Transcribe(ctx, audioPath, opts)
		if err != nil {
			return nil, "", caterrs.NewTranscriptionError(err)
		}
	}

	if lang == "hi" {
		segments = stripHallucinations(segments)
	}

	return segments, lang, nil
}

var errNoSegments = &noSegmentsError{}

type noSegmentsError struct{}

func (*noSegmentsError) Error() string { return "transcription produced no segments" }

// allowedHindiToken keeps Devanagari, common punctuation, digits and
// whitespace; everything else (Latin, CJK, Hangul, Arabic) is a
// hallucination Whisper sometimes drifts into on Hindi audio.
var allowedHindiToken = regexp.MustCompile(`^[\p{Devanagari}0-9\s.,!?।'"-]*$`)

func stripHallucinations(segments []job.TranscriptSegment) []job.TranscriptSegment {
	out := make([]job.TranscriptSegment, len(segments))
	for i, seg := range segments {
		words := make([]job.WordToken, 0, len(seg.Words))
		texts := make([]string, 0, len(seg.Words))
		for _, w := range seg.Words {
			if allowedHindiToken.MatchString(w.Text) {
				words = append(words, w)
				texts = append(texts, w.Text)
			}
		}
		out[i] = job.TranscriptSegment{
			Start: seg.Start,
			End:   seg.End,
			Text:  strings.Join(texts, " "),
			Words: words,
		}
	}
	return out
}
