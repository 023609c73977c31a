package caption

import (
	"strings"
	"unicode"

	"github.com/clipforge/viralclip/job"
)

// Translator converts a segment's text to targetLanguage. Production
// wiring calls out to a translation API; tests substitute a stub.
type Translator interface {
	Translate(text, targetLanguage string) (string, error)
}

// Transliterator converts a single word to its Roman-script form.
// Production wiring calls a transliteration library; tests substitute
// a stub.
type Transliterator interface {
	Transliterate(word string) (string, error)
}

// Translate replaces each segment's text with its translation, keeping
// the segment span but approximating per-word timing by distributing
// the translated words evenly across the segment's duration, since the
// translation API gives no word-level alignment (§4.F).
func Translate(segments []job.TranscriptSegment, translator Translator, targetLanguage string) ([]job.TranscriptSegment, error) {
	out := make([]job.TranscriptSegment, len(segments))
	for i, seg := range segments {
		translated, err := translator.Translate(seg.Text, targetLanguage)
		if err != nil {
			return nil, err
		}
		words := strings.Fields(translated)
		if len(words) == 0 {
			out[i] = job.TranscriptSegment{Start: seg.Start, End: seg.End, Text: translated}
			continue
		}

		duration := seg.End - seg.Start
		step := duration / float64(len(words))
		tokens := make([]job.WordToken, len(words))
		for j, w := range words {
			start := seg.Start + float64(j)*step
			end := start + step
			tokens[j] = job.WordToken{Start: start, End: end, Text: w}
		}
		out[i] = job.TranscriptSegment{Start: seg.Start, End: seg.End, Text: translated, Words: tokens}
	}
	return out, nil
}

// Transliterate converts each non-English word to Roman script
// word-by-word, preserving exact per-word timing; tokens that are
// already ASCII (English-only) pass through unchanged (§4.F).
func Transliterate(segments []job.TranscriptSegment, transliterator Transliterator) ([]job.TranscriptSegment, error) {
	out := make([]job.TranscriptSegment, len(segments))
	for i, seg := range segments {
		words := make([]job.WordToken, len(seg.Words))
		texts := make([]string, len(seg.Words))
		for j, w := range seg.Words {
			text := w.Text
			if !isASCII(text) {
				converted, err := transliterator.Transliterate(text)
				if err != nil {
					return nil, err
				}
				text = converted
			}
			words[j] = job.WordToken{Start: w.Start, End: w.End, Text: text}
			texts[j] = text
		}
		out[i] = job.TranscriptSegment{Start: seg.Start, End: seg.End, Text: strings.Join(texts, " "), Words: words}
	}
	return out, nil
}

func isASCII(s string) bool {
	for _, r := range s {
		if r > unicode.MaxASCII {
			return false
		}
	}
	return true
}
