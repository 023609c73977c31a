// Package hook implements the clip-selection hook scorer (§4.D): a pure
// function from candidate text/duration to a ScoreRecord.
package hook

import (
	"math"
	"strings"

	"github.com/clipforge/viralclip/job"
)

// hookPhrases is the curated list of case-insensitive hook phrases that
// earn keyword points.
var hookPhrases = []string{
	"secret", "biggest mistake", "you won't believe", "this is why",
	"nobody tells you", "the truth about", "here's why", "stop doing this",
	"never do this", "the real reason", "what nobody talks about",
}

var interrogativeStarters = []string{
	"what", "why", "how", "who", "when", "where", "which", "is", "are", "do", "does", "did", "can", "could", "would", "should",
}

// SentimentAdapter returns a normalized sentiment intensity in [0,1] and
// a label ("positive", "negative", "neutral", or anything else). It is
// optional: a nil adapter makes emotion points always 0.
type SentimentAdapter interface {
	Analyze(text string) (intensity float64, label string)
}

// Score implements §4.D's scoring function.
func Score(text string, duration, targetLength float64, sentiment SentimentAdapter) job.ScoreRecord {
	lower := strings.ToLower(text)

	var matched []string
	for _, phrase := range hookPhrases {
		if strings.Contains(lower, phrase) {
			matched = append(matched, phrase)
		}
	}
	keywordPts := 2 * float64(len(matched))

	isQuestion := startsInterrogative(lower) || strings.Contains(firstSentence(text), "?")
	var questionPts float64
	if isQuestion {
		questionPts = 2
	}

	var emotion, emotionPts float64
	if sentiment != nil {
		intensity, label := sentiment.Analyze(text)
		switch strings.ToLower(label) {
		case "positive":
			emotion = intensity * 1.2
		case "negative":
			emotion = intensity * 1.3
		case "neutral":
			emotion = intensity * 0.5
		default:
			emotion = intensity
		}
		emotionPts = 2 * emotion
	}

	var lengthBonus float64
	if math.Abs(duration-targetLength) <= 0.1*targetLength {
		lengthBonus = 1
	}

	total := keywordPts + questionPts + emotionPts + lengthBonus

	return job.ScoreRecord{
		Keywords:    matched,
		IsQuestion:  isQuestion,
		Emotion:     emotion,
		LengthBonus: lengthBonus,
		KeywordPts:  keywordPts,
		QuestionPts: questionPts,
		EmotionPts:  emotionPts,
		Total:       total,
	}
}

func startsInterrogative(lower string) bool {
	trimmed := strings.TrimSpace(lower)
	for _, starter := range interrogativeStarters {
		if strings.HasPrefix(trimmed, starter+" ") {
			return true
		}
	}
	return false
}

func firstSentence(text string) string {
	for _, sep := range []string{".", "!", "?"} {
		if idx := strings.Index(text, sep); idx >= 0 {
			return text[:idx+1]
		}
	}
	return text
}
