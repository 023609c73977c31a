package hook

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeSentiment struct {
	intensity float64
	label     string
}

func (f fakeSentiment) Analyze(string) (float64, string) { return f.intensity, f.label }

func TestScoreKeywordAndQuestionPoints(t *testing.T) {
	rec := Score("What is the secret nobody tells you?", 30, 30, nil)
	require.Contains(t, rec.Keywords, "secret")
	require.Contains(t, rec.Keywords, "nobody tells you")
	require.True(t, rec.IsQuestion)
	require.Equal(t, 4.0, rec.KeywordPts)
	require.Equal(t, 2.0, rec.QuestionPts)
	require.Equal(t, 1.0, rec.LengthBonus)
}

func TestScoreNoKeywordsNoQuestion(t *testing.T) {
	rec := Score("This is a plain statement.", 30, 60, nil)
	require.Empty(t, rec.Keywords)
	require.False(t, rec.IsQuestion)
	require.Equal(t, 0.0, rec.KeywordPts)
	require.Equal(t, 0.0, rec.QuestionPts)
	require.Equal(t, 0.0, rec.LengthBonus)
}

func TestScoreNilSentimentContributesNoEmotion(t *testing.T) {
	rec := Score("hello", 30, 30, nil)
	require.Equal(t, 0.0, rec.Emotion)
	require.Equal(t, 0.0, rec.EmotionPts)
}

func TestScoreSentimentLabelsWeightDifferently(t *testing.T) {
	pos := Score("hello", 30, 30, fakeSentiment{intensity: 1, label: "positive"})
	neg := Score("hello", 30, 30, fakeSentiment{intensity: 1, label: "negative"})
	neutral := Score("hello", 30, 30, fakeSentiment{intensity: 1, label: "neutral"})

	require.InDelta(t, 1.2, pos.Emotion, 1e-9)
	require.InDelta(t, 1.3, neg.Emotion, 1e-9)
	require.InDelta(t, 0.5, neutral.Emotion, 1e-9)
	require.Greater(t, neg.EmotionPts, pos.EmotionPts)
}

func TestScoreTotalSumsAllComponents(t *testing.T) {
	rec := Score("What is the secret?", 30, 30, fakeSentiment{intensity: 1, label: "positive"})
	require.InDelta(t, rec.KeywordPts+rec.QuestionPts+rec.EmotionPts+rec.LengthBonus, rec.Total, 1e-9)
}
