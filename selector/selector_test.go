package selector

import (
	"testing"

	"github.com/clipforge/viralclip/job"
	"github.com/stretchr/testify/require"
)

func seg(start, end float64, text string) job.TranscriptSegment {
	return job.TranscriptSegment{Start: start, End: end, Text: text}
}

func TestSegmentProducesWindowsEndingOnSentenceBoundaries(t *testing.T) {
	segments := []job.TranscriptSegment{
		seg(0, 5, "this is the opening line."),
		seg(5, 12, "and here is the hook moment."),
		seg(12, 20, "finally a closing thought."),
	}

	candidates := Segment(segments, 5, 20, 10)
	require.NotEmpty(t, candidates)
	for _, c := range candidates {
		require.GreaterOrEqual(t, c.Duration(), 5.0)
		require.LessOrEqual(t, c.Duration(), 20.0)
	}
}

func TestSegmentSkipsSegmentsThatNeverCloseAWindow(t *testing.T) {
	segments := []job.TranscriptSegment{
		seg(0, 1, "no terminal punctuation here"),
	}
	candidates := Segment(segments, 5, 20, 10)
	require.Empty(t, candidates)
}

func TestRankSortsByScoreDescendingThenStart(t *testing.T) {
	candidates := []job.CandidateWindow{
		{Start: 10, End: 40, Text: "a plain statement."},
		{Start: 0, End: 30, Text: "what is the secret nobody tells you?"},
	}

	ranked := Rank(candidates, 30, nil)
	require.Len(t, ranked, 2)
	require.Equal(t, 0.0, ranked[0].Start)
	require.Greater(t, ranked[0].Score.Total, ranked[1].Score.Total)
}

func TestSelectTopBoundsByRequestedMax(t *testing.T) {
	ranked := make([]job.CandidateWindow, 5)
	for i := range ranked {
		ranked[i] = job.CandidateWindow{Start: float64(i * 30), End: float64(i*30 + 30)}
	}

	top := SelectTop(ranked, 2, 600, 30)
	require.Len(t, top, 2)
}

func TestSelectTopNeverFiltersByScore(t *testing.T) {
	ranked := []job.CandidateWindow{
		{Start: 0, End: 30, Score: job.ScoreRecord{Total: 100}},
		{Start: 30, End: 60, Score: job.ScoreRecord{Total: 0}},
	}
	top := SelectTop(ranked, 2, 600, 30)
	require.Len(t, top, 2)
}

func TestSelectTopUsesAutomaticCeilingWhenNoRequestedMax(t *testing.T) {
	ranked := make([]job.CandidateWindow, 10)
	for i := range ranked {
		ranked[i] = job.CandidateWindow{Start: float64(i * 30), End: float64(i*30 + 30)}
	}
	top := SelectTop(ranked, 0, 90, 30)
	require.LessOrEqual(t, len(top), 2)
}

func TestClampToWindowExtendsShortClips(t *testing.T) {
	start, end := ClampToWindow(0, 10, 20, 60, 300)
	require.Equal(t, 0.0, start)
	require.Equal(t, 20.0, end)
}

func TestClampToWindowTrimsLongClips(t *testing.T) {
	start, end := ClampToWindow(0, 100, 20, 60, 300)
	require.Equal(t, 0.0, start)
	require.Equal(t, 60.0, end)
}

func TestClampToWindowRespectsSourceDuration(t *testing.T) {
	start, end := ClampToWindow(280, 320, 20, 60, 300)
	require.Equal(t, 300.0, end)
	require.GreaterOrEqual(t, start, 0.0)
	require.True(t, start <= end)
}
