// Package selector implements the clip selector (§4.E): segmenting a
// transcript into candidate windows, ranking them by hook score, and
// choosing how many to keep.
package selector

import (
	"sort"
	"strings"
	"time"

	"github.com/clipforge/viralclip/config"
	"github.com/clipforge/viralclip/hook"
	"github.com/clipforge/viralclip/job"
)

var terminalPunctuation = []string{".", "!", "?", "।"}

// Segment walks segments in time order, greedily growing a window until
// it can be closed on a sentence boundary within [minLength, maxLength],
// then advances the cursor by half the accepted window for 50% overlap.
func Segment(segments []job.TranscriptSegment, minLength, maxLength, targetLength float64) []job.CandidateWindow {
	var candidates []job.CandidateWindow
	n := len(segments)

	for cursor := 0; cursor < n; {
		windowEnd := cursor
		var best *job.CandidateWindow

		for windowEnd < n {
			duration := segments[windowEnd].End - segments[cursor].Start
			if duration > maxLength {
				break
			}

			if endsOnSentenceBoundary(segments[windowEnd]) && duration >= minLength && duration <= maxLength {
				candidate := buildCandidate(segments[cursor : windowEnd+1])
				if best == nil || closerToTarget(candidate.Duration(), best.Duration(), targetLength) {
					c := candidate
					best = &c
				}
				if duration >= targetLength {
					break
				}
			}
			windowEnd++
		}

		if best == nil {
			cursor++
			continue
		}
		candidates = append(candidates, *best)

		// advance by ~half the accepted window, measured in segments
		spanSegments := 1
		for i := cursor; i < n; i++ {
			if segments[i].End > best.Start && segments[i].Start < best.End {
				spanSegments++
			}
		}
		advance := spanSegments / 2
		if advance < 1 {
			advance = 1
		}
		cursor += advance
	}

	return candidates
}

func buildCandidate(segs []job.TranscriptSegment) job.CandidateWindow {
	copied := make([]job.TranscriptSegment, len(segs))
	copy(copied, segs)

	var texts []string
	for _, s := range copied {
		texts = append(texts, s.Text)
	}

	return job.CandidateWindow{
		Start:    copied[0].Start,
		End:      copied[len(copied)-1].End,
		Text:     strings.Join(texts, " "),
		Segments: copied,
	}
}

func closerToTarget(a, b, target float64) bool {
	da, db := abs(a-target), abs(b-target)
	return da < db
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

func endsOnSentenceBoundary(seg job.TranscriptSegment) bool {
	trimmed := strings.TrimSpace(seg.Text)
	for _, p := range terminalPunctuation {
		if strings.HasSuffix(trimmed, p) {
			return true
		}
	}
	return len(seg.Words) > 10
}

// SentimentAdapter is re-exported for callers that only import selector.
type SentimentAdapter = hook.SentimentAdapter

// Rank scores each candidate via the hook scorer and sorts by total
// score descending, ties broken by earlier start.
func Rank(candidates []job.CandidateWindow, targetLength float64, sentiment SentimentAdapter) []job.CandidateWindow {
	ranked := make([]job.CandidateWindow, len(candidates))
	copy(ranked, candidates)

	for i := range ranked {
		ranked[i].Score = hook.Score(ranked[i].Text, ranked[i].Duration(), targetLength, sentiment)
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Score.Total != ranked[j].Score.Total {
			return ranked[i].Score.Total > ranked[j].Score.Total
		}
		return ranked[i].Start < ranked[j].Start
	})

	return ranked
}

// SelectTop returns the prefix of ranked to keep, bounded by the
// requested max, the automatic duration-based ceiling (§4.E table),
// and a feasible ceiling derived from total duration and average clip
// length. It never filters by score — only by count.
func SelectTop(ranked []job.CandidateWindow, requestedMax int, totalVideoDuration, avgClipLength float64) []job.CandidateWindow {
	automaticCeiling := config.AutomaticCeiling(time.Duration(totalVideoDuration * float64(time.Second)))

	feasibleCeiling := len(ranked)
	if avgClipLength > 0 {
		feasibleCeiling = int(totalVideoDuration / avgClipLength)
	}

	limit := requestedMax
	if limit <= 0 || automaticCeiling < limit {
		limit = automaticCeiling
	}
	if feasibleCeiling < limit {
		limit = feasibleCeiling
	}
	if limit > len(ranked) {
		limit = len(ranked)
	}
	if limit < 0 {
		limit = 0
	}

	return ranked[:limit]
}

// ClampToWindow fixes a clip's proposed duration to stay within
// [minLength, maxLength], preferring to extend or trim the end.
func ClampToWindow(start, end, minLength, maxLength, sourceDuration float64) (float64, float64) {
	duration := end - start
	switch {
	case duration < minLength:
		end = start + minLength
	case duration > maxLength:
		end = start + maxLength
	}
	if end > sourceDuration {
		end = sourceDuration
	}
	if end-start < minLength && start > 0 {
		start = end - minLength
		if start < 0 {
			start = 0
		}
	}
	return start, end
}
