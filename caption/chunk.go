package caption

import (
	"math/rand"

	"github.com/clipforge/viralclip/job"
)

// Line is one on-screen caption line: a contiguous run of word tokens
// with the line's own span derived from its first and last word.
type Line struct {
	Words []job.WordToken
	Start float64
	End   float64
	Text  string
}

// Chunk packs a flat word list into lines per the template's chunking
// mode (§4.F): fixed-size lines, or variable sizes drawn from a
// weighted distribution over [min, max] that biases toward 2-3 words
// and never produces two consecutive single-word lines. seed makes
// the variable mode reproducible.
func Chunk(words []job.WordToken, tmpl job.StyleTemplate, seed int64) []Line {
	if len(words) == 0 {
		return nil
	}
	if tmpl.Variable {
		return chunkVariable(words, tmpl, seed)
	}
	return chunkFixed(words, tmpl)
}

func chunkFixed(words []job.WordToken, tmpl job.StyleTemplate) []Line {
	size := tmpl.WordsPerLine
	if size <= 0 {
		size = 4
	}
	var lines []Line
	for i := 0; i < len(words); i += size {
		end := i + size
		if end > len(words) {
			end = len(words)
		}
		lines = append(lines, buildLine(words[i:end]))
	}
	return lines
}

// lineSizeWeights biases a weighted pick over [min,max] toward 2-3
// words: sizes near 2-3 get more weight, the extremes get less.
func lineSizeWeights(min, max int) []float64 {
	weights := make([]float64, max-min+1)
	for i := range weights {
		size := min + i
		dist := 0
		if size < 2 {
			dist = 2 - size
		} else if size > 3 {
			dist = size - 3
		}
		weights[i] = 1.0 / float64(1+dist)
	}
	return weights
}

func pickWeighted(rng *rand.Rand, min int, weights []float64) int {
	var total float64
	for _, w := range weights {
		total += w
	}
	r := rng.Float64() * total
	for i, w := range weights {
		r -= w
		if r <= 0 {
			return min + i
		}
	}
	return min + len(weights) - 1
}

func chunkVariable(words []job.WordToken, tmpl job.StyleTemplate, seed int64) []Line {
	min, max := tmpl.MinWordsPerLine, tmpl.MaxWordsPerLine
	if min <= 0 {
		min = 1
	}
	if max < min {
		max = min + 2
	}
	weights := lineSizeWeights(min, max)
	rng := rand.New(rand.NewSource(seed))

	var lines []Line
	lastSize := 0
	for cursor := 0; cursor < len(words); {
		remaining := len(words) - cursor
		if remaining == 1 && lastSize == 1 {
			lines[len(lines)-1] = buildLine(words[cursor-1:])
			break
		}
		size := pickWeighted(rng, min, weights)
		if size == 1 && lastSize == 1 && remaining > 1 {
			size = 2
		}
		if size > remaining {
			size = remaining
		}
		lines = append(lines, buildLine(words[cursor:cursor+size]))
		lastSize = size
		cursor += size
	}
	return lines
}

func buildLine(words []job.WordToken) Line {
	text := ""
	for i, w := range words {
		if i > 0 {
			text += " "
		}
		text += w.Text
	}
	return Line{
		Words: words,
		Start: words[0].Start,
		End:   words[len(words)-1].End,
		Text:  text,
	}
}
