package caption

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/clipforge/viralclip/caption/ass"
	"github.com/clipforge/viralclip/job"
)

// easeMs is the ease-in/ease-out duration shared by recipes that need
// one, clamped to at most a word's own duration so short words never
// produce an animation longer than the word itself.
func easeMs(wordSeconds float64, capMs int) int {
	ms := int(wordSeconds * 1000 / 2)
	if ms > capMs {
		ms = capMs
	}
	if ms < 10 {
		ms = 10
	}
	return ms
}

// recipeContext carries everything a recipe needs to turn one chunked
// line into events on the shared document.
type recipeContext struct {
	Doc         *ass.Document
	Style       string
	Anchor      ass.Pos
	Template    job.StyleTemplate
	Rng         *rand.Rand
	SpeakerAt   func(t float64) string
	CanvasWidth int
}

func (c *recipeContext) emit(start, end float64, text string) {
	if end <= start {
		return
	}
	c.Doc.AddEvent(ass.Event{Start: start, End: end, Style: c.Style, Text: text})
}

type recipeFunc func(c *recipeContext, line Line)

var recipes = map[string]recipeFunc{
	"progressive_fill":        progressiveFill,
	"karaoke_highlight":       karaokeHighlight,
	"word_by_word_explode":    wordByWordExplode,
	"progressive_typewriter":  progressiveTypewriter,
	"bubble_pop":              bubblePop,
	"drop_in_impact":          dropInImpact,
	"rgb_glitch":              rgbGlitch,
	"rainbow_slide":           rainbowSlide,
	"speed_ramp":              rainbowSlide,
	"speaker_colored_block":   speakerColoredBlock,
}

// progressiveFill renders the line once, sweeping each word's fill
// proportional to its own duration via ASS's native karaoke-fill tag,
// with a scale-bump transform layered on flagged impact words.
func progressiveFill(c *recipeContext, line Line) {
	var b strings.Builder
	fmt.Fprintf(&b, `{\pos(%.0f,%.0f)}`, c.Anchor.X, c.Anchor.Y)
	for i, w := range line.Words {
		centis := int((w.End - w.Start) * 100)
		if centis < 1 {
			centis = 1
		}
		word := w.Text
		if containsFold(c.Template.ImpactWords, word) {
			tags := new(ass.Tags)
			tags.Transform(0, easeMs(w.End-w.Start, 120), new(ass.Tags).Scale(130, 130))
			word = tags.Wrap(word)
		}
		fmt.Fprintf(&b, `{\kf%d}%s`, centis, word)
		if i < len(line.Words)-1 {
			b.WriteString(" ")
		}
	}
	c.emit(line.Start, line.End, b.String())
}

// karaokeHighlight emits one event per word showing the full line, the
// active word eased up to ~1.25x and back within its own span, plus an
// "all normal" event over every inter-word gap so no frame ever shows
// two active words at once.
func karaokeHighlight(c *recipeContext, line Line) {
	normalText := renderLineWithOverride(c.Anchor, line.Words, -1, "")

	for i, w := range line.Words {
		ease := easeMs(w.End-w.Start, 100)
		holdStart := ease
		holdEnd := int((w.End-w.Start)*1000) - ease
		if holdEnd < holdStart {
			holdEnd = holdStart
		}
		fadeBack := int((w.End - w.Start) * 1000)

		active := new(ass.Tags).Scale(100, 100).Color(colorYellow)
		active.Transform(0, ease, new(ass.Tags).Scale(125, 125))
		active.Transform(holdEnd, fadeBack, new(ass.Tags).Scale(100, 100))

		text := renderLineWithOverride(c.Anchor, line.Words, i, active.Wrap(""))
		c.emit(w.Start, w.End, text)

		if i < len(line.Words)-1 {
			c.emit(w.End, line.Words[i+1].Start, normalText)
		}
	}
}

// wordByWordExplode shows one word at a time with a four-stage scale
// burst and a rotating high-contrast color, plus a small deterministic
// horizontal jitter.
func wordByWordExplode(c *recipeContext, line Line) {
	for i, w := range line.Words {
		durMs := int((w.End - w.Start) * 1000)
		q := durMs / 4
		if q < 10 {
			q = 10
		}
		color := highContrastTriad[i%len(highContrastTriad)]
		jitter := (c.Rng.Float64() - 0.5) * 12

		tags := new(ass.Tags).Pos(ass.Pos{X: c.Anchor.X + jitter, Y: c.Anchor.Y}).Color(color).Scale(50, 50)
		tags.Transform(0, q, new(ass.Tags).Scale(180, 180))
		tags.Transform(q, 2*q, new(ass.Tags).Scale(120, 120))
		tags.Transform(2*q, 3*q, new(ass.Tags).Scale(100, 100))

		c.emit(w.Start, w.End, tags.Wrap(w.Text))
	}
}

// progressiveTypewriter shows the accumulated prefix with a trailing
// cursor glyph after each newly typed word, blinking the cursor across
// the final word's span.
func progressiveTypewriter(c *recipeContext, line Line) {
	pos := fmt.Sprintf(`\pos(%.0f,%.0f)`, c.Anchor.X, c.Anchor.Y)
	for i, w := range line.Words {
		prefix := wordsText(line.Words[:i+1])

		if i < len(line.Words)-1 {
			c.emit(w.Start, w.End, fmt.Sprintf("{%s}%s_", pos, prefix))
			continue
		}

		blinkMs := 500
		total := int((w.End - w.Start) * 1000)
		for t, on := 0, true; t < total; t += blinkMs {
			segEnd := t + blinkMs
			if segEnd > total {
				segEnd = total
			}
			text := prefix
			if on {
				text += "_"
			}
			start := w.Start + float64(t)/1000
			end := w.Start + float64(segEnd)/1000
			c.emit(start, end, fmt.Sprintf("{%s}%s", pos, text))
			on = !on
		}
	}
}

// bubblePop enters each word from a deterministically chosen off-canvas
// direction (offset from the anchor by more than a full canvas width or
// height) with a short move, a 130->110->100 scale settle, and a
// brief rotation jitter.
func bubblePop(c *recipeContext, line Line) {
	directions := []ass.Pos{
		{X: -1200, Y: 0}, {X: 1200, Y: 0}, {X: 0, Y: -2000}, {X: 0, Y: 2000},
	}
	for _, w := range line.Words {
		dir := directions[c.Rng.Intn(len(directions))]
		from := ass.Pos{X: c.Anchor.X + dir.X, Y: c.Anchor.Y + dir.Y}
		durMs := int((w.End - w.Start) * 1000)
		moveMs := durMs / 3
		if moveMs < 10 {
			moveMs = 10
		}
		rotation := (c.Rng.Float64() - 0.5) * 16

		tags := new(ass.Tags)
		tags.MoveTimed(from, c.Anchor, 0, moveMs)
		tags.Scale(130, 130).Rotate(rotation)
		tags.Transform(0, moveMs, new(ass.Tags).Scale(110, 110).Rotate(0))
		tags.Transform(moveMs, durMs, new(ass.Tags).Scale(100, 100))

		c.emit(w.Start, w.End, tags.Wrap(w.Text))
	}
}

// dropInImpact drops each word from above the canvas to the anchor over
// ~300ms, explodes scale to ~200% then settles, flashing color on
// flagged impact words.
func dropInImpact(c *recipeContext, line Line) {
	for _, w := range line.Words {
		durMs := int((w.End - w.Start) * 1000)
		dropMs := 300
		if dropMs > durMs {
			dropMs = durMs
		}

		tags := new(ass.Tags)
		tags.MoveTimed(ass.Pos{X: c.Anchor.X, Y: -100}, c.Anchor, 0, dropMs)
		tags.Scale(200, 200)
		tags.Transform(0, dropMs, new(ass.Tags).Scale(100, 100))

		if containsFold(c.Template.ImpactWords, w.Text) {
			flash := new(ass.Tags).Color(colorRed)
			tags.Transform(dropMs, durMs, flash)
		}

		c.emit(w.Start, w.End, tags.Wrap(w.Text))
	}
}

// rgbGlitch layers three offset copies of each word in red, green and
// blue, flickering alpha on flagged error words.
func rgbGlitch(c *recipeContext, line Line) {
	const offset = 6
	layers := []struct {
		dx    float64
		color ass.Color
		alpha uint8
	}{
		{-offset, colorRed, 128},
		{0, colorGreen, 0},
		{offset, colorBlue, 128},
	}
	for _, w := range line.Words {
		isError := containsFold(c.Template.ErrorWords, w.Text)
		for _, l := range layers {
			tags := new(ass.Tags).Pos(ass.Pos{X: c.Anchor.X + l.dx, Y: c.Anchor.Y}).Color(l.color).Alpha(l.alpha)
			if isError {
				durMs := int((w.End - w.Start) * 1000)
				tags.Transform(0, durMs/2, new(ass.Tags).Alpha(220))
				tags.Transform(durMs/2, durMs, new(ass.Tags).Alpha(l.alpha))
			}
			c.Doc.AddEvent(ass.Event{Start: w.Start, End: w.End, Style: c.Style, Text: tags.Wrap(w.Text)})
		}
	}
}

// rainbowSlide enters each word from the right with a slide duration
// that shrinks as the word index grows to build momentum, cycling a
// rainbow palette per word.
func rainbowSlide(c *recipeContext, line Line) {
	for i, w := range line.Words {
		durMs := int((w.End - w.Start) * 1000)
		slideMs := durMs - i*20
		if slideMs < 40 {
			slideMs = 40
		}
		if slideMs > durMs {
			slideMs = durMs
		}
		from := ass.Pos{X: c.Anchor.X + float64(c.CanvasWidth), Y: c.Anchor.Y}
		color := rainbowPalette[i%len(rainbowPalette)]

		tags := new(ass.Tags)
		tags.MoveTimed(from, c.Anchor, 0, slideMs)
		tags.Color(color)

		c.emit(w.Start, w.End, tags.Wrap(w.Text))
	}
}

// speakerColoredBlock colors the whole line by the speaker active at
// its first word, per the voice-window classifier.
func speakerColoredBlock(c *recipeContext, line Line) {
	label := "left"
	if c.SpeakerAt != nil {
		label = c.SpeakerAt(line.Words[0].Start)
	}
	tags := new(ass.Tags).Pos(c.Anchor).Color(speakerColor(label))
	c.emit(line.Start, line.End, tags.Wrap(line.Text))
}

func wordsText(words []job.WordToken) string {
	parts := make([]string, len(words))
	for i, w := range words {
		parts[i] = w.Text
	}
	return strings.Join(parts, " ")
}

// renderLineWithOverride re-renders a line with word activeIdx wrapped
// in the supplied override prefix.
func renderLineWithOverride(anchor ass.Pos, words []job.WordToken, activeIdx int, overridePrefix string) string {
	var b strings.Builder
	fmt.Fprintf(&b, `{\pos(%.0f,%.0f)}`, anchor.X, anchor.Y)
	for i, w := range words {
		if i == activeIdx {
			b.WriteString(overridePrefix)
			b.WriteString(w.Text)
			b.WriteString(`{\r}`)
		} else {
			b.WriteString(w.Text)
		}
		if i < len(words)-1 {
			b.WriteString(" ")
		}
	}
	return b.String()
}
