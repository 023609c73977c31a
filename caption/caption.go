// Package caption compiles word-timed transcript segments into a
// styled ASS subtitle script per the selected template's animation
// recipe (§4.F). Each recipe is deterministic given the same seed, so
// compiling the same clip twice produces a byte-identical script.
package caption

import (
	"fmt"
	"math/rand"
	"sort"

	"github.com/clipforge/viralclip/caption/ass"
	"github.com/clipforge/viralclip/config"
	"github.com/clipforge/viralclip/job"
)

// speakerColoredBlockGap is how close two speaker-colored-block lines
// must be to have their boundary closed (§4.F).
const speakerColoredBlockGap = 0.3

// Options configures one Compile call.
type Options struct {
	Template    job.StyleTemplate
	Layout      string
	LayoutAware bool
	CanvasWidth int
	CanvasHeight int
	Seed        int64
	SpeakerAt   func(t float64) string
}

// Compile flattens segments into words, chunks them per the template,
// dispatches each line to its animation recipe, and returns the
// resulting document ready to serialize.
func Compile(segments []job.TranscriptSegment, opts Options) (*ass.Document, error) {
	canvasW, canvasH := opts.CanvasWidth, opts.CanvasHeight
	if canvasW == 0 {
		canvasW = config.CanvasWidth
	}
	if canvasH == 0 {
		canvasH = config.CanvasHeight
	}

	recipe, ok := recipes[opts.Template.AnimationRecipe]
	if !ok {
		return nil, fmt.Errorf("unknown animation recipe %q", opts.Template.AnimationRecipe)
	}

	words := flattenWords(segments)
	lines := Chunk(words, opts.Template, opts.Seed)

	doc := ass.NewDocument(canvasW, canvasH)
	styleName := doc.AddStyle(buildStyle(opts.Template))
	anchor := resolveAnchor(opts.Template, opts.Layout, opts.LayoutAware, canvasW)

	ctx := &recipeContext{
		Doc:         doc,
		Style:       styleName,
		Anchor:      anchor,
		Template:    opts.Template,
		Rng:         rand.New(rand.NewSource(opts.Seed)),
		SpeakerAt:   opts.SpeakerAt,
		CanvasWidth: canvasW,
	}

	for _, line := range lines {
		recipe(ctx, line)
	}

	if opts.Template.AnimationRecipe == "speaker_colored_block" {
		closeShortGaps(doc, speakerColoredBlockGap)
	}

	sort.SliceStable(doc.Events, func(i, j int) bool {
		return doc.Events[i].Start < doc.Events[j].Start
	})

	return doc, nil
}

func flattenWords(segments []job.TranscriptSegment) []job.WordToken {
	var words []job.WordToken
	for _, seg := range segments {
		words = append(words, seg.Words...)
	}
	return words
}

func buildStyle(tmpl job.StyleTemplate) ass.Style {
	fontSize := tmpl.FontSize
	if fontSize == 0 {
		fontSize = 80
	}
	fontFamily := tmpl.FontFamily
	if fontFamily == "" {
		fontFamily = "Arial"
	}
	return ass.Style{
		Name:          tmpl.Name,
		FontName:      fontFamily,
		FontSize:      fontSize,
		PrimaryColour: colorWhite,
		OutlineColour: colorBlack,
		Bold:          true,
		Alignment:     2,
	}
}

// closeShortGaps extends each event's end time to the next event's
// start when the gap between them is under threshold seconds, so
// speaker-colored-block lines never flicker to black between speakers.
func closeShortGaps(doc *ass.Document, threshold float64) {
	events := doc.Events
	sort.SliceStable(events, func(i, j int) bool { return events[i].Start < events[j].Start })
	for i := 0; i < len(events)-1; i++ {
		gap := events[i+1].Start - events[i].End
		if gap > 0 && gap < threshold {
			events[i].End = events[i+1].Start
		}
	}
}
