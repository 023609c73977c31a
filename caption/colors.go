package caption

import (
	"strings"

	"github.com/clipforge/viralclip/caption/ass"
)

var (
	colorWhite  = ass.Color{R: 255, G: 255, B: 255}
	colorBlack  = ass.Color{R: 0, G: 0, B: 0}
	colorYellow = ass.Color{R: 255, G: 221, B: 0}
	colorRed    = ass.Color{R: 255, G: 46, B: 46}
	colorGreen  = ass.Color{R: 46, G: 255, B: 110}
	colorBlue   = ass.Color{R: 64, G: 128, B: 255}
	colorCyan   = ass.Color{R: 0, G: 230, B: 230}
	colorPink   = ass.Color{R: 255, G: 64, B: 180}
)

// highContrastTriad is the three-hue cycle word-by-word explode rotates
// through.
var highContrastTriad = []ass.Color{colorYellow, colorCyan, colorPink}

// rainbowPalette is the cycle rainbow slide advances through per word.
var rainbowPalette = []ass.Color{colorRed, {R: 255, G: 160, B: 0}, colorYellow, colorGreen, colorCyan, colorBlue, {R: 180, G: 64, B: 255}}

// speakerPalette assigns a stable color per speaker label for the
// speaker-colored-block recipe.
var speakerPalette = map[string]ass.Color{
	"left":  colorCyan,
	"right": colorPink,
}

func speakerColor(label string) ass.Color {
	if c, ok := speakerPalette[label]; ok {
		return c
	}
	return colorWhite
}

func containsFold(list []string, word string) bool {
	for _, candidate := range list {
		if strings.EqualFold(candidate, strings.Trim(word, ".,!?")) {
			return true
		}
	}
	return false
}
