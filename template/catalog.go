// Package template holds the in-process style-template catalog (§6,
// "Template catalog"). It is loaded once at service start and consulted
// by the caption compiler and renderer.
package template

import (
	"fmt"
	"sync"

	"github.com/clipforge/viralclip/job"
)

var defaultCatalog = map[string]job.StyleTemplate{
	"hormozi": {
		Name:            "hormozi",
		FontFamily:      "Montserrat ExtraBold",
		FontSize:        96,
		Anchors:         []job.Anchor{{X: 540, Y: 1600}},
		WordsPerLine:    3,
		AnimationRecipe: "karaoke_highlight",
		ImpactWords:     []string{"never", "always", "secret", "biggest"},
	},
	"mrbeast": {
		Name:            "mrbeast",
		FontFamily:      "Komika Axis",
		FontSize:        110,
		Anchors:         []job.Anchor{{X: 540, Y: 1400}},
		MinWordsPerLine: 1,
		MaxWordsPerLine: 4,
		Variable:        true,
		AnimationRecipe: "bubble_pop",
		ErrorWords:      []string{"wrong", "fail", "mistake"},
	},
	"minimal": {
		Name:            "minimal",
		FontFamily:      "Inter",
		FontSize:        72,
		Anchors:         []job.Anchor{{X: 540, Y: 1700}},
		WordsPerLine:    5,
		AnimationRecipe: "progressive_fill",
	},
	"typewriter": {
		Name:            "typewriter",
		FontFamily:      "JetBrains Mono",
		FontSize:        68,
		Anchors:         []job.Anchor{{X: 540, Y: 1650}},
		WordsPerLine:    6,
		AnimationRecipe: "progressive_typewriter",
	},
	"glitch": {
		Name:            "glitch",
		FontFamily:      "Archivo Black",
		FontSize:        90,
		Anchors:         []job.Anchor{{X: 540, Y: 1550}},
		WordsPerLine:    4,
		AnimationRecipe: "rgb_glitch",
		ErrorWords:      []string{"error", "broken", "crash"},
	},
}

// Catalog is a thread-safe read path over a fixed set of templates.
type Catalog struct {
	mu        sync.RWMutex
	templates map[string]job.StyleTemplate
}

func NewCatalog() *Catalog {
	templates := make(map[string]job.StyleTemplate, len(defaultCatalog))
	for k, v := range defaultCatalog {
		templates[k] = v
	}
	return &Catalog{templates: templates}
}

func (c *Catalog) Get(name string) (job.StyleTemplate, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	t, ok := c.templates[name]
	if !ok {
		return job.StyleTemplate{}, fmt.Errorf("unknown template %q", name)
	}
	return t, nil
}

func (c *Catalog) All() []job.StyleTemplate {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]job.StyleTemplate, 0, len(c.templates))
	for _, t := range c.templates {
		out = append(out, t)
	}
	return out
}
