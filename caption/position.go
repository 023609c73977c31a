package caption

import (
	"github.com/clipforge/viralclip/caption/ass"
	"github.com/clipforge/viralclip/job"
)

// safeZoneY is the canonical bottom-center y used in layout-aware mode
// to stay clear of the letterbox/blur bands produced by fit and square
// reframing (§4.F).
const safeZoneY = 1600

// resolveAnchor picks the anchor position a line renders at. In
// layout-aware mode, fit and square layouts override the template's
// own anchor with the safe-zone position so captions never collide
// with the inset or blur band; fill and auto keep the template anchor
// since the frame is edge-to-edge.
func resolveAnchor(tmpl job.StyleTemplate, layout string, layoutAware bool, canvasWidth int) ass.Pos {
	anchor := ass.Pos{X: float64(canvasWidth) / 2, Y: safeZoneY}
	if len(tmpl.Anchors) > 0 {
		anchor = ass.Pos{X: tmpl.Anchors[0].X, Y: tmpl.Anchors[0].Y}
	}
	if layoutAware && (layout == "fit" || layout == "square" || layout == "") {
		anchor.Y = safeZoneY
	}
	return anchor
}
