package ass

import (
	"fmt"
	"strings"
)

// Tags accumulates override-tag fragments for one event's leading
// "{...}" block, so recipes build structured pieces (position, scale,
// color, transform) instead of hand-formatting tag syntax inline.
type Tags struct {
	parts []string
}

func (t *Tags) Pos(p Pos) *Tags {
	t.parts = append(t.parts, fmt.Sprintf(`\pos(%.0f,%.0f)`, p.X, p.Y))
	return t
}

func (t *Tags) Alignment(a int) *Tags {
	t.parts = append(t.parts, fmt.Sprintf(`\an%d`, a))
	return t
}

func (t *Tags) Color(c Color) *Tags {
	t.parts = append(t.parts, fmt.Sprintf(`\c%s`, rgbHex(c)))
	return t
}

func (t *Tags) Alpha(a uint8) *Tags {
	t.parts = append(t.parts, fmt.Sprintf(`\alpha&H%02X&`, a))
	return t
}

func (t *Tags) Scale(xPercent, yPercent float64) *Tags {
	t.parts = append(t.parts, fmt.Sprintf(`\fscx%.0f\fscy%.0f`, xPercent, yPercent))
	return t
}

func (t *Tags) Rotate(degrees float64) *Tags {
	t.parts = append(t.parts, fmt.Sprintf(`\frz%.1f`, degrees))
	return t
}

func (t *Tags) Move(from, to Pos) *Tags {
	t.parts = append(t.parts, fmt.Sprintf(`\move(%.0f,%.0f,%.0f,%.0f)`, from.X, from.Y, to.X, to.Y))
	return t
}

// MoveTimed appends a \move tag with the optional timing pair ASS
// supports: the move runs from startMs to endMs within the event span.
func (t *Tags) MoveTimed(from, to Pos, startMs, endMs int) *Tags {
	t.parts = append(t.parts, fmt.Sprintf(`\move(%.0f,%.0f,%.0f,%.0f,%d,%d)`, from.X, from.Y, to.X, to.Y, startMs, endMs))
	return t
}

// Transform appends a \t(startMs,endMs,tags) animated transform. The
// offsets are milliseconds relative to the event's own start.
func (t *Tags) Transform(startMs, endMs int, inner *Tags) *Tags {
	t.parts = append(t.parts, fmt.Sprintf(`\t(%d,%d,%s)`, startMs, endMs, inner.String()))
	return t
}

// Raw appends an already-formatted tag fragment (leading backslash
// included) verbatim.
func (t *Tags) Raw(fragment string) *Tags {
	t.parts = append(t.parts, fragment)
	return t
}

func (t *Tags) String() string {
	return strings.Join(t.parts, "")
}

// Wrap renders the accumulated tags as a leading "{...}" block followed
// by text, the standard ASS override-plus-run pairing.
func (t *Tags) Wrap(text string) string {
	if len(t.parts) == 0 {
		return text
	}
	return "{" + t.String() + "}" + text
}

func rgbHex(c Color) string {
	return fmt.Sprintf("&H%02X%02X%02X&", c.B, c.G, c.R)
}
