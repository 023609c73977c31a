// Package ass builds and serializes Advanced SubStation Alpha subtitle
// scripts. It is the structured document the caption compiler targets:
// recipes append styles and timed events to a Document; Render
// serializes the whole thing once, so two runs over identical events
// always produce byte-identical output.
package ass

import (
	"fmt"
	"strings"
)

// Color is an RGBA color in the 0-255 range per channel. Hex writes A
// unchanged, so callers set it in ASS convention (0 = opaque, 255 =
// fully transparent).
type Color struct {
	R, G, B, A uint8
}

// Hex renders the color as an ASS &HAABBGGRR& literal.
func (c Color) Hex() string {
	return fmt.Sprintf("&H%02X%02X%02X%02X&", c.A, c.B, c.G, c.R)
}

// Pos is an absolute canvas position in pixels.
type Pos struct {
	X, Y float64
}

// Style is one [V4+ Styles] entry.
type Style struct {
	Name            string
	FontName        string
	FontSize        int
	PrimaryColour   Color
	OutlineColour   Color
	BackColour      Color
	Bold            bool
	Alignment       int // numpad alignment, 2 = bottom-center
	OutlineWidth    float64
}

// Event is one [Events] Dialogue line. Text carries inline override
// tags (e.g. "{\pos(540,1600)}word") the way ASS itself represents
// per-run styling; recipes build Text from typed helpers below rather
// than hand-concatenating tag strings inline.
type Event struct {
	Layer      int
	Start, End float64 // seconds from clip start
	Style      string
	MarginV    int
	Text       string
}

// Document is the whole subtitle script: a style table plus an event
// list, serialized once by Render.
type Document struct {
	PlayResX, PlayResY int
	Styles             []Style
	Events             []Event
}

// NewDocument seeds a document sized to the given canvas with no
// styles or events yet.
func NewDocument(canvasWidth, canvasHeight int) *Document {
	return &Document{PlayResX: canvasWidth, PlayResY: canvasHeight}
}

// AddStyle registers a style, replacing any existing style of the same
// name, and returns its name for convenience chaining.
func (d *Document) AddStyle(s Style) string {
	for i, existing := range d.Styles {
		if existing.Name == s.Name {
			d.Styles[i] = s
			return s.Name
		}
	}
	d.Styles = append(d.Styles, s)
	return s.Name
}

// AddEvent appends one timed event.
func (d *Document) AddEvent(e Event) {
	d.Events = append(d.Events, e)
}

// Render serializes the document to ASS text. Event order in d.Events
// is preserved verbatim, so a caller that builds events deterministically
// gets a byte-identical script on every call.
func (d *Document) Render() string {
	var b strings.Builder

	fmt.Fprintf(&b, "[Script Info]\n")
	fmt.Fprintf(&b, "ScriptType: v4.00+\n")
	fmt.Fprintf(&b, "PlayResX: %d\n", d.PlayResX)
	fmt.Fprintf(&b, "PlayResY: %d\n", d.PlayResY)
	fmt.Fprintf(&b, "WrapStyle: 2\n\n")

	b.WriteString("[V4+ Styles]\n")
	b.WriteString("Format: Name, Fontname, Fontsize, PrimaryColour, SecondaryColour, OutlineColour, BackColour, Bold, Italic, Underline, StrikeOut, ScaleX, ScaleY, Spacing, Angle, BorderStyle, Outline, Shadow, Alignment, MarginL, MarginR, MarginV, Encoding\n")
	for _, s := range d.Styles {
		bold := "0"
		if s.Bold {
			bold = "-1"
		}
		outline := s.OutlineWidth
		if outline == 0 {
			outline = 3
		}
		fmt.Fprintf(&b, "Style: %s,%s,%d,%s,%s,%s,%s,%s,0,0,0,100,100,0,0,1,%.1f,0,%d,40,40,%d,1\n",
			s.Name, s.FontName, s.FontSize, s.PrimaryColour.Hex(), s.PrimaryColour.Hex(),
			s.OutlineColour.Hex(), s.BackColour.Hex(), bold, outline, s.Alignment, defaultMarginV(s.Alignment))
	}
	b.WriteString("\n")

	b.WriteString("[Events]\n")
	b.WriteString("Format: Layer, Start, End, Style, Name, MarginL, MarginR, MarginV, Effect, Text\n")
	for _, e := range d.Events {
		fmt.Fprintf(&b, "Dialogue: %d,%s,%s,%s,,0,0,%d,,%s\n",
			e.Layer, formatTimestamp(e.Start), formatTimestamp(e.End), e.Style, e.MarginV, e.Text)
	}

	return b.String()
}

func defaultMarginV(alignment int) int {
	if alignment >= 7 {
		return 40
	}
	return 60
}

// formatTimestamp renders seconds as ASS's h:mm:ss.cc, truncating (not
// rounding) to centiseconds so repeated renders are stable.
func formatTimestamp(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	totalCentis := int64(seconds * 100)
	hours := totalCentis / 360000
	totalCentis -= hours * 360000
	minutes := totalCentis / 6000
	totalCentis -= minutes * 6000
	secs := totalCentis / 100
	centis := totalCentis % 100
	return fmt.Sprintf("%d:%02d:%02d.%02d", hours, minutes, secs, centis)
}
