package face

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	"os"
	"path/filepath"

	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// ThumbnailSampler implements FrameSampler by pulling evenly-strided JPEG
// thumbnails with ffmpeg and running a skin-tone blob heuristic over each
// one. It has no notion of identity or confidence calibration the way a
// trained detector would; it exists so the auto layout has something
// better than a hardcoded center crop to work with.
type ThumbnailSampler struct {
	WorkDir string
}

func NewThumbnailSampler(workDir string) *ThumbnailSampler {
	return &ThumbnailSampler{WorkDir: workDir}
}

func (s *ThumbnailSampler) SampleFaces(videoPath string, maxFrames int) ([][]Detection, error) {
	tmpDir, err := os.MkdirTemp(s.WorkDir, "frames-")
	if err != nil {
		return nil, fmt.Errorf("thumbnail sampler: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	pattern := filepath.Join(tmpDir, "frame-%04d.jpg")
	err = ffmpeg.Input(videoPath).
		Output(pattern, ffmpeg.KwArgs{"vf": fmt.Sprintf("fps=1/2,scale=320:-1"), "frames:v": maxFrames}).
		OverWriteOutput().Run()
	if err != nil {
		return nil, fmt.Errorf("thumbnail sampler: extracting frames: %w", err)
	}

	matches, err := filepath.Glob(filepath.Join(tmpDir, "frame-*.jpg"))
	if err != nil {
		return nil, fmt.Errorf("thumbnail sampler: %w", err)
	}

	out := make([][]Detection, 0, len(matches))
	for _, path := range matches {
		raw, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		img, _, err := image.Decode(bytes.NewReader(raw))
		if err != nil {
			continue
		}
		out = append(out, skinBlobs(img))
	}
	return out, nil
}

// skinBlobs partitions the frame into a coarse grid and reports each cell
// whose average pixel falls in a broad skin-tone band as a Detection,
// scoring confidence by how concentrated the band is within the cell.
func skinBlobs(img image.Image) []Detection {
	const grid = 6
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w == 0 || h == 0 {
		return nil
	}
	cellW, cellH := w/grid, h/grid
	if cellW == 0 || cellH == 0 {
		return nil
	}

	var detections []Detection
	for gy := 0; gy < grid; gy++ {
		for gx := 0; gx < grid; gx++ {
			x0, y0 := bounds.Min.X+gx*cellW, bounds.Min.Y+gy*cellH
			x1, y1 := x0+cellW, y0+cellH
			skinFraction := skinFractionInCell(img, x0, y0, x1, y1)
			if skinFraction < 0.2 {
				continue
			}
			detections = append(detections, Detection{
				X:          float64(x0 + cellW/2),
				Y:          float64(y0 + cellH/2),
				Width:      float64(cellW),
				Height:     float64(cellH),
				Confidence: skinFraction,
			})
		}
	}
	return detections
}

func skinFractionInCell(img image.Image, x0, y0, x1, y1 int) float64 {
	var skin, total int
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			c := color.RGBAModel.Convert(img.At(x, y)).(color.RGBA)
			if isSkinTone(c.R, c.G, c.B) {
				skin++
			}
			total++
		}
	}
	if total == 0 {
		return 0
	}
	return float64(skin) / float64(total)
}

// isSkinTone is the classic RGB heuristic bound (Kovac et al.): a loose
// filter, not a classifier, but cheap and dependency-free.
func isSkinTone(r, g, b uint8) bool {
	ri, gi, bi := int(r), int(g), int(b)
	return ri > 95 && gi > 40 && bi > 20 &&
		ri > gi && ri > bi &&
		(maxInt(ri, maxInt(gi, bi))-minInt(ri, minInt(gi, bi))) > 15 &&
		abs(ri-gi) > 15
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func abs(a int) int {
	if a < 0 {
		return -a
	}
	return a
}
