package face

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIsSkinTone(t *testing.T) {
	require.True(t, isSkinTone(200, 150, 120))
	require.False(t, isSkinTone(10, 10, 10))
	require.False(t, isSkinTone(50, 120, 200))
}

func TestSkinBlobsFindsCellsAboveThreshold(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 60, 60))
	for y := 0; y < 60; y++ {
		for x := 0; x < 60; x++ {
			if x < 10 && y < 10 {
				img.Set(x, y, color.RGBA{R: 220, G: 160, B: 130, A: 255})
			} else {
				img.Set(x, y, color.RGBA{R: 10, G: 10, B: 200, A: 255})
			}
		}
	}

	detections := skinBlobs(img)
	require.NotEmpty(t, detections)
	require.Greater(t, detections[0].Confidence, 0.2)
}

func TestSkinBlobsEmptyImageReturnsNil(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 0, 0))
	require.Nil(t, skinBlobs(img))
}

func TestNewThumbnailSampler(t *testing.T) {
	s := NewThumbnailSampler("/tmp/work")
	require.Equal(t, "/tmp/work", s.WorkDir)
}
