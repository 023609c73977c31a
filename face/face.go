// Package face implements the face/speaker adapter (§4.C): a heuristic
// face-centering sampler for the auto layout and a spectral voice-window
// classifier for two-speaker framing. Both fail safe — they never raise,
// returning a defined fallback on any internal error.
package face

import "math"

// Detection is one face found in a sampled frame.
type Detection struct {
	X, Y, Width, Height float64
	Confidence          float64
}

// FrameSampler yields faces detected in up to ~300 evenly strided frames
// of a video. Production wiring backs this with an actual detector
// (e.g. a face-detection DNN run over sampled frames); tests substitute
// a stub returning canned detections.
type FrameSampler interface {
	SampleFaces(videoPath string, maxFrames int) ([][]Detection, error)
}

const maxSampleFrames = 300

// FaceCenter returns the (x, y) the auto layout should crop around. It
// partitions detections by horizontal half, averages the positions of
// faces in the preferred half whose prominence is at least half the
// max, and falls back to the frame center on any error or when no face
// is detected.
func FaceCenter(sampler FrameSampler, videoPath string, frameWidth, frameHeight float64, preferLeft bool) (x, y float64) {
	center := frameWidth / 2
	fallback := func() (float64, float64) { return frameWidth / 2, frameHeight / 2 }

	frames, err := sampler.SampleFaces(videoPath, maxSampleFrames)
	if err != nil {
		return fallback()
	}

	var maxProminence float64
	var all []Detection
	for _, frame := range frames {
		for _, d := range frame {
			p := prominence(d)
			if p > maxProminence {
				maxProminence = p
			}
			all = append(all, d)
		}
	}
	if len(all) == 0 || maxProminence == 0 {
		return fallback()
	}

	var sumX, sumY float64
	var n int
	for _, d := range all {
		inPreferredHalf := (preferLeft && d.X < center) || (!preferLeft && d.X >= center)
		if !inPreferredHalf {
			continue
		}
		if prominence(d) < maxProminence/2 {
			continue
		}
		sumX += d.X
		sumY += d.Y
		n++
	}
	if n == 0 {
		return fallback()
	}
	return sumX / float64(n), sumY / float64(n)
}

func prominence(d Detection) float64 {
	return d.Width * d.Height * d.Confidence
}

// AudioFeatures are the summary statistics VoiceWindow classifies from.
type AudioFeatures struct {
	MeanEnergy       float64
	SpectralCentroid float64
	ZeroCrossingRate float64
}

// FeatureExtractor computes AudioFeatures over [start, end) of an audio
// file. Production wiring runs a direct (non-FFT) DFT over the PCM
// samples; tests substitute canned features.
type FeatureExtractor interface {
	Extract(audioPath string, start, end float64) (AudioFeatures, error)
}

// voiceCentroidThreshold separates the "left" speaker's register from
// the "right" speaker's in the spectral-centroid heuristic.
const voiceCentroidThreshold = 1500.0

// VoiceWindow classifies which speaker is active in [start, end) using a
// spectral centroid heuristic, falling back to "left" on any error.
func VoiceWindow(extractor FeatureExtractor, audioPath string, start, end float64) string {
	features, err := extractor.Extract(audioPath, start, end)
	if err != nil {
		return "left"
	}
	if math.IsNaN(features.SpectralCentroid) {
		return "left"
	}
	if features.SpectralCentroid < voiceCentroidThreshold {
		return "left"
	}
	return "right"
}
