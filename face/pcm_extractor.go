package face

import (
	"encoding/binary"
	"fmt"
	"math"
	"os"

	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// PCMFeatureExtractor implements FeatureExtractor by asking ffmpeg for a
// mono 16kHz PCM cut of [start, end) and computing summary statistics
// directly over the samples: mean energy, a 64-bin direct DFT spectral
// centroid, and zero-crossing rate.
type PCMFeatureExtractor struct {
	WorkDir string
}

func NewPCMFeatureExtractor(workDir string) *PCMFeatureExtractor {
	return &PCMFeatureExtractor{WorkDir: workDir}
}

const pcmSampleRate = 16000

func (e *PCMFeatureExtractor) Extract(audioPath string, start, end float64) (AudioFeatures, error) {
	if end <= start {
		return AudioFeatures{}, fmt.Errorf("pcm extractor: empty window [%f, %f)", start, end)
	}

	tmp, err := os.CreateTemp(e.WorkDir, "voicewindow-*.raw")
	if err != nil {
		return AudioFeatures{}, fmt.Errorf("pcm extractor: %w", err)
	}
	tmpPath := tmp.Name()
	tmp.Close()
	defer os.Remove(tmpPath)

	err = ffmpeg.Input(audioPath, ffmpeg.KwArgs{"ss": start}).
		Output(tmpPath, ffmpeg.KwArgs{
			"t":    end - start,
			"vn":   "",
			"ar":   pcmSampleRate,
			"ac":   1,
			"f":    "s16le",
			"acodec": "pcm_s16le",
		}).
		OverWriteOutput().Run()
	if err != nil {
		return AudioFeatures{}, fmt.Errorf("pcm extractor: extracting window: %w", err)
	}

	raw, err := os.ReadFile(tmpPath)
	if err != nil {
		return AudioFeatures{}, fmt.Errorf("pcm extractor: reading window: %w", err)
	}

	samples := decodeS16LE(raw)
	if len(samples) == 0 {
		return AudioFeatures{}, fmt.Errorf("pcm extractor: no samples decoded")
	}

	return AudioFeatures{
		MeanEnergy:       meanEnergy(samples),
		SpectralCentroid: spectralCentroid(samples, pcmSampleRate),
		ZeroCrossingRate: zeroCrossingRate(samples),
	}, nil
}

func decodeS16LE(raw []byte) []float64 {
	n := len(raw) / 2
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		v := int16(binary.LittleEndian.Uint16(raw[i*2 : i*2+2]))
		out[i] = float64(v) / 32768.0
	}
	return out
}

func meanEnergy(samples []float64) float64 {
	var sum float64
	for _, s := range samples {
		sum += s * s
	}
	return sum / float64(len(samples))
}

func zeroCrossingRate(samples []float64) float64 {
	if len(samples) < 2 {
		return 0
	}
	var crossings int
	for i := 1; i < len(samples); i++ {
		if (samples[i-1] >= 0) != (samples[i] >= 0) {
			crossings++
		}
	}
	return float64(crossings) / float64(len(samples)-1)
}

// spectralCentroid computes the energy-weighted mean frequency via a
// direct (non-FFT) DFT magnitude spectrum. Window sizes here are small
// (a few hundred ms of 16kHz audio), so the O(n*bins) cost is fine.
func spectralCentroid(samples []float64, sampleRate int) float64 {
	n := len(samples)
	if n == 0 {
		return math.NaN()
	}
	const bins = 64
	mags := make([]float64, bins)
	for k := 0; k < bins; k++ {
		var re, im float64
		freqFactor := -math.Pi * float64(k) / float64(bins)
		for i := 0; i < n; i++ {
			angle := freqFactor * float64(i)
			re += samples[i] * math.Cos(angle)
			im += samples[i] * math.Sin(angle)
		}
		mags[k] = math.Hypot(re, im)
	}

	var weightedSum, totalMag float64
	for k, mag := range mags {
		freq := float64(k) * float64(sampleRate) / float64(2*bins)
		weightedSum += freq * mag
		totalMag += mag
	}
	if totalMag == 0 {
		return 0
	}
	return weightedSum / totalMag
}
