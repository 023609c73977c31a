package face

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecodeS16LE(t *testing.T) {
	raw := make([]byte, 4)
	binary.LittleEndian.PutUint16(raw[0:2], uint16(int16(16384)))
	binary.LittleEndian.PutUint16(raw[2:4], uint16(int16(-16384)))

	samples := decodeS16LE(raw)
	require.Len(t, samples, 2)
	require.InDelta(t, 0.5, samples[0], 1e-6)
	require.InDelta(t, -0.5, samples[1], 1e-6)
}

func TestMeanEnergy(t *testing.T) {
	samples := []float64{1, -1, 1, -1}
	require.InDelta(t, 1.0, meanEnergy(samples), 1e-9)
}

func TestZeroCrossingRate(t *testing.T) {
	samples := []float64{1, -1, 1, -1, 1}
	require.InDelta(t, 1.0, zeroCrossingRate(samples), 1e-9)

	require.Equal(t, float64(0), zeroCrossingRate([]float64{1}))
}

func TestSpectralCentroidConstantSignalIsLowFrequency(t *testing.T) {
	samples := make([]float64, 256)
	for i := range samples {
		samples[i] = 1
	}
	centroid := spectralCentroid(samples, pcmSampleRate)
	require.False(t, math.IsNaN(centroid))
	require.Less(t, centroid, float64(pcmSampleRate)/8)
}

func TestSpectralCentroidEmptySamplesIsNaN(t *testing.T) {
	require.True(t, math.IsNaN(spectralCentroid(nil, pcmSampleRate)))
}

func TestNewPCMFeatureExtractor(t *testing.T) {
	e := NewPCMFeatureExtractor("/tmp/work")
	require.Equal(t, "/tmp/work", e.WorkDir)
}
