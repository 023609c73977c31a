package cache

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type testFaceCoord struct {
	X, Y float64
}

func TestStoreAndRetrieve(t *testing.T) {
	c := New[testFaceCoord]()
	c.Store("source.mp4:0-10", testFaceCoord{X: 540, Y: 960})

	got, ok := c.Get("source.mp4:0-10")
	require.True(t, ok)
	require.Equal(t, testFaceCoord{X: 540, Y: 960}, got)
}

func TestStoreAndRemove(t *testing.T) {
	c := New[testFaceCoord]()
	c.Store("source.mp4:0-10", testFaceCoord{X: 540, Y: 960})

	c.Remove("job-1", "source.mp4:0-10")

	_, ok := c.Get("source.mp4:0-10")
	require.False(t, ok)
}

func TestGetMissing(t *testing.T) {
	c := New[testFaceCoord]()
	_, ok := c.Get("missing")
	require.False(t, ok)
}
