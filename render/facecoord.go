package render

import (
	"fmt"

	"github.com/clipforge/viralclip/cache"
	"github.com/clipforge/viralclip/face"
)

// faceTimeBucketSeconds buckets face-center lookups coarsely enough
// that consecutive clips cut from the same source and the same rough
// timestamp reuse one sampling pass instead of re-running face
// detection per clip.
const faceTimeBucketSeconds = 30

// faceCoord is a cached face-center result for one source/time bucket.
type faceCoord struct {
	X, Y float64
}

// faceCache resolves Open Question #1: face detection is sampled once
// per source file and per coarse time bucket, not once per clip — a
// clip whose midpoint falls in an already-sampled bucket reuses the
// cached coordinate.
type faceCache struct {
	sampler face.FrameSampler
	entries *cache.Cache[faceCoord]
}

func newFaceCache(sampler face.FrameSampler) *faceCache {
	return &faceCache{sampler: sampler, entries: cache.New[faceCoord]()}
}

func faceCacheKey(sourcePath string, midpoint float64) string {
	bucket := int(midpoint) / faceTimeBucketSeconds
	return fmt.Sprintf("%s:%d", sourcePath, bucket)
}

// centerFor returns the face center for the clip at [start, end) of
// sourcePath, sampling (and caching) only on a cache miss.
func (fc *faceCache) centerFor(sourcePath string, start, end, frameWidth, frameHeight float64, preferLeft bool) (float64, float64) {
	midpoint := (start + end) / 2
	key := faceCacheKey(sourcePath, midpoint)

	if coord, ok := fc.entries.Get(key); ok {
		return coord.X, coord.Y
	}

	x, y := face.FaceCenter(fc.sampler, sourcePath, frameWidth, frameHeight, preferLeft)
	fc.entries.Store(key, faceCoord{X: x, Y: y})
	return x, y
}
