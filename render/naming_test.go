package render

import (
	"testing"

	"github.com/clipforge/viralclip/job"
	"github.com/stretchr/testify/require"
)

func TestOutputFileNameWithJobID(t *testing.T) {
	name := OutputFileName("job-42", 1, 7.5, job.LayoutFit, "Bold")
	require.Equal(t, "job-42_clip_1_score_7_50_fit_bold.mp4", name)
}

func TestOutputFileNameWithoutJobID(t *testing.T) {
	name := OutputFileName("", 0, 10, job.LayoutSquare, "Minimal")
	require.Equal(t, "clip_0_score_10_00_square_minimal.mp4", name)
}
