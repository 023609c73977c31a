package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIsObjectNotFound(t *testing.T) {
	err := NewObjectNotFoundError("foo", fmt.Errorf("bar"))
	require.True(t, IsObjectNotFound(err))
	require.True(t, IsUnretriable(err))
}

func TestUnretriable(t *testing.T) {
	err := Unretriable(fmt.Errorf("bar"))
	require.True(t, IsUnretriable(err))
}

func TestValidationError(t *testing.T) {
	err := NewValidationError("missing field %s", "job_id")
	require.True(t, IsValidationError(err))
	require.Equal(t, "missing field job_id", err.Error())
}

func TestDownloadErrorCategoryAndMessage(t *testing.T) {
	err := NewDownloadError(DownloadRestricted, fmt.Errorf("403"))
	de, ok := IsDownloadError(err)
	require.True(t, ok)
	require.Equal(t, DownloadRestricted, de.Category)
	require.Contains(t, de.UserMessage(), "restricted")
}

func TestRenderErrorCarriesStage(t *testing.T) {
	err := NewRenderError("burning", fmt.Errorf("ffmpeg exit 1"))
	var re RenderError
	require.ErrorAs(t, err, &re)
	require.Equal(t, "burning", re.Stage)
}

func TestInternalErrorHasTrace(t *testing.T) {
	err := NewInternalError(fmt.Errorf("boom"))
	var ie InternalError
	require.ErrorAs(t, err, &ie)
	require.NotEmpty(t, ie.Trace)
}
