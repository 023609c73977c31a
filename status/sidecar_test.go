package status

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/clipforge/viralclip/config"
	"github.com/clipforge/viralclip/job"
	"github.com/stretchr/testify/require"
)

func TestUpdateProgressWritesSnapshot(t *testing.T) {
	orig := config.Clock
	config.Clock = config.FixedTimestampGenerator{Timestamp: time.Unix(1000, 0)}
	defer func() { config.Clock = orig }()

	dir := t.TempDir()
	s := New(dir)
	require.NoError(t, s.UpdateProgress("job-1", 40, "render", "rendering clip 2 of 5"))

	data, err := os.ReadFile(filepath.Join(dir, "job-1_status.json"))
	require.NoError(t, err)

	var snap snapshot
	require.NoError(t, json.Unmarshal(data, &snap))
	require.Equal(t, "job-1", snap.JobID)
	require.Equal(t, "processing", snap.Status)
	require.Equal(t, 40, snap.Progress)
	require.Equal(t, "render", snap.Stage)
	require.Nil(t, snap.Clips)
}

func TestWriteTerminalCompleted(t *testing.T) {
	dir := t.TempDir()
	s := New(dir)
	clips := []job.ClipRecord{{Index: 0, OutputPath: "clip_0.mp4"}}

	require.NoError(t, s.WriteTerminal("job-2", job.StateCompleted, "done", clips))

	data, err := os.ReadFile(filepath.Join(dir, "job-2_status.json"))
	require.NoError(t, err)

	var snap snapshot
	require.NoError(t, json.Unmarshal(data, &snap))
	require.Equal(t, "completed", snap.Status)
	require.Equal(t, 100, snap.Progress)
	require.Len(t, snap.Clips, 1)
}

func TestWriteTerminalFailed(t *testing.T) {
	dir := t.TempDir()
	s := New(dir)

	require.NoError(t, s.WriteTerminal("job-3", job.StateFailed, "boom", nil))

	data, err := os.ReadFile(filepath.Join(dir, "job-3_status.json"))
	require.NoError(t, err)

	var snap snapshot
	require.NoError(t, json.Unmarshal(data, &snap))
	require.Equal(t, "error", snap.Status)
	require.Equal(t, 0, snap.Progress)
	require.Equal(t, "boom", snap.Message)
}

func TestUpdateProgressOverwritesPreviousSnapshot(t *testing.T) {
	dir := t.TempDir()
	s := New(dir)

	require.NoError(t, s.UpdateProgress("job-4", 10, "download", "starting"))
	require.NoError(t, s.UpdateProgress("job-4", 90, "render", "almost done"))

	data, err := os.ReadFile(filepath.Join(dir, "job-4_status.json"))
	require.NoError(t, err)

	var snap snapshot
	require.NoError(t, json.Unmarshal(data, &snap))
	require.Equal(t, 90, snap.Progress)
	require.Equal(t, "render", snap.Stage)
}
