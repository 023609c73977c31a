package asr

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"
)

// fakeWhisperScript writes a shell stand-in for the whisper binary that
// parses --output_dir from its args and drops a canned JSON transcript
// there, named after the input audio file, exactly like the real CLI.
func fakeWhisperScript(t *testing.T) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake whisper script requires a POSIX shell")
	}

	dir := t.TempDir()
	script := filepath.Join(dir, "whisper")
	body := `#!/bin/sh
set -e
outdir=""
base=""
prev=""
for arg in "$@"; do
  if [ "$prev" = "--output_dir" ]; then
    outdir="$arg"
  fi
  prev="$arg"
done
for arg in "$@"; do
  case "$arg" in
    --*) break ;;
    *) base="$arg" ;;
  esac
done
name=$(basename "$base")
stem="${name%.*}"
cat > "$outdir/$stem.json" <<JSON
{"language":"en","segments":[{"start":0.0,"end":1.5,"text":" hello world ","words":[{"start":0.0,"end":0.5,"word":" hello"},{"start":0.6,"end":1.5,"word":" world "}]}]}
JSON
`
	require.NoError(t, os.WriteFile(script, []byte(body), 0o755))
	return script
}

func TestNewWhisperCLIDefaults(t *testing.T) {
	w := NewWhisperCLI("", "")
	require.Equal(t, "whisper", w.BinPath)
	require.Equal(t, "small", w.Model)

	w2 := NewWhisperCLI("/usr/bin/custom-whisper", "medium")
	require.Equal(t, "/usr/bin/custom-whisper", w2.BinPath)
	require.Equal(t, "medium", w2.Model)
}

func TestWhisperCLITranscribeParsesOutput(t *testing.T) {
	bin := fakeWhisperScript(t)
	audioDir := t.TempDir()
	audioPath := filepath.Join(audioDir, "clip.wav")
	require.NoError(t, os.WriteFile(audioPath, []byte("fake audio"), 0o644))

	w := NewWhisperCLI(bin, "small")
	segments, language, err := w.Transcribe(context.Background(), audioPath, Options{WordTimestamps: true})
	require.NoError(t, err)
	require.Equal(t, "en", language)
	require.Len(t, segments, 1)
	require.Equal(t, "hello world", segments[0].Text)
	require.Len(t, segments[0].Words, 2)
	require.Equal(t, "hello", segments[0].Words[0].Text)
	require.Equal(t, "world", segments[0].Words[1].Text)
}

func TestWhisperCLITranscribePropagatesCommandFailure(t *testing.T) {
	dir := t.TempDir()
	script := filepath.Join(dir, "whisper")
	require.NoError(t, os.WriteFile(script, []byte("#!/bin/sh\necho boom 1>&2\nexit 1\n"), 0o755))

	w := NewWhisperCLI(script, "small")
	_, _, err := w.Transcribe(context.Background(), filepath.Join(dir, "clip.wav"), Options{})
	require.Error(t, err)
	require.Contains(t, fmt.Sprint(err), "boom")
}
