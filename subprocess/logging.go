// Package subprocess streams a child process's stdout/stderr into the
// structured logger, line by line, without blocking the caller. The
// media toolchain adapter (§4.A) does not use it: it buffers ffmpeg's
// stderr itself and logs it on failure.
package subprocess

import (
	"bufio"
	"fmt"
	"io"
	"os/exec"

	"github.com/clipforge/viralclip/log"
)

func streamOutput(jobID, stream string, src io.Reader) {
	s := bufio.NewReader(src)
	for {
		var line []byte
		line, err := s.ReadSlice('\n')
		if err == io.EOF && len(line) == 0 {
			break
		}
		if err == io.EOF {
			log.Log(jobID, "subprocess stream ended without newline", "stream", stream, "line", string(line))
			return
		}
		if err != nil {
			log.LogError(jobID, "subprocess stream read error", err, "stream", stream)
			return
		}
		log.Log(jobID, "subprocess output", "stream", stream, "line", string(line))
	}
}

func LogStdout(jobID string, cmd *exec.Cmd) error {
	stdoutPipe, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("failed to open stdout pipe: %w", err)
	}
	go streamOutput(jobID, "stdout", stdoutPipe)
	return nil
}

func LogStderr(jobID string, cmd *exec.Cmd) error {
	stderrPipe, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("failed to open stderr pipe: %w", err)
	}
	go streamOutput(jobID, "stderr", stderrPipe)
	return nil
}

// LogOutputs starts goroutines that stream cmd's stdout & stderr into the
// job's logger. Call before cmd.Start().
func LogOutputs(jobID string, cmd *exec.Cmd) error {
	if err := LogStderr(jobID, cmd); err != nil {
		return err
	}
	if err := LogStdout(jobID, cmd); err != nil {
		return err
	}
	return nil
}
