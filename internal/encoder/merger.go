package encoder

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"syscall"
	"time"

	"vidlift/internal/services"
)

var commandContext = exec.CommandContext

// maxStderrBytes bounds how much ffmpeg diagnostics we keep for error reporting.
const maxStderrBytes = 8 * 1024

// Merger combines a video file and a separate audio track into one output.
type Merger interface {
	Merge(ctx context.Context, videoPath, audioPath, outputPath string) error
}

// Option configures the CLI merger.
type Option func(*CLI)

// WithBinary overrides the default ffmpeg binary name.
func WithBinary(binary string) Option {
	return func(c *CLI) {
		if binary != "" {
			c.binary = binary
		}
	}
}

// CLI wraps the ffmpeg command-line tool for audio merging.
type CLI struct {
	binary string
}

// NewCLI constructs a CLI merger using defaults.
func NewCLI(opts ...Option) *CLI {
	cli := &CLI{binary: "ffmpeg"}
	for _, opt := range opts {
		opt(cli)
	}
	return cli
}

// Merge copies the video stream untouched and re-encodes the replacement
// audio track as AAC into outputPath. The output is overwritten if present.
func (c *CLI) Merge(ctx context.Context, videoPath, audioPath, outputPath string) error {
	if videoPath == "" {
		return errors.New("video path required")
	}
	if audioPath == "" {
		return errors.New("audio path required")
	}
	if outputPath == "" {
		return errors.New("output path required")
	}

	args := []string{
		"-i", videoPath,
		"-i", audioPath,
		"-c:v", "copy",
		"-c:a", "aac",
		"-strict", "experimental",
		"-y",
		outputPath,
	}

	cmd := commandContext(ctx, c.binary, args...) //nolint:gosec
	var stderr bytes.Buffer
	cmd.Stdout = io.Discard
	cmd.Stderr = newBoundedWriter(&stderr, maxStderrBytes)

	// ffmpeg runs in its own process group so cancellation kills any helper
	// it spawned; otherwise a surviving child keeps the stderr pipe open and
	// Run blocks past the context. WaitDelay is the backstop for processes
	// that ignore the kill.
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		return syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
	}
	cmd.WaitDelay = 3 * time.Second

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		detail := strings.TrimSpace(stderr.String())
		message := fmt.Sprintf("ffmpeg merge failed: %v", err)
		if detail != "" {
			message = fmt.Sprintf("%s: %s", message, lastLines(detail, 5))
		}
		return services.Wrap(services.ErrEncoding, "merging", "ffmpeg", message, err)
	}

	return nil
}

var _ Merger = (*CLI)(nil)

type boundedWriter struct {
	dst   io.Writer
	limit int
	seen  int
}

func newBoundedWriter(dst io.Writer, limit int) *boundedWriter {
	return &boundedWriter{dst: dst, limit: limit}
}

// Write discards bytes beyond the limit but always reports success so the
// subprocess never blocks on a full pipe.
func (w *boundedWriter) Write(p []byte) (int, error) {
	remaining := w.limit - w.seen
	if remaining > 0 {
		chunk := p
		if len(chunk) > remaining {
			chunk = chunk[:remaining]
		}
		n, err := w.dst.Write(chunk)
		w.seen += n
		if err != nil {
			return len(p), nil
		}
	}
	return len(p), nil
}

func lastLines(text string, n int) string {
	lines := strings.Split(text, "\n")
	if len(lines) <= n {
		return text
	}
	return strings.Join(lines[len(lines)-n:], "\n")
}
