package ffmpeg

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"chalktalk/internal/services"
)

// Executor abstracts command execution for testability.
type Executor interface {
	Run(ctx context.Context, binary string, args []string) (string, error)
}

type commandExecutor struct{}

func (commandExecutor) Run(ctx context.Context, binary string, args []string) (string, error) {
	cmd := exec.CommandContext(ctx, binary, args...)
	output, err := cmd.CombinedOutput()
	return string(output), err
}

// Client wraps the general-purpose audio/video processing tool used for
// silent-audio synthesis, concatenation, and muxing.
type Client struct {
	binary string
	exec   Executor
}

// Option configures the client.
type Option func(*Client)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(executor Executor) Option {
	return func(c *Client) {
		if executor != nil {
			c.exec = executor
		}
	}
}

// New constructs an ffmpeg client.
func New(binary string, opts ...Option) (*Client, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, errors.New("ffmpeg binary required")
	}
	client := &Client{binary: binary, exec: commandExecutor{}}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// SynthesizeSilence writes a silent mono audio track of the given whole-second
// duration to dest.
func (c *Client) SynthesizeSilence(ctx context.Context, seconds int, dest string) error {
	if seconds <= 0 {
		return errors.New("silence duration must be positive")
	}
	args := []string{
		"-y",
		"-f", "lavfi",
		"-i", "anullsrc=r=44100:cl=mono",
		"-t", strconv.Itoa(seconds),
		"-acodec", "libmp3lame",
		"-q:a", "9",
		dest,
	}
	if output, err := c.exec.Run(ctx, c.binary, args); err != nil {
		return services.Wrap(services.ErrExternalTool, "audio", "silence", strings.TrimSpace(output), err)
	}
	return nil
}

// WriteConcatManifest writes a concat-demuxer manifest listing the given
// audio files in order. The manifest order must match segment order exactly
// or audio/visual synchronization breaks.
func WriteConcatManifest(paths []string, dest string) error {
	if len(paths) == 0 {
		return errors.New("concat manifest requires at least one input")
	}
	var b strings.Builder
	for _, path := range paths {
		abs, err := filepath.Abs(path)
		if err != nil {
			return fmt.Errorf("resolve manifest entry: %w", err)
		}
		escaped := strings.ReplaceAll(abs, "'", `'\''`)
		fmt.Fprintf(&b, "file '%s'\n", escaped)
	}
	if err := os.WriteFile(dest, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("write concat manifest: %w", err)
	}
	return nil
}

// ConcatAudio stream-copies the manifest's entries into one continuous track.
func (c *Client) ConcatAudio(ctx context.Context, manifestPath, dest string) error {
	args := []string{
		"-y",
		"-f", "concat",
		"-safe", "0",
		"-i", manifestPath,
		"-c", "copy",
		dest,
	}
	if output, err := c.exec.Run(ctx, c.binary, args); err != nil {
		return services.Wrap(services.ErrExternalTool, "mux", "concat", strings.TrimSpace(output), err)
	}
	return nil
}

// Mux combines the rendered video with the concatenated narration. The video
// stream is copied, not re-encoded; the audio is re-encoded to aac at a fixed
// bitrate; the output is trimmed to the shorter stream as a guard against
// drift between the scripted pauses and the measured narration.
func (c *Client) Mux(ctx context.Context, videoPath, audioPath, dest string) error {
	args := []string{
		"-y",
		"-i", videoPath,
		"-i", audioPath,
		"-c:v", "copy",
		"-c:a", "aac",
		"-b:a", "192k",
		"-shortest",
		dest,
	}
	if output, err := c.exec.Run(ctx, c.binary, args); err != nil {
		return services.Wrap(services.ErrExternalTool, "mux", "merge", strings.TrimSpace(output), err)
	}
	return nil
}
