// Package render drives the scene renderer subprocess and locates the
// video file it produces.
package render

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"chalktalk/internal/services"
)

// Executor abstracts renderer process execution for tests.
type Executor interface {
	Run(ctx context.Context, binary string, args []string, dir string) (string, error)
}

type commandExecutor struct{}

func (commandExecutor) Run(ctx context.Context, binary string, args []string, dir string) (string, error) {
	cmd := exec.CommandContext(ctx, binary, args...)
	cmd.Dir = dir
	var buf bytes.Buffer
	cmd.Stdout = &buf
	cmd.Stderr = &buf
	err := cmd.Run()
	return buf.String(), err
}

// Config captures the renderer invocation parameters.
type Config struct {
	Binary         string
	QualityFlag    string
	SceneName      string
	TimeoutSeconds int
}

// Renderer runs the renderer binary against an assembled scene script.
type Renderer struct {
	cfg  Config
	exec Executor
}

// Option adjusts renderer construction.
type Option func(*Renderer)

// WithExecutor overrides process execution, primarily for tests.
func WithExecutor(exec Executor) Option {
	return func(r *Renderer) {
		if exec != nil {
			r.exec = exec
		}
	}
}

// New builds a renderer from configuration.
func New(cfg Config, opts ...Option) *Renderer {
	r := &Renderer{cfg: cfg, exec: commandExecutor{}}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render writes the script into the job directory, invokes the renderer
// against it with a bounded deadline, and returns the path of the produced
// video. The renderer writes into mediaDir under the job directory; the
// produced file is discovered by walking that tree because the renderer's
// own output layout varies across quality settings.
func (r *Renderer) Render(ctx context.Context, jobDir, script string) (string, error) {
	scriptPath := filepath.Join(jobDir, "scene.py")
	if err := os.WriteFile(scriptPath, []byte(script), 0o644); err != nil {
		return "", services.Wrap(services.ErrExternalTool, "render", "write script", "failed to write scene script", err)
	}

	mediaDir := filepath.Join(jobDir, "media")
	timeout := time.Duration(r.cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 180 * time.Second
	}
	// An in-flight render runs to completion or its own deadline; a caller
	// hanging up must not kill the subprocess mid-scene.
	runCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()

	args := []string{}
	if flag := strings.TrimSpace(r.cfg.QualityFlag); flag != "" {
		args = append(args, flag)
	}
	args = append(args,
		"--media_dir", mediaDir,
		"--disable_caching",
		scriptPath,
		r.cfg.SceneName,
	)

	output, err := r.exec.Run(runCtx, r.cfg.Binary, args, jobDir)
	if err != nil {
		if runCtx.Err() == context.DeadlineExceeded {
			return "", services.Wrap(services.ErrTimeout, "render", "render scene",
				fmt.Sprintf("renderer exceeded %s deadline", timeout),
				errors.New(renderFailure(output, script)))
		}
		return "", services.Wrap(services.ErrExternalTool, "render", "render scene",
			"renderer exited with an error",
			fmt.Errorf("%w: %s", err, renderFailure(output, script)))
	}

	videoPath, err := LocateOutput(mediaDir)
	if err != nil {
		return "", err
	}
	return videoPath, nil
}

// renderFailure packages captured renderer output together with the full
// script so a failure report is reproducible without the job directory.
func renderFailure(output, script string) string {
	output = strings.TrimSpace(output)
	script = strings.TrimSpace(script)
	switch {
	case output == "" && script == "":
		return "no renderer output captured"
	case output == "":
		return "script:\n" + script
	case script == "":
		return output
	default:
		return output + "\n\nscript:\n" + script
	}
}

// LocateOutput walks the media tree depth-first and returns the first .mp4
// file found in deterministic lexical order.
func LocateOutput(mediaDir string) (string, error) {
	var found string
	err := filepath.WalkDir(mediaDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if strings.EqualFold(filepath.Ext(path), ".mp4") {
			found = path
			return filepath.SkipAll
		}
		return nil
	})
	if err != nil {
		// A renderer that never created its media directory produced nothing.
		if errors.Is(err, fs.ErrNotExist) {
			return "", services.Wrap(services.ErrNotFound, "render", "locate output", "renderer produced no output file", nil)
		}
		return "", services.Wrap(services.ErrExternalTool, "render", "locate output", "failed to scan renderer media directory", err)
	}
	if found == "" {
		return "", services.Wrap(services.ErrNotFound, "render", "locate output", "renderer produced no output file", nil)
	}
	return found, nil
}
