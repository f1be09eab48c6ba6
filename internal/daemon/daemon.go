package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/gofrs/flock"

	"chalktalk/internal/config"
	"chalktalk/internal/deps"
	"chalktalk/internal/logging"
	"chalktalk/internal/pipeline"
)

// VideoGenerator is the pipeline surface the daemon depends on.
type VideoGenerator interface {
	Run(ctx context.Context, req pipeline.Request) (*pipeline.Result, error)
	CheckTools() []deps.Status
}

// Daemon coordinates the API server and enforces single-instance execution.
type Daemon struct {
	cfg       *config.Config
	logger    *slog.Logger
	generator VideoGenerator

	lockPath string
	lock     *flock.Flock
	api      *apiServer

	running atomic.Bool
	cancel  context.CancelFunc
}

// Status represents daemon runtime information.
type Status struct {
	Running           bool
	PID               int
	Address           string
	LockFilePath      string
	PlannerConfigured bool
	TTSConfigured     bool
	Dependencies      []deps.Status
}

// New constructs a daemon with initialized dependencies.
func New(cfg *config.Config, generator VideoGenerator, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || generator == nil {
		return nil, errors.New("daemon requires config and generator")
	}
	if logger == nil {
		logger = slog.Default()
	}

	lockPath := filepath.Join(cfg.Paths.LogDir, "chalktalkd.lock")
	d := &Daemon{
		cfg:       cfg,
		logger:    logger,
		generator: generator,
		lockPath:  lockPath,
		lock:      flock.New(lockPath),
	}
	d.api = newAPIServer(cfg, d, logger)
	return d, nil
}

// Start acquires the daemon lock and brings up the API server.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	if err := os.MkdirAll(d.cfg.Paths.LogDir, 0o755); err != nil {
		return fmt.Errorf("create log directory: %w", err)
	}
	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another chalktalk daemon instance is already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	d.cancel = cancel
	if err := d.api.start(runCtx); err != nil {
		_ = d.lock.Unlock()
		cancel()
		d.cancel = nil
		return err
	}

	d.running.Store(true)
	d.logger.Info("chalktalk daemon started",
		slog.String("lock", d.lockPath),
		slog.String("address", d.api.address()))
	return nil
}

// Stop shuts down the API server and releases the daemon lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.api.stop()
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.running.Store(false)
	d.logger.Info("chalktalk daemon stopped")
}

// Status reports runtime information for the status endpoint and CLI.
func (d *Daemon) Status() Status {
	return Status{
		Running:           d.running.Load(),
		PID:               os.Getpid(),
		Address:           d.api.address(),
		LockFilePath:      d.lockPath,
		PlannerConfigured: d.cfg.Planner.APIKey != "",
		TTSConfigured:     d.cfg.TTS.APIKey != "",
		Dependencies:      d.generator.CheckTools(),
	}
}
