// Package pipeline orchestrates the stages that turn a problem statement
// into a narrated video: planning, narration synthesis, script assembly,
// rendering, audio concatenation, and muxing.
package pipeline

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"chalktalk/internal/config"
	"chalktalk/internal/deps"
	"chalktalk/internal/logging"
	"chalktalk/internal/media/ffmpeg"
	"chalktalk/internal/media/ffprobe"
	"chalktalk/internal/plan"
	"chalktalk/internal/render"
	"chalktalk/internal/scenescript"
	"chalktalk/internal/services"
	"chalktalk/internal/services/planner"
	"chalktalk/internal/services/tts"
)

// Planner turns a problem statement into an ordered scene plan.
type Planner interface {
	GeneratePlan(ctx context.Context, problem, personalization string) (plan.ScenePlan, error)
}

// SceneRenderer renders an assembled scene script inside a job directory and
// returns the path of the produced video.
type SceneRenderer interface {
	Render(ctx context.Context, jobDir, script string) (string, error)
}

// AudioAssembler covers the audio operations the pipeline delegates to the
// media toolchain.
type AudioAssembler interface {
	SilenceWriter
	ConcatAudio(ctx context.Context, manifestPath, dest string) error
	Mux(ctx context.Context, videoPath, audioPath, dest string) error
}

// Request carries the caller's input for one video generation run.
type Request struct {
	Problem         string
	Personalization string
}

// Result describes a completed run. The caller owns Job and must call
// Cleanup once VideoPath has been fully consumed.
type Result struct {
	Job            *Job
	VideoPath      string
	Segments       int
	SilentSegments int
	Elapsed        time.Duration
}

// Pipeline wires the stage implementations together.
type Pipeline struct {
	cfg      *config.Config
	logger   *slog.Logger
	planner  Planner
	narrator Narrator
	media    AudioAssembler
	renderer SceneRenderer
	probe    DurationProbe
}

// Option adjusts pipeline construction, primarily to substitute stage
// implementations in tests.
type Option func(*Pipeline)

// WithPlanner overrides the planning client.
func WithPlanner(p Planner) Option {
	return func(pl *Pipeline) { pl.planner = p }
}

// WithNarrator overrides the narration client.
func WithNarrator(n Narrator) Option {
	return func(pl *Pipeline) { pl.narrator = n }
}

// WithMedia overrides the audio toolchain client.
func WithMedia(m AudioAssembler) Option {
	return func(pl *Pipeline) { pl.media = m }
}

// WithRenderer overrides the scene renderer.
func WithRenderer(r SceneRenderer) Option {
	return func(pl *Pipeline) { pl.renderer = r }
}

// WithDurationProbe overrides audio duration measurement.
func WithDurationProbe(p DurationProbe) Option {
	return func(pl *Pipeline) { pl.probe = p }
}

// New builds a pipeline from configuration. External binaries are resolved
// up front so a misconfigured host fails before any job starts.
func New(cfg *config.Config, logger *slog.Logger, opts ...Option) (*Pipeline, error) {
	if logger == nil {
		logger = slog.Default()
	}

	ffmpegPath := resolveBinary("ffmpeg")
	ffprobePath := resolveBinary("ffprobe")

	media, err := ffmpeg.New(ffmpegPath)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		cfg:    cfg,
		logger: logger,
		planner: planner.NewClient(planner.Config{
			APIKey:          cfg.Planner.APIKey,
			BaseURL:         cfg.Planner.BaseURL,
			Model:           cfg.Planner.Model,
			TimeoutSeconds:  cfg.Planner.TimeoutSeconds,
			MinSegments:     cfg.Plan.MinSegments,
			MaxSegments:     cfg.Plan.MaxSegments,
			MinWords:        cfg.Plan.MinWords,
			MaxWords:        cfg.Plan.MaxWords,
			DefaultDuration: cfg.Plan.DefaultDuration,
			MinDuration:     cfg.Plan.MinDuration,
		}),
		narrator: tts.NewClient(tts.Config{
			APIKey:         cfg.TTS.APIKey,
			BaseURL:        cfg.TTS.BaseURL,
			Voice:          cfg.TTS.Voice,
			TimeoutSeconds: cfg.TTS.TimeoutSeconds,
		}),
		media: media,
		renderer: render.New(render.Config{
			Binary:         cfg.Renderer.Binary,
			QualityFlag:    cfg.Renderer.QualityFlag,
			SceneName:      cfg.Renderer.SceneName,
			TimeoutSeconds: cfg.Renderer.TimeoutSeconds,
		}),
		probe: func(ctx context.Context, path string) (float64, error) {
			result, err := ffprobe.Inspect(ctx, ffprobePath, path)
			if err != nil {
				return 0, err
			}
			return result.DurationSeconds(), nil
		},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// CheckTools reports the resolution status of every external binary the
// pipeline shells out to.
func (p *Pipeline) CheckTools() []deps.Status {
	return deps.CheckBinaries(deps.PipelineRequirements(p.cfg))
}

// Run executes the full pipeline for one request. On failure the job
// directory is removed before returning; on success the caller is
// responsible for Cleanup after consuming the video.
func (p *Pipeline) Run(ctx context.Context, req Request) (*Result, error) {
	problem := strings.TrimSpace(req.Problem)
	if problem == "" {
		return nil, services.Wrap(services.ErrValidation, "pipeline", "validate request", "problem statement is required", nil)
	}

	started := time.Now()
	job, err := NewJob(p.cfg.Paths.ScratchDir)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "pipeline", "create job", "failed to create job directory", err)
	}

	ctx = logging.WithJob(services.WithJobID(ctx, job.ID), job.ID)
	logger := logging.WithContext(ctx, p.logger)
	logger.Info("job started", slog.String("dir", job.Dir))

	result, err := p.run(ctx, job, problem, req.Personalization)
	if err != nil {
		if cleanupErr := job.Cleanup(); cleanupErr != nil {
			logger.Warn("job cleanup failed", logging.Error(cleanupErr))
		}
		logger.Error("job failed", logging.Error(err), slog.Duration("elapsed", time.Since(started)))
		return nil, err
	}

	result.Elapsed = time.Since(started)
	logger.Info("job completed",
		slog.Int("segments", result.Segments),
		slog.Int("silent_segments", result.SilentSegments),
		slog.Duration("elapsed", result.Elapsed))
	return result, nil
}

func (p *Pipeline) run(ctx context.Context, job *Job, problem, personalization string) (*Result, error) {
	scenePlan, err := p.stagePlan(ctx, problem, personalization)
	if err != nil {
		return nil, err
	}

	audio, err := p.stageSynthesize(ctx, job, scenePlan)
	if err != nil {
		return nil, err
	}

	script, err := p.stageAssemble(ctx, scenePlan, audio)
	if err != nil {
		return nil, err
	}

	videoPath, err := p.stageRender(ctx, job, script)
	if err != nil {
		return nil, err
	}

	audioPath, err := p.stageConcat(ctx, job, audio)
	if err != nil {
		return nil, err
	}

	finalPath, err := p.stageMux(ctx, job, videoPath, audioPath)
	if err != nil {
		return nil, err
	}

	silent := 0
	for _, clip := range audio {
		if clip.Silent {
			silent++
		}
	}
	return &Result{
		Job:            job,
		VideoPath:      finalPath,
		Segments:       scenePlan.Len(),
		SilentSegments: silent,
	}, nil
}

func (p *Pipeline) stagePlan(ctx context.Context, problem, personalization string) (plan.ScenePlan, error) {
	ctx = logging.WithStage(ctx, "plan")
	done := stageTimer(logging.WithContext(ctx, p.logger))
	scenePlan, err := p.planner.GeneratePlan(ctx, problem, personalization)
	done(err, slog.Int("segments", scenePlan.Len()))
	return scenePlan, err
}

func (p *Pipeline) stageSynthesize(ctx context.Context, job *Job, scenePlan plan.ScenePlan) ([]SegmentAudio, error) {
	ctx = logging.WithStage(ctx, "synthesize")
	logger := logging.WithContext(ctx, p.logger)
	done := stageTimer(logger)
	audio, err := synthesizeAll(ctx, logger, job, scenePlan, p.narrator, p.media, p.probe)
	done(err, slog.Int("clips", len(audio)))
	return audio, err
}

func (p *Pipeline) stageAssemble(ctx context.Context, scenePlan plan.ScenePlan, audio []SegmentAudio) (string, error) {
	done := stageTimer(logging.WithContext(logging.WithStage(ctx, "assemble"), p.logger))
	durations := make([]float64, len(audio))
	for i, clip := range audio {
		durations[i] = clip.Duration
	}
	script, err := scenescript.Assemble(scenePlan, durations, p.cfg.Renderer.SceneName)
	done(err, slog.Int("bytes", len(script)))
	if err != nil {
		return "", services.Wrap(services.ErrValidation, "assemble", "assemble script", "failed to assemble scene script", err)
	}
	return script, nil
}

func (p *Pipeline) stageRender(ctx context.Context, job *Job, script string) (string, error) {
	ctx = logging.WithStage(ctx, "render")
	done := stageTimer(logging.WithContext(ctx, p.logger))
	videoPath, err := p.renderer.Render(ctx, job.Dir, script)
	done(err, slog.String("video", videoPath))
	return videoPath, err
}

func (p *Pipeline) stageConcat(ctx context.Context, job *Job, audio []SegmentAudio) (string, error) {
	ctx = logging.WithStage(ctx, "concat")
	done := stageTimer(logging.WithContext(ctx, p.logger))
	paths := make([]string, len(audio))
	for i, clip := range audio {
		paths[i] = clip.Path
	}
	manifestPath := job.Path("concat.txt")
	dest := job.Path("narration.mp3")
	err := ffmpeg.WriteConcatManifest(paths, manifestPath)
	if err == nil {
		err = p.media.ConcatAudio(ctx, manifestPath, dest)
	}
	done(err, slog.Int("clips", len(paths)))
	if err != nil {
		return "", err
	}
	return dest, nil
}

func (p *Pipeline) stageMux(ctx context.Context, job *Job, videoPath, audioPath string) (string, error) {
	ctx = logging.WithStage(ctx, "mux")
	done := stageTimer(logging.WithContext(ctx, p.logger))
	dest := job.Path("lesson.mp4")
	err := p.media.Mux(ctx, videoPath, audioPath, dest)
	done(err, slog.String("artifact", dest))
	if err != nil {
		return "", err
	}
	return dest, nil
}

// stageTimer logs stage completion with its wall time. The logger must
// already carry the stage field (via logging.WithContext); the returned func
// is called once with the stage error and any extra attributes worth
// recording.
func stageTimer(logger *slog.Logger) func(err error, attrs ...slog.Attr) {
	started := time.Now()
	return func(err error, attrs ...slog.Attr) {
		args := make([]any, 0, len(attrs)+2)
		args = append(args, slog.Duration("elapsed", time.Since(started)))
		for _, attr := range attrs {
			args = append(args, attr)
		}
		if err != nil {
			logger.Error("stage failed", append(args, logging.Error(err))...)
			return
		}
		logger.Info("stage completed", args...)
	}
}

func resolveBinary(name string) string {
	if path, ok := deps.Resolve(name); ok {
		return path
	}
	return name
}
