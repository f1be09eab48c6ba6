package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"os"
	"sync"

	"chalktalk/internal/logging"
	"chalktalk/internal/plan"
	"chalktalk/internal/services"
)

// Narrator synthesizes narration audio for a single segment.
type Narrator interface {
	Enabled() bool
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

// SilenceWriter produces a silent audio clip of a whole number of seconds.
type SilenceWriter interface {
	SynthesizeSilence(ctx context.Context, seconds int, dest string) error
}

// DurationProbe measures the playable duration of an audio file in seconds.
type DurationProbe func(ctx context.Context, path string) (float64, error)

// SegmentAudio is the narration artifact for one segment.
type SegmentAudio struct {
	Path     string
	Duration float64
	Silent   bool
}

// SilentSeconds estimates a reading pause for narration that could not be
// voiced, at roughly 2.5 words per second with a three second floor.
func SilentSeconds(narration string) int {
	words := plan.WordCount(narration)
	seconds := int(math.Ceil(float64(words) / 2.5))
	if seconds < 3 {
		seconds = 3
	}
	return seconds
}

// synthesizeAll produces one audio clip per segment, fanning segments out
// concurrently and collecting results by index so the output order always
// matches the plan regardless of completion order.
//
// A narration failure for one segment never fails the job: the segment
// degrades to a silent clip sized from its word count. Only an inability to
// produce even the silent clip is fatal.
func synthesizeAll(ctx context.Context, logger *slog.Logger, job *Job, p plan.ScenePlan, narrator Narrator, silence SilenceWriter, probe DurationProbe) ([]SegmentAudio, error) {
	results := make([]SegmentAudio, p.Len())
	errs := make([]error, p.Len())

	var wg sync.WaitGroup
	for i, segment := range p.Segments {
		wg.Add(1)
		go func(i int, segment plan.Segment) {
			defer wg.Done()
			results[i], errs[i] = synthesizeSegment(ctx, logger, job, i, segment, narrator, silence, probe)
		}(i, segment)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("segment %d: %w", i, err)
		}
	}
	return results, nil
}

func synthesizeSegment(ctx context.Context, logger *slog.Logger, job *Job, index int, segment plan.Segment, narrator Narrator, silence SilenceWriter, probe DurationProbe) (SegmentAudio, error) {
	dest := job.Path(fmt.Sprintf("segment-%03d.mp3", index))

	if narrator != nil && narrator.Enabled() && segment.Narration != "" {
		audio, err := narrator.Synthesize(ctx, segment.Narration)
		if err == nil {
			err = os.WriteFile(dest, audio, 0o644)
		}
		if err == nil {
			duration, probeErr := probe(ctx, dest)
			if probeErr == nil && duration > 0 {
				return SegmentAudio{Path: dest, Duration: duration}, nil
			}
			err = probeErr
			if err == nil {
				err = fmt.Errorf("probe reported zero duration")
			}
		}
		logger.Warn("narration failed, using silent fallback",
			slog.Int("segment", index),
			logging.Error(err))
	}

	seconds := SilentSeconds(segment.Narration)
	if err := silence.SynthesizeSilence(ctx, seconds, dest); err != nil {
		return SegmentAudio{}, services.Wrap(services.ErrExternalTool, "synthesize", "silent fallback", "failed to synthesize silent audio", err)
	}
	return SegmentAudio{Path: dest, Duration: float64(seconds), Silent: true}, nil
}
