// Package ffprobe shells out to ffprobe to measure media durations; the
// probed duration of synthesized narration is authoritative for pacing.
package ffprobe
