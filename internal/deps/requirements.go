package deps

import "chalktalk/internal/config"

// PipelineRequirements returns the external tools one video generation needs,
// in the order they are first used.
func PipelineRequirements(cfg *config.Config) []Requirement {
	rendererBinary := "manim"
	if cfg != nil {
		rendererBinary = cfg.Renderer.Binary
	}
	return []Requirement{
		{
			Name:        "Renderer",
			Command:     rendererBinary,
			Description: "Scripted rendering engine that animates each scene",
			InstallHint: "pip install manim",
		},
		{
			Name:        "FFmpeg",
			Command:     "ffmpeg",
			Description: "Silent-audio synthesis, concatenation, and muxing",
			InstallHint: "apt install ffmpeg (or brew install ffmpeg)",
		},
		{
			Name:        "FFprobe",
			Command:     "ffprobe",
			Description: "Measures synthesized narration duration",
			InstallHint: "ships with ffmpeg",
		},
	}
}
