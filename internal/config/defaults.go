package config

const (
	defaultScratchDir            = "~/.local/share/chalktalk/scratch"
	defaultLogDir                = "~/.local/share/chalktalk/logs"
	defaultAPIBind               = "127.0.0.1:7493"
	defaultPlannerBaseURL        = "https://openrouter.ai/api/v1/chat/completions"
	defaultPlannerModel          = "google/gemini-3-flash-preview"
	defaultPlannerTimeoutSeconds = 60
	defaultTTSBaseURL            = "https://api.deepgram.com/v1/speak"
	defaultTTSVoice              = "aura-stella-en"
	defaultTTSTimeoutSeconds     = 30
	defaultRendererBinary        = "manim"
	defaultRendererQualityFlag   = "-ql"
	defaultRendererTimeout       = 180
	defaultSceneName             = "Lesson"
	defaultMinSegments           = 3
	defaultMaxSegments           = 7
	defaultMinWords              = 12
	defaultMaxWords              = 40
	defaultSegmentDuration       = 6.0
	defaultMinSegmentDuration    = 4.0
	defaultLogFormat             = "console"
	defaultLogLevel              = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			ScratchDir: defaultScratchDir,
			LogDir:     defaultLogDir,
			APIBind:    defaultAPIBind,
		},
		Planner: Planner{
			BaseURL:        defaultPlannerBaseURL,
			Model:          defaultPlannerModel,
			TimeoutSeconds: defaultPlannerTimeoutSeconds,
		},
		TTS: TTS{
			BaseURL:        defaultTTSBaseURL,
			Voice:          defaultTTSVoice,
			TimeoutSeconds: defaultTTSTimeoutSeconds,
		},
		Renderer: Renderer{
			Binary:         defaultRendererBinary,
			QualityFlag:    defaultRendererQualityFlag,
			TimeoutSeconds: defaultRendererTimeout,
			SceneName:      defaultSceneName,
		},
		Plan: Plan{
			MinSegments:     defaultMinSegments,
			MaxSegments:     defaultMaxSegments,
			MinWords:        defaultMinWords,
			MaxWords:        defaultMaxWords,
			DefaultDuration: defaultSegmentDuration,
			MinDuration:     defaultMinSegmentDuration,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
