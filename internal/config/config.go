package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory and bind address configuration.
type Paths struct {
	ScratchDir string `toml:"scratch_dir"`
	LogDir     string `toml:"log_dir"`
	APIBind    string `toml:"api_bind"`
	APIToken   string `toml:"api_token"`
}

// Planner contains connection settings for the language-model planning service.
type Planner struct {
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
	Model          string `toml:"model"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// TTS contains connection settings for the text-to-speech service. When the
// API key is empty every segment falls back to silent audio.
type TTS struct {
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
	Voice          string `toml:"voice"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Renderer contains settings for the scripted rendering engine subprocess.
type Renderer struct {
	Binary         string `toml:"binary"`
	QualityFlag    string `toml:"quality_flag"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	SceneName      string `toml:"scene_name"`
}

// Plan contains bounds the planner prompt advertises and normalization enforces.
type Plan struct {
	MinSegments     int     `toml:"min_segments"`
	MaxSegments     int     `toml:"max_segments"`
	MinWords        int     `toml:"min_words"`
	MaxWords        int     `toml:"max_words"`
	DefaultDuration float64 `toml:"default_duration"`
	MinDuration     float64 `toml:"min_duration"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for chalktalk.
//
// Configuration sections by subsystem:
//   - Paths: scratch/log directories, API bind address and bearer token
//   - Planner: language-model planning service connection
//   - TTS: text-to-speech service connection (optional; silent fallback)
//   - Renderer: rendering engine binary and time budget
//   - Plan: segment count/word bounds and duration floors
//   - Logging: log format and level
type Config struct {
	Paths        Paths    `toml:"paths"`
	Planner      Planner  `toml:"planner"`
	TTS          TTS      `toml:"tts"`
	Renderer     Renderer `toml:"renderer"`
	Plan         Plan     `toml:"plan"`
	Logging      Logging  `toml:"logging"`
	AuthDisabled bool     `toml:"auth_disabled"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/chalktalk/config.toml")
}

// SampleConfig returns the embedded sample configuration document.
func SampleConfig() string {
	return sampleConfig
}

// Load locates, parses, and validates a configuration file. The returned config
// has all path fields expanded and normalized, and secret fields overridden
// from the environment when set.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg.applyEnvOverrides()

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("CHALKTALK_PLANNER_API_KEY"); v != "" {
		c.Planner.APIKey = v
	}
	if v := os.Getenv("CHALKTALK_TTS_API_KEY"); v != "" {
		c.TTS.APIKey = v
	}
	if v := os.Getenv("CHALKTALK_API_TOKEN"); v != "" {
		c.Paths.APIToken = v
	}
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("chalktalk.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}
	return defaultPath, false, nil
}

// WriteSample writes the embedded sample config to the given path, refusing to
// overwrite an existing file.
func WriteSample(path string) (string, error) {
	expanded, err := expandPath(path)
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(expanded); err == nil {
		return "", fmt.Errorf("config already exists at %s", expanded)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("stat config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(expanded), 0o755); err != nil {
		return "", fmt.Errorf("create config directory: %w", err)
	}
	if err := os.WriteFile(expanded, []byte(sampleConfig), 0o644); err != nil {
		return "", fmt.Errorf("write config: %w", err)
	}
	return expanded, nil
}
