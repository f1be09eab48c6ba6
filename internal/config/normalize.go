package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizePlanner()
	c.normalizeTTS()
	c.normalizeRenderer()
	c.normalizePlan()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.ScratchDir) == "" {
		c.Paths.ScratchDir = defaultScratchDir
	}
	if c.Paths.ScratchDir, err = expandPath(c.Paths.ScratchDir); err != nil {
		return fmt.Errorf("paths.scratch_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	c.Paths.APIBind = strings.TrimSpace(c.Paths.APIBind)
	if c.Paths.APIBind == "" {
		c.Paths.APIBind = defaultAPIBind
	}
	c.Paths.APIToken = strings.TrimSpace(c.Paths.APIToken)
	return nil
}

func (c *Config) normalizePlanner() {
	c.Planner.APIKey = strings.TrimSpace(c.Planner.APIKey)
	c.Planner.BaseURL = strings.TrimSpace(c.Planner.BaseURL)
	if c.Planner.BaseURL == "" {
		c.Planner.BaseURL = defaultPlannerBaseURL
	}
	c.Planner.Model = strings.TrimSpace(c.Planner.Model)
	if c.Planner.Model == "" {
		c.Planner.Model = defaultPlannerModel
	}
	if c.Planner.TimeoutSeconds <= 0 {
		c.Planner.TimeoutSeconds = defaultPlannerTimeoutSeconds
	}
}

func (c *Config) normalizeTTS() {
	c.TTS.APIKey = strings.TrimSpace(c.TTS.APIKey)
	c.TTS.BaseURL = strings.TrimSpace(c.TTS.BaseURL)
	if c.TTS.BaseURL == "" {
		c.TTS.BaseURL = defaultTTSBaseURL
	}
	c.TTS.Voice = strings.TrimSpace(c.TTS.Voice)
	if c.TTS.Voice == "" {
		c.TTS.Voice = defaultTTSVoice
	}
	if c.TTS.TimeoutSeconds <= 0 {
		c.TTS.TimeoutSeconds = defaultTTSTimeoutSeconds
	}
}

func (c *Config) normalizeRenderer() {
	c.Renderer.Binary = strings.TrimSpace(c.Renderer.Binary)
	if c.Renderer.Binary == "" {
		c.Renderer.Binary = defaultRendererBinary
	}
	c.Renderer.QualityFlag = strings.TrimSpace(c.Renderer.QualityFlag)
	if c.Renderer.QualityFlag == "" {
		c.Renderer.QualityFlag = defaultRendererQualityFlag
	}
	if c.Renderer.TimeoutSeconds <= 0 {
		c.Renderer.TimeoutSeconds = defaultRendererTimeout
	}
	c.Renderer.SceneName = strings.TrimSpace(c.Renderer.SceneName)
	if c.Renderer.SceneName == "" {
		c.Renderer.SceneName = defaultSceneName
	}
}

func (c *Config) normalizePlan() {
	if c.Plan.MinSegments <= 0 {
		c.Plan.MinSegments = defaultMinSegments
	}
	if c.Plan.MaxSegments <= 0 {
		c.Plan.MaxSegments = defaultMaxSegments
	}
	if c.Plan.MinWords <= 0 {
		c.Plan.MinWords = defaultMinWords
	}
	if c.Plan.MaxWords <= 0 {
		c.Plan.MaxWords = defaultMaxWords
	}
	if c.Plan.DefaultDuration <= 0 {
		c.Plan.DefaultDuration = defaultSegmentDuration
	}
	if c.Plan.MinDuration <= 0 {
		c.Plan.MinDuration = defaultMinSegmentDuration
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", errors.New("path is empty")
	}
	if trimmed == "~" || strings.HasPrefix(trimmed, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if trimmed == "~" {
			trimmed = home
		} else {
			trimmed = filepath.Join(home, trimmed[2:])
		}
	}
	abs, err := filepath.Abs(trimmed)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path: %w", err)
	}
	return abs, nil
}
