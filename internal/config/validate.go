package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePlanner(); err != nil {
		return err
	}
	if err := c.validateRenderer(); err != nil {
		return err
	}
	if err := c.validatePlan(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validatePlanner() error {
	if c.Planner.APIKey == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/chalktalk/config.toml"
		}
		return fmt.Errorf("planner.api_key is required. Set CHALKTALK_PLANNER_API_KEY env var or edit %s (create with 'chalktalk config init')", defaultPath)
	}
	if c.Planner.BaseURL == "" {
		return errors.New("planner.base_url must be set")
	}
	return nil
}

func (c *Config) validateRenderer() error {
	if c.Renderer.Binary == "" {
		return errors.New("renderer.binary must be set")
	}
	if c.Renderer.TimeoutSeconds <= 0 {
		return errors.New("renderer.timeout_seconds must be positive")
	}
	return nil
}

func (c *Config) validatePlan() error {
	if c.Plan.MinSegments > c.Plan.MaxSegments {
		return errors.New("plan.min_segments must not exceed plan.max_segments")
	}
	if c.Plan.MinWords > c.Plan.MaxWords {
		return errors.New("plan.min_words must not exceed plan.max_words")
	}
	if c.Plan.MinDuration > c.Plan.DefaultDuration {
		return errors.New("plan.min_duration must not exceed plan.default_duration")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	return nil
}
