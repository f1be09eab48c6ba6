package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	t.Setenv("CHALKTALK_PLANNER_API_KEY", "env-key")
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg, resolved, exists, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if exists {
		t.Fatal("expected missing config file")
	}
	if resolved != path {
		t.Fatalf("unexpected resolved path: %s", resolved)
	}
	if cfg.Planner.APIKey != "env-key" {
		t.Fatalf("env override not applied: %q", cfg.Planner.APIKey)
	}
	if cfg.Renderer.TimeoutSeconds != defaultRendererTimeout {
		t.Fatalf("unexpected renderer timeout: %d", cfg.Renderer.TimeoutSeconds)
	}
	if cfg.Plan.MinDuration != defaultMinSegmentDuration {
		t.Fatalf("unexpected min duration: %f", cfg.Plan.MinDuration)
	}
}

func TestLoadParsesAndNormalizes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	body := `
[paths]
scratch_dir = "` + dir + `/scratch"
api_bind = " 127.0.0.1:9000 "

[planner]
api_key = "k"
model = "  test/model  "

[renderer]
timeout_seconds = 45

[logging]
format = "JSON"
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, _, exists, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !exists {
		t.Fatal("expected config file to be found")
	}
	if cfg.Paths.APIBind != "127.0.0.1:9000" {
		t.Fatalf("api bind not trimmed: %q", cfg.Paths.APIBind)
	}
	if cfg.Planner.Model != "test/model" {
		t.Fatalf("model not trimmed: %q", cfg.Planner.Model)
	}
	if cfg.Renderer.TimeoutSeconds != 45 {
		t.Fatalf("renderer timeout: %d", cfg.Renderer.TimeoutSeconds)
	}
	if cfg.Logging.Format != "json" {
		t.Fatalf("logging format not lowered: %q", cfg.Logging.Format)
	}
	if !filepath.IsAbs(cfg.Paths.ScratchDir) {
		t.Fatalf("scratch dir not absolute: %s", cfg.Paths.ScratchDir)
	}
}

func TestLoadRequiresPlannerKey(t *testing.T) {
	t.Setenv("CHALKTALK_PLANNER_API_KEY", "")
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[planner]\napi_key = \"\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, _, _, err := Load(path)
	if err == nil {
		t.Fatal("expected error for missing planner key")
	}
	if !strings.Contains(err.Error(), "planner.api_key") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateRejectsBadBounds(t *testing.T) {
	cfg := Default()
	cfg.Planner.APIKey = "k"
	cfg.Plan.MinSegments = 9
	cfg.Plan.MaxSegments = 3
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected segment bound validation error")
	}

	cfg = Default()
	cfg.Planner.APIKey = "k"
	cfg.Logging.Format = "xml"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected logging format validation error")
	}
}

func TestWriteSampleRefusesOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	written, err := WriteSample(path)
	if err != nil {
		t.Fatalf("WriteSample: %v", err)
	}
	if written != path {
		t.Fatalf("unexpected path: %s", written)
	}
	if _, err := WriteSample(path); err == nil {
		t.Fatal("expected overwrite refusal")
	}
}

func TestExpandPathHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	got, err := expandPath("~/x")
	if err != nil {
		t.Fatalf("expandPath: %v", err)
	}
	if got != filepath.Join(home, "x") {
		t.Fatalf("unexpected expansion: %s", got)
	}
}
