package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"vidlift/internal/config"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, _, exists, err := config.Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if exists {
		t.Fatal("expected missing config to be reported as absent")
	}
	if cfg.Platform.DefaultCategoryID != "22" {
		t.Fatalf("expected default category 22, got %q", cfg.Platform.DefaultCategoryID)
	}
	if cfg.Platform.DefaultPrivacy != "public" {
		t.Fatalf("expected default privacy public, got %q", cfg.Platform.DefaultPrivacy)
	}
	if cfg.Encoder.FFmpegBinary != "ffmpeg" {
		t.Fatalf("expected default ffmpeg binary, got %q", cfg.Encoder.FFmpegBinary)
	}
	if cfg.Workflow.MaxActiveJobs < 1 {
		t.Fatalf("expected positive max_active_jobs, got %d", cfg.Workflow.MaxActiveJobs)
	}
}

func TestLoadParsesAndNormalizes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := strings.Join([]string{
		"[paths]",
		`staging_dir = "` + filepath.Join(dir, "staging") + `"`,
		`data_dir = "` + dir + `"`,
		`log_dir = "` + filepath.Join(dir, "logs") + `"`,
		`socket_path = "` + filepath.Join(dir, "vidliftd.sock") + `"`,
		"",
		"[platform]",
		`api_base_url = "https://uploads.example.test/v3/"`,
		`default_privacy = "Unlisted"`,
		"",
		"[logging]",
		`format = "JSON"`,
	}, "\n")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !exists {
		t.Fatal("expected config file to be found")
	}
	if resolved != path {
		t.Fatalf("expected resolved path %q, got %q", path, resolved)
	}
	if cfg.Platform.APIBaseURL != "https://uploads.example.test/v3" {
		t.Fatalf("expected trailing slash trimmed, got %q", cfg.Platform.APIBaseURL)
	}
	if cfg.Platform.DefaultPrivacy != "unlisted" {
		t.Fatalf("expected privacy lowercased, got %q", cfg.Platform.DefaultPrivacy)
	}
	if cfg.Logging.Format != "json" {
		t.Fatalf("expected json log format, got %q", cfg.Logging.Format)
	}
}

func TestLoadRejectsUnknownPrivacy(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := "[platform]\ndefault_privacy = \"everyone\"\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if _, _, _, err := config.Load(path); err == nil {
		t.Fatal("expected validation error for unknown privacy status")
	}
}

func TestSocketPathEnvOverride(t *testing.T) {
	override := filepath.Join(t.TempDir(), "custom.sock")
	t.Setenv("VIDLIFT_SOCKET", override)

	cfg, _, _, err := config.Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Paths.SocketPath != override {
		t.Fatalf("expected socket override %q, got %q", override, cfg.Paths.SocketPath)
	}
}

func TestCreateSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(data), "[platform]") {
		t.Fatal("expected sample config to contain a [platform] section")
	}
}
