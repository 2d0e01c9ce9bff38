package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/wyilio/cursor-meter/internal/testenv"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Refresh.IntervalMinutes != 30 {
		t.Errorf("interval_minutes = %d, want 30", cfg.Refresh.IntervalMinutes)
	}
	if cfg.Refresh.DebounceSeconds != 2 {
		t.Errorf("debounce_seconds = %d, want 2", cfg.Refresh.DebounceSeconds)
	}
	if cfg.Refresh.ActivityDelaySeconds != 3 {
		t.Errorf("activity_delay_seconds = %d, want 3", cfg.Refresh.ActivityDelaySeconds)
	}
	if cfg.Cache.EventTTLMinutes != 5 {
		t.Errorf("event_ttl_minutes = %d, want 5", cfg.Cache.EventTTLMinutes)
	}
	if cfg.Fetch.Timeout != 30.0 {
		t.Errorf("timeout = %v, want 30.0", cfg.Fetch.Timeout)
	}
	if cfg.Fetch.BaseURL != "https://cursor.com" {
		t.Errorf("base_url = %q, want https://cursor.com", cfg.Fetch.BaseURL)
	}
}

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Refresh.IntervalMinutes != 30 {
		t.Errorf("interval_minutes = %d, want default 30", cfg.Refresh.IntervalMinutes)
	}
}

func TestLoad_ParsesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[refresh]
interval_minutes = 10
debounce_seconds = 1

[cache]
event_ttl_minutes = 2

[watch]
paths = ["/tmp/project"]
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Refresh.IntervalMinutes != 10 {
		t.Errorf("interval_minutes = %d, want 10", cfg.Refresh.IntervalMinutes)
	}
	if cfg.Refresh.DebounceSeconds != 1 {
		t.Errorf("debounce_seconds = %d, want 1", cfg.Refresh.DebounceSeconds)
	}
	if cfg.Cache.EventTTLMinutes != 2 {
		t.Errorf("event_ttl_minutes = %d, want 2", cfg.Cache.EventTTLMinutes)
	}
	if len(cfg.Watch.Paths) != 1 || cfg.Watch.Paths[0] != "/tmp/project" {
		t.Errorf("watch paths = %v, want [/tmp/project]", cfg.Watch.Paths)
	}
	// Unset sections keep defaults
	if cfg.Fetch.Timeout != 30.0 {
		t.Errorf("timeout = %v, want default 30.0", cfg.Fetch.Timeout)
	}
}

func TestLoad_MalformedFileReturnsErrorAndDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("not [valid toml"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err == nil {
		t.Error("expected parse error for malformed config")
	}
	if cfg.Refresh.IntervalMinutes != 30 {
		t.Errorf("interval_minutes = %d, want default 30 on parse error", cfg.Refresh.IntervalMinutes)
	}
}

func TestSaveAndLoad_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg := DefaultConfig()
	cfg.Refresh.IntervalMinutes = 15
	cfg.Watch.Paths = []string{"/a", "/b"}

	if err := Save(cfg, path); err != nil {
		t.Fatalf("save: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.Refresh.IntervalMinutes != 15 {
		t.Errorf("interval_minutes = %d, want 15", loaded.Refresh.IntervalMinutes)
	}
	if len(loaded.Watch.Paths) != 2 {
		t.Errorf("watch paths = %v, want 2 entries", loaded.Watch.Paths)
	}
}

func TestEnvOverrides(t *testing.T) {
	testenv.Apply(t.Setenv, t.TempDir())
	t.Setenv("CURSOR_METER_NO_COLOR", "1")
	t.Setenv("CURSOR_METER_BASE_URL", "http://localhost:9999")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cfg.Display.NoColor {
		t.Error("expected NoColor from CURSOR_METER_NO_COLOR")
	}
	if cfg.Fetch.BaseURL != "http://localhost:9999" {
		t.Errorf("base_url = %q, want env override", cfg.Fetch.BaseURL)
	}
}

func TestConfigDir_EnvOverride(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("CURSOR_METER_CONFIG_DIR", dir)

	if got := ConfigDir(); got != dir {
		t.Errorf("ConfigDir() = %q, want %q", got, dir)
	}
	if got := SessionCredentialFile(); got != filepath.Join(dir, "credentials", "session.json") {
		t.Errorf("SessionCredentialFile() = %q", got)
	}
}
