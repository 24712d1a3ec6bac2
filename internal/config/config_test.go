package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg := defaultConfig()
	cfg.Provider = "anthropic"
	cfg.TimeoutSeconds = 90
	cfg.BridgeLogs = true
	cfg.ProviderByName("openai").BaseURL = "https://example.com/v1/chat/completions"
	cfg.ProviderByName("openai").APIKey = "token"

	if err := Save(cfg); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if got.Provider != "anthropic" {
		t.Fatalf("provider mismatch, got %q", got.Provider)
	}
	if got.TimeoutSeconds != 90 {
		t.Fatalf("timeout mismatch, got %d", got.TimeoutSeconds)
	}
	if !got.BridgeLogs {
		t.Fatalf("bridge_logs should persist")
	}
	oa := got.ProviderByName("openai")
	if oa.BaseURL != "https://example.com/v1/chat/completions" || oa.APIKey != "token" {
		t.Fatalf("openai settings not persisted correctly: %#v", oa)
	}
}

func TestLoadCreatesDefaultConfigWhenMissing(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	got, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got.Provider != "auto" {
		t.Fatalf("provider mismatch, got %q", got.Provider)
	}
	if got.TimeoutSeconds != defaultTimeoutSeconds {
		t.Fatalf("timeout mismatch, got %d", got.TimeoutSeconds)
	}
	if got.Providers["anthropic"] == nil || got.Providers["openai"] == nil {
		t.Fatalf("provider entries should exist: %#v", got.Providers)
	}

	path, err := ConfigPath()
	if err != nil {
		t.Fatalf("ConfigPath failed: %v", err)
	}
	wantPrefix := filepath.Join(os.Getenv("HOME"), ".zclawbridge")
	if filepath.Dir(path) != wantPrefix {
		t.Fatalf("config dir mismatch, got %q want %q", filepath.Dir(path), wantPrefix)
	}
	if filepath.Base(path) != "config.json" {
		t.Fatalf("unexpected config path: %q", path)
	}
}

func TestNormalizeRepairsBadValues(t *testing.T) {
	cfg := &RootConfig{Provider: "GEMINI", TimeoutSeconds: -3}
	normalize(cfg)
	if cfg.Provider != "auto" {
		t.Fatalf("unknown provider should fall back to auto, got %q", cfg.Provider)
	}
	if cfg.TimeoutSeconds != defaultTimeoutSeconds {
		t.Fatalf("non-positive timeout should reset, got %d", cfg.TimeoutSeconds)
	}
	if cfg.Providers["anthropic"] == nil || cfg.Providers["openai"] == nil {
		t.Fatalf("provider entries should be filled in")
	}
}

func TestSaveKeepsBackupOfPreviousConfig(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	first := defaultConfig()
	first.Provider = "openai"
	if err := Save(first); err != nil {
		t.Fatalf("first Save failed: %v", err)
	}
	second := defaultConfig()
	second.Provider = "anthropic"
	if err := Save(second); err != nil {
		t.Fatalf("second Save failed: %v", err)
	}

	path, err := ConfigPath()
	if err != nil {
		t.Fatalf("ConfigPath failed: %v", err)
	}
	data, err := os.ReadFile(path + ".bak")
	if err != nil {
		t.Fatalf("backup should exist: %v", err)
	}
	var backup RootConfig
	if err := json.Unmarshal(data, &backup); err != nil {
		t.Fatalf("backup should be valid JSON: %v", err)
	}
	if backup.Provider != "openai" {
		t.Fatalf("backup should hold the previous config, got %q", backup.Provider)
	}
}

func TestMigrateFromLegacyBridgeConfig(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	legacy := filepath.Join(home, ".zclaw")
	if err := os.MkdirAll(legacy, 0o755); err != nil {
		t.Fatalf("mkdir failed: %v", err)
	}
	body := `{"provider":"openai","api_timeout":120,"openai_api_url":"http://localhost:11434/v1/chat/completions"}`
	if err := os.WriteFile(filepath.Join(legacy, "bridge.json"), []byte(body), 0o644); err != nil {
		t.Fatalf("write legacy config failed: %v", err)
	}

	got, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got.Provider != "openai" {
		t.Fatalf("provider not migrated, got %q", got.Provider)
	}
	if got.TimeoutSeconds != 120 {
		t.Fatalf("timeout not migrated, got %d", got.TimeoutSeconds)
	}
	if got.ProviderByName("openai").BaseURL != "http://localhost:11434/v1/chat/completions" {
		t.Fatalf("endpoint not migrated: %q", got.ProviderByName("openai").BaseURL)
	}

	path, err := ConfigPath()
	if err != nil {
		t.Fatalf("ConfigPath failed: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("migrated config should be saved: %v", err)
	}
}

func TestMigrateIgnoresMalformedLegacyFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	legacy := filepath.Join(home, ".zclaw")
	if err := os.MkdirAll(legacy, 0o755); err != nil {
		t.Fatalf("mkdir failed: %v", err)
	}
	if err := os.WriteFile(filepath.Join(legacy, "bridge.json"), []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write legacy config failed: %v", err)
	}

	got, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got.Provider != "auto" {
		t.Fatalf("malformed legacy file should leave defaults, got %q", got.Provider)
	}
}
