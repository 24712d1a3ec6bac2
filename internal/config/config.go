// Package config persists bridge settings at ~/.zclawbridge/config.json.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const currentVersion = 1

const defaultTimeoutSeconds = 50

// ProviderSettings overrides one provider's endpoint and credential.
// Environment variables still take precedence over both fields.
type ProviderSettings struct {
	BaseURL string `json:"base_url,omitempty"`
	APIKey  string `json:"api_key,omitempty"`
}

type RootConfig struct {
	Version        int                          `json:"version"`
	Provider       string                       `json:"provider"`
	TimeoutSeconds int                          `json:"timeout_seconds"`
	BridgeLogs     bool                         `json:"bridge_logs,omitempty"`
	Compat         bool                         `json:"compat,omitempty"`
	Providers      map[string]*ProviderSettings `json:"providers"`
}

func defaultConfig() *RootConfig {
	return &RootConfig{
		Version:        currentVersion,
		Provider:       "auto",
		TimeoutSeconds: defaultTimeoutSeconds,
		Providers: map[string]*ProviderSettings{
			"anthropic": {},
			"openai":    {},
		},
	}
}

func configDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".zclawbridge"), nil
}

func ConfigPath() (string, error) {
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

func Load() (*RootConfig, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg := defaultConfig()
			if migrated, merr := tryMigrateFromLegacyBridge(cfg); merr == nil && migrated {
				_ = Save(cfg)
			}
			return cfg, nil
		}
		return nil, err
	}

	var cfg RootConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	normalize(&cfg)
	return &cfg, nil
}

func normalize(cfg *RootConfig) {
	if cfg.Version == 0 {
		cfg.Version = currentVersion
	}
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "anthropic":
		cfg.Provider = "anthropic"
	case "openai":
		cfg.Provider = "openai"
	default:
		cfg.Provider = "auto"
	}
	if cfg.TimeoutSeconds <= 0 {
		cfg.TimeoutSeconds = defaultTimeoutSeconds
	}
	if cfg.Providers == nil {
		cfg.Providers = map[string]*ProviderSettings{}
	}
	for _, name := range []string{"anthropic", "openai"} {
		if cfg.Providers[name] == nil {
			cfg.Providers[name] = &ProviderSettings{}
		}
	}
}

func Save(cfg *RootConfig) error {
	normalize(cfg)
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return writeWithBackup(path, data)
}

// writeWithBackup keeps the previous file as config.json.bak so a bad edit
// is recoverable, and writes through a temp file plus rename.
func writeWithBackup(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	if _, err := os.Stat(path); err == nil {
		_ = os.Rename(path, path+".bak")
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// ProviderByName never returns nil.
func (c *RootConfig) ProviderByName(name string) *ProviderSettings {
	key := strings.ToLower(name)
	if c.Providers == nil {
		c.Providers = map[string]*ProviderSettings{}
	}
	if c.Providers[key] == nil {
		c.Providers[key] = &ProviderSettings{}
	}
	return c.Providers[key]
}

// Timeout returns the configured remote-call timeout.
func (c *RootConfig) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return defaultTimeoutSeconds * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}
