package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
)

// legacyBridge is the shape of the old ~/.zclaw/bridge.json written by the
// shell-script era of the bridge.
type legacyBridge struct {
	Provider     string `json:"provider"`
	APITimeout   int    `json:"api_timeout"`
	OpenAIAPIURL string `json:"openai_api_url"`
}

func tryMigrateFromLegacyBridge(cfg *RootConfig) (bool, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return false, err
	}
	path := filepath.Join(home, ".zclaw", "bridge.json")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}

	var old legacyBridge
	if err := json.Unmarshal(data, &old); err != nil {
		return false, nil
	}

	changed := false
	switch strings.ToLower(strings.TrimSpace(old.Provider)) {
	case "anthropic":
		cfg.Provider = "anthropic"
		changed = true
	case "openai":
		cfg.Provider = "openai"
		changed = true
	}
	if old.APITimeout > 0 {
		cfg.TimeoutSeconds = old.APITimeout
		changed = true
	}
	if url := strings.TrimSpace(old.OpenAIAPIURL); url != "" {
		cfg.ProviderByName("openai").BaseURL = url
		changed = true
	}
	return changed, nil
}
