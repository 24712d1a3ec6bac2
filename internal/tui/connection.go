package tui

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
)

type TestResult struct {
	Success bool
	Message string
	Latency time.Duration
}

const (
	anthropicProbeURL = "https://api.anthropic.com/v1/messages"
	openaiProbeURL    = "https://api.openai.com/v1/chat/completions"
)

// CheckProvider sends a minimal one-token request to the named provider and
// reports whether the endpoint answered. baseURL and apiKey come from the
// config file; the environment overrides both, matching the bridge itself.
func CheckProvider(name, baseURL, apiKey string, timeout time.Duration) TestResult {
	name = strings.ToLower(strings.TrimSpace(name))

	var endpoint, keyEnv, model string
	switch name {
	case "anthropic":
		endpoint = anthropicProbeURL
		keyEnv = "ANTHROPIC_API_KEY"
		model = "claude-3-5-haiku-latest"
	case "openai":
		endpoint = openaiProbeURL
		keyEnv = "OPENAI_API_KEY"
		model = "gpt-4o-mini"
		if u := strings.TrimSpace(os.Getenv("OPENAI_API_URL")); u != "" {
			baseURL = u
		}
	default:
		return TestResult{Success: false, Message: "Unknown provider: " + name}
	}
	if u := strings.TrimSpace(baseURL); u != "" {
		if !strings.HasPrefix(u, "http://") && !strings.HasPrefix(u, "https://") {
			u = "https://" + u
		}
		endpoint = u
	}

	key := strings.TrimSpace(os.Getenv(keyEnv))
	if key == "" {
		key = strings.TrimSpace(apiKey)
	}
	if key == "" {
		return TestResult{Success: false, Message: keyEnv + " is not set"}
	}

	reqBody := map[string]any{
		"model":      model,
		"max_tokens": 1,
		"messages": []map[string]string{
			{"role": "user", "content": "ping"},
		},
	}
	if name == "openai" {
		reqBody["stream"] = false
	}
	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return TestResult{Success: false, Message: "Failed to build request: " + err.Error()}
	}

	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, "POST", endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return TestResult{Success: false, Message: "Failed to create request: " + err.Error()}
	}
	req.Header.Set("Content-Type", "application/json")
	if name == "anthropic" {
		req.Header.Set("x-api-key", key)
		req.Header.Set("anthropic-version", "2023-06-01")
	} else {
		req.Header.Set("Authorization", "Bearer "+key)
	}

	client := &http.Client{}
	start := time.Now()
	resp, err := client.Do(req)
	latency := time.Since(start)

	if err != nil {
		if urlErr, ok := err.(*url.Error); ok && urlErr.Timeout() {
			return TestResult{Success: false, Message: fmt.Sprintf("Connection timeout (%s)", timeout), Latency: latency}
		}
		return TestResult{Success: false, Message: "Connection failed: " + err.Error(), Latency: latency}
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return TestResult{
			Success: true,
			Message: fmt.Sprintf("OK (model: %s)", model),
			Latency: latency,
		}
	}

	var errResp struct {
		Error struct {
			Message string `json:"message"`
			Type    string `json:"type"`
		} `json:"error"`
	}
	if json.Unmarshal(respBody, &errResp) == nil && errResp.Error.Message != "" {
		msg := errResp.Error.Message
		if errResp.Error.Type != "" {
			msg = fmt.Sprintf("[%s] %s", errResp.Error.Type, msg)
		}
		return TestResult{Success: false, Message: msg, Latency: latency}
	}

	return TestResult{
		Success: false,
		Message: fmt.Sprintf("HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody))),
		Latency: latency,
	}
}
