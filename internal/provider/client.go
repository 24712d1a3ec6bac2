package provider

import (
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/klauspost/compress/zstd"
)

const (
	anthropicDefaultURL = "https://api.anthropic.com/v1/messages"
	openaiDefaultURL    = "https://api.openai.com/v1/chat/completions"
	anthropicVersion    = "2023-06-01"

	// Providers occasionally return very large bodies on tool-heavy
	// conversations; anything past this is certainly not a usable response.
	maxResponseBytes = 8 * 1024 * 1024
)

// Endpoint carries config-file overrides for one provider. Environment
// variables still take precedence for both fields.
type Endpoint struct {
	URL    string
	APIKey string
}

// Options configures a Client.
type Options struct {
	Timeout    time.Duration
	Compat     bool
	Anthropic  Endpoint
	OpenAI     Endpoint
	HTTPClient *http.Client
	Logf       func(format string, args ...any)
}

// Client performs blocking LLM calls. Call never returns an error: every
// failure mode is normalized into a compact JSON error payload so the
// emulator always receives a valid response line.
type Client struct {
	httpClient *http.Client
	timeout    time.Duration
	compat     bool
	anthropic  Endpoint
	openai     Endpoint
	logf       func(format string, args ...any)
}

func NewClient(opts Options) *Client {
	c := &Client{
		httpClient: opts.HTTPClient,
		timeout:    opts.Timeout,
		compat:     opts.Compat,
		anthropic:  opts.Anthropic,
		openai:     opts.OpenAI,
		logf:       opts.Logf,
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: 0}
	}
	if c.timeout <= 0 {
		c.timeout = 50 * time.Second
	}
	if c.logf == nil {
		c.logf = func(string, ...any) {}
	}
	return c
}

// Call posts requestJSON to the given provider and returns the compacted
// response body, or a normalized error payload.
func (c *Client) Call(p Provider, requestJSON string) string {
	switch p {
	case OpenAI:
		return c.callOpenAI(requestJSON)
	default:
		return c.callAnthropic(requestJSON)
	}
}

func (c *Client) callAnthropic(requestJSON string) string {
	key := firstNonEmpty(os.Getenv("ANTHROPIC_API_KEY"), c.anthropic.APIKey)
	if key == "" {
		return ErrorPayload("ANTHROPIC_API_KEY is not set")
	}
	url := firstNonEmpty(c.anthropic.URL, anthropicDefaultURL)
	headers := map[string]string{
		"x-api-key":         key,
		"anthropic-version": anthropicVersion,
	}
	return c.post(url, headers, requestJSON)
}

func (c *Client) callOpenAI(requestJSON string) string {
	key := firstNonEmpty(os.Getenv("OPENAI_API_KEY"), c.openai.APIKey)
	if key == "" {
		return ErrorPayload("OPENAI_API_KEY is not set")
	}
	url := firstNonEmpty(os.Getenv("OPENAI_API_URL"), c.openai.URL, openaiDefaultURL)
	headers := map[string]string{
		"authorization": "Bearer " + key,
	}

	if c.compat && Classify(requestJSON) == Anthropic {
		if chatReq, model, ok := anthropicRequestToChat(requestJSON); ok {
			c.logf("compat: translated anthropic request to chat/completions model=%s", model)
			body := c.post(url, headers, chatReq)
			return chatResponseToAnthropic(body, model)
		}
	}
	return c.post(url, headers, requestJSON)
}

func (c *Client) post(url string, headers map[string]string, body string) string {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, strings.NewReader(body))
	if err != nil {
		return ErrorPayload(err.Error())
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept-Encoding", "gzip, zstd")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logf("upstream request failed: %v", err)
		return ErrorPayload(err.Error())
	}
	defer resp.Body.Close()

	data, err := decodeResponseBody(resp)
	if err != nil {
		c.logf("upstream body decode failed status=%d: %v", resp.StatusCode, err)
		return ErrorPayload(err.Error())
	}
	if resp.StatusCode >= 400 {
		c.logf("upstream status=%d body_bytes=%d", resp.StatusCode, len(data))
		if len(data) == 0 {
			return ErrorPayload(fmt.Sprintf("HTTP %d", resp.StatusCode))
		}
		// Provider error bodies already carry a usable error object; pass
		// them through compacted so the firmware can surface the message.
		return CompactJSONOrError(string(data))
	}
	return CompactJSONOrError(string(data))
}

func decodeResponseBody(resp *http.Response) ([]byte, error) {
	var reader io.Reader = resp.Body
	switch strings.ToLower(strings.TrimSpace(resp.Header.Get("Content-Encoding"))) {
	case "", "identity":
	case "gzip":
		zr, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("invalid gzip body")
		}
		defer zr.Close()
		reader = zr
	case "zstd":
		zr, err := zstd.NewReader(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("invalid zstd body")
		}
		defer zr.Close()
		reader = zr
	default:
		return nil, fmt.Errorf("unsupported content-encoding: %s", resp.Header.Get("Content-Encoding"))
	}
	return io.ReadAll(io.LimitReader(reader, maxResponseBytes))
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
