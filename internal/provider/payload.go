package provider

import (
	"bytes"
	"encoding/json"
	"strings"
)

// ErrorPayload builds the compact error body the emulator receives for any
// host-side failure. The firmware keys off the "Host bridge error:" prefix.
func ErrorPayload(message string) string {
	return compactValue(map[string]any{
		"error": map[string]any{
			"message": "Host bridge error: " + message,
		},
	})
}

// CompactJSONOrError strips insignificant whitespace from raw. A body
// that does not parse is replaced by a normalized error payload so the
// emulator always sees valid JSON on the response line. json.Compact
// keeps the provider's own key order and escaping, so an already-compact
// body passes through byte for byte.
func CompactJSONOrError(raw string) string {
	var buf bytes.Buffer
	if err := json.Compact(&buf, []byte(raw)); err != nil {
		return ErrorPayload("Provider returned non-JSON response")
	}
	return buf.String()
}

func compactValue(v any) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return `{"error":{"message":"Host bridge error: response serialization failed"}}`
	}
	return strings.TrimSuffix(buf.String(), "\n")
}
