// Package provider performs host-side LLM calls on behalf of the emulator
// and decides which upstream API a raw request body belongs to.
package provider

// Provider identifies an upstream LLM API.
type Provider string

const (
	Auto      Provider = "auto"
	Anthropic Provider = "anthropic"
	OpenAI    Provider = "openai"
)

// Valid reports whether p is a value the CLI accepts.
func Valid(p Provider) bool {
	switch p {
	case Auto, Anthropic, OpenAI:
		return true
	}
	return false
}

// CredentialEnv returns the environment variable holding the provider's
// API key.
func CredentialEnv(p Provider) string {
	if p == Anthropic {
		return "ANTHROPIC_API_KEY"
	}
	return "OPENAI_API_KEY"
}

func stringValue(v any) string {
	s, _ := v.(string)
	return s
}

func mapValue(v any) map[string]any {
	m, _ := v.(map[string]any)
	if m == nil {
		return map[string]any{}
	}
	return m
}

func intFromAny(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case float64:
		return int(n)
	default:
		return 0
	}
}

func intValue(v any) (int, bool) {
	switch n := v.(type) {
	case float64:
		return int(n), true
	case int:
		return n, true
	default:
		return 0, false
	}
}
