package provider

import "encoding/json"

// Classify inspects a raw request body and guesses which API shape it is.
// The checks run in a fixed order: tool shape first, then the top-level
// system field, then a system-role message. Bodies that are not a JSON
// object fall back to OpenAI.
func Classify(requestJSON string) Provider {
	var payload map[string]any
	if err := json.Unmarshal([]byte(requestJSON), &payload); err != nil {
		return OpenAI
	}

	if tools, ok := payload["tools"].([]any); ok && len(tools) > 0 {
		if first, ok := tools[0].(map[string]any); ok {
			if _, ok := first["input_schema"]; ok {
				return Anthropic
			}
			if stringValue(first["type"]) == "function" {
				return OpenAI
			}
			if _, ok := first["function"]; ok {
				return OpenAI
			}
		}
	}

	if _, ok := payload["system"]; ok {
		return Anthropic
	}

	if messages, ok := payload["messages"].([]any); ok {
		for _, raw := range messages {
			if msg, ok := raw.(map[string]any); ok && stringValue(msg["role"]) == "system" {
				return OpenAI
			}
		}
	}

	return OpenAI
}

// Resolve applies an explicit provider override; Auto defers to Classify.
func Resolve(mode Provider, requestJSON string) Provider {
	if mode == Auto {
		return Classify(requestJSON)
	}
	return mode
}
