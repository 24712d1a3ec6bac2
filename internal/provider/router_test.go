package provider

import "testing"

func TestClassifyAnthropicShape(t *testing.T) {
	request := `{
		"model": "claude-sonnet-4-5",
		"system": "You are helpful.",
		"messages": [{"role": "user", "content": "hi"}],
		"tools": [{"name": "gpio_write", "description": "write pin", "input_schema": {"type": "object"}}]
	}`
	if got := Classify(request); got != Anthropic {
		t.Fatalf("Classify mismatch, got %q want %q", got, Anthropic)
	}
}

func TestClassifyOpenAIShape(t *testing.T) {
	request := `{
		"model": "gpt-5.2",
		"messages": [
			{"role": "system", "content": "You are helpful."},
			{"role": "user", "content": "hi"}
		],
		"tools": [{"type": "function", "function": {"name": "gpio_write", "parameters": {"type": "object"}}}]
	}`
	if got := Classify(request); got != OpenAI {
		t.Fatalf("Classify mismatch, got %q want %q", got, OpenAI)
	}
}

func TestClassifyFunctionKeyWithoutType(t *testing.T) {
	request := `{"tools":[{"function":{"name":"sum"}}]}`
	if got := Classify(request); got != OpenAI {
		t.Fatalf("Classify mismatch, got %q want %q", got, OpenAI)
	}
}

func TestClassifySystemFieldWinsWhenToolsUndecided(t *testing.T) {
	request := `{"system":"x","tools":[{"name":"bare"}]}`
	if got := Classify(request); got != Anthropic {
		t.Fatalf("Classify mismatch, got %q want %q", got, Anthropic)
	}
}

func TestClassifySystemRoleMessage(t *testing.T) {
	request := `{"messages":[{"role":"system","content":"x"},{"role":"user","content":"hi"}]}`
	if got := Classify(request); got != OpenAI {
		t.Fatalf("Classify mismatch, got %q want %q", got, OpenAI)
	}
}

func TestClassifyInvalidJSONDefaultsToOpenAI(t *testing.T) {
	if got := Classify("not-json"); got != OpenAI {
		t.Fatalf("Classify mismatch, got %q want %q", got, OpenAI)
	}
	if got := Classify(`["array","not","object"]`); got != OpenAI {
		t.Fatalf("Classify mismatch for array, got %q", got)
	}
}

func TestClassifyAmbiguousShapeDefaultsToOpenAI(t *testing.T) {
	request := `{"model":"any-model","messages":[{"role":"user","content":"hi"}]}`
	if got := Classify(request); got != OpenAI {
		t.Fatalf("Classify mismatch, got %q want %q", got, OpenAI)
	}
}

func TestResolveOverrideWins(t *testing.T) {
	request := `{"messages":[{"role":"system","content":"x"}],"tools":[{"type":"function","function":{"name":"test"}}]}`
	if got := Resolve(Auto, request); got != OpenAI {
		t.Fatalf("auto resolve mismatch, got %q", got)
	}
	if got := Resolve(Anthropic, request); got != Anthropic {
		t.Fatalf("explicit resolve mismatch, got %q", got)
	}
}
