package provider

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Compat translation for --compat mode: the zclaw firmware speaks the
// Anthropic messages shape, but an OpenAI-compatible gateway only accepts
// chat/completions. These functions map a request one way and the
// non-streaming response back.

func anthropicRequestToChat(requestJSON string) (chatJSON, model string, ok bool) {
	var req map[string]any
	if err := json.Unmarshal([]byte(requestJSON), &req); err != nil {
		return "", "", false
	}

	model = stringValue(req["model"])
	if model == "" {
		model = "unknown"
	}
	out := map[string]any{
		"model":    model,
		"messages": chatMessagesFromAnthropic(req),
		"stream":   false,
	}
	if max, valid := intValue(req["max_tokens"]); valid && max > 0 {
		out["max_tokens"] = max
	}
	if v, present := req["temperature"]; present {
		out["temperature"] = v
	}
	if v, present := req["top_p"]; present {
		out["top_p"] = v
	}
	if v, present := req["stop_sequences"]; present {
		out["stop"] = v
	}
	if tools := chatToolsFromAnthropic(req["tools"]); len(tools) > 0 {
		out["tools"] = tools
	}

	data, err := json.Marshal(out)
	if err != nil {
		return "", "", false
	}
	return string(data), model, true
}

func chatMessagesFromAnthropic(req map[string]any) []map[string]any {
	out := make([]map[string]any, 0, 8)
	if sys := anthropicSystemText(req["system"]); sys != "" {
		out = append(out, map[string]any{"role": "system", "content": sys})
	}
	items, _ := req["messages"].([]any)
	for _, raw := range items {
		msg, isMap := raw.(map[string]any)
		if !isMap {
			continue
		}
		role := stringValue(msg["role"])
		if role == "" {
			role = "user"
		}
		text, toolCalls, toolResults := splitAnthropicContent(msg["content"])
		if role == "assistant" {
			assistant := map[string]any{"role": "assistant", "content": text}
			if len(toolCalls) > 0 {
				assistant["tool_calls"] = toolCalls
			}
			out = append(out, assistant)
			continue
		}
		if text != "" {
			out = append(out, map[string]any{"role": role, "content": text})
		}
		out = append(out, toolResults...)
	}
	if len(out) == 0 {
		return []map[string]any{{"role": "user", "content": ""}}
	}
	return out
}

func anthropicSystemText(raw any) string {
	switch v := raw.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case []any:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			m, isMap := item.(map[string]any)
			if !isMap || stringValue(m["type"]) != "text" {
				continue
			}
			if t := stringValue(m["text"]); t != "" {
				parts = append(parts, t)
			}
		}
		return strings.Join(parts, "\n")
	default:
		return ""
	}
}

func splitAnthropicContent(raw any) (text string, toolCalls, toolResults []map[string]any) {
	switch v := raw.(type) {
	case string:
		return v, nil, nil
	case []any:
		textParts := make([]string, 0, 4)
		for idx, item := range v {
			m, isMap := item.(map[string]any)
			if !isMap {
				continue
			}
			switch stringValue(m["type"]) {
			case "text":
				if t := stringValue(m["text"]); t != "" {
					textParts = append(textParts, t)
				}
			case "tool_use":
				name := stringValue(m["name"])
				if name == "" {
					continue
				}
				id := stringValue(m["id"])
				if id == "" {
					id = fmt.Sprintf("call_%d_%d", time.Now().UnixNano(), idx)
				}
				args := "{}"
				if data, err := json.Marshal(m["input"]); err == nil && len(data) > 0 {
					args = string(data)
				}
				toolCalls = append(toolCalls, map[string]any{
					"id":   id,
					"type": "function",
					"function": map[string]any{
						"name":      name,
						"arguments": args,
					},
				})
			case "tool_result":
				callID := stringValue(m["tool_use_id"])
				if callID == "" {
					continue
				}
				content := textFromContent(m["content"])
				if content == "" {
					content = "{}"
				}
				toolResults = append(toolResults, map[string]any{
					"role":         "tool",
					"tool_call_id": callID,
					"content":      content,
				})
			}
		}
		return strings.Join(textParts, "\n"), toolCalls, toolResults
	}
	return "", nil, nil
}

func textFromContent(raw any) string {
	switch c := raw.(type) {
	case nil:
		return ""
	case string:
		return c
	case []any:
		parts := make([]string, 0, len(c))
		for _, item := range c {
			m, isMap := item.(map[string]any)
			if !isMap {
				continue
			}
			if stringValue(m["type"]) == "text" {
				if t := stringValue(m["text"]); t != "" {
					parts = append(parts, t)
				}
			}
		}
		return strings.Join(parts, "\n")
	default:
		if data, err := json.Marshal(c); err == nil {
			return string(data)
		}
		return fmt.Sprint(c)
	}
}

func chatToolsFromAnthropic(raw any) []map[string]any {
	items, _ := raw.([]any)
	out := make([]map[string]any, 0, len(items))
	for _, item := range items {
		m, isMap := item.(map[string]any)
		if !isMap {
			continue
		}
		name := stringValue(m["name"])
		if name == "" {
			continue
		}
		fn := map[string]any{"name": name}
		if desc := stringValue(m["description"]); desc != "" {
			fn["description"] = desc
		}
		if schema, present := m["input_schema"]; present {
			fn["parameters"] = schema
		}
		out = append(out, map[string]any{"type": "function", "function": fn})
	}
	return out
}

// chatResponseToAnthropic rebuilds an Anthropic message object from a
// compacted chat/completions response. Bodies without a choices array
// (error payloads included) pass through unchanged.
func chatResponseToAnthropic(compactBody, requestedModel string) string {
	var chatResp map[string]any
	if err := json.Unmarshal([]byte(compactBody), &chatResp); err != nil {
		return compactBody
	}
	if _, present := chatResp["choices"]; !present {
		return compactBody
	}

	id := stringValue(chatResp["id"])
	if id == "" {
		id = fmt.Sprintf("msg_%d", time.Now().UnixNano())
	}
	model := stringValue(chatResp["model"])
	if model == "" {
		model = requestedModel
	}

	text := chatResponseText(chatResp)
	toolCalls := chatResponseToolCalls(chatResp)
	content := make([]map[string]any, 0, 1+len(toolCalls))
	if text != "" {
		content = append(content, map[string]any{"type": "text", "text": text})
	}
	for i, tc := range toolCalls {
		input := map[string]any{}
		if strings.TrimSpace(tc.Arguments) != "" {
			_ = json.Unmarshal([]byte(tc.Arguments), &input)
		}
		callID := tc.ID
		if callID == "" {
			callID = fmt.Sprintf("toolu_%d_%d", time.Now().UnixNano(), i)
		}
		content = append(content, map[string]any{
			"type":  "tool_use",
			"id":    callID,
			"name":  tc.Name,
			"input": input,
		})
	}

	usage := mapValue(chatResp["usage"])
	return compactValue(map[string]any{
		"id":            id,
		"type":          "message",
		"role":          "assistant",
		"model":         model,
		"content":       content,
		"stop_reason":   chatStopReason(chatResp, len(toolCalls) > 0),
		"stop_sequence": nil,
		"usage": map[string]any{
			"input_tokens":  intFromAny(usage["prompt_tokens"]),
			"output_tokens": intFromAny(usage["completion_tokens"]),
		},
	})
}

type chatToolCall struct {
	ID        string
	Name      string
	Arguments string
}

func chatResponseToolCalls(resp map[string]any) []chatToolCall {
	msg := firstChoiceMessage(resp)
	items, _ := msg["tool_calls"].([]any)
	out := make([]chatToolCall, 0, len(items))
	for i, item := range items {
		m, isMap := item.(map[string]any)
		if !isMap {
			continue
		}
		if t := stringValue(m["type"]); t != "" && t != "function" {
			continue
		}
		fn := mapValue(m["function"])
		name := stringValue(fn["name"])
		if name == "" {
			continue
		}
		id := stringValue(m["id"])
		if id == "" {
			id = fmt.Sprintf("fc_%d_%d", time.Now().UnixNano(), i)
		}
		args := stringValue(fn["arguments"])
		if args == "" {
			args = "{}"
		}
		out = append(out, chatToolCall{ID: id, Name: name, Arguments: args})
	}
	return out
}

func chatResponseText(resp map[string]any) string {
	msg := firstChoiceMessage(resp)
	return textFromContent(msg["content"])
}

func firstChoiceMessage(resp map[string]any) map[string]any {
	choices, _ := resp["choices"].([]any)
	if len(choices) == 0 {
		return map[string]any{}
	}
	c0, _ := choices[0].(map[string]any)
	return mapValue(c0["message"])
}

func chatStopReason(resp map[string]any, hasToolCalls bool) string {
	if hasToolCalls {
		return "tool_use"
	}
	choices, _ := resp["choices"].([]any)
	if len(choices) == 0 {
		return "end_turn"
	}
	c0, _ := choices[0].(map[string]any)
	switch stringValue(c0["finish_reason"]) {
	case "length":
		return "max_tokens"
	case "tool_calls":
		return "tool_use"
	default:
		return "end_turn"
	}
}
