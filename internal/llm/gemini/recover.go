package gemini

import (
	"encoding/json"
	"strings"

	"casemate-backend/internal/llm"
)

// RecoverJSON extracts a single JSON object from a model response. The
// response is first parsed strictly; if that fails, the first balanced
// brace-delimited span is scanned out and parsed. Exhaustion of both paths is
// llm.ErrNoJSON, never a nil result.
func RecoverJSON(text string) (json.RawMessage, error) {
	trimmed := strings.TrimSpace(text)
	trimmed = stripCodeFence(trimmed)

	if isJSONObject(trimmed) {
		return json.RawMessage(trimmed), nil
	}

	span, ok := firstBalancedObject(trimmed)
	if !ok || !isJSONObject(span) {
		return nil, llm.ErrNoJSON
	}
	return json.RawMessage(span), nil
}

func isJSONObject(s string) bool {
	if !strings.HasPrefix(strings.TrimSpace(s), "{") {
		return false
	}
	var probe map[string]any
	return json.Unmarshal([]byte(s), &probe) == nil
}

// firstBalancedObject scans for the first '{' and returns the span up to its
// matching '}', honoring string literals and escapes.
func firstBalancedObject(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		ch := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}

func stripCodeFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
