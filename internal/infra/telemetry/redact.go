package telemetry

import (
	"encoding/json"
	"strings"
)

const redacted = "***"

var sensitiveKeys = []string{
	"token",
	"secret",
	"authorization",
	"password",
	"cookie",
}

// IsSensitiveKey reports whether values stored under key must not be logged.
func IsSensitiveKey(key string) bool {
	lower := strings.ToLower(key)
	for _, needle := range sensitiveKeys {
		if strings.Contains(lower, needle) {
			return true
		}
	}
	return false
}

// RedactValue masks the value if the key is sensitive.
func RedactValue(key, value string) string {
	if IsSensitiveKey(key) {
		return redacted
	}
	return value
}

// RedactArgs returns the tool arguments as a JSON string with sensitive
// members masked at any depth. Invalid JSON is summarized by length only.
func RedactArgs(raw json.RawMessage) string {
	if len(raw) == 0 {
		return "{}"
	}
	var decoded any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return "<invalid json>"
	}
	out, err := json.Marshal(redactTree(decoded))
	if err != nil {
		return "<unencodable>"
	}
	return string(out)
}

func redactTree(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		for key, inner := range typed {
			if IsSensitiveKey(key) {
				typed[key] = redacted
				continue
			}
			typed[key] = redactTree(inner)
		}
		return typed
	case []any:
		for i, inner := range typed {
			typed[i] = redactTree(inner)
		}
		return typed
	default:
		return value
	}
}
