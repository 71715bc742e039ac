package dispatch

import (
	"encoding/json"
	"strings"
)

// Response is the object printed by claude --output-format json.
type Response struct {
	Type      string  `json:"type"`
	Result    string  `json:"result"`
	IsError   bool    `json:"is_error"`
	SessionID string  `json:"session_id"`
	CostUSD   float64 `json:"total_cost_usd"`
}

// ParseResponse decodes a JSON response envelope.
func ParseResponse(raw string) (*Response, error) {
	var r Response
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// Unwrap returns the result field when raw is a JSON object carrying a result
// string, and the trimmed input otherwise.
func Unwrap(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if !strings.HasPrefix(trimmed, "{") {
		return trimmed
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal([]byte(trimmed), &obj); err != nil {
		return trimmed
	}
	field, ok := obj["result"]
	if !ok {
		return trimmed
	}
	var result string
	if err := json.Unmarshal(field, &result); err != nil {
		return trimmed
	}
	return strings.TrimSpace(result)
}
