package agent

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ParsedDecision is the structured shape extracted from a raw model
// response. Fields carries any extra keys (column, guess, amount) the
// model attached, either inside the action object or at the top level.
type ParsedDecision struct {
	ActionType string
	Confidence float64
	Reasoning  string
	Fields     map[string]interface{}
}

// ParseResponse extracts a {action, confidence, reasoning} object from
// raw model output, tolerating JSON embedded in prose or code fences.
func ParseResponse(raw string) (*ParsedDecision, error) {
	blob, err := extractJSON(raw)
	if err != nil {
		return nil, err
	}

	var m map[string]interface{}
	if err := json.Unmarshal([]byte(blob), &m); err != nil {
		return nil, fmt.Errorf("response is not valid JSON: %w", err)
	}

	parsed := &ParsedDecision{Fields: make(map[string]interface{})}
	for k, v := range m {
		switch strings.ToLower(k) {
		case "action":
			if err := parsed.readAction(v); err != nil {
				return nil, err
			}
		case "confidence":
			if f, ok := v.(float64); ok {
				parsed.Confidence = f
			}
		case "reasoning", "reason":
			if s, ok := v.(string); ok {
				parsed.Reasoning = s
			}
		default:
			parsed.Fields[k] = v
		}
	}

	if parsed.ActionType == "" {
		return nil, fmt.Errorf("response has no action")
	}
	return parsed, nil
}

// readAction accepts both "action": "drop" and
// "action": {"type": "drop", "column": 3}.
func (p *ParsedDecision) readAction(v interface{}) error {
	switch t := v.(type) {
	case string:
		p.ActionType = t
		return nil
	case map[string]interface{}:
		for k, av := range t {
			switch strings.ToLower(k) {
			case "type", "action", "actiontype":
				if s, ok := av.(string); ok {
					p.ActionType = s
				}
			default:
				p.Fields[k] = av
			}
		}
		if p.ActionType == "" {
			return fmt.Errorf("action object has no type")
		}
		return nil
	default:
		return fmt.Errorf("action has unexpected shape %T", v)
	}
}

// extractJSON pulls the first JSON object out of the text, skipping
// markdown fences and surrounding prose.
func extractJSON(raw string) (string, error) {
	s := raw
	if i := strings.Index(s, "```"); i >= 0 {
		s = s[i+3:]
		s = strings.TrimPrefix(s, "json")
		if j := strings.Index(s, "```"); j >= 0 {
			s = s[:j]
		}
	}

	start := strings.Index(s, "{")
	if start < 0 {
		return "", fmt.Errorf("no JSON object in response")
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1], nil
			}
		}
	}
	return "", fmt.Errorf("unterminated JSON object in response")
}
