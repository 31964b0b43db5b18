package ai

import (
	"encoding/json"
	"fmt"
	"strings"
)

// extractJSON returns the first JSON object or array embedded in s. Model
// responses are parsed leniently: markdown code fences and prose around the
// payload are tolerated.
func extractJSON(s string) (string, error) {
	if i := strings.Index(s, "```"); i >= 0 {
		rest := s[i+3:]
		if j := strings.Index(rest, "```"); j >= 0 {
			rest = rest[:j]
		}
		// Drop a language tag such as "json" on the fence line.
		if k := strings.IndexByte(rest, '\n'); k >= 0 {
			if tag := strings.TrimSpace(rest[:k]); tag == "json" || tag == "" {
				rest = rest[k+1:]
			}
		}
		s = rest
	}

	start := strings.IndexAny(s, "{[")
	if start < 0 {
		return "", fmt.Errorf("no JSON payload in response")
	}

	opener := s[start]
	closer := byte('}')
	if opener == '[' {
		closer = ']'
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		switch {
		case escaped:
			escaped = false
		case inString && c == '\\':
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
		case c == opener:
			depth++
		case c == closer:
			depth--
			if depth == 0 {
				return s[start : i+1], nil
			}
		}
	}
	return "", fmt.Errorf("unterminated JSON payload in response")
}

// decodeResult unmarshals the JSON payload embedded in a model response.
func decodeResult(raw string, out any) error {
	payload, err := extractJSON(raw)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(payload), out); err != nil {
		return fmt.Errorf("parsing provider response JSON: %w", err)
	}
	return nil
}
