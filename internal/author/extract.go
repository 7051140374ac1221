package author

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNoPayload means no JSON object could be located in the response.
var ErrNoPayload = errors.New("no edit payload found in response")

// ExtractPayload strips incidental formatting wrappers (markdown code
// fences, prose before and after) and returns the outermost JSON
// object in content.
func ExtractPayload(content string) ([]byte, error) {
	text := strings.TrimSpace(content)

	// Prefer fenced blocks when present.
	if idx := strings.Index(text, "```"); idx >= 0 {
		rest := text[idx+3:]
		// Drop an optional language tag on the fence line.
		if nl := strings.IndexByte(rest, '\n'); nl >= 0 {
			rest = rest[nl+1:]
		}
		if end := strings.Index(rest, "```"); end >= 0 {
			text = strings.TrimSpace(rest[:end])
		}
	}

	start := strings.IndexByte(text, '{')
	if start < 0 {
		return nil, fmt.Errorf("%w: expected a JSON object", ErrNoPayload)
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		switch {
		case escaped:
			escaped = false
		case inString && c == '\\':
			escaped = true
		case c == '"':
			inString = !inString
		case !inString && c == '{':
			depth++
		case !inString && c == '}':
			depth--
			if depth == 0 {
				return []byte(text[start : i+1]), nil
			}
		}
	}
	return nil, fmt.Errorf("%w: unterminated JSON object", ErrNoPayload)
}
