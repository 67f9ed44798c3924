// Package llmjson digs structured JSON out of free-form model replies.
package llmjson

import (
	"encoding/json"
	"errors"
	"regexp"
	"strings"
)

// ErrNotFound is returned when no acceptable JSON array is present.
var ErrNotFound = errors.New("no valid JSON array found in response")

var fence = regexp.MustCompile("```(?:json)?\\s*")

// Clean strips markdown code fences and surrounding whitespace.
func Clean(s string) string {
	s = fence.ReplaceAllString(strings.TrimSpace(s), "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}

// FixEscapes doubles backslashes that do not start a valid JSON escape, so
// subtitle markup like \N survives decoding as a literal.
func FixEscapes(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	for i := 0; i < len(s); i++ {
		if s[i] != '\\' || i == len(s)-1 {
			b.WriteByte(s[i])
			continue
		}
		switch next := s[i+1]; next {
		case '"', '\\', '/', 'b', 'f', 'n', 'r', 't', 'u':
			b.WriteByte('\\')
			b.WriteByte(next)
		default:
			b.WriteString(`\\`)
			b.WriteByte(next)
		}
		i++
	}
	return b.String()
}

// Extract scans text for the first JSON value that decodes into a []T
// accepted by valid. Arrays may sit at the top level or under any key of a
// wrapper object, nested or not. Keys in preferred are tried first.
func Extract[T any](text string, valid func([]T) bool, preferred ...string) ([]T, error) {
	text = FixEscapes(text)

	for i := 0; i < len(text); i++ {
		if text[i] != '[' && text[i] != '{' {
			continue
		}
		var raw json.RawMessage
		if err := json.NewDecoder(strings.NewReader(text[i:])).Decode(&raw); err != nil {
			continue
		}
		if out, ok := search(raw, valid, preferred, 0); ok {
			return out, nil
		}
	}
	return nil, ErrNotFound
}

const maxDepth = 4

func search[T any](raw json.RawMessage, valid func([]T) bool, preferred []string, depth int) ([]T, bool) {
	var out []T
	if err := json.Unmarshal(raw, &out); err == nil && valid(out) {
		return out, true
	}
	if depth >= maxDepth {
		return nil, false
	}

	var wrapper map[string]json.RawMessage
	if err := json.Unmarshal(raw, &wrapper); err != nil {
		return nil, false
	}
	for _, key := range preferred {
		if field, ok := wrapper[key]; ok {
			if out, ok := search(field, valid, preferred, depth+1); ok {
				return out, true
			}
		}
	}
	for _, field := range wrapper {
		if out, ok := search(field, valid, preferred, depth+1); ok {
			return out, true
		}
	}
	return nil, false
}

// Truncate shortens s to maxLen bytes for error messages.
func Truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
