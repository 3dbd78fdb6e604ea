package common

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var ErrNoJSONObject = errors.New("no JSON object found in response")

// ExtractJSONObject strips markdown code fences and returns the span from the
// first '{' to the last '}'. Model output often wraps JSON in prose or fences.
func ExtractJSONObject(response string) (string, error) {
	text := strings.TrimSpace(response)
	if strings.HasPrefix(text, "```json") {
		text = text[len("```json"):]
	} else if strings.HasPrefix(text, "```") {
		text = text[len("```"):]
	}
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")

	start := strings.IndexByte(text, '{')
	end := strings.LastIndexByte(text, '}')
	if start == -1 || end == -1 || end < start {
		return "", ErrNoJSONObject
	}
	return text[start : end+1], nil
}

// ParseJSON cleans and unmarshals a model response into a type T.
func ParseJSON[T any](response string) (T, error) {
	var zero T

	jsonStr, err := ExtractJSONObject(response)
	if err != nil {
		return zero, err
	}

	var result T
	if err := json.Unmarshal([]byte(jsonStr), &result); err != nil {
		return zero, fmt.Errorf("failed to unmarshal JSON: %w", err)
	}
	return result, nil
}

// Truncate cuts s to at most n runes.
func Truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
