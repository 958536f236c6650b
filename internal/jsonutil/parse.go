// Package jsonutil parses JSON out of model responses that may arrive
// wrapped in markdown code fences or surrounded by prose.
package jsonutil

import (
	"encoding/json"
	"fmt"
	"strings"
)

// stripFences removes a ```json ... ``` or ``` ... ``` wrapper, returning
// the text unchanged when there is none.
func stripFences(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	lines := strings.Split(text, "\n")
	if len(lines) < 3 {
		return text
	}
	end := len(lines) - 1
	for i := len(lines) - 1; i > 0; i-- {
		if strings.TrimSpace(lines[i]) == "```" {
			end = i
			break
		}
	}
	return strings.Join(lines[1:end], "\n")
}

// extract returns the first JSON object or array embedded in text.
func extract(text string) (string, error) {
	text = strings.TrimSpace(text)

	objIdx := strings.Index(text, "{")
	arrIdx := strings.Index(text, "[")
	if objIdx == -1 && arrIdx == -1 {
		return "", fmt.Errorf("no JSON content found")
	}

	start, closer := objIdx, "}"
	if objIdx == -1 || (arrIdx != -1 && arrIdx < objIdx) {
		start, closer = arrIdx, "]"
	}

	text = text[start:]
	end := strings.LastIndex(text, closer)
	if end == -1 {
		return "", fmt.Errorf("no closing %s found", closer)
	}
	return text[:end+1], nil
}

// ParseJSON unwraps fences and prose around a model response and unmarshals
// the embedded JSON into T.
func ParseJSON[T any](raw string) (T, error) {
	var out T
	jsonStr, err := extract(stripFences(raw))
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal([]byte(jsonStr), &out); err != nil {
		return out, fmt.Errorf("failed to unmarshal JSON: %w", err)
	}
	return out, nil
}
