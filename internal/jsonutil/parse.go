// Package jsonutil parses JSON out of LLM responses that may be wrapped in
// markdown code fences.
package jsonutil

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// fencePattern matches a response that is entirely wrapped in a fenced code
// block, with an optional language tag (```json ... ```). Case-insensitive,
// and the (?s) flag lets the body span multiple lines.
var fencePattern = regexp.MustCompile("(?is)^```(?:[a-z0-9]*)\\s*(.*?)\\s*```$")

// StripMarkdownFences removes a ```json ... ``` or ``` ... ``` wrapper from
// text. Returns the content between the fences, or the original text if the
// response is not fence-wrapped.
func StripMarkdownFences(text string) string {
	text = strings.TrimSpace(text)
	if m := fencePattern.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	return text
}

// ParseJSON strips markdown fences from raw LLM response text and unmarshals
// the remainder into the provided type T.
//
// A parse failure here is not a transport fault: the service answered, it just
// answered with something that is not valid JSON. The returned error includes
// a truncated preview of the offending text for triage.
func ParseJSON[T any](raw string) (T, error) {
	text := StripMarkdownFences(raw)

	var result T
	if err := json.Unmarshal([]byte(text), &result); err != nil {
		var zero T
		preview := text
		if len(preview) > 500 {
			preview = preview[:500] + "..."
		}
		return zero, fmt.Errorf("invalid JSON from model: %w (response: %s)", err, preview)
	}
	return result, nil
}
