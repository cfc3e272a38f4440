package llm

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// Models wrap JSON answers in reasoning tags or markdown fences more often
// than not, even when told not to. ExtractJSON peels those layers and
// returns the first complete JSON value in the response.

var (
	reasoningPattern = regexp.MustCompile(`(?s)^\s*<think>.*?</think>\s*`)
	fencePattern     = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)```")
)

// ExtractJSON returns the first valid JSON object or array embedded in an
// LLM response.
func ExtractJSON(response string) (string, error) {
	cleaned := reasoningPattern.ReplaceAllString(response, "")
	if m := fencePattern.FindStringSubmatch(cleaned); m != nil {
		cleaned = m[1]
	}

	for _, start := range candidateStarts(cleaned) {
		value, ok := scanBalanced(cleaned, start)
		if ok && json.Valid([]byte(value)) {
			return value, nil
		}
	}

	// The whole response may already be bare JSON (a quoted string, number,
	// or a value the scanners above missed).
	trimmed := strings.TrimSpace(cleaned)
	if trimmed != "" && json.Valid([]byte(trimmed)) {
		return trimmed, nil
	}

	return "", fmt.Errorf("no valid JSON found in response")
}

// candidateStarts returns the positions of the first '{' and '[' in s,
// nearest first.
func candidateStarts(s string) []int {
	obj := strings.IndexByte(s, '{')
	arr := strings.IndexByte(s, '[')

	var starts []int
	switch {
	case obj >= 0 && arr >= 0 && obj < arr:
		starts = []int{obj, arr}
	case obj >= 0 && arr >= 0:
		starts = []int{arr, obj}
	case obj >= 0:
		starts = []int{obj}
	case arr >= 0:
		starts = []int{arr}
	}
	return starts
}

// scanBalanced returns the balanced bracket run beginning at start,
// ignoring brackets inside JSON string literals.
func scanBalanced(s string, start int) (string, bool) {
	open := s[start]
	closer := byte('}')
	if open == '[' {
		closer = ']'
	}

	depth := 0
	inString := false
	for i := start; i < len(s); i++ {
		switch c := s[i]; {
		case inString && c == '\\':
			i++
		case c == '"':
			inString = !inString
		case inString:
		case c == open:
			depth++
		case c == closer:
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}

// ParseJSONResponse extracts JSON from a response and unmarshals it into T.
func ParseJSONResponse[T any](response string) (T, error) {
	var result T

	jsonStr, err := ExtractJSON(response)
	if err != nil {
		return result, err
	}

	if err := json.Unmarshal([]byte(jsonStr), &result); err != nil {
		return result, fmt.Errorf("unmarshal JSON: %w", err)
	}

	return result, nil
}
