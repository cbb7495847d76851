package ai

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrNoJSON is returned when a response contains nothing that looks like JSON.
var ErrNoJSON = errors.New("no JSON found in response")

// ExtractJSONObject decodes the JSON object embedded in a model response.
// It tries a strict parse, then the substring between the first '{' and the
// last '}', then the same substring with unescaped quotes repaired.
func ExtractJSONObject(response string, v any) error {
	return extractJSON(response, '{', '}', v)
}

// ExtractJSONArray is ExtractJSONObject for a top-level array.
func ExtractJSONArray(response string, v any) error {
	return extractJSON(response, '[', ']', v)
}

func extractJSON(response string, open, close byte, v any) error {
	text := stripCodeFences(response)

	if len(text) > 0 && text[0] == open {
		if err := json.Unmarshal([]byte(text), v); err == nil {
			return nil
		}
	}

	startIdx := strings.IndexByte(text, open)
	endIdx := strings.LastIndexByte(text, close)
	if startIdx == -1 || endIdx == -1 || endIdx < startIdx {
		return ErrNoJSON
	}

	jsonStr := text[startIdx : endIdx+1]
	err := json.Unmarshal([]byte(jsonStr), v)
	if err == nil {
		return nil
	}

	sanitized := sanitizeJSON(jsonStr)
	if sanitizedErr := json.Unmarshal([]byte(sanitized), v); sanitizedErr != nil {
		return fmt.Errorf("failed to unmarshal JSON: %w (sanitized version also failed: %v)", err, sanitizedErr)
	}
	return nil
}

func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, "```json", "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}

// sanitizeJSON escapes stray double quotes inside single-line string values,
// the most common defect in model-written JSON.
func sanitizeJSON(jsonStr string) string {
	lines := strings.Split(jsonStr, "\n")
	var sanitizedLines []string

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		colonIdx := strings.Index(line, ":")
		if colonIdx != -1 && strings.Contains(line, "\"") {
			beforeColon := line[:colonIdx+1]
			afterColon := strings.TrimSpace(line[colonIdx+1:])

			if strings.HasPrefix(afterColon, "\"") {
				lastQuoteIdx := strings.LastIndex(afterColon, "\"")
				if lastQuoteIdx > 0 {
					content := afterColon[1:lastQuoteIdx]
					content = strings.ReplaceAll(content, `\"`, `"`)
					content = strings.ReplaceAll(content, `"`, `\"`)
					remainder := afterColon[lastQuoteIdx+1:]
					line = beforeColon + " \"" + content + "\"" + remainder
				}
			}
		}

		sanitizedLines = append(sanitizedLines, line)
	}

	return strings.Join(sanitizedLines, "\n")
}

func truncateString(s string, maxLength int) string {
	r := []rune(s)
	if len(r) <= maxLength {
		return s
	}
	return string(r[:maxLength]) + "..."
}
