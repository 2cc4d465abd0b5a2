package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrNoJSONObject is returned when no JSON object can be recovered from model output
var ErrNoJSONObject = errors.New("no JSON object in model output")

var (
	fencedJSONRe    = regexp.MustCompile("(?s)```[ \t]*(?i:json)?[ \t]*\\r?\\n?(.*?)\\s*```")
	trailingCommaRe = regexp.MustCompile(`,\s*([}\]])`)
	unquotedKeyRe   = regexp.MustCompile(`([{,]\s*)([A-Za-z_]\w*)(\s*:)`)
	controlCharsRe  = regexp.MustCompile(`[\x00-\x08\x0B\x0C\x0E-\x1F]`)
)

// ExtractJSON recovers a single JSON object from model output that may be:
// - pure JSON
// - wrapped in markdown code fences (```json ... ```)
// - surrounded by prose
// - slightly malformed (trailing commas, unquoted keys, single quotes)
//
// The returned string is valid JSON whose top-level value is an object.
func ExtractJSON(input string) (string, error) {
	input = strings.TrimSpace(strings.TrimPrefix(input, "\ufeff"))
	if input == "" {
		return "", fmt.Errorf("%w: empty input", ErrNoJSONObject)
	}

	candidates := []string{input}
	if fenced := extractFromMarkdown(input); fenced != "" {
		candidates = append(candidates, fenced)
	}
	if braced := extractBalancedBraces(input, '{', '}'); braced != "" {
		candidates = append(candidates, braced)
	}

	for _, c := range candidates {
		if isJSONObject(c) {
			return c, nil
		}
	}
	for _, c := range candidates {
		if cleaned := cleanAndFixJSON(c); isJSONObject(cleaned) {
			return cleaned, nil
		}
	}

	return "", fmt.Errorf("%w: %s", ErrNoJSONObject, truncateString(input, 100))
}

// extractFromMarkdown returns the body of the first code fence, with or without a json tag
func extractFromMarkdown(input string) string {
	if matches := fencedJSONRe.FindStringSubmatch(input); len(matches) > 1 {
		return strings.TrimSpace(matches[1])
	}

	// An unterminated opening fence is common when output is cut off.
	if strings.HasPrefix(input, "```") {
		body := strings.TrimPrefix(input, "```")
		if idx := strings.IndexAny(body, "\n{"); idx >= 0 {
			return strings.TrimSpace(body[idx:])
		}
	}

	return ""
}

// extractBalancedBraces extracts the first balanced open/close span, skipping string contents
func extractBalancedBraces(input string, open, close rune) string {
	depth := 0
	inString := false
	escape := false
	start := -1

	for i, ch := range input {
		if escape {
			escape = false
			continue
		}
		if inString {
			switch ch {
			case '\\':
				escape = true
			case '"':
				inString = false
			}
			continue
		}

		switch ch {
		case '"':
			if start >= 0 {
				inString = true
			}
		case open:
			if depth == 0 {
				start = i
			}
			depth++
		case close:
			if depth == 0 {
				continue
			}
			depth--
			if depth == 0 {
				return input[start : i+1]
			}
		}
	}

	return ""
}

// cleanAndFixJSON attempts to fix common JSON formatting issues
func cleanAndFixJSON(input string) string {
	s := strings.TrimSpace(input)
	s = trailingCommaRe.ReplaceAllString(s, "$1")
	s = unquotedKeyRe.ReplaceAllString(s, `$1"$2"$3`)
	s = fixSingleQuotes(s)
	return controlCharsRe.ReplaceAllString(s, "")
}

// fixSingleQuotes converts single-quoted JSON strings to double quotes,
// leaving apostrophes inside double-quoted strings alone.
func fixSingleQuotes(input string) string {
	var result strings.Builder
	inDouble := false
	inSingle := false
	escape := false

	for _, ch := range input {
		if escape {
			result.WriteRune(ch)
			escape = false
			continue
		}

		switch {
		case ch == '\\':
			escape = true
		case ch == '"' && !inSingle:
			inDouble = !inDouble
		case ch == '\'' && !inDouble:
			inSingle = !inSingle
			result.WriteRune('"')
			continue
		case ch == '"' && inSingle:
			result.WriteString(`\"`)
			continue
		}

		result.WriteRune(ch)
	}

	return result.String()
}

func isJSONObject(s string) bool {
	var obj map[string]json.RawMessage
	return json.Unmarshal([]byte(s), &obj) == nil && obj != nil
}

// truncateString truncates a string to maxLen bytes
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
