package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

// ErrNoJSONObject is returned when model output holds no decodable JSON object.
var ErrNoJSONObject = errors.New("no JSON object found")

var (
	fencedJSONBlock  = regexp.MustCompile("(?s)```json\\s*(.+?)\\s*```")
	fencedBlock      = regexp.MustCompile("(?s)```[a-zA-Z]*\\s*(.+?)\\s*```")
	controlCharacter = regexp.MustCompile(`[\x00-\x08\x0B\x0C\x0E-\x1F]`)
)

// ParseModelObject extracts a JSON object from generative model output.
// Models asked for structured output still sometimes return:
//   - the object wrapped in a markdown code fence
//   - the object surrounded by prose
//   - trailing commas, unquoted keys or single-quoted strings
//
// Each candidate is tried in that order; the first one that decodes wins.
func ParseModelObject(input string) (map[string]any, error) {
	input = strings.TrimPrefix(strings.TrimSpace(input), "\ufeff")
	if input == "" {
		return nil, fmt.Errorf("%w: empty input", ErrNoJSONObject)
	}

	for _, candidate := range objectCandidates(input) {
		if candidate == "" {
			continue
		}
		var obj map[string]any
		if err := json.Unmarshal([]byte(candidate), &obj); err == nil && obj != nil {
			return obj, nil
		}
	}

	return nil, fmt.Errorf("%w in %q", ErrNoJSONObject, truncateString(input, 100))
}

func objectCandidates(input string) []string {
	fenced := extractFromMarkdown(input)
	embedded := extractBalancedObject(input)

	return []string{
		input,
		fenced,
		embedded,
		repairJSON(fenced),
		repairJSON(embedded),
		repairJSON(input),
	}
}

// extractFromMarkdown returns the body of the first fenced code block that
// looks like JSON.
func extractFromMarkdown(input string) string {
	if m := fencedJSONBlock.FindStringSubmatch(input); len(m) > 1 {
		return strings.TrimSpace(m[1])
	}
	if m := fencedBlock.FindStringSubmatch(input); len(m) > 1 {
		body := strings.TrimSpace(m[1])
		if strings.HasPrefix(body, "{") {
			return body
		}
	}
	return ""
}

// extractBalancedObject returns the first brace-balanced {...} span, ignoring
// braces that appear inside string literals.
func extractBalancedObject(input string) string {
	start := strings.Index(input, "{")
	if start < 0 {
		return ""
	}

	depth := 0
	inString := false
	escape := false

	for i, ch := range input[start:] {
		switch {
		case escape:
			escape = false
		case ch == '\\':
			escape = true
		case ch == '"':
			inString = !inString
		case inString:
		case ch == '{':
			depth++
		case ch == '}':
			depth--
			if depth == 0 {
				return input[start : start+i+1]
			}
		}
	}

	return ""
}

// repairJSON fixes the malformations models most often produce.
func repairJSON(input string) string {
	if input == "" {
		return ""
	}
	s := fixSingleQuotes(input)
	s = fixStructure(s)
	return controlCharacter.ReplaceAllString(s, "")
}

// fixStructure drops trailing commas and quotes bare object keys.
// Text inside double-quoted strings is copied unchanged.
func fixStructure(input string) string {
	runes := []rune(input)
	var b strings.Builder
	b.Grow(len(input) + 8)

	inDouble := false
	escape := false
	expectKey := false

	for i := 0; i < len(runes); i++ {
		ch := runes[i]
		switch {
		case escape:
			escape = false
		case inDouble:
			if ch == '\\' {
				escape = true
			} else if ch == '"' {
				inDouble = false
			}
		case ch == '"':
			inDouble = true
			expectKey = false
		case ch == ',':
			if next := nextNonSpace(runes, i+1); next < len(runes) && (runes[next] == '}' || runes[next] == ']') {
				continue
			}
			expectKey = true
		case ch == '{':
			expectKey = true
		case unicode.IsSpace(ch):
		case expectKey && isIdentStart(ch):
			expectKey = false
			end := i + 1
			for end < len(runes) && isIdentPart(runes[end]) {
				end++
			}
			if colon := nextNonSpace(runes, end); colon < len(runes) && runes[colon] == ':' {
				b.WriteByte('"')
				b.WriteString(string(runes[i:end]))
				b.WriteByte('"')
				i = end - 1
				continue
			}
		default:
			expectKey = false
		}
		b.WriteRune(ch)
	}

	return b.String()
}

func nextNonSpace(runes []rune, from int) int {
	for from < len(runes) && unicode.IsSpace(runes[from]) {
		from++
	}
	return from
}

func isIdentStart(ch rune) bool {
	return ch == '_' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isIdentPart(ch rune) bool {
	return isIdentStart(ch) || (ch >= '0' && ch <= '9')
}

// fixSingleQuotes converts single-quoted delimiters outside double-quoted
// strings into double quotes. Apostrophes inside words are left alone.
func fixSingleQuotes(input string) string {
	runes := []rune(input)
	var b strings.Builder
	b.Grow(len(input))

	inDouble := false
	escape := false

	for i, ch := range runes {
		switch {
		case escape:
			escape = false
		case ch == '\\':
			escape = true
		case ch == '"':
			inDouble = !inDouble
		case ch == '\'' && !inDouble && isQuoteDelimiter(runes, i):
			ch = '"'
		}
		b.WriteRune(ch)
	}

	return b.String()
}

// isQuoteDelimiter reports whether the quote at i opens or closes a value,
// judged by the nearest non-space neighbours.
func isQuoteDelimiter(runes []rune, i int) bool {
	var prev, next rune
	for j := i - 1; j >= 0; j-- {
		if runes[j] != ' ' && runes[j] != '\t' && runes[j] != '\n' {
			prev = runes[j]
			break
		}
	}
	for j := i + 1; j < len(runes); j++ {
		if runes[j] != ' ' && runes[j] != '\t' && runes[j] != '\n' {
			next = runes[j]
			break
		}
	}
	return prev == 0 || strings.ContainsRune("{[:,", prev) ||
		next == 0 || strings.ContainsRune("}]:,", next)
}

func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
