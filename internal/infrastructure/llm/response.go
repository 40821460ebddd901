package llm

import (
	"fmt"
	"strings"
)

// ExtractJSONObject pulls the first JSON object out of a model response. The
// object may be bare, or fenced in a ``` / ```json code block. Returns an
// error when no balanced object is present; callers wrap it in a
// MalformedResponseError so the raw text is preserved.
func ExtractJSONObject(text string) (string, error) {
	candidate := strings.TrimSpace(text)

	if fenced, ok := extractFencedBlock(candidate); ok {
		candidate = fenced
	}

	start := strings.Index(candidate, "{")
	if start < 0 {
		return "", fmt.Errorf("no JSON object in response")
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(candidate); i++ {
		c := candidate[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return candidate[start : i+1], nil
			}
		}
	}
	return "", fmt.Errorf("unbalanced JSON object in response")
}

// ExtractCodeBlock pulls generated IaC text out of a model response. A fenced
// block wins; otherwise the trimmed response is returned as-is.
func ExtractCodeBlock(text string) string {
	if fenced, ok := extractFencedBlock(text); ok {
		return strings.TrimSpace(fenced)
	}
	return strings.TrimSpace(text)
}

func extractFencedBlock(text string) (string, bool) {
	open := strings.Index(text, "```")
	if open < 0 {
		return "", false
	}
	rest := text[open+3:]
	// Skip an optional language tag on the fence line.
	if nl := strings.IndexByte(rest, '\n'); nl >= 0 {
		tag := strings.TrimSpace(rest[:nl])
		if len(tag) <= 20 && !strings.ContainsAny(tag, "{}") {
			rest = rest[nl+1:]
		}
	}
	closeIdx := strings.Index(rest, "```")
	if closeIdx < 0 {
		return "", false
	}
	return rest[:closeIdx], true
}
