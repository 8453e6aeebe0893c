package llm

import "strings"

// ExtractJSON pulls a JSON document out of an LLM response. Responses often
// wrap the payload in a markdown fence or surround it with prose, so this
// strips fences first and falls back to brace/bracket matching.
func ExtractJSON(response string) string {
	if fenced := stripFence(response); fenced != "" {
		response = fenced
	}

	trimmed := strings.TrimSpace(response)
	if strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[") {
		if m := matchDelimited(trimmed, trimmed[0]); m != "" {
			return m
		}
	}

	// Prose around the payload: find the first object, then the first array.
	if i := strings.Index(response, "{"); i != -1 {
		if m := matchDelimited(response[i:], '{'); m != "" {
			return m
		}
	}
	if i := strings.Index(response, "["); i != -1 {
		if m := matchDelimited(response[i:], '['); m != "" {
			return m
		}
	}
	return ""
}

// stripFence returns the content of the first ```json fenced block, or "".
func stripFence(s string) string {
	start := strings.Index(s, "```")
	if start == -1 {
		return ""
	}
	rest := s[start+3:]
	if nl := strings.IndexByte(rest, '\n'); nl != -1 {
		// Drop the language tag line ("json", "JSON", or empty).
		tag := strings.TrimSpace(rest[:nl])
		if tag == "" || strings.EqualFold(tag, "json") {
			rest = rest[nl+1:]
		}
	}
	end := strings.Index(rest, "```")
	if end == -1 {
		return ""
	}
	return strings.TrimSpace(rest[:end])
}

// matchDelimited returns the prefix of s that forms a balanced JSON value
// starting with the given open delimiter. String literals are skipped so
// braces inside them don't break the depth count.
func matchDelimited(s string, open byte) string {
	closing := byte('}')
	if open == '[' {
		closing = ']'
	}

	depth := 0
	inString := false
	escaped := false
	for i := 0; i < len(s); i++ {
		ch := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case open:
			depth++
		case closing:
			depth--
			if depth == 0 {
				return s[:i+1]
			}
		}
	}
	return ""
}
