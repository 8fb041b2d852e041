// Package jsonx provides tolerant JSON extraction and repair for content
// pulled out of script tags and LLM responses. Both sources routinely produce
// truncated or decorated JSON that encoding/json refuses outright.
package jsonx

import (
	"fmt"
	"strings"
)

// ErrNoJSON is returned when no balanced JSON value can be located in the input.
var ErrNoJSON = fmt.Errorf("no JSON value found")

// ErrUnrepairable is returned when a candidate cannot be repaired into valid JSON.
var ErrUnrepairable = fmt.Errorf("JSON could not be repaired")

// CleanCodeFences removes markdown code block wrappers from a response.
// LLMs often wrap JSON in ```json ... ``` blocks even when instructed not to.
func CleanCodeFences(text string) string {
	text = strings.TrimSpace(text)

	if strings.HasPrefix(text, "```json") {
		text = strings.TrimPrefix(text, "```json")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
		return strings.TrimSpace(text)
	}

	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		// Skip potential language identifier on the first line
		if idx := strings.Index(text, "\n"); idx >= 0 {
			firstLine := text[:idx]
			if len(firstLine) < 20 && !strings.Contains(firstLine, " ") && !strings.Contains(firstLine, "{") {
				text = text[idx+1:]
			}
		}
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
		return strings.TrimSpace(text)
	}

	return text
}

// FirstBalancedSpan scans text for the first balanced {...} or [...] span,
// tracking string and escape state so braces inside string literals don't
// confuse the bracket count. Returns the span or ErrNoJSON.
//
// This is the workhorse for mining JSON out of script bodies: the surrounding
// JavaScript is not valid JSON, so a strict parse of the whole body is never
// an option.
func FirstBalancedSpan(text string) (string, error) {
	start := -1
	for i := 0; i < len(text); i++ {
		if text[i] == '{' || text[i] == '[' {
			start = i
			break
		}
	}
	if start < 0 {
		return "", ErrNoJSON
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if escaped {
			escaped = false
			continue
		}
		switch {
		case c == '\\' && inString:
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
			// Brackets inside strings are literal text.
		case c == '{' || c == '[':
			depth++
		case c == '}' || c == ']':
			depth--
			if depth == 0 {
				return text[start : i+1], nil
			}
		}
	}

	// Unbalanced: return the open span from start so Repair can try to close it.
	return text[start:], ErrNoJSON
}

// Repair attempts to turn a truncated JSON candidate into parseable JSON by
// closing an unterminated string literal and appending the missing closing
// brackets in reverse nesting order. Returns ErrUnrepairable when the input
// has no recoverable structure.
func Repair(candidate string) (string, error) {
	candidate = strings.TrimSpace(candidate)
	if candidate == "" || (candidate[0] != '{' && candidate[0] != '[') {
		return "", ErrUnrepairable
	}

	var stack []byte
	inString := false
	escaped := false
	for i := 0; i < len(candidate); i++ {
		c := candidate[i]
		if escaped {
			escaped = false
			continue
		}
		switch {
		case c == '\\' && inString:
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
		case c == '{':
			stack = append(stack, '}')
		case c == '[':
			stack = append(stack, ']')
		case c == '}' || c == ']':
			if len(stack) == 0 || stack[len(stack)-1] != c {
				return "", ErrUnrepairable
			}
			stack = stack[:len(stack)-1]
		}
	}

	if !inString && len(stack) == 0 {
		return candidate, nil
	}

	var sb strings.Builder
	sb.WriteString(candidate)

	if inString {
		// A string truncated mid-escape cannot be closed cleanly.
		if escaped {
			return "", ErrUnrepairable
		}
		sb.WriteByte('"')
	}

	// Truncation often lands right after a key or a comma; trim the dangling
	// token so the closers produce valid JSON.
	repaired := strings.TrimRight(sb.String(), " \t\n\r")
	repaired = strings.TrimRight(repaired, ",:")

	for i := len(stack) - 1; i >= 0; i-- {
		repaired += string(stack[i])
	}

	return repaired, nil
}
