package planner

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// bareWordPattern matches an unquoted bare-word value following one of the
// known string-valued keys. Models occasionally emit `"color": blue` instead
// of `"color": "blue"`; the repair pass quotes the value in place. The pass is
// idempotent: once quoted, the value no longer matches.
var bareWordPattern = regexp.MustCompile(`("(?:narration|code|kind|text|color)"\s*:\s*)([A-Za-z_][A-Za-z0-9_-]*)(\s*[,}\]])`)

// DecodeModelJSON decodes a JSON document from raw planning-service output,
// tolerating the model's common formatting quirks. The steps are explicit and
// ordered: strip code fences, apply the bare-word repair, attempt a direct
// parse, and on failure extract the first balanced {...} substring and retry
// with the repair applied again. Exhausting all steps is a fatal error that
// names the underlying parse failure.
func DecodeModelJSON(content string, target any) error {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return errors.New("empty payload")
	}

	repaired := RepairJSON(stripCodeFence(trimmed))
	directErr := json.Unmarshal([]byte(repaired), target)
	if directErr == nil {
		return nil
	}

	extracted := extractBalancedObject(repaired)
	if extracted == "" || extracted == repaired {
		return fmt.Errorf("parse planner response: %w (payload snippet: %s)", directErr, snippet(trimmed))
	}
	if err := json.Unmarshal([]byte(RepairJSON(extracted)), target); err != nil {
		return fmt.Errorf("parse planner response: %w (extracted snippet: %s)", err, snippet(extracted))
	}
	return nil
}

// RepairJSON quotes unquoted bare-word values after known string keys.
func RepairJSON(content string) string {
	return bareWordPattern.ReplaceAllString(content, `$1"$2"$3`)
}

func stripCodeFence(content string) string {
	trimmed := strings.TrimSpace(content)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	body := trimmed[3:]
	body = strings.TrimLeft(body, " \t\r\n")
	if len(body) >= 4 && strings.EqualFold(body[:4], "json") {
		body = body[4:]
		body = strings.TrimLeft(body, " \t\r\n")
	}
	if idx := strings.LastIndex(body, "```"); idx >= 0 {
		body = body[:idx]
	}
	return strings.TrimSpace(body)
}

// extractBalancedObject returns the first {...} substring whose braces
// balance, ignoring braces inside string literals.
func extractBalancedObject(content string) string {
	start := strings.IndexByte(content, '{')
	if start < 0 {
		return ""
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(content); i++ {
		c := content[i]
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
				return strings.TrimSpace(content[start : i+1])
			}
		}
	}
	return ""
}

func snippet(content string) string {
	clean := strings.Join(strings.Fields(content), " ")
	const limit = 160
	runes := []rune(clean)
	if len(runes) > limit {
		clean = string(runes[:limit]) + "..."
	}
	if clean == "" {
		return "<empty>"
	}
	return clean
}
