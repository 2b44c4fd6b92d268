package llmutils

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/jarvis-assistant/jarvis/internal/schema"
)

// reThink matches the inline reasoning blocks some models embed in content:
// <think>…</think> (DeepSeek, Qwen) and <thought>…</thought> (Gemini).
var reThink = regexp.MustCompile(`(?s)<(think|thought)>(.*?)</(?:think|thought)>`)

// Truncate shortens a string to at most n characters, adding "..." if it was truncated.
func Truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// StripThink removes inline reasoning blocks.
func StripThink(s string) string {
	return reThink.ReplaceAllString(s, "")
}

// SplitThoughts separates inline reasoning blocks from visible text.
// Each non-blank block becomes one thought, trimmed; visible is what remains
// with surrounding whitespace removed.
func SplitThoughts(s string) (thoughts []string, visible string) {
	for _, m := range reThink.FindAllStringSubmatch(s, -1) {
		if t := strings.TrimSpace(m[2]); t != "" {
			thoughts = append(thoughts, t)
		}
	}
	return thoughts, strings.TrimSpace(reThink.ReplaceAllString(s, ""))
}

// StringOrDefault returns s if it's not empty, or def if s is empty.
func StringOrDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

// ToolHint generates a short hint string for a list of tool calls, e.g. `list_events("2025-01-01")`.
func ToolHint(tcs []schema.ToolCallRequest) string {
	parts := make([]string, 0, len(tcs))
	for _, tc := range tcs {
		var firstVal string
		for _, v := range tc.Arguments {
			if s, ok := v.(string); ok {
				firstVal = s
			}
			break
		}
		if firstVal == "" {
			parts = append(parts, tc.Name)
			continue
		}
		if len(firstVal) > 40 {
			firstVal = firstVal[:40] + "…"
		}
		parts = append(parts, fmt.Sprintf("%s(%q)", tc.Name, firstVal))
	}
	return strings.Join(parts, ", ")
}
