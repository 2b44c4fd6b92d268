package llmutils

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jarvis-assistant/jarvis/internal/schema"
)

func TestSplitThoughts(t *testing.T) {
	thoughts, visible := SplitThoughts("<think>check the calendar</think>You are free at 3pm.<thought> </thought>")

	assert.Equal(t, []string{"check the calendar"}, thoughts)
	assert.Equal(t, "You are free at 3pm.", visible)
}

func TestSplitThoughts_Multiple(t *testing.T) {
	thoughts, visible := SplitThoughts("<thought>a</thought>x<think>b</think>y")

	assert.Equal(t, []string{"a", "b"}, thoughts)
	assert.Equal(t, "xy", visible)
}

func TestSplitThoughts_None(t *testing.T) {
	thoughts, visible := SplitThoughts("  plain  ")

	assert.Nil(t, thoughts)
	assert.Equal(t, "plain", visible)
}

func TestStripThink(t *testing.T) {
	assert.Equal(t, "hi", StripThink("<think>\nhidden\n</think>hi"))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", Truncate("abc", 5))
	assert.Equal(t, "ab...", Truncate("abcdef", 2))
}

func TestToolHint(t *testing.T) {
	hint := ToolHint([]schema.ToolCallRequest{
		{Name: "get_current_time"},
		{Name: "list_events", Arguments: map[string]any{"date": "2025-03-01"}},
	})
	assert.Equal(t, `get_current_time, list_events("2025-03-01")`, hint)
}
