package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// CurrentTimeTool reports the current date and time, optionally in a given
// IANA time zone.
type CurrentTimeTool struct {
	now func() time.Time
}

func NewCurrentTimeTool(now func() time.Time) *CurrentTimeTool {
	if now == nil {
		now = time.Now
	}
	return &CurrentTimeTool{now: now}
}

func (t *CurrentTimeTool) Name() string { return string(ToolCurrentTime) }
func (t *CurrentTimeTool) Description() string {
	return "Get the current date, time and weekday. Use before scheduling relative to today."
}
func (t *CurrentTimeTool) Parameters() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"timezone": {"type": "string", "description": "IANA time zone, e.g. Europe/Paris. Defaults to local time."}
		}
	}`)
}

func (t *CurrentTimeTool) Execute(_ context.Context, params map[string]any) (string, error) {
	now := t.now()
	if tz := stringParam(params, "timezone"); tz != "" {
		loc, err := time.LoadLocation(tz)
		if err != nil {
			return fmt.Sprintf("Error: unknown time zone %q", tz), nil
		}
		now = now.In(loc)
	}
	return now.Format("Monday, 2006-01-02 15:04:05 MST (-07:00)"), nil
}
