package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/jarvis-assistant/jarvis/internal/calendar"
	"github.com/jarvis-assistant/jarvis/internal/schema"
)

// Calendar is the store behind the calendar tools. *calendar.Store
// implements it.
type Calendar interface {
	List(from, to time.Time) ([]calendar.Event, error)
	Add(ev calendar.Event) (calendar.Event, error)
	Update(id string, p calendar.Patch) (calendar.Event, error)
	Remove(id string) error
}

// NewCalendarTools returns list_events, create_event, edit_event and
// delete_event bound to cal.
func NewCalendarTools(cal Calendar, now func() time.Time) []schema.Tool {
	base := calendarTool{cal: cal, now: now}
	return []schema.Tool{
		&ListEventsTool{base},
		&CreateEventTool{base},
		&EditEventTool{base},
		&DeleteEventTool{base},
	}
}

type calendarTool struct {
	cal Calendar
	now func() time.Time
}

func (c calendarTool) parseTime(params map[string]any, key string) (time.Time, bool, error) {
	s := strings.TrimSpace(stringParam(params, key))
	if s == "" {
		return time.Time{}, false, nil
	}
	t, err := calendar.ParseTime(s, c.now().Location())
	if err != nil {
		return time.Time{}, false, errors.Wrap(err, key)
	}
	return t, true, nil
}

func formatEvent(e calendar.Event) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "[%s] %s: %s - %s", e.ID, e.Title,
		e.Start.Format("Mon 2006-01-02 15:04"), e.End.Format("15:04"))
	if e.Location != "" {
		fmt.Fprintf(&sb, " @ %s", e.Location)
	}
	if e.Description != "" {
		fmt.Fprintf(&sb, " (%s)", e.Description)
	}
	return sb.String()
}

// ---------------------------------------------------------------------------
// list_events
// ---------------------------------------------------------------------------

type ListEventsTool struct{ calendarTool }

func (t *ListEventsTool) Name() string { return string(ToolListEvents) }
func (t *ListEventsTool) Description() string {
	return "List calendar events between two times. Without arguments lists today's events."
}
func (t *ListEventsTool) Parameters() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"from": {"type": "string", "description": "Start, YYYY-MM-DD or YYYY-MM-DD HH:MM. Defaults to today."},
			"to": {"type": "string", "description": "End (exclusive). Defaults to the end of the 'from' day."}
		}
	}`)
}

func (t *ListEventsTool) Execute(_ context.Context, params map[string]any) (string, error) {
	from, hasFrom, err := t.parseTime(params, "from")
	if err != nil {
		return "Error: " + err.Error(), nil
	}
	to, hasTo, err := t.parseTime(params, "to")
	if err != nil {
		return "Error: " + err.Error(), nil
	}
	if !hasFrom {
		from, _ = calendar.DayBounds(t.now())
	}
	if !hasTo {
		_, to = calendar.DayBounds(from)
	}

	events, err := t.cal.List(from, to)
	if err != nil {
		return "Error: " + err.Error(), nil
	}
	if len(events) == 0 {
		return fmt.Sprintf("No events between %s and %s.", from.Format("2006-01-02 15:04"), to.Format("2006-01-02 15:04")), nil
	}
	lines := make([]string, 0, len(events))
	for _, e := range events {
		lines = append(lines, formatEvent(e))
	}
	return strings.Join(lines, "\n"), nil
}

// ---------------------------------------------------------------------------
// create_event
// ---------------------------------------------------------------------------

type CreateEventTool struct{ calendarTool }

func (t *CreateEventTool) Name() string { return string(ToolCreateEvent) }
func (t *CreateEventTool) Description() string {
	return "Create a calendar event. End defaults to one hour after start."
}
func (t *CreateEventTool) Parameters() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"title": {"type": "string"},
			"start": {"type": "string", "description": "YYYY-MM-DD HH:MM or RFC 3339"},
			"end": {"type": "string", "description": "YYYY-MM-DD HH:MM or RFC 3339"},
			"location": {"type": "string"},
			"description": {"type": "string"}
		},
		"required": ["title", "start"]
	}`)
}

func (t *CreateEventTool) Execute(_ context.Context, params map[string]any) (string, error) {
	start, _, err := t.parseTime(params, "start")
	if err != nil {
		return "Error: " + err.Error(), nil
	}
	end, _, err := t.parseTime(params, "end")
	if err != nil {
		return "Error: " + err.Error(), nil
	}
	ev, err := t.cal.Add(calendar.Event{
		Title:       stringParam(params, "title"),
		Start:       start,
		End:         end,
		Location:    stringParam(params, "location"),
		Description: stringParam(params, "description"),
	})
	if err != nil {
		return "Error: " + err.Error(), nil
	}
	return "Created " + formatEvent(ev), nil
}

// ---------------------------------------------------------------------------
// edit_event
// ---------------------------------------------------------------------------

type EditEventTool struct{ calendarTool }

func (t *EditEventTool) Name() string { return string(ToolEditEvent) }
func (t *EditEventTool) Description() string {
	return "Change fields of an existing event by id. Omitted fields are kept; moving the start keeps the duration."
}
func (t *EditEventTool) Parameters() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"id": {"type": "string"},
			"title": {"type": "string"},
			"start": {"type": "string"},
			"end": {"type": "string"},
			"location": {"type": "string"},
			"description": {"type": "string"}
		},
		"required": ["id"]
	}`)
}

func (t *EditEventTool) Execute(_ context.Context, params map[string]any) (string, error) {
	id := stringParam(params, "id")
	if id == "" {
		return "Error: id is required", nil
	}

	var p calendar.Patch
	for key, dst := range map[string]**string{
		"title":       &p.Title,
		"location":    &p.Location,
		"description": &p.Description,
	} {
		if v, ok := params[key].(string); ok {
			v := v
			*dst = &v
		}
	}
	start, ok, err := t.parseTime(params, "start")
	if err != nil {
		return "Error: " + err.Error(), nil
	}
	if ok {
		p.Start = &start
	}
	end, ok, err := t.parseTime(params, "end")
	if err != nil {
		return "Error: " + err.Error(), nil
	}
	if ok {
		p.End = &end
	}

	ev, err := t.cal.Update(id, p)
	if err != nil {
		return "Error: " + err.Error(), nil
	}
	return "Updated " + formatEvent(ev), nil
}

// ---------------------------------------------------------------------------
// delete_event
// ---------------------------------------------------------------------------

type DeleteEventTool struct{ calendarTool }

func (t *DeleteEventTool) Name() string        { return string(ToolDeleteEvent) }
func (t *DeleteEventTool) Description() string { return "Delete a calendar event by id." }
func (t *DeleteEventTool) Parameters() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {"id": {"type": "string"}},
		"required": ["id"]
	}`)
}

func (t *DeleteEventTool) Execute(_ context.Context, params map[string]any) (string, error) {
	id := stringParam(params, "id")
	if id == "" {
		return "Error: id is required", nil
	}
	if err := t.cal.Remove(id); err != nil {
		return "Error: " + err.Error(), nil
	}
	return "Deleted event " + id, nil
}
