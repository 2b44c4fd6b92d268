package tools

import (
	"time"

	"github.com/jarvis-assistant/jarvis/internal/schema"
)

// ToolName is the canonical name of a built-in tool.
type ToolName string

const (
	ToolCurrentTime ToolName = "get_current_time"
	ToolListEvents  ToolName = "list_events"
	ToolCreateEvent ToolName = "create_event"
	ToolEditEvent   ToolName = "edit_event"
	ToolDeleteEvent ToolName = "delete_event"
	ToolReadFile    ToolName = "read_file"
	ToolWriteFile   ToolName = "write_file"
	ToolEditFile    ToolName = "edit_file"
	ToolListDir     ToolName = "list_dir"
	ToolWebFetch    ToolName = "web_fetch"
)

// Options selects and configures the built-in tools.
type Options struct {
	// Workspace is where relative file paths resolve.
	Workspace string
	// RestrictToWorkspace refuses file access outside Workspace.
	RestrictToWorkspace bool
	// Calendar enables the calendar tools when non-nil.
	Calendar Calendar
	// WebFetchMaxChars caps web_fetch output; 0 disables web_fetch.
	WebFetchMaxChars int
	// Now is the clock for get_current_time and relative dates; nil means time.Now.
	Now func() time.Time
}

// NewDefaultToolList builds the built-in tool set described by opts.
func NewDefaultToolList(opts Options) *ToolList {
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	list := NewToolList(NewCurrentTimeTool(now))

	box := NewSandbox(opts.Workspace, opts.RestrictToWorkspace)
	for _, t := range []schema.Tool{
		NewReadFileTool(box),
		NewWriteFileTool(box),
		NewEditFileTool(box),
		NewListDirTool(box),
	} {
		list.Add(t)
	}

	if opts.Calendar != nil {
		for _, t := range NewCalendarTools(opts.Calendar, now) {
			list.Add(t)
		}
	}
	if opts.WebFetchMaxChars > 0 {
		list.Add(NewWebFetchTool(opts.WebFetchMaxChars))
	}
	return list
}
