package bus

import (
	"github.com/jarvis-assistant/jarvis/internal/turn"
)

// Part kinds on the wire.
const (
	KindText         = "text"
	KindThought      = "thought"
	KindFunctionCall = "function_call"
	KindFunctionResp = "function_response"
)

// FramePart is the JSON form of a turn.Part.
type FramePart struct {
	Kind     string         `json:"kind"`
	Text     string         `json:"text,omitempty"`
	ID       string         `json:"id,omitempty"`
	Name     string         `json:"name,omitempty"`
	Args     map[string]any `json:"args,omitempty"`
	Response string         `json:"response,omitempty"`
}

// Frame is the JSON form of a turn.Event as streamed to observers.
type Frame struct {
	SessionID string      `json:"session_id"`
	Done      bool        `json:"done,omitempty"`
	Parts     []FramePart `json:"parts,omitempty"`
	ToolCalls []string    `json:"tool_calls,omitempty"`
}

// NewFrame converts ev for session id. Unknown part types are skipped.
func NewFrame(id string, ev *turn.Event) Frame {
	f := Frame{SessionID: id}
	if ev == nil {
		return f
	}
	if ev.Terminal {
		f.Done = true
		return f
	}
	f.ToolCalls = ev.ToolCalls
	for _, p := range ev.Parts {
		switch part := p.(type) {
		case turn.TextPart:
			f.Parts = append(f.Parts, FramePart{Kind: KindText, Text: part.Text})
		case turn.ThoughtPart:
			f.Parts = append(f.Parts, FramePart{Kind: KindThought, Text: part.Text})
		case turn.FunctionCallPart:
			f.Parts = append(f.Parts, FramePart{Kind: KindFunctionCall, ID: part.ID, Name: part.Name, Args: part.Args})
		case turn.FunctionResponsePart:
			f.Parts = append(f.Parts, FramePart{Kind: KindFunctionResp, ID: part.ID, Name: part.Name, Response: part.Response})
		}
	}
	return f
}

// Event converts f back to a turn.Event.
func (f Frame) Event() *turn.Event {
	if f.Done {
		return turn.Done()
	}
	ev := &turn.Event{ToolCalls: f.ToolCalls}
	for _, p := range f.Parts {
		switch p.Kind {
		case KindText:
			ev.Parts = append(ev.Parts, turn.TextPart{Text: p.Text})
		case KindThought:
			ev.Parts = append(ev.Parts, turn.ThoughtPart{Text: p.Text})
		case KindFunctionCall:
			ev.Parts = append(ev.Parts, turn.FunctionCallPart{ID: p.ID, Name: p.Name, Args: p.Args})
		case KindFunctionResp:
			ev.Parts = append(ev.Parts, turn.FunctionResponsePart{ID: p.ID, Name: p.Name, Response: p.Response})
		}
	}
	return ev
}
