// Package turn models the events an agent run emits for one conversational
// turn and folds them into a single structured result.
package turn

// Part is one content fragment of an Event. The set of implementations is
// closed: TextPart, ThoughtPart, FunctionCallPart and FunctionResponsePart.
type Part interface {
	isPart()
}

// TextPart is user-visible output.
type TextPart struct {
	Text string `json:"text"`
}

// ThoughtPart is internal reasoning. It never reaches the response text.
type ThoughtPart struct {
	Text string `json:"text"`
}

// FunctionCallPart records the model invoking a tool.
type FunctionCallPart struct {
	ID   string         `json:"id,omitempty"`
	Name string         `json:"name"`
	Args map[string]any `json:"args,omitempty"`
}

// FunctionResponsePart records a tool result arriving.
type FunctionResponsePart struct {
	ID       string `json:"id,omitempty"`
	Name     string `json:"name"`
	Response string `json:"response,omitempty"`
}

func (TextPart) isPart()             {}
func (ThoughtPart) isPart()          {}
func (FunctionCallPart) isPart()     {}
func (FunctionResponsePart) isPart() {}

// Event is one notification emitted while a turn is processed.
//
// Terminal is set exactly once, on the last event of a turn; its Parts and
// ToolCalls are never read.
type Event struct {
	Terminal  bool
	Parts     []Part
	ToolCalls []string
}

// Text returns an event carrying a single TextPart.
func Text(s string) *Event {
	return &Event{Parts: []Part{TextPart{Text: s}}}
}

// Thought returns an event carrying a single ThoughtPart.
func Thought(s string) *Event {
	return &Event{Parts: []Part{ThoughtPart{Text: s}}}
}

// Done returns the terminal event.
func Done() *Event {
	return &Event{Terminal: true}
}
