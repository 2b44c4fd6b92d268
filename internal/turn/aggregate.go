package turn

import (
	"context"
	"fmt"
	"log/slog"
)

// Result is the folded outcome of one turn.
type Result struct {
	Response  string   `json:"response"`
	Thoughts  []string `json:"thoughts"`
	ToolCalls []string `json:"tool_calls"`
}

// Aggregator folds events into a Result one at a time. The zero value is not
// usable; call NewAggregator.
type Aggregator struct {
	response []byte
	thoughts []string
	tools    *ToolSet
	done     bool
}

// NewAggregator returns an empty Aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{thoughts: make([]string, 0), tools: NewToolSet()}
}

// Add folds ev into the running result. It returns false once a terminal
// event has been seen; every later call is a no-op.
func (a *Aggregator) Add(ev *Event) bool {
	if a.done {
		return false
	}
	if ev == nil {
		return true
	}
	if ev.Terminal {
		a.done = true
		return false
	}

	for _, name := range ev.ToolCalls {
		a.tools.Add(name)
	}

	for _, p := range ev.Parts {
		switch part := p.(type) {
		case nil:
			continue
		case FunctionCallPart:
			a.addTool(part.Name, "function call")
		case *FunctionCallPart:
			if part != nil {
				a.addTool(part.Name, "function call")
			}
		case FunctionResponsePart:
			a.addTool(part.Name, "function response")
		case *FunctionResponsePart:
			if part != nil {
				a.addTool(part.Name, "function response")
			}
		case ThoughtPart:
			a.addThought(part.Text)
		case *ThoughtPart:
			if part != nil {
				a.addThought(part.Text)
			}
		case TextPart:
			a.response = append(a.response, part.Text...)
		case *TextPart:
			if part != nil {
				a.response = append(a.response, part.Text...)
			}
		default:
			slog.Debug("turn: ignoring unknown part", "type", fmt.Sprintf("%T", p))
		}
	}
	return true
}

func (a *Aggregator) addTool(name, kind string) {
	if name == "" {
		slog.Debug("turn: part without a tool name", "kind", kind)
		return
	}
	a.tools.Add(name)
}

func (a *Aggregator) addThought(text string) {
	if text != "" {
		a.thoughts = append(a.thoughts, text)
	}
}

// Done reports whether a terminal event has been seen.
func (a *Aggregator) Done() bool { return a.done }

// Result returns a snapshot of the accumulated result.
func (a *Aggregator) Result() Result {
	thoughts := make([]string, len(a.thoughts))
	copy(thoughts, a.thoughts)
	return Result{
		Response:  string(a.response),
		Thoughts:  thoughts,
		ToolCalls: a.tools.Names(),
	}
}

// Aggregate drains events until the channel is closed, a terminal event
// arrives, or ctx is cancelled. On cancellation it returns ctx.Err() and the
// partial result.
func Aggregate(ctx context.Context, events <-chan *Event) (Result, error) {
	agg := NewAggregator()
	for {
		select {
		case <-ctx.Done():
			return agg.Result(), ctx.Err()
		case ev, ok := <-events:
			if !ok || !agg.Add(ev) {
				return agg.Result(), nil
			}
		}
	}
}

// Drain aggregates src and releases it. The error that ended src is returned
// unmodified; in that case the result is whatever was folded before it.
func Drain(ctx context.Context, src Source) (Result, error) {
	defer src.Close()

	agg := NewAggregator()
	events := src.Events()
	for {
		select {
		case <-ctx.Done():
			return agg.Result(), ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return agg.Result(), src.Err()
			}
			if !agg.Add(ev) {
				return agg.Result(), nil
			}
		}
	}
}
