package turn

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func drain(t *testing.T, evs ...*Event) Result {
	t.Helper()
	res, err := Drain(context.Background(), FromEvents(nil, evs...))
	require.NoError(t, err)
	return res
}

func TestDrain_ThoughtsNeverReachResponse(t *testing.T) {
	res := drain(t,
		&Event{Parts: []Part{ThoughtPart{Text: "plan the week"}, TextPart{Text: "Sure. "}}},
		&Event{Parts: []Part{ThoughtPart{Text: "check calendar"}}},
		Text("Done."),
		Done(),
	)

	assert.Equal(t, "Sure. Done.", res.Response)
	assert.Equal(t, []string{"plan the week", "check calendar"}, res.Thoughts)
	for _, th := range res.Thoughts {
		assert.NotContains(t, res.Response, th)
	}
}

func TestDrain_ToolCallsDeduplicated(t *testing.T) {
	res := drain(t,
		&Event{ToolCalls: []string{"list_events"}},
		&Event{Parts: []Part{FunctionCallPart{ID: "c1", Name: "list_events"}}},
		&Event{Parts: []Part{FunctionResponsePart{ID: "c1", Name: "list_events", Response: "[]"}}},
		&Event{ToolCalls: []string{"list_events", "get_current_time"}},
		&Event{Parts: []Part{FunctionCallPart{Name: "get_current_time"}}},
		Done(),
	)

	assert.Equal(t, []string{"list_events", "get_current_time"}, res.ToolCalls)
}

func TestDrain_TerminalShortCircuits(t *testing.T) {
	res := drain(t,
		Text("hi"),
		Done(),
		Text("ignored"),
		&Event{ToolCalls: []string{"late_tool"}},
	)

	assert.Equal(t, "hi", res.Response)
	assert.Empty(t, res.ToolCalls)
}

func TestDrain_TerminalContentIgnored(t *testing.T) {
	res := drain(t,
		Text("a"),
		&Event{Terminal: true, Parts: []Part{TextPart{Text: "b"}}, ToolCalls: []string{"x"}},
	)

	assert.Equal(t, "a", res.Response)
	assert.Empty(t, res.ToolCalls)
}

func TestDrain_EmptyTurn(t *testing.T) {
	res := drain(t)

	assert.Equal(t, "", res.Response)
	require.NotNil(t, res.Thoughts)
	require.NotNil(t, res.ToolCalls)
	assert.Len(t, res.Thoughts, 0)
	assert.Len(t, res.ToolCalls, 0)
}

func TestDrain_PreservesOrder(t *testing.T) {
	res := drain(t,
		Thought("t1"),
		Text("r1"),
		Thought("t2"),
		Text("r2"),
	)

	assert.Equal(t, []string{"t1", "t2"}, res.Thoughts)
	assert.Equal(t, "r1r2", res.Response)
}

func TestDrain_SkipsNilEventsAndParts(t *testing.T) {
	res := drain(t,
		nil,
		&Event{Parts: []Part{nil, TextPart{Text: "ok"}, (*TextPart)(nil)}},
		&Event{Parts: []Part{ThoughtPart{}, TextPart{}}},
		&Event{Parts: []Part{FunctionCallPart{}}},
		Done(),
	)

	assert.Equal(t, "ok", res.Response)
	assert.Empty(t, res.Thoughts)
	assert.Empty(t, res.ToolCalls)
}

func TestDrain_PointerParts(t *testing.T) {
	res := drain(t,
		&Event{Parts: []Part{&ThoughtPart{Text: "hmm"}, &TextPart{Text: "yes"}, &FunctionCallPart{Name: "play"}}},
	)

	assert.Equal(t, "yes", res.Response)
	assert.Equal(t, []string{"hmm"}, res.Thoughts)
	assert.Equal(t, []string{"play"}, res.ToolCalls)
}

func TestDrain_NoTerminalIsNormalEnd(t *testing.T) {
	res, err := Drain(context.Background(), FromEvents(nil, Text("partial")))
	require.NoError(t, err)
	assert.Equal(t, "partial", res.Response)
}

func TestDrain_SourceErrorPropagatesUnmodified(t *testing.T) {
	boom := errors.New("model unavailable")

	_, err := Drain(context.Background(), FromEvents(boom, Text("a")))

	require.Error(t, err)
	assert.True(t, err == boom, "error must be returned as-is, got %v", err)
}

func TestDrain_CancelledContext(t *testing.T) {
	p := NewPipe(0)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		_, err := Drain(ctx, p)
		done <- err
	}()

	require.True(t, p.Emit(context.Background(), Text("first")))
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("Drain did not return after cancellation")
	}

	// Drain closes the source; the producer is released.
	assert.False(t, p.Emit(context.Background(), Text("late")))
}

func TestAggregate_Channel(t *testing.T) {
	ch := make(chan *Event, 4)
	ch <- Thought("t")
	ch <- Text("r")
	ch <- Done()
	ch <- Text("never")

	res, err := Aggregate(context.Background(), ch)
	require.NoError(t, err)
	assert.Equal(t, "r", res.Response)
	assert.Equal(t, []string{"t"}, res.Thoughts)
}

func TestAggregator_AddAfterDone(t *testing.T) {
	agg := NewAggregator()
	assert.True(t, agg.Add(Text("x")))
	assert.False(t, agg.Add(Done()))
	assert.True(t, agg.Done())
	assert.False(t, agg.Add(Text("y")))
	assert.Equal(t, "x", agg.Result().Response)
}

func TestToolSet(t *testing.T) {
	s := NewToolSet()
	assert.True(t, s.Add("a"))
	assert.True(t, s.Add("b"))
	assert.False(t, s.Add("a"))
	assert.False(t, s.Add(""))
	assert.True(t, s.Has("b"))
	assert.Equal(t, 2, s.Len())

	names := s.Names()
	names[0] = "mutated"
	assert.Equal(t, []string{"a", "b"}, s.Names())
}
