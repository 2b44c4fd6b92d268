package agent

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jarvis-assistant/jarvis/internal/schema"
	"github.com/jarvis-assistant/jarvis/internal/session"
	"github.com/jarvis-assistant/jarvis/internal/tools"
	"github.com/jarvis-assistant/jarvis/internal/turn"
)

// scriptedProvider replies with the next scripted response on every call and
// records the conversation it was given.
type scriptedProvider struct {
	mu      sync.Mutex
	replies []schema.LLMResponse
	err     error
	calls   []schema.Messages
	block   chan struct{} // when set, Chat waits for ctx
}

func (p *scriptedProvider) Chat(ctx context.Context, msgs schema.Messages, _ []map[string]any, _ schema.ChatOptions) (schema.LLMResponse, error) {
	p.mu.Lock()
	p.calls = append(p.calls, msgs.Clone())
	block := p.block
	p.mu.Unlock()

	if block != nil {
		close(block)
		<-ctx.Done()
		return schema.LLMResponse{}, ctx.Err()
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return schema.LLMResponse{}, p.err
	}
	if len(p.replies) == 0 {
		return schema.LLMResponse{Content: "out of script"}, nil
	}
	r := p.replies[0]
	if len(p.replies) > 1 {
		p.replies = p.replies[1:]
	}
	return r, nil
}

func (p *scriptedProvider) DefaultModel() string { return "test-model" }

func (p *scriptedProvider) lastCall() schema.Messages {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls[len(p.calls)-1]
}

type recordingPublisher struct {
	mu     sync.Mutex
	events map[string][]*turn.Event
}

func (r *recordingPublisher) Publish(id string, ev *turn.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.events == nil {
		r.events = map[string][]*turn.Event{}
	}
	r.events[id] = append(r.events[id], ev)
	return nil
}

var fixedNow = time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)

func newTestAgent(p schema.LLMProvider, opts ...Option) *Agent {
	tls := tools.NewDefaultToolList(tools.Options{
		Workspace: "/tmp/jarvis-test",
		Now:       func() time.Time { return fixedNow },
	})
	opts = append([]Option{WithClock(func() time.Time { return fixedNow })}, opts...)
	return New(p, tls, DefaultProfile(), "/tmp/jarvis-test", opts...)
}

func newEntry(t *testing.T) *session.Entry {
	t.Helper()
	f := NewSessionFactory(schema.NewAgentSettings("test-model", 5, 0, 1024, 50), DefaultProfile())
	e, err := f.NewEntry(context.Background(), session.NewID())
	require.NoError(t, err)
	return e
}

func TestAsk_TextReply(t *testing.T) {
	p := &scriptedProvider{replies: []schema.LLMResponse{
		{Content: "<think>user says hi</think>Hello there!"},
	}}
	a := newTestAgent(p)
	e := newEntry(t)

	res, err := a.Ask(context.Background(), e, "hi")
	require.NoError(t, err)
	assert.Equal(t, "Hello there!", res.Response)
	assert.Equal(t, []string{"user says hi"}, res.Thoughts)
	assert.Empty(t, res.ToolCalls)

	// The user message and reply are stored once the turn ends.
	require.Eventually(t, func() bool { return e.Session.Len() == 2 }, time.Second, 5*time.Millisecond)
	h := e.Session.History(0)
	assert.Equal(t, schema.RoleUser, h.Messages[0].Role)
	assert.Equal(t, "hi", h.Messages[0].Content)
	assert.Equal(t, "Hello there!", h.Messages[1].Content)
}

func TestAsk_InstructionAndHistory(t *testing.T) {
	p := &scriptedProvider{replies: []schema.LLMResponse{{Content: "one"}, {Content: "two"}}}
	a := newTestAgent(p)
	e := newEntry(t)

	_, err := a.Ask(context.Background(), e, "first")
	require.NoError(t, err)
	require.Eventually(t, func() bool { return e.Session.Len() == 2 }, time.Second, 5*time.Millisecond)

	_, err = a.Ask(context.Background(), e, "second")
	require.NoError(t, err)

	msgs := p.lastCall().Messages
	require.Len(t, msgs, 4)
	assert.Equal(t, schema.RoleSystem, msgs[0].Role)
	assert.Contains(t, msgs[0].Content, "You are Jarvis")
	assert.Contains(t, msgs[0].Content, "Today's date is Friday, 2025-03-14 09:30 UTC.")
	assert.Equal(t, "first", msgs[1].Content)
	assert.Equal(t, "one", msgs[2].Content)
	assert.Equal(t, "second", msgs[3].Content)
}

func TestAsk_ToolCalls(t *testing.T) {
	p := &scriptedProvider{replies: []schema.LLMResponse{
		{
			Content:          "Let me check. ",
			ReasoningContent: "need the time",
			ToolCalls: []schema.ToolCallRequest{
				{ID: "c1", Name: "get_current_time", Arguments: map[string]any{}},
				{ID: "c2", Name: "no_such_tool", Arguments: map[string]any{"x": "y"}},
			},
		},
		{Content: "It is 09:30."},
	}}
	a := newTestAgent(p)
	e := newEntry(t)

	res, err := a.Ask(context.Background(), e, "what time is it?")
	require.NoError(t, err)
	assert.Equal(t, "Let me check.It is 09:30.", res.Response)
	assert.Equal(t, []string{"need the time"}, res.Thoughts)
	assert.Equal(t, []string{"get_current_time", "no_such_tool"}, res.ToolCalls)

	msgs := p.lastCall().Messages
	var results []schema.Message
	for _, m := range msgs {
		if m.Role == schema.RoleTool {
			results = append(results, m)
		}
	}
	require.Len(t, results, 2)
	assert.Contains(t, results[0].Content, "2025-03-14")
	assert.Equal(t, "Error: Tool 'no_such_tool' not found", results[1].Content)
}

func TestAsk_ModelError(t *testing.T) {
	p := &scriptedProvider{err: errors.New("LLM rate limit exceeded")}
	a := newTestAgent(p)
	e := newEntry(t)

	_, err := a.Ask(context.Background(), e, "hi")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "LLM rate limit exceeded")
	assert.Equal(t, 0, e.Session.Len())
}

func TestAsk_MaxIterations(t *testing.T) {
	p := &scriptedProvider{replies: []schema.LLMResponse{{
		ToolCalls: []schema.ToolCallRequest{{ID: "c", Name: "get_current_time", Arguments: map[string]any{}}},
	}}}
	a := newTestAgent(p)
	e := newEntry(t)
	e.Settings.MaxIter = 2

	res, err := a.Ask(context.Background(), e, "loop")
	require.NoError(t, err)
	assert.Equal(t, maxIterationsReply, res.Response)
	assert.Len(t, p.calls, 2)
}

func TestStream_Publishes(t *testing.T) {
	p := &scriptedProvider{replies: []schema.LLMResponse{{Content: "hey"}}}
	pub := &recordingPublisher{}
	a := newTestAgent(p, WithPublisher(pub))
	e := newEntry(t)

	_, err := a.Ask(context.Background(), e, "hi")
	require.NoError(t, err)

	pub.mu.Lock()
	defer pub.mu.Unlock()
	evs := pub.events[e.ID]
	require.Len(t, evs, 2)
	assert.Equal(t, []turn.Part{turn.TextPart{Text: "hey"}}, evs[0].Parts)
	assert.True(t, evs[1].Terminal)
}

func TestStream_CloseStopsRun(t *testing.T) {
	started := make(chan struct{})
	p := &scriptedProvider{block: started}
	a := newTestAgent(p)
	e := newEntry(t)

	src := a.Stream(context.Background(), e, "hi")
	<-started
	require.NoError(t, src.Close())

	select {
	case _, ok := <-src.Events():
		assert.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("turn did not stop after Close")
	}
	assert.ErrorIs(t, src.Err(), context.Canceled)
	assert.Equal(t, 0, e.Session.Len())
}

type countingConnector struct {
	mu    sync.Mutex
	calls int
}

func (c *countingConnector) ConnectOnce(_ context.Context, ts schema.ToolRegistrar) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
}

func TestAsk_ConnectsBeforeTurn(t *testing.T) {
	p := &scriptedProvider{replies: []schema.LLMResponse{{Content: "ok"}}}
	conn := &countingConnector{}
	a := newTestAgent(p, WithConnector(conn))

	_, err := a.Ask(context.Background(), newEntry(t), "hi")
	require.NoError(t, err)
	assert.Equal(t, 1, conn.calls)
}

func TestSessionFactory_ProfileModel(t *testing.T) {
	prof := DefaultProfile()
	prof.Model = "openai/gpt-4o-mini"
	f := NewSessionFactory(schema.NewAgentSettings("gemini/gemini-2.5-flash-lite", 20, 0.7, 8192, 50), prof)

	e, err := f.NewEntry(context.Background(), "session_x")
	require.NoError(t, err)
	assert.Equal(t, "session_x", e.ID)
	assert.Equal(t, "session_x", e.Session.ID)
	assert.Equal(t, "openai/gpt-4o-mini", e.Settings.Model)
	assert.Equal(t, 50, e.Settings.HistoryWindow)
}
