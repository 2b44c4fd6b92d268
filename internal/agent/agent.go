// Package agent runs Jarvis conversation turns: it builds the prompt from
// the persona and session history, drives the LLM ↔ tool loop and streams
// the turn as events.
package agent

import (
	"context"
	"log/slog"
	"time"

	"github.com/pkg/errors"

	"github.com/jarvis-assistant/jarvis/internal/schema"
	"github.com/jarvis-assistant/jarvis/internal/session"
	"github.com/jarvis-assistant/jarvis/internal/tools"
	"github.com/jarvis-assistant/jarvis/internal/turn"
)

// streamBuffer is how many events a turn may run ahead of its consumer.
const streamBuffer = 32

// Connector attaches runtime tools (MCP servers) before the first turn.
type Connector interface {
	ConnectOnce(ctx context.Context, ts schema.ToolRegistrar)
}

// Publisher mirrors turn events to observers such as websocket clients.
type Publisher interface {
	Publish(sessionID string, ev *turn.Event) error
}

// Agent runs turns for any session. It is safe for concurrent use; turns on
// the same session are serialised.
type Agent struct {
	runner    *Runner
	tools     *tools.ToolList
	profile   Profile
	workspace string

	connector Connector
	publisher Publisher
	now       func() time.Time
}

// Option configures an Agent.
type Option func(*Agent)

// WithConnector connects MCP servers lazily on the first turn.
func WithConnector(c Connector) Option { return func(a *Agent) { a.connector = c } }

// WithPublisher mirrors every event to p.
func WithPublisher(p Publisher) Option { return func(a *Agent) { a.publisher = p } }

// WithClock replaces time.Now in the instruction, for tests.
func WithClock(now func() time.Time) Option { return func(a *Agent) { a.now = now } }

func New(provider schema.LLMProvider, tls *tools.ToolList, profile Profile, workspace string, opts ...Option) *Agent {
	a := &Agent{
		runner:    NewRunner(provider),
		tools:     tls,
		profile:   profile,
		workspace: workspace,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Profile returns the persona the agent runs with.
func (a *Agent) Profile() Profile { return a.profile }

// Tools returns the live tool list, including connected MCP tools.
func (a *Agent) Tools() *tools.ToolList { return a.tools }

// Stream starts a turn for message on entry and returns its event stream.
// Cancelling ctx or closing the source stops the run. On success the user
// message and the final reply are appended to the session history.
func (a *Agent) Stream(ctx context.Context, entry *session.Entry, message string) turn.Source {
	pipe := turn.NewPipe(streamBuffer)
	go a.run(ctx, pipe, entry, message)
	return pipe
}

// Ask runs one turn to completion and folds it into a Result.
func (a *Agent) Ask(ctx context.Context, entry *session.Entry, message string) (turn.Result, error) {
	return turn.Drain(ctx, a.Stream(ctx, entry, message))
}

func (a *Agent) run(ctx context.Context, pipe *turn.Pipe, entry *session.Entry, message string) {
	var err error
	defer func() { pipe.Finish(err) }()
	defer func() {
		if r := recover(); r != nil {
			slog.Error("agent turn panicked", "session", entry.ID, "panic", r)
			err = errors.Errorf("agent panic: %v", r)
		}
	}()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case <-pipe.Stopped():
			cancel()
		case <-ctx.Done():
		}
	}()

	err = a.turn(ctx, pipe, entry, message)
	if err != nil && !errors.Is(err, errStopped) {
		slog.Warn("agent turn failed", "session", entry.ID, "err", err)
	}
}

func (a *Agent) turn(ctx context.Context, pipe *turn.Pipe, entry *session.Entry, message string) error {
	end := entry.Session.BeginTurn()
	defer end()

	if a.connector != nil {
		a.connector.ConnectOnce(ctx, a.tools)
	}

	slog.Info("Processing message", "session", entry.ID, "preview", preview(message))

	system := BuildInstruction(a.profile, a.now(), a.workspace)
	conv := BuildMessages(system, entry.Session.History(entry.Settings.HistoryWindow), message)

	emit := func(ev *turn.Event) bool {
		if a.publisher != nil {
			if err := a.publisher.Publish(entry.ID, ev); err != nil {
				slog.Debug("publish turn event failed", "session", entry.ID, "err", err)
			}
		}
		return pipe.Emit(ctx, ev)
	}

	reply, err := a.runner.Run(ctx, entry.Settings, conv, a.tools, emit)
	if err != nil {
		return err
	}

	entry.Session.AddUser(message)
	entry.Session.AddAssistant(reply)
	return nil
}

func preview(s string) string {
	const n = 80
	r := []rune(s)
	if len(r) > n {
		return string(r[:n]) + "..."
	}
	return s
}
