package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/pkg/errors"

	"github.com/jarvis-assistant/jarvis/internal/schema"
	"github.com/jarvis-assistant/jarvis/internal/shared/llmutils"
	"github.com/jarvis-assistant/jarvis/internal/tools"
	"github.com/jarvis-assistant/jarvis/internal/turn"
)

// maxIterationsReply is the final text when the model keeps calling tools.
const maxIterationsReply = "I've reached the maximum number of tool iterations without a final answer."

// errStopped is returned when the consumer of a turn stops listening.
var errStopped = errors.New("turn consumer stopped")

// EmitFunc delivers one event to the consumer of a turn. It returns false
// when the consumer is gone and the run should stop.
type EmitFunc func(*turn.Event) bool

// Runner executes the LLM ↔ tool iteration loop for one turn and reports
// its progress as turn events.
type Runner struct {
	provider schema.LLMProvider
}

func NewRunner(provider schema.LLMProvider) *Runner {
	return &Runner{provider: provider}
}

// Run drives conversation to a final answer. Thoughts, tool calls, tool
// results and visible text are emitted as they happen, followed by exactly
// one terminal event on success. It returns the visible text of the final
// reply. LLM errors end the turn and are returned wrapped.
func (r *Runner) Run(
	ctx context.Context,
	settings schema.AgentSettings,
	conversation schema.Messages,
	tls *tools.ToolList,
	emit EmitFunc,
) (string, error) {
	maxIter := settings.MaxIter
	if maxIter <= 0 {
		maxIter = 20
	}

	for i := 0; i < maxIter; i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		resp, err := r.provider.Chat(ctx,
			conversation,
			tls.Definitions(),
			schema.NewChatOptions(settings.Model, settings.MaxTokens, settings.Temperature),
		)
		if err != nil {
			slog.Error("LLM error", "err", err, "iteration", i)
			return "", errors.Wrap(err, "model call failed")
		}

		thoughts, visible := llmutils.SplitThoughts(resp.Content)
		if rc := resp.ReasoningContent; rc != "" {
			thoughts = append([]string{rc}, thoughts...)
		}

		ev := &turn.Event{}
		for _, th := range thoughts {
			ev.Parts = append(ev.Parts, turn.ThoughtPart{Text: th})
		}
		if visible != "" {
			ev.Parts = append(ev.Parts, turn.TextPart{Text: visible})
		}

		if !resp.HasToolCalls() {
			if len(ev.Parts) > 0 && !emit(ev) {
				return "", errStopped
			}
			if !emit(turn.Done()) {
				return "", errStopped
			}
			return visible, nil
		}

		slog.Info("Tool calls", "hint", llmutils.ToolHint(resp.ToolCalls))

		toolCalls := make([]schema.ToolCall, 0, len(resp.ToolCalls))
		for _, tc := range resp.ToolCalls {
			toolCalls = append(toolCalls, schema.ToolCall{ID: tc.ID, Name: tc.Name, Arguments: tc.Arguments})
			ev.ToolCalls = append(ev.ToolCalls, tc.Name)
			ev.Parts = append(ev.Parts, turn.FunctionCallPart{ID: tc.ID, Name: tc.Name, Args: tc.Arguments})
		}
		if !emit(ev) {
			return "", errStopped
		}

		conversation.AddAssistant(resp.Content, toolCalls, resp.ReasoningContent)

		for _, tc := range resp.ToolCalls {
			result := r.execute(ctx, tls, tc)
			conversation.AddToolResult(tc.ID, tc.Name, result)
			if !emit(&turn.Event{Parts: []turn.Part{
				turn.FunctionResponsePart{ID: tc.ID, Name: tc.Name, Response: result},
			}}) {
				return "", errStopped
			}
		}
	}

	if !emit(turn.Text(maxIterationsReply)) || !emit(turn.Done()) {
		return "", errStopped
	}
	return maxIterationsReply, nil
}

// execute runs one tool call. Tool failures are reported to the model as
// text, never as turn errors.
func (r *Runner) execute(ctx context.Context, tls *tools.ToolList, tc schema.ToolCallRequest) string {
	argsJSON, _ := json.Marshal(tc.Arguments)
	slog.Info("Tool call", "name", tc.Name, "args", llmutils.Truncate(string(argsJSON), 200))

	t := tls.Get(tc.Name)
	if t == nil {
		return fmt.Sprintf("Error: Tool '%s' not found", tc.Name)
	}
	result, err := t.Execute(ctx, tc.Arguments)
	if err != nil {
		slog.Warn("Tool failed", "name", tc.Name, "err", err)
		return "Error: " + err.Error()
	}
	return result
}
