package cmdutils

import (
	"fmt"
	"strings"

	"github.com/jarvis-assistant/jarvis/internal/shared/llmutils"
	"github.com/jarvis-assistant/jarvis/internal/turn"
)

const logo = "🤖"

// PrintResult writes a turn result to stdout: thoughts and tools first as
// arrow-prefixed hints, then the response text.
func PrintResult(res turn.Result) {
	for _, th := range res.Thoughts {
		fmt.Printf("  ↳ thinking: %s\n", oneLine(th, 200))
	}
	if len(res.ToolCalls) > 0 {
		fmt.Printf("  ↳ tools: %s\n", strings.Join(res.ToolCalls, ", "))
	}
	PrintResponse(res.Response)
}

// PrintResponse writes the visible reply.
func PrintResponse(text string) {
	if text == "" {
		return
	}
	fmt.Printf("\n%s jarvis\n%s\n\n", logo, text)
}

// PrintProgress writes the thoughts and tool activity of one event as it
// arrives. Text parts are left for PrintResponse.
func PrintProgress(ev *turn.Event) {
	if ev == nil || ev.Terminal {
		return
	}
	for _, p := range ev.Parts {
		switch part := p.(type) {
		case turn.ThoughtPart:
			fmt.Printf("  ↳ thinking: %s\n", oneLine(part.Text, 200))
		case turn.FunctionCallPart:
			fmt.Printf("  ↳ calling %s\n", part.Name)
		case turn.FunctionResponsePart:
			fmt.Printf("  ↳ %s: %s\n", part.Name, oneLine(part.Response, 120))
		}
	}
}

func oneLine(s string, n int) string {
	return llmutils.Truncate(strings.Join(strings.Fields(s), " "), n)
}
