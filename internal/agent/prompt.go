package agent

import (
	"fmt"
	"strings"
	"time"

	"github.com/jarvis-assistant/jarvis/internal/schema"
)

// dateLayout is how the current time appears in the instruction.
const dateLayout = "Monday, 2006-01-02 15:04 MST"

// BuildInstruction assembles the system prompt: the profile instruction,
// today's date and the workspace location.
func BuildInstruction(p Profile, now time.Time, workspace string) string {
	var sb strings.Builder
	sb.WriteString(strings.TrimSpace(p.Instruction))
	fmt.Fprintf(&sb, "\n\nToday's date is %s.", now.Format(dateLayout))
	if workspace != "" {
		fmt.Fprintf(&sb, "\nYour workspace for files is %s; relative paths resolve there.", workspace)
	}
	return sb.String()
}

// BuildMessages returns the message list for one turn: system prompt,
// prior history, then the new user message.
func BuildMessages(system string, history schema.Messages, userMessage string) schema.Messages {
	msgs := schema.NewMessages()
	msgs.AddSystem(system)
	msgs.Append(history)
	msgs.AddUser(userMessage)
	return msgs
}
