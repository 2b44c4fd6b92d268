package session

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jarvis-assistant/jarvis/internal/schema"
)

func TestSession_History(t *testing.T) {
	s := New("s1")
	s.AddUser("one")
	s.AddAssistant("two")
	s.AddUser("three")

	assert.Equal(t, 3, s.Len())

	tail := s.History(2)
	if assert.Equal(t, 2, tail.Len()) {
		assert.Equal(t, schema.RoleAssistant, tail.Messages[0].Role)
		assert.Equal(t, "three", tail.Messages[1].Content)
	}

	// History is a copy.
	tail.Messages[0].Content = "changed"
	assert.Equal(t, "two", s.History(0).Messages[1].Content)

	s.Clear()
	assert.Equal(t, 0, s.Len())
}
