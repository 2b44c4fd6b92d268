package session

import (
	"sync"
	"time"

	"github.com/jarvis-assistant/jarvis/internal/schema"
)

// Session holds one conversation's messages. Turns on the same session run
// one at a time: the agent holds the turn lock for the whole turn.
type Session struct {
	ID        string
	CreatedAt time.Time
	UpdatedAt time.Time

	messages schema.Messages

	mu   sync.Mutex // guards messages and UpdatedAt
	turn sync.Mutex
}

// New returns an empty Session.
func New(id string) *Session {
	now := time.Now()
	return &Session{
		ID:        id,
		CreatedAt: now,
		UpdatedAt: now,
		messages:  schema.NewMessages(),
	}
}

// BeginTurn blocks until no other turn is running on the session.
// The returned func ends the turn.
func (s *Session) BeginTurn() (end func()) {
	s.turn.Lock()
	return s.turn.Unlock
}

// AddUser appends a user message to the session.
func (s *Session) AddUser(content string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages.AddUser(content)
	s.UpdatedAt = time.Now()
}

// AddAssistant appends an assistant message to the session.
func (s *Session) AddAssistant(content string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages.AddAssistant(content, nil, "")
	s.UpdatedAt = time.Now()
}

// History returns the last maxMessages messages for the LLM.
func (s *Session) History(maxMessages int) schema.Messages {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.messages.Tail(maxMessages)
}

// Len returns the number of messages in the session.
func (s *Session) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.messages.Len()
}

// Clear drops the conversation history.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = schema.NewMessages()
	s.UpdatedAt = time.Now()
}
