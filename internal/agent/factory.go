package agent

import (
	"context"
	"time"

	"github.com/jarvis-assistant/jarvis/internal/schema"
	"github.com/jarvis-assistant/jarvis/internal/session"
)

// SessionFactory creates registry entries: a fresh conversation with the
// run settings every session starts from.
type SessionFactory struct {
	settings schema.AgentSettings
	now      func() time.Time
}

// NewSessionFactory returns a factory whose entries use settings. A model
// set in the profile overrides the configured one.
func NewSessionFactory(settings schema.AgentSettings, profile Profile) *SessionFactory {
	if profile.Model != "" {
		settings.Model = profile.Model
	}
	return &SessionFactory{settings: settings, now: time.Now}
}

// Settings returns the settings new sessions receive.
func (f *SessionFactory) Settings() schema.AgentSettings { return f.settings }

// NewEntry implements session.Factory.
func (f *SessionFactory) NewEntry(_ context.Context, id string) (*session.Entry, error) {
	return &session.Entry{
		ID:        id,
		Session:   session.New(id),
		Settings:  f.settings,
		CreatedAt: f.now(),
	}, nil
}
