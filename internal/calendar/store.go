// Package calendar is the local event store behind the calendar tools and
// the `jarvis calendar` command.
//
// Events are persisted as indented JSON:
//
//	{ "version": 1, "events": [ { "id":"…", "title":"…",
//	    "start":"2026-10-19T09:00:00+02:00", "end":"…",
//	    "location":"…", "description":"…",
//	    "createdAtMs":…, "updatedAtMs":… } ] }
package calendar

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// ErrNotFound is returned for an unknown event id.
var ErrNotFound = errors.New("event not found")

// DefaultDuration is used when an event is created without an end.
const DefaultDuration = time.Hour

type Event struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	Location    string    `json:"location,omitempty"`
	Description string    `json:"description,omitempty"`
	CreatedAtMs int64     `json:"createdAtMs"`
	UpdatedAtMs int64     `json:"updatedAtMs"`
}

// Overlaps reports whether e intersects [from, to). A zero bound is open.
func (e Event) Overlaps(from, to time.Time) bool {
	if !from.IsZero() && !e.End.After(from) {
		return false
	}
	if !to.IsZero() && !e.Start.Before(to) {
		return false
	}
	return true
}

// Patch lists the fields to change on an event; nil fields are kept.
type Patch struct {
	Title       *string
	Start       *time.Time
	End         *time.Time
	Location    *string
	Description *string
}

type storeFile struct {
	Version int     `json:"version"`
	Events  []Event `json:"events"`
}

// Store is a mutex-guarded calendar persisted to a single JSON file.
type Store struct {
	path string
	now  func() time.Time

	mu     sync.Mutex
	data   storeFile
	loaded bool
}

// NewStore returns a Store backed by path. Nothing is read until first use.
func NewStore(path string) *Store {
	return &Store{path: path, now: time.Now}
}

// Path returns the backing file.
func (s *Store) Path() string { return s.path }

// List returns events overlapping [from, to), ordered by start time.
func (s *Store) List(from, to time.Time) ([]Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.loadLocked(); err != nil {
		return nil, err
	}

	out := make([]Event, 0, len(s.data.Events))
	for _, e := range s.data.Events {
		if e.Overlaps(from, to) {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Start.Before(out[j].Start) })
	return out, nil
}

// Get returns the event with id.
func (s *Store) Get(id string) (Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.loadLocked(); err != nil {
		return Event{}, err
	}
	i := s.indexLocked(id)
	if i < 0 {
		return Event{}, errors.Wrap(ErrNotFound, id)
	}
	return s.data.Events[i], nil
}

// Add validates ev, assigns an id and saves it.
func (s *Store) Add(ev Event) (Event, error) {
	ev.Title = strings.TrimSpace(ev.Title)
	if ev.End.IsZero() && !ev.Start.IsZero() {
		ev.End = ev.Start.Add(DefaultDuration)
	}
	if err := validate(ev); err != nil {
		return Event{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.loadLocked(); err != nil {
		return Event{}, err
	}

	now := s.now().UnixMilli()
	ev.ID = newID()
	ev.CreatedAtMs = now
	ev.UpdatedAtMs = now
	s.data.Events = append(s.data.Events, ev)
	if err := s.saveLocked(); err != nil {
		s.data.Events = s.data.Events[:len(s.data.Events)-1]
		return Event{}, err
	}

	slog.Info("calendar: added event", "id", ev.ID, "title", ev.Title, "start", ev.Start)
	return ev, nil
}

// Update applies p to the event with id and saves it.
func (s *Store) Update(id string, p Patch) (Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.loadLocked(); err != nil {
		return Event{}, err
	}
	i := s.indexLocked(id)
	if i < 0 {
		return Event{}, errors.Wrap(ErrNotFound, id)
	}

	old := s.data.Events[i]
	ev := old
	if p.Title != nil {
		ev.Title = strings.TrimSpace(*p.Title)
	}
	if p.Start != nil {
		// Moving the start keeps the duration unless a new end is given.
		ev.End = p.Start.Add(old.End.Sub(old.Start))
		ev.Start = *p.Start
	}
	if p.End != nil {
		ev.End = *p.End
	}
	if p.Location != nil {
		ev.Location = *p.Location
	}
	if p.Description != nil {
		ev.Description = *p.Description
	}
	if err := validate(ev); err != nil {
		return Event{}, err
	}
	ev.UpdatedAtMs = s.now().UnixMilli()

	s.data.Events[i] = ev
	if err := s.saveLocked(); err != nil {
		s.data.Events[i] = old
		return Event{}, err
	}
	return ev, nil
}

// Remove deletes the event with id.
func (s *Store) Remove(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.loadLocked(); err != nil {
		return err
	}
	i := s.indexLocked(id)
	if i < 0 {
		return errors.Wrap(ErrNotFound, id)
	}

	before := s.data.Events
	events := make([]Event, 0, len(before)-1)
	events = append(events, before[:i]...)
	events = append(events, before[i+1:]...)
	s.data.Events = events
	if err := s.saveLocked(); err != nil {
		s.data.Events = before
		return err
	}
	slog.Info("calendar: removed event", "id", id)
	return nil
}

func validate(ev Event) error {
	if ev.Title == "" {
		return errors.New("title is required")
	}
	if ev.Start.IsZero() {
		return errors.New("start is required")
	}
	if !ev.End.After(ev.Start) {
		return errors.Errorf("end %s must be after start %s",
			ev.End.Format(time.RFC3339), ev.Start.Format(time.RFC3339))
	}
	return nil
}

func (s *Store) indexLocked(id string) int {
	for i, e := range s.data.Events {
		if e.ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) loadLocked() error {
	if s.loaded {
		return nil
	}
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		s.data = storeFile{Version: 1}
		s.loaded = true
		return nil
	}
	if err != nil {
		return errors.Wrapf(err, "read calendar %s", s.path)
	}
	var f storeFile
	if err := json.Unmarshal(data, &f); err != nil {
		return errors.Wrapf(err, "parse calendar %s", s.path)
	}
	if f.Version == 0 {
		f.Version = 1
	}
	s.data = f
	s.loaded = true
	return nil
}

func (s *Store) saveLocked() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return errors.Wrap(err, "create calendar dir")
	}
	data, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return errors.Wrap(err, "marshal calendar")
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return errors.Wrapf(err, "write calendar %s", tmp)
	}
	return errors.Wrap(os.Rename(tmp, s.path), "replace calendar file")
}

func newID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}
