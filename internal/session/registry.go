// Package session keeps conversations alive between requests.
//
// A Registry maps a session id to an Entry: the conversation history plus the
// run settings the agent uses for it. Entries are created on first contact
// through a Factory and live until they expire, are evicted for capacity, or
// are evicted explicitly. Nothing is persisted; a restart starts fresh.
package session

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/jarvis-assistant/jarvis/internal/schema"
)

// ErrNotFound is returned when an id has no live entry.
var ErrNotFound = errors.New("session not found")

// IDPrefix starts every generated session id.
const IDPrefix = "session_"

// NewID returns a random, URL- and JSON-safe session id.
func NewID() string {
	return IDPrefix + uuid.NewString()
}

// Entry is what the registry stores per session id.
type Entry struct {
	ID        string
	Session   *Session
	Settings  schema.AgentSettings
	CreatedAt time.Time

	lastUsed time.Time // guarded by the owning registry's mu
}

// Factory builds the entry for an id seen for the first time.
type Factory interface {
	NewEntry(ctx context.Context, id string) (*Entry, error)
}

// FactoryFunc adapts a function to Factory.
type FactoryFunc func(ctx context.Context, id string) (*Entry, error)

func (f FactoryFunc) NewEntry(ctx context.Context, id string) (*Entry, error) { return f(ctx, id) }

// Registry is the session store seen by the HTTP boundary and the CLI.
type Registry interface {
	Get(id string) (*Entry, bool)
	GetOrCreate(ctx context.Context, id string) (*Entry, error)
	Evict(id string) bool
}

// Option configures a MemoryRegistry.
type Option func(*MemoryRegistry)

// WithTTL expires entries idle for longer than ttl. Zero disables expiry.
func WithTTL(ttl time.Duration) Option {
	return func(r *MemoryRegistry) { r.ttl = ttl }
}

// WithMaxEntries bounds the number of live entries; the least recently used
// one is evicted to make room. Zero means unbounded.
func WithMaxEntries(n int) Option {
	return func(r *MemoryRegistry) { r.maxEntries = n }
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(r *MemoryRegistry) { r.now = now }
}

// pending is an in-flight factory call that other callers wait on.
type pending struct {
	done  chan struct{}
	entry *Entry
	err   error
}

// MemoryRegistry is a mutex-guarded in-memory Registry.
type MemoryRegistry struct {
	factory    Factory
	ttl        time.Duration
	maxEntries int
	now        func() time.Time

	mu       sync.Mutex
	entries  map[string]*Entry
	inflight map[string]*pending
}

var _ Registry = (*MemoryRegistry)(nil)

// NewRegistry returns an empty registry that builds entries with factory.
func NewRegistry(factory Factory, opts ...Option) *MemoryRegistry {
	r := &MemoryRegistry{
		factory:  factory,
		now:      time.Now,
		entries:  make(map[string]*Entry),
		inflight: make(map[string]*pending),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Get returns the live entry for id and marks it used.
func (r *MemoryRegistry) Get(id string) (*Entry, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.getLocked(id)
}

func (r *MemoryRegistry) getLocked(id string) (*Entry, bool) {
	e, ok := r.entries[id]
	if !ok {
		return nil, false
	}
	now := r.now()
	if r.expired(e, now) {
		delete(r.entries, id)
		slog.Debug("session expired", "session_id", id)
		return nil, false
	}
	e.lastUsed = now
	return e, true
}

// GetOrCreate returns the entry for id, creating it on first contact.
// Concurrent callers for the same new id share one factory call. A factory
// error is returned unmodified and nothing is stored.
func (r *MemoryRegistry) GetOrCreate(ctx context.Context, id string) (*Entry, error) {
	if id == "" {
		return nil, errors.New("empty session id")
	}

	r.mu.Lock()
	if e, ok := r.getLocked(id); ok {
		r.mu.Unlock()
		return e, nil
	}
	if p, ok := r.inflight[id]; ok {
		r.mu.Unlock()
		select {
		case <-p.done:
			return p.entry, p.err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	p := &pending{done: make(chan struct{})}
	r.inflight[id] = p
	r.mu.Unlock()

	e, err := r.factory.NewEntry(ctx, id)
	if err == nil && e == nil {
		err = errors.Errorf("session factory returned no entry for %s", id)
	}

	r.mu.Lock()
	delete(r.inflight, id)
	if err == nil {
		e.ID = id
		now := r.now()
		if e.CreatedAt.IsZero() {
			e.CreatedAt = now
		}
		e.lastUsed = now
		r.entries[id] = e
		r.evictOverflowLocked(id)
		slog.Info("session created", "session_id", id, "sessions", len(r.entries))
	}
	r.mu.Unlock()

	p.entry, p.err = e, err
	if err != nil {
		p.entry = nil
	}
	close(p.done)
	return p.entry, p.err
}

// Evict removes id. It reports whether an entry was removed.
func (r *MemoryRegistry) Evict(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[id]; !ok {
		return false
	}
	delete(r.entries, id)
	return true
}

// Sweep removes every entry idle past the TTL as of now and returns how many
// were removed.
func (r *MemoryRegistry) Sweep(now time.Time) int {
	if r.ttl <= 0 {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for id, e := range r.entries {
		if r.expired(e, now) {
			delete(r.entries, id)
			n++
		}
	}
	return n
}

// Len returns the number of stored entries, expired ones included until the
// next sweep.
func (r *MemoryRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// IDs returns the stored ids, most recently used first.
func (r *MemoryRegistry) IDs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	ids := make([]string, 0, len(r.entries))
	for id := range r.entries {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		return r.entries[ids[i]].lastUsed.After(r.entries[ids[j]].lastUsed)
	})
	return ids
}

func (r *MemoryRegistry) expired(e *Entry, now time.Time) bool {
	return r.ttl > 0 && now.Sub(e.lastUsed) > r.ttl
}

// evictOverflowLocked drops least recently used entries above maxEntries,
// never keep.
func (r *MemoryRegistry) evictOverflowLocked(keep string) {
	if r.maxEntries <= 0 {
		return
	}
	for len(r.entries) > r.maxEntries {
		var (
			oldestID string
			oldest   time.Time
		)
		for id, e := range r.entries {
			if id == keep {
				continue
			}
			if oldestID == "" || e.lastUsed.Before(oldest) {
				oldestID, oldest = id, e.lastUsed
			}
		}
		delete(r.entries, oldestID)
		slog.Info("session evicted", "session_id", oldestID, "reason", "capacity")
	}
}
