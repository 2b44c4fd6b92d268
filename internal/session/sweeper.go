package session

import (
	"context"
	"log/slog"

	"github.com/pkg/errors"
	robfigcron "github.com/robfig/cron/v3"
)

// Sweeper periodically drops expired entries from a MemoryRegistry.
type Sweeper struct {
	registry *MemoryRegistry
	schedule string
	cron     *robfigcron.Cron
}

// NewSweeper validates schedule (a robfig/cron spec such as "@every 1m")
// and returns a sweeper for r.
func NewSweeper(r *MemoryRegistry, schedule string) (*Sweeper, error) {
	if schedule == "" {
		schedule = "@every 1m"
	}
	c := robfigcron.New()
	if _, err := c.AddFunc(schedule, func() {
		if n := r.Sweep(r.now()); n > 0 {
			slog.Info("session sweep", "expired", n, "remaining", r.Len())
		}
	}); err != nil {
		return nil, errors.Wrapf(err, "invalid sweep schedule %q", schedule)
	}
	return &Sweeper{registry: r, schedule: schedule, cron: c}, nil
}

// Start runs the sweep schedule. Blocks until ctx is cancelled.
func (s *Sweeper) Start(ctx context.Context) error {
	s.cron.Start()
	slog.Info("session sweeper: started", "schedule", s.schedule, "ttl", s.registry.ttl)

	<-ctx.Done()

	<-s.cron.Stop().Done()
	return ctx.Err()
}
