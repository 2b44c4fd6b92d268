package session

// SessionConfig controls how long idle conversations are kept in memory.
type SessionConfig struct {
	// TTLMinutes evicts sessions idle for longer than this. 0 keeps them for
	// the life of the process.
	TTLMinutes int `json:"ttlMinutes"`
	// MaxEntries caps the number of live sessions; the least recently used is
	// evicted first. 0 means unbounded.
	MaxEntries int `json:"maxEntries"`
	// SweepSchedule is a robfig/cron spec for the expiry sweep.
	SweepSchedule string `json:"sweepSchedule"`
}

func DefaultSessionConfig() SessionConfig {
	return SessionConfig{
		TTLMinutes:    120,
		MaxEntries:    1000,
		SweepSchedule: "@every 1m",
	}
}
