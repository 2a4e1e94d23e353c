package sqlite

import "time"

// DefaultBusyTimeout is used when Config.BusyTimeout is zero.
const DefaultBusyTimeout = 5 * time.Second

// Config captures SQLite store configuration.
type Config struct {
	// Path is the database location or ":memory:" for a private in-memory database.
	Path string

	// BusyTimeout configures sqlite busy timeout via PRAGMA busy_timeout.
	BusyTimeout time.Duration
}

func (c Config) busyTimeout() time.Duration {
	if c.BusyTimeout <= 0 {
		return DefaultBusyTimeout
	}

	return c.BusyTimeout
}

func (c Config) inMemory() bool {
	return c.Path == ":memory:"
}
