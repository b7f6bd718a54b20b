// Package cli holds the state shared by every versecue command.
package cli

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/julianstephens/versecue/internal/calendar"
	"github.com/julianstephens/versecue/internal/config"
	"github.com/julianstephens/versecue/internal/copycatalog"
	"github.com/julianstephens/versecue/internal/keyring"
	"github.com/julianstephens/versecue/internal/lockfile"
	"github.com/julianstephens/versecue/internal/notifier"
	"github.com/julianstephens/versecue/internal/scheduler"
	"github.com/julianstephens/versecue/internal/storage"
	"github.com/julianstephens/versecue/internal/storage/postgres"
	"github.com/julianstephens/versecue/internal/storage/sqlite"
)

type Context struct {
	Config     *config.Config
	ConfigPath string
	Store      storage.Provider
	Repo       *storage.Repository
	Calendar   *calendar.Calendar
	Local      *notifier.LocalScheduler
	Engine     *scheduler.Engine
	Runner     *scheduler.Runner
	Now        func() time.Time
}

type ContextOption func(*Context)

// WithNow replaces the wall clock used by the engine and the dispatcher.
func WithNow(now func() time.Time) ContextOption {
	return func(c *Context) { c.Now = now }
}

// NewContext wires the engine over store. The store is not loaded.
func NewContext(cfg *config.Config, store storage.Provider, opts ...ContextOption) (*Context, error) {
	c := &Context{Config: cfg, Store: store, Now: time.Now}
	for _, opt := range opts {
		opt(c)
	}

	cal, err := cfg.Calendar()
	if err != nil {
		return nil, err
	}
	sel, err := cfg.NewSelector()
	if err != nil {
		return nil, err
	}
	grace, err := cfg.GracePeriod()
	if err != nil {
		return nil, err
	}

	c.Calendar = cal
	c.Repo = storage.NewRepository(store)
	c.Local = notifier.NewLocalScheduler(store,
		notifier.WithRateLimit(cfg.Dispatch.RatePerSecond, cfg.Dispatch.Burst),
		notifier.WithGracePeriod(grace),
	)
	c.Engine = scheduler.NewEngine(c.Repo, c.Local, cal,
		scheduler.WithClock(func() time.Time { return c.Now() }),
		scheduler.WithSelector(sel),
		scheduler.WithCatalog(copycatalog.New(sel)),
	)
	c.Runner = scheduler.NewRunner(c.Engine)
	return c, nil
}

// IsPostgres reports whether database names a PostgreSQL URI or DSN.
func IsPostgres(database string) bool {
	return strings.HasPrefix(database, "postgres://") ||
		strings.HasPrefix(database, "postgresql://") ||
		strings.Contains(database, "host=")
}

// OpenStore picks the backend for database: PostgreSQL for a connection
// string or the keyring reference, a JSON document for *.json paths and
// SQLite otherwise.
func OpenStore(database string) (storage.Provider, error) {
	fromKeyring := database == keyring.Reference
	resolved, err := keyring.Resolve(database)
	if err != nil {
		return nil, err
	}

	if fromKeyring || IsPostgres(resolved) {
		if valid, err := postgres.ValidateConnString(resolved); !valid {
			// The keyring is an acceptable home for a password.
			if !(fromKeyring && errors.Is(err, postgres.ErrEmbeddedCredentials)) {
				return nil, err
			}
		}
		return postgres.New(resolved), nil
	}

	path, err := config.ExpandPath(resolved)
	if err != nil {
		return nil, err
	}
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return storage.NewJSONStore(path), nil
	}
	return sqlite.NewStore(path), nil
}

// Lock takes the state directory lock shared by every mutating command.
func (c *Context) Lock() (*lockfile.Lock, error) {
	dir, err := c.Config.ResolvedStateDir()
	if err != nil {
		return nil, err
	}
	lock, err := lockfile.Acquire(dir)
	if err != nil {
		return nil, fmt.Errorf("state directory busy: %w", err)
	}
	return lock, nil
}

// CurrentStreak returns the last streak handed to the engine while it is
// still alive: the last completion was today or yesterday. Otherwise the
// streak has lapsed and 0 is returned.
func (c *Context) CurrentStreak() (int, error) {
	streak, err := c.Repo.LastStreakCount()
	if err != nil {
		return 0, err
	}
	last, err := c.Repo.LastCompletionDate()
	if err != nil {
		return 0, err
	}
	if last == "" {
		return 0, nil
	}
	gap, err := calendar.DaysBetween(last, c.Calendar.Today(c.Now()))
	if err != nil || gap > 1 {
		return 0, nil
	}
	return streak, nil
}
