package storage

import (
	"context"
	"errors"
	"strings"

	logx "astrobot/pkg/logx"
)

// Store is the persistence API used by the scheduler and listener registry.
//
// Load* methods read every guild's state at startup. A single guild's
// malformed or unreadable state is logged and skipped inside the driver;
// it never fails the whole load.
//
// Save* methods rewrite one guild's state in full and are called
// synchronously after every mutation.
type Store interface {
	LoadSchedules(ctx context.Context) (map[int64]map[string]int64, error)
	SaveSchedules(ctx context.Context, guildID int64, jobs map[string]int64) error

	LoadListeners(ctx context.Context) (map[int64][]int64, error)
	SaveListeners(ctx context.Context, guildID int64, ids []int64) error

	Close() error
}

// Open initializes the configured store.
func Open(cfg Config, log logx.Logger) (Store, error) {
	driver := strings.ToLower(strings.TrimSpace(cfg.Driver))
	if log.IsZero() {
		log = logx.Nop()
	}

	switch driver {
	case "", "file":
		return openFile(cfg, log)
	case "sqlite", "sqlite3":
		return openSQLite(cfg, log)
	case "none":
		return nil, ErrDisabled
	default:
		return nil, errors.New("unknown storage driver: " + driver)
	}
}
