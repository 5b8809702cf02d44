//go:build sqlite
// +build sqlite

package storage

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"

	logx "astrobot/pkg/logx"
)

//go:embed migrations.sql
var migrationsFS embed.FS

type sqliteStore struct {
	db  *sql.DB
	log logx.Logger
}

func openSQLite(cfg Config, log logx.Logger) (Store, error) {
	if strings.TrimSpace(cfg.Path) == "" {
		return nil, errors.New("sqlite path is required")
	}
	path := cfg.Path
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// SQLite prefers a small number of concurrent writers.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	st := &sqliteStore{db: db, log: log}

	if cfg.BusyTimeout > 0 {
		ms := cfg.BusyTimeout.Milliseconds()
		_, _ = db.Exec(fmt.Sprintf("PRAGMA busy_timeout = %d", ms))
	}
	_, _ = db.Exec("PRAGMA journal_mode = WAL")
	_, _ = db.Exec("PRAGMA synchronous = NORMAL")

	if err := st.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return st, nil
}

func (s *sqliteStore) migrate(ctx context.Context) error {
	b, err := migrationsFS.ReadFile("migrations.sql")
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, string(b))
	return err
}

func (s *sqliteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *sqliteStore) LoadSchedules(ctx context.Context) (map[int64]map[string]int64, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT guild_id, job_key, fire_ms FROM schedules ORDER BY guild_id, pos")
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	out := map[int64]map[string]int64{}
	for rows.Next() {
		var guildID, fireMS int64
		var key string
		if err := rows.Scan(&guildID, &key, &fireMS); err != nil {
			return nil, err
		}
		jobs := out[guildID]
		if jobs == nil {
			jobs = map[string]int64{}
			out[guildID] = jobs
		}
		jobs[key] = fireMS
	}
	return out, rows.Err()
}

func (s *sqliteStore) SaveSchedules(ctx context.Context, guildID int64, jobs map[string]int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM schedules WHERE guild_id = ?", guildID); err != nil {
		return err
	}
	pos := 0
	for key, ms := range jobs {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO schedules (guild_id, job_key, fire_ms, pos) VALUES (?, ?, ?, ?)",
			guildID, key, ms, pos); err != nil {
			return err
		}
		pos++
	}
	return tx.Commit()
}

func (s *sqliteStore) LoadListeners(ctx context.Context) (map[int64][]int64, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT guild_id, user_id FROM listeners ORDER BY guild_id, pos")
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	out := map[int64][]int64{}
	for rows.Next() {
		var guildID, userID int64
		if err := rows.Scan(&guildID, &userID); err != nil {
			return nil, err
		}
		out[guildID] = append(out[guildID], userID)
	}
	return out, rows.Err()
}

func (s *sqliteStore) SaveListeners(ctx context.Context, guildID int64, ids []int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM listeners WHERE guild_id = ?", guildID); err != nil {
		return err
	}
	for pos, id := range ids {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO listeners (guild_id, user_id, pos) VALUES (?, ?, ?)",
			guildID, id, pos); err != nil {
			return err
		}
	}
	return tx.Commit()
}
