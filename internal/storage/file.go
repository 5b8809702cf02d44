package storage

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	logx "astrobot/pkg/logx"
)

const (
	schedulesDir = "schedules"
	listenersDir = "listeners"
)

// fileStore is a dependency-free persistence backend.
//
// Layout under the configured root:
//   - schedules/<guildID>.json  (object: job key -> UTC ms-of-day)
//   - listeners/<guildID>.json  (array of user ids, listener order)
//
// Every write rewrites the guild's file via tmp+rename.
type fileStore struct {
	log logx.Logger

	mu   sync.Mutex
	root string
}

func openFile(cfg Config, log logx.Logger) (Store, error) {
	root := strings.TrimSpace(cfg.Path)
	if root == "" {
		return nil, errors.New("storage.path is required for file driver")
	}
	for _, dir := range []string{schedulesDir, listenersDir} {
		if err := os.MkdirAll(filepath.Join(root, dir), 0o755); err != nil {
			return nil, err
		}
	}
	return &fileStore{log: log, root: root}, nil
}

func (s *fileStore) Close() error { return nil }

func (s *fileStore) LoadSchedules(ctx context.Context) (map[int64]map[string]int64, error) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()

	out := map[int64]map[string]int64{}
	err := s.eachGuildFile(schedulesDir, func(guildID int64, data []byte) error {
		var jobs map[string]int64
		if err := json.Unmarshal(data, &jobs); err != nil {
			return err
		}
		out[guildID] = jobs
		return nil
	})
	return out, err
}

func (s *fileStore) SaveSchedules(ctx context.Context, guildID int64, jobs map[string]int64) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	if jobs == nil {
		jobs = map[string]int64{}
	}
	return s.writeGuildFile(schedulesDir, guildID, jobs)
}

func (s *fileStore) LoadListeners(ctx context.Context) (map[int64][]int64, error) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()

	out := map[int64][]int64{}
	err := s.eachGuildFile(listenersDir, func(guildID int64, data []byte) error {
		var ids []int64
		if err := json.Unmarshal(data, &ids); err != nil {
			return err
		}
		out[guildID] = ids
		return nil
	})
	return out, err
}

func (s *fileStore) SaveListeners(ctx context.Context, guildID int64, ids []int64) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	if ids == nil {
		ids = []int64{}
	}
	return s.writeGuildFile(listenersDir, guildID, ids)
}

// eachGuildFile reads every <guildID>.json under dir. Per-file problems
// (bad name, unreadable, malformed JSON) are logged and that guild is
// skipped; only a missing/unreadable directory is fatal.
func (s *fileStore) eachGuildFile(dir string, fn func(guildID int64, data []byte) error) error {
	full := filepath.Join(s.root, dir)
	entries, err := os.ReadDir(full)
	if err != nil {
		if os.IsNotExist(err) {
			s.log.Debug("storage dir missing, starting empty", logx.String("dir", full))
			return nil
		}
		return err
	}

	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, ".") || !strings.HasSuffix(name, ".json") {
			continue
		}
		guildID, err := strconv.ParseInt(strings.TrimSuffix(name, ".json"), 10, 64)
		if err != nil {
			s.log.Warn("skipping storage file with non-numeric guild id", logx.String("file", name))
			continue
		}
		path := filepath.Join(full, name)
		data, err := os.ReadFile(path)
		if err != nil {
			s.log.Warn("skipping unreadable storage file", logx.String("file", path), logx.Err(err))
			continue
		}
		if err := fn(guildID, data); err != nil {
			s.log.Warn("skipping malformed storage file", logx.String("file", path), logx.Err(err))
		}
	}
	return nil
}

func (s *fileStore) writeGuildFile(dir string, guildID int64, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	path := filepath.Join(s.root, dir, strconv.FormatInt(guildID, 10)+".json")
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
