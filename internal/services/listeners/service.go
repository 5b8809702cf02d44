// Package listeners tracks, per guild, the users who receive fetch-failure
// notifications. The set is ordered, duplicate-free, and persisted on every
// mutation.
package listeners

import (
	"context"
	"strconv"
	"sync"

	"golang.org/x/time/rate"

	"astrobot/internal/storage"
	"astrobot/internal/transport"
	logx "astrobot/pkg/logx"
)

// notifyRate caps fan-out sends so a burst of failing jobs cannot flood
// the platform API.
const notifyRate = 5

type Service struct {
	mu sync.Mutex

	log     logx.Logger
	store   storage.Store
	dir     transport.Directory
	limiter *rate.Limiter

	guilds map[int64][]int64
}

func New(store storage.Store, dir transport.Directory, log logx.Logger) *Service {
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Service{
		log:     log,
		store:   store,
		dir:     dir,
		limiter: rate.NewLimiter(rate.Limit(notifyRate), notifyRate),
		guilds:  map[int64][]int64{},
	}
}

// Restore loads every guild's persisted listener set.
func (s *Service) Restore(ctx context.Context) error {
	all, err := s.store.LoadListeners(ctx)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.guilds = all
	if s.guilds == nil {
		s.guilds = map[int64][]int64{}
	}
	s.mu.Unlock()
	s.log.Info("listeners restored", logx.Int("guilds", len(all)))
	return nil
}

// Add registers a listener. It returns false if the user already listens.
func (s *Service) Add(ctx context.Context, guildID, userID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := s.guilds[guildID]
	for _, id := range ids {
		if id == userID {
			return false
		}
	}
	s.guilds[guildID] = append(ids, userID)
	s.persistLocked(ctx, guildID)
	return true
}

// Remove drops a listener. It returns false if the user wasn't listening.
func (s *Service) Remove(ctx context.Context, guildID, userID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := s.guilds[guildID]
	for i, id := range ids {
		if id == userID {
			s.guilds[guildID] = append(ids[:i], ids[i+1:]...)
			s.persistLocked(ctx, guildID)
			return true
		}
	}
	return false
}

// List returns the guild's listeners in registration order, resolved to
// mention strings where the directory still knows them.
func (s *Service) List(ctx context.Context, guildID int64) []string {
	s.mu.Lock()
	ids := append([]int64(nil), s.guilds[guildID]...)
	s.mu.Unlock()

	out := make([]string, 0, len(ids))
	for _, id := range ids {
		r, err := s.dir.ByID(ctx, id, true)
		if err != nil || r == nil {
			out = append(out, strconv.FormatInt(id, 10))
			continue
		}
		out = append(out, r.Mention())
	}
	return out
}

// Notify sends the message to every listener of the guild, best-effort:
// one failed send is logged and never blocks the rest.
func (s *Service) Notify(ctx context.Context, guildID int64, message string) {
	s.mu.Lock()
	ids := append([]int64(nil), s.guilds[guildID]...)
	s.mu.Unlock()

	for _, id := range ids {
		if err := s.limiter.Wait(ctx); err != nil {
			s.log.Warn("notify cancelled", logx.Int64("guild", guildID), logx.Err(err))
			return
		}
		r, err := s.dir.ByID(ctx, id, true)
		if err != nil || r == nil {
			s.log.Warn("listener no longer resolves", logx.Int64("guild", guildID), logx.Int64("user", id), logx.Err(err))
			continue
		}
		if err := r.Send(ctx, message); err != nil {
			s.log.Warn("listener notify failed", logx.Int64("guild", guildID), logx.Int64("user", id), logx.Err(err))
		}
	}
}

// persistLocked rewrites one guild's listener file. Call with s.mu held.
// Write failures are logged; the in-memory set stays authoritative.
func (s *Service) persistLocked(ctx context.Context, guildID int64) {
	if err := s.store.SaveListeners(ctx, guildID, s.guilds[guildID]); err != nil {
		s.log.Error("persisting listeners failed", logx.Int64("guild", guildID), logx.Err(err))
	}
}
