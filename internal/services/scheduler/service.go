package scheduler

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"astrobot/internal/astro"
	"astrobot/internal/storage"
	"astrobot/internal/transport"
	logx "astrobot/pkg/logx"
)

// fireTimeout bounds one fetch chain kicked off by a timer. A hung outbound
// request otherwise pins its goroutine forever.
const fireTimeout = 5 * time.Minute

type Service struct {
	mu sync.Mutex

	log   logx.Logger
	store storage.Store
	dir   transport.Directory
	disp  Dispatcher

	c      *cron.Cron
	guilds map[int64]*guildTable
}

func New(store storage.Store, dir transport.Directory, disp Dispatcher, log logx.Logger) *Service {
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Service{
		log:    log,
		store:  store,
		dir:    dir,
		disp:   disp,
		c:      cron.New(cron.WithLocation(time.UTC)),
		guilds: map[int64]*guildTable{},
	}
}

// Start begins firing installed jobs. Jobs may be scheduled before Start;
// their entries fire once the cron runs.
func (s *Service) Start() {
	s.c.Start()
	s.log.Info("scheduler started")
}

// Stop halts firing and waits for in-flight runs kicked off by the cron.
func (s *Service) Stop() {
	<-s.c.Stop().Done()
	s.log.Info("scheduler stopped")
}

// Restore loads every guild's persisted jobs and re-installs their timers.
// It uses the same install path as Schedule. Keys that no longer parse are
// logged and dropped; a guild whose table contained garbage is rewritten
// once so the garbage doesn't outlive this load. Clean guilds are never
// rewritten.
func (s *Service) Restore(ctx context.Context) error {
	all, err := s.store.LoadSchedules(ctx)
	if err != nil {
		return fmt.Errorf("load schedules: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	restored := 0
	for guildID, jobs := range all {
		keys := make([]string, 0, len(jobs))
		for k := range jobs {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		dropped := 0
		for _, key := range keys {
			if _, err := astro.ParseKey(key); err != nil {
				s.log.Warn("dropping unparseable persisted job", logx.Int64("guild", guildID), logx.String("key", key), logx.Err(err))
				dropped++
				continue
			}
			when := astro.FromMillis(jobs[key])
			s.installLocked(guildID, key, when)
			restored++
		}
		if dropped > 0 {
			s.persistLocked(ctx, guildID)
		}
	}
	s.log.Info("schedules restored", logx.Int("jobs", restored), logx.Int("guilds", len(all)))
	return nil
}

// Schedule installs or replaces the daily recurring job for the target.
// At most one timer is ever live per key: a prior entry under the same key
// is stopped before the new one is installed. The guild's table is persisted
// before returning; a persistence failure is logged, not rolled back.
func (s *Service) Schedule(ctx context.Context, target *astro.Target, when astro.FetchTime) {
	key := target.String()

	s.mu.Lock()
	s.installLocked(target.GuildID, key, when)
	s.persistLocked(ctx, target.GuildID)
	s.mu.Unlock()

	s.log.Info("job scheduled", logx.String("job", key), logx.String("at", when.GMT()))
}

// Cancel removes the target's job if present and reports whether one existed.
func (s *Service) Cancel(ctx context.Context, target *astro.Target) bool {
	key := target.String()

	s.mu.Lock()
	defer s.mu.Unlock()

	g := s.guilds[target.GuildID]
	if g == nil {
		return false
	}
	j := g.jobs[key]
	if j == nil {
		return false
	}
	j.handle.Stop()
	g.remove(key)
	s.persistLocked(ctx, target.GuildID)
	s.log.Info("job cancelled", logx.String("job", key))
	return true
}

// List returns one line per live job for the guild, in insertion order:
// "<target in words> at <H:MM> GMT".
func (s *Service) List(ctx context.Context, guildID int64) []string {
	s.mu.Lock()
	g := s.guilds[guildID]
	type entry struct {
		key    string
		millis int64
	}
	var entries []entry
	if g != nil {
		for _, key := range g.order {
			entries = append(entries, entry{key, g.jobs[key].millis})
		}
	}
	s.mu.Unlock()

	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		when := astro.FromMillis(e.millis)
		target, err := astro.ParseTarget(ctx, e.key, s.dir)
		if err != nil {
			// Recipient resolution is best-effort for display.
			lines = append(lines, fmt.Sprintf("%s at %s GMT", e.key, when.GMT()))
			continue
		}
		lines = append(lines, fmt.Sprintf("%s at %s GMT", target.InWords(), when.GMT()))
	}
	return lines
}

// installLocked stops any prior entry under key and installs a fresh daily
// trigger. Call with s.mu held.
func (s *Service) installLocked(guildID int64, key string, when astro.FetchTime) {
	g := s.guilds[guildID]
	if g == nil {
		g = newGuildTable()
		s.guilds[guildID] = g
	}
	if prev := g.jobs[key]; prev != nil {
		prev.handle.Stop()
	}

	id, err := s.c.AddFunc(when.CronSpec(), func() { s.onFire(key) })
	if err != nil {
		// CronSpec is generated from validated hour/minute, so this
		// indicates a bug, not bad input.
		panic(fmt.Sprintf("scheduler: invalid cron spec %q: %v", when.CronSpec(), err))
	}
	g.put(key, &job{millis: when.Millis(), handle: &entryHandle{c: s.c, id: id}})
}

// persistLocked rewrites one guild's table. Call with s.mu held. A guild
// with no live jobs persists as an empty table.
func (s *Service) persistLocked(ctx context.Context, guildID int64) {
	jobs := map[string]int64{}
	if g := s.guilds[guildID]; g != nil {
		jobs = g.times()
	}
	if err := s.store.SaveSchedules(ctx, guildID, jobs); err != nil {
		s.log.Error("persisting schedules failed", logx.Int64("guild", guildID), logx.Err(err))
	}
}

// onFire runs one firing of a job: reconstruct the target from its key and
// dispatch the fetch. The job itself stays installed and untouched.
func (s *Service) onFire(key string) {
	ctx, cancel := context.WithTimeout(context.Background(), fireTimeout)
	defer cancel()

	target, err := astro.ParseTarget(ctx, key, s.dir)
	if err != nil {
		s.log.Error("job target no longer resolves", logx.String("job", key), logx.Err(err))
		return
	}
	s.log.Info("running " + target.ForLog())
	s.disp.Dispatch(ctx, target)
}
