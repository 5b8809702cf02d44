package scheduler

import (
	"context"
	"sync"

	"github.com/robfig/cron/v3"

	"astrobot/internal/astro"
)

// Dispatcher runs one fetch for a target. Implemented by the fetcher service.
type Dispatcher interface {
	Dispatch(ctx context.Context, target *astro.Target)
}

// entryHandle wraps a live cron entry. Stop is idempotent and safe to call
// after the owning table slot has been overwritten.
type entryHandle struct {
	c    *cron.Cron
	id   cron.EntryID
	once sync.Once
}

func (h *entryHandle) Stop() {
	if h == nil {
		return
	}
	h.once.Do(func() { h.c.Remove(h.id) })
}

// job is one live recurring fetch.
type job struct {
	millis int64 // UTC ms-of-day, the persisted value
	handle *entryHandle
}

// guildTable holds one guild's jobs in insertion order.
type guildTable struct {
	jobs  map[string]*job
	order []string
}

func newGuildTable() *guildTable {
	return &guildTable{jobs: map[string]*job{}}
}

func (g *guildTable) put(key string, j *job) {
	if _, exists := g.jobs[key]; !exists {
		g.order = append(g.order, key)
	}
	g.jobs[key] = j
}

func (g *guildTable) remove(key string) {
	delete(g.jobs, key)
	for i, k := range g.order {
		if k == key {
			g.order = append(g.order[:i], g.order[i+1:]...)
			break
		}
	}
}

func (g *guildTable) times() map[string]int64 {
	out := make(map[string]int64, len(g.jobs))
	for k, j := range g.jobs {
		out[k] = j.millis
	}
	return out
}
