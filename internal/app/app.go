// Package app assembles the bot: configuration, logging, storage, the
// Telegram adapter and the scheduling, fetching and listener services. It
// also implements the command surface the transport router drives.
package app

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"astrobot/internal/astro"
	"astrobot/internal/config"
	"astrobot/internal/services/fetcher"
	"astrobot/internal/services/listeners"
	"astrobot/internal/services/scheduler"
	"astrobot/internal/storage"
	"astrobot/internal/transport"
	"astrobot/internal/transport/telegram"
	logx "astrobot/pkg/logx"
)

type App struct {
	cfgm *config.Manager

	log  logx.Logger
	logs *logx.Service

	store   storage.Store
	adapter *telegram.Adapter

	listen *listeners.Service
	fetch  *fetcher.Service
	sched  *scheduler.Service

	watchCancel context.CancelFunc
	watchDone   chan struct{}

	stopOnce sync.Once
}

func New(cfgPath string) (*App, error) {
	cfgm := config.NewManager(cfgPath)
	cfg, err := cfgm.Load()
	if err != nil {
		return nil, err
	}

	logSvc, log := logx.New(logx.Config{
		Level:   cfg.Logging.Level,
		Console: cfg.Logging.Console,
		File: logx.FileConfig{
			Enabled: cfg.Logging.File.Enabled,
			Path:    cfg.Logging.File.Path,
		},
	})
	log = log.With(logx.String("comp", "app"))
	cfgm.SetLogger(log.With(logx.String("comp", "config")))

	store, err := storage.Open(storage.Config{
		Driver:      cfg.Storage.Driver,
		Path:        cfg.Storage.Path,
		BusyTimeout: cfg.BusyTimeout(),
	}, log.With(logx.String("comp", "storage")))
	if err != nil {
		logSvc.Close()
		return nil, err
	}

	adapter, err := telegram.New(telegram.Config{
		Token:       cfg.Telegram.Token,
		PollTimeout: cfg.PollTimeout(),
	}, log.With(logx.String("comp", "telegram")))
	if err != nil {
		store.Close()
		logSvc.Close()
		return nil, err
	}

	listen := listeners.New(store, adapter, log.With(logx.String("comp", "listeners")))
	fetch := fetcher.New(fetcher.Config{
		Timeout:          cfg.FetchTimeout(),
		TwitterBearer:    cfg.Fetch.TwitterBearer,
		SkywatchBaseURL:  cfg.Fetch.SkywatchBaseURL,
		AnswersAPIURL:    cfg.Fetch.AnswersAPIURL,
		HoroscopeBaseURL: cfg.Fetch.HoroscopeBaseURL,
	}, listen, log.With(logx.String("comp", "fetcher")))
	sched := scheduler.New(store, adapter, fetch, log.With(logx.String("comp", "scheduler")))

	return &App{
		cfgm:    cfgm,
		log:     log,
		logs:    logSvc,
		store:   store,
		adapter: adapter,
		listen:  listen,
		fetch:   fetch,
		sched:   sched,
	}, nil
}

// Start restores persisted state, starts the timers and begins serving
// commands. It returns once everything is running.
func (a *App) Start(ctx context.Context) error {
	if err := a.listen.Restore(ctx); err != nil {
		return fmt.Errorf("restore listeners: %w", err)
	}
	if err := a.sched.Restore(ctx); err != nil {
		return fmt.Errorf("restore schedules: %w", err)
	}
	a.sched.Start()

	a.adapter.Bind(a, func(id int64) bool { return a.cfgm.Get().IsAdmin(id) })
	a.adapter.Start()

	wctx, cancel := context.WithCancel(ctx)
	a.watchCancel = cancel
	a.watchDone = make(chan struct{})
	go a.watchConfig(wctx)

	a.log.Info("started")
	return nil
}

func (a *App) Stop() {
	a.stopOnce.Do(func() {
		if a.watchCancel != nil {
			a.watchCancel()
			<-a.watchDone
		}
		a.adapter.Stop()
		a.sched.Stop()
		if err := a.store.Close(); err != nil {
			a.log.Warn("storage close", logx.Err(err))
		}
		a.log.Info("stopped")
		a.logs.Close()
	})
}

// watchConfig follows config file edits and re-applies the logging section.
// Everything else requires a restart.
func (a *App) watchConfig(ctx context.Context) {
	defer close(a.watchDone)

	updates := a.cfgm.Subscribe(1)
	defer a.cfgm.Unsubscribe(updates)

	go func() {
		if err := a.cfgm.Watch(ctx); err != nil && ctx.Err() == nil {
			a.log.Warn("config watch", logx.Err(err))
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case cfg, ok := <-updates:
			if !ok {
				return
			}
			a.logs.Apply(logx.Config{
				Level:   cfg.Logging.Level,
				Console: cfg.Logging.Console,
				File: logx.FileConfig{
					Enabled: cfg.Logging.File.Enabled,
					Path:    cfg.Logging.File.Path,
				},
			})
			// Render through String(), which never includes secrets;
			// a structured field would marshal the raw token.
			a.log.Info("config reloaded", logx.String("config", cfg.String()))
		}
	}
}

// Fetch schedules a recurring fetch, or runs one immediately when the
// command carries no time.
func (a *App) Fetch(ctx context.Context, m transport.Match, cmd transport.Command) string {
	target, err := astro.FromMatch(ctx, m, cmd, a.adapter)
	if err != nil {
		return sorry(err)
	}
	if !target.Authorized(cmd.AuthorID, cmd.FromAdmin) {
		return "Sorry, you can only schedule fetches for yourself."
	}

	if !m.HasTime {
		go a.fetch.Dispatch(context.Background(), target)
		return fmt.Sprintf("Fetching %s.", target.InWords())
	}

	when, err := astro.FromClock(m.Hour, m.Minute, m.Meridiem, m.TZ)
	if err != nil {
		return sorry(err)
	}
	a.sched.Schedule(ctx, target, when)
	return fmt.Sprintf("Scheduled %s at %s GMT.", target.InWords(), when.GMT())
}

// Unfetch cancels a scheduled fetch.
func (a *App) Unfetch(ctx context.Context, m transport.Match, cmd transport.Command) string {
	target, err := astro.FromMatch(ctx, m, cmd, a.adapter)
	if err != nil {
		return sorry(err)
	}
	if !target.Authorized(cmd.AuthorID, cmd.FromAdmin) {
		return "Sorry, you can only cancel fetches for yourself."
	}
	if !a.sched.Cancel(ctx, target) {
		return fmt.Sprintf("No scheduled fetch of %s.", target.InWords())
	}
	return fmt.Sprintf("Stopped fetching %s.", target.InWords())
}

// Jobs lists the chat's scheduled fetches.
func (a *App) Jobs(ctx context.Context, cmd transport.Command) string {
	jobs := a.sched.List(ctx, cmd.GuildID)
	if len(jobs) == 0 {
		return "Nothing is scheduled here."
	}
	return "Scheduled fetches:\n" + strings.Join(jobs, "\n")
}

// Listen registers a user for fetch failure reports.
func (a *App) Listen(ctx context.Context, id int64, cmd transport.Command) string {
	if id != cmd.AuthorID && !cmd.FromAdmin {
		return "Sorry, you can only register yourself."
	}
	if !a.listen.Add(ctx, cmd.GuildID, id) {
		return "Already listening."
	}
	return "Listening for fetch failures."
}

// Unlisten removes a user from the failure report list.
func (a *App) Unlisten(ctx context.Context, id int64, cmd transport.Command) string {
	if id != cmd.AuthorID && !cmd.FromAdmin {
		return "Sorry, you can only remove yourself."
	}
	if !a.listen.Remove(ctx, cmd.GuildID, id) {
		return "Not listening."
	}
	return "No longer listening."
}

// Listeners lists the chat's registered listeners.
func (a *App) Listeners(ctx context.Context, cmd transport.Command) string {
	names := a.listen.List(ctx, cmd.GuildID)
	if len(names) == 0 {
		return "Nobody is listening here."
	}
	return "Listening: " + strings.Join(names, ", ")
}

func sorry(err error) string {
	return "Sorry, " + err.Error() + "."
}
