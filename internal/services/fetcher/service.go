package fetcher

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"astrobot/internal/astro"
	logx "astrobot/pkg/logx"
)

type strategyFn func(ctx context.Context, target *astro.Target) (string, error)

type Service struct {
	log       logx.Logger
	cfg       Config
	listeners Notifier
	client    *httpClient

	strategies map[astro.Kind]strategyFn

	// now is swapped in tests to pin the Skywatch date math.
	now func() time.Time
}

// New builds the fetcher and its strategy table. The table must cover every
// known kind; a gap means the enumeration and this constructor have drifted
// apart, and that fails loudly here rather than silently at dispatch.
func New(cfg Config, listeners Notifier, log logx.Logger) *Service {
	cfg.withDefaults()
	if log.IsZero() {
		log = logx.Nop()
	}
	s := &Service{
		log:       log,
		cfg:       cfg,
		listeners: listeners,
		client:    newHTTPClient(cfg.Timeout),
		now:       time.Now,
	}

	s.strategies = map[astro.Kind]strategyFn{
		astro.KindSkywatch:         s.skywatch,
		astro.KindAstrologyAnswers: s.astrologyAnswers,
	}
	for _, k := range astro.AllKinds() {
		if k.IsSign() {
			s.strategies[k] = s.sign
		}
	}
	for _, k := range astro.AllKinds() {
		if s.strategies[k] == nil {
			panic(fmt.Sprintf("fetcher: no strategy registered for kind %q", k))
		}
	}
	return s
}

// Dispatch runs the target's fetch strategy and delivers the result.
// Strategy failures are routed to the guild's listeners; they never
// propagate.
func (s *Service) Dispatch(ctx context.Context, target *astro.Target) {
	strat := s.strategies[target.Kind]
	if strat == nil {
		panic(fmt.Sprintf("fetcher: dispatch for unregistered kind %q", target.Kind))
	}

	run := uuid.NewString()
	log := s.log.With(logx.String("run", run), logx.String("kind", target.Kind.String()))
	log.Info("fetching " + target.ForLog())

	text, err := strat(ctx, target)
	if err != nil {
		s.onError(ctx, log, target, err)
		return
	}

	if err := target.Recipient.Send(ctx, text); err != nil {
		log.Warn("delivery failed", logx.String("target", target.String()), logx.Err(err))
		return
	}
	log.Info("sent " + target.ForLog())
}

// onError logs the failure and forwards one human-readable message to the
// guild's listener set. Fire-and-forget: no retry, no escalation.
func (s *Service) onError(ctx context.Context, log logx.Logger, target *astro.Target, err error) {
	msg := fmt.Sprintf("Failed to fetch %s: %v", target.Kind, err)
	log.Error(msg, logx.String("target", target.String()))
	s.listeners.Notify(ctx, target.GuildID, msg)
}
