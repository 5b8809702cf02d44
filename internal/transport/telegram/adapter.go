// Package telegram adapts the chat platform behind the transport
// interfaces: it is the only package that talks to the Telegram API.
package telegram

import (
	"context"
	"errors"
	"strings"
	"time"

	tele "gopkg.in/telebot.v4"

	"astrobot/internal/transport"
	logx "astrobot/pkg/logx"
)

type Config struct {
	Token       string
	PollTimeout time.Duration
}

type Adapter struct {
	cfg Config
	log logx.Logger
	bot *tele.Bot
}

func New(cfg Config, log logx.Logger) (*Adapter, error) {
	if strings.TrimSpace(cfg.Token) == "" {
		return nil, errors.New("telegram token is empty")
	}
	timeout := cfg.PollTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	b, err := tele.NewBot(tele.Settings{
		Token:  cfg.Token,
		Poller: &tele.LongPoller{Timeout: timeout},
	})
	if err != nil {
		return nil, err
	}
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Adapter{cfg: cfg, log: log, bot: b}, nil
}

// Start begins long-polling. It returns immediately; telebot runs its own
// poll loop.
func (a *Adapter) Start() {
	go a.bot.Start()
	a.log.Info("telegram adapter started")
}

func (a *Adapter) Stop() {
	a.bot.Stop()
	a.log.Info("telegram adapter stopped")
}

// ByID resolves an id against Telegram's chat directory. Users resolve only
// to private chats; a group id asked for as a user is an error, mirroring
// the user/channel split in job keys.
func (a *Adapter) ByID(ctx context.Context, id int64, user bool) (transport.Recipient, error) {
	_ = ctx // telebot manages its own request deadlines

	chat, err := a.bot.ChatByID(id)
	if err != nil {
		return nil, err
	}
	isUser := chat.Type == tele.ChatPrivate
	if user != isUser {
		return nil, errors.New("recipient kind mismatch")
	}
	return &recipient{bot: a.bot, chat: chat}, nil
}

// recipient wraps a live telebot chat.
type recipient struct {
	bot  *tele.Bot
	chat *tele.Chat
}

func (r *recipient) ID() int64    { return r.chat.ID }
func (r *recipient) IsUser() bool { return r.chat.Type == tele.ChatPrivate }

func (r *recipient) Name() string {
	if r.IsUser() {
		if r.chat.Username != "" {
			return r.chat.Username
		}
		return strings.TrimSpace(r.chat.FirstName + " " + r.chat.LastName)
	}
	return r.chat.Title
}

func (r *recipient) Mention() string {
	if r.IsUser() && r.chat.Username != "" {
		return "@" + r.chat.Username
	}
	return r.Name()
}

func (r *recipient) Send(ctx context.Context, text string) error {
	_ = ctx
	_, err := r.bot.Send(r.chat, text)
	return err
}
