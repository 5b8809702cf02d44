package telegram

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	tele "gopkg.in/telebot.v4"

	"astrobot/internal/transport"
)

// App is the command surface the router drives. Each method returns the
// reply text to send back to the invoking chat.
type App interface {
	Fetch(ctx context.Context, m transport.Match, cmd transport.Command) string
	Unfetch(ctx context.Context, m transport.Match, cmd transport.Command) string
	Jobs(ctx context.Context, cmd transport.Command) string
	Listen(ctx context.Context, id int64, cmd transport.Command) string
	Unlisten(ctx context.Context, id int64, cmd transport.Command) string
	Listeners(ctx context.Context, cmd transport.Command) string
}

var clockRE = regexp.MustCompile(`^(\d{1,2})(?::(\d{2}))?(am|pm)?$`)

// Bind installs the command handlers on the adapter's bot.
func (a *Adapter) Bind(app App, isAdmin func(int64) bool) {
	a.bot.Handle("/fetch", func(c tele.Context) error {
		cmd := command(c, isAdmin)
		m, ok := parseMatch(c.Message().Payload)
		if !ok {
			return c.Send("Usage: /fetch <kind> [me|user <id>|channel <id>] [at <time> [tz]]")
		}
		return c.Send(app.Fetch(context.Background(), m, cmd))
	})

	a.bot.Handle("/unfetch", func(c tele.Context) error {
		cmd := command(c, isAdmin)
		m, ok := parseMatch(c.Message().Payload)
		if !ok {
			return c.Send("Usage: /unfetch <kind> [me|user <id>|channel <id>]")
		}
		return c.Send(app.Unfetch(context.Background(), m, cmd))
	})

	a.bot.Handle("/jobs", func(c tele.Context) error {
		return c.Send(app.Jobs(context.Background(), command(c, isAdmin)))
	})

	a.bot.Handle("/listen", func(c tele.Context) error {
		cmd := command(c, isAdmin)
		id, ok := parseID(c.Message().Payload, cmd.AuthorID)
		if !ok {
			return c.Send("Usage: /listen [user id]")
		}
		return c.Send(app.Listen(context.Background(), id, cmd))
	})

	a.bot.Handle("/unlisten", func(c tele.Context) error {
		cmd := command(c, isAdmin)
		id, ok := parseID(c.Message().Payload, cmd.AuthorID)
		if !ok {
			return c.Send("Usage: /unlisten [user id]")
		}
		return c.Send(app.Unlisten(context.Background(), id, cmd))
	})

	a.bot.Handle("/listeners", func(c tele.Context) error {
		return c.Send(app.Listeners(context.Background(), command(c, isAdmin)))
	})
}

func command(c tele.Context, isAdmin func(int64) bool) transport.Command {
	cmd := transport.Command{
		GuildID:   c.Chat().ID,
		ChannelID: c.Chat().ID,
	}
	if s := c.Sender(); s != nil {
		cmd.AuthorID = s.ID
		if isAdmin != nil {
			cmd.FromAdmin = isAdmin(s.ID)
		}
	}
	return cmd
}

// parseMatch tokenizes a command payload of the form
//
//	<kind> [me | user <id> | channel <id>] [at <clock> [tz]]
//
// The kind token is mandatory; everything after it is optional.
func parseMatch(payload string) (transport.Match, bool) {
	var m transport.Match

	tokens := strings.Fields(payload)
	if len(tokens) == 0 {
		return m, false
	}
	m.KindRaw = tokens[0]
	tokens = tokens[1:]

	for len(tokens) > 0 {
		switch strings.ToLower(tokens[0]) {
		case "me":
			m.Me = true
			tokens = tokens[1:]
		case "user", "channel":
			if len(tokens) < 2 {
				return m, false
			}
			id, err := strconv.ParseInt(tokens[1], 10, 64)
			if err != nil {
				return m, false
			}
			if strings.EqualFold(tokens[0], "user") {
				m.UserID = id
			} else {
				m.ChannelID = id
			}
			tokens = tokens[2:]
		case "at":
			if len(tokens) < 2 {
				return m, false
			}
			if !parseClock(tokens[1], &m) {
				return m, false
			}
			tokens = tokens[2:]
			if len(tokens) > 0 {
				m.TZ = tokens[0]
				tokens = tokens[1:]
			}
		default:
			return m, false
		}
	}
	return m, true
}

func parseClock(s string, m *transport.Match) bool {
	parts := clockRE.FindStringSubmatch(strings.ToLower(s))
	if parts == nil {
		return false
	}
	hour, err := strconv.Atoi(parts[1])
	if err != nil {
		return false
	}
	m.HasTime = true
	m.Hour = hour
	if parts[2] != "" {
		minute, err := strconv.Atoi(parts[2])
		if err != nil || minute > 59 {
			return false
		}
		m.Minute = minute
	}
	m.Meridiem = parts[3]
	return true
}

func parseID(payload string, fallback int64) (int64, bool) {
	s := strings.TrimSpace(payload)
	if s == "" {
		return fallback, true
	}
	id, err := strconv.ParseInt(strings.Fields(s)[0], 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}
