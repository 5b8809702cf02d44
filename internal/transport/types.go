package transport

import "context"

// Recipient is a live chat-platform entity that can receive content:
// either a user (delivered to their inbox) or a channel.
//
// Resolution happens through a Directory at dispatch/parse time, never at
// construction time; a Recipient held across a restart is not assumed valid.
type Recipient interface {
	ID() int64
	IsUser() bool

	// Name is the short human name (username or channel title).
	Name() string
	// Mention is the platform mention string ("@user", "#channel").
	Mention() string

	Send(ctx context.Context, text string) error
}

// Directory resolves ids against the platform's live entity cache.
// It is the sole integration point with the chat platform.
type Directory interface {
	ByID(ctx context.Context, id int64, user bool) (Recipient, error)
}

// Match is the structured result of the (external) command grammar.
// The core consumes this; it does not own the parsing.
type Match struct {
	KindRaw string

	ChannelID int64 // explicit channel target, 0 if none
	UserID    int64 // explicit user target, 0 if none
	Me        bool  // "me" flag: target the command author

	HasTime  bool
	Hour     int
	Minute   int
	Meridiem string // "am", "pm" or ""
	TZ       string // timezone abbreviation or ""
}

// Command carries the context a command arrived in.
type Command struct {
	GuildID   int64
	ChannelID int64
	AuthorID  int64
	FromAdmin bool
}
