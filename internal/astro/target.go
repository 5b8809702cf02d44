package astro

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"

	"astrobot/internal/transport"
)

// ErrNoRecipient is returned when a command names no resolvable recipient.
// The wording doubles as the user-facing reply.
var ErrNoRecipient = errors.New("couldn't find that recipient")

// Ids are decimal, optionally negative: Telegram group chat ids are
// negative, Discord-style snowflakes are not.
var keyRE = regexp.MustCompile(`^(\w+)@(-?\d+)#([uc])(-?\d+)$`)

// Key is the parsed form of a target's canonical string
// `<Kind>@<guildID>#<u|c><recipientID>`. The string is both the job name
// and the persistence key, so it must round-trip exactly.
type Key struct {
	Kind        Kind
	GuildID     int64
	User        bool
	RecipientID int64
}

func (k Key) String() string {
	code := byte('c')
	if k.User {
		code = 'u'
	}
	return fmt.Sprintf("%s@%d#%c%d", k.Kind, k.GuildID, code, k.RecipientID)
}

// ParseKey parses a canonical job key. Malformed keys (missing separators,
// unknown kind or recipient code, non-numeric ids) are errors.
func ParseKey(s string) (Key, error) {
	m := keyRE.FindStringSubmatch(s)
	if m == nil {
		return Key{}, fmt.Errorf("malformed job key %q", s)
	}
	kind, ok := KindFromName(m[1])
	if !ok {
		return Key{}, fmt.Errorf("job key %q: %w: %q", s, ErrUnknownKind, m[1])
	}
	guildID, err := strconv.ParseInt(m[2], 10, 64)
	if err != nil {
		return Key{}, fmt.Errorf("job key %q: bad guild id: %w", s, err)
	}
	recipientID, err := strconv.ParseInt(m[4], 10, 64)
	if err != nil {
		return Key{}, fmt.Errorf("job key %q: bad recipient id: %w", s, err)
	}
	return Key{
		Kind:        kind,
		GuildID:     guildID,
		User:        m[3] == "u",
		RecipientID: recipientID,
	}, nil
}

// Target identifies what content to fetch and who receives it, scoped to a
// guild. It is a value constructed fresh per command or per restore; the
// recipient is always a live Directory lookup.
type Target struct {
	GuildID   int64
	Kind      Kind
	Recipient transport.Recipient
}

// New builds a Target from raw command text and an already resolved
// recipient. A nil recipient or unknown kind is a construction error.
func New(guildID int64, rawKind string, recipient transport.Recipient) (*Target, error) {
	if recipient == nil {
		return nil, ErrNoRecipient
	}
	kind, err := ParseKind(rawKind)
	if err != nil {
		return nil, err
	}
	return &Target{GuildID: guildID, Kind: kind, Recipient: recipient}, nil
}

// FromKey reconstructs a Target from a parsed job key, resolving the
// recipient through the directory. A recipient that no longer exists is an
// error here, at dispatch time, not when the key was written.
func FromKey(ctx context.Context, key Key, dir transport.Directory) (*Target, error) {
	r, err := dir.ByID(ctx, key.RecipientID, key.User)
	if err != nil {
		return nil, fmt.Errorf("resolve recipient %d: %w", key.RecipientID, err)
	}
	if r == nil {
		return nil, ErrNoRecipient
	}
	return &Target{GuildID: key.GuildID, Kind: key.Kind, Recipient: r}, nil
}

// ParseTarget parses a canonical job key and resolves its recipient.
func ParseTarget(ctx context.Context, s string, dir transport.Directory) (*Target, error) {
	key, err := ParseKey(s)
	if err != nil {
		return nil, err
	}
	return FromKey(ctx, key, dir)
}

// FromMatch resolves the command grammar's structured match into a Target.
// Recipient precedence: explicit user, then the author ("me"), then an
// explicit channel, then the channel the command arrived in.
func FromMatch(ctx context.Context, m transport.Match, cmd transport.Command, dir transport.Directory) (*Target, error) {
	var r transport.Recipient
	if m.UserID != 0 {
		r, _ = dir.ByID(ctx, m.UserID, true)
	}
	if r == nil && m.Me {
		r, _ = dir.ByID(ctx, cmd.AuthorID, true)
	}
	if r == nil && m.ChannelID != 0 {
		r, _ = dir.ByID(ctx, m.ChannelID, false)
	}
	if r == nil {
		r, _ = dir.ByID(ctx, cmd.ChannelID, false)
	}
	return New(cmd.GuildID, m.KindRaw, r)
}

func (t *Target) Key() Key {
	return Key{
		Kind:        t.Kind,
		GuildID:     t.GuildID,
		User:        t.Recipient.IsUser(),
		RecipientID: t.Recipient.ID(),
	}
}

// String is the canonical job key.
func (t *Target) String() string { return t.Key().String() }

// Authorized reports whether the requester may schedule or cancel fetches
// for this target: the requester is themselves the target recipient, or a
// guild admin.
func (t *Target) Authorized(requesterID int64, admin bool) bool {
	if admin {
		return true
	}
	return t.Recipient.IsUser() && t.Recipient.ID() == requesterID
}

// InWords renders the target for replies: "Aries for @user", "Skywatch in #chan".
func (t *Target) InWords() string {
	prep := "in"
	if t.Recipient.IsUser() {
		prep = "for"
	}
	return fmt.Sprintf("%s %s %s", t.Kind, prep, t.Recipient.Mention())
}

// ForLog renders the target for log lines.
func (t *Target) ForLog() string {
	return fmt.Sprintf("%s to #%s", t.Kind, t.Recipient.Name())
}
