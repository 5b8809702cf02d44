package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

type Config struct {
	Telegram TelegramConfig `json:"telegram"`
	Logging  LoggingConfig  `json:"logging"`
	Storage  StorageConfig  `json:"storage"`
	Fetch    FetchConfig    `json:"fetch"`
}

type TelegramConfig struct {
	Token string `json:"token"`

	// PollTimeout is a Go duration string (e.g. "10s").
	PollTimeout string `json:"poll_timeout,omitempty"`

	// AdminUserIDs may schedule and cancel fetches for any recipient,
	// not just themselves.
	AdminUserIDs []int64 `json:"admin_user_ids,omitempty"`
}

type LoggingConfig struct {
	Level   string        `json:"level,omitempty"` // trace|debug|info|warn|error
	Console bool          `json:"console"`
	File    FileLogConfig `json:"file,omitempty"`
}

type FileLogConfig struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path,omitempty"`
}

// StorageConfig controls the persistence layer.
//
// Example:
//
//	"storage": { "driver": "file", "path": "./astrobot_store" }
type StorageConfig struct {
	Driver      string `json:"driver,omitempty"` // "file" (default) or "sqlite"
	Path        string `json:"path"`
	BusyTimeout string `json:"busy_timeout,omitempty"` // Go duration string (sqlite)
}

type FetchConfig struct {
	// Timeout is a Go duration string applied per outbound request.
	Timeout string `json:"timeout,omitempty"`

	TwitterBearer string `json:"twitter_bearer,omitempty"`

	// Base URL overrides, normally left empty.
	SkywatchBaseURL  string `json:"skywatch_base_url,omitempty"`
	AnswersAPIURL    string `json:"answers_api_url,omitempty"`
	HoroscopeBaseURL string `json:"horoscope_base_url,omitempty"`
}

// Validate checks the fields that cannot be defaulted.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Telegram.Token) == "" {
		return errors.New("telegram.token is required")
	}
	if strings.TrimSpace(c.Storage.Path) == "" {
		return errors.New("storage.path is required")
	}
	for _, raw := range []struct{ path, val string }{
		{"telegram.poll_timeout", c.Telegram.PollTimeout},
		{"storage.busy_timeout", c.Storage.BusyTimeout},
		{"fetch.timeout", c.Fetch.Timeout},
	} {
		if _, err := ParseDurationField(raw.path, raw.val); err != nil {
			return err
		}
	}
	return nil
}

// PollTimeout returns the parsed telegram poll timeout.
func (c *Config) PollTimeout() time.Duration {
	d, err := ParseDurationOrDefault("telegram.poll_timeout", c.Telegram.PollTimeout, 10*time.Second)
	if err != nil {
		return 10 * time.Second
	}
	return d
}

// FetchTimeout returns the parsed per-request fetch timeout.
func (c *Config) FetchTimeout() time.Duration {
	d, err := ParseDurationOrDefault("fetch.timeout", c.Fetch.Timeout, 30*time.Second)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// BusyTimeout returns the parsed sqlite busy timeout.
func (c *Config) BusyTimeout() time.Duration {
	d, _ := ParseDurationField("storage.busy_timeout", c.Storage.BusyTimeout)
	return d
}

// IsAdmin reports whether the user id is in the configured admin list.
func (c *Config) IsAdmin(userID int64) bool {
	for _, id := range c.Telegram.AdminUserIDs {
		if id == userID {
			return true
		}
	}
	return false
}

func (c *Config) String() string {
	// Never render the token or bearer into logs.
	return fmt.Sprintf("config{driver=%s admins=%d}", c.Storage.Driver, len(c.Telegram.AdminUserIDs))
}
