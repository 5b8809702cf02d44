package fetcher

import (
	"context"
	"time"
)

// Notifier fans a failure message out to a guild's registered listeners.
// Implemented by the listeners service.
type Notifier interface {
	Notify(ctx context.Context, guildID int64, message string)
}

type Config struct {
	// Timeout applies to each outbound request.
	Timeout time.Duration

	// TwitterBearer authenticates the AstrologyAnswers search API call.
	TwitterBearer string

	// Base URLs are configurable for tests; zero values mean production.
	SkywatchBaseURL  string
	AnswersAPIURL    string
	HoroscopeBaseURL string
}

func (c *Config) withDefaults() {
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
	if c.SkywatchBaseURL == "" {
		c.SkywatchBaseURL = "https://skywatchastrology.com"
	}
	if c.AnswersAPIURL == "" {
		c.AnswersAPIURL = "https://api.twitter.com"
	}
	if c.HoroscopeBaseURL == "" {
		c.HoroscopeBaseURL = "https://astrologyanswers.com/horoscopes"
	}
}
