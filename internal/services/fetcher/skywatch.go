package fetcher

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"astrobot/internal/astro"
	logx "astrobot/pkg/logx"
)

// skywatch fetches the dated daily digest. Today's post URL carries an
// unpredictable numeric suffix, so the strategy probes a bounded list of
// variants: first "-<year>", then the counter clamps to 3 and walks down
// ("-3", "-2", bare). When the counter is exhausted on a Saturday or Sunday
// the combined weekend post is tried exactly once.
func (s *Service) skywatch(ctx context.Context, target *astro.Target) (string, error) {
	now := s.now()
	weekday := strings.ToLower(now.Weekday().String())
	month := strings.ToLower(now.Month().String())
	day := now.Day()

	base := s.cfg.SkywatchBaseURL
	dateURI := fmt.Sprintf("%s-%s-%d", weekday, month, day)

	mod := now.Year()
	weekendTried := false
	url := fmt.Sprintf("%s/%s-%d/", base, dateURI, mod)

	for {
		res, err := s.client.get(ctx, url, nil)
		if err != nil {
			return "", err
		}

		if res.Status == http.StatusNotFound {
			if mod > 3 {
				mod = 3
			} else {
				mod--
			}
			if mod <= 0 {
				if !weekendTried && (weekday == "saturday" || weekday == "sunday") {
					weekendTried = true
					url = fmt.Sprintf("%s/the-weekend-%s-%d-%d", base, month, day, day+1)
					s.log.Debug("skywatch trying weekend post", logx.String("url", url))
					continue
				}
				return "", errors.New("couldn't find it")
			}
			tail := ""
			if mod > 1 {
				tail = fmt.Sprintf("-%d", mod)
			}
			url = fmt.Sprintf("%s/%s%s/", base, dateURI, tail)
			continue
		}

		if res.Status != http.StatusOK {
			return "", fmt.Errorf("skywatch returned status %d", res.Status)
		}

		entry, err := extractClassText(res.Body, "entry-content")
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("**%s, %s %d**\n\n%s\n\n%s", now.Weekday(), now.Month(), day, entry, base), nil
	}
}
