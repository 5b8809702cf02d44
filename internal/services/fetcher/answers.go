package fetcher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"astrobot/internal/astro"
)

// searchResponse is the slice of the Twitter search payload we consume.
type searchResponse struct {
	Statuses []struct {
		Entities struct {
			Media []struct {
				MediaURL string `json:"media_url"`
			} `json:"media"`
		} `json:"entities"`
	} `json:"statuses"`
}

// astrologyAnswers fetches the latest daily-reading card from the search
// API. Single attempt: a not-found or empty result reports failure, no
// retry.
func (s *Service) astrologyAnswers(ctx context.Context, target *astro.Target) (string, error) {
	_ = target

	query := url.QueryEscape(`(#dailyreading) (from:AstrologyAnswer)`)
	reqURL := fmt.Sprintf(
		"%s/1.1/search/tweets.json?q=%s&result_type=recent&count=1&include_entities=1&tweet_mode=extended",
		s.cfg.AnswersAPIURL, query)

	header := http.Header{}
	if s.cfg.TwitterBearer != "" {
		header.Set("Authorization", "Bearer "+s.cfg.TwitterBearer)
	}

	res, err := s.client.get(ctx, reqURL, header)
	if err != nil {
		return "", err
	}
	if res.Status == http.StatusNotFound {
		return "", errors.New("404")
	}
	if res.Status != http.StatusOK {
		return "", fmt.Errorf("search API returned status %d", res.Status)
	}

	var payload searchResponse
	if err := json.Unmarshal(res.Body, &payload); err != nil {
		return "", fmt.Errorf("decode search response: %w", err)
	}
	if len(payload.Statuses) == 0 || len(payload.Statuses[0].Entities.Media) == 0 {
		return "", errors.New("no daily reading in search response")
	}
	return payload.Statuses[0].Entities.Media[0].MediaURL, nil
}
