package fetcher

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gosimple/slug"
	"golang.org/x/net/html"

	"astrobot/internal/astro"
)

// sign fetches one zodiac sign's daily horoscope by slug. Single attempt:
// not-found reports failure without retry.
func (s *Service) sign(ctx context.Context, target *astro.Target) (string, error) {
	base := s.cfg.HoroscopeBaseURL
	url := fmt.Sprintf("%s/%s-daily-horoscope/", base, slug.Make(target.Kind.String()))

	res, err := s.client.get(ctx, url, nil)
	if err != nil {
		return "", err
	}
	if res.Status == http.StatusNotFound {
		return "", errors.New("404")
	}
	if res.Status != http.StatusOK {
		return "", fmt.Errorf("horoscope returned status %d", res.Status)
	}

	entry, err := extractHoroscopeSummary(res.Body)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("**%s:**\n\n%s\n\n%s", target.Kind, entry, base), nil
}

// extractHoroscopeSummary pulls the text of the summary's inner div,
// dropping the bullet list (sign metadata, not horoscope text).
func extractHoroscopeSummary(body []byte) (string, error) {
	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("parse page: %w", err)
	}
	summary := findByClass(doc, "horoscope_summary")
	if summary == nil {
		return "", errors.New(`page has no "horoscope_summary" element`)
	}
	inner := findElement(summary, "div")
	if inner == nil {
		inner = summary
	}
	text := textByParagraph(inner, func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.Data == "ul"
	})
	if text == "" {
		return "", errors.New("horoscope summary is empty")
	}
	return text, nil
}
