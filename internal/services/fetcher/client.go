package fetcher

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/sony/gobreaker"
)

// fetchResult is a completed HTTP exchange. A 404 is a result, not an
// error: the retry policies react to definite not-found responses.
type fetchResult struct {
	Status int
	Body   []byte
}

// httpClient wraps net/http with a per-host circuit breaker so a source
// that starts failing hard stops eating a job's whole fire window.
type httpClient struct {
	http *http.Client

	mu       sync.Mutex
	breakers map[string]*gobreaker.CircuitBreaker
}

func newHTTPClient(timeout time.Duration) *httpClient {
	return &httpClient{
		http:     &http.Client{Timeout: timeout},
		breakers: map[string]*gobreaker.CircuitBreaker{},
	}
}

func (c *httpClient) breaker(host string) *gobreaker.CircuitBreaker {
	c.mu.Lock()
	defer c.mu.Unlock()
	cb := c.breakers[host]
	if cb == nil {
		cb = gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    host,
			Timeout: time.Minute,
		})
		c.breakers[host] = cb
	}
	return cb
}

func (c *httpClient) get(ctx context.Context, rawURL string, header http.Header) (*fetchResult, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("bad url %q: %w", rawURL, err)
	}

	out, err := c.breaker(u.Host).Execute(func() (any, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return nil, err
		}
		for k, vs := range header {
			for _, v := range vs {
				req.Header.Add(k, v)
			}
		}

		resp, err := c.http.Do(req)
		if err != nil {
			return nil, err
		}
		defer func() { _ = resp.Body.Close() }()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode >= 500 {
			// Count server errors against the breaker.
			return nil, fmt.Errorf("%s returned status %d", u.Host, resp.StatusCode)
		}
		return &fetchResult{Status: resp.StatusCode, Body: body}, nil
	})
	if err != nil {
		return nil, err
	}
	return out.(*fetchResult), nil
}
