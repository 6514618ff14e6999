package nominatim

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	NOMINATIM_URL = "https://nominatim.openstreetmap.org/search"
	USER_AGENT    = "sundash/1.0"

	// Shorter queries match too much of the planet to be useful.
	minQueryLength = 3
	defaultLimit   = 10
)

var ErrQueryTooShort = errors.New("query too short")

// Client searches a Nominatim server. The zero value uses the public server.
type Client struct {
	// BaseURL of the search endpoint. Defaults to NOMINATIM_URL.
	BaseURL string
	// UserAgent identifies the application, as Nominatim's usage policy
	// requires. Defaults to USER_AGENT.
	UserAgent string
	// HTTPClient defaults to a client with a short timeout.
	HTTPClient *http.Client
}

var defaultHTTPClient = &http.Client{Timeout: 10 * time.Second}

// Search looks up places matching the query.
func (c *Client) Search(ctx context.Context, q *SearchQuery) (Places, error) {
	var result Places

	if len(strings.TrimSpace(q.Text)) < minQueryLength {
		return nil, fmt.Errorf("%q: %w", q.Text, ErrQueryTooShort)
	}

	addr, err := q.url(c.baseURL())
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, addr.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent())
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to query nominatim: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("nominatim returned %s", resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode nominatim response: %w", err)
	}

	return result, nil
}

func (c *Client) baseURL() string {
	if c.BaseURL != "" {
		return c.BaseURL
	}
	return NOMINATIM_URL
}

func (c *Client) userAgent() string {
	if c.UserAgent != "" {
		return c.UserAgent
	}
	return USER_AGENT
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return defaultHTTPClient
}

func (q *SearchQuery) url(base string) (*url.URL, error) {
	addr, err := url.Parse(base)
	if err != nil {
		return nil, err
	}
	addr.RawQuery = q.build().Encode()
	return addr, nil
}

func (q *SearchQuery) build() url.Values {
	limit := q.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	vals := make(url.Values)
	vals.Add("q", strings.TrimSpace(q.Text))
	vals.Add("format", "json")
	vals.Add("limit", strconv.Itoa(limit))
	return vals
}
