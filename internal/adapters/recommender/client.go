// Package recommender turns a submitted payload into recommendation results,
// either by calling the remote service or from the bundled card catalog.
package recommender

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/okian/cardwise/internal/domain/payload"
	"github.com/okian/cardwise/internal/domain/recommendation"
	"github.com/okian/cardwise/pkg/logger"
)

const (
	// DefaultURL is the local development endpoint of the recommendation service.
	DefaultURL = "http://localhost:5000/api/recommend"

	maxBodyBytes = 4 << 20
	opSubmit     = "recommender.submit"
	opHealth     = "recommender.health"
)

// Client submits payloads to the remote recommendation service. Each Submit
// is exactly one POST; retrying is up to the caller.
type Client struct {
	url        string
	healthURL  string
	httpClient *http.Client
	timeout    time.Duration
	userAgent  string
	log        logger.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout bounds each round-trip.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithHealthURL overrides the derived health endpoint.
func WithHealthURL(u string) ClientOption {
	return func(c *Client) { c.healthURL = u }
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) ClientOption {
	return func(c *Client) { c.userAgent = ua }
}

// WithLogger sets the logger used for request diagnostics.
func WithLogger(l logger.Logger) ClientOption {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

// NewClient returns a client for the service at endpoint.
func NewClient(endpoint string, opts ...ClientOption) *Client {
	if endpoint == "" {
		endpoint = DefaultURL
	}
	c := &Client{
		url:        endpoint,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		userAgent:  "cardwise",
		log:        logger.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.timeout > 0 {
		hc := *c.httpClient
		hc.Timeout = c.timeout
		c.httpClient = &hc
	}
	if c.healthURL == "" {
		c.healthURL = deriveHealthURL(endpoint)
	}
	return c
}

// URL returns the submission endpoint.
func (c *Client) URL() string { return c.url }

// Submit posts p and decodes the recommendations.
func (c *Client) Submit(ctx context.Context, p payload.Payload) (recommendation.Results, error) {
	body, err := payload.Encode(p)
	if err != nil {
		return recommendation.Results{}, decodeError(opSubmit, 0, nil, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return recommendation.Results{}, transportError(opSubmit, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Warn(ctx, "recommendation request failed", logger.String("url", c.url), logger.Error(err))
		return recommendation.Results{}, transportError(opSubmit, err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return recommendation.Results{}, transportError(opSubmit, err)
	}
	c.log.Debug(ctx, "recommendation response",
		logger.Int("status", resp.StatusCode),
		logger.Int("bytes", len(raw)),
		logger.Duration("elapsed", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return recommendation.Results{}, statusError(opSubmit, resp.StatusCode, raw, failureMessage(resp.StatusCode, raw))
	}

	var recs []recommendation.Recommendation
	if err := json.Unmarshal(raw, &recs); err != nil {
		return recommendation.Results{}, decodeError(opSubmit, resp.StatusCode, raw, err)
	}
	return recommendation.NewResults(recs, p), nil
}

// failureMessage prefers the service's own {"error": "..."} text.
func failureMessage(status int, body []byte) string {
	var e struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &e); err != nil {
		return fmt.Sprintf("Server responded with status: %d. Details: %s", status, strings.TrimSpace(string(body)))
	}
	if e.Error == "" {
		return fmt.Sprintf("Server responded with status: %d", status)
	}
	return e.Error
}

// Health checks the service health endpoint.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.healthURL, nil)
	if err != nil {
		return transportError(opHealth, err)
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return transportError(opHealth, err)
	}
	defer func() { _ = resp.Body.Close() }()
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if resp.StatusCode != http.StatusOK {
		return statusError(opHealth, resp.StatusCode, raw, failureMessage(resp.StatusCode, raw))
	}
	return nil
}

// deriveHealthURL maps .../recommend to .../health on the same base.
func deriveHealthURL(endpoint string) string {
	u, err := url.Parse(endpoint)
	if err != nil {
		return endpoint
	}
	if i := strings.LastIndex(u.Path, "/"); i >= 0 {
		u.Path = u.Path[:i] + "/health"
	} else {
		u.Path = "/health"
	}
	u.RawQuery = ""
	return u.String()
}
