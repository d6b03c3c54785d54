// Package aggregator is a thin HTTP client for the DEX aggregator's quote,
// approval and swap endpoints. Responses stay opaque; swapcore adapts them.
package aggregator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/ligun0805/swapguard/internal/swapcore"
)

const apiPrefix = "/api/v5/dex/aggregator"

var errBaseURLHasAPI = errors.New("aggregator base URL must not include '/api'; use the host only, e.g. https://web3.okx.com")

// HTTPError represents a non-2xx aggregator response.
type HTTPError struct {
	StatusCode int
	Status     string
	URL        string
	Method     string
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%s %s failed with status %d %s: %s", e.Method, e.URL, e.StatusCode, e.Status, e.Body)
}

// APIError is a 200 response whose envelope reports failure (code != "0").
type APIError struct {
	Code string
	Msg  string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("aggregator error %s: %s", e.Code, e.Msg)
}

// RetryConfig configures the retry behavior
type RetryConfig struct {
	MaxRetries           int
	InitialInterval      time.Duration
	MaxInterval          time.Duration
	RetryableStatusCodes []int
}

// DefaultRetryConfig provides sensible defaults for retries
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:           3,
		InitialInterval:      200 * time.Millisecond,
		MaxInterval:          5 * time.Second,
		RetryableStatusCodes: []int{408, 429, 500, 502, 503, 504},
	}
}

// Client talks to one aggregator deployment.
type Client struct {
	baseURL string
	headers map[string]string
	http    *http.Client
	retry   RetryConfig
	log     *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHeaders adds static headers to every request.
func WithHeaders(h map[string]string) Option {
	return func(c *Client) {
		for k, v := range h {
			c.headers[k] = v
		}
	}
}

// WithHTTPClient swaps the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout sets the timeout for all requests
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// WithRetryConfig sets the retry configuration
func WithRetryConfig(rc RetryConfig) Option {
	return func(c *Client) { c.retry = rc }
}

func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.log = l }
}

// New validates baseURL and builds a client.
func New(baseURL string, opts ...Option) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	u, err := url.Parse(base)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid aggregator base URL %q", baseURL)
	}
	p := strings.ToLower(strings.TrimRight(u.Path, "/"))
	if strings.Contains(p+"/", "/api/") {
		return nil, errBaseURLHasAPI
	}
	c := &Client{
		baseURL: base,
		headers: map[string]string{"Accept": "application/json"},
		http:    &http.Client{Timeout: 15 * time.Second},
		retry:   DefaultRetryConfig(),
		log:     zap.NewNop(),
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

// get performs one GET under retry and returns the decoded body.
func (c *Client) get(ctx context.Context, path string, params map[string]string) (any, error) {
	q := url.Values{}
	for k, v := range params {
		if strings.TrimSpace(v) != "" {
			q.Set(k, v)
		}
	}
	fullURL := c.baseURL + apiPrefix + path
	if len(q) > 0 {
		fullURL += "?" + q.Encode()
	}

	start := time.Now()
	var body []byte
	op := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("failed to create request: %w", err))
		}
		for k, v := range c.headers {
			req.Header.Set(k, v)
		}
		resp, err := c.http.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return backoff.Permanent(err)
			}
			return err
		}
		defer resp.Body.Close()
		b, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		if resp.StatusCode >= 400 {
			herr := &HTTPError{
				StatusCode: resp.StatusCode,
				Status:     resp.Status,
				URL:        fullURL,
				Method:     http.MethodGet,
				Body:       string(b),
			}
			if c.retryable(resp.StatusCode) {
				return herr
			}
			return backoff.Permanent(herr)
		}
		body = b
		return nil
	}

	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = c.retry.InitialInterval
	eb.MaxInterval = c.retry.MaxInterval
	eb.MaxElapsedTime = 0
	bo := backoff.WithContext(backoff.WithMaxRetries(eb, uint64(max(c.retry.MaxRetries, 0))), ctx)

	if err := backoff.Retry(op, bo); err != nil {
		c.log.Warn("aggregator request failed",
			zap.String("path", path),
			zap.Error(err),
			zap.Duration("duration", time.Since(start)))
		return nil, err
	}
	c.log.Debug("aggregator request ok",
		zap.String("path", path),
		zap.Duration("duration", time.Since(start)))

	out, err := swapcore.DecodePayload(body)
	if err != nil {
		return nil, fmt.Errorf("decode %s response: %w", path, err)
	}
	if err := envelopeError(out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) retryable(status int) bool {
	for _, s := range c.retry.RetryableStatusCodes {
		if s == status {
			return true
		}
	}
	return false
}

// envelopeError surfaces {"code":"<non-zero>","msg":...} bodies.
func envelopeError(v any) error {
	raw, ok := swapcore.Lookup(v, "code")
	if !ok {
		return nil
	}
	code := strings.TrimSpace(fmt.Sprint(raw))
	if code == "" || code == "0" {
		return nil
	}
	msg, _ := swapcore.Lookup(v, "msg")
	s, _ := msg.(string)
	return &APIError{Code: code, Msg: s}
}
