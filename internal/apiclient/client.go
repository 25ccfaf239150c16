package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/eugenenazirov/docs-e2e/internal/environments"
	"github.com/eugenenazirov/docs-e2e/internal/helpers"
)

// ErrNoAPIURL is returned when the active profile defines no API root.
var ErrNoAPIURL = errors.New("profile has no API URL")

// StatusError reports a non-2xx response.
type StatusError struct {
	Method string
	URL    string
	Code   int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: unexpected status %d", e.Method, e.URL, e.Code)
}

// Temporary reports whether retrying could help.
func (e *StatusError) Temporary() bool {
	return e.Code >= 500 || e.Code == http.StatusTooManyRequests
}

// Repository is the subset of the repository payload the suite checks.
type Repository struct {
	Name     string `json:"name"`
	FullName string `json:"full_name"`
	Stars    int    `json:"stargazers_count"`
}

// Client calls the API root of an environment profile.
type Client struct {
	base     *url.URL
	http     *http.Client
	attempts int
	backoff  time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client; its transport is kept as is.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		cl.http = c
	}
}

// WithRetries retries transient failures up to attempts times in total.
func WithRetries(attempts int, backoff time.Duration) Option {
	return func(cl *Client) {
		cl.attempts = attempts
		cl.backoff = backoff
	}
}

// New builds a client for profile.APIURL, logging every request with logger.
func New(profile environments.Profile, logger *zap.Logger, opts ...Option) (*Client, error) {
	if !profile.HasAPIURL() {
		return nil, fmt.Errorf("%w: %s", ErrNoAPIURL, profile.Name)
	}
	base, err := url.Parse(strings.TrimRight(profile.APIURL, "/") + "/")
	if err != nil {
		return nil, fmt.Errorf("parse API URL: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	c := &Client{
		base: base,
		http: &http.Client{
			Timeout:   profile.Timeout(),
			Transport: newLoggingTransport(logger, http.DefaultTransport),
		},
		attempts: 1,
		backoff:  time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Repository fetches /repos/{owner}/{name}.
func (c *Client) Repository(ctx context.Context, owner, name string) (Repository, error) {
	var repo Repository
	ref := &url.URL{
		Path:    "repos/" + owner + "/" + name,
		RawPath: "repos/" + url.PathEscape(owner) + "/" + url.PathEscape(name),
	}
	err := c.getJSON(ctx, ref, &repo)
	return repo, err
}

func (c *Client) getJSON(ctx context.Context, ref *url.URL, out any) error {
	target := c.base.ResolveReference(ref).String()

	return helpers.RetryWithBackoff(ctx, c.attempts, c.backoff, func(ctx context.Context) error {
		err := c.doJSON(ctx, target, out)
		var statusErr *StatusError
		if errors.As(err, &statusErr) && !statusErr.Temporary() {
			return helpers.Permanent(err)
		}
		return err
	})
}

func (c *Client) doJSON(ctx context.Context, target string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("GET %s: %w", target, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return &StatusError{Method: http.MethodGet, URL: target, Code: resp.StatusCode}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", target, err)
	}
	return nil
}
