// Package banidb fetches and normalizes ang content from the BaniDB API.
//
// The upstream payload is loosely typed: the same logical field may arrive
// as a string or a keyed object depending on API version, and any field may
// be missing. Fetching fails loudly with typed errors; normalization never
// fails and degrades missing data to typed defaults instead.
package banidb

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/avast/retry-go/v4"
)

const (
	// DefaultBaseURL is the public BaniDB API.
	DefaultBaseURL = "https://api.banidb.com/v2"

	// DefaultSourceID selects Sri Guru Granth Sahib Ji.
	DefaultSourceID = "1"

	// DefaultTotalAngs is the number of angs in the source.
	DefaultTotalAngs = 1430

	// DefaultTimeout bounds a single fetch.
	DefaultTimeout = 30 * time.Second

	// DefaultMaxAttempts bounds fetch retries on transient failures.
	DefaultMaxAttempts = 3
)

// DefaultTranslationSources is the priority order among English translation
// sources: BaniDB's own, then Manmohan Singh, then SSK.
var DefaultTranslationSources = []string{"bdb", "ms", "ssk"}

// ErrTimeout indicates the upstream did not respond within the timeout.
var ErrTimeout = errors.New("banidb: request timed out")

// ErrUnreachable indicates the upstream could not be reached at all.
var ErrUnreachable = errors.New("banidb: api unreachable")

// StatusError is a non-2xx upstream response.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("banidb: unexpected status %d", e.StatusCode)
}

// Config holds source client configuration.
type Config struct {
	BaseURL            string
	SourceID           string
	Timeout            time.Duration
	MaxAttempts        int
	TranslationSources []string
	Logger             *slog.Logger
}

// Client fetches ang content from the BaniDB API.
type Client struct {
	baseURL            string
	sourceID           string
	maxAttempts        int
	translationSources []string
	logger             *slog.Logger
	client             *http.Client
}

// NewClient creates a source client, filling zero-valued config with defaults.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.SourceID == "" {
		cfg.SourceID = DefaultSourceID
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxAttempts == 0 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}
	if len(cfg.TranslationSources) == 0 {
		cfg.TranslationSources = DefaultTranslationSources
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return &Client{
		baseURL:            cfg.BaseURL,
		sourceID:           cfg.SourceID,
		maxAttempts:        cfg.MaxAttempts,
		translationSources: cfg.TranslationSources,
		logger:             cfg.Logger,
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// FetchRaw fetches the raw payload for one ang. Transient failures (timeout,
// connection errors, 5xx) are retried up to MaxAttempts; client errors are
// returned immediately.
func (c *Client) FetchRaw(ctx context.Context, ang int) ([]byte, error) {
	fetchURL := fmt.Sprintf("%s/angs/%d/%s", c.baseURL, ang, c.sourceID)

	var body []byte
	err := retry.Do(
		func() error {
			var err error
			body, err = c.fetchOnce(ctx, fetchURL)
			return err
		},
		retry.Context(ctx),
		retry.Attempts(uint(c.maxAttempts)),
		retry.Delay(1*time.Second),
		retry.LastErrorOnly(true),
		retry.RetryIf(isRetryable),
		retry.OnRetry(func(n uint, err error) {
			c.logger.Warn("fetch retry", "ang", ang, "attempt", n+1, "error", err)
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("fetching ang %d: %w", ang, err)
	}
	return body, nil
}

func (c *Client) fetchOnce(ctx context.Context, fetchURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fetchURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, classifyTransportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, resp.Body)
		return nil, &StatusError{StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	return body, nil
}

// GetPage fetches and normalizes one ang. Fetch failures propagate;
// normalization cannot fail.
func (c *Client) GetPage(ctx context.Context, ang int) (*Page, error) {
	raw, err := c.FetchRaw(ctx, ang)
	if err != nil {
		return nil, err
	}

	page := c.Normalize(raw, ang)
	c.logger.Info("fetched ang",
		"ang", page.Ang,
		"lines", len(page.Lines),
		"raag", page.Raag,
		"writer", page.Writer,
		"has_transliteration", page.Transliteration != "",
	)
	return page, nil
}

// classifyTransportError maps low-level HTTP client errors onto the package
// sentinels so callers can distinguish timeout from unreachable.
func classifyTransportError(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		if urlErr.Timeout() {
			return fmt.Errorf("%w: %v", ErrTimeout, err)
		}
		return fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	return err
}

func isRetryable(err error) bool {
	if errors.Is(err, ErrTimeout) || errors.Is(err, ErrUnreachable) {
		return true
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode >= 500
	}
	return false
}
