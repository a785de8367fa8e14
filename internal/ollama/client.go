// Package ollama talks to a locally hosted Ollama server: a liveness probe
// against /api/tags and synchronous, non-streaming generation against
// /api/generate. Generation can legitimately take minutes on large local
// models, so the request timeout is configured in the hours range.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	// DefaultBaseURL is the standard local Ollama endpoint.
	DefaultBaseURL = "http://localhost:11434"

	// DefaultModel is the default generation model.
	DefaultModel = "gpt-oss:20b"

	// DefaultTimeout bounds one generation call. Thinking models spend a
	// long time reasoning before emitting output.
	DefaultTimeout = 5 * time.Hour

	// probeTimeout bounds the liveness check.
	probeTimeout = 10 * time.Second
)

// ErrTimeout indicates generation exceeded the configured timeout.
var ErrTimeout = errors.New("ollama: generation timed out")

// ErrUnreachable indicates the server could not be reached.
var ErrUnreachable = errors.New("ollama: server unreachable")

// EmptyError indicates the server responded but no text could be extracted
// from any known response field. Raw preserves the payload for diagnosis.
type EmptyError struct {
	RequestID string
	Raw       json.RawMessage
}

func (e *EmptyError) Error() string {
	return fmt.Sprintf("ollama: empty generation response (request %s)", e.RequestID)
}

// StatusError is a non-2xx response from the server.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("ollama: unexpected status %d: %s", e.StatusCode, e.Body)
}

// Options are the generation parameters passed through to the model.
type Options struct {
	Temperature   float64 `json:"temperature" mapstructure:"temperature"`
	TopP          float64 `json:"top_p" mapstructure:"top_p"`
	TopK          int     `json:"top_k" mapstructure:"top_k"`
	NumPredict    int     `json:"num_predict" mapstructure:"num_predict"`
	RepeatPenalty float64 `json:"repeat_penalty" mapstructure:"repeat_penalty"`
	NumCtx        int     `json:"num_ctx" mapstructure:"num_ctx"`
}

// DefaultOptions returns generation parameters tuned for long scholarly
// output at low temperature.
func DefaultOptions() Options {
	return Options{
		Temperature:   0.3,
		TopP:          0.9,
		TopK:          40,
		NumPredict:    16000,
		RepeatPenalty: 1.1,
		NumCtx:        16384,
	}
}

// Config holds generation client configuration.
type Config struct {
	BaseURL string
	Model   string
	Timeout time.Duration
	Options Options
	Logger  *slog.Logger
}

// Client is a generation client for one Ollama server.
type Client struct {
	baseURL string
	model   string
	logger  *slog.Logger
	client  *http.Client
	probe   *http.Client

	// mu guards options, which the config watch goroutine replaces while
	// a generation may be in flight on another goroutine.
	mu      sync.Mutex
	options Options
}

// NewClient creates a generation client, filling zero-valued config with
// defaults.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Options == (Options{}) {
		cfg.Options = DefaultOptions()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return &Client{
		baseURL: cfg.BaseURL,
		model:   cfg.Model,
		options: cfg.Options,
		logger:  cfg.Logger,
		client:  &http.Client{Timeout: cfg.Timeout},
		probe:   &http.Client{Timeout: probeTimeout},
	}
}

// Model returns the configured model identifier.
func (c *Client) Model() string {
	return c.model
}

// SetOptions replaces the generation parameters for subsequent requests.
// Called from the config watch goroutine; an in-flight request keeps the
// options it was marshaled with.
func (c *Client) SetOptions(opts Options) {
	c.mu.Lock()
	c.options = opts
	c.mu.Unlock()
}

// generationOptions snapshots the current parameters for one request.
func (c *Client) generationOptions() Options {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.options
}

// ServerStatus is the result of a liveness probe.
type ServerStatus struct {
	Models     []string `json:"models" yaml:"models"`
	ModelReady bool     `json:"model_ready" yaml:"model_ready"`
}

// CheckAvailability probes the server and reports the installed models and
// whether the configured model is among them. A missing model is reported,
// not an error: the server may still pull it before the first generation.
func (c *Client) CheckAvailability(ctx context.Context) (*ServerStatus, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/tags", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.probe.Do(req)
	if err != nil {
		return nil, classifyTransportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var tags struct {
		Models []struct {
			Name string `json:"name"`
		} `json:"models"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tags); err != nil {
		return nil, fmt.Errorf("failed to decode tags response: %w", err)
	}

	status := &ServerStatus{}
	for _, m := range tags.Models {
		status.Models = append(status.Models, m.Name)
		if strings.Contains(m.Name, c.model) || strings.Contains(c.model, m.Name) {
			status.ModelReady = true
		}
	}

	if !status.ModelReady {
		c.logger.Warn("configured model not found on server", "model", c.model, "available", status.Models)
	}
	return status, nil
}

type generateRequest struct {
	Model   string  `json:"model"`
	Prompt  string  `json:"prompt"`
	Stream  bool    `json:"stream"`
	Options Options `json:"options"`
}

// Generate submits one synchronous generation request and blocks until the
// server responds or the timeout fires. A response whose stop reason is the
// output length limit is returned successfully with Truncated set. A
// response from which no text can be extracted fails with *EmptyError.
func (c *Client) Generate(ctx context.Context, prompt string) (*Result, error) {
	requestID := uuid.NewString()

	payload, err := json.Marshal(generateRequest{
		Model:   c.model,
		Prompt:  prompt,
		Stream:  false,
		Options: c.generationOptions(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal generate request: %w", err)
	}

	c.logger.Info("sending generation request",
		"request_id", requestID,
		"model", c.model,
		"prompt_chars", len(prompt),
	)
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/generate", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, classifyTransportError(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: truncateForLog(string(body))}
	}

	result := extract(body)
	result.RequestID = requestID

	c.logger.Info("generation complete",
		"request_id", requestID,
		"wall_time", time.Since(start).Round(time.Second),
		"model_time", result.Duration.Round(time.Second),
		"eval_count", result.EvalCount,
		"done_reason", result.DoneReason,
		"output_chars", len(result.Output()),
	)

	if result.Truncated {
		c.logger.Warn("generation hit the output token limit, response may be incomplete",
			"request_id", requestID, "num_predict", c.options.NumPredict)
	}

	if result.Output() == "" {
		return nil, &EmptyError{RequestID: requestID, Raw: json.RawMessage(body)}
	}
	return result, nil
}

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

func truncateForLog(s string) string {
	const max = 512
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
