package transport

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
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"jazzmate/internal/logging"
	"jazzmate/internal/services"
)

const (
	defaultTimeout   = 10 * time.Second
	maxErrorBodySize = 4 << 10
	// RequestIDHeader carries the correlation identifier to the server.
	RequestIDHeader = "X-Request-ID"
)

// HTTPDoer describes the HTTP client used to issue requests.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Config captures the connection and resilience settings for one remote service.
type Config struct {
	Name              string
	BaseURL           string
	Timeout           time.Duration
	RequestsPerSecond float64
	Burst             int
	// BreakerFailures is the number of consecutive failures that opens the
	// breaker. Zero disables the breaker.
	BreakerFailures int
	BreakerCooldown time.Duration
}

// Client issues JSON requests against a single base URL.
type Client struct {
	name    string
	baseURL string
	http    HTTPDoer
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker[struct{}]
	logger  *slog.Logger
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(doer HTTPDoer) Option {
	return func(c *Client) {
		if doer != nil {
			c.http = doer
		}
	}
}

// WithLogger attaches a logger used for breaker transitions and request tracing.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New constructs a client for cfg.
func New(cfg Config, opts ...Option) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	name := strings.TrimSpace(cfg.Name)
	if name == "" {
		name = "http"
	}
	c := &Client{
		name:    name,
		baseURL: strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		http:    &http.Client{Timeout: timeout},
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = logging.NewComponentLogger(c.logger, name)

	limit := rate.Inf
	burst := cfg.Burst
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
		if burst <= 0 {
			burst = 1
		}
	}
	c.limiter = rate.NewLimiter(limit, burst)

	if cfg.BreakerFailures > 0 {
		threshold := uint32(cfg.BreakerFailures)
		c.breaker = gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
			Name:        name,
			MaxRequests: 1,
			Timeout:     cfg.BreakerCooldown,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= threshold
			},
			IsSuccessful: isBreakerSuccess,
			OnStateChange: func(breaker string, from, to gobreaker.State) {
				attrs := []logging.Attr{
					logging.String("breaker", breaker),
					logging.String("from", from.String()),
					logging.String("to", to.String()),
				}
				if to == gobreaker.StateOpen {
					logging.WarnWithContext(c.logger, "circuit opened; requests short-circuited", "breaker_open",
						append(attrs,
							logging.String(logging.FieldErrorHint, "check that "+name+" is reachable"),
							logging.String(logging.FieldImpact, "requests fail fast until cooldown elapses"),
						)...)
					return
				}
				c.logger.Info("circuit state changed", logging.Args(attrs...)...)
			},
		})
	}
	return c
}

// BaseURL returns the normalized base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Request describes one JSON call.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Body   any
}

// Do issues req and decodes a successful JSON response into out (when non-nil).
// Failures carry a services marker: 404 → ErrNotFound, 400/422 →
// ErrValidation, 5xx and network errors → ErrTransient, open breaker →
// ErrUnavailable. Context cancellation is returned unwrapped by marker so
// callers can detect it with errors.Is.
func (c *Client) Do(ctx context.Context, req Request, out any) error {
	if c == nil {
		return services.Wrap(services.ErrConfiguration, "transport", "do", "client not configured", nil)
	}
	operation := strings.TrimSpace(req.Method + " " + req.Path)
	if err := c.limiter.Wait(ctx); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("%s %s: %w", c.name, operation, ctxErr)
		}
		return services.Wrap(services.ErrTransient, c.name, operation, "rate limiter", err)
	}
	if c.breaker == nil {
		return c.roundTrip(ctx, req, operation, out)
	}
	_, err := c.breaker.Execute(func() (struct{}, error) {
		return struct{}{}, c.roundTrip(ctx, req, operation, out)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return services.Wrap(services.ErrUnavailable, c.name, operation, "circuit open", err)
	}
	return err
}

func (c *Client) roundTrip(ctx context.Context, req Request, operation string, out any) error {
	endpoint := c.baseURL + req.Path
	if len(req.Query) > 0 {
		endpoint += "?" + req.Query.Encode()
	}

	var body io.Reader
	if req.Body != nil {
		payload, err := json.Marshal(req.Body)
		if err != nil {
			return services.Wrap(services.ErrValidation, c.name, operation, "encode request", err)
		}
		body = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, endpoint, body)
	if err != nil {
		return services.Wrap(services.ErrConfiguration, c.name, operation, "build request", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if rid, ok := services.RequestIDFromContext(ctx); ok {
		httpReq.Header.Set(RequestIDHeader, rid)
	}

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	latency := time.Since(start)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("%s %s: %w", c.name, operation, ctxErr)
		}
		return services.Wrap(services.ErrTransient, c.name, operation, fmt.Sprintf("request failed after %s", latency.Round(time.Millisecond)), err)
	}
	defer resp.Body.Close()

	logging.WithContext(ctx, c.logger).Debug("http response",
		logging.String("operation", operation),
		logging.Int("status", resp.StatusCode),
		logging.Duration("latency", latency),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
		message := fmt.Sprintf("http %d", resp.StatusCode)
		if text := strings.TrimSpace(string(snippet)); text != "" {
			message += ": " + text
		}
		return services.Wrap(services.MarkerForStatus(resp.StatusCode), c.name, operation, message, nil)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return services.Wrap(services.ErrTransient, c.name, operation, "read response", err)
	}
	if len(bytes.TrimSpace(payload)) == 0 {
		return nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return services.Wrap(services.ErrTransient, c.name, operation, "decode response", err)
	}
	return nil
}

func isBreakerSuccess(err error) bool {
	return err == nil ||
		services.IsClientFault(err) ||
		errors.Is(err, context.Canceled)
}
