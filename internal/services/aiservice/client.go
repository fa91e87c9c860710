package aiservice

import (
	"context"
	"net/http"
	"strings"

	"jazzmate/internal/config"
	"jazzmate/internal/services"
	"jazzmate/internal/services/jazzmate"
	"jazzmate/internal/services/transport"
)

const component = "ai-service"

// DefaultLimit is the number of recommendations requested per review.
const DefaultLimit = 3

// GenerateRequest asks the AI service to compute recommendations for a review.
type GenerateRequest struct {
	ReviewText string      `json:"review_text"`
	ReviewID   jazzmate.ID `json:"review_id"`
	Limit      int         `json:"limit"`
}

// GenerateResponse is the acknowledgement returned by the AI service.
type GenerateResponse struct {
	Success  bool        `json:"success"`
	Message  string      `json:"message,omitempty"`
	ReviewID jazzmate.ID `json:"review_id,omitempty"`
}

// Client talks to the AI service.
type Client struct {
	http *transport.Client
}

// NewClient wraps an existing transport.
func NewClient(t *transport.Client) *Client {
	return &Client{http: t}
}

// NewFromConfig builds a client for the configured AI service. The backend's
// rate and breaker settings apply to the AI service as well.
func NewFromConfig(cfg *config.Config, opts ...transport.Option) *Client {
	tc := transport.Config{Name: component}
	if cfg != nil {
		tc.BaseURL = cfg.AIService.BaseURL
		tc.Timeout = cfg.AIServiceTimeout()
		tc.RequestsPerSecond = cfg.Backend.RequestsPerSecond
		tc.Burst = cfg.Backend.Burst
		tc.BreakerFailures = cfg.Backend.BreakerFailures
		tc.BreakerCooldown = cfg.BreakerCooldown()
	}
	return NewClient(transport.New(tc, opts...))
}

// GenerateByReview triggers asynchronous recommendation generation. Any
// non-2xx response, or a body reporting success=false, is an error.
func (c *Client) GenerateByReview(ctx context.Context, req GenerateRequest) error {
	if strings.TrimSpace(req.ReviewText) == "" {
		return services.Wrap(services.ErrValidation, component, "generate", "review text is required", nil)
	}
	if req.Limit <= 0 {
		req.Limit = DefaultLimit
	}
	var resp struct {
		Success *bool  `json:"success"`
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := c.http.Do(ctx, transport.Request{Method: http.MethodPost, Path: "/recommend/by-review", Body: req}, &resp); err != nil {
		return err
	}
	if resp.Success != nil && !*resp.Success {
		message := strings.TrimSpace(resp.Error)
		if message == "" {
			message = strings.TrimSpace(resp.Message)
		}
		if message == "" {
			message = "generation rejected"
		}
		return services.Wrap(services.ErrTransient, component, "generate", message, nil)
	}
	return nil
}

// DataQuality fetches the data-quality report. A report with success=false is
// returned as an error carrying the service's message.
func (c *Client) DataQuality(ctx context.Context) (*DataQualityReport, error) {
	var report DataQualityReport
	if err := c.http.Do(ctx, transport.Request{Method: http.MethodGet, Path: "/admin/data-quality"}, &report); err != nil {
		return nil, err
	}
	if !report.Success || report.Data == nil {
		message := strings.TrimSpace(report.Message)
		if message == "" {
			message = strings.TrimSpace(report.Error)
		}
		if message == "" {
			message = "data-quality report unavailable"
		}
		return nil, services.Wrap(services.ErrUnavailable, component, "data quality", message, nil)
	}
	return &report, nil
}
