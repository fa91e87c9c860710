package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"jazzmate/internal/config"
)

const userAgent = "JazzMate-Go/0.1.0"

// Service defines the notification surface exposed to the watch command.
type Service interface {
	NotifyRecommendationsReady(ctx context.Context, reviewLabel string, count int) error
	NotifyPollTimedOut(ctx context.Context, reviewLabel string) error
	NotifyWatchFailed(ctx context.Context, reviewLabel string, err error) error
	TestNotification(ctx context.Context) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	if cfg == nil {
		return noopService{}
	}
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &ntfyService{
		endpoint: topic,
		client:   &http.Client{Timeout: timeout},
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint string
	client   *http.Client
}

func (n *ntfyService) NotifyRecommendationsReady(ctx context.Context, reviewLabel string, count int) error {
	noun := "recommendations"
	if count == 1 {
		noun = "recommendation"
	}
	return n.send(ctx, payload{
		title:   "JazzMate - Recommendations Ready",
		message: fmt.Sprintf("🎷 %d %s ready for %s", count, noun, labelOrDefault(reviewLabel)),
		tags:    []string{"jazzmate", "recommendations", "ready"},
	})
}

func (n *ntfyService) NotifyPollTimedOut(ctx context.Context, reviewLabel string) error {
	return n.send(ctx, payload{
		title:   "JazzMate - Still Waiting",
		message: fmt.Sprintf("⏳ Recommendations for %s are not ready yet. Try again later.", labelOrDefault(reviewLabel)),
		tags:    []string{"jazzmate", "recommendations", "timeout"},
	})
}

func (n *ntfyService) NotifyWatchFailed(ctx context.Context, reviewLabel string, cause error) error {
	detail := "unknown error"
	if cause != nil {
		detail = cause.Error()
	}
	return n.send(ctx, payload{
		title:    "JazzMate - Error",
		message:  fmt.Sprintf("❌ Could not load %s: %s", labelOrDefault(reviewLabel), detail),
		tags:     []string{"jazzmate", "error", "alert"},
		priority: "high",
	})
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	return n.send(ctx, payload{
		title:    "JazzMate - Test",
		message:  "🧪 Notification system test from JazzMate",
		tags:     []string{"jazzmate", "test"},
		priority: "low",
	})
}

func labelOrDefault(label string) string {
	label = strings.TrimSpace(label)
	if label == "" {
		return "your review"
	}
	return label
}

func (n *ntfyService) send(ctx context.Context, data payload) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" && data.priority != "default" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type noopService struct{}

func (noopService) NotifyRecommendationsReady(context.Context, string, int) error { return nil }
func (noopService) NotifyPollTimedOut(context.Context, string) error              { return nil }
func (noopService) NotifyWatchFailed(context.Context, string, error) error        { return nil }
func (noopService) TestNotification(context.Context) error                       { return nil }
