package notifications_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"jazzmate/internal/config"
	"jazzmate/internal/notifications"
)

type capture struct {
	title    string
	tags     string
	priority string
	agent    string
	body     string
}

func newCaptureServer(t *testing.T, status int) (*httptest.Server, *capture) {
	t.Helper()
	captured := &capture{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("unexpected method: %s", r.Method)
		}
		captured.title = r.Header.Get("Title")
		captured.tags = r.Header.Get("Tags")
		captured.priority = r.Header.Get("Priority")
		captured.agent = r.Header.Get("User-Agent")
		body, _ := io.ReadAll(r.Body)
		captured.body = string(body)
		w.WriteHeader(status)
		if status >= 300 {
			_, _ = w.Write([]byte("topic rejected"))
		}
	}))
	t.Cleanup(server.Close)
	return server, captured
}

func serviceFor(url string) notifications.Service {
	cfg := config.Default()
	cfg.Notifications.NtfyTopic = url
	cfg.Notifications.RequestTimeout = 5
	return notifications.NewService(&cfg)
}

func TestNewServiceReturnsNoopWhenTopicMissing(t *testing.T) {
	cfg := config.Default()
	cfg.Notifications.NtfyTopic = "  "
	svc := notifications.NewService(&cfg)
	if err := svc.NotifyRecommendationsReady(context.Background(), "Review #1", 3); err != nil {
		t.Fatalf("expected noop notifier to return nil, got %v", err)
	}
	if err := notifications.NewService(nil).TestNotification(context.Background()); err != nil {
		t.Fatalf("expected nil config to yield noop, got %v", err)
	}
}

func TestNtfyServiceFormatsPayloads(t *testing.T) {
	tests := []struct {
		name           string
		send           func(notifications.Service) error
		expectTitle    string
		expectMessage  string
		expectTags     string
		expectPriority string
	}{
		{
			name: "recommendations ready",
			send: func(s notifications.Service) error {
				return s.NotifyRecommendationsReady(context.Background(), "So What", 3)
			},
			expectTitle:   "JazzMate - Recommendations Ready",
			expectMessage: "🎷 3 recommendations ready for So What",
			expectTags:    "jazzmate,recommendations,ready",
		},
		{
			name: "single recommendation",
			send: func(s notifications.Service) error {
				return s.NotifyRecommendationsReady(context.Background(), "", 1)
			},
			expectTitle:   "JazzMate - Recommendations Ready",
			expectMessage: "🎷 1 recommendation ready for your review",
			expectTags:    "jazzmate,recommendations,ready",
		},
		{
			name: "timed out",
			send: func(s notifications.Service) error {
				return s.NotifyPollTimedOut(context.Background(), "Take Five")
			},
			expectTitle:   "JazzMate - Still Waiting",
			expectMessage: "⏳ Recommendations for Take Five are not ready yet. Try again later.",
			expectTags:    "jazzmate,recommendations,timeout",
		},
		{
			name: "watch failed",
			send: func(s notifications.Service) error {
				return s.NotifyWatchFailed(context.Background(), "Review #9", errors.New("review not found"))
			},
			expectTitle:    "JazzMate - Error",
			expectMessage:  "❌ Could not load Review #9: review not found",
			expectTags:     "jazzmate,error,alert",
			expectPriority: "high",
		},
		{
			name:           "test",
			send:           func(s notifications.Service) error { return s.TestNotification(context.Background()) },
			expectTitle:    "JazzMate - Test",
			expectMessage:  "🧪 Notification system test from JazzMate",
			expectTags:     "jazzmate,test",
			expectPriority: "low",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			server, captured := newCaptureServer(t, http.StatusOK)
			if err := tc.send(serviceFor(server.URL)); err != nil {
				t.Fatalf("notification returned error: %v", err)
			}
			if captured.title != tc.expectTitle {
				t.Fatalf("expected title %q, got %q", tc.expectTitle, captured.title)
			}
			if captured.body != tc.expectMessage {
				t.Fatalf("expected message %q, got %q", tc.expectMessage, captured.body)
			}
			if captured.tags != tc.expectTags {
				t.Fatalf("expected tags %q, got %q", tc.expectTags, captured.tags)
			}
			if captured.priority != tc.expectPriority {
				t.Fatalf("expected priority %q, got %q", tc.expectPriority, captured.priority)
			}
			if !strings.HasPrefix(captured.agent, "JazzMate-Go") {
				t.Fatalf("unexpected user agent %q", captured.agent)
			}
		})
	}
}

func TestNtfyServiceReportsRejectedPublish(t *testing.T) {
	server, _ := newCaptureServer(t, http.StatusForbidden)
	err := serviceFor(server.URL).TestNotification(context.Background())
	if err == nil {
		t.Fatal("expected error for rejected publish")
	}
	if !strings.Contains(err.Error(), "403") || !strings.Contains(err.Error(), "topic rejected") {
		t.Fatalf("expected status and body in error, got %v", err)
	}
}
