package logging_test

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"jazzmate/internal/config"
	"jazzmate/internal/logging"
	"jazzmate/internal/services"
)

func TestNewFromConfigWritesLogFile(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.LogDir = filepath.Join(t.TempDir(), "logs")

	logger, err := logging.NewFromConfig(&cfg)
	if err != nil {
		t.Fatalf("NewFromConfig returned error: %v", err)
	}
	logger.Info("hello from test")

	content, err := os.ReadFile(filepath.Join(cfg.Paths.LogDir, logging.LogFileName))
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(content), "hello from test") {
		t.Fatalf("expected message in log file, got %q", content)
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "xml", Writer: &bytes.Buffer{}}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestConsoleLoggerRendersSubjectAndFields(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Format: "console", Level: "info", Writer: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logger = logging.NewComponentLogger(logger, "watcher")
	logger.Info("poll complete",
		logging.String(logging.FieldReviewID, "42"),
		logging.Int(logging.FieldAttempt, 3),
		logging.Int("recommendations", 2),
	)

	out := buf.String()
	for _, fragment := range []string{"INFO [watcher]", "Review #42 (attempt 3)", "poll complete", "    - recommendations: 2"} {
		if !strings.Contains(out, fragment) {
			t.Fatalf("expected %q in output %q", fragment, out)
		}
	}
	if strings.Contains(out, ".go:") {
		t.Fatalf("expected no source location at info level, got %q", out)
	}
}

func TestConsoleLoggerIncludesSourceForDebug(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Format: "console", Level: "debug", Writer: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Debug("detail")
	if !strings.Contains(buf.String(), "logger_test.go:") {
		t.Fatalf("expected source location in debug output, got %q", buf.String())
	}
}

func TestJSONLoggerIncludesContextFields(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Format: "json", Level: "info", Writer: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	ctx := services.WithReviewID(context.Background(), "42")
	ctx = services.WithRequestID(ctx, "req-1")
	logging.WithContext(ctx, logger).Info("generation requested")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("decode json log: %v (%q)", err, buf.String())
	}
	if entry["review_id"] != "42" || entry["correlation_id"] != "req-1" {
		t.Fatalf("missing context fields: %#v", entry)
	}
	if entry["level"] != "info" {
		t.Fatalf("expected lowercase level, got %#v", entry["level"])
	}
	if _, ok := entry["ts"]; !ok {
		t.Fatalf("expected ts key, got %#v", entry)
	}
}

func TestConsoleLoggerFormatsScoresErrorsAndDurations(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Format: "console", Level: "info", Writer: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	missing := services.Wrap(services.ErrNotFound, "jazzmate", "get review", "review 9", nil)
	logger.Info("formatted",
		logging.Float64(logging.FieldScore, 0.875),
		logging.Float64("ratio", 0.5),
		logging.Duration("elapsed", 1234567*time.Microsecond),
		logging.Error(missing),
	)

	out := buf.String()
	for _, fragment := range []string{
		"    - score: 87.5%",
		"    - ratio: 0.5",
		"    - elapsed: 1.235s",
		"[not_found]",
	} {
		if !strings.Contains(out, fragment) {
			t.Fatalf("expected %q in output %q", fragment, out)
		}
	}
}

func TestJSONLoggerClassifiesErrors(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Format: "json", Level: "info", Writer: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Info("lookup failed", logging.Error(services.Wrap(services.ErrTimeout, "jazzmate", "get track", "", nil)))

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("decode json log: %v (%q)", err, buf.String())
	}
	obj, ok := entry["error"].(map[string]any)
	if !ok {
		t.Fatalf("expected error object, got %#v", entry["error"])
	}
	if obj["kind"] != "timeout" || !strings.Contains(obj["message"].(string), "get track") {
		t.Fatalf("unexpected error object %#v", obj)
	}

	buf.Reset()
	logger.Info("plain", logging.Error(os.ErrClosed))
	entry = nil
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("decode json log: %v (%q)", err, buf.String())
	}
	if entry["error"] != os.ErrClosed.Error() {
		t.Fatalf("expected unclassified error as string, got %#v", entry["error"])
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Format: "console", Level: "warn", Writer: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Info("ignored")
	logging.WarnWithContext(logger, "kept", "test_warning")
	out := buf.String()
	if strings.Contains(out, "ignored") {
		t.Fatalf("expected info line to be filtered, got %q", out)
	}
	if !strings.Contains(out, "event_type: test_warning") || !strings.Contains(out, "impact:") {
		t.Fatalf("expected enforced warning fields, got %q", out)
	}
}

func TestPruneLogsRemovesExpiredFiles(t *testing.T) {
	dir := t.TempDir()
	now := time.Now()
	old := filepath.Join(dir, "old.log")
	fresh := filepath.Join(dir, "fresh.log")
	active := filepath.Join(dir, logging.LogFileName)
	other := filepath.Join(dir, "notes.txt")
	for _, path := range []string{old, fresh, active, other} {
		if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
	}
	stale := now.AddDate(0, 0, -40)
	for _, path := range []string{old, active, other} {
		if err := os.Chtimes(path, stale, stale); err != nil {
			t.Fatalf("chtimes: %v", err)
		}
	}

	removed := logging.PruneLogs(logging.NewNop(), dir, 30, now)
	if removed != 1 {
		t.Fatalf("expected 1 file removed, got %d", removed)
	}
	if _, err := os.Stat(old); !os.IsNotExist(err) {
		t.Fatalf("expected old.log removed, stat err=%v", err)
	}
	for _, path := range []string{fresh, active, other} {
		if _, err := os.Stat(path); err != nil {
			t.Fatalf("expected %s to remain: %v", path, err)
		}
	}
	if logging.PruneLogs(nil, dir, 0, now) != 0 {
		t.Fatal("expected zero retention to disable pruning")
	}
}
