package history

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sys/unix"
	_ "modernc.org/sqlite"

	"jazzmate/internal/config"
	"jazzmate/internal/services"
	"jazzmate/internal/services/jazzmate"
)

// Store manages watch history backed by SQLite.
type Store struct {
	db    *sql.DB
	path  string
	now   func() time.Time
	alive func(pid int) bool
}

// Option customizes a Store.
type Option func(*Store)

// WithClock overrides the time source used for session timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLivenessCheck overrides how ReclaimStale decides whether a session's
// owning process is still running.
func WithLivenessCheck(alive func(pid int) bool) Option {
	return func(s *Store) {
		if alive != nil {
			s.alive = alive
		}
	}
}

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
)

const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

//go:embed schema.sql
var schemaSQL string

// historyVersion is kept in PRAGMA user_version. Bump it with schema.sql.
const historyVersion = 1

// ErrSchemaMismatch reports a history database created by an incompatible
// release.
var ErrSchemaMismatch = errors.New("schema version mismatch")

const sessionColumns = "id, review_id, state, attempts, generation_triggered, generation_error, failure_reason, recommendation_count, pid, started_at, finished_at"

// Open initializes or connects to the history database.
func Open(cfg *config.Config, opts ...Option) (*Store, error) {
	if cfg == nil {
		return nil, services.Wrap(services.ErrConfiguration, "history", "open", "configuration is required", nil)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	dbPath := cfg.HistoryPath()
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{
		db:    db,
		path:  dbPath,
		now:   func() time.Time { return time.Now().UTC() },
		alive: processAlive,
	}
	for _, opt := range opts {
		opt(store)
	}
	if err := store.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// migrate creates the tables in a fresh database and refuses one stamped
// with any other version.
func (s *Store) migrate(ctx context.Context) error {
	var version int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("read history version: %w", err)
	}
	switch version {
	case historyVersion:
		return nil
	case 0:
	default:
		return fmt.Errorf("%w: %s has version %d, expected %d (delete it to reset watch history)",
			ErrSchemaMismatch, s.path, version, historyVersion)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin migration: %w", err)
	}
	defer func() { _ = tx.Rollback() }()
	if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create watch history tables: %w", err)
	}
	if _, err := tx.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", historyVersion)); err != nil {
		return fmt.Errorf("stamp history version: %w", err)
	}
	return tx.Commit()
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

// Begin records the start of a watch for reviewID.
func (s *Store) Begin(ctx context.Context, reviewID jazzmate.ID) (*Session, error) {
	if reviewID.IsZero() {
		return nil, services.Wrap(services.ErrValidation, "history", "begin", "review id is required", nil)
	}
	session := &Session{
		ID:        uuid.NewString(),
		ReviewID:  reviewID,
		State:     StateRunning,
		PID:       os.Getpid(),
		StartedAt: s.now(),
	}
	err := s.exec(ctx,
		`INSERT INTO watch_sessions (id, review_id, state, pid, started_at) VALUES (?, ?, ?, ?, ?)`,
		session.ID,
		session.ReviewID.String(),
		string(session.State),
		session.PID,
		formatTime(session.StartedAt),
	)
	if err != nil {
		return nil, fmt.Errorf("insert session: %w", err)
	}
	return session, nil
}

// Finish persists the outcome of session. A session still marked running is
// recorded as stopped.
func (s *Store) Finish(ctx context.Context, session *Session) error {
	if session == nil {
		return errors.New("session is nil")
	}
	if !session.State.Terminal() {
		session.State = StateStopped
	}
	finished := s.now()
	session.FinishedAt = &finished
	err := s.exec(ctx,
		`UPDATE watch_sessions
         SET state = ?, attempts = ?, generation_triggered = ?, generation_error = ?,
             failure_reason = ?, recommendation_count = ?, finished_at = ?
         WHERE id = ?`,
		string(session.State),
		session.Attempts,
		boolToInt(session.GenerationTriggered),
		nullableString(session.GenerationError),
		nullableString(session.FailureReason),
		session.RecommendationCount,
		formatTime(finished),
		session.ID,
	)
	if err != nil {
		return fmt.Errorf("finish session: %w", err)
	}
	return nil
}

// List returns the most recent sessions, newest first. A non-positive limit
// returns every session.
func (s *Store) List(ctx context.Context, limit int) ([]*Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM watch_sessions ORDER BY started_at DESC, rowid DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	return s.query(ctx, query, args...)
}

// ForReview returns every session recorded for reviewID, newest first.
func (s *Store) ForReview(ctx context.Context, reviewID jazzmate.ID) ([]*Session, error) {
	return s.query(ctx,
		`SELECT `+sessionColumns+` FROM watch_sessions WHERE review_id = ? ORDER BY started_at DESC, rowid DESC`,
		reviewID.String(),
	)
}

// Prune removes finished sessions that started before now-olderThan.
func (s *Store) Prune(ctx context.Context, olderThan time.Duration) (int64, error) {
	if olderThan <= 0 {
		return 0, nil
	}
	ctx = ensureContext(ctx)
	cutoff := formatTime(s.now().Add(-olderThan))
	var removed int64
	err := retryOnBusy(ctx, func() error {
		res, err := s.db.ExecContext(ctx,
			`DELETE FROM watch_sessions WHERE state != ? AND started_at < ?`,
			string(StateRunning), cutoff,
		)
		if err != nil {
			return err
		}
		removed, err = res.RowsAffected()
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("prune sessions: %w", err)
	}
	return removed, nil
}

// ReclaimStale marks running sessions whose owning process is gone as
// abandoned and returns how many were updated.
func (s *Store) ReclaimStale(ctx context.Context) (int64, error) {
	running, err := s.query(ctx,
		`SELECT `+sessionColumns+` FROM watch_sessions WHERE state = ?`,
		string(StateRunning),
	)
	if err != nil {
		return 0, err
	}
	var reclaimed int64
	for _, session := range running {
		if session.PID > 0 && s.alive(session.PID) {
			continue
		}
		err := s.exec(ctx,
			`UPDATE watch_sessions SET state = ?, failure_reason = ?, finished_at = ? WHERE id = ? AND state = ?`,
			string(StateAbandoned),
			"watch process exited before finishing",
			formatTime(s.now()),
			session.ID,
			string(StateRunning),
		)
		if err != nil {
			return reclaimed, fmt.Errorf("reclaim session %s: %w", session.ID, err)
		}
		reclaimed++
	}
	return reclaimed, nil
}

// processAlive checks pid with signal 0. EPERM still means the process exists.
func processAlive(pid int) bool {
	err := unix.Kill(pid, 0)
	return err == nil || errors.Is(err, unix.EPERM)
}

func (s *Store) query(ctx context.Context, query string, args ...any) ([]*Session, error) {
	rows, err := s.db.QueryContext(ensureContext(ctx), query, args...)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*Session
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sessions = append(sessions, session)
	}
	return sessions, rows.Err()
}

func (s *Store) exec(ctx context.Context, query string, args ...any) error {
	ctx = ensureContext(ctx)
	return retryOnBusy(ctx, func() error {
		_, err := s.db.ExecContext(ctx, query, args...)
		return err
	})
}

func scanSession(scanner interface{ Scan(dest ...any) error }) (*Session, error) {
	var (
		id              string
		reviewID        string
		state           string
		attempts        int
		triggered       int
		generationError sql.NullString
		failureReason   sql.NullString
		count           int
		pid             int
		startedRaw      string
		finishedRaw     sql.NullString
	)
	if err := scanner.Scan(
		&id,
		&reviewID,
		&state,
		&attempts,
		&triggered,
		&generationError,
		&failureReason,
		&count,
		&pid,
		&startedRaw,
		&finishedRaw,
	); err != nil {
		return nil, err
	}

	session := &Session{
		ID:                  id,
		ReviewID:            jazzmate.ID(reviewID),
		State:               State(state),
		Attempts:            attempts,
		GenerationTriggered: triggered != 0,
		GenerationError:     generationError.String,
		FailureReason:       failureReason.String,
		RecommendationCount: count,
		PID:                 pid,
	}
	if ts, err := parseTimeString(startedRaw); err == nil {
		session.StartedAt = ts
	}
	if finishedRaw.Valid {
		if ts, err := parseTimeString(finishedRaw.String); err == nil {
			session.FinishedAt = &ts
		}
	}
	return session, nil
}

func ensureContext(ctx context.Context) context.Context {
	if ctx != nil {
		return ctx
	}
	return context.Background()
}

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func retryOnBusy(ctx context.Context, op func() error) error {
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil || !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}
