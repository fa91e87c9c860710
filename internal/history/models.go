package history

import (
	"time"

	"jazzmate/internal/services/jazzmate"
)

// State is the final (or current) outcome of a watch session.
type State string

const (
	StateRunning   State = "running"
	StateReady     State = "ready"
	StateTimedOut  State = "timed_out"
	StateFailed    State = "failed"
	StateStopped   State = "stopped"
	StateAbandoned State = "abandoned"
)

// Terminal reports whether the session has ended.
func (s State) Terminal() bool {
	return s != StateRunning && s != ""
}

// Session records one watch run.
type Session struct {
	ID                  string      `json:"id"`
	ReviewID            jazzmate.ID `json:"review_id"`
	State               State       `json:"state"`
	Attempts            int         `json:"attempts"`
	GenerationTriggered bool        `json:"generation_triggered"`
	GenerationError     string      `json:"generation_error,omitempty"`
	FailureReason       string      `json:"failure_reason,omitempty"`
	RecommendationCount int         `json:"recommendation_count"`
	PID                 int         `json:"pid"`
	StartedAt           time.Time   `json:"started_at"`
	FinishedAt          *time.Time  `json:"finished_at,omitempty"`
}

// Duration returns how long the session ran, or ran so far when unfinished.
func (s *Session) Duration(now time.Time) time.Duration {
	if s == nil || s.StartedAt.IsZero() {
		return 0
	}
	end := now
	if s.FinishedAt != nil {
		end = *s.FinishedAt
	}
	if end.Before(s.StartedAt) {
		return 0
	}
	return end.Sub(s.StartedAt)
}
