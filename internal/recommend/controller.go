package recommend

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"jazzmate/internal/logging"
	"jazzmate/internal/services"
	"jazzmate/internal/services/aiservice"
	"jazzmate/internal/services/jazzmate"
)

const (
	DefaultInterval    = 10 * time.Second
	DefaultMaxAttempts = 30
)

// ReviewStore loads a review together with its recommendations.
type ReviewStore interface {
	GetReview(ctx context.Context, id jazzmate.ID) (*jazzmate.ReviewWithRecommendations, error)
}

// Generator asks the AI service to compute recommendations.
type Generator interface {
	GenerateByReview(ctx context.Context, req aiservice.GenerateRequest) error
}

// Option customizes a Controller.
type Option func(*Controller)

// WithInterval sets the delay between poll cycles.
func WithInterval(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.interval = d
		}
	}
}

// WithMaxAttempts sets the poll attempt budget.
func WithMaxAttempts(n int) Option {
	return func(c *Controller) {
		if n > 0 {
			c.maxAttempts = n
		}
	}
}

// WithClock replaces the timer source.
func WithClock(clock Clock) Option {
	return func(c *Controller) {
		if clock != nil {
			c.clock = clock
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithGenerationLimit sets the number of recommendations requested.
func WithGenerationLimit(n int) Option {
	return func(c *Controller) {
		if n > 0 {
			c.limit = n
		}
	}
}

// WithTrigger controls whether this controller requests generation. Callers
// whose review submission already started generation pass false.
func WithTrigger(enabled bool) Option {
	return func(c *Controller) {
		c.trigger = enabled
	}
}

// WithFormatter replaces the record formatter.
func WithFormatter(f *Formatter) Option {
	return func(c *Controller) {
		if f != nil {
			c.formatter = f
		}
	}
}

// Status is a point-in-time view of the current watch.
type Status struct {
	ReviewID            jazzmate.ID
	SessionID           string
	State               State
	Attempts            int
	GenerationTriggered bool
	// GenerationErr is the failure of the generation request, if any. It is
	// diagnostic only and never ends the watch.
	GenerationErr error
}

type pollState struct {
	reviewID  jazzmate.ID
	sessionID string
	ctx       context.Context
	cancel    context.CancelFunc

	state               State
	attempts            int
	generationTriggered bool
	generationErr       error
	indicating          bool
	timer               Timer
	stopped             bool
}

func (ps *pollState) releaseLocked() {
	if ps.timer != nil {
		ps.timer.Stop()
		ps.timer = nil
	}
	ps.cancel()
}

// Controller watches one review at a time for recommendations.
type Controller struct {
	reviews   ReviewStore
	generator Generator
	sink      Sink
	formatter *Formatter
	clock     Clock
	logger    *slog.Logger

	interval    time.Duration
	maxAttempts int
	limit       int
	trigger     bool

	// notifyMu serializes sink delivery with StopWatching so no callback
	// starts after StopWatching returns.
	notifyMu sync.Mutex

	mu        sync.Mutex
	idle      *sync.Cond
	inflight  int
	current   *pollState
	last      *pollState
	triggered map[jazzmate.ID]struct{}
}

// NewController builds a controller. When reviews also implements
// TrackCatalog it is used to enrich recommendations unless WithFormatter is
// supplied.
func NewController(reviews ReviewStore, generator Generator, sink Sink, opts ...Option) *Controller {
	c := &Controller{
		reviews:     reviews,
		generator:   generator,
		sink:        sink,
		clock:       SystemClock{},
		logger:      logging.NewNop(),
		interval:    DefaultInterval,
		maxAttempts: DefaultMaxAttempts,
		limit:       aiservice.DefaultLimit,
		trigger:     true,
		triggered:   make(map[jazzmate.ID]struct{}),
	}
	c.idle = sync.NewCond(&c.mu)
	for _, opt := range opts {
		opt(c)
	}
	c.logger = logging.NewComponentLogger(c.logger, "recommend")
	if c.formatter == nil {
		catalog, _ := reviews.(TrackCatalog)
		c.formatter = NewFormatter(catalog, defaultLookupConcurrency, c.logger)
	}
	return c
}

// StartWatching begins watching id and runs the initial check immediately.
// A watch of a different review is stopped first. Calling again with the id
// already being watched is a no-op until that watch reaches a terminal state;
// afterwards it starts a fresh watch, but generation is never requested twice
// for the same id by one controller.
func (c *Controller) StartWatching(id jazzmate.ID) {
	sessionID := uuid.NewString()
	ctx, cancel := context.WithCancel(context.Background())
	ctx = services.WithReviewID(ctx, id.String())
	ctx = services.WithSessionID(ctx, sessionID)
	ctx, _ = services.EnsureRequestID(ctx)
	ps := &pollState{
		reviewID:  id,
		sessionID: sessionID,
		ctx:       ctx,
		cancel:    cancel,
		state:     StateChecking,
	}

	c.mu.Lock()
	if cur := c.current; cur != nil && cur.reviewID == id && !cur.state.Terminal() {
		c.mu.Unlock()
		cancel()
		return
	}
	prev := c.current
	if prev != nil {
		prev.stopped = true
		prev.releaseLocked()
		c.last = prev
	}
	c.current = ps
	c.inflight++
	c.mu.Unlock()

	if prev != nil {
		c.awaitDelivery()
	}

	logging.WithContext(ctx, c.logger).Info("watching review",
		logging.String(logging.FieldEventType, "watch_started"),
		logging.Duration("interval", c.interval),
		logging.Int("max_attempts", c.maxAttempts),
	)
	go c.initialCheck(ps)
}

// StopWatching cancels the pending timer and in-flight requests of the
// current watch. It is safe to call at any time. No sink callback starts
// after it returns.
func (c *Controller) StopWatching() {
	c.mu.Lock()
	ps := c.current
	c.current = nil
	if ps != nil {
		ps.stopped = true
		ps.releaseLocked()
		c.last = ps
	}
	c.mu.Unlock()
	if ps != nil {
		c.awaitDelivery()
		logging.WithContext(ps.ctx, c.logger).Debug("watch stopped")
	}
}

// State returns the state of the current watch, or StateIdle.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil {
		return StateIdle
	}
	return c.current.state
}

// Status returns a snapshot of the current watch.
func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return snapshotLocked(c.current)
}

// LastStatus returns the current watch's snapshot or, when nothing is being
// watched, that of the most recently stopped watch. Combined with Wait after
// StopWatching it reports the settled attempt count of an interrupted watch.
func (c *Controller) LastStatus() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current != nil {
		return snapshotLocked(c.current)
	}
	return snapshotLocked(c.last)
}

func snapshotLocked(ps *pollState) Status {
	if ps == nil {
		return Status{State: StateIdle}
	}
	return Status{
		ReviewID:            ps.reviewID,
		SessionID:           ps.sessionID,
		State:               ps.state,
		Attempts:            ps.attempts,
		GenerationTriggered: ps.generationTriggered,
		GenerationErr:       ps.generationErr,
	}
}

// Wait blocks until no cycle is running. A pending timer does not count as
// running.
func (c *Controller) Wait() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for c.inflight > 0 {
		c.idle.Wait()
	}
}

func (c *Controller) cycleDone() {
	c.mu.Lock()
	c.inflight--
	if c.inflight == 0 {
		c.idle.Broadcast()
	}
	c.mu.Unlock()
}

func (c *Controller) awaitDelivery() {
	c.notifyMu.Lock()
	//nolint:staticcheck // empty critical section waits for an in-progress delivery
	c.notifyMu.Unlock()
}

func (c *Controller) isCurrent(ps *pollState) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current == ps && !ps.stopped && !ps.state.Terminal()
}

// deliver invokes fn on the sink if ps is still the live watch. When final is
// a terminal state, ps transitions to it and releases its resources before
// fn runs.
func (c *Controller) deliver(ps *pollState, final State, fn func(Sink)) bool {
	c.notifyMu.Lock()
	defer c.notifyMu.Unlock()

	c.mu.Lock()
	if c.current != ps || ps.stopped || ps.state.Terminal() {
		c.mu.Unlock()
		return false
	}
	lower := false
	if final.Terminal() {
		ps.state = final
		lower = ps.indicating
		ps.indicating = false
		ps.releaseLocked()
	}
	c.mu.Unlock()

	if c.sink != nil {
		if lower {
			c.sink.Generating(ps.reviewID, false)
		}
		fn(c.sink)
	}
	return true
}

func (c *Controller) initialCheck(ps *pollState) {
	defer c.cycleDone()
	logger := logging.WithContext(ps.ctx, c.logger)

	review, err := c.reviews.GetReview(ps.ctx, ps.reviewID)
	if !c.isCurrent(ps) {
		logger.Debug("discarding stale initial check")
		return
	}
	if err != nil {
		loadErr := fmt.Errorf("load review %s: %w", ps.reviewID, err)
		logging.WarnWithContext(logger, "review load failed; watch ended", "watch_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "verify the review id exists and the backend is reachable"),
			logging.String(logging.FieldImpact, "no recommendations will be shown"),
		)
		c.deliver(ps, StateFailed, func(s Sink) { s.GenerationFailed(ps.reviewID, loadErr) })
		return
	}
	if review.Ready() {
		c.complete(ps, review, logger)
		return
	}

	c.mu.Lock()
	if c.current != ps || ps.stopped {
		c.mu.Unlock()
		logger.Debug("discarding stale initial check")
		return
	}
	_, already := c.triggered[ps.reviewID]
	trigger := c.trigger && c.generator != nil && !already
	if trigger {
		c.triggered[ps.reviewID] = struct{}{}
		ps.generationTriggered = true
		ps.state = StateGenerating
	} else {
		ps.state = StatePolling
	}
	ps.indicating = true
	c.mu.Unlock()

	if !c.deliver(ps, StateIdle, func(s Sink) { s.Generating(ps.reviewID, true) }) {
		return
	}

	if trigger {
		c.requestGeneration(ps, review, logger)
		if !c.isCurrent(ps) {
			return
		}
	} else {
		logger.Debug("generation not requested", logging.Bool("already_requested", already))
	}
	c.schedule(ps)
}

func (c *Controller) requestGeneration(ps *pollState, review *jazzmate.ReviewWithRecommendations, logger *slog.Logger) {
	req := aiservice.GenerateRequest{
		ReviewText: strings.TrimSpace(review.ReviewContent),
		ReviewID:   ps.reviewID,
		Limit:      c.limit,
	}
	logger.Info("requesting recommendation generation",
		logging.String(logging.FieldEventType, "generation_requested"),
		logging.Int("limit", c.limit),
	)
	err := c.generator.GenerateByReview(ps.ctx, req)
	if err == nil {
		return
	}
	c.mu.Lock()
	ps.generationErr = err
	stale := c.current != ps || ps.stopped
	c.mu.Unlock()
	if stale {
		return
	}
	logging.WarnWithContext(logger, "generation request failed; polling anyway", "generation_failed",
		logging.Error(err),
		logging.String(logging.FieldErrorHint, "check the AI service; another request may already be generating"),
		logging.String(logging.FieldImpact, "recommendations may not appear before the poll budget runs out"),
	)
}

func (c *Controller) schedule(ps *pollState) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current != ps || ps.stopped || ps.state.Terminal() || ps.timer != nil {
		return
	}
	ps.state = StatePolling
	var timer Timer
	timer = c.clock.AfterFunc(c.interval, func() {
		c.mu.Lock()
		if c.current != ps || ps.stopped || ps.timer != timer {
			c.mu.Unlock()
			return
		}
		ps.timer = nil
		c.inflight++
		c.mu.Unlock()
		go c.pollCycle(ps)
	})
	ps.timer = timer
}

func (c *Controller) pollCycle(ps *pollState) {
	defer c.cycleDone()

	c.mu.Lock()
	if c.current != ps || ps.stopped || ps.state.Terminal() {
		c.mu.Unlock()
		return
	}
	ps.attempts++
	attempt := ps.attempts
	c.mu.Unlock()

	logger := logging.WithContext(ps.ctx, c.logger).With(logging.Int(logging.FieldAttempt, attempt))
	review, err := c.reviews.GetReview(ps.ctx, ps.reviewID)
	if !c.isCurrent(ps) {
		logger.Debug("discarding stale poll result")
		return
	}
	switch {
	case err != nil:
		logger.Info("poll fetch failed; cycle skipped",
			logging.String(logging.FieldEventType, "poll_skipped"),
			logging.String("error_kind", services.Kind(err)),
			logging.Error(err),
		)
	case review.Ready():
		c.complete(ps, review, logger)
		return
	default:
		logger.Debug("recommendations not ready")
	}

	if attempt >= c.maxAttempts {
		logging.WarnWithContext(logger, "poll budget exhausted", "poll_timed_out",
			logging.Int("max_attempts", c.maxAttempts),
			logging.String(logging.FieldErrorHint, "try again later"),
			logging.String(logging.FieldImpact, "recommendations not shown"),
		)
		c.deliver(ps, StateTimedOut, func(s Sink) { s.PollTimedOut(ps.reviewID) })
		return
	}
	c.schedule(ps)
}

func (c *Controller) complete(ps *pollState, review *jazzmate.ReviewWithRecommendations, logger *slog.Logger) {
	recs := c.formatter.Format(ps.ctx, review.Recommendations)
	if !c.isCurrent(ps) {
		logger.Debug("discarding stale recommendations")
		return
	}
	if c.deliver(ps, StateReady, func(s Sink) { s.RecommendationsReady(ps.reviewID, recs) }) {
		logger.Info("recommendations ready",
			logging.String(logging.FieldEventType, "recommendations_ready"),
			logging.Int("count", len(recs)),
		)
	}
}
