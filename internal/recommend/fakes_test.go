package recommend_test

import (
	"context"
	"fmt"
	"sync"
	"time"

	"jazzmate/internal/recommend"
	"jazzmate/internal/services"
	"jazzmate/internal/services/aiservice"
	"jazzmate/internal/services/jazzmate"
)

// manualClock fires timers only when the test says so.
type manualClock struct {
	mu     sync.Mutex
	timers []*manualTimer
}

type manualTimer struct {
	clock   *manualClock
	d       time.Duration
	f       func()
	stopped bool
	fired   bool
}

func (c *manualClock) AfterFunc(d time.Duration, f func()) recommend.Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &manualTimer{clock: c, d: d, f: f}
	c.timers = append(c.timers, t)
	return t
}

func (t *manualTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

// Pending returns the number of armed timers.
func (c *manualClock) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, t := range c.timers {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}

// Created returns how many timers were ever armed.
func (c *manualClock) Created() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.timers)
}

// Fire runs every armed timer and returns how many fired.
func (c *manualClock) Fire() int {
	c.mu.Lock()
	var due []*manualTimer
	for _, t := range c.timers {
		if !t.stopped && !t.fired {
			t.fired = true
			due = append(due, t)
		}
	}
	c.mu.Unlock()
	for _, t := range due {
		t.f()
	}
	return len(due)
}

// fireStale runs a timer's callback even though it was stopped, simulating a
// timer that fired concurrently with Stop.
func (c *manualClock) fireStale(i int) {
	c.mu.Lock()
	t := c.timers[i]
	c.mu.Unlock()
	t.f()
}

// fakeStore serves reviews and tracks from memory.
type fakeStore struct {
	mu sync.Mutex
	// readyAt is the 1-based fetch number from which recommendations appear.
	readyAt map[jazzmate.ID]int
	records map[jazzmate.ID][]jazzmate.RecommendationRecord
	// failures maps a fetch number to the error returned for it.
	failures map[jazzmate.ID]map[int]error
	missing  map[jazzmate.ID]bool
	gates    map[jazzmate.ID]chan struct{}
	started  map[jazzmate.ID]chan struct{}
	fetches  map[jazzmate.ID]int
	tracks   map[jazzmate.ID]jazzmate.Track
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		readyAt:  make(map[jazzmate.ID]int),
		records:  make(map[jazzmate.ID][]jazzmate.RecommendationRecord),
		failures: make(map[jazzmate.ID]map[int]error),
		missing:  make(map[jazzmate.ID]bool),
		gates:    make(map[jazzmate.ID]chan struct{}),
		started:  make(map[jazzmate.ID]chan struct{}),
		fetches:  make(map[jazzmate.ID]int),
		tracks:   make(map[jazzmate.ID]jazzmate.Track),
	}
}

func (s *fakeStore) readyFrom(id jazzmate.ID, fetch int, records ...jazzmate.RecommendationRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.readyAt[id] = fetch
	s.records[id] = records
}

func (s *fakeStore) failFetch(id jazzmate.ID, fetch int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failures[id] == nil {
		s.failures[id] = make(map[int]error)
	}
	s.failures[id][fetch] = err
}

// gate makes the next fetches of id block until release is called. The
// returned channel is closed when a blocked fetch has started.
func (s *fakeStore) gate(id jazzmate.ID) (started <-chan struct{}, release func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g := make(chan struct{})
	st := make(chan struct{})
	s.gates[id] = g
	s.started[id] = st
	var once sync.Once
	return st, func() { once.Do(func() { close(g) }) }
}

func (s *fakeStore) fetchCount(id jazzmate.ID) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fetches[id]
}

// GetReview ignores ctx cancellation when gated so late responses reach the
// controller.
func (s *fakeStore) GetReview(_ context.Context, id jazzmate.ID) (*jazzmate.ReviewWithRecommendations, error) {
	s.mu.Lock()
	s.fetches[id]++
	n := s.fetches[id]
	gate := s.gates[id]
	started := s.started[id]
	delete(s.gates, id)
	delete(s.started, id)
	s.mu.Unlock()

	if gate != nil {
		close(started)
		<-gate
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.missing[id] {
		return nil, services.Wrap(services.ErrNotFound, "fake", "get review", "http 404", nil)
	}
	if err := s.failures[id][n]; err != nil {
		return nil, err
	}
	review := &jazzmate.ReviewWithRecommendations{
		Review: jazzmate.Review{ID: id, TrackName: "So What", ArtistName: "Miles Davis", ReviewContent: "modal jazz at its purest " + id.String()},
	}
	if at, ok := s.readyAt[id]; ok && n >= at {
		review.HasRecommendations = true
		review.Recommendations = append([]jazzmate.RecommendationRecord(nil), s.records[id]...)
	}
	return review, nil
}

func (s *fakeStore) GetTrack(_ context.Context, id jazzmate.ID) (*jazzmate.Track, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	track, ok := s.tracks[id]
	if !ok {
		return nil, services.Wrap(services.ErrNotFound, "fake", "get track", "http 404", nil)
	}
	return &track, nil
}

type fakeGenerator struct {
	mu      sync.Mutex
	calls   []aiservice.GenerateRequest
	err     error
	entered chan struct{}
}

// blockUntilCancelled makes later calls park until their context ends. The
// returned channel receives once per parked call.
func (g *fakeGenerator) blockUntilCancelled() <-chan struct{} {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.entered = make(chan struct{}, 4)
	return g.entered
}

func (g *fakeGenerator) GenerateByReview(ctx context.Context, req aiservice.GenerateRequest) error {
	g.mu.Lock()
	g.calls = append(g.calls, req)
	entered, err := g.entered, g.err
	g.mu.Unlock()
	if entered != nil {
		entered <- struct{}{}
		<-ctx.Done()
		return ctx.Err()
	}
	return err
}

func (g *fakeGenerator) Calls() []aiservice.GenerateRequest {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]aiservice.GenerateRequest(nil), g.calls...)
}

// recordingSink records callbacks as "kind:id" events.
type recordingSink struct {
	mu     sync.Mutex
	events []string
	recs   []recommend.Recommendation
	err    error
}

func (s *recordingSink) add(event string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
}

func (s *recordingSink) RecommendationsReady(id jazzmate.ID, recs []recommend.Recommendation) {
	s.mu.Lock()
	s.recs = recs
	s.mu.Unlock()
	s.add("ready:" + id.String())
}

func (s *recordingSink) GenerationFailed(id jazzmate.ID, err error) {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
	s.add("failed:" + id.String())
}

func (s *recordingSink) PollTimedOut(id jazzmate.ID) {
	s.add("timeout:" + id.String())
}

func (s *recordingSink) Generating(id jazzmate.ID, active bool) {
	s.add(fmt.Sprintf("generating:%s:%t", id, active))
}

func (s *recordingSink) Events() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.events...)
}

func (s *recordingSink) Recommendations() []recommend.Recommendation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.recs
}

func (s *recordingSink) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}
