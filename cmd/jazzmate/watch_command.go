package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"jazzmate/internal/history"
	"jazzmate/internal/logging"
	"jazzmate/internal/notifications"
	"jazzmate/internal/recommend"
	"jazzmate/internal/services/jazzmate"
	"jazzmate/internal/textutil"
	"jazzmate/internal/watchlock"
)

type watchOptions struct {
	interval    time.Duration
	maxAttempts int
	noGenerate  bool
}

func (o *watchOptions) bind(cmd *cobra.Command) {
	cmd.Flags().DurationVar(&o.interval, "interval", 0, "Delay between checks (defaults to [recommendations] poll_interval_seconds)")
	cmd.Flags().IntVar(&o.maxAttempts, "max-attempts", 0, "Checks before giving up (defaults to [recommendations] max_attempts)")
	cmd.Flags().BoolVar(&o.noGenerate, "no-generate", false, "Only wait; never ask the AI service to generate")
}

func newWatchCommand(ctx *commandContext) *cobra.Command {
	var opts watchOptions
	cmd := &cobra.Command{
		Use:   "watch <review-id>",
		Short: "Wait until recommendations for a review are ready",
		Long: "Checks the review once, asks the AI service to generate recommendations when\n" +
			"none exist yet, then re-checks on a fixed interval until they appear or the\n" +
			"attempt budget runs out.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseIDArg(args[0], "review")
			if err != nil {
				return err
			}
			return runWatch(cmd, ctx, id, opts)
		},
	}
	opts.bind(cmd)
	return cmd
}

type watchOutcome struct {
	state recommend.State
	recs  []recommend.Recommendation
	err   error
}

// watchSink forwards controller callbacks to the command goroutine.
type watchSink struct {
	mu      sync.Mutex
	out     io.Writer
	quiet   bool
	outcome chan watchOutcome
}

func newWatchSink(out io.Writer, quiet bool) *watchSink {
	return &watchSink{out: out, quiet: quiet, outcome: make(chan watchOutcome, 1)}
}

func (s *watchSink) RecommendationsReady(_ jazzmate.ID, recs []recommend.Recommendation) {
	s.finish(watchOutcome{state: recommend.StateReady, recs: recs})
}

func (s *watchSink) GenerationFailed(_ jazzmate.ID, err error) {
	s.finish(watchOutcome{state: recommend.StateFailed, err: err})
}

func (s *watchSink) PollTimedOut(jazzmate.ID) {
	s.finish(watchOutcome{state: recommend.StateTimedOut})
}

func (s *watchSink) Generating(_ jazzmate.ID, active bool) {
	if !active || s.quiet {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintln(s.out, "Generating recommendations, this can take a minute...")
}

func (s *watchSink) finish(o watchOutcome) {
	select {
	case s.outcome <- o:
	default:
	}
}

type watchResult struct {
	ReviewID        jazzmate.ID                `json:"review_id"`
	State           string                     `json:"state"`
	Attempts        int                        `json:"attempts"`
	Generation      bool                       `json:"generation_requested"`
	GenerationError string                     `json:"generation_error,omitempty"`
	Recommendations []recommend.Recommendation `json:"recommendations,omitempty"`
	Error           string                     `json:"error,omitempty"`
}

func runWatch(cmd *cobra.Command, ctx *commandContext, id jazzmate.ID, opts watchOptions) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	logger := logging.NewComponentLogger(ctx.loggerValue(), "watch")
	backend, err := ctx.backend()
	if err != nil {
		return err
	}
	ai, err := ctx.aiService()
	if err != nil {
		return err
	}

	lock, err := watchlock.Acquire(cfg.LockDir(), id)
	if err != nil {
		return err
	}
	defer func() {
		if err := lock.Release(); err != nil {
			logger.Warn("failed to release watch lock", logging.Error(err))
		}
	}()

	runCtx, stop := signal.NotifyContext(commandCtx(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	recorder := openHistory(runCtx, ctx, logger)
	if recorder != nil {
		defer recorder.Close()
	}
	var session *history.Session
	if recorder != nil {
		session, err = recorder.Begin(runCtx, id)
		if err != nil {
			logger.Warn("failed to record watch start", logging.Error(err))
		}
	}

	interval := opts.interval
	if interval <= 0 {
		interval = cfg.PollInterval()
	}
	maxAttempts := opts.maxAttempts
	if maxAttempts <= 0 {
		maxAttempts = cfg.Recommendations.MaxAttempts
	}

	out := cmd.OutOrStdout()
	jsonMode := ctx.jsonOutput()
	sink := newWatchSink(out, jsonMode)
	ctrl := recommend.NewController(backend, ai, sink,
		recommend.WithInterval(interval),
		recommend.WithMaxAttempts(maxAttempts),
		recommend.WithGenerationLimit(cfg.Recommendations.Limit),
		recommend.WithTrigger(cfg.Recommendations.TriggerGeneration && !opts.noGenerate),
		recommend.WithFormatter(recommend.NewFormatter(backend, cfg.Recommendations.LookupConcurrency, logger)),
		recommend.WithLogger(logger),
	)

	if !jsonMode {
		fmt.Fprintf(out, "Watching review #%s (every %s, up to %d checks)\n", id, interval, maxAttempts)
	}
	ctrl.StartWatching(id)

	var outcome watchOutcome
	interrupted := false
	select {
	case outcome = <-sink.outcome:
	case <-runCtx.Done():
		interrupted = true
	}
	ctrl.StopWatching()
	ctrl.Wait()
	status := ctrl.LastStatus()
	if interrupted {
		outcome = watchOutcome{state: recommend.StateIdle, err: runCtx.Err()}
	}

	stateLabel := outcome.state.String()
	if interrupted {
		stateLabel = string(history.StateStopped)
	}
	result := watchResult{
		ReviewID:        id,
		State:           stateLabel,
		Attempts:        status.Attempts,
		Generation:      status.GenerationTriggered,
		Recommendations: outcome.recs,
	}
	if status.GenerationErr != nil {
		result.GenerationError = status.GenerationErr.Error()
	}
	if outcome.err != nil {
		result.Error = outcome.err.Error()
	}

	// Recording and notifying use a fresh context so an interrupt still
	// leaves a finished history row.
	finishCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if session != nil {
		recordSession(finishCtx, recorder, session, result, interrupted, logger)
	}
	if !interrupted {
		notifyOutcome(finishCtx, notifications.NewService(cfg), id, outcome, logger)
	}

	if jsonMode {
		if err := writeJSON(cmd, result); err != nil {
			return err
		}
	} else {
		renderWatchOutcome(newScreen(out), id, outcome)
	}

	switch {
	case interrupted:
		return context.Canceled
	case outcome.state == recommend.StateFailed:
		return describeError(outcome.err, "review "+id.String())
	default:
		return nil
	}
}

func openHistory(runCtx context.Context, ctx *commandContext, logger *slog.Logger) *history.Store {
	cfg := ctx.configValue()
	store, err := history.Open(cfg)
	if err != nil {
		logger.Warn("watch history unavailable", logging.Error(err))
		return nil
	}
	if n, err := store.ReclaimStale(runCtx); err != nil {
		logger.Warn("failed to reclaim stale watch sessions", logging.Error(err))
	} else if n > 0 {
		logger.Info("marked abandoned watch sessions", logging.Int64("count", n))
	}
	return store
}

func recordSession(ctx context.Context, store *history.Store, session *history.Session, result watchResult, interrupted bool, logger *slog.Logger) {
	switch {
	case interrupted:
		session.State = history.StateStopped
	case result.State == recommend.StateReady.String():
		session.State = history.StateReady
	case result.State == recommend.StateTimedOut.String():
		session.State = history.StateTimedOut
	case result.State == recommend.StateFailed.String():
		session.State = history.StateFailed
	}
	session.Attempts = result.Attempts
	session.GenerationTriggered = result.Generation
	session.GenerationError = result.GenerationError
	session.FailureReason = result.Error
	session.RecommendationCount = len(result.Recommendations)
	if err := store.Finish(ctx, session); err != nil {
		logger.Warn("failed to record watch outcome", logging.Error(err))
	}
}

func notifyOutcome(ctx context.Context, svc notifications.Service, id jazzmate.ID, outcome watchOutcome, logger *slog.Logger) {
	label := "review #" + id.String()
	var err error
	switch outcome.state {
	case recommend.StateReady:
		err = svc.NotifyRecommendationsReady(ctx, label, len(outcome.recs))
	case recommend.StateTimedOut:
		err = svc.NotifyPollTimedOut(ctx, label)
	case recommend.StateFailed:
		err = svc.NotifyWatchFailed(ctx, label, outcome.err)
	}
	if err != nil {
		logger.Warn("notification failed", logging.Error(err))
	}
}

func renderWatchOutcome(scr screen, id jazzmate.ID, outcome watchOutcome) {
	switch outcome.state {
	case recommend.StateReady:
		scr.check("Recommendations", toneGood, strconv.Itoa(len(outcome.recs))+" ready")
		renderRecommendations(scr, outcome.recs)
	case recommend.StateTimedOut:
		scr.check("Recommendations", toneWarn, "still being generated")
		fmt.Fprintf(scr.out, "Recommendations are taking longer than usual. Try again later with `jazzmate watch %s`.\n", id)
	case recommend.StateFailed:
		msg := "could not load the review"
		if outcome.err != nil && errors.Is(outcome.err, context.DeadlineExceeded) {
			msg = "the backend did not answer in time"
		}
		scr.check("Recommendations", toneBad, msg)
	default:
		scr.check("Recommendations", toneNeutral, "watch stopped")
	}
}

func renderRecommendations(scr screen, recs []recommend.Recommendation) {
	rows := make([][]string, 0, len(recs))
	for i, rec := range recs {
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			textutil.Truncate(rec.Title, 32),
			textutil.Truncate(rec.Artist, 24),
			recommend.FormatScore(rec.Score) + "%",
			textutil.Label(rec.Genre, "-"),
			textutil.Label(rec.Mood, "-"),
			strconv.Itoa(rec.BPM),
			textutil.Truncate(rec.Reason, 48),
		})
	}
	scr.table([]column{num("#"), col("Title"), col("Artist"), num("Match"), col("Genre"), col("Mood"), num("BPM"), col("Why")}, rows)
}
