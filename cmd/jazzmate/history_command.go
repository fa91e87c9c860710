package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"jazzmate/internal/history"
	"jazzmate/internal/textutil"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var reviewFlag string
	var pruneDays int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show past recommendation watches",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := history.Open(cfg)
			if err != nil {
				return fmt.Errorf("open watch history: %w", err)
			}
			defer store.Close()

			c := commandCtx(cmd)
			if _, err := store.ReclaimStale(c); err != nil {
				return fmt.Errorf("reclaim stale sessions: %w", err)
			}
			if pruneDays > 0 {
				removed, err := store.Prune(c, time.Duration(pruneDays)*24*time.Hour)
				if err != nil {
					return err
				}
				if !ctx.jsonOutput() {
					fmt.Fprintf(cmd.OutOrStdout(), "Pruned %d sessions older than %d days\n", removed, pruneDays)
				}
			}

			var sessions []*history.Session
			if strings.TrimSpace(reviewFlag) != "" {
				id, err := parseIDArg(reviewFlag, "review")
				if err != nil {
					return err
				}
				sessions, err = store.ForReview(c, id)
				if err != nil {
					return err
				}
				if limit > 0 && len(sessions) > limit {
					sessions = sessions[:limit]
				}
			} else {
				sessions, err = store.List(c, limit)
				if err != nil {
					return err
				}
			}

			if ctx.jsonOutput() {
				return writeJSON(cmd, sessions)
			}
			out := cmd.OutOrStdout()
			if len(sessions) == 0 {
				fmt.Fprintln(out, "No watches recorded yet")
				return nil
			}
			now := time.Now()
			rows := make([][]string, 0, len(sessions))
			for _, s := range sessions {
				detail := s.FailureReason
				if detail == "" && s.GenerationError != "" {
					detail = "generation: " + s.GenerationError
				}
				rows = append(rows, []string{
					s.StartedAt.Local().Format("2006-01-02 15:04"),
					s.ReviewID.String(),
					string(s.State),
					strconv.Itoa(s.Attempts),
					yesNo(s.GenerationTriggered),
					strconv.Itoa(s.RecommendationCount),
					s.Duration(now).Round(time.Second).String(),
					textutil.Truncate(detail, 40),
				})
			}
			newScreen(out).table([]column{col("Started"), num("Review"), col("State"), num("Checks"), col("Generated"), num("Recs"), num("Took"), col("Detail")}, rows)
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum sessions to show (0 for all)")
	cmd.Flags().StringVar(&reviewFlag, "review", "", "Only show watches of this review id")
	cmd.Flags().IntVar(&pruneDays, "prune-days", 0, "Delete finished sessions older than this many days first")
	return cmd
}
