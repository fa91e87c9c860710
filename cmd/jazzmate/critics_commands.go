package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"jazzmate/internal/services/jazzmate"
	"jazzmate/internal/textutil"
)

func newCriticsCommand(ctx *commandContext) *cobra.Command {
	criticsCmd := &cobra.Command{
		Use:     "critics",
		Aliases: []string{"critic"},
		Short:   "Browse published critic reviews",
	}
	criticsCmd.AddCommand(newCriticsListCommand(ctx))
	criticsCmd.AddCommand(newCriticsShowCommand(ctx))
	criticsCmd.AddCommand(newCriticsMatchCommand(ctx))
	return criticsCmd
}

func newCriticsListCommand(ctx *commandContext) *cobra.Command {
	var page, size int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List critic reviews that have a summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.backend()
			if err != nil {
				return err
			}
			result, err := client.ListCritics(commandCtx(cmd), page, size)
			if err != nil {
				return describeError(err, "critic reviews")
			}
			if ctx.jsonOutput() {
				return writeJSON(cmd, result)
			}
			out := cmd.OutOrStdout()
			if len(result.Content) == 0 {
				fmt.Fprintln(out, "No critic reviews found")
				return nil
			}
			newScreen(out).table([]column{num("ID"), col("Title"), col("Reviewer"), col("Date"), num("Rating")}, criticRows(result.Content))
			if !result.Last {
				fmt.Fprintf(out, "More reviews: jazzmate critics list --page %d --size %d\n", result.Number+1, size)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&page, "page", 0, "Page number (0-based)")
	cmd.Flags().IntVar(&size, "size", 10, "Page size")
	return cmd
}

func criticRows(critics []jazzmate.CriticsReview) [][]string {
	rows := make([][]string, 0, len(critics))
	for _, c := range critics {
		rows = append(rows, []string{
			c.ID.String(),
			textutil.Truncate(c.Title, 40),
			textutil.Truncate(c.Reviewer, 20),
			shortDate(c.Date),
			formatRating(c.Rating),
		})
	}
	return rows
}

func newCriticsShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a critic review and its structured summary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseIDArg(args[0], "critic review")
			if err != nil {
				return err
			}
			client, err := ctx.backend()
			if err != nil {
				return err
			}
			critic, err := client.GetCritic(commandCtx(cmd), id)
			if err != nil {
				return describeError(err, "critic review "+id.String())
			}
			summary, hasSummary := critic.ParseSummary()
			if ctx.jsonOutput() {
				payload := struct {
					Critic  *jazzmate.CriticsReview  `json:"critic"`
					Summary *jazzmate.CriticsSummary `json:"summary,omitempty"`
				}{Critic: critic}
				if hasSummary {
					payload.Summary = &summary
				}
				return writeJSON(cmd, payload)
			}

			out := cmd.OutOrStdout()
			scr := newScreen(out)
			scr.heading(critic.Title)
			scr.details([][2]string{
				{"Reviewer", critic.Reviewer},
				{"Date", critic.Date},
				{"Rating", formatRating(critic.Rating)},
				{"Album", critic.AlbumInfo},
				{"Personnel", critic.Personnel},
				{"Link", critic.URL},
			})
			if !hasSummary {
				if critic.Content != "" {
					fmt.Fprintln(out)
					fmt.Fprintln(out, critic.Content)
				}
				return nil
			}
			fmt.Fprintln(out)
			scr.heading("Summary")
			scr.details([][2]string{
				{"Overview", summary.Summary},
				{"Artist", summary.ArtistInfo},
				{"Album", summary.AlbumInfo},
				{"Performance", summary.PerformanceNote},
				{"Context", summary.CulturalContext},
				{"Instruments", summary.Instrumentation},
				{"Influence", summary.CompositionInfluence},
				{"Opinion", summary.ReviewerOpinion},
			})
			if len(summary.Tracks) > 0 {
				rows := make([][]string, 0, len(summary.Tracks))
				for _, note := range summary.Tracks {
					rows = append(rows, []string{note.Track, note.Note})
				}
				scr.table([]column{col("Track"), col("Note")}, rows)
			}
			return nil
		},
	}
}

func newCriticsMatchCommand(ctx *commandContext) *cobra.Command {
	var pages, size, limit int
	cmd := &cobra.Command{
		Use:   "match <review-id>",
		Short: "Find critic reviews that read like one of your reviews",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseIDArg(args[0], "review")
			if err != nil {
				return err
			}
			client, err := ctx.backend()
			if err != nil {
				return err
			}
			c := commandCtx(cmd)
			review, err := client.GetReview(c, id)
			if err != nil {
				return describeError(err, "review "+id.String())
			}

			var critics []jazzmate.CriticsReview
			for page := 0; page < max(pages, 1); page++ {
				result, err := client.ListCritics(c, page, size)
				if err != nil {
					return describeError(err, "critic reviews")
				}
				critics = append(critics, result.Content...)
				if result.Last {
					break
				}
			}

			matches := jazzmate.MatchCritics(review.Review, critics, limit)
			if ctx.jsonOutput() {
				return writeJSON(cmd, matches)
			}
			out := cmd.OutOrStdout()
			if len(matches) == 0 {
				fmt.Fprintf(out, "No critic reviews resemble review #%s (searched %d)\n", id, len(critics))
				return nil
			}
			rows := make([][]string, 0, len(matches))
			for _, m := range matches {
				rows = append(rows, []string{
					m.Critic.ID.String(),
					textutil.Truncate(m.Critic.Title, 40),
					textutil.Truncate(m.Critic.Reviewer, 20),
					strconv.FormatFloat(m.Similarity*100, 'f', 1, 64) + "%",
				})
			}
			newScreen(out).table([]column{num("ID"), col("Title"), col("Reviewer"), num("Similarity")}, rows)
			return nil
		},
	}
	cmd.Flags().IntVar(&pages, "pages", 3, "Critic pages to compare against")
	cmd.Flags().IntVar(&size, "size", 20, "Critic page size")
	cmd.Flags().IntVar(&limit, "limit", 5, "Matches to show")
	return cmd
}
