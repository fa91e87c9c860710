package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"jazzmate/internal/recommend"
	"jazzmate/internal/services/jazzmate"
	"jazzmate/internal/textutil"
)

func newReviewsCommand(ctx *commandContext) *cobra.Command {
	reviewsCmd := &cobra.Command{
		Use:     "reviews",
		Aliases: []string{"review"},
		Short:   "Write and browse listening reviews",
	}

	reviewsCmd.AddCommand(newReviewsListCommand(ctx))
	reviewsCmd.AddCommand(newReviewsShowCommand(ctx))
	reviewsCmd.AddCommand(newReviewsWriteCommand(ctx))
	reviewsCmd.AddCommand(newReviewsDeleteCommand(ctx))
	reviewsCmd.AddCommand(newReviewsRecordsCommand(ctx))

	return reviewsCmd
}

func newReviewsListCommand(ctx *commandContext) *cobra.Command {
	var user string
	var mine bool
	var page, size int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List public reviews, or the reviews of one user",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.backend()
			if err != nil {
				return err
			}
			query := jazzmate.ReviewQuery{UserID: strings.TrimSpace(user), Page: page, Size: size}
			if mine {
				query.UserID = ctx.userID(user)
				if query.UserID == "" {
					return errors.New("--mine requires [user] id in the config or --user")
				}
			}
			reviews, err := client.ListReviews(commandCtx(cmd), query)
			if err != nil {
				return describeError(err, "reviews")
			}
			if ctx.jsonOutput() {
				return writeJSON(cmd, reviews)
			}

			out := cmd.OutOrStdout()
			if len(reviews) == 0 {
				fmt.Fprintln(out, "No reviews found")
				return nil
			}
			newScreen(out).table([]column{num("ID"), col("Track"), col("Artist"), num("Rating"), col("Mood"), col("Public"), col("Written")}, reviewRows(reviews))
			return nil
		},
	}

	cmd.Flags().StringVar(&user, "user", "", "Only list reviews written by this user id")
	cmd.Flags().BoolVar(&mine, "mine", false, "Only list reviews by the configured user")
	cmd.Flags().IntVar(&page, "page", 0, "Page number (0-based)")
	cmd.Flags().IntVar(&size, "size", 20, "Page size")
	return cmd
}

func reviewRows(reviews []jazzmate.Review) [][]string {
	rows := make([][]string, 0, len(reviews))
	for _, r := range reviews {
		rows = append(rows, []string{
			r.ID.String(),
			textutil.Truncate(r.TrackName, 32),
			textutil.Truncate(r.ArtistName, 24),
			formatRating(r.Rating),
			textutil.Label(r.Mood, "-"),
			yesNo(r.IsPublic),
			shortDate(r.CreatedAt),
		})
	}
	return rows
}

func newReviewsShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a review and its recommendations",
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
			review, err := client.GetReview(commandCtx(cmd), id)
			if err != nil {
				return describeError(err, "review "+id.String())
			}

			var recs []recommend.Recommendation
			if review.Ready() {
				cfg := ctx.configValue()
				formatter := recommend.NewFormatter(client, cfg.Recommendations.LookupConcurrency, ctx.loggerValue())
				recs = formatter.Format(commandCtx(cmd), review.Recommendations)
			}

			if ctx.jsonOutput() {
				return writeJSON(cmd, struct {
					Review          jazzmate.Review            `json:"review"`
					Recommendations []recommend.Recommendation `json:"recommendations"`
				}{review.Review, recs})
			}

			out := cmd.OutOrStdout()
			scr := newScreen(out)
			scr.heading(fmt.Sprintf("Review #%s", review.ID))
			scr.details(reviewDetails(review.Review))
			fmt.Fprintln(out)
			scr.heading("Recommendations")
			if len(recs) == 0 {
				fmt.Fprintf(out, "No recommendations yet. Run `jazzmate watch %s` to wait for them.\n", review.ID)
				return nil
			}
			renderRecommendations(scr, recs)
			return nil
		},
	}
}

func reviewDetails(r jazzmate.Review) [][2]string {
	pairs := [][2]string{
		{"Track", r.TrackName},
		{"Artist", r.ArtistName},
		{"Rating", formatRating(r.Rating)},
		{"Review", r.ReviewContent},
		{"Mood", textutil.Label(r.Mood, "")},
		{"Genre", textutil.Label(r.Genre, "")},
		{"Vocal style", textutil.Label(r.VocalStyle, "")},
		{"Instrumentation", r.Instrumentation},
		{"Tags", strings.Join(r.Tags, ", ")},
		{"Public", yesNo(r.IsPublic)},
		{"Written", r.CreatedAt},
	}
	if r.EnergyLevel > 0 {
		pairs = append(pairs, [2]string{"Energy", strconv.FormatFloat(r.EnergyLevel, 'f', 2, 64)})
	}
	if r.BPM > 0 {
		pairs = append(pairs, [2]string{"BPM", strconv.Itoa(r.BPM)})
	}
	return pairs
}

type reviewForm struct {
	albumID         string
	user            string
	track           string
	artist          string
	content         string
	rating          float64
	mood            string
	genre           string
	energy          float64
	bpm             int
	vocalStyle      string
	instrumentation string
	tags            []string
	private         bool
}

// request maps the form to a submission. Optional numbers are only sent when
// their flag was given.
func (f reviewForm) request(cmd *cobra.Command, userID string) (jazzmate.ReviewRequest, error) {
	req := jazzmate.ReviewRequest{
		UserID:          userID,
		TrackName:       f.track,
		ArtistName:      f.artist,
		ReviewContent:   f.content,
		Mood:            f.mood,
		Genre:           f.genre,
		VocalStyle:      f.vocalStyle,
		Instrumentation: f.instrumentation,
		Tags:            f.tags,
		IsPublic:        !f.private,
	}
	if strings.TrimSpace(f.albumID) != "" {
		id, err := parseIDArg(f.albumID, "album")
		if err != nil {
			return req, err
		}
		req.AlbumID = &id
	}
	flags := cmd.Flags()
	if flags.Changed("rating") {
		rating := f.rating
		req.Rating = &rating
	}
	if flags.Changed("energy") {
		energy := f.energy
		req.EnergyLevel = &energy
	}
	if flags.Changed("bpm") {
		bpm := f.bpm
		req.BPM = &bpm
	}
	req.Normalize()
	return req, req.Validate()
}

func newReviewsWriteCommand(ctx *commandContext) *cobra.Command {
	var form reviewForm
	var watch bool
	var watchOpts watchOptions

	cmd := &cobra.Command{
		Use:   "write",
		Short: "Submit a new review",
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := form.request(cmd, ctx.userID(form.user))
			if err != nil {
				return err
			}
			client, err := ctx.backend()
			if err != nil {
				return err
			}
			review, err := client.CreateReview(commandCtx(cmd), req)
			if err != nil {
				return describeError(err, "review")
			}
			if !watch {
				if ctx.jsonOutput() {
					return writeJSON(cmd, review)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Saved review #%s for %s - %s\n", review.ID, review.TrackName, review.ArtistName)
				return nil
			}
			if !ctx.jsonOutput() {
				fmt.Fprintf(cmd.OutOrStdout(), "Saved review #%s for %s - %s\n", review.ID, review.TrackName, review.ArtistName)
			}
			return runWatch(cmd, ctx, review.ID, watchOpts)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&form.track, "track", "", "Track name (required)")
	flags.StringVar(&form.artist, "artist", "", "Artist name (required)")
	flags.StringVar(&form.content, "content", "", "Review text (required)")
	flags.StringVar(&form.albumID, "album", "", "Album id the track belongs to")
	flags.StringVar(&form.user, "user", "", "Reviewer id (defaults to [user] id)")
	flags.Float64Var(&form.rating, "rating", 0, "Rating from 0 to 5 in half steps")
	flags.StringVar(&form.mood, "mood", "", "Mood, e.g. melancholic")
	flags.StringVar(&form.genre, "genre", "", "Genre, e.g. cool jazz")
	flags.Float64Var(&form.energy, "energy", 0, "Energy level from 0 to 1")
	flags.IntVar(&form.bpm, "bpm", 0, "Tempo in beats per minute")
	flags.StringVar(&form.vocalStyle, "vocal-style", "", "Vocal style, e.g. instrumental")
	flags.StringVar(&form.instrumentation, "instrumentation", "", "Instrumentation, e.g. trumpet, piano")
	flags.StringSliceVar(&form.tags, "tags", nil, "Comma-separated tags")
	flags.BoolVar(&form.private, "private", false, "Hide the review from the public listing")
	flags.BoolVar(&watch, "watch", false, "Wait for recommendations after saving")
	watchOpts.bind(cmd)
	return cmd
}

func newReviewsDeleteCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a review",
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
			if err := client.DeleteReview(commandCtx(cmd), id); err != nil {
				return describeError(err, "review "+id.String())
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted review #%s\n", id)
			return nil
		},
	}
}

// newReviewsRecordsCommand prints the stored records without catalog lookups.
func newReviewsRecordsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:     "recommendations <id>",
		Aliases: []string{"recs"},
		Short:   "Print the raw recommendation records of a review",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseIDArg(args[0], "review")
			if err != nil {
				return err
			}
			client, err := ctx.backend()
			if err != nil {
				return err
			}
			records, err := client.GetRecommendations(commandCtx(cmd), id)
			if err != nil {
				return describeError(err, "review "+id.String())
			}
			if ctx.jsonOutput() {
				return writeJSON(cmd, records)
			}
			out := cmd.OutOrStdout()
			if len(records) == 0 {
				fmt.Fprintf(out, "Review #%s has no recommendations yet\n", id)
				return nil
			}
			rows := make([][]string, 0, len(records))
			for _, r := range records {
				rows = append(rows, []string{
					r.TrackID.String(),
					recommend.FormatScore(r.Score) + "%",
					textutil.Truncate(r.Reason, 60),
				})
			}
			newScreen(out).table([]column{num("Track"), num("Score"), col("Reason")}, rows)
			return nil
		},
	}
}

func formatRating(rating float64) string {
	if rating <= 0 {
		return "-"
	}
	full := int(rating)
	stars := strings.Repeat("★", full)
	if rating-float64(full) >= 0.5 {
		stars += "½"
	}
	return fmt.Sprintf("%s %s", strconv.FormatFloat(rating, 'f', 1, 64), stars)
}

// shortDate trims a backend local date-time to its date part.
func shortDate(value string) string {
	value = strings.TrimSpace(value)
	if i := strings.IndexByte(value, 'T'); i > 0 {
		return value[:i]
	}
	if value == "" {
		return "-"
	}
	return value
}
