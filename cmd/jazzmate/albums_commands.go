package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"jazzmate/internal/services/jazzmate"
	"jazzmate/internal/textutil"
)

func newAlbumsCommand(ctx *commandContext) *cobra.Command {
	albumsCmd := &cobra.Command{
		Use:     "albums",
		Aliases: []string{"album"},
		Short:   "Search the album catalog",
	}
	albumsCmd.AddCommand(newAlbumsSearchCommand(ctx))
	albumsCmd.AddCommand(newAlbumsShowCommand(ctx))
	return albumsCmd
}

func newAlbumsSearchCommand(ctx *commandContext) *cobra.Command {
	var page, size int
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search albums by title or artist",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.backend()
			if err != nil {
				return err
			}
			query := strings.Join(args, " ")
			albums, err := client.SearchAlbums(commandCtx(cmd), query, page, size)
			if err != nil {
				return describeError(err, "albums")
			}
			if ctx.jsonOutput() {
				return writeJSON(cmd, albums)
			}
			out := cmd.OutOrStdout()
			if len(albums) == 0 {
				fmt.Fprintf(out, "No albums match %q\n", query)
				return nil
			}
			rows := make([][]string, 0, len(albums))
			for _, a := range albums {
				rows = append(rows, []string{
					a.ID.String(),
					textutil.Truncate(a.Title, 36),
					textutil.Truncate(a.Artist, 28),
					yearText(a.Year),
					textutil.Truncate(a.Label, 20),
				})
			}
			newScreen(out).table([]column{num("ID"), col("Album"), col("Artist"), num("Year"), col("Label")}, rows)
			return nil
		},
	}
	cmd.Flags().IntVar(&page, "page", 0, "Page number (0-based)")
	cmd.Flags().IntVar(&size, "size", 20, "Page size")
	return cmd
}

func newAlbumsShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show album details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseIDArg(args[0], "album")
			if err != nil {
				return err
			}
			client, err := ctx.backend()
			if err != nil {
				return err
			}
			album, err := client.GetAlbum(commandCtx(cmd), id)
			if err != nil {
				return describeError(err, "album "+id.String())
			}
			if ctx.jsonOutput() {
				return writeJSON(cmd, album)
			}
			out := cmd.OutOrStdout()
			scr := newScreen(out)
			scr.heading(album.Title)
			scr.details(albumDetails(album))
			if !album.CriticsReviewID.IsZero() {
				fmt.Fprintf(out, "Critic review available: jazzmate critics show %s\n", album.CriticsReviewID)
			}
			return nil
		},
	}
}

func albumDetails(a *jazzmate.Album) [][2]string {
	return [][2]string{
		{"Artist", a.Artist},
		{"Year", yearText(a.Year)},
		{"Label", a.Label},
		{"Tracks", strings.TrimSpace(a.TrackListing)},
	}
}

func yearText(year int) string {
	if year <= 0 {
		return "-"
	}
	return strconv.Itoa(year)
}
