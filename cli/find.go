package main

import (
	"fmt"
	"strconv"

	"github.com/cr7pt0gr4ph7/westie-music-database-sub000/search"
	"github.com/spf13/cobra"
)

func playlistsCmd(a *app) *cobra.Command {
	var (
		f             filterFlags
		offset, limit int
		asJSON        bool
	)
	cmd := &cobra.Command{
		Use:   "playlists",
		Short: "Find playlists containing matching songs",
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, closeDB, err := a.engine(cmd.Context())
			if err != nil {
				return err
			}
			defer closeDB()

			res, err := eng.FindPlaylists(search.PlaylistQuery{Filters: f.filters(), Offset: offset, Limit: limit})
			if err != nil {
				return err
			}
			rows, err := res.Collect(cmd.Context())
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(cmd.OutOrStdout(), rows)
			}
			out := make([][]string, len(rows))
			for i, p := range rows {
				out[i] = []string{
					p.Name, p.OwnerName, p.Country,
					strconv.FormatInt(p.MatchingSongCount, 10), join(p.TrackNames), p.ID,
				}
			}
			return printTable(cmd.OutOrStdout(), []string{"playlist", "owner", "country", "matching", "songs", "spotify_id"}, out)
		},
	}
	f.register(cmd.Flags())
	cmd.Flags().IntVar(&offset, "offset", 0, "rows to skip")
	cmd.Flags().IntVar(&limit, "limit", 0, "rows to return (default: from config)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "output as JSON")
	return cmd
}

func djsCmd(a *app) *cobra.Command {
	var (
		f                      filterFlags
		playlistLimit, djLimit int
		asJSON                 bool
	)
	cmd := &cobra.Command{
		Use:   "djs",
		Short: "Find the DJs who play matching songs",
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, closeDB, err := a.engine(cmd.Context())
			if err != nil {
				return err
			}
			defer closeDB()

			res, err := eng.FindDJs(search.DJQuery{Filters: f.filters(), PlaylistLimit: playlistLimit, DJLimit: djLimit})
			if err != nil {
				return err
			}
			rows, err := res.Collect(cmd.Context())
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(cmd.OutOrStdout(), rows)
			}
			out := make([][]string, len(rows))
			for i, o := range rows {
				out[i] = []string{
					o.Name, strconv.FormatBool(o.IsWCSDJ),
					strconv.FormatInt(o.PlaylistCount, 10),
					strconv.FormatInt(o.SongCount, 10),
					strconv.FormatInt(o.ArtistCount, 10),
					join(o.PlaylistNames),
				}
			}
			return printTable(cmd.OutOrStdout(), []string{"dj", "wcs dj", "playlists", "songs", "artists", "playlist names"}, out)
		},
	}
	f.register(cmd.Flags())
	cmd.Flags().IntVar(&playlistLimit, "playlist-limit", 0, "playlist names listed per DJ (default: from config)")
	cmd.Flags().IntVar(&djLimit, "dj-limit", 0, "DJs to return (default: from config)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "output as JSON")
	return cmd
}

func artistsCmd(a *app) *cobra.Command {
	var (
		f             filterFlags
		offset, limit int
		asJSON        bool
	)
	cmd := &cobra.Command{
		Use:   "artists",
		Short: "Find the artists of matching songs",
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, closeDB, err := a.engine(cmd.Context())
			if err != nil {
				return err
			}
			defer closeDB()

			res, err := eng.FindArtists(search.ArtistQuery{Filters: f.filters(), Offset: offset, Limit: limit})
			if err != nil {
				return err
			}
			rows, err := res.Collect(cmd.Context())
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(cmd.OutOrStdout(), rows)
			}
			if len(rows) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no results")
				return nil
			}
			out := make([][]string, len(rows))
			for i, r := range rows {
				out[i] = []string{
					r.Name,
					strconv.FormatInt(r.SongCount, 10),
					strconv.FormatInt(r.PlaylistCount, 10),
					join(r.TrackNames),
				}
			}
			return printTable(cmd.OutOrStdout(), []string{"artist", "songs", "playlists", "song names"}, out)
		},
	}
	f.register(cmd.Flags())
	cmd.Flags().IntVar(&offset, "offset", 0, "rows to skip")
	cmd.Flags().IntVar(&limit, "limit", 0, "rows to return (default: from config)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "output as JSON")
	return cmd
}
