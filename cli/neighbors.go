package main

import (
	"fmt"
	"strconv"

	"github.com/cr7pt0gr4ph7/westie-music-database-sub000/search"
	"github.com/cr7pt0gr4ph7/westie-music-database-sub000/setflag"
	"github.com/spf13/cobra"
)

func relatedCmd(a *app) *cobra.Command {
	var (
		song, artist string
		limit        int
		asJSON       bool
	)
	dir := setflag.NewChoice("direction", search.Any.String(),
		search.Next.String(), search.Prev.String(), search.Any.String())

	cmd := &cobra.Command{
		Use:   "related",
		Short: "Find songs played next to a song in social sets",
		RunE: func(cmd *cobra.Command, args []string) error {
			if song == "" && artist == "" {
				return fmt.Errorf("one of --song or --artist is required")
			}
			d, err := search.ParseDirection(dir.String())
			if err != nil {
				return err
			}
			eng, closeDB, err := a.engine(cmd.Context())
			if err != nil {
				return err
			}
			defer closeDB()

			seedRes, relatedRes, err := eng.FindRelatedSongs(d, terms(song), terms(artist), limit)
			if err != nil {
				return err
			}
			seeds, err := seedRes.Collect(cmd.Context())
			if err != nil {
				return err
			}
			related, err := relatedRes.Collect(cmd.Context())
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(cmd.OutOrStdout(), map[string]any{"seeds": seeds, "related": related})
			}

			w := cmd.OutOrStdout()
			fmt.Fprintln(w, "SEEDS")
			for _, t := range seeds {
				fmt.Fprintf(w, "  %s - %s\n", t.Name, t.ArtistNames)
			}
			fmt.Fprintln(w)
			if len(related) == 0 {
				fmt.Fprintln(w, "no related songs")
				return nil
			}
			rows := make([][]string, len(related))
			for i, t := range related {
				rows[i] = []string{
					t.Name, t.ArtistNames,
					strconv.FormatInt(t.TimesPlayedTogether, 10),
					strconv.FormatInt(t.PlaylistCount, 10),
					optFloat(t.BPM), t.ID,
				}
			}
			return printTable(w, []string{"track", "artists", "together", "playlists", "bpm", "spotify_id"}, rows)
		},
	}
	cmd.Flags().Var(dir, "direction", "which side of the seed to look")
	cmd.Flags().StringVar(&song, "song", "", "seed song name contains any of")
	cmd.Flags().StringVar(&artist, "artist", "", "seed artist name contains any of")
	cmd.Flags().IntVar(&limit, "limit", 0, "rows to return (default: from config)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "output as JSON")
	return cmd
}
