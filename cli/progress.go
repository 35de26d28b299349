package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

func statsCmd(a *app) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Report what the database holds",
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, closeDB, err := a.engine(cmd.Context())
			if err != nil {
				return err
			}
			defer closeDB()

			stats, err := eng.Stats(cmd.Context())
			if err != nil {
				return err
			}
			countries, err := eng.Countries(cmd.Context())
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(cmd.OutOrStdout(), map[string]any{
					"build":     eng.BuildID(),
					"stats":     stats,
					"countries": countries,
				})
			}

			w := cmd.OutOrStdout()
			humanPrinter.Fprintf(w, "BUILD\n  %s\n\n", eng.BuildID())
			printSection(w, "songs", stats.Tracks, map[string]int64{
				"with lyrics": stats.LyricSongs,
			})
			printSection(w, "artists", stats.Artists, nil)
			printSection(w, "playlists", stats.Playlists, nil)
			printSection(w, "djs", stats.Owners, nil)
			humanPrinter.Fprintf(w, "COUNTRIES\n  %s\n", strings.Join(countries, ", "))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "output as JSON")
	return cmd
}

var humanPrinter = message.NewPrinter(language.English)

func printSection(w io.Writer, name string, known int64, parts map[string]int64) {
	humanPrinter.Fprintf(w, "%s\n", strings.ToUpper(name))
	humanPrinter.Fprintf(w, "  %d\tknown\n", known)
	for k, v := range parts {
		pct := 0.0
		if known > 0 {
			pct = 100.0 * float64(v) / float64(known)
		}
		humanPrinter.Fprintf(w, "  %d\t%s (%.2f%%)\n", v, k, pct)
	}
	fmt.Fprintln(w)
}
