package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func explainCmd(a *app) *cobra.Command {
	f := &songFlags{}
	var showSQL bool
	cmd := &cobra.Command{
		Use:   "explain",
		Short: "Show how a song search would be run",
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := f.query()
			if err != nil {
				return err
			}
			eng, closeDB, err := a.engine(cmd.Context())
			if err != nil {
				return err
			}
			defer closeDB()

			res, err := eng.FindSongs(q)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if res.Plan() != nil {
				fmt.Fprintln(w, res.Plan().Explain())
			}
			if showSQL {
				fmt.Fprintln(w)
				fmt.Fprintln(w, res.SQL())
			}
			return nil
		},
	}
	f.register(cmd)
	cmd.Flags().BoolVar(&showSQL, "sql", true, "print the generated SQL")
	return cmd
}
