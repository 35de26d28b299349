package main

import (
	"fmt"

	"github.com/cr7pt0gr4ph7/westie-music-database-sub000/logging"
	"github.com/cr7pt0gr4ph7/westie-music-database-sub000/preprocess"
	"github.com/cr7pt0gr4ph7/westie-music-database-sub000/readthrough"
	"github.com/spf13/cobra"
)

func buildCmd(a *app) *cobra.Command {
	var (
		input     string
		batchSize int
		keep      bool
	)
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build the database from scraped playlists",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := a.cfg.Preprocess
			if input != "" {
				cfg.InputDir = input
			}
			if batchSize > 0 {
				cfg.BatchSize = batchSize
			}
			cfg.KeepOriginals = cfg.KeepOriginals || keep

			p, err := preprocess.New(cfg, nil)
			if err != nil {
				return err
			}
			info, err := p.Build(cmd.Context(), a.cfg.Database.Path)
			if err != nil {
				return fmt.Errorf("build error: %w", err)
			}

			// entries are keyed by build id, so old ones are only clutter
			if a.cfg.Cache.Enabled {
				if err := clearCache(a.cfg.Cache.Dir); err != nil {
					log := logging.Component("cli")
					log.Warn().Err(err).Msg("error clearing response cache")
				}
			}

			fmt.Fprintf(cmd.OutOrStdout(), "built %s (%s)\n", a.cfg.Database.Path, info.RunID)
			return nil
		},
	}
	cmd.Flags().StringVar(&input, "input", "", "directory holding playlists.jsonl (default: from config)")
	cmd.Flags().IntVar(&batchSize, "batch-size", 0, "keys per spilled batch (default: from config)")
	cmd.Flags().BoolVar(&keep, "keep-originals", false, "keep the pre-dedup tables in the output")
	return cmd
}

func clearCache(dir string) error {
	rt, err := readthrough.New(dir, cachePrefix)
	if err != nil {
		return err
	}
	return rt.Invalidate()
}
