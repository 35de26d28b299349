package main

import (
	"fmt"

	"github.com/cr7pt0gr4ph7/westie-music-database-sub000/readthrough"
	"github.com/cr7pt0gr4ph7/westie-music-database-sub000/server"
	"github.com/spf13/cobra"
)

const cachePrefix = "westie-"

func serveCmd(a *app) *cobra.Command {
	var port int
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the JSON API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := a.cfg.Server
			if port != 0 {
				cfg.Port = port
			}

			var cache *readthrough.ReadThrough
			if a.cfg.Cache.Enabled {
				var err error
				if cache, err = readthrough.New(a.cfg.Cache.Dir, cachePrefix); err != nil {
					return err
				}
			}

			eng, closeDB, err := a.engine(cmd.Context())
			if err != nil {
				return err
			}
			defer closeDB()

			addr := fmt.Sprintf(":%d", cfg.Port)
			return server.Run(cmd.Context(), server.New(eng, cfg, cache), addr)
		},
	}
	cmd.Flags().IntVar(&port, "port", 0, "http port (default: from config)")
	return cmd
}
