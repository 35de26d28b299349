// westie builds and queries the West Coast Swing playlist database.
//
// see db/schema.sql for info about the database.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/cr7pt0gr4ph7/westie-music-database-sub000/config"
	"github.com/cr7pt0gr4ph7/westie-music-database-sub000/db"
	"github.com/cr7pt0gr4ph7/westie-music-database-sub000/logging"
	"github.com/cr7pt0gr4ph7/westie-music-database-sub000/search"
	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd().ExecuteContext(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, "canceled")
		} else {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

// app is what every subcommand shares once the config is loaded.
type app struct {
	cfgFile string
	dbPath  string
	cfg     *config.Config
}

func rootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "westie",
		Short:         "Search West Coast Swing DJ playlists",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(a.cfgFile)
			if err != nil {
				return err
			}
			if a.dbPath != "" {
				cfg.Database.Path = a.dbPath
			}
			logging.Init(cfg.Log)
			a.cfg = cfg
			return nil
		},
	}

	root.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (default: ./"+config.DefaultPath+" if present)")
	root.PersistentFlags().StringVar(&a.dbPath, "db", "", "database file (default: from config)")

	root.AddCommand(buildCmd(a))
	root.AddCommand(songsCmd(a))
	root.AddCommand(playlistsCmd(a))
	root.AddCommand(djsCmd(a))
	root.AddCommand(artistsCmd(a))
	root.AddCommand(relatedCmd(a))
	root.AddCommand(statsCmd(a))
	root.AddCommand(explainCmd(a))
	root.AddCommand(serveCmd(a))

	return root
}

// engine opens the configured database and loads it. The returned close
// function releases the database.
func (a *app) engine(ctx context.Context) (*search.Engine, func() error, error) {
	d, err := db.Open(a.cfg.Database.Path)
	if err != nil {
		return nil, nil, err
	}
	eng := search.New(d, a.cfg.Search)
	if err := eng.Load(ctx); err != nil {
		d.Close()
		return nil, nil, err
	}
	return eng, d.Close, nil
}
