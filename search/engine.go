// Package search is the query API over a built database: songs, playlists,
// DJs, artists, related songs and corpus statistics.
package search

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/cr7pt0gr4ph7/westie-music-database-sub000/data"
	"github.com/cr7pt0gr4ph7/westie-music-database-sub000/db"
	"github.com/cr7pt0gr4ph7/westie-music-database-sub000/logging"
	"github.com/cr7pt0gr4ph7/westie-music-database-sub000/query"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

var (
	// ErrNotLoaded is returned by every query method until Load succeeds.
	ErrNotLoaded = errors.New("data not loaded")
	// ErrNoAdjacency is returned by FindRelatedSongs when the database has
	// no adjacency table.
	ErrNoAdjacency = errors.New("adjacency data not loaded")
)

type Config struct {
	// DisplayLimit caps collected name lists.
	DisplayLimit int `koanf:"display_limit" validate:"gte=1"`
	// DefaultLimit is the page size when a query does not set one.
	DefaultLimit int `koanf:"default_limit" validate:"gte=1"`
}

func DefaultConfig() Config {
	return Config{DisplayLimit: query.DefaultListLimit, DefaultLimit: 100}
}

// Engine answers queries against one immutable database snapshot.
type Engine struct {
	db  *db.DB
	cfg Config

	mu           sync.RWMutex
	loaded       bool
	card         query.Cardinality
	hasAdjacency bool
	build        data.BuildInfo
}

func New(d *db.DB, cfg Config) *Engine {
	def := DefaultConfig()
	if cfg.DisplayLimit <= 0 {
		cfg.DisplayLimit = def.DisplayLimit
	}
	if cfg.DefaultLimit <= 0 {
		cfg.DefaultLimit = def.DefaultLimit
	}
	return &Engine{db: d, cfg: cfg}
}

var requiredTables = []string{
	data.TablePlaylists,
	data.TablePlaylistTracks,
	data.TableTracks,
	data.TableLyrics,
	data.TableCountries,
}

// Load checks that the database holds every table the engine reads and
// counts their rows for the planner. It must succeed before any query.
func (e *Engine) Load(ctx context.Context) error {
	for _, table := range requiredTables {
		if !e.db.HasTable(table) {
			return fmt.Errorf("error loading data: missing table '%s'", table)
		}
	}

	var card query.Cardinality
	g, gctx := errgroup.WithContext(ctx)
	for table, n := range map[string]*int64{
		data.TablePlaylists:      &card.Playlists,
		data.TablePlaylistTracks: &card.PlaylistTracks,
		data.TableTracks:         &card.Tracks,
		data.TableLyrics:         &card.Lyrics,
	} {
		g.Go(func() error {
			count, err := e.db.CountRows(gctx, table)
			if err != nil {
				return err
			}
			*n = count
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("error loading data: %w", err)
	}

	var build data.BuildInfo
	if e.db.HasTable(data.TableBuildInfo) {
		info, err := e.db.BuildInfo(ctx)
		if err != nil {
			return err
		}
		build = *info
	}
	hasAdjacency := e.db.HasTable(data.TableAdjacent)

	e.mu.Lock()
	defer e.mu.Unlock()
	e.loaded, e.card, e.hasAdjacency, e.build = true, card, hasAdjacency, build

	log := logging.Component("search")
	log.Info().
		Int64("playlists", card.Playlists).
		Int64("playlist_tracks", card.PlaylistTracks).
		Int64("tracks", card.Tracks).
		Int64("lyrics", card.Lyrics).
		Bool("adjacency", hasAdjacency).
		Str("build", build.RunID).
		Msg("loaded data")
	return nil
}

func (e *Engine) state() (query.Cardinality, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if !e.loaded {
		return query.Cardinality{}, ErrNotLoaded
	}
	return e.card, nil
}

func (e *Engine) Loaded() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.loaded
}

// BuildID identifies the loaded snapshot. It is empty before Load, and for
// databases built without build info.
func (e *Engine) BuildID() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.build.RunID
}

func (e *Engine) Cardinality() query.Cardinality {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.card
}

func (e *Engine) root() *gorm.DB { return e.db.DB }

func (e *Engine) limit(n int) int {
	if n <= 0 {
		return e.cfg.DefaultLimit
	}
	return n
}
