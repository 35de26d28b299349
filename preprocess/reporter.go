package preprocess

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/cr7pt0gr4ph7/westie-music-database-sub000/data"
	"github.com/cr7pt0gr4ph7/westie-music-database-sub000/db"
	"github.com/rs/zerolog"
)

// Progress is a snapshot of how far a build has got.
type Progress struct {
	Stage       string
	Playlists   int64
	Tracks      int64
	Memberships int64
	Duplicates  int64
	Adjacent    int64
}

func gatherProgress(ctx context.Context, d *db.DB, stage string) (Progress, error) {
	p := Progress{Stage: stage}
	for _, c := range []struct {
		table string
		dst   *int64
	}{
		{data.TablePlaylists + data.OriginalSuffix, &p.Playlists},
		{data.TableTracks + data.OriginalSuffix, &p.Tracks},
		{data.TablePlaylistTracks + data.OriginalSuffix, &p.Memberships},
		{data.TableDuplicates, &p.Duplicates},
		{data.TableAdjacent, &p.Adjacent},
	} {
		n, err := d.CountRows(ctx, c.table)
		if err != nil {
			return p, err
		}
		*c.dst = n
	}
	return p, nil
}

// stageTracker holds the name of the step a build is in.
type stageTracker struct{ v atomic.Value }

func (s *stageTracker) set(name string) { s.v.Store(name) }

func (s *stageTracker) get() string {
	name, _ := s.v.Load().(string)
	return name
}

// runReporter logs table sizes every interval until ctx is done.
func runReporter(ctx context.Context, d *db.DB, log zerolog.Logger, interval time.Duration, stage *stageTracker) {
	tick := time.NewTicker(interval)
	defer tick.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-tick.C:
		}
		p, err := gatherProgress(ctx, d, stage.get())
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Warn().Err(err).Msg("progress report failed")
			continue
		}
		log.Info().
			Str("stage", p.Stage).
			Int64("playlists", p.Playlists).
			Int64("tracks", p.Tracks).
			Int64("memberships", p.Memberships).
			Int64("duplicates", p.Duplicates).
			Int64("adjacent", p.Adjacent).
			Msg("progress")
	}
}
