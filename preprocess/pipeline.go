// Package preprocess builds the serving database from scraped playlist
// dumps: it ingests the raw JSONL, folds duplicate tracks onto one
// canonical id, joins in tempo and lyrics, counts adjacency in social sets,
// and derives the summary columns the search path filters on.
package preprocess

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/cr7pt0gr4ph7/westie-music-database-sub000/data"
	"github.com/cr7pt0gr4ph7/westie-music-database-sub000/db"
	"github.com/cr7pt0gr4ph7/westie-music-database-sub000/logging"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type Config struct {
	// InputDir holds playlists.jsonl and optionally bpm.jsonl and
	// lyrics.jsonl.
	InputDir string `koanf:"input_dir" validate:"required"`
	// BatchSize is the number of dedup groups or social sets handled per
	// spilled batch.
	BatchSize int    `koanf:"batch_size" validate:"gte=1"`
	TempDir   string `koanf:"temp_dir"`

	// Allowlist files, one name per line.
	DJList       string `koanf:"dj_list"`
	QueerArtists string `koanf:"queer_artists"`
	POCArtists   string `koanf:"poc_artists"`
	// DJNames are added to the DJ allowlist.
	DJNames []string `koanf:"dj_names"`

	// KeepOriginals leaves the pre-dedup and scratch tables in the output.
	KeepOriginals bool `koanf:"keep_originals"`
	// ReportEvery is the interval between progress log lines. Zero turns
	// them off.
	ReportEvery time.Duration `koanf:"report_every"`
}

func DefaultConfig() Config {
	return Config{
		InputDir:    "data",
		BatchSize:   10000,
		ReportEvery: 30 * time.Second,
	}
}

type Pipeline struct {
	cfg     Config
	extract Extractor
	log     zerolog.Logger

	djs, queer, poc Allowlist
}

// New prepares a pipeline. A nil extractor means DefaultExtractor.
func New(cfg Config, extract Extractor) (*Pipeline, error) {
	if extract == nil {
		extract = DefaultExtractor
	}
	p := &Pipeline{cfg: cfg, extract: extract, log: logging.Component("preprocess")}

	var err error
	if p.djs, err = ReadAllowlist(cfg.DJList); err != nil {
		return nil, err
	}
	for _, name := range cfg.DJNames {
		p.djs.Add(name)
	}
	if p.queer, err = ReadAllowlist(cfg.QueerArtists); err != nil {
		return nil, err
	}
	if p.poc, err = ReadAllowlist(cfg.POCArtists); err != nil {
		return nil, err
	}
	return p, nil
}

var scratchTables = []string{
	data.TablePlaylists + data.OriginalSuffix,
	data.TableTracks + data.OriginalSuffix,
	data.TablePlaylistTracks + data.OriginalSuffix,
	data.TableDuplicates,
	data.TableDedupKeys,
	bpmScratch,
	lyricsScratch,
}

// Build writes a complete database to out. It works on out+".building" and
// renames it into place only once every step has succeeded, so a reader of
// out never sees a partial build. Temp files are removed whatever happens.
func (p *Pipeline) Build(ctx context.Context, out string) (info *data.BuildInfo, err error) {
	started := time.Now()
	info = &data.BuildInfo{RunID: uuid.NewString()}
	log := p.log.With().Str("run", info.RunID).Logger()

	building := out + ".building"
	if err := os.Remove(building); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("error removing stale '%s': %w", building, err)
	}

	temp, err := NewTempFiles(p.cfg.TempDir, log)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := temp.Close(); cerr != nil {
			log.Warn().Err(cerr).Msg("temp cleanup failed")
		}
		if n := temp.Warnings(); n > 0 {
			log.Warn().Int("count", n).Msg("temp file misuse")
		}
	}()

	d, err := db.Create(building)
	if err != nil {
		return nil, err
	}
	closed := false
	defer func() {
		if !closed {
			d.Close()
		}
		if err != nil {
			os.Remove(building)
		}
	}()

	var stage stageTracker
	rctx, stopReporter := context.WithCancel(ctx)
	defer stopReporter()
	if p.cfg.ReportEvery > 0 {
		go runReporter(rctx, d, log, p.cfg.ReportEvery, &stage)
	}
	step := func(name string, fn func() error) error {
		stage.set(name)
		t := time.Now()
		log.Info().Str("stage", name).Msg("start")
		if err := fn(); err != nil {
			log.Error().Err(err).Str("stage", name).Msg("failed")
			return err
		}
		log.Info().Str("stage", name).Dur("took", time.Since(t)).Msg("done")
		return nil
	}

	if err := step("ingest", func() error {
		counts, err := p.ingest(ctx, d)
		log.Info().
			Int("playlists", counts.Playlists).
			Int("tracks", counts.Tracks).
			Int("memberships", counts.Memberships).
			Int("skipped", counts.Skipped).
			Msg("ingested")
		return err
	}); err != nil {
		return nil, err
	}

	if err := step("dedup", func() error {
		dups := &chunked[data.TrackDuplicate]{ctx: ctx, db: d, table: data.TableDuplicates}
		if err := findDuplicates(ctx, d, temp, data.TableTracks+data.OriginalSuffix, p.cfg.BatchSize, dups.add); err != nil {
			return err
		}
		if err := dups.flush(); err != nil {
			return err
		}
		log.Info().Int("duplicates", dups.n).Msg("resolved duplicates")
		return applyDuplicates(ctx, d)
	}); err != nil {
		return nil, err
	}

	if err := step("bpm", func() error {
		n, err := p.loadBPM(ctx, d)
		if err != nil {
			return err
		}
		log.Info().Int("records", n).Msg("loaded bpm")
		return applyBPM(ctx, d)
	}); err != nil {
		return nil, err
	}

	if err := step("lyrics", func() error {
		n, err := p.loadLyrics(ctx, d)
		if err != nil {
			return err
		}
		log.Info().Int("records", n).Msg("loaded lyrics")
		return applyLyrics(ctx, d)
	}); err != nil {
		return nil, err
	}

	if err := step("adjacency", func() error {
		pairs := &chunked[data.TrackAdjacent]{ctx: ctx, db: d, table: data.TableAdjacent}
		if err := findAdjacent(ctx, d, temp, p.cfg.BatchSize, pairs.add); err != nil {
			return err
		}
		log.Info().Int("pairs", pairs.n).Msg("counted adjacency")
		return pairs.flush()
	}); err != nil {
		return nil, err
	}

	if err := step("recount", func() error { return recount(ctx, d) }); err != nil {
		return nil, err
	}

	if final, err := gatherProgress(ctx, d, "finish"); err == nil {
		log.Info().
			Int64("playlists", final.Playlists).
			Int64("tracks", final.Tracks).
			Int64("memberships", final.Memberships).
			Int64("duplicates", final.Duplicates).
			Int64("adjacent", final.Adjacent).
			Msg("built")
	}

	if err := step("finish", func() error {
		info.BuiltAt = time.Now().UTC().Format(time.RFC3339)
		if err := db.Insert(ctx, d, data.TableBuildInfo, []data.BuildInfo{*info}); err != nil {
			return err
		}
		if p.cfg.KeepOriginals {
			return nil
		}
		if err := d.DropTables(ctx, scratchTables...); err != nil {
			return err
		}
		return d.Vacuum(ctx)
	}); err != nil {
		return nil, err
	}

	stopReporter()
	closed = true
	if err := d.Close(); err != nil {
		return nil, fmt.Errorf("error closing '%s': %w", building, err)
	}
	if err := os.Rename(building, out); err != nil {
		return nil, fmt.Errorf("error moving build into place: %w", err)
	}
	log.Info().Str("out", out).Dur("took", time.Since(started)).Msg("build complete")
	return info, nil
}
