package preprocess

import (
	"context"
	"path/filepath"

	"github.com/cr7pt0gr4ph7/westie-music-database-sub000/data"
	"github.com/cr7pt0gr4ph7/westie-music-database-sub000/db"
)

var (
	bpmScratch    = data.TableBPM + data.OriginalSuffix
	lyricsScratch = data.TableLyrics + data.OriginalSuffix
)

type bpmRow struct {
	Name   string  `gorm:"column:name"`
	Artist string  `gorm:"column:artist"`
	BPM    float64 `gorm:"column:bpm"`
}

type lyricsRow struct {
	Song   string `gorm:"column:song"`
	Artist string `gorm:"column:artist"`
	Lyrics string `gorm:"column:lyrics"`
}

// chunked buffers rows and writes them to table n at a time.
type chunked[T any] struct {
	ctx   context.Context
	db    *db.DB
	table string
	rows  []T
	n     int
}

func (c *chunked[T]) add(row T) error {
	c.rows = append(c.rows, row)
	c.n++
	if len(c.rows) >= flushRows {
		return c.flush()
	}
	return nil
}

func (c *chunked[T]) flush() error {
	err := db.Insert(c.ctx, c.db, c.table, c.rows)
	c.rows = c.rows[:0]
	return err
}

// loadBPM reads bpm.jsonl, if there is one, into a scratch table.
func (p *Pipeline) loadBPM(ctx context.Context, d *db.DB) (int, error) {
	out := &chunked[bpmRow]{ctx: ctx, db: d, table: bpmScratch}
	err := readJSONL(filepath.Join(p.cfg.InputDir, BPMFile), false, func(r RawBPM) error {
		if r.Name == "" || r.BPM <= 0 {
			return nil
		}
		return out.add(bpmRow{Name: r.Name, Artist: r.Artist, BPM: r.BPM})
	})
	if err != nil {
		return out.n, err
	}
	return out.n, out.flush()
}

// loadLyrics reads lyrics.jsonl, if there is one, into a scratch table,
// flattening any markup.
func (p *Pipeline) loadLyrics(ctx context.Context, d *db.DB) (int, error) {
	out := &chunked[lyricsRow]{ctx: ctx, db: d, table: lyricsScratch}
	err := readJSONL(filepath.Join(p.cfg.InputDir, LyricsFile), false, func(r RawLyrics) error {
		text, err := plainLyrics(r.Lyrics)
		if err != nil {
			p.log.Warn().Err(err).Str("song", r.Song).Msg("skipping lyrics")
			return nil
		}
		if r.Song == "" || text == "" {
			return nil
		}
		return out.add(lyricsRow{Song: r.Song, Artist: r.Artist, Lyrics: text})
	})
	if err != nil {
		return out.n, err
	}
	return out.n, out.flush()
}

// artistMatches is true when the scratch row's artist is the track's
// joined artist string or any one of its artists. alias is the scratch
// table's alias and col its artist column.
func artistMatches(alias, col string) string {
	return `(ulower(` + alias + `.` + col + `) = ulower(t.artist_names)
		or exists (select 1 from json_each(t.artists) as a where ulower(a.value) = ulower(` + alias + `.` + col + `)))`
}

// applyBPM sets each track's tempo from the first matching BPM record.
func applyBPM(ctx context.Context, d *db.DB) error {
	return d.ExecStep(ctx, "joining bpm", `
		update `+data.TableTracks+` as t set beats_per_minute = (
			select b.bpm from `+bpmScratch+` as b
			where ulower(b.name) = ulower(t.name) and `+artistMatches("b", "artist")+`
			order by b.rowid limit 1)`)
}

// applyLyrics stores the first matching lyrics record for each track.
func applyLyrics(ctx context.Context, d *db.DB) error {
	return d.ExecStep(ctx, "joining lyrics", `
		insert into `+data.TableLyrics+` (track_id, lyrics)
		select id, lyrics from (
			select t.id as id, (
				select l.lyrics from `+lyricsScratch+` as l
				where ulower(l.song) = ulower(t.name) and `+artistMatches("l", "artist")+`
				order by l.rowid limit 1) as lyrics
			from `+data.TableTracks+` as t)
		where lyrics is not null`)
}

// recount derives the per-track and per-playlist counts and place lists
// from the deduplicated memberships, and fills the countries table.
func recount(ctx context.Context, d *db.DB) error {
	places := func(col string) string {
		return `(select json_group_array(v) from (
			select distinct p.` + col + ` as v
			from ` + data.TablePlaylistTracks + ` as ps
			join ` + data.TablePlaylists + ` as p on p.id = ps.playlist_id
			where ps.track_id = t.id and p.` + col + ` <> ''
			order by v))`
	}
	if err := d.ExecStep(ctx, "counting track usage", `
		update `+data.TableTracks+` as t set
			playlist_count = (
				select count(distinct ps.playlist_id) from `+data.TablePlaylistTracks+` as ps
				where ps.track_id = t.id),
			dj_count = (
				select count(distinct p.owner_id) from `+data.TablePlaylistTracks+` as ps
				join `+data.TablePlaylists+` as p on p.id = ps.playlist_id
				where ps.track_id = t.id),
			countries = `+places("country")+`,
			regions = `+places("region")); err != nil {
		return err
	}
	if err := d.ExecStep(ctx, "counting playlist contents", `
		update `+data.TablePlaylists+` as pl set
			song_count = (
				select count(distinct ps.track_id) from `+data.TablePlaylistTracks+` as ps
				where ps.playlist_id = pl.id),
			artist_count = (
				select count(distinct t.artist_names) from `+data.TablePlaylistTracks+` as ps
				join `+data.TableTracks+` as t on t.id = ps.track_id
				where ps.playlist_id = pl.id)`); err != nil {
		return err
	}
	return d.ExecStep(ctx, "listing countries", `
		insert into `+data.TableCountries+` (name)
		select distinct country from `+data.TablePlaylists+`
		where country <> ''
		order by country`)
}
