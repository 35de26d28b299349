package preprocess

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/cr7pt0gr4ph7/westie-music-database-sub000/data"
	"github.com/cr7pt0gr4ph7/westie-music-database-sub000/db"
)

// flushRows is how many membership rows are buffered before the pending
// playlists, tracks and memberships are written out.
const flushRows = 5000

type ingestCounts struct {
	Playlists, Tracks, Memberships, Skipped int
}

type ingester struct {
	p   *Pipeline
	db  *db.DB
	ctx context.Context

	playlists   []data.Playlist
	tracks      []data.Track
	memberships []data.PlaylistTrack
	seen        map[string]struct{}

	counts ingestCounts
}

// ingest streams playlists.jsonl into the pre-dedup tables. The first row
// seen for a track id wins.
func (p *Pipeline) ingest(ctx context.Context, d *db.DB) (ingestCounts, error) {
	in := &ingester{p: p, db: d, ctx: ctx, seen: map[string]struct{}{}}
	path := filepath.Join(p.cfg.InputDir, PlaylistsFile)
	if err := readJSONL(path, true, in.add); err != nil {
		return in.counts, err
	}
	if err := in.flush(); err != nil {
		return in.counts, err
	}
	return in.counts, nil
}

func (in *ingester) add(raw RawPlaylist) error {
	if raw.ID == "" {
		in.counts.Skipped++
		return nil
	}
	if err := in.ctx.Err(); err != nil {
		return err
	}

	dates, social := in.p.extract(raw.Name)
	country, region := SplitLocation(raw.Location)
	in.playlists = append(in.playlists, data.Playlist{
		ID:             raw.ID,
		Name:           raw.Name,
		OwnerID:        raw.Owner.ID,
		OwnerName:      raw.Owner.Name,
		OwnerIsWCSDJ:   in.p.djs.Has(raw.Owner.Name) || in.p.djs.Has(raw.Owner.ID),
		Country:        country,
		Region:         region,
		ExtractedDates: data.StringList(dates),
		IsSocialSet:    social,
	})
	in.counts.Playlists++

	for i, rt := range raw.Tracks {
		// local files have no id
		if rt.ID == "" {
			in.counts.Skipped++
			continue
		}
		pos := rt.Position
		if pos == 0 {
			pos = int64(i) + 1
		}
		in.memberships = append(in.memberships, data.PlaylistTrack{
			PlaylistID:     raw.ID,
			TrackID:        rt.ID,
			PositionNumber: pos,
			AddedAt:        rt.AddedAt,
		})
		in.counts.Memberships++
		if _, ok := in.seen[rt.ID]; ok {
			continue
		}
		in.seen[rt.ID] = struct{}{}
		in.tracks = append(in.tracks, in.p.track(rt))
		in.counts.Tracks++
	}
	if len(in.memberships) >= flushRows {
		return in.flush()
	}
	return nil
}

func (in *ingester) flush() error {
	if err := db.Insert(in.ctx, in.db, data.TablePlaylists+data.OriginalSuffix, in.playlists); err != nil {
		return err
	}
	if err := db.Insert(in.ctx, in.db, data.TableTracks+data.OriginalSuffix, in.tracks); err != nil {
		return err
	}
	if err := db.Insert(in.ctx, in.db, data.TablePlaylistTracks+data.OriginalSuffix, in.memberships); err != nil {
		return err
	}
	in.playlists, in.tracks, in.memberships = in.playlists[:0], in.tracks[:0], in.memberships[:0]
	return nil
}

func (p *Pipeline) track(rt RawTrack) data.Track {
	names := make([]string, 0, len(rt.Artists))
	for _, a := range rt.Artists {
		if a.Name != "" {
			names = append(names, a.Name)
		}
	}
	return data.Track{
		ID:             rt.ID,
		Name:           rt.Name,
		Artists:        data.StringList(names),
		ArtistNames:    strings.Join(names, ", "),
		ReleaseDate:    rt.ReleaseDate,
		HasQueerArtist: p.queer.HasAny(names),
		HasPOCArtist:   p.poc.HasAny(names),
	}
}
