package search

import (
	"context"
	"fmt"

	"github.com/cr7pt0gr4ph7/westie-music-database-sub000/data"
	"golang.org/x/sync/errgroup"
)

type Stats struct {
	Tracks     int64 `json:"tracks"`
	Artists    int64 `json:"artists"`
	Playlists  int64 `json:"playlists"`
	Owners     int64 `json:"owners"`
	LyricSongs int64 `json:"lyric_songs"`
}

// Stats counts distinct tracks, artist names, playlists, owner names, and
// (song, artist) pairs with lyrics.
func (e *Engine) Stats(ctx context.Context) (*Stats, error) {
	if _, err := e.state(); err != nil {
		return nil, err
	}
	var s Stats
	counts := []struct {
		n          *int64
		from, expr string
	}{
		{&s.Tracks, data.EntityTrack.From(), data.TrackID.Ref()},
		{&s.Artists, data.EntityTrack.From() + " JOIN json_each(track.artists) AS artist", "artist.value"},
		{&s.Playlists, data.EntityPlaylist.From(), data.PlaylistID.Ref()},
		{&s.Owners, data.EntityPlaylist.From(), data.OwnerName.Ref()},
		{&s.LyricSongs,
			data.EntityTrackLyrics.From() + " JOIN " + data.EntityTrack.From() + " ON track.id = lyrics.track_id",
			"json_array(track.name, track.artist_names)"},
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, c := range counts {
		g.Go(func() error {
			n, err := e.db.CountDistinct(gctx, c.from, c.expr)
			if err != nil {
				return err
			}
			*c.n = n
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("error computing stats: %w", err)
	}
	return &s, nil
}

// Countries lists the playlist countries, for filter selectors.
func (e *Engine) Countries(ctx context.Context) ([]string, error) {
	if _, err := e.state(); err != nil {
		return nil, err
	}
	var names []string
	if err := e.db.WithContext(ctx).
		Table(data.TableCountries).
		Where("name <> ''").
		Order("name").
		Pluck("name", &names).
		Error; err != nil {
		return nil, fmt.Errorf("error listing countries: %w", err)
	}
	return names, nil
}
