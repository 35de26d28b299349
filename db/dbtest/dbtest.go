// Package dbtest builds throwaway databases for tests.
package dbtest

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/cr7pt0gr4ph7/westie-music-database-sub000/data"
	"github.com/cr7pt0gr4ph7/westie-music-database-sub000/db"
	"github.com/stretchr/testify/require"
)

// New returns an empty, migrated database in a temporary directory. It is
// closed when the test ends.
func New(t testing.TB) *db.DB {
	t.Helper()
	d, err := db.Create(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { d.Close() })
	return d
}

// Corpus is a small dataset:
//
//	p1 "WCS Social 2023-05-01" (DJ Alpha, US): t1, t2
//	p2 "Blues Night" (DJ Beta, DE):            t2, t3
//	p3 "Chill Practice" (DJ Alpha, US):        t1, t4
//
// t1, t2 and t3 have lyrics; t4 does not.
type Corpus struct {
	Playlists      []data.Playlist
	Tracks         []data.Track
	PlaylistTracks []data.PlaylistTrack
	Lyrics         []data.TrackLyrics
	Adjacent       []data.TrackAdjacent
}

func DefaultCorpus() Corpus {
	return Corpus{
		Playlists: []data.Playlist{
			{ID: "p1", Name: "WCS Social 2023-05-01", OwnerID: "o1", OwnerName: "DJ Alpha", OwnerIsWCSDJ: true,
				Country: "US", Region: "Seattle, WA", ExtractedDates: data.StringList{"2023-05-01"}, IsSocialSet: true,
				SongCount: count(2), ArtistCount: count(2)},
			{ID: "p2", Name: "Blues Night", OwnerID: "o2", OwnerName: "DJ Beta",
				Country: "DE", Region: "Berlin", SongCount: count(2), ArtistCount: count(2)},
			{ID: "p3", Name: "Chill Practice", OwnerID: "o1", OwnerName: "DJ Alpha", OwnerIsWCSDJ: true,
				Country: "US", Region: "Portland, OR", SongCount: count(2), ArtistCount: count(2)},
		},
		Tracks: []data.Track{
			{ID: "t1", Name: "Back To You", Artists: data.StringList{"Ann"}, ArtistNames: "Ann",
				ReleaseDate: "1987-03-01", Countries: data.StringList{"US"}, PlaylistCount: 2, DJCount: 1},
			{ID: "t2", Name: "Love Me Back", Artists: data.StringList{"Bob", "Cat"}, ArtistNames: "Bob, Cat",
				ReleaseDate: "2019-11-11", Countries: data.StringList{"DE", "US"}, HasQueerArtist: true,
				PlaylistCount: 2, DJCount: 2},
			{ID: "t3", Name: "Slow Blues", Artists: data.StringList{"Bob"}, ArtistNames: "Bob",
				ReleaseDate: "1962-01-01", Countries: data.StringList{"DE"}, PlaylistCount: 1, DJCount: 1},
			{ID: "t4", Name: "Lonely", Artists: data.StringList{"Dee"}, ArtistNames: "Dee",
				ReleaseDate: "2001-07-07", Countries: data.StringList{"US"}, HasPOCArtist: true,
				PlaylistCount: 1, DJCount: 1},
		},
		PlaylistTracks: []data.PlaylistTrack{
			{PlaylistID: "p1", TrackID: "t1", PositionNumber: 1, AddedAt: "2023-05-01"},
			{PlaylistID: "p1", TrackID: "t2", PositionNumber: 2, AddedAt: "2023-05-01"},
			{PlaylistID: "p2", TrackID: "t2", PositionNumber: 1, AddedAt: "2021-02-02"},
			{PlaylistID: "p2", TrackID: "t3", PositionNumber: 2, AddedAt: "2021-02-02"},
			{PlaylistID: "p3", TrackID: "t1", PositionNumber: 1, AddedAt: "2022-08-08"},
			{PlaylistID: "p3", TrackID: "t4", PositionNumber: 2, AddedAt: "2022-08-08"},
		},
		Lyrics: []data.TrackLyrics{
			{TrackID: "t1", Lyrics: "I'll come back to you, my Love"},
			{TrackID: "t2", Lyrics: "love, love me back"},
			{TrackID: "t3", Lyrics: "blues all night long"},
		},
		Adjacent: []data.TrackAdjacent{
			{FirstID: "t1", SecondID: "t2", TimesPlayedTogether: 1},
		},
	}
}

func count(n int64) sql.NullInt64 { return sql.NullInt64{Int64: n, Valid: true} }

// Seed writes c into d.
func Seed(t testing.TB, d *db.DB, c Corpus) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, db.Insert(ctx, d, data.TablePlaylists, c.Playlists))
	require.NoError(t, db.Insert(ctx, d, data.TableTracks, c.Tracks))
	require.NoError(t, db.Insert(ctx, d, data.TablePlaylistTracks, c.PlaylistTracks))
	require.NoError(t, db.Insert(ctx, d, data.TableLyrics, c.Lyrics))
	require.NoError(t, db.Insert(ctx, d, data.TableAdjacent, c.Adjacent))

	countries := map[string]bool{}
	for _, p := range c.Playlists {
		countries[p.Country] = true
	}
	for name := range countries {
		require.NoError(t, d.Exec("insert into "+data.TableCountries+" (name) values (?)", name).Error)
	}
}

// Seeded returns a database holding the default corpus.
func Seeded(t testing.TB) *db.DB {
	d := New(t)
	Seed(t, d, DefaultCorpus())
	return d
}
