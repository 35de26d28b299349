package search_test

import (
	"context"
	"sort"
	"testing"

	"github.com/cr7pt0gr4ph7/westie-music-database-sub000/data"
	"github.com/cr7pt0gr4ph7/westie-music-database-sub000/db"
	"github.com/cr7pt0gr4ph7/westie-music-database-sub000/db/dbtest"
	"github.com/cr7pt0gr4ph7/westie-music-database-sub000/filter"
	"github.com/cr7pt0gr4ph7/westie-music-database-sub000/query"
	"github.com/cr7pt0gr4ph7/westie-music-database-sub000/search"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loaded(t *testing.T, d *db.DB) *search.Engine {
	t.Helper()
	e := search.New(d, search.DefaultConfig())
	require.NoError(t, e.Load(context.Background()))
	return e
}

func collect[T any](t *testing.T, r *search.Result[T], err error) []T {
	t.Helper()
	require.NoError(t, err)
	rows, err := r.Collect(context.Background())
	require.NoError(t, err)
	return rows
}

func ids(rows []query.TrackRow) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.ID
	}
	return out
}

func TestNotLoaded(t *testing.T) {
	e := search.New(dbtest.Seeded(t), search.Config{})
	_, err := e.FindSongs(search.SongQuery{})
	assert.ErrorIs(t, err, search.ErrNotLoaded)
	_, err = e.FindDJs(search.DJQuery{})
	assert.ErrorIs(t, err, search.ErrNotLoaded)
	_, _, err = e.FindRelatedSongs(search.Next, filter.Expr("a"), nil, 10)
	assert.ErrorIs(t, err, search.ErrNotLoaded)
	_, err = e.Stats(context.Background())
	assert.ErrorIs(t, err, search.ErrNotLoaded)
}

func TestLoadNeedsTables(t *testing.T) {
	d := dbtest.New(t)
	require.NoError(t, d.DropTables(context.Background(), data.TableLyrics))
	e := search.New(d, search.Config{})
	assert.Error(t, e.Load(context.Background()))
}

func TestUnfilteredReturnsEveryTrack(t *testing.T) {
	e := loaded(t, dbtest.Seeded(t))
	r, err := e.FindSongs(search.SongQuery{})
	rows := collect(t, r, err)

	got := ids(rows)
	sort.Strings(got)
	assert.Equal(t, []string{"t1", "t2", "t3", "t4"}, got)
}

func TestSongNameAndLyrics(t *testing.T) {
	e := loaded(t, dbtest.Seeded(t))
	r, err := e.FindSongs(search.SongQuery{
		Filters: search.Filters{SongName: filter.Expr("Back"), LyricsInclude: filter.Expr("Love")},
		SortBy:  search.SortMatchedLyrics,
	})
	rows := collect(t, r, err)

	require.Len(t, rows, 2)
	for _, row := range rows {
		assert.Contains(t, row.Name, "Back")
		assert.Contains(t, []string(row.MatchedLyrics), "love")
	}
}

func TestPlaylistExcludeRemovesTrack(t *testing.T) {
	e := loaded(t, dbtest.Seeded(t))
	r, err := e.FindSongs(search.SongQuery{
		Filters: search.Filters{PlaylistExclude: filter.Expr("blues")},
	})
	rows := collect(t, r, err)
	assert.NotContains(t, ids(rows), "t3")
}

func TestSortAndPage(t *testing.T) {
	e := loaded(t, dbtest.Seeded(t))

	r, err := e.FindSongs(search.SongQuery{SortBy: search.SortPlaylistCount, Descending: true, Limit: 2})
	assert.Equal(t, []string{"t1", "t2"}, ids(collect(t, r, err)))

	r, err = e.FindSongs(search.SongQuery{SortBy: search.SortPlaylistCount, Descending: true, Offset: 2, Limit: 2})
	assert.Equal(t, []string{"t3", "t4"}, ids(collect(t, r, err)))

	r, err = e.FindSongs(search.SongQuery{SortBy: search.SortDJCount, Descending: true, Limit: 1})
	assert.Equal(t, []string{"t2"}, ids(collect(t, r, err)))

	// Without include terms, matched lyrics sorting falls back to playlist
	// count.
	r, err = e.FindSongs(search.SongQuery{SortBy: search.SortMatchedLyrics, Limit: 2})
	assert.Equal(t, []string{"t3", "t4"}, ids(collect(t, r, err)))
}

func TestFindSongsWithPlaylistInfo(t *testing.T) {
	e := loaded(t, dbtest.Seeded(t))
	r, err := e.FindSongs(search.SongQuery{
		Filters:             search.Filters{SongName: filter.Expr("slow")},
		IncludePlaylistInfo: true,
	})
	rows := collect(t, r, err)
	require.Len(t, rows, 1)
	assert.Equal(t, []string{"Blues Night"}, []string(rows[0].PlaylistNames))
	assert.Equal(t, []string{"DJ Beta"}, []string(rows[0].OwnerNames))
	assert.Contains(t, r.SQL(), data.TableTracks)
	assert.Equal(t, query.TracksFirst, r.Plan().Strategy)
}

func TestFindPlaylists(t *testing.T) {
	e := loaded(t, dbtest.Seeded(t))

	r, err := e.FindPlaylists(search.PlaylistQuery{Filters: search.Filters{SongName: filter.Expr("slow")}})
	rows := collect(t, r, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "p2", rows[0].ID)
	assert.Equal(t, []string{"Slow Blues - Bob"}, []string(rows[0].TrackNames))

	r, err = e.FindPlaylists(search.PlaylistQuery{Filters: search.Filters{Country: filter.Expr("US")}})
	rows = collect(t, r, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "p1", rows[0].ID)
	assert.Equal(t, "p3", rows[1].ID)
}

func TestFindDJs(t *testing.T) {
	e := loaded(t, dbtest.Seeded(t))

	r, err := e.FindDJs(search.DJQuery{PlaylistLimit: 1, DJLimit: 1})
	rows := collect(t, r, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "DJ Alpha", rows[0].Name)
	assert.Equal(t, int64(2), rows[0].PlaylistCount)
	assert.Equal(t, int64(3), rows[0].SongCount)
	assert.Equal(t, []string{"Chill Practice"}, []string(rows[0].PlaylistNames))

	r, err = e.FindDJs(search.DJQuery{Filters: search.Filters{DJExclude: filter.Expr("alpha")}})
	rows = collect(t, r, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "DJ Beta", rows[0].Name)
}

func TestFindArtists(t *testing.T) {
	e := loaded(t, dbtest.Seeded(t))
	r, err := e.FindArtists(search.ArtistQuery{Filters: search.Filters{Artist: filter.Expr("bob")}})
	rows := collect(t, r, err)

	// Cat shares a track with Bob.
	require.Len(t, rows, 2)
	assert.Equal(t, "Bob", rows[0].Name)
	assert.Equal(t, int64(2), rows[0].SongCount)
	assert.Equal(t, int64(2), rows[0].PlaylistCount)
	assert.Equal(t, "Cat", rows[1].Name)
}

func TestStatsAndCountries(t *testing.T) {
	e := loaded(t, dbtest.Seeded(t))

	stats, err := e.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, search.Stats{Tracks: 4, Artists: 4, Playlists: 3, Owners: 2, LyricSongs: 3}, *stats)

	countries, err := e.Countries(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"DE", "US"}, countries)
}

// lateNight is two social sets playing A and B in opposite orders.
func lateNight() dbtest.Corpus {
	return dbtest.Corpus{
		Playlists: []data.Playlist{
			{ID: "p1", Name: "WCS Late Night 2023-05-01", OwnerID: "o", OwnerName: "DJ", IsSocialSet: true},
			{ID: "p2", Name: "WCS Late Night 2023-06-01", OwnerID: "o", OwnerName: "DJ", IsSocialSet: true},
		},
		Tracks: []data.Track{
			{ID: "a", Name: "A", Artists: data.StringList{"X"}, ArtistNames: "X"},
			{ID: "b", Name: "B", Artists: data.StringList{"Y"}, ArtistNames: "Y"},
			{ID: "c", Name: "C", Artists: data.StringList{"Z"}, ArtistNames: "Z"},
		},
		PlaylistTracks: []data.PlaylistTrack{
			{PlaylistID: "p1", TrackID: "a", PositionNumber: 1},
			{PlaylistID: "p1", TrackID: "b", PositionNumber: 2},
			{PlaylistID: "p1", TrackID: "c", PositionNumber: 3},
			{PlaylistID: "p2", TrackID: "b", PositionNumber: 1},
			{PlaylistID: "p2", TrackID: "a", PositionNumber: 2},
		},
		Adjacent: []data.TrackAdjacent{
			{FirstID: "a", SecondID: "b", TimesPlayedTogether: 1},
			{FirstID: "b", SecondID: "c", TimesPlayedTogether: 1},
			{FirstID: "b", SecondID: "a", TimesPlayedTogether: 1},
		},
	}
}

func related(t *testing.T, e *search.Engine, dir search.Direction, name string) map[string]int64 {
	t.Helper()
	seeds, rel, err := e.FindRelatedSongs(dir, filter.Expr(name), nil, 10)
	require.NoError(t, err)
	seedRows, err := seeds.Collect(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, seedRows)

	rows := collect(t, rel, nil)
	out := map[string]int64{}
	for _, r := range rows {
		out[r.Name] = r.TimesPlayedTogether
	}
	return out
}

func TestRelatedSongs(t *testing.T) {
	d := dbtest.New(t)
	dbtest.Seed(t, d, lateNight())
	e := loaded(t, d)

	assert.Equal(t, map[string]int64{"B": 1}, related(t, e, search.Next, "A"))
	assert.Equal(t, map[string]int64{"B": 1}, related(t, e, search.Prev, "A"))
	assert.Equal(t, map[string]int64{"B": 2}, related(t, e, search.Any, "A"))
}

func TestRelatedAnyIsUnionOfBothSides(t *testing.T) {
	d := dbtest.New(t)
	dbtest.Seed(t, d, lateNight())
	e := loaded(t, d)

	for _, name := range []string{"A", "B", "C"} {
		want := related(t, e, search.Prev, name)
		for id, n := range related(t, e, search.Next, name) {
			want[id] += n
		}
		assert.Equal(t, want, related(t, e, search.Any, name), name)
	}
}

func TestRelatedWithoutAdjacency(t *testing.T) {
	d := dbtest.Seeded(t)
	require.NoError(t, d.DropTables(context.Background(), data.TableAdjacent))
	e := loaded(t, d)

	_, _, err := e.FindRelatedSongs(search.Any, filter.Expr("back"), nil, 10)
	assert.ErrorIs(t, err, search.ErrNoAdjacency)
}

func TestSongsMatchNonASCIICase(t *testing.T) {
	c := dbtest.DefaultCorpus()
	c.Tracks = append(c.Tracks, data.Track{ID: "t5", Name: "Été Indien", Artists: data.StringList{"Joe"}, ArtistNames: "Joe"})
	c.PlaylistTracks = append(c.PlaylistTracks, data.PlaylistTrack{PlaylistID: "p2", TrackID: "t5", PositionNumber: 3})
	c.Lyrics = append(c.Lyrics, data.TrackLyrics{TrackID: "t5", Lyrics: "Tu sais, je n'ai jamais été aussi HEUREUX"})
	d := dbtest.New(t)
	dbtest.Seed(t, d, c)
	e := loaded(t, d)

	for _, name := range []string{"Été", "été", "ÉTÉ", "indien"} {
		r, err := e.FindSongs(search.SongQuery{Filters: search.Filters{SongName: filter.Expr(name)}})
		assert.Equal(t, []string{"t5"}, ids(collect(t, r, err)), name)
	}

	r, err := e.FindSongs(search.SongQuery{Filters: search.Filters{LyricsInclude: filter.Expr("ÉTÉ, heureux")}})
	rows := collect(t, r, err)
	require.Len(t, rows, 1)
	rows[0].Normalize(0)
	assert.Equal(t, []string{"heureux", "été"}, []string(rows[0].MatchedLyrics))
}
