package preprocess

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cr7pt0gr4ph7/westie-music-database-sub000/data"
	"github.com/cr7pt0gr4ph7/westie-music-database-sub000/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Alpha Song was scraped under two ids, a1 and a2. p2 was scraped twice.
var testPlaylists = []string{
	`{"id":"p1","name":"Late Night Social 2023","location":"Seattle, WA, USA","owner":{"id":"o1","name":"DJ Alpha"},"tracks":[
		{"id":"a1","name":"Alpha Song","artists":[{"name":"Ann"}],"release_date":"1999","added_at":"2023-01-01"},
		{"id":"b1","name":"Beta Song","artists":[{"name":"Bob"},{"name":"Cat"}],"added_at":"2023-01-01"},
		{"id":"a2","name":"Alpha Song","artists":[{"name":"Ann"}],"added_at":"2023-01-01"},
		{"id":"b1","name":"Beta Song","artists":[{"name":"Bob"},{"name":"Cat"}],"added_at":"2023-01-01"},
		{"id":"","name":"local file"}]}`,
	`{"id":"p2","name":"Practice","location":"Berlin, Germany","owner":{"id":"o2","name":"Someone"},"tracks":[
		{"id":"b1","name":"Beta Song","artists":[{"name":"Bob"},{"name":"Cat"}],"added_at":"2021-01-02"},
		{"id":"a1","name":"Alpha Song","artists":[{"name":"Ann"}],"added_at":"2021-01-02"}]}`,
	`{"id":"p2","name":"Practice","location":"Berlin, Germany","owner":{"id":"o2","name":"Someone"},"tracks":[
		{"id":"b1","name":"Beta Song","artists":[{"name":"Bob"},{"name":"Cat"}],"added_at":"2021-01-01"},
		{"id":"a1","name":"Alpha Song","artists":[{"name":"Ann"}],"added_at":"2021-01-01"}]}`,
	`{"id":"p3","name":"Blues Weekend 2022","location":"Portland, OR, USA","owner":{"id":"o1","name":"DJ Alpha"},"tracks":[
		{"id":"a1","name":"Alpha Song","artists":[{"name":"Ann"}]},
		{"id":"b1","name":"Beta Song","artists":[{"name":"Bob"},{"name":"Cat"}]},
		{"id":"c1","name":"Gamma","artists":[{"name":"Cat"}]}]}`,
}

func writeInput(t *testing.T) Config {
	t.Helper()
	dir := t.TempDir()
	write := func(name string, lines ...string) {
		for i, l := range lines {
			lines[i] = strings.Join(strings.Fields(l), " ")
		}
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(strings.Join(lines, "\n")+"\n"), 0o644))
	}
	write(PlaylistsFile, append([]string(nil), testPlaylists...)...)
	write(BPMFile,
		`{"name":"alpha song","artist":"ANN","bpm":98}`,
		`{"name":"Beta Song","artist":"Nobody","bpm":120}`,
		`{"name":"Gamma","artist":"Cat","bpm":88}`,
		`{"name":"Gamma","artist":"Cat","bpm":90}`)
	write(LyricsFile,
		`{"song":"Beta Song","artist":"Bob","lyrics":"<p>Hello<br>world</p>"}`,
		`{"song":"Gamma","artist":"Somebody","lyrics":"wrong artist"}`)
	write("queer.txt", "cat")

	cfg := DefaultConfig()
	cfg.InputDir = dir
	cfg.TempDir = t.TempDir()
	cfg.DJNames = []string{"DJ Alpha"}
	cfg.QueerArtists = filepath.Join(dir, "queer.txt")
	cfg.ReportEvery = 0
	return cfg
}

func build(t *testing.T, cfg Config) *db.DB {
	t.Helper()
	p, err := New(cfg, nil)
	require.NoError(t, err)
	out := filepath.Join(t.TempDir(), "westie.db")
	info, err := p.Build(context.Background(), out)
	require.NoError(t, err)
	assert.NotEmpty(t, info.RunID)
	assert.NotEmpty(t, info.BuiltAt)

	_, err = os.Stat(out + ".building")
	assert.True(t, os.IsNotExist(err), "building file left behind")

	d, err := db.Open(out)
	require.NoError(t, err)
	t.Cleanup(func() { d.Close() })
	return d
}

func tracks(t *testing.T, d *db.DB) map[string]data.Track {
	t.Helper()
	var rows []data.Track
	require.NoError(t, d.Table(data.TableTracks).Find(&rows).Error)
	out := map[string]data.Track{}
	for _, r := range rows {
		out[r.ID] = r
	}
	return out
}

func adjacency(t *testing.T, d *db.DB) []data.TrackAdjacent {
	t.Helper()
	var rows []data.TrackAdjacent
	require.NoError(t, d.Table(data.TableAdjacent).Order("first_id, second_id").Find(&rows).Error)
	return rows
}

func memberships(t *testing.T, d *db.DB) []data.PlaylistTrack {
	t.Helper()
	var rows []data.PlaylistTrack
	require.NoError(t, d.Table(data.TablePlaylistTracks).
		Order("playlist_id, position_number, track_id").
		Find(&rows).Error)
	return rows
}

func TestBuild(t *testing.T) {
	d := build(t, writeInput(t))

	ts := tracks(t, d)
	require.Len(t, ts, 3, "a2 folded into a1")
	a, b, c := ts["a1"], ts["b1"], ts["c1"]

	assert.Equal(t, data.StringList{"Bob", "Cat"}, b.Artists)
	assert.Equal(t, "Bob, Cat", b.ArtistNames)
	assert.True(t, b.HasQueerArtist)
	assert.False(t, a.HasQueerArtist)
	assert.Equal(t, "1999", a.ReleaseDate)

	assert.Equal(t, int64(3), a.PlaylistCount)
	assert.Equal(t, int64(2), a.DJCount)
	assert.Equal(t, data.StringList{"Germany", "USA"}, a.Countries)
	assert.Equal(t, data.StringList{"Berlin", "Portland, OR", "Seattle, WA"}, a.Regions)
	assert.Equal(t, int64(1), c.PlaylistCount)
	assert.Equal(t, data.StringList{"USA"}, c.Countries)

	assert.InDelta(t, 98.0, a.BeatsPerMinute.Float64, 0.001)
	assert.False(t, b.BeatsPerMinute.Valid, "no bpm record for this artist")
	assert.InDelta(t, 88.0, c.BeatsPerMinute.Float64, 0.001, "first record wins")

	var lyrics []data.TrackLyrics
	require.NoError(t, d.Table(data.TableLyrics).Find(&lyrics).Error)
	assert.Equal(t, []data.TrackLyrics{{TrackID: "b1", Lyrics: "Hello\nworld"}}, lyrics)

	assert.Equal(t, []data.PlaylistTrack{
		{PlaylistID: "p1", TrackID: "a1", PositionNumber: 1, AddedAt: "2023-01-01"},
		{PlaylistID: "p1", TrackID: "b1", PositionNumber: 2, AddedAt: "2023-01-01"},
		{PlaylistID: "p1", TrackID: "a1", PositionNumber: 3, AddedAt: "2023-01-01"},
		{PlaylistID: "p1", TrackID: "b1", PositionNumber: 4, AddedAt: "2023-01-01"},
		{PlaylistID: "p2", TrackID: "b1", PositionNumber: 1, AddedAt: "2021-01-01"},
		{PlaylistID: "p2", TrackID: "a1", PositionNumber: 2, AddedAt: "2021-01-01"},
		{PlaylistID: "p3", TrackID: "a1", PositionNumber: 1},
		{PlaylistID: "p3", TrackID: "b1", PositionNumber: 2},
		{PlaylistID: "p3", TrackID: "c1", PositionNumber: 3},
	}, memberships(t, d))

	// p2 is not a social set.
	assert.Equal(t, []data.TrackAdjacent{
		{FirstID: "a1", SecondID: "b1", TimesPlayedTogether: 2},
		{FirstID: "b1", SecondID: "a1", TimesPlayedTogether: 1},
		{FirstID: "b1", SecondID: "c1", TimesPlayedTogether: 1},
	}, adjacency(t, d))

	var playlists []data.Playlist
	require.NoError(t, d.Table(data.TablePlaylists).Order("id").Find(&playlists).Error)
	require.Len(t, playlists, 3)
	p1, p2 := playlists[0], playlists[1]
	assert.True(t, p1.IsSocialSet)
	assert.True(t, p1.OwnerIsWCSDJ)
	assert.Equal(t, data.StringList{"2023"}, p1.ExtractedDates)
	assert.Equal(t, "USA", p1.Country)
	assert.Equal(t, int64(2), p1.SongCount.Int64)
	assert.Equal(t, int64(2), p1.ArtistCount.Int64)
	assert.False(t, p2.IsSocialSet)
	assert.False(t, p2.OwnerIsWCSDJ)

	var countries []string
	require.NoError(t, d.Table(data.TableCountries).Order("name").Pluck("name", &countries).Error)
	assert.Equal(t, []string{"Germany", "USA"}, countries)

	for _, table := range scratchTables {
		assert.False(t, d.HasTable(table), table)
	}
	info, err := d.BuildInfo(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, info.RunID)
}

func TestBuildBatchSizeIndependent(t *testing.T) {
	cfg := writeInput(t)
	cfg.BatchSize = 1000
	want := build(t, cfg)
	for _, size := range []int{1, 2} {
		cfg.BatchSize = size
		got := build(t, cfg)
		assert.Equal(t, adjacency(t, want), adjacency(t, got), "size %d", size)
		assert.Equal(t, memberships(t, want), memberships(t, got), "size %d", size)
		assert.Equal(t, tracks(t, want), tracks(t, got), "size %d", size)
	}
}

func TestDedupIdempotent(t *testing.T) {
	cfg := writeInput(t)
	cfg.KeepOriginals = true
	d := build(t, cfg)

	var dups []data.TrackDuplicate
	require.NoError(t, d.Table(data.TableDuplicates).Find(&dups).Error)
	assert.Equal(t, []data.TrackDuplicate{{ID: "a2", CanonicalID: "a1"}}, dups)

	var again []data.TrackDuplicate
	require.NoError(t, findDuplicates(context.Background(), d, newTemp(t), data.TableTracks, 1, func(dup data.TrackDuplicate) error {
		again = append(again, dup)
		return nil
	}))
	assert.Empty(t, again)
}

func TestBuildMissingInput(t *testing.T) {
	cfg := DefaultConfig()
	cfg.InputDir = t.TempDir()
	cfg.TempDir = t.TempDir()
	cfg.ReportEvery = 0
	p, err := New(cfg, nil)
	require.NoError(t, err)

	out := filepath.Join(t.TempDir(), "westie.db")
	_, err = p.Build(context.Background(), out)
	assert.Error(t, err)
	for _, path := range []string{out, out + ".building"} {
		_, err := os.Stat(path)
		assert.True(t, os.IsNotExist(err), path)
	}
	entries, err := os.ReadDir(cfg.TempDir)
	require.NoError(t, err)
	assert.Empty(t, entries, "temp files left behind")
}

func TestAdjacencyBatchAboveVariableLimit(t *testing.T) {
	const n = 33000
	d, err := db.Create(filepath.Join(t.TempDir(), "adjacent.db"))
	require.NoError(t, err)
	t.Cleanup(func() { d.Close() })

	playlists := make([]data.Playlist, n)
	members := make([]data.PlaylistTrack, 0, 2*n)
	for i := range playlists {
		id := fmt.Sprintf("p%05d", i)
		playlists[i] = data.Playlist{ID: id, Name: "social", IsSocialSet: i%2 == 0}
		members = append(members,
			data.PlaylistTrack{PlaylistID: id, TrackID: "x", PositionNumber: 1},
			data.PlaylistTrack{PlaylistID: id, TrackID: "y", PositionNumber: 2})
	}
	ctx := context.Background()
	require.NoError(t, db.Insert(ctx, d, data.TablePlaylists, playlists))
	require.NoError(t, db.Insert(ctx, d, data.TablePlaylistTracks, members))

	for _, size := range []int{n + 1, 1000} {
		var got []data.TrackAdjacent
		require.NoError(t, findAdjacent(ctx, d, newTemp(t), size, func(a data.TrackAdjacent) error {
			got = append(got, a)
			return nil
		}))
		assert.Equal(t, []data.TrackAdjacent{{FirstID: "x", SecondID: "y", TimesPlayedTogether: n / 2}}, got, "size %d", size)
	}
}
