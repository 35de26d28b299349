package db_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/cr7pt0gr4ph7/westie-music-database-sub000/data"
	"github.com/cr7pt0gr4ph7/westie-music-database-sub000/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateAndInsert(t *testing.T) {
	ctx := context.Background()
	d, err := db.Create(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	defer d.Close()

	assert.True(t, d.HasTable(data.TableTracks))
	assert.True(t, d.HasTable(data.TableTracks+data.OriginalSuffix))

	tracks := []data.Track{
		{ID: "a", Name: "Back", Artists: data.StringList{"X"}, ArtistNames: "X"},
		{ID: "b", Name: "Front", Artists: data.StringList{"Y", "Z"}, ArtistNames: "Y, Z"},
		{ID: "a", Name: "Duplicate"},
	}
	require.NoError(t, db.Insert(ctx, d, data.TableTracks, tracks))

	n, err := d.CountRows(ctx, data.TableTracks)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	var got data.Track
	require.NoError(t, d.Table(data.TableTracks).Where("id = ?", "a").Take(&got).Error)
	assert.Equal(t, "Back", got.Name)
	assert.Equal(t, data.StringList{"X"}, got.Artists)

	artists, err := d.CountDistinct(ctx, data.TableTracks, "artist_names")
	require.NoError(t, err)
	assert.Equal(t, int64(2), artists)
}

func TestDropTables(t *testing.T) {
	ctx := context.Background()
	d, err := db.Create(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	defer d.Close()

	require.NoError(t, d.DropTables(ctx, data.TableDuplicates))
	assert.False(t, d.HasTable(data.TableDuplicates))
	assert.True(t, d.HasTable(data.TablePlaylists))
}

func TestOpenDoesNotMigrate(t *testing.T) {
	d, err := db.Open(filepath.Join(t.TempDir(), "empty.db"))
	require.NoError(t, err)
	defer d.Close()

	assert.False(t, d.HasTable(data.TableAdjacent))
}
