package data_test

import (
	"testing"

	"github.com/cr7pt0gr4ph7/westie-music-database-sub000/data"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFieldsOf(t *testing.T) {
	owner := data.Fields(data.EntityOwner)
	assert.Equal(t, []data.Field{data.OwnerID, data.OwnerName, data.OwnerIsWCSDJ}, owner)

	for _, f := range data.Fields(data.EntityTrack) {
		assert.True(t, f.BelongsTo(data.EntityTrack), f.Name)
		assert.False(t, f.BelongsTo(data.EntityPlaylist), f.Name)
	}
}

func TestFieldsOfSeveral(t *testing.T) {
	fields := data.Fields(data.EntityTrackLyrics, data.EntityTrackAdjacent)
	assert.Len(t, fields, 5)
}

func TestOwnerSharesPlaylistTable(t *testing.T) {
	assert.Equal(t, "playlist.owner_name", data.OwnerName.Ref())
	assert.Equal(t, `playlist.owner_name AS "owner.name"`, data.OwnerName.Select())
	assert.Equal(t, "playlist_metadata AS playlist", data.EntityOwner.From())
}

func TestLookup(t *testing.T) {
	f, ok := data.Lookup("track.bpm")
	require.True(t, ok)
	assert.Equal(t, "beats_per_minute", f.Column)

	_, ok = data.Lookup("track.nope")
	assert.False(t, ok)
}

func TestStringListRoundTrip(t *testing.T) {
	v, err := data.StringList{"a", "b"}.Value()
	require.NoError(t, err)
	assert.Equal(t, `["a","b"]`, v)

	var l data.StringList
	require.NoError(t, l.Scan([]byte(`["x"]`)))
	assert.Equal(t, data.StringList{"x"}, l)

	require.NoError(t, l.Scan(nil))
	assert.Nil(t, l)

	v, err = data.StringList(nil).Value()
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestStringListNormalized(t *testing.T) {
	l := data.StringList{"c", "a", "", "b", "a"}
	assert.Equal(t, data.StringList{"a", "b", "c"}, l.Normalized(0))
	assert.Equal(t, data.StringList{"a", "b"}, l.Normalized(2))
	assert.Nil(t, data.StringList(nil).Normalized(5))
}
