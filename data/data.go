package data

import "fmt"

// An Entity names one of the record types in the database. Fields are tagged
// with the entity they belong to, so "all columns of X" is a lookup in the
// registry rather than a string-prefix match.
type Entity int

const (
	EntityPlaylist Entity = iota
	EntityOwner
	EntityTrack
	EntityPlaylistTrack
	EntityTrackLyrics
	EntityTrackAdjacent
)

var entityNames = [...]string{
	EntityPlaylist:      "playlist",
	EntityOwner:         "owner",
	EntityTrack:         "track",
	EntityPlaylistTrack: "playlist_track",
	EntityTrackLyrics:   "lyrics",
	EntityTrackAdjacent: "adjacent",
}

func (e Entity) String() string {
	if int(e) < 0 || int(e) >= len(entityNames) {
		return fmt.Sprintf("entity(%d)", int(e))
	}
	return entityNames[e]
}

// Alias is the name the entity's table is referred to by in queries. Owners
// are stored inline on their playlists, so they share its alias.
func (e Entity) Alias() string {
	if e == EntityOwner {
		return EntityPlaylist.String()
	}
	return e.String()
}

// Table is the logical table name the entity is persisted under.
func (e Entity) Table() string {
	switch e {
	case EntityPlaylist, EntityOwner:
		return TablePlaylists
	case EntityTrack:
		return TableTracks
	case EntityPlaylistTrack:
		return TablePlaylistTracks
	case EntityTrackLyrics:
		return TableLyrics
	case EntityTrackAdjacent:
		return TableAdjacent
	}
	return ""
}

// From renders "table AS alias", for use with gorm's Table.
func (e Entity) From() string {
	return e.Table() + " AS " + e.Alias()
}

const (
	TablePlaylists      = "playlist_metadata"
	TablePlaylistTracks = "playlist_songs"
	TableTracks         = "song_metadata"
	TableAdjacent       = "song_adjacent"
	TableLyrics         = "song_lyrics"
	TableCountries      = "countries"
	TableBuildInfo      = "build_info"
	TableDuplicates     = "song_duplicates"
	TableDedupKeys      = "song_dedup_keys"
	TableBPM            = "song_bpm"

	// OriginalSuffix marks the pre-dedup variants of the playlist, song and
	// membership tables. The serving path never reads them.
	OriginalSuffix = "_original"
)

// Kind describes how a field's values are stored.
type Kind int

const (
	KindText Kind = iota
	KindList
	KindDate
	KindBool
	KindNumber
)

// A Field is one column of one entity.
type Field struct {
	Entity Entity
	// Name is the dotted name the column carries in results, like
	// "track.name".
	Name string
	// Column is the column in the entity's table.
	Column string
	Kind   Kind
}

// Ref is the column qualified with its table alias.
func (f Field) Ref() string {
	return f.Entity.Alias() + "." + f.Column
}

// Select renders the column aliased to its dotted name.
func (f Field) Select() string {
	return fmt.Sprintf(`%s AS "%s"`, f.Ref(), f.Name)
}

// BelongsTo reports whether the field is a column of entity e.
func (f Field) BelongsTo(e Entity) bool {
	return f.Entity == e
}

var (
	PlaylistID             = Field{EntityPlaylist, "playlist.id", "id", KindText}
	PlaylistName           = Field{EntityPlaylist, "playlist.name", "name", KindText}
	PlaylistCountry        = Field{EntityPlaylist, "playlist.country", "country", KindText}
	PlaylistRegion         = Field{EntityPlaylist, "playlist.region", "region", KindText}
	PlaylistExtractedDates = Field{EntityPlaylist, "playlist.extracted_dates", "extracted_dates", KindList}
	PlaylistIsSocialSet    = Field{EntityPlaylist, "playlist.is_social_set", "is_social_set", KindBool}
	PlaylistSongCount      = Field{EntityPlaylist, "playlist.song_count", "song_count", KindNumber}
	PlaylistArtistCount    = Field{EntityPlaylist, "playlist.artist_count", "artist_count", KindNumber}

	OwnerID      = Field{EntityOwner, "owner.id", "owner_id", KindText}
	OwnerName    = Field{EntityOwner, "owner.name", "owner_name", KindText}
	OwnerIsWCSDJ = Field{EntityOwner, "owner.is_wcs_dj", "owner_is_wcs_dj", KindBool}

	TrackID             = Field{EntityTrack, "track.id", "id", KindText}
	TrackName           = Field{EntityTrack, "track.name", "name", KindText}
	TrackArtists        = Field{EntityTrack, "track.artists.name", "artists", KindList}
	TrackArtistNames    = Field{EntityTrack, "track.artist_names", "artist_names", KindText}
	TrackReleaseDate    = Field{EntityTrack, "track.release_date", "release_date", KindDate}
	TrackBPM            = Field{EntityTrack, "track.bpm", "beats_per_minute", KindNumber}
	TrackRegion         = Field{EntityTrack, "track.region", "regions", KindList}
	TrackCountry        = Field{EntityTrack, "track.country", "countries", KindList}
	TrackHasQueerArtist = Field{EntityTrack, "track.has_queer_artist", "has_queer_artist", KindBool}
	TrackHasPOCArtist   = Field{EntityTrack, "track.has_poc_artist", "has_poc_artist", KindBool}
	TrackPlaylistCount  = Field{EntityTrack, "track.playlist_count", "playlist_count", KindNumber}
	TrackDJCount        = Field{EntityTrack, "track.dj_count", "dj_count", KindNumber}

	PlaylistTrackPlaylistID = Field{EntityPlaylistTrack, "playlist_track.playlist_id", "playlist_id", KindText}
	PlaylistTrackTrackID    = Field{EntityPlaylistTrack, "playlist_track.track_id", "track_id", KindText}
	PlaylistTrackNumber     = Field{EntityPlaylistTrack, "playlist_track.number", "position_number", KindNumber}
	PlaylistTrackAddedAt    = Field{EntityPlaylistTrack, "playlist_track.added_at", "added_at", KindDate}

	LyricsTrackID = Field{EntityTrackLyrics, "lyrics.track_id", "track_id", KindText}
	LyricsText    = Field{EntityTrackLyrics, "lyrics.lyrics", "lyrics", KindText}

	AdjacentFirstID   = Field{EntityTrackAdjacent, "adjacent.first_id", "first_id", KindText}
	AdjacentSecondID  = Field{EntityTrackAdjacent, "adjacent.second_id", "second_id", KindText}
	AdjacentTimesSeen = Field{EntityTrackAdjacent, "adjacent.times_played_together", "times_played_together", KindNumber}
)

var registry = []Field{
	PlaylistID, PlaylistName, PlaylistCountry, PlaylistRegion,
	PlaylistExtractedDates, PlaylistIsSocialSet, PlaylistSongCount, PlaylistArtistCount,

	OwnerID, OwnerName, OwnerIsWCSDJ,

	TrackID, TrackName, TrackArtists, TrackArtistNames, TrackReleaseDate, TrackBPM,
	TrackRegion, TrackCountry, TrackHasQueerArtist, TrackHasPOCArtist,
	TrackPlaylistCount, TrackDJCount,

	PlaylistTrackPlaylistID, PlaylistTrackTrackID, PlaylistTrackNumber, PlaylistTrackAddedAt,

	LyricsTrackID, LyricsText,

	AdjacentFirstID, AdjacentSecondID, AdjacentTimesSeen,
}

// Fields returns every registered field of the given entities, in
// registration order.
func Fields(entities ...Entity) []Field {
	var fields []Field
	for _, f := range registry {
		for _, e := range entities {
			if f.BelongsTo(e) {
				fields = append(fields, f)
				break
			}
		}
	}
	return fields
}

// Lookup finds a field by its dotted name.
func Lookup(name string) (Field, bool) {
	for _, f := range registry {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Selects renders a select list for the given fields.
func Selects(fields []Field) []string {
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = f.Select()
	}
	return out
}
