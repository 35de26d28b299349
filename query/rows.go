package query

import "github.com/cr7pt0gr4ph7/westie-music-database-sub000/data"

// Column aliases of values computed by aggregation.
const (
	ColPlaylistNames      = "playlist.names"
	ColOwnerNames         = "owner.names"
	ColTrackNames         = "track.names"
	ColLyricsMatched      = "lyrics.matched"
	ColLyricsMatchedCount = "lyrics.matched_count"
	ColPlaylistMatchCount = "playlist.matching_song_count"
	ColOwnerPlaylistCount = "owner.playlist_count"
	ColOwnerSongCount     = "owner.song_count"
	ColOwnerArtistCount   = "owner.artist_count"
	ColArtistName         = "artist.name"
	ColArtistSongCount    = "artist.song_count"
	ColArtistPlaylists    = "artist.playlist_count"
)

// TrackRow is one row of a track aggregation. Column groups that were not
// requested are left zero.
type TrackRow struct {
	ID             string          `gorm:"column:track.id" json:"track.id"`
	Name           string          `gorm:"column:track.name" json:"track.name"`
	Artists        data.StringList `gorm:"column:track.artists.name" json:"track.artists.name"`
	ArtistNames    string          `gorm:"column:track.artist_names" json:"track.artist_names"`
	ReleaseDate    string          `gorm:"column:track.release_date" json:"track.release_date"`
	BPM            *float64        `gorm:"column:track.bpm" json:"track.bpm"`
	Regions        data.StringList `gorm:"column:track.region" json:"track.region"`
	Countries      data.StringList `gorm:"column:track.country" json:"track.country"`
	HasQueerArtist bool            `gorm:"column:track.has_queer_artist" json:"track.has_queer_artist"`
	HasPOCArtist   bool            `gorm:"column:track.has_poc_artist" json:"track.has_poc_artist"`
	PlaylistCount  int64           `gorm:"column:track.playlist_count" json:"track.playlist_count"`
	DJCount        int64           `gorm:"column:track.dj_count" json:"track.dj_count"`

	PlaylistNames data.StringList `gorm:"column:playlist.names" json:"playlist.names,omitempty"`
	OwnerNames    data.StringList `gorm:"column:owner.names" json:"owner.names,omitempty"`

	Lyrics             string          `gorm:"column:lyrics.lyrics" json:"lyrics.lyrics,omitempty"`
	MatchedLyrics      data.StringList `gorm:"column:lyrics.matched" json:"lyrics.matched,omitempty"`
	MatchedLyricsCount int64           `gorm:"column:lyrics.matched_count" json:"lyrics.matched_count,omitempty"`

	// Set by adjacency lookups only.
	TimesPlayedTogether int64 `gorm:"column:adjacent.times_played_together" json:"adjacent.times_played_together,omitempty"`
}

type PlaylistRow struct {
	ID             string          `gorm:"column:playlist.id" json:"playlist.id"`
	Name           string          `gorm:"column:playlist.name" json:"playlist.name"`
	Country        string          `gorm:"column:playlist.country" json:"playlist.country"`
	Region         string          `gorm:"column:playlist.region" json:"playlist.region"`
	ExtractedDates data.StringList `gorm:"column:playlist.extracted_dates" json:"playlist.extracted_dates"`
	IsSocialSet    bool            `gorm:"column:playlist.is_social_set" json:"playlist.is_social_set"`
	SongCount      *int64          `gorm:"column:playlist.song_count" json:"playlist.song_count"`
	ArtistCount    *int64          `gorm:"column:playlist.artist_count" json:"playlist.artist_count"`
	OwnerID        string          `gorm:"column:owner.id" json:"owner.id"`
	OwnerName      string          `gorm:"column:owner.name" json:"owner.name"`
	OwnerIsWCSDJ   bool            `gorm:"column:owner.is_wcs_dj" json:"owner.is_wcs_dj"`

	TrackNames        data.StringList `gorm:"column:track.names" json:"track.names"`
	MatchingSongCount int64           `gorm:"column:playlist.matching_song_count" json:"playlist.matching_song_count"`
}

type OwnerRow struct {
	ID            string          `gorm:"column:owner.id" json:"owner.id"`
	Name          string          `gorm:"column:owner.name" json:"owner.name"`
	IsWCSDJ       bool            `gorm:"column:owner.is_wcs_dj" json:"owner.is_wcs_dj"`
	PlaylistCount int64           `gorm:"column:owner.playlist_count" json:"owner.playlist_count"`
	SongCount     int64           `gorm:"column:owner.song_count" json:"owner.song_count"`
	ArtistCount   int64           `gorm:"column:owner.artist_count" json:"owner.artist_count"`
	PlaylistNames data.StringList `gorm:"column:playlist.names" json:"playlist.names"`
}

type ArtistRow struct {
	Name          string          `gorm:"column:artist.name" json:"artist.name"`
	SongCount     int64           `gorm:"column:artist.song_count" json:"artist.song_count"`
	PlaylistCount int64           `gorm:"column:artist.playlist_count" json:"artist.playlist_count"`
	TrackNames    data.StringList `gorm:"column:track.names" json:"track.names"`
	PlaylistNames data.StringList `gorm:"column:playlist.names" json:"playlist.names"`
}

// Normalize re-sorts collected lists, since json_group_array does not
// promise any order.
func (r *TrackRow) Normalize(limit int) {
	r.PlaylistNames = r.PlaylistNames.Normalized(limit)
	r.OwnerNames = r.OwnerNames.Normalized(limit)
	r.MatchedLyrics = r.MatchedLyrics.Normalized(0)
}

func (r *PlaylistRow) Normalize(limit int) {
	r.TrackNames = r.TrackNames.Normalized(limit)
}

func (r *OwnerRow) Normalize(limit int) {
	r.PlaylistNames = r.PlaylistNames.Normalized(limit)
}

func (r *ArtistRow) Normalize(limit int) {
	r.TrackNames = r.TrackNames.Normalized(limit)
	r.PlaylistNames = r.PlaylistNames.Normalized(limit)
}
