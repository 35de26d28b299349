package data

import "database/sql"

// Tracks are songs. Before dedup, several rows may share a Name and
// ArtistNames; afterwards each such pair has exactly one canonical row.
type Track struct {
	ID          string     `gorm:"column:id"`
	Name        string     `gorm:"column:name"`
	Artists     StringList `gorm:"column:artists"`
	ArtistNames string     `gorm:"column:artist_names"`
	ReleaseDate string     `gorm:"column:release_date"`

	BeatsPerMinute sql.NullFloat64 `gorm:"column:beats_per_minute"`

	// Every place the track has been seen in a playlist.
	Regions   StringList `gorm:"column:regions"`
	Countries StringList `gorm:"column:countries"`

	HasQueerArtist bool `gorm:"column:has_queer_artist"`
	HasPOCArtist   bool `gorm:"column:has_poc_artist"`

	PlaylistCount int64 `gorm:"column:playlist_count"`
	DJCount       int64 `gorm:"column:dj_count"`
}

// DedupKey is the pair two tracks must share to be the same song. It is
// compared case-sensitively.
func (t *Track) DedupKey() string {
	return t.Name + "\x00" + t.ArtistNames
}

// A TrackDuplicate maps a non-canonical track id to the id chosen to
// represent its song.
type TrackDuplicate struct {
	ID          string `gorm:"column:id" json:"id"`
	CanonicalID string `gorm:"column:canonical_id" json:"canonical_id"`
}
