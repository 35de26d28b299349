package data

import "database/sql"

// Playlists are scraped collections of tracks. There is exactly one row per
// ID.
type Playlist struct {
	ID   string `gorm:"column:id"`
	Name string `gorm:"column:name"`

	OwnerID      string `gorm:"column:owner_id"`
	OwnerName    string `gorm:"column:owner_name"`
	OwnerIsWCSDJ bool   `gorm:"column:owner_is_wcs_dj"`

	// Derived from the free-text location, like "Seattle, WA, USA".
	Country string `gorm:"column:country"`
	Region  string `gorm:"column:region"`

	// Date-like substrings of Name.
	ExtractedDates StringList `gorm:"column:extracted_dates"`
	IsSocialSet    bool       `gorm:"column:is_social_set"`

	// Null until dedup has run.
	SongCount   sql.NullInt64 `gorm:"column:song_count"`
	ArtistCount sql.NullInt64 `gorm:"column:artist_count"`
}

// A PlaylistOwner is the Spotify user a playlist belongs to.
type PlaylistOwner struct {
	ID      string
	Name    string
	IsWCSDJ bool
}

func (p *Playlist) Owner() PlaylistOwner {
	return PlaylistOwner{ID: p.OwnerID, Name: p.OwnerName, IsWCSDJ: p.OwnerIsWCSDJ}
}
