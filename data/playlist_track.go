package data

// A PlaylistTrack is one occurrence of a track at a position in a playlist.
// (PlaylistID, TrackID, PositionNumber) is unique once exact duplicates from
// repeated scraping have been collapsed.
type PlaylistTrack struct {
	PlaylistID     string `gorm:"column:playlist_id"`
	TrackID        string `gorm:"column:track_id"`
	PositionNumber int64  `gorm:"column:position_number"`
	AddedAt        string `gorm:"column:added_at"`
}
