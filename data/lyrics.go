package data

// TrackLyrics are joined in from an external lyrics corpus by song and artist
// name.
type TrackLyrics struct {
	TrackID string `gorm:"column:track_id"`
	Lyrics  string `gorm:"column:lyrics"`
}
