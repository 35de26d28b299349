package data

// A TrackAdjacent counts the social sets in which FirstID was immediately
// followed by SecondID.
type TrackAdjacent struct {
	FirstID             string `gorm:"column:first_id" json:"first_id"`
	SecondID            string `gorm:"column:second_id" json:"second_id"`
	TimesPlayedTogether int64  `gorm:"column:times_played_together" json:"times_played_together"`
}

// BuildInfo identifies one run of the preprocessing pipeline.
type BuildInfo struct {
	RunID   string `gorm:"column:run_id"`
	BuiltAt string `gorm:"column:built_at"`
}
