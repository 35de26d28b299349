package search

import (
	"fmt"

	"github.com/cr7pt0gr4ph7/westie-music-database-sub000/filter"
	"github.com/cr7pt0gr4ph7/westie-music-database-sub000/query"
	"gorm.io/gorm"
)

// Filters are the parameters every find method accepts. Zero values
// constrain nothing.
type Filters struct {
	SongName      filter.Terms
	Artist        filter.Terms
	ReleaseDate   filter.Terms
	TrackCountry  filter.Terms
	MinBPM        float64
	MaxBPM        float64
	QueerArtist   bool
	POCArtist     bool
	LyricsInclude filter.Terms
	LyricsExclude filter.Terms

	Country         filter.Terms
	DJInclude       filter.Terms
	DJExclude       filter.Terms
	PlaylistInclude filter.Terms
	PlaylistExclude filter.Terms
	SocialSetsOnly  bool
	WCSDJsOnly      bool

	AddedAt filter.Terms
}

func (f Filters) combined() *query.CombinedFilter {
	return &query.CombinedFilter{
		Playlist: query.NewPlaylistFilter(query.PlaylistParams{
			NameInclude:    f.PlaylistInclude,
			NameExclude:    f.PlaylistExclude,
			Country:        f.Country,
			DJInclude:      f.DJInclude,
			DJExclude:      f.DJExclude,
			SocialSetsOnly: f.SocialSetsOnly,
			WCSDJsOnly:     f.WCSDJsOnly,
		}),
		PlaylistTrack: query.NewPlaylistTrackFilter(query.PlaylistTrackParams{
			AddedAt: f.AddedAt,
		}),
		Track: query.NewTrackFilter(query.TrackParams{
			Name:        f.SongName,
			Artist:      f.Artist,
			ReleaseDate: f.ReleaseDate,
			Country:     f.TrackCountry,
			MinBPM:      f.MinBPM,
			MaxBPM:      f.MaxBPM,
			QueerArtist: f.QueerArtist,
			POCArtist:   f.POCArtist,
		}),
		Lyrics: query.NewTrackLyricsFilter(query.TrackLyricsParams{
			Include: f.LyricsInclude,
			Exclude: f.LyricsExclude,
		}),
	}
}

type SortKey int

const (
	SortPlaylistCount SortKey = iota
	SortDJCount
	// SortMatchedLyrics sorts by how many lyrics include terms matched. It
	// falls back to SortPlaylistCount when there are none.
	SortMatchedLyrics
)

var sortKeyNames = [...]string{
	SortPlaylistCount: "playlist_count",
	SortDJCount:       "dj_count",
	SortMatchedLyrics: "matched_lyrics_count",
}

func (k SortKey) String() string {
	if int(k) < 0 || int(k) >= len(sortKeyNames) {
		return fmt.Sprintf("sort(%d)", int(k))
	}
	return sortKeyNames[k]
}

func ParseSortKey(name string) (SortKey, error) {
	for i, n := range sortKeyNames {
		if n == name {
			return SortKey(i), nil
		}
	}
	return 0, fmt.Errorf("unknown sort key '%s'", name)
}

// SortKeyNames lists the accepted sort keys.
func SortKeyNames() []string { return sortKeyNames[:] }

type SongQuery struct {
	Filters

	SortBy     SortKey
	Descending bool
	Offset     int
	Limit      int

	// Column groups joined into each row. Lyrics text is large, so it is
	// only read when asked for.
	IncludePlaylistInfo bool
	IncludeLyrics       bool

	// Order overrides the planner's join order.
	Order []query.Stage
}

func direction(desc bool) string {
	if desc {
		return " DESC"
	}
	return " ASC"
}

// FindSongs returns one row per matching track.
func (e *Engine) FindSongs(q SongQuery) (*Result[query.TrackRow], error) {
	card, err := e.state()
	if err != nil {
		return nil, err
	}
	c := q.combined()
	c.Order = q.Order
	c.Options = query.Options{
		IncludePlaylistInfo: q.IncludePlaylistInfo,
		IncludeLyrics:       q.IncludeLyrics,
		ListLimit:           e.cfg.DisplayLimit,
	}
	plan, err := c.Plan(card)
	if err != nil {
		return nil, err
	}

	sortBy := q.SortBy
	if sortBy == SortMatchedLyrics && len(c.Lyrics.IncludeTerms()) == 0 {
		sortBy = SortPlaylistCount
	}
	var order string
	switch sortBy {
	case SortDJCount:
		order = "track.dj_count"
	case SortMatchedLyrics:
		order = `"` + query.ColLyricsMatchedCount + `"`
	default:
		order = "track.playlist_count"
	}

	tx := plan.Query(e.root()).
		Order(order + direction(q.Descending)).
		Order("track.id").
		Offset(q.Offset).
		Limit(e.limit(q.Limit))
	limit := e.cfg.DisplayLimit
	return newResult(tx, plan, func(r *query.TrackRow) { r.Normalize(limit) }), nil
}

// reverseOrder narrows tracks first and walks memberships back to
// playlists. Unfiltered stages are skipped by the sets themselves.
var reverseOrder = []query.Stage{
	query.StageLyrics,
	query.StageTrack,
	query.StagePlaylistTrack,
	query.StagePlaylist,
}

func (e *Engine) plan(f Filters, agg query.Aggregation, listLimit int) (*query.Plan, *gorm.DB, error) {
	card, err := e.state()
	if err != nil {
		return nil, nil, err
	}
	c := f.combined()
	c.Order = reverseOrder
	c.Aggregation = agg
	c.Options = query.Options{ListLimit: listLimit}
	plan, err := c.Plan(card)
	if err != nil {
		return nil, nil, err
	}
	return plan, plan.Query(e.root()), nil
}

type PlaylistQuery struct {
	Filters
	Offset int
	Limit  int
}

// FindPlaylists returns one row per playlist holding a matching track.
// Track filters narrow the playlists through their memberships; with no
// track filter, memberships are not consulted.
func (e *Engine) FindPlaylists(q PlaylistQuery) (*Result[query.PlaylistRow], error) {
	plan, tx, err := e.plan(q.Filters, query.ByPlaylist, e.cfg.DisplayLimit)
	if err != nil {
		return nil, err
	}
	tx = tx.
		Order(`"` + query.ColPlaylistMatchCount + `" DESC`).
		Order("playlist.id").
		Offset(q.Offset).
		Limit(e.limit(q.Limit))
	limit := e.cfg.DisplayLimit
	return newResult(tx, plan, func(r *query.PlaylistRow) { r.Normalize(limit) }), nil
}

type DJQuery struct {
	Filters
	// PlaylistLimit caps each DJ's playlist name list.
	PlaylistLimit int
	// DJLimit caps the number of rows.
	DJLimit int
}

// FindDJs returns one row per (owner id, owner name) pair.
func (e *Engine) FindDJs(q DJQuery) (*Result[query.OwnerRow], error) {
	listLimit := q.PlaylistLimit
	if listLimit <= 0 {
		listLimit = e.cfg.DisplayLimit
	}
	plan, tx, err := e.plan(q.Filters, query.ByOwner, listLimit)
	if err != nil {
		return nil, err
	}
	tx = tx.
		Order(`"` + query.ColOwnerSongCount + `" DESC`).
		Order(`"` + query.ColOwnerPlaylistCount + `" DESC`).
		Order(`"owner.id"`).
		Limit(e.limit(q.DJLimit))
	return newResult(tx, plan, func(r *query.OwnerRow) { r.Normalize(listLimit) }), nil
}

type ArtistQuery struct {
	Filters
	Offset int
	Limit  int
}

// FindArtists returns one row per artist name of a matching track.
func (e *Engine) FindArtists(q ArtistQuery) (*Result[query.ArtistRow], error) {
	plan, tx, err := e.plan(q.Filters, query.ByArtist, e.cfg.DisplayLimit)
	if err != nil {
		return nil, err
	}
	tx = tx.
		Order(`"` + query.ColArtistPlaylists + `" DESC`).
		Order(`"` + query.ColArtistName + `"`).
		Offset(q.Offset).
		Limit(e.limit(q.Limit))
	limit := e.cfg.DisplayLimit
	return newResult(tx, plan, func(r *query.ArtistRow) { r.Normalize(limit) }), nil
}
