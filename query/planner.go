package query

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

var (
	// ErrAggregationOrder is returned when a non-track aggregation is asked
	// for without an explicit stage order.
	ErrAggregationOrder = errors.New("aggregation requires an explicit filter order")
	ErrUnknownStage     = errors.New("unknown filter stage")
	ErrInvalidOrder     = errors.New("invalid filter order")
)

// A Stage is one step of the filter pipeline, named after the entity set it
// narrows.
type Stage int

const (
	StagePlaylist Stage = iota
	StagePlaylistTrack
	StageTrack
	StageLyrics
)

var stageNames = [...]string{
	StagePlaylist:      "playlist",
	StagePlaylistTrack: "playlist_track",
	StageTrack:         "track",
	StageLyrics:        "lyrics",
}

func (s Stage) String() string {
	if int(s) < 0 || int(s) >= len(stageNames) {
		return fmt.Sprintf("stage(%d)", int(s))
	}
	return stageNames[s]
}

func ParseStage(name string) (Stage, error) {
	for i, n := range stageNames {
		if n == name {
			return Stage(i), nil
		}
	}
	return 0, fmt.Errorf("%w '%s'", ErrUnknownStage, name)
}

func ParseOrder(names []string) ([]Stage, error) {
	order := make([]Stage, 0, len(names))
	for _, name := range names {
		st, err := ParseStage(strings.TrimSpace(name))
		if err != nil {
			return nil, err
		}
		order = append(order, st)
	}
	return order, nil
}

// Aggregation is the granularity of a result.
type Aggregation int

const (
	ByTrack Aggregation = iota
	ByPlaylist
	ByOwner
	ByArtist
)

var aggregationNames = [...]string{
	ByTrack:    "track",
	ByPlaylist: "playlist",
	ByOwner:    "owner",
	ByArtist:   "artist",
}

func (a Aggregation) String() string {
	if int(a) < 0 || int(a) >= len(aggregationNames) {
		return fmt.Sprintf("aggregation(%d)", int(a))
	}
	return aggregationNames[a]
}

func ParseAggregation(name string) (Aggregation, error) {
	for i, n := range aggregationNames {
		if n == name {
			return Aggregation(i), nil
		}
	}
	return 0, fmt.Errorf("unknown aggregation '%s'", name)
}

// Strategy is the join order a plan runs its stages in.
type Strategy int

const (
	// PlaylistsFirst narrows playlists, then memberships, then tracks.
	PlaylistsFirst Strategy = iota
	// TracksFirst narrows playlists and tracks independently and meets
	// them in the membership table.
	TracksFirst
	// CustomOrder runs the stages in a caller-supplied order.
	CustomOrder
)

func (s Strategy) String() string {
	switch s {
	case PlaylistsFirst:
		return "playlists-first"
	case TracksFirst:
		return "playlists-and-tracks-first"
	case CustomOrder:
		return "custom"
	}
	return fmt.Sprintf("strategy(%d)", int(s))
}

// Cardinality holds the row counts the cost model starts from.
type Cardinality struct {
	Playlists      int64
	PlaylistTracks int64
	Tracks         int64
	Lyrics         int64
}

func (c Cardinality) rows(st Stage) float64 {
	switch st {
	case StagePlaylist:
		return float64(c.Playlists)
	case StagePlaylistTrack:
		return float64(c.PlaylistTracks)
	case StageTrack:
		return float64(c.Tracks)
	case StageLyrics:
		return float64(c.Lyrics)
	}
	return 0
}

type Options struct {
	// IncludePlaylistInfo adds the names and owners of matching playlists
	// to track rows.
	IncludePlaylistInfo bool
	// IncludeLyrics adds lyric text to track rows.
	IncludeLyrics bool
	// ListLimit caps collected lists; <= 0 means DefaultListLimit.
	ListLimit int
}

func (o Options) listLimit() int {
	if o.ListLimit <= 0 {
		return DefaultListLimit
	}
	return o.ListLimit
}

// CombinedFilter runs the four entity filters against their sets and
// aggregates the result. Nil filters constrain nothing.
type CombinedFilter struct {
	Playlist      *PlaylistFilter
	PlaylistTrack *PlaylistTrackFilter
	Track         *TrackFilter
	Lyrics        *TrackLyricsFilter

	// Order, when set, replaces the planner's choice of strategy.
	Order       []Stage
	Aggregation Aggregation
	Options     Options
}

func (c *CombinedFilter) hasFilters(st Stage) bool {
	switch st {
	case StagePlaylist:
		return c.Playlist.HasFilters()
	case StagePlaylistTrack:
		return c.PlaylistTrack.HasFilters()
	case StageTrack:
		return c.Track.HasFilters()
	case StageLyrics:
		return c.Lyrics.HasFilters()
	}
	return false
}

func (c *CombinedFilter) selectivity(st Stage) float64 {
	switch st {
	case StagePlaylist:
		return c.Playlist.Selectivity()
	case StagePlaylistTrack:
		return c.PlaylistTrack.Selectivity()
	case StageTrack:
		return c.Track.Selectivity()
	case StageLyrics:
		return c.Lyrics.Selectivity()
	}
	return 1
}

func (c *CombinedFilter) validate() error {
	if len(c.Order) == 0 {
		if c.Aggregation != ByTrack {
			return fmt.Errorf("%w: aggregating by %s", ErrAggregationOrder, c.Aggregation)
		}
		return nil
	}
	seen := map[Stage]bool{}
	for _, st := range c.Order {
		if st < StagePlaylist || st > StageLyrics {
			return fmt.Errorf("%w %s", ErrUnknownStage, st)
		}
		if seen[st] {
			return fmt.Errorf("%w: stage '%s' appears twice", ErrInvalidOrder, st)
		}
		seen[st] = true
	}
	for st := StagePlaylist; st <= StageLyrics; st++ {
		if !seen[st] && c.hasFilters(st) {
			return fmt.Errorf("%w: stage '%s' has filters but is not in the order", ErrInvalidOrder, st)
		}
	}
	return nil
}

// StageEstimate is the number of rows a stage is expected to leave, assuming
// every filter applied so far is independent.
type StageEstimate struct {
	Stage Stage
	Rows  float64
}

// A Plan is a validated CombinedFilter with its join order decided.
type Plan struct {
	Strategy    Strategy
	Stages      []Stage
	Aggregation Aggregation
	Estimates   []StageEstimate

	// Rows expected to flow into the track join under each built-in
	// strategy.
	PlaylistsFirstCost float64
	TracksFirstCost    float64

	filter *CombinedFilter
}

var (
	playlistsFirstStages = []Stage{StagePlaylist, StagePlaylistTrack, StageTrack, StageLyrics}
	tracksFirstStages    = []Stage{StagePlaylist, StageTrack, StageLyrics, StagePlaylistTrack}
)

// Plan picks a join order. Given estimated selectivities s for each stage:
//
//	playlists-first            |PT| * s(playlist) * s(playlist_track)
//	playlists-and-tracks-first |T| * s(track) * s(lyrics), plus |PT| when a
//	                           playlist-side filter forces a membership scan
//
// With no playlist-side filter, playlists-and-tracks-first is always used,
// since there is nothing to narrow memberships by first. Otherwise the
// cheaper strategy wins, and ties go to playlists-first. Both costs are
// still reported by Explain.
func (c *CombinedFilter) Plan(card Cardinality) (*Plan, error) {
	if err := c.validate(); err != nil {
		return nil, err
	}
	p := &Plan{Aggregation: c.Aggregation, filter: c}

	playlistSide := c.Playlist.HasFilters() || c.PlaylistTrack.HasFilters()
	p.PlaylistsFirstCost = float64(card.PlaylistTracks) *
		c.selectivity(StagePlaylist) * c.selectivity(StagePlaylistTrack)
	p.TracksFirstCost = float64(card.Tracks) *
		c.selectivity(StageTrack) * c.selectivity(StageLyrics)
	if playlistSide {
		p.TracksFirstCost += float64(card.PlaylistTracks)
	}

	switch {
	case len(c.Order) > 0:
		p.Strategy = CustomOrder
		p.Stages = c.Order
	case !playlistSide, p.TracksFirstCost < p.PlaylistsFirstCost:
		p.Strategy = TracksFirst
		p.Stages = tracksFirstStages
	default:
		p.Strategy = PlaylistsFirst
		p.Stages = playlistsFirstStages
	}

	sel := 1.0
	for _, st := range p.Stages {
		sel *= c.selectivity(st)
		p.Estimates = append(p.Estimates, StageEstimate{Stage: st, Rows: card.rows(st) * sel})
	}
	return p, nil
}

// Explain describes the plan in a few lines.
func (p *Plan) Explain() string {
	var b strings.Builder
	fmt.Fprintf(&b, "strategy: %s\n", p.Strategy)
	fmt.Fprintf(&b, "aggregation: %s\n", p.Aggregation)
	fmt.Fprintf(&b, "cost: playlists-first=%.0f playlists-and-tracks-first=%.0f\n",
		p.PlaylistsFirstCost, p.TracksFirstCost)
	for i, e := range p.Estimates {
		skipped := ""
		if !p.filter.hasFilters(e.Stage) {
			skipped = " (no filters)"
		}
		fmt.Fprintf(&b, "%d. %s ~%.0f rows%s\n", i+1, e.Stage, e.Rows, skipped)
	}
	return b.String()
}

type sets struct {
	ps  *PlaylistSet
	pts *PlaylistTrackSet
	ts  *TrackSet
	ls  *TrackLyricsSet
}

func (p *Plan) sets(root *gorm.DB) sets {
	f := p.filter
	s := sets{
		ps:  AllPlaylists(root),
		pts: AllPlaylistTracks(root),
		ts:  AllTracks(root),
		ls:  AllLyrics(root),
	}

	switch p.Strategy {
	case PlaylistsFirst:
		s.ps = s.ps.Filter(f.Playlist)
		s.pts = s.pts.Filter(f.PlaylistTrack).RestrictToPlaylists(s.ps)
		s.ls = s.ls.Filter(f.Lyrics)
		s.ts = s.ts.Filter(f.Track).RestrictToPlaylistTracks(s.pts).RestrictToLyrics(s.ls)

	case TracksFirst:
		s.ps = s.ps.Filter(f.Playlist)
		s.ls = s.ls.Filter(f.Lyrics)
		s.ts = s.ts.Filter(f.Track).RestrictToLyrics(s.ls)
		s.pts = s.pts.Filter(f.PlaylistTrack).RestrictToPlaylists(s.ps).RestrictToTracks(s.ts)
		if s.ps.filtered || f.PlaylistTrack.HasFilters() {
			s.ts = s.ts.RestrictToPlaylistTracks(s.pts)
		}

	case CustomOrder:
		done := map[Stage]bool{}
		for _, st := range p.Stages {
			switch st {
			case StagePlaylist:
				s.ps = s.ps.Filter(f.Playlist)
				if done[StagePlaylistTrack] {
					s.ps = s.ps.RestrictToPlaylistTracks(s.pts)
				}
			case StagePlaylistTrack:
				s.pts = s.pts.Filter(f.PlaylistTrack)
				if done[StagePlaylist] {
					s.pts = s.pts.RestrictToPlaylists(s.ps)
				}
				if done[StageTrack] {
					s.pts = s.pts.RestrictToTracks(s.ts)
				}
			case StageTrack:
				s.ts = s.ts.Filter(f.Track)
				if done[StagePlaylistTrack] {
					s.ts = s.ts.RestrictToPlaylistTracks(s.pts)
				}
				if done[StageLyrics] {
					s.ts = s.ts.RestrictToLyrics(s.ls)
				}
			case StageLyrics:
				s.ls = s.ls.Filter(f.Lyrics)
				if done[StageTrack] {
					s.ls = s.ls.RestrictToTracks(s.ts)
				}
			}
			done[st] = true
		}
	}
	return s
}

// Query builds the plan's unexecuted query. Nothing touches the database
// until the caller runs it.
func (p *Plan) Query(root *gorm.DB) *gorm.DB {
	s := p.sets(root)
	limit := p.filter.Options.listLimit()
	switch p.Aggregation {
	case ByPlaylist:
		return aggregatePlaylists(root, s, limit)
	case ByOwner:
		return aggregateOwners(root, s, limit)
	case ByArtist:
		return aggregateArtists(root, s, limit)
	}
	return aggregateTracks(root, s, p.filter.Options, p.filter.Lyrics.IncludeTerms())
}
