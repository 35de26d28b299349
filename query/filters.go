package query

import (
	"strings"

	"github.com/cr7pt0gr4ph7/westie-music-database-sub000/data"
	"github.com/cr7pt0gr4ph7/westie-music-database-sub000/filter"
	"gorm.io/gorm"
)

// Estimated fraction of rows a predicate of each kind keeps. These only
// need to be right relative to one another.
const (
	selContains = 0.1
	selExact    = 0.02
	selDate     = 0.2
	selBool     = 0.3
	selRange    = 0.25
	selExclude  = 0.9
)

type weighted struct {
	pred *filter.Predicate
	sel  float64
}

// conds is an ordered list of predicates, applied with AND.
type conds []weighted

func (cs conds) active() bool {
	for _, c := range cs {
		if c.pred != nil {
			return true
		}
	}
	return false
}

func (cs conds) apply(q *gorm.DB) *gorm.DB {
	for _, c := range cs {
		q = c.pred.Apply(q)
	}
	return q
}

func (cs conds) selectivity() float64 {
	s := 1.0
	for _, c := range cs {
		if c.pred != nil {
			s *= c.sel
		}
	}
	return s
}

var (
	contains     = filter.Options{Mode: filter.Contains}
	exact        = filter.Options{Mode: filter.Exact}
	listContains = filter.Options{Mode: filter.Contains, ListColumn: true}
)

type PlaylistParams struct {
	NameInclude filter.Terms
	NameExclude filter.Terms
	Country     filter.Terms
	DJInclude   filter.Terms
	DJExclude   filter.Terms

	SocialSetsOnly bool
	WCSDJsOnly     bool
}

// PlaylistFilter narrows playlists. Its name exclusion also poisons every
// track that appears in an excluded playlist; see PlaylistTrackSet.
type PlaylistFilter struct {
	Params PlaylistParams

	conds       conds
	nameExclude *filter.Predicate
}

func NewPlaylistFilter(p PlaylistParams) *PlaylistFilter {
	f := &PlaylistFilter{Params: p}
	f.nameExclude = filter.Text(filter.Of(p.NameExclude), data.PlaylistName.Ref(), contains)
	f.conds = conds{
		{filter.Text(filter.Of(p.NameInclude), data.PlaylistName.Ref(), contains), selContains},
		{filter.Text(filter.Of(p.Country), data.PlaylistCountry.Ref(), exact), selExact},
		{filter.Text(filter.Of(p.DJInclude), data.OwnerName.Ref(), contains), selContains},
		{filter.Not(filter.Text(filter.Of(p.DJExclude), data.OwnerName.Ref(), contains)), selExclude},
		{filter.Bool(data.PlaylistIsSocialSet.Ref(), p.SocialSetsOnly), selBool},
		{filter.Bool(data.OwnerIsWCSDJ.Ref(), p.WCSDJsOnly), selBool},
		{filter.Not(f.nameExclude), selExclude},
	}
	return f
}

func (f *PlaylistFilter) HasFilters() bool {
	return f != nil && f.conds.active()
}

// Apply narrows a query over playlist rows. A filter without predicates
// returns q unchanged.
func (f *PlaylistFilter) Apply(q *gorm.DB) *gorm.DB {
	if !f.HasFilters() {
		return q
	}
	return f.conds.apply(q)
}

func (f *PlaylistFilter) Selectivity() float64 {
	if f == nil {
		return 1
	}
	return f.conds.selectivity()
}

type PlaylistTrackParams struct {
	AddedAt filter.Terms
}

type PlaylistTrackFilter struct {
	Params PlaylistTrackParams
	conds  conds
}

func NewPlaylistTrackFilter(p PlaylistTrackParams) *PlaylistTrackFilter {
	return &PlaylistTrackFilter{
		Params: p,
		conds: conds{
			{filter.Date(filter.Of(p.AddedAt), data.PlaylistTrackAddedAt.Ref()), selDate},
		},
	}
}

func (f *PlaylistTrackFilter) HasFilters() bool {
	return f != nil && f.conds.active()
}

func (f *PlaylistTrackFilter) Apply(q *gorm.DB) *gorm.DB {
	if !f.HasFilters() {
		return q
	}
	return f.conds.apply(q)
}

func (f *PlaylistTrackFilter) Selectivity() float64 {
	if f == nil {
		return 1
	}
	return f.conds.selectivity()
}

type TrackParams struct {
	Name        filter.Terms
	Artist      filter.Terms
	ReleaseDate filter.Terms
	Country     filter.Terms

	// Bounds <= 0 are open.
	MinBPM float64
	MaxBPM float64

	QueerArtist bool
	POCArtist   bool
}

type TrackFilter struct {
	Params TrackParams
	conds  conds
}

func NewTrackFilter(p TrackParams) *TrackFilter {
	return &TrackFilter{
		Params: p,
		conds: conds{
			{filter.Text(filter.Of(p.Name), data.TrackName.Ref(), contains), selContains},
			{filter.Text(filter.Of(p.Artist), data.TrackArtists.Ref(), listContains), selContains},
			{filter.Date(filter.Of(p.ReleaseDate), data.TrackReleaseDate.Ref()), selDate},
			{filter.Text(filter.Of(p.Country), data.TrackCountry.Ref(), filter.Options{Mode: filter.Exact, ListColumn: true}), selExact},
			{filter.Range(data.TrackBPM.Ref(), p.MinBPM, p.MaxBPM), selRange},
			{filter.Bool(data.TrackHasQueerArtist.Ref(), p.QueerArtist), selBool},
			{filter.Bool(data.TrackHasPOCArtist.Ref(), p.POCArtist), selBool},
		},
	}
}

func (f *TrackFilter) HasFilters() bool {
	return f != nil && f.conds.active()
}

func (f *TrackFilter) Apply(q *gorm.DB) *gorm.DB {
	if !f.HasFilters() {
		return q
	}
	return f.conds.apply(q)
}

func (f *TrackFilter) Selectivity() float64 {
	if f == nil {
		return 1
	}
	return f.conds.selectivity()
}

type TrackLyricsParams struct {
	Include filter.Terms
	Exclude filter.Terms
}

// TrackLyricsFilter matches lyrics containing any include term. Exclusion
// removes tracks whose lyrics contain an exclude term; tracks without
// lyrics are never excluded.
type TrackLyricsFilter struct {
	Params TrackLyricsParams

	includeTerms []string
	include      *filter.Predicate
	exclude      *filter.Predicate
}

func NewTrackLyricsFilter(p TrackLyricsParams) *TrackLyricsFilter {
	f := &TrackLyricsFilter{Params: p}
	for _, t := range filter.Of(p.Include) {
		f.includeTerms = append(f.includeTerms, strings.ToLower(t))
	}
	f.include = filter.Text(f.includeTerms, data.LyricsText.Ref(), contains)
	f.exclude = filter.Text(filter.Of(p.Exclude), data.LyricsText.Ref(), contains)
	return f
}

func (f *TrackLyricsFilter) HasFilters() bool {
	return f != nil && (f.include != nil || f.exclude != nil)
}

// IncludeTerms are the lowercased include terms, used to report which of
// them matched each track.
func (f *TrackLyricsFilter) IncludeTerms() []string {
	if f == nil {
		return nil
	}
	return f.includeTerms
}

func (f *TrackLyricsFilter) Apply(q *gorm.DB) *gorm.DB {
	if !f.HasFilters() {
		return q
	}
	return filter.Not(f.exclude).Apply(f.include.Apply(q))
}

func (f *TrackLyricsFilter) Selectivity() float64 {
	if f == nil {
		return 1
	}
	return conds{{f.include, selContains}, {f.exclude, selExclude}}.selectivity()
}
