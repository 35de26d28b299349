package query

import (
	"github.com/cr7pt0gr4ph7/westie-music-database-sub000/data"
	"gorm.io/gorm"
)

// seal forks q so that chaining onto it never mutates the statement other
// sets share.
func seal(q *gorm.DB) *gorm.DB {
	return q.Session(&gorm.Session{})
}

// column selects a single column from a set's rows, for use as a subquery.
func column(q *gorm.DB, ref string) *gorm.DB {
	return seal(q).Select(ref)
}

// PlaylistSet is a possibly narrowed view of the playlist table.
type PlaylistSet struct {
	root     *gorm.DB
	q        *gorm.DB
	filtered bool

	// excluded selects the ids of every playlist matching the name
	// exclusion, over the whole corpus. Nil when nothing is excluded.
	excluded *gorm.DB
}

func AllPlaylists(root *gorm.DB) *PlaylistSet {
	return &PlaylistSet{root: root, q: seal(root.Table(data.EntityPlaylist.From()))}
}

func (s *PlaylistSet) Query() *gorm.DB { return seal(s.q) }
func (s *PlaylistSet) IsFiltered() bool { return s.filtered }

func (s *PlaylistSet) ids() *gorm.DB { return column(s.q, data.PlaylistID.Ref()) }

func (s *PlaylistSet) Filter(f *PlaylistFilter) *PlaylistSet {
	if !f.HasFilters() {
		return s
	}
	out := *s
	out.q = seal(f.Apply(s.q))
	out.filtered = true
	if f.nameExclude != nil {
		out.excluded = seal(f.nameExclude.Apply(
			s.root.Table(data.EntityPlaylist.From()).Select(data.PlaylistID.Ref()),
		))
	}
	return &out
}

// RestrictToPlaylistTracks keeps the playlists referenced by pts.
func (s *PlaylistSet) RestrictToPlaylistTracks(pts *PlaylistTrackSet) *PlaylistSet {
	if !pts.filtered {
		return s
	}
	out := *s
	out.q = seal(s.q.Where(data.PlaylistID.Ref()+" IN (?)", pts.playlistIDs()))
	out.filtered = true
	return &out
}

// PlaylistTrackSet is a possibly narrowed view of playlist memberships.
type PlaylistTrackSet struct {
	root     *gorm.DB
	q        *gorm.DB
	filtered bool

	// excludedTracks selects the ids of tracks that appear in an excluded
	// playlist. Nil when nothing is excluded.
	excludedTracks *gorm.DB
}

func AllPlaylistTracks(root *gorm.DB) *PlaylistTrackSet {
	return &PlaylistTrackSet{root: root, q: seal(root.Table(data.EntityPlaylistTrack.From()))}
}

func (s *PlaylistTrackSet) Query() *gorm.DB { return seal(s.q) }
func (s *PlaylistTrackSet) IsFiltered() bool { return s.filtered }

func (s *PlaylistTrackSet) playlistIDs() *gorm.DB {
	return column(s.q, data.PlaylistTrackPlaylistID.Ref())
}

func (s *PlaylistTrackSet) trackIDs() *gorm.DB {
	return column(s.q, data.PlaylistTrackTrackID.Ref())
}

func (s *PlaylistTrackSet) Filter(f *PlaylistTrackFilter) *PlaylistTrackSet {
	if !f.HasFilters() {
		return s
	}
	out := *s
	out.q = seal(f.Apply(s.q))
	out.filtered = true
	return &out
}

// RestrictToPlaylists keeps memberships of playlists in ps, then removes
// every membership of a track that also appears in one of ps's excluded
// playlists, whichever playlist the membership belongs to.
func (s *PlaylistTrackSet) RestrictToPlaylists(ps *PlaylistSet) *PlaylistTrackSet {
	out := *s
	if ps.filtered {
		out.q = seal(out.q.Where(data.PlaylistTrackPlaylistID.Ref()+" IN (?)", ps.ids()))
		out.filtered = true
	}
	if ps.excluded != nil {
		poisoned := seal(s.root.
			Table(data.TablePlaylistTracks).
			Select("track_id").
			Where("playlist_id IN (?)", ps.excluded))
		out.q = seal(out.q.Where(data.PlaylistTrackTrackID.Ref()+" NOT IN (?)", poisoned))
		out.excludedTracks = poisoned
		out.filtered = true
	}
	return &out
}

// RestrictToTracks keeps memberships of tracks in ts.
func (s *PlaylistTrackSet) RestrictToTracks(ts *TrackSet) *PlaylistTrackSet {
	out := *s
	if ts.filtered {
		out.q = seal(out.q.Where(data.PlaylistTrackTrackID.Ref()+" IN (?)", ts.ids()))
		out.filtered = true
	}
	if out.excludedTracks == nil {
		out.excludedTracks = ts.excludedTracks
	}
	return &out
}

// TrackSet is a possibly narrowed view of the track table.
type TrackSet struct {
	root           *gorm.DB
	q              *gorm.DB
	filtered       bool
	excludedTracks *gorm.DB
}

func AllTracks(root *gorm.DB) *TrackSet {
	return &TrackSet{root: root, q: seal(root.Table(data.EntityTrack.From()))}
}

func (s *TrackSet) Query() *gorm.DB { return seal(s.q) }
func (s *TrackSet) IsFiltered() bool { return s.filtered }

func (s *TrackSet) ids() *gorm.DB { return column(s.q, data.TrackID.Ref()) }

func (s *TrackSet) Filter(f *TrackFilter) *TrackSet {
	if !f.HasFilters() {
		return s
	}
	out := *s
	out.q = seal(f.Apply(s.q))
	out.filtered = true
	return &out
}

// RestrictToPlaylistTracks keeps tracks with a membership in pts. The
// exclusion pts carries travels along with the result.
func (s *TrackSet) RestrictToPlaylistTracks(pts *PlaylistTrackSet) *TrackSet {
	out := *s
	if pts.filtered {
		out.q = seal(out.q.Where(data.TrackID.Ref()+" IN (?)", pts.trackIDs()))
		out.filtered = true
	}
	if pts.excludedTracks != nil {
		out.excludedTracks = pts.excludedTracks
	}
	return &out
}

// RestrictToLyrics keeps tracks whose lyrics match ls's include terms, and
// drops tracks whose lyrics match its exclude terms.
func (s *TrackSet) RestrictToLyrics(ls *TrackLyricsSet) *TrackSet {
	if !ls.included && ls.excluded == nil {
		return s
	}
	out := *s
	if ls.included {
		out.q = seal(out.q.Where(data.TrackID.Ref()+" IN (?)", ls.trackIDs()))
	}
	if ls.excluded != nil {
		out.q = seal(out.q.Where(data.TrackID.Ref()+" NOT IN (?)", ls.excluded))
	}
	out.filtered = true
	return &out
}

// TrackLyricsSet is a possibly narrowed view of the lyrics table.
type TrackLyricsSet struct {
	root     *gorm.DB
	q        *gorm.DB
	filtered bool

	// included is set when the set only holds lyrics matching an include
	// term. Exclusion alone leaves tracks without lyrics in play, so it is
	// tracked separately as an anti-join.
	included bool
	excluded *gorm.DB
}

func AllLyrics(root *gorm.DB) *TrackLyricsSet {
	return &TrackLyricsSet{root: root, q: seal(root.Table(data.EntityTrackLyrics.From()))}
}

func (s *TrackLyricsSet) Query() *gorm.DB { return seal(s.q) }
func (s *TrackLyricsSet) IsFiltered() bool { return s.filtered }

func (s *TrackLyricsSet) trackIDs() *gorm.DB {
	return column(s.q, data.LyricsTrackID.Ref())
}

func (s *TrackLyricsSet) Filter(f *TrackLyricsFilter) *TrackLyricsSet {
	if !f.HasFilters() {
		return s
	}
	out := *s
	out.q = seal(f.Apply(s.q))
	out.filtered = true
	out.included = f.include != nil
	if f.exclude != nil {
		out.excluded = seal(f.exclude.Apply(
			s.root.Table(data.EntityTrackLyrics.From()).Select(data.LyricsTrackID.Ref()),
		))
	}
	return &out
}

// RestrictToTracks keeps lyrics of tracks in ts.
func (s *TrackLyricsSet) RestrictToTracks(ts *TrackSet) *TrackLyricsSet {
	if !ts.filtered {
		return s
	}
	out := *s
	out.q = seal(s.q.Where(data.LyricsTrackID.Ref()+" IN (?)", ts.ids()))
	out.filtered = true
	return &out
}
