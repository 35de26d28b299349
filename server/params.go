package server

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/cr7pt0gr4ph7/westie-music-database-sub000/filter"
	"github.com/cr7pt0gr4ph7/westie-music-database-sub000/query"
	"github.com/cr7pt0gr4ph7/westie-music-database-sub000/search"
)

var errBadParam = errors.New("bad parameter")

// params reads typed values out of a query string, keeping the first
// error.
type params struct {
	v   url.Values
	err error
}

func (p *params) fail(key string, err error) {
	if p.err == nil {
		p.err = fmt.Errorf("%w '%s': %v", errBadParam, key, err)
	}
}

func (p *params) terms(key string) filter.Terms {
	if s := p.v.Get(key); s != "" {
		return filter.Expr(s)
	}
	return nil
}

func (p *params) bool(key string) bool {
	s := p.v.Get(key)
	if s == "" {
		return false
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		p.fail(key, err)
	}
	return b
}

func (p *params) int(key string) int {
	s := p.v.Get(key)
	if s == "" {
		return 0
	}
	n, err := strconv.Atoi(s)
	if err == nil && n < 0 {
		err = errors.New("must not be negative")
	}
	if err != nil {
		p.fail(key, err)
	}
	return n
}

func (p *params) float(key string) float64 {
	s := p.v.Get(key)
	if s == "" {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		p.fail(key, err)
	}
	return f
}

func (p *params) filters() search.Filters {
	return search.Filters{
		SongName:      p.terms("song_name"),
		Artist:        p.terms("artist_name"),
		ReleaseDate:   p.terms("release_date"),
		TrackCountry:  p.terms("track_country"),
		MinBPM:        p.float("min_bpm"),
		MaxBPM:        p.float("max_bpm"),
		QueerArtist:   p.bool("queer_artist"),
		POCArtist:     p.bool("poc_artist"),
		LyricsInclude: p.terms("lyrics_include"),
		LyricsExclude: p.terms("lyrics_exclude"),

		Country:         p.terms("country"),
		DJInclude:       p.terms("dj_include"),
		DJExclude:       p.terms("dj_exclude"),
		PlaylistInclude: p.terms("playlist_include"),
		PlaylistExclude: p.terms("playlist_exclude"),
		SocialSetsOnly:  p.bool("social_sets_only"),
		WCSDJsOnly:      p.bool("wcs_djs_only"),

		AddedAt: p.terms("added_at"),
	}
}

func (p *params) songQuery() search.SongQuery {
	q := search.SongQuery{
		Filters:             p.filters(),
		Descending:          p.bool("desc"),
		Offset:              p.int("offset"),
		Limit:               p.int("limit"),
		IncludePlaylistInfo: p.bool("include_playlist_info"),
		IncludeLyrics:       p.bool("include_lyrics"),
	}
	if s := p.v.Get("sort_by"); s != "" {
		k, err := search.ParseSortKey(s)
		if err != nil {
			p.fail("sort_by", err)
		}
		q.SortBy = k
	}
	if s := p.v.Get("order"); s != "" {
		order, err := query.ParseOrder(strings.Split(s, ","))
		if err != nil {
			p.fail("order", err)
		}
		q.Order = order
	}
	return q
}

func (p *params) direction() search.Direction {
	s := p.v.Get("direction")
	if s == "" {
		return search.Any
	}
	d, err := search.ParseDirection(s)
	if err != nil {
		p.fail("direction", err)
	}
	return d
}
