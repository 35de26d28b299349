package main

import (
	"github.com/cr7pt0gr4ph7/westie-music-database-sub000/filter"
	"github.com/cr7pt0gr4ph7/westie-music-database-sub000/search"
	"github.com/spf13/pflag"
)

// filterFlags are the filters every query command takes. Text filters are
// comma-separated lists of terms.
type filterFlags struct {
	songName, artist, releaseDate, trackCountry string
	minBPM, maxBPM                              float64
	queer, poc                                  bool
	lyricsInclude, lyricsExclude                string

	country, djInclude, djExclude string
	playlistInclude, playlistExc  string
	socialOnly, wcsDJsOnly        bool

	addedAt string
}

func (f *filterFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.songName, "song", "", "song name contains any of")
	fs.StringVar(&f.artist, "artist", "", "an artist name contains any of")
	fs.StringVar(&f.releaseDate, "released", "", "release date contains any of, like 1987 or 2019-11")
	fs.StringVar(&f.trackCountry, "track-country", "", "song was played in any of these countries")
	fs.Float64Var(&f.minBPM, "min-bpm", 0, "minimum tempo")
	fs.Float64Var(&f.maxBPM, "max-bpm", 0, "maximum tempo")
	fs.BoolVar(&f.queer, "queer", false, "only songs with a queer artist")
	fs.BoolVar(&f.poc, "poc", false, "only songs with a POC artist")
	fs.StringVar(&f.lyricsInclude, "lyrics", "", "lyrics contain any of")
	fs.StringVar(&f.lyricsExclude, "lyrics-exclude", "", "lyrics contain none of")

	fs.StringVar(&f.country, "country", "", "playlist country is any of")
	fs.StringVar(&f.djInclude, "dj", "", "playlist owner name contains any of")
	fs.StringVar(&f.djExclude, "dj-exclude", "", "playlist owner name contains none of")
	fs.StringVar(&f.playlistInclude, "playlist", "", "playlist name contains any of")
	fs.StringVar(&f.playlistExc, "playlist-exclude", "", "drop songs in any playlist whose name contains any of")
	fs.BoolVar(&f.socialOnly, "social", false, "only social dance sets")
	fs.BoolVar(&f.wcsDJsOnly, "wcs-djs", false, "only playlists by known WCS DJs")

	fs.StringVar(&f.addedAt, "added", "", "date added to the playlist contains any of")
}

func terms(s string) filter.Terms {
	if s == "" {
		return nil
	}
	return filter.Expr(s)
}

func (f *filterFlags) filters() search.Filters {
	return search.Filters{
		SongName:      terms(f.songName),
		Artist:        terms(f.artist),
		ReleaseDate:   terms(f.releaseDate),
		TrackCountry:  terms(f.trackCountry),
		MinBPM:        f.minBPM,
		MaxBPM:        f.maxBPM,
		QueerArtist:   f.queer,
		POCArtist:     f.poc,
		LyricsInclude: terms(f.lyricsInclude),
		LyricsExclude: terms(f.lyricsExclude),

		Country:         terms(f.country),
		DJInclude:       terms(f.djInclude),
		DJExclude:       terms(f.djExclude),
		PlaylistInclude: terms(f.playlistInclude),
		PlaylistExclude: terms(f.playlistExc),
		SocialSetsOnly:  f.socialOnly,
		WCSDJsOnly:      f.wcsDJsOnly,

		AddedAt: terms(f.addedAt),
	}
}
