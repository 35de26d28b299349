package query

import (
	"fmt"

	"github.com/cr7pt0gr4ph7/westie-music-database-sub000/data"
	"github.com/goccy/go-json"
	"gorm.io/gorm"
)

// memberships joins the membership set to the named other sets, as a base
// for collected lists. Each of joinPlaylists and joinTracks adds the
// respective set under its usual alias.
func memberships(root *gorm.DB, s sets, joinPlaylists, joinTracks bool) *gorm.DB {
	q := root.Table("(?) AS playlist_track", s.pts.q)
	if joinPlaylists {
		q = q.Joins("JOIN (?) AS playlist ON playlist.id = playlist_track.playlist_id", s.ps.q)
	}
	if joinTracks {
		q = q.Joins("JOIN (?) AS track ON track.id = playlist_track.track_id", s.ts.q)
	}
	return q
}

// joinType is an inner join when the joined side was narrowed, so rows with
// nothing matching drop out, and a left join otherwise.
func joinType(narrowed bool) string {
	if narrowed {
		return "JOIN"
	}
	return "LEFT JOIN"
}

const matchedLyricsSQL = "(SELECT %s FROM json_each(?) AS m WHERE instr(ulower(lyrics.lyrics), m.value) > 0)"

func aggregateTracks(root *gorm.DB, s sets, opts Options, lyricsTerms []string) *gorm.DB {
	limit := opts.listLimit()
	q := s.ts.Query()

	var proj projection
	proj.addAll(data.Selects(data.Fields(data.EntityTrack)))

	if opts.IncludePlaylistInfo {
		names := memberships(root, s, true, false).
			Select("playlist_track.track_id AS k, playlist.name AS v, playlist.id AS id")
		owners := memberships(root, s, true, false).
			Select("playlist_track.track_id AS k, playlist.owner_name AS v, playlist.owner_id AS id")
		q = q.
			Joins("LEFT JOIN (?) AS playlist_names ON playlist_names.k = track.id", collect(root, names, limit)).
			Joins("LEFT JOIN (?) AS owner_names ON owner_names.k = track.id", collect(root, owners, limit))
		proj.add(fmt.Sprintf(`playlist_names.v AS "%s"`, ColPlaylistNames))
		proj.add(fmt.Sprintf(`owner_names.v AS "%s"`, ColOwnerNames))
	}

	if opts.IncludeLyrics || len(lyricsTerms) > 0 {
		q = q.Joins("LEFT JOIN " + data.EntityTrackLyrics.From() + " ON lyrics.track_id = track.id")
	}
	if opts.IncludeLyrics {
		proj.add(fmt.Sprintf(`COALESCE(lyrics.lyrics, '') AS "%s"`, data.LyricsText.Name))
	}
	if len(lyricsTerms) > 0 {
		terms, _ := json.Marshal(lyricsTerms)
		proj.add(fmt.Sprintf(matchedLyricsSQL+` AS "%s"`, "json_group_array(m.value)", ColLyricsMatched), string(terms))
		proj.add(fmt.Sprintf(matchedLyricsSQL+` AS "%s"`, "count(*)", ColLyricsMatchedCount), string(terms))
	}
	return proj.apply(q)
}

func aggregatePlaylists(root *gorm.DB, s sets, limit int) *gorm.DB {
	songs := memberships(root, s, false, true).
		Select("playlist_track.playlist_id AS k, track.name || ' - ' || track.artist_names AS v, track.id AS id")

	var proj projection
	proj.addAll(data.Selects(data.Fields(data.EntityPlaylist, data.EntityOwner)))
	proj.add(fmt.Sprintf(`songs.v AS "%s"`, ColTrackNames))
	proj.add(fmt.Sprintf(`COALESCE(songs.n, 0) AS "%s"`, ColPlaylistMatchCount))

	q := s.ps.Query().
		Joins(joinType(s.pts.filtered || s.ts.filtered)+" (?) AS songs ON songs.k = playlist.id",
			collect(root, songs, limit))
	return proj.apply(q)
}

const ownerKey = "json_array(playlist.owner_id, playlist.owner_name)"

func aggregateOwners(root *gorm.DB, s sets, limit int) *gorm.DB {
	names := root.
		Table("(?) AS playlist", s.ps.q).
		Select(ownerKey + " AS k, playlist.name AS v, playlist.id AS id")
	counts := memberships(root, s, true, true).
		Select(ownerKey + " AS k, count(DISTINCT track.id) AS songs, count(DISTINCT track.artist_names) AS artists").
		Group(ownerKey)

	var proj projection
	proj.addAll([]string{
		data.OwnerID.Select(),
		data.OwnerName.Select(),
		fmt.Sprintf(`max(%s) AS "%s"`, data.OwnerIsWCSDJ.Ref(), data.OwnerIsWCSDJ.Name),
		fmt.Sprintf(`count(DISTINCT playlist.id) AS "%s"`, ColOwnerPlaylistCount),
		fmt.Sprintf(`COALESCE(max(counts.songs), 0) AS "%s"`, ColOwnerSongCount),
		fmt.Sprintf(`COALESCE(max(counts.artists), 0) AS "%s"`, ColOwnerArtistCount),
		fmt.Sprintf(`max(names.v) AS "%s"`, ColPlaylistNames),
	})

	q := s.ps.Query().
		Joins(joinType(s.pts.filtered || s.ts.filtered)+" (?) AS counts ON counts.k = "+ownerKey, counts).
		Joins("LEFT JOIN (?) AS names ON names.k = "+ownerKey, collect(root, names, limit)).
		Group(data.OwnerID.Ref() + ", " + data.OwnerName.Ref())
	return proj.apply(q)
}

func aggregateArtists(root *gorm.DB, s sets, limit int) *gorm.DB {
	songs := root.
		Table("(?) AS track", s.ts.q).
		Joins("JOIN json_each(track.artists) AS artist").
		Select("artist.value AS k, track.name AS v, track.id AS id")
	playlists := memberships(root, s, true, true).
		Joins("JOIN json_each(track.artists) AS artist").
		Select("artist.value AS k, playlist.name AS v, playlist.id AS id")

	var proj projection
	proj.addAll([]string{
		fmt.Sprintf(`artist.value AS "%s"`, ColArtistName),
		fmt.Sprintf(`songs.n AS "%s"`, ColArtistSongCount),
		fmt.Sprintf(`COALESCE(playlists.n, 0) AS "%s"`, ColArtistPlaylists),
		fmt.Sprintf(`songs.v AS "%s"`, ColTrackNames),
		fmt.Sprintf(`playlists.v AS "%s"`, ColPlaylistNames),
	})

	q := root.
		Table("(SELECT DISTINCT artist.value AS value FROM (?) AS track JOIN json_each(track.artists) AS artist) AS artist", s.ts.q).
		Joins("JOIN (?) AS songs ON songs.k = artist.value", collect(root, songs, limit)).
		Joins(joinType(s.pts.filtered || s.ps.filtered)+" (?) AS playlists ON playlists.k = artist.value",
			collect(root, playlists, limit))
	return proj.apply(q)
}
