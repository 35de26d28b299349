package main

import (
	"fmt"
	"strconv"

	"github.com/cr7pt0gr4ph7/westie-music-database-sub000/filter"
	"github.com/cr7pt0gr4ph7/westie-music-database-sub000/query"
	"github.com/cr7pt0gr4ph7/westie-music-database-sub000/search"
	"github.com/cr7pt0gr4ph7/westie-music-database-sub000/setflag"
	"github.com/spf13/cobra"
)

func stageNames() []string {
	return []string{
		query.StagePlaylist.String(),
		query.StagePlaylistTrack.String(),
		query.StageTrack.String(),
		query.StageLyrics.String(),
	}
}

type songFlags struct {
	filterFlags
	sortBy        *setflag.Choice
	desc          bool
	offset, limit int
	playlistInfo  bool
	lyrics        bool
	order         *setflag.SetFlag
	json          bool
}

func (f *songFlags) register(cmd *cobra.Command) {
	f.filterFlags.register(cmd.Flags())
	f.sortBy = setflag.NewChoice("key", search.SortPlaylistCount.String(), search.SortKeyNames()...)
	f.order = setflag.New("stages", stageNames()...)

	fs := cmd.Flags()
	fs.Var(f.sortBy, "sort", "sort key")
	fs.BoolVar(&f.desc, "desc", true, "sort descending")
	fs.IntVar(&f.offset, "offset", 0, "rows to skip")
	fs.IntVar(&f.limit, "limit", 0, "rows to return (default: from config)")
	fs.BoolVar(&f.playlistInfo, "playlist-info", false, "list the playlists and DJs of each song")
	fs.BoolVar(&f.lyrics, "show-lyrics", false, "include each song's lyrics")
	fs.Var(f.order, "order", "filter stages in the order to apply them, overriding the planner")
	fs.BoolVar(&f.json, "json", false, "output as JSON")
}

func (f *songFlags) query() (search.SongQuery, error) {
	sortBy, err := search.ParseSortKey(f.sortBy.String())
	if err != nil {
		return search.SongQuery{}, err
	}
	order, err := query.ParseOrder(f.order.List())
	if err != nil {
		return search.SongQuery{}, err
	}
	if len(order) == 0 {
		order = nil
	}
	return search.SongQuery{
		Filters:             f.filters(),
		SortBy:              sortBy,
		Descending:          f.desc,
		Offset:              f.offset,
		Limit:               f.limit,
		IncludePlaylistInfo: f.playlistInfo,
		IncludeLyrics:       f.lyrics,
		Order:               order,
	}, nil
}

func songsCmd(a *app) *cobra.Command {
	f := &songFlags{}
	cmd := &cobra.Command{
		Use:   "songs",
		Short: "Find songs",
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := f.query()
			if err != nil {
				return err
			}
			eng, closeDB, err := a.engine(cmd.Context())
			if err != nil {
				return err
			}
			defer closeDB()

			res, err := eng.FindSongs(q)
			if err != nil {
				return err
			}
			rows, err := res.Collect(cmd.Context())
			if err != nil {
				return err
			}
			if f.json {
				return printJSON(cmd.OutOrStdout(), rows)
			}
			if len(rows) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no results")
				return nil
			}
			return printTable(cmd.OutOrStdout(), trackHeader(q), trackRows(q, rows))
		},
	}
	f.register(cmd)
	return cmd
}

func trackHeader(q search.SongQuery) []string {
	header := []string{"track", "artists", "released", "bpm", "playlists", "djs", "countries", "spotify_id"}
	if len(filter.Of(q.LyricsInclude)) > 0 {
		header = append(header, "matched")
	}
	if q.IncludePlaylistInfo {
		header = append(header, "playlist names", "dj names")
	}
	if q.IncludeLyrics {
		header = append(header, "lyrics")
	}
	return header
}

func trackRows(q search.SongQuery, tracks []query.TrackRow) [][]string {
	rows := make([][]string, len(tracks))
	for i, t := range tracks {
		row := []string{
			t.Name, t.ArtistNames, t.ReleaseDate, optFloat(t.BPM),
			strconv.FormatInt(t.PlaylistCount, 10), strconv.FormatInt(t.DJCount, 10),
			join(t.Countries), t.ID,
		}
		if len(filter.Of(q.LyricsInclude)) > 0 {
			row = append(row, join(t.MatchedLyrics))
		}
		if q.IncludePlaylistInfo {
			row = append(row, join(t.PlaylistNames), join(t.OwnerNames))
		}
		if q.IncludeLyrics {
			row = append(row, strconv.Quote(t.Lyrics))
		}
		rows[i] = row
	}
	return rows
}
