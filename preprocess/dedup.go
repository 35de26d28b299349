package preprocess

import (
	"context"
	"fmt"

	"github.com/cr7pt0gr4ph7/westie-music-database-sub000/data"
	"github.com/cr7pt0gr4ph7/westie-music-database-sub000/db"
)

// findDuplicates groups the tracks in source by exact (name, artist_names)
// and emits one TrackDuplicate per non-canonical member of each group, in
// id order. The canonical track of a group is the one inserted first.
// Groups of one are never looked at, so a track with no duplicate is never
// remapped.
func findDuplicates(ctx context.Context, d *db.DB, temp *TempFiles, source string, batchSize int, emit func(data.TrackDuplicate) error) error {
	if err := d.ExecStep(ctx, "clearing dedup keys", "delete from "+data.TableDedupKeys); err != nil {
		return err
	}
	if err := d.ExecStep(ctx, "grouping duplicate tracks", `
		insert into `+data.TableDedupKeys+` (gid, name, artist_names)
		select row_number() over (order by name, artist_names), name, artist_names
		from `+source+`
		group by name, artist_names
		having count(*) > 1`); err != nil {
		return err
	}

	var gids []int64
	if err := d.WithContext(ctx).
		Table(data.TableDedupKeys).
		Order("gid").
		Pluck("gid", &gids).
		Error; err != nil {
		return fmt.Errorf("error listing duplicate groups: %w", err)
	}

	b := &Batcher[int64, data.TrackDuplicate]{
		Name: "dedup",
		Size: batchSize,
		Temp: temp,
		Compute: func(ctx context.Context, batch []int64) ([]data.TrackDuplicate, error) {
			return groupDuplicates(ctx, d, source, batch[0], batch[len(batch)-1])
		},
		Less: func(a, b data.TrackDuplicate) bool { return a.ID < b.ID },
	}
	return b.Run(ctx, gids, emit)
}

type groupMember struct {
	GID int64  `gorm:"column:gid"`
	ID  string `gorm:"column:id"`
}

// groupDuplicates resolves the groups with ids in [lo, hi].
func groupDuplicates(ctx context.Context, d *db.DB, source string, lo, hi int64) ([]data.TrackDuplicate, error) {
	var members []groupMember
	if err := d.WithContext(ctx).Raw(`
		select k.gid as gid, o.id as id
		from `+source+` as o
		join `+data.TableDedupKeys+` as k on k.name = o.name and k.artist_names = o.artist_names
		where k.gid between ? and ?
		order by k.gid, o.rowid`, lo, hi).
		Scan(&members).
		Error; err != nil {
		return nil, fmt.Errorf("error reading groups %d-%d: %w", lo, hi, err)
	}

	var (
		out       []data.TrackDuplicate
		gid       int64 = -1
		canonical string
	)
	for _, m := range members {
		if m.GID != gid {
			gid, canonical = m.GID, m.ID
			continue
		}
		out = append(out, data.TrackDuplicate{ID: m.ID, CanonicalID: canonical})
	}
	return out, nil
}

// applyDuplicates fills the deduplicated tables from the pre-dedup ones.
// Memberships are remapped to canonical ids, and rows that became exact
// duplicates keep the earliest added_at.
func applyDuplicates(ctx context.Context, d *db.DB) error {
	tracks := data.TableTracks
	playlists := data.TablePlaylists
	memberships := data.TablePlaylistTracks
	orig := data.OriginalSuffix

	if err := d.ExecStep(ctx, "copying playlists", `
		insert into `+playlists+`
		select * from `+playlists+orig+` order by id`); err != nil {
		return err
	}
	if err := d.ExecStep(ctx, "copying canonical tracks", `
		insert into `+tracks+`
		select * from `+tracks+orig+`
		where id not in (select id from `+data.TableDuplicates+`)
		order by rowid`); err != nil {
		return err
	}
	return d.ExecStep(ctx, "remapping memberships", `
		insert into `+memberships+` (playlist_id, track_id, position_number, added_at)
		select o.playlist_id, coalesce(dup.canonical_id, o.track_id), o.position_number, min(o.added_at)
		from `+memberships+orig+` as o
		left join `+data.TableDuplicates+` as dup on dup.id = o.track_id
		group by 1, 2, 3
		order by 1, 3`)
}
