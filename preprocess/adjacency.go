package preprocess

import (
	"context"
	"fmt"

	"github.com/cr7pt0gr4ph7/westie-music-database-sub000/data"
	"github.com/cr7pt0gr4ph7/westie-music-database-sub000/db"
)

func adjacentLess(a, b data.TrackAdjacent) bool {
	if a.FirstID != b.FirstID {
		return a.FirstID < b.FirstID
	}
	return a.SecondID < b.SecondID
}

func adjacentCombine(a, b data.TrackAdjacent) data.TrackAdjacent {
	a.TimesPlayedTogether += b.TimesPlayedTogether
	return a
}

// findAdjacent counts, for each ordered pair of tracks, the social sets in
// which the first was immediately followed by the second. Batches are
// disjoint id ranges of social sets, so summing their counts is exact.
func findAdjacent(ctx context.Context, d *db.DB, temp *TempFiles, batchSize int, emit func(data.TrackAdjacent) error) error {
	var ids []string
	if err := d.WithContext(ctx).
		Table(data.TablePlaylists).
		Where("is_social_set").
		Order("id").
		Pluck("id", &ids).
		Error; err != nil {
		return fmt.Errorf("error listing social sets: %w", err)
	}

	b := &Batcher[string, data.TrackAdjacent]{
		Name: "adjacent",
		Size: batchSize,
		Temp: temp,
		Compute: func(ctx context.Context, batch []string) ([]data.TrackAdjacent, error) {
			var rows []data.TrackAdjacent
			if err := d.WithContext(ctx).Raw(`
				select w.first_id as first_id, w.second_id as second_id,
				       count(distinct w.playlist_id) as times_played_together
				from (
					select playlist_id, track_id as first_id,
					       lead(track_id) over (partition by playlist_id order by position_number) as second_id
					from `+data.TablePlaylistTracks+`
					where playlist_id in (
						select id from `+data.TablePlaylists+`
						where is_social_set and id between ? and ?)
				) as w
				where w.second_id is not null and w.first_id <> w.second_id
				group by w.first_id, w.second_id`, batch[0], batch[len(batch)-1]).
				Scan(&rows).
				Error; err != nil {
				return nil, fmt.Errorf("error pairing tracks: %w", err)
			}
			return rows, nil
		},
		Less:    adjacentLess,
		Combine: adjacentCombine,
	}
	return b.Run(ctx, ids, emit)
}
