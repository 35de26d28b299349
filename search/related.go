package search

import (
	"fmt"

	"github.com/cr7pt0gr4ph7/westie-music-database-sub000/data"
	"github.com/cr7pt0gr4ph7/westie-music-database-sub000/filter"
	"github.com/cr7pt0gr4ph7/westie-music-database-sub000/query"
	"gorm.io/gorm"
)

type Direction int

const (
	// Next finds songs played right after the seed.
	Next Direction = iota
	// Prev finds songs played right before the seed.
	Prev
	// Any finds both, summing the counts of songs seen on both sides.
	Any
)

var directionNames = [...]string{Next: "next", Prev: "prev", Any: "any"}

func (d Direction) String() string {
	if int(d) < 0 || int(d) >= len(directionNames) {
		return fmt.Sprintf("direction(%d)", int(d))
	}
	return directionNames[d]
}

func ParseDirection(name string) (Direction, error) {
	for i, n := range directionNames {
		if n == name {
			return Direction(i), nil
		}
	}
	return 0, fmt.Errorf("unknown direction '%s'", name)
}

// neighbors selects (id, n) pairs: the tracks on one side of the seeds and
// how often each was seen there.
func neighbors(root, seeds *gorm.DB, seedCol, otherCol string) *gorm.DB {
	return root.
		Table(data.EntityTrackAdjacent.From()).
		Select("adjacent."+otherCol+" AS id, adjacent.times_played_together AS n").
		Where("adjacent."+seedCol+" IN (?)", seeds)
}

// FindRelatedSongs resolves the seed tracks by name and artist, then
// returns them along with their neighbors in social sets, most frequent
// first.
func (e *Engine) FindRelatedSongs(dir Direction, songName, artistName filter.Terms, limit int) (seeds, related *Result[query.TrackRow], err error) {
	if _, err := e.state(); err != nil {
		return nil, nil, err
	}
	e.mu.RLock()
	hasAdjacency := e.hasAdjacency
	e.mu.RUnlock()
	if !hasAdjacency {
		return nil, nil, ErrNoAdjacency
	}

	root := e.root()
	seedSet := query.AllTracks(root).Filter(query.NewTrackFilter(query.TrackParams{
		Name:   songName,
		Artist: artistName,
	}))
	seedIDs := seedSet.Query().Select(data.TrackID.Ref())

	var pairs *gorm.DB
	switch dir {
	case Next:
		pairs = neighbors(root, seedIDs, "first_id", "second_id")
	case Prev:
		pairs = neighbors(root, seedIDs, "second_id", "first_id")
	case Any:
		pairs = root.Table("(? UNION ALL ?) AS pairs",
			neighbors(root, seedIDs, "first_id", "second_id"),
			neighbors(root, seedIDs, "second_id", "first_id"))
	default:
		return nil, nil, fmt.Errorf("unknown direction %s", dir)
	}
	if dir != Any {
		pairs = root.Table("(?) AS pairs", pairs)
	}
	summed := pairs.
		Select("pairs.id AS id, sum(pairs.n) AS n").
		Group("pairs.id")

	selects := append(data.Selects(data.Fields(data.EntityTrack)),
		fmt.Sprintf(`adj.n AS "%s"`, data.AdjacentTimesSeen.Name))
	rel := root.
		Table("(?) AS adj", summed).
		Joins("JOIN "+data.EntityTrack.From()+" ON track.id = adj.id").
		Select(selects).
		Order("adj.n DESC").
		Order("track.id").
		Limit(e.limit(limit))

	seedQuery := seedSet.Query().
		Select(data.Selects(data.Fields(data.EntityTrack))).
		Order("track.playlist_count DESC").
		Order("track.id")

	return newResult[query.TrackRow](seedQuery, nil, nil), newResult[query.TrackRow](rel, nil, nil), nil
}
