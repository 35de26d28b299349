package query

import (
	"strings"

	"gorm.io/gorm"
)

// DefaultListLimit caps collected name lists.
const DefaultListLimit = 50

// collect groups the (k, v, id) rows of src by k. Each group yields, as v,
// the JSON array of its first limit distinct non-empty values in sort order,
// and as n, the number of distinct ids. The cap applies after sorting and
// dedup, so the values kept are always the first ones.
func collect(root *gorm.DB, src *gorm.DB, limit int) *gorm.DB {
	distinct := root.
		Table("(?) AS s", src).
		Select("DISTINCT s.k AS k, s.v AS v, s.id AS id")
	ranked := root.
		Table("(?) AS d", distinct).
		Select("d.k AS k, d.v AS v, d.id AS id, " +
			"DENSE_RANK() OVER (PARTITION BY d.k, coalesce(d.v, '') = '' ORDER BY d.v) AS rk")
	return root.
		Table("(?) AS r", ranked).
		Select("r.k AS k, "+
			"json_group_array(DISTINCT r.v) FILTER (WHERE r.rk <= ? AND coalesce(r.v, '') <> '') AS v, "+
			"count(DISTINCT r.id) AS n", limit).
		Group("r.k")
}

// projection accumulates a select list and its bind variables, since gorm
// keeps only the last Select.
type projection struct {
	cols []string
	vars []any
}

func (p *projection) add(col string, vars ...any) {
	p.cols = append(p.cols, col)
	p.vars = append(p.vars, vars...)
}

func (p *projection) addAll(cols []string) {
	p.cols = append(p.cols, cols...)
}

func (p *projection) apply(q *gorm.DB) *gorm.DB {
	return q.Select(strings.Join(p.cols, ", "), p.vars...)
}
