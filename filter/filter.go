// Package filter turns lists of user-supplied terms into SQL predicates.
// An empty term list never constrains anything, it yields a nil
// *Predicate.
package filter

import (
	"fmt"
	"strings"

	"github.com/cr7pt0gr4ph7/westie-music-database-sub000/db"
	"gorm.io/gorm"
)

// None is the list-column term that matches rows whose list is null or
// empty.
const None = "none"

// A Predicate is a boolean SQL expression with its bind variables. A nil
// *Predicate means "no constraint".
type Predicate struct {
	SQL  string
	Vars []any
}

func (p *Predicate) String() string {
	if p == nil {
		return "true"
	}
	return p.SQL
}

// Apply narrows q by p. A nil predicate returns q unchanged.
func (p *Predicate) Apply(q *gorm.DB) *gorm.DB {
	if p == nil {
		return q
	}
	return q.Where("("+p.SQL+")", p.Vars...)
}

type Mode int

const (
	// Contains matches when the value contains a term as a substring.
	Contains Mode = iota
	// Exact matches when the value equals a term.
	Exact
)

type Options struct {
	Mode          Mode
	CaseSensitive bool
	// ListColumn marks a column holding a JSON array; a row matches when
	// any element does.
	ListColumn bool
}

// Text builds a predicate matching rows where column satisfies any of the
// terms.
func Text(terms []string, column string, opts Options) *Predicate {
	if len(terms) == 0 {
		return nil
	}
	if !opts.CaseSensitive {
		terms = lower(terms)
	}
	if !opts.ListColumn {
		return anyOf(terms, func(term string) *Predicate {
			return match(column, term, opts)
		})
	}

	var none *Predicate
	var elems []string
	for _, term := range terms {
		if strings.EqualFold(term, None) {
			none = &Predicate{SQL: fmt.Sprintf("(%s IS NULL OR json_array_length(%s) = 0)", column, column)}
			continue
		}
		elems = append(elems, term)
	}
	var exists *Predicate
	if inner := anyOf(elems, func(term string) *Predicate {
		return match("e.value", term, opts)
	}); inner != nil {
		exists = &Predicate{
			SQL:  fmt.Sprintf("EXISTS (SELECT 1 FROM json_each(%s) AS e WHERE %s)", column, inner.SQL),
			Vars: inner.Vars,
		}
	}
	return Or(exists, none)
}

// Date matches date strings containing any of the terms. Dates are stored
// as ISO strings, so "198" matches every date in the eighties.
func Date(terms []string, column string) *Predicate {
	return Text(terms, column, Options{Mode: Contains, CaseSensitive: true})
}

func match(column, term string, opts Options) *Predicate {
	col := column
	if !opts.CaseSensitive {
		col = db.LowerFunc + "(" + column + ")"
	}
	if opts.Mode == Exact {
		return &Predicate{SQL: col + " = ?", Vars: []any{term}}
	}
	return &Predicate{SQL: "instr(" + col + ", ?) > 0", Vars: []any{term}}
}

func anyOf(terms []string, f func(string) *Predicate) *Predicate {
	preds := make([]*Predicate, len(terms))
	for i, term := range terms {
		preds[i] = f(term)
	}
	return Or(preds...)
}

// Or combines predicates with OR, skipping nil ones. It returns nil if
// every predicate is nil.
func Or(preds ...*Predicate) *Predicate {
	return join(" OR ", preds)
}

// And combines predicates with AND, skipping nil ones.
func And(preds ...*Predicate) *Predicate {
	return join(" AND ", preds)
}

func join(op string, preds []*Predicate) *Predicate {
	var parts []string
	var vars []any
	var only *Predicate
	for _, p := range preds {
		if p == nil {
			continue
		}
		only = p
		parts = append(parts, "("+p.SQL+")")
		vars = append(vars, p.Vars...)
	}
	switch len(parts) {
	case 0:
		return nil
	case 1:
		return only
	}
	return &Predicate{SQL: strings.Join(parts, op), Vars: vars}
}

// Not negates p. Rows where p is NULL count as not matching p.
func Not(p *Predicate) *Predicate {
	if p == nil {
		return nil
	}
	return &Predicate{SQL: "NOT COALESCE((" + p.SQL + "), 0)", Vars: p.Vars}
}

// Bool matches rows where column is true. It yields nil unless want is
// set, since these are opt-in toggles.
func Bool(column string, want bool) *Predicate {
	if !want {
		return nil
	}
	return &Predicate{SQL: column + " = 1"}
}

// Range bounds a numeric column. A bound <= 0 is open. Rows where column
// is NULL never match a bounded range.
func Range(column string, min, max float64) *Predicate {
	var lo, hi *Predicate
	if min > 0 {
		lo = &Predicate{SQL: column + " >= ?", Vars: []any{min}}
	}
	if max > 0 {
		hi = &Predicate{SQL: column + " <= ?", Vars: []any{max}}
	}
	return And(lo, hi)
}
