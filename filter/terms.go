package filter

import "strings"

// Terms is a user-supplied filter expression, parsed once at the API edge.
// Filters only ever see the normalized []string it yields.
type Terms interface {
	Terms() []string
}

// Expr is a comma-separated list of terms, as typed into a search box.
type Expr string

func (e Expr) Terms() []string {
	return List(strings.Split(string(e), ",")).Terms()
}

// List is an already-split list of terms.
type List []string

func (l List) Terms() []string {
	var out []string
	for _, s := range l {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Of normalizes t, treating a nil Terms as empty.
func Of(t Terms) []string {
	if t == nil {
		return nil
	}
	return t.Terms()
}

func lower(terms []string) []string {
	out := make([]string, len(terms))
	for i, s := range terms {
		out[i] = strings.ToLower(s)
	}
	return out
}
