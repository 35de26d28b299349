package data

import (
	"database/sql/driver"
	"fmt"
	"sort"

	"github.com/goccy/go-json"
)

// StringList is a list column. It is stored as a JSON array in a TEXT
// column; a nil list is stored as NULL.
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return nil, nil
	}
	bs, err := json.Marshal([]string(l))
	if err != nil {
		return nil, fmt.Errorf("error encoding list: %w", err)
	}
	return string(bs), nil
}

func (l *StringList) Scan(src any) error {
	var bs []byte
	switch v := src.(type) {
	case nil:
		*l = nil
		return nil
	case string:
		bs = []byte(v)
	case []byte:
		bs = v
	default:
		return fmt.Errorf("cannot scan %T into a list", src)
	}
	var out []string
	if err := json.Unmarshal(bs, &out); err != nil {
		return fmt.Errorf("error decoding list %q: %w", string(bs), err)
	}
	*l = out
	return nil
}

func (StringList) GormDataType() string { return "text" }

// Normalized returns the list sorted, with empty and repeated entries
// dropped, and truncated to at most limit entries. A limit <= 0 means no
// limit.
func (l StringList) Normalized(limit int) StringList {
	if l == nil {
		return nil
	}
	seen := make(map[string]struct{}, len(l))
	out := make(StringList, 0, len(l))
	for _, s := range l {
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	sort.Strings(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
