// Package pagination implements keyset (cursor) pagination: opaque
// cursors derived from a sort spec, and compilation of a decoded cursor
// into a dialect-portable SQL predicate.
package pagination

import (
	"fmt"
	"regexp"
	"strings"
)

// Direction orders a sort field.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// SortField is one entry of a sort spec: a storage column name or a
// dotted path into the record payload, plus a direction.
type SortField struct {
	Name      string
	Direction Direction
}

// fieldNamePattern vets sort field names before they are rendered into
// SQL text. Only word characters and dots ever reach a statement.
var fieldNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z0-9_]+)*$`)

// ParseSortSpec parses a comma-separated sort spec such as
// "indexed_at:desc,createdAt:asc". The direction defaults to asc.
func ParseSortSpec(s string) ([]SortField, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	var spec []SortField
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, dir := part, Asc
		if i := strings.IndexByte(part, ':'); i >= 0 {
			name = part[:i]
			switch strings.ToLower(strings.TrimSpace(part[i+1:])) {
			case "asc", "":
				dir = Asc
			case "desc":
				dir = Desc
			default:
				return nil, fmt.Errorf("invalid sort direction in %q", part)
			}
		}
		if !fieldNamePattern.MatchString(name) {
			return nil, fmt.Errorf("invalid sort field name %q", name)
		}
		spec = append(spec, SortField{Name: name, Direction: dir})
	}
	return spec, nil
}
