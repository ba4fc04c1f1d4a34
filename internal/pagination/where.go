package pagination

import (
	"fmt"
	"strings"

	"github.com/loomview/loom/internal/store"
)

// cidColumn is the tiebreak column appended to every sort order.
const cidColumn = "cid"

// BuildCursorWhereClause compiles a decoded cursor into a keyset
// predicate: n+1 OR-branches with progressively longer equality
// prefixes, ending in a tiebreak on the content id. startIndex is the
// 1-based placeholder index of the first emitted parameter; the caller
// owns the running count across the enclosing statement. The returned
// params match the emitted placeholders exactly, left to right.
func BuildCursorWhereClause(d store.Dialect, cur *DecodedCursor, spec []SortField, isBefore bool, startIndex int) (string, []string) {
	var (
		branches []string
		params   []string
		next     = startIndex
	)

	placeholder := func(v string) string {
		ph := store.Placeholder(d, next)
		next++
		params = append(params, v)
		return ph
	}

	for i, f := range spec {
		var conds []string
		for j := 0; j < i; j++ {
			conds = append(conds, fmt.Sprintf("%s = %s",
				FieldExpr(d, spec[j].Name), placeholder(cur.FieldValues[j])))
		}
		conds = append(conds, fmt.Sprintf("%s %s %s",
			FieldExpr(d, f.Name), compareOp(f.Direction, isBefore), placeholder(cur.FieldValues[i])))
		branches = append(branches, "("+strings.Join(conds, " AND ")+")")
	}

	// Tiebreak branch: equal on every sort field, strict on the cid.
	var conds []string
	for j, f := range spec {
		conds = append(conds, fmt.Sprintf("%s = %s",
			FieldExpr(d, f.Name), placeholder(cur.FieldValues[j])))
	}
	conds = append(conds, fmt.Sprintf("%s %s %s",
		cidColumn, tiebreakOp(spec, isBefore), placeholder(cur.CID)))
	branches = append(branches, "("+strings.Join(conds, " AND ")+")")

	return "(" + strings.Join(branches, " OR ") + ")", params
}

// compareOp picks the strict comparison for a sort field. Forward
// pagination over a descending field moves toward smaller values;
// backward pagination mirrors it, and ascending fields flip both.
func compareOp(dir Direction, isBefore bool) string {
	if dir == Desc {
		if isBefore {
			return ">"
		}
		return "<"
	}
	if isBefore {
		return "<"
	}
	return ">"
}

// tiebreakOp derives the cid comparison from the last sort field, or,
// with no sort fields, from the pagination direction alone (the
// unsorted order is newest first).
func tiebreakOp(spec []SortField, isBefore bool) string {
	if len(spec) > 0 {
		return compareOp(spec[len(spec)-1].Direction, isBefore)
	}
	return compareOp(Desc, isBefore)
}

// FieldExpr renders a sort field for the dialect: storage columns as
// bare column references, anything else as a JSON path extraction
// against the record column.
func FieldExpr(d store.Dialect, name string) string {
	if store.IsColumn(name) {
		return name
	}
	if d == store.DialectPostgres {
		return fmt.Sprintf("(record #>> '{%s}')", strings.Join(strings.Split(name, "."), ","))
	}
	return fmt.Sprintf("json_extract(record, '$.%s')", name)
}

// OrderBy renders the ORDER BY body for a sort spec with the cid
// tiebreak appended. Backward pagination flips every direction; the
// caller restores presentation order after scanning.
func OrderBy(d store.Dialect, spec []SortField, isBefore bool) string {
	render := func(dir Direction) string {
		if (dir == Desc) != isBefore {
			return "DESC"
		}
		return "ASC"
	}
	var parts []string
	for _, f := range spec {
		parts = append(parts, FieldExpr(d, f.Name)+" "+render(f.Direction))
	}
	last := Desc
	if len(spec) > 0 {
		last = spec[len(spec)-1].Direction
	}
	parts = append(parts, cidColumn+" "+render(last))
	return strings.Join(parts, ", ")
}
