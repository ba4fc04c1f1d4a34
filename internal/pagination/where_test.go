package pagination

import (
	"context"
	"testing"

	"github.com/loomview/loom/internal/store"
	"github.com/loomview/loom/internal/testutil"
)

func mustSort(t *testing.T, s string) []SortField {
	t.Helper()
	spec, err := ParseSortSpec(s)
	if err != nil {
		t.Fatalf("failed to parse sort spec %q: %v", s, err)
	}
	return spec
}

func TestBuildCursorWhereClauseSingleField(t *testing.T) {
	spec := mustSort(t, "indexed_at:desc")
	cur := &DecodedCursor{FieldValues: []string{"2026-01-02T00:00:00Z"}, CID: "c1"}

	tests := []struct {
		name       string
		isBefore   bool
		wantSQL    string
		wantParams []string
	}{
		{
			name:       "forward",
			wantSQL:    "((indexed_at < ?) OR (indexed_at = ? AND cid < ?))",
			wantParams: []string{"2026-01-02T00:00:00Z", "2026-01-02T00:00:00Z", "c1"},
		},
		{
			name:       "backward",
			isBefore:   true,
			wantSQL:    "((indexed_at > ?) OR (indexed_at = ? AND cid > ?))",
			wantParams: []string{"2026-01-02T00:00:00Z", "2026-01-02T00:00:00Z", "c1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, params := BuildCursorWhereClause(store.DialectSQLite, cur, spec, tt.isBefore, 1)
			if sql != tt.wantSQL {
				t.Errorf("sql = %q, want %q", sql, tt.wantSQL)
			}
			if len(params) != len(tt.wantParams) {
				t.Fatalf("got %d params, want %d", len(params), len(tt.wantParams))
			}
			for i, want := range tt.wantParams {
				if params[i] != want {
					t.Errorf("param %d = %q, want %q", i, params[i], want)
				}
			}
		})
	}
}

func TestBuildCursorWhereClauseTwoFields(t *testing.T) {
	spec := mustSort(t, "indexed_at:desc,likes:asc")
	cur := &DecodedCursor{FieldValues: []string{"2026-01-02T00:00:00Z", "5"}, CID: "c1"}

	sql, params := BuildCursorWhereClause(store.DialectSQLite, cur, spec, false, 1)
	want := "((indexed_at < ?)" +
		" OR (indexed_at = ? AND json_extract(record, '$.likes') > ?)" +
		" OR (indexed_at = ? AND json_extract(record, '$.likes') = ? AND cid > ?))"
	if sql != want {
		t.Errorf("sql = %q, want %q", sql, want)
	}
	wantParams := []string{
		"2026-01-02T00:00:00Z",
		"2026-01-02T00:00:00Z", "5",
		"2026-01-02T00:00:00Z", "5", "c1",
	}
	if len(params) != len(wantParams) {
		t.Fatalf("got %d params, want %d", len(params), len(wantParams))
	}
	for i, w := range wantParams {
		if params[i] != w {
			t.Errorf("param %d = %q, want %q", i, params[i], w)
		}
	}
}

func TestBuildCursorWhereClauseNoSortFields(t *testing.T) {
	cur := &DecodedCursor{CID: "c1"}

	sql, params := BuildCursorWhereClause(store.DialectSQLite, cur, nil, false, 1)
	if want := "((cid < ?))"; sql != want {
		t.Errorf("forward sql = %q, want %q", sql, want)
	}
	if len(params) != 1 || params[0] != "c1" {
		t.Errorf("forward params = %v, want [c1]", params)
	}

	sql, _ = BuildCursorWhereClause(store.DialectSQLite, cur, nil, true, 1)
	if want := "((cid > ?))"; sql != want {
		t.Errorf("backward sql = %q, want %q", sql, want)
	}
}

func TestBuildCursorWhereClausePostgresPlaceholders(t *testing.T) {
	spec := mustSort(t, "indexed_at:desc")
	cur := &DecodedCursor{FieldValues: []string{"2026-01-02T00:00:00Z"}, CID: "c1"}

	sql, params := BuildCursorWhereClause(store.DialectPostgres, cur, spec, false, 5)
	want := "((indexed_at < $5) OR (indexed_at = $6 AND cid < $7))"
	if sql != want {
		t.Errorf("sql = %q, want %q", sql, want)
	}
	if len(params) != 3 {
		t.Errorf("got %d params, want 3", len(params))
	}
}

func TestFieldExpr(t *testing.T) {
	tests := []struct {
		name    string
		dialect store.Dialect
		field   string
		want    string
	}{
		{"sqlite column", store.DialectSQLite, "indexed_at", "indexed_at"},
		{"postgres column", store.DialectPostgres, "cid", "cid"},
		{"sqlite json path", store.DialectSQLite, "createdAt", "json_extract(record, '$.createdAt')"},
		{"sqlite dotted path", store.DialectSQLite, "author.handle", "json_extract(record, '$.author.handle')"},
		{"postgres json path", store.DialectPostgres, "createdAt", "(record #>> '{createdAt}')"},
		{"postgres dotted path", store.DialectPostgres, "author.handle", "(record #>> '{author,handle}')"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FieldExpr(tt.dialect, tt.field); got != tt.want {
				t.Errorf("FieldExpr(%v, %q) = %q, want %q", tt.dialect, tt.field, got, tt.want)
			}
		})
	}
}

func TestOrderBy(t *testing.T) {
	spec := mustSort(t, "indexed_at:desc,likes:asc")

	forward := OrderBy(store.DialectSQLite, spec, false)
	if want := "indexed_at DESC, json_extract(record, '$.likes') ASC, cid ASC"; forward != want {
		t.Errorf("forward = %q, want %q", forward, want)
	}

	backward := OrderBy(store.DialectSQLite, spec, true)
	if want := "indexed_at ASC, json_extract(record, '$.likes') DESC, cid DESC"; backward != want {
		t.Errorf("backward = %q, want %q", backward, want)
	}

	unsorted := OrderBy(store.DialectSQLite, nil, false)
	if want := "cid DESC"; unsorted != want {
		t.Errorf("unsorted = %q, want %q", unsorted, want)
	}
}

// TestKeysetPaginationAgainstSQLite walks a collection page by page in
// both directions and checks that no record is skipped or repeated,
// including across a tie on the sort value.
func TestKeysetPaginationAgainstSQLite(t *testing.T) {
	st := testutil.OpenTestStore(t)
	ctx := context.Background()
	const coll = "app.bsky.feed.post"

	seed := []struct {
		rkey, cid, indexedAt string
	}{
		{"r1", "c1", "2026-01-01T00:00:00Z"},
		{"r2", "c2", "2026-01-02T00:00:00Z"},
		{"r3", "c3", "2026-01-03T00:00:00Z"},
		// Two records share an indexed_at; only the cid separates them.
		{"r4", "c4", "2026-01-04T00:00:00Z"},
		{"r5", "c5", "2026-01-04T00:00:00Z"},
	}
	for _, s := range seed {
		testutil.MustPut(t, st, testutil.MakeRecord(t, "did:plc:abc", coll, s.rkey, s.cid,
			s.indexedAt, map[string]interface{}{"text": s.rkey}))
	}

	spec := mustSort(t, "indexed_at:desc")
	d := st.Dialect()

	page := func(after string, isBefore bool) []*store.Record {
		t.Helper()
		where, params := "", []string(nil)
		if after != "" {
			cur, err := DecodeCursor(after, spec)
			if err != nil {
				t.Fatalf("failed to decode cursor: %v", err)
			}
			where, params = BuildCursorWhereClause(d, cur, spec, isBefore, 2)
		}
		recs, err := st.ListPage(ctx, coll, where, params, OrderBy(d, spec, isBefore), 2)
		if err != nil {
			t.Fatalf("failed to list page: %v", err)
		}
		return recs
	}

	cids := func(recs []*store.Record) []string {
		out := make([]string, len(recs))
		for i, r := range recs {
			out[i] = r.CID
		}
		return out
	}

	// Forward: newest first, cid descending within the tie.
	p1 := page("", false)
	if got := cids(p1); len(got) != 2 || got[0] != "c5" || got[1] != "c4" {
		t.Fatalf("page 1 = %v, want [c5 c4]", got)
	}
	p2 := page(GenerateCursorFromRecord(p1[len(p1)-1], spec), false)
	if got := cids(p2); len(got) != 2 || got[0] != "c3" || got[1] != "c2" {
		t.Fatalf("page 2 = %v, want [c3 c2]", got)
	}
	p3 := page(GenerateCursorFromRecord(p2[len(p2)-1], spec), false)
	if got := cids(p3); len(got) != 1 || got[0] != "c1" {
		t.Fatalf("page 3 = %v, want [c1]", got)
	}

	// Backward from the start of page 2: the rows of page 1 come back,
	// scanned in flipped order.
	back := page(GenerateCursorFromRecord(p2[0], spec), true)
	if got := cids(back); len(got) != 2 || got[0] != "c4" || got[1] != "c5" {
		t.Fatalf("backward page = %v, want [c4 c5]", got)
	}
}
