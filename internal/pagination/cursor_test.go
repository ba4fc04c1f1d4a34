package pagination

import (
	"encoding/base64"
	"errors"
	"testing"

	"github.com/loomview/loom/internal/store"
)

func testRecord() *store.Record {
	return &store.Record{
		URI:        "at://did:plc:abc/app.bsky.feed.post/3kabc",
		CID:        "bafyreictest",
		DID:        "did:plc:abc",
		Collection: "app.bsky.feed.post",
		RKey:       "3kabc",
		IndexedAt:  "2026-01-02T03:04:05Z",
		Raw:        []byte(`{"createdAt":"2026-01-01T00:00:00Z","likes":3,"author":{"handle":"alice"}}`),
	}
}

func TestCursorRoundTrip(t *testing.T) {
	rec := testRecord()

	tests := []struct {
		name string
		sort string
		want []string
	}{
		{"storage column", "indexed_at:desc", []string{"2026-01-02T03:04:05Z"}},
		{"json field", "createdAt:asc", []string{"2026-01-01T00:00:00Z"}},
		{"numeric json field", "likes:desc", []string{"3"}},
		{"dotted path", "author.handle:asc", []string{"alice"}},
		{"absent field", "missing:desc", []string{"NULL"}},
		{"two fields", "indexed_at:desc,likes:asc", []string{"2026-01-02T03:04:05Z", "3"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec, err := ParseSortSpec(tt.sort)
			if err != nil {
				t.Fatalf("failed to parse sort spec: %v", err)
			}
			cursor := GenerateCursorFromRecord(rec, spec)
			dec, err := DecodeCursor(cursor, spec)
			if err != nil {
				t.Fatalf("failed to decode cursor: %v", err)
			}
			if dec.CID != rec.CID {
				t.Errorf("cid = %q, want %q", dec.CID, rec.CID)
			}
			if len(dec.FieldValues) != len(tt.want) {
				t.Fatalf("got %d field values, want %d", len(dec.FieldValues), len(tt.want))
			}
			for i, want := range tt.want {
				if dec.FieldValues[i] != want {
					t.Errorf("field value %d = %q, want %q", i, dec.FieldValues[i], want)
				}
			}
		})
	}
}

func TestCursorWithoutSortSpec(t *testing.T) {
	rec := testRecord()
	cursor := GenerateCursorFromRecord(rec, nil)
	dec, err := DecodeCursor(cursor, nil)
	if err != nil {
		t.Fatalf("failed to decode cursor: %v", err)
	}
	if len(dec.FieldValues) != 0 {
		t.Errorf("got %d field values, want 0", len(dec.FieldValues))
	}
	if dec.CID != rec.CID {
		t.Errorf("cid = %q, want %q", dec.CID, rec.CID)
	}
}

func TestDecodeCursorErrors(t *testing.T) {
	spec, err := ParseSortSpec("indexed_at:desc,likes:asc")
	if err != nil {
		t.Fatalf("failed to parse sort spec: %v", err)
	}

	tests := []struct {
		name   string
		cursor string
	}{
		{"malformed base64", "%%%not-base64%%%"},
		{"too few segments", base64.StdEncoding.EncodeToString([]byte("v1|cid"))},
		{"too many segments", base64.StdEncoding.EncodeToString([]byte("v1|v2|v3|cid"))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeCursor(tt.cursor, spec)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !errors.Is(err, ErrInvalidCursor) {
				t.Errorf("error = %v, want ErrInvalidCursor", err)
			}
		})
	}
}

func TestParseSortSpec(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    []SortField
		wantErr bool
	}{
		{"empty", "", nil, false},
		{"default direction", "likes", []SortField{{"likes", Asc}}, false},
		{"explicit directions", "indexed_at:desc, createdAt:asc",
			[]SortField{{"indexed_at", Desc}, {"createdAt", Asc}}, false},
		{"dotted path", "author.handle:desc", []SortField{{"author.handle", Desc}}, false},
		{"bad direction", "likes:sideways", nil, true},
		{"injection attempt", "likes; DROP TABLE records:asc", nil, true},
		{"leading dot", ".likes:asc", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSortSpec(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %d fields, want %d", len(got), len(tt.want))
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("field %d = %+v, want %+v", i, got[i], tt.want[i])
				}
			}
		})
	}
}
