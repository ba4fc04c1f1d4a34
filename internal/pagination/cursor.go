package pagination

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/loomview/loom/internal/store"
)

// ErrInvalidCursor marks client-supplied cursors that cannot be
// decoded. It is never repaired; callers surface it as a bad request.
var ErrInvalidCursor = errors.New("invalid cursor")

// DecodedCursor is the payload of a cursor: one serialized value per
// sort field, in spec order, plus the record's content id as tiebreak.
type DecodedCursor struct {
	FieldValues []string
	CID         string
}

// cursorSeparator joins the serialized segments. Sort values are
// timestamps, numbers, and identifiers; none of them contain '|'.
const cursorSeparator = "|"

// GenerateCursorFromRecord encodes a record's position under the given
// sort spec. A field naming a storage column reads the column verbatim;
// any other name is a path into the JSON payload, serialized as "NULL"
// when absent. With no sort spec the cursor is just the content id.
func GenerateCursorFromRecord(rec *store.Record, spec []SortField) string {
	segments := make([]string, 0, len(spec)+1)
	for _, f := range spec {
		if v, ok := rec.ColumnValue(f.Name); ok {
			segments = append(segments, v)
		} else {
			segments = append(segments, rec.FieldValue(f.Name))
		}
	}
	segments = append(segments, rec.CID)
	return base64.StdEncoding.EncodeToString([]byte(strings.Join(segments, cursorSeparator)))
}

// DecodeCursor decodes a cursor against the active sort spec. It fails
// on malformed base64 and whenever the segment count does not line up
// with the spec; both are client errors, surfaced, never corrected.
func DecodeCursor(cursor string, spec []SortField) (*DecodedCursor, error) {
	raw, err := base64.StdEncoding.DecodeString(cursor)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCursor, err)
	}
	segments := strings.Split(string(raw), cursorSeparator)
	if len(segments)-1 != len(spec) {
		return nil, fmt.Errorf("%w: got %d values for %d sort fields",
			ErrInvalidCursor, len(segments)-1, len(spec))
	}
	return &DecodedCursor{
		FieldValues: segments[:len(segments)-1],
		CID:         segments[len(segments)-1],
	}, nil
}
