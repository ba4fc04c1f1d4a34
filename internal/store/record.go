package store

import (
	"strconv"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Record is one row of the records table: the addressing columns plus
// the raw JSON payload as it came off the wire.
type Record struct {
	URI        string
	CID        string
	DID        string
	Collection string
	RKey       string
	IndexedAt  string // RFC 3339, UTC; stored as TEXT so ordering is lexicographic in both dialects
	Raw        []byte

	value map[string]interface{}
}

// Columns lists the top-level storage columns, in table order.
// Sort fields naming one of these compare against the column itself;
// anything else is treated as a path into the JSON payload.
var Columns = map[string]struct{}{
	"uri":        {},
	"cid":        {},
	"did":        {},
	"collection": {},
	"rkey":       {},
	"indexed_at": {},
}

// IsColumn reports whether name is a top-level storage column.
func IsColumn(name string) bool {
	_, ok := Columns[name]
	return ok
}

// NowIndexed returns the current time formatted for the indexed_at column.
func NowIndexed() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

// Value returns the decoded JSON payload. The decode happens once and
// is cached; a payload that fails to decode yields an empty map.
func (r *Record) Value() map[string]interface{} {
	if r.value == nil {
		r.value = make(map[string]interface{})
		if len(r.Raw) > 0 {
			_ = json.Unmarshal(r.Raw, &r.value)
		}
	}
	return r.value
}

// ColumnValue returns the serialized value of a top-level column, or
// false if name is not a column.
func (r *Record) ColumnValue(name string) (string, bool) {
	switch name {
	case "uri":
		return r.URI, true
	case "cid":
		return r.CID, true
	case "did":
		return r.DID, true
	case "collection":
		return r.Collection, true
	case "rkey":
		return r.RKey, true
	case "indexed_at":
		return r.IndexedAt, true
	}
	return "", false
}

// FieldValue resolves a (possibly dotted) path into the JSON payload
// and serializes the result. Absent or null values yield the literal
// "NULL" so cursors stay positionally aligned with their sort spec.
func (r *Record) FieldValue(path string) string {
	var cur interface{} = r.Value()
	for _, part := range strings.Split(path, ".") {
		m, ok := cur.(map[string]interface{})
		if !ok {
			return "NULL"
		}
		cur, ok = m[part]
		if !ok {
			return "NULL"
		}
	}
	return serializeValue(cur)
}

func serializeValue(v interface{}) string {
	switch v := v.(type) {
	case nil:
		return "NULL"
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int64:
		return strconv.FormatInt(v, 10)
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return "NULL"
		}
		return string(b)
	}
}
