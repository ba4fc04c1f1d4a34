// Package testutil provides shared test fixtures.
package testutil

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/loomview/loom/internal/store"
)

// OpenTestStore opens an initialized in-memory SQLite store.
func OpenTestStore(t *testing.T) *store.Store {
	t.Helper()

	db, err := store.OpenSQLite(":memory:")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	st := store.New(db)
	if err := st.Init(context.Background()); err != nil {
		t.Fatalf("failed to initialize store: %v", err)
	}
	return st
}

// MakeRecord builds a record with a URI derived from its identity and
// the payload marshalled from value.
func MakeRecord(t *testing.T, did, collection, rkey, cid, indexedAt string, value map[string]interface{}) *store.Record {
	t.Helper()

	raw, err := json.Marshal(value)
	if err != nil {
		t.Fatalf("failed to marshal record payload: %v", err)
	}
	return &store.Record{
		URI:        fmt.Sprintf("at://%s/%s/%s", did, collection, rkey),
		CID:        cid,
		DID:        did,
		Collection: collection,
		RKey:       rkey,
		IndexedAt:  indexedAt,
		Raw:        raw,
	}
}

// MustPut stores a record or fails the test.
func MustPut(t *testing.T, st *store.Store, rec *store.Record) {
	t.Helper()
	if err := st.Put(context.Background(), rec); err != nil {
		t.Fatalf("failed to store record %s: %v", rec.URI, err)
	}
}
