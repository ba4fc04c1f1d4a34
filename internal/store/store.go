package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// Executor runs SQL against one backend. *DB satisfies it; tests may
// substitute their own.
type Executor interface {
	Dialect() Dialect
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// DB wraps a database/sql handle with its dialect tag.
type DB struct {
	db      *sql.DB
	dialect Dialect
}

// OpenSQLite opens (or creates) a SQLite database at path. Use
// ":memory:" for an in-memory database.
func OpenSQLite(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	return &DB{db: db, dialect: DialectSQLite}, nil
}

// OpenPostgres opens a PostgreSQL database through the pgx stdlib driver.
func OpenPostgres(dsn string) (*DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres database: %w", err)
	}
	return &DB{db: db, dialect: DialectPostgres}, nil
}

// Open opens a database for the configured dialect. path is the SQLite
// file path, dsn the PostgreSQL connection string.
func Open(d Dialect, path, dsn string) (*DB, error) {
	if d == DialectPostgres {
		return OpenPostgres(dsn)
	}
	return OpenSQLite(path)
}

func (d *DB) Dialect() Dialect { return d.dialect }

func (d *DB) QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	return d.db.QueryContext(ctx, query, args...)
}

func (d *DB) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	return d.db.ExecContext(ctx, query, args...)
}

// Close closes the underlying handle.
func (d *DB) Close() error { return d.db.Close() }

// Store reads and writes records through an Executor.
type Store struct {
	exec Executor
}

// New creates a Store over the given executor.
func New(exec Executor) *Store {
	return &Store{exec: exec}
}

// Dialect returns the dialect of the underlying executor.
func (s *Store) Dialect() Dialect { return s.exec.Dialect() }

const recordColumns = "uri, cid, did, collection, rkey, record, indexed_at"

// Init creates the records table if it does not exist.
func (s *Store) Init(ctx context.Context) error {
	var ddl string
	if s.exec.Dialect() == DialectPostgres {
		ddl = `CREATE TABLE IF NOT EXISTS records (
			uri TEXT PRIMARY KEY,
			cid TEXT NOT NULL,
			did TEXT NOT NULL,
			collection TEXT NOT NULL,
			rkey TEXT NOT NULL,
			record JSONB NOT NULL,
			indexed_at TEXT NOT NULL
		)`
	} else {
		ddl = `CREATE TABLE IF NOT EXISTS records (
			uri TEXT PRIMARY KEY,
			cid TEXT NOT NULL,
			did TEXT NOT NULL,
			collection TEXT NOT NULL,
			rkey TEXT NOT NULL,
			record TEXT NOT NULL,
			indexed_at TEXT NOT NULL
		)`
	}
	if _, err := s.exec.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("failed to create records table: %w", err)
	}
	idx := `CREATE INDEX IF NOT EXISTS idx_records_collection ON records (collection, indexed_at)`
	if _, err := s.exec.ExecContext(ctx, idx); err != nil {
		return fmt.Errorf("failed to create collection index: %w", err)
	}
	return nil
}

// Put inserts or replaces a record.
func (s *Store) Put(ctx context.Context, rec *Record) error {
	d := s.exec.Dialect()
	var stmt string
	if d == DialectPostgres {
		stmt = fmt.Sprintf(`INSERT INTO records (%s) VALUES ($1, $2, $3, $4, $5, $6, $7)
			ON CONFLICT (uri) DO UPDATE SET
			cid = EXCLUDED.cid, did = EXCLUDED.did, collection = EXCLUDED.collection,
			rkey = EXCLUDED.rkey, record = EXCLUDED.record, indexed_at = EXCLUDED.indexed_at`,
			recordColumns)
	} else {
		stmt = fmt.Sprintf(`INSERT OR REPLACE INTO records (%s) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			recordColumns)
	}
	_, err := s.exec.ExecContext(ctx, stmt,
		rec.URI, rec.CID, rec.DID, rec.Collection, rec.RKey, string(rec.Raw), rec.IndexedAt)
	if err != nil {
		return fmt.Errorf("failed to store record %s: %w", rec.URI, err)
	}
	return nil
}

// GetRecordByURI returns the record at uri, or nil when absent.
func (s *Store) GetRecordByURI(ctx context.Context, uri string) (*Record, error) {
	stmt := fmt.Sprintf("SELECT %s FROM records WHERE uri = %s",
		recordColumns, Placeholder(s.exec.Dialect(), 1))
	rows, err := s.exec.QueryContext(ctx, stmt, uri)
	if err != nil {
		return nil, fmt.Errorf("record lookup failed: %w", err)
	}
	recs, err := scanRecords(rows)
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, nil
	}
	return recs[0], nil
}

// GetRecordsByURI bulk-fetches records. URIs not present in the store
// are simply missing from the result map.
func (s *Store) GetRecordsByURI(ctx context.Context, uris []string) (map[string]*Record, error) {
	result := make(map[string]*Record, len(uris))
	if len(uris) == 0 {
		return result, nil
	}
	placeholders, args := inClauseArgs(s.exec.Dialect(), 1, uris)
	stmt := fmt.Sprintf("SELECT %s FROM records WHERE uri IN (%s)", recordColumns, placeholders)
	rows, err := s.exec.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("bulk record lookup failed: %w", err)
	}
	recs, err := scanRecords(rows)
	if err != nil {
		return nil, err
	}
	for _, rec := range recs {
		result[rec.URI] = rec
	}
	return result, nil
}

// ListPage returns one page of a collection. where and params carry an
// optional pre-rendered cursor predicate whose placeholders start after
// the collection parameter; order is a rendered ORDER BY body.
func (s *Store) ListPage(ctx context.Context, collection, where string, params []string, order string, limit int) ([]*Record, error) {
	d := s.exec.Dialect()
	var sb strings.Builder
	fmt.Fprintf(&sb, "SELECT %s FROM records WHERE collection = %s", recordColumns, Placeholder(d, 1))
	args := []interface{}{collection}
	if where != "" {
		sb.WriteString(" AND ")
		sb.WriteString(where)
		for _, p := range params {
			args = append(args, p)
		}
	}
	if order != "" {
		sb.WriteString(" ORDER BY ")
		sb.WriteString(order)
	}
	fmt.Fprintf(&sb, " LIMIT %d", limit)
	rows, err := s.exec.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("page query failed: %w (SQL: %s)", err, sb.String())
	}
	return scanRecords(rows)
}

// inClauseArgs renders the placeholder list for an IN clause, starting
// at the given 1-based parameter index. An empty item list renders as
// NULL so `IN (NULL)` matches nothing.
func inClauseArgs(d Dialect, start int, items []string) (string, []interface{}) {
	if len(items) == 0 {
		return "NULL", nil
	}
	ph := make([]string, len(items))
	args := make([]interface{}, len(items))
	for i, item := range items {
		ph[i] = Placeholder(d, start+i)
		args[i] = item
	}
	return strings.Join(ph, ", "), args
}

func scanRecords(rows *sql.Rows) ([]*Record, error) {
	defer rows.Close()

	var out []*Record
	for rows.Next() {
		var rec Record
		var raw string
		if err := rows.Scan(&rec.URI, &rec.CID, &rec.DID, &rec.Collection, &rec.RKey, &raw, &rec.IndexedAt); err != nil {
			return nil, err
		}
		rec.Raw = []byte(raw)
		out = append(out, &rec)
	}
	return out, rows.Err()
}
