package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/recollect-labs/recollect-mcp/pkg/types"
)

// SQLiteStore implements the Store interface using SQLite
type SQLiteStore struct {
	db *sql.DB
}

var _ Store = (*SQLiteStore)(nil)

// openDatabase opens a SQLite database with appropriate settings
func openDatabase(dbPath string) (*sql.DB, error) {
	db, err := sql.Open(DriverName, dbPath)
	if err != nil {
		return nil, err
	}

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	// Single connection: SQLite benefits from a single writer, and it makes
	// the dedup check-then-insert transaction the only writer in flight.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return db, nil
}

// NewSQLiteStore creates a new SQLite store instance
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := openDatabase(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := ApplyMigrations(context.Background(), db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// InsertDocument computes the canonical URL, rejects duplicates inside the
// dedup window, and otherwise persists the document and returns its new id.
// The existence check and the insert run in one transaction, so two
// concurrent inserts racing on the same canonical URL cannot both succeed.
func (s *SQLiteStore) InsertDocument(ctx context.Context, doc *types.Document) (int64, error) {
	canonical := CanonicalURL(doc.URL)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	rows, err := tx.QueryContext(ctx, "SELECT ts FROM documents WHERE canonical_url = ?", canonical)
	if err != nil {
		return 0, fmt.Errorf("failed to query canonical index: %w", err)
	}
	for rows.Next() {
		var ts int64
		if err := rows.Scan(&ts); err != nil {
			_ = rows.Close()
			return 0, err
		}
		delta := doc.Timestamp - ts
		if delta < 0 {
			delta = -delta
		}
		if delta < DedupWindowMs {
			_ = rows.Close()
			return 0, ErrDuplicateVisit
		}
	}
	if err := rows.Err(); err != nil {
		return 0, err
	}
	_ = rows.Close()

	result, err := tx.ExecContext(ctx,
		`INSERT INTO documents (url, title, site, canonical_url, ts, excerpt) VALUES (?, ?, ?, ?, ?, ?)`,
		doc.URL, doc.Title, doc.Site, canonical, doc.Timestamp, doc.Excerpt)
	if err != nil {
		return 0, fmt.Errorf("failed to insert document: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit insert: %w", err)
	}

	doc.ID = id
	doc.CanonicalURL = canonical
	return id, nil
}

// PutVector stores the vector for a document. Serialization copies the
// payload into a fresh blob, so the stored vector is detached from any
// buffer the caller may reuse or release. An existing vector is replaced
// wholesale within a single statement.
func (s *SQLiteStore) PutVector(ctx context.Context, id int64, vector []float32) error {
	blob := serializeVector(vector)
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO vectors (doc_id, vector, dimension) VALUES (?, ?, ?)
		ON CONFLICT(doc_id) DO UPDATE SET vector = excluded.vector, dimension = excluded.dimension
	`, id, blob, len(vector))
	if err != nil {
		return fmt.Errorf("failed to put vector for doc %d: %w", id, err)
	}
	return nil
}

// GetVector returns the vector stored for a document
func (s *SQLiteStore) GetVector(ctx context.Context, id int64) ([]float32, error) {
	var blob []byte
	err := s.db.QueryRowContext(ctx, "SELECT vector FROM vectors WHERE doc_id = ?", id).Scan(&blob)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get vector for doc %d: %w", id, err)
	}
	return deserializeVector(blob), nil
}

// ScanCandidates walks the timestamp index backward, applies the filter
// predicates per row, and stops once limit matches have been collected.
func (s *SQLiteStore) ScanCandidates(ctx context.Context, filter CandidateFilter, limit int) ([]types.DocumentWithVector, error) {
	if limit <= 0 {
		return []types.DocumentWithVector{}, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT d.id, d.url, d.title, d.site, d.canonical_url, d.ts, d.excerpt, v.vector
		FROM documents d
		LEFT JOIN vectors v ON v.doc_id = d.id
		ORDER BY d.ts DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to scan candidates: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := make([]types.DocumentWithVector, 0, limit)
	for len(out) < limit && rows.Next() {
		var cand types.DocumentWithVector
		var blob []byte
		if err := rows.Scan(&cand.ID, &cand.URL, &cand.Title, &cand.Site,
			&cand.CanonicalURL, &cand.Timestamp, &cand.Excerpt, &blob); err != nil {
			return nil, err
		}
		if !filter.Match(&cand.Document) {
			continue
		}
		if blob != nil {
			cand.Vector = deserializeVector(blob)
		}
		out = append(out, cand)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return out, nil
}

// RecentDocuments returns the newest documents in descending timestamp order
func (s *SQLiteStore) RecentDocuments(ctx context.Context, limit int) ([]types.Document, error) {
	if limit <= 0 {
		return []types.Document{}, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, url, title, site, canonical_url, ts, excerpt
		FROM documents
		ORDER BY ts DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent documents: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := make([]types.Document, 0, limit)
	for rows.Next() {
		var doc types.Document
		if err := rows.Scan(&doc.ID, &doc.URL, &doc.Title, &doc.Site,
			&doc.CanonicalURL, &doc.Timestamp, &doc.Excerpt); err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return out, nil
}

// Clear wipes both stores in a single transaction so no reader observes a
// state with only one of them emptied.
func (s *SQLiteStore) Clear(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM vectors"); err != nil {
		return fmt.Errorf("failed to clear vectors: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM documents"); err != nil {
		return fmt.Errorf("failed to clear documents: %w", err)
	}

	return tx.Commit()
}

// Stats returns bulk counts over both stores
func (s *SQLiteStore) Stats(ctx context.Context) (types.StoreStats, error) {
	var stats types.StoreStats
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM documents").Scan(&stats.DocumentCount); err != nil {
		return stats, fmt.Errorf("failed to count documents: %w", err)
	}
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM vectors").Scan(&stats.VectorCount); err != nil {
		return stats, fmt.Errorf("failed to count vectors: %w", err)
	}
	return stats, nil
}
