package storage

import (
	"context"
	"errors"

	"github.com/recollect-labs/recollect-mcp/pkg/types"
)

var (
	// ErrNotFound is returned when a requested entity doesn't exist
	ErrNotFound = errors.New("not found")
	// ErrDuplicateVisit is returned when an insert is rejected because the
	// same canonical URL was already captured within the dedup window. This
	// is expected in normal operation, not a failure.
	ErrDuplicateVisit = errors.New("duplicate visit within dedup window")
)

// DedupWindowMs is the interval within which a repeat capture of the same
// canonical URL is discarded rather than stored again (3 days).
const DedupWindowMs = 3 * 24 * 3600 * 1000

// CandidateFilter narrows a candidate scan. Zero values mean "no bound".
type CandidateFilter struct {
	// Site is matched case-insensitively as a substring of Document.Site.
	Site string
	// AfterTs is an inclusive lower timestamp bound in epoch milliseconds.
	AfterTs int64
	// BeforeTs is an inclusive upper timestamp bound in epoch milliseconds.
	BeforeTs int64
}

// Match reports whether a document passes all set predicates.
func (f CandidateFilter) Match(doc *types.Document) bool {
	if f.Site != "" && !containsFold(doc.Site, f.Site) {
		return false
	}
	if f.AfterTs != 0 && doc.Timestamp < f.AfterTs {
		return false
	}
	if f.BeforeTs != 0 && doc.Timestamp > f.BeforeTs {
		return false
	}
	return true
}

// Store defines the interface for persisting and querying captured documents
// and their vectors.
type Store interface {
	// InsertDocument assigns an id and persists the document along with its
	// canonical URL. It returns ErrDuplicateVisit when an existing document
	// shares the canonical URL with a timestamp inside the dedup window.
	InsertDocument(ctx context.Context, doc *types.Document) (int64, error)

	// PutVector stores an independent copy of the vector for a document,
	// replacing any existing vector wholesale.
	PutVector(ctx context.Context, id int64, vector []float32) error

	// GetVector returns the stored vector for a document, or ErrNotFound.
	GetVector(ctx context.Context, id int64) ([]float32, error)

	// ScanCandidates iterates documents in descending timestamp order,
	// applying the filter predicates, and stops once limit matches have
	// been collected or the store is exhausted. Each candidate carries its
	// vector when one exists.
	ScanCandidates(ctx context.Context, filter CandidateFilter, limit int) ([]types.DocumentWithVector, error)

	// RecentDocuments returns the newest documents, no filters applied.
	RecentDocuments(ctx context.Context, limit int) ([]types.Document, error)

	// Clear empties both the document and vector stores atomically.
	Clear(ctx context.Context) error

	// Stats returns bulk counts over both stores.
	Stats(ctx context.Context) (types.StoreStats, error)

	// Close releases the underlying database.
	Close() error
}
