package types

// CaptureResult reports the outcome of ingesting one page-view record.
type CaptureResult struct {
	// ID is the assigned document key. Zero when the record was skipped.
	ID int64

	// Skipped is true when the record was rejected by validation or by the
	// duplicate-visit window. Skipping is expected behavior, not an error.
	Skipped bool

	// Reason explains a skip ("missing_url_or_title", "bad_scheme",
	// "duplicate", "excluded").
	Reason string
}

// BackfillResult summarizes a history backfill run.
type BackfillResult struct {
	Days     int
	Inserted int
	Embedded int
	Skipped  int
}

// ReembedResult summarizes a bulk re-embedding pass over recent documents.
type ReembedResult struct {
	Saved  int
	Empty  int
	Errors int
}

// StoreStats holds bulk counts over the persisted stores.
type StoreStats struct {
	DocumentCount int
	VectorCount   int
}
