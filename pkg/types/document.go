package types

import "net/url"

// Document represents a single captured page visit.
type Document struct {
	// ID is the store-assigned key, stable once assigned.
	ID int64

	// URL is the page address exactly as captured.
	URL string

	// Title is the page title as captured.
	Title string

	// Site is the page hostname.
	Site string

	// CanonicalURL is the normalized form of URL (fragment stripped, query
	// parameters sorted). Used only for duplicate detection, never shown to
	// the user.
	CanonicalURL string

	// Timestamp is the capture time in milliseconds since the Unix epoch.
	Timestamp int64

	// Excerpt is a bounded plain-text snippet used for display and as
	// fallback ranking text.
	Excerpt string
}

// DocumentWithVector pairs a document with its embedding, if one exists.
// Vector is nil when embedding failed or has not arrived yet.
type DocumentWithVector struct {
	Document
	Vector []float32
}

// ScoredDocument is a ranked search result.
type ScoredDocument struct {
	Document
	Score float64
}

// CaptureInput is a page-view record delivered by a capture collaborator.
type CaptureInput struct {
	URL       string
	Title     string
	Site      string
	Timestamp int64
	Text      string
}

// Validate reports whether the capture input can be ingested: both URL and
// Title must be present and the URL must be a web address. It returns
// ErrMissingURLOrTitle or ErrBadScheme accordingly; callers treat a non-nil
// error as "skip", not as a failure.
func (c *CaptureInput) Validate() error {
	if c.URL == "" || c.Title == "" {
		return ErrMissingURLOrTitle
	}
	u, err := url.Parse(c.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return ErrBadScheme
	}
	return nil
}
