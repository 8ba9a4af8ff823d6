package ingest

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/url"

	"github.com/recollect-labs/recollect-mcp/internal/config"
	"github.com/recollect-labs/recollect-mcp/internal/storage"
	"github.com/recollect-labs/recollect-mcp/pkg/types"
)

const (
	// captureExcerptLen bounds the stored excerpt for live captures.
	captureExcerptLen = 400

	// backfillExcerptLen bounds the stored excerpt for backfilled pages.
	backfillExcerptLen = 500

	// Reembed batch bounds.
	defaultReembedCount = 300
	maxReembedCount     = 2000
)

// Skip reasons reported in CaptureResult.
const (
	ReasonMissingFields = "missing_url_or_title"
	ReasonBadScheme     = "bad_scheme"
	ReasonExcluded      = "excluded"
	ReasonDuplicate     = "duplicate"
)

// Embedder derives document vectors. Satisfied by *embedder.Coordinator.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Pipeline ingests page-view records: validate, store, embed.
type Pipeline struct {
	store    storage.Store
	embedder Embedder
	settings *config.Store
}

// New creates an ingestion pipeline. settings may be nil to disable
// exclusion filtering.
func New(store storage.Store, emb Embedder, settings *config.Store) *Pipeline {
	return &Pipeline{store: store, embedder: emb, settings: settings}
}

// Capture ingests one live page view. Validation failures and duplicate
// visits come back as a skipped result, not an error; a storage failure
// propagates so the originator knows the document was not persisted.
func (p *Pipeline) Capture(ctx context.Context, in types.CaptureInput) (types.CaptureResult, error) {
	if err := in.Validate(); err != nil {
		reason := ReasonMissingFields
		if errors.Is(err, types.ErrBadScheme) {
			reason = ReasonBadScheme
		}
		return types.CaptureResult{Skipped: true, Reason: reason}, nil
	}

	// Validate guarantees the URL parses.
	u, _ := url.Parse(in.URL)
	if p.excluded(u.Hostname(), in.URL) {
		return types.CaptureResult{Skipped: true, Reason: ReasonExcluded}, nil
	}

	doc := &types.Document{
		URL:       in.URL,
		Title:     in.Title,
		Site:      in.Site,
		Timestamp: in.Timestamp,
		Excerpt:   truncate(in.Text, captureExcerptLen),
	}

	id, err := p.store.InsertDocument(ctx, doc)
	if errors.Is(err, storage.ErrDuplicateVisit) {
		return types.CaptureResult{Skipped: true, Reason: ReasonDuplicate}, nil
	}
	if err != nil {
		return types.CaptureResult{}, fmt.Errorf("persist capture: %w", err)
	}

	if in.Text != "" {
		// The vector is best-effort: a document without one still shows up
		// in recency-ordered results.
		if err := p.embedDocument(ctx, id, in.Title, in.Site, in.Text); err != nil {
			log.Printf("embed failed for doc %d: %v", id, err)
		}
	}

	return types.CaptureResult{ID: id}, nil
}

// ReembedRecent regenerates vectors for the newest n documents from their
// stored title, site, and excerpt. Each item fails independently.
func (p *Pipeline) ReembedRecent(ctx context.Context, n int) (types.ReembedResult, error) {
	if n <= 0 {
		n = defaultReembedCount
	}
	if n > maxReembedCount {
		n = maxReembedCount
	}

	recent, err := p.store.RecentDocuments(ctx, n)
	if err != nil {
		return types.ReembedResult{}, err
	}

	var res types.ReembedResult
	for i := range recent {
		doc := &recent[i]
		vec, err := p.embedder.Embed(ctx, embedText(doc.Title, doc.Site, doc.Excerpt))
		if err != nil {
			res.Errors++
			continue
		}
		if len(vec) == 0 {
			res.Empty++
			continue
		}
		if err := p.store.PutVector(ctx, doc.ID, vec); err != nil {
			res.Errors++
			continue
		}
		res.Saved++
	}

	return res, nil
}

// embedDocument derives and stores the vector for a freshly inserted
// document.
func (p *Pipeline) embedDocument(ctx context.Context, id int64, title, site, text string) error {
	vec, err := p.embedder.Embed(ctx, embedText(title, site, text))
	if err != nil {
		return err
	}
	if len(vec) == 0 {
		return nil
	}
	return p.store.PutVector(ctx, id, vec)
}

// embedText builds the text a document's vector is derived from. The
// embedder caps the total length.
func embedText(title, site, text string) string {
	return title + " • " + site + " • " + text
}

func (p *Pipeline) excluded(host, pageURL string) bool {
	if p.settings == nil {
		return false
	}
	patterns := config.CompilePatterns(p.settings.Get().Excluded)
	return config.Excluded(patterns, host, pageURL)
}

// truncate caps s at n characters, counting runes so a multi-byte sequence
// is never split.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
