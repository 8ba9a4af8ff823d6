package ingest

import (
	"context"
	"errors"
	"log"
	"net/url"
	"regexp"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/recollect-labs/recollect-mcp/internal/config"
	"github.com/recollect-labs/recollect-mcp/internal/storage"
	"github.com/recollect-labs/recollect-mcp/pkg/types"
)

const (
	// maxHistoryResults caps how many history records one backfill pulls.
	maxHistoryResults = 5000

	// fetchWorkers bounds concurrent page-text fetches.
	fetchWorkers = 4
)

// HistoryRecord is one history entry from an external source.
type HistoryRecord struct {
	URL       string
	Title     string
	LastVisit int64 // epoch milliseconds
}

// HistorySource supplies browsing-history records for a time window.
type HistorySource interface {
	Visits(ctx context.Context, startMs, endMs int64, max int) ([]HistoryRecord, error)
}

// backfillItem is a history record with its fetched page text.
type backfillItem struct {
	record HistoryRecord
	host   string
	text   string
}

// Backfill replays a window of browsing history through the capture
// pipeline. When embed is set, page text is fetched over HTTP and each
// inserted document gets a vector; fetch and embed failures are isolated
// per item and never abort the run.
func (p *Pipeline) Backfill(ctx context.Context, source HistorySource, days int, embed bool) (types.BackfillResult, error) {
	if days <= 0 {
		days = config.DefaultBackfillDays
		if p.settings != nil {
			if d := p.settings.Get().BackfillDays; d > 0 {
				days = d
			}
		}
	}

	end := time.Now().UnixMilli()
	start := end - int64(days)*24*3600*1000

	records, err := source.Visits(ctx, start, end, maxHistoryResults)
	if err != nil {
		return types.BackfillResult{}, err
	}

	res := types.BackfillResult{Days: days}
	items := p.prepareItems(ctx, records, embed, &res)

	for i := range items {
		item := &items[i]

		title := item.record.Title
		if title == "" {
			title = item.record.URL
		}
		ts := item.record.LastVisit
		if ts == 0 {
			ts = time.Now().UnixMilli()
		}

		doc := &types.Document{
			URL:       item.record.URL,
			Title:     title,
			Site:      item.host,
			Timestamp: ts,
			Excerpt:   truncate(item.text, backfillExcerptLen),
		}

		id, err := p.store.InsertDocument(ctx, doc)
		if err != nil {
			if !errors.Is(err, storage.ErrDuplicateVisit) {
				log.Printf("backfill insert failed for %s: %v", item.record.URL, err)
			}
			res.Skipped++
			continue
		}
		res.Inserted++

		if !embed {
			continue
		}
		text := item.text
		if text == "" {
			text = title
		}
		vec, err := p.embedder.Embed(ctx, embedText(title, item.host, text))
		if err != nil || len(vec) == 0 {
			if err != nil {
				log.Printf("backfill embed failed for doc %d: %v", id, err)
			}
			continue
		}
		if err := p.store.PutVector(ctx, id, vec); err != nil {
			log.Printf("backfill vector store failed for doc %d: %v", id, err)
			continue
		}
		res.Embedded++
	}

	return res, nil
}

// prepareItems filters history records and fetches page text for the
// survivors with a bounded worker pool.
func (p *Pipeline) prepareItems(ctx context.Context, records []HistoryRecord, fetchText bool, res *types.BackfillResult) []backfillItem {
	var patterns []*regexp.Regexp
	if p.settings != nil {
		patterns = config.CompilePatterns(p.settings.Get().Excluded)
	}

	items := make([]backfillItem, 0, len(records))
	for _, rec := range records {
		if rec.URL == "" {
			res.Skipped++
			continue
		}
		u, err := url.Parse(rec.URL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
			res.Skipped++
			continue
		}
		host := u.Hostname()
		if config.Excluded(patterns, host, rec.URL) {
			res.Skipped++
			continue
		}
		items = append(items, backfillItem{record: rec, host: host})
	}

	if !fetchText {
		return items
	}

	fetcher := NewPageFetcher()
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(fetchWorkers)
	for i := range items {
		item := &items[i]
		g.Go(func() error {
			// Fetch failures leave the text empty; the record still gets
			// inserted with its title as ranking text.
			item.text = fetcher.FetchText(gctx, item.record.URL)
			return nil
		})
	}
	_ = g.Wait()

	return items
}
