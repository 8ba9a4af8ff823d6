package ingest

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/net/html"
	"golang.org/x/time/rate"
)

const (
	// pageTextCap bounds the plain text extracted from one page.
	pageTextCap = 20000

	fetchTimeout    = 15 * time.Second
	fetchRatePerSec = 5
	fetchBurst      = 5

	// maxFetchBody bounds how much HTML is read per page.
	maxFetchBody = 2 << 20
)

// PageFetcher downloads pages and extracts their visible text. Fetches are
// rate limited so a large backfill doesn't hammer remote hosts.
type PageFetcher struct {
	client  *http.Client
	limiter *rate.Limiter
}

// NewPageFetcher creates a fetcher with default limits.
func NewPageFetcher() *PageFetcher {
	return &PageFetcher{
		client:  &http.Client{Timeout: fetchTimeout},
		limiter: rate.NewLimiter(rate.Limit(fetchRatePerSec), fetchBurst),
	}
}

// FetchText returns the visible text of an HTML page, capped at
// pageTextCap characters. Any failure yields an empty string; backfill
// treats missing text as "index by title only".
func (f *PageFetcher) FetchText(ctx context.Context, pageURL string) string {
	if err := f.limiter.Wait(ctx); err != nil {
		return ""
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return ""
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return ""
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return ""
	}
	if ct := resp.Header.Get("Content-Type"); !strings.Contains(ct, "text/html") {
		return ""
	}

	return ExtractText(io.LimitReader(resp.Body, maxFetchBody), pageTextCap)
}

// ExtractText pulls visible text out of an HTML stream: script, style, and
// comment content is dropped, whitespace runs collapse to single spaces,
// and the result is capped at maxLen characters.
func ExtractText(r io.Reader, maxLen int) string {
	z := html.NewTokenizer(r)
	var b strings.Builder
	skipDepth := 0

	for {
		switch z.Next() {
		case html.ErrorToken:
			return strings.TrimSpace(b.String())
		case html.StartTagToken:
			name, _ := z.TagName()
			if skippedTag(string(name)) {
				skipDepth++
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			if skippedTag(string(name)) && skipDepth > 0 {
				skipDepth--
			}
		case html.TextToken:
			if skipDepth > 0 {
				continue
			}
			text := strings.Join(strings.Fields(string(z.Text())), " ")
			if text == "" {
				continue
			}
			if b.Len() > 0 {
				b.WriteByte(' ')
			}
			remaining := maxLen - b.Len()
			if remaining <= 0 {
				return strings.TrimSpace(b.String())
			}
			if len(text) > remaining {
				// Back off to a rune boundary so the cut never splits a
				// multi-byte sequence.
				cut := remaining
				for cut > 0 && !utf8.RuneStart(text[cut]) {
					cut--
				}
				b.WriteString(text[:cut])
				return strings.TrimSpace(b.String())
			}
			b.WriteString(text)
		}
	}
}

func skippedTag(name string) bool {
	switch name {
	case "script", "style", "noscript", "template":
		return true
	}
	return false
}
