package ranker

import (
	"context"
	"log"
	"math"
	"runtime"
	"sort"
	"sync/atomic"
	"time"

	"github.com/recollect-labs/recollect-mcp/internal/queryparse"
	"github.com/recollect-labs/recollect-mcp/internal/storage"
	"github.com/recollect-labs/recollect-mcp/pkg/types"
)

const (
	// MaxCandidates caps how many filtered documents one search scores.
	MaxCandidates = 5000

	// scoreChunkSize bounds how many candidates are scored between
	// cooperative yields.
	scoreChunkSize = 2000

	// Score fusion weights and recency decay constant (days).
	cosineWeight     = 0.85
	recencyWeight    = 0.15
	recencyDecayDays = 21.0

	// DefaultTopK is used when the caller passes a non-positive topK.
	DefaultTopK = 20
)

// Embedder derives the query vector. Satisfied by *embedder.Coordinator.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Engine ranks stored documents against free-text queries. It never writes
// to the store.
type Engine struct {
	store    storage.Store
	embedder Embedder

	// seq numbers search requests; a result is discarded when a newer
	// request was issued before it finished.
	seq atomic.Uint64

	// now is swappable for tests.
	now func() time.Time
}

// New creates a ranking engine over the given store and embedder.
func New(store storage.Store, emb Embedder) *Engine {
	return &Engine{
		store:    store,
		embedder: emb,
		now:      time.Now,
	}
}

// Search returns the topK documents ranked against rawQuery. A search that
// finishes after a newer Search call was issued on the same engine returns
// ErrSuperseded; the caller should drop that result.
func (e *Engine) Search(ctx context.Context, rawQuery string, topK int) ([]types.ScoredDocument, error) {
	reqID := e.seq.Add(1)

	results, err := e.search(ctx, rawQuery, topK)
	if err != nil {
		return nil, err
	}
	if e.seq.Load() != reqID {
		return nil, types.ErrSuperseded
	}
	return results, nil
}

func (e *Engine) search(ctx context.Context, rawQuery string, topK int) ([]types.ScoredDocument, error) {
	if topK <= 0 {
		topK = DefaultTopK
	}

	filter := queryparse.Parse(rawQuery)

	queryText := filter.Text
	if queryText == "" {
		queryText = rawQuery
	}
	queryVec, err := e.embedder.Embed(ctx, queryText)
	if err != nil {
		// A failed query embedding degrades the search instead of failing it.
		log.Printf("query embedding failed, degrading to recency order: %v", err)
		queryVec = nil
	}

	candidates, err := e.store.ScanCandidates(ctx, storage.CandidateFilter{
		Site:     filter.Site,
		AfterTs:  filter.AfterTs,
		BeforeTs: filter.BeforeTs,
	}, MaxCandidates)
	if err != nil {
		return nil, err
	}

	anyVector := false
	for i := range candidates {
		if candidates[i].Vector != nil {
			anyVector = true
			break
		}
	}

	if queryVec == nil || !anyVector {
		return degraded(candidates, topK), nil
	}

	scored, err := e.scoreCandidates(ctx, queryVec, candidates)
	if err != nil {
		return nil, err
	}

	deduped := dedupeByURL(scored)

	sort.SliceStable(deduped, func(i, j int) bool {
		return deduped[i].Score > deduped[j].Score
	})
	if len(deduped) > topK {
		deduped = deduped[:topK]
	}
	return deduped, nil
}

// degraded returns the first topK candidates in their existing recency
// order with score 0. Deliberate graceful degradation, not an error.
func degraded(candidates []types.DocumentWithVector, topK int) []types.ScoredDocument {
	if len(candidates) > topK {
		candidates = candidates[:topK]
	}
	out := make([]types.ScoredDocument, len(candidates))
	for i := range candidates {
		out[i] = types.ScoredDocument{Document: candidates[i].Document}
	}
	return out
}

// scoreCandidates computes the fused score for every candidate carrying a
// vector; a candidate without one never enters the scored ranking. Work
// proceeds in chunks with a cooperative yield in between so a large scan
// does not starve the rest of the process; the yield is a scheduling
// courtesy, not a correctness requirement.
func (e *Engine) scoreCandidates(ctx context.Context, queryVec []float32, candidates []types.DocumentWithVector) ([]types.ScoredDocument, error) {
	nowMs := e.now().UnixMilli()
	scored := make([]types.ScoredDocument, 0, len(candidates))

	for start := 0; start < len(candidates); start += scoreChunkSize {
		end := start + scoreChunkSize
		if end > len(candidates) {
			end = len(candidates)
		}
		for i := start; i < end; i++ {
			c := &candidates[i]
			if c.Vector == nil {
				continue
			}
			cos := math.Max(0, dot(queryVec, c.Vector))
			score := cosineWeight*cos + recencyWeight*recencyBoost(nowMs, c.Timestamp)
			scored = append(scored, types.ScoredDocument{Document: c.Document, Score: score})
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		runtime.Gosched()
	}

	return scored, nil
}

// dedupeByURL keeps the highest-scoring entry per fragment-stripped URL.
// The surviving entry stays at the position of its first occurrence, so the
// later stable sort breaks score ties by input order.
func dedupeByURL(scored []types.ScoredDocument) []types.ScoredDocument {
	byURL := make(map[string]int, len(scored))
	out := make([]types.ScoredDocument, 0, len(scored))
	for _, s := range scored {
		key := storage.StripFragment(s.URL)
		if idx, ok := byURL[key]; ok {
			if s.Score > out[idx].Score {
				out[idx] = s
			}
			continue
		}
		byURL[key] = len(out)
		out = append(out, s)
	}
	return out
}

// recencyBoost decays exponentially with document age: 1.0 for a page
// captured just now, approaching 0 for old pages.
func recencyBoost(nowMs, ts int64) float64 {
	days := math.Max(0, float64(nowMs-ts)/(24*3600*1000))
	return math.Exp(-days / recencyDecayDays)
}

// dot computes the dot product over the overlapping prefix of two vectors.
// A length mismatch truncates to the shorter vector rather than failing.
func dot(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var s float64
	for i := 0; i < n; i++ {
		s += float64(a[i]) * float64(b[i])
	}
	return s
}
