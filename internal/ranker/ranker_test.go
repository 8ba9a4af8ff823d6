package ranker

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recollect-labs/recollect-mcp/internal/storage"
	"github.com/recollect-labs/recollect-mcp/pkg/types"
)

// fakeStore serves a fixed candidate list and applies the filter the same
// way the real scan does.
type fakeStore struct {
	candidates []types.DocumentWithVector
	scanErr    error
	lastFilter storage.CandidateFilter
}

func (s *fakeStore) InsertDocument(ctx context.Context, doc *types.Document) (int64, error) {
	return 0, errors.New("read-only")
}
func (s *fakeStore) PutVector(ctx context.Context, id int64, vector []float32) error {
	return errors.New("read-only")
}
func (s *fakeStore) GetVector(ctx context.Context, id int64) ([]float32, error) {
	return nil, storage.ErrNotFound
}

func (s *fakeStore) ScanCandidates(ctx context.Context, filter storage.CandidateFilter, limit int) ([]types.DocumentWithVector, error) {
	if s.scanErr != nil {
		return nil, s.scanErr
	}
	s.lastFilter = filter
	out := make([]types.DocumentWithVector, 0, len(s.candidates))
	for i := range s.candidates {
		if !filter.Match(&s.candidates[i].Document) {
			continue
		}
		out = append(out, s.candidates[i])
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (s *fakeStore) RecentDocuments(ctx context.Context, limit int) ([]types.Document, error) {
	out := make([]types.Document, 0, limit)
	for i := range s.candidates {
		if len(out) >= limit {
			break
		}
		out = append(out, s.candidates[i].Document)
	}
	return out, nil
}

func (s *fakeStore) Clear(ctx context.Context) error                  { return nil }
func (s *fakeStore) Stats(ctx context.Context) (types.StoreStats, error) { return types.StoreStats{}, nil }
func (s *fakeStore) Close() error                                     { return nil }

// fixedEmbedder returns one vector for every input.
type fixedEmbedder struct {
	vec []float32
	err error
}

func (f *fixedEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.vec, nil
}

func newTestEngine(store *fakeStore, emb Embedder, nowMs int64) *Engine {
	e := New(store, emb)
	e.now = func() time.Time { return time.UnixMilli(nowMs) }
	return e
}

func cand(id int64, url string, ts int64, vec []float32) types.DocumentWithVector {
	return types.DocumentWithVector{
		Document: types.Document{ID: id, URL: url, Title: url, Site: "example.com", Timestamp: ts},
		Vector:   vec,
	}
}

func TestSearch_RanksBySimilarity(t *testing.T) {
	nowMs := int64(1_700_000_000_000)
	store := &fakeStore{candidates: []types.DocumentWithVector{
		cand(1, "https://a.com/far", nowMs, []float32{0, 1}),
		cand(2, "https://a.com/near", nowMs, []float32{1, 0}),
	}}
	engine := newTestEngine(store, &fixedEmbedder{vec: []float32{1, 0}}, nowMs)

	results, err := engine.Search(context.Background(), "query", 10)
	require.NoError(t, err)
	require.Len(t, results, 2)

	// Same recency, so similarity decides: the aligned vector wins.
	assert.Equal(t, int64(2), results[0].ID)
	assert.Equal(t, int64(1), results[1].ID)
	assert.Greater(t, results[0].Score, results[1].Score)
}

func TestSearch_ScoreFusion(t *testing.T) {
	nowMs := int64(1_700_000_000_000)
	age := int64(21 * 24 * 3600 * 1000) // one decay constant old
	store := &fakeStore{candidates: []types.DocumentWithVector{
		cand(1, "https://a.com/p", nowMs-age, []float32{1, 0}),
	}}
	engine := newTestEngine(store, &fixedEmbedder{vec: []float32{1, 0}}, nowMs)

	results, err := engine.Search(context.Background(), "query", 10)
	require.NoError(t, err)
	require.Len(t, results, 1)

	want := 0.85*1.0 + 0.15*math.Exp(-1)
	assert.InDelta(t, want, results[0].Score, 1e-9)
}

func TestSearch_NegativeSimilarityClampedToRecency(t *testing.T) {
	nowMs := int64(1_700_000_000_000)
	store := &fakeStore{candidates: []types.DocumentWithVector{
		cand(1, "https://a.com/opposite", nowMs, []float32{-1, 0}),
	}}
	engine := newTestEngine(store, &fixedEmbedder{vec: []float32{1, 0}}, nowMs)

	results, err := engine.Search(context.Background(), "query", 10)
	require.NoError(t, err)
	require.Len(t, results, 1)

	// dot is -1, clamped to 0; only the recency term remains.
	assert.InDelta(t, 0.15, results[0].Score, 1e-9)
}

func TestSearch_RecencyBreaksTies(t *testing.T) {
	nowMs := int64(1_700_000_000_000)
	week := int64(7 * 24 * 3600 * 1000)
	store := &fakeStore{candidates: []types.DocumentWithVector{
		cand(1, "https://a.com/old", nowMs-4*week, []float32{1, 0}),
		cand(2, "https://a.com/fresh", nowMs, []float32{1, 0}),
	}}
	engine := newTestEngine(store, &fixedEmbedder{vec: []float32{1, 0}}, nowMs)

	results, err := engine.Search(context.Background(), "query", 10)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, int64(2), results[0].ID)
}

func TestSearch_DedupesByURLKeepingBest(t *testing.T) {
	nowMs := int64(1_700_000_000_000)
	store := &fakeStore{candidates: []types.DocumentWithVector{
		cand(1, "https://a.com/page#intro", nowMs, []float32{0.2, 0}),
		cand(2, "https://a.com/page#usage", nowMs, []float32{0.9, 0}),
		cand(3, "https://a.com/other", nowMs, []float32{0.5, 0}),
	}}
	engine := newTestEngine(store, &fixedEmbedder{vec: []float32{1, 0}}, nowMs)

	results, err := engine.Search(context.Background(), "query", 10)
	require.NoError(t, err)
	require.Len(t, results, 2)

	// Both fragments collapse to one page; the higher-scoring one survives.
	assert.Equal(t, int64(2), results[0].ID)
	assert.Equal(t, int64(3), results[1].ID)
}

func TestSearch_TopKTruncation(t *testing.T) {
	nowMs := int64(1_700_000_000_000)
	var cands []types.DocumentWithVector
	for i := int64(1); i <= 30; i++ {
		cands = append(cands, cand(i, "https://a.com/p"+string(rune('a'+i)), nowMs, []float32{1, 0}))
	}
	store := &fakeStore{candidates: cands}
	engine := newTestEngine(store, &fixedEmbedder{vec: []float32{1, 0}}, nowMs)

	results, err := engine.Search(context.Background(), "query", 5)
	require.NoError(t, err)
	assert.Len(t, results, 5)

	// Non-positive topK falls back to the default.
	results, err = engine.Search(context.Background(), "query", 0)
	require.NoError(t, err)
	assert.Len(t, results, DefaultTopK)
}

func TestSearch_DegradesOnEmbedFailure(t *testing.T) {
	nowMs := int64(1_700_000_000_000)
	store := &fakeStore{candidates: []types.DocumentWithVector{
		cand(1, "https://a.com/new", nowMs, []float32{1, 0}),
		cand(2, "https://a.com/old", nowMs-1000, []float32{1, 0}),
	}}
	engine := newTestEngine(store, &fixedEmbedder{err: errors.New("backend down")}, nowMs)

	results, err := engine.Search(context.Background(), "query", 10)
	require.NoError(t, err)
	require.Len(t, results, 2)

	// Recency order, all scores zero.
	assert.Equal(t, int64(1), results[0].ID)
	assert.Equal(t, float64(0), results[0].Score)
	assert.Equal(t, float64(0), results[1].Score)
}

func TestSearch_DegradesWhenNoVectors(t *testing.T) {
	nowMs := int64(1_700_000_000_000)
	store := &fakeStore{candidates: []types.DocumentWithVector{
		cand(1, "https://a.com/a", nowMs, nil),
		cand(2, "https://a.com/b", nowMs-1000, nil),
	}}
	engine := newTestEngine(store, &fixedEmbedder{vec: []float32{1, 0}}, nowMs)

	results, err := engine.Search(context.Background(), "query", 10)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, float64(0), results[0].Score)
}

func TestSearch_VectorlessCandidatesExcludedFromScoredRanking(t *testing.T) {
	nowMs := int64(1_700_000_000_000)
	week := int64(7 * 24 * 3600 * 1000)
	store := &fakeStore{candidates: []types.DocumentWithVector{
		cand(1, "https://a.com/fresh-no-vec", nowMs, nil),
		cand(2, "https://a.com/relevant", nowMs-6*week, []float32{0.1, 0}),
	}}
	engine := newTestEngine(store, &fixedEmbedder{vec: []float32{1, 0}}, nowMs)

	results, err := engine.Search(context.Background(), "query", 10)
	require.NoError(t, err)
	require.Len(t, results, 1)

	// A fresh page that was never embedded must not outrank a weakly
	// matching one on its recency term; it only surfaces through the
	// degraded fallback when nothing at all carries a vector.
	assert.Equal(t, int64(2), results[0].ID)
}

func TestSearch_AppliesQueryFilters(t *testing.T) {
	nowMs := int64(1_700_000_000_000)
	store := &fakeStore{candidates: []types.DocumentWithVector{
		cand(1, "https://a.com/x", nowMs, []float32{1, 0}),
	}}
	engine := newTestEngine(store, &fixedEmbedder{vec: []float32{1, 0}}, nowMs)

	_, err := engine.Search(context.Background(), "site:example.com golang", 10)
	require.NoError(t, err)
	assert.Equal(t, "example.com", store.lastFilter.Site)
}

func TestSearch_ScanErrorPropagates(t *testing.T) {
	scanErr := errors.New("db closed")
	store := &fakeStore{scanErr: scanErr}
	engine := newTestEngine(store, &fixedEmbedder{vec: []float32{1, 0}}, 1_700_000_000_000)

	_, err := engine.Search(context.Background(), "query", 10)
	assert.ErrorIs(t, err, scanErr)
}

// preemptingEmbedder simulates a newer search arriving while this one is
// still embedding its query.
type preemptingEmbedder struct {
	engine *Engine
	vec    []float32
}

func (p *preemptingEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	p.engine.seq.Add(1)
	return p.vec, nil
}

func TestSearch_SupersededByNewerRequest(t *testing.T) {
	nowMs := int64(1_700_000_000_000)
	store := &fakeStore{candidates: []types.DocumentWithVector{
		cand(1, "https://a.com/x", nowMs, []float32{1, 0}),
	}}
	engine := newTestEngine(store, nil, nowMs)
	engine.embedder = &preemptingEmbedder{engine: engine, vec: []float32{1, 0}}

	_, err := engine.Search(context.Background(), "query", 10)
	assert.ErrorIs(t, err, types.ErrSuperseded)
}

func TestSearch_LatestRequestReturnsNormally(t *testing.T) {
	nowMs := int64(1_700_000_000_000)
	store := &fakeStore{candidates: []types.DocumentWithVector{
		cand(1, "https://a.com/x", nowMs, []float32{1, 0}),
	}}
	engine := newTestEngine(store, &fixedEmbedder{vec: []float32{1, 0}}, nowMs)

	for i := 0; i < 3; i++ {
		results, err := engine.Search(context.Background(), "query", 10)
		require.NoError(t, err)
		assert.NotEmpty(t, results)
	}
}

func TestRecencyBoost(t *testing.T) {
	nowMs := int64(1_700_000_000_000)
	day := int64(24 * 3600 * 1000)

	assert.InDelta(t, 1.0, recencyBoost(nowMs, nowMs), 1e-9)
	assert.InDelta(t, math.Exp(-1), recencyBoost(nowMs, nowMs-21*day), 1e-9)

	// Future timestamps clamp to zero age instead of boosting above 1.
	assert.InDelta(t, 1.0, recencyBoost(nowMs, nowMs+day), 1e-9)
}

func TestDot(t *testing.T) {
	assert.InDelta(t, 11.0, dot([]float32{1, 2, 3}, []float32{3, 4, 0}), 1e-9)

	// Mismatched lengths truncate to the shorter vector.
	assert.InDelta(t, 3.0, dot([]float32{1, 2, 3}, []float32{3}), 1e-9)
	assert.InDelta(t, 0.0, dot(nil, []float32{1}), 1e-9)
}
