// Package ranker fuses semantic similarity with recency to rank browsing
// history against a natural-language query.
//
// A search parses the query into structural filters, derives one query
// vector, pulls filtered candidates from the store, and scores every
// candidate that carries a vector:
//
//	score = 0.85*max(0, dot(query, doc)) + 0.15*exp(-daysSinceCapture/21)
//
// Candidates without a vector never enter the scored ranking; they only
// appear through the degraded fallback.
//
// Results are deduplicated by fragment-stripped URL (best score wins) and
// returned in descending score order. When no query vector or no candidate
// vectors are available the engine degrades to recency order with score 0
// instead of failing.
//
// Overlapping searches follow latest-request-wins: each request takes a
// monotonically increasing sequence number, and a result that finishes
// after a newer request was issued is discarded with ErrSuperseded.
package ranker
