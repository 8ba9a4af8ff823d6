// Package types provides shared type definitions for the Recollect MCP server.
//
// This package defines domain types used across multiple components of
// Recollect, including captured documents, scored search results, and the
// result records returned by the ingestion pipeline.
//
// # Core Types
//
// Document represents a captured page visit:
//
//	doc := &types.Document{
//	    URL:       "https://example.com/post?a=1",
//	    Title:     "Example Post",
//	    Site:      "example.com",
//	    Timestamp: time.Now().UnixMilli(),
//	    Excerpt:   "First few hundred characters of visible text...",
//	}
//
// ScoredDocument pairs a document with its fused relevance score:
//
//	result := types.ScoredDocument{
//	    Document: *doc,
//	    Score:    0.92,
//	}
//
// Scores combine cosine similarity against the query vector with an
// exponentially decaying recency boost. A score of zero indicates the
// degraded path where no query vector was available and results are
// ordered by recency alone.
package types
