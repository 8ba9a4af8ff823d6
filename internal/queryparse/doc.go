// Package queryparse turns a free-text query into a structured filter.
//
// Three optional tokens are recognized anywhere in the query, separated by
// whitespace and matched case-insensitively:
//
//	site:<value>          substring match against the document site
//	after:<YYYY-MM-DD>    inclusive lower bound, start of that local day
//	before:<YYYY-MM-DD>   inclusive upper bound, end of that local day
//
// Matched tokens are removed from the query; whatever text remains becomes
// the residual used to derive the query vector. When a token appears more
// than once the last occurrence wins, silently.
package queryparse
