// Package ingest feeds page-view records into the document store and
// schedules their embeddings.
//
// Three entry points share one pipeline: Capture handles a single live
// page view, Backfill replays a window of browsing history from an external
// source, and ReembedRecent regenerates vectors for the newest documents.
// All three apply the same rules: http/https URLs only, exclusion patterns
// consulted before insert, duplicate visits inside the dedup window skipped,
// and per-item embedding failures isolated and counted rather than aborting
// the batch. A document the store failed to persist is reported to the
// caller, never dropped silently.
package ingest
