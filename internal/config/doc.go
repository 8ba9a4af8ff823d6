// Package config persists user settings for the Recollect server in a TOML
// file: exclusion patterns consulted before ingestion, the default backfill
// window, and the embedding backend selection.
//
// Exclusion patterns are regular expressions matched case-insensitively
// against both the page host and the full URL. A pattern that fails to
// compile degrades to a literal substring match instead of being dropped.
package config
