// Package mcp exposes the Recollect pipeline over the Model Context
// Protocol on stdio.
//
// The tool surface mirrors the message contract of the capture/search
// system: capture_page ingests one page view, search_history answers ranked
// queries (falling back to recent documents for an empty query),
// backfill_history replays a window of browsing history, reembed_recent
// regenerates vectors, and get_stats / clear_history / get_settings /
// save_settings manage the stores and user configuration.
//
// Handlers never panic and never surface validation problems as protocol
// failures: a rejected capture or an empty search result is a structured
// tool response.
package mcp
