package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/recollect-labs/recollect-mcp/internal/ingest"
	"github.com/recollect-labs/recollect-mcp/pkg/types"
)

// MCP error codes
const (
	ErrorCodeInvalidParams   = -32602 // Invalid method parameters
	ErrorCodeInternalError   = -32603 // Internal JSON-RPC error
	ErrorCodeNoHistorySource = -32001 // Backfill requested without a history source
)

// recentFallbackLimit is how many documents an empty search returns.
const recentFallbackLimit = 30

// handleCapturePage handles the capture_page tool invocation
func (s *Server) handleCapturePage(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	pageURL, _ := args["url"].(string)
	title, _ := args["title"].(string)
	site := getStringDefault(args, "site", "")
	if site == "" {
		if u, err := url.Parse(pageURL); err == nil {
			site = u.Hostname()
		}
	}
	ts := int64(getIntDefault(args, "ts", 0))
	if ts == 0 {
		ts = time.Now().UnixMilli()
	}

	result, err := s.pipeline.Capture(ctx, types.CaptureInput{
		URL:       pageURL,
		Title:     title,
		Site:      site,
		Timestamp: ts,
		Text:      getStringDefault(args, "text", ""),
	})
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "capture failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	response := map[string]interface{}{
		"ok": !result.Skipped,
	}
	if result.Skipped {
		response["skipped"] = true
		response["reason"] = result.Reason
	} else {
		response["id"] = result.ID
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleSearchHistory handles the search_history tool invocation. An empty
// query falls back to the most recent documents; a degraded or empty result
// list is a normal response, never a protocol error.
func (s *Server) handleSearchHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, _ := request.Params.Arguments.(map[string]interface{})

	query := strings.TrimSpace(getStringDefault(args, "query", ""))
	topK := getIntDefault(args, "top_k", 0)

	if query == "" {
		docs, err := s.store.RecentDocuments(ctx, recentFallbackLimit)
		if err != nil {
			return nil, newMCPError(ErrorCodeInternalError, "failed to list recent documents", map[string]interface{}{
				"error": err.Error(),
			})
		}
		results := make([]types.ScoredDocument, len(docs))
		for i, d := range docs {
			results[i] = types.ScoredDocument{Document: d}
		}
		return mcp.NewToolResultText(formatJSON(searchResponse(results, false))), nil
	}

	results, err := s.engine.Search(ctx, query, topK)
	if errors.Is(err, types.ErrSuperseded) {
		return mcp.NewToolResultText(formatJSON(searchResponse(nil, true))), nil
	}
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "search failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	return mcp.NewToolResultText(formatJSON(searchResponse(results, false))), nil
}

// handleBackfillHistory handles the backfill_history tool invocation
func (s *Server) handleBackfillHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, _ := request.Params.Arguments.(map[string]interface{})

	days := getIntDefault(args, "days", 0)
	embed := getBoolDefault(args, "embed", true)

	source := s.history
	if records, ok := args["records"].([]interface{}); ok {
		source = inlineHistory(records)
	}
	if source == nil {
		return nil, newMCPError(ErrorCodeNoHistorySource, "no history source configured; pass inline records", nil)
	}

	result, err := s.pipeline.Backfill(ctx, source, days, embed)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "backfill failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	return mcp.NewToolResultText(formatJSON(map[string]interface{}{
		"ok":       true,
		"days":     result.Days,
		"inserted": result.Inserted,
		"embedded": result.Embedded,
		"skipped":  result.Skipped,
	})), nil
}

// handleReembedRecent handles the reembed_recent tool invocation
func (s *Server) handleReembedRecent(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, _ := request.Params.Arguments.(map[string]interface{})

	result, err := s.pipeline.ReembedRecent(ctx, getIntDefault(args, "n", 0))
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "reembed failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	stats, err := s.store.Stats(ctx)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to read stats", map[string]interface{}{
			"error": err.Error(),
		})
	}

	return mcp.NewToolResultText(formatJSON(map[string]interface{}{
		"ok":     true,
		"saved":  result.Saved,
		"empty":  result.Empty,
		"errors": result.Errors,
		"vecs":   stats.VectorCount,
	})), nil
}

// handleGetStats handles the get_stats tool invocation
func (s *Server) handleGetStats(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	stats, err := s.store.Stats(ctx)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to read stats", map[string]interface{}{
			"error": err.Error(),
		})
	}

	return mcp.NewToolResultText(formatJSON(map[string]interface{}{
		"ok":         true,
		"docs_count": stats.DocumentCount,
		"vecs_count": stats.VectorCount,
	})), nil
}

// handleClearHistory handles the clear_history tool invocation
func (s *Server) handleClearHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if err := s.store.Clear(ctx); err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to clear stores", map[string]interface{}{
			"error": err.Error(),
		})
	}
	return mcp.NewToolResultText(formatJSON(map[string]interface{}{"ok": true})), nil
}

// handleGetSettings handles the get_settings tool invocation
func (s *Server) handleGetSettings(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	settings := s.settings.Get()
	return mcp.NewToolResultText(formatJSON(map[string]interface{}{
		"excluded":      settings.Excluded,
		"backfill_days": settings.BackfillDays,
	})), nil
}

// handleSaveSettings handles the save_settings tool invocation. Only the
// provided keys change; absent keys keep their current values.
func (s *Server) handleSaveSettings(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	settings := s.settings.Get()
	if raw, ok := args["excluded"].([]interface{}); ok {
		excluded := make([]string, 0, len(raw))
		for _, v := range raw {
			if pat, ok := v.(string); ok {
				excluded = append(excluded, pat)
			}
		}
		settings.Excluded = excluded
	}
	if days := getIntDefault(args, "backfill_days", 0); days > 0 {
		settings.BackfillDays = days
	}

	if err := s.settings.Save(settings); err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to save settings", map[string]interface{}{
			"error": err.Error(),
		})
	}

	return mcp.NewToolResultText(formatJSON(map[string]interface{}{"ok": true})), nil
}

// searchResponse formats ranked documents for the wire.
func searchResponse(results []types.ScoredDocument, superseded bool) map[string]interface{} {
	items := make([]map[string]interface{}, len(results))
	for i, r := range results {
		items[i] = map[string]interface{}{
			"id":      r.ID,
			"url":     r.URL,
			"title":   r.Title,
			"site":    r.Site,
			"ts":      r.Timestamp,
			"excerpt": r.Excerpt,
			"score":   r.Score,
		}
	}
	response := map[string]interface{}{
		"results": items,
		"count":   len(items),
	}
	if superseded {
		response["superseded"] = true
	}
	return response
}

// inlineHistory wraps tool-call records as a HistorySource.
type inlineHistory []interface{}

func (h inlineHistory) Visits(ctx context.Context, startMs, endMs int64, max int) ([]ingest.HistoryRecord, error) {
	records := make([]ingest.HistoryRecord, 0, len(h))
	for _, raw := range h {
		m, ok := raw.(map[string]interface{})
		if !ok {
			continue
		}
		rec := ingest.HistoryRecord{}
		rec.URL, _ = m["url"].(string)
		rec.Title, _ = m["title"].(string)
		if v, ok := m["last_visit"].(float64); ok {
			rec.LastVisit = int64(v)
		}
		if rec.LastVisit != 0 && (rec.LastVisit < startMs || rec.LastVisit > endMs) {
			continue
		}
		records = append(records, rec)
		if len(records) >= max {
			break
		}
	}
	return records, nil
}

var _ ingest.HistorySource = (inlineHistory)(nil)

// Helper functions

// newMCPError creates a properly formatted MCP error
func newMCPError(code int, message string, data interface{}) error {
	return &MCPError{Code: code, Message: message, Data: data}
}

// MCPError represents an MCP protocol error
type MCPError struct {
	Code    int
	Message string
	Data    interface{}
}

func (e *MCPError) Error() string {
	return fmt.Sprintf("MCP error %d: %s", e.Code, e.Message)
}

// formatJSON formats a map as indented JSON
func formatJSON(data map[string]interface{}) string {
	bytes, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", data)
	}
	return string(bytes)
}

// getBoolDefault extracts a boolean parameter with a default value
func getBoolDefault(args map[string]interface{}, key string, defaultValue bool) bool {
	if val, ok := args[key].(bool); ok {
		return val
	}
	return defaultValue
}

// getIntDefault extracts an integer parameter with a default value
func getIntDefault(args map[string]interface{}, key string, defaultValue int) int {
	switch v := args[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	}
	return defaultValue
}

// getStringDefault extracts a string parameter with a default value
func getStringDefault(args map[string]interface{}, key string, defaultValue string) string {
	if val, ok := args[key].(string); ok {
		return val
	}
	return defaultValue
}
