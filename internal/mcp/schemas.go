package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// capturePageTool returns the tool definition for capture_page
func capturePageTool() mcp.Tool {
	return mcp.Tool{
		Name:        "capture_page",
		Description: "Capture one visited page into the searchable history index",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"url": map[string]interface{}{
					"type":        "string",
					"description": "Page URL (http or https)",
				},
				"title": map[string]interface{}{
					"type":        "string",
					"description": "Page title",
				},
				"site": map[string]interface{}{
					"type":        "string",
					"description": "Page hostname; derived from url when omitted",
				},
				"ts": map[string]interface{}{
					"type":        "integer",
					"description": "Capture time in epoch milliseconds; defaults to now",
				},
				"text": map[string]interface{}{
					"type":        "string",
					"description": "Visible page text used for the excerpt and embedding",
				},
			},
			Required: []string{"url", "title"},
		},
	}
}

// searchHistoryTool returns the tool definition for search_history
func searchHistoryTool() mcp.Tool {
	return mcp.Tool{
		Name:        "search_history",
		Description: "Search captured browsing history with a natural-language query. Supports site:, before:YYYY-MM-DD, and after:YYYY-MM-DD filter tokens. An empty query returns recent pages.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"query": map[string]interface{}{
					"type":        "string",
					"description": "Search query; may embed site:/before:/after: tokens",
				},
				"top_k": map[string]interface{}{
					"type":        "integer",
					"description": "Maximum number of results (default 20)",
					"default":     20,
					"minimum":     1,
					"maximum":     100,
				},
			},
		},
	}
}

// backfillHistoryTool returns the tool definition for backfill_history
func backfillHistoryTool() mcp.Tool {
	return mcp.Tool{
		Name:        "backfill_history",
		Description: "Index a window of past browsing history through the capture pipeline",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"days": map[string]interface{}{
					"type":        "integer",
					"description": "History window in days; defaults to the configured backfill window",
				},
				"embed": map[string]interface{}{
					"type":        "boolean",
					"description": "If true, fetch page text and derive vectors for inserted documents",
					"default":     true,
				},
				"records": map[string]interface{}{
					"type":        "array",
					"description": "Inline history records to backfill when no history source is configured",
					"items": map[string]interface{}{
						"type": "object",
						"properties": map[string]interface{}{
							"url":        map[string]interface{}{"type": "string"},
							"title":      map[string]interface{}{"type": "string"},
							"last_visit": map[string]interface{}{"type": "integer"},
						},
						"required": []string{"url"},
					},
				},
			},
		},
	}
}

// reembedRecentTool returns the tool definition for reembed_recent
func reembedRecentTool() mcp.Tool {
	return mcp.Tool{
		Name:        "reembed_recent",
		Description: "Regenerate embedding vectors for the most recently captured documents",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"n": map[string]interface{}{
					"type":        "integer",
					"description": "Number of recent documents to re-embed (default 300, max 2000)",
					"default":     300,
				},
			},
		},
	}
}

// getStatsTool returns the tool definition for get_stats
func getStatsTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_stats",
		Description: "Report document and vector counts for the history index",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}
}

// clearHistoryTool returns the tool definition for clear_history
func clearHistoryTool() mcp.Tool {
	return mcp.Tool{
		Name:        "clear_history",
		Description: "Delete every captured document and vector",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}
}

// getSettingsTool returns the tool definition for get_settings
func getSettingsTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_settings",
		Description: "Read the current capture settings",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}
}

// saveSettingsTool returns the tool definition for save_settings
func saveSettingsTool() mcp.Tool {
	return mcp.Tool{
		Name:        "save_settings",
		Description: "Update capture settings (exclusion patterns, backfill window)",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"excluded": map[string]interface{}{
					"type":        "array",
					"description": "Patterns matched against page host and URL; matching pages are never captured",
					"items":       map[string]interface{}{"type": "string"},
				},
				"backfill_days": map[string]interface{}{
					"type":        "integer",
					"description": "Default history window for backfill runs",
					"minimum":     1,
				},
			},
		},
	}
}
