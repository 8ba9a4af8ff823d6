package mcp

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recollect-labs/recollect-mcp/pkg/types"
)

func TestGetIntDefault(t *testing.T) {
	args := map[string]interface{}{
		"float":  float64(42), // JSON numbers decode as float64
		"int":    7,
		"string": "nope",
	}

	assert.Equal(t, 42, getIntDefault(args, "float", 0))
	assert.Equal(t, 7, getIntDefault(args, "int", 0))
	assert.Equal(t, 5, getIntDefault(args, "string", 5))
	assert.Equal(t, 5, getIntDefault(args, "missing", 5))
}

func TestGetBoolDefault(t *testing.T) {
	args := map[string]interface{}{"set": false}

	assert.False(t, getBoolDefault(args, "set", true))
	assert.True(t, getBoolDefault(args, "missing", true))
}

func TestGetStringDefault(t *testing.T) {
	args := map[string]interface{}{"s": "value", "n": 3}

	assert.Equal(t, "value", getStringDefault(args, "s", "d"))
	assert.Equal(t, "d", getStringDefault(args, "n", "d"))
	assert.Equal(t, "d", getStringDefault(args, "missing", "d"))
}

func TestFormatJSON(t *testing.T) {
	out := formatJSON(map[string]interface{}{"ok": true, "count": 2})

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, true, decoded["ok"])
	assert.Equal(t, float64(2), decoded["count"])
}

func TestMCPError(t *testing.T) {
	err := newMCPError(ErrorCodeInvalidParams, "bad input", nil)
	assert.Contains(t, err.Error(), "-32602")
	assert.Contains(t, err.Error(), "bad input")
}

func TestSearchResponse(t *testing.T) {
	results := []types.ScoredDocument{
		{
			Document: types.Document{ID: 1, URL: "https://a.com", Title: "A", Site: "a.com", Timestamp: 1000, Excerpt: "x"},
			Score:    0.9,
		},
	}

	response := searchResponse(results, false)
	assert.Equal(t, 1, response["count"])
	assert.NotContains(t, response, "superseded")

	items, ok := response["results"].([]map[string]interface{})
	require.True(t, ok)
	require.Len(t, items, 1)
	assert.Equal(t, int64(1), items[0]["id"])
	assert.Equal(t, 0.9, items[0]["score"])

	superseded := searchResponse(nil, true)
	assert.Equal(t, true, superseded["superseded"])
	assert.Equal(t, 0, superseded["count"])
}

func TestInlineHistory(t *testing.T) {
	raw := []interface{}{
		map[string]interface{}{"url": "https://a.com", "title": "A", "last_visit": float64(5000)},
		map[string]interface{}{"url": "https://b.com", "title": "B", "last_visit": float64(50)},
		map[string]interface{}{"url": "https://c.com", "title": "C"},
		"not a record",
	}

	records, err := inlineHistory(raw).Visits(context.Background(), 1000, 10_000, 10)
	require.NoError(t, err)
	require.Len(t, records, 2)

	// The in-window record survives; the out-of-window one is dropped; a
	// record without a timestamp passes through.
	assert.Equal(t, "https://a.com", records[0].URL)
	assert.Equal(t, int64(5000), records[0].LastVisit)
	assert.Equal(t, "https://c.com", records[1].URL)
}

func TestInlineHistory_MaxCap(t *testing.T) {
	raw := make([]interface{}, 5)
	for i := range raw {
		raw[i] = map[string]interface{}{"url": "https://a.com"}
	}

	records, err := inlineHistory(raw).Visits(context.Background(), 0, 10_000, 2)
	require.NoError(t, err)
	assert.Len(t, records, 2)
}
