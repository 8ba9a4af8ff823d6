package mcp

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mark3labs/mcp-go/server"

	"github.com/recollect-labs/recollect-mcp/internal/config"
	"github.com/recollect-labs/recollect-mcp/internal/embedder"
	"github.com/recollect-labs/recollect-mcp/internal/ingest"
	"github.com/recollect-labs/recollect-mcp/internal/ranker"
	"github.com/recollect-labs/recollect-mcp/internal/storage"
)

const (
	// ServerName is the MCP server name
	ServerName = "recollect-mcp"
	// ServerVersion is the current server version
	ServerVersion = "1.0.0"
	// DefaultDataDir is the default location for the database and settings
	DefaultDataDir = "~/.recollect"
)

// Options configures optional server collaborators.
type Options struct {
	// History supplies browsing-history records for backfill. When nil,
	// backfill_history only accepts inline records.
	History ingest.HistorySource
}

// Server wraps the MCP server with application dependencies
type Server struct {
	mcp      *server.MCPServer
	store    storage.Store
	settings *config.Store
	embedder *embedder.Coordinator
	pipeline *ingest.Pipeline
	engine   *ranker.Engine
	history  ingest.HistorySource
}

// NewServer creates a new MCP server instance rooted at dataDir.
func NewServer(dataDir string, opts Options) (*Server, error) {
	if dataDir == "" || dataDir == DefaultDataDir {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".recollect")
	}

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	store, err := storage.NewSQLiteStore(filepath.Join(dataDir, "recollect.db"))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	settings, err := config.NewStore(dataDir)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to initialize settings: %w", err)
	}

	emb, err := newEmbedder(settings)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to initialize embedder: %w", err)
	}

	s := &Server{
		mcp:      server.NewMCPServer(ServerName, ServerVersion),
		store:    store,
		settings: settings,
		embedder: emb,
		pipeline: ingest.New(store, emb, settings),
		engine:   ranker.New(store, emb),
		history:  opts.History,
	}

	s.registerTools()
	return s, nil
}

// newEmbedder builds the coordinator: explicit env config wins, then the
// persisted settings, then the local fallback backend.
func newEmbedder(settings *config.Store) (*embedder.Coordinator, error) {
	if os.Getenv(embedder.EnvProvider) != "" || os.Getenv(embedder.EnvOllamaURL) != "" {
		return embedder.NewFromEnv()
	}
	es := settings.Get().Embedding
	return embedder.New(embedder.Config{
		Provider: es.Provider,
		BaseURL:  es.BaseURL,
		Model:    es.Model,
	})
}

// Serve starts the MCP server on stdio and blocks until shutdown. The
// embedding backend is warmed in the background so the first search does
// not pay the model-load cost.
func (s *Server) Serve(ctx context.Context) error {
	defer func() {
		_ = s.embedder.Close()
		_ = s.store.Close()
	}()

	go s.embedder.Warmup(ctx)

	return server.ServeStdio(s.mcp)
}

// registerTools registers all MCP tools
func (s *Server) registerTools() {
	s.mcp.AddTool(capturePageTool(), s.handleCapturePage)
	s.mcp.AddTool(searchHistoryTool(), s.handleSearchHistory)
	s.mcp.AddTool(backfillHistoryTool(), s.handleBackfillHistory)
	s.mcp.AddTool(reembedRecentTool(), s.handleReembedRecent)
	s.mcp.AddTool(getStatsTool(), s.handleGetStats)
	s.mcp.AddTool(clearHistoryTool(), s.handleClearHistory)
	s.mcp.AddTool(getSettingsTool(), s.handleGetSettings)
	s.mcp.AddTool(saveSettingsTool(), s.handleSaveSettings)
}
