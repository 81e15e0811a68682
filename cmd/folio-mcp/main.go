package main

import (
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/server"
	"github.com/ternarybob/arbor"
	arbor_models "github.com/ternarybob/arbor/models"

	"github.com/ternarybob/folio/internal/common"
	"github.com/ternarybob/folio/internal/services/analysis"
	"github.com/ternarybob/folio/internal/services/content"
	"github.com/ternarybob/folio/internal/services/events"
	"github.com/ternarybob/folio/internal/services/scanner"
	"github.com/ternarybob/folio/internal/storage/badger"
)

func main() {
	// Load configuration
	configPath := os.Getenv("FOLIO_CONFIG")
	if configPath == "" {
		configPath = "folio.toml"
	}

	config, err := common.LoadFromFile(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize minimal logger for MCP server (console only, no file output)
	logger := arbor.NewLogger().WithConsoleWriter(arbor_models.WriterConfiguration{
		Type:             arbor_models.LogWriterTypeConsole,
		TimeFormat:       "15:04:05",
		DisableTimestamp: false,
	}).WithLevelFromString("warn") // Minimal logging to avoid cluttering MCP stdio

	// Initialize storage
	storageManager, err := badger.NewManager(logger, &config.Storage.Badger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize storage")
	}
	defer storageManager.Close()

	// Initialize the catalog stack. The event bus has no subscribers here;
	// catalog writes from scan_content still publish into it.
	eventService := events.NewService(logger)
	scannerService := scanner.NewService(config, logger)
	contentService := content.NewService(
		storageManager.ContentStorage(),
		storageManager.RevisionStorage(),
		scannerService,
		eventService,
		logger,
	)
	analysisService := analysis.NewService(config, logger)

	// Create MCP server
	mcpServer := server.NewMCPServer(
		"folio",
		common.GetVersion(),
		server.WithToolCapabilities(true),
	)

	// Register catalog tools
	mcpServer.AddTool(createListPostsTool(), handleListPosts(contentService, logger))
	mcpServer.AddTool(createListPagesTool(), handleListPages(contentService, logger))
	mcpServer.AddTool(createGetContentTool(), handleGetContent(contentService, analysisService, logger))
	mcpServer.AddTool(createListRevisionsTool(), handleListRevisions(contentService, logger))

	// Register maintenance tools
	mcpServer.AddTool(createValidateContentTool(), handleValidateContent(contentService, logger))
	mcpServer.AddTool(createScanContentTool(), handleScanContent(contentService, logger))

	// Start server (blocks on stdio)
	if err := server.ServeStdio(mcpServer); err != nil {
		logger.Fatal().Err(err).Msg("MCP server failed")
	}
}
