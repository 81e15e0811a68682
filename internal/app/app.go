package app

import (
	"fmt"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/folio/internal/common"
	"github.com/ternarybob/folio/internal/connectors/github"
	"github.com/ternarybob/folio/internal/handlers"
	"github.com/ternarybob/folio/internal/interfaces"
	"github.com/ternarybob/folio/internal/logs"
	"github.com/ternarybob/folio/internal/services/analysis"
	"github.com/ternarybob/folio/internal/services/content"
	"github.com/ternarybob/folio/internal/services/events"
	"github.com/ternarybob/folio/internal/services/scanner"
	"github.com/ternarybob/folio/internal/services/scheduler"
	"github.com/ternarybob/folio/internal/services/transform"
	"github.com/ternarybob/folio/internal/storage/badger"
)

// App holds all application components and dependencies
type App struct {
	Config         *common.Config
	Logger         arbor.ILogger
	StorageManager interfaces.StorageManager

	// Catalog services
	EventService     interfaces.EventService
	ScannerService   interfaces.ScannerService
	ContentService   interfaces.ContentService
	AnalysisService  interfaces.AnalysisService
	TransformService interfaces.TransformService
	SchedulerService interfaces.SchedulerService

	// Optional content sources. Nil when not configured.
	GitHubConnector interfaces.GitHubConnector

	// Log consumer for the arbor context channel
	LogConsumer *logs.Consumer

	// HTTP handlers
	APIHandler     *handlers.APIHandler
	WSHandler      *handlers.WebSocketHandler
	ContentHandler *handlers.ContentHandler
	ScanHandler    *handlers.ScanHandler
	ImportHandler  *handlers.ImportHandler
	SyncHandler    *handlers.SyncHandler
}

// New initializes the application with all dependencies
func New(cfg *common.Config, logger arbor.ILogger) (*App, error) {
	app := &App{
		Config: cfg,
		Logger: logger,
	}

	// Initialize database
	if err := app.initDatabase(); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	// WebSocket handler is created early so the log consumer can broadcast
	// through it before the rest of the services come up. EventService is
	// needed for WebSocketHandler initialization.
	app.EventService = events.NewService(app.Logger)
	if err := events.SubscribeLoggerToAllEvents(app.EventService, app.Logger); err != nil {
		app.Logger.Warn().Err(err).Msg("Failed to subscribe event logger")
	}
	app.WSHandler = handlers.NewWebSocketHandler(app.EventService, app.Logger, &app.Config.WebSocket)

	// Log consumer drains batches from the arbor context channel and pushes
	// them to connected WebSocket clients
	logConsumer := logs.NewConsumer(app.WSHandler, app.Logger, &app.Config.WebSocket)
	if err := logConsumer.Start(); err != nil {
		return nil, fmt.Errorf("failed to start log consumer: %w", err)
	}
	app.LogConsumer = logConsumer

	// Derived loggers write their batches onto the consumer's channel
	app.Logger.SetChannel("context", logConsumer.GetChannel())

	// Initialize services
	if err := app.initServices(); err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	// Initialize handlers
	if err := app.initHandlers(); err != nil {
		return nil, fmt.Errorf("failed to initialize handlers: %w", err)
	}

	logger.Info().
		Str("posts_dir", cfg.Content.PostsDir).
		Str("pages_dir", cfg.Content.PagesDir).
		Bool("scan_enabled", cfg.Scan.Enabled).
		Msg("Application initialization complete")

	return app, nil
}

// initDatabase initializes the storage layer (Badger)
func (a *App) initDatabase() error {
	manager, err := badger.NewManager(a.Logger, &a.Config.Storage.Badger)
	if err != nil {
		return fmt.Errorf("failed to create storage manager: %w", err)
	}
	a.StorageManager = manager

	a.Logger.Debug().
		Str("path", a.Config.Storage.Badger.Path).
		Msg("Storage initialized")

	return nil
}

// initServices initializes the catalog services in dependency order
func (a *App) initServices() error {
	a.ScannerService = scanner.NewService(a.Config, a.Logger)

	a.ContentService = content.NewService(
		a.StorageManager.ContentStorage(),
		a.StorageManager.RevisionStorage(),
		a.ScannerService,
		a.EventService,
		a.Logger,
	)

	a.AnalysisService = analysis.NewService(a.Config, a.Logger)
	a.TransformService = transform.NewService(a.Logger)

	// Scheduler owns the periodic rescan job
	a.SchedulerService = scheduler.NewService(a.ContentService, a.Logger)
	if a.Config.Scan.Enabled {
		if err := a.SchedulerService.Start(a.Config.Scan.Schedule); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to start scheduler service")
		}
	} else {
		a.Logger.Debug().Msg("Scheduled scanning disabled")
	}

	// GitHub connector is optional; the sync endpoint reports it as
	// unconfigured when absent. Assign only on success so the interface
	// field stays nil otherwise.
	if a.Config.GitHub.Owner != "" && a.Config.GitHub.Repo != "" {
		connector, err := github.NewConnector(&a.Config.GitHub, a.Logger)
		if err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to initialize GitHub connector")
		} else {
			a.GitHubConnector = connector
			a.Logger.Info().
				Str("owner", a.Config.GitHub.Owner).
				Str("repo", a.Config.GitHub.Repo).
				Msg("GitHub connector initialized")
		}
	}

	a.Logger.Debug().Msg("Services initialized")
	return nil
}

// initHandlers initializes all HTTP handlers
func (a *App) initHandlers() error {
	a.APIHandler = handlers.NewAPIHandler()
	a.ContentHandler = handlers.NewContentHandler(a.ContentService, a.AnalysisService, a.Logger)
	a.ScanHandler = handlers.NewScanHandler(a.SchedulerService, a.ContentService)
	a.ImportHandler = handlers.NewImportHandler(a.TransformService, a.ContentService, a.Config, a.Logger)
	a.SyncHandler = handlers.NewSyncHandler(a.GitHubConnector, a.ContentService, a.Config, a.Logger)

	// WebSocket handler was created before the services existed; give it
	// the catalog so status frames carry real counts
	a.WSHandler.SetContentService(a.ContentService)

	a.Logger.Debug().Msg("Handlers initialized")
	return nil
}

// Close gracefully shuts down all application components
func (a *App) Close() error {
	// Stop scheduler service
	if a.SchedulerService != nil {
		if err := a.SchedulerService.Stop(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to stop scheduler service")
		}
	}

	// Stop log consumer
	if a.LogConsumer != nil {
		if err := a.LogConsumer.Stop(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to stop log consumer")
		} else {
			a.Logger.Info().Msg("Log consumer stopped")
		}
	}

	// Close event service
	if a.EventService != nil {
		if err := a.EventService.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to close event service")
		}
	}

	// Close storage last; everything above may still flush writes
	if a.StorageManager != nil {
		if err := a.StorageManager.Close(); err != nil {
			return fmt.Errorf("failed to close storage: %w", err)
		}
		a.Logger.Info().Msg("Storage closed")
	}

	return nil
}
