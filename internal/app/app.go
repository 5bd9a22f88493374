package app

import (
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/atlasdash/internal/common"
	"github.com/ternarybob/atlasdash/internal/gateway"
	"github.com/ternarybob/atlasdash/internal/handlers"
	"github.com/ternarybob/atlasdash/internal/interfaces"
	"github.com/ternarybob/atlasdash/internal/models"
	"github.com/ternarybob/atlasdash/internal/services/auth"
	"github.com/ternarybob/atlasdash/internal/services/data"
	"github.com/ternarybob/atlasdash/internal/services/notify"
	"github.com/ternarybob/atlasdash/internal/services/oauth"
	"github.com/ternarybob/atlasdash/internal/services/status"
	"github.com/ternarybob/atlasdash/internal/storage/badger"
)

// App holds all application components and dependencies
type App struct {
	Config *common.Config
	Logger arbor.ILogger

	// Storage
	DB               *badger.BadgerDB
	HandshakeStorage interfaces.HandshakeStorage
	SessionStorage   interfaces.SessionStorage

	// Backend gateway
	Gateway *gateway.Client

	// Services
	NotifyService     *notify.Service
	AuthService       *auth.Service
	OAuthCoordinator  *oauth.Coordinator
	JiraDataset       *data.JiraDataset
	ConfluenceDataset *data.ConfluenceDataset
	StatusService     *status.Service

	// HTTP handlers
	AuthHandler         *handlers.AuthHandler
	JiraHandler         *handlers.JiraHandler
	ConfluenceHandler   *handlers.ConfluenceHandler
	NotificationHandler *handlers.NotificationHandler
	StatusHandler       *handlers.StatusHandler
	WSHandler           *handlers.WebSocketHandler
}

// New creates and wires all application components.
func New(config *common.Config, logger arbor.ILogger) (*App, error) {
	a := &App{
		Config: config,
		Logger: logger,
	}

	db, err := badger.NewBadgerDB(logger, &config.Storage.Badger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	a.DB = db
	a.HandshakeStorage = badger.NewHandshakeStorage(db, logger)
	a.SessionStorage = badger.NewSessionStorage(db, logger)

	client, err := gateway.NewClient(&config.Backend, logger)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize backend gateway: %w", err)
	}
	a.Gateway = client

	a.NotifyService = notify.NewService(config.Notifications.DefaultDurationMs, logger)
	a.AuthService = auth.NewService(
		client,
		a.HandshakeStorage,
		a.SessionStorage,
		a.NotifyService,
		config.Session.MirrorTTLDuration(),
		logger,
	)
	a.OAuthCoordinator = oauth.NewCoordinator(a.AuthService, a.HandshakeStorage, logger)
	a.JiraDataset = data.NewJiraDataset(client, logger)
	a.ConfluenceDataset = data.NewConfluenceDataset(client, logger)

	if config.Validation.Enabled {
		a.StatusService = status.NewService(client, a.AuthService, a.NotifyService, config.Validation.Schedule, logger)
		if err := a.StatusService.Start(); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to start connection validation: %w", err)
		}
	}

	a.AuthHandler = handlers.NewAuthHandler(a.AuthService, a.OAuthCoordinator, map[models.ServiceType]handlers.DatasetResetter{
		models.ServiceJira:       a.JiraDataset,
		models.ServiceConfluence: a.ConfluenceDataset,
	}, logger)
	a.JiraHandler = handlers.NewJiraHandler(a.JiraDataset, logger)
	a.ConfluenceHandler = handlers.NewConfluenceHandler(a.ConfluenceDataset, logger)
	a.NotificationHandler = handlers.NewNotificationHandler(a.NotifyService, logger)
	a.StatusHandler = handlers.NewStatusHandler(client, a.StatusService, logger)
	a.WSHandler = handlers.NewWebSocketHandler(a.NotifyService, a.AuthService, logger)

	logger.Info().
		Str("backend", config.Backend.BaseURL).
		Str("storage", config.Storage.Badger.Path).
		Msg("Application initialized")

	return a, nil
}

// Close shuts down application components in reverse order.
func (a *App) Close() {
	if a.WSHandler != nil {
		a.WSHandler.Close()
	}
	if a.StatusService != nil {
		a.StatusService.Stop()
	}
	if a.DB != nil {
		if err := a.DB.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to close database")
		}
	}
	a.Logger.Info().Msg("Application closed")
}
