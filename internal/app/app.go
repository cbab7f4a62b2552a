package app

import (
	"context"
	"fmt"

	"github.com/bobmcallan/finance-portal/internal/cache"
	"github.com/bobmcallan/finance-portal/internal/client"
	"github.com/bobmcallan/finance-portal/internal/common"
	"github.com/bobmcallan/finance-portal/internal/config"
	"github.com/bobmcallan/finance-portal/internal/handlers"
	"github.com/bobmcallan/finance-portal/internal/interfaces"
	"github.com/bobmcallan/finance-portal/internal/mcp"
	"github.com/bobmcallan/finance-portal/internal/request"
	"github.com/bobmcallan/finance-portal/internal/storage"
	"github.com/bobmcallan/finance-portal/internal/store"
	"github.com/bobmcallan/finance-portal/internal/symbols"
)

// App holds all application components and dependencies.
type App struct {
	Config *config.Config
	Logger *common.Logger

	Storage       interfaces.StorageManager
	Resolver      *symbols.Resolver
	AssetClient   *client.AssetClient
	FinanceClient *client.FinanceClient
	Store         *store.Store

	// HTTP handlers
	HealthHandler    *handlers.HealthHandler
	VersionHandler   *handlers.VersionHandler
	StateHandler     *handlers.StateHandler
	WatchlistHandler *handlers.WatchlistHandler
	QuoteHandler     *handlers.QuoteHandler
	FinanceHandler   *handlers.FinanceHandler
	MCPHandler       *mcp.Handler
}

// New initializes the application with all dependencies.
func New(cfg *config.Config, logger *common.Logger) (*App, error) {
	a := &App{
		Config: cfg,
		Logger: logger,
	}

	sm, err := storage.NewStorageManager(logger, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	a.Storage = sm

	a.initStore()
	a.initHandlers()

	logger.Info().
		Str("assets_url", cfg.API.AssetsURL).
		Str("finance_url", cfg.API.FinanceURL).
		Bool("mcp", a.MCPHandler != nil).
		Msg("application initialization complete")

	return a, nil
}

// initStore builds the backend clients and the state store.
func (a *App) initStore() {
	clientOpts := []client.Option{
		client.WithTimeout(a.Config.API.GetTimeout()),
		client.WithLogger(a.Logger),
	}

	a.Resolver = symbols.NewResolver(a.Logger)
	builder := request.NewBuilder(a.Resolver, a.Config.API.Market)
	a.AssetClient = client.NewAssetClient(a.Config.API.AssetsURL, builder, clientOpts...)
	a.FinanceClient = client.NewFinanceClient(a.Config.API.FinanceURL, clientOpts...)

	a.Store = store.New(context.Background(), store.Deps{
		AssetAPI:   a.AssetClient,
		FinanceAPI: a.FinanceClient,
		Quotes:     cache.New(a.Config.Cache.GetQuoteTTL(), a.Config.Cache.MaxQuotes),
		KV:         a.Storage.KeyValueStorage(),
		Logger:     a.Logger,
	})
}

// initHandlers initializes all HTTP handlers.
func (a *App) initHandlers() {
	a.HealthHandler = handlers.NewHealthHandler(a.Logger)
	a.VersionHandler = handlers.NewVersionHandler(a.Logger)
	a.StateHandler = handlers.NewStateHandler(a.Logger, a.Store)
	a.WatchlistHandler = handlers.NewWatchlistHandler(a.Logger, a.Store.Assets)
	a.QuoteHandler = handlers.NewQuoteHandler(a.Logger, a.Store.Assets)
	a.FinanceHandler = handlers.NewFinanceHandler(a.Logger, a.Store.Finance)

	if a.Config.MCP.Enabled {
		a.MCPHandler = mcp.NewHandler(a.Store, a.Resolver, a.Logger)
	}

	a.Logger.Debug().Msg("HTTP handlers initialized")
}

// Close closes all application resources.
func (a *App) Close() error {
	if a.Storage == nil {
		return nil
	}
	return a.Storage.Close()
}
