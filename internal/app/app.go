// Package app wires the engine, the model store and the endpoint handlers
// into one HTTP server.
package app

import (
	"context"
	"fmt"
	"os"

	"ifc-api/internal/common/config"
	"ifc-api/internal/common/logger"
	"ifc-api/internal/common/observability"
	"ifc-api/internal/common/server"
	"ifc-api/internal/engine"
	getelementbyguid "ifc-api/internal/handlers/get-element-by-guid"
	listmodels "ifc-api/internal/handlers/list-models"
	removemodel "ifc-api/internal/handlers/remove-model"
	"ifc-api/internal/handlers/root"
	uploadifc "ifc-api/internal/handlers/upload-ifc"
	"ifc-api/internal/store"
	"ifc-api/pkg/registry"
)

type App struct {
	Config *config.Config
	Engine *engine.IFCEngine
	Store  *store.Store
	Server *server.Server

	logger logger.Logger
}

type Options struct {
	Config        *config.Config
	Registry      *registry.EndpointRegistry
	Observability *observability.Observability
	Logger        logger.Logger
}

func New(opts Options) (*App, error) {
	cfg := opts.Config
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	log := opts.Logger
	if log == nil {
		log = logger.NewStructured(cfg.Logging.Level, cfg.Logging.Format)
	}

	ifcEngine, err := engine.New(engine.ConfigFromAppConfig(cfg), log.WithFields(map[string]interface{}{"component": "engine"}))
	if err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}
	models := store.New(log.WithFields(map[string]interface{}{"component": "store"}))

	routes, err := buildRoutes(cfg, opts, ifcEngine, models, log)
	if err != nil {
		return nil, err
	}

	scratchDir := cfg.Storage.ScratchDir
	srv, err := server.New(server.Options{
		Config: server.ConfigFromAppConfig(cfg),
		Routes: routes,
		Ready: func(context.Context) error {
			info, err := os.Stat(scratchDir)
			if err != nil {
				return fmt.Errorf("scratch dir: %w", err)
			}
			if !info.IsDir() {
				return fmt.Errorf("scratch dir %s is not a directory", scratchDir)
			}
			return nil
		},
		Logger: log.WithFields(map[string]interface{}{"component": "http"}),
	})
	if err != nil {
		return nil, err
	}

	return &App{
		Config: cfg,
		Engine: ifcEngine,
		Store:  models,
		Server: srv,
		logger: log,
	}, nil
}

func buildRoutes(cfg *config.Config, opts Options, e *engine.IFCEngine, models *store.Store, log logger.Logger) ([]server.RouteHandler, error) {
	withRoute := func(route string) logger.Logger {
		return log.WithFields(map[string]interface{}{"route": route})
	}

	rootHandler, err := root.NewHandler(root.HandlerOptions{
		Registry: opts.Registry,
		Logger:   withRoute(root.Route),
	})
	if err != nil {
		return nil, err
	}

	upload, err := uploadifc.NewHandler(uploadifc.HandlerOptions{
		AppConfig:     cfg,
		Store:         models,
		Engine:        e,
		Observability: opts.Observability,
		Logger:        withRoute(uploadifc.Route),
	})
	if err != nil {
		return nil, err
	}

	getElement, err := getelementbyguid.NewHandler(getelementbyguid.HandlerOptions{
		AppConfig: cfg,
		Store:     models,
		Engine:    e,
		Logger:    withRoute(getelementbyguid.Route),
	})
	if err != nil {
		return nil, err
	}

	remove, err := removemodel.NewHandler(removemodel.HandlerOptions{
		Store:         models,
		Observability: opts.Observability,
		Logger:        withRoute(removemodel.Route),
	})
	if err != nil {
		return nil, err
	}

	list, err := listmodels.NewHandler(listmodels.HandlerOptions{
		Store:  models,
		Logger: withRoute(listmodels.Route),
	})
	if err != nil {
		return nil, err
	}

	return []server.RouteHandler{rootHandler, upload, getElement, remove, list}, nil
}

// Close purges every resident model and its scratch file.
func (a *App) Close() error {
	n := a.Store.Len()
	if err := a.Store.Purge(); err != nil {
		return fmt.Errorf("purge models: %w", err)
	}
	a.logger.Info("Purged resident models", map[string]interface{}{
		"models": n,
	})
	return nil
}
