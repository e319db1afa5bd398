package main

import (
	"context"
	"fmt"
	"log"

	"codeloom/internal/database"
	"codeloom/internal/importer"
	"codeloom/internal/server"
	"codeloom/internal/services"
	"codeloom/internal/utils"

	"gorm.io/gorm/logger"
)

// App is the composition root: it owns the database handle, the service
// graph and the HTTP server.
type App struct {
	srv     *server.Server
	dbClose func() error
}

func NewApp() *App {
	return &App{}
}

// Startup opens the database and wires the service graph.
func (a *App) Startup(ctx context.Context) error {
	db, err := database.Init(database.Config{
		Path:     utils.Getenv("CODELOOM_DB", ""),
		LogLevel: logger.Warn,
	})
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		a.dbClose = sqlDB.Close
	}

	keyringService := services.NewKeyringService()
	catalogService := services.NewModelCatalogService()
	gatewayFactory := services.NewDefaultGatewayFactory(keyringService, catalogService)
	dbServices := services.NewDbServices(db)

	a.srv = server.New(server.Deps{
		Generation: services.NewGenerationService(gatewayFactory),
		Terminal:   services.NewTerminalService(gatewayFactory),
		Catalog:    catalogService,
		Keyring:    keyringService,
		Vcs:        services.NewVcsService(),
		Db:         dbServices,
		GitHub:     importer.NewGitHubImporter(),
	})
	return nil
}

// Serve blocks until the HTTP server stops.
func (a *App) Serve(addr string) error {
	return a.srv.Start(addr)
}

// Shutdown drains the server and closes the database.
func (a *App) Shutdown(ctx context.Context) {
	if a.srv != nil {
		if err := a.srv.Shutdown(ctx); err != nil {
			log.Printf("server shutdown: %v", err)
		}
	}
	if a.dbClose != nil {
		if err := a.dbClose(); err != nil {
			log.Printf("failed to close database: %v", err)
		} else {
			log.Printf("database closed")
		}
		a.dbClose = nil
	}
}
