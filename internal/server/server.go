// Package server is the HTTP surface. Handlers stay thin: bind, call a
// service, shape the response. All state lives behind the services.
package server

import (
	"context"
	"net/http"
	"time"

	"codeloom/internal/importer"
	"codeloom/internal/services"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

const bodyLimit = "50M"

// Deps carries everything the handlers need.
type Deps struct {
	Generation *services.GenerationService
	Terminal   *services.TerminalService
	Catalog    services.ModelCatalogService
	Keyring    *services.KeyringService
	Vcs        *services.VcsService
	Db         *services.DbServices
	GitHub     *importer.GitHubImporter
}

type Server struct {
	echo *echo.Echo
	deps Deps
}

// apiError is the uniform JSON error body.
type apiError struct {
	Error     string    `json:"error"`
	Timestamp time.Time `json:"timestamp"`
	Path      string    `json:"path"`
}

func New(deps Deps) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.BodyLimit(bodyLimit))
	e.Use(middleware.CORS())

	e.HTTPErrorHandler = errorHandler

	s := &Server{echo: e, deps: deps}
	s.routes()
	return s
}

func (s *Server) routes() {
	e := s.echo

	e.GET("/health", s.handleHealth)

	api := e.Group("/api")
	api.POST("/generate", s.handleGenerate)
	api.POST("/execute", s.handleExecute)
	api.POST("/import/github", s.handleImportGitHub)
	api.POST("/import/files", s.handleImportFiles)
	api.POST("/import/local", s.handleImportLocal)
	api.GET("/models", s.handleListModels)
	api.PATCH("/models", s.handleSetModelEnabled)
	api.POST("/scaffold", s.handleScaffold)
	api.POST("/workspace/tree", s.handleTree)

	vcs := api.Group("/projects/:name/vcs")
	vcs.POST("/init", s.handleVcsInit)
	vcs.POST("/stage", s.handleVcsStage)
	vcs.POST("/unstage", s.handleVcsUnstage)
	vcs.GET("/staged", s.handleVcsStaged)
	vcs.POST("/commit", s.handleVcsCommit)
	vcs.GET("/commits", s.handleVcsCommits)
	vcs.POST("/discard", s.handleVcsDiscard)
	vcs.POST("/status", s.handleVcsStatus)
	vcs.POST("/diff", s.handleVcsDiff)

	api.POST("/auth/login", s.handleAuthStub)
	api.POST("/auth/signup", s.handleAuthStub)

	if s.deps.Db != nil {
		api.GET("/sessions", s.handleListSessions)
		api.GET("/sessions/:name", s.handleGetSession)
		api.PUT("/sessions/:name", s.handlePutSession)
		api.POST("/sessions/:name/rename", s.handleRenameSession)
		api.DELETE("/sessions/:name", s.handleDeleteSession)
		api.GET("/searches", s.handleListSearches)
		api.POST("/searches", s.handleAddSearch)
		api.DELETE("/searches", s.handleClearSearches)
	}
}

// Start blocks serving HTTP on addr.
func (s *Server) Start(addr string) error {
	return s.echo.Start(addr)
}

// Echo exposes the underlying router, used by tests.
func (s *Server) Echo() *echo.Echo {
	return s.echo
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	code := http.StatusInternalServerError
	msg := err.Error()
	if he, ok := err.(*echo.HTTPError); ok {
		code = he.Code
		if m, ok := he.Message.(string); ok {
			msg = m
		}
	}
	_ = c.JSON(code, apiError{
		Error:     msg,
		Timestamp: time.Now().UTC(),
		Path:      c.Request().URL.Path,
	})
}
