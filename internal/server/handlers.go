package server

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"codeloom/internal/events"
	"codeloom/internal/importer"
	"codeloom/internal/llm/client"
	"codeloom/internal/models"
	"codeloom/internal/services"

	"github.com/labstack/echo/v4"
)

type generateRequest struct {
	Prompt       string              `json:"prompt"`
	Model        string              `json:"model"`
	Provider     string              `json:"provider"`
	Platform     string              `json:"platform"`
	Language     string              `json:"language"`
	ProjectName  string              `json:"projectName"`
	CurrentFiles []models.FileRecord `json:"currentFiles"`
	History      []models.ChatTurn   `json:"history"`
	Attachments  []models.Attachment `json:"attachments"`
}

type generateResponse struct {
	Files         []models.FileRecord `json:"files"`
	Mode          string              `json:"mode"`
	EffectiveTier string              `json:"effectiveTier"`
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleGenerate(c echo.Context) error {
	var req generateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request body")
	}
	if strings.TrimSpace(req.Prompt) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "prompt is required")
	}

	res, err := s.deps.Generation.RunTurn(c.Request().Context(), services.TurnInput{
		ProjectName:   req.ProjectName,
		Prompt:        req.Prompt,
		Provider:      req.Provider,
		RequestedTier: req.Model,
		Platform:      req.Platform,
		Language:      req.Language,
		CurrentFiles:  req.CurrentFiles,
		History:       req.History,
		Attachments:   req.Attachments,
	})
	if err != nil {
		return mapGenerationError(err)
	}
	return c.JSON(http.StatusOK, generateResponse{
		Files:         res.Files,
		Mode:          res.Mode,
		EffectiveTier: res.EffectiveTier,
	})
}

type executeRequest struct {
	Command string              `json:"command"`
	Files   []models.FileRecord `json:"files"`
}

// handleExecute always answers text/plain; failures become a
// "[SYSTEM ERROR]" body so the terminal has something to print.
func (s *Server) handleExecute(c echo.Context) error {
	var req executeRequest
	if err := c.Bind(&req); err != nil {
		return c.String(http.StatusOK, "[SYSTEM ERROR] malformed request body")
	}
	out, err := s.deps.Terminal.Execute(c.Request().Context(), req.Command, req.Files)
	if err != nil {
		return c.String(http.StatusOK, "[SYSTEM ERROR] "+err.Error())
	}
	return c.String(http.StatusOK, out)
}

type importGitHubRequest struct {
	RepoURL string `json:"repoUrl"`
}

func (s *Server) handleImportGitHub(c echo.Context) error {
	var req importGitHubRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request body")
	}
	ctx := c.Request().Context()
	events.Emit(ctx, events.ImportStarted,
		events.NewEvent(events.EventInfo, "importing "+req.RepoURL))
	files, err := s.deps.GitHub.Import(ctx, req.RepoURL)
	if err != nil {
		return mapImportError(err)
	}
	events.Emit(ctx, events.ImportDone,
		events.NewEvent(events.EventSuccess, fmt.Sprintf("imported %d file(s)", len(files))))
	return c.JSON(http.StatusOK, files)
}

type importFilesRequest struct {
	Files []models.FileRecord `json:"files"`
}

func (s *Server) handleImportFiles(c echo.Context) error {
	var req importFilesRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request body")
	}
	files, err := importer.FromEntries(req.Files)
	if err != nil {
		return mapImportError(err)
	}
	return c.JSON(http.StatusOK, files)
}

type importLocalRequest struct {
	Root string `json:"root"`
}

// handleImportLocal imports a directory on the server host, for
// self-hosted deployments where the project already lives on disk.
func (s *Server) handleImportLocal(c echo.Context) error {
	var req importLocalRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request body")
	}
	files, err := importer.FromDirectory(req.Root)
	if err != nil {
		return mapImportError(err)
	}
	return c.JSON(http.StatusOK, files)
}

func (s *Server) handleListModels(c echo.Context) error {
	return c.JSON(http.StatusOK, s.deps.Catalog.ListModelGroups())
}

type setModelEnabledRequest struct {
	Key     string `json:"key"`
	Enabled bool   `json:"enabled"`
}

func (s *Server) handleSetModelEnabled(c echo.Context) error {
	var req setModelEnabledRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request body")
	}
	mdl, err := s.deps.Catalog.SetModelEnabled(req.Key, req.Enabled)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, mdl)
}

// handleAuthStub reserves the auth routes; accounts are not part of the
// self-hosted deployment.
func (s *Server) handleAuthStub(c echo.Context) error {
	return echo.NewHTTPError(http.StatusNotImplemented, "authentication is not available in this deployment")
}

func (s *Server) handleListSessions(c echo.Context) error {
	sessions, err := s.deps.Db.Sessions.List()
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, sessions)
}

func (s *Server) handleGetSession(c echo.Context) error {
	snapshot, err := s.deps.Db.Sessions.Load(c.Param("name"))
	if err != nil {
		return err
	}
	if snapshot == nil {
		return echo.NewHTTPError(http.StatusNotFound, "session not found")
	}
	return c.JSON(http.StatusOK, snapshot)
}

func (s *Server) handlePutSession(c echo.Context) error {
	var snapshot services.SessionSnapshot
	if err := c.Bind(&snapshot); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request body")
	}
	snapshot.ProjectName = c.Param("name")
	if err := s.deps.Db.Sessions.Save(snapshot); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

type renameSessionRequest struct {
	NewName string `json:"newName"`
}

// handleRenameSession moves a session to a new project name; the stored
// workspace manifest and any snapshot history follow it.
func (s *Server) handleRenameSession(c echo.Context) error {
	var req renameSessionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request body")
	}
	oldName := c.Param("name")
	if err := s.deps.Db.Sessions.Rename(oldName, req.NewName); err != nil {
		if strings.Contains(err.Error(), "not found") {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	}
	if s.deps.Vcs != nil {
		s.deps.Vcs.Rename(oldName, req.NewName)
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) handleDeleteSession(c echo.Context) error {
	name := c.Param("name")
	if err := s.deps.Db.Sessions.Delete(name); err != nil {
		return err
	}
	if s.deps.Vcs != nil {
		s.deps.Vcs.Drop(name)
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) handleListSearches(c echo.Context) error {
	queries, err := s.deps.Db.Searches.Recent()
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, queries)
}

type addSearchRequest struct {
	Query string `json:"query"`
}

func (s *Server) handleAddSearch(c echo.Context) error {
	var req addSearchRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request body")
	}
	if err := s.deps.Db.Searches.Record(req.Query); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) handleClearSearches(c echo.Context) error {
	if err := s.deps.Db.Searches.Clear(); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func mapGenerationError(err error) error {
	if errors.Is(err, services.ErrSuperseded) {
		return echo.NewHTTPError(http.StatusConflict, "request superseded by a newer one")
	}
	var gerr *client.GatewayError
	if errors.As(err, &gerr) {
		switch gerr.Kind {
		case client.KindQuotaExceeded:
			return echo.NewHTTPError(http.StatusTooManyRequests, err.Error())
		case client.KindInvalidRequest:
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
	}
	return echo.NewHTTPError(http.StatusBadGateway, err.Error())
}

func mapImportError(err error) error {
	var impErr *importer.ImportError
	if errors.As(err, &impErr) {
		switch impErr.Kind {
		case importer.KindInvalidURL:
			return echo.NewHTTPError(http.StatusBadRequest, impErr.Error())
		case importer.KindNetworkFailure:
			return echo.NewHTTPError(http.StatusBadGateway, impErr.Error())
		case importer.KindArchiveMalformed, importer.KindEmptyResult:
			return echo.NewHTTPError(http.StatusUnprocessableEntity, impErr.Error())
		}
	}
	return err
}
