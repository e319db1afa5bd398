package server

import (
	"net/http"

	"codeloom/internal/models"
	"codeloom/internal/workspace"

	"github.com/labstack/echo/v4"
)

type vcsRequest struct {
	Path    string              `json:"path"`
	Message string              `json:"message"`
	Files   []models.FileRecord `json:"files"`
}

func (s *Server) handleVcsInit(c echo.Context) error {
	var req vcsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request body")
	}
	snap, err := s.deps.Vcs.Init(c.Param("name"), req.Files)
	if err != nil {
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	}
	return c.JSON(http.StatusCreated, snap)
}

func (s *Server) handleVcsStage(c echo.Context) error {
	var req vcsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request body")
	}
	if err := s.deps.Vcs.Stage(c.Param("name"), req.Path, req.Files); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) handleVcsUnstage(c echo.Context) error {
	var req vcsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request body")
	}
	if err := s.deps.Vcs.Unstage(c.Param("name"), req.Path); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) handleVcsStaged(c echo.Context) error {
	staged, err := s.deps.Vcs.Staged(c.Param("name"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, staged)
}

func (s *Server) handleVcsCommit(c echo.Context) error {
	var req vcsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request body")
	}
	snap, err := s.deps.Vcs.Commit(c.Param("name"), req.Message, req.Files)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, snap)
}

func (s *Server) handleVcsCommits(c echo.Context) error {
	commits, err := s.deps.Vcs.Commits(c.Param("name"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, commits)
}

func (s *Server) handleVcsDiscard(c echo.Context) error {
	var req vcsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request body")
	}
	files, err := s.deps.Vcs.Discard(c.Param("name"), req.Path, req.Files)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, files)
}

func (s *Server) handleVcsStatus(c echo.Context) error {
	var req vcsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request body")
	}
	status, err := s.deps.Vcs.Status(c.Param("name"), req.Files)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, status)
}

func (s *Server) handleVcsDiff(c echo.Context) error {
	var req vcsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request body")
	}
	diff, err := s.deps.Vcs.Diff(c.Param("name"), req.Path, req.Files)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, diff)
}

type scaffoldRequest struct {
	Language    string `json:"language"`
	ProjectName string `json:"projectName"`
}

func (s *Server) handleScaffold(c echo.Context) error {
	var req scaffoldRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request body")
	}
	files, err := workspace.Scaffold(req.Language, req.ProjectName)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, files)
}

type treeRequest struct {
	Files []models.FileRecord `json:"files"`
	Query string              `json:"query"`
}

func (s *Server) handleTree(c echo.Context) error {
	var req treeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request body")
	}
	if req.Query != "" {
		return c.JSON(http.StatusOK, workspace.Search(req.Files, req.Query))
	}
	return c.JSON(http.StatusOK, workspace.BuildTree(req.Files))
}
