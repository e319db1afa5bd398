package services

import (
	"encoding/json"
	"fmt"

	"codeloom/internal/models"
	"codeloom/internal/repositories"
	"codeloom/internal/workspace"
)

// SessionSnapshot is a hydrated session as handed to clients.
type SessionSnapshot struct {
	ProjectName string              `json:"projectName"`
	Platform    string              `json:"platform"`
	Language    string              `json:"language"`
	Files       []models.FileRecord `json:"files"`
	History     []models.ChatTurn   `json:"history"`
}

// GenerationSessionService persists and restores project sessions.
type GenerationSessionService interface {
	List() ([]models.GenerationSession, error)
	Load(projectName string) (*SessionSnapshot, error)
	Save(snapshot SessionSnapshot) error
	Rename(oldName, newName string) error
	Delete(projectName string) error
}

type generationSessionService struct {
	repo repositories.GenerationSessionRepository
}

func NewGenerationSessionService(repo repositories.GenerationSessionRepository) GenerationSessionService {
	return &generationSessionService{repo: repo}
}

func (s *generationSessionService) List() ([]models.GenerationSession, error) {
	return s.repo.List()
}

func (s *generationSessionService) Load(projectName string) (*SessionSnapshot, error) {
	if projectName == "" {
		return nil, fmt.Errorf("project name is required")
	}
	sess, err := s.repo.GetByProjectName(projectName)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, nil
	}

	snapshot := &SessionSnapshot{
		ProjectName: sess.ProjectName,
		Platform:    sess.Platform,
		Language:    sess.Language,
	}
	if sess.WorkspaceJSON != "" {
		if err := json.Unmarshal([]byte(sess.WorkspaceJSON), &snapshot.Files); err != nil {
			return nil, fmt.Errorf("decode workspace for %s: %w", projectName, err)
		}
	}
	if sess.HistoryJSON != "" {
		if err := json.Unmarshal([]byte(sess.HistoryJSON), &snapshot.History); err != nil {
			return nil, fmt.Errorf("decode history for %s: %w", projectName, err)
		}
	}
	return snapshot, nil
}

func (s *generationSessionService) Save(snapshot SessionSnapshot) error {
	if snapshot.ProjectName == "" {
		return fmt.Errorf("project name is required")
	}
	filesJSON, err := json.Marshal(snapshot.Files)
	if err != nil {
		return fmt.Errorf("encode workspace for %s: %w", snapshot.ProjectName, err)
	}
	historyJSON, err := json.Marshal(snapshot.History)
	if err != nil {
		return fmt.Errorf("encode history for %s: %w", snapshot.ProjectName, err)
	}
	_, err = s.repo.Upsert(snapshot.ProjectName, snapshot.Platform, snapshot.Language, string(filesJSON), string(historyJSON))
	return err
}

// Rename moves the session to a new project name and rewrites the
// project manifest inside the stored workspace to match.
func (s *generationSessionService) Rename(oldName, newName string) error {
	if oldName == "" || newName == "" {
		return fmt.Errorf("both names are required")
	}
	if oldName == newName {
		return nil
	}
	if existing, err := s.repo.GetByProjectName(newName); err != nil {
		return err
	} else if existing != nil {
		return fmt.Errorf("a project named %s already exists", newName)
	}

	snapshot, err := s.Load(oldName)
	if err != nil {
		return err
	}
	if snapshot == nil {
		return fmt.Errorf("project %s not found", oldName)
	}

	if err := s.repo.Rename(oldName, newName); err != nil {
		return err
	}
	snapshot.ProjectName = newName
	snapshot.Files = workspace.RewriteManifestName(snapshot.Files, newName)
	return s.Save(*snapshot)
}

func (s *generationSessionService) Delete(projectName string) error {
	if projectName == "" {
		return fmt.Errorf("project name is required")
	}
	return s.repo.DeleteByProjectName(projectName)
}
