package services

import (
	"fmt"
	"testing"

	"codeloom/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSessionRepo is an in-memory stand-in for the gorm repository.
type fakeSessionRepo struct {
	rows map[string]models.GenerationSession
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{rows: make(map[string]models.GenerationSession)}
}

func (r *fakeSessionRepo) List() ([]models.GenerationSession, error) {
	out := make([]models.GenerationSession, 0, len(r.rows))
	for _, s := range r.rows {
		out = append(out, s)
	}
	return out, nil
}

func (r *fakeSessionRepo) GetByProjectName(projectName string) (*models.GenerationSession, error) {
	if s, ok := r.rows[projectName]; ok {
		out := s
		return &out, nil
	}
	return nil, nil
}

func (r *fakeSessionRepo) Upsert(projectName, platform, language, workspaceJSON, historyJSON string) (*models.GenerationSession, error) {
	if projectName == "" {
		return nil, fmt.Errorf("project name is required")
	}
	s := models.GenerationSession{
		ProjectName:   projectName,
		Platform:      platform,
		Language:      language,
		WorkspaceJSON: workspaceJSON,
		HistoryJSON:   historyJSON,
	}
	r.rows[projectName] = s
	return &s, nil
}

func (r *fakeSessionRepo) Rename(oldName, newName string) error {
	s, ok := r.rows[oldName]
	if !ok {
		return nil
	}
	s.ProjectName = newName
	delete(r.rows, oldName)
	r.rows[newName] = s
	return nil
}

func (r *fakeSessionRepo) DeleteByProjectName(projectName string) error {
	delete(r.rows, projectName)
	return nil
}

func TestSessionService_SaveLoadRoundTrip(t *testing.T) {
	svc := NewGenerationSessionService(newFakeSessionRepo())

	err := svc.Save(SessionSnapshot{
		ProjectName: "demo",
		Platform:    models.PlatformWeb,
		Language:    "javascript",
		Files:       []models.FileRecord{{Path: "index.html", Content: "<!doctype html>"}},
		History:     []models.ChatTurn{{Role: models.RoleUser, Text: "hi"}},
	})
	require.NoError(t, err)

	snap, err := svc.Load("demo")
	require.NoError(t, err)
	require.NotNil(t, snap)
	require.Len(t, snap.Files, 1)
	assert.Equal(t, "index.html", snap.Files[0].Path)
	require.Len(t, snap.History, 1)
	assert.Equal(t, "hi", snap.History[0].Text)
}

func TestSessionService_RenameRewritesManifest(t *testing.T) {
	svc := NewGenerationSessionService(newFakeSessionRepo())

	require.NoError(t, svc.Save(SessionSnapshot{
		ProjectName: "old-app",
		Language:    "javascript",
		Files:       []models.FileRecord{{Path: "package.json", Content: `{"name": "old-app", "version": "0.1.0"}`}},
	}))

	require.NoError(t, svc.Rename("old-app", "new-app"))

	gone, err := svc.Load("old-app")
	require.NoError(t, err)
	assert.Nil(t, gone)

	snap, err := svc.Load("new-app")
	require.NoError(t, err)
	require.NotNil(t, snap)
	require.Len(t, snap.Files, 1)
	assert.Contains(t, snap.Files[0].Content, `"name": "new-app"`)
}

func TestSessionService_RenameConflictsAndMissing(t *testing.T) {
	svc := NewGenerationSessionService(newFakeSessionRepo())

	require.NoError(t, svc.Save(SessionSnapshot{ProjectName: "a"}))
	require.NoError(t, svc.Save(SessionSnapshot{ProjectName: "b"}))

	err := svc.Rename("a", "b")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	err = svc.Rename("ghost", "c")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}
