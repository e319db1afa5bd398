package services

import (
	"fmt"
	"sync"

	"codeloom/internal/models"
	"codeloom/internal/vcs"
)

// VcsService holds one snapshot store per project and serializes access
// to it. The workspace itself travels with each request; only the
// history lives here.
type VcsService struct {
	mu     sync.Mutex
	stores map[string]*vcs.Store
}

func NewVcsService() *VcsService {
	return &VcsService{stores: make(map[string]*vcs.Store)}
}

// withStore runs fn holding the service lock, creating the project store
// on first use.
func (s *VcsService) withStore(project string, fn func(store *vcs.Store) error) error {
	if project == "" {
		return fmt.Errorf("project name is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	store, ok := s.stores[project]
	if !ok {
		store = vcs.NewStore()
		s.stores[project] = store
	}
	return fn(store)
}

func (s *VcsService) Init(project string, files []models.FileRecord) (models.CommitSnapshot, error) {
	var snap models.CommitSnapshot
	err := s.withStore(project, func(store *vcs.Store) error {
		var err error
		snap, err = store.InitSnapshot(files)
		return err
	})
	return snap, err
}

func (s *VcsService) Stage(project, path string, current []models.FileRecord) error {
	return s.withStore(project, func(store *vcs.Store) error {
		return store.Stage(path, current)
	})
}

func (s *VcsService) Unstage(project, path string) error {
	return s.withStore(project, func(store *vcs.Store) error {
		store.Unstage(path)
		return nil
	})
}

func (s *VcsService) Staged(project string) ([]string, error) {
	var staged []string
	err := s.withStore(project, func(store *vcs.Store) error {
		staged = store.Staged()
		return nil
	})
	return staged, err
}

func (s *VcsService) Commit(project, message string, files []models.FileRecord) (models.CommitSnapshot, error) {
	var snap models.CommitSnapshot
	err := s.withStore(project, func(store *vcs.Store) error {
		var err error
		snap, err = store.Commit(message, files)
		return err
	})
	return snap, err
}

func (s *VcsService) Commits(project string) ([]models.CommitSnapshot, error) {
	var commits []models.CommitSnapshot
	err := s.withStore(project, func(store *vcs.Store) error {
		commits = store.Commits()
		return nil
	})
	return commits, err
}

// Discard returns the workspace with path restored from the newest
// snapshot (or removed when it was never committed).
func (s *VcsService) Discard(project, path string, current []models.FileRecord) ([]models.FileRecord, error) {
	var out []models.FileRecord
	err := s.withStore(project, func(store *vcs.Store) error {
		out = store.Discard(path, current)
		return nil
	})
	return out, err
}

func (s *VcsService) Status(project string, current []models.FileRecord) (models.WorkspaceStatus, error) {
	var status models.WorkspaceStatus
	err := s.withStore(project, func(store *vcs.Store) error {
		status = store.Status(current)
		return nil
	})
	return status, err
}

func (s *VcsService) Diff(project, path string, current []models.FileRecord) (models.FileDiff, error) {
	var diff models.FileDiff
	err := s.withStore(project, func(store *vcs.Store) error {
		diff = store.Diff(path, current)
		return nil
	})
	return diff, err
}

// Rename moves a project's history to a new name, keeping snapshots
// intact across a session rename.
func (s *VcsService) Rename(oldName, newName string) {
	if oldName == "" || newName == "" || oldName == newName {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if store, ok := s.stores[oldName]; ok {
		s.stores[newName] = store
		delete(s.stores, oldName)
	}
}

// Drop forgets a project's history, e.g. when its session is deleted.
func (s *VcsService) Drop(project string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.stores, project)
}
