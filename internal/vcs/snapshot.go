// Package vcs is the in-memory version layer over a workspace: staged
// paths, commit snapshots and status/diff derivation. It is a snapshot
// model, not real version control; snapshots are immutable and never
// garbage-collected in this design.
package vcs

import (
	"fmt"
	"sort"
	"time"

	"codeloom/internal/models"

	"github.com/google/uuid"
)

// DefaultAuthor is used when the caller does not name one.
const DefaultAuthor = "codeloom"

// Store holds the commit history (newest first) and the staging set for
// one workspace. Not safe for concurrent mutation; callers serialize.
type Store struct {
	commits []models.CommitSnapshot
	staged  map[string]struct{}
	author  string
	now     func() time.Time
}

// NewStore returns an empty store. The clock is injectable for tests.
func NewStore() *Store {
	return &Store{
		staged: make(map[string]struct{}),
		author: DefaultAuthor,
		now:    time.Now,
	}
}

// SetAuthor names the author recorded on subsequent commits.
func (s *Store) SetAuthor(author string) {
	if author != "" {
		s.author = author
	}
}

// SetClock overrides the commit timestamp source.
func (s *Store) SetClock(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// InitSnapshot creates the first snapshot from the given files and
// empties staging. Calling it on a non-empty store is an error.
func (s *Store) InitSnapshot(files []models.FileRecord) (models.CommitSnapshot, error) {
	if len(s.commits) > 0 {
		return models.CommitSnapshot{}, fmt.Errorf("history already initialized")
	}
	return s.commit("Initial commit", files)
}

// Commits returns the snapshot history, newest first.
func (s *Store) Commits() []models.CommitSnapshot {
	out := make([]models.CommitSnapshot, len(s.commits))
	copy(out, s.commits)
	return out
}

// Head returns the newest snapshot.
func (s *Store) Head() (models.CommitSnapshot, bool) {
	if len(s.commits) == 0 {
		return models.CommitSnapshot{}, false
	}
	return s.commits[0], true
}

// Stage marks a path for the next commit. The path must exist in the
// current workspace or in the newest snapshot (deletion staging).
func (s *Store) Stage(path string, current []models.FileRecord) error {
	if s.pathKnown(path, current) {
		s.staged[path] = struct{}{}
		return nil
	}
	return fmt.Errorf("cannot stage unknown path %q", path)
}

// Unstage removes a path from the staging set.
func (s *Store) Unstage(path string) {
	delete(s.staged, path)
}

// Staged returns the staged paths in sorted order.
func (s *Store) Staged() []string {
	out := make([]string, 0, len(s.staged))
	for p := range s.staged {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// IsStaged reports membership in the staging set.
func (s *Store) IsStaged(path string) bool {
	_, ok := s.staged[path]
	return ok
}

// Commit snapshots the whole current workspace, prepends it to the
// history and clears staging atomically.
func (s *Store) Commit(message string, files []models.FileRecord) (models.CommitSnapshot, error) {
	if message == "" {
		return models.CommitSnapshot{}, fmt.Errorf("commit message is required")
	}
	return s.commit(message, files)
}

func (s *Store) commit(message string, files []models.FileRecord) (models.CommitSnapshot, error) {
	snap := models.CommitSnapshot{
		ID:      uuid.NewString(),
		Message: message,
		Author:  s.author,
		Date:    s.now(),
		Files:   models.CloneFiles(files),
	}
	s.commits = append([]models.CommitSnapshot{snap}, s.commits...)
	s.staged = make(map[string]struct{})
	return snap, nil
}

// Discard returns the workspace file list with path restored to the
// newest snapshot's content. If the snapshot does not contain the path,
// the file is removed entirely (it was never committed).
func (s *Store) Discard(path string, current []models.FileRecord) []models.FileRecord {
	head, ok := s.Head()
	if !ok {
		return models.CloneFiles(current)
	}

	var snapContent *string
	for _, f := range head.Files {
		if f.Path == path {
			c := f.Content
			snapContent = &c
			break
		}
	}

	out := make([]models.FileRecord, 0, len(current))
	found := false
	for _, f := range current {
		if f.Path != path {
			out = append(out, f)
			continue
		}
		found = true
		if snapContent != nil {
			out = append(out, models.FileRecord{Path: path, Content: *snapContent})
		}
	}
	if !found && snapContent != nil {
		// Deleted since the snapshot; discard resurrects it.
		out = append(out, models.FileRecord{Path: path, Content: *snapContent})
	}
	return out
}

// Status computes the set-difference of the current workspace against the
// newest snapshot. With no history every file is new.
func (s *Store) Status(current []models.FileRecord) models.WorkspaceStatus {
	status := models.WorkspaceStatus{Modified: []string{}, New: []string{}, Deleted: []string{}}

	head, ok := s.Head()
	if !ok {
		for _, f := range current {
			status.New = append(status.New, f.Path)
		}
		return status
	}

	snapshot := make(map[string]string, len(head.Files))
	for _, f := range head.Files {
		snapshot[f.Path] = f.Content
	}
	seen := make(map[string]struct{}, len(current))
	for _, f := range current {
		seen[f.Path] = struct{}{}
		before, existed := snapshot[f.Path]
		switch {
		case !existed:
			status.New = append(status.New, f.Path)
		case before != f.Content:
			status.Modified = append(status.Modified, f.Path)
		}
	}
	for _, f := range head.Files {
		if _, ok := seen[f.Path]; !ok {
			status.Deleted = append(status.Deleted, f.Path)
		}
	}
	sort.Strings(status.Modified)
	sort.Strings(status.New)
	sort.Strings(status.Deleted)
	return status
}

func (s *Store) pathKnown(path string, current []models.FileRecord) bool {
	for _, f := range current {
		if f.Path == path {
			return true
		}
	}
	if head, ok := s.Head(); ok {
		for _, f := range head.Files {
			if f.Path == path {
				return true
			}
		}
	}
	return false
}
