package models

import "time"

// CommitSnapshot is a frozen copy of the workspace created by a commit.
// Snapshots are immutable once created.
type CommitSnapshot struct {
	ID      string       `json:"id"`
	Message string       `json:"message"`
	Author  string       `json:"author"`
	Date    time.Time    `json:"date"`
	Files   []FileRecord `json:"files"`
}

// WorkspaceStatus is the set-difference of the current workspace against
// the newest snapshot.
type WorkspaceStatus struct {
	Modified []string `json:"modified"`
	New      []string `json:"new"`
	Deleted  []string `json:"deleted"`
}

// FileDiff holds the two sides of a diff for a single path. Before is the
// newest snapshot's content (empty for new files), After the current one.
type FileDiff struct {
	Path    string `json:"path"`
	Before  string `json:"before"`
	After   string `json:"after"`
	Unified string `json:"unified,omitempty"`
}
