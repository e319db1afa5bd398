package vcs

import (
	"codeloom/internal/models"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// Diff returns the two sides of a diff for path plus a unified-style
// rendering. Before is the newest snapshot's content, empty for files the
// snapshot never saw; After is the current content.
func (s *Store) Diff(path string, current []models.FileRecord) models.FileDiff {
	d := models.FileDiff{Path: path}

	if head, ok := s.Head(); ok {
		for _, f := range head.Files {
			if f.Path == path {
				d.Before = f.Content
				break
			}
		}
	}
	for _, f := range current {
		if f.Path == path {
			d.After = f.Content
			break
		}
	}

	if d.Before != d.After {
		dmp := diffmatchpatch.New()
		patches := dmp.PatchMake(d.Before, d.After)
		d.Unified = dmp.PatchToText(patches)
	}
	return d
}
