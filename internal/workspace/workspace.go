// Package workspace holds the in-memory project: an ordered, path-unique
// collection of text files with the mutating operations the editor and
// the generation pipeline drive.
package workspace

import (
	"errors"
	"fmt"
	"path"
	"strings"

	"codeloom/internal/models"
)

var (
	// ErrConflict is returned when a rename target already exists.
	ErrConflict = errors.New("target path already exists")
	// ErrNotFound is returned when an operation names a missing path.
	ErrNotFound = errors.New("path not found in workspace")
)

// Workspace is the ordered project state. It is not safe for concurrent
// mutation; callers serialize access (one mutation at a time per session).
type Workspace struct {
	files    []models.FileRecord
	selected string
}

// New returns a workspace seeded with the given files. Invalid or
// duplicate paths are rejected.
func New(files []models.FileRecord) (*Workspace, error) {
	ws := &Workspace{}
	if err := ws.Replace(files); err != nil {
		return nil, err
	}
	return ws, nil
}

// ValidatePath enforces the workspace path rules: non-empty, relative,
// POSIX-style, free of ".." segments and NUL bytes.
func ValidatePath(p string) error {
	if p == "" {
		return fmt.Errorf("empty path")
	}
	if strings.HasPrefix(p, "/") {
		return fmt.Errorf("absolute path %q not allowed", p)
	}
	if strings.ContainsRune(p, 0) {
		return fmt.Errorf("path %q contains NUL", p)
	}
	for _, seg := range strings.Split(p, "/") {
		if seg == ".." {
			return fmt.Errorf("path %q contains a parent segment", p)
		}
		if seg == "" {
			return fmt.Errorf("path %q contains an empty segment", p)
		}
	}
	return nil
}

// Files returns the ordered file list. The slice is a copy; records are
// value types so callers cannot alias internal state.
func (w *Workspace) Files() []models.FileRecord {
	return models.CloneFiles(w.files)
}

// Len returns the number of files.
func (w *Workspace) Len() int { return len(w.files) }

// Get returns the record at path.
func (w *Workspace) Get(p string) (models.FileRecord, bool) {
	for _, f := range w.files {
		if f.Path == p {
			return f, true
		}
	}
	return models.FileRecord{}, false
}

// Selected returns the currently selected path, or "".
func (w *Workspace) Selected() string { return w.selected }

// Select marks a path as selected. Selecting a missing path clears the
// selection.
func (w *Workspace) Select(p string) {
	if _, ok := w.Get(p); ok {
		w.selected = p
		return
	}
	w.selected = ""
}

// Replace swaps the whole file set, validating paths and uniqueness.
// Selection is preserved when the selected path survives.
func (w *Workspace) Replace(files []models.FileRecord) error {
	seen := make(map[string]struct{}, len(files))
	for _, f := range files {
		if err := ValidatePath(f.Path); err != nil {
			return err
		}
		if _, dup := seen[f.Path]; dup {
			return fmt.Errorf("duplicate path %q", f.Path)
		}
		seen[f.Path] = struct{}{}
	}
	w.files = models.CloneFiles(files)
	if _, ok := seen[w.selected]; !ok {
		w.selected = ""
	}
	return nil
}

// Edit replaces the content of an existing file. Editing a missing path
// is a no-op, mirroring how the editor debounces writes against deletes.
func (w *Workspace) Edit(p, newContent string) {
	for i := range w.files {
		if w.files[i].Path == p {
			w.files[i].Content = newContent
			return
		}
	}
}

// Rename renames a file, or a whole folder prefix when isFolder is set.
// The new path keeps the parent of the old one. Fails with ErrConflict
// when any target path already exists.
func (w *Workspace) Rename(oldPath, newName string, isFolder bool) error {
	if err := ValidatePath(oldPath); err != nil {
		return err
	}
	if newName == "" || strings.Contains(newName, "/") {
		return fmt.Errorf("invalid name %q", newName)
	}

	parent := path.Dir(oldPath)
	newPath := newName
	if parent != "." {
		newPath = parent + "/" + newName
	}
	if newPath == oldPath {
		return nil
	}

	rewrite := func(p string) (string, bool) {
		if isFolder {
			if strings.HasPrefix(p, oldPath+"/") {
				return newPath + p[len(oldPath):], true
			}
			return p, false
		}
		if p == oldPath {
			return newPath, true
		}
		return p, false
	}

	existing := make(map[string]struct{}, len(w.files))
	for _, f := range w.files {
		existing[f.Path] = struct{}{}
	}

	touched := false
	next := make([]models.FileRecord, len(w.files))
	for i, f := range w.files {
		target, changed := rewrite(f.Path)
		if changed {
			touched = true
			if _, clash := existing[target]; clash {
				return fmt.Errorf("rename %s -> %s: %w", f.Path, target, ErrConflict)
			}
		}
		next[i] = models.FileRecord{Path: target, Content: f.Content}
	}
	if !touched {
		return ErrNotFound
	}

	w.files = next
	if sel, changed := rewrite(w.selected); changed {
		w.selected = sel
	}
	return nil
}

// Delete removes a file, or every file under a folder prefix. The
// selection is cleared when it pointed into the removed set.
func (w *Workspace) Delete(p string, isFolder bool) {
	matches := func(fp string) bool {
		if isFolder {
			return fp == p || strings.HasPrefix(fp, p+"/")
		}
		return fp == p
	}

	next := w.files[:0]
	for _, f := range w.files {
		if matches(f.Path) {
			if w.selected == f.Path {
				w.selected = ""
			}
			continue
		}
		next = append(next, f)
	}
	w.files = next
}

// Import upserts files by path: existing records are overwritten in
// place, new ones are appended in arrival order. Content filtering is the
// import adapters' job, not ours.
func (w *Workspace) Import(files []models.FileRecord) error {
	for _, f := range files {
		if err := ValidatePath(f.Path); err != nil {
			return err
		}
	}
	w.files = Merge(w.files, files)
	return nil
}

// ApplyPatch merges a parsed model response into the workspace according
// to the turn mode: greenfield replaces, modification merges.
func (w *Workspace) ApplyPatch(mode string, patch []models.FileRecord) error {
	for _, f := range patch {
		if err := ValidatePath(f.Path); err != nil {
			return err
		}
	}
	if mode == models.ModeGreenfield {
		return w.Replace(patch)
	}
	w.files = Merge(w.files, patch)
	return nil
}

// Merge computes next = current overlaid with patch: every patched path
// is present with the patched content, untouched paths keep their content
// and position, and new paths append in patch order. Deletions cannot be
// expressed. Merge never fails.
func Merge(current, patch []models.FileRecord) []models.FileRecord {
	index := make(map[string]int, len(current))
	next := models.CloneFiles(current)
	for i, f := range next {
		index[f.Path] = i
	}
	for _, p := range patch {
		if i, ok := index[p.Path]; ok {
			next[i].Content = p.Content
			continue
		}
		index[p.Path] = len(next)
		next = append(next, p)
	}
	return next
}
