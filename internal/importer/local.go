package importer

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"codeloom/internal/models"

	"github.com/yargevad/filepathx"
)

// FromDirectory imports every admitted file under root, with paths
// relative to root. Mirrors what a browser folder drop delivers.
func FromDirectory(root string) ([]models.FileRecord, error) {
	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		return nil, &ImportError{Kind: KindInvalidURL, Err: fmt.Errorf("not a directory: %s", root)}
	}

	matches, err := filepathx.Glob(filepath.Join(root, "**", "*"))
	if err != nil {
		return nil, &ImportError{Kind: KindArchiveMalformed, Err: err}
	}
	sort.Strings(matches)

	var files []models.FileRecord
	for _, match := range matches {
		st, err := os.Stat(match)
		if err != nil || st.IsDir() || st.Size() > maxFileSize {
			continue
		}
		rel, err := filepath.Rel(root, match)
		if err != nil {
			continue
		}
		rel = filepath.ToSlash(rel)
		if !AdmitPath(rel) {
			continue
		}
		content, err := os.ReadFile(match)
		if err != nil {
			continue
		}
		if !AdmitContent(content) {
			continue
		}
		files = append(files, models.FileRecord{Path: rel, Content: string(content)})
	}

	if len(files) == 0 {
		return nil, &ImportError{Kind: KindEmptyResult, Err: fmt.Errorf("no importable files under %s", root)}
	}
	return files, nil
}

// FromEntries imports in-memory entries, as delivered by a drag-and-drop
// upload. A single shared root directory is stripped from every path.
func FromEntries(entries []models.FileRecord) ([]models.FileRecord, error) {
	normalized := make([]models.FileRecord, 0, len(entries))
	for _, e := range entries {
		p := strings.TrimPrefix(strings.TrimSpace(e.Path), "/")
		if p == "" {
			continue
		}
		normalized = append(normalized, models.FileRecord{Path: p, Content: e.Content})
	}

	normalized = StripSingleRoot(normalized)

	var files []models.FileRecord
	for _, e := range normalized {
		if Admit(e.Path, []byte(e.Content)) {
			files = append(files, e)
		}
	}
	if len(files) == 0 {
		return nil, &ImportError{Kind: KindEmptyResult, Err: fmt.Errorf("no importable files in drop")}
	}
	return files, nil
}
