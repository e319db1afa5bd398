package models

// FileRecord is a single text file in a workspace. Path is a POSIX-style
// relative path, unique per workspace and case-sensitive.
type FileRecord struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}

// Clone returns a deep copy of the given file list.
func CloneFiles(files []FileRecord) []FileRecord {
	out := make([]FileRecord, len(files))
	copy(out, files)
	return out
}
