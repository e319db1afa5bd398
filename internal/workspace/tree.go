package workspace

import (
	"sort"
	"strings"

	"codeloom/internal/models"
)

// Node kinds.
const (
	KindFile   = "file"
	KindFolder = "folder"
)

// Node is one entry of the derived file tree. Folders are synthesized
// from path prefixes and have no independent existence in the workspace.
type Node struct {
	Name     string  `json:"name"`
	Path     string  `json:"path"`
	Kind     string  `json:"kind"`
	Children []*Node `json:"children,omitempty"`
}

// BuildTree derives the nested tree from an ordered file list. The
// derivation is pure: the tree is recomputable from the workspace alone.
func BuildTree(files []models.FileRecord) *Node {
	root := &Node{Name: "", Path: "", Kind: KindFolder}
	index := map[string]*Node{"": root}

	for _, f := range files {
		segments := strings.Split(f.Path, "/")
		parentPath := ""
		for i, seg := range segments {
			childPath := seg
			if parentPath != "" {
				childPath = parentPath + "/" + seg
			}
			if _, ok := index[childPath]; ok {
				parentPath = childPath
				continue
			}
			kind := KindFolder
			if i == len(segments)-1 {
				kind = KindFile
			}
			node := &Node{Name: seg, Path: childPath, Kind: kind}
			index[parentPath].Children = append(index[parentPath].Children, node)
			index[childPath] = node
			parentPath = childPath
		}
	}

	sortTree(root)
	return root
}

// sortTree orders every level folders-first, then alphabetically, the
// way file explorers render.
func sortTree(n *Node) {
	sort.SliceStable(n.Children, func(i, j int) bool {
		a, b := n.Children[i], n.Children[j]
		if a.Kind != b.Kind {
			return a.Kind == KindFolder
		}
		return a.Name < b.Name
	})
	for _, c := range n.Children {
		sortTree(c)
	}
}

// Search filters the workspace by a case-insensitive substring over paths
// and returns the tree of the matches.
func Search(files []models.FileRecord, query string) *Node {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return BuildTree(files)
	}
	var matched []models.FileRecord
	for _, f := range files {
		if strings.Contains(strings.ToLower(f.Path), query) {
			matched = append(matched, f)
		}
	}
	return BuildTree(matched)
}
