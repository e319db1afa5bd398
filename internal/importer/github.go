package importer

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"codeloom/internal/models"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/storage/memory"
)

const defaultArchiveHost = "https://codeload.github.com"

// RepoRef identifies a repository and an optional branch.
type RepoRef struct {
	Owner  string
	Repo   string
	Branch string
}

// GitHubImporter fetches a repository's files without touching disk. The
// primary path downloads the branch archive; when the archive host is
// unreachable it falls back to a shallow in-memory clone.
type GitHubImporter struct {
	httpClient  *http.Client
	archiveHost string
}

func NewGitHubImporter() *GitHubImporter {
	return &GitHubImporter{
		httpClient:  &http.Client{Timeout: 60 * time.Second},
		archiveHost: defaultArchiveHost,
	}
}

// SetArchiveHost overrides the archive endpoint, used by tests.
func (g *GitHubImporter) SetArchiveHost(host string) {
	if host != "" {
		g.archiveHost = strings.TrimRight(host, "/")
	}
}

// ParseRepoURL extracts owner, repo and optional branch from a GitHub
// repository URL. Accepted shapes:
//
//	https://github.com/owner/repo
//	https://github.com/owner/repo.git
//	https://github.com/owner/repo/tree/branch
func ParseRepoURL(repoURL string) (RepoRef, error) {
	repoURL = strings.TrimSpace(repoURL)
	if repoURL == "" {
		return RepoRef{}, &ImportError{Kind: KindInvalidURL, Err: fmt.Errorf("empty repository URL")}
	}
	u, err := url.Parse(repoURL)
	if err != nil || u.Host == "" {
		return RepoRef{}, &ImportError{Kind: KindInvalidURL, Err: fmt.Errorf("not a URL: %q", repoURL)}
	}

	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(segments) < 2 || segments[0] == "" || segments[1] == "" {
		return RepoRef{}, &ImportError{Kind: KindInvalidURL, Err: fmt.Errorf("URL %q has no owner/repo", repoURL)}
	}

	ref := RepoRef{
		Owner: segments[0],
		Repo:  strings.TrimSuffix(segments[1], ".git"),
	}
	if len(segments) >= 4 && segments[2] == "tree" {
		ref.Branch = strings.Join(segments[3:], "/")
	}
	return ref, nil
}

// Import fetches the repository and returns the admitted files.
func (g *GitHubImporter) Import(ctx context.Context, repoURL string) ([]models.FileRecord, error) {
	ref, err := ParseRepoURL(repoURL)
	if err != nil {
		return nil, err
	}

	files, archiveErr := g.fetchArchive(ctx, ref)
	if archiveErr != nil {
		var ierr *ImportError
		if errors.As(archiveErr, &ierr) && ierr.Kind == KindNetworkFailure {
			log.Printf("importer: archive fetch failed (%v), falling back to clone", archiveErr)
			files, err = g.clone(ctx, ref)
			if err != nil {
				return nil, archiveErr
			}
		} else {
			return nil, archiveErr
		}
	}

	if len(files) == 0 {
		return nil, &ImportError{Kind: KindEmptyResult, Err: fmt.Errorf("repository %s/%s yielded no importable files", ref.Owner, ref.Repo)}
	}
	return files, nil
}

// fetchArchive downloads and unpacks the branch zip archive.
func (g *GitHubImporter) fetchArchive(ctx context.Context, ref RepoRef) ([]models.FileRecord, error) {
	archiveRef := "HEAD"
	if ref.Branch != "" {
		archiveRef = "refs/heads/" + ref.Branch
	}
	archiveURL := fmt.Sprintf("%s/%s/%s/zip/%s", g.archiveHost, ref.Owner, ref.Repo, archiveRef)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, archiveURL, nil)
	if err != nil {
		return nil, &ImportError{Kind: KindInvalidURL, Err: err}
	}
	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, &ImportError{Kind: KindNetworkFailure, Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, &ImportError{Kind: KindNetworkFailure, Err: fmt.Errorf("archive endpoint returned %s", resp.Status)}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &ImportError{Kind: KindNetworkFailure, Err: err}
	}
	return ExtractZip(data)
}

// ExtractZip unpacks an archive buffer, strips the single root directory
// archives wrap content in, and applies the admission policy.
func ExtractZip(data []byte) ([]models.FileRecord, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, &ImportError{Kind: KindArchiveMalformed, Err: err}
	}

	var files []models.FileRecord
	for _, entry := range zr.File {
		if entry.FileInfo().IsDir() {
			continue
		}
		name := strings.TrimPrefix(entry.Name, "/")
		rc, err := entry.Open()
		if err != nil {
			return nil, &ImportError{Kind: KindArchiveMalformed, Err: err}
		}
		content, err := io.ReadAll(io.LimitReader(rc, maxFileSize+1))
		rc.Close()
		if err != nil {
			return nil, &ImportError{Kind: KindArchiveMalformed, Err: err}
		}
		files = append(files, models.FileRecord{Path: name, Content: string(content)})
	}

	files = StripSingleRoot(files)

	admitted := files[:0]
	for _, f := range files {
		if Admit(f.Path, []byte(f.Content)) {
			admitted = append(admitted, f)
		}
	}
	return admitted, nil
}

// StripSingleRoot removes the shared leading directory when every path
// lives under exactly one root, the way repository archives are laid out.
func StripSingleRoot(files []models.FileRecord) []models.FileRecord {
	if len(files) == 0 {
		return files
	}
	root := ""
	for _, f := range files {
		idx := strings.Index(f.Path, "/")
		if idx <= 0 {
			return files
		}
		seg := f.Path[:idx]
		if root == "" {
			root = seg
		} else if seg != root {
			return files
		}
	}
	out := make([]models.FileRecord, len(files))
	for i, f := range files {
		out[i] = models.FileRecord{Path: f.Path[len(root)+1:], Content: f.Content}
	}
	return out
}

// clone performs a shallow in-memory clone and reads the worktree.
func (g *GitHubImporter) clone(ctx context.Context, ref RepoRef) ([]models.FileRecord, error) {
	fs := memfs.New()
	opts := &git.CloneOptions{
		URL:          fmt.Sprintf("https://github.com/%s/%s.git", ref.Owner, ref.Repo),
		Depth:        1,
		SingleBranch: true,
	}
	if ref.Branch != "" {
		opts.ReferenceName = plumbing.NewBranchReferenceName(ref.Branch)
	}
	if _, err := git.CloneContext(ctx, memory.NewStorage(), fs, opts); err != nil {
		return nil, &ImportError{Kind: KindNetworkFailure, Err: err}
	}
	return readBillyTree(fs, "")
}

// readBillyTree walks an in-memory filesystem collecting admitted files.
func readBillyTree(fs billy.Filesystem, dir string) ([]models.FileRecord, error) {
	entries, err := fs.ReadDir(dir)
	if err != nil {
		return nil, &ImportError{Kind: KindArchiveMalformed, Err: err}
	}
	// Deterministic order regardless of filesystem iteration.
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	var files []models.FileRecord
	for _, entry := range entries {
		p := entry.Name()
		if dir != "" {
			p = dir + "/" + entry.Name()
		}
		if entry.IsDir() {
			if _, ignored := ignoredDirs[entry.Name()]; ignored {
				continue
			}
			children, err := readBillyTree(fs, p)
			if err != nil {
				return nil, err
			}
			files = append(files, children...)
			continue
		}
		if !AdmitPath(p) || entry.Size() > maxFileSize {
			continue
		}
		content, err := util.ReadFile(fs, p)
		if err != nil {
			return nil, &ImportError{Kind: KindArchiveMalformed, Err: err}
		}
		if !AdmitContent(content) {
			continue
		}
		files = append(files, models.FileRecord{Path: p, Content: string(content)})
	}
	return files, nil
}
