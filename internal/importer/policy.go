// Package importer converts external project sources (GitHub archives,
// local folders) into workspace files, filtering out everything that is
// not reasonably-sized text.
package importer

import (
	"bytes"
	"fmt"
	"path"
	"strings"
)

// ImportKind classifies an import failure.
type ImportKind string

const (
	KindInvalidURL       ImportKind = "invalidUrl"
	KindNetworkFailure   ImportKind = "networkFailure"
	KindArchiveMalformed ImportKind = "archiveMalformed"
	KindEmptyResult      ImportKind = "emptyResult"
)

// ImportError wraps an import failure with its classification. Imports
// are all-or-nothing: the workspace is never touched on failure.
type ImportError struct {
	Kind ImportKind
	Err  error
}

func (e *ImportError) Error() string {
	return fmt.Sprintf("import %s: %v", e.Kind, e.Err)
}

func (e *ImportError) Unwrap() error { return e.Err }

// maxFileSize is the decoded-size admission cap.
const maxFileSize = 100 * 1024

// ignoredDirs are path segments that disqualify a file wherever they
// appear in its path.
var ignoredDirs = map[string]struct{}{
	".git":         {},
	".hg":          {},
	".svn":         {},
	"node_modules": {},
	"dist":         {},
	"build":        {},
	"out":          {},
	"vendor":       {},
	"target":       {},
	".next":        {},
	".nuxt":        {},
	"coverage":     {},
	"__pycache__":  {},
	".idea":        {},
	".vscode":      {},
	".cache":       {},
}

// ignoredExts cover images, fonts, media, archives and compiled
// artifacts, none of which can usefully enter a text workspace.
var ignoredExts = map[string]struct{}{
	".png": {}, ".jpg": {}, ".jpeg": {}, ".gif": {}, ".webp": {}, ".ico": {}, ".bmp": {}, ".svg": {},
	".woff": {}, ".woff2": {}, ".ttf": {}, ".otf": {}, ".eot": {},
	".mp3": {}, ".mp4": {}, ".wav": {}, ".ogg": {}, ".avi": {}, ".mov": {}, ".webm": {}, ".flac": {},
	".zip": {}, ".tar": {}, ".gz": {}, ".tgz": {}, ".bz2": {}, ".xz": {}, ".rar": {}, ".7z": {},
	".exe": {}, ".dll": {}, ".so": {}, ".dylib": {}, ".bin": {}, ".o": {}, ".a": {},
	".class": {}, ".jar": {}, ".pyc": {}, ".wasm": {}, ".pdf": {},
}

// ignoredFiles are exact basenames, mostly lockfiles whose bulk adds
// nothing the model can use.
var ignoredFiles = map[string]struct{}{
	"package-lock.json": {},
	"yarn.lock":         {},
	"pnpm-lock.yaml":    {},
	"bun.lockb":         {},
	"Cargo.lock":        {},
	"go.sum":            {},
	"poetry.lock":       {},
	"composer.lock":     {},
	"Gemfile.lock":      {},
	".DS_Store":         {},
}

// AdmitPath reports whether a relative path passes the directory,
// extension and filename filters.
func AdmitPath(p string) bool {
	for _, seg := range strings.Split(p, "/") {
		if _, ignored := ignoredDirs[seg]; ignored {
			return false
		}
	}
	base := path.Base(p)
	if _, ignored := ignoredFiles[base]; ignored {
		return false
	}
	if _, ignored := ignoredExts[strings.ToLower(path.Ext(base))]; ignored {
		return false
	}
	return true
}

// AdmitContent reports whether decoded content is small enough and looks
// like text (no NUL byte).
func AdmitContent(content []byte) bool {
	if len(content) > maxFileSize {
		return false
	}
	return !bytes.ContainsRune(content, 0)
}

// Admit combines both checks.
func Admit(p string, content []byte) bool {
	return AdmitPath(p) && AdmitContent(content)
}
