package workspace

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScaffold_IsPure(t *testing.T) {
	for _, lang := range []string{"typescript", "javascript", "python", "go"} {
		first, err := Scaffold(lang, "demo")
		require.NoError(t, err, lang)
		second, err := Scaffold(lang, "demo")
		require.NoError(t, err, lang)
		assert.Equal(t, first, second, lang)
		assert.NotEmpty(t, first, lang)
	}
}

func TestScaffold_ManifestCarriesProjectName(t *testing.T) {
	ts, err := Scaffold("typescript", "shopping-cart")
	require.NoError(t, err)
	var manifest string
	for _, f := range ts {
		if f.Path == "package.json" {
			manifest = f.Content
		}
	}
	assert.Contains(t, manifest, `"name": "shopping-cart"`)
}

func TestScaffold_HasExpectedShape(t *testing.T) {
	files, err := Scaffold("python", "demo")
	require.NoError(t, err)

	byPath := map[string]bool{}
	for _, f := range files {
		byPath[f.Path] = true
		require.NoError(t, ValidatePath(f.Path))
	}
	for _, want := range []string{"pyproject.toml", ".gitignore", "README.md", "tests/test_utils.py"} {
		assert.True(t, byPath[want], "missing %s", want)
	}
}

func TestScaffold_UnknownLanguage(t *testing.T) {
	_, err := Scaffold("cobol", "demo")
	assert.Error(t, err)
}

func TestRewriteManifestName(t *testing.T) {
	files, err := Scaffold("typescript", "old-name")
	require.NoError(t, err)

	renamed := RewriteManifestName(files, "new-name")
	for _, f := range renamed {
		if f.Path == "package.json" {
			assert.Contains(t, f.Content, `"name": "new-name"`)
			assert.False(t, strings.Contains(f.Content, "old-name"))
		}
	}

	// Original slice untouched.
	for _, f := range files {
		if f.Path == "package.json" {
			assert.Contains(t, f.Content, "old-name")
		}
	}
}

func TestRewriteManifestName_GoModule(t *testing.T) {
	files, err := Scaffold("go", "My App")
	require.NoError(t, err)
	renamed := RewriteManifestName(files, "Cool App")
	for _, f := range renamed {
		if f.Path == "go.mod" {
			assert.True(t, strings.HasPrefix(f.Content, "module cool-app\n"), f.Content)
		}
	}
}
