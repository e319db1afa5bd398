package server

import (
	"encoding/json"
	"net/http"
	"testing"

	"codeloom/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVcs_InitCommitStatusDiff(t *testing.T) {
	s := newTestServer(&stubGateway{})

	initial := `{"files": [{"path": "a.txt", "content": "one"}]}`
	rec := doJSON(t, s, http.MethodPost, "/api/projects/demo/vcs/init", initial)
	require.Equal(t, http.StatusCreated, rec.Code)

	var snap models.CommitSnapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	assert.Equal(t, "Initial commit", snap.Message)

	// Double init conflicts.
	rec = doJSON(t, s, http.MethodPost, "/api/projects/demo/vcs/init", initial)
	assert.Equal(t, http.StatusConflict, rec.Code)

	// Modified content shows up in status.
	rec = doJSON(t, s, http.MethodPost, "/api/projects/demo/vcs/status",
		`{"files": [{"path": "a.txt", "content": "two"}, {"path": "b.txt", "content": "new"}]}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var status models.WorkspaceStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, []string{"a.txt"}, status.Modified)
	assert.Equal(t, []string{"b.txt"}, status.New)

	rec = doJSON(t, s, http.MethodPost, "/api/projects/demo/vcs/diff",
		`{"path": "a.txt", "files": [{"path": "a.txt", "content": "two"}]}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var diff models.FileDiff
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &diff))
	assert.Equal(t, "one", diff.Before)
	assert.Equal(t, "two", diff.After)

	// Commit, then status is clean.
	rec = doJSON(t, s, http.MethodPost, "/api/projects/demo/vcs/commit",
		`{"message": "update a", "files": [{"path": "a.txt", "content": "two"}]}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, s, http.MethodPost, "/api/projects/demo/vcs/status",
		`{"files": [{"path": "a.txt", "content": "two"}]}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Empty(t, status.Modified)
	assert.Empty(t, status.New)
	assert.Empty(t, status.Deleted)
}

func TestVcs_StageUnknownPath(t *testing.T) {
	s := newTestServer(&stubGateway{})

	rec := doJSON(t, s, http.MethodPost, "/api/projects/p/vcs/stage",
		`{"path": "ghost.txt", "files": []}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestVcs_DiscardRestoresFile(t *testing.T) {
	s := newTestServer(&stubGateway{})

	doJSON(t, s, http.MethodPost, "/api/projects/d/vcs/init",
		`{"files": [{"path": "a.txt", "content": "clean"}]}`)

	rec := doJSON(t, s, http.MethodPost, "/api/projects/d/vcs/discard",
		`{"path": "a.txt", "files": [{"path": "a.txt", "content": "dirty"}]}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var files []models.FileRecord
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &files))
	require.Len(t, files, 1)
	assert.Equal(t, "clean", files[0].Content)
}

func TestScaffold(t *testing.T) {
	s := newTestServer(&stubGateway{})

	rec := doJSON(t, s, http.MethodPost, "/api/scaffold",
		`{"language": "python", "projectName": "demo"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var files []models.FileRecord
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &files))
	assert.NotEmpty(t, files)

	rec = doJSON(t, s, http.MethodPost, "/api/scaffold", `{"language": "cobol"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestWorkspaceTree_Search(t *testing.T) {
	s := newTestServer(&stubGateway{})

	rec := doJSON(t, s, http.MethodPost, "/api/workspace/tree",
		`{"files": [{"path": "src/app.js", "content": ""}, {"path": "README.md", "content": ""}], "query": "app"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var root struct {
		Children []struct {
			Name string `json:"name"`
		} `json:"children"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &root))
	require.Len(t, root.Children, 1)
	assert.Equal(t, "src", root.Children[0].Name)
}
