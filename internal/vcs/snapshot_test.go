package vcs

import (
	"testing"
	"time"

	"codeloom/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func files(pairs ...string) []models.FileRecord {
	out := make([]models.FileRecord, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, models.FileRecord{Path: pairs[i], Content: pairs[i+1]})
	}
	return out
}

func newStore(t *testing.T, initial []models.FileRecord) *Store {
	t.Helper()
	s := NewStore()
	s.SetClock(func() time.Time { return time.Unix(1700000000, 0) })
	_, err := s.InitSnapshot(initial)
	require.NoError(t, err)
	return s
}

func TestInitSnapshot(t *testing.T) {
	s := newStore(t, files("a.ts", "A"))

	commits := s.Commits()
	require.Len(t, commits, 1)
	assert.Equal(t, "Initial commit", commits[0].Message)
	assert.Equal(t, DefaultAuthor, commits[0].Author)
	assert.NotEmpty(t, commits[0].ID)

	_, err := s.InitSnapshot(nil)
	assert.Error(t, err)
}

func TestSnapshotIsDeepCopy(t *testing.T) {
	ws := files("a.ts", "A")
	s := newStore(t, ws)

	ws[0].Content = "mutated"
	head, _ := s.Head()
	assert.Equal(t, "A", head.Files[0].Content)
}

func TestStage_RequiresKnownPath(t *testing.T) {
	s := newStore(t, files("a.ts", "A"))
	current := files("a.ts", "A", "b.ts", "B")

	require.NoError(t, s.Stage("b.ts", current))
	require.NoError(t, s.Stage("a.ts", current))
	assert.Error(t, s.Stage("ghost.ts", current))
	assert.Equal(t, []string{"a.ts", "b.ts"}, s.Staged())

	// Deletion staging: the path is gone from the workspace but lives in
	// the newest snapshot.
	require.NoError(t, s.Stage("a.ts", files("b.ts", "B")))
}

func TestUnstage(t *testing.T) {
	s := newStore(t, files("a.ts", "A"))
	require.NoError(t, s.Stage("a.ts", files("a.ts", "A")))
	s.Unstage("a.ts")
	assert.Empty(t, s.Staged())
	assert.False(t, s.IsStaged("a.ts"))
}

func TestCommit_PrependsAndClearsStaging(t *testing.T) {
	s := newStore(t, files("a.ts", "A"))
	current := files("a.ts", "A2")
	require.NoError(t, s.Stage("a.ts", current))

	snap, err := s.Commit("update a", current)
	require.NoError(t, err)
	assert.Equal(t, "update a", snap.Message)

	commits := s.Commits()
	require.Len(t, commits, 2)
	assert.Equal(t, "update a", commits[0].Message)
	assert.Equal(t, "Initial commit", commits[1].Message)
	assert.Empty(t, s.Staged())

	_, err = s.Commit("", current)
	assert.Error(t, err)
}

func TestStatus_AfterCommitIsClean(t *testing.T) {
	s := newStore(t, files("a.ts", "A"))
	current := files("a.ts", "A2", "b.ts", "B")
	_, err := s.Commit("work", current)
	require.NoError(t, err)

	st := s.Status(current)
	assert.Empty(t, st.Modified)
	assert.Empty(t, st.New)
	assert.Empty(t, st.Deleted)
}

func TestStatus_Classification(t *testing.T) {
	s := newStore(t, files("a.ts", "A", "gone.ts", "G"))
	current := files("a.ts", "CHANGED", "new.ts", "N")

	st := s.Status(current)
	assert.Equal(t, []string{"a.ts"}, st.Modified)
	assert.Equal(t, []string{"new.ts"}, st.New)
	assert.Equal(t, []string{"gone.ts"}, st.Deleted)
}

func TestDiscard_RestoresSnapshotContent(t *testing.T) {
	s := newStore(t, files("a.ts", "A"))
	current := files("a.ts", "DIRTY")

	restored := s.Discard("a.ts", current)
	require.Len(t, restored, 1)
	assert.Equal(t, "A", restored[0].Content)

	st := s.Status(restored)
	assert.NotContains(t, st.Modified, "a.ts")
	assert.NotContains(t, st.New, "a.ts")
	assert.NotContains(t, st.Deleted, "a.ts")
}

func TestDiscard_RemovesUncommittedFile(t *testing.T) {
	s := newStore(t, files("a.ts", "A"))
	current := files("a.ts", "A", "fresh.ts", "F")

	restored := s.Discard("fresh.ts", current)
	require.Len(t, restored, 1)
	assert.Equal(t, "a.ts", restored[0].Path)
}

func TestDiscard_ResurrectsDeletedFile(t *testing.T) {
	s := newStore(t, files("a.ts", "A", "b.ts", "B"))
	current := files("a.ts", "A")

	restored := s.Discard("b.ts", current)
	require.Len(t, restored, 2)
	assert.Equal(t, models.FileRecord{Path: "b.ts", Content: "B"}, restored[1])
}

func TestDiff(t *testing.T) {
	s := newStore(t, files("a.ts", "line one\n"))

	d := s.Diff("a.ts", files("a.ts", "line one\nline two\n"))
	assert.Equal(t, "line one\n", d.Before)
	assert.Equal(t, "line one\nline two\n", d.After)
	assert.NotEmpty(t, d.Unified)

	clean := s.Diff("a.ts", files("a.ts", "line one\n"))
	assert.Empty(t, clean.Unified)

	fresh := s.Diff("new.ts", files("new.ts", "N"))
	assert.Empty(t, fresh.Before)
	assert.Equal(t, "N", fresh.After)
}
