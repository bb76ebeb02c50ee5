package sequencer

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*ProjectStore, *time.Time) {
	t.Helper()
	now := time.Date(2024, 1, 15, 14, 30, 0, 0, time.UTC)
	ps := &ProjectStore{
		Dir: t.TempDir(),
		Now: func() time.Time { return now },
	}
	return ps, &now
}

func TestProjectStore_SaveAndLoadLatest(t *testing.T) {
	ps, now := newTestStore(t)

	first := populatedEngine()
	name, err := ps.Save("song", ToPersisted(first), FormatJSON)
	require.NoError(t, err)
	assert.Equal(t, "2024-01-15_14-30-00.json", name)

	*now = now.Add(time.Minute)
	second := NewEngine()
	second.Data.SetStepActive(5, 0, 1, true)
	name, err = ps.Save("song", ToPersisted(second), FormatYAML)
	require.NoError(t, err)
	assert.Equal(t, "2024-01-15_14-31-00.yaml", name)

	saves, err := ps.ListSaves("song")
	require.NoError(t, err)
	require.Len(t, saves, 2)
	assert.Equal(t, "2024-01-15_14-31-00.yaml", saves[0].Filename)
	assert.Equal(t, FormatYAML, saves[0].Format)

	s, err := ps.Load("song", "")
	require.NoError(t, err)
	e := NewEngine()
	FromPersisted(e, s)
	assert.True(t, e.Data.IsStepActive(5, 0, 1))

	s, err = ps.Load("song", "2024-01-15_14-30-00.json")
	require.NoError(t, err)
	FromPersisted(e, s)
	assert.Equal(t, first.Data.patterns, e.Data.patterns)
}

func TestProjectStore_EmptyNameIsUntitled(t *testing.T) {
	ps, _ := newTestStore(t)
	_, err := ps.Save("", ToPersisted(NewEngine()), FormatJSON)
	require.NoError(t, err)

	projects, err := ps.ListProjects()
	require.NoError(t, err)
	assert.Equal(t, []string{"untitled"}, projects)
}

func TestProjectStore_LoadWithoutSaves(t *testing.T) {
	ps, _ := newTestStore(t)
	require.NoError(t, ps.CreateProject("empty"))

	_, err := ps.Load("empty", "")
	assert.Error(t, err)
}

func TestProjectStore_ListSavesSkipsForeignFiles(t *testing.T) {
	ps, _ := newTestStore(t)
	dir := ps.ProjectDir("p")
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "sub"), 0755))
	for _, name := range []string{"notes.txt", "bad.json", "2024-01-15_14-30-00_take-2.yml"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("{}"), 0644))
	}

	saves, err := ps.ListSaves("p")
	require.NoError(t, err)
	require.Len(t, saves, 1)
	assert.Equal(t, "take-2", saves[0].Name)

	saves, err = ps.ListSaves("missing")
	require.NoError(t, err)
	assert.Empty(t, saves)
}

func TestProjectStore_RenameAndDelete(t *testing.T) {
	ps, _ := newTestStore(t)
	name, err := ps.Save("a", ToPersisted(NewEngine()), FormatYAML)
	require.NoError(t, err)

	renamed, err := ps.RenameSave("a", name, "my take: 1?")
	require.NoError(t, err)
	assert.Equal(t, "2024-01-15_14-30-00_my-take--1.yaml", renamed)

	renamed, err = ps.RenameSave("a", renamed, "")
	require.NoError(t, err)
	assert.Equal(t, "2024-01-15_14-30-00.yaml", renamed)

	_, err = ps.RenameSave("a", "nope.json", "x")
	assert.Error(t, err)

	require.NoError(t, ps.RenameProject("a", "b"))
	projects, err := ps.ListProjects()
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, projects)

	require.NoError(t, ps.DeleteSave("b", renamed))
	saves, err := ps.ListSaves("b")
	require.NoError(t, err)
	assert.Empty(t, saves)

	require.NoError(t, ps.DeleteProject("b"))
	projects, err = ps.ListProjects()
	require.NoError(t, err)
	assert.Empty(t, projects)
}
