package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/gomidi/midi/v2/smf"

	"go-pianoroll/config"
	"go-pianoroll/sequencer"
)

func useConfig(t *testing.T) {
	t.Helper()
	cfg = config.DefaultConfig()
	cfg.Projects.Dir = t.TempDir()
	t.Cleanup(func() { cfg = nil })
}

func TestProjectName(t *testing.T) {
	useConfig(t)
	assert.Equal(t, "untitled", projectName(nil))
	cfg.UI.LastProject = "demo"
	assert.Equal(t, "demo", projectName(nil))
	assert.Equal(t, "other", projectName([]string{"other"}))
}

func TestOpenManager_RestoresLatestSave(t *testing.T) {
	useConfig(t)
	store, err := projectStore()
	require.NoError(t, err)

	manager, err := openManager(store, "demo")
	require.NoError(t, err)
	manager.Edit(func(d *sequencer.PatternData, _ *sequencer.Transport, _ *sequencer.Auditioner) {
		d.SetStepActive(2, 0, 5, true)
	})
	_, err = store.Save("demo", manager.State(), sequencer.FormatYAML)
	require.NoError(t, err)

	reopened, err := openManager(store, "demo")
	require.NoError(t, err)
	reopened.View(func(e *sequencer.Engine) {
		assert.True(t, e.Data.IsStepActive(2, 0, 5))
	})
}

func TestRunExport(t *testing.T) {
	useConfig(t)
	store, err := projectStore()
	require.NoError(t, err)

	e := sequencer.NewEngine()
	e.Data.SetStepActive(1, 0, 0, true)
	_, err = store.Save("demo", sequencer.ToPersisted(e), sequencer.FormatJSON)
	require.NoError(t, err)

	outPath = filepath.Join(t.TempDir(), "out.mid")
	pattern = 2
	t.Cleanup(func() { outPath, pattern = "", 1 })

	var stdout bytes.Buffer
	exportCmd.SetOut(&stdout)
	require.NoError(t, runExport(exportCmd, []string{"demo"}))
	assert.Contains(t, stdout.String(), "wrote pattern 2 of demo")

	f, err := os.Open(outPath)
	require.NoError(t, err)
	defer f.Close()
	rd, err := smf.ReadFrom(f)
	require.NoError(t, err)
	assert.Len(t, rd.Tracks, 2)
}

func TestRunExport_MissingProject(t *testing.T) {
	useConfig(t)
	assert.Error(t, runExport(exportCmd, []string{"nothing"}))
}
