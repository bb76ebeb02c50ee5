package tui

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-pianoroll/midi"
	"go-pianoroll/sequencer"
)

func newTestModel(t *testing.T) Model {
	m := NewModel(context.Background(), newTestManager(), testTheme(t))
	m.View() // lays out the roll
	return m
}

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	return next.(Model)
}

func keys(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestModel_TransportKeys(t *testing.T) {
	m := newTestModel(t)

	m = update(t, m, keys("r"))
	m = update(t, m, keys("]"))
	m = update(t, m, keys("m"))
	m = update(t, m, tea.KeyMsg{Type: tea.KeyRight})
	m = update(t, m, keys("l"))
	m = update(t, m, keys("+"))

	inspect(m.Manager, func(d *sequencer.PatternData, tr *sequencer.Transport, _ *sequencer.Auditioner) {
		assert.True(t, tr.IsPendingRecording())
		assert.Equal(t, 1, tr.CurrentPattern())
		assert.Equal(t, 2, d.Measures(1))
		assert.True(t, tr.IsLocked())
		assert.Equal(t, 1, tr.CurrentMeasure())
	})
	assert.Equal(t, 1, m.view.currentMeasure)
	assert.Equal(t, 125, m.Manager.Tempo())

	m = update(t, m, tea.KeyMsg{Type: tea.KeyRight})
	assert.Equal(t, 1, m.view.currentMeasure, "last measure")
}

func TestModel_GridAndClipboardKeys(t *testing.T) {
	m := newTestModel(t)
	m.Manager.Edit(func(d *sequencer.PatternData, _ *sequencer.Transport, _ *sequencer.Auditioner) {
		d.SetStepActive(0, 0, 3, true)
	})

	m = update(t, m, keys("c"))
	m = update(t, m, keys("m"))
	m = update(t, m, tea.KeyMsg{Type: tea.KeyRight})
	m = update(t, m, keys("v"))
	assert.Equal(t, "pasted into measure 2", m.status)

	m = update(t, m, keys("d"))
	m = update(t, m, keys("B"))
	inspect(m.Manager, func(d *sequencer.PatternData, _ *sequencer.Transport, _ *sequencer.Auditioner) {
		assert.True(t, d.IsStepActive(0, 1, 3))
		assert.Equal(t, 5, d.DivisionsPerBeat(0))
		assert.Equal(t, 3, d.BeatsPerMeasure(0))
	})

	m = update(t, m, keys("x"))
	inspect(m.Manager, func(d *sequencer.PatternData, _ *sequencer.Transport, _ *sequencer.Auditioner) {
		assert.False(t, d.HasContent(0))
	})
}

func TestModel_Save(t *testing.T) {
	m := newTestModel(t)
	m = update(t, m, keys("s"))
	assert.Equal(t, "saving disabled", m.status)

	store := sequencer.NewProjectStore(t.TempDir())
	m.Store = store
	m.Project = "demo"
	m = update(t, m, keys("s"))
	assert.Contains(t, m.status, "saved ")

	saves, err := store.ListSaves("demo")
	require.NoError(t, err)
	assert.Len(t, saves, 1)
}

func TestModel_MousePaintAndLock(t *testing.T) {
	m := newTestModel(t)
	top := m.bounds.rollTop
	require.Equal(t, 3, top)

	// Pitch 0 sits 13 rows into the roll with the default view
	y := top + 13
	x := func(step int) int { return keysWidth + step*cellWidth }

	m = update(t, m, tea.MouseMsg{X: x(2), Y: y, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	m = update(t, m, tea.MouseMsg{X: x(3), Y: y, Action: tea.MouseActionMotion, Button: tea.MouseButtonLeft})
	inspect(m.Manager, func(d *sequencer.PatternData, _ *sequencer.Transport, a *sequencer.Auditioner) {
		assert.True(t, d.IsStepActive(0, 0, 2))
		assert.True(t, d.IsStepActive(0, 0, 3))
		assert.Equal(t, 0, d.StepPitch(0, 0, 3))
		assert.True(t, a.IsAuditioning())
	})
	m = update(t, m, tea.MouseMsg{X: x(3), Y: y, Action: tea.MouseActionRelease})
	assert.Nil(t, m.drag)

	m = update(t, m, tea.MouseMsg{X: x(3), Y: y, Action: tea.MouseActionPress, Button: tea.MouseButtonRight})
	inspect(m.Manager, func(d *sequencer.PatternData, _ *sequencer.Transport, a *sequencer.Auditioner) {
		assert.False(t, a.IsAuditioning())
		assert.True(t, d.IsStepRetriggered(0, 0, 3))
	})

	// Hold the measure box past the lock time
	measures := top + m.view.keyRows() + 1
	m = update(t, m, tea.MouseMsg{X: x(0), Y: measures, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	require.IsType(t, &LockMeasureDrag{}, m.drag)
	for i := 0; i < 25; i++ {
		m = update(t, m, lockTickMsg{})
	}
	m = update(t, m, tea.MouseMsg{X: x(0), Y: measures, Action: tea.MouseActionRelease})
	inspect(m.Manager, func(_ *sequencer.PatternData, tr *sequencer.Transport, _ *sequencer.Auditioner) {
		assert.True(t, tr.IsLocked())
	})
}

func TestModel_View(t *testing.T) {
	m := newTestModel(t)
	out := m.View()
	assert.Contains(t, out, "go-pianoroll")
	assert.Contains(t, out, "C4")
	assert.NotContains(t, out, "Transport")

	m = update(t, m, keys("?"))
	assert.Contains(t, m.View(), "Transport")

	m = update(t, m, keys("q"))
	assert.Equal(t, "", m.View())
}

type testKeyboard struct {
	notes chan midi.NoteEvent
}

func (k *testKeyboard) ID() string                        { return "kb" }
func (k *testKeyboard) NoteEvents() <-chan midi.NoteEvent { return k.notes }
func (k *testKeyboard) Close() error                      { return nil }

func TestModel_KeyboardDisconnectReleasesKeys(t *testing.T) {
	m := newTestModel(t)
	capture := midi.NewCaptureState()
	m.Manager.SetCapture(capture)

	kb := &testKeyboard{notes: make(chan midi.NoteEvent)}
	defer close(kb.notes)

	m = update(t, m, DeviceEventMsg{Type: midi.DeviceConnected, ID: "kb", Controller: kb})
	assert.Equal(t, "keyboard: kb", m.status)

	capture.HandleNote(midi.NoteEvent{Note: 60, Velocity: 100})
	require.Equal(t, 1, capture.Held())

	m = update(t, m, DeviceEventMsg{Type: midi.DeviceDisconnected, ID: "kb"})
	assert.Equal(t, "keyboard disconnected", m.status)
	assert.Zero(t, capture.Held())
}
