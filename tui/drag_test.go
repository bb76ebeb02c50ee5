package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-pianoroll/sequencer"
)

func newTestManager() *sequencer.Manager {
	return sequencer.NewManager(1000, 120)
}

func inspect(m *sequencer.Manager, fn func(d *sequencer.PatternData, t *sequencer.Transport, a *sequencer.Auditioner)) {
	m.View(func(e *sequencer.Engine) {
		fn(e.Data, e.Transport, e.Auditioner)
	})
}

func TestNotePaintDrag_Paints(t *testing.T) {
	m := newTestManager()

	nd := NewNotePaintDrag(m, 0, Cell{Area: AreaGrid, Step: 2, Pitch: 5})
	inspect(m, func(d *sequencer.PatternData, _ *sequencer.Transport, a *sequencer.Auditioner) {
		assert.True(t, d.IsStepActive(0, 0, 2))
		assert.Equal(t, 5, d.StepPitch(0, 0, 2))
		assert.True(t, a.IsAuditioning())
		assert.Equal(t, 2, a.StepToAudition())
	})

	nd.OnDragMove(Cell{Area: AreaGrid, Step: 3, Pitch: 5})
	nd.OnDragMove(Cell{Area: AreaKeys, Step: -1, Pitch: 5})
	inspect(m, func(d *sequencer.PatternData, _ *sequencer.Transport, a *sequencer.Auditioner) {
		assert.True(t, d.IsStepActive(0, 0, 3))
		assert.Equal(t, 3, a.StepToAudition())
	})

	nd.OnDragEnd()
	inspect(m, func(_ *sequencer.PatternData, _ *sequencer.Transport, a *sequencer.Auditioner) {
		assert.False(t, a.IsAuditioning())
	})
}

func TestNotePaintDrag_Erases(t *testing.T) {
	m := newTestManager()
	m.Edit(func(d *sequencer.PatternData, _ *sequencer.Transport, _ *sequencer.Auditioner) {
		d.SetMeasures(0, 2)
		for s, pitch := range []int{5, 5, 7} {
			d.SetStepPitch(0, 1, s+2, pitch)
		}
		for s := 2; s <= 4; s++ {
			d.SetStepActive(0, 1, s, true)
		}
	})

	nd := NewNotePaintDrag(m, 1, Cell{Area: AreaGrid, Step: 2, Pitch: 5})
	nd.OnDragMove(Cell{Area: AreaGrid, Step: 3, Pitch: 5})
	nd.OnDragMove(Cell{Area: AreaGrid, Step: 4, Pitch: 5})
	nd.OnDragEnd()

	inspect(m, func(d *sequencer.PatternData, _ *sequencer.Transport, a *sequencer.Auditioner) {
		assert.False(t, d.IsStepActive(0, 1, 2))
		assert.False(t, d.IsStepActive(0, 1, 3))
		assert.True(t, d.IsStepActive(0, 1, 4), "different pitch is kept")
		assert.False(t, a.IsAuditioning())
	})
}

func TestVelocityDrag(t *testing.T) {
	m := newTestManager()
	m.Edit(func(d *sequencer.PatternData, _ *sequencer.Transport, _ *sequencer.Auditioner) {
		d.SetStepActive(0, 0, 0, true)
		d.SetStepActive(0, 0, 1, true)
	})
	view := newRollState()

	vd := NewVelocityDrag(m, view, 0, Cell{Area: AreaGrid, Step: 1, Row: 10})
	assert.InDelta(t, sequencer.DefaultVelocity, view.displayVelocity, 1e-9)

	vd.OnDragMove(Cell{Area: AreaGrid, Step: 1, Row: 8})
	inspect(m, func(d *sequencer.PatternData, _ *sequencer.Transport, _ *sequencer.Auditioner) {
		assert.InDelta(t, 0.85, d.StepVelocity(0, 0, 0), 1e-9)
		assert.InDelta(t, 0.85, d.StepVelocity(0, 0, 1), 1e-9)
	})
	assert.InDelta(t, 0.85, view.displayVelocity, 1e-9)

	// Far down clamps at zero
	vd.OnDragMove(Cell{Area: AreaNone, Row: 40})
	inspect(m, func(d *sequencer.PatternData, _ *sequencer.Transport, _ *sequencer.Auditioner) {
		assert.Equal(t, 0.0, d.StepVelocity(0, 0, 1))
	})

	vd.OnDragEnd()
	assert.Equal(t, -1.0, view.displayVelocity)
}

func TestPlayPositionDrag(t *testing.T) {
	m := newTestManager()
	m.Edit(func(d *sequencer.PatternData, _ *sequencer.Transport, _ *sequencer.Auditioner) {
		d.SetMeasures(0, 2)
	})

	pd := NewPlayPositionDrag(m, 1, Cell{Area: AreaPlayBar, Step: 3})
	inspect(m, func(_ *sequencer.PatternData, tr *sequencer.Transport, a *sequencer.Auditioner) {
		assert.Equal(t, 19, tr.CurrentStepInPattern())
		assert.True(t, a.IsAuditioning())
		assert.Equal(t, 19, a.StepToAudition())
	})

	pd.OnDragMove(Cell{Area: AreaGrid, Step: 5})
	inspect(m, func(_ *sequencer.PatternData, tr *sequencer.Transport, _ *sequencer.Auditioner) {
		assert.Equal(t, 21, tr.CurrentStepInPattern())
	})

	pd.OnDragEnd()
	inspect(m, func(_ *sequencer.PatternData, _ *sequencer.Transport, a *sequencer.Auditioner) {
		assert.False(t, a.IsAuditioning())
	})
}

func TestLockMeasureDrag_LongPress(t *testing.T) {
	m := newTestManager()
	m.Edit(func(d *sequencer.PatternData, _ *sequencer.Transport, _ *sequencer.Auditioner) {
		d.SetMeasures(0, 4)
	})
	view := newRollState()

	ld := NewLockMeasureDrag(m, view, 2)
	ld.Tick(0.5)
	assert.Equal(t, 0.5, view.lockPress)
	inspect(m, func(_ *sequencer.PatternData, tr *sequencer.Transport, _ *sequencer.Auditioner) {
		assert.False(t, tr.IsLocked(), "short press")
	})

	ld.Tick(0.5)
	ld.Tick(2)
	inspect(m, func(_ *sequencer.PatternData, tr *sequencer.Transport, _ *sequencer.Auditioner) {
		require.True(t, tr.IsLocked())
		assert.Equal(t, 2, tr.CurrentMeasure())
	})
	ld.OnDragEnd()
	assert.Equal(t, 0.0, view.lockPress)

	// A second long press unlocks
	ld = NewLockMeasureDrag(m, view, 2)
	ld.Tick(1)
	inspect(m, func(_ *sequencer.PatternData, tr *sequencer.Transport, _ *sequencer.Auditioner) {
		assert.False(t, tr.IsLocked())
	})
}

func TestLockMeasureDrag_LeavingCancels(t *testing.T) {
	m := newTestManager()
	view := newRollState()

	ld := NewLockMeasureDrag(m, view, 0)
	ld.Tick(0.6)
	ld.OnDragMove(Cell{Area: AreaMeasures, Measure: 0})
	ld.OnDragMove(Cell{Area: AreaGrid, Measure: 0})
	assert.Equal(t, 0.0, view.lockPress)
	ld.Tick(2)

	inspect(m, func(_ *sequencer.PatternData, tr *sequencer.Transport, _ *sequencer.Auditioner) {
		assert.False(t, tr.IsLocked())
	})
}

func TestKeyboardDrag(t *testing.T) {
	view := newRollState()
	kd := NewKeyboardDrag(view, Cell{Area: AreaKeys, Row: 5})

	kd.OnDragMove(Cell{Area: AreaKeys, Row: 7})
	assert.Equal(t, defaultLowestNote+2, view.lowestNote)

	kd.OnDragMove(Cell{Area: AreaNone, Row: 500})
	assert.Equal(t, highestPitch-defaultNotesToShow, view.lowestNote)

	kd.OnDragMove(Cell{Area: AreaNone, Row: -500})
	assert.Equal(t, lowestPitch, view.lowestNote)
}
