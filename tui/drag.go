package tui

import (
	"go-pianoroll/sequencer"
)

// Area is the part of the roll a cell was hit in
type Area int

const (
	AreaNone Area = iota
	AreaPlayBar
	AreaKeys
	AreaGrid
	AreaMeasures
)

// Cell is the result of hit-testing a mouse position against the roll.
// Step is within the displayed measure, Row is the terminal row relative to
// the top of the roll.
type Cell struct {
	Area    Area
	Measure int
	Step    int
	Pitch   int
	Row     int
}

// Editor gives drag modes exclusive access to the sequencer
type Editor interface {
	Edit(fn func(d *sequencer.PatternData, t *sequencer.Transport, a *sequencer.Auditioner))
}

// DragMode handles pointer motion for the gesture started by a press
type DragMode interface {
	OnDragMove(cell Cell)
}

// dragEnder is implemented by modes that clean up on release
type dragEnder interface {
	OnDragEnd()
}

// ticker is implemented by modes that react to how long the press is held
type ticker interface {
	Tick(seconds float64)
}

// NotePaintDrag paints steps at the pitch under the pointer, or erases them
// when the gesture started on a note. Painted steps are auditioned.
type NotePaintDrag struct {
	editor  Editor
	measure int
	erase   bool
	last    Cell
}

// NewNotePaintDrag starts painting at cell
func NewNotePaintDrag(editor Editor, measure int, cell Cell) *NotePaintDrag {
	nd := &NotePaintDrag{editor: editor, measure: measure, last: cell}
	editor.Edit(func(d *sequencer.PatternData, t *sequencer.Transport, a *sequencer.Auditioner) {
		p := t.CurrentPattern()
		nd.erase = d.IsStepActive(p, measure, cell.Step) && d.StepPitch(p, measure, cell.Step) == cell.Pitch
		nd.apply(d, t, a, cell)
	})
	return nd
}

func (nd *NotePaintDrag) OnDragMove(cell Cell) {
	if cell.Area != AreaGrid || (cell.Step == nd.last.Step && cell.Pitch == nd.last.Pitch) {
		return
	}
	nd.last = cell
	nd.editor.Edit(func(d *sequencer.PatternData, t *sequencer.Transport, a *sequencer.Auditioner) {
		nd.apply(d, t, a, cell)
	})
}

func (nd *NotePaintDrag) apply(d *sequencer.PatternData, t *sequencer.Transport, a *sequencer.Auditioner, cell Cell) {
	p := t.CurrentPattern()
	if nd.erase {
		if d.StepPitch(p, nd.measure, cell.Step) == cell.Pitch {
			d.SetStepActive(p, nd.measure, cell.Step, false)
		}
		return
	}
	d.SetStepPitch(p, nd.measure, cell.Step, cell.Pitch)
	d.SetStepActive(p, nd.measure, cell.Step, true)
	a.Start(nd.measure*d.StepsPerMeasure(p) + cell.Step)
}

func (nd *NotePaintDrag) OnDragEnd() {
	nd.editor.Edit(func(_ *sequencer.PatternData, _ *sequencer.Transport, a *sequencer.Auditioner) {
		a.Stop()
	})
}

// velocityPerRow is how much one row of vertical motion changes velocity
const velocityPerRow = 0.05

// VelocityDrag changes the velocity of the note group under the starting
// step by vertical motion: up is louder.
type VelocityDrag struct {
	editor  Editor
	view    *rollState
	measure int
	step    int
	lastRow int
}

func NewVelocityDrag(editor Editor, view *rollState, measure int, cell Cell) *VelocityDrag {
	vd := &VelocityDrag{editor: editor, view: view, measure: measure, step: cell.Step, lastRow: cell.Row}
	editor.Edit(func(d *sequencer.PatternData, t *sequencer.Transport, _ *sequencer.Auditioner) {
		view.displayVelocity = d.StepVelocity(t.CurrentPattern(), measure, cell.Step)
	})
	return vd
}

func (vd *VelocityDrag) OnDragMove(cell Cell) {
	rows := vd.lastRow - cell.Row
	if rows == 0 {
		return
	}
	vd.lastRow = cell.Row
	vd.editor.Edit(func(d *sequencer.PatternData, t *sequencer.Transport, _ *sequencer.Auditioner) {
		vd.view.displayVelocity = d.AdjustVelocity(t.CurrentPattern(), vd.measure, vd.step, float64(rows)*velocityPerRow)
	})
}

func (vd *VelocityDrag) OnDragEnd() {
	vd.view.displayVelocity = -1
}

// PlayPositionDrag moves the playback cursor to the step under the pointer
// and auditions it while held.
type PlayPositionDrag struct {
	editor  Editor
	measure int
	last    int
}

func NewPlayPositionDrag(editor Editor, measure int, cell Cell) *PlayPositionDrag {
	pd := &PlayPositionDrag{editor: editor, measure: measure, last: -1}
	pd.OnDragMove(cell)
	return pd
}

func (pd *PlayPositionDrag) OnDragMove(cell Cell) {
	if cell.Area == AreaNone || cell.Area == AreaKeys || cell.Step == pd.last {
		return
	}
	pd.last = cell.Step
	pd.editor.Edit(func(d *sequencer.PatternData, t *sequencer.Transport, a *sequencer.Auditioner) {
		step := pd.measure*d.StepsPerMeasure(t.CurrentPattern()) + cell.Step
		t.SetStepInPattern(step)
		a.Start(step)
	})
}

func (pd *PlayPositionDrag) OnDragEnd() {
	pd.editor.Edit(func(_ *sequencer.PatternData, _ *sequencer.Transport, a *sequencer.Auditioner) {
		a.Stop()
	})
}

// lockHoldTime is how long a measure box must be held to toggle the lock
const lockHoldTime = 1.0

// LockMeasureDrag toggles the measure lock after a long press on a measure
// box. Leaving the box cancels it.
type LockMeasureDrag struct {
	editor    Editor
	view      *rollState
	measure   int
	done      bool
	cancelled bool
}

func NewLockMeasureDrag(editor Editor, view *rollState, measure int) *LockMeasureDrag {
	view.lockPress = 0
	return &LockMeasureDrag{editor: editor, view: view, measure: measure}
}

func (ld *LockMeasureDrag) OnDragMove(cell Cell) {
	if cell.Area != AreaMeasures || cell.Measure != ld.measure {
		ld.cancelled = true
		ld.view.lockPress = 0
	}
}

// Tick advances the press timer
func (ld *LockMeasureDrag) Tick(seconds float64) {
	if ld.done || ld.cancelled {
		return
	}
	ld.view.lockPress += seconds
	if ld.view.lockPress < lockHoldTime {
		return
	}
	ld.done = true
	ld.editor.Edit(func(_ *sequencer.PatternData, t *sequencer.Transport, _ *sequencer.Auditioner) {
		if t.IsLocked() {
			t.UnlockMeasure()
			return
		}
		if t.CurrentMeasure() != ld.measure {
			t.SetMeasure(ld.measure)
		}
		t.LockMeasure()
	})
}

func (ld *LockMeasureDrag) OnDragEnd() {
	ld.view.lockPress = 0
}

// KeyboardDrag scrolls the visible keys with vertical motion
type KeyboardDrag struct {
	view    *rollState
	lastRow int
}

func NewKeyboardDrag(view *rollState, cell Cell) *KeyboardDrag {
	return &KeyboardDrag{view: view, lastRow: cell.Row}
}

func (kd *KeyboardDrag) OnDragMove(cell Cell) {
	kd.view.scroll(cell.Row - kd.lastRow)
	kd.lastRow = cell.Row
}
