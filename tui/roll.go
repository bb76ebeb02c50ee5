package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"go-pianoroll/midi"
	"go-pianoroll/sequencer"
	"go-pianoroll/theme"
	"go-pianoroll/widgets"
)

const (
	keysWidth = 5 // "C#4" plus padding
	cellWidth = 2

	defaultLowestNote  = -12
	defaultNotesToShow = 24

	// Visible pitches stay inside the MIDI key range
	lowestPitch  = -midi.MiddleC
	highestPitch = 127 - midi.MiddleC
)

// rollState is view state that is not part of the sequencer
type rollState struct {
	currentMeasure  int
	lowestNote      int
	notesToShow     int
	lastDrawnStep   int
	lockPress       float64 // seconds the measure box has been held
	displayVelocity float64 // -1 hides the readout
}

func newRollState() *rollState {
	return &rollState{
		lowestNote:      defaultLowestNote,
		notesToShow:     defaultNotesToShow,
		lastDrawnStep:   -1,
		displayVelocity: -1,
	}
}

func (s *rollState) keyRows() int {
	return s.notesToShow + 1
}

func (s *rollState) highestNote() int {
	return s.lowestNote + s.notesToShow
}

func (s *rollState) scroll(semitones int) {
	s.lowestNote = min(max(s.lowestNote+semitones, lowestPitch), highestPitch-s.notesToShow)
}

// follow jumps the view to the playing measure whenever the cursor moves
func (s *rollState) follow(t *sequencer.Transport, measures int) {
	step := t.CurrentStepInPattern()
	if t.CurrentMeasure() != s.currentMeasure && s.lastDrawnStep != step {
		s.currentMeasure = t.CurrentMeasure()
	}
	s.lastDrawnStep = step
	s.currentMeasure = min(max(s.currentMeasure, 0), measures-1)
}

// rollSnapshot is everything the roll draws, copied under the manager lock
type rollSnapshot struct {
	pattern         int
	measures        int
	beats           int
	divisions       int
	stepsPerMeasure int
	steps           []sequencer.Step

	playMeasure int
	playStep    int // within playMeasure, -1 when unset

	running          bool
	recording        bool
	pendingRecording bool
	locked           bool
	clockDelay       int
}

func takeSnapshot(e *sequencer.Engine, measure int) rollSnapshot {
	d, t := e.Data, e.Transport
	p := t.CurrentPattern()
	snap := rollSnapshot{
		pattern:          p,
		measures:         d.Measures(p),
		beats:            d.BeatsPerMeasure(p),
		divisions:        d.DivisionsPerBeat(p),
		stepsPerMeasure:  d.StepsPerMeasure(p),
		playMeasure:      t.CurrentMeasure(),
		playStep:         t.CurrentStepInMeasure(),
		running:          t.IsRunning(),
		recording:        t.IsRecording(),
		pendingRecording: t.IsPendingRecording(),
		locked:           t.IsLocked(),
		clockDelay:       e.ClockDelay(),
	}
	measure = min(max(measure, 0), snap.measures-1)
	snap.steps = make([]sequencer.Step, snap.stepsPerMeasure)
	for s := range snap.steps {
		snap.steps[s] = d.Step(p, measure, s)
	}
	return snap
}

// hitTest maps a position relative to the top left of the roll to a cell
func hitTest(view *rollState, snap rollSnapshot, x, y int) Cell {
	cell := Cell{Row: y, Measure: view.currentMeasure, Step: -1}
	step := -1
	if x >= keysWidth && (x-keysWidth)/cellWidth < snap.stepsPerMeasure {
		step = (x - keysWidth) / cellWidth
	}

	switch {
	case y == 0 && step >= 0:
		cell.Area = AreaPlayBar
		cell.Step = step
	case y >= 1 && y <= view.keyRows():
		cell.Pitch = view.highestNote() - (y - 1)
		if x < keysWidth {
			cell.Area = AreaKeys
		} else if step >= 0 {
			cell.Area = AreaGrid
			cell.Step = step
		}
	case y == view.keyRows()+1 && step >= 0:
		width := snap.stepsPerMeasure * cellWidth
		cell.Area = AreaMeasures
		cell.Measure = (x - keysWidth) * snap.measures / width
	}
	return cell
}

// renderRoll draws the displayed measure as a pitch by step grid with a
// play bar above and the measure boxes and velocity lane below.
func renderRoll(view *rollState, snap rollSnapshot, th *theme.Theme) string {
	sym := th.Symbols
	muted := lipgloss.NewStyle().Foreground(th.Muted())
	accent := lipgloss.NewStyle().Foreground(th.Accent())
	playColumn := lipgloss.NewStyle().Background(th.Surface())
	showPlayhead := snap.playStep >= 0 && snap.playMeasure == view.currentMeasure

	pad := strings.Repeat(" ", keysWidth)
	var lines []string

	// Play bar
	var bar strings.Builder
	bar.WriteString(pad)
	for s := 0; s < snap.stepsPerMeasure; s++ {
		if showPlayhead && s == snap.playStep {
			bar.WriteString(widgets.RenderCell(th.Cursor(), sym.Playhead) + " ")
		} else {
			bar.WriteString(strings.Repeat(" ", cellWidth))
		}
	}
	lines = append(lines, bar.String())

	// Keys and notes
	high, low := view.highestNote(), view.lowestNote
	for pitch := high; pitch >= low; pitch-- {
		var line strings.Builder
		label := fmt.Sprintf("%-*s", keysWidth-1, widgets.KeyName(pitch))
		switch {
		case widgets.IsSharp(pitch):
			line.WriteString(muted.Reverse(true).Render(label))
		case pitch%12 == 0:
			line.WriteString(accent.Render(label))
		default:
			line.WriteString(muted.Render(label))
		}
		line.WriteString(" ")

		for s, step := range snap.steps {
			cell := renderStep(th, step, s, pitch, pitch == high, pitch == low, snap.divisions)
			if showPlayhead && s == snap.playStep {
				cell = playColumn.Render(cell)
			}
			line.WriteString(cell)
		}
		lines = append(lines, line.String())
	}

	lines = append(lines, pad+renderMeasures(view, snap, th))

	// Velocity lane
	var lane strings.Builder
	lane.WriteString(pad)
	for _, step := range snap.steps {
		if !step.Active {
			lane.WriteString(strings.Repeat(" ", cellWidth))
			continue
		}
		lane.WriteString(widgets.RenderCell(th.Velocity(step.Velocity), widgets.VelocityBlock(step.Velocity)) + " ")
	}
	lines = append(lines, lane.String())

	if view.displayVelocity >= 0 {
		v := view.displayVelocity
		lines = append(lines, pad+accent.Render(fmt.Sprintf("Velocity: %06.3fV (Midi %03d)", v*10, int(127*v))))
	}

	return strings.Join(lines, "\n")
}

func renderStep(th *theme.Theme, step sequencer.Step, s, pitch int, top, bottom bool, divisions int) string {
	sym := th.Symbols
	switch {
	case step.Active && step.Pitch == pitch && step.Retrigger:
		return widgets.RenderCell(th.Velocity(step.Velocity), sym.NoteRetrigger) + widgets.RenderCell(th.Velocity(step.Velocity), sym.Note)
	case step.Active && step.Pitch == pitch:
		return strings.Repeat(widgets.RenderCell(th.Velocity(step.Velocity), sym.Note), cellWidth)
	case step.Active && top && step.Pitch > pitch:
		return widgets.RenderCell(th.Success(), sym.AboveRoll) + " "
	case step.Active && bottom && step.Pitch < pitch:
		return widgets.RenderCell(th.Success(), sym.BelowRoll) + " "
	case s%divisions == 0:
		return widgets.RenderCell(th.Muted(), sym.BeatEmpty) + " "
	default:
		return widgets.RenderCell(th.Muted(), sym.StepEmpty) + " "
	}
}

// renderMeasures splits the roll width between the pattern's measures. The
// displayed measure is highlighted and the box fills while a lock press is
// held.
func renderMeasures(view *rollState, snap rollSnapshot, th *theme.Theme) string {
	width := snap.stepsPerMeasure * cellWidth
	var out strings.Builder
	for i := 0; i < snap.measures; i++ {
		from := i * width / snap.measures
		to := (i + 1) * width / snap.measures
		color := th.Muted()
		switch {
		case i == view.currentMeasure && view.lockPress > lockHoldTime/2:
			color = th.Success()
		case i == view.currentMeasure && snap.locked:
			color = th.Warning()
		case i == view.currentMeasure:
			color = th.Accent()
		case i == snap.playMeasure && snap.playStep >= 0:
			color = th.FG()
		}
		out.WriteString(lipgloss.NewStyle().Foreground(color).Render(strings.Repeat(string(th.Symbols.Measure), to-from)))
	}
	return out.String()
}
