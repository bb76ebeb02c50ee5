package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"go-pianoroll/debug"
	"go-pianoroll/midi"
	"go-pianoroll/sequencer"
	"go-pianoroll/theme"
	"go-pianoroll/widgets"
)

// lockTickInterval is how often a held measure box is polled
const lockTickInterval = 50 * time.Millisecond

// layoutBounds holds cached layout info
type layoutBounds struct {
	rollTop int
}

type Model struct {
	Manager   *sequencer.Manager
	DeviceMgr *midi.DeviceManager // optional keyboard hot-plug
	Theme     *theme.Theme
	Store     *sequencer.ProjectStore // optional, enables saving
	Project   string
	Format    sequencer.Format

	ctx        context.Context
	view       *rollState
	bounds     *layoutBounds
	drag       DragMode
	status     string
	showHelp   bool
	quitting   bool
	controller midi.Controller // current keyboard (may be nil)
}

type UpdateMsg struct{}

type DeviceEventMsg midi.DeviceEvent

type lockTickMsg struct{}

func NewModel(ctx context.Context, manager *sequencer.Manager, th *theme.Theme) Model {
	return Model{
		Manager: manager,
		Theme:   th,
		Format:  sequencer.FormatJSON,
		ctx:     ctx,
		view:    newRollState(),
		bounds:  &layoutBounds{},
	}
}

func ListenForUpdates(manager *sequencer.Manager) tea.Cmd {
	return func() tea.Msg {
		<-manager.UpdateChan
		return UpdateMsg{}
	}
}

func ListenForDevices(deviceMgr *midi.DeviceManager) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-deviceMgr.Events()
		if !ok {
			return nil
		}
		return DeviceEventMsg(event)
	}
}

func lockTick() tea.Cmd {
	return tea.Tick(lockTickInterval, func(time.Time) tea.Msg {
		return lockTickMsg{}
	})
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{ListenForUpdates(m.Manager)}
	if m.DeviceMgr != nil {
		cmds = append(cmds, ListenForDevices(m.DeviceMgr))
	}
	return tea.Batch(cmds...)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case lockTickMsg:
		if t, ok := m.drag.(ticker); ok {
			t.Tick(lockTickInterval.Seconds())
			return m, lockTick()
		}

	case UpdateMsg:
		m.Manager.View(func(e *sequencer.Engine) {
			m.view.follow(e.Transport, e.Data.Measures(e.Transport.CurrentPattern()))
		})
		return m, ListenForUpdates(m.Manager)

	case DeviceEventMsg:
		event := midi.DeviceEvent(msg)
		if event.Type == midi.DeviceConnected {
			m.controller = event.Controller
			m.Manager.SetMIDIInput(m.ctx, event.Controller)
			m.status = "keyboard: " + event.ID
		} else if event.Type == midi.DeviceDisconnected {
			if m.controller != nil && m.controller.ID() == event.ID {
				m.controller = nil
				m.Manager.ReleaseInput()
				m.status = "keyboard disconnected"
			}
		}
		return m, ListenForDevices(m.DeviceMgr)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	measure := m.view.currentMeasure

	switch msg.String() {
	case "q", "ctrl+c":
		m.quitting = true
		m.Manager.Edit(func(_ *sequencer.PatternData, _ *sequencer.Transport, a *sequencer.Auditioner) {
			a.Stop()
		})
		return m, tea.Quit

	case "?":
		m.showHelp = !m.showHelp

	// Transport
	case " ":
		m.Manager.Edit(func(_ *sequencer.PatternData, t *sequencer.Transport, _ *sequencer.Auditioner) {
			t.ToggleRun()
		})
	case "r":
		m.Manager.Edit(func(_ *sequencer.PatternData, t *sequencer.Transport, _ *sequencer.Auditioner) {
			t.ToggleRecording()
		})
	case "l":
		m.Manager.Edit(func(_ *sequencer.PatternData, t *sequencer.Transport, _ *sequencer.Auditioner) {
			toggleLock(t, measure)
		})
	case "0":
		m.Manager.Edit(func(_ *sequencer.PatternData, t *sequencer.Transport, _ *sequencer.Auditioner) {
			t.Reset()
		})
	case "+", "=":
		m.Manager.SetTempo(m.Manager.Tempo() + 5)
	case "-", "_":
		m.Manager.SetTempo(m.Manager.Tempo() - 5)
	case ",", ".":
		delta := 1
		if msg.String() == "," {
			delta = -1
		}
		var delay int
		m.Manager.View(func(e *sequencer.Engine) { delay = e.ClockDelay() })
		m.Manager.SetClockDelay(delay + delta)

	// Navigation
	case "left", "right":
		delta := 1
		if msg.String() == "left" {
			delta = -1
		}
		m.Manager.View(func(e *sequencer.Engine) {
			n := e.Data.Measures(e.Transport.CurrentPattern())
			m.view.currentMeasure = min(max(measure+delta, 0), n-1)
		})
	case "up":
		m.view.scroll(1)
	case "down":
		m.view.scroll(-1)
	case "pgup":
		m.view.scroll(12)
	case "pgdown":
		m.view.scroll(-12)
	case "[", "]":
		delta := 1
		if msg.String() == "[" {
			delta = -1
		}
		m.Manager.Edit(func(_ *sequencer.PatternData, t *sequencer.Transport, _ *sequencer.Auditioner) {
			t.SetPattern(t.CurrentPattern() + delta)
		})
		m.view.currentMeasure = 0

	// Grid
	case "m", "M", "b", "B", "d", "D":
		key := msg.String()
		delta := 1
		if strings.ToUpper(key) == key {
			delta = -1
		}
		m.Manager.Edit(func(d *sequencer.PatternData, t *sequencer.Transport, _ *sequencer.Auditioner) {
			p := t.CurrentPattern()
			switch strings.ToLower(key) {
			case "m":
				d.SetMeasures(p, d.Measures(p)+delta)
			case "b":
				d.SetBeatsPerMeasure(p, d.BeatsPerMeasure(p)+delta)
			case "d":
				d.SetDivisionsPerBeat(p, d.DivisionsPerBeat(p)+delta)
			}
			m.view.currentMeasure = min(measure, d.Measures(p)-1)
		})

	// Clipboard
	case "c":
		m.edit(func(d *sequencer.PatternData, p int) { d.CopyMeasure(p, measure) })
		m.status = fmt.Sprintf("copied measure %d", measure+1)
	case "C":
		m.edit(func(d *sequencer.PatternData, p int) { d.CopyPattern(p) })
		m.status = "copied pattern"
	case "v":
		m.edit(func(d *sequencer.PatternData, p int) { d.PasteMeasure(p, measure) })
		m.status = fmt.Sprintf("pasted into measure %d", measure+1)
	case "V":
		m.edit(func(d *sequencer.PatternData, p int) { d.PastePattern(p) })
		m.status = "pasted pattern"
	case "x":
		m.edit(func(d *sequencer.PatternData, p int) { d.ClearPatternSteps(p) })
		m.status = "cleared pattern"

	case "s":
		m.save()
	}

	return m, nil
}

// edit runs fn against the current pattern
func (m Model) edit(fn func(d *sequencer.PatternData, pattern int)) {
	m.Manager.Edit(func(d *sequencer.PatternData, t *sequencer.Transport, _ *sequencer.Auditioner) {
		fn(d, t.CurrentPattern())
	})
}

func (m *Model) save() {
	if m.Store == nil {
		m.status = "saving disabled"
		return
	}
	filename, err := m.Store.Save(m.Project, m.Manager.State(), m.Format)
	if err != nil {
		debug.Log("tui", "save failed: %v", err)
		m.status = "save failed: " + err.Error()
		return
	}
	debug.Log("tui", "saved %s", filename)
	m.status = "saved " + filename
}

func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	var snap rollSnapshot
	m.Manager.View(func(e *sequencer.Engine) {
		snap = takeSnapshot(e, m.view.currentMeasure)
	})
	cell := hitTest(m.view, snap, msg.X, msg.Y-m.bounds.rollTop)
	measure := m.view.currentMeasure

	switch msg.Action {
	case tea.MouseActionPress:
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			m.view.scroll(1)
			return m, nil
		case tea.MouseButtonWheelDown:
			m.view.scroll(-1)
			return m, nil
		case tea.MouseButtonRight:
			if cell.Area == AreaGrid {
				m.edit(func(d *sequencer.PatternData, p int) { d.ToggleStepRetrigger(p, measure, cell.Step) })
			}
			return m, nil
		case tea.MouseButtonLeft:
			return m.startDrag(cell, msg.Shift)
		}

	case tea.MouseActionMotion:
		if m.drag != nil {
			m.drag.OnDragMove(cell)
		}

	case tea.MouseActionRelease:
		m.endDrag()
	}

	return m, nil
}

func (m Model) startDrag(cell Cell, shift bool) (tea.Model, tea.Cmd) {
	m.endDrag()
	measure := m.view.currentMeasure

	switch cell.Area {
	case AreaGrid:
		if shift {
			m.drag = NewVelocityDrag(m.Manager, m.view, measure, cell)
		} else {
			m.drag = NewNotePaintDrag(m.Manager, measure, cell)
		}
	case AreaKeys:
		m.drag = NewKeyboardDrag(m.view, cell)
	case AreaPlayBar:
		m.drag = NewPlayPositionDrag(m.Manager, measure, cell)
	case AreaMeasures:
		m.view.currentMeasure = cell.Measure
		m.drag = NewLockMeasureDrag(m.Manager, m.view, cell.Measure)
		return m, lockTick()
	}
	return m, nil
}

func (m *Model) endDrag() {
	if e, ok := m.drag.(dragEnder); ok {
		e.OnDragEnd()
	}
	m.drag = nil
}

// toggleLock unlocks, or locks the given measure moving the cursor into it
func toggleLock(t *sequencer.Transport, measure int) {
	if t.IsLocked() {
		t.UnlockMeasure()
		return
	}
	if t.CurrentMeasure() != measure {
		t.SetMeasure(measure)
	}
	t.LockMeasure()
}

var keyHelp = []widgets.KeySection{
	{Title: "Transport", Keys: []widgets.KeyBinding{
		{Key: "space", Desc: "run / stop"},
		{Key: "r", Desc: "arm / disarm recording"},
		{Key: "l", Desc: "lock / unlock measure"},
		{Key: "0", Desc: "reset to start"},
		{Key: "+ -", Desc: "tempo"},
		{Key: ", .", Desc: "clock delay"},
	}},
	{Title: "View", Keys: []widgets.KeyBinding{
		{Key: "left right", Desc: "measure"},
		{Key: "up down", Desc: "scroll keys"},
		{Key: "pgup pgdn", Desc: "octave"},
		{Key: "[ ]", Desc: "pattern"},
	}},
	{Title: "Edit", Keys: []widgets.KeyBinding{
		{Key: "m M", Desc: "measures + -"},
		{Key: "b B", Desc: "beats per measure + -"},
		{Key: "d D", Desc: "divisions per beat + -"},
		{Key: "c C", Desc: "copy measure / pattern"},
		{Key: "v V", Desc: "paste measure / pattern"},
		{Key: "x", Desc: "clear pattern"},
		{Key: "s", Desc: "save"},
	}},
	{Title: "Mouse", Keys: []widgets.KeyBinding{
		{Key: "drag", Desc: "paint / erase notes"},
		{Key: "shift+drag", Desc: "velocity"},
		{Key: "right click", Desc: "toggle retrigger"},
		{Key: "hold measure", Desc: "lock / unlock"},
	}},
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var snap rollSnapshot
	m.Manager.View(func(e *sequencer.Engine) {
		snap = takeSnapshot(e, m.view.currentMeasure)
	})

	// Styles
	headerStyle := lipgloss.NewStyle().Foreground(m.Theme.Accent())
	dimStyle := lipgloss.NewStyle().Foreground(m.Theme.Muted())
	recStyle := lipgloss.NewStyle().Foreground(m.Theme.Warning())

	runState := "STOP"
	if snap.running {
		runState = "RUN "
	}
	recState := "   "
	switch {
	case snap.recording && snap.pendingRecording:
		recState = recStyle.Render("REC") + "*"
	case snap.recording:
		recState = recStyle.Render("REC")
	case snap.pendingRecording:
		recState = recStyle.Render("ARM")
	}
	lockState := "    "
	if snap.locked {
		lockState = "LOCK"
	}
	keyboard := ""
	if m.controller != nil {
		keyboard = "  KB"
	}

	header := headerStyle.Render(fmt.Sprintf("go-pianoroll  %s", runState)) + " " + recState + " " +
		headerStyle.Render(fmt.Sprintf("%s  %3dbpm  pattern %02d  measure %d/%d  %d/%d x%d  delay %d%s",
			lockState, m.Manager.Tempo(), snap.pattern+1, m.view.currentMeasure+1, snap.measures,
			snap.beats, 4, snap.divisions, snap.clockDelay, keyboard))

	roll := renderRoll(m.view, snap, m.Theme)
	m.bounds.rollTop = 1 + lipgloss.Height(header) + 1

	var out strings.Builder
	out.WriteString("\n")
	out.WriteString(header)
	out.WriteString("\n\n")
	out.WriteString(roll)
	out.WriteString("\n\n")

	if m.showHelp {
		out.WriteString(dimStyle.Render(widgets.RenderKeyHelp(keyHelp)))
	} else {
		out.WriteString(dimStyle.Render("space:run  r:rec  l:lock  arrows:nav  [ ]:pattern  s:save  ?:help  q:quit"))
	}

	if m.status != "" {
		out.WriteString("\n")
		out.WriteString(dimStyle.Render(m.status))
	}

	return out.String()
}
