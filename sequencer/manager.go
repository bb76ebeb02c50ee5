package sequencer

import (
	"context"
	"math"
	"runtime"
	"sync"
	"time"

	"go-pianoroll/debug"
	"go-pianoroll/midi"
)

// UI refresh rate
const uiFPS = 30

// renderInterval is how often Run renders a block of samples
const renderInterval = 2 * time.Millisecond

// maxBlock caps how much time one render may catch up on after a stall
const maxBlock = 100 * time.Millisecond

// Manager runs an Engine in real time: it renders sample blocks against the
// wall clock, generates the step clock, feeds keyboard input to the capture
// inputs and sends the resulting notes to a MIDI output.
type Manager struct {
	mu     sync.Mutex
	engine *Engine

	sampleRate float64
	tempo      int
	clockPhase float64 // position within the current step, 0-1

	bridge  midi.NoteBridge
	capture *midi.CaptureState
	send    midi.Sender

	// Notify TUI of updates
	UpdateChan chan struct{}
}

// NewManager creates a manager around a fresh engine
func NewManager(sampleRate, tempo int) *Manager {
	m := &Manager{
		engine:     NewEngine(),
		sampleRate: float64(max(sampleRate, 1)),
		UpdateChan: make(chan struct{}, 1),
	}
	m.SetTempo(tempo)
	return m
}

// Edit runs fn with exclusive access to the sequencer, then notifies the UI
func (m *Manager) Edit(fn func(d *PatternData, t *Transport, a *Auditioner)) {
	m.mu.Lock()
	fn(m.engine.Data, m.engine.Transport, m.engine.Auditioner)
	m.mu.Unlock()
	m.notifyUpdate()
}

// View runs fn with exclusive access to the engine without notifying
func (m *Manager) View(fn func(e *Engine)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	fn(m.engine)
}

// SetOutput sets where note messages go. nil discards them.
func (m *Manager) SetOutput(send midi.Sender) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.send = send
}

// SetCapture plugs a keyboard capture state into the V/Oct, gate and
// velocity inputs. nil unplugs them.
func (m *Manager) SetCapture(c *midi.CaptureState) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.capture = c
}

// SetMIDIInput routes a keyboard's notes into the capture state
func (m *Manager) SetMIDIInput(ctx context.Context, ctrl midi.Controller) {
	m.mu.Lock()
	capture := m.capture
	m.mu.Unlock()
	if ctrl == nil || capture == nil {
		return
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case evt, ok := <-ctrl.NoteEvents():
				if !ok {
					return
				}
				capture.HandleNote(evt)
			}
		}
	}()
}

// ReleaseInput lifts every key of the capture state, for when the keyboard
// goes away with keys still down.
func (m *Manager) ReleaseInput() {
	m.mu.Lock()
	capture := m.capture
	m.mu.Unlock()
	if capture == nil {
		return
	}
	if held := capture.Held(); held > 0 {
		debug.Log("input", "releasing %d held keys", held)
	}
	capture.Release()
}

// SetTempo sets the BPM of the internal clock
func (m *Manager) SetTempo(bpm int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tempo = min(max(bpm, 20), 300)
}

func (m *Manager) Tempo() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tempo
}

func (m *Manager) SetClockDelay(samples int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.engine.SetClockDelay(samples)
}

// State captures the sequencer for saving
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return ToPersisted(m.engine)
}

// Restore replaces the sequencer content with a saved state
func (m *Manager) Restore(s State) {
	m.mu.Lock()
	FromPersisted(m.engine, s)
	m.clockPhase = 0
	m.mu.Unlock()
	m.notifyUpdate()
}

// clock returns the internal clock voltage for the next sample. Each step
// is high for its first half.
func (m *Manager) clock() float64 {
	stepsPerSecond := float64(m.tempo) / 60 * float64(m.engine.Data.DivisionsPerBeat(m.engine.Transport.CurrentPattern()))
	v := 0.0
	if m.clockPhase < 0.5 {
		v = 10
	}
	m.clockPhase += stepsPerSecond / m.sampleRate
	m.clockPhase -= math.Floor(m.clockPhase)
	return v
}

// Render processes n samples and returns the note events they produced
func (m *Manager) Render(n int) []midi.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.render(n)
}

func (m *Manager) render(n int) []midi.Event {
	var out []midi.Event
	sampleTime := 1 / m.sampleRate

	for i := 0; i < n; i++ {
		in := Inputs{
			Clock: Port{Value: m.clock(), Connected: true},
			// The host owns run through the transport; a plugged run
			// input keeps gates held between clocks.
			Run: Port{Connected: true},
		}
		if m.capture != nil {
			voct, gate, velocity := m.capture.Voltages()
			in.VOct = Port{Value: voct, Connected: true}
			in.Gate = Port{Value: gate, Connected: true}
			in.Velocity = Port{Value: velocity, Connected: true}
		}

		o := m.engine.Process(in, sampleTime)
		events, k := m.bridge.Process(o.Gate, o.Retrigger, o.VOct, o.Velocity)
		out = append(out, events[:k]...)
	}
	return out
}

// Run renders audio-rate blocks against the wall clock until ctx is done.
// Notes still sounding are released on exit.
func (m *Manager) Run(ctx context.Context, channel uint8) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	m.mu.Lock()
	m.bridge.Channel = channel
	m.mu.Unlock()

	ticker := time.NewTicker(renderInterval)
	uiTicker := time.NewTicker(time.Second / uiFPS)
	defer ticker.Stop()
	defer uiTicker.Stop()

	last := time.Now()
	var pending float64 // fractional samples carried between blocks

	for {
		select {
		case <-ctx.Done():
			m.mu.Lock()
			evt, ok := m.bridge.Flush()
			send := m.send
			m.mu.Unlock()
			if ok {
				m.dispatch(send, []midi.Event{evt})
			}
			return
		case <-uiTicker.C:
			m.notifyUpdate()
		case now := <-ticker.C:
			elapsed := now.Sub(last)
			if elapsed > maxBlock {
				debug.LogEvery(10, "engine", "render stalled for %v", elapsed)
				elapsed = maxBlock
			}
			last = now

			m.mu.Lock()
			pending += elapsed.Seconds() * m.sampleRate
			n := int(pending)
			pending -= float64(n)
			events := m.render(n)
			send := m.send
			m.mu.Unlock()

			m.dispatch(send, events)
		}
	}
}

func (m *Manager) dispatch(send midi.Sender, events []midi.Event) {
	if send == nil {
		return
	}
	logging := debug.Enabled()
	for _, evt := range events {
		if err := send(evt.Message()); err != nil {
			debug.Log("dispatch", "send failed: %v", err)
			continue
		}
		if !logging {
			continue
		}
		debug.Log("dispatch", "ch=%d type=%#x note=%d vel=%d", evt.Channel+1, evt.Type, evt.Note, evt.Velocity)
	}
}

// notifyUpdate notifies the TUI without blocking
func (m *Manager) notifyUpdate() {
	select {
	case m.UpdateChan <- struct{}{}:
	default:
	}
}
