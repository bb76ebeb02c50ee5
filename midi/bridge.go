package midi

import "math"

// NoteBridge turns the sequencer's gate, retrigger, V/Oct and velocity
// voltages into note messages. Feed it every sample.
type NoteBridge struct {
	Channel uint8

	sounding  bool
	note      uint8
	retrigger bool
}

// Process takes one sample of output voltages and returns up to two
// events: a NoteOff for the sounding note and a NoteOn for the new one.
func (b *NoteBridge) Process(gate, retrigger, voct, velocity float64) (events [2]Event, n int) {
	gateHigh := gate >= 1
	retriggerEdge := retrigger >= 1 && !b.retrigger
	b.retrigger = retrigger >= 1
	key := Key(int(math.Round(voct * 12)))

	if b.sounding && (!gateHigh || retriggerEdge || key != b.note) {
		events[n] = Event{Type: NoteOff, Channel: b.Channel, Note: b.note}
		n++
		b.sounding = false
	}
	if gateHigh && !b.sounding {
		events[n] = Event{Type: NoteOn, Channel: b.Channel, Note: key, Velocity: Velocity(velocity / 10)}
		n++
		b.sounding = true
		b.note = key
	}
	return events, n
}

// Flush releases the sounding note, if any
func (b *NoteBridge) Flush() (Event, bool) {
	if !b.sounding {
		return Event{}, false
	}
	b.sounding = false
	return Event{Type: NoteOff, Channel: b.Channel, Note: b.note}, true
}
