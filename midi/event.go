package midi

import (
	"math"

	gomidi "gitlab.com/gomidi/midi/v2"
)

// MIDI message types
const (
	NoteOn  uint8 = 0x90
	NoteOff uint8 = 0x80
)

// MiddleC is the key played for pitch 0 (0V)
const MiddleC = 60

// Event is a note message produced by the sequencer or read from a keyboard
type Event struct {
	Type     uint8 // NoteOn, NoteOff
	Channel  uint8
	Note     uint8
	Velocity uint8
}

// Message builds the gomidi message for the event
func (e Event) Message() gomidi.Message {
	if e.Type == NoteOn {
		return gomidi.NoteOn(e.Channel, e.Note, e.Velocity)
	}
	return gomidi.NoteOff(e.Channel, e.Note)
}

// Key converts a pitch in semitones from 0V to a MIDI key, clamped to 0-127
func Key(pitch int) uint8 {
	return uint8(min(max(pitch+MiddleC, 0), 127))
}

// Pitch is the inverse of Key
func Pitch(key uint8) int {
	return int(key) - MiddleC
}

// Velocity converts a 0-1 level to a MIDI velocity. Sounding notes never
// get 0, which receivers read as note off.
func Velocity(level float64) uint8 {
	v := int(math.Round(min(max(level, 0), 1) * 127))
	return uint8(min(max(v, 1), 127))
}
