package sequencer

import (
	"fmt"
	"io"

	"go-pianoroll/midi"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

// TicksPerQuarter is the SMF resolution; one beat is one quarter note
const TicksPerQuarter = 960

// Note is a held note found in a pattern: consecutive active steps of one
// pitch, split at retriggers. Start and End are absolute steps, End
// exclusive.
type Note struct {
	Start    int
	End      int
	Pitch    int
	Velocity float64
}

// Notes returns the held notes of the playing measures of a pattern
func (d *PatternData) Notes(pattern int) []Note {
	p := d.pattern(pattern)
	spm := p.StepsPerMeasure()

	var notes []Note
	var current *Note
	for m := 0; m < p.NumberOfMeasures; m++ {
		for s, step := range p.Measures[m].Steps {
			abs := m*spm + s
			continues := current != nil && step.Active && !step.Retrigger && step.Pitch == current.Pitch
			if continues {
				current.End = abs + 1
				continue
			}
			if current != nil {
				notes = append(notes, *current)
				current = nil
			}
			if step.Active {
				current = &Note{Start: abs, End: abs + 1, Pitch: step.Pitch, Velocity: step.Velocity}
			}
		}
	}
	if current != nil {
		notes = append(notes, *current)
	}
	return notes
}

// ExportPattern writes one pattern as a Standard MIDI File with a tempo
// track and a note track.
func ExportPattern(d *PatternData, pattern int, bpm float64, channel uint8, w io.Writer) error {
	divisions := d.DivisionsPerBeat(pattern)
	tick := func(step int) uint32 {
		return uint32(step * TicksPerQuarter / divisions)
	}

	sm := smf.New()
	sm.TimeFormat = smf.MetricTicks(TicksPerQuarter)

	var track0 smf.Track
	track0.Add(0, smf.MetaMeter(uint8(d.BeatsPerMeasure(pattern)), 4))
	track0.Add(0, smf.MetaTempo(bpm))
	track0.Close(0)
	if err := sm.Add(track0); err != nil {
		return fmt.Errorf("add tempo track: %w", err)
	}

	var track smf.Track
	var last uint32
	for _, n := range d.Notes(pattern) {
		key := midi.Key(n.Pitch)
		on, off := tick(n.Start), tick(n.End)
		track.Add(on-last, gomidi.NoteOn(channel, key, midi.Velocity(n.Velocity)))
		track.Add(off-on, gomidi.NoteOff(channel, key))
		last = off
	}
	track.Close(tick(d.StepsInPattern(pattern)) - last)
	if err := sm.Add(track); err != nil {
		return fmt.Errorf("add note track: %w", err)
	}

	if _, err := sm.WriteTo(w); err != nil {
		return fmt.Errorf("write midi file: %w", err)
	}
	return nil
}
