package sequencer

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// State is the saved form of an engine. Every field is a pointer so a
// missing field can be told apart from a zero one; missing fields keep
// their defaults on load.
type State struct {
	Patterns        []PatternState `json:"patterns,omitempty" yaml:"patterns,omitempty"`
	CurrentPattern  *int           `json:"currentPattern,omitempty" yaml:"currentPattern,omitempty"`
	CurrentStep     *int           `json:"currentStep,omitempty" yaml:"currentStep,omitempty"`
	ClockDelay      *int           `json:"clockDelay,omitempty" yaml:"clockDelay,omitempty"`
	SequenceRunning *bool          `json:"sequenceRunning,omitempty" yaml:"sequenceRunning,omitempty"`
}

type PatternState struct {
	NumberOfMeasures *int           `json:"numberOfMeasures,omitempty" yaml:"numberOfMeasures,omitempty"`
	BeatsPerMeasure  *int           `json:"beatsPerMeasure,omitempty" yaml:"beatsPerMeasure,omitempty"`
	DivisionsPerBeat *int           `json:"divisionsPerBeat,omitempty" yaml:"divisionsPerBeat,omitempty"`
	Measures         []MeasureState `json:"measures,omitempty" yaml:"measures,omitempty"`
}

type MeasureState struct {
	Notes []NoteState `json:"notes,omitempty" yaml:"notes,omitempty"`
}

type NoteState struct {
	Pitch     *int     `json:"pitch,omitempty" yaml:"pitch,omitempty"`
	Velocity  *float64 `json:"velocity,omitempty" yaml:"velocity,omitempty"`
	Retrigger *bool    `json:"retrigger,omitempty" yaml:"retrigger,omitempty"`
	Active    *bool    `json:"active,omitempty" yaml:"active,omitempty"`
}

func ptr[T any](v T) *T {
	return &v
}

// ToPersisted captures the engine. Patterns after the last one holding an
// active step are left out; retained measures are kept.
func ToPersisted(e *Engine) State {
	s := State{
		CurrentPattern:  ptr(e.Transport.CurrentPattern()),
		CurrentStep:     ptr(e.Transport.CurrentStepInPattern()),
		ClockDelay:      ptr(e.ClockDelay()),
		SequenceRunning: ptr(e.Transport.IsRunning()),
	}

	last := e.Data.LastPatternWithContent()
	for i := 0; i <= last; i++ {
		p := &e.Data.patterns[i]
		ps := PatternState{
			NumberOfMeasures: ptr(p.NumberOfMeasures),
			BeatsPerMeasure:  ptr(p.BeatsPerMeasure),
			DivisionsPerBeat: ptr(p.DivisionsPerBeat),
		}
		for _, m := range p.Measures {
			ms := MeasureState{Notes: make([]NoteState, len(m.Steps))}
			for k, step := range m.Steps {
				ms.Notes[k] = NoteState{
					Pitch:     ptr(step.Pitch),
					Velocity:  ptr(step.Velocity),
					Retrigger: ptr(step.Retrigger),
					Active:    ptr(step.Active),
				}
			}
			ps.Measures = append(ps.Measures, ms)
		}
		s.Patterns = append(s.Patterns, ps)
	}
	return s
}

// FromPersisted resets the engine's data and applies every field present
// in s. Patterns past NumPatterns and notes past the grid are ignored.
func FromPersisted(e *Engine, s State) {
	d := e.Data
	d.Reset()

	for i, ps := range s.Patterns {
		if i >= NumPatterns {
			break
		}
		if ps.NumberOfMeasures != nil {
			d.SetMeasures(i, *ps.NumberOfMeasures)
		}
		if ps.BeatsPerMeasure != nil {
			d.SetBeatsPerMeasure(i, *ps.BeatsPerMeasure)
		}
		if ps.DivisionsPerBeat != nil {
			d.SetDivisionsPerBeat(i, *ps.DivisionsPerBeat)
		}

		p := &d.patterns[i]
		for j, ms := range ps.Measures {
			if j >= MaxMeasures {
				break
			}
			for len(p.Measures) <= j {
				p.Measures = append(p.Measures, Measure{Steps: make([]Step, p.StepsPerMeasure())})
			}
			steps := p.Measures[j].Steps
			for k, ns := range ms.Notes {
				if k >= len(steps) {
					break
				}
				if ns.Pitch != nil {
					steps[k].Pitch = *ns.Pitch
				}
				if ns.Velocity != nil {
					steps[k].Velocity = clampUnit(*ns.Velocity)
				}
				if ns.Retrigger != nil {
					steps[k].Retrigger = *ns.Retrigger
				}
				if ns.Active != nil {
					steps[k].Active = *ns.Active
				}
			}
		}
	}

	t := e.Transport
	if s.CurrentPattern != nil {
		t.SetPattern(*s.CurrentPattern)
	}
	if s.CurrentStep != nil {
		t.SetStepInPattern(*s.CurrentStep)
	}
	if s.ClockDelay != nil {
		e.SetClockDelay(*s.ClockDelay)
	}
	if s.SequenceRunning != nil {
		t.SetRunning(*s.SequenceRunning)
	}
}

// Format selects the encoding of a saved state
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// Ext returns the file extension for the format, dot included
func (f Format) Ext() string {
	if f == FormatYAML {
		return ".yaml"
	}
	return ".json"
}

// FormatFromPath picks the format from a file extension. Anything that is
// not YAML is JSON.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// ParseFormat validates a format name from configuration or flags
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(name) {
	case "", "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("unknown format %q", name)
}

// Marshal encodes s in the given format
func (s State) Marshal(f Format) ([]byte, error) {
	if f == FormatYAML {
		return yaml.Marshal(s)
	}
	return json.MarshalIndent(s, "", "  ")
}

// UnmarshalState decodes a saved state, trying JSON first and then YAML
func UnmarshalState(b []byte) (State, error) {
	var s State
	errJSON := json.Unmarshal(b, &s)
	if errJSON == nil {
		return s, nil
	}
	s = State{}
	if errYaml := yaml.Unmarshal(b, &s); errYaml != nil {
		return State{}, fmt.Errorf("state is neither json (%v) nor yaml (%v)", errJSON, errYaml)
	}
	return s, nil
}
