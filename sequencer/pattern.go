package sequencer

// NumPatterns is the size of the pattern arena owned by a PatternData
const NumPatterns = 64

// DefaultVelocity is given to a step when it is switched on
const DefaultVelocity = 0.75

// Grid limits. Values outside are clamped.
const (
	MaxMeasures         = 16
	MaxBeatsPerMeasure  = 16
	MaxDivisionsPerBeat = 16
)

// Step is a single grid cell of a measure
type Step struct {
	Pitch     int     // semitones, 0 = 0V
	Velocity  float64 // 0-1
	Active    bool
	Retrigger bool
}

// Measure holds BeatsPerMeasure * DivisionsPerBeat steps
type Measure struct {
	Steps []Step
}

// Pattern is an independently sized group of measures
type Pattern struct {
	NumberOfMeasures int
	BeatsPerMeasure  int
	DivisionsPerBeat int
	Measures         []Measure
}

// StepsPerMeasure returns the grid size of every measure in the pattern
func (p *Pattern) StepsPerMeasure() int {
	return p.BeatsPerMeasure * p.DivisionsPerBeat
}

// Copy makes a deep copy of a Measure.
func (m Measure) Copy() Measure {
	steps := make([]Step, len(m.Steps))
	copy(steps, m.Steps)
	return Measure{Steps: steps}
}

// Copy makes a deep copy of a Pattern, including measures retained beyond
// NumberOfMeasures.
func (p Pattern) Copy() Pattern {
	measures := make([]Measure, len(p.Measures))
	for i, m := range p.Measures {
		measures[i] = m.Copy()
	}
	return Pattern{
		NumberOfMeasures: p.NumberOfMeasures,
		BeatsPerMeasure:  p.BeatsPerMeasure,
		DivisionsPerBeat: p.DivisionsPerBeat,
		Measures:         measures,
	}
}

// resize grows or truncates the measure to n steps
func (m *Measure) resize(n int) {
	if len(m.Steps) >= n {
		m.Steps = m.Steps[:n]
		return
	}
	m.Steps = append(m.Steps, make([]Step, n-len(m.Steps))...)
}

// hasContent reports whether any step is on, retained measures included
func (p *Pattern) hasContent() bool {
	for _, m := range p.Measures {
		for _, s := range m.Steps {
			if s.Active {
				return true
			}
		}
	}
	return false
}

func clampIndex(i, n int) int {
	return min(max(i, 0), n-1)
}

func clamp(v, lo, hi int) int {
	return min(max(v, lo), hi)
}

func clampUnit(v float64) float64 {
	return min(max(v, 0), 1)
}
