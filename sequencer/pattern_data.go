package sequencer

// PatternData is the single source of truth for note content and timing
// grids. It owns a fixed arena of NumPatterns patterns plus one scratch
// pattern and one scratch measure for copy/paste.
//
// Every index argument is clamped into range instead of being rejected, so
// a malformed index from an editor degrades to the nearest valid cell.
type PatternData struct {
	patterns      [NumPatterns]Pattern
	copiedPattern Pattern
	copiedMeasure Measure
	dirty         bool
}

// NewPatternData creates a store with every pattern at its defaults
func NewPatternData() *PatternData {
	d := &PatternData{}
	d.copiedPattern = newPattern()
	d.copiedMeasure = d.copiedPattern.Measures[0].Copy()
	d.Reset()
	return d
}

func newPattern() Pattern {
	p := Pattern{
		NumberOfMeasures: 1,
		BeatsPerMeasure:  4,
		DivisionsPerBeat: 4,
	}
	p.Measures = []Measure{{Steps: make([]Step, p.StepsPerMeasure())}}
	return p
}

// Reset puts every pattern back to one empty 4/4 measure with 4 divisions
// per beat.
func (d *PatternData) Reset() {
	d.dirty = true
	for i := range d.patterns {
		d.patterns[i] = newPattern()
	}
}

// ConsumeDirty reports whether anything changed since the last call and
// clears the flag.
func (d *PatternData) ConsumeDirty() bool {
	wasDirty := d.dirty
	d.dirty = false
	return wasDirty
}

func (d *PatternData) pattern(pattern int) *Pattern {
	return &d.patterns[clampIndex(pattern, NumPatterns)]
}

func (d *PatternData) measure(pattern, measure int) *Measure {
	p := d.pattern(pattern)
	return &p.Measures[clampIndex(measure, p.NumberOfMeasures)]
}

func (d *PatternData) step(pattern, measure, step int) *Step {
	m := d.measure(pattern, measure)
	return &m.Steps[clampIndex(step, len(m.Steps))]
}

// Grid

func (d *PatternData) StepsPerMeasure(pattern int) int {
	return d.pattern(pattern).StepsPerMeasure()
}

func (d *PatternData) StepsInPattern(pattern int) int {
	p := d.pattern(pattern)
	return p.StepsPerMeasure() * p.NumberOfMeasures
}

func (d *PatternData) Measures(pattern int) int {
	return d.pattern(pattern).NumberOfMeasures
}

func (d *PatternData) BeatsPerMeasure(pattern int) int {
	return d.pattern(pattern).BeatsPerMeasure
}

func (d *PatternData) DivisionsPerBeat(pattern int) int {
	return d.pattern(pattern).DivisionsPerBeat
}

// SetMeasures sets the number of playing measures. Measures beyond the new
// count are kept so that growing the pattern again brings them back.
func (d *PatternData) SetMeasures(pattern, measures int) {
	d.dirty = true
	p := d.pattern(pattern)
	measures = clamp(measures, 1, MaxMeasures)
	for len(p.Measures) < measures {
		p.Measures = append(p.Measures, Measure{Steps: make([]Step, p.StepsPerMeasure())})
	}
	p.NumberOfMeasures = measures
}

// SetBeatsPerMeasure resizes every measure of the pattern. Steps past the
// new end are dropped.
func (d *PatternData) SetBeatsPerMeasure(pattern, beats int) {
	d.dirty = true
	p := d.pattern(pattern)
	p.BeatsPerMeasure = clamp(beats, 1, MaxBeatsPerMeasure)
	for i := range p.Measures {
		p.Measures[i].resize(p.StepsPerMeasure())
	}
}

// SetDivisionsPerBeat changes the grid resolution and re-quantizes the
// existing notes onto the new grid.
func (d *PatternData) SetDivisionsPerBeat(pattern, divisions int) {
	d.dirty = true
	p := d.pattern(pattern)
	divisions = clamp(divisions, 1, MaxDivisionsPerBeat)
	if p.DivisionsPerBeat == divisions {
		return
	}
	from := p.StepsPerMeasure()
	p.DivisionsPerBeat = divisions
	reassignSteps(p, from, p.StepsPerMeasure())
}

// Copy and paste

func (d *PatternData) CopyPattern(pattern int) {
	d.copiedPattern = d.pattern(pattern).Copy()
}

func (d *PatternData) CopyMeasure(pattern, measure int) {
	d.copiedMeasure = d.measure(pattern, measure).Copy()
}

func (d *PatternData) PastePattern(pattern int) {
	d.dirty = true
	*d.pattern(pattern) = d.copiedPattern.Copy()
}

// PasteMeasure copies the scratch measure into the target. The pasted
// measure takes the target pattern's grid size.
func (d *PatternData) PasteMeasure(pattern, measure int) {
	d.dirty = true
	target := d.measure(pattern, measure)
	*target = d.copiedMeasure.Copy()
	target.resize(d.pattern(pattern).StepsPerMeasure())
}

func (d *PatternData) ClearPatternSteps(pattern int) {
	d.dirty = true
	p := d.pattern(pattern)
	for i := range p.Measures {
		for j := range p.Measures[i].Steps {
			p.Measures[i].Steps[j].Active = false
			p.Measures[i].Steps[j].Retrigger = false
		}
	}
}

// HasContent reports whether the pattern has any active step
func (d *PatternData) HasContent(pattern int) bool {
	return d.pattern(pattern).hasContent()
}

// LastPatternWithContent returns the highest pattern index holding an
// active step, or 0 when every pattern is empty.
func (d *PatternData) LastPatternWithContent() int {
	for i := NumPatterns - 1; i > 0; i-- {
		if d.patterns[i].hasContent() {
			return i
		}
	}
	return 0
}

// Readers

func (d *PatternData) Step(pattern, measure, step int) Step {
	return *d.step(pattern, measure, step)
}

func (d *PatternData) IsStepActive(pattern, measure, step int) bool {
	return d.step(pattern, measure, step).Active
}

func (d *PatternData) IsStepRetriggered(pattern, measure, step int) bool {
	return d.step(pattern, measure, step).Retrigger
}

func (d *PatternData) StepPitch(pattern, measure, step int) int {
	return d.step(pattern, measure, step).Pitch
}

func (d *PatternData) StepVelocity(pattern, measure, step int) float64 {
	return d.step(pattern, measure, step).Velocity
}

// Writers

// ToggleStepActive switches a step on (seeding DefaultVelocity) or off
// (clearing its retrigger), then matches its velocity to the held note it
// belongs to.
func (d *PatternData) ToggleStepActive(pattern, measure, step int) {
	s := d.step(pattern, measure, step)
	d.SetStepActive(pattern, measure, step, !s.Active)
}

func (d *PatternData) SetStepActive(pattern, measure, step int, active bool) {
	d.dirty = true
	s := d.step(pattern, measure, step)
	switch {
	case active && !s.Active:
		s.Velocity = DefaultVelocity
	case !active:
		s.Retrigger = false
	}
	s.Active = active
	d.AdjustVelocity(pattern, measure, step, 0)
}

// ToggleStepRetrigger flips the retrigger flag of an active step. Inactive
// steps are left alone.
func (d *PatternData) ToggleStepRetrigger(pattern, measure, step int) {
	s := d.step(pattern, measure, step)
	if !s.Active {
		return
	}
	d.dirty = true
	s.Retrigger = !s.Retrigger
	d.AdjustVelocity(pattern, measure, step, 0)
}

func (d *PatternData) SetStepRetrigger(pattern, measure, step int, retrigger bool) {
	d.dirty = true
	d.step(pattern, measure, step).Retrigger = retrigger
}

func (d *PatternData) SetStepPitch(pattern, measure, step, pitch int) {
	d.dirty = true
	d.step(pattern, measure, step).Pitch = pitch
}

func (d *PatternData) SetStepVelocity(pattern, measure, step int, velocity float64) {
	d.dirty = true
	d.step(pattern, measure, step).Velocity = clampUnit(velocity)
}

// IncreaseStepVelocityTo raises the velocity of a step, never lowering it.
func (d *PatternData) IncreaseStepVelocityTo(pattern, measure, step int, velocity float64) {
	d.dirty = true
	s := d.step(pattern, measure, step)
	s.Velocity = max(s.Velocity, clampUnit(velocity))
}

// AdjustVelocity edits the velocity of the held note that contains the
// given step. A held note is a run of active steps with the same pitch that
// ends before the next retrigger. The delta is applied to the first step of
// the run and the result copied to the rest of it. Returns the new velocity.
func (d *PatternData) AdjustVelocity(pattern, measure, step int, delta float64) float64 {
	d.dirty = true
	steps := d.measure(pattern, measure).Steps
	step = clampIndex(step, len(steps))
	pitch := steps[step].Pitch

	for step > 0 && !steps[step].Retrigger && steps[step-1].Active && steps[step-1].Pitch == pitch {
		step--
	}

	velocity := clampUnit(steps[step].Velocity + delta)

	for step < len(steps) && steps[step].Active && steps[step].Pitch == pitch {
		steps[step].Velocity = velocity
		step++
		if step < len(steps) && steps[step].Retrigger {
			break
		}
	}

	return velocity
}
