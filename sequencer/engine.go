package sequencer

import "math"

const (
	// MaxClockDelay is the largest clock delay, in samples
	MaxClockDelay = 10

	pulseDuration = 1e-3
	// safetyGate caps how long a gate is held while nothing is plugged
	// into the run input.
	safetyGate = 2.0

	gateVoltage = 10.0
)

// Port is one input jack: its voltage and whether a cable is plugged in
type Port struct {
	Value     float64
	Connected bool
}

// Inputs are the voltages read by the engine on every sample
type Inputs struct {
	Clock         Port
	Reset         Port
	Run           Port
	Record        Port
	PatternSelect Port
	VOct          Port
	Gate          Port
	Retrigger     Port
	Velocity      Port
}

// Outputs are the voltages written by the engine on every sample
type Outputs struct {
	Clock        float64
	Reset        float64
	Pattern      float64
	Run          float64
	Record       float64
	VOct         float64
	Gate         float64
	Retrigger    float64
	Velocity     float64
	EndOfPattern float64
}

// Engine composes pattern storage, transport and audition into the
// per-sample sequencer. It is not safe for concurrent use; the host must
// serialize editor calls against Process.
type Engine struct {
	Data       *PatternData
	Transport  *Transport
	Auditioner *Auditioner

	clockDelay int

	clockRing     ringBuffer
	voctRing      ringBuffer
	gateRing      ringBuffer
	retriggerRing ringBuffer
	velocityRing  ringBuffer

	clockTrigger  schmittTrigger
	resetTrigger  schmittTrigger
	runTrigger    schmittTrigger
	recordTrigger schmittTrigger

	gatePulse      pulseGenerator
	retriggerPulse pulseGenerator
	endPulse       pulseGenerator

	runConnected bool

	pitch    int
	voct     float64
	velocity float64
}

func NewEngine() *Engine {
	data := NewPatternData()
	return &Engine{
		Data:       data,
		Transport:  NewTransport(data),
		Auditioner: NewAuditioner(),
	}
}

// SetClockDelay sets how many samples the clock and capture inputs are
// delayed before being read.
func (e *Engine) SetClockDelay(samples int) {
	e.clockDelay = clamp(samples, 0, MaxClockDelay)
}

func (e *Engine) ClockDelay() int {
	return e.clockDelay
}

// Reset clears pattern data and every piece of signal state
func (e *Engine) Reset() {
	e.Data.Reset()
	e.Transport.Reset()
	e.Transport.SetPattern(0)
	e.Transport.UnlockMeasure()
	e.Transport.SetRunning(true)
	e.Auditioner.Stop()
	e.Auditioner.ConsumeStopEvent()
	e.Auditioner.ConsumeRetrigger()

	e.clockDelay = 0
	for _, r := range []*ringBuffer{&e.clockRing, &e.voctRing, &e.gateRing, &e.retriggerRing, &e.velocityRing} {
		r.clear()
	}
	e.clockTrigger = schmittTrigger{}
	e.resetTrigger = schmittTrigger{}
	e.runTrigger = schmittTrigger{}
	e.recordTrigger = schmittTrigger{}
	e.gatePulse.reset()
	e.retriggerPulse.reset()
	e.endPulse.reset()
	e.pitch, e.voct, e.velocity = 0, 0, 0
}

// gateHold is how long a gate started now may stay high without another
// clock decision.
func (e *Engine) gateHold() float64 {
	if e.runConnected {
		return math.Inf(1)
	}
	return safetyGate
}

func (e *Engine) playStep(s Step) {
	e.pitch = s.Pitch
	e.voct = float64(s.Pitch) / 12
	e.velocity = s.Velocity * gateVoltage
}

// Process runs the sequencer for one sample of length sampleTime seconds
func (e *Engine) Process(in Inputs, sampleTime float64) Outputs {
	t := e.Transport

	clock := e.clockRing.delay(in.Clock.Value, e.clockDelay)
	clockEdge := e.clockTrigger.process(clock)

	if e.resetTrigger.process(in.Reset.Value) {
		t.Reset()
		e.gatePulse.reset()
	}

	if in.PatternSelect.Connected {
		t.SetPattern(clamp(int(math.Round(in.PatternSelect.Value*12)), 0, NumPatterns-1))
	}

	if e.recordTrigger.process(in.Record.Value) {
		t.ToggleRecording()
	}

	if e.runTrigger.process(in.Run.Value) {
		t.ToggleRun()
		if !t.IsRunning() {
			e.gatePulse.reset()
		}
	}

	if clockEdge && t.AdvanceStep() {
		e.endPulse.trigger(pulseDuration)
	}

	if in.Run.Connected != e.runConnected {
		e.runConnected = in.Run.Connected
		if e.gatePulse.isHigh() {
			e.gatePulse.restart(e.gateHold())
		}
	}

	voct := e.voctRing.delay(in.VOct.Value, e.clockDelay)
	gate := e.gateRing.delay(in.Gate.Value, e.clockDelay)
	retrigger := e.retriggerRing.delay(in.Retrigger.Value, e.clockDelay)
	velocity := e.velocityRing.delay(in.Velocity.Value, e.clockDelay)

	if t.IsRecording() && t.IsRunning() && t.CurrentStepInPattern() >= 0 {
		e.record(in, clockEdge, voct, gate, retrigger, velocity)
	}

	auditionStopped := e.Auditioner.ConsumeStopEvent()
	auditionRetrigger := e.Auditioner.ConsumeRetrigger()
	if auditionStopped {
		e.gatePulse.reset()
	}

	if e.Auditioner.IsAuditioning() {
		pattern := t.CurrentPattern()
		spm := e.Data.StepsPerMeasure(pattern)
		abs := clampIndex(e.Auditioner.StepToAudition(), e.Data.StepsInPattern(pattern))
		e.playStep(e.Data.Step(pattern, abs/spm, abs%spm))
		if auditionRetrigger {
			e.retriggerPulse.trigger(pulseDuration)
			e.gatePulse.restart(e.gateHold())
		} else {
			e.gatePulse.trigger(e.gateHold())
		}
	} else if t.IsRunning() && !t.IsRecording() && clockEdge {
		s := e.Data.Step(t.CurrentPattern(), t.CurrentMeasure(), t.CurrentStepInMeasure())
		if s.Active {
			// Only a note already sounding is retriggered. Same-pitch
			// continuation steps are held unless flagged.
			retrig := e.gatePulse.isHigh() && (s.Retrigger || s.Pitch != e.pitch)
			e.playStep(s)
			e.gatePulse.restart(e.gateHold())
			if retrig {
				e.retriggerPulse.trigger(pulseDuration)
			}
		} else {
			e.gatePulse.reset()
		}
	}

	gateHigh := e.gatePulse.process(sampleTime)
	retriggerHigh := e.retriggerPulse.process(sampleTime)
	endHigh := e.endPulse.process(sampleTime)

	out := Outputs{
		Clock:    clock,
		Reset:    in.Reset.Value,
		Pattern:  in.PatternSelect.Value,
		Run:      in.Run.Value,
		Record:   in.Record.Value,
		VOct:     e.voct,
		Velocity: e.velocity,
	}

	// Manual passthrough
	if in.Gate.Connected && in.Gate.Value >= triggerHigh {
		gateHigh = true
		retriggerHigh = in.Retrigger.Value >= triggerHigh
		out.VOct = in.VOct.Value
		out.Velocity = gateVoltage
		if in.Velocity.Connected {
			out.Velocity = in.Velocity.Value
		}
	}

	if gateHigh && !retriggerHigh {
		out.Gate = gateVoltage
	}
	if retriggerHigh {
		out.Retrigger = gateVoltage
	}
	if endHigh {
		out.EndOfPattern = gateVoltage
	}
	return out
}

// record writes the delayed capture inputs into the step under the cursor
func (e *Engine) record(in Inputs, clockEdge bool, voct, gate, retrigger, velocity float64) {
	t := e.Transport
	d := e.Data
	p, m, s := t.CurrentPattern(), t.CurrentMeasure(), t.CurrentStepInMeasure()

	if in.Gate.Connected {
		if gate >= triggerHigh {
			if in.VOct.Connected {
				pitch := int(math.Round(voct * 12))
				if d.StepPitch(p, m, s) != pitch {
					d.SetStepPitch(p, m, s, pitch)
				}
			}
			if !d.IsStepActive(p, m, s) {
				d.SetStepActive(p, m, s, true)
			}
		} else if clockEdge && d.IsStepActive(p, m, s) {
			d.SetStepActive(p, m, s, false)
		}
	}

	if !d.IsStepActive(p, m, s) {
		return
	}

	if in.Retrigger.Connected && clockEdge {
		d.SetStepRetrigger(p, m, s, retrigger >= triggerHigh)
	}

	if in.Velocity.Connected {
		v := clampUnit(velocity / gateVoltage)
		switch {
		case clockEdge:
			d.SetStepVelocity(p, m, s, v)
		case v > d.StepVelocity(p, m, s):
			d.IncreaseStepVelocityTo(p, m, s, v)
		}
	}
}
