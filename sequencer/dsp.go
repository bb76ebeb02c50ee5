package sequencer

// Voltage thresholds for trigger-style signals
const (
	triggerHigh = 1.0
	triggerLow  = 0.1
)

// schmittTrigger turns a voltage into rising edges with hysteresis
type schmittTrigger struct {
	high bool
}

// process returns true on the sample the input crosses triggerHigh
func (s *schmittTrigger) process(v float64) bool {
	if s.high {
		if v <= triggerLow {
			s.high = false
		}
		return false
	}
	if v >= triggerHigh {
		s.high = true
		return true
	}
	return false
}

func (s *schmittTrigger) isHigh() bool {
	return s.high
}

// pulseGenerator stays high for a number of seconds after being triggered
type pulseGenerator struct {
	remaining float64
}

// trigger extends the pulse to at least duration seconds
func (p *pulseGenerator) trigger(duration float64) {
	p.remaining = max(p.remaining, duration)
}

// restart sets the pulse to exactly duration seconds, shortening it if needed
func (p *pulseGenerator) restart(duration float64) {
	p.remaining = duration
}

func (p *pulseGenerator) reset() {
	p.remaining = 0
}

// process reports whether the pulse is high, then advances it by dt seconds
func (p *pulseGenerator) process(dt float64) bool {
	if p.remaining <= 0 {
		return false
	}
	p.remaining -= dt
	return true
}

func (p *pulseGenerator) isHigh() bool {
	return p.remaining > 0
}

// ringCapacity bounds the clock delay. The engine never keeps more than
// MaxClockDelay+1 values queued.
const ringCapacity = 16

// ringBuffer is a fixed-capacity FIFO of samples
type ringBuffer struct {
	data  [ringCapacity]float64
	start int
	size  int
}

func (r *ringBuffer) push(v float64) {
	if r.size == ringCapacity {
		// Full: drop the oldest value.
		r.start = (r.start + 1) % ringCapacity
		r.size--
	}
	r.data[(r.start+r.size)%ringCapacity] = v
	r.size++
}

func (r *ringBuffer) shift() float64 {
	if r.size == 0 {
		return 0
	}
	v := r.data[r.start]
	r.start = (r.start + 1) % ringCapacity
	r.size--
	return v
}

func (r *ringBuffer) len() int {
	return r.size
}

func (r *ringBuffer) clear() {
	r.start = 0
	r.size = 0
}

// delay pushes v and returns the value from samples pushes ago. Until the
// ring has filled up to that depth it returns 0.
func (r *ringBuffer) delay(v float64, samples int) float64 {
	r.push(v)
	out := 0.0
	for r.size > samples {
		out = r.shift()
	}
	return out
}
