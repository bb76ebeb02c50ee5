package sequencer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSchmittTrigger(t *testing.T) {
	var s schmittTrigger

	inputs := []float64{0, 0.5, 1, 5, 0.5, 0.2, 1.5, 0.1, 0, 2}
	edges := []bool{false, false, true, false, false, false, false, false, false, true}

	for i, v := range inputs {
		assert.Equal(t, edges[i], s.process(v), "sample %d (%v V)", i, v)
	}
}

func TestPulseGenerator(t *testing.T) {
	var p pulseGenerator
	assert.False(t, p.process(0.25))

	p.trigger(1)
	high := 0
	for p.process(0.25) {
		high++
	}
	assert.Equal(t, 4, high)

	p.trigger(1)
	p.trigger(0.5)
	assert.InDelta(t, 1, p.remaining, 1e-9, "trigger only extends")

	p.restart(0.5)
	assert.InDelta(t, 0.5, p.remaining, 1e-9)

	p.reset()
	assert.False(t, p.isHigh())
}

func TestRingBuffer_Delay(t *testing.T) {
	for _, samples := range []int{0, 1, 3, MaxClockDelay} {
		var r ringBuffer
		for i := 1; i <= 40; i++ {
			got := r.delay(float64(i), samples)
			want := float64(i - samples)
			if i <= samples {
				want = 0
			}
			assert.Equal(t, want, got, "delay %d sample %d", samples, i)
			assert.LessOrEqual(t, r.len(), samples)
		}
	}
}

func TestRingBuffer_ShrinkingDelay(t *testing.T) {
	var r ringBuffer
	for i := 1; i <= 5; i++ {
		r.delay(float64(i), 4)
	}
	// 2,3,4,5 are queued; dropping to a delay of 1 emits the newest that
	// had to leave.
	assert.Equal(t, 5.0, r.delay(6, 1))
	assert.Equal(t, 1, r.len())
}

func TestRingBuffer_Overflow(t *testing.T) {
	var r ringBuffer
	for i := 0; i < ringCapacity+3; i++ {
		r.push(float64(i))
	}
	assert.Equal(t, ringCapacity, r.len())
	assert.Equal(t, 3.0, r.shift())

	r.clear()
	assert.Equal(t, 0.0, r.shift())
}
