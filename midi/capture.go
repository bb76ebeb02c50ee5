package midi

import "sync"

type heldNote struct {
	note     uint8
	velocity uint8
}

// CaptureState tracks the keys held on a keyboard and presents them as the
// voltages of a monophonic CV source. The most recently pressed key wins.
type CaptureState struct {
	mu   sync.Mutex
	held []heldNote
}

func NewCaptureState() *CaptureState {
	return &CaptureState{}
}

// HandleNote applies a keyboard event. Velocity 0 releases the key.
func (c *CaptureState) HandleNote(evt NoteEvent) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i, h := range c.held {
		if h.note == evt.Note {
			c.held = append(c.held[:i], c.held[i+1:]...)
			break
		}
	}
	if evt.Velocity > 0 {
		c.held = append(c.held, heldNote{note: evt.Note, velocity: evt.Velocity})
	}
}

// Voltages returns V/Oct, gate and velocity of the current key, all 0 when
// no key is held.
func (c *CaptureState) Voltages() (voct, gate, velocity float64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.held) == 0 {
		return 0, 0, 0
	}
	top := c.held[len(c.held)-1]
	return float64(Pitch(top.note)) / 12, 10, float64(top.velocity) / 127 * 10
}

// Held returns the number of keys down
func (c *CaptureState) Held() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.held)
}

// Release lifts every key
func (c *CaptureState) Release() {
	c.mu.Lock()
	c.held = nil
	c.mu.Unlock()
}
