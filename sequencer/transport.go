package sequencer

// Transport owns the playback cursor and the run/record/lock state.
//
// Recording is armed and disarmed through a pending request that only takes
// effect when the cursor lands on a boundary: the first step of the locked
// measure while locked, the first step of the pattern otherwise.
type Transport struct {
	data *PatternData

	pattern       int
	stepInPattern int // -1 until the first clock after a reset

	running          bool
	recording        bool
	pendingRecording bool
	locked           bool

	dirty bool
}

// NewTransport creates a running transport on pattern 0 with an unset
// cursor.
func NewTransport(data *PatternData) *Transport {
	return &Transport{
		data:          data,
		stepInPattern: -1,
		running:       true,
		dirty:         true,
	}
}

// ConsumeDirty reports whether the transport changed since the last call
// and clears the flag.
func (t *Transport) ConsumeDirty() bool {
	wasDirty := t.dirty
	t.dirty = false
	return wasDirty
}

// Reset unsets the cursor. The next AdvanceStep lands on step 0.
func (t *Transport) Reset() {
	t.dirty = true
	t.stepInPattern = -1
}

// AdvanceStep moves the cursor one step forward. It is the only transition
// driven by the clock and does nothing while stopped. The returned flag is
// true when the cursor left the last step of the pattern.
func (t *Transport) AdvanceStep() (endOfPattern bool) {
	if !t.running {
		return false
	}
	t.dirty = true

	stepsInPattern := t.data.StepsInPattern(t.pattern)
	stepsPerMeasure := t.data.StepsPerMeasure(t.pattern)
	t.stepInPattern = t.cursor()
	endOfPattern = t.stepInPattern == stepsInPattern-1

	next := (t.stepInPattern + 1) % stepsInPattern
	if t.locked {
		lockedMeasure := t.CurrentMeasure()
		if next/stepsPerMeasure != lockedMeasure {
			next = lockedMeasure * stepsPerMeasure
		}
	}
	t.stepInPattern = next

	boundary := next == 0
	if t.locked {
		boundary = next%stepsPerMeasure == 0
	}
	if boundary && t.pendingRecording {
		t.recording = !t.recording
		t.pendingRecording = false
	}

	return endOfPattern
}

// ToggleRecording requests recording to start, or to stop when already
// recording. The request is honoured at the next boundary; toggling again
// before then cancels it.
func (t *Transport) ToggleRecording() {
	t.dirty = true
	t.pendingRecording = !t.pendingRecording
}

func (t *Transport) ToggleRun() {
	t.SetRunning(!t.running)
}

func (t *Transport) SetRunning(running bool) {
	t.dirty = true
	t.running = running
}

func (t *Transport) LockMeasure() {
	t.dirty = true
	t.locked = true
}

func (t *Transport) UnlockMeasure() {
	t.dirty = true
	t.locked = false
}

// SetPattern switches pattern. The cursor keeps its position, wrapped to
// the length of the new pattern.
func (t *Transport) SetPattern(pattern int) {
	pattern = clampIndex(pattern, NumPatterns)
	if pattern == t.pattern {
		return
	}
	t.dirty = true
	t.pattern = pattern
	t.stepInPattern = t.cursor()
}

// SetMeasure moves the cursor to the same step within another measure.
func (t *Transport) SetMeasure(measure int) {
	t.dirty = true
	measure = clampIndex(measure, t.data.Measures(t.pattern))
	stepInMeasure := max(t.CurrentStepInMeasure(), 0)
	t.stepInPattern = measure*t.data.StepsPerMeasure(t.pattern) + stepInMeasure
}

// SetStepInMeasure moves the cursor within the current measure.
func (t *Transport) SetStepInMeasure(step int) {
	t.dirty = true
	stepsPerMeasure := t.data.StepsPerMeasure(t.pattern)
	step = clampIndex(step, stepsPerMeasure)
	t.stepInPattern = t.CurrentMeasure()*stepsPerMeasure + step
}

// SetStepInPattern moves the cursor to an absolute step. -1 unsets it.
func (t *Transport) SetStepInPattern(step int) {
	t.dirty = true
	t.stepInPattern = clamp(step, -1, t.data.StepsInPattern(t.pattern)-1)
}

// cursor is the stored step wrapped into the current pattern. The pattern
// can shrink under the cursor when measures or beats are removed.
func (t *Transport) cursor() int {
	if t.stepInPattern < 0 {
		return -1
	}
	return t.stepInPattern % t.data.StepsInPattern(t.pattern)
}

// Readers

func (t *Transport) CurrentPattern() int {
	return t.pattern
}

// CurrentStepInPattern returns the absolute step, or -1 when unset
func (t *Transport) CurrentStepInPattern() int {
	return t.cursor()
}

func (t *Transport) CurrentMeasure() int {
	step := t.cursor()
	if step < 0 {
		return 0
	}
	return step / t.data.StepsPerMeasure(t.pattern)
}

// CurrentStepInMeasure returns the step within the current measure, or -1
// when the cursor is unset.
func (t *Transport) CurrentStepInMeasure() int {
	step := t.cursor()
	if step < 0 {
		return -1
	}
	return step % t.data.StepsPerMeasure(t.pattern)
}

func (t *Transport) IsRunning() bool {
	return t.running
}

func (t *Transport) IsRecording() bool {
	return t.recording
}

func (t *Transport) IsPendingRecording() bool {
	return t.pendingRecording
}

func (t *Transport) IsLocked() bool {
	return t.locked
}
