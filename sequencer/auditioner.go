package sequencer

// Auditioner holds a single preview request made while editing. The engine
// reads its one-shot flags once per sample.
type Auditioner struct {
	step             int
	auditioning      bool
	retriggerPending bool
	stopPending      bool
}

func NewAuditioner() *Auditioner {
	return &Auditioner{}
}

// Start previews step. A retrigger is raised when the step changed or
// nothing was being auditioned.
func (a *Auditioner) Start(step int) {
	if !a.auditioning || a.step != step {
		a.retriggerPending = true
	}
	a.auditioning = true
	a.step = step
}

// Retrigger restarts the note of the current step
func (a *Auditioner) Retrigger() {
	a.retriggerPending = true
}

func (a *Auditioner) Stop() {
	if a.auditioning {
		a.stopPending = true
	}
	a.auditioning = false
}

// ConsumeRetrigger returns the pending retrigger and clears it
func (a *Auditioner) ConsumeRetrigger() bool {
	pending := a.retriggerPending
	a.retriggerPending = false
	return pending
}

// ConsumeStopEvent returns the pending stop and clears it
func (a *Auditioner) ConsumeStopEvent() bool {
	pending := a.stopPending
	a.stopPending = false
	return pending
}

func (a *Auditioner) IsAuditioning() bool {
	return a.auditioning
}

func (a *Auditioner) StepToAudition() int {
	return a.step
}
