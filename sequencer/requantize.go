package sequencer

import "math"

// reassignSteps remaps the notes of every measure of p from a grid of
// fromSteps onto a grid of toSteps.
//
// Step i lands on floor(i*scale). When the grid grows, an active step is
// smeared over floor(scale) new steps so it keeps its gate length; only the
// first step of a smear may retrigger, so the smear is heard as one held
// note. A smear that starts a note (as opposed to continuing a held one)
// gets a retrigger on its first step. When the grid shrinks, later steps
// overwrite earlier ones that land on the same cell. The mapping is lossy
// and there is no way back.
func reassignSteps(p *Pattern, fromSteps, toSteps int) {
	if fromSteps <= 0 || toSteps <= 0 {
		return
	}
	scale := float64(toSteps) / float64(fromSteps)
	smear := max(1, int(math.Floor(scale)))

	var prev Step // last step of the previous measure, old grid
	for mi := range p.Measures {
		old := p.Measures[mi].Steps
		scratch := make([]Step, toSteps)

		for i := 0; i < fromSteps && i < len(old); i++ {
			src := old[i]
			before := prev
			if i > 0 {
				before = old[i-1]
			}
			if !src.Active {
				continue
			}
			onset := !before.Active || before.Pitch != src.Pitch
			newPos := int(math.Floor(float64(i) * scale))

			for n := 0; n < smear && newPos+n < toSteps; n++ {
				retrigger := false
				if n == 0 {
					retrigger = scratch[newPos].Retrigger || src.Retrigger || (scale > 1 && onset)
				}
				scratch[newPos+n] = src
				scratch[newPos+n].Retrigger = retrigger
			}
		}

		if len(old) > 0 {
			prev = old[len(old)-1]
		} else {
			prev = Step{}
		}
		p.Measures[mi].Steps = scratch
	}
}
