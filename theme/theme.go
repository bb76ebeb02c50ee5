package theme

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

type Theme struct {
	Palette *Palette
	Symbols Symbols
}

type Symbols struct {
	// Key help
	Solid rune // ■ bound
	Empty rune // □ unbound

	// Roll cells
	StepEmpty     rune // · empty step
	BeatEmpty     rune // ┆ empty step on a beat
	Note          rune // █ active step at this pitch
	NoteRetrigger rune // ▐ active step starting a new note
	BelowRoll     rune // ▁ note pitched under the visible keys
	AboveRoll     rune // ▔ note pitched over the visible keys

	// Play bar
	Playhead rune // ▼ current step
	Measure  rune // ▬ measure box
}

func New(palette *Palette) *Theme {
	return &Theme{
		Palette: palette,
		Symbols: Symbols{
			Solid: '■',
			Empty: '□',

			StepEmpty:     '·',
			BeatEmpty:     '┆',
			Note:          '█',
			NoteRetrigger: '▐',
			BelowRoll:     '▁',
			AboveRoll:     '▔',

			Playhead: '▼',
			Measure:  '▬',
		},
	}
}

// Color roles mapped to palette positions (0-1)
const (
	RoleBG      = 0.0 // deep purple
	RoleSurface = 0.1 // dark purple, sharp key lanes
	RoleMuted   = 0.2 // purple-magenta
	RoleFG      = 0.4 // pink-purple (readable)
	RoleAccent  = 0.5 // vivid magenta
	RoleCursor  = 0.6 // rose pink
	RoleActive  = 0.7 // soft red
	RoleWarning = 0.8 // orange, recording
	RoleSuccess = 1.0 // bright yellow

	// Notes span this range by velocity
	RoleNoteLow  = 0.3
	RoleNoteHigh = 1.0
)

// Style helpers

func (t *Theme) BG() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleBG))
}

func (t *Theme) Surface() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleSurface))
}

func (t *Theme) FG() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleFG))
}

func (t *Theme) Accent() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleAccent))
}

func (t *Theme) Muted() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleMuted))
}

func (t *Theme) Active() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleActive))
}

func (t *Theme) Cursor() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleCursor))
}

func (t *Theme) Warning() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleWarning))
}

func (t *Theme) Success() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleSuccess))
}

// Velocity returns the note color for a velocity 0-1
func (t *Theme) Velocity(v float64) lipgloss.Color {
	v = min(max(v, 0), 1)
	return t.Color(RoleNoteLow + v*(RoleNoteHigh-RoleNoteLow))
}

// Color returns lipgloss color for any normalized value 0-1
func (t *Theme) Color(norm float64) lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(norm))
}

func rgbToLipgloss(c RGB) lipgloss.Color {
	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", c[0], c[1], c[2]))
}
