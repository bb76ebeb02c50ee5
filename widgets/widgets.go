package widgets

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var velocityBlocks = []rune("▁▂▃▄▅▆▇█")

var noteNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// RenderCell renders one roll cell in the given color
func RenderCell(color lipgloss.Color, symbol rune) string {
	return lipgloss.NewStyle().Foreground(color).Render(string(symbol))
}

// VelocityBlock picks a block glyph whose height follows velocity 0-1
func VelocityBlock(v float64) rune {
	v = min(max(v, 0), 1)
	i := int(math.Round(v * float64(len(velocityBlocks)-1)))
	return velocityBlocks[i]
}

// RenderVelocityLane renders one block per step. Inactive steps are blank.
func RenderVelocityLane(velocities []float64, active []bool, color func(float64) lipgloss.Color) string {
	var out strings.Builder
	for i, v := range velocities {
		if i < len(active) && !active[i] {
			out.WriteString(" ")
			continue
		}
		out.WriteString(RenderCell(color(v), VelocityBlock(v)))
	}
	return out.String()
}

// KeyName names a pitch in semitones from middle C, e.g. 0 is C4
func KeyName(pitch int) string {
	octave := 4 + floorDiv(pitch, 12)
	return fmt.Sprintf("%s%d", noteNames[pitch-floorDiv(pitch, 12)*12], octave)
}

// IsSharp reports whether pitch falls on a black key
func IsSharp(pitch int) bool {
	switch pitch - floorDiv(pitch, 12)*12 {
	case 1, 3, 6, 8, 10:
		return true
	}
	return false
}

func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

// RenderLegendItem renders a single legend item: "■ Name - description"
func RenderLegendItem(color lipgloss.Color, symbol rune, name, desc string) string {
	return fmt.Sprintf("  %s %s - %s", RenderCell(color, symbol), name, desc)
}

// RenderKeyHelp formats key bindings in a friendly way
func RenderKeyHelp(sections []KeySection) string {
	var lines []string
	for _, sec := range sections {
		if sec.Title != "" {
			lines = append(lines, sec.Title)
		}
		for _, k := range sec.Keys {
			lines = append(lines, fmt.Sprintf("  %-12s %s", k.Key, k.Desc))
		}
	}
	return strings.Join(lines, "\n")
}

// KeySection groups related key bindings
type KeySection struct {
	Title string
	Keys  []KeyBinding
}

// KeyBinding is a single key and its description
type KeyBinding struct {
	Key  string
	Desc string
}
