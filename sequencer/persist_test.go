package sequencer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func populatedEngine() *Engine {
	e := NewEngine()
	d := e.Data
	d.SetMeasures(0, 2)
	d.SetStepPitch(0, 1, 3, 7)
	d.SetStepActive(0, 1, 3, true)
	d.SetStepVelocity(0, 1, 3, 0.25)
	d.SetDivisionsPerBeat(2, 3)
	d.SetBeatsPerMeasure(2, 5)
	d.SetStepActive(2, 0, 14, true)
	d.ToggleStepRetrigger(2, 0, 14)
	e.Transport.SetPattern(2)
	e.Transport.SetStepInPattern(9)
	e.Transport.SetRunning(false)
	e.SetClockDelay(3)
	return e
}

func TestToPersisted_StopsAtLastPatternWithContent(t *testing.T) {
	s := ToPersisted(populatedEngine())

	require.Len(t, s.Patterns, 3)
	assert.Equal(t, 2, *s.CurrentPattern)
	assert.Equal(t, 9, *s.CurrentStep)
	assert.Equal(t, 3, *s.ClockDelay)
	assert.False(t, *s.SequenceRunning)

	p := s.Patterns[2]
	assert.Equal(t, 5, *p.BeatsPerMeasure)
	assert.Equal(t, 3, *p.DivisionsPerBeat)
	require.Len(t, p.Measures, 1)
	assert.Len(t, p.Measures[0].Notes, 15)
	assert.True(t, *p.Measures[0].Notes[14].Retrigger)
}

func TestPersist_RoundTrip(t *testing.T) {
	for _, format := range []Format{FormatJSON, FormatYAML} {
		t.Run(string(format), func(t *testing.T) {
			src := populatedEngine()
			b, err := ToPersisted(src).Marshal(format)
			require.NoError(t, err)

			s, err := UnmarshalState(b)
			require.NoError(t, err)

			dst := NewEngine()
			dst.Data.SetStepActive(40, 0, 0, true)
			FromPersisted(dst, s)

			assert.Equal(t, src.Data.patterns, dst.Data.patterns)
			assert.Equal(t, 2, dst.Transport.CurrentPattern())
			assert.Equal(t, 9, dst.Transport.CurrentStepInPattern())
			assert.Equal(t, 3, dst.ClockDelay())
			assert.False(t, dst.Transport.IsRunning())
		})
	}
}

func TestFromPersisted_MissingFieldsKeepDefaults(t *testing.T) {
	s, err := UnmarshalState([]byte(`{"patterns":[{"beatsPerMeasure":3,"measures":[{"notes":[{"active":true},{"pitch":4}]}]}]}`))
	require.NoError(t, err)

	e := NewEngine()
	FromPersisted(e, s)

	assert.Equal(t, 3, e.Data.BeatsPerMeasure(0))
	assert.Equal(t, 4, e.Data.DivisionsPerBeat(0))
	assert.Equal(t, 1, e.Data.Measures(0))
	assert.True(t, e.Data.IsStepActive(0, 0, 0))
	assert.Equal(t, 0.0, e.Data.StepVelocity(0, 0, 0))
	assert.Equal(t, 4, e.Data.StepPitch(0, 0, 1))
	assert.False(t, e.Data.IsStepActive(0, 0, 1))
	assert.Equal(t, -1, e.Transport.CurrentStepInPattern())
	assert.True(t, e.Transport.IsRunning())
}

func TestFromPersisted_IgnoresOutOfRangeData(t *testing.T) {
	tooMany := make([]NoteState, 40)
	for i := range tooMany {
		tooMany[i] = NoteState{Active: ptr(true), Velocity: ptr(3.0)}
	}
	s := State{
		Patterns:    []PatternState{{Measures: []MeasureState{{Notes: tooMany}}}},
		CurrentStep: ptr(500),
		ClockDelay:  ptr(99),
	}

	e := NewEngine()
	FromPersisted(e, s)

	require.Len(t, e.Data.patterns[0].Measures[0].Steps, 16)
	assert.Equal(t, 1.0, e.Data.StepVelocity(0, 0, 15))
	assert.Equal(t, 15, e.Transport.CurrentStepInPattern())
	assert.Equal(t, MaxClockDelay, e.ClockDelay())
}

func TestFromPersisted_RetainedMeasures(t *testing.T) {
	src := NewEngine()
	src.Data.SetMeasures(0, 3)
	src.Data.SetStepActive(0, 2, 0, true)
	src.Data.SetMeasures(0, 1)

	dst := NewEngine()
	FromPersisted(dst, ToPersisted(src))

	assert.Equal(t, 1, dst.Data.Measures(0))
	dst.Data.SetMeasures(0, 3)
	assert.True(t, dst.Data.IsStepActive(0, 2, 0))
}

func TestUnmarshalState_Invalid(t *testing.T) {
	_, err := UnmarshalState([]byte("patterns: [: nope"))
	assert.Error(t, err)
}

func TestFormats(t *testing.T) {
	assert.Equal(t, FormatYAML, FormatFromPath("a/b.YML"))
	assert.Equal(t, FormatYAML, FormatFromPath("song.yaml"))
	assert.Equal(t, FormatJSON, FormatFromPath("song.json"))
	assert.Equal(t, FormatJSON, FormatFromPath("song"))
	assert.Equal(t, ".yaml", FormatYAML.Ext())

	f, err := ParseFormat("YAML")
	require.NoError(t, err)
	assert.Equal(t, FormatYAML, f)
	_, err = ParseFormat("toml")
	assert.Error(t, err)
}

func TestToPersisted_CursorInsideShrunkPattern(t *testing.T) {
	e := NewEngine()
	e.Data.SetMeasures(0, 2)
	e.Transport.SetStepInPattern(20)
	e.Data.SetMeasures(0, 1)

	assert.Equal(t, 4, *ToPersisted(e).CurrentStep)
}
