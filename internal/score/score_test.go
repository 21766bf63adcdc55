package score

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDurationLengths(t *testing.T) {
	assert := assert.New(t)

	assert.Equal(1.0, Duration{Type: "quarter"}.TrueLength())
	assert.Equal(3.0, Duration{Type: "half", Dots: 1}.TrueLength())
	assert.Equal(3.5, Duration{Type: "half", Dots: 2}.TrueLength())
	assert.Equal(8.0, Duration{Type: "breve"}.TrueLength())
	assert.InDelta(1.0/3, Duration{Type: "eighth", Tuplet: &Ratio{Actual: 3, Normal: 2}}.TrueLength(), 1e-12)
	assert.Equal(0.5, Duration{Type: "eighth", Tuplet: &Ratio{Actual: 2, Normal: 2}}.TrueLength())
}

func TestDotFactor(t *testing.T) {
	assert.Equal(t, 1.0, DotFactor(0))
	assert.Equal(t, 1.5, DotFactor(1))
	assert.Equal(t, 1.75, DotFactor(2))
	assert.Equal(t, 1.875, DotFactor(3))
}

func TestDurationFromLength(t *testing.T) {
	d, ok := DurationFromLength(1.5, nil)
	require.True(t, ok)
	assert.Equal(t, Duration{Type: "quarter", Dots: 1}, d)

	r := &Ratio{Actual: 3, Normal: 2}
	d, ok = DurationFromLength(1.0/3, r)
	require.True(t, ok)
	assert.Equal(t, "eighth", d.Type)
	assert.Same(t, r, d.Tuplet)

	_, ok = DurationFromLength(0.3, nil)
	assert.False(t, ok)
}

func TestDurationEqual(t *testing.T) {
	a := Duration{Type: "eighth", Tuplet: &Ratio{3, 2}}
	b := Duration{Type: "eighth", Tuplet: &Ratio{3, 2}}
	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(Duration{Type: "eighth"}))
}

func TestPitch(t *testing.T) {
	assert := assert.New(t)
	assert.Equal("C4", Pitch{Step: "C", Octave: 4}.String())
	assert.Equal("F#4", Pitch{Step: "F", Alteration: 1, Octave: 4}.String())
	assert.Equal("Bb3", Pitch{Step: "B", Alteration: -1, Octave: 3}.String())
	assert.Equal(60, Pitch{Step: "C", Octave: 4}.MIDINumber())
	assert.Equal(70, Pitch{Step: "B", Alteration: -1, Octave: 4}.MIDINumber())
	assert.Equal(69, Pitch{Step: "A", Octave: 4}.MIDINumber())
}

func TestTieCombine(t *testing.T) {
	assert.Equal(t, TieBoth, TieStart.Combine(TieStop))
	assert.Equal(t, TieStart, TieNone.Combine(TieStart))
	assert.Equal(t, TieNone, TieNone.Combine(TieNone))
}

func note(step string, octave int, typ string, voice int) *Event {
	return &Event{
		Kind:     KindNote,
		Pitch:    &Pitch{Step: step, Octave: octave},
		Duration: Duration{Type: typ},
		Voice:    voice,
		Staff:    1,
		Notehead: Notehead{Type: "normal"},
	}
}

func TestStatsCountsChordPitchesAndRests(t *testing.T) {
	chord := &Chord{Notes: []Event{*note("C", 4, "quarter", 1), *note("E", 4, "quarter", 1)}}
	rest := &Event{Kind: KindRest, Duration: Duration{Type: "quarter"}, Voice: 1}
	beam := &BeamedGroup{Contents: Items{note("D", 4, "eighth", 1), note("E", 4, "eighth", 1)}}
	s := &Score{Contents: []Section{
		&PartGroup{Parts: []*Part{{ID: "P1", Measures: []*Measure{
			{Number: "1", VoiceNumbers: []int{1}, Voices: []Items{{chord, rest, beam}}},
		}}}},
		&Part{ID: "P2", Measures: []*Measure{{Number: "1"}}},
	}}

	st := s.Stats()
	assert.Equal(t, Stats{Parts: 2, Measures: 2, Notes: 4, Rests: 1}, st)
	assert.NotNil(t, s.Part("P2"))
	assert.Nil(t, s.Part("P9"))
}

func TestItemLengths(t *testing.T) {
	r := Ratio{Actual: 3, Normal: 2}
	tup := &Tuplet{Ratio: r, Contents: Items{
		&Event{Kind: KindNote, Duration: Duration{Type: "eighth", Tuplet: &r}, Voice: 2},
		&Event{Kind: KindNote, Duration: Duration{Type: "eighth", Tuplet: &r}, Voice: 2},
		&Event{Kind: KindNote, Duration: Duration{Type: "eighth", Tuplet: &r}, Voice: 2},
	}}
	assert.InDelta(t, 1.0, tup.Length(), 1e-12)
	assert.Equal(t, 2, tup.VoiceNumber())

	grace := &Event{Kind: KindGrace, Duration: Duration{Type: "eighth"}}
	assert.Equal(t, 0.0, grace.Length())
	bar := &Event{Kind: KindBarRest, BarLength: 3}
	assert.Equal(t, 3.0, bar.Length())
}

func TestMeasureJSONShape(t *testing.T) {
	single := &Measure{
		Number:       "1",
		VoiceNumbers: []int{1},
		Voices:       []Items{{note("C", 5, "quarter", 1)}},
		Directions: []Placed{{
			Content:      &Dynamic{Anchor: Anchor{Placement: "below", Voice: 1}, Mark: "mf"},
			Displacement: 1.5,
		}},
	}
	raw, err := json.Marshal(single)
	require.NoError(t, err)

	var got struct {
		Contents   []map[string]any `json:"contents"`
		Directions []struct {
			Displacement float64        `json:"displacement"`
			Direction    map[string]any `json:"direction"`
		} `json:"directions"`
	}
	require.NoError(t, json.Unmarshal(raw, &got))
	require.Len(t, got.Contents, 1)
	assert.Equal(t, "note", got.Contents[0]["kind"])
	require.Len(t, got.Directions, 1)
	assert.Equal(t, 1.5, got.Directions[0].Displacement)
	assert.Equal(t, "dynamic", got.Directions[0].Direction["kind"])
	assert.Equal(t, "mf", got.Directions[0].Direction["mark"])

	multi := &Measure{
		Number:       "2",
		VoiceNumbers: []int{1, 2},
		Voices:       []Items{{note("C", 5, "quarter", 1)}, {note("E", 4, "quarter", 2)}},
	}
	raw, err = json.Marshal(multi)
	require.NoError(t, err)
	var nested struct {
		Contents [][]map[string]any `json:"contents"`
	}
	require.NoError(t, json.Unmarshal(raw, &nested))
	assert.Len(t, nested.Contents, 2)
}

func TestNotationsJSONKinds(t *testing.T) {
	raw, err := json.Marshal(Notations{
		&Fermata{Inverted: true},
		&MultiGlissando{Type: TypeStart, Numbers: []string{"1", "2"}},
	})
	require.NoError(t, err)
	assert.JSONEq(t,
		`[{"kind":"fermata","inverted":true},{"kind":"multi-glissando","type":"start","numbers":["1","2"]}]`,
		string(raw))
}

func TestHarmonyJSONKeepsDirectionKind(t *testing.T) {
	raw, err := json.Marshal(Placed{Content: &Harmony{Root: "C", Kind: "minor", KindText: "m"}})
	require.NoError(t, err)

	var got struct {
		Direction map[string]any `json:"direction"`
	}
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, "harmony", got.Direction["kind"])
	assert.Equal(t, "minor", got.Direction["chord_kind"])
	assert.Equal(t, "m", got.Direction["chord_kind_text"])
	assert.Equal(t, 1, strings.Count(string(raw), `"kind"`))
}
