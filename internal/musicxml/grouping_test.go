package musicxml

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/partitura/internal/score"
	"github.com/starford/partitura/internal/testutil/fixture"
)

func TestTwoVoiceMeasure(t *testing.T) {
	v1, v2 := fixture.Voice(1), fixture.Voice(2)
	m, diags := importMeasure(t,
		fixture.Divisions(2),
		fixture.Note("C5", 2, "quarter", v1),
		fixture.Note("D5", 2, "quarter", v1),
		fixture.Note("E5", 2, "quarter", v1),
		fixture.Note("F5", 2, "quarter", v1),
		fixture.Backup(8),
		fixture.Note("E4", 1, "eighth", v2),
		fixture.Note("F4", 1, "eighth", v2),
		fixture.Note("G4", 2, "quarter", v2),
		fixture.Note("A4", 4, "half", v2),
	)
	assert.Empty(t, diags)

	require.Len(t, m.Voices, 2)
	assert.Equal(t, []int{1, 2}, m.VoiceNumbers)
	assert.Equal(t, []string{"C5", "D5", "E5", "F5"}, leafPitches(m.Voices[0]))
	assert.Equal(t, []string{"E4", "F4", "G4", "A4"}, leafPitches(m.Voices[1]))
	for i, v := range m.Voices {
		for _, it := range v {
			assert.Equal(t, i+1, it.VoiceNumber())
		}
	}
	assert.Nil(t, m.Contents())
	assert.Equal(t, 4.0, m.Length())
}

func TestSingleVoiceIsFlat(t *testing.T) {
	m, _ := importMeasure(t,
		fixture.Note("C5", 1, "quarter"),
		fixture.Note("D5", 1, "quarter"),
	)
	require.Len(t, m.Voices, 1)
	assert.Equal(t, []int{1}, m.VoiceNumbers)
	assert.Equal(t, []string{"note", "note"}, kinds(m.Contents()))
}

func TestVoicesSortedAscending(t *testing.T) {
	m, _ := importMeasure(t,
		fixture.Note("C5", 1, "whole", fixture.Voice(3)),
		fixture.Backup(1),
		fixture.Note("C4", 1, "whole", fixture.Voice(1)),
	)
	assert.Equal(t, []int{1, 3}, m.VoiceNumbers)
	assert.Equal(t, []string{"C4"}, leafPitches(m.Voice(1)))
	assert.Equal(t, []string{"C5"}, leafPitches(m.Voice(3)))
}

func TestExplicitTuplet(t *testing.T) {
	tm := fixture.TimeModification(3, 2)
	m, diags := importMeasure(t,
		fixture.Divisions(6),
		fixture.Note("C5", 2, "eighth", tm, fixture.Notations(fixture.Tuplet("start"))),
		fixture.Note("D5", 2, "eighth", tm),
		fixture.Note("E5", 2, "eighth", tm, fixture.Notations(fixture.Tuplet("stop"))),
	)
	assert.Empty(t, diags)

	items := m.Contents()
	require.Len(t, items, 1)
	tup, ok := items[0].(*score.Tuplet)
	require.True(t, ok)
	assert.Equal(t, score.Ratio{Actual: 3, Normal: 2}, tup.Ratio)
	require.Len(t, tup.Contents, 3)
	for _, it := range tup.Contents {
		ev := it.(*score.Event)
		require.NotNil(t, ev.Duration.Tuplet)
		assert.Equal(t, tup.Ratio, *ev.Duration.Tuplet)
	}
	assert.InDelta(t, 1.0, tup.Length(), 1e-9)
}

func TestTupletCountsLeadNotesOnly(t *testing.T) {
	tm := fixture.TimeModification(3, 2)
	m, _ := importMeasure(t,
		fixture.Divisions(6),
		fixture.Note("C5", 2, "eighth", tm, fixture.Notations(fixture.Tuplet("start"))),
		fixture.Note("D5", 2, "eighth", tm),
		fixture.Note("F5", 2, "eighth", tm, fixture.Chord),
		fixture.Note("A5", 2, "eighth", tm, fixture.Chord),
		fixture.Note("E5", 2, "eighth", tm, fixture.Notations(fixture.Tuplet("stop"))),
	)
	tup := m.Contents()[0].(*score.Tuplet)
	assert.Equal(t, []string{"note", "chord", "note"}, kinds(tup.Contents))
	chord := tup.Contents[1].(*score.Chord)
	for _, n := range chord.Notes {
		assert.Equal(t, score.Ratio{Actual: 3, Normal: 2}, *n.Duration.Tuplet)
	}
}

func TestTupletWithoutRatioIsDiscarded(t *testing.T) {
	m, diags := importMeasure(t,
		fixture.Note("C5", 1, "eighth", fixture.Notations(fixture.Tuplet("start"))),
		fixture.Note("D5", 1, "eighth", fixture.Notations(fixture.Tuplet("stop"))),
	)
	assert.True(t, diags.Has(CodeTupletDiscarded))
	assert.Equal(t, []string{"note", "note"}, kinds(m.Contents()))
}

func TestTupletInference(t *testing.T) {
	tri, quint := fixture.TimeModification(3, 2), fixture.TimeModification(5, 4)
	m, _ := importMeasure(t,
		fixture.Divisions(30),
		fixture.Note("C5", 10, "eighth", tri),
		fixture.Note("D5", 10, "eighth", tri),
		fixture.Note("E5", 10, "eighth", tri),
		fixture.Note("C5", 6, "16th", quint),
		fixture.Note("D5", 6, "16th", quint),
		fixture.Note("E5", 6, "16th", quint),
		fixture.Note("F5", 6, "16th", quint),
		fixture.Note("G5", 6, "16th", quint),
		fixture.Note("A5", 30, "quarter"),
	)
	items := m.Contents()
	require.Equal(t, []string{"tuplet", "tuplet", "note"}, kinds(items))
	assert.Equal(t, score.Ratio{Actual: 3, Normal: 2}, items[0].(*score.Tuplet).Ratio)
	assert.Len(t, items[0].(*score.Tuplet).Contents, 3)
	assert.Equal(t, score.Ratio{Actual: 5, Normal: 4}, items[1].(*score.Tuplet).Ratio)
	assert.Len(t, items[1].(*score.Tuplet).Contents, 5)
}

func TestTupletMarkProblems(t *testing.T) {
	tm := fixture.TimeModification(3, 2)
	_, diags := importMeasure(t,
		fixture.Divisions(3),
		fixture.Note("C5", 1, "eighth", tm, fixture.Notations(fixture.Tuplet("stop"))),
		fixture.Note("D5", 1, "eighth", tm, fixture.Notations(fixture.Tuplet("start"))),
		fixture.Note("E5", 1, "eighth", tm),
	)
	assert.True(t, diags.Has(CodeTupletUnopened))
	assert.True(t, diags.Has(CodeTupletUnclosed))
}

func TestBeamedGroup(t *testing.T) {
	m, diags := importMeasure(t,
		fixture.Divisions(2),
		fixture.Note("C5", 1, "eighth", fixture.Beam("begin")),
		fixture.Note("D5", 1, "eighth", fixture.Beam("continue")),
		fixture.Note("E5", 1, "eighth", fixture.Beam("continue")),
		fixture.Note("F5", 1, "eighth", fixture.Beam("end")),
		fixture.Note("G5", 4, "half"),
	)
	assert.Empty(t, diags)
	items := m.Contents()
	require.Equal(t, []string{"beamed-group", "note"}, kinds(items))
	g := items[0].(*score.BeamedGroup)
	assert.Equal(t, []string{"C5", "D5", "E5", "F5"}, leafPitches(g.Contents))
	assert.Equal(t, 2.0, g.Length())
}

func TestSecondaryBeamsCollapse(t *testing.T) {
	m, _ := importMeasure(t,
		fixture.Divisions(4),
		fixture.Note("C5", 1, "16th", `<beam number="1">begin</beam><beam number="2">begin</beam>`),
		fixture.Note("D5", 1, "16th", `<beam number="1">continue</beam><beam number="2">end</beam>`),
		fixture.Note("E5", 2, "eighth", `<beam number="1">end</beam>`),
	)
	items := m.Contents()
	require.Len(t, items, 1)
	assert.Len(t, items[0].(*score.BeamedGroup).Contents, 3)
}

func TestUnclosedBeam(t *testing.T) {
	m, diags := importMeasure(t,
		fixture.Divisions(2),
		fixture.Note("C5", 1, "eighth", fixture.Beam("begin")),
		fixture.Note("D5", 1, "eighth", fixture.Beam("continue")),
	)
	assert.True(t, diags.Has(CodeBeamUnclosed))
	assert.Equal(t, []string{"note", "note"}, kinds(m.Contents()))
}

func TestRepeatedBeamBeginKeepsOpenSpan(t *testing.T) {
	m, _ := importMeasure(t,
		fixture.Divisions(2),
		fixture.Note("C5", 1, "eighth", fixture.Beam("begin")),
		fixture.Note("D5", 1, "eighth", fixture.Beam("begin")),
		fixture.Note("E5", 1, "eighth", fixture.Beam("end")),
	)
	items := m.Contents()
	require.Equal(t, []string{"beamed-group"}, kinds(items))
	assert.Equal(t, []string{"C5", "D5", "E5"}, leafPitches(items[0].(*score.BeamedGroup).Contents))
}

func TestBeamSpanStopsAtTuplet(t *testing.T) {
	tm := fixture.TimeModification(3, 2)
	m, _ := importMeasure(t,
		fixture.Divisions(6),
		fixture.Note("C5", 3, "eighth", fixture.Beam("begin")),
		fixture.Note("D5", 3, "eighth", fixture.Beam("continue")),
		fixture.Note("E5", 2, "eighth", tm, fixture.Notations(fixture.Tuplet("start"))),
		fixture.Note("F5", 2, "eighth", tm),
		fixture.Note("G5", 2, "eighth", tm, fixture.Notations(fixture.Tuplet("stop"))),
		fixture.Note("A5", 3, "eighth", fixture.Beam("end")),
	)
	items := m.Contents()
	require.Equal(t, []string{"beamed-group", "tuplet", "note"}, kinds(items))
	assert.Equal(t, []string{"C5", "D5"}, leafPitches(items[0].(*score.BeamedGroup).Contents))
}

func TestChordGlissandoConsolidation(t *testing.T) {
	start := func(n string) string { return fixture.Notations(fixture.Glissando("start", n)) }
	m, _ := importMeasure(t,
		fixture.Note("C4", 1, "quarter", start("1")),
		fixture.Note("E4", 1, "quarter", fixture.Chord, start("2")),
		fixture.Note("G4", 1, "quarter", fixture.Chord, start("3")),
	)
	chord := m.Contents()[0].(*score.Chord)
	require.Len(t, chord.Notations, 1)
	multi, ok := chord.Notations[0].(*score.MultiGlissando)
	require.True(t, ok)
	assert.Equal(t, score.TypeStart, multi.Type)
	assert.Equal(t, []string{"1", "2", "3"}, multi.Numbers)
}

func TestChordSingleGlissando(t *testing.T) {
	m, _ := importMeasure(t,
		fixture.Note("C4", 1, "quarter", fixture.Notations(fixture.Glissando("start", "1"))),
		fixture.Note("E4", 1, "quarter", fixture.Chord),
	)
	chord := m.Contents()[0].(*score.Chord)
	require.Len(t, chord.Notations, 1)
	g, ok := chord.Notations[0].(*score.Glissando)
	require.True(t, ok)
	assert.Equal(t, "1", g.Number)
}

func TestConsolidateKeepsStartsAndStopsApart(t *testing.T) {
	ns := score.Notations{
		&score.Glissando{Type: "stop", Number: "1"},
		&score.Glissando{Type: "start", Number: "1"},
		&score.Fermata{},
		&score.Glissando{Type: "stop", Number: "2"},
		&score.Glissando{Type: "start", Number: "1"},
	}
	out := consolidateGlissandi(ns)
	require.Len(t, out, 3)
	assert.Equal(t, &score.MultiGlissando{Type: "stop", Numbers: []string{"1", "2"}}, out[0])
	assert.Equal(t, &score.Glissando{Type: "start", Number: "1"}, out[1])
	assert.IsType(t, &score.Fermata{}, out[2])
}

func TestChordSharesLeadDuration(t *testing.T) {
	m, _ := importMeasure(t,
		fixture.Divisions(2),
		fixture.Note("C4", 4, "half", `<tie type="start"/>`),
		fixture.Note("E4", 1, "eighth", fixture.Chord, fixture.Voice(2)),
	)
	chord := m.Contents()[0].(*score.Chord)
	require.Len(t, chord.Notes, 2)
	for _, n := range chord.Notes {
		assert.Equal(t, "half", n.Duration.Type)
		assert.Equal(t, 1, n.Voice)
	}
	assert.Equal(t, score.TieStart, chord.Tie)
	assert.Equal(t, 2.0, chord.Length())
}

func TestChordWithoutPitches(t *testing.T) {
	unpitched := `<note><duration>1</duration><type>quarter</type></note>`
	member := `<note><chord/><duration>1</duration><type>quarter</type></note>`
	m, diags := importMeasure(t, unpitched, member)
	assert.True(t, diags.Has(CodeEmptyChord))
	assert.Empty(t, m.Voices)
}

func TestOrphanChordNote(t *testing.T) {
	m, diags := importMeasure(t,
		fixture.Note("C4", 1, "quarter", fixture.Chord),
	)
	assert.True(t, diags.Has(CodeOrphanChordNote))
	assert.Equal(t, []string{"C4"}, leafPitches(m.Contents()))
}

func TestGraceChord(t *testing.T) {
	grace := func(step string, chord bool) string {
		c := ""
		if chord {
			c = "<chord/>"
		}
		return `<note><grace slash="yes"/>` + c + `<pitch><step>` + step + `</step><octave>5</octave></pitch><type>eighth</type></note>`
	}
	m, _ := importMeasure(t,
		grace("C", false),
		grace("E", true),
		fixture.Note("D5", 1, "quarter"),
	)
	items := m.Contents()
	require.Equal(t, []string{"grace-chord", "note"}, kinds(items))
	gc := items[0].(*score.Chord)
	assert.True(t, gc.Slashed)
	assert.Equal(t, 0.0, gc.Length())
	assert.Equal(t, score.KindGrace, gc.Notes[0].Kind)
}

func TestPartitionVoices(t *testing.T) {
	ev := func(v int) *score.Event { return &score.Event{Kind: score.KindRest, Voice: v} }
	a, b, c := ev(2), ev(1), ev(2)
	numbers, voices := partitionVoices(score.Items{a, b, c})
	assert.Equal(t, []int{1, 2}, numbers)
	assert.Equal(t, []score.Items{{b}, {a, c}}, voices)

	numbers, voices = partitionVoices(nil)
	assert.Empty(t, numbers)
	assert.Empty(t, voices)
}
