package musicxml

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/partitura/internal/score"
	"github.com/starford/partitura/internal/testutil/fixture"
)

func direction(types ...string) string {
	out := "<direction>"
	for _, t := range types {
		out += "<direction-type>" + t + "</direction-type>"
	}
	return out + "</direction>"
}

func TestDisplacementWithOffset(t *testing.T) {
	m, _ := importMeasure(t,
		fixture.Divisions(4),
		fixture.Note("C5", 4, "quarter"),
		fixture.Words("dolce", 2),
		fixture.Note("D5", 4, "quarter"),
	)
	require.Len(t, m.Directions, 1)
	assert.Equal(t, 1.5, m.Directions[0].Displacement)
	words, ok := m.Directions[0].Content.(*score.TextAnnotation)
	require.True(t, ok)
	assert.Equal(t, "dolce", words.Text)
	assert.Equal(t, "above", words.Placement)
}

func TestDirectionsAndHarmonyInDocumentOrder(t *testing.T) {
	harmony := `<harmony><root><root-step>D</root-step></root><kind>minor</kind></harmony>`
	m, _ := importMeasure(t,
		fixture.Divisions(1),
		harmony,
		fixture.Note("D4", 1, "quarter"),
		direction(`<dynamics><mf/></dynamics>`),
		fixture.Note("F4", 1, "quarter"),
	)
	require.Len(t, m.Directions, 2)
	assert.Equal(t, score.DirectionHarmony, m.Directions[0].Content.DirectionKind())
	assert.Equal(t, 0.0, m.Directions[0].Displacement)
	assert.Equal(t, score.DirectionDynamic, m.Directions[1].Content.DirectionKind())
	assert.Equal(t, 1.0, m.Directions[1].Displacement)
}

func TestDirectionShapes(t *testing.T) {
	tests := []struct {
		name  string
		xml   string
		check func(t *testing.T, d score.Direction)
	}{
		{
			name: "dynamic",
			xml:  direction(`<dynamics><sfz/></dynamics>`),
			check: func(t *testing.T, d score.Direction) {
				dyn := d.(*score.Dynamic)
				assert.Equal(t, "sfz", dyn.Mark)
				assert.Equal(t, "below", dyn.Placement)
			},
		},
		{
			name: "other dynamics",
			xml:  direction(`<dynamics><other-dynamics>sempre p</other-dynamics></dynamics>`),
			check: func(t *testing.T, d score.Direction) {
				dyn := d.(*score.Dynamic)
				assert.True(t, dyn.Other)
				assert.Equal(t, "sempre p", dyn.Mark)
			},
		},
		{
			name: "hairpin",
			xml:  direction(`<wedge type="crescendo" number="2" spread="15" niente="yes"/>`),
			check: func(t *testing.T, d score.Direction) {
				h := d.(*score.Hairpin)
				assert.Equal(t, score.HairpinCrescendo, h.Type)
				assert.Equal(t, "2", h.Number)
				require.NotNil(t, h.Spread)
				assert.Equal(t, 15.0, *h.Spread)
				assert.True(t, h.Niente)
			},
		},
		{
			name: "pedal change",
			xml:  direction(`<pedal type="change" line="no"/>`),
			check: func(t *testing.T, d score.Direction) {
				p := d.(*score.Pedal)
				assert.Equal(t, score.TypeChange, p.Type)
				assert.True(t, p.Sign)
				assert.False(t, p.Line)
			},
		},
		{
			name: "dotted metronome",
			xml: direction(`<metronome parentheses="yes"><beat-unit>quarter</beat-unit>` +
				`<beat-unit-dot/><per-minute>60</per-minute></metronome>`),
			check: func(t *testing.T, d score.Direction) {
				mm := d.(*score.MetronomeMark)
				assert.Equal(t, 1, mm.Dots)
				assert.Equal(t, 1.5, mm.BeatLength)
				assert.Equal(t, 90.0, mm.QuarterBPM())
				assert.True(t, mm.Parentheses)
			},
		},
		{
			name: "words label a dashes start",
			xml:  direction(`<words>cresc.</words>`, `<dashes type="start" number="1"/>`),
			check: func(t *testing.T, d score.Direction) {
				dash := d.(*score.Dashes)
				assert.Equal(t, score.TypeStart, dash.Type)
				require.NotNil(t, dash.Text)
				assert.Equal(t, "cresc.", dash.Text.Text)
			},
		},
		{
			name: "bracket defaults",
			xml:  direction(`<bracket type="start" line-end="down" end-length="10"/>`),
			check: func(t *testing.T, d score.Direction) {
				br := d.(*score.Bracket)
				assert.Equal(t, "dashed", br.LineType)
				assert.Equal(t, "down", br.LineEnd)
				require.NotNil(t, br.EndLength)
				assert.Nil(t, br.Text)
			},
		},
		{
			name: "styled words",
			xml:  `<direction placement="below"><direction-type><words font-size="12" font-style="italic">espr.</words></direction-type><staff>2</staff></direction>`,
			check: func(t *testing.T, d score.Direction) {
				w := d.(*score.TextAnnotation)
				assert.Equal(t, "espr.", w.Text)
				assert.True(t, w.Italic)
				assert.False(t, w.Bold)
				require.NotNil(t, w.FontSize)
				assert.Equal(t, 12.0, *w.FontSize)
				assert.Equal(t, score.Anchor{Placement: "below", Staff: 2, Voice: 1}, w.Anchored())
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, diags := importMeasure(t, tt.xml)
			require.Len(t, m.Directions, 1, "diagnostics: %v", diags)
			tt.check(t, m.Directions[0].Content)
		})
	}
}

func TestUnusableDirections(t *testing.T) {
	m, diags := importMeasure(t,
		direction(`<dynamics><zz/></dynamics>`),
		direction(`<metronome><beat-unit>quarter</beat-unit><per-minute>fast</per-minute></metronome>`),
		direction(`<segno/>`),
	)
	assert.Empty(t, m.Directions)
	assert.Equal(t, 2, diags.Count(CodeUnknownValue))
	assert.Equal(t, 1, diags.Count(CodeUnknownDirection))
	assert.Equal(t, 1, diags.Count(CodeInvalidNumber))
}

func TestDynamicTakesPriorityOverWordsInLaterType(t *testing.T) {
	m, _ := importMeasure(t, direction(`<dynamics><p/></dynamics>`, `<words>subito</words>`))
	require.Len(t, m.Directions, 1)
	assert.Equal(t, score.DirectionDynamic, m.Directions[0].Content.DirectionKind())
}

func TestHarmony(t *testing.T) {
	h := `<harmony print-object="no"><root><root-step>B</root-step><root-alter>-1</root-alter></root>` +
		`<kind text="m7" use-symbols="no">Minor-Seventh</kind>` +
		`<degree><degree-value>9</degree-value><degree-alter>0</degree-alter><degree-type>add</degree-type></degree>` +
		`<degree print-object="no"><degree-value>5</degree-value><degree-alter>-1</degree-alter><degree-type>bogus</degree-type></degree>` +
		`</harmony>`
	m, diags := importMeasure(t, h)
	require.Len(t, m.Directions, 1)
	got := m.Directions[0].Content.(*score.Harmony)
	assert.Equal(t, "B", got.Root)
	assert.Equal(t, -1, got.RootAlter)
	assert.Equal(t, "minor-seventh", got.Kind)
	assert.Equal(t, "m7", got.KindText)
	assert.False(t, got.PrintObject)
	assert.Equal(t, []score.Degree{
		{Value: 9, Alter: 0, Type: "add", PrintObject: true},
		{Value: 5, Alter: -1, Type: "alter", PrintObject: false},
	}, got.Degrees)
	assert.Equal(t, 1, diags.Count(CodeUnknownValue))
}

func TestHarmonyKindFallback(t *testing.T) {
	m, diags := importMeasure(t,
		`<harmony><root><root-step>C</root-step></root><kind>mystery</kind></harmony>`,
		`<harmony><root><root-step>C</root-step></root></harmony>`,
	)
	require.Len(t, m.Directions, 1)
	assert.Equal(t, "major", m.Directions[0].Content.(*score.Harmony).Kind)
	assert.True(t, diags.Has(CodeUnknownValue))
	assert.True(t, diags.Has(CodeIncompleteHarmony))
}
