package musicxml

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	xmldom "github.com/subchen/go-xmldom"

	"github.com/starford/partitura/internal/score"
	"github.com/starford/partitura/internal/testutil/fixture"
)

func importString(t *testing.T, doc string) (*score.Score, Diagnostics) {
	t.Helper()
	s, diags, err := New().ImportBytes("test.musicxml", []byte(doc))
	require.NoError(t, err)
	require.NotNil(t, s)
	return s, diags
}

// importMeasure imports a one-part, one-measure document.
func importMeasure(t *testing.T, body ...string) (*score.Measure, Diagnostics) {
	t.Helper()
	s, diags := importString(t, fixture.Single(fixture.Measure("1", body...)))
	parts := s.Parts()
	require.Len(t, parts, 1)
	require.Len(t, parts[0].Measures, 1)
	return parts[0].Measures[0], diags
}

func parseMeasure(t *testing.T, body ...string) *xmldom.Node {
	t.Helper()
	doc, err := xmldom.Parse(strings.NewReader(fixture.Measure("1", body...)))
	require.NoError(t, err)
	return doc.Root
}

func newBuilder() *builder { return &builder{rep: &reporter{}} }

// leafPitches lists the pitches of every leaf and chord in order.
func leafPitches(items score.Items) []string {
	var out []string
	items.Leaves(func(it score.Item) {
		switch v := it.(type) {
		case *score.Event:
			if v.Pitch != nil {
				out = append(out, v.Pitch.String())
			}
		case *score.Chord:
			for _, p := range v.Pitches() {
				out = append(out, p.String())
			}
		}
	})
	return out
}

func kinds(items score.Items) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.ItemKind())
	}
	return out
}
