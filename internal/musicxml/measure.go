package musicxml

import (
	xmldom "github.com/subchen/go-xmldom"

	"github.com/starford/partitura/internal/score"
)

// measure assembles one <measure>. divisions is the value carried from the
// previous measure; the value in effect at the end of this one is returned.
func (b *builder) measure(el *xmldom.Node, divisions float64, first bool) (*score.Measure, float64) {
	elems := el.Children
	tl := trackPositions(elems, divisions, b.rep)

	number := attr(el, "number")
	m := &score.Measure{
		Number:    number,
		Pickup:    attr(el, "implicit") == "yes" && (number == "0" || first),
		Divisions: tl.final,
	}
	for _, c := range elems {
		switch c.Name {
		case "attributes":
			b.attributes(c, m)
		case "barline":
			b.barline(c, m)
		}
	}

	var items score.Items
	for _, voice := range splitByVoice(b.collectNoteGroups(elems, tl)) {
		items = append(items, b.identifyGroups(voice)...)
	}
	m.VoiceNumbers, m.Voices = partitionVoices(items)
	m.Directions = b.placeDirections(elems, tl)
	return m, tl.final
}
