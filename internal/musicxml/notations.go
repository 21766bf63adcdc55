package musicxml

import (
	xmldom "github.com/subchen/go-xmldom"

	"github.com/starford/partitura/internal/score"
)

var (
	ornamentTypes = set("mordent", "inverted-mordent", "turn", "inverted-turn",
		"delayed-turn", "delayed-inverted-turn", "schleifer", "trill-mark")
	technicalTypes = set("up-bow", "down-bow", "open-string", "harmonic",
		"stopped", "snap-pizzicato")
	articulationTypes = set("accent", "strong-accent", "staccato", "tenuto",
		"detached-legato", "staccatissimo", "spiccato", "stress", "unstress")
	placements = set("above", "below")
)

func set(vals ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(vals))
	for _, v := range vals {
		m[v] = struct{}{}
	}
	return m
}

// placement validates an optional placement attribute.
func (b *builder) placement(el *xmldom.Node, def string) string {
	p := attr(el, "placement")
	if p == "" {
		return def
	}
	if _, ok := placements[p]; !ok {
		b.rep.warn(CodeUnknownValue, "unknown placement %q, using %s", p, def)
		return def
	}
	return p
}

// notations reads every <notations> block of a note in document order.
// Tuplet and tied marks are consumed by grouping and tie handling.
func (b *builder) notations(el *xmldom.Node) score.Notations {
	var out score.Notations
	for _, block := range children(el, "notations") {
		for _, n := range block.Children {
			switch n.Name {
			case "fermata":
				out = append(out, &score.Fermata{Inverted: attr(n, "type") == "inverted"})
			case "arpeggiate":
				out = append(out, &score.Arpeggiate{Direction: attr(n, "direction")})
			case "non-arpeggiate":
				out = append(out, &score.Arpeggiate{Non: true})
			case "ornaments":
				out = append(out, b.ornaments(n)...)
			case "technical":
				for _, t := range n.Children {
					if _, ok := technicalTypes[t.Name]; ok {
						out = append(out, &score.Technical{Type: t.Name})
					}
				}
			case "articulations":
				for _, a := range n.Children {
					if _, ok := articulationTypes[a.Name]; ok {
						out = append(out, &score.Articulation{Type: a.Name, Placement: b.placement(a, "")})
					}
				}
			case "glissando", "slide":
				if g := b.glissando(n); g != nil {
					out = append(out, g)
				}
			case "slur":
				typ := attr(n, "type")
				if typ == score.TypeStart || typ == score.TypeStop {
					out = append(out, &score.Slur{Type: typ, Number: attrOr(n, "number", "1")})
				}
			}
		}
	}
	return out
}

func (b *builder) ornaments(n *xmldom.Node) score.Notations {
	var out score.Notations
	for _, o := range n.Children {
		if o.Name == "tremolo" {
			out = append(out, &score.Tremolo{
				Type:      attr(o, "type"),
				Lines:     b.rep.integerOr(text(o), "tremolo", 3),
				Placement: b.placement(o, "above"),
			})
			continue
		}
		if _, ok := ornamentTypes[o.Name]; ok {
			out = append(out, &score.Ornament{Type: o.Name, Placement: b.placement(o, "above")})
		}
	}
	return out
}

func (b *builder) glissando(n *xmldom.Node) *score.Glissando {
	typ := attr(n, "type")
	if typ != score.TypeStart && typ != score.TypeStop {
		b.rep.warn(CodeUnknownValue, "unknown %s type %q", n.Name, typ)
		return nil
	}
	return &score.Glissando{
		Type:   typ,
		Number: attrOr(n, "number", "1"),
		Slide:  n.Name == "slide",
	}
}

// tupletMarks reports explicit tuplet start and stop marks on a note.
func tupletMarks(el *xmldom.Node) (start, stop bool) {
	for _, block := range children(el, "notations") {
		for _, t := range children(block, "tuplet") {
			switch attr(t, "type") {
			case score.TypeStart:
				start = true
			case score.TypeStop:
				stop = true
			}
		}
	}
	return start, stop
}
