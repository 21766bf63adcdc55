package musicxml

import (
	"github.com/starford/partitura/internal/score"
)

// spannerKey identifies a spanner line. Voice is 0 for directions, which are
// numbered per part rather than per voice.
type spannerKey struct {
	kind   string
	number string
	voice  int
}

type pendingSpanner struct {
	key     spannerKey
	measure string
	closed  bool
}

// spannerAudit pairs numbered starts and stops across a part. A stop closes
// the latest open start with the same key.
type spannerAudit struct {
	starts   []pendingSpanner
	open     map[spannerKey][]int // indexes into starts
	unopened []pendingSpanner
}

func (a *spannerAudit) mark(k spannerKey, typ, measure string) {
	switch typ {
	case score.TypeStart:
		a.open[k] = append(a.open[k], len(a.starts))
		a.starts = append(a.starts, pendingSpanner{key: k, measure: measure})
	case score.TypeStop:
		if stack := a.open[k]; len(stack) > 0 {
			a.starts[stack[len(stack)-1]].closed = true
			a.open[k] = stack[:len(stack)-1]
			return
		}
		a.unopened = append(a.unopened, pendingSpanner{key: k, measure: measure})
	}
}

// auditSpanners reports glissando, slide, slur, bracket, dashes, wedge and
// pedal starts without a matching stop in the same part, and stops without a
// start.
func (b *builder) auditSpanners(p *score.Part) {
	a := &spannerAudit{open: map[spannerKey][]int{}}
	for _, m := range p.Measures {
		for _, v := range m.Voices {
			v.Leaves(func(it score.Item) {
				switch leaf := it.(type) {
				case *score.Event:
					a.notations(leaf.Notations, leaf.VoiceNumber(), m.Number)
				case *score.Chord:
					a.notations(leaf.Notations, leaf.VoiceNumber(), m.Number)
				}
			})
		}
		for _, pl := range m.Directions {
			switch d := pl.Content.(type) {
			case *score.Bracket:
				a.mark(spannerKey{kind: "bracket", number: d.Number}, d.Type, m.Number)
			case *score.Dashes:
				a.mark(spannerKey{kind: "dashes", number: d.Number}, d.Type, m.Number)
			case *score.Pedal:
				a.mark(spannerKey{kind: "pedal", number: d.Number}, d.Type, m.Number)
			case *score.Hairpin:
				typ := score.TypeStop
				if d.Type != score.HairpinStop {
					typ = score.TypeStart
				}
				a.mark(spannerKey{kind: "wedge", number: d.Number}, typ, m.Number)
			}
		}
	}

	for _, sp := range a.unopened {
		b.rep.at(p.ID, sp.measure)
		b.rep.warn(CodeUnmatchedSpanner, "%s %s stopped without a start", sp.key.kind, sp.key.number)
	}
	for _, sp := range a.starts {
		if sp.closed {
			continue
		}
		b.rep.at(p.ID, sp.measure)
		b.rep.warn(CodeUnmatchedSpanner, "%s %s started but never stopped", sp.key.kind, sp.key.number)
	}
	b.rep.at(p.ID, "")
}

func (a *spannerAudit) notations(ns score.Notations, voice int, measure string) {
	for _, n := range ns {
		switch v := n.(type) {
		case *score.Glissando:
			a.mark(spannerKey{glissKind(v.Slide), v.Number, voice}, v.Type, measure)
		case *score.MultiGlissando:
			for _, num := range v.Numbers {
				a.mark(spannerKey{glissKind(v.Slide), num, voice}, v.Type, measure)
			}
		case *score.Slur:
			a.mark(spannerKey{"slur", v.Number, voice}, v.Type, measure)
		}
	}
}

func glissKind(slide bool) string {
	if slide {
		return "slide"
	}
	return "glissando"
}
