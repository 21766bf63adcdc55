package musicxml

import (
	"slices"

	"github.com/starford/partitura/internal/score"
)

// assemble builds the content item for one note group: a leaf when the lead
// stands alone, a chord otherwise. tuplet, when non-nil, is the ratio of the
// enclosing tuplet. The result is nil when nothing usable remains.
func (b *builder) assemble(g noteGroup, tuplet *score.Ratio) score.Item {
	if len(g.members) == 0 {
		ev := b.event(g.lead, g.divisions, tuplet)
		if ev == nil {
			return nil
		}
		return ev
	}
	if c := b.chord(g, tuplet); c != nil {
		return c
	}
	return nil
}

// chord merges a lead note and its chord members. Every note takes the lead's
// duration and voice; the chord's tie comes from the lead alone.
func (b *builder) chord(g noteGroup, tuplet *score.Ratio) *score.Chord {
	dur := b.duration(g.lead, g.divisions, tuplet)
	voice := b.rep.integerOr(childText(g.lead, "voice"), "voice", 1)
	grace := has(g.lead, "grace")
	kind := score.KindNote
	if grace {
		kind = score.KindGrace
	}

	c := &score.Chord{
		Tie:     tie(g.lead),
		Grace:   grace,
		Slashed: grace && graceSlashed(g.lead),
	}
	var merged score.Notations
	for _, el := range g.notes() {
		merged = append(merged, b.notations(el)...)
		p := b.pitch(el)
		if p == nil {
			b.rep.warn(CodeMissingPitch, "chord note without pitch skipped")
			continue
		}
		c.Notes = append(c.Notes, score.Event{
			Kind:     kind,
			Pitch:    p,
			Duration: dur,
			Voice:    voice,
			Staff:    b.rep.integerOr(childText(el, "staff"), "staff", 1),
			Tie:      tie(el),
			Notehead: b.notehead(el),
			Stemless: childText(el, "stem") == "none",
		})
	}
	if len(c.Notes) == 0 {
		b.rep.warn(CodeEmptyChord, "chord with no pitches skipped")
		return nil
	}
	c.Notations = consolidateGlissandi(merged)
	return c
}

// consolidateGlissandi folds the glissando marks of a chord. Marks are keyed
// by type and slide; a key seen with several distinct numbers becomes one
// MultiGlissando at its first position, otherwise a single plain mark is kept.
func consolidateGlissandi(ns score.Notations) score.Notations {
	type key struct {
		typ   string
		slide bool
	}
	numbers := map[key][]string{}
	for _, n := range ns {
		g, ok := n.(*score.Glissando)
		if !ok {
			continue
		}
		k := key{g.Type, g.Slide}
		if !slices.Contains(numbers[k], g.Number) {
			numbers[k] = append(numbers[k], g.Number)
		}
	}
	if len(numbers) == 0 {
		return ns
	}

	out := make(score.Notations, 0, len(ns))
	emitted := map[key]bool{}
	for _, n := range ns {
		g, ok := n.(*score.Glissando)
		if !ok {
			out = append(out, n)
			continue
		}
		k := key{g.Type, g.Slide}
		if emitted[k] {
			continue
		}
		emitted[k] = true
		if nums := numbers[k]; len(nums) > 1 {
			out = append(out, &score.MultiGlissando{Type: g.Type, Numbers: nums, Slide: g.Slide})
		} else {
			out = append(out, g)
		}
	}
	return out
}
