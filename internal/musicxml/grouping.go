package musicxml

import (
	xmldom "github.com/subchen/go-xmldom"

	"github.com/starford/partitura/internal/score"
)

// noteGroup is a lead <note> and the chord-flagged notes that follow it.
type noteGroup struct {
	lead      *xmldom.Node
	members   []*xmldom.Node
	voice     int
	divisions float64
}

func (g noteGroup) notes() []*xmldom.Node {
	return append([]*xmldom.Node{g.lead}, g.members...)
}

// collectNoteGroups folds a measure's children into note groups in document
// order. tl supplies the divisions in effect at each child.
func (b *builder) collectNoteGroups(elems []*xmldom.Node, tl *timeline) []noteGroup {
	var groups []noteGroup
	for i, el := range elems {
		if el.Name != "note" {
			continue
		}
		if has(el, "chord") {
			if len(groups) > 0 {
				last := &groups[len(groups)-1]
				last.members = append(last.members, el)
				continue
			}
			b.rep.warn(CodeOrphanChordNote, "chord note without a preceding lead")
		}
		groups = append(groups, noteGroup{
			lead:      el,
			voice:     b.rep.integerOr(childText(el, "voice"), "voice", 1),
			divisions: tl.divisions[i],
		})
	}
	return groups
}

// splitByVoice partitions groups by voice, keeping document order inside each
// voice and first-appearance order across voices.
func splitByVoice(groups []noteGroup) [][]noteGroup {
	var (
		order []int
		byVoice = map[int][]noteGroup{}
	)
	for _, g := range groups {
		if _, ok := byVoice[g.voice]; !ok {
			order = append(order, g.voice)
		}
		byVoice[g.voice] = append(byVoice[g.voice], g)
	}
	out := make([][]noteGroup, 0, len(order))
	for _, v := range order {
		out = append(out, byVoice[v])
	}
	return out
}

type span struct{ start, end int }

// identifyGroups turns one voice's note groups into content items. Tuplets
// are resolved first, beams over what remains, and every other group becomes
// a leaf or chord. Each composite sits at its first group's position.
func (b *builder) identifyGroups(groups []noteGroup) score.Items {
	processed := make([]bool, len(groups))
	placed := make([]score.Item, len(groups))

	for _, s := range b.tupletSpans(groups) {
		ratio, ok := b.rawRatio(groups[s.start].lead)
		if !ok || !ratio.Valid() {
			b.rep.warn(CodeTupletDiscarded, "tuplet without a valid time-modification discarded")
			continue
		}
		t := &score.Tuplet{Ratio: ratio}
		for k := s.start; k <= s.end; k++ {
			processed[k] = true
			if own, ok := b.rawRatio(groups[k].lead); ok && own != ratio {
				b.rep.warn(CodeTupletMismatch, "note ratio %d:%d inside a %d:%d tuplet",
					own.Actual, own.Normal, ratio.Actual, ratio.Normal)
			}
			if item := b.assemble(groups[k], &ratio); item != nil {
				t.Contents = append(t.Contents, item)
			}
		}
		if len(t.Contents) > 0 {
			placed[s.start] = t
		}
	}

	for _, s := range b.beamSpans(groups, processed) {
		g := &score.BeamedGroup{}
		for k := s.start; k <= s.end; k++ {
			processed[k] = true
			if item := b.assemble(groups[k], nil); item != nil {
				g.Contents = append(g.Contents, item)
			}
		}
		if len(g.Contents) > 0 {
			placed[s.start] = g
		}
	}

	for i, g := range groups {
		if !processed[i] {
			placed[i] = b.assemble(g, nil)
		}
	}

	out := make(score.Items, 0, len(groups))
	for _, item := range placed {
		if item != nil {
			out = append(out, item)
		}
	}
	return out
}

// tupletSpans resolves explicit tuplet start/stop pairs and infers spans for
// unmarked runs of notes sharing one time-modification ratio. Inference is
// greedy from the left and stops at the first note that differs or carries a
// tuplet mark.
func (b *builder) tupletSpans(groups []noteGroup) []span {
	var spans []span
	pending := -1
	for i := 0; i < len(groups); i++ {
		start, stop := tupletMarks(groups[i].lead)
		if start {
			if pending >= 0 {
				b.rep.warn(CodeTupletUnclosed, "tuplet restarted before it was stopped")
			}
			pending = i
		}
		if stop {
			if pending >= 0 {
				spans = append(spans, span{pending, i})
				pending = -1
			} else {
				b.rep.warn(CodeTupletUnopened, "tuplet stop without a start")
			}
			continue
		}
		if start || pending >= 0 {
			continue
		}

		ratio, ok := b.rawRatio(groups[i].lead)
		if !ok || !ratio.Valid() {
			continue
		}
		j := i
		for j+1 < len(groups) && b.sameUnmarkedRatio(groups[j+1].lead, ratio) {
			j++
		}
		if j > i {
			spans = append(spans, span{i, j})
			i = j
		}
	}
	if pending >= 0 {
		b.rep.warn(CodeTupletUnclosed, "tuplet started but never stopped")
	}
	return spans
}

func (b *builder) sameUnmarkedRatio(el *xmldom.Node, ratio score.Ratio) bool {
	if start, stop := tupletMarks(el); start || stop {
		return false
	}
	r, ok := b.rawRatio(el)
	return ok && r == ratio
}

// beamSpans finds begin/end runs of the primary beam among unprocessed
// groups. A begin inside an open run is ignored. A run cut short by a
// processed group closes before it when at least two groups remain.
func (b *builder) beamSpans(groups []noteGroup, processed []bool) []span {
	var spans []span
	open := -1
	for i, g := range groups {
		if processed[i] {
			if open >= 0 && i-1 > open {
				spans = append(spans, span{open, i - 1})
			}
			open = -1
			continue
		}
		switch primaryBeam(g.lead) {
		case "begin":
			if open < 0 {
				open = i
			}
		case "end":
			if open >= 0 {
				spans = append(spans, span{open, i})
				open = -1
			}
		}
	}
	if open >= 0 {
		b.rep.warn(CodeBeamUnclosed, "beam begun but never ended")
	}
	return spans
}

// primaryBeam returns the value of the lowest-numbered beam on a note.
func primaryBeam(el *xmldom.Node) string {
	best, value := "", ""
	for _, bm := range children(el, "beam") {
		n := attrOr(bm, "number", "1")
		if best == "" || n < best {
			best, value = n, text(bm)
		}
	}
	return value
}
