package musicxml

import (
	"fmt"

	xmldom "github.com/subchen/go-xmldom"

	"github.com/starford/partitura/internal/score"
)

// builder carries the state of one import.
type builder struct {
	rep *reporter
}

func (b *builder) score(root *xmldom.Node) (*score.Score, error) {
	partList := child(root, "part-list")
	if partList == nil {
		return nil, fmt.Errorf("%w: part-list", ErrMissingElement)
	}

	s := &score.Score{}
	b.metadata(root, s)
	declared := b.partList(partList, s)

	for _, el := range children(root, "part") {
		id := attr(el, "id")
		p, ok := declared[id]
		if !ok {
			b.rep.at(id, "")
			b.rep.warn(CodeUndeclaredPart, "part %q is not declared in part-list", id)
			p = &score.Part{ID: id, Name: id}
			declared[id] = p
			s.Contents = append(s.Contents, p)
		}
		b.part(el, p)
	}
	b.rep.at("", "")
	return s, nil
}

// part imports the measures of one part, carrying divisions forward.
func (b *builder) part(el *xmldom.Node, p *score.Part) {
	divisions := 1.0
	for i, m := range children(el, "measure") {
		b.rep.at(p.ID, attr(m, "number"))
		var meas *score.Measure
		meas, divisions = b.measure(m, divisions, i == 0)
		p.Measures = append(p.Measures, meas)
	}
	b.rep.at(p.ID, "")
	b.auditSpanners(p)
}

// metadata fills title, composer, copyright and credits.
func (b *builder) metadata(root *xmldom.Node, s *score.Score) {
	s.Title = childText(child(root, "work"), "work-title")
	if s.Title == "" {
		s.Title = childText(root, "movement-title")
	}
	ident := child(root, "identification")
	for _, c := range children(ident, "creator") {
		if attr(c, "type") == "composer" {
			s.Composer = text(c)
			break
		}
	}
	s.Copyright = childText(ident, "rights")

	for _, c := range children(root, "credit") {
		typ := childText(c, "credit-type")
		var words string
		for _, w := range children(c, "credit-words") {
			if words != "" {
				words += "\n"
			}
			words += text(w)
		}
		if words == "" {
			continue
		}
		s.Credits = append(s.Credits, score.Credit{Type: typ, Words: words})
		switch {
		case typ == "title" && s.Title == "":
			s.Title = words
		case typ == "composer" && s.Composer == "":
			s.Composer = words
		}
	}
}

// partList builds the score's sections in declaration order and returns the
// declared parts by id. A part joins the most recently opened group; a group
// becomes a section when it stops, and unclosed groups are appended at the end.
// Empty groups are dropped.
func (b *builder) partList(el *xmldom.Node, s *score.Score) map[string]*score.Part {
	declared := map[string]*score.Part{}
	var open []*score.PartGroup

	closeGroup := func(i int) {
		g := open[i]
		open = append(open[:i], open[i+1:]...)
		if len(g.Parts) > 0 {
			s.Contents = append(s.Contents, g)
		}
	}

	for _, c := range el.Children {
		switch c.Name {
		case "part-group":
			number := attrOr(c, "number", "1")
			switch attr(c, "type") {
			case score.TypeStart:
				open = append(open, &score.PartGroup{
					Number:       number,
					Name:         childText(c, "group-name"),
					Symbol:       childText(c, "group-symbol"),
					Bracket:      childText(c, "group-symbol") != "none",
					JoinBarlines: childText(c, "group-barline") != "no",
				})
			case score.TypeStop:
				for i := len(open) - 1; i >= 0; i-- {
					if open[i].Number == number {
						closeGroup(i)
						break
					}
				}
			}
		case "score-part":
			id := attr(c, "id")
			p := &score.Part{
				ID:           id,
				Name:         childText(c, "part-name"),
				Abbreviation: childText(c, "part-abbreviation"),
			}
			if p.Name == "" {
				p.Name = id
			}
			declared[id] = p
			if len(open) > 0 {
				g := open[len(open)-1]
				g.Parts = append(g.Parts, p)
			} else {
				s.Contents = append(s.Contents, p)
			}
		}
	}
	for len(open) > 0 {
		closeGroup(0)
	}
	return declared
}
