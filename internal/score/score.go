// Package score holds the in-memory score model produced by the MusicXML
// importer. Values are plain data; nothing here does I/O.
package score

// Score is a complete piece.
type Score struct {
	Title     string   `json:"title"`
	Composer  string   `json:"composer"`
	Copyright string   `json:"copyright,omitempty"`
	Credits   []Credit `json:"credits,omitempty"`
	// Contents lists parts and part groups in part-list order.
	Contents []Section `json:"contents"`
}

// Credit is a credit-words text with its credit-type, if any.
type Credit struct {
	Type  string `json:"type,omitempty"`
	Words string `json:"words"`
}

// Section is a top-level score entry: *Part or *PartGroup.
type Section interface {
	PartList() []*Part
}

// Part is one instrument line.
type Part struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Abbreviation string     `json:"abbreviation,omitempty"`
	Measures     []*Measure `json:"measures"`
}

func (p *Part) PartList() []*Part { return []*Part{p} }

// Measure returns the first measure with the given number, or nil.
func (p *Part) Measure(number string) *Measure {
	for _, m := range p.Measures {
		if m.Number == number {
			return m
		}
	}
	return nil
}

// PartGroup brackets consecutive parts. Bracket is false when the group symbol
// is "none"; JoinBarlines is false when group-barline is "no".
type PartGroup struct {
	Number       string  `json:"number"`
	Name         string  `json:"name,omitempty"`
	Symbol       string  `json:"symbol,omitempty"`
	Bracket      bool    `json:"bracket"`
	JoinBarlines bool    `json:"join_barlines"`
	Parts        []*Part `json:"parts"`
}

func (g *PartGroup) PartList() []*Part { return g.Parts }

// Parts returns every part in score order.
func (s *Score) Parts() []*Part {
	var out []*Part
	for _, sec := range s.Contents {
		out = append(out, sec.PartList()...)
	}
	return out
}

// Part returns the part with the given id, or nil.
func (s *Score) Part(id string) *Part {
	for _, p := range s.Parts() {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// Stats counts the structural elements of a score. Notes counts pitched
// notes, one per chord pitch; Rests counts rests and whole-bar rests.
type Stats struct {
	Parts    int `json:"parts"`
	Measures int `json:"measures"`
	Notes    int `json:"notes"`
	Rests    int `json:"rests"`
}

// Stats walks the score and counts its contents.
func (s *Score) Stats() Stats {
	var st Stats
	for _, p := range s.Parts() {
		st.Parts++
		st.Measures += len(p.Measures)
		for _, m := range p.Measures {
			for _, v := range m.Voices {
				v.Leaves(func(it Item) {
					switch e := it.(type) {
					case *Event:
						if e.IsRest() {
							st.Rests++
						} else if e.Pitch != nil {
							st.Notes++
						}
					case *Chord:
						st.Notes += len(e.Pitches())
					}
				})
			}
		}
	}
	return st
}

// PartNames returns the part names in score order.
func (s *Score) PartNames() []string {
	parts := s.Parts()
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		out = append(out, p.Name)
	}
	return out
}
