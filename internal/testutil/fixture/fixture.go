// Package fixture builds small MusicXML documents for tests.
package fixture

import (
	"fmt"
	"strings"
)

// Part is one part of a generated document.
type Part struct {
	ID       string
	Name     string
	Measures []string
}

// Partwise renders a score-partwise document titled title.
func Partwise(title string, parts ...Part) string {
	return PartwiseBy(title, "", parts...)
}

// PartwiseBy is Partwise with a composer creator element.
func PartwiseBy(title, composer string, parts ...Part) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	b.WriteString(`<score-partwise version="4.0">`)
	if title != "" {
		fmt.Fprintf(&b, "<work><work-title>%s</work-title></work>", title)
	}
	if composer != "" {
		fmt.Fprintf(&b, `<identification><creator type="composer">%s</creator></identification>`, composer)
	}
	b.WriteString("<part-list>")
	for _, p := range parts {
		fmt.Fprintf(&b, `<score-part id="%s"><part-name>%s</part-name></score-part>`, p.ID, p.Name)
	}
	b.WriteString("</part-list>")
	for _, p := range parts {
		fmt.Fprintf(&b, `<part id="%s">%s</part>`, p.ID, strings.Join(p.Measures, ""))
	}
	b.WriteString("</score-partwise>")
	return b.String()
}

// Single renders a one-part document whose measures are given.
func Single(measures ...string) string {
	return Partwise("", Part{ID: "P1", Name: "Music", Measures: measures})
}

// Sample renders a two-measure piano piece in 4/4: four quarter notes, then
// a half note, a quarter rest and a quarter note.
func Sample(title, composer string) string {
	return PartwiseBy(title, composer, Part{ID: "P1", Name: "Piano", Measures: []string{
		Measure("1",
			"<attributes><divisions>1</divisions><time><beats>4</beats><beat-type>4</beat-type></time></attributes>",
			Note("C4", 1, "quarter"), Note("D4", 1, "quarter"), Note("E4", 1, "quarter"), Note("F4", 1, "quarter")),
		Measure("2", Note("G4", 2, "half"), Rest(1, "quarter"), Note("C5", 1, "quarter")),
	}})
}

// Measure renders a measure with the given children.
func Measure(number string, body ...string) string {
	return fmt.Sprintf(`<measure number="%s">%s</measure>`, number, strings.Join(body, ""))
}

// Divisions renders an attributes element setting divisions.
func Divisions(n int) string {
	return fmt.Sprintf("<attributes><divisions>%d</divisions></attributes>", n)
}

// Note renders a pitched note. pitch is step plus octave, e.g. "C5" or
// "F#4"; extra elements are appended inside the note.
func Note(pitch string, duration int, typ string, extra ...string) string {
	step, alter, octave := splitPitch(pitch)
	alterXML := ""
	if alter != 0 {
		alterXML = fmt.Sprintf("<alter>%d</alter>", alter)
	}
	return fmt.Sprintf("<note><pitch><step>%s</step>%s<octave>%s</octave></pitch><duration>%d</duration><type>%s</type>%s</note>",
		step, alterXML, octave, duration, typ, strings.Join(extra, ""))
}

// Rest renders a rest.
func Rest(duration int, typ string, extra ...string) string {
	return fmt.Sprintf("<note><rest/><duration>%d</duration><type>%s</type>%s</note>",
		duration, typ, strings.Join(extra, ""))
}

// Voice renders a voice element.
func Voice(n int) string { return fmt.Sprintf("<voice>%d</voice>", n) }

// Backup renders a backup of d ticks.
func Backup(d int) string { return fmt.Sprintf("<backup><duration>%d</duration></backup>", d) }

// Forward renders a forward of d ticks.
func Forward(d int) string { return fmt.Sprintf("<forward><duration>%d</duration></forward>", d) }

// Chord marks a note as a chord member.
const Chord = "<chord/>"

// TimeModification renders a tuplet ratio.
func TimeModification(actual, normal int) string {
	return fmt.Sprintf("<time-modification><actual-notes>%d</actual-notes><normal-notes>%d</normal-notes></time-modification>", actual, normal)
}

// Notations wraps notation elements.
func Notations(marks ...string) string {
	return "<notations>" + strings.Join(marks, "") + "</notations>"
}

// Tuplet renders a tuplet start or stop mark.
func Tuplet(typ string) string { return fmt.Sprintf(`<tuplet type="%s"/>`, typ) }

// Glissando renders a numbered glissando mark.
func Glissando(typ, number string) string {
	return fmt.Sprintf(`<glissando type="%s" number="%s"/>`, typ, number)
}

// Beam renders a primary beam value.
func Beam(value string) string { return fmt.Sprintf(`<beam number="1">%s</beam>`, value) }

// Words renders a direction holding text, with an optional offset in ticks.
func Words(text string, offset int) string {
	off := ""
	if offset != 0 {
		off = fmt.Sprintf("<offset>%d</offset>", offset)
	}
	return fmt.Sprintf("<direction><direction-type><words>%s</words></direction-type>%s</direction>", text, off)
}

func splitPitch(p string) (step string, alter int, octave string) {
	step = p[:1]
	rest := p[1:]
	for len(rest) > 0 && (rest[0] == '#' || rest[0] == 'b') {
		if rest[0] == '#' {
			alter++
		} else {
			alter--
		}
		rest = rest[1:]
	}
	return step, alter, rest
}
