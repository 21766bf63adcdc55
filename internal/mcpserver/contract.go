package mcpserver

// ScoreModelContract describes the JSON returned by get_measure and by the
// score model view of the HTTP API.
const ScoreModelContract = `# Partitura Score Model

Scores are imported from MusicXML (partwise, .xml or .musicxml) and compressed
MusicXML (.mxl). Timewise documents are rejected.

## Summary (read_score)

| Field        | Meaning                                            |
|--------------|----------------------------------------------------|
| path         | Library-relative path, forward slashes             |
| title        | work-title, movement-title or the file name        |
| composer     | First creator with type="composer"                 |
| part_names   | Part names in part-list order                      |
| parts        | Number of parts                                    |
| measures     | Measures in the longest part                       |
| notes, rests | Event counts, chords count every note              |
| warnings     | Number of import diagnostics                       |
| diagnostics  | [{code, message, part, measure}]                   |

A diagnostic with code "fatal" means the file could not be imported at all.

## Measure (get_measure)

` + "```json" + `
{
  "path": "bach/minuet.musicxml",
  "part": "P1",
  "measure": {
    "number": "1",
    "divisions": 2,
    "time": {"beats": 3, "beat_type": 4},
    "key": {"fifths": 1, "mode": "major"},
    "clefs": [{"sign": "G", "line": 2, "staff": 1}],
    "voices": [1],
    "contents": [ ...items ],
    "directions": [{"displacement": 0, "direction": {"kind": "dynamic", "mark": "p"}}]
  }
}
` + "```" + `

"contents" is a flat item list when the measure has one voice and a list of
per-voice item lists otherwise, ordered as in "voices".

### Items

Every item carries a "kind":

- **note**, **rest**, **grace**, **bar-rest**: one event with "duration"
  {"type", "dots", "tuplet"} and, for notes, "pitch" {"step", "alteration", "octave"}
- **chord**, **grace-chord**: simultaneous notes sharing one duration ("notes")
- **beamed-group**: consecutive items joined by the primary beam ("contents")
- **tuplet**: items under a time modification, "ratio" {"actual", "normal"}

Durations are measured in quarter notes. A dotted quarter is 1.5 and an
eighth inside a 3:2 triplet is 1/3.

### Directions

"displacement" is the offset in quarter notes from the start of the measure.
Direction kinds: dynamic, hairpin, pedal, metronome, text, dashes, bracket,
harmony. Unrecognized directions are dropped with a diagnostic. A harmony
carries "root", "root_alter", "chord_kind" (e.g. "major", "minor-seventh")
and the printed "chord_kind_text".

### Rules

1. Measure numbers are strings; pickups are often "0" and some editions use
   "12a" or "X1".
2. "tie" is one of none, start, stop or both; chords carry the tie of their
   first note.
3. Rests spanning a whole measure are "bar-rest" with "bar_length" set.
`
