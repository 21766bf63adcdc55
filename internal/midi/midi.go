// Package midi renders imported scores as Standard MIDI Files.
package midi

import (
	"fmt"
	"io"
	"math"
	"sort"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/starford/partitura/internal/score"
)

const drumChannel = 9

// Options controls rendering.
type Options struct {
	TicksPerQuarter uint16
	// Tempo in quarter notes per minute, used when the score has no
	// metronome mark.
	Tempo    float64
	Velocity uint8
}

// DefaultOptions returns 960 ticks per quarter, 120 bpm and velocity 80.
func DefaultOptions() Options {
	return Options{TicksPerQuarter: 960, Tempo: 120, Velocity: 80}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.TicksPerQuarter == 0 {
		o.TicksPerQuarter = d.TicksPerQuarter
	}
	if o.Tempo <= 0 {
		o.Tempo = d.Tempo
	}
	if o.Velocity == 0 {
		o.Velocity = d.Velocity
	}
	return o
}

// Render builds a format 1 file: a conductor track followed by one track per
// part.
func Render(s *score.Score, opts Options) (*smf.SMF, error) {
	opts = opts.withDefaults()
	file := smf.New()
	file.TimeFormat = smf.MetricTicks(opts.TicksPerQuarter)

	if err := file.Add(conductor(s, opts)); err != nil {
		return nil, fmt.Errorf("conductor track: %w", err)
	}
	for i, p := range s.Parts() {
		r := &renderer{tpq: float64(opts.TicksPerQuarter), held: map[uint8]bool{}}
		r.part(p)
		if err := file.Add(r.track(p.Name, channel(i), opts.Velocity)); err != nil {
			return nil, fmt.Errorf("part %s: %w", p.ID, err)
		}
	}
	return file, nil
}

// Write renders s and writes the file to w.
func Write(w io.Writer, s *score.Score, opts Options) error {
	file, err := Render(s, opts)
	if err != nil {
		return err
	}
	if _, err := file.WriteTo(w); err != nil {
		return fmt.Errorf("write midi: %w", err)
	}
	return nil
}

// channel assigns part i a channel, skipping the General MIDI drum channel.
func channel(i int) uint8 {
	ch := uint8(i % 15)
	if ch >= drumChannel {
		ch++
	}
	return ch
}

func conductor(s *score.Score, opts Options) smf.Track {
	var tr smf.Track
	tempo := opts.Tempo
	if mm := firstMetronome(s); mm != nil && mm.QuarterBPM() > 0 {
		tempo = mm.QuarterBPM()
	}
	tr.Add(0, smf.MetaTempo(tempo))
	if ts := firstTime(s); ts != nil && ts.Beats < 256 && ts.BeatType < 256 {
		tr.Add(0, smf.MetaMeter(uint8(ts.Beats), uint8(ts.BeatType)))
	}
	tr.Close(0)
	return tr
}

func firstMetronome(s *score.Score) *score.MetronomeMark {
	for _, p := range s.Parts() {
		for _, m := range p.Measures {
			for _, d := range m.Directions {
				if mm, ok := d.Content.(*score.MetronomeMark); ok {
					return mm
				}
			}
		}
	}
	return nil
}

func firstTime(s *score.Score) *score.TimeSignature {
	for _, p := range s.Parts() {
		for _, m := range p.Measures {
			if m.Time != nil {
				return m.Time
			}
		}
	}
	return nil
}

type noteEvent struct {
	tick uint64
	on   bool
	key  uint8
}

// renderer collects the note events of one part in absolute ticks.
type renderer struct {
	tpq    float64
	events []noteEvent
	// held keys are sounding across a tie.
	held map[uint8]bool
	end  uint64
}

func (r *renderer) ticks(quarters float64) uint64 {
	return uint64(math.Round(quarters * r.tpq))
}

func (r *renderer) part(p *score.Part) {
	var start float64
	var bar float64
	for _, m := range p.Measures {
		if m.Time != nil {
			bar = m.Time.Length()
		}
		for _, v := range m.Voices {
			cursor := start
			v.Leaves(func(it score.Item) {
				cursor += r.leaf(it, cursor)
			})
		}
		length := m.Length()
		if length == 0 {
			length = bar
		}
		start += length
	}
	r.end = r.ticks(start)
}

// leaf emits the notes of one event or chord starting at cursor and returns
// how far the voice advances.
func (r *renderer) leaf(it score.Item, cursor float64) float64 {
	switch v := it.(type) {
	case *score.Event:
		if v.Kind != score.KindNote {
			return v.Length()
		}
		r.note(*v.Pitch, v.Tie, cursor, v.Length())
	case *score.Chord:
		if v.Grace {
			return 0
		}
		for _, n := range v.Notes {
			r.note(*n.Pitch, v.Tie, cursor, v.Length())
		}
	}
	return it.Length()
}

func (r *renderer) note(p score.Pitch, tie score.Tie, at, length float64) {
	n := p.MIDINumber()
	if n < 0 || n > 127 {
		return
	}
	key := uint8(n)
	if !r.held[key] {
		r.events = append(r.events, noteEvent{tick: r.ticks(at), on: true, key: key})
	}
	if tie.Starts() {
		r.held[key] = true
		return
	}
	delete(r.held, key)
	r.events = append(r.events, noteEvent{tick: r.ticks(at + length), key: key})
}

func (r *renderer) track(name string, ch, velocity uint8) smf.Track {
	for key := range r.held {
		r.events = append(r.events, noteEvent{tick: r.end, key: key})
	}
	sort.SliceStable(r.events, func(i, j int) bool {
		a, b := r.events[i], r.events[j]
		if a.tick != b.tick {
			return a.tick < b.tick
		}
		if a.on != b.on {
			return !a.on
		}
		return a.key < b.key
	})

	var tr smf.Track
	tr.Add(0, smf.MetaTrackSequenceName(name))
	var last uint64
	for _, e := range r.events {
		delta := uint32(e.tick - last)
		last = e.tick
		if e.on {
			tr.Add(delta, gomidi.NoteOn(ch, e.key, velocity))
		} else {
			tr.Add(delta, gomidi.NoteOff(ch, e.key))
		}
	}
	tr.Close(0)
	return tr
}
