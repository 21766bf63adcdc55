package midi

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/starford/partitura/internal/score"
)

func note(step string, octave int, typ string, tie score.Tie) *score.Event {
	return &score.Event{
		Kind:     score.KindNote,
		Pitch:    &score.Pitch{Step: step, Octave: octave},
		Duration: score.Duration{Type: typ},
		Voice:    1,
		Tie:      tie,
	}
}

func oneMeasure(items ...score.Item) *score.Measure {
	return &score.Measure{
		Number:       "1",
		Time:         &score.TimeSignature{Beats: 3, BeatType: 4},
		VoiceNumbers: []int{1},
		Voices:       []score.Items{items},
	}
}

func scoreOf(measures ...*score.Measure) *score.Score {
	return &score.Score{Contents: []score.Section{
		&score.Part{ID: "P1", Name: "Piano", Measures: measures},
	}}
}

type noteOn struct {
	tick uint64
	key  uint8
}

// roundTrip writes s and reads the note starts of the first part track back.
func roundTrip(t *testing.T, s *score.Score, opts Options) (*smf.SMF, []noteOn) {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, s, opts))
	file, err := smf.ReadFrom(&buf)
	require.NoError(t, err)
	require.Len(t, file.Tracks, 2)

	var out []noteOn
	var tick uint64
	for _, ev := range file.Tracks[1] {
		tick += uint64(ev.Delta)
		var ch, key, vel uint8
		if gomidi.Message(ev.Message).GetNoteStart(&ch, &key, &vel) {
			out = append(out, noteOn{tick, key})
		}
	}
	return file, out
}

func TestRenderSequence(t *testing.T) {
	s := scoreOf(oneMeasure(
		note("C", 4, "quarter", score.TieNone),
		&score.Event{Kind: score.KindRest, Duration: score.Duration{Type: "quarter"}, Voice: 1},
		&score.Chord{Notes: []score.Event{
			*note("E", 4, "quarter", score.TieNone),
			*note("G", 4, "quarter", score.TieNone),
		}},
	))
	file, ons := roundTrip(t, s, Options{TicksPerQuarter: 480})
	assert.Equal(t, smf.MetricTicks(480), file.TimeFormat)
	assert.Equal(t, []noteOn{{0, 60}, {960, 64}, {960, 67}}, ons)
}

func TestTiesMergeHeldNotes(t *testing.T) {
	s := scoreOf(
		oneMeasure(note("C", 4, "half", score.TieNone), note("D", 4, "quarter", score.TieStart)),
		oneMeasure(note("D", 4, "half", score.TieStop), note("E", 4, "quarter", score.TieNone)),
	)
	_, ons := roundTrip(t, s, DefaultOptions())
	assert.Equal(t, []noteOn{{0, 60}, {1920, 62}, {4800, 64}}, ons)
}

func TestGraceNotesAndTupletsAdvanceCorrectly(t *testing.T) {
	grace := note("B", 3, "eighth", score.TieNone)
	grace.Kind = score.KindGrace
	r := &score.Ratio{Actual: 3, Normal: 2}
	trip := func(step string) *score.Event {
		ev := note(step, 4, "eighth", score.TieNone)
		ev.Duration.Tuplet = r
		return ev
	}
	s := scoreOf(oneMeasure(
		grace,
		&score.Tuplet{Ratio: *r, Contents: score.Items{trip("C"), trip("D"), trip("E")}},
		note("F", 4, "half", score.TieNone),
	))
	_, ons := roundTrip(t, s, Options{TicksPerQuarter: 960})
	assert.Equal(t, []noteOn{{0, 60}, {320, 62}, {640, 64}, {960, 65}}, ons)
}

func TestConductorTrack(t *testing.T) {
	m := oneMeasure(note("C", 4, "quarter", score.TieNone))
	m.Directions = []score.Placed{{Content: &score.MetronomeMark{BeatUnit: "half", BeatLength: 2, BPM: 40}}}
	file, _ := roundTrip(t, scoreOf(m), DefaultOptions())

	var bpm float64
	var num, denom uint8
	foundTempo, foundMeter := false, false
	for _, ev := range file.Tracks[0] {
		if ev.Message.GetMetaTempo(&bpm) {
			foundTempo = true
		}
		if ev.Message.GetMetaMeter(&num, &denom) {
			foundMeter = true
		}
	}
	require.True(t, foundTempo)
	assert.InDelta(t, 80.0, bpm, 0.01)
	require.True(t, foundMeter)
	assert.Equal(t, uint8(3), num)
	assert.Equal(t, uint8(4), denom)
}

func TestChannelSkipsDrums(t *testing.T) {
	assert.Equal(t, uint8(0), channel(0))
	assert.Equal(t, uint8(8), channel(8))
	assert.Equal(t, uint8(10), channel(9))
	assert.Equal(t, uint8(0), channel(15))
}
