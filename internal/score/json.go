package score

import (
	"encoding/json"
	"strconv"
)

// tagged marshals v and prepends a "kind" discriminator to the object.
func tagged(kind string, v any) (json.RawMessage, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	head := `{"kind":` + strconv.Quote(kind)
	if len(raw) <= 2 {
		return json.RawMessage(head + "}"), nil
	}
	return json.RawMessage(head + "," + string(raw[1:])), nil
}

// MarshalJSON tags each item with its ItemKind.
func (it Items) MarshalJSON() ([]byte, error) {
	out := make([]json.RawMessage, 0, len(it))
	for _, i := range it {
		raw, err := tagged(i.ItemKind(), i)
		if err != nil {
			return nil, err
		}
		out = append(out, raw)
	}
	return json.Marshal(out)
}

// MarshalJSON tags each notation with its NotationKind.
func (ns Notations) MarshalJSON() ([]byte, error) {
	out := make([]json.RawMessage, 0, len(ns))
	for _, n := range ns {
		raw, err := tagged(n.NotationKind(), n)
		if err != nil {
			return nil, err
		}
		out = append(out, raw)
	}
	return json.Marshal(out)
}

// MarshalJSON tags each direction with its DirectionKind.
func (ds Directions) MarshalJSON() ([]byte, error) {
	out := make([]json.RawMessage, 0, len(ds))
	for _, d := range ds {
		raw, err := tagged(d.DirectionKind().String(), d)
		if err != nil {
			return nil, err
		}
		out = append(out, raw)
	}
	return json.Marshal(out)
}

func (p Placed) MarshalJSON() ([]byte, error) {
	raw, err := tagged(p.Content.DirectionKind().String(), p.Content)
	if err != nil {
		return nil, err
	}
	return json.Marshal(struct {
		Displacement float64         `json:"displacement"`
		Direction    json.RawMessage `json:"direction"`
	}{p.Displacement, raw})
}

// MarshalJSON writes contents as a flat list for a single-voice measure and
// as a list of per-voice lists otherwise.
func (m *Measure) MarshalJSON() ([]byte, error) {
	var contents any = m.Voices
	if m.SingleVoice() {
		contents = m.Contents()
	}
	directions := m.Directions
	if directions == nil {
		directions = []Placed{}
	}
	return json.Marshal(struct {
		Number      string         `json:"number"`
		Pickup      bool           `json:"pickup,omitempty"`
		Divisions   float64        `json:"divisions"`
		Time        *TimeSignature `json:"time,omitempty"`
		Key         *KeySignature  `json:"key,omitempty"`
		Clefs       []Clef         `json:"clefs,omitempty"`
		Transpose   *Transpose     `json:"transpose,omitempty"`
		Barline     *Barline       `json:"barline,omitempty"`
		RepeatStart bool           `json:"repeat_start,omitempty"`
		Voices      []int          `json:"voices"`
		Contents    any            `json:"contents"`
		Directions  []Placed       `json:"directions"`
	}{
		Number:      m.Number,
		Pickup:      m.Pickup,
		Divisions:   m.Divisions,
		Time:        m.Time,
		Key:         m.Key,
		Clefs:       m.Clefs,
		Transpose:   m.Transpose,
		Barline:     m.Barline,
		RepeatStart: m.RepeatStart,
		Voices:      m.VoiceNumbers,
		Contents:    contents,
		Directions:  directions,
	})
}

func (s *Score) MarshalJSON() ([]byte, error) {
	sections := make([]json.RawMessage, 0, len(s.Contents))
	for _, sec := range s.Contents {
		kind := "part"
		if _, ok := sec.(*PartGroup); ok {
			kind = "part-group"
		}
		raw, err := tagged(kind, sec)
		if err != nil {
			return nil, err
		}
		sections = append(sections, raw)
	}
	type plain Score
	return json.Marshal(struct {
		*plain
		Contents []json.RawMessage `json:"contents"`
	}{(*plain)(s), sections})
}
