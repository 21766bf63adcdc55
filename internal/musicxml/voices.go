package musicxml

import (
	"slices"

	"github.com/starford/partitura/internal/score"
)

// partitionVoices groups items by voice number, keeping relative order
// within each voice. The returned voice numbers are ascending and index-aligned
// with the content lists.
func partitionVoices(items score.Items) ([]int, []score.Items) {
	byVoice := map[int]score.Items{}
	for _, it := range items {
		v := it.VoiceNumber()
		byVoice[v] = append(byVoice[v], it)
	}
	numbers := make([]int, 0, len(byVoice))
	for v := range byVoice {
		numbers = append(numbers, v)
	}
	slices.Sort(numbers)

	voices := make([]score.Items, len(numbers))
	for i, v := range numbers {
		voices[i] = byVoice[v]
	}
	return numbers, voices
}
