package merge

import "github.com/deckhand/coalesce/internal/core/model"

// SelectPrimary picks the canonical card of a duplicate group: highest
// difficulty wins, ties go to the longer back text, and a final id
// comparison keeps the choice fully deterministic. Side-effect free.
func SelectPrimary(cards []model.Card) model.Card {
	best := cards[0]
	for _, c := range cards[1:] {
		if betterPrimary(c, best) {
			best = c
		}
	}
	return best
}

func betterPrimary(a, b model.Card) bool {
	if a.Difficulty != b.Difficulty {
		return a.Difficulty > b.Difficulty
	}
	if len(a.Back) != len(b.Back) {
		return len(a.Back) > len(b.Back)
	}
	return a.ID < b.ID
}
