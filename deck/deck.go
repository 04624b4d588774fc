package deck

import (
	"math/rand"
	"time"
)

const (
	// Size is the number of cards in a full Flip Seven deck
	Size = 94

	actionCopies   = 3
	modifierCopies = 1
)

// Deck represents a deck of cards
type Deck []Card

// New creates a full, unshuffled deck.
// Number card v appears v times, except 0 which appears once.
func New() Deck {
	cards := make(Deck, 0, Size)
	for v := MinValue; v <= MaxValue; v++ {
		for i := 0; i < copiesOf(v); i++ {
			cards = append(cards, NumberCard{Value: v})
		}
	}

	for _, a := range []Action{Freeze, FlipThree, SecondChance} {
		for i := 0; i < actionCopies; i++ {
			cards = append(cards, ActionCard{Action: a})
		}
	}

	for _, m := range []Modifier{Plus2, Plus4, Plus6, Plus8, Plus10, Times2} {
		for i := 0; i < modifierCopies; i++ {
			cards = append(cards, ModifierCard{Modifier: m})
		}
	}

	return cards
}

func copiesOf(value int) int {
	if value == 0 {
		return 1
	}
	return value
}

// Shuffle returns a shuffled copy of cards.
// The same seed always produces the same order; a nil seed uses the clock.
func Shuffle(cards []Card, seed *int64) []Card {
	s := time.Now().UnixNano()
	if seed != nil {
		s = *seed
	}
	r := rand.New(rand.NewSource(s))

	shuffled := make([]Card, len(cards))
	copy(shuffled, cards)
	for i := len(shuffled) - 1; i > 0; i-- {
		j := r.Intn(i + 1)
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	}
	return shuffled
}

// Counts tallies cards by their string form, e.g. "7", "FREEZE", "X2"
func Counts(cards []Card) map[string]int {
	counts := map[string]int{}
	for _, c := range cards {
		counts[c.String()]++
	}
	return counts
}
