package game

import (
	"fmt"

	"github.com/minaorangina/flip7/deck"
	"github.com/minaorangina/flip7/protocol"
)

// Tableau is one player's cards and status for the current round.
// A player is either active or terminated for exactly one reason, and a
// terminated tableau keeps its cards untouched until cleanup.
type Tableau struct {
	PlayerID     string
	numbers      []deck.NumberCard
	modifiers    []deck.ModifierCard
	secondChance *deck.ActionCard
	status       protocol.Status
}

func NewTableau(playerID string) *Tableau {
	return &Tableau{PlayerID: playerID, status: protocol.Active}
}

func (t *Tableau) Status() protocol.Status { return t.status }
func (t *Tableau) Active() bool { return t.status == protocol.Active }
func (t *Tableau) Busted() bool { return t.status == protocol.Busted }
func (t *Tableau) Frozen() bool { return t.status == protocol.Frozen }
func (t *Tableau) Passed() bool { return t.status == protocol.Passed }

// HoldsSecondChance reports whether an unspent Second Chance is held
func (t *Tableau) HoldsSecondChance() bool {
	return t.secondChance != nil
}

// NumberCards returns the held number cards in draw order
func (t *Tableau) NumberCards() []deck.NumberCard {
	return append([]deck.NumberCard(nil), t.numbers...)
}

func (t *Tableau) ModifierCards() []deck.ModifierCard {
	return append([]deck.ModifierCard(nil), t.modifiers...)
}

// HeldCount counts every physical card the tableau holds, including an
// unspent Second Chance
func (t *Tableau) HeldCount() int {
	n := len(t.numbers) + len(t.modifiers)
	if t.secondChance != nil {
		n++
	}
	return n
}

func (t *Tableau) holdsValue(v int) bool {
	for _, c := range t.numbers {
		if c.Value == v {
			return true
		}
	}
	return false
}

func (t *Tableau) distinctValues() int {
	seen := map[int]bool{}
	for _, c := range t.numbers {
		seen[c.Value] = true
	}
	return len(seen)
}

func (t *Tableau) mustBeActive() error {
	if !t.Active() {
		return fmt.Errorf("%w: %s is %s", ErrPlayerNotActive, t.PlayerID, t.status)
	}
	return nil
}

func (t *Tableau) addNumber(c deck.NumberCard) error {
	if err := t.mustBeActive(); err != nil {
		return err
	}
	t.numbers = append(t.numbers, c)
	return nil
}

func (t *Tableau) addModifier(c deck.ModifierCard) error {
	if err := t.mustBeActive(); err != nil {
		return err
	}
	t.modifiers = append(t.modifiers, c)
	return nil
}

// giveSecondChance accepts passed and frozen players as well as active ones
func (t *Tableau) giveSecondChance(c deck.ActionCard) error {
	if t.Busted() {
		return fmt.Errorf("%w: %s is busted", ErrPlayerNotActive, t.PlayerID)
	}
	if t.secondChance != nil {
		return fmt.Errorf("%w: %s already holds one", ErrSecondChanceInvariant, t.PlayerID)
	}
	t.secondChance = &c
	return nil
}

// spendSecondChance removes the just-drawn duplicate and the Second Chance
// card, returning both, and ends the player's turn as a pass
func (t *Tableau) spendSecondChance(duplicate deck.NumberCard) ([]deck.Card, error) {
	if err := t.mustBeActive(); err != nil {
		return nil, err
	}
	if t.secondChance == nil {
		return nil, fmt.Errorf("%w: %s holds no second chance", ErrSecondChanceInvariant, t.PlayerID)
	}
	last := len(t.numbers) - 1
	if last < 0 || t.numbers[last] != duplicate {
		return nil, fmt.Errorf("%w: duplicate %s is not the most recent card of %s", ErrSecondChanceInvariant, duplicate, t.PlayerID)
	}

	spent := []deck.Card{t.numbers[last], *t.secondChance}
	t.numbers = t.numbers[:last]
	t.secondChance = nil
	t.status = protocol.Passed
	return spent, nil
}

func (t *Tableau) terminate(s protocol.Status) error {
	if err := t.mustBeActive(); err != nil {
		return err
	}
	t.status = s
	return nil
}

func (t *Tableau) pass() error { return t.terminate(protocol.Passed) }
func (t *Tableau) bust() error { return t.terminate(protocol.Busted) }
func (t *Tableau) freeze() error { return t.terminate(protocol.Frozen) }

// collect empties the tableau for cleanup
func (t *Tableau) collect() []deck.Card {
	cards := make([]deck.Card, 0, t.HeldCount())
	for _, c := range t.numbers {
		cards = append(cards, c)
	}
	for _, c := range t.modifiers {
		cards = append(cards, c)
	}
	if t.secondChance != nil {
		cards = append(cards, *t.secondChance)
	}
	t.numbers, t.modifiers, t.secondChance = nil, nil, nil
	return cards
}

// View is a copy of the tableau safe to hand to bots
func (t *Tableau) View() protocol.TableauView {
	values := make([]int, len(t.numbers))
	for i, c := range t.numbers {
		values[i] = c.Value
	}
	mods := make([]string, len(t.modifiers))
	for i, m := range t.modifiers {
		mods[i] = m.String()
	}

	return protocol.TableauView{
		PlayerID:        t.PlayerID,
		NumberCards:     values,
		Modifiers:       mods,
		HasSecondChance: t.HoldsSecondChance(),
		Status:          t.status,
		Score:           Score(t).Final,
	}
}
