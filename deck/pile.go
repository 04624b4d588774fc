package deck

// Pile is a draw pile. Cards are taken from the front.
type Pile struct {
	cards []Card
	head  int
}

// NewPile builds a pile whose first card is cards[0]
func NewPile(cards []Card) *Pile {
	p := &Pile{}
	p.Refill(cards)
	return p
}

// Draw removes and returns the front card
func (p *Pile) Draw() (Card, bool) {
	if p.Len() == 0 {
		return nil, false
	}
	c := p.cards[p.head]
	p.cards[p.head] = nil
	p.head++
	return c, true
}

func (p *Pile) Len() int {
	return len(p.cards) - p.head
}

// Cards returns a copy of the remaining cards in draw order
func (p *Pile) Cards() []Card {
	remaining := make([]Card, p.Len())
	copy(remaining, p.cards[p.head:])
	return remaining
}

// Refill replaces the contents of the pile
func (p *Pile) Refill(cards []Card) {
	p.cards = make([]Card, len(cards))
	copy(p.cards, cards)
	p.head = 0
}
