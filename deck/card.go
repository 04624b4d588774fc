package deck

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	ErrInvalidValue    = errors.New("number card value must be between 0 and 12")
	ErrUnknownCardType = errors.New("unknown card type")
)

const (
	MinValue = 0
	MaxValue = 12
)

// Card represents a Flip Seven card.
// The set of cards is closed: only NumberCard, ActionCard and ModifierCard
// satisfy it.
type Card interface {
	String() string
	card()
}

// NumberCard carries a face value between 0 and 12
type NumberCard struct {
	Value int
}

// NewNumberCard constructs a NumberCard, rejecting out-of-range values
func NewNumberCard(value int) (NumberCard, error) {
	if value < MinValue || value > MaxValue {
		return NumberCard{}, fmt.Errorf("%w: got %d", ErrInvalidValue, value)
	}
	return NumberCard{Value: value}, nil
}

// MustNumberCard is NewNumberCard for literals known to be valid
func MustNumberCard(value int) NumberCard {
	c, err := NewNumberCard(value)
	if err != nil {
		panic(err)
	}
	return c
}

func (c NumberCard) String() string {
	return fmt.Sprintf("%d", c.Value)
}

func (NumberCard) card() {}

// Action is the effect of an action card
type Action int

const (
	Freeze Action = iota
	FlipThree
	SecondChance
)

var ActionNames = map[Action]string{
	Freeze:       "FREEZE",
	FlipThree:    "FLIP_THREE",
	SecondChance: "SECOND_CHANCE",
}

var NameToAction = map[string]Action{
	"FREEZE":        Freeze,
	"FLIP_THREE":    FlipThree,
	"SECOND_CHANCE": SecondChance,
}

func (a Action) String() string {
	return ActionNames[a]
}

// ActionCard triggers an effect on a chosen target
type ActionCard struct {
	Action Action
}

func (c ActionCard) String() string {
	return c.Action.String()
}

func (ActionCard) card() {}

// Modifier is the effect of a modifier card on a round score
type Modifier int

const (
	Plus2 Modifier = iota
	Plus4
	Plus6
	Plus8
	Plus10
	Times2
)

var ModifierNames = map[Modifier]string{
	Plus2:  "+2",
	Plus4:  "+4",
	Plus6:  "+6",
	Plus8:  "+8",
	Plus10: "+10",
	Times2: "X2",
}

var NameToModifier = map[string]Modifier{
	"+2":  Plus2,
	"+4":  Plus4,
	"+6":  Plus6,
	"+8":  Plus8,
	"+10": Plus10,
	"X2":  Times2,
}

var modifierBonuses = map[Modifier]int{
	Plus2:  2,
	Plus4:  4,
	Plus6:  6,
	Plus8:  8,
	Plus10: 10,
}

func (m Modifier) String() string {
	return ModifierNames[m]
}

// Bonus is the additive value of the modifier. X2 has none.
func (m Modifier) Bonus() int {
	return modifierBonuses[m]
}

func (m Modifier) IsMultiplier() bool {
	return m == Times2
}

// ModifierCard adjusts the holder's round score
type ModifierCard struct {
	Modifier Modifier
}

func (c ModifierCard) String() string {
	return c.Modifier.String()
}

func (ModifierCard) card() {}

// wireCard is the JSON shape shared by all card variants
type wireCard struct {
	Type     string `json:"type"`
	Value    *int   `json:"value,omitempty"`
	Action   string `json:"action,omitempty"`
	Modifier string `json:"modifier,omitempty"`
}

func (c NumberCard) MarshalJSON() ([]byte, error) {
	v := c.Value
	return json.Marshal(wireCard{Type: "number", Value: &v})
}

func (c ActionCard) MarshalJSON() ([]byte, error) {
	return json.Marshal(wireCard{Type: "action", Action: c.Action.String()})
}

func (c ModifierCard) MarshalJSON() ([]byte, error) {
	return json.Marshal(wireCard{Type: "modifier", Modifier: c.Modifier.String()})
}

// Decode parses a card from its JSON form
func Decode(data []byte) (Card, error) {
	var w wireCard
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, err
	}

	switch w.Type {
	case "number":
		if w.Value == nil {
			return nil, fmt.Errorf("%w: number card without value", ErrUnknownCardType)
		}
		return NewNumberCard(*w.Value)
	case "action":
		a, ok := NameToAction[w.Action]
		if !ok {
			return nil, fmt.Errorf("%w: action %q", ErrUnknownCardType, w.Action)
		}
		return ActionCard{Action: a}, nil
	case "modifier":
		m, ok := NameToModifier[w.Modifier]
		if !ok {
			return nil, fmt.Errorf("%w: modifier %q", ErrUnknownCardType, w.Modifier)
		}
		return ModifierCard{Modifier: m}, nil
	}

	return nil, fmt.Errorf("%w: %q", ErrUnknownCardType, w.Type)
}
