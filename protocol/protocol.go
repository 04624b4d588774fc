package protocol

import (
	"encoding/json"
	"fmt"

	"github.com/minaorangina/flip7/deck"
)

// EventType identifies a structured notification emitted by the engine
type EventType int

const (
	GameStarted EventType = iota
	RoundStarted
	CardDealt
	PlayerHit
	PlayerPassed
	PlayerBusted
	ActionCardDrawn
	ActionCardResolved
	ActionCardDiscarded
	FreezeApplied
	FlipThreeTriggered
	SecondChanceUsed
	Flip7Achieved
	DeckReshuffled
	DecisionTimedOut
	RoundEnded
	GameEnded
)

var eventNames = []string{
	"game_started",
	"round_started",
	"card_dealt",
	"player_hit",
	"player_passed",
	"player_busted",
	"action_card_drawn",
	"action_card_resolved",
	"action_card_discarded",
	"freeze_applied",
	"flip_three_triggered",
	"second_chance_used",
	"flip_7_achieved",
	"deck_reshuffled",
	"decision_timed_out",
	"round_ended",
	"game_ended",
}

func (e EventType) String() string {
	if int(e) < 0 || int(e) >= len(eventNames) {
		return fmt.Sprintf("EventType(%d)", int(e))
	}
	return eventNames[e]
}

func (e EventType) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.String())
}

func (e *EventType) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	for i, n := range eventNames {
		if n == name {
			*e = EventType(i)
			return nil
		}
	}
	return fmt.Errorf("unknown event type %q", name)
}

// Event is a single engine notification.
// Seq orders events within a game. Events carry no wall-clock time.
type Event struct {
	Seq       int            `json:"seq"`
	Type      EventType      `json:"type"`
	GameID    string         `json:"gameID,omitempty"`
	Round     int            `json:"round,omitempty"`
	Player    string         `json:"player,omitempty"`
	Card      deck.Card      `json:"card,omitempty"`
	Action    string         `json:"action,omitempty"`
	Target    string         `json:"target,omitempty"`
	Duplicate *int           `json:"duplicate,omitempty"`
	Reason    string         `json:"reason,omitempty"`
	Scores    map[string]int `json:"scores,omitempty"`
	Totals    map[string]int `json:"totals,omitempty"`
	Winner    string         `json:"winner,omitempty"`
}

// UnmarshalJSON restores the concrete card type of a recorded event
func (e *Event) UnmarshalJSON(data []byte) error {
	type event Event
	aux := struct {
		*event
		Card json.RawMessage `json:"card,omitempty"`
	}{event: (*event)(e)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if len(aux.Card) == 0 || string(aux.Card) == "null" {
		return nil
	}

	c, err := deck.Decode(aux.Card)
	if err != nil {
		return err
	}
	e.Card = c
	return nil
}

// Sink receives engine events. Implementations must not call back into the engine.
type Sink interface {
	Emit(Event)
}

// SinkFunc adapts a function to a Sink
type SinkFunc func(Event)

func (f SinkFunc) Emit(e Event) {
	f(e)
}

// Discard drops every event
var Discard Sink = SinkFunc(func(Event) {})
