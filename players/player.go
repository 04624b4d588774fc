package players

import (
	"github.com/minaorangina/flip7/deck"
	"github.com/minaorangina/flip7/protocol"
)

// Bot decides moves on behalf of a player.
// Each method receives a fresh copy of the state and must not hold on to it.
type Bot interface {
	Name() string
	DecideHitOrPass(ctx protocol.DecisionContext) protocol.Decision
	DecideUseSecondChance(ctx protocol.DecisionContext, duplicate deck.NumberCard) bool
	ChooseActionTarget(ctx protocol.DecisionContext, action deck.Action, eligible []string) string
}

func handValue(t protocol.TableauView) int {
	sum := 0
	for _, v := range t.NumberCards {
		sum += v
	}
	return sum
}
