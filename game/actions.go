package game

import (
	"fmt"

	"github.com/minaorangina/flip7/deck"
	"github.com/minaorangina/flip7/protocol"
	"github.com/sirupsen/logrus"
)

const flipThreeDraws = 3

// place routes a freshly drawn card to the player who drew it
func (r *Round) place(playerID string, c deck.Card) error {
	t := r.tableaus[playerID]

	switch card := c.(type) {
	case deck.NumberCard:
		return r.resolveNumber(t, card)

	case deck.ModifierCard:
		if err := t.addModifier(card); err != nil {
			return err
		}
		r.landed()
		return nil

	case deck.ActionCard:
		r.events.emit(protocol.Event{Type: protocol.ActionCardDrawn, Round: r.number, Player: playerID, Action: card.Action.String()})
		return r.resolveAction(playerID, card)

	default:
		panic(fmt.Sprintf("unknown card %T", c))
	}
}

// resolveNumber adds the card, then checks for a bust or a Flip Seven
func (r *Round) resolveNumber(t *Tableau, c deck.NumberCard) error {
	duplicate := t.holdsValue(c.Value)
	if err := t.addNumber(c); err != nil {
		return err
	}
	r.landed()

	if !duplicate {
		if t.distinctValues() == FlipSevenThreshold {
			if err := t.pass(); err != nil {
				return err
			}
			r.events.emit(protocol.Event{Type: protocol.Flip7Achieved, Round: r.number, Player: t.PlayerID})
		}
		return nil
	}

	if t.HoldsSecondChance() {
		o := r.sandboxes[t.PlayerID].UseSecondChance(r.ctx, r.contextFor(t.PlayerID), c)
		if !o.OK() {
			r.events.emit(protocol.Event{Type: protocol.DecisionTimedOut, Round: r.number, Player: t.PlayerID, Reason: "second_chance " + o.Status.String()})
		}
		if o.OK() && o.Value {
			return r.useSecondChance(t, c)
		}
	}

	if err := t.bust(); err != nil {
		return err
	}
	dup := c.Value
	r.events.emit(protocol.Event{Type: protocol.PlayerBusted, Round: r.number, Player: t.PlayerID, Duplicate: &dup})
	return nil
}

func (r *Round) useSecondChance(t *Tableau, duplicate deck.NumberCard) error {
	spent, err := t.spendSecondChance(duplicate)
	if err != nil {
		return err
	}
	*r.discard = append(*r.discard, spent...)

	dup := duplicate.Value
	r.events.emit(protocol.Event{Type: protocol.SecondChanceUsed, Round: r.number, Player: t.PlayerID, Duplicate: &dup})
	return nil
}

func (r *Round) resolveAction(drawer string, c deck.ActionCard) error {
	switch c.Action {
	case deck.Freeze:
		return r.resolveFreeze(drawer, c)
	case deck.FlipThree:
		return r.resolveFlipThree(drawer, c)
	case deck.SecondChance:
		return r.resolveSecondChance(drawer, c)
	default:
		panic(fmt.Sprintf("unknown action %d", c.Action))
	}
}

func (r *Round) resolveFreeze(drawer string, c deck.ActionCard) error {
	eligible := r.activePlayers()
	if len(eligible) == 0 {
		r.discardUnused(drawer, c, "no eligible target")
		return nil
	}

	target := r.chooseTarget(drawer, c.Action, eligible)
	if err := r.tableaus[target].freeze(); err != nil {
		return err
	}
	r.events.emit(protocol.Event{Type: protocol.FreezeApplied, Round: r.number, Player: target})

	r.discardDrawn(c)
	r.resolved(drawer, c, target)
	return nil
}

// resolveSecondChance hands the card to a player who is not busted and
// does not already hold one. The card stays with its holder until spent.
func (r *Round) resolveSecondChance(drawer string, c deck.ActionCard) error {
	eligible := r.secondChanceCandidates()
	if len(eligible) == 0 {
		r.discardUnused(drawer, c, "no eligible target")
		return nil
	}

	target := r.chooseTarget(drawer, c.Action, eligible)
	// unreachable while secondChanceCandidates leaves out holders; kept as a guard
	if r.tableaus[target].HoldsSecondChance() {
		others := without(eligible, target)
		if len(others) == 0 {
			r.discardUnused(drawer, c, "target already holds one")
			return nil
		}
		target = r.chooseTarget(drawer, c.Action, others)
	}

	if err := r.tableaus[target].giveSecondChance(c); err != nil {
		return err
	}
	r.landed()
	r.resolved(drawer, c, target)
	return nil
}

// resolveFlipThree makes the target draw three cards. Freeze and Flip Three
// cards drawn along the way wait in a queue until the draws are done.
func (r *Round) resolveFlipThree(drawer string, c deck.ActionCard) error {
	eligible := r.activePlayers()
	if len(eligible) == 0 {
		r.discardUnused(drawer, c, "no eligible target")
		return nil
	}

	target := r.chooseTarget(drawer, c.Action, eligible)
	r.events.emit(protocol.Event{Type: protocol.FlipThreeTriggered, Round: r.number, Player: target})

	t := r.tableaus[target]
	var pending []deck.ActionCard

	for i := 0; i < flipThreeDraws && t.Active(); i++ {
		drawn, err := r.drawCard()
		if err != nil {
			return err
		}
		r.events.emit(protocol.Event{Type: protocol.CardDealt, Round: r.number, Player: target, Card: drawn, Reason: "flip_three"})

		action, ok := drawn.(deck.ActionCard)
		if !ok || action.Action == deck.SecondChance {
			if err := r.place(target, drawn); err != nil {
				return err
			}
			continue
		}

		r.events.emit(protocol.Event{Type: protocol.ActionCardDrawn, Round: r.number, Player: target, Action: action.Action.String(), Reason: "queued"})
		pending = append(pending, action)
	}

	if err := r.resolveQueued(target, pending); err != nil {
		return err
	}

	r.discardDrawn(c)
	r.resolved(drawer, c, target)
	return nil
}

// resolveQueued plays the action cards a Flip Three target drew, in the
// order drawn, for as long as the target is still active. Whatever is left
// once the target is out is discarded unresolved.
func (r *Round) resolveQueued(target string, pending []deck.ActionCard) error {
	for i, c := range pending {
		if !r.tableaus[target].Active() {
			for _, left := range pending[i:] {
				r.discardUnused(target, left, "target inactive")
			}
			return nil
		}
		if err := r.resolveAction(target, c); err != nil {
			return err
		}
	}
	return nil
}

// chooseTarget asks the drawer for a target, falling back to the first
// eligible player on timeout or an answer outside the list
func (r *Round) chooseTarget(drawer string, action deck.Action, eligible []string) string {
	o := r.sandboxes[drawer].ActionTarget(r.ctx, r.contextFor(drawer), action, eligible)
	if !o.OK() {
		r.events.emit(protocol.Event{Type: protocol.DecisionTimedOut, Round: r.number, Player: drawer, Action: action.String(), Reason: "action_target " + o.Status.String()})
		return eligible[0]
	}

	for _, id := range eligible {
		if id == o.Value {
			return id
		}
	}

	r.logger.WithFields(logrus.Fields{
		"player": drawer,
		"action": action.String(),
		"target": o.Value,
	}).Warn("ineligible target replaced with first eligible")
	return eligible[0]
}

func (r *Round) resolved(drawer string, c deck.ActionCard, target string) {
	r.events.emit(protocol.Event{Type: protocol.ActionCardResolved, Round: r.number, Player: drawer, Action: c.Action.String(), Target: target})
}

func (r *Round) discardUnused(drawer string, c deck.ActionCard, reason string) {
	r.discardDrawn(c)
	r.events.emit(protocol.Event{Type: protocol.ActionCardDiscarded, Round: r.number, Player: drawer, Action: c.Action.String(), Reason: reason})
}

func (r *Round) activePlayers() []string {
	var ids []string
	for _, id := range r.order {
		if r.tableaus[id].Active() {
			ids = append(ids, id)
		}
	}
	return ids
}

func (r *Round) secondChanceCandidates() []string {
	var ids []string
	for _, id := range r.order {
		t := r.tableaus[id]
		if !t.Busted() && !t.HoldsSecondChance() {
			ids = append(ids, id)
		}
	}
	return ids
}

func without(ids []string, drop string) []string {
	var out []string
	for _, id := range ids {
		if id != drop {
			out = append(out, id)
		}
	}
	return out
}
