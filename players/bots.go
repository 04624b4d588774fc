package players

import (
	"math/rand"
	"sync"
	"time"

	"github.com/minaorangina/flip7/deck"
	"github.com/minaorangina/flip7/protocol"
)

// RandomBot flips a coin for every decision
type RandomBot struct {
	name string
	mu   sync.Mutex
	rng  *rand.Rand
}

func NewRandomBot(name string, seed int64) *RandomBot {
	return &RandomBot{name: name, rng: rand.New(rand.NewSource(seed))}
}

func (b *RandomBot) Name() string { return b.name }

func (b *RandomBot) DecideHitOrPass(protocol.DecisionContext) protocol.Decision {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.rng.Intn(2) == 0 {
		return protocol.Hit
	}
	return protocol.Pass
}

func (b *RandomBot) DecideUseSecondChance(protocol.DecisionContext, deck.NumberCard) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.rng.Intn(2) == 0
}

func (b *RandomBot) ChooseActionTarget(_ protocol.DecisionContext, _ deck.Action, eligible []string) string {
	if len(eligible) == 0 {
		return ""
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return eligible[b.rng.Intn(len(eligible))]
}

// Hit17Bot hits until its number cards add up to 17, like a blackjack dealer
type Hit17Bot struct {
	name string
}

func NewHit17Bot(name string) *Hit17Bot {
	return &Hit17Bot{name: name}
}

func (b *Hit17Bot) Name() string { return b.name }

func (b *Hit17Bot) DecideHitOrPass(ctx protocol.DecisionContext) protocol.Decision {
	if handValue(ctx.Self) < 17 {
		return protocol.Hit
	}
	return protocol.Pass
}

func (b *Hit17Bot) DecideUseSecondChance(ctx protocol.DecisionContext, _ deck.NumberCard) bool {
	return handValue(ctx.Self) >= 15
}

// ChooseActionTarget freezes the richest hand, makes the thinnest hand flip
// three and keeps second chances for itself when it can.
func (b *Hit17Bot) ChooseActionTarget(ctx protocol.DecisionContext, action deck.Action, eligible []string) string {
	if len(eligible) == 0 {
		return ctx.Self.PlayerID
	}

	switch action {
	case deck.Freeze:
		best, bestValue := eligible[0], -1
		for _, id := range eligible {
			if v := handValue(ctx.Opponents[id]); v > bestValue {
				best, bestValue = id, v
			}
		}
		return best

	case deck.FlipThree:
		best, fewest := eligible[0], 1<<30
		for _, id := range eligible {
			view, ok := ctx.Opponents[id]
			if !ok {
				continue
			}
			if n := len(view.NumberCards); n < fewest {
				best, fewest = id, n
			}
		}
		return best

	case deck.SecondChance:
		for _, id := range eligible {
			if id == ctx.Self.PlayerID {
				return id
			}
		}
		best, lowest := eligible[0], 1<<30
		for _, id := range eligible {
			if s := ctx.CumulativeScores[id]; s < lowest {
				best, lowest = id, s
			}
		}
		return best
	}

	return eligible[0]
}

// ScaredyBot passes as soon as its hand is worth 15 and always saves itself
type ScaredyBot struct {
	name string
	mu   sync.Mutex
	rng  *rand.Rand
}

const scaredyThreshold = 15

func NewScaredyBot(name string, seed int64) *ScaredyBot {
	return &ScaredyBot{name: name, rng: rand.New(rand.NewSource(seed))}
}

func (b *ScaredyBot) Name() string { return b.name }

func (b *ScaredyBot) DecideHitOrPass(ctx protocol.DecisionContext) protocol.Decision {
	if handValue(ctx.Self) >= scaredyThreshold {
		return protocol.Pass
	}
	return protocol.Hit
}

func (b *ScaredyBot) DecideUseSecondChance(protocol.DecisionContext, deck.NumberCard) bool {
	return true
}

func (b *ScaredyBot) ChooseActionTarget(_ protocol.DecisionContext, _ deck.Action, eligible []string) string {
	if len(eligible) == 0 {
		return ""
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return eligible[b.rng.Intn(len(eligible))]
}

// SlowBot sleeps through the decision points it is told to stall on.
// Otherwise it passes, declines and picks the first eligible target.
type SlowBot struct {
	name         string
	Delay        time.Duration
	HitOrPass    bool
	SecondChance bool
	ActionTarget bool
}

func NewSlowBot(name string, delay time.Duration) *SlowBot {
	return &SlowBot{name: name, Delay: delay, HitOrPass: true, SecondChance: true, ActionTarget: true}
}

func (b *SlowBot) Name() string { return b.name }

func (b *SlowBot) DecideHitOrPass(protocol.DecisionContext) protocol.Decision {
	if b.HitOrPass {
		time.Sleep(b.Delay)
	}
	return protocol.Pass
}

func (b *SlowBot) DecideUseSecondChance(protocol.DecisionContext, deck.NumberCard) bool {
	if b.SecondChance {
		time.Sleep(b.Delay)
	}
	return false
}

func (b *SlowBot) ChooseActionTarget(_ protocol.DecisionContext, _ deck.Action, eligible []string) string {
	if b.ActionTarget {
		time.Sleep(b.Delay)
	}
	if len(eligible) == 0 {
		return ""
	}
	return eligible[0]
}
