package players

import (
	"sync"
	"time"

	"github.com/minaorangina/flip7/deck"
	"github.com/minaorangina/flip7/protocol"
)

// TargetCall records one ChooseActionTarget invocation
type TargetCall struct {
	Action   deck.Action
	Eligible []string
}

// ScriptedBot answers from queues and records what it was asked.
// When a queue runs dry it passes, declines, or picks the first eligible target.
type ScriptedBot struct {
	name string

	mu            sync.Mutex
	decisions     []protocol.Decision
	secondChances []bool
	targets       []string

	Delay      time.Duration
	PanicOnHit bool

	Contexts      []protocol.DecisionContext
	Duplicates    []deck.NumberCard
	TargetCalls   []TargetCall
	HitOrPassCall int
}

func NewScriptedBot(name string) *ScriptedBot {
	return &ScriptedBot{name: name}
}

// WithDecisions queues hit/pass answers
func (b *ScriptedBot) WithDecisions(ds ...protocol.Decision) *ScriptedBot {
	b.decisions = append(b.decisions, ds...)
	return b
}

// WithHits queues n hits
func (b *ScriptedBot) WithHits(n int) *ScriptedBot {
	for i := 0; i < n; i++ {
		b.decisions = append(b.decisions, protocol.Hit)
	}
	return b
}

func (b *ScriptedBot) WithSecondChances(answers ...bool) *ScriptedBot {
	b.secondChances = append(b.secondChances, answers...)
	return b
}

func (b *ScriptedBot) WithTargets(ids ...string) *ScriptedBot {
	b.targets = append(b.targets, ids...)
	return b
}

func (b *ScriptedBot) Name() string { return b.name }

func (b *ScriptedBot) DecideHitOrPass(ctx protocol.DecisionContext) protocol.Decision {
	if b.PanicOnHit {
		panic("scripted panic")
	}
	if b.Delay > 0 {
		time.Sleep(b.Delay)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.HitOrPassCall++
	b.Contexts = append(b.Contexts, ctx)
	if len(b.decisions) == 0 {
		return protocol.Pass
	}
	d := b.decisions[0]
	b.decisions = b.decisions[1:]
	return d
}

func (b *ScriptedBot) DecideUseSecondChance(ctx protocol.DecisionContext, duplicate deck.NumberCard) bool {
	if b.Delay > 0 {
		time.Sleep(b.Delay)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.Duplicates = append(b.Duplicates, duplicate)
	if len(b.secondChances) == 0 {
		return false
	}
	answer := b.secondChances[0]
	b.secondChances = b.secondChances[1:]
	return answer
}

func (b *ScriptedBot) ChooseActionTarget(ctx protocol.DecisionContext, action deck.Action, eligible []string) string {
	if b.Delay > 0 {
		time.Sleep(b.Delay)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.TargetCalls = append(b.TargetCalls, TargetCall{Action: action, Eligible: eligible})
	if len(b.targets) == 0 {
		if len(eligible) == 0 {
			return ""
		}
		return eligible[0]
	}
	t := b.targets[0]
	b.targets = b.targets[1:]
	return t
}

// Calls returns copies of what the bot was asked so far
func (b *ScriptedBot) Calls() (hitOrPass int, duplicates []deck.NumberCard, targets []TargetCall) {
	b.mu.Lock()
	defer b.mu.Unlock()
	duplicates = append([]deck.NumberCard(nil), b.Duplicates...)
	targets = append([]TargetCall(nil), b.TargetCalls...)
	return b.HitOrPassCall, duplicates, targets
}
