package players

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/minaorangina/flip7/deck"
	utils "github.com/minaorangina/flip7/internal"
	"github.com/minaorangina/flip7/protocol"
	"github.com/stretchr/testify/assert"
)

func TestCall(t *testing.T) {
	t.Run("returns the value of a fast call", func(t *testing.T) {
		o := Call(context.Background(), time.Second, func() int { return 7 })
		utils.AssertEqual(t, o.Status, Returned)
		utils.AssertEqual(t, o.Value, 7)
		utils.AssertTrue(t, o.OK())
	})

	t.Run("regains control at the deadline", func(t *testing.T) {
		utils.Within(t, time.Second, func() {
			o := Call(context.Background(), 20*time.Millisecond, func() int {
				time.Sleep(5 * time.Second)
				return 1
			})
			assert.Equal(t, TimedOut, o.Status)
			assert.Equal(t, 0, o.Value)
		})
	})

	t.Run("a non-positive timeout expires at once", func(t *testing.T) {
		for _, timeout := range []time.Duration{0, -time.Millisecond} {
			utils.Within(t, time.Second, func() {
				o := Call(context.Background(), timeout, func() int {
					time.Sleep(5 * time.Second)
					return 1
				})
				assert.Equal(t, TimedOut, o.Status)
			})
		}
	})

	t.Run("recovers panics", func(t *testing.T) {
		o := Call(context.Background(), time.Second, func() int { panic("boom") })
		assert.Equal(t, Panicked, o.Status)
		assert.True(t, errors.Is(o.Err, ErrBotPanicked))
	})

	t.Run("stops waiting when the context is cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		o := Call(ctx, time.Minute, func() int {
			time.Sleep(time.Second)
			return 1
		})
		assert.Equal(t, Cancelled, o.Status)
		assert.True(t, errors.Is(o.Err, context.Canceled))
	})
}

func TestSandbox(t *testing.T) {
	dc := protocol.DecisionContext{Self: protocol.TableauView{PlayerID: "p1"}}

	t.Run("passes answers through", func(t *testing.T) {
		bot := NewScriptedBot("scripted").WithDecisions(protocol.Hit).WithSecondChances(true).WithTargets("p2")
		s := NewSandbox(bot, time.Second, nil)

		assert.Equal(t, protocol.Hit, s.HitOrPass(context.Background(), dc).Value)
		assert.True(t, s.UseSecondChance(context.Background(), dc, deck.MustNumberCard(4)).Value)
		assert.Equal(t, "p2", s.ActionTarget(context.Background(), dc, deck.Freeze, []string{"p1", "p2"}).Value)
	})

	t.Run("times out every decision point", func(t *testing.T) {
		s := NewSandbox(NewSlowBot("slow", time.Second), 10*time.Millisecond, nil)

		assert.Equal(t, TimedOut, s.HitOrPass(context.Background(), dc).Status)
		assert.Equal(t, TimedOut, s.UseSecondChance(context.Background(), dc, deck.MustNumberCard(1)).Status)
		assert.Equal(t, TimedOut, s.ActionTarget(context.Background(), dc, deck.FlipThree, []string{"p1"}).Status)
	})

	t.Run("bots cannot modify the eligible list", func(t *testing.T) {
		eligible := []string{"p1", "p2"}
		bot := &mutatingBot{ScriptedBot: NewScriptedBot("mutator")}
		s := NewSandbox(bot, time.Second, nil)

		s.ActionTarget(context.Background(), dc, deck.Freeze, eligible)
		assert.Equal(t, []string{"p1", "p2"}, eligible)
	})
}

type mutatingBot struct {
	*ScriptedBot
}

func (b *mutatingBot) ChooseActionTarget(_ protocol.DecisionContext, _ deck.Action, eligible []string) string {
	eligible[0] = "hijacked"
	return eligible[0]
}
