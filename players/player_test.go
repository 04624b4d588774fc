package players

import (
	"errors"
	"testing"

	"github.com/minaorangina/flip7/deck"
	utils "github.com/minaorangina/flip7/internal"
	"github.com/minaorangina/flip7/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withHand(id string, values ...int) protocol.DecisionContext {
	return protocol.DecisionContext{
		Self:      protocol.TableauView{PlayerID: id, NumberCards: values},
		Opponents: map[string]protocol.TableauView{},
	}
}

func TestHit17Bot(t *testing.T) {
	bot := NewHit17Bot("dealer")

	assert.Equal(t, protocol.Hit, bot.DecideHitOrPass(withHand("me", 10, 6)))
	assert.Equal(t, protocol.Pass, bot.DecideHitOrPass(withHand("me", 10, 7)))
	assert.True(t, bot.DecideUseSecondChance(withHand("me", 8, 7), deck.MustNumberCard(7)))
	assert.False(t, bot.DecideUseSecondChance(withHand("me", 2, 2), deck.MustNumberCard(2)))

	t.Run("targets", func(t *testing.T) {
		ctx := withHand("me", 1)
		ctx.Opponents = map[string]protocol.TableauView{
			"rich": {PlayerID: "rich", NumberCards: []int{12, 11}},
			"poor": {PlayerID: "poor", NumberCards: []int{1}},
		}
		ctx.CumulativeScores = map[string]int{"rich": 150, "poor": 20}

		assert.Equal(t, "rich", bot.ChooseActionTarget(ctx, deck.Freeze, []string{"poor", "rich"}))
		assert.Equal(t, "poor", bot.ChooseActionTarget(ctx, deck.FlipThree, []string{"rich", "poor"}))
		assert.Equal(t, "me", bot.ChooseActionTarget(ctx, deck.SecondChance, []string{"rich", "me"}))
		assert.Equal(t, "poor", bot.ChooseActionTarget(ctx, deck.SecondChance, []string{"rich", "poor"}))
	})
}

func TestScaredyBot(t *testing.T) {
	bot := NewScaredyBot("scaredy", 1)

	assert.Equal(t, protocol.Hit, bot.DecideHitOrPass(withHand("me", 7, 7)))
	assert.Equal(t, protocol.Pass, bot.DecideHitOrPass(withHand("me", 8, 7)))
	assert.True(t, bot.DecideUseSecondChance(withHand("me"), deck.MustNumberCard(3)))
	assert.Contains(t, []string{"a", "b"}, bot.ChooseActionTarget(withHand("me"), deck.Freeze, []string{"a", "b"}))
}

func TestRandomBot(t *testing.T) {
	t.Run("same seed, same choices", func(t *testing.T) {
		a, b := NewRandomBot("a", 99), NewRandomBot("b", 99)
		for i := 0; i < 20; i++ {
			assert.Equal(t, a.DecideHitOrPass(withHand("a")), b.DecideHitOrPass(withHand("b")))
		}
	})

	t.Run("always picks an eligible target", func(t *testing.T) {
		bot := NewRandomBot("r", 3)
		for i := 0; i < 20; i++ {
			assert.Contains(t, []string{"x", "y", "z"}, bot.ChooseActionTarget(withHand("r"), deck.FlipThree, []string{"x", "y", "z"}))
		}
	})
}

func TestNewBot(t *testing.T) {
	for _, kind := range Kinds() {
		bot, err := NewBot(kind, "", 1)
		require.NoError(t, err)
		utils.AssertEqual(t, bot.Name(), kind)
	}

	bot, err := NewBot("HIT17", "dealer", 0)
	require.NoError(t, err)
	utils.AssertEqual(t, bot.Name(), "dealer")

	_, err = NewBot("psychic", "", 0)
	assert.True(t, errors.Is(err, ErrUnknownBot))

	kind, name := ParseBotSpec("random:Alice")
	assert.Equal(t, "random", kind)
	assert.Equal(t, "Alice", name)

	kind, name = ParseBotSpec("scaredy")
	assert.Equal(t, "scaredy", kind)
	assert.Equal(t, "scaredy", name)
}
