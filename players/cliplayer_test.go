package players

import (
	"bytes"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/minaorangina/flip7/deck"
	utils "github.com/minaorangina/flip7/internal"
	"github.com/minaorangina/flip7/protocol"
	"github.com/stretchr/testify/assert"
)

func TestTerminalBot(t *testing.T) {
	t.Run("retries until hit or pass", func(t *testing.T) {
		var out bytes.Buffer
		bot := NewTerminalBot("Sally", strings.NewReader("maybe\nH\np\n"), &out)

		utils.AssertEqual(t, bot.DecideHitOrPass(withHand("Sally", 4)), protocol.Hit)
		utils.AssertEqual(t, bot.DecideHitOrPass(withHand("Sally", 4)), protocol.Pass)
		assert.Contains(t, out.String(), `Invalid choice "maybe"`)
		assert.Contains(t, out.String(), "You: [4] active, scoring 0")
	})

	t.Run("second chance", func(t *testing.T) {
		var out bytes.Buffer
		bot := NewTerminalBot("Sally", strings.NewReader("y\nnah\nn\n"), &out)

		assert.True(t, bot.DecideUseSecondChance(withHand("Sally"), deck.MustNumberCard(9)))
		assert.False(t, bot.DecideUseSecondChance(withHand("Sally"), deck.MustNumberCard(9)))
		assert.Contains(t, out.String(), "You drew a second 9")
	})

	t.Run("targets are chosen by number", func(t *testing.T) {
		var out bytes.Buffer
		bot := NewTerminalBot("Sally", strings.NewReader("0\nthree\n2\n"), &out)

		target := bot.ChooseActionTarget(withHand("Sally"), deck.Freeze, []string{"Sally", "Harry"})
		utils.AssertEqual(t, target, "Harry")
		assert.Contains(t, out.String(), "Who gets your FREEZE card?")
		assert.Contains(t, out.String(), "1 - Sally (you)")
		assert.Equal(t, 2, strings.Count(out.String(), "Invalid entry"))
	})

	t.Run("closed input takes the cautious choice", func(t *testing.T) {
		var out bytes.Buffer
		bot := NewTerminalBot("Sally", strings.NewReader(""), &out)

		utils.AssertEqual(t, bot.DecideHitOrPass(withHand("Sally")), protocol.Pass)
		assert.False(t, bot.DecideUseSecondChance(withHand("Sally"), deck.MustNumberCard(1)))
		utils.AssertEqual(t, bot.ChooseActionTarget(withHand("Sally"), deck.FlipThree, []string{"Harry", "Sally"}), "Harry")
		assert.Contains(t, out.String(), "No more input: passing")
	})

	t.Run("unanswered prompts time out", func(t *testing.T) {
		r, w := io.Pipe()
		defer w.Close()

		var out bytes.Buffer
		bot := NewTerminalBot("Sally", r, &out)
		bot.PromptTimeout = 20 * time.Millisecond

		utils.Within(t, time.Second, func() {
			utils.AssertEqual(t, bot.DecideHitOrPass(withHand("Sally")), protocol.Pass)
		})
		assert.Contains(t, out.String(), "Timed out: passing")
	})
}

func TestRegister(t *testing.T) {
	Register("Echo", func(name string, _ int64) Bot { return NewScriptedBot(name) })
	defer func() {
		botMu.Lock()
		delete(botConstructors, "echo")
		botMu.Unlock()
	}()

	b, err := NewBot("echo", "Ed", 0)
	utils.AssertNoError(t, err)
	utils.AssertEqual(t, b.Name(), "Ed")
	assert.Contains(t, Kinds(), "echo")
}
