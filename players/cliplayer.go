package players

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/minaorangina/flip7/deck"
	"github.com/minaorangina/flip7/protocol"
)

const (
	hitOrPassText      = "Hit or pass? [h/p] "
	retryHitOrPassText = "Invalid choice %q. Please enter \"h\" to hit or \"p\" to pass\n"
	secondChanceText   = "You drew a second %d. Use your Second Chance? [y/n] "
	retryYesNoText     = "Invalid choice %q. Please enter \"y\" for \"yes\" or \"n\" for \"no\"\n"
	chooseTargetText   = "Who gets your %s card?\n"
	retryTargetText    = "Invalid entry %q. Please enter a number between 1 and %d\n"
	timeoutText        = "\nTimed out: %s\n"
	inputClosedText    = "\nNo more input: %s\n"
)

// DefaultPromptTimeout is how long a TerminalBot waits for an answer
const DefaultPromptTimeout = 30 * time.Second

type conn struct {
	In  io.Reader
	Out io.Writer
}

// TerminalBot asks a person at a terminal for every decision.
// A prompt left unanswered for PromptTimeout takes the cautious choice.
type TerminalBot struct {
	name          string
	conn          *conn
	PromptTimeout time.Duration

	once  sync.Once
	lines chan string
}

func NewTerminalBot(name string, in io.Reader, out io.Writer) *TerminalBot {
	return &TerminalBot{
		name:          name,
		conn:          &conn{In: in, Out: out},
		PromptTimeout: DefaultPromptTimeout,
	}
}

func (b *TerminalBot) Name() string { return b.name }

func SendText(w io.Writer, text string, a ...interface{}) {
	fmt.Fprintf(w, text, a...)
}

func (b *TerminalBot) DecideHitOrPass(ctx protocol.DecisionContext) protocol.Decision {
	SendText(b.conn.Out, buildTableText(ctx))

	for {
		SendText(b.conn.Out, hitOrPassText)
		answer, ok := b.readLine("passing")
		if !ok {
			return protocol.Pass
		}
		switch strings.ToLower(answer) {
		case "h", "hit":
			return protocol.Hit
		case "p", "pass":
			return protocol.Pass
		default:
			SendText(b.conn.Out, retryHitOrPassText, answer)
		}
	}
}

func (b *TerminalBot) DecideUseSecondChance(_ protocol.DecisionContext, duplicate deck.NumberCard) bool {
	for {
		SendText(b.conn.Out, secondChanceText, duplicate.Value)
		answer, ok := b.readLine("keeping the duplicate")
		if !ok {
			return false
		}
		switch strings.ToLower(answer) {
		case "y", "yes":
			return true
		case "n", "no":
			return false
		default:
			SendText(b.conn.Out, retryYesNoText, answer)
		}
	}
}

func (b *TerminalBot) ChooseActionTarget(ctx protocol.DecisionContext, action deck.Action, eligible []string) string {
	if len(eligible) == 0 {
		return ""
	}

	SendText(b.conn.Out, chooseTargetText, action)
	for i, id := range eligible {
		label := id
		if id == ctx.Self.PlayerID {
			label += " (you)"
		}
		SendText(b.conn.Out, "%d - %s\n", i+1, label)
	}

	for {
		answer, ok := b.readLine("choosing " + eligible[0])
		if !ok {
			return eligible[0]
		}
		n, err := strconv.Atoi(answer)
		if err == nil && n >= 1 && n <= len(eligible) {
			return eligible[n-1]
		}
		SendText(b.conn.Out, retryTargetText, answer, len(eligible))
	}
}

// readLine waits for the next line of input.
// One reader goroutine serves every prompt for the life of the bot.
func (b *TerminalBot) readLine(fallback string) (string, bool) {
	b.once.Do(func() {
		b.lines = make(chan string)
		go func() {
			defer close(b.lines)
			reader := bufio.NewReader(b.conn.In)
			for {
				line, err := reader.ReadString('\n')
				if line != "" || err == nil {
					b.lines <- strings.TrimSpace(line)
				}
				if err != nil {
					return
				}
			}
		}()
	})

	select {
	case line, ok := <-b.lines:
		if !ok {
			SendText(b.conn.Out, inputClosedText, fallback)
		}
		return line, ok
	case <-time.After(b.PromptTimeout):
		SendText(b.conn.Out, timeoutText, fallback)
		return "", false
	}
}

func buildTableText(ctx protocol.DecisionContext) string {
	text := fmt.Sprintf("\nRound %d, %d cards left in the deck\n", ctx.Round, ctx.DeckRemaining)
	text += "You: " + buildTableauText(ctx.Self) + fmt.Sprintf(" (total %d)\n", ctx.MyScore())

	ids := make([]string, 0, len(ctx.Opponents))
	for id := range ctx.Opponents {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		text += fmt.Sprintf("%s: %s (total %d)\n", id, buildTableauText(ctx.Opponents[id]), ctx.CumulativeScores[id])
	}
	return text
}

func buildTableauText(t protocol.TableauView) string {
	cards := make([]string, 0, len(t.NumberCards)+len(t.Modifiers)+1)
	for _, v := range t.NumberCards {
		cards = append(cards, strconv.Itoa(v))
	}
	cards = append(cards, t.Modifiers...)
	if t.HasSecondChance {
		cards = append(cards, deck.SecondChance.String())
	}
	if len(cards) == 0 {
		cards = append(cards, "-")
	}
	return fmt.Sprintf("[%s] %s, scoring %d", strings.Join(cards, " "), t.Status, t.Score)
}
