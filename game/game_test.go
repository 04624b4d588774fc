package game

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/minaorangina/flip7/deck"
	"github.com/minaorangina/flip7/eventlog"
	utils "github.com/minaorangina/flip7/internal"
	"github.com/minaorangina/flip7/players"
	"github.com/minaorangina/flip7/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seeded(s int64) *int64 {
	return &s
}

func someBots() []players.Bot {
	return []players.Bot{
		players.NewRandomBot("Harry", 1),
		players.NewHit17Bot("Sally"),
		players.NewScaredyBot("Marie", 2),
	}
}

func TestNewGame(t *testing.T) {
	t.Run("needs players", func(t *testing.T) {
		_, err := NewGame(GameOpts{})
		assert.ErrorIs(t, err, ErrNoPlayers)
	})

	t.Run("rejects duplicate names", func(t *testing.T) {
		_, err := NewGame(GameOpts{Bots: []players.Bot{players.NewHit17Bot("x"), players.NewHit17Bot("x")}})
		assert.ErrorIs(t, err, ErrDuplicatePlayer)
	})

	t.Run("rejects unnamed bots", func(t *testing.T) {
		_, err := NewGame(GameOpts{Bots: []players.Bot{players.NewHit17Bot("")}})
		assert.ErrorIs(t, err, ErrUnnamedBot)
	})

	t.Run("non-positive timeouts fall back to the default", func(t *testing.T) {
		for _, timeout := range []time.Duration{0, -time.Millisecond} {
			g, err := NewGame(GameOpts{Bots: someBots(), Timeout: timeout})
			require.NoError(t, err)
			utils.AssertEqual(t, g.timeout, DefaultTimeout)
		}
	})

	t.Run("generates an id and a full deck", func(t *testing.T) {
		g, err := NewGame(GameOpts{Bots: someBots()})
		require.NoError(t, err)
		utils.AssertNotEmptyString(t, g.ID())
		utils.AssertEqual(t, g.draw.Len(), deck.Size)

		state := g.State()
		assert.Equal(t, []string{"Harry", "Sally", "Marie"}, state.Players)
		assert.False(t, state.Over)
	})
}

func TestGamePlay(t *testing.T) {
	t.Run("plays until a single player reaches the target", func(t *testing.T) {
		rec := eventlog.NewRecorder()
		g, err := NewGame(GameOpts{ID: "g1", Bots: someBots(), Seed: seeded(42), Sink: rec})
		require.NoError(t, err)

		result, err := g.Play()
		require.NoError(t, err)

		utils.AssertNotEmptyString(t, result.Winner)
		assert.GreaterOrEqual(t, result.Scores[result.Winner], WinningScore)
		for id, s := range result.Scores {
			if id != result.Winner {
				assert.Less(t, s, result.Scores[result.Winner])
			}
		}
		utils.AssertEqual(t, len(result.RoundScores), result.Rounds)

		totals := map[string]int{}
		for _, rs := range result.RoundScores {
			for id, s := range rs {
				totals[id] += s
			}
		}
		assert.Equal(t, result.Scores, totals)

		utils.AssertEqual(t, g.draw.Len()+len(g.discard), deck.Size)
		assert.Len(t, rec.Filter(protocol.RoundStarted), result.Rounds)
		assert.Len(t, rec.Filter(protocol.GameEnded), 1)

		_, err = g.Play()
		assert.ErrorIs(t, err, ErrGameOver)
		utils.AssertTrue(t, g.State().Over)
	})

	t.Run("same seed, same game", func(t *testing.T) {
		run := func() ([]byte, Result) {
			var buf bytes.Buffer
			g, err := NewGame(GameOpts{ID: "replay", Bots: someBots(), Seed: seeded(7), Sink: eventlog.NewWriter(&buf, nil)})
			require.NoError(t, err)
			result, err := g.Play()
			require.NoError(t, err)
			return buf.Bytes(), result
		}

		firstLog, first := run()
		secondLog, second := run()

		assert.Equal(t, first, second)
		assert.Equal(t, string(firstLog), string(secondLog))
	})

	t.Run("stops at the round limit", func(t *testing.T) {
		g, err := NewGame(GameOpts{Bots: someBots(), Seed: seeded(3), TargetScore: 1 << 20, MaxRounds: 2})
		require.NoError(t, err)

		result, err := g.Play()
		assert.ErrorIs(t, err, ErrRoundLimit)
		utils.AssertEqual(t, result.Rounds, 2)
		utils.AssertEqual(t, result.Winner, "")
	})

	t.Run("stops when the context is cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		g, err := NewGame(GameOpts{Bots: someBots(), Seed: seeded(3), Context: ctx})
		require.NoError(t, err)

		_, err = g.Play()
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestWinner(t *testing.T) {
	cases := []struct {
		name   string
		scores map[string]int
		winner string
		ok     bool
	}{
		{"nobody at the target", map[string]int{"a": 199, "b": 150}, "", false},
		{"unique leader over the target", map[string]int{"a": 205, "b": 201}, "a", true},
		{"exactly the target", map[string]int{"a": 200, "b": 10}, "a", true},
		{"tie at the top keeps playing", map[string]int{"a": 210, "b": 210, "c": 50}, "", false},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			winner, ok := Winner(c.scores, WinningScore)
			utils.AssertEqual(t, ok, c.ok)
			utils.AssertEqual(t, winner, c.winner)
		})
	}
}

func TestRoundSeed(t *testing.T) {
	assert.Nil(t, roundSeed(nil, 1))
	utils.AssertEqual(t, *roundSeed(seeded(42), 3), int64(45))
}

func TestStandings(t *testing.T) {
	got := Standings(map[string]int{"c": 10, "a": 30, "b": 10})
	assert.Equal(t, []string{"a", "b", "c"}, got)
}
