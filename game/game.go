package game

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/minaorangina/flip7/deck"
	"github.com/minaorangina/flip7/players"
	"github.com/minaorangina/flip7/protocol"
	uuid "github.com/satori/go.uuid"
	"github.com/sirupsen/logrus"
)

var (
	ErrNoPlayers             = errors.New("game has no players")
	ErrUnnamedBot            = errors.New("bot name must not be empty")
	ErrDuplicatePlayer       = errors.New("duplicate player")
	ErrUnknownPlayer         = errors.New("unknown player")
	ErrPlayerNotActive       = errors.New("player is not active")
	ErrWrongPhase            = errors.New("action not allowed in this phase")
	ErrNilPiles              = errors.New("round needs a draw pile and a discard pile")
	ErrDeckExhausted         = errors.New("draw and discard piles are both empty")
	ErrConservation          = errors.New("card conservation violated")
	ErrSecondChanceInvariant = errors.New("second chance invariant violated")
	ErrRoundLimit            = errors.New("round limit reached without a winner")
	ErrGameOver              = errors.New("game is already over")
)

const (
	WinningScore       = 200
	FlipSevenThreshold = 7
	FlipSevenBonus     = 15
	DefaultTimeout     = 5 * time.Second
)

// GameOpts configures a game. Bots play in the order given and are
// identified by name.
type GameOpts struct {
	ID          string
	Bots        []players.Bot
	Seed        *int64
	Timeout     time.Duration
	TargetScore int
	// MaxRounds stops a game that never produces a winner. 0 means no limit.
	MaxRounds int
	Sink      protocol.Sink
	Logger    logrus.FieldLogger
	Context   context.Context
}

// Result is the outcome of a finished game
type Result struct {
	GameID      string           `json:"gameID"`
	Winner      string           `json:"winner"`
	Scores      map[string]int   `json:"scores"`
	Rounds      int              `json:"rounds"`
	RoundScores []map[string]int `json:"roundScores"`
	Seed        *int64           `json:"seed,omitempty"`
}

// State is a snapshot of a game in progress
type State struct {
	GameID  string         `json:"gameID"`
	Players []string       `json:"players"`
	Round   int            `json:"round"`
	Scores  map[string]int `json:"scores"`
	Over    bool           `json:"over"`
	Winner  string         `json:"winner,omitempty"`
}

// Game runs rounds until one player alone reaches the target score
type Game struct {
	id      string
	bots    []players.Bot
	order   []string
	seed    *int64
	timeout time.Duration
	target  int
	max     int
	draw    *deck.Pile
	discard []deck.Card
	events  *emitter
	logger  logrus.FieldLogger
	ctx     context.Context

	mu          sync.RWMutex
	round       int
	scores      map[string]int
	roundScores []map[string]int
	over        bool
	winner      string
}

func NewGameID() string {
	return uuid.NewV4().String()
}

// NewGame validates opts and shuffles a fresh deck for the game
func NewGame(opts GameOpts) (*Game, error) {
	if len(opts.Bots) == 0 {
		return nil, ErrNoPlayers
	}

	g := &Game{
		id:      opts.ID,
		bots:    opts.Bots,
		seed:    opts.Seed,
		timeout: opts.Timeout,
		target:  opts.TargetScore,
		max:     opts.MaxRounds,
		logger:  opts.Logger,
		ctx:     opts.Context,
		scores:  map[string]int{},
	}
	if g.id == "" {
		g.id = NewGameID()
	}
	if g.timeout <= 0 {
		g.timeout = DefaultTimeout
	}
	if g.target == 0 {
		g.target = WinningScore
	}
	if g.logger == nil {
		g.logger = logrus.StandardLogger()
	}
	if g.ctx == nil {
		g.ctx = context.Background()
	}

	seen := map[string]bool{}
	for _, b := range opts.Bots {
		if b.Name() == "" {
			return nil, ErrUnnamedBot
		}
		if seen[b.Name()] {
			return nil, fmt.Errorf("%w: %s", ErrDuplicatePlayer, b.Name())
		}
		seen[b.Name()] = true
		g.order = append(g.order, b.Name())
		g.scores[b.Name()] = 0
	}

	g.draw = deck.NewPile(deck.Shuffle(deck.New(), opts.Seed))
	g.events = newEmitter(g.id, opts.Sink)
	g.logger = g.logger.WithField("game_id", g.id)

	return g, nil
}

func (g *Game) ID() string {
	return g.id
}

// Play runs the game to completion
func (g *Game) Play() (Result, error) {
	g.mu.RLock()
	over := g.over
	g.mu.RUnlock()
	if over {
		return Result{}, ErrGameOver
	}

	g.logger.WithField("players", g.order).Debug("game started")
	g.events.emit(protocol.Event{Type: protocol.GameStarted})

	for {
		if g.max > 0 && g.Round() >= g.max {
			return g.result(), fmt.Errorf("%w: %d rounds", ErrRoundLimit, g.max)
		}

		roundScores, err := g.playRound()
		if err != nil {
			return g.result(), err
		}

		if winner, ok := g.record(roundScores); ok {
			g.events.emit(protocol.Event{Type: protocol.GameEnded, Winner: winner, Totals: g.Scores()})
			g.logger.WithFields(logrus.Fields{
				"winner": winner,
				"rounds": g.Round(),
			}).Info("game over")
			return g.result(), nil
		}
	}
}

func (g *Game) playRound() (map[string]int, error) {
	number := g.Round() + 1

	r, err := NewRound(RoundOpts{
		Number:           number,
		GameID:           g.id,
		Bots:             g.bots,
		Draw:             g.draw,
		Discard:          &g.discard,
		Seed:             roundSeed(g.seed, number),
		Timeout:          g.timeout,
		CumulativeScores: g.Scores(),
		TargetScore:      g.target,
		Logger:           g.logger,
		Context:          g.ctx,
		events:           g.events,
	})
	if err != nil {
		return nil, err
	}

	scores, err := r.Play()
	if err != nil {
		return nil, fmt.Errorf("game %s: %w", g.id, err)
	}
	return scores, nil
}

// record adds a round's scores and reports a winner if there is one
func (g *Game) record(roundScores map[string]int) (string, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.round++
	g.roundScores = append(g.roundScores, roundScores)
	for id, s := range roundScores {
		g.scores[id] += s
	}

	winner, ok := Winner(g.scores, g.target)
	if ok {
		g.over = true
		g.winner = winner
	}
	return winner, ok
}

// Winner returns the player holding the highest score if that score reaches
// target and nobody else shares it
func Winner(scores map[string]int, target int) (string, bool) {
	best, leaders := -1, []string{}
	for id, s := range scores {
		switch {
		case s > best:
			best, leaders = s, []string{id}
		case s == best:
			leaders = append(leaders, id)
		}
	}

	if best < target || len(leaders) != 1 {
		return "", false
	}
	return leaders[0], true
}

func roundSeed(seed *int64, round int) *int64 {
	if seed == nil {
		return nil
	}
	s := *seed + int64(round)
	return &s
}

func (g *Game) Round() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.round
}

// Scores returns a copy of the cumulative scores
func (g *Game) Scores() map[string]int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return copyScores(g.scores)
}

func (g *Game) State() State {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return State{
		GameID:  g.id,
		Players: append([]string(nil), g.order...),
		Round:   g.round,
		Scores:  copyScores(g.scores),
		Over:    g.over,
		Winner:  g.winner,
	}
}

func (g *Game) result() Result {
	g.mu.RLock()
	defer g.mu.RUnlock()

	rounds := make([]map[string]int, len(g.roundScores))
	for i, rs := range g.roundScores {
		rounds[i] = copyScores(rs)
	}
	return Result{
		GameID:      g.id,
		Winner:      g.winner,
		Scores:      copyScores(g.scores),
		Rounds:      g.round,
		RoundScores: rounds,
		Seed:        g.seed,
	}
}

// Standings orders players by score, highest first, ties by name
func Standings(scores map[string]int) []string {
	ids := make([]string, 0, len(scores))
	for id := range scores {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		if scores[ids[i]] != scores[ids[j]] {
			return scores[ids[i]] > scores[ids[j]]
		}
		return ids[i] < ids[j]
	})
	return ids
}

func copyScores(in map[string]int) map[string]int {
	out := make(map[string]int, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

// emitter stamps events with the game id and a running sequence number
type emitter struct {
	gameID string
	sink   protocol.Sink
	seq    int
}

func newEmitter(gameID string, sink protocol.Sink) *emitter {
	if sink == nil {
		sink = protocol.Discard
	}
	return &emitter{gameID: gameID, sink: sink}
}

func (e *emitter) emit(ev protocol.Event) {
	e.seq++
	ev.Seq = e.seq
	ev.GameID = e.gameID
	e.sink.Emit(ev)
}
