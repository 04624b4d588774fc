package match

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/minaorangina/flip7/eventlog"
	"github.com/minaorangina/flip7/game"
	"github.com/minaorangina/flip7/players"
	"github.com/minaorangina/flip7/protocol"
	"github.com/minaorangina/flip7/store"
	uuid "github.com/satori/go.uuid"
	"github.com/sirupsen/logrus"
)

var (
	ErrBestOf      = errors.New("best of must be a positive odd number")
	ErrTooFewBots  = errors.New("a match needs at least one bot")
	ErrBotSpecName = errors.New("bot names must be unique within a match")
)

// Opts configures a best-of-N match between bots.
// Bots are given as "kind" or "kind:name", see players.ParseBotSpec.
type Opts struct {
	ID          string
	Bots        []string
	BestOf      int
	Seed        *int64
	Timeout     time.Duration
	TargetScore int
	MaxRounds   int
	Store       store.GameStore
	Sink        protocol.Sink
	ReplayDir   string
	Logger      logrus.FieldLogger
}

// Result is the outcome of a match
type Result struct {
	ID     string         `json:"id"`
	Bots   []string       `json:"bots"`
	Winner string         `json:"winner,omitempty"`
	Wins   map[string]int `json:"wins"`
	Games  []game.Result  `json:"games"`
}

// Play runs games until one bot has won a majority of BestOf, or all
// BestOf games have been played
func Play(ctx context.Context, opts Opts) (Result, error) {
	if opts.BestOf < 1 || opts.BestOf%2 == 0 {
		return Result{}, fmt.Errorf("%w: got %d", ErrBestOf, opts.BestOf)
	}
	if len(opts.Bots) == 0 {
		return Result{}, ErrTooFewBots
	}
	if opts.ID == "" {
		opts.ID = uuid.NewV4().String()
	}
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}
	logger := opts.Logger.WithField("match_id", opts.ID)

	names := make([]string, len(opts.Bots))
	seen := map[string]bool{}
	for i, spec := range opts.Bots {
		_, name := players.ParseBotSpec(spec)
		if seen[name] {
			return Result{}, fmt.Errorf("%w: %s", ErrBotSpecName, name)
		}
		seen[name] = true
		names[i] = name
	}

	result := Result{ID: opts.ID, Bots: names, Wins: map[string]int{}}
	needed := opts.BestOf/2 + 1

	for i := 0; i < opts.BestOf; i++ {
		gr, err := playGame(ctx, opts, i, logger)
		if err != nil {
			return result, err
		}
		result.Games = append(result.Games, gr)
		if gr.Winner != "" {
			result.Wins[gr.Winner]++
			if result.Wins[gr.Winner] >= needed {
				result.Winner = gr.Winner
				break
			}
		}
	}

	if result.Winner == "" {
		result.Winner = mostWins(result.Wins)
	}
	logger.WithFields(logrus.Fields{
		"winner": result.Winner,
		"games":  len(result.Games),
	}).Info("match over")

	return result, nil
}

func playGame(ctx context.Context, opts Opts, index int, logger logrus.FieldLogger) (game.Result, error) {
	var seed *int64
	if opts.Seed != nil {
		s := *opts.Seed + int64(index)*1000
		seed = &s
	}

	bots := make([]players.Bot, len(opts.Bots))
	for i, spec := range opts.Bots {
		kind, name := players.ParseBotSpec(spec)
		botSeed := int64(i)
		if seed != nil {
			botSeed += *seed
		} else {
			botSeed += time.Now().UnixNano()
		}
		b, err := players.NewBot(kind, name, botSeed)
		if err != nil {
			return game.Result{}, err
		}
		bots[i] = b
	}

	id := fmt.Sprintf("%s-%d", opts.ID, index+1)
	sinks := []protocol.Sink{opts.Sink}
	if opts.ReplayDir != "" {
		w, err := eventlog.OpenFile(opts.ReplayDir, id, logger)
		if err != nil {
			return game.Result{}, err
		}
		defer w.Close()
		sinks = append(sinks, w)
	}

	g, err := game.NewGame(game.GameOpts{
		ID:          id,
		Bots:        bots,
		Seed:        seed,
		Timeout:     opts.Timeout,
		TargetScore: opts.TargetScore,
		MaxRounds:   opts.MaxRounds,
		Sink:        eventlog.Multi(sinks...),
		Logger:      logger,
		Context:     ctx,
	})
	if err != nil {
		return game.Result{}, err
	}

	if opts.Store != nil {
		if err := opts.Store.AddGame(g); err != nil {
			return game.Result{}, err
		}
	}

	result, err := g.Play()
	if err != nil && !errors.Is(err, game.ErrRoundLimit) {
		return result, err
	}
	if err != nil {
		logger.WithField("game_id", id).Warn("game hit the round limit without a winner")
	}

	if opts.Store != nil {
		if err := opts.Store.FinishGame(result); err != nil {
			return result, err
		}
	}
	return result, nil
}

// mostWins returns the bot with strictly the most wins, or "" on a tie
func mostWins(wins map[string]int) string {
	best, leader, tied := 0, "", false
	for name, w := range wins {
		switch {
		case w > best:
			best, leader, tied = w, name, false
		case w == best:
			tied = true
		}
	}
	if tied {
		return ""
	}
	return leader
}
