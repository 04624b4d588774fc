package game

import (
	"context"
	"fmt"
	"time"

	"github.com/minaorangina/flip7/deck"
	"github.com/minaorangina/flip7/players"
	"github.com/minaorangina/flip7/protocol"
	"github.com/sirupsen/logrus"
)

// Phase is the round-level stage
type Phase int

const (
	Dealing Phase = iota
	TurnCycle
	Scoring
	Cleanup
	Done
)

var phaseNames = []string{"dealing", "turn cycle", "scoring", "cleanup", "done"}

func (p Phase) String() string {
	return phaseNames[p]
}

// RoundOpts configures a single round.
// Draw and Discard belong to the enclosing game and outlive the round.
type RoundOpts struct {
	Number           int
	GameID           string
	Bots             []players.Bot
	Draw             *deck.Pile
	Discard          *[]deck.Card
	Seed             *int64
	Timeout          time.Duration
	CumulativeScores map[string]int
	TargetScore      int
	// CardTotal is the number of cards in circulation, deck.Size unless set
	CardTotal int
	Sink      protocol.Sink
	Logger    logrus.FieldLogger
	Context   context.Context

	events *emitter
}

// Round drives one round of play from the deal to cleanup
type Round struct {
	number     int
	gameID     string
	order      []string
	tableaus   map[string]*Tableau
	sandboxes  map[string]*players.Sandbox
	draw       *deck.Pile
	discard    *[]deck.Card
	seed       *int64
	cardTotal  int
	inFlight   int
	cumulative map[string]int
	target     int
	phase      Phase
	next       int
	scores     map[string]ScoreBreakdown
	events     *emitter
	logger     logrus.FieldLogger
	ctx        context.Context
}

// NewRound validates opts and creates a fresh tableau per bot
func NewRound(opts RoundOpts) (*Round, error) {
	if len(opts.Bots) == 0 {
		return nil, ErrNoPlayers
	}
	if opts.Draw == nil || opts.Discard == nil {
		return nil, ErrNilPiles
	}

	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}
	if opts.Context == nil {
		opts.Context = context.Background()
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.TargetScore == 0 {
		opts.TargetScore = WinningScore
	}
	if opts.CardTotal == 0 {
		opts.CardTotal = deck.Size
	}
	if opts.events == nil {
		opts.events = newEmitter(opts.GameID, opts.Sink)
	}

	logger := opts.Logger.WithFields(logrus.Fields{
		"game_id": opts.GameID,
		"round":   opts.Number,
	})

	r := &Round{
		number:     opts.Number,
		gameID:     opts.GameID,
		tableaus:   map[string]*Tableau{},
		sandboxes:  map[string]*players.Sandbox{},
		draw:       opts.Draw,
		discard:    opts.Discard,
		seed:       opts.Seed,
		cardTotal:  opts.CardTotal,
		cumulative: map[string]int{},
		target:     opts.TargetScore,
		phase:      Dealing,
		events:     opts.events,
		logger:     logger,
		ctx:        opts.Context,
	}

	for _, b := range opts.Bots {
		id := b.Name()
		if id == "" {
			return nil, ErrUnnamedBot
		}
		if _, exists := r.tableaus[id]; exists {
			return nil, fmt.Errorf("%w: %s", ErrDuplicatePlayer, id)
		}
		r.order = append(r.order, id)
		r.tableaus[id] = NewTableau(id)
		r.sandboxes[id] = players.NewSandbox(b, opts.Timeout, logger)
		r.cumulative[id] = opts.CumulativeScores[id]
	}

	if err := r.checkConservation(); err != nil {
		return nil, err
	}

	return r, nil
}

func (r *Round) Number() int { return r.number }
func (r *Round) Phase() Phase { return r.phase }
func (r *Round) Order() []string {
	return append([]string(nil), r.order...)
}

// Tableau returns the live tableau for a player
func (r *Round) Tableau(playerID string) (*Tableau, error) {
	t, ok := r.tableaus[playerID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPlayer, playerID)
	}
	return t, nil
}

// Play runs every phase and returns the final round scores
func (r *Round) Play() (map[string]int, error) {
	if err := r.Deal(); err != nil {
		return nil, err
	}

	for {
		id, ok := r.NextActive()
		if !ok {
			break
		}
		if err := r.ctx.Err(); err != nil {
			return nil, fmt.Errorf("round %d: %w", r.number, err)
		}
		if err := r.takeTurn(id); err != nil {
			return nil, err
		}
	}

	breakdowns, err := r.Score()
	if err != nil {
		return nil, err
	}
	if err := r.Cleanup(); err != nil {
		return nil, err
	}

	return finals(breakdowns), nil
}

// Deal gives one card to each player in turn order.
// Players already terminated by an earlier deal are skipped.
func (r *Round) Deal() error {
	if err := r.expectPhase(Dealing); err != nil {
		return err
	}

	r.logger.Debug("dealing")
	r.events.emit(protocol.Event{Type: protocol.RoundStarted, Round: r.number})

	for _, id := range r.order {
		if !r.tableaus[id].Active() {
			continue
		}
		c, err := r.drawCard()
		if err != nil {
			return err
		}
		r.events.emit(protocol.Event{Type: protocol.CardDealt, Round: r.number, Player: id, Card: c})
		if err := r.place(id, c); err != nil {
			return err
		}
	}

	r.phase = TurnCycle
	return nil
}

// NextActive returns the next player, in circular turn order, still taking turns
func (r *Round) NextActive() (string, bool) {
	for i := 0; i < len(r.order); i++ {
		id := r.order[(r.next+i)%len(r.order)]
		if r.tableaus[id].Active() {
			return id, true
		}
	}
	return "", false
}

// Hit draws a card for an active player
func (r *Round) Hit(playerID string) error {
	t, err := r.turnOf(playerID)
	if err != nil {
		return err
	}

	c, err := r.drawCard()
	if err != nil {
		return err
	}
	r.events.emit(protocol.Event{Type: protocol.PlayerHit, Round: r.number, Player: t.PlayerID, Card: c})
	return r.place(t.PlayerID, c)
}

// Pass ends an active player's round, keeping their hand
func (r *Round) Pass(playerID string) error {
	t, err := r.turnOf(playerID)
	if err != nil {
		return err
	}

	if err := t.pass(); err != nil {
		return err
	}
	r.events.emit(protocol.Event{Type: protocol.PlayerPassed, Round: r.number, Player: t.PlayerID})
	return nil
}

// Score computes every breakdown once no player is active
func (r *Round) Score() (map[string]ScoreBreakdown, error) {
	if r.phase == TurnCycle {
		if _, active := r.NextActive(); !active {
			r.phase = Scoring
		}
	}
	if err := r.expectPhase(Scoring); err != nil {
		return nil, err
	}

	r.scores = map[string]ScoreBreakdown{}
	for _, id := range r.order {
		r.scores[id] = Score(r.tableaus[id])
	}

	r.phase = Cleanup
	return r.scores, nil
}

// Cleanup moves every held card to the discard pile
func (r *Round) Cleanup() error {
	if err := r.expectPhase(Cleanup); err != nil {
		return err
	}

	for _, id := range r.order {
		*r.discard = append(*r.discard, r.tableaus[id].collect()...)
	}
	if err := r.checkConservation(); err != nil {
		return err
	}

	r.phase = Done
	r.events.emit(protocol.Event{Type: protocol.RoundEnded, Round: r.number, Scores: finals(r.scores)})
	r.logger.WithField("scores", finals(r.scores)).Debug("round over")
	return nil
}

func (r *Round) expectPhase(p Phase) error {
	if r.phase != p {
		return fmt.Errorf("%w: round is %s, not %s", ErrWrongPhase, r.phase, p)
	}
	return nil
}

// turnOf checks the preconditions shared by Hit and Pass and moves the
// turn pointer past the player
func (r *Round) turnOf(playerID string) (*Tableau, error) {
	if err := r.expectPhase(TurnCycle); err != nil {
		return nil, err
	}
	t, err := r.Tableau(playerID)
	if err != nil {
		return nil, err
	}
	if err := t.mustBeActive(); err != nil {
		return nil, err
	}

	for i, id := range r.order {
		if id == playerID {
			r.next = (i + 1) % len(r.order)
		}
	}
	return t, nil
}

func (r *Round) takeTurn(id string) error {
	o := r.sandboxes[id].HitOrPass(r.ctx, r.contextFor(id))
	if !o.OK() {
		r.events.emit(protocol.Event{Type: protocol.DecisionTimedOut, Round: r.number, Player: id, Reason: "hit_or_pass " + o.Status.String()})
		return r.bustOnTimeout(id)
	}

	// anything other than an explicit pass counts as a hit
	if o.Value == protocol.Pass {
		return r.Pass(id)
	}
	if o.Value != protocol.Hit {
		r.logger.WithField("player", id).Warnf("malformed decision %d treated as hit", int(o.Value))
	}
	return r.Hit(id)
}

func (r *Round) bustOnTimeout(id string) error {
	t, err := r.turnOf(id)
	if err != nil {
		return err
	}
	if err := t.bust(); err != nil {
		return err
	}
	r.events.emit(protocol.Event{Type: protocol.PlayerBusted, Round: r.number, Player: id, Reason: "timeout"})
	return nil
}

// drawCard takes the front card, reshuffling the discard pile into a new
// draw pile when needed. The card stays in flight until it is placed.
func (r *Round) drawCard() (deck.Card, error) {
	if r.draw.Len() == 0 {
		if len(*r.discard) == 0 {
			return nil, fmt.Errorf("round %d: %w", r.number, ErrDeckExhausted)
		}
		r.draw.Refill(deck.Shuffle(*r.discard, r.seed))
		*r.discard = (*r.discard)[:0]
		r.events.emit(protocol.Event{Type: protocol.DeckReshuffled, Round: r.number})
		r.logger.WithField("cards", r.draw.Len()).Debug("reshuffled discard pile")
	}

	c, _ := r.draw.Draw()
	r.inFlight++
	if err := r.checkConservation(); err != nil {
		return nil, err
	}
	return c, nil
}

// landed marks an in-flight card as placed in a tableau
func (r *Round) landed() {
	r.inFlight--
}

// discardDrawn sends an in-flight card straight to the discard pile
func (r *Round) discardDrawn(c deck.Card) {
	*r.discard = append(*r.discard, c)
	r.inFlight--
}

func (r *Round) checkConservation() error {
	total := r.draw.Len() + len(*r.discard) + r.inFlight
	for _, t := range r.tableaus {
		total += t.HeldCount()
	}
	if total != r.cardTotal {
		return fmt.Errorf("%w: counted %d cards, want %d", ErrConservation, total, r.cardTotal)
	}
	return nil
}

// contextFor builds a fresh snapshot for a bot decision
func (r *Round) contextFor(id string) protocol.DecisionContext {
	opponents := map[string]protocol.TableauView{}
	for _, other := range r.order {
		if other != id {
			opponents[other] = r.tableaus[other].View()
		}
	}

	cumulative := make(map[string]int, len(r.cumulative))
	for k, v := range r.cumulative {
		cumulative[k] = v
	}

	return protocol.DecisionContext{
		GameID:           r.gameID,
		Round:            r.number,
		Self:             r.tableaus[id].View(),
		Opponents:        opponents,
		DeckRemaining:    r.draw.Len(),
		CumulativeScores: cumulative,
		TargetScore:      r.target,
	}
}

func finals(breakdowns map[string]ScoreBreakdown) map[string]int {
	out := make(map[string]int, len(breakdowns))
	for id, b := range breakdowns {
		out[id] = b.Final
	}
	return out
}
