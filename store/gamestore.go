package store

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/minaorangina/flip7/game"
)

var (
	ErrUnknownGameID   = errors.New("unknown game ID")
	ErrDuplicateGameID = errors.New("game ID already exists")
	ErrNilGame         = errors.New("game is nil")
)

type GameStore interface {
	AddGame(g *game.Game) error
	FindGame(gameID string) *game.Game
	FinishGame(result game.Result) error
	FindResult(gameID string) (game.Result, bool)
	Games() []game.State
	Results() []game.Result
}

// InMemoryGameStore maps game id to running games and their results
type InMemoryGameStore struct {
	mu      sync.RWMutex
	games   map[string]*game.Game
	results map[string]game.Result
	order   []string
}

// NewInMemoryGameStore constructs an InMemoryGameStore
func NewInMemoryGameStore() *InMemoryGameStore {
	return &InMemoryGameStore{
		games:   map[string]*game.Game{},
		results: map[string]game.Result{},
	}
}

func (s *InMemoryGameStore) AddGame(g *game.Game) error {
	if g == nil {
		return ErrNilGame
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.games[g.ID()]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateGameID, g.ID())
	}
	s.games[g.ID()] = g
	s.order = append(s.order, g.ID())
	return nil
}

func (s *InMemoryGameStore) FindGame(gameID string) *game.Game {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.games[gameID]
}

// FinishGame records the result of a game previously added
func (s *InMemoryGameStore) FinishGame(result game.Result) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.games[result.GameID]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownGameID, result.GameID)
	}
	s.results[result.GameID] = result
	return nil
}

func (s *InMemoryGameStore) FindResult(gameID string) (game.Result, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.results[gameID]
	return r, ok
}

// Games lists the state of every game in the order they were added
func (s *InMemoryGameStore) Games() []game.State {
	s.mu.RLock()
	defer s.mu.RUnlock()

	states := make([]game.State, 0, len(s.order))
	for _, id := range s.order {
		states = append(states, s.games[id].State())
	}
	return states
}

// Results lists finished games, ordered by game id
func (s *InMemoryGameStore) Results() []game.Result {
	s.mu.RLock()
	defer s.mu.RUnlock()

	results := make([]game.Result, 0, len(s.results))
	for _, r := range s.results {
		results = append(results, r)
	}
	sort.Slice(results, func(i, j int) bool { return results[i].GameID < results[j].GameID })
	return results
}
