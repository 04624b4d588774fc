package match

import (
	"context"
	"fmt"
	"sort"

	"golang.org/x/sync/errgroup"
)

// RoundRobin lists every combination of size bots, keeping the input order
// within each matchup
func RoundRobin(bots []string, size int) [][]string {
	if size < 1 || size > len(bots) {
		return nil
	}

	var matchups [][]string
	var pick func(start int, chosen []string)
	pick = func(start int, chosen []string) {
		if len(chosen) == size {
			matchups = append(matchups, append([]string(nil), chosen...))
			return
		}
		for i := start; i < len(bots); i++ {
			pick(i+1, append(chosen, bots[i]))
		}
	}
	pick(0, nil)

	return matchups
}

// RunAll plays matches in parallel on at most workers goroutines.
// Matches share nothing but the store and sink given in their options.
// The first failure cancels the remaining matches.
func RunAll(ctx context.Context, matches []Opts, workers int) ([]Result, error) {
	if workers < 1 {
		workers = 1
	}

	results := make([]Result, len(matches))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i := range matches {
		i := i
		g.Go(func() error {
			r, err := Play(ctx, matches[i])
			if err != nil {
				return fmt.Errorf("match %d: %w", i+1, err)
			}
			results[i] = r
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}

// Standing is one bot's record across a set of matches
type Standing struct {
	Name          string  `json:"name"`
	MatchesPlayed int     `json:"matchesPlayed"`
	MatchWins     int     `json:"matchWins"`
	GamesPlayed   int     `json:"gamesPlayed"`
	GameWins      int     `json:"gameWins"`
	TotalScore    int     `json:"totalScore"`
	AverageScore  float64 `json:"averageScore"`
}

// Leaderboard ranks bots by match wins, then game wins, then average score
func Leaderboard(results []Result) []Standing {
	byName := map[string]*Standing{}
	get := func(name string) *Standing {
		s, ok := byName[name]
		if !ok {
			s = &Standing{Name: name}
			byName[name] = s
		}
		return s
	}

	for _, r := range results {
		for _, name := range r.Bots {
			get(name).MatchesPlayed++
		}
		if r.Winner != "" {
			get(r.Winner).MatchWins++
		}
		for _, gr := range r.Games {
			for name, score := range gr.Scores {
				s := get(name)
				s.GamesPlayed++
				s.TotalScore += score
			}
			if gr.Winner != "" {
				get(gr.Winner).GameWins++
			}
		}
	}

	standings := make([]Standing, 0, len(byName))
	for _, s := range byName {
		if s.GamesPlayed > 0 {
			s.AverageScore = float64(s.TotalScore) / float64(s.GamesPlayed)
		}
		standings = append(standings, *s)
	}

	sort.Slice(standings, func(i, j int) bool {
		a, b := standings[i], standings[j]
		if a.MatchWins != b.MatchWins {
			return a.MatchWins > b.MatchWins
		}
		if a.GameWins != b.GameWins {
			return a.GameWins > b.GameWins
		}
		if a.AverageScore != b.AverageScore {
			return a.AverageScore > b.AverageScore
		}
		return a.Name < b.Name
	})
	return standings
}
