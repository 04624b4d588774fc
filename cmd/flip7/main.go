package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"github.com/minaorangina/flip7/config"
	"github.com/minaorangina/flip7/eventlog"
	"github.com/minaorangina/flip7/game"
	"github.com/minaorangina/flip7/match"
	"github.com/minaorangina/flip7/players"
	"github.com/minaorangina/flip7/protocol"
	"github.com/pterm/pterm"
	"github.com/sirupsen/logrus"
)

var defaultBots = []string{"hit17", "scaredy", "random"}

func main() {
	envFile := flag.String("env", "", "env file to load instead of .env")
	tournament := flag.Bool("tournament", false, "play every combination of the bots instead of one match")
	replay := flag.String("replay", "", "print the events of a recorded game and exit")
	list := flag.Bool("list", false, "list the built-in bots and exit")
	human := flag.String("human", "", "join the match yourself under this name")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: flip7 [flags] [kind[:name] ...]\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if *list {
		pterm.Info.Println("built-in bots: " + strings.Join(players.Kinds(), ", "))
		return
	}

	if *replay != "" {
		if err := printReplay(*replay); err != nil {
			pterm.Error.Println(err)
			os.Exit(1)
		}
		return
	}

	var envFiles []string
	if *envFile != "" {
		envFiles = append(envFiles, *envFile)
	}
	cfg, err := config.Load(envFiles...)
	if err != nil {
		pterm.Error.Println(err)
		os.Exit(1)
	}
	logger := cfg.Logger()

	bots := flag.Args()
	if len(bots) == 0 {
		bots = defaultBots
	}
	if *human != "" {
		players.Register("human", func(name string, _ int64) players.Bot {
			return players.NewTerminalBot(name, os.Stdin, os.Stdout)
		})
		bots = append([]string{"human:" + *human}, bots...)
		// one prompt at a time, and the prompt gives up before the sandbox does
		cfg.Workers = 1
		*tournament = false
		cfg.BotTimeout = players.DefaultPromptTimeout + time.Second
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	matches := planMatches(cfg, bots, *tournament, logger)
	if len(matches) == 0 {
		pterm.Error.Printfln("need at least %d bots for a tournament", cfg.PlayersPerGame)
		os.Exit(1)
	}

	pterm.DefaultHeader.Println("Flip Seven")
	pterm.Info.Printfln("%d match(es), best of %d, target %d", len(matches), cfg.BestOf, cfg.TargetScore)

	var results []match.Result
	if *human != "" {
		results, err = match.RunAll(ctx, matches, cfg.Workers)
	} else {
		spinner, _ := pterm.DefaultSpinner.Start("Playing...")
		results, err = match.RunAll(ctx, matches, cfg.Workers)
		if err != nil {
			spinner.Fail(err.Error())
		} else {
			spinner.Success("Done")
		}
	}
	if err != nil {
		pterm.Error.Println(err)
		os.Exit(1)
	}

	for _, r := range results {
		printMatch(r)
	}
	if len(results) > 1 {
		printLeaderboard(match.Leaderboard(results))
	}
}

func planMatches(cfg config.Config, bots []string, tournament bool, logger logrus.FieldLogger) []match.Opts {
	lineups := [][]string{bots}
	if tournament {
		lineups = match.RoundRobin(bots, cfg.PlayersPerGame)
	}

	matches := make([]match.Opts, len(lineups))
	for i, lineup := range lineups {
		opts := cfg.MatchOpts()
		opts.Bots = lineup
		opts.Logger = logger
		if opts.Seed != nil {
			s := *opts.Seed + int64(i)*100000
			opts.Seed = &s
		}
		matches[i] = opts
	}
	return matches
}

func printMatch(r match.Result) {
	winner := r.Winner
	if winner == "" {
		winner = "(no winner)"
	}
	pterm.DefaultSection.Printfln("%s: %s", strings.Join(r.Bots, " vs "), winner)

	data := pterm.TableData{append([]string{"Game", "Rounds", "Winner"}, r.Bots...)}
	for i, g := range r.Games {
		row := []string{strconv.Itoa(i + 1), strconv.Itoa(g.Rounds), g.Winner}
		for _, name := range r.Bots {
			row = append(row, strconv.Itoa(g.Scores[name]))
		}
		data = append(data, row)
	}
	pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}

func printLeaderboard(standings []match.Standing) {
	pterm.DefaultSection.Println("Leaderboard")
	data := pterm.TableData{{"#", "Bot", "Matches", "Match wins", "Games", "Game wins", "Avg score"}}
	for i, s := range standings {
		data = append(data, []string{
			strconv.Itoa(i + 1),
			s.Name,
			strconv.Itoa(s.MatchesPlayed),
			strconv.Itoa(s.MatchWins),
			strconv.Itoa(s.GamesPlayed),
			strconv.Itoa(s.GameWins),
			fmt.Sprintf("%.1f", s.AverageScore),
		})
	}
	pterm.DefaultTable.WithHasHeader().WithData(data).Render()
	if len(standings) > 0 {
		pterm.Success.Printfln("%s tops the table", standings[0].Name)
	}
}

func printReplay(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	events, err := eventlog.ReadAll(f)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	for _, e := range events {
		line := fmt.Sprintf("%4d %-22s", e.Seq, e.Type)
		if e.Round > 0 {
			line += fmt.Sprintf(" r%d", e.Round)
		}
		if e.Player != "" {
			line += " " + e.Player
		}
		if e.Card != nil {
			line += " " + pterm.LightCyan(e.Card.String())
		}
		if e.Action != "" {
			line += " " + e.Action
		}
		if e.Target != "" {
			line += " -> " + e.Target
		}
		if e.Reason != "" {
			line += pterm.FgDarkGray.Sprintf(" (%s)", e.Reason)
		}
		pterm.Println(line)

		switch e.Type {
		case protocol.RoundEnded:
			for _, id := range game.Standings(e.Scores) {
				pterm.Printfln("       %-12s %d", id, e.Scores[id])
			}
		case protocol.GameEnded:
			pterm.Success.Printfln("%s wins", e.Winner)
		}
	}
	return nil
}
