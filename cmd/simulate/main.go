package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"math/rand"
	"os"
	"text/tabwriter"
	"time"

	"github.com/joho/godotenv"

	"github.com/riskibarqy/fantasy-cricket/internal/config"
	"github.com/riskibarqy/fantasy-cricket/internal/domain/match"
	"github.com/riskibarqy/fantasy-cricket/internal/infrastructure/commentary"
	"github.com/riskibarqy/fantasy-cricket/internal/infrastructure/report"
	"github.com/riskibarqy/fantasy-cricket/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/fantasy-cricket/internal/platform/logging"
)

func main() {
	_ = godotenv.Load()
	logger := logging.NewJSON(logging.ParseLevel(os.Getenv("LOG_LEVEL")))
	defer func() { _ = logger.Sync() }()

	if err := run(os.Args[1:], os.Stdout, logger); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		logger.Error("simulation failed", "error", err)
		os.Exit(1)
	}
}

type options struct {
	team1      string
	team2      string
	overs      int
	seed       int64
	commentary bool
	xlsxPath   string
}

func parseOptions(args []string, defaults config.SimulationConfig) (options, error) {
	fs := flag.NewFlagSet("simulate", flag.ContinueOnError)
	opts := options{}
	fs.StringVar(&opts.team1, "team1", "mum", "home team id from the seeded tournament")
	fs.StringVar(&opts.team2, "team2", "che", "away team id from the seeded tournament")
	fs.IntVar(&opts.overs, "overs", defaults.DefaultOvers, "overs per innings (1-50)")
	fs.Int64Var(&opts.seed, "seed", defaults.Seed, "random seed; 0 picks one from the clock")
	fs.BoolVar(&opts.commentary, "commentary", false, "print ball-by-ball commentary")
	fs.StringVar(&opts.xlsxPath, "xlsx", "", "also write the scorecard workbook to this path")
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	if opts.overs < 1 || opts.overs > match.MaxOvers {
		return options{}, fmt.Errorf("overs must be between 1 and %d", match.MaxOvers)
	}
	if opts.seed == 0 {
		opts.seed = time.Now().UnixNano()
	}
	return opts, nil
}

func run(args []string, out io.Writer, logger *logging.Logger) error {
	defaults, err := config.LoadSimulation()
	if err != nil {
		return err
	}
	opts, err := parseOptions(args, defaults)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	t := memory.SeedTournaments(now)[0]
	home, ok := t.TeamByID(opts.team1)
	if !ok {
		return fmt.Errorf("unknown team %q", opts.team1)
	}
	away, ok := t.TeamByID(opts.team2)
	if !ok {
		return fmt.Errorf("unknown team %q", opts.team2)
	}

	fixture, err := match.New(match.NewInput{
		ID:           fmt.Sprintf("exhibition-%s-vs-%s", home.ID, away.ID),
		TournamentID: t.ID,
		MatchType:    "exhibition",
		Team1:        home.TeamRef(),
		Team2:        away.TeamRef(),
		Overs:        opts.overs,
		ScheduledAt:  now,
	}, now)
	if err != nil {
		return err
	}

	rng := rand.New(rand.NewSource(opts.seed))
	lines := commentary.NewGenerator(opts.seed)
	started, err := match.Start(fixture, match.ResolveToss(rng, fixture), lines, now)
	if err != nil {
		return err
	}
	finished, err := match.SimulateToCompletion(started, match.NewSampler(rng), lines, nil)
	if err != nil {
		return err
	}
	logger.Info("exhibition simulated", "match_id", finished.ID, "seed", opts.seed, "result", finished.Result)

	printScorecard(out, finished, opts)

	if opts.xlsxPath != "" {
		raw, err := report.ScorecardWorkbook(finished)
		if err != nil {
			return err
		}
		if err := os.WriteFile(opts.xlsxPath, raw, 0o644); err != nil {
			return fmt.Errorf("write scorecard workbook: %w", err)
		}
		logger.Info("scorecard workbook written", "path", opts.xlsxPath)
	}
	return nil
}

func printScorecard(out io.Writer, m match.Match, opts options) {
	fmt.Fprintf(out, "%s v %s (%d overs, seed %d)\n", m.Team1.Name, m.Team2.Name, m.Overs, opts.seed)
	fmt.Fprintf(out, "Toss: %s chose to %s\n\n", teamName(m, m.TossWinnerID), m.TossDecision)

	for _, team := range []match.TeamRef{m.Team1, m.Team2} {
		board, _ := m.ScoreFor(team.ID)
		fmt.Fprintf(out, "%s  %d/%d (%.1f ov, extras %d)\n", team.Name, board.Score, board.Wickets, board.Overs, board.Extras)

		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "  Batter\t\tR\tB\t4s\t6s")
		for _, card := range board.Batting {
			status := "not out"
			if card.IsOut {
				status = "out"
			}
			fmt.Fprintf(tw, "  %s\t%s\t%d\t%d\t%d\t%d\n", card.PlayerID, status, card.Runs, card.Balls, card.Fours, card.Sixes)
		}
		_ = tw.Flush()

		opponent, _ := m.ScoreFor(m.OpponentOf(team.ID))
		tw = tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "  Bowler\tO\tR\tW")
		for _, card := range opponent.Bowling {
			fmt.Fprintf(tw, "  %s\t%.1f\t%d\t%d\n", card.PlayerID, card.Overs, card.RunsConceded, card.Wickets)
		}
		_ = tw.Flush()
		fmt.Fprintln(out)
	}

	fmt.Fprintf(out, "Result: %s\n", m.Result)

	if opts.commentary {
		fmt.Fprintln(out)
		for _, entry := range m.Commentary {
			fmt.Fprintf(out, "[%d] %d.%d %s\n", entry.Innings, entry.Over, entry.Ball, entry.Text)
		}
	}
}

func teamName(m match.Match, teamID string) string {
	if team, ok := m.TeamByID(teamID); ok {
		return team.Name
	}
	return teamID
}
