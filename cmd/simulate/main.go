package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/utakatalp/season-predictor/internal/config"
	"github.com/utakatalp/season-predictor/internal/league"
	"github.com/utakatalp/season-predictor/internal/names"
	"github.com/utakatalp/season-predictor/internal/season"
	"github.com/utakatalp/season-predictor/internal/store"
	"github.com/utakatalp/season-predictor/internal/telemetry"
)

func main() {
	var (
		teamsPath  = flag.String("teams", "", "JSON file with the team collection")
		gamesPath  = flag.String("games", "", "JSON file with completed and upcoming games")
		useDB      = flag.Bool("db", false, "read teams and games from DATABASE_URL instead of files")
		ageGroup   = flag.String("age", "", "age group to simulate")
		conference = flag.String("conference", "", "restrict to one conference's league games")
		trials     = flag.Int("trials", 0, "number of trials (default from tuning)")
		seed       = flag.Uint64("seed", 0, "random seed (0 = clock)")
		workers    = flag.Int("workers", 1, "parallel trial workers")
		matchup    = flag.String("predict", "", `predict one game instead: "Home|Away"`)
	)
	flag.Parse()

	cfg := config.Load()
	telemetry.Init(telemetry.ParseLogLevel(cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, cfg, *teamsPath, *gamesPath, *useDB, *ageGroup, *conference, *trials, *seed, *workers, *matchup); err != nil {
		telemetry.Errorf("%v", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, teamsPath, gamesPath string, useDB bool, ageGroup, conference string, trials int, seed uint64, workers int, matchup string) error {
	tuning, err := config.LoadTuning(cfg.TuningPath)
	if err != nil {
		return err
	}
	predictor, err := tuning.Predictor()
	if err != nil {
		return err
	}

	teams, games, err := loadInputs(ctx, cfg, teamsPath, gamesPath, useDB, ageGroup)
	if err != nil {
		return err
	}

	if matchup != "" {
		home, away, ok := strings.Cut(matchup, "|")
		if !ok {
			return fmt.Errorf("predict wants \"Home|Away\", got %q", matchup)
		}
		ix := names.NewIndex(teams, names.WithUnrankedRating(tuning.UnrankedRating))
		p := predictor.Predict(ix.Resolve(home, ageGroup), ix.Resolve(away, ageGroup))
		fmt.Printf("%s %d - %d %s\n", p.Home.Name, p.HomeScore, p.AwayScore, p.Away.Name)
		fmt.Printf("xG %.2f - %.2f | home %.1f%% draw %.1f%% away %.1f%% | confidence %s\n",
			p.HomeExpectedGoals, p.AwayExpectedGoals,
			p.HomeWinProbability*100, p.DrawProbability*100, p.AwayWinProbability*100,
			p.Confidence)
		return nil
	}

	games = league.ConferenceGames(games, conference)
	completed, upcoming := league.SplitGames(games)
	if trials <= 0 {
		trials = tuning.Trials
	}

	table, _ := season.BaseStandings(teams, completed, ageGroup)
	league.PrintTable(os.Stdout, "Current standings", table)
	fmt.Println()

	out, err := season.New(predictor).Simulate(ctx, teams, completed, upcoming, season.Options{
		Trials:   trials,
		Seed:     seed,
		Workers:  workers,
		AgeGroup: ageGroup,
	})
	if err != nil && !season.IsCancelled(err) {
		return err
	}
	season.PrintOdds(os.Stdout, fmt.Sprintf("Projection for %s", ageGroup), out)
	if err != nil {
		fmt.Printf("\ninterrupted after %s of %s trials\n", humanize.Comma(int64(out.Completed)), humanize.Comma(int64(out.Trials)))
	}
	return nil
}

func loadInputs(ctx context.Context, cfg *config.Config, teamsPath, gamesPath string, useDB bool, ageGroup string) ([]*league.Team, []league.Match, error) {
	if useDB {
		st, err := store.Open(cfg.DatabaseDriver, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		defer st.Close()
		teams, err := st.Teams(ctx, ageGroup)
		if err != nil {
			return nil, nil, err
		}
		games, err := st.Games(ctx, ageGroup)
		if err != nil {
			return nil, nil, err
		}
		return teams, games, nil
	}

	var teams []*league.Team
	if err := readJSON(teamsPath, &teams); err != nil {
		return nil, nil, err
	}
	var games []league.Match
	if gamesPath != "" {
		if err := readJSON(gamesPath, &games); err != nil {
			return nil, nil, err
		}
	}
	if ageGroup != "" {
		teams = filterTeams(teams, ageGroup)
		games = filterGames(games, ageGroup)
	}
	return teams, games, nil
}

func readJSON(path string, v any) error {
	if path == "" {
		return fmt.Errorf("missing input file")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

func filterTeams(teams []*league.Team, ageGroup string) []*league.Team {
	out := teams[:0]
	for _, t := range teams {
		if t.AgeGroup == ageGroup {
			out = append(out, t)
		}
	}
	return out
}

func filterGames(games []league.Match, ageGroup string) []league.Match {
	out := games[:0]
	for _, g := range games {
		if g.AgeGroup == ageGroup || g.AgeGroup == "" {
			out = append(out, g)
		}
	}
	return out
}
