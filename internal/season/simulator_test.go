package season

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utakatalp/season-predictor/internal/league"
	"github.com/utakatalp/season-predictor/internal/predict"
)

const age = "G2011"

func groupTeams() []*league.Team {
	mk := func(id, name string, power float64) *league.Team {
		return &league.Team{
			ID:                  id,
			Name:                name,
			AgeGroup:            age,
			PowerScore:          league.Float(power),
			OffensivePowerScore: league.Float(50),
			DefensivePowerScore: league.Float(50),
			GoalsPerGame:        league.Float(1.5),
			GoalsAgainstPerGame: league.Float(1.5),
		}
	}
	return []*league.Team{
		mk("solar", "Solar SC", 1650),
		mk("dallas", "FC Dallas", 1600),
		mk("sting", "Sting Austin", 1500),
		mk("lonestar", "Lonestar SC", 1400),
	}
}

func game(home, away string, scores ...int) league.Match {
	m := league.Match{HomeTeam: home, AwayTeam: away, AgeGroup: age}
	if len(scores) == 2 {
		m.HomeScore, m.AwayScore = league.Int(scores[0]), league.Int(scores[1])
	}
	return m
}

func testPredictor() *predict.Predictor {
	return predict.Default(predict.WithClock(func() time.Time {
		return time.Date(2026, time.October, 19, 0, 0, 0, 0, time.UTC)
	}))
}

func byID(out *Outcome) map[string]Aggregate {
	m := make(map[string]Aggregate, len(out.Teams))
	for _, a := range out.Teams {
		m[a.Team.ID] = a
	}
	return m
}

func TestSimulateSmoke(t *testing.T) {
	completed := []league.Match{
		game("Solar SC G11 Premier", "FC Dallas", 2, 1),
		game("FC Dallas 2011", "Solar SC", 1, 1),
	}
	upcoming := []league.Match{
		game("Solar SC", "Sting Austin"),
		game("Sting Austin", "Lonestar SC"),
		game("Lonestar SC", "FC Dallas"),
	}

	out, err := New(testPredictor()).Simulate(context.Background(), groupTeams(), completed, upcoming, Options{
		Trials: 1000,
		Seed:   42,
	})
	require.NoError(t, err)

	assert.Equal(t, 1000, out.Trials)
	assert.Equal(t, 1000, out.Completed)
	assert.Equal(t, 3, out.Fixtures)
	assert.Zero(t, out.Skipped)
	require.Len(t, out.Teams, 4)

	var champ float64
	for _, a := range out.Teams {
		assert.GreaterOrEqual(t, a.ChampionshipProbability, 0.0)
		assert.LessOrEqual(t, a.ChampionshipProbability, 100.0)
		assert.GreaterOrEqual(t, a.TopThreeProbability, a.ChampionshipProbability)
		assert.GreaterOrEqual(t, a.AveragePosition, 1.0)
		assert.LessOrEqual(t, a.AveragePosition, 4.0)

		total := 0
		for _, c := range a.Positions {
			total += c
		}
		assert.Equal(t, 1000, total, a.Team.Name)
		champ += a.ChampionshipProbability
	}
	assert.InDelta(t, 100.0, champ, 0.1)

	teams := byID(out)
	assert.Equal(t, 2, teams["solar"].Base.Played)
	assert.Equal(t, 4, teams["solar"].Base.Points)
	assert.Equal(t, 1, teams["dallas"].Base.Points)
	assert.Zero(t, teams["sting"].Base.Played)
	assert.Zero(t, teams["lonestar"].Base.Points)

	// each side's remaining fixtures are split between win, draw and loss
	remaining := map[string]float64{"solar": 1, "dallas": 1, "sting": 2, "lonestar": 2}
	for id, n := range remaining {
		a := teams[id]
		assert.InDelta(t, n, a.ExpectedWins+a.ExpectedDraws+a.ExpectedLosses, 1e-9, id)
	}

	for i := 1; i < len(out.Teams); i++ {
		assert.GreaterOrEqual(t, out.Teams[i-1].ChampionshipProbability, out.Teams[i].ChampionshipProbability)
	}
}

func TestSimulateNoFixtures(t *testing.T) {
	teams := groupTeams()
	completed := []league.Match{
		game("Sting Austin", "Solar SC", 3, 0),
		game("Lonestar SC", "FC Dallas", 1, 1),
	}
	base, skipped := BaseStandings(teams, completed, age)
	require.Zero(t, skipped)

	out, err := New(testPredictor()).Simulate(context.Background(), teams, completed, nil, Options{Trials: 250, Seed: 1})
	require.NoError(t, err)
	assert.Equal(t, 250, out.Completed)
	assert.Zero(t, out.Fixtures)

	agg := byID(out)
	for rank, e := range base {
		a := agg[e.Team.ID]
		assert.Equal(t, float64(rank+1), a.AveragePosition, e.Team.Name)
		if rank == 0 {
			assert.Equal(t, 100.0, a.ChampionshipProbability)
		} else {
			assert.Zero(t, a.ChampionshipProbability)
		}
		assert.Equal(t, e.Points, a.Base.Points)
	}
	assert.Equal(t, "sting", base[0].Team.ID)
}

type certainHome struct{}

func (certainHome) Predict(home, away *league.Team) predict.Result {
	return predict.Result{
		Home:               home,
		Away:               away,
		HomeScore:          1,
		AwayScore:          1,
		HomeWinProbability: 1,
	}
}

func TestSimulateCertainOutcome(t *testing.T) {
	teams := groupTeams()[:2]
	upcoming := []league.Match{game("FC Dallas", "Solar SC")}

	out, err := New(certainHome{}).Simulate(context.Background(), teams, nil, upcoming, Options{Trials: 100, Workers: 3, Seed: 9})
	require.NoError(t, err)

	agg := byID(out)
	assert.Equal(t, 100.0, agg["dallas"].ChampionshipProbability)
	assert.Equal(t, 1.0, agg["dallas"].ExpectedWins)
	assert.Equal(t, 1.0, agg["solar"].ExpectedLosses)
	assert.Equal(t, 2.0, agg["solar"].AveragePosition)
	assert.Equal(t, "dallas", out.Teams[0].Team.ID)
}

func TestSimulateReproducible(t *testing.T) {
	upcoming := []league.Match{
		game("Solar SC", "Sting Austin"),
		game("Sting Austin", "Lonestar SC"),
		game("Lonestar SC", "FC Dallas"),
		game("FC Dallas", "Solar SC"),
	}
	opts := Options{Trials: 500, Seed: 2024, Workers: 4}
	sim := New(testPredictor())

	first, err := sim.Simulate(context.Background(), groupTeams(), nil, upcoming, opts)
	require.NoError(t, err)
	second, err := sim.Simulate(context.Background(), groupTeams(), nil, upcoming, opts)
	require.NoError(t, err)

	assert.Equal(t, 500, first.Completed)
	assert.Equal(t, first.Teams, second.Teams)
}

func TestSimulateSkipsMalformedRecords(t *testing.T) {
	completed := []league.Match{
		game("Solar SC", "FC Dallas", 1, 0),
		{HomeTeam: "Sting Austin", AwayTeam: "Lonestar SC", AgeGroup: age, HomeScore: league.Int(2)},
		game("Solar SC", "Solar SC G11", 5, 0),
	}
	upcoming := []league.Match{
		game("Sting Austin", "Somebody Else Entirely"),
		game("Solar SC", "FC Dallas"),
		{HomeTeam: "Solar SC", AwayTeam: "Sting Austin", AgeGroup: "B2011"},
	}

	out, err := New(testPredictor()).Simulate(context.Background(), groupTeams(), completed, upcoming, Options{Trials: 50, Seed: 5})
	require.NoError(t, err)

	assert.Equal(t, 4, out.Skipped)
	assert.Equal(t, 1, out.Fixtures)
	assert.Equal(t, 50, out.Completed)
	assert.Equal(t, 3, byID(out)["solar"].Base.Points)
}

func TestSimulateCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	upcoming := []league.Match{game("Solar SC", "Sting Austin")}
	out, err := New(testPredictor()).Simulate(ctx, groupTeams(), nil, upcoming, Options{Trials: 1000, Seed: 3, Workers: 2})

	require.Error(t, err)
	assert.True(t, IsCancelled(err))
	require.NotNil(t, out)
	assert.Zero(t, out.Completed)
	assert.Equal(t, 1000, out.Trials)
	require.Len(t, out.Teams, 4)
	for _, a := range out.Teams {
		assert.Zero(t, a.ChampionshipProbability)
	}
}

func TestSimulateDedupesTeams(t *testing.T) {
	teams := groupTeams()
	teams = append(teams, teams[0])

	out, err := New(testPredictor()).Simulate(context.Background(), teams, nil, nil, Options{Trials: 10, Seed: 1})
	require.NoError(t, err)
	assert.Len(t, out.Teams, 4)
}
