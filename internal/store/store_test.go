package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utakatalp/season-predictor/internal/league"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(DriverSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := Open("mysql", "")
	assert.Error(t, err)
}

func TestTeamsRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := setupTestStore(t)

	teams := []*league.Team{
		{ID: "dallas", Name: "FC Dallas", AgeGroup: "G2011", PowerScore: league.Float(1600), GoalsPerGame: league.Float(2.1), GoalsAgainstPerGame: league.Float(0.9), Wins: 8, Losses: 2},
		{ID: "solar", Name: "Solar SC", AgeGroup: "G2011", League: "ECNL", PowerScore: league.Float(1700), OffensivePowerScore: league.Float(61), DefensivePowerScore: league.Float(58)},
		{ID: "new", Name: "Brand New FC", AgeGroup: "G2011"},
		{ID: "other", Name: "Solar SC", AgeGroup: "G2012", PowerScore: league.Float(1800)},
	}
	require.NoError(t, s.UpsertTeams(ctx, teams))

	got, err := s.Teams(ctx, "G2011")
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, []string{"solar", "dallas", "new"}, []string{got[0].ID, got[1].ID, got[2].ID})
	assert.Equal(t, teams[1], got[0])
	assert.Equal(t, teams[0], got[1])
	assert.Nil(t, got[2].PowerScore, "missing ratings stay missing")
	assert.Nil(t, got[2].GoalsPerGame)

	all, err := s.Teams(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 4)
}

func TestUpsertTeamsUpdates(t *testing.T) {
	ctx := context.Background()
	s := setupTestStore(t)

	team := &league.Team{ID: "solar", Name: "Solar SC", AgeGroup: "G2011", PowerScore: league.Float(1700)}
	require.NoError(t, s.UpsertTeams(ctx, []*league.Team{team}))

	team.PowerScore = league.Float(1725)
	team.Wins = 3
	require.NoError(t, s.UpsertTeams(ctx, []*league.Team{team}))

	got, err := s.Teams(ctx, "G2011")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 1725.0, *got[0].PowerScore)
	assert.Equal(t, 3, got[0].Wins)
}

func TestGamesRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := setupTestStore(t)

	games := []league.Match{
		{ID: "g2", HomeTeam: "Sting Austin", AwayTeam: "Solar SC", Date: time.Date(2026, 11, 2, 0, 0, 0, 0, time.UTC), AgeGroup: "G2011", Conference: "Texas"},
		{HomeTeam: "Solar SC", AwayTeam: "FC Dallas", HomeScore: league.Int(2), AwayScore: league.Int(0), Date: time.Date(2026, 9, 14, 0, 0, 0, 0, time.UTC), AgeGroup: "G2011", League: "ECNL", Conference: "Texas"},
		{ID: "g3", HomeTeam: "Elsewhere", AwayTeam: "Somewhere", AgeGroup: "B2010"},
	}
	require.NoError(t, s.SaveGames(ctx, games))
	require.NotEmpty(t, games[1].ID, "missing IDs are assigned")

	got, err := s.Games(ctx, "G2011")
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, games[1], got[0])
	assert.Equal(t, games[0], got[1])
	assert.True(t, got[0].Completed())
	assert.False(t, got[1].Completed())

	// a result arriving later updates the stored fixture
	games[0].HomeScore, games[0].AwayScore = league.Int(1), league.Int(1)
	require.NoError(t, s.SaveGames(ctx, games[:1]))
	got, err = s.Games(ctx, "G2011")
	require.NoError(t, err)
	assert.True(t, got[1].Completed())
}

func TestReset(t *testing.T) {
	ctx := context.Background()
	s := setupTestStore(t)

	require.NoError(t, s.UpsertTeams(ctx, []*league.Team{{ID: "a", Name: "A", AgeGroup: "G2011"}}))
	require.NoError(t, s.SaveGames(ctx, []league.Match{{HomeTeam: "A", AwayTeam: "B", AgeGroup: "G2011"}}))
	require.NoError(t, s.Reset(ctx))

	teams, err := s.Teams(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, teams)
	games, err := s.Games(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, games)
}

func TestRebind(t *testing.T) {
	pg := &Store{driver: DriverPostgres}
	assert.Equal(t, "a = $1 AND b = $2", pg.rebind("a = ? AND b = ?"))

	lite := &Store{driver: DriverSQLite}
	assert.Equal(t, "a = ?", lite.rebind("a = ?"))
}
