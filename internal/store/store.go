package store

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/utakatalp/season-predictor/internal/league"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	dateLayout = "2006-01-02"
)

// Store wraps a SQL connection holding the ranked teams and the results feed.
// Queries are written with ? placeholders and rebound for Postgres.
type Store struct {
	DB     *sql.DB
	driver string
}

// Open connects with the given driver ("postgres" or "sqlite") and verifies
// the connection.
func Open(driver, dsn string) (*Store, error) {
	switch driver {
	case DriverPostgres, DriverSQLite:
	default:
		return nil, fmt.Errorf("unsupported driver %q", driver)
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if driver == DriverSQLite {
		// each connection to :memory: is its own database
		db.SetMaxOpenConns(1)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	return &Store{DB: db, driver: driver}, nil
}

func (s *Store) Close() error {
	return s.DB.Close()
}

// rebind turns ? placeholders into $n for Postgres.
func (s *Store) rebind(q string) string {
	if s.driver != DriverPostgres {
		return q
	}
	var b strings.Builder
	n := 0
	for _, r := range q {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Migrate creates the necessary tables if they do not exist.
func (s *Store) Migrate(ctx context.Context) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS teams (
			id            TEXT PRIMARY KEY,
			name          TEXT NOT NULL,
			age_group     TEXT NOT NULL,
			league        TEXT NOT NULL DEFAULT '',
			power_score   DOUBLE PRECISION,
			offensive     DOUBLE PRECISION,
			defensive     DOUBLE PRECISION,
			gpg           DOUBLE PRECISION,
			gapg          DOUBLE PRECISION,
			wins          INT NOT NULL DEFAULT 0,
			losses        INT NOT NULL DEFAULT 0,
			draws         INT NOT NULL DEFAULT 0,
			goals_for     INT NOT NULL DEFAULT 0,
			goals_against INT NOT NULL DEFAULT 0
		)`,
		`CREATE INDEX IF NOT EXISTS teams_age_group ON teams (age_group)`,
		`CREATE TABLE IF NOT EXISTS games (
			id         TEXT PRIMARY KEY,
			home_team  TEXT NOT NULL,
			away_team  TEXT NOT NULL,
			home_score INT,
			away_score INT,
			game_date  TEXT NOT NULL DEFAULT '',
			league     TEXT NOT NULL DEFAULT '',
			age_group  TEXT NOT NULL,
			conference TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE INDEX IF NOT EXISTS games_age_group ON games (age_group)`,
	}
	for _, q := range queries {
		if _, err := s.DB.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("migrating: %w", err)
		}
	}
	return nil
}

// UpsertTeams inserts teams or replaces their ratings and record.
func (s *Store) UpsertTeams(ctx context.Context, teams []*league.Team) error {
	const q = `
	INSERT INTO teams (id, name, age_group, league, power_score, offensive, defensive,
		gpg, gapg, wins, losses, draws, goals_for, goals_against)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT (id) DO UPDATE SET
		name = excluded.name,
		age_group = excluded.age_group,
		league = excluded.league,
		power_score = excluded.power_score,
		offensive = excluded.offensive,
		defensive = excluded.defensive,
		gpg = excluded.gpg,
		gapg = excluded.gapg,
		wins = excluded.wins,
		losses = excluded.losses,
		draws = excluded.draws,
		goals_for = excluded.goals_for,
		goals_against = excluded.goals_against
	`
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin UpsertTeams tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, s.rebind(q))
	if err != nil {
		return fmt.Errorf("preparing team upsert: %w", err)
	}
	defer stmt.Close()

	for _, t := range teams {
		if _, err := stmt.ExecContext(ctx,
			t.ID, t.Name, t.AgeGroup, t.League,
			nullFloat(t.PowerScore), nullFloat(t.OffensivePowerScore), nullFloat(t.DefensivePowerScore),
			nullFloat(t.GoalsPerGame), nullFloat(t.GoalsAgainstPerGame),
			t.Wins, t.Losses, t.Draws, t.GoalsFor, t.GoalsAgainst,
		); err != nil {
			return fmt.Errorf("upserting team %s (%s): %w", t.ID, t.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit UpsertTeams tx: %w", err)
	}
	return nil
}

// Teams returns the teams of an age group ordered by power score, strongest
// first. An empty age group returns every team.
func (s *Store) Teams(ctx context.Context, ageGroup string) ([]*league.Team, error) {
	q := `
	SELECT id, name, age_group, league, power_score, offensive, defensive,
		gpg, gapg, wins, losses, draws, goals_for, goals_against
	FROM teams`
	var args []any
	if ageGroup != "" {
		q += ` WHERE age_group = ?`
		args = append(args, ageGroup)
	}
	q += ` ORDER BY COALESCE(power_score, 1500) DESC, name ASC`

	rows, err := s.DB.QueryContext(ctx, s.rebind(q), args...)
	if err != nil {
		return nil, fmt.Errorf("querying teams: %w", err)
	}
	defer rows.Close()

	var teams []*league.Team
	for rows.Next() {
		t := &league.Team{}
		var power, off, def, gpg, gapg sql.NullFloat64
		if err := rows.Scan(
			&t.ID,
			&t.Name,
			&t.AgeGroup,
			&t.League,
			&power, &off, &def,
			&gpg, &gapg,
			&t.Wins,
			&t.Losses,
			&t.Draws,
			&t.GoalsFor,
			&t.GoalsAgainst,
		); err != nil {
			return nil, fmt.Errorf("scanning team row: %w", err)
		}
		t.PowerScore = floatPtr(power)
		t.OffensivePowerScore = floatPtr(off)
		t.DefensivePowerScore = floatPtr(def)
		t.GoalsPerGame = floatPtr(gpg)
		t.GoalsAgainstPerGame = floatPtr(gapg)
		teams = append(teams, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating teams rows: %w", err)
	}
	return teams, nil
}

// SaveGames persists games from the results feed. Games without an ID get one.
func (s *Store) SaveGames(ctx context.Context, games []league.Match) error {
	const q = `
	INSERT INTO games (id, home_team, away_team, home_score, away_score, game_date, league, age_group, conference)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT (id) DO UPDATE SET
		home_score = excluded.home_score,
		away_score = excluded.away_score,
		game_date = excluded.game_date,
		conference = excluded.conference
	`
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin SaveGames tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, s.rebind(q))
	if err != nil {
		return fmt.Errorf("preparing game insert: %w", err)
	}
	defer stmt.Close()

	for i := range games {
		g := &games[i]
		if g.ID == "" {
			g.ID = uuid.New().String()
		}
		var date string
		if !g.Date.IsZero() {
			date = g.Date.Format(dateLayout)
		}
		if _, err := stmt.ExecContext(ctx,
			g.ID, g.HomeTeam, g.AwayTeam,
			nullInt(g.HomeScore), nullInt(g.AwayScore),
			date, g.League, g.AgeGroup, g.Conference,
		); err != nil {
			return fmt.Errorf("saving game %s vs %s: %w", g.HomeTeam, g.AwayTeam, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit SaveGames tx: %w", err)
	}
	return nil
}

// Games returns the games of an age group ordered by date. An empty age group
// returns every game.
func (s *Store) Games(ctx context.Context, ageGroup string) ([]league.Match, error) {
	q := `
	SELECT id, home_team, away_team, home_score, away_score, game_date, league, age_group, conference
	FROM games`
	var args []any
	if ageGroup != "" {
		q += ` WHERE age_group = ?`
		args = append(args, ageGroup)
	}
	q += ` ORDER BY game_date, id`

	rows, err := s.DB.QueryContext(ctx, s.rebind(q), args...)
	if err != nil {
		return nil, fmt.Errorf("querying games: %w", err)
	}
	defer rows.Close()

	var games []league.Match
	for rows.Next() {
		var (
			m                    league.Match
			homeScore, awayScore sql.NullInt64
			date                 string
		)
		if err := rows.Scan(
			&m.ID,
			&m.HomeTeam,
			&m.AwayTeam,
			&homeScore,
			&awayScore,
			&date,
			&m.League,
			&m.AgeGroup,
			&m.Conference,
		); err != nil {
			return nil, fmt.Errorf("scanning game row: %w", err)
		}
		m.HomeScore = intPtr(homeScore)
		m.AwayScore = intPtr(awayScore)
		if date != "" {
			d, err := time.Parse(dateLayout, date)
			if err != nil {
				return nil, fmt.Errorf("parsing date of game %s: %w", m.ID, err)
			}
			m.Date = d
		}
		games = append(games, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating games rows: %w", err)
	}
	return games, nil
}

// Reset deletes every game and team.
func (s *Store) Reset(ctx context.Context) error {
	for _, q := range []string{`DELETE FROM games`, `DELETE FROM teams`} {
		if _, err := s.DB.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("resetting store: %w", err)
		}
	}
	return nil
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

func intPtr(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	i := int(v.Int64)
	return &i
}
