package league

import (
	"strings"
	"time"
)

// Team represents a ranked club in one age group.
// Nil rating pointers mean the ranking process had nothing to report.
type Team struct {
	ID                  string   `json:"id"`
	Name                string   `json:"name"`
	AgeGroup            string   `json:"ageGroup"`
	League              string   `json:"league,omitempty"`
	PowerScore          *float64 `json:"powerScore,omitempty"`
	OffensivePowerScore *float64 `json:"offensivePowerScore,omitempty"`
	DefensivePowerScore *float64 `json:"defensivePowerScore,omitempty"`
	GoalsPerGame        *float64 `json:"goalsPerGame,omitempty"`
	GoalsAgainstPerGame *float64 `json:"goalsAgainstPerGame,omitempty"`
	Wins                int      `json:"wins"`
	Losses              int      `json:"losses"`
	Draws               int      `json:"draws"`
	GoalsFor            int      `json:"goalsFor"`
	GoalsAgainst        int      `json:"goalsAgainst"`
	IsUnranked          bool     `json:"isUnranked,omitempty"`
}

// Match represents a fixture between two teams as delivered by the results feed.
// Scores are nil for upcoming games. Home and Away are set once the free-text
// names have been resolved.
type Match struct {
	ID         string    `json:"id,omitempty"`
	HomeTeam   string    `json:"homeTeam"`
	AwayTeam   string    `json:"awayTeam"`
	HomeScore  *int      `json:"homeScore,omitempty"`
	AwayScore  *int      `json:"awayScore,omitempty"`
	Date       time.Time `json:"date"`
	League     string    `json:"league,omitempty"`
	AgeGroup   string    `json:"ageGroup"`
	Conference string    `json:"conference,omitempty"`

	Home *Team `json:"-"`
	Away *Team `json:"-"`
}

// Completed reports whether both scores are present.
func (m *Match) Completed() bool {
	return m.HomeScore != nil && m.AwayScore != nil
}

// Result is a resolved scoreline ready to be folded into standings.
type Result struct {
	Home, Away *Team
	HomeGoals  int
	AwayGoals  int
}

// TableEntry holds the standings info for one team.
type TableEntry struct {
	Team                        *Team `json:"team"`
	Played, Wins, Draws, Losses int
	GoalsFor, GoalsAgainst      int
	Points                      int
}

// GoalDiff is goals for minus goals against.
func (e TableEntry) GoalDiff() int {
	return e.GoalsFor - e.GoalsAgainst
}

// PointsPerGame is zero for a team that has not played.
func (e TableEntry) PointsPerGame() float64 {
	if e.Played == 0 {
		return 0
	}
	return float64(e.Points) / float64(e.Played)
}

var eventMarkers = []string{
	"national",
	"showcase",
	"playoff",
	"cup",
	"championship",
	"regional event",
}

// IsEventGame reports whether a conference label belongs to a tournament or
// showcase rather than regular league play.
func IsEventGame(conference string) bool {
	c := strings.ToLower(conference)
	for _, marker := range eventMarkers {
		if strings.Contains(c, marker) {
			return true
		}
	}
	return false
}

// ConferenceGames keeps league-play matches of the given conference.
// An empty conference keeps every league-play match.
func ConferenceGames(matches []Match, conference string) []Match {
	conference = strings.TrimSpace(conference)
	out := make([]Match, 0, len(matches))
	for _, m := range matches {
		if IsEventGame(m.Conference) {
			continue
		}
		if conference != "" && !strings.EqualFold(strings.TrimSpace(m.Conference), conference) {
			continue
		}
		out = append(out, m)
	}
	return out
}

// Float returns a pointer to v, for building optional rating fields.
func Float(v float64) *float64 { return &v }

// Int returns a pointer to v, for building scores.
func Int(v int) *int { return &v }

// SplitGames separates completed games from upcoming ones. A game with only
// one score counts as completed so that it is reported as malformed rather
// than simulated.
func SplitGames(games []Match) (completed, upcoming []Match) {
	for _, g := range games {
		if g.HomeScore != nil || g.AwayScore != nil {
			completed = append(completed, g)
		} else {
			upcoming = append(upcoming, g)
		}
	}
	return completed, upcoming
}
