package league

import (
	"fmt"
	"io"
	"maps"
	"sort"
)

// Standings maps a team ID to its accumulated table entry.
type Standings map[string]TableEntry

// Fold accumulates results into a fresh Standings. The order of results does
// not affect the outcome.
func Fold(results []Result) Standings {
	s := make(Standings)
	for _, r := range results {
		s.Apply(r)
	}
	return s
}

// Apply folds a single result in place using the 3/1/0 scheme.
// Results without both teams are ignored.
func (s Standings) Apply(r Result) {
	if r.Home == nil || r.Away == nil {
		return
	}
	home := s[r.Home.ID]
	away := s[r.Away.ID]
	if home.Team == nil {
		home.Team = r.Home
	}
	if away.Team == nil {
		away.Team = r.Away
	}

	home.Played++
	away.Played++
	home.GoalsFor += r.HomeGoals
	home.GoalsAgainst += r.AwayGoals
	away.GoalsFor += r.AwayGoals
	away.GoalsAgainst += r.HomeGoals

	switch {
	case r.HomeGoals > r.AwayGoals:
		home.Wins++
		home.Points += 3
		away.Losses++
	case r.HomeGoals < r.AwayGoals:
		away.Wins++
		away.Points += 3
		home.Losses++
	default:
		home.Draws++
		away.Draws++
		home.Points++
		away.Points++
	}

	s[r.Home.ID] = home
	s[r.Away.ID] = away
}

// Clone returns an independent copy. Entries are values so a shallow map
// copy is enough.
func (s Standings) Clone() Standings {
	return maps.Clone(s)
}

// Rank orders the given teams by points per game, then goal differential,
// both descending. Teams without an entry rank with an empty row. Remaining
// ties keep the order of teams.
func (s Standings) Rank(teams []*Team) []TableEntry {
	entries := make([]TableEntry, 0, len(teams))
	seen := make(map[string]bool, len(teams))
	for _, t := range teams {
		if t == nil || seen[t.ID] {
			continue
		}
		seen[t.ID] = true
		e := s[t.ID]
		e.Team = t
		entries = append(entries, e)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if pa, pb := a.PointsPerGame(), b.PointsPerGame(); pa != pb {
			return pa > pb
		}
		return a.GoalDiff() > b.GoalDiff()
	})
	return entries
}

// Table folds results and ranks them. With no teams given, every team seen in
// results is ranked in the order first encountered.
func Table(results []Result, teams []*Team) []TableEntry {
	if len(teams) == 0 {
		seen := make(map[string]bool)
		for _, r := range results {
			for _, t := range []*Team{r.Home, r.Away} {
				if t != nil && !seen[t.ID] {
					seen[t.ID] = true
					teams = append(teams, t)
				}
			}
		}
	}
	return Fold(results).Rank(teams)
}

// ScoreLine renders a result like "Home 2 - 1 Away".
func (r Result) ScoreLine() string {
	return fmt.Sprintf("%s %d - %d %s",
		r.Home.Name, r.HomeGoals,
		r.AwayGoals, r.Away.Name,
	)
}

// PrintTable writes a fixed-width standings table.
func PrintTable(w io.Writer, label string, table []TableEntry) {
	fmt.Fprintln(w, label)
	fmt.Fprintf(w, "%-3s %-28s %2s %2s %2s %2s %3s %3s %4s %3s %5s\n",
		"#", "Team", "P", "W", "D", "L", "GF", "GA", "GD", "Pts", "PPG")
	for i, entry := range table {
		fmt.Fprintf(w, "%-3d %-28s %2d %2d %2d %2d %3d %3d %4d %3d %5.2f\n",
			i+1,
			truncate(entry.Team.Name, 28),
			entry.Played,
			entry.Wins,
			entry.Draws,
			entry.Losses,
			entry.GoalsFor,
			entry.GoalsAgainst,
			entry.GoalDiff(),
			entry.Points,
			entry.PointsPerGame(),
		)
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
