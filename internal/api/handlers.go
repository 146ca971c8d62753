package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/utakatalp/season-predictor/internal/league"
	"github.com/utakatalp/season-predictor/internal/names"
	"github.com/utakatalp/season-predictor/internal/season"
	"github.com/utakatalp/season-predictor/internal/telemetry"
)

func (s *Server) healthCheck(w http.ResponseWriter, _ *http.Request) {
	success(w, map[string]string{"status": "ok"})
}

func (s *Server) teams(w http.ResponseWriter, r *http.Request) {
	ageGroup := mux.Vars(r)["ageGroup"]
	teams, err := s.source.Teams(r.Context(), ageGroup)
	if err != nil {
		internalError(w, err)
		return
	}
	if teams == nil {
		teams = []*league.Team{}
	}
	success(w, teams)
}

// StandingsResponse is the base table of a group.
type StandingsResponse struct {
	AgeGroup   string              `json:"ageGroup"`
	Conference string              `json:"conference,omitempty"`
	Skipped    int                 `json:"skipped"`
	Table      []league.TableEntry `json:"table"`
}

func (s *Server) standings(w http.ResponseWriter, r *http.Request) {
	ageGroup := mux.Vars(r)["ageGroup"]
	conference := r.URL.Query().Get("conference")

	teams, games, err := s.load(r.Context(), ageGroup, conference)
	if err != nil {
		internalError(w, err)
		return
	}
	completed, _ := league.SplitGames(games)
	table, skipped := season.BaseStandings(teams, completed, ageGroup)

	success(w, StandingsResponse{
		AgeGroup:   ageGroup,
		Conference: conference,
		Skipped:    skipped,
		Table:      table,
	})
}

// PredictRequest names two teams as free text. HomeAgeGroup and AwayAgeGroup
// override AgeGroup for cross-age matchups.
type PredictRequest struct {
	Home         string `json:"home"`
	Away         string `json:"away"`
	AgeGroup     string `json:"age_group"`
	HomeAgeGroup string `json:"home_age_group,omitempty"`
	AwayAgeGroup string `json:"away_age_group,omitempty"`
}

func (s *Server) predict(w http.ResponseWriter, r *http.Request) {
	var req PredictRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, fmt.Errorf("decode request: %w", err))
		return
	}
	homeAge := firstNonEmpty(req.HomeAgeGroup, req.AgeGroup)
	awayAge := firstNonEmpty(req.AwayAgeGroup, req.AgeGroup)
	switch {
	case strings.TrimSpace(req.Home) == "" || strings.TrimSpace(req.Away) == "":
		badRequest(w, errors.New("home and away are required"))
		return
	case homeAge == "" || awayAge == "":
		badRequest(w, errors.New("age_group is required"))
		return
	}

	var candidates []*league.Team
	for _, age := range uniq(homeAge, awayAge) {
		teams, err := s.source.Teams(r.Context(), age)
		if err != nil {
			internalError(w, err)
			return
		}
		candidates = append(candidates, teams...)
	}

	m := s.model.Load()
	ix := names.NewIndex(candidates, names.WithUnrankedRating(m.tuning.UnrankedRating))
	home := ix.Resolve(req.Home, homeAge)
	away := ix.Resolve(req.Away, awayAge)

	success(w, m.predictor.Predict(home, away))
}

// SimulateRequest scopes a season simulation. Zero values use the defaults.
type SimulateRequest struct {
	Conference string `json:"conference,omitempty"`
	Trials     int    `json:"trials,omitempty"`
	Seed       uint64 `json:"seed,omitempty"`
}

func (s *Server) simulate(w http.ResponseWriter, r *http.Request) {
	if !s.limiter.Allow() {
		writeError(w, http.StatusTooManyRequests, errors.New("simulation rate limit exceeded"))
		return
	}

	ageGroup := mux.Vars(r)["ageGroup"]
	var req SimulateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		badRequest(w, fmt.Errorf("decode request: %w", err))
		return
	}

	m := s.model.Load()
	if req.Trials == 0 {
		req.Trials = m.tuning.Trials
	}
	if req.Trials < 0 || req.Trials > maxTrials {
		badRequest(w, fmt.Errorf("trials must be between 1 and %d", maxTrials))
		return
	}

	teams, games, err := s.load(r.Context(), ageGroup, req.Conference)
	if err != nil {
		internalError(w, err)
		return
	}
	completed, upcoming := league.SplitGames(games)

	sim := season.New(m.predictor)
	out, err := sim.Simulate(r.Context(), teams, completed, upcoming, season.Options{
		Trials:   req.Trials,
		Seed:     req.Seed,
		Workers:  s.workers,
		AgeGroup: ageGroup,
	})
	if err != nil {
		if season.IsCancelled(err) {
			telemetry.Warnf("simulation for %s cancelled after %d of %d trials", ageGroup, out.Completed, out.Trials)
			writeError(w, http.StatusServiceUnavailable, err)
			return
		}
		internalError(w, err)
		return
	}
	success(w, out)
}

// load fetches a group's teams and league-play games. With a conference, the
// group shrinks to teams that play in it.
func (s *Server) load(ctx context.Context, ageGroup, conference string) ([]*league.Team, []league.Match, error) {
	teams, err := s.source.Teams(ctx, ageGroup)
	if err != nil {
		return nil, nil, err
	}
	games, err := s.source.Games(ctx, ageGroup)
	if err != nil {
		return nil, nil, err
	}
	games = league.ConferenceGames(games, conference)
	if conference != "" {
		teams = playingTeams(teams, games, ageGroup)
	}
	return teams, games, nil
}

func playingTeams(teams []*league.Team, games []league.Match, ageGroup string) []*league.Team {
	ix := names.NewIndex(teams)
	in := make(map[string]bool)
	for _, g := range games {
		age := firstNonEmpty(g.AgeGroup, ageGroup)
		for _, name := range []string{g.HomeTeam, g.AwayTeam} {
			if t, _, ok := ix.Lookup(name, age); ok {
				in[t.ID] = true
			}
		}
	}
	out := make([]*league.Team, 0, len(in))
	for _, t := range teams {
		if in[t.ID] {
			out = append(out, t)
		}
	}
	return out
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

func uniq(vals ...string) []string {
	out := vals[:0:0]
	for _, v := range vals {
		dup := false
		for _, o := range out {
			dup = dup || o == v
		}
		if !dup {
			out = append(out, v)
		}
	}
	return out
}
