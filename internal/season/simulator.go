package season

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/sync/errgroup"

	"github.com/utakatalp/season-predictor/internal/league"
	"github.com/utakatalp/season-predictor/internal/names"
	"github.com/utakatalp/season-predictor/internal/predict"
	"github.com/utakatalp/season-predictor/internal/telemetry"
)

const DefaultTrials = 10000

// Predictor is the part of predict.Predictor the simulator needs.
type Predictor interface {
	Predict(home, away *league.Team) predict.Result
}

// Options tune one simulation run.
type Options struct {
	// Trials defaults to DefaultTrials.
	Trials int
	// Seed makes a run reproducible for a given Workers count. Zero seeds
	// from the clock.
	Seed uint64
	// Workers splits trials across goroutines. Defaults to 1.
	Workers int
	// AgeGroup is used to resolve fixtures that carry no age group. When
	// empty, the bracket shared by all teams is used.
	AgeGroup string
}

// Aggregate is one team's tally over all trials, with the derived statistics.
type Aggregate struct {
	Team *league.Team      `json:"team"`
	Base league.TableEntry `json:"base"`

	Championships   int   `json:"championships"`
	TopThree        int   `json:"topThree"`
	PositionSum     int   `json:"positionSum"`
	Positions       []int `json:"positions"`
	RemainingWins   int   `json:"remainingWins"`
	RemainingLosses int   `json:"remainingLosses"`
	RemainingDraws  int   `json:"remainingDraws"`

	ChampionshipProbability float64 `json:"championshipProbability"`
	TopThreeProbability     float64 `json:"topThreeProbability"`
	AveragePosition         float64 `json:"averagePosition"`
	ExpectedWins            float64 `json:"expectedWins"`
	ExpectedLosses          float64 `json:"expectedLosses"`
	ExpectedDraws           float64 `json:"expectedDraws"`
}

// Outcome is the result of a simulation run.
type Outcome struct {
	Trials    int         `json:"trials"`
	Completed int         `json:"completed"`
	Seed      uint64      `json:"seed"`
	Fixtures  int         `json:"fixtures"`
	Skipped   int         `json:"skipped"`
	Teams     []Aggregate `json:"teams"`
}

// Simulator runs Monte Carlo season projections.
type Simulator struct {
	predictor Predictor
}

func New(p Predictor) *Simulator {
	return &Simulator{predictor: p}
}

type fixture struct {
	home, away int
	probs      predict.ThreeWay
	predHome   int
	predAway   int
}

type tally struct {
	champion, topThree, positionSum int
	positions                       []int
	wins, losses, draws             int
}

// Simulate applies the completed results once, then resolves the upcoming
// fixtures trials times and aggregates where every team finished.
// Unresolvable or malformed records are skipped. Cancellation is checked
// between trials; a cancelled run returns the trials completed so far along
// with the context error.
func (s *Simulator) Simulate(ctx context.Context, teams []*league.Team, completed, upcoming []league.Match, opts Options) (*Outcome, error) {
	if opts.Trials <= 0 {
		opts.Trials = DefaultTrials
	}
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.Workers > opts.Trials {
		opts.Workers = opts.Trials
	}
	if opts.Seed == 0 {
		opts.Seed = uint64(time.Now().UnixNano())
	}

	// 1) the group, in input order, without duplicates
	order, indexOf := dedupe(teams)
	if opts.AgeGroup == "" {
		opts.AgeGroup = sharedAgeGroup(order)
	}
	rs := &resolver{index: names.NewIndex(order), ids: indexOf, ageGroup: opts.AgeGroup}

	out := &Outcome{Trials: opts.Trials, Seed: opts.Seed}

	// 2) fixed base standings
	base, skipped := rs.fold(completed)
	out.Skipped = skipped

	// 3) upcoming fixtures inside the group, predicted once
	fixtures := make([]fixture, 0, len(upcoming))
	for _, m := range upcoming {
		home, away, ok := rs.resolve(m)
		if !ok {
			out.Skipped++
			continue
		}
		p := s.predictor.Predict(home, away)
		fixtures = append(fixtures, fixture{
			home:     indexOf[home.ID],
			away:     indexOf[away.ID],
			probs:    p.Probabilities(),
			predHome: p.HomeScore,
			predAway: p.AwayScore,
		})
	}
	out.Fixtures = len(fixtures)

	// 4) trials
	tallies, done, err := s.run(ctx, base, order, indexOf, fixtures, opts)
	out.Completed = done

	// 5) normalise
	out.Teams = make([]Aggregate, len(order))
	for i, t := range order {
		out.Teams[i] = aggregate(t, base[t.ID], tallies[i], done)
	}
	sort.SliceStable(out.Teams, func(i, j int) bool {
		a, b := out.Teams[i], out.Teams[j]
		if a.ChampionshipProbability != b.ChampionshipProbability {
			return a.ChampionshipProbability > b.ChampionshipProbability
		}
		return a.AveragePosition < b.AveragePosition
	})

	telemetry.L().Debug("season simulated",
		"teams", len(order),
		"fixtures", len(fixtures),
		"skipped", out.Skipped,
		"trials", humanize.Comma(int64(done)),
	)
	return out, err
}

func (s *Simulator) run(ctx context.Context, base league.Standings, order []*league.Team, indexOf map[string]int, fixtures []fixture, opts Options) ([]tally, int, error) {
	n := len(order)
	if len(fixtures) == 0 {
		return deterministic(base, order, indexOf, opts.Trials), opts.Trials, nil
	}

	perWorker := make([][]tally, opts.Workers)
	doneBy := make([]int, opts.Workers)

	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < opts.Workers; w++ {
		trials := opts.Trials / opts.Workers
		if w < opts.Trials%opts.Workers {
			trials++
		}
		rng := rand.New(rand.NewPCG(opts.Seed, uint64(w)))
		local := newTallies(n)
		perWorker[w] = local

		g.Go(func() error {
			remaining := make([]tally, n)
			for t := 0; t < trials; t++ {
				if err := gctx.Err(); err != nil {
					return err
				}
				runTrial(rng, base, order, indexOf, fixtures, local, remaining)
				doneBy[w]++
			}
			return nil
		})
	}
	err := g.Wait()

	total := newTallies(n)
	done := 0
	for w := range perWorker {
		done += doneBy[w]
		for i := range total {
			total[i].add(perWorker[w][i])
		}
	}
	if err == nil {
		err = ctx.Err()
	}
	return total, done, err
}

// runTrial plays one season on a private copy of the base standings and adds
// the result to tallies.
func runTrial(rng *rand.Rand, base league.Standings, order []*league.Team, indexOf map[string]int, fixtures []fixture, tallies, remaining []tally) {
	st := base.Clone()
	for i := range remaining {
		remaining[i] = tally{}
	}

	for _, f := range fixtures {
		o := sample(rng.Float64(), f.probs)
		hg, ag := scoreline(o, f.predHome, f.predAway)
		st.Apply(league.Result{Home: order[f.home], Away: order[f.away], HomeGoals: hg, AwayGoals: ag})
		switch o {
		case homeWin:
			remaining[f.home].wins++
			remaining[f.away].losses++
		case awayWin:
			remaining[f.away].wins++
			remaining[f.home].losses++
		default:
			remaining[f.home].draws++
			remaining[f.away].draws++
		}
	}

	record(st.Rank(order), indexOf, tallies)
	for i := range tallies {
		tallies[i].wins += remaining[i].wins
		tallies[i].losses += remaining[i].losses
		tallies[i].draws += remaining[i].draws
	}
}

// deterministic handles a run without stochastic fixtures: every trial would
// produce the same table, so it is ranked once and counted trials times.
func deterministic(base league.Standings, order []*league.Team, indexOf map[string]int, trials int) []tally {
	once := newTallies(len(order))
	record(base.Rank(order), indexOf, once)

	out := newTallies(len(order))
	for i := range out {
		out[i].champion = once[i].champion * trials
		out[i].topThree = once[i].topThree * trials
		out[i].positionSum = once[i].positionSum * trials
		for p, c := range once[i].positions {
			out[i].positions[p] = c * trials
		}
	}
	return out
}

func record(ranked []league.TableEntry, indexOf map[string]int, tallies []tally) {
	for pos, e := range ranked {
		i := indexOf[e.Team.ID]
		tallies[i].positionSum += pos + 1
		tallies[i].positions[pos]++
		if pos == 0 {
			tallies[i].champion++
		}
		if pos < 3 {
			tallies[i].topThree++
		}
	}
}

func newTallies(n int) []tally {
	t := make([]tally, n)
	for i := range t {
		t[i].positions = make([]int, n)
	}
	return t
}

func (t *tally) add(o tally) {
	t.champion += o.champion
	t.topThree += o.topThree
	t.positionSum += o.positionSum
	t.wins += o.wins
	t.losses += o.losses
	t.draws += o.draws
	for i, c := range o.positions {
		t.positions[i] += c
	}
}

func aggregate(t *league.Team, base league.TableEntry, tl tally, trials int) Aggregate {
	base.Team = t
	a := Aggregate{
		Team:            t,
		Base:            base,
		Championships:   tl.champion,
		TopThree:        tl.topThree,
		PositionSum:     tl.positionSum,
		Positions:       tl.positions,
		RemainingWins:   tl.wins,
		RemainingLosses: tl.losses,
		RemainingDraws:  tl.draws,
	}
	if trials == 0 {
		return a
	}
	n := float64(trials)
	a.ChampionshipProbability = round2(float64(tl.champion) / n * 100)
	a.TopThreeProbability = round2(float64(tl.topThree) / n * 100)
	a.AveragePosition = float64(tl.positionSum) / n
	a.ExpectedWins = float64(tl.wins) / n
	a.ExpectedLosses = float64(tl.losses) / n
	a.ExpectedDraws = float64(tl.draws) / n
	return a
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// BaseStandings folds the completed games of a group and ranks the group.
// It is the table every simulation trial starts from. The second result
// counts games that were skipped as malformed or outside the group.
func BaseStandings(teams []*league.Team, completed []league.Match, ageGroup string) ([]league.TableEntry, int) {
	order, indexOf := dedupe(teams)
	if ageGroup == "" {
		ageGroup = sharedAgeGroup(order)
	}
	rs := &resolver{index: names.NewIndex(order), ids: indexOf, ageGroup: ageGroup}
	base, skipped := rs.fold(completed)
	return base.Rank(order), skipped
}

func dedupe(teams []*league.Team) ([]*league.Team, map[string]int) {
	order := make([]*league.Team, 0, len(teams))
	indexOf := make(map[string]int, len(teams))
	for _, t := range teams {
		if t == nil {
			continue
		}
		if _, dup := indexOf[t.ID]; dup {
			continue
		}
		indexOf[t.ID] = len(order)
		order = append(order, t)
	}
	return order, indexOf
}

type resolver struct {
	index    *names.Index
	ids      map[string]int
	ageGroup string
}

// resolve maps a fixture onto two distinct teams of the group.
func (r *resolver) resolve(m league.Match) (*league.Team, *league.Team, bool) {
	home := r.side(m.Home, m.HomeTeam, m.AgeGroup)
	away := r.side(m.Away, m.AwayTeam, m.AgeGroup)
	if home == nil || away == nil {
		telemetry.L().Debug("skipping fixture outside group", "home", m.HomeTeam, "away", m.AwayTeam, "age_group", m.AgeGroup)
		return nil, nil, false
	}
	if home.ID == away.ID {
		telemetry.L().Warn("skipping fixture with the same team on both sides", "team", home.Name)
		return nil, nil, false
	}
	return home, away, true
}

// fold applies completed games that resolve inside the group.
func (r *resolver) fold(completed []league.Match) (league.Standings, int) {
	base := make(league.Standings)
	skipped := 0
	for _, m := range completed {
		if !m.Completed() {
			telemetry.L().Warn("skipping completed game without score", "home", m.HomeTeam, "away", m.AwayTeam)
			skipped++
			continue
		}
		home, away, ok := r.resolve(m)
		if !ok {
			skipped++
			continue
		}
		base.Apply(league.Result{Home: home, Away: away, HomeGoals: *m.HomeScore, AwayGoals: *m.AwayScore})
	}
	return base, skipped
}

func (r *resolver) side(resolved *league.Team, name, ageGroup string) *league.Team {
	if resolved != nil {
		if _, ok := r.ids[resolved.ID]; ok {
			return resolved
		}
	}
	if strings.TrimSpace(ageGroup) == "" {
		ageGroup = r.ageGroup
	}
	t, _, ok := r.index.Lookup(name, ageGroup)
	if !ok {
		return nil
	}
	return t
}

func sharedAgeGroup(teams []*league.Team) string {
	if len(teams) == 0 {
		return ""
	}
	age := strings.TrimSpace(teams[0].AgeGroup)
	for _, t := range teams[1:] {
		if strings.TrimSpace(t.AgeGroup) != age {
			return ""
		}
	}
	return age
}

// IsCancelled reports whether err came from a cancelled or expired context.
func IsCancelled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
