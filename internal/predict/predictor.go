package predict

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/utakatalp/season-predictor/internal/league"
)

// Confidence grades a prediction by the data behind it.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// Params are the tunable constants of the predictor.
type Params struct {
	// Goals added to the home side.
	HomeAdvantage float64 `yaml:"home_advantage" json:"homeAdvantage"`
	// Blend of a side's own scoring rate and the opponent's conceding rate.
	OwnRateWeight      float64 `yaml:"gpg_weight" json:"gpgWeight"`
	OpponentRateWeight float64 `yaml:"gapg_weight" json:"gapgWeight"`
	// Goals per point of offense-minus-defense, for the rates and fallback models.
	OffDefGoalFactor         float64 `yaml:"off_def_goal_factor" json:"offDefGoalFactor"`
	FallbackOffDefGoalFactor float64 `yaml:"fallback_off_def_goal_factor" json:"fallbackOffDefGoalFactor"`
	// Goals per point of effective rating difference.
	RatingGoalFactor         float64 `yaml:"rating_goal_factor" json:"ratingGoalFactor"`
	FallbackRatingGoalFactor float64 `yaml:"fallback_rating_goal_factor" json:"fallbackRatingGoalFactor"`
	BaseGoals                float64 `yaml:"base_goals" json:"baseGoals"`
	MinExpectedGoals         float64 `yaml:"min_expected_goals" json:"minExpectedGoals"`
	MaxExpectedGoals         float64 `yaml:"max_expected_goals" json:"maxExpectedGoals"`
	// Rating points per year of age difference, scaled by AgeScaleReference
	// over the average power of the two sides and clamped to the scale range.
	AgePointsPerYear  float64 `yaml:"age_points_per_year" json:"agePointsPerYear"`
	AgeScaleReference float64 `yaml:"age_scale_reference" json:"ageScaleReference"`
	AgeScaleMin       float64 `yaml:"age_scale_min" json:"ageScaleMin"`
	AgeScaleMax       float64 `yaml:"age_scale_max" json:"ageScaleMax"`
}

// DefaultParams returns the calibrated defaults.
func DefaultParams() Params {
	return Params{
		HomeAdvantage:            0.15,
		OwnRateWeight:            0.55,
		OpponentRateWeight:       0.45,
		OffDefGoalFactor:         0.02,
		FallbackOffDefGoalFactor: 0.03,
		RatingGoalFactor:         0.001,
		FallbackRatingGoalFactor: 0.002,
		BaseGoals:                1.4,
		MinExpectedGoals:         0.2,
		MaxExpectedGoals:         8.0,
		AgePointsPerYear:         60,
		AgeScaleReference:        1500,
		AgeScaleMin:              0.25,
		AgeScaleMax:              1.5,
	}
}

// Validate rejects parameter sets that would produce nonsense.
func (p Params) Validate() error {
	var errs []error
	if p.OwnRateWeight < 0 || p.OpponentRateWeight < 0 {
		errs = append(errs, errors.New("blend weights must not be negative"))
	}
	if p.OwnRateWeight+p.OpponentRateWeight <= 0 {
		errs = append(errs, errors.New("blend weights must not both be zero"))
	}
	if p.MinExpectedGoals < 0 || p.MinExpectedGoals >= p.MaxExpectedGoals {
		errs = append(errs, fmt.Errorf("expected goals range [%g, %g] is invalid", p.MinExpectedGoals, p.MaxExpectedGoals))
	}
	if p.AgeScaleMin < 0 || p.AgeScaleMin > p.AgeScaleMax {
		errs = append(errs, fmt.Errorf("age scale range [%g, %g] is invalid", p.AgeScaleMin, p.AgeScaleMax))
	}
	if p.AgePointsPerYear < 0 {
		errs = append(errs, errors.New("age points per year must not be negative"))
	}
	return errors.Join(errs...)
}

// Result is the prediction for one fixture.
type Result struct {
	Home               *league.Team `json:"home"`
	Away               *league.Team `json:"away"`
	HomeScore          int          `json:"homeScore"`
	AwayScore          int          `json:"awayScore"`
	HomeExpectedGoals  float64      `json:"homeExpectedGoals"`
	AwayExpectedGoals  float64      `json:"awayExpectedGoals"`
	HomeWinProbability float64      `json:"homeWinProbability"`
	DrawProbability    float64      `json:"drawProbability"`
	AwayWinProbability float64      `json:"awayWinProbability"`
	RatingDiff         float64      `json:"ratingDiff"`
	AgeAdjustment      float64      `json:"ageAdjustment,omitempty"`
	Confidence         Confidence   `json:"confidence"`
	UsedScoringRates   bool         `json:"usedScoringRates"`
}

// Probabilities returns the outcome probabilities as a ThreeWay.
func (r Result) Probabilities() ThreeWay {
	return ThreeWay{Home: r.HomeWinProbability, Draw: r.DrawProbability, Away: r.AwayWinProbability}
}

// Predictor combines the bucket table with an expected-goals model.
// It holds no mutable state and is safe for concurrent use.
type Predictor struct {
	params Params
	table  *Table
	now    func() time.Time
}

// Option configures a Predictor.
type Option func(*Predictor)

// WithClock fixes the time used to turn age groups into ages.
func WithClock(now func() time.Time) Option {
	return func(p *Predictor) { p.now = now }
}

// New validates params and wraps an already validated table.
func New(params Params, table *Table, opts ...Option) (*Predictor, error) {
	if table == nil {
		return nil, ErrEmptyTable
	}
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("validate params: %w", err)
	}
	p := &Predictor{params: params, table: table, now: time.Now}
	for _, o := range opts {
		o(p)
	}
	return p, nil
}

// Default builds a predictor from DefaultParams and DefaultBuckets.
func Default(opts ...Option) *Predictor {
	table, err := NewTable(DefaultBuckets())
	if err != nil {
		panic(fmt.Sprintf("default probability table: %v", err))
	}
	p, err := New(DefaultParams(), table, opts...)
	if err != nil {
		panic(fmt.Sprintf("default params: %v", err))
	}
	return p
}

// Params returns the predictor's constants.
func (p *Predictor) Params() Params { return p.params }

// Table returns the predictor's probability table.
func (p *Predictor) Table() *Table { return p.table }

// Predict forecasts home against away.
func (p *Predictor) Predict(home, away *league.Team) Result {
	now := p.now()
	h := RatingOf(home, now)
	a := RatingOf(away, now)

	ageAdj := p.AgeAdjustment(h, a)
	diff := h.Power - a.Power + ageAdj

	// 1) outcome probabilities
	probs := p.table.Lookup(diff)

	// 2) expected goals
	var homeXG, awayXG float64
	var conf Confidence
	usedRates := h.HasRates && a.HasRates
	if usedRates {
		homeXG, awayXG = p.rateGoals(h, a, diff)
		conf = ConfidenceHigh
	} else {
		homeXG, awayXG = p.fallbackGoals(h, a, diff)
		conf = ConfidenceMedium
	}
	if h.Unranked || a.Unranked {
		conf = downgrade(conf)
	}

	homeXG = p.clampGoals(homeXG)
	awayXG = p.clampGoals(awayXG)

	return Result{
		Home:               home,
		Away:               away,
		HomeScore:          int(math.Round(homeXG)),
		AwayScore:          int(math.Round(awayXG)),
		HomeExpectedGoals:  homeXG,
		AwayExpectedGoals:  awayXG,
		HomeWinProbability: probs.Home,
		DrawProbability:    probs.Draw,
		AwayWinProbability: probs.Away,
		RatingDiff:         diff,
		AgeAdjustment:      ageAdj,
		Confidence:         conf,
		UsedScoringRates:   usedRates,
	}
}

// AgeAdjustment is the rating bonus the older side gets, signed from the home
// side's point of view. It is zero unless both ages are known and differ.
// The same gap counts for less between strong teams than between weak ones.
func (p *Predictor) AgeAdjustment(home, away Rating) float64 {
	if !home.AgeKnown || !away.AgeKnown || home.Age == away.Age {
		return 0
	}
	years := float64(home.Age - away.Age)
	return years * p.params.AgePointsPerYear * p.ageScale((home.Power+away.Power)/2)
}

func (p *Predictor) ageScale(avgPower float64) float64 {
	if avgPower <= 0 {
		return p.params.AgeScaleMax
	}
	s := p.params.AgeScaleReference / avgPower
	return math.Max(p.params.AgeScaleMin, math.Min(p.params.AgeScaleMax, s))
}

func (p *Predictor) rateGoals(h, a Rating, diff float64) (float64, float64) {
	pp := p.params
	wOwn, wOpp := normaliseWeights(pp.OwnRateWeight, pp.OpponentRateWeight)
	shift := diff * pp.RatingGoalFactor

	homeXG := wOwn*h.GoalsFor + wOpp*a.GoalsAgainst +
		(h.Offense-a.Defense)*pp.OffDefGoalFactor +
		pp.HomeAdvantage + shift
	awayXG := wOwn*a.GoalsFor + wOpp*h.GoalsAgainst +
		(a.Offense-h.Defense)*pp.OffDefGoalFactor -
		shift
	return homeXG, awayXG
}

func (p *Predictor) fallbackGoals(h, a Rating, diff float64) (float64, float64) {
	pp := p.params
	shift := diff * pp.FallbackRatingGoalFactor

	homeXG := pp.BaseGoals + (h.Offense-a.Defense)*pp.FallbackOffDefGoalFactor + pp.HomeAdvantage + shift
	awayXG := pp.BaseGoals + (a.Offense-h.Defense)*pp.FallbackOffDefGoalFactor - shift
	return homeXG, awayXG
}

func (p *Predictor) clampGoals(g float64) float64 {
	if math.IsNaN(g) {
		return p.params.MinExpectedGoals
	}
	return math.Max(p.params.MinExpectedGoals, math.Min(p.params.MaxExpectedGoals, g))
}

func normaliseWeights(own, opp float64) (float64, float64) {
	total := own + opp
	return own / total, opp / total
}

func downgrade(c Confidence) Confidence {
	switch c {
	case ConfidenceHigh:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}
