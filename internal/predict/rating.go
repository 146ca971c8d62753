package predict

import (
	"regexp"
	"strconv"
	"time"

	"github.com/utakatalp/season-predictor/internal/league"
)

const (
	DefaultPower     = 1500.0
	DefaultSubRating = 50.0
)

// Rating is the read-only view of a team the predictor works with, with
// defaults applied. Missing scoring rates stay missing.
type Rating struct {
	Power        float64
	Offense      float64
	Defense      float64
	GoalsFor     float64
	GoalsAgainst float64
	HasRates     bool
	Age          int
	AgeKnown     bool
	Unranked     bool
}

// RatingOf reads a team's ratings as of now. A nil team is treated as an
// average unranked side.
func RatingOf(t *league.Team, now time.Time) Rating {
	r := Rating{
		Power:   DefaultPower,
		Offense: DefaultSubRating,
		Defense: DefaultSubRating,
	}
	if t == nil {
		r.Unranked = true
		return r
	}
	r.Unranked = t.IsUnranked
	if t.PowerScore != nil {
		r.Power = *t.PowerScore
	}
	if t.OffensivePowerScore != nil {
		r.Offense = *t.OffensivePowerScore
	}
	if t.DefensivePowerScore != nil {
		r.Defense = *t.DefensivePowerScore
	}
	if t.GoalsPerGame != nil && t.GoalsAgainstPerGame != nil {
		r.GoalsFor = *t.GoalsPerGame
		r.GoalsAgainst = *t.GoalsAgainstPerGame
		r.HasRates = true
	}
	r.Age, r.AgeKnown = AgeOf(t.AgeGroup, now)
	return r
}

var (
	fourDigitYear = regexp.MustCompile(`(?:^|\D)((?:19|20)\d{2})(?:\D|$)`)
	twoDigitYear  = regexp.MustCompile(`(?i)(?:^|[^a-z0-9])(?:[bg]\s?(\d{2})|(\d{2})\s?[bg])(?:[^a-z0-9]|$)`)
	underAge      = regexp.MustCompile(`(?i)(?:^|[^a-z0-9])u-?(\d{1,2})(?:[^0-9]|$)`)
)

// BirthYear parses the birth year encoded in an age-group label such as
// "G2011", "B12", "2010B" or "U14". The second result is false when the label
// carries no recognisable year.
func BirthYear(label string, now time.Time) (int, bool) {
	if m := fourDigitYear.FindStringSubmatch(label); m != nil {
		y, _ := strconv.Atoi(m[1])
		return y, true
	}
	if m := twoDigitYear.FindStringSubmatch(label); m != nil {
		digits := m[1]
		if digits == "" {
			digits = m[2]
		}
		yy, _ := strconv.Atoi(digits)
		y := 2000 + yy
		if y > now.Year() {
			y -= 100
		}
		return y, true
	}
	if m := underAge.FindStringSubmatch(label); m != nil {
		age, _ := strconv.Atoi(m[1])
		if age > 0 {
			return now.Year() - age, true
		}
	}
	return 0, false
}

// AgeOf is the current year minus the encoded birth year.
func AgeOf(label string, now time.Time) (int, bool) {
	y, ok := BirthYear(label, now)
	if !ok {
		return 0, false
	}
	age := now.Year() - y
	if age <= 0 {
		return 0, false
	}
	return age, true
}
