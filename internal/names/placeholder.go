package names

import (
	"strings"

	"github.com/google/uuid"

	"github.com/utakatalp/season-predictor/internal/league"
)

const averageRating = 1500.0

var placeholderSpace = uuid.MustParse("6f1c9d2e-4b8a-4d37-9a51-2c7e0b9f3a10")

// Placeholder builds an unranked team for a name no candidate matched.
// Its statistics are estimated from the rating: a weaker placeholder scores
// less and concedes more. The ID is stable for the same name and bracket.
func Placeholder(name, ageGroup string, rating float64) *league.Team {
	if rating <= 0 {
		rating = defaultUnrankedR
	}
	ratio := rating / averageRating
	ageGroup = strings.TrimSpace(ageGroup)

	return &league.Team{
		ID:                  uuid.NewSHA1(placeholderSpace, []byte(ageGroup+"|"+Key(name))).String(),
		Name:                strings.TrimSpace(name),
		AgeGroup:            ageGroup,
		PowerScore:          league.Float(rating),
		OffensivePowerScore: league.Float(50 * ratio),
		DefensivePowerScore: league.Float(50 * ratio),
		GoalsPerGame:        league.Float(1.5 * ratio),
		GoalsAgainstPerGame: league.Float(1.5 / ratio),
		IsUnranked:          true,
	}
}
