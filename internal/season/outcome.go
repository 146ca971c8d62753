package season

import "github.com/utakatalp/season-predictor/internal/predict"

type outcome int

const (
	homeWin outcome = iota
	draw
	awayWin
)

// sample maps one uniform draw in [0, 1) onto the cumulative
// home / draw / away thresholds.
func sample(u float64, p predict.ThreeWay) outcome {
	switch {
	case u < p.Home:
		return homeWin
	case u < p.Home+p.Draw:
		return draw
	default:
		return awayWin
	}
}

// scoreline picks the goals folded for a sampled outcome: the predicted score
// when it agrees with the outcome, otherwise the nearest score that does.
func scoreline(o outcome, predHome, predAway int) (int, int) {
	switch o {
	case homeWin:
		if predHome > predAway {
			return predHome, predAway
		}
		return predAway + 1, predAway
	case awayWin:
		if predAway > predHome {
			return predHome, predAway
		}
		return predHome, predHome + 1
	default:
		g := min(predHome, predAway)
		return g, g
	}
}
