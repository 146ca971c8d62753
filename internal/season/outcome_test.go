package season

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/utakatalp/season-predictor/internal/predict"
)

func TestSample(t *testing.T) {
	p := predict.ThreeWay{Home: 0.5, Draw: 0.2, Away: 0.3}
	tests := []struct {
		u    float64
		want outcome
	}{
		{0, homeWin},
		{0.49, homeWin},
		{0.5, draw},
		{0.69, draw},
		{0.7, awayWin},
		{0.999, awayWin},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, sample(tt.u, p), "u=%v", tt.u)
	}
}

func TestScoreline(t *testing.T) {
	tests := []struct {
		name               string
		o                  outcome
		predHome, predAway int
		home, away         int
	}{
		{"home win agrees", homeWin, 3, 1, 3, 1},
		{"home win from draw prediction", homeWin, 1, 1, 2, 1},
		{"home win from away prediction", homeWin, 0, 2, 3, 2},
		{"away win agrees", awayWin, 0, 2, 0, 2},
		{"away win from home prediction", awayWin, 2, 1, 2, 3},
		{"draw from home prediction", draw, 3, 1, 1, 1},
		{"draw agrees", draw, 2, 2, 2, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, a := scoreline(tt.o, tt.predHome, tt.predAway)
			assert.Equal(t, tt.home, h)
			assert.Equal(t, tt.away, a)
		})
	}
}
