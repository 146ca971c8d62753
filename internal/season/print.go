package season

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
)

// PrintOdds writes the aggregates as a fixed-width table.
func PrintOdds(w io.Writer, label string, out *Outcome) {
	fmt.Fprintf(w, "%s (%s trials, %d fixtures, %d skipped)\n",
		label, humanize.Comma(int64(out.Completed)), out.Fixtures, out.Skipped)
	fmt.Fprintf(w, "%-28s %4s %7s %7s %6s %5s %5s %5s\n",
		"Team", "Pts", "Champ%", "Top3%", "AvgPos", "xW", "xD", "xL")
	for _, a := range out.Teams {
		fmt.Fprintf(w, "%-28s %4d %7.2f %7.2f %6.2f %5.2f %5.2f %5.2f\n",
			a.Team.Name,
			a.Base.Points,
			a.ChampionshipProbability,
			a.TopThreeProbability,
			a.AveragePosition,
			a.ExpectedWins,
			a.ExpectedDraws,
			a.ExpectedLosses,
		)
	}
}
