package names

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"blank", "   ", ""},
		{"already clean", "Solar SC", "Solar SC"},
		{"tier and birth year", "Solar SC 2011 Premier", "Solar SC"},
		{"combined years with gender", "FC Dallas 10/11G Blue", "FC Dallas"},
		{"gender age prefix and state code", "Sporting KC G11 Academy (KS)", "Sporting KC"},
		{"year with gender suffix", "Real Colorado 2010B", "Real Colorado"},
		{"stacked tier words", "Rush Select II", "Rush"},
		{"under age label", "U14 Strikers", "Strikers"},
		{"ecnl regional league", "Slammers FC ECNL-RL", "Slammers FC"},
		{"diacritics and spacing", "  Atlético   Juniors  ", "Atletico Juniors"},
		{"single tier word survives", "Elite", "Elite"},
		{"only a year falls back to input", "2011", "2011"},
		{"only decorations falls back to input", " G11  2011 ", "G11 2011"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"",
		"Solar SC",
		"FC Dallas 10/11G Blue",
		"Sporting KC G11 Academy (KS)",
		"Sporting KC Premier 2011",
		"Real Colorado 2010B",
		"Rush Select II",
		"Atlético Juniors",
		"2011",
		"G11 2011",
		"Elite",
		"Blue",
		"Texans SC Houston - North",
		"Classics Elite 2012 Gold (TX)",
	}
	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once), "input %q", in)
	}
}

func TestBaseName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"FC Dallas", "dallas"},
		{"Dallas FC 2011", "dallas"},
		{"Sockers F.C. Soccer Club", "sockers"},
		{"Solar SC", "solar"},
		{"Sporting Kansas City", "sporting kansas city"},
		{"FC", "fc"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, BaseName(tt.in), "input %q", tt.in)
	}
}
