package names

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/utakatalp/season-predictor/internal/league"
)

// Strategy identifies which rule of the matching cascade produced a hit.
type Strategy int

const (
	NoMatch Strategy = iota
	ExactMatch
	NormalizedMatch
	BaseNameMatch
	SubstringMatch
	SharedWordsMatch
)

func (s Strategy) String() string {
	switch s {
	case ExactMatch:
		return "exact"
	case NormalizedMatch:
		return "normalized"
	case BaseNameMatch:
		return "base-name"
	case SubstringMatch:
		return "substring"
	case SharedWordsMatch:
		return "shared-words"
	default:
		return "none"
	}
}

const (
	minSubstringLen  = 8
	minSoleWordLen   = 5
	minSharedWords   = 2
	defaultUnrankedR = 850.0
)

var genericWords = map[string]bool{
	"united": true, "fc": true, "sc": true, "cf": true, "afc": true, "sa": true,
	"academy": true, "elite": true, "premier": true, "select": true, "club": true,
	"soccer": true, "futbol": true, "football": true, "youth": true, "sporting": true,
	"athletic": true, "athletics": true, "city": true, "the": true, "of": true,
	"de": true, "la": true, "boys": true, "girls": true, "team": true,
	"red": true, "blue": true, "white": true, "black": true, "gold": true,
	"green": true, "silver": true, "orange": true, "navy": true, "grey": true,
	"gray": true, "purple": true, "yellow": true, "maroon": true,
}

type candidate struct {
	team  *league.Team
	lower string
	key   string
	base  string
	words []string
}

// Index is a lookup structure over one set of teams, built once per request
// and safe for concurrent reads.
type Index struct {
	byAge          map[string][]candidate
	unrankedRating float64
}

// Option configures an Index.
type Option func(*Index)

// WithUnrankedRating sets the power score given to placeholder teams.
func WithUnrankedRating(r float64) Option {
	return func(ix *Index) {
		if r > 0 {
			ix.unrankedRating = r
		}
	}
}

// NewIndex groups teams by age bracket and precomputes their comparison keys.
func NewIndex(teams []*league.Team, opts ...Option) *Index {
	ix := &Index{
		byAge:          make(map[string][]candidate),
		unrankedRating: defaultUnrankedR,
	}
	for _, o := range opts {
		o(ix)
	}
	for _, t := range teams {
		if t == nil {
			continue
		}
		age := strings.TrimSpace(t.AgeGroup)
		ix.byAge[age] = append(ix.byAge[age], candidate{
			team:  t,
			lower: strings.ToLower(strings.TrimSpace(t.Name)),
			key:   Key(t.Name),
			base:  BaseName(t.Name),
			words: significantWords(Key(t.Name)),
		})
	}
	return ix
}

// Teams returns the indexed teams of an age bracket in insertion order.
func (ix *Index) Teams(ageGroup string) []*league.Team {
	cands := ix.byAge[strings.TrimSpace(ageGroup)]
	out := make([]*league.Team, len(cands))
	for i, c := range cands {
		out[i] = c.team
	}
	return out
}

// Lookup runs the matching cascade against teams of the same age bracket and
// returns the first hit. Teams of other brackets are never considered.
func (ix *Index) Lookup(name, ageGroup string) (*league.Team, Strategy, bool) {
	cands := ix.byAge[strings.TrimSpace(ageGroup)]
	if len(cands) == 0 || strings.TrimSpace(name) == "" {
		return nil, NoMatch, false
	}

	lower := strings.ToLower(strings.TrimSpace(name))
	for _, c := range cands {
		if c.lower == lower {
			return c.team, ExactMatch, true
		}
	}

	key := Key(name)
	for _, c := range cands {
		if c.key == key {
			return c.team, NormalizedMatch, true
		}
	}

	base := BaseName(name)
	for _, c := range cands {
		if c.base == base {
			return c.team, BaseNameMatch, true
		}
	}

	for _, c := range cands {
		if substringMatch(key, c.key) {
			return c.team, SubstringMatch, true
		}
	}

	words := significantWords(key)
	for _, c := range cands {
		if wordsMatch(words, c.words) {
			return c.team, SharedWordsMatch, true
		}
	}
	return nil, NoMatch, false
}

// Resolve is Lookup with a fallback: an unmatched name yields an unranked
// placeholder in the requested age bracket.
func (ix *Index) Resolve(name, ageGroup string) *league.Team {
	if t, _, ok := ix.Lookup(name, ageGroup); ok {
		return t
	}
	return Placeholder(name, ageGroup, ix.unrankedRating)
}

// Resolve matches one name against candidates without keeping an index.
func Resolve(name, ageGroup string, candidates []*league.Team, opts ...Option) *league.Team {
	return NewIndex(candidates, opts...).Resolve(name, ageGroup)
}

func substringMatch(a, b string) bool {
	short, long := a, b
	if utf8.RuneCountInString(short) > utf8.RuneCountInString(long) {
		short, long = long, short
	}
	if utf8.RuneCountInString(short) < minSubstringLen {
		return false
	}
	return strings.Contains(long, short)
}

func wordsMatch(a, b []string) bool {
	if len(a) == 0 || len(b) == 0 {
		return false
	}
	var shared []string
	for _, w := range a {
		for _, v := range b {
			if w == v {
				shared = append(shared, w)
				break
			}
		}
	}
	switch {
	case len(shared) >= minSharedWords:
		return true
	case len(shared) == 1:
		return len(a) == 1 && len(b) == 1 && utf8.RuneCountInString(shared[0]) >= minSoleWordLen
	default:
		return false
	}
}

// significantWords tokenizes a key and drops generic team words and duplicates.
func significantWords(key string) []string {
	tokens := strings.FieldsFunc(key, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	seen := make(map[string]bool, len(tokens))
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if genericWords[t] || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}
