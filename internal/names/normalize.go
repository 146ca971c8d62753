package names

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var (
	// 10/11G, 2010-2011 B, G10/11
	combinedYearsGender = regexp.MustCompile(`(?i)\b(?:\d{2}(?:\d{2})?\s*[/\-]\s*\d{2}(?:\d{2})?\s*[bg]|[bg]\s*\d{2}(?:\d{2})?\s*[/\-]\s*\d{2}(?:\d{2})?)\b`)
	// G11, B2010, 11G, 2010B, U14, U-14
	genderAge = regexp.MustCompile(`(?i)\b(?:[bg]\s?\d{2}(?:\d{2})?|\d{2}(?:\d{2})?\s?[bg]|u-?\d{1,2})\b`)
	// trailing tier / skill level word
	trailingTier = regexp.MustCompile(`(?i)[\s\-]+(?:gold|white|blue|red|black|green|silver|orange|navy|grey|gray|purple|yellow|maroon|premier|elite|academy|select|classic|ecnl|ecnl-rl|rl|npl|pre-ecnl|pre|i|ii|iii|iv|v|vi)$`)
	birthYear    = regexp.MustCompile(`\b(?:19|20)\d{2}\b`)
	stateCode    = regexp.MustCompile(`\(\s*[A-Za-z]{2}\s*\)`)
)

const edgePunct = " -–/|,.:"

// Normalize strips age, gender, tier and state decorations from a team name so
// that two spellings of the same club compare equal. It is idempotent. If
// nothing would be left the collapsed input is returned instead.
func Normalize(name string) string {
	collapsed := collapseWhitespace(name)
	if collapsed == "" {
		return ""
	}

	cur := stripDiacritics(collapsed)
	for {
		next := normalizePass(cur)
		if next == cur {
			break
		}
		cur = next
	}
	if cur == "" {
		return collapsed
	}
	return cur
}

func normalizePass(s string) string {
	s = combinedYearsGender.ReplaceAllString(s, " ")
	s = genderAge.ReplaceAllString(s, " ")
	for {
		loc := trailingTier.FindStringIndex(s)
		if loc == nil {
			break
		}
		s = s[:loc[0]]
	}
	s = birthYear.ReplaceAllString(s, " ")
	s = stateCode.ReplaceAllString(s, " ")
	s = collapseWhitespace(s)
	return strings.Trim(s, edgePunct)
}

// Key is the lower-cased normalized name used for comparisons.
func Key(name string) string {
	return strings.ToLower(Normalize(name))
}

var genericAffixes = map[string]bool{
	"fc": true, "sc": true, "cf": true, "afc": true, "sa": true,
	"club": true, "soccer": true, "futbol": true, "football": true, "youth": true,
}

// BaseName is the normalized name with generic club affixes such as "FC",
// "SC" or "Soccer Club" removed from either end.
func BaseName(name string) string {
	key := strings.ReplaceAll(Key(name), ".", "")
	words := strings.Fields(key)
	for len(words) > 1 && genericAffixes[words[len(words)-1]] {
		words = words[:len(words)-1]
	}
	for len(words) > 1 && genericAffixes[words[0]] {
		words = words[1:]
	}
	return strings.Join(words, " ")
}

func stripDiacritics(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range norm.NFD.String(s) {
		if !unicode.Is(unicode.Mn, r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
