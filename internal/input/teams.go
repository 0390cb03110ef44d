package input

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var clubAffixes = []string{"fc", "afc", "cf", "sc", "ac"}

// NormalizeTeam folds a team name for comparison: lower case, accents
// stripped, common club affixes dropped and whitespace collapsed
func NormalizeTeam(name string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, strings.ToLower(name))
	if err != nil {
		folded = strings.ToLower(name)
	}

	folded = strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return ' '
	}, folded)

	words := strings.Fields(folded)
	kept := words[:0]
	for _, w := range words {
		if isAffix(w) && len(words) > 1 {
			continue
		}
		kept = append(kept, w)
	}
	return strings.Join(kept, " ")
}

// SameTeam reports whether two spellings name the same club
func SameTeam(a, b string) bool {
	na, nb := NormalizeTeam(a), NormalizeTeam(b)
	return na != "" && na == nb
}

func isAffix(w string) bool {
	for _, a := range clubAffixes {
		if w == a {
			return true
		}
	}
	return false
}
