package moderation

import (
	"strings"

	"github.com/PancyStudios/GuardBotGo/pkg/models"
)

// datePart is one optional component of a date prefix, introduced by one of
// seps and followed by width digits.
type datePart struct {
	seps  string
	width int
}

// Components after the year, each only valid once the previous one is present:
// -MM -DD THH :MM :SS .mmm
var dateParts = []datePart{
	{"-", 2},
	{"-", 2},
	{"Tt ", 2},
	{":", 2},
	{":", 2},
	{".", 3},
}

// ParseDatePrefix validates s against YYYY[-MM[-DD[THH[:MM[:SS[.mmm[Z]]]]]]]
// and returns it normalized for comparison with Warn.ISOString: the first
// space becomes "T" and letters are upper-cased.
func ParseDatePrefix(s string) (string, bool) {
	i, ok := scanDigits(s, 0, 4)
	if !ok {
		return "", false
	}

	parts := 0
	for _, part := range dateParts {
		if i == len(s) {
			break
		}
		if !strings.ContainsRune(part.seps, rune(s[i])) {
			return "", false
		}
		if i, ok = scanDigits(s, i+1, part.width); !ok {
			return "", false
		}
		parts++
	}

	if i < len(s) && parts == len(dateParts) && (s[i] == 'Z' || s[i] == 'z') {
		i++
	}
	if i != len(s) {
		return "", false
	}

	return strings.ToUpper(strings.Replace(s, " ", "T", 1)), true
}

// FindByDatePrefix returns the first warn whose timestamp starts with prefix.
// Undated warns never match.
func FindByDatePrefix(warns []models.Warn, prefix string) (models.Warn, bool) {
	for _, w := range warns {
		if w.HasDate() && strings.HasPrefix(w.ISOString(), prefix) {
			return w, true
		}
	}
	return models.Warn{}, false
}

func scanDigits(s string, from, n int) (int, bool) {
	if from+n > len(s) {
		return from, false
	}
	for i := from; i < from+n; i++ {
		if s[i] < '0' || s[i] > '9' {
			return from, false
		}
	}
	return from + n, true
}
