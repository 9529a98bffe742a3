// Package naturalsort orders strings the way a file browser does: maximal
// runs of decimal digits compare by the integer they represent, everything
// else compares case-insensitively. "2.jpg" sorts before "10.jpg".
package naturalsort

import (
	"sort"
	"strings"
	"unicode"
)

// Compare returns -1, 0 or 1. Digit runs compare by value with leading zeros
// ignored; on equal value the longer run wins ("01" < "1"). Other runes
// compare by their Unicode lower-case mapping, locale independent. A final
// raw comparison keeps the order deterministic for strings that differ only
// in case.
func Compare(a, b string) int {
	ar := []rune(a)
	br := []rune(b)

	i, j := 0, 0
	for i < len(ar) && j < len(br) {
		if unicode.IsDigit(ar[i]) && unicode.IsDigit(br[j]) {
			si, sj := i, j
			for i < len(ar) && unicode.IsDigit(ar[i]) {
				i++
			}
			for j < len(br) && unicode.IsDigit(br[j]) {
				j++
			}
			if c := compareDigitRuns(string(ar[si:i]), string(br[sj:j])); c != 0 {
				return c
			}
			continue
		}

		la := unicode.ToLower(ar[i])
		lb := unicode.ToLower(br[j])
		if la != lb {
			if la < lb {
				return -1
			}
			return 1
		}
		i++
		j++
	}

	if i < len(ar) {
		return 1
	}
	if j < len(br) {
		return -1
	}
	return strings.Compare(a, b)
}

func compareDigitRuns(a, b string) int {
	ta := strings.TrimLeft(a, "0")
	tb := strings.TrimLeft(b, "0")

	// Value first: a longer trimmed run is a bigger number.
	if len(ta) != len(tb) {
		if len(ta) < len(tb) {
			return -1
		}
		return 1
	}
	if ta != tb {
		if ta < tb {
			return -1
		}
		return 1
	}

	// Equal value: the run with more leading zeros sorts first, so "01" < "1".
	if len(a) != len(b) {
		if len(a) > len(b) {
			return -1
		}
		return 1
	}
	return 0
}

// Less reports whether a orders before b.
func Less(a, b string) bool {
	return Compare(a, b) < 0
}

// Strings sorts xs in place in natural order. The sort is stable.
func Strings(xs []string) {
	sort.SliceStable(xs, func(i, j int) bool {
		return Less(xs[i], xs[j])
	})
}
