// Package similarity scores how closely a claimed address matches the
// registry's address. It is the only place textual comparison lives.
package similarity

import (
	"math"
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// TokenSortRatio returns a 0..100 similarity that ignores token order, case and
// punctuation. Both inputs are folded, split on whitespace, sorted and rejoined
// before Ratio is taken. Empty input on either side scores 0.
func TokenSortRatio(a, b string) int {
	return Ratio(sortedTokens(a), sortedTokens(b))
}

// Ratio is the normalized insert/delete similarity of two already-processed
// strings: 2*LCS / (len(a)+len(b)) in runes, scaled to 0..100 and rounded half
// to even. Either side empty scores 0.
func Ratio(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 || len(rb) == 0 {
		return 0
	}
	common := lcsLength(ra, rb)
	return int(math.RoundToEven(100 * float64(2*common) / float64(len(ra)+len(rb))))
}

// lcsLength is the length of the longest common subsequence of a and b.
func lcsLength(a, b []rune) int {
	if len(b) > len(a) {
		a, b = b, a
	}
	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for _, ca := range a {
		for j, cb := range b {
			if ca == cb {
				cur[j+1] = prev[j] + 1
			} else {
				cur[j+1] = max(prev[j+1], cur[j])
			}
		}
		prev, cur = cur, prev
	}
	return prev[len(b)]
}

func sortedTokens(s string) string {
	tokens := strings.Fields(fold(s))
	sort.Strings(tokens)
	return strings.Join(tokens, " ")
}

// fold lowercases and replaces anything that is not a letter or digit with a space.
func fold(s string) string {
	s = norm.NFKC.String(s)
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return unicode.ToLower(r)
		}
		return ' '
	}, s)
}
