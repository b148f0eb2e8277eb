package analyzer

import "strings"

// Stem reduces a word to a rough lexical base by stripping common
// English suffixes. It is intentionally lighter than a full stemmer:
// the scorer only needs "testing"/"tests"/"tested" to land on the same
// base for partial-credit containment checks.
func Stem(word string) string {
	if len(word) < 4 {
		return word
	}
	word = strings.ToLower(word)

	suffixes := []struct {
		suffix string
		minLen int
	}{
		{"ization", 10}, // authorization -> author
		{"ations", 9},
		{"ation", 8},
		{"ments", 8},
		{"ment", 7},
		{"ings", 7},
		{"ing", 6},
		{"ies", 5},
		{"ers", 6},
		{"ied", 5},
		{"ed", 5},
		{"es", 5},
		{"er", 5},
		{"s", 4},
	}

	for _, s := range suffixes {
		if len(word) >= s.minLen && strings.HasSuffix(word, s.suffix) {
			return word[:len(word)-len(s.suffix)]
		}
	}
	return word
}

// StemMatch reports whether two words share a stem. Used for
// approximate token containment with half weight.
func StemMatch(a, b string) bool {
	return Stem(a) == Stem(b)
}
