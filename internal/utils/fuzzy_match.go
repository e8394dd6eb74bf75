package utils

// WithinOneEdit reports whether a can become b with at most one edit: a
// substitution, an insertion, a deletion, or a transposition of two adjacent
// characters. Pairs whose lengths differ by more than one are rejected
// without scanning.
func WithinOneEdit(a, b string) bool {
	if a == b {
		return true
	}

	ra, rb := []rune(a), []rune(b)
	if len(ra) > len(rb) {
		ra, rb = rb, ra
	}
	la, lb := len(ra), len(rb)
	if lb-la > 1 {
		return false
	}

	i := 0
	for i < la && ra[i] == rb[i] {
		i++
	}

	if la == lb {
		// substitution at i
		if runesEqual(ra[i+1:], rb[i+1:]) {
			return true
		}
		// adjacent transposition at i
		return i+1 < la &&
			ra[i] == rb[i+1] &&
			ra[i+1] == rb[i] &&
			runesEqual(ra[i+2:], rb[i+2:])
	}

	// rb has one extra rune at i
	return runesEqual(ra[i:], rb[i+1:])
}

// SharedPrefixLen returns the number of leading runes a and b have in common.
func SharedPrefixLen(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	n := 0
	for n < len(ra) && n < len(rb) && ra[n] == rb[n] {
		n++
	}
	return n
}

// OverlapScore reports whether every rune of needle appears, in order, inside
// haystack: 1 when needle is a subsequence of haystack, 0 otherwise.
// A partial walk earns nothing.
func OverlapScore(needle, haystack string) float64 {
	n := []rune(needle)
	if len(n) == 0 {
		return 0
	}
	h := []rune(haystack)

	matched := 0
	for j := 0; matched < len(n) && j < len(h); j++ {
		if n[matched] == h[j] {
			matched++
		}
	}
	if matched < len(n) {
		return 0
	}
	return 1
}

func runesEqual(a, b []rune) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
