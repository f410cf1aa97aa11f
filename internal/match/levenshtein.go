package match

// Similarity scores a wanted identifier against a known one, from 0 (nothing
// in common) to 1 (same name). Both are normalized first, so OrderID, order_id
// and ocm:orderId score 1, and the best of the plain and suffix-stripped
// comparisons wins.
func Similarity(want, name string) float64 {
	return max(
		similarity(NormalizeIdent(want), NormalizeIdent(name)),
		similarity(NormalizeIdentWithSuffixStrip(want), NormalizeIdentWithSuffixStrip(name)),
	)
}

// similarity is 1 - distance/longer length.
func similarity(a, b string) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1.0
	}

	return 1.0 - float64(distance(a, b))/float64(max(len(a), len(b)))
}

// distance is the Levenshtein edit distance between a and b, computed over
// two rows of the shorter string.
func distance(a, b string) int {
	if a == b {
		return 0
	}

	if len(a) > len(b) {
		a, b = b, a
	}

	if len(a) == 0 {
		return len(b)
	}

	prev := make([]int, len(a)+1)
	curr := make([]int, len(a)+1)

	for i := range prev {
		prev[i] = i
	}

	for j := 1; j <= len(b); j++ {
		curr[0] = j

		for i := 1; i <= len(a); i++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}

			curr[i] = min(prev[i]+1, curr[i-1]+1, prev[i-1]+cost)
		}

		prev, curr = curr, prev
	}

	return prev[len(a)]
}
