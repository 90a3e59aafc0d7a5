package fuzzy

import "strings"

// Distance returns the Levenshtein edit distance between a and b, where each
// insertion, deletion and substitution costs one. Comparison is byte-wise
// after lowercasing both inputs.
func Distance(a, b string) int {
	a = strings.ToLower(a)
	b = strings.ToLower(b)

	if a == b {
		return 0
	}
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	// Two rolling rows of the DP table.
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min(
				prev[j]+1,      // deletion
				curr[j-1]+1,    // insertion
				prev[j-1]+cost, // substitution
			)
		}
		prev, curr = curr, prev
	}

	return prev[len(b)]
}

// Closest returns the candidate nearest to input whose distance is at most
// maxDistance. Ties are broken by candidate order, so the result is
// deterministic for a given candidate slice. Returns ("", false) when no
// candidate is within range.
func Closest(input string, candidates []string, maxDistance int) (string, bool) {
	input = strings.TrimSpace(input)
	if input == "" || maxDistance < 0 {
		return "", false
	}

	best := ""
	bestDist := maxDistance + 1
	for _, c := range candidates {
		d := Distance(input, c)
		if d < bestDist {
			best = c
			bestDist = d
			if d == 0 {
				break
			}
		}
	}

	if bestDist > maxDistance {
		return "", false
	}
	return best, true
}

// Contains reports whether token is an exact, case-insensitive member of
// candidates.
func Contains(candidates []string, token string) bool {
	for _, c := range candidates {
		if strings.EqualFold(c, token) {
			return true
		}
	}
	return false
}
