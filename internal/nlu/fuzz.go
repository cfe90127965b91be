package nlu

// PartialRatio scores how well the shorter of a and b appears inside the
// longer one, from 0 to 100. Each alignment is scored with the indel ratio
// 200*LCS/(len1+len2); windows hanging off either end of the longer string
// are included, so a needle that only partly overlaps still scores.
func PartialRatio(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	s1, s2 := []rune(a), []rune(b)
	if len(s1) > len(s2) {
		s1, s2 = s2, s1
	}
	best := partialShortNeedle(s1, s2)
	if len(s1) == len(s2) && best < 100 {
		if r := partialShortNeedle(s2, s1); r > best {
			best = r
		}
	}
	return best
}

func partialShortNeedle(needle, hay []rune) float64 {
	n, m := len(needle), len(hay)
	best := 0.0

	score := func(window []rune) bool {
		r := ratio(needle, window)
		if r > best {
			best = r
		}
		return best == 100
	}

	for i := 1; i < n; i++ {
		if score(hay[:i]) {
			return best
		}
	}
	for i := 0; i <= m-n; i++ {
		if score(hay[i : i+n]) {
			return best
		}
	}
	for i := m - n + 1; i < m; i++ {
		if score(hay[i:]) {
			return best
		}
	}
	return best
}

func ratio(a, b []rune) float64 {
	total := len(a) + len(b)
	if total == 0 {
		return 100
	}
	return 200 * float64(lcs(a, b)) / float64(total)
}

func lcs(a, b []rune) int {
	if len(a) < len(b) {
		a, b = b, a
	}
	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			switch {
			case a[i-1] == b[j-1]:
				cur[j] = prev[j-1] + 1
			case prev[j] >= cur[j-1]:
				cur[j] = prev[j]
			default:
				cur[j] = cur[j-1]
			}
		}
		prev, cur = cur, prev
	}
	return prev[len(b)]
}
