package database

// Ranks are strings over '0'..'z' whose lexicographic order is the sample order.
// A rank can always be found between two others by growing it by one character.
const (
	rankMin = '0'
	rankMax = 'z'
	rankMid = 'U'
)

// rankAfter returns a rank that sorts after prev.
func rankAfter(prev string) string {
	return prev + string(rune(rankMid))
}

// rankBetween returns a rank strictly between prev and next. An empty prev means no
// lower bound, an empty next means no upper bound.
func rankBetween(prev, next string) string {
	if next == "" {
		return rankAfter(prev)
	}

	lo, hi := []rune(prev), []rune(next)
	var out []rune
	for i := 0; ; i++ {
		l := rune(rankMin)
		if i < len(lo) {
			l = lo[i]
		}
		h := rune(rankMax)
		if i < len(hi) {
			h = hi[i]
		}

		if l+1 < h {
			return string(append(out, l+(h-l)/2))
		}
		out = append(out, l)
	}
}

// rankFits reports whether rank lies strictly between prev and next. With no bounds at
// all it reports false so the caller assigns a fresh rank.
func rankFits(prev, rank, next string) bool {
	switch {
	case prev == "" && next == "":
		return false
	case prev == "":
		return rank < next
	case next == "":
		return prev < rank
	}
	return prev < rank && rank < next
}

// rerank computes new ranks for the keys in order, touching only keys whose current
// rank no longer fits between its neighbours.
func rerank(current map[string]string, order []string) map[string]string {
	updates := make(map[string]string)
	rankOf := func(key string) string {
		if r, ok := updates[key]; ok {
			return r
		}
		return current[key]
	}

	for i, key := range order {
		var prev, next string
		if i > 0 {
			prev = rankOf(order[i-1])
		}
		if i < len(order)-1 {
			next = current[order[i+1]]
		}
		if r := current[key]; r != "" && rankFits(prev, r, next) {
			continue
		}
		// next may itself be moved later; only the lower bound is final here
		if next != "" && next <= prev {
			next = ""
		}
		updates[key] = rankBetween(prev, next)
	}
	return updates
}

// initialRanks returns n increasing ranks.
func initialRanks(n int) []string {
	ranks := make([]string, n)
	prev := ""
	for i := range ranks {
		prev = rankBetween(prev, "")
		ranks[i] = prev
	}
	return ranks
}
