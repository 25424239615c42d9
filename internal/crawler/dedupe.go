package crawler

import "math/rand/v2"

// DedupeAndShuffle merges link sets into a worklist of unique URLs in random order.
// Uniqueness is exact string equality; URLs are not normalized.
func DedupeAndShuffle(rng *rand.Rand, linkSets ...[]string) []string {
	seen := make(map[string]struct{})
	worklist := []string{}

	for _, links := range linkSets {
		for _, link := range links {
			if _, ok := seen[link]; ok {
				continue
			}
			seen[link] = struct{}{}
			worklist = append(worklist, link)
		}
	}

	if rng == nil {
		rng = newRand()
	}
	rng.Shuffle(len(worklist), func(i, j int) {
		worklist[i], worklist[j] = worklist[j], worklist[i]
	})

	return worklist
}

// uniqueInOrder drops repeated URLs but keeps first-seen order
func uniqueInOrder(links []string) []string {
	seen := make(map[string]struct{}, len(links))
	out := make([]string, 0, len(links))
	for _, link := range links {
		if _, ok := seen[link]; ok {
			continue
		}
		seen[link] = struct{}{}
		out = append(out, link)
	}
	return out
}

func newRand() *rand.Rand {
	return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
}
