package sampler

import "math/rand"

// Pick draws up to k distinct items from items uniformly at random.
// It keeps drawing indexes and skips the ones that were already chosen,
// so the result is in order of acceptance. If k >= len(items), every
// item is returned in a random order.
func Pick[T any](rnd *rand.Rand, items []T, k int) []T {
	if k <= 0 || len(items) == 0 {
		return []T{}
	}

	picked := make([]T, 0, k)
	used := make(map[int]struct{}, k)

	for len(picked) < k && len(used) < len(items) {
		idx := rnd.Intn(len(items))
		if _, ok := used[idx]; ok {
			continue
		}
		used[idx] = struct{}{}
		picked = append(picked, items[idx])
	}

	return picked
}
