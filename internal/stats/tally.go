package stats

// tally counts occurrences per key and remembers first-seen order, so every
// traversal is deterministic.
type tally[K comparable] struct {
	keys   []K
	counts map[K]int
}

func newTally[K comparable]() *tally[K] {
	return &tally[K]{counts: make(map[K]int)}
}

func (t *tally[K]) add(key K, n int) {
	if _, ok := t.counts[key]; !ok {
		t.keys = append(t.keys, key)
	}
	t.counts[key] += n
}

func (t *tally[K]) len() int {
	return len(t.keys)
}

// values returns the counts in key order.
func (t *tally[K]) values() []int {
	out := make([]int, len(t.keys))
	for i, k := range t.keys {
		out[i] = t.counts[k]
	}
	return out
}

// distinct returns the unique results of key over items, in first-seen order.
func distinct[T any, K comparable](items []T, key func(T) K) []K {
	seen := make(map[K]struct{})
	var out []K
	for _, item := range items {
		k := key(item)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}
