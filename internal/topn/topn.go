// Package topn implements a bounded top-N accumulator used to apply LIMIT
// ahead of a full sort (spec 4.7): rather than sorting every matched entry
// and truncating, entries are grouped into "echelons" keyed by sort order,
// and the worst echelon is evicted one value at a time once the limit is
// exceeded. Grounded line-for-line on
// original_source/src/util/top_n.rs's TopN<K, V>, generic over Go's stdlib
// cmp.Ordered rather than Rust's Ord trait bound (no third-party ordered-
// map dependency appears anywhere in the pack, and the original itself
// reaches for BTreeMap, the Rust standard library's own ordered map — the
// idiomatic match here is stdlib cmp/slices, not an external library).
package topn

import (
	"cmp"
	"slices"
)

// TopN accumulates up to limit values, keyed by K, keeping the
// lowest-keyed values and evicting from the highest-keyed echelon first
// once full. New bounds it to a nonzero limit; Limitless builds one with
// no bound.
type TopN[K cmp.Ordered, V any] struct {
	limit    uint32
	hasLimit bool
	count    uint32

	keys     []K
	echelons map[K][]V
}

// New builds a TopN bounded to limit entries. limit must be nonzero; use
// Limitless for no bound.
func New[K cmp.Ordered, V any](limit uint32) *TopN[K, V] {
	return &TopN[K, V]{limit: limit, hasLimit: true, echelons: make(map[K][]V)}
}

// Limitless builds a TopN with no bound: every inserted value is kept.
func Limitless[K cmp.Ordered, V any]() *TopN[K, V] {
	return &TopN[K, V]{echelons: make(map[K][]V)}
}

// Insert adds v under key k. If this insertion pushes the accumulator past
// its limit, the single worst value (from the highest-keyed, most-recently-
// appended echelon) is evicted and returned as ok=true.
func (t *TopN[K, V]) Insert(k K, v V) (evicted V, ok bool) {
	t.count++
	t.insertInto(k, v)

	if t.hasLimit && t.limit < t.count {
		t.count--
		return t.evictWorst()
	}
	var zero V
	return zero, false
}

func (t *TopN[K, V]) insertInto(k K, v V) {
	if _, exists := t.echelons[k]; !exists {
		idx, _ := slices.BinarySearch(t.keys, k)
		t.keys = slices.Insert(t.keys, idx, k)
	}
	t.echelons[k] = append(t.echelons[k], v)
}

func (t *TopN[K, V]) evictWorst() (V, bool) {
	lastKey := t.keys[len(t.keys)-1]
	echelon := t.echelons[lastKey]

	popped := echelon[len(echelon)-1]
	echelon = echelon[:len(echelon)-1]

	if len(echelon) == 0 {
		delete(t.echelons, lastKey)
		t.keys = t.keys[:len(t.keys)-1]
	} else {
		t.echelons[lastKey] = echelon
	}
	return popped, true
}

// Values returns every retained value, in ascending key order, preserving
// insertion order within an echelon.
func (t *TopN[K, V]) Values() []V {
	var result []V
	for _, k := range t.keys {
		result = append(result, t.echelons[k]...)
	}
	return result
}
