// Package table implements a compact index of byte-string keys that answers
// "which stored keys are prefixes of this input" without a trie.
package table

// TableSize is the number of slots of the prefix filter, one per 16-bit hash.
const TableSize = 1 << 16

// Slot states of the prefix filter.
const (
	none   = iota // no stored key starts with a prefix hashing here
	prefix        // a stored key starts with a prefix hashing here
	key           // a complete stored key hashes here
)

// PrefixTable maps byte keys to values. A fixed filter indexed by a rolling
// hash of the key bytes lets lookups stop at the first byte no stored key
// can continue with; the map resolves hash collisions.
type PrefixTable[T any] struct {
	filter [TableSize]byte
	elems  map[string]T
	maxLen int
}

func New[T any]() *PrefixTable[T] {
	return &PrefixTable[T]{
		elems: make(map[string]T),
	}
}

func hashStep(h uint16, b byte) uint16 {
	return (h << 2) + uint16(b)
}

// Insert stores v under k, replacing any previous value.
func (t *PrefixTable[T]) Insert(k []byte, v T) {
	var h uint16
	for _, b := range k {
		h = hashStep(h, b)
		t.filter[h] = max(t.filter[h], prefix)
	}
	t.filter[h] = key
	t.elems[string(k)] = v
	t.maxLen = max(t.maxLen, len(k))
}

func (t *PrefixTable[T]) Get(k []byte) (T, bool) {
	v, ok := t.elems[string(k)]
	return v, ok
}

// Walk calls onMatch for every stored key that is a prefix of data, shortest
// first, until onMatch returns true.
func (t *PrefixTable[T]) Walk(data []byte, onMatch func(T) bool) {
	var h uint16
	for i, b := range data {
		if i >= t.maxLen {
			return
		}

		h = hashStep(h, b)
		switch t.filter[h] {
		case none:
			return
		case key:
			if v, ok := t.elems[string(data[:i+1])]; ok && onMatch(v) {
				return
			}
		}
	}
}

// Longest returns the value of the longest stored key that is a prefix of
// data, together with the length of that key.
func (t *PrefixTable[T]) Longest(data []byte) (v T, n int, ok bool) {
	var h uint16
	for i, b := range data {
		if i >= t.maxLen {
			break
		}

		h = hashStep(h, b)
		if t.filter[h] == none {
			break
		}
		if t.filter[h] == key {
			if e, found := t.elems[string(data[:i+1])]; found {
				v, n, ok = e, i+1, true
			}
		}
	}
	return v, n, ok
}

// Size returns the number of stored keys.
func (t *PrefixTable[T]) Size() int {
	return len(t.elems)
}

// MaxKeyLen returns the length of the longest stored key.
func (t *PrefixTable[T]) MaxKeyLen() int {
	return t.maxLen
}
