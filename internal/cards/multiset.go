package cards

import "sort"

// Entry is a card with a quantity. Quantity is never negative; entries
// with quantity zero only appear transiently while diffing and are never
// stored in a Multiset.
type Entry struct {
	Key      Key
	Quantity int
}

// Multiset maps card keys to quantities. It represents either an owned
// collection or a required decklist. Loaders build one and hand it off;
// after that it is treated as read-only.
type Multiset map[Key]int

// NewMultiset returns an empty multiset.
func NewMultiset() Multiset {
	return make(Multiset)
}

// Add accumulates n copies of the key. Non-positive n is ignored, so
// duplicate rows sum instead of overwriting and zero rows never persist.
func (m Multiset) Add(key Key, n int) {
	if n <= 0 {
		return
	}
	m[key] += n
}

// Quantity returns the stored quantity for key, or 0 when absent.
func (m Multiset) Quantity(key Key) int {
	return m[key]
}

// Entries returns the multiset contents sorted by normalized name, so
// output derived from it is reproducible across runs.
func (m Multiset) Entries() []Entry {
	entries := make([]Entry, 0, len(m))
	for k, q := range m {
		entries = append(entries, Entry{Key: k, Quantity: q})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Key.Name != entries[j].Key.Name {
			return entries[i].Key.Name < entries[j].Key.Name
		}
		return entries[i].Key.Face < entries[j].Key.Face
	})
	return entries
}

// Total returns the sum of all quantities.
func (m Multiset) Total() int {
	total := 0
	for _, q := range m {
		total += q
	}
	return total
}
