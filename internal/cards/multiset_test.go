package cards

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMultisetAccumulates(t *testing.T) {
	m := NewMultiset()
	key := Normalize("Sol Ring")

	m.Add(key, 2)
	m.Add(key, 3)

	assert.Equal(t, 5, m.Quantity(key))
	assert.Len(t, m, 1)
}

func TestMultisetIgnoresNonPositive(t *testing.T) {
	m := NewMultiset()
	key := Normalize("Sol Ring")

	m.Add(key, 0)
	m.Add(key, -4)

	assert.Equal(t, 0, m.Quantity(key))
	assert.Empty(t, m)
}

func TestMultisetEntriesSorted(t *testing.T) {
	m := NewMultiset()
	m.Add(Normalize("Swamp"), 4)
	m.Add(Normalize("Arcane Signet"), 1)
	m.Add(Normalize("Mountain"), 2)

	entries := m.Entries()
	assert.Equal(t, "arcane signet", entries[0].Key.Name)
	assert.Equal(t, "mountain", entries[1].Key.Name)
	assert.Equal(t, "swamp", entries[2].Key.Name)
	assert.Equal(t, 7, m.Total())
}
