package reconcile

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/awray/decklist/internal/cards"
	"github.com/awray/decklist/internal/refdb"
	"github.com/awray/decklist/internal/refdb/scryfall"
)

func multiset(quantities map[string]int) cards.Multiset {
	m := cards.NewMultiset()
	for name, q := range quantities {
		m.Add(cards.Normalize(name), q)
	}
	return m
}

func database(names ...string) *refdb.Database {
	cardList := make([]scryfall.Card, len(names))
	for i, name := range names {
		cardList[i] = scryfall.Card{Name: name}
	}
	return refdb.Build(refdb.Snapshot{
		ID:        1,
		FetchedAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		Cards:     cardList,
	})
}

func TestReconcileShortfall(t *testing.T) {
	owned := multiset(map[string]int{"Sol Ring": 1})
	required := multiset(map[string]int{"Sol Ring": 3})

	report := Reconcile(owned, required, database("Sol Ring"))

	require.Len(t, report, 1)
	assert.Equal(t, "sol ring", report[0].Key.Name)
	assert.Equal(t, 2, report[0].Missing)
	assert.Equal(t, Exact, report[0].Confidence)
}

func TestReconcileCoveredCardExcluded(t *testing.T) {
	owned := multiset(map[string]int{"Sol Ring": 5})
	required := multiset(map[string]int{"Sol Ring": 3})

	report := Reconcile(owned, required, database("Sol Ring"))
	assert.Empty(t, report)
}

func TestReconcileAbsentCardFullyMissing(t *testing.T) {
	owned := multiset(nil)
	required := multiset(map[string]int{"Counterspell": 4})

	report := Reconcile(owned, required, nil)

	require.Len(t, report, 1)
	assert.Equal(t, 4, report[0].Missing)
}

func TestReconcileFuzzyCorrection(t *testing.T) {
	owned := multiset(nil)
	required := multiset(map[string]int{"Sol Rnig": 2})

	report := Reconcile(owned, required, database("Sol Ring", "Counterspell"))

	require.Len(t, report, 1)
	entry := report[0]
	assert.Equal(t, FuzzyCorrected, entry.Confidence)
	assert.Equal(t, "sol ring", entry.Key.Name, "output must use the corrected name")
	assert.Equal(t, "sol rnig", entry.Original.Name)
	assert.Equal(t, 2, entry.Missing)
	assert.Equal(t, 2, entry.Distance)
}

func TestReconcileUnresolved(t *testing.T) {
	owned := multiset(nil)
	required := multiset(map[string]int{"Xyzzyplugh the Unmatchable": 1})

	report := Reconcile(owned, required, database("Sol Ring"))

	require.Len(t, report, 1)
	assert.Equal(t, Unresolved, report[0].Confidence)
	assert.Equal(t, "xyzzyplugh the unmatchable", report[0].Key.Name, "original name preserved")
	require.Len(t, report.Unresolved(), 1)
}

func TestReconcileNoDatabaseTreatsAllAsExact(t *testing.T) {
	owned := multiset(nil)
	required := multiset(map[string]int{"Sol Rnig": 1, "Totally Made Up Card": 2})

	report := Reconcile(owned, required, nil)

	require.Len(t, report, 2)
	for _, entry := range report {
		assert.Equal(t, Exact, entry.Confidence)
	}
	assert.Equal(t, 3, report.TotalMissing())
}

func TestReconcileFaceNameMatchesWholeCard(t *testing.T) {
	owned := multiset(nil)
	required := multiset(map[string]int{"Fable of the Mirror-Breaker": 1})

	report := Reconcile(owned, required,
		database("Fable of the Mirror-Breaker // Reflection of Kiki-Jiki"))

	require.Len(t, report, 1)
	assert.Equal(t, Exact, report[0].Confidence)
}

func TestReconcileSortedByName(t *testing.T) {
	owned := multiset(nil)
	required := multiset(map[string]int{"Swamp": 1, "Arcane Signet": 1, "Mountain": 1})

	report := Reconcile(owned, required, nil)

	require.Len(t, report, 3)
	assert.Equal(t, "arcane signet", report[0].Key.Name)
	assert.Equal(t, "mountain", report[1].Key.Name)
	assert.Equal(t, "swamp", report[2].Key.Name)
}
