// Package reconcile diffs a decklist against an owned collection and
// classifies each missing card's name against the reference database.
package reconcile

import (
	"sort"

	"github.com/awray/decklist/internal/cards"
	"github.com/awray/decklist/internal/refdb"
)

// Confidence classifies how a missing card's name was validated.
type Confidence int

const (
	// Exact means the name matched the reference database directly, or
	// no reference database was in use.
	Exact Confidence = iota

	// FuzzyCorrected means the name did not match but a close known name
	// did; the entry carries the corrected key and keeps the original.
	FuzzyCorrected

	// Unresolved means no known name came close enough; the original
	// name is kept as-is and could not be validated.
	Unresolved
)

func (c Confidence) String() string {
	switch c {
	case Exact:
		return "Exact"
	case FuzzyCorrected:
		return "FuzzyCorrected"
	case Unresolved:
		return "Unresolved"
	default:
		return "Unknown"
	}
}

// Entry is one missing card in the report. For FuzzyCorrected entries Key
// is the corrected name and Original the decklist's spelling; otherwise
// Key is the decklist key and Original is zero.
type Entry struct {
	Key        cards.Key
	Missing    int
	Confidence Confidence
	Original   cards.Key
	Distance   int
}

// Report is the ordered missing-card report, sorted by normalized name.
// It is produced fresh on every reconciliation run and never mutated.
type Report []Entry

// Unresolved returns the entries that could not be validated.
func (r Report) Unresolved() []Entry {
	var out []Entry
	for _, e := range r {
		if e.Confidence == Unresolved {
			out = append(out, e)
		}
	}
	return out
}

// TotalMissing returns the total shortfall across all entries.
func (r Report) TotalMissing() int {
	total := 0
	for _, e := range r {
		total += e.Missing
	}
	return total
}

// Matcher is the reference-database view the engine consults. Satisfied
// by *refdb.Database.
type Matcher interface {
	ExactMatch(key cards.Key) bool
	BestFuzzyMatch(key cards.Key) (refdb.Match, bool)
}

// Reconcile computes the missing-card report: for every decklist key with
// required quantity R and owned quantity O, a shortfall R-O > 0 becomes a
// report entry. Cards owned in sufficient quantity are excluded entirely.
//
// When db is nil (reference database disabled or unavailable) every entry
// is Exact by assumption; accuracy degrades but the run never fails. Otherwise
// each candidate is validated: exact hits stay Exact, near misses become
// FuzzyCorrected under the corrected name, and everything else is
// Unresolved with the original name preserved.
func Reconcile(owned, required cards.Multiset, db Matcher) Report {
	report := make(Report, 0)

	for _, want := range required.Entries() {
		missing := want.Quantity - owned.Quantity(want.Key)
		if missing <= 0 {
			continue
		}

		entry := Entry{Key: want.Key, Missing: missing, Confidence: Exact}
		if db != nil && !db.ExactMatch(want.Key) {
			if match, ok := db.BestFuzzyMatch(want.Key); ok {
				entry.Key = match.Key
				entry.Original = want.Key
				entry.Distance = match.Distance
				entry.Confidence = FuzzyCorrected
			} else {
				entry.Confidence = Unresolved
			}
		}
		report = append(report, entry)
	}

	// Fuzzy correction can change names, so re-sort for stable output.
	sort.Slice(report, func(i, j int) bool {
		if report[i].Key.Name != report[j].Key.Name {
			return report[i].Key.Name < report[j].Key.Name
		}
		return report[i].Original.Name < report[j].Original.Name
	})
	return report
}
