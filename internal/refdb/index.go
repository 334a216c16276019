package refdb

import (
	"sort"

	"github.com/agnivade/levenshtein"

	"github.com/awray/decklist/internal/cards"
)

const (
	// maxCandidates bounds how many trigram candidates are verified with
	// an edit-distance computation per query.
	maxCandidates = 64

	// minFuzzyDistance is the most forgiving acceptance threshold; see
	// acceptDistance.
	minFuzzyDistance = 2
)

// Match is a fuzzy-match result: the canonical key of the closest known
// card and its edit distance from the query.
type Match struct {
	Key      cards.Key
	Distance int
}

// Database is the searchable index over one snapshot's card names. It is
// built once per snapshot load and shared read-only across all
// reconciliation calls.
type Database struct {
	snapshot Snapshot // metadata only; Cards is not retained

	// exact maps every normalized full name and face name to the index
	// of its canonical full name in names.
	exact map[string]int

	// names holds unique normalized names (full and per-face), sorted.
	names []string

	// canonical maps a names index to the canonical full-name key, so a
	// hit on a single face resolves to the whole card.
	canonical []cards.Key

	// trigrams is the inverted index: trigram -> indices into names.
	trigrams map[string][]int
}

// Build constructs the reference database for a snapshot. The snapshot's
// card list is consumed during the build and not retained.
func Build(snapshot Snapshot) *Database {
	db := &Database{
		exact:    make(map[string]int),
		trigrams: make(map[string][]int),
	}

	seen := make(map[string]cards.Key)
	for _, card := range snapshot.Cards {
		full := cards.Normalize(card.Name)
		if full.Name == "" {
			continue
		}
		if _, ok := seen[full.Name]; !ok {
			seen[full.Name] = full
		}
		for _, face := range full.Faces() {
			if _, ok := seen[face]; !ok {
				seen[face] = full
			}
		}
	}

	db.names = make([]string, 0, len(seen))
	for name := range seen {
		db.names = append(db.names, name)
	}
	sort.Strings(db.names)

	db.canonical = make([]cards.Key, len(db.names))
	for i, name := range db.names {
		db.exact[name] = i
		db.canonical[i] = seen[name]
		for _, gram := range trigrams(name) {
			db.trigrams[gram] = append(db.trigrams[gram], i)
		}
	}

	snapshot.Cards = nil
	db.snapshot = snapshot
	return db
}

// Snapshot returns the metadata of the snapshot this database was built
// from.
func (db *Database) Snapshot() Snapshot {
	return db.snapshot
}

// Size returns the number of indexed names.
func (db *Database) Size() int {
	return len(db.names)
}

// ExactMatch reports whether the key names a known card, either by its
// full name or by a single face of a multi-faced card.
func (db *Database) ExactMatch(key cards.Key) bool {
	_, ok := db.exact[key.Name]
	return ok
}

// BestFuzzyMatch returns the single closest known name within the
// acceptance threshold, or ok=false when no candidate clears it. Ties are
// broken by smaller edit distance, then lexicographic candidate name. A
// hit on a face name resolves to the canonical full-name key.
//
// Candidates come from the trigram inverted index, so each query touches
// only names sharing at least one trigram with it instead of scanning the
// whole snapshot.
func (db *Database) BestFuzzyMatch(key cards.Key) (Match, bool) {
	query := key.Name
	if query == "" {
		return Match{}, false
	}

	counts := make(map[int]int)
	for _, gram := range trigrams(query) {
		for _, idx := range db.trigrams[gram] {
			counts[idx]++
		}
	}
	if len(counts) == 0 {
		return Match{}, false
	}

	// Rank candidates by shared-trigram count and verify only the top
	// slice with a real edit-distance computation.
	candidates := make([]int, 0, len(counts))
	for idx := range counts {
		candidates = append(candidates, idx)
	}
	sort.Slice(candidates, func(i, j int) bool {
		if counts[candidates[i]] != counts[candidates[j]] {
			return counts[candidates[i]] > counts[candidates[j]]
		}
		return db.names[candidates[i]] < db.names[candidates[j]]
	})
	if len(candidates) > maxCandidates {
		candidates = candidates[:maxCandidates]
	}

	threshold := acceptDistance(query)
	best := -1
	bestDist := threshold + 1
	for _, idx := range candidates {
		dist := levenshtein.ComputeDistance(query, db.names[idx])
		if dist < bestDist || (dist == bestDist && best >= 0 && db.names[idx] < db.names[best]) {
			best = idx
			bestDist = dist
		}
	}
	if best < 0 || bestDist > threshold {
		return Match{}, false
	}
	return Match{Key: db.canonical[best], Distance: bestDist}, true
}

// acceptDistance is the fuzzy acceptance threshold: a candidate is
// accepted when its edit distance is at most max(2, len(query)/5). Two
// edits always pass so short names still catch transpositions, and the
// allowance grows for long names where a 20% error rate is still
// recognizably the same card.
func acceptDistance(query string) int {
	d := len([]rune(query)) / 5
	if d < minFuzzyDistance {
		return minFuzzyDistance
	}
	return d
}

// trigrams returns the character trigrams of s. Names shorter than three
// runes are indexed as a single gram.
func trigrams(s string) []string {
	runes := []rune(s)
	if len(runes) < 3 {
		return []string{s}
	}
	grams := make([]string, 0, len(runes)-2)
	seen := make(map[string]struct{}, len(runes)-2)
	for i := 0; i+3 <= len(runes); i++ {
		gram := string(runes[i : i+3])
		if _, ok := seen[gram]; ok {
			continue
		}
		seen[gram] = struct{}{}
		grams = append(grams, gram)
	}
	return grams
}
