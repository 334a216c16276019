// Package refdb provides the in-memory reference database of known card
// names, built from one immutable Scryfall bulk-data snapshot, with exact
// and fuzzy name lookup.
package refdb

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/awray/decklist/internal/refdb/scryfall"
)

// Snapshot is one immutable, timestamped download of the full known-card
// dataset. Snapshots are never edited in place; a newer download replaces
// an older one wholesale.
type Snapshot struct {
	ID        int64
	Filename  string
	Source    string
	FetchedAt time.Time
	Cards     []scryfall.Card
}

// ReadCards decodes a snapshot file (a JSON array of Scryfall card
// records) streaming one element at a time, since bulk files run well
// past 100 MB.
func ReadCards(r io.Reader) ([]scryfall.Card, error) {
	dec := json.NewDecoder(r)

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '[' {
		return nil, fmt.Errorf("read snapshot: expected JSON array, got %v", tok)
	}

	var cards []scryfall.Card
	for dec.More() {
		var card scryfall.Card
		if err := dec.Decode(&card); err != nil {
			return nil, fmt.Errorf("decode card record %d: %w", len(cards), err)
		}
		cards = append(cards, card)
	}
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	return cards, nil
}

// ReadSnapshotFile reads and decodes the snapshot file at path.
func ReadSnapshotFile(path string) ([]scryfall.Card, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open snapshot file: %w", err)
	}
	defer func() { _ = f.Close() }()
	return ReadCards(f)
}
