// Package collection loads a personal card collection from a tabular
// export into a cards.Multiset. Formats are pluggable: each supported
// export format implements Adapter, so new tabular sources can be added
// without touching the reconciliation engine.
package collection

import (
	"fmt"
	"io"
	"os"

	"github.com/awray/decklist/internal/cards"
)

// Adapter parses one tabular collection format into a card multiset.
// Implementations must accumulate duplicate names (summing quantities),
// drop zero-quantity rows, and ignore columns they do not recognize.
type Adapter interface {
	// Name identifies the format, e.g. "moxfield-csv".
	Name() string

	// Load reads the full tabular source and returns the owned-card
	// multiset. It returns *cards.FormatError when required columns are
	// absent and *cards.ParseError when a quantity fails to parse.
	Load(r io.Reader) (cards.Multiset, error)
}

// LoadFile opens path and parses it with the given adapter.
func LoadFile(path string, adapter Adapter) (cards.Multiset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open collection file: %w", err)
	}
	defer func() { _ = f.Close() }()

	owned, err := adapter.Load(f)
	if err != nil {
		return nil, fmt.Errorf("load %s collection from %s: %w", adapter.Name(), path, err)
	}
	return owned, nil
}
