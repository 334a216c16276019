// Package decklist reads and writes the plain-text decklist format: one
// marker-prefixed card name per line, one line per copy.
//
//	## Sol Ring
//	## Sol Ring
//	## Arcane Signet
//
// Repeated lines accumulate quantity, so the example above requires two
// copies of Sol Ring and one Arcane Signet.
package decklist

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/awray/decklist/internal/cards"
)

// Marker is the fixed prefix every card line carries.
const Marker = "## "

// sideboardLabel appears in some exported lists to separate boards. It is
// not a card and is skipped.
const sideboardLabel = "sideboard"

// Parse reads a decklist and returns the required-card multiset. Blank
// lines, the Sideboard label, and lines that do not match the marker are
// skipped rather than treated as errors, so one malformed line never
// aborts the load. Parse returns *cards.FormatError only when non-empty
// input contains no valid card line at all.
func Parse(r io.Reader) (cards.Multiset, error) {
	required := cards.NewMultiset()
	scanner := bufio.NewScanner(r)

	empty := true
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		empty = false

		if strings.EqualFold(line, sideboardLabel) {
			continue
		}
		name, ok := strings.CutPrefix(line, Marker)
		if !ok {
			continue
		}
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		required.Add(cards.Normalize(name), 1)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read decklist: %w", err)
	}

	if len(required) == 0 && !empty {
		return nil, &cards.FormatError{Source: "decklist", Reason: "no valid card lines found"}
	}
	return required, nil
}

// ParseFile opens path and parses it as a decklist.
func ParseFile(path string) (cards.Multiset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open decklist file: %w", err)
	}
	defer func() { _ = f.Close() }()
	return Parse(f)
}
