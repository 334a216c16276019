package collection

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/awray/decklist/internal/cards"
)

// Moxfield column headers. Moxfield exports carry many more columns
// (edition, condition, foil, prices); only these two matter here.
const (
	moxfieldNameColumn  = "Name"
	moxfieldCountColumn = "Count"
)

// MoxfieldCSV parses Moxfield collection CSV exports. Moxfield lists each
// printing of a card as its own row; quantities for the same name are
// summed into a single entry.
type MoxfieldCSV struct{}

// NewMoxfieldCSV returns the Moxfield CSV format adapter.
func NewMoxfieldCSV() *MoxfieldCSV {
	return &MoxfieldCSV{}
}

// Name implements Adapter.
func (a *MoxfieldCSV) Name() string {
	return "moxfield-csv"
}

// Load implements Adapter.
func (a *MoxfieldCSV) Load(r io.Reader) (cards.Multiset, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &cards.FormatError{Source: a.Name(), Reason: "empty file"}
		}
		return nil, fmt.Errorf("read header: %w", err)
	}

	nameCol, countCol := -1, -1
	for i, col := range header {
		switch strings.TrimSpace(col) {
		case moxfieldNameColumn:
			nameCol = i
		case moxfieldCountColumn:
			countCol = i
		}
	}
	if nameCol < 0 || countCol < 0 {
		return nil, &cards.FormatError{
			Source: a.Name(),
			Reason: fmt.Sprintf("missing required columns %q and/or %q", moxfieldNameColumn, moxfieldCountColumn),
		}
	}

	owned := cards.NewMultiset()
	row := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", row+1, err)
		}
		row++

		if nameCol >= len(record) || countCol >= len(record) {
			return nil, &cards.FormatError{
				Source: a.Name(),
				Reason: fmt.Sprintf("row %d has %d columns, expected at least %d", row, len(record), max(nameCol, countCol)+1),
			}
		}

		name := strings.TrimSpace(record[nameCol])
		if name == "" {
			continue
		}

		quantity, err := strconv.Atoi(strings.TrimSpace(record[countCol]))
		if err != nil || quantity < 0 {
			return nil, &cards.ParseError{Row: row, Field: moxfieldCountColumn, Value: record[countCol]}
		}
		if quantity == 0 {
			continue
		}

		owned.Add(cards.Normalize(name), quantity)
	}

	return owned, nil
}
