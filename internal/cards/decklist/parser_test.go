package decklist

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/awray/decklist/internal/cards"
)

func TestParseRepetition(t *testing.T) {
	input := "## Sol Ring\n## Sol Ring\n## Sol Ring\n## Arcane Signet\n"

	required, err := Parse(strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, 3, required.Quantity(cards.Normalize("Sol Ring")))
	assert.Equal(t, 1, required.Quantity(cards.Normalize("Arcane Signet")))
}

func TestParseSkipsNoise(t *testing.T) {
	input := `## Sol Ring

Sideboard
this line has no marker
##
## Counterspell
`
	required, err := Parse(strings.NewReader(input))
	require.NoError(t, err)

	assert.Len(t, required, 2)
	assert.Equal(t, 1, required.Quantity(cards.Normalize("Sol Ring")))
	assert.Equal(t, 1, required.Quantity(cards.Normalize("Counterspell")))
}

func TestParseNoValidLines(t *testing.T) {
	_, err := Parse(strings.NewReader("not a card\nstill not a card\n"))

	var formatErr *cards.FormatError
	require.ErrorAs(t, err, &formatErr)
}

func TestParseEmptyInput(t *testing.T) {
	// Empty input is an empty decklist, not a format error.
	required, err := Parse(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, required)

	required, err = Parse(strings.NewReader("\n\n  \n"))
	require.NoError(t, err)
	assert.Empty(t, required)
}

func TestParseNormalizesNames(t *testing.T) {
	input := "## Lórien Revealed\n## lorien revealed\n"

	required, err := Parse(strings.NewReader(input))
	require.NoError(t, err)

	assert.Len(t, required, 1)
	assert.Equal(t, 2, required.Quantity(cards.Normalize("Lorien Revealed")))
}
