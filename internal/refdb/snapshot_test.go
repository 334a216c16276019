package refdb

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadCards(t *testing.T) {
	input := `[
		{"id": "a", "name": "Sol Ring", "layout": "normal"},
		{"id": "b", "name": "Brazen Borrower // Petty Theft", "layout": "adventure",
		 "card_faces": [{"name": "Brazen Borrower"}, {"name": "Petty Theft"}],
		 "prices": {"usd": "9.99"}, "unknown_field": 42}
	]`

	cardList, err := ReadCards(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, cardList, 2)

	assert.Equal(t, "Sol Ring", cardList[0].Name)
	assert.Equal(t, "adventure", cardList[1].Layout)
	require.Len(t, cardList[1].CardFaces, 2)
	assert.Equal(t, "Petty Theft", cardList[1].CardFaces[1].Name)
}

func TestReadCardsEmptyArray(t *testing.T) {
	cardList, err := ReadCards(strings.NewReader("[]"))
	require.NoError(t, err)
	assert.Empty(t, cardList)
}

func TestReadCardsRejectsNonArray(t *testing.T) {
	_, err := ReadCards(strings.NewReader(`{"object": "error"}`))
	assert.Error(t, err)
}

func TestReadCardsRejectsTruncated(t *testing.T) {
	_, err := ReadCards(strings.NewReader(`[{"name": "Sol Ring"}`))
	assert.Error(t, err)
}
