package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseCardTable(t *testing.T) {
	id, ok := ParseCardTable("card__17")
	assert.True(t, ok)
	assert.Equal(t, int64(17), id)

	_, ok = ParseCardTable("card__")
	assert.False(t, ok)
	_, ok = ParseCardTable("card__x")
	assert.False(t, ok)
	_, ok = ParseCardTable("orders")
	assert.False(t, ok)
	_, ok = ParseCardTable(float64(17))
	assert.False(t, ok)
	_, ok = ParseCardTable(nil)
	assert.False(t, ok)
}

func TestCard_SourceCardID(t *testing.T) {
	card := &Card{DatasetQuery: Query{
		"query": map[string]any{"source-table": "card__7"},
	}}
	id, ok := card.SourceCardID()
	assert.True(t, ok)
	assert.Equal(t, int64(7), id)

	// A real table id is not a card source.
	card = &Card{DatasetQuery: Query{
		"query": map[string]any{"source-table": float64(10)},
	}}
	_, ok = card.SourceCardID()
	assert.False(t, ok)

	// Native queries carry no inner query map at all.
	card = &Card{DatasetQuery: Query{"native": map[string]any{"query": "SELECT 1"}}}
	_, ok = card.SourceCardID()
	assert.False(t, ok)
}
