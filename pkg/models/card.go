package models

import (
	"strconv"
	"strings"
	"time"
)

// CardTablePrefix marks a source-table value that points at another saved
// card instead of a real table, e.g. "card__17".
const CardTablePrefix = "card__"

// Card is a saved question: a query plus display settings, optionally filed
// in a collection. Its query may be built on top of another card.
type Card struct {
	ID                    int64      `yaml:"id"`
	Name                  string     `yaml:"name"`
	Description           *string    `yaml:"description,omitempty"`
	CollectionID          *int64     `yaml:"collection_id,omitempty"`
	CreatorID             int64      `yaml:"creator_id"`
	DatabaseID            int64      `yaml:"database_id"`
	TableID               *int64     `yaml:"table_id,omitempty"`
	QueryType             string     `yaml:"query_type"`
	Display               string     `yaml:"display"`
	DatasetQuery          Query      `yaml:"dataset_query"`
	VisualizationSettings Query      `yaml:"visualization_settings,omitempty"`
	MadePublicByID        *int64     `yaml:"made_public_by_id,omitempty"`
	PublicUUID            *string    `yaml:"public_uuid,omitempty"`
	CreatedAt             time.Time  `yaml:"created_at"`
	UpdatedAt             *time.Time `yaml:"updated_at,omitempty"`
}

// SourceCardID returns the id of the card this card's query selects from,
// if its source-table is a card__<id> marker.
func (c *Card) SourceCardID() (int64, bool) {
	query, ok := c.DatasetQuery["query"].(map[string]any)
	if !ok {
		return 0, false
	}
	return ParseCardTable(query["source-table"])
}

// ParseCardTable extracts the card id from a "card__<id>" source-table value.
func ParseCardTable(value any) (int64, bool) {
	s, ok := value.(string)
	if !ok || !strings.HasPrefix(s, CardTablePrefix) {
		return 0, false
	}
	id, err := strconv.ParseInt(strings.TrimPrefix(s, CardTablePrefix), 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}
