package models

import "encoding/json"

// Query holds a nested query or expression definition as stored in JSONB.
// Values decode to the usual JSON shapes: map[string]any, []any, float64,
// string, bool, nil.
type Query map[string]any

// Scan implements sql.Scanner for reading JSONB from the database.
func (q *Query) Scan(value interface{}) error {
	if value == nil {
		*q = nil
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		*q = nil
		return nil
	}

	return json.Unmarshal(bytes, q)
}

// Value implements driver.Valuer for writing JSONB to the database.
func (q Query) Value() (interface{}, error) {
	if q == nil {
		return nil, nil
	}
	return json.Marshal(q)
}
