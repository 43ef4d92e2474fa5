package serialize

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// administrativeKeys are storage-only fields stripped from every exported
// record: identity keys, actor and timestamp columns, owning foreign keys
// (the path name already encodes the parent), computed hashes, and
// visibility/ownership foreign keys.
var administrativeKeys = []string{
	"id",
	"creator_id",
	"created_at",
	"updated_at",
	"last_analyzed",
	"fingerprint",
	"db_id",
	"database_id",
	"table_id",
	"collection_id",
	"location",
	"dashboard_id",
	"dashboardcard_id",
	"personal_owner_id",
	"made_public_by_id",
	"public_uuid",
}

// exportRecord converts an entity struct into a generic record keyed by its
// yaml tags. Going through the encoder keeps the record's field names in the
// exact shape the sink will write.
func exportRecord(entity any) (map[string]any, error) {
	raw, err := yaml.Marshal(entity)
	if err != nil {
		return nil, fmt.Errorf("encode record: %w", err)
	}

	var record map[string]any
	if err := yaml.Unmarshal(raw, &record); err != nil {
		return nil, fmt.Errorf("decode record: %w", err)
	}
	return record, nil
}

// stripAdministrative removes storage-only fields from the top level of a
// record. Nested query structures keep their keys; none of the administrative
// names collide with the query grammar.
func stripAdministrative(record map[string]any) map[string]any {
	for _, key := range administrativeKeys {
		delete(record, key)
	}
	return record
}
