package models

import "time"

// VirtualDatabaseID is the reserved sentinel id for the synthetic data source
// backing queries that are built entirely from other saved questions. It never
// exists in the database table and must not be resolved through lookup.
const VirtualDatabaseID int64 = -1337

// VirtualDatabaseMarker is the fixed path marker the sentinel id rewrites to.
const VirtualDatabaseMarker = "database/virtual"

// Database represents a connected data warehouse.
type Database struct {
	ID          int64      `yaml:"id"`
	Name        string     `yaml:"name"`
	Description *string    `yaml:"description,omitempty"`
	Engine      string     `yaml:"engine"`
	Features    []string   `yaml:"features,omitempty"` // capability probe, transient
	CreatedAt   time.Time  `yaml:"created_at"`
	UpdatedAt   *time.Time `yaml:"updated_at,omitempty"`
}

// Table represents a table inside a database schema.
type Table struct {
	ID          int64      `yaml:"id"`
	DatabaseID  int64      `yaml:"db_id"`
	Schema      string     `yaml:"schema"`
	Name        string     `yaml:"name"`
	DisplayName string     `yaml:"display_name,omitempty"`
	Description *string    `yaml:"description,omitempty"`
	CreatedAt   time.Time  `yaml:"created_at"`
	UpdatedAt   *time.Time `yaml:"updated_at,omitempty"`
}

// Field represents a column of a table.
type Field struct {
	ID           int64      `yaml:"id"`
	TableID      int64      `yaml:"table_id"`
	Name         string     `yaml:"name"`
	DisplayName  string     `yaml:"display_name,omitempty"`
	Description  *string    `yaml:"description,omitempty"`
	BaseType     string     `yaml:"base_type"`
	SpecialType  *string    `yaml:"special_type,omitempty"`
	Fingerprint  *string    `yaml:"fingerprint,omitempty"` // computed value hash, transient
	LastAnalyzed *time.Time `yaml:"last_analyzed,omitempty"`
	CreatedAt    time.Time  `yaml:"created_at"`
	UpdatedAt    *time.Time `yaml:"updated_at,omitempty"`
}

// Metric represents a saved aggregation definition scoped to a table.
type Metric struct {
	ID          int64      `yaml:"id"`
	TableID     int64      `yaml:"table_id"`
	CreatorID   int64      `yaml:"creator_id"`
	Name        string     `yaml:"name"`
	Description *string    `yaml:"description,omitempty"`
	Definition  Query      `yaml:"definition"`
	CreatedAt   time.Time  `yaml:"created_at"`
	UpdatedAt   *time.Time `yaml:"updated_at,omitempty"`
}

// Segment represents a saved filter definition scoped to a table.
type Segment struct {
	ID          int64      `yaml:"id"`
	TableID     int64      `yaml:"table_id"`
	CreatorID   int64      `yaml:"creator_id"`
	Name        string     `yaml:"name"`
	Description *string    `yaml:"description,omitempty"`
	Definition  Query      `yaml:"definition"`
	CreatedAt   time.Time  `yaml:"created_at"`
	UpdatedAt   *time.Time `yaml:"updated_at,omitempty"`
}
