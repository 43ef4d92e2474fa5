package models

import "time"

// Dashboard is a grid of dashboard-cards, optionally filed in a collection.
type Dashboard struct {
	ID             int64      `yaml:"id"`
	Name           string     `yaml:"name"`
	Description    *string    `yaml:"description,omitempty"`
	CollectionID   *int64     `yaml:"collection_id,omitempty"`
	CreatorID      int64      `yaml:"creator_id"`
	Parameters     Query      `yaml:"parameters,omitempty"`
	MadePublicByID *int64     `yaml:"made_public_by_id,omitempty"`
	PublicUUID     *string    `yaml:"public_uuid,omitempty"`
	CreatedAt      time.Time  `yaml:"created_at"`
	UpdatedAt      *time.Time `yaml:"updated_at,omitempty"`
}

// DashboardCard places a card on a dashboard at a grid position.
type DashboardCard struct {
	ID                    int64      `yaml:"id"`
	DashboardID           int64      `yaml:"dashboard_id"`
	CardID                *int64     `yaml:"card_id,omitempty"` // nil for text/virtual cards
	Row                   int        `yaml:"row"`
	Col                   int        `yaml:"col"`
	SizeX                 int        `yaml:"size_x"`
	SizeY                 int        `yaml:"size_y"`
	ParameterMappings     Query      `yaml:"parameter_mappings,omitempty"`
	VisualizationSettings Query      `yaml:"visualization_settings,omitempty"`
	CreatedAt             time.Time  `yaml:"created_at"`
	UpdatedAt             *time.Time `yaml:"updated_at,omitempty"`
}

// DashboardCardSeries adds an extra card's results to a dashboard-card.
type DashboardCardSeries struct {
	ID              int64 `yaml:"id"`
	DashboardCardID int64 `yaml:"dashboardcard_id"`
	CardID          int64 `yaml:"card_id"`
	Position        int   `yaml:"position"`
}
