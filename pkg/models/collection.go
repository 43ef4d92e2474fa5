package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// RootLocation is the location string of top-level collections.
const RootLocation = "/"

// Collection groups dashboards and cards into a folder hierarchy. Location
// encodes the ancestor chain as a slash-delimited list of collection ids,
// e.g. "/" for a root collection or "/1/4/" for a collection nested under
// collection 4, itself nested under collection 1.
type Collection struct {
	ID              int64      `yaml:"id"`
	Name            string     `yaml:"name"`
	Description     *string    `yaml:"description,omitempty"`
	Color           *string    `yaml:"color,omitempty"`
	Location        string     `yaml:"location"`
	PersonalOwnerID *int64     `yaml:"personal_owner_id,omitempty"`
	CreatedAt       time.Time  `yaml:"created_at"`
	UpdatedAt       *time.Time `yaml:"updated_at,omitempty"`
}

// IsRoot reports whether the collection sits at the top of the hierarchy.
func (c *Collection) IsRoot() bool {
	return c.Location == "" || c.Location == RootLocation
}

// AncestorIDs parses the location string into the ordered chain of ancestor
// collection ids, outermost first. A root location yields an empty chain.
func (c *Collection) AncestorIDs() ([]int64, error) {
	if c.IsRoot() {
		return nil, nil
	}

	var ids []int64
	for _, part := range strings.Split(c.Location, "/") {
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid collection location %q: %w", c.Location, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
