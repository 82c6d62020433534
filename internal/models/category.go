package models

import "time"

// Category groups quiz questions thematically.
type Category struct {
	ID          string    `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Description string    `db:"description" json:"description"`
	Active      bool      `db:"active" json:"active"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`

	Subcategories []Subcategory `db:"-" json:"subcategories,omitempty"`
}

// CategoryStats summarises a category for the stats endpoint.
type CategoryStats struct {
	Category            Category `json:"category"`
	ActiveSubcategories int      `json:"active_subcategories"`
}
