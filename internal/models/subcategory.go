package models

import "time"

// Subcategory belongs to exactly one Category. Deactivating the parent
// cascades active=false to its subcategories.
type Subcategory struct {
	ID          string    `db:"id" json:"id"`
	CategoryID  string    `db:"category_id" json:"category_id"`
	Name        string    `db:"name" json:"name"`
	Description string    `db:"description" json:"description"`
	Active      bool      `db:"active" json:"active"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}
