package models

import "time"

// AgeRange bounds the target audience of a quiz. Active ranges never
// overlap.
type AgeRange struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	MinAge    int       `db:"min_age" json:"min_age"`
	MaxAge    int       `db:"max_age" json:"max_age"`
	Active    bool      `db:"active" json:"active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Includes reports whether age falls inside the range.
func (r *AgeRange) Includes(age int) bool {
	return age >= r.MinAge && age <= r.MaxAge
}
