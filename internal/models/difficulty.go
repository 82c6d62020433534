package models

import "time"

// DifficultyLevel names one of the fixed quiz difficulty tiers.
type DifficultyLevel string

const (
	DifficultyEasy   DifficultyLevel = "Facil"
	DifficultyMedium DifficultyLevel = "Medio"
	DifficultyHard   DifficultyLevel = "Dificil"
)

// ValidDifficultyLevel reports whether level is a recognized tier.
func ValidDifficultyLevel(level DifficultyLevel) bool {
	switch level {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

// Difficulty is a catalog row for one difficulty tier.
type Difficulty struct {
	ID          string          `db:"id" json:"id"`
	Level       DifficultyLevel `db:"level" json:"level"`
	Description string          `db:"description" json:"description"`
	Weight      int             `db:"weight" json:"weight"`
	Active      bool            `db:"active" json:"active"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time       `db:"updated_at" json:"updated_at"`
}
