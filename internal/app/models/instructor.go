package models

// Instructor defines the instructor model based on the 'instructor' table
type Instructor struct {
	ID    int64   `json:"id" db:"id"`
	Name  string  `json:"name" db:"name"`
	Email *string `json:"email,omitempty" db:"email"` // Nullable
}
