package models

// Grade defines the grade level model based on the 'grade' table
type Grade struct {
	ID   int64  `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
}
