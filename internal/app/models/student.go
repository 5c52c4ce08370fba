package models

import "time"

// Student defines the student model based on the 'student' table
type Student struct {
	ID           int64     `json:"id" db:"id"`                            // Unique identifier for the student record
	FullName     string    `json:"fullName" db:"full_name"`               // Display name printed on diplomas
	NationalID   string    `json:"nationalId" db:"national_id"`           // Unique national ID (CURP), upsert key on roster import
	SchoolID     *int64    `json:"schoolId,omitempty" db:"school_id"`     // Nullable
	GradeID      *int64    `json:"gradeId,omitempty" db:"grade_id"`       // Nullable
	RegisteredAt time.Time `json:"registeredAt" db:"registered_at"`

	// Relations (populated when needed)
	School *School `json:"school,omitempty"`
	Grade  *Grade  `json:"grade,omitempty"`
}
