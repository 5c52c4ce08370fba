package models

// Course represents a course a diploma can cite.
type Course struct {
	ID           int64  `json:"id" db:"id"`
	Name         string `json:"name" db:"name"`
	InstructorID *int64 `json:"instructorId,omitempty" db:"instructor_id"` // Nullable

	// Relations (populated when needed)
	Instructor *Instructor `json:"instructor,omitempty"`
}
