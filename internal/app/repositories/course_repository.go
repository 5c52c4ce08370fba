package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/portalescolar/diplomas/internal/app/models"
	"github.com/portalescolar/diplomas/internal/pkg/apperrors"
)

// CourseRepository handles database operations for courses
type CourseRepository struct {
	db *pgxpool.Pool
}

// NewCourseRepository creates a new CourseRepository
func NewCourseRepository(db *pgxpool.Pool) *CourseRepository {
	return &CourseRepository{db: db}
}

// GetByID retrieves a course by ID with its instructor populated when present
func (r *CourseRepository) GetByID(ctx context.Context, id int64) (*models.Course, error) {
	query := `
		SELECT c.id, c.name, c.instructor_id, i.name, i.email
		FROM course c
		LEFT JOIN instructor i ON i.id = c.instructor_id
		WHERE c.id = $1
	`

	var course models.Course
	var instructorName *string
	var instructorEmail *string
	err := r.db.QueryRow(ctx, query, id).Scan(
		&course.ID,
		&course.Name,
		&course.InstructorID,
		&instructorName,
		&instructorEmail,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrCourseNotFound
		}
		return nil, fmt.Errorf("error getting course: %w", err)
	}

	if course.InstructorID != nil && instructorName != nil {
		course.Instructor = &models.Instructor{
			ID:    *course.InstructorID,
			Name:  *instructorName,
			Email: instructorEmail,
		}
	}
	return &course, nil
}

// GetOrCreateByName returns the ID of the named course, creating it on demand.
func (r *CourseRepository) GetOrCreateByName(ctx context.Context, name string, instructorID *int64) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, `SELECT id FROM course WHERE name = $1`, name).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, fmt.Errorf("error looking up course: %w", err)
	}

	err = r.db.QueryRow(ctx,
		`INSERT INTO course (name, instructor_id) VALUES ($1, $2) RETURNING id`,
		name, instructorID,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("error creating course: %w", err)
	}
	return id, nil
}
