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

// StudentRepository handles database operations for students
type StudentRepository struct {
	db *pgxpool.Pool
}

// NewStudentRepository creates a new StudentRepository
func NewStudentRepository(db *pgxpool.Pool) *StudentRepository {
	return &StudentRepository{db: db}
}

// GetByID retrieves a student by ID, with school and grade populated when present
func (r *StudentRepository) GetByID(ctx context.Context, id int64) (*models.Student, error) {
	query := `
		SELECT s.id, s.full_name, s.national_id, s.school_id, s.grade_id, s.registered_at,
		       sc.name, g.name
		FROM student s
		LEFT JOIN school sc ON sc.id = s.school_id
		LEFT JOIN grade g ON g.id = s.grade_id
		WHERE s.id = $1
	`

	var student models.Student
	var schoolName, gradeName *string
	err := r.db.QueryRow(ctx, query, id).Scan(
		&student.ID,
		&student.FullName,
		&student.NationalID,
		&student.SchoolID,
		&student.GradeID,
		&student.RegisteredAt,
		&schoolName,
		&gradeName,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrStudentNotFound
		}
		return nil, fmt.Errorf("error getting student: %w", err)
	}

	if student.SchoolID != nil && schoolName != nil {
		student.School = &models.School{ID: *student.SchoolID, Name: *schoolName}
	}
	if student.GradeID != nil && gradeName != nil {
		student.Grade = &models.Grade{ID: *student.GradeID, Name: *gradeName}
	}
	return &student, nil
}

// GetByNationalID retrieves a student by their national ID (CURP)
func (r *StudentRepository) GetByNationalID(ctx context.Context, nationalID string) (*models.Student, error) {
	query := `
		SELECT id, full_name, national_id, school_id, grade_id, registered_at
		FROM student
		WHERE national_id = $1
	`

	var student models.Student
	err := r.db.QueryRow(ctx, query, nationalID).Scan(
		&student.ID,
		&student.FullName,
		&student.NationalID,
		&student.SchoolID,
		&student.GradeID,
		&student.RegisteredAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrStudentNotFound
		}
		return nil, fmt.Errorf("error getting student by national ID: %w", err)
	}

	return &student, nil
}

// Upsert inserts a student or updates the existing row keyed by national ID.
// Roster re-imports overwrite name, school and grade; students are never deleted.
func (r *StudentRepository) Upsert(ctx context.Context, student *models.Student) (int64, error) {
	query := `
		INSERT INTO student (full_name, national_id, school_id, grade_id, registered_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (national_id) DO UPDATE
		SET full_name = EXCLUDED.full_name,
		    school_id = EXCLUDED.school_id,
		    grade_id = EXCLUDED.grade_id
		RETURNING id
	`

	var id int64
	err := r.db.QueryRow(ctx, query,
		student.FullName,
		student.NationalID,
		student.SchoolID,
		student.GradeID,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("error upserting student: %w", err)
	}

	return id, nil
}
