package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/portalescolar/diplomas/internal/app/models"
	"github.com/portalescolar/diplomas/internal/pkg/apperrors"
	"github.com/portalescolar/diplomas/internal/pkg/dberrors"
	"github.com/portalescolar/diplomas/internal/pkg/storage"
)

// PendingDiploma is one unit of generation work: an enrollment that has no
// valid diploma yet, joined with everything the overlay needs.
type PendingDiploma struct {
	StudentID   int64
	StudentName string
	NationalID  string
	SchoolName  string
	GradeName   string
	CourseID    *int64
	CourseName  string
}

// DiplomaDetails is the verification display tuple: the ledger row joined
// with student, course, school and grade names. Missing optional relations
// are substituted with a placeholder instead of failing the lookup.
type DiplomaDetails struct {
	DiplomaID   int64
	Folio       string
	Status      models.DiplomaStatus
	StudentName string
	NationalID  string
	CourseName  string
	SchoolName  string
	GradeName   string
	Cycle       string
	IssuedOn    time.Time
	Locator     string
	Kind        storage.Kind
	Digest      string
	CreatedAt   time.Time
}

// DiplomaRepository handles database operations for the diploma ledger
type DiplomaRepository struct {
	db *pgxpool.Pool
}

// NewDiplomaRepository creates a new DiplomaRepository
func NewDiplomaRepository(db *pgxpool.Pool) *DiplomaRepository {
	return &DiplomaRepository{db: db}
}

// detailsSelect joins the ledger row with its display relations. COALESCE
// keeps lookups working when a diploma cites no course or the student has no
// school/grade on record.
const detailsSelect = `
	SELECT d.id, d.folio, d.status, d.cycle, d.issued_on, d.locator, d.storage_kind, d.digest, d.created_at,
	       s.full_name, s.national_id,
	       COALESCE(c.name, '-'), COALESCE(sc.name, '-'), COALESCE(g.name, '-')
	FROM diploma d
	JOIN student s ON s.id = d.student_id
	LEFT JOIN course c ON c.id = d.course_id
	LEFT JOIN school sc ON sc.id = s.school_id
	LEFT JOIN grade g ON g.id = s.grade_id
`

func scanDetails(row pgx.Row) (*DiplomaDetails, error) {
	var dd DiplomaDetails
	err := row.Scan(
		&dd.DiplomaID,
		&dd.Folio,
		&dd.Status,
		&dd.Cycle,
		&dd.IssuedOn,
		&dd.Locator,
		&dd.Kind,
		&dd.Digest,
		&dd.CreatedAt,
		&dd.StudentName,
		&dd.NationalID,
		&dd.CourseName,
		&dd.SchoolName,
		&dd.GradeName,
	)
	if err != nil {
		return nil, err
	}
	return &dd, nil
}

// Insert writes one ledger row for a successfully generated diploma and sets
// d.ID. Each insert is its own commit so a later failure in the batch cannot
// roll back earlier successes.
func (r *DiplomaRepository) Insert(ctx context.Context, d *models.Diploma) error {
	query := `
		INSERT INTO diploma (student_id, course_id, folio, status, cycle, issued_on, locator, storage_kind, digest)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at
	`

	err := r.db.QueryRow(ctx, query,
		d.StudentID,
		d.CourseID,
		d.Folio,
		d.Status,
		d.Cycle,
		d.IssuedOn,
		d.Locator,
		d.Kind,
		d.Digest,
	).Scan(&d.ID, &d.CreatedAt)
	if err != nil {
		if dberrors.IsDuplicateConstraintError(err, "diploma_folio_key") {
			return apperrors.NewCustomError(apperrors.ErrFolioAlreadyExists,
				fmt.Sprintf("folio %s already exists", d.Folio))
		}
		if dberrors.IsDuplicateConstraintError(err, "diploma_student_course_valid_key") {
			return apperrors.NewCustomError(apperrors.ErrDiplomaAlreadyIssued,
				"a valid diploma already exists for this student and course").
				WithDetails(map[string]interface{}{"studentId": d.StudentID, "courseId": d.CourseID})
		}
		return fmt.Errorf("error inserting diploma: %w", err)
	}

	return nil
}

// GetByFolio retrieves the verification tuple for a folio
func (r *DiplomaRepository) GetByFolio(ctx context.Context, folio string) (*DiplomaDetails, error) {
	dd, err := scanDetails(r.db.QueryRow(ctx, detailsSelect+` WHERE d.folio = $1`, folio))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrDiplomaNotFound
		}
		return nil, fmt.Errorf("error getting diploma by folio: %w", err)
	}
	return dd, nil
}

// ListByNationalID returns all diplomas of a student, most recent first
func (r *DiplomaRepository) ListByNationalID(ctx context.Context, nationalID string) ([]DiplomaDetails, error) {
	rows, err := r.db.Query(ctx, detailsSelect+` WHERE s.national_id = $1 ORDER BY d.created_at DESC, d.id DESC`, nationalID)
	if err != nil {
		return nil, fmt.Errorf("error listing diplomas by national ID: %w", err)
	}
	defer rows.Close()

	var result []DiplomaDetails
	for rows.Next() {
		dd, err := scanDetails(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning diploma row: %w", err)
		}
		result = append(result, *dd)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating diploma rows: %w", err)
	}
	return result, nil
}

// SetStatus transitions a diploma's status and returns the number of rows
// changed. Setting the status a row already has affects zero rows and is not
// an error; an unknown folio is ErrDiplomaNotFound.
func (r *DiplomaRepository) SetStatus(ctx context.Context, folio string, status models.DiplomaStatus) (int64, error) {
	tag, err := r.db.Exec(ctx,
		`UPDATE diploma SET status = $2 WHERE folio = $1 AND status <> $2`,
		folio, status,
	)
	if err != nil {
		return 0, fmt.Errorf("error updating diploma status: %w", err)
	}

	if tag.RowsAffected() == 0 {
		var exists bool
		if err := r.db.QueryRow(ctx,
			`SELECT EXISTS(SELECT 1 FROM diploma WHERE folio = $1)`, folio,
		).Scan(&exists); err != nil {
			return 0, fmt.Errorf("error checking folio existence: %w", err)
		}
		if !exists {
			return 0, apperrors.ErrDiplomaNotFound
		}
	}

	return tag.RowsAffected(), nil
}

// List returns every ledger row, oldest first. Used by the audit and sync passes.
func (r *DiplomaRepository) List(ctx context.Context) ([]models.Diploma, error) {
	query := `
		SELECT id, student_id, course_id, folio, status, cycle, issued_on, locator, storage_kind, digest, created_at
		FROM diploma
		ORDER BY id
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error listing diplomas: %w", err)
	}
	defer rows.Close()

	var result []models.Diploma
	for rows.Next() {
		var d models.Diploma
		err := rows.Scan(
			&d.ID,
			&d.StudentID,
			&d.CourseID,
			&d.Folio,
			&d.Status,
			&d.Cycle,
			&d.IssuedOn,
			&d.Locator,
			&d.Kind,
			&d.Digest,
			&d.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("error scanning diploma: %w", err)
		}
		result = append(result, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating diplomas: %w", err)
	}
	return result, nil
}

// UpdateLocator rewrites where a diploma's document lives. Used by the sync
// pass after republishing a local document to remote storage.
func (r *DiplomaRepository) UpdateLocator(ctx context.Context, id int64, locator string, kind storage.Kind) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE diploma SET locator = $2, storage_kind = $3 WHERE id = $1`,
		id, locator, kind,
	)
	if err != nil {
		return fmt.Errorf("error updating diploma locator: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrDiplomaNotFound
	}
	return nil
}

// UpdateDigest rewrites the stored integrity digest. Used by the audit pass
// in repair mode.
func (r *DiplomaRepository) UpdateDigest(ctx context.Context, id int64, digest string) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE diploma SET digest = $2 WHERE id = $1`,
		id, digest,
	)
	if err != nil {
		return fmt.Errorf("error updating diploma digest: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrDiplomaNotFound
	}
	return nil
}

// HasValidDiploma reports whether a VALID diploma exists for the
// (student, course) pair. A nil course matches rows citing no course.
func (r *DiplomaRepository) HasValidDiploma(ctx context.Context, studentID int64, courseID *int64) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM diploma
			WHERE student_id = $1
			  AND status = 'VALID'
			  AND (course_id = $2 OR ($2::bigint IS NULL AND course_id IS NULL))
		)
	`

	var exists bool
	if err := r.db.QueryRow(ctx, query, studentID, courseID).Scan(&exists); err != nil {
		return false, fmt.Errorf("error checking existing diploma: %w", err)
	}
	return exists, nil
}

// pendingSelect finds enrollments with no VALID diploma for the same
// (student, course) pair. Voided diplomas do not block regeneration.
const pendingSelect = `
	SELECT s.id, s.full_name, s.national_id,
	       COALESCE(sc.name, '-'), COALESCE(g.name, '-'),
	       e.course_id, c.name
	FROM student s
	JOIN enrollment e ON e.student_id = s.id
	JOIN course c ON c.id = e.course_id
	LEFT JOIN school sc ON sc.id = s.school_id
	LEFT JOIN grade g ON g.id = s.grade_id
	WHERE NOT EXISTS (
		SELECT 1 FROM diploma d
		WHERE d.student_id = s.id
		  AND d.course_id = e.course_id
		  AND d.status = 'VALID'
	)
`

// ListPending returns all generation work, in stable iteration order.
func (r *DiplomaRepository) ListPending(ctx context.Context) ([]PendingDiploma, error) {
	return r.listPending(ctx, pendingSelect+` ORDER BY s.id, e.course_id`)
}

// ListPendingForStudent returns the generation work for one student.
func (r *DiplomaRepository) ListPendingForStudent(ctx context.Context, studentID int64) ([]PendingDiploma, error) {
	return r.listPending(ctx, pendingSelect+` AND s.id = $1 ORDER BY e.course_id`, studentID)
}

func (r *DiplomaRepository) listPending(ctx context.Context, query string, args ...interface{}) ([]PendingDiploma, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing pending diplomas: %w", err)
	}
	defer rows.Close()

	var result []PendingDiploma
	for rows.Next() {
		var p PendingDiploma
		err := rows.Scan(
			&p.StudentID,
			&p.StudentName,
			&p.NationalID,
			&p.SchoolName,
			&p.GradeName,
			&p.CourseID,
			&p.CourseName,
		)
		if err != nil {
			return nil, fmt.Errorf("error scanning pending diploma: %w", err)
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating pending diplomas: %w", err)
	}
	return result, nil
}
