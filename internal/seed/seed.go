package seed

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	appModels "github.com/portalescolar/diplomas/internal/app/models"
	appRepos "github.com/portalescolar/diplomas/internal/app/repositories"
	"github.com/portalescolar/diplomas/internal/db"
)

// CreateDefaultData loads a small demo roster so a fresh install has
// something to issue diplomas for. Every step is idempotent.
func CreateDefaultData(ctx context.Context, dbPool *pgxpool.Pool, lgr zerolog.Logger) error {
	lgr.Info().Msg("Checking/Creating default data (roster)...")

	// School, grade and instructor first, inside one transaction.
	var schoolID, gradeID, instructorID int64
	database := &db.PostgresDB{Pool: dbPool}
	err := database.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
			INSERT INTO school (name, locality) VALUES ($1, $2)
			ON CONFLICT (name) DO UPDATE SET locality = EXCLUDED.locality
			RETURNING id
		`, "Escuela Primaria Benito Juárez", "Ecatepec de Morelos").Scan(&schoolID)
		if err != nil {
			return err
		}

		err = tx.QueryRow(ctx, `
			INSERT INTO grade (name) VALUES ($1)
			ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
			RETURNING id
		`, "Sexto Grado").Scan(&gradeID)
		if err != nil {
			return err
		}

		return tx.QueryRow(ctx, `
			INSERT INTO instructor (name, email) VALUES ($1, $2)
			ON CONFLICT (email) DO UPDATE SET name = EXCLUDED.name
			RETURNING id
		`, "Mtra. Laura Jiménez", "laura.jimenez@example.edu.mx").Scan(&instructorID)
	})
	if err != nil {
		return err
	}

	courseRepo := appRepos.NewCourseRepository(dbPool)
	studentRepo := appRepos.NewStudentRepository(dbPool)

	courseID, err := courseRepo.GetOrCreateByName(ctx, "Computación Básica", &instructorID)
	if err != nil {
		return err
	}

	students := []struct {
		name string
		curp string
	}{
		{"Kevin Santillán Hernández", "SAHK050102HMCNRV09"},
		{"Ana Torres Álvarez", "TOAA040506MDFLRS08"},
		{"Juan Pérez López", "PELJ051130HMCRPN01"},
	}

	for _, st := range students {
		studentID, err := studentRepo.Upsert(ctx, &appModels.Student{
			FullName:   st.name,
			NationalID: st.curp,
			SchoolID:   &schoolID,
			GradeID:    &gradeID,
		})
		if err != nil {
			return err
		}

		_, err = dbPool.Exec(ctx, `
			INSERT INTO enrollment (student_id, course_id) VALUES ($1, $2)
			ON CONFLICT (student_id, course_id) DO NOTHING
		`, studentID, courseID)
		if err != nil {
			return err
		}
	}

	lgr.Info().Int("students", len(students)).Msg("Default roster ready")
	return nil
}
