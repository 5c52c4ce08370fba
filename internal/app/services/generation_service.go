package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/portalescolar/diplomas/internal/app/models"
	"github.com/portalescolar/diplomas/internal/app/repositories"
	"github.com/portalescolar/diplomas/internal/config"
	"github.com/portalescolar/diplomas/internal/pkg/apperrors"
	"github.com/portalescolar/diplomas/internal/pkg/hashutil"
	"github.com/portalescolar/diplomas/internal/pkg/pdf"
	"github.com/portalescolar/diplomas/internal/pkg/storage"
)

// DiplomaStore is the slice of the diploma repository the generation pass needs.
type DiplomaStore interface {
	ListPending(ctx context.Context) ([]repositories.PendingDiploma, error)
	ListPendingForStudent(ctx context.Context, studentID int64) ([]repositories.PendingDiploma, error)
	HasValidDiploma(ctx context.Context, studentID int64, courseID *int64) (bool, error)
	Insert(ctx context.Context, d *models.Diploma) error
}

// StudentDirectory resolves students for targeted generation.
type StudentDirectory interface {
	GetByID(ctx context.Context, id int64) (*models.Student, error)
}

// OverlayRenderer draws the personalization layer for one diploma.
type OverlayRenderer interface {
	Render(spec pdf.OverlaySpec) ([]byte, error)
}

// DocumentMerger stamps an overlay onto the diploma template.
type DocumentMerger interface {
	Merge(templatePath string, overlay []byte) ([]byte, error)
}

// TemplateSource locates the diploma template and reports its page size.
type TemplateSource interface {
	Resolve(path string) (string, error)
	Dims(path string) (float64, float64, error)
}

// BatchResult summarizes one generation pass
type BatchResult struct {
	Pending   int
	Generated int
	Skipped   int
	Failed    int
}

// GenerationService defines the interface for diploma issuance
type GenerationService interface {
	// GenerateBatch issues a diploma for every enrollment that lacks a valid
	// one. Failures are per student and do not stop the batch.
	GenerateBatch(ctx context.Context) (*BatchResult, error)
	// GenerateForStudent issues the missing diplomas of a single student.
	GenerateForStudent(ctx context.Context, studentID int64) (*BatchResult, error)
}

// generationServiceImpl implements GenerationService
type generationServiceImpl struct {
	store     DiplomaStore
	students  StudentDirectory
	templates TemplateSource
	renderer  OverlayRenderer
	merger    DocumentMerger
	publisher storage.Publisher
	cfg       config.DiplomaConfig
	logger    zerolog.Logger
}

// NewGenerationService creates a new GenerationService
func NewGenerationService(
	store DiplomaStore,
	students StudentDirectory,
	templates TemplateSource,
	renderer OverlayRenderer,
	merger DocumentMerger,
	publisher storage.Publisher,
	cfg config.DiplomaConfig,
	logger zerolog.Logger,
) GenerationService {
	return &generationServiceImpl{
		store:     store,
		students:  students,
		templates: templates,
		renderer:  renderer,
		merger:    merger,
		publisher: publisher,
		cfg:       cfg,
		logger:    logger,
	}
}

func (s *generationServiceImpl) GenerateBatch(ctx context.Context) (*BatchResult, error) {
	pending, err := s.store.ListPending(ctx)
	if err != nil {
		return nil, err
	}
	return s.generate(ctx, pending)
}

func (s *generationServiceImpl) GenerateForStudent(ctx context.Context, studentID int64) (*BatchResult, error) {
	if _, err := s.students.GetByID(ctx, studentID); err != nil {
		return nil, err
	}

	pending, err := s.store.ListPendingForStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}
	return s.generate(ctx, pending)
}

// generate works through the pending list sequentially. The template is
// resolved and measured once; each diploma is rendered, merged, hashed,
// published and then recorded as its own commit.
func (s *generationServiceImpl) generate(ctx context.Context, pending []repositories.PendingDiploma) (*BatchResult, error) {
	result := &BatchResult{Pending: len(pending)}
	if len(pending) == 0 {
		return result, nil
	}

	tplPath, err := s.templates.Resolve(s.cfg.TemplatePath)
	if err != nil {
		return nil, err
	}
	width, height, err := s.templates.Dims(tplPath)
	if err != nil {
		return nil, err
	}

	for _, p := range pending {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		issued, err := s.store.HasValidDiploma(ctx, p.StudentID, p.CourseID)
		if err != nil {
			return nil, err
		}
		if issued {
			result.Skipped++
			continue
		}

		if err := s.issueOne(ctx, p, tplPath, width, height); err != nil {
			if errors.Is(err, apperrors.ErrDiplomaAlreadyIssued) {
				result.Skipped++
				continue
			}
			s.logger.Error().Err(err).
				Int64("studentID", p.StudentID).
				Str("student", p.StudentName).
				Str("course", p.CourseName).
				Msg("Diploma generation failed")
			result.Failed++
			continue
		}
		result.Generated++
	}

	s.logger.Info().
		Int("pending", result.Pending).
		Int("generated", result.Generated).
		Int("skipped", result.Skipped).
		Int("failed", result.Failed).
		Msg("Diploma generation batch finished")

	return result, nil
}

func (s *generationServiceImpl) issueOne(ctx context.Context, p repositories.PendingDiploma, tplPath string, width, height float64) error {
	folio := uuid.NewString()
	issuedOn := time.Now()
	verifyURL := fmt.Sprintf("%s/verificar/%s", strings.TrimRight(s.cfg.VerificationBaseURL, "/"), folio)

	overlay, err := s.renderer.Render(pdf.OverlaySpec{
		PageWidth:       width,
		PageHeight:      height,
		StudentName:     p.StudentName,
		Folio:           folio,
		VerificationURL: verifyURL,
		IssuedOn:        issuedOn,
		IssuerName:      s.cfg.IssuerName,
	})
	if err != nil {
		return fmt.Errorf("rendering overlay: %w", err)
	}

	document, err := s.merger.Merge(tplPath, overlay)
	if err != nil {
		return fmt.Errorf("merging document: %w", err)
	}

	digest, err := hashutil.SHA256Hex(bytes.NewReader(document))
	if err != nil {
		return fmt.Errorf("hashing document: %w", err)
	}

	name := fmt.Sprintf("DIPLOMA_%d_%s.pdf", p.StudentID, folio)
	locator, kind, err := s.publisher.Publish(ctx, document, name)
	if err != nil {
		return fmt.Errorf("publishing document: %w", err)
	}

	diploma := &models.Diploma{
		StudentID: p.StudentID,
		CourseID:  p.CourseID,
		Folio:     folio,
		Status:    models.DiplomaStatusValid,
		Cycle:     s.cfg.Cycle,
		IssuedOn:  issuedOn,
		Locator:   locator,
		Kind:      kind,
		Digest:    digest,
	}
	if err := s.store.Insert(ctx, diploma); err != nil {
		// The ledger row is the source of truth; without it the published
		// document is an orphan.
		if _, delErr := s.publisher.Delete(ctx, name); delErr != nil {
			s.logger.Warn().Err(delErr).Str("document", name).Msg("Could not remove orphaned document")
		}
		return err
	}

	s.logger.Info().
		Str("folio", folio).
		Str("student", p.StudentName).
		Str("course", p.CourseName).
		Str("locator", locator).
		Msg("Diploma issued")

	return nil
}
