package services

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/portalescolar/diplomas/internal/app/models"
	"github.com/portalescolar/diplomas/internal/app/models/dto"
	"github.com/portalescolar/diplomas/internal/app/repositories"
)

// DiplomaFinder is the slice of the diploma repository the public lookups need.
type DiplomaFinder interface {
	GetByFolio(ctx context.Context, folio string) (*repositories.DiplomaDetails, error)
	ListByNationalID(ctx context.Context, nationalID string) ([]repositories.DiplomaDetails, error)
}

// StudentFinder resolves students by their national ID for the portal lookup.
type StudentFinder interface {
	GetByNationalID(ctx context.Context, nationalID string) (*models.Student, error)
}

// VerificationService defines the interface for the public verification lookups
type VerificationService interface {
	// VerifyByFolio returns the verification artifact for one folio. A voided
	// diploma keeps its metadata visible but loses its download link.
	VerifyByFolio(ctx context.Context, folio string) (*dto.VerificationResponse, error)
	// Estado returns the machine-readable status of one folio.
	Estado(ctx context.Context, folio string) (*dto.EstadoResponse, error)
	// ListByNationalID returns all diplomas of a student, most recent first.
	ListByNationalID(ctx context.Context, nationalID string) (*dto.PortalResponse, error)
}

// verificationServiceImpl implements VerificationService
type verificationServiceImpl struct {
	diplomas DiplomaFinder
	students StudentFinder
	logger   zerolog.Logger
}

// NewVerificationService creates a new VerificationService
func NewVerificationService(diplomas DiplomaFinder, students StudentFinder, logger zerolog.Logger) VerificationService {
	return &verificationServiceImpl{
		diplomas: diplomas,
		students: students,
		logger:   logger,
	}
}

func (s *verificationServiceImpl) VerifyByFolio(ctx context.Context, folio string) (*dto.VerificationResponse, error) {
	dd, err := s.diplomas.GetByFolio(ctx, folio)
	if err != nil {
		return nil, err
	}

	resp := toVerificationResponse(dd)
	return &resp, nil
}

func (s *verificationServiceImpl) Estado(ctx context.Context, folio string) (*dto.EstadoResponse, error) {
	dd, err := s.diplomas.GetByFolio(ctx, folio)
	if err != nil {
		return nil, err
	}

	return &dto.EstadoResponse{
		Folio:  dd.Folio,
		Status: string(dd.Status),
		Valid:  dd.Status == models.DiplomaStatusValid,
		Digest: dd.Digest,
	}, nil
}

func (s *verificationServiceImpl) ListByNationalID(ctx context.Context, nationalID string) (*dto.PortalResponse, error) {
	details, err := s.diplomas.ListByNationalID(ctx, nationalID)
	if err != nil {
		return nil, err
	}

	// A student with no diplomas yet is an empty list; an unknown national ID
	// is a lookup error.
	if len(details) == 0 {
		if _, err := s.students.GetByNationalID(ctx, nationalID); err != nil {
			return nil, err
		}
	}

	resp := &dto.PortalResponse{
		NationalID: nationalID,
		Diplomas:   make([]dto.VerificationResponse, 0, len(details)),
	}
	for i := range details {
		resp.Diplomas = append(resp.Diplomas, toVerificationResponse(&details[i]))
	}
	return resp, nil
}

// toVerificationResponse maps a ledger tuple to the public artifact. The
// download link is withheld from voided diplomas.
func toVerificationResponse(dd *repositories.DiplomaDetails) dto.VerificationResponse {
	resp := dto.VerificationResponse{
		Folio:       dd.Folio,
		Status:      string(dd.Status),
		StudentName: dd.StudentName,
		CourseName:  dd.CourseName,
		SchoolName:  dd.SchoolName,
		GradeName:   dd.GradeName,
		Cycle:       dd.Cycle,
		IssuedOn:    dd.IssuedOn.Format("2006-01-02"),
		Digest:      dd.Digest,
		StorageKind: string(dd.Kind),
	}
	if dd.Status == models.DiplomaStatusValid {
		locator := dd.Locator
		resp.DocumentURL = &locator
	}
	return resp
}
