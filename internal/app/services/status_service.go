package services

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/portalescolar/diplomas/internal/app/models"
	"github.com/portalescolar/diplomas/internal/app/models/dto"
)

// StatusStore is the slice of the diploma repository the status transitions need.
type StatusStore interface {
	SetStatus(ctx context.Context, folio string, status models.DiplomaStatus) (int64, error)
}

// StatusService defines the interface for administrative status transitions
type StatusService interface {
	// Void marks a diploma invalid. Voiding keeps the document and its digest
	// so the transition can be reversed.
	Void(ctx context.Context, folio string) (*dto.StatusChangeResponse, error)
	// Restore returns a voided diploma to valid.
	Restore(ctx context.Context, folio string) (*dto.StatusChangeResponse, error)
}

// statusServiceImpl implements StatusService
type statusServiceImpl struct {
	store  StatusStore
	logger zerolog.Logger
}

// NewStatusService creates a new StatusService
func NewStatusService(store StatusStore, logger zerolog.Logger) StatusService {
	return &statusServiceImpl{store: store, logger: logger}
}

func (s *statusServiceImpl) Void(ctx context.Context, folio string) (*dto.StatusChangeResponse, error) {
	return s.transition(ctx, folio, models.DiplomaStatusVoid)
}

func (s *statusServiceImpl) Restore(ctx context.Context, folio string) (*dto.StatusChangeResponse, error) {
	return s.transition(ctx, folio, models.DiplomaStatusValid)
}

// transition is idempotent: repeating a transition reports Updated=false
// instead of failing.
func (s *statusServiceImpl) transition(ctx context.Context, folio string, status models.DiplomaStatus) (*dto.StatusChangeResponse, error) {
	affected, err := s.store.SetStatus(ctx, folio, status)
	if err != nil {
		return nil, err
	}

	if affected > 0 {
		s.logger.Info().
			Str("folio", folio).
			Str("status", string(status)).
			Msg("Diploma status changed")
	}

	return &dto.StatusChangeResponse{
		Folio:   folio,
		Status:  string(status),
		Updated: affected > 0,
	}, nil
}
