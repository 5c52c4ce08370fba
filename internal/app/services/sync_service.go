package services

import (
	"context"
	"fmt"
	"path"

	"github.com/rs/zerolog"

	"github.com/portalescolar/diplomas/internal/app/models"
	"github.com/portalescolar/diplomas/internal/app/models/dto"
	"github.com/portalescolar/diplomas/internal/pkg/apperrors"
	"github.com/portalescolar/diplomas/internal/pkg/storage"
)

// SyncStore is the slice of the diploma repository the sync pass needs.
type SyncStore interface {
	List(ctx context.Context) ([]models.Diploma, error)
	UpdateLocator(ctx context.Context, id int64, locator string, kind storage.Kind) error
}

// SyncService defines the interface for the storage sync pass
type SyncService interface {
	// Run republishes every locally stored document to remote storage and
	// rewrites its locator. Already-remote rows are skipped; failures are per
	// row and do not stop the pass.
	Run(ctx context.Context) (*dto.SyncResultResponse, error)
}

// syncServiceImpl implements SyncService
type syncServiceImpl struct {
	store   SyncStore
	fetcher DocumentFetcher
	remote  storage.Publisher
	logger  zerolog.Logger
}

// NewSyncService creates a new SyncService
func NewSyncService(store SyncStore, fetcher DocumentFetcher, remote storage.Publisher, logger zerolog.Logger) SyncService {
	return &syncServiceImpl{
		store:   store,
		fetcher: fetcher,
		remote:  remote,
		logger:  logger,
	}
}

func (s *syncServiceImpl) Run(ctx context.Context) (*dto.SyncResultResponse, error) {
	if s.remote == nil {
		return nil, fmt.Errorf("%w: remote storage is not configured", apperrors.ErrPublishFailed)
	}

	diplomas, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}

	result := &dto.SyncResultResponse{Total: len(diplomas)}

	for _, d := range diplomas {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		if d.Kind == storage.KindRemote {
			result.Skipped++
			continue
		}

		if err := s.syncOne(ctx, d); err != nil {
			s.logger.Error().Err(err).
				Str("folio", d.Folio).
				Str("locator", d.Locator).
				Msg("Diploma sync failed")
			result.Failed++
			continue
		}
		result.Synced++
	}

	s.logger.Info().
		Int("total", result.Total).
		Int("synced", result.Synced).
		Int("skipped", result.Skipped).
		Int("failed", result.Failed).
		Msg("Storage sync finished")

	return result, nil
}

func (s *syncServiceImpl) syncOne(ctx context.Context, d models.Diploma) error {
	document, err := s.fetcher.Fetch(ctx, d.Locator, d.Kind)
	if err != nil {
		return err
	}

	// Local locators are slash-separated, so the document name is the last
	// path element.
	name := path.Base(d.Locator)
	locator, kind, err := s.remote.Publish(ctx, document, name)
	if err != nil {
		return err
	}

	if err := s.store.UpdateLocator(ctx, d.ID, locator, kind); err != nil {
		return err
	}

	s.logger.Info().
		Str("folio", d.Folio).
		Str("locator", locator).
		Msg("Diploma synced to remote storage")

	return nil
}
