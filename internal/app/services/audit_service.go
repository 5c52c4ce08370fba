package services

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/portalescolar/diplomas/internal/app/models"
	"github.com/portalescolar/diplomas/internal/app/models/dto"
	"github.com/portalescolar/diplomas/internal/pkg/storage"
)

// Audit finding kinds.
const (
	AuditIssueMissingDocument = "missing_document"
	AuditIssueDigestMismatch  = "digest_mismatch"
)

// LedgerReader is the slice of the diploma repository the audit pass needs.
type LedgerReader interface {
	List(ctx context.Context) ([]models.Diploma, error)
	UpdateDigest(ctx context.Context, id int64, digest string) error
}

// DocumentFetcher retrieves a published document's bytes from wherever its
// locator points.
type DocumentFetcher interface {
	Fetch(ctx context.Context, locator string, kind storage.Kind) ([]byte, error)
}

// DocumentDigester re-hashes a published document in place, without loading
// it into memory.
type DocumentDigester interface {
	Digest(ctx context.Context, locator string, kind storage.Kind) (string, error)
}

// AuditService defines the interface for ledger integrity audits
type AuditService interface {
	// Run re-hashes every published document and compares it against the
	// ledger. With repair enabled, drifted digests are rewritten to match the
	// document; missing documents are reported but never repaired.
	Run(ctx context.Context, repair bool) (*dto.AuditReportResponse, error)
}

// auditServiceImpl implements AuditService
type auditServiceImpl struct {
	ledger   LedgerReader
	digester DocumentDigester
	logger   zerolog.Logger
}

// NewAuditService creates a new AuditService
func NewAuditService(ledger LedgerReader, digester DocumentDigester, logger zerolog.Logger) AuditService {
	return &auditServiceImpl{
		ledger:   ledger,
		digester: digester,
		logger:   logger,
	}
}

func (s *auditServiceImpl) Run(ctx context.Context, repair bool) (*dto.AuditReportResponse, error) {
	diplomas, err := s.ledger.List(ctx)
	if err != nil {
		return nil, err
	}

	report := &dto.AuditReportResponse{
		Findings: make([]dto.AuditFindingResponse, 0),
	}

	for _, d := range diplomas {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		report.Checked++

		actual, err := s.digester.Digest(ctx, d.Locator, d.Kind)
		if err != nil {
			s.logger.Warn().Err(err).
				Str("folio", d.Folio).
				Str("locator", d.Locator).
				Msg("Audit could not read document")
			report.Missing++
			report.Findings = append(report.Findings, dto.AuditFindingResponse{
				DiplomaID:    d.ID,
				Folio:        d.Folio,
				Issue:        AuditIssueMissingDocument,
				StoredDigest: d.Digest,
			})
			continue
		}
		if actual == d.Digest {
			continue
		}

		finding := dto.AuditFindingResponse{
			DiplomaID:    d.ID,
			Folio:        d.Folio,
			Issue:        AuditIssueDigestMismatch,
			StoredDigest: d.Digest,
			ActualDigest: actual,
		}
		report.Drifted++

		if repair {
			if err := s.ledger.UpdateDigest(ctx, d.ID, actual); err != nil {
				s.logger.Error().Err(err).
					Str("folio", d.Folio).
					Msg("Audit could not repair digest")
			} else {
				finding.Repaired = true
				report.Repaired++
			}
		}

		s.logger.Warn().
			Str("folio", d.Folio).
			Str("stored", d.Digest).
			Str("actual", actual).
			Bool("repaired", finding.Repaired).
			Msg("Digest drift detected")

		report.Findings = append(report.Findings, finding)
	}

	s.logger.Info().
		Int("checked", report.Checked).
		Int("missing", report.Missing).
		Int("drifted", report.Drifted).
		Int("repaired", report.Repaired).
		Msg("Ledger audit finished")

	return report, nil
}
