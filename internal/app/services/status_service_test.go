package services

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/portalescolar/diplomas/internal/app/models"
	"github.com/portalescolar/diplomas/internal/pkg/apperrors"
)

func TestVoidAndRestore(t *testing.T) {
	ledger := newFakeLedger()
	ledger.diplomas = []models.Diploma{
		{ID: 1, Folio: "folio-1", Status: models.DiplomaStatusValid, Locator: "http://host/pdfs/a.pdf", Digest: "abc"},
	}

	svc := NewStatusService(ledger, zerolog.Nop())

	resp, err := svc.Void(context.Background(), "folio-1")
	require.NoError(t, err)
	assert.True(t, resp.Updated)
	assert.Equal(t, "VOID", resp.Status)
	assert.Equal(t, models.DiplomaStatusVoid, ledger.diplomas[0].Status)

	// Voiding keeps the document and digest untouched.
	assert.Equal(t, "http://host/pdfs/a.pdf", ledger.diplomas[0].Locator)
	assert.Equal(t, "abc", ledger.diplomas[0].Digest)

	resp, err = svc.Restore(context.Background(), "folio-1")
	require.NoError(t, err)
	assert.True(t, resp.Updated)
	assert.Equal(t, models.DiplomaStatusValid, ledger.diplomas[0].Status)
}

func TestVoidIsIdempotent(t *testing.T) {
	ledger := newFakeLedger()
	ledger.diplomas = []models.Diploma{
		{ID: 1, Folio: "folio-1", Status: models.DiplomaStatusVoid},
	}

	svc := NewStatusService(ledger, zerolog.Nop())
	resp, err := svc.Void(context.Background(), "folio-1")
	require.NoError(t, err)
	assert.False(t, resp.Updated)
	assert.Equal(t, "VOID", resp.Status)
}

func TestVoidUnknownFolio(t *testing.T) {
	svc := NewStatusService(newFakeLedger(), zerolog.Nop())
	_, err := svc.Void(context.Background(), "nope")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrDiplomaNotFound))
}
