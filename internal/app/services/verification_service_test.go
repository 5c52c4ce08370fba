package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/portalescolar/diplomas/internal/app/models"
	"github.com/portalescolar/diplomas/internal/app/repositories"
	"github.com/portalescolar/diplomas/internal/pkg/apperrors"
	"github.com/portalescolar/diplomas/internal/pkg/storage"
)

func detailsFixture(folio string, status models.DiplomaStatus) *repositories.DiplomaDetails {
	return &repositories.DiplomaDetails{
		DiplomaID:   1,
		Folio:       folio,
		Status:      status,
		StudentName: "Ana Torres Álvarez",
		NationalID:  "TOAA040506MDFLRS08",
		CourseName:  "Computación Básica",
		SchoolName:  "Benito Juárez",
		GradeName:   "Sexto Grado",
		Cycle:       "2024-2025",
		IssuedOn:    time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC),
		Locator:     "http://localhost:8080/pdfs/DIPLOMA_2_" + folio + ".pdf",
		Kind:        storage.KindLocal,
		Digest:      "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad",
	}
}

func TestVerifyByFolio(t *testing.T) {
	ledger := newFakeLedger()
	ledger.details["folio-1"] = detailsFixture("folio-1", models.DiplomaStatusValid)

	svc := NewVerificationService(ledger, &fakeDirectory{}, zerolog.Nop())
	resp, err := svc.VerifyByFolio(context.Background(), "folio-1")
	require.NoError(t, err)

	assert.Equal(t, "folio-1", resp.Folio)
	assert.Equal(t, "VALID", resp.Status)
	assert.Equal(t, "Ana Torres Álvarez", resp.StudentName)
	assert.Equal(t, "Computación Básica", resp.CourseName)
	assert.Equal(t, "2025-06-30", resp.IssuedOn)
	assert.Equal(t, "local", resp.StorageKind)
	require.NotNil(t, resp.DocumentURL)
	assert.Equal(t, ledger.details["folio-1"].Locator, *resp.DocumentURL)
}

func TestVerifyByFolioVoidHidesDocument(t *testing.T) {
	ledger := newFakeLedger()
	ledger.details["folio-1"] = detailsFixture("folio-1", models.DiplomaStatusVoid)

	svc := NewVerificationService(ledger, &fakeDirectory{}, zerolog.Nop())
	resp, err := svc.VerifyByFolio(context.Background(), "folio-1")
	require.NoError(t, err)

	// Metadata stays visible, the download link does not.
	assert.Equal(t, "VOID", resp.Status)
	assert.Equal(t, "Ana Torres Álvarez", resp.StudentName)
	assert.Nil(t, resp.DocumentURL)
}

func TestVerifyByFolioUnknown(t *testing.T) {
	svc := NewVerificationService(newFakeLedger(), &fakeDirectory{}, zerolog.Nop())
	_, err := svc.VerifyByFolio(context.Background(), "nope")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrDiplomaNotFound))
}

func TestEstado(t *testing.T) {
	ledger := newFakeLedger()
	ledger.details["folio-1"] = detailsFixture("folio-1", models.DiplomaStatusValid)
	ledger.details["folio-2"] = detailsFixture("folio-2", models.DiplomaStatusVoid)

	svc := NewVerificationService(ledger, &fakeDirectory{}, zerolog.Nop())

	resp, err := svc.Estado(context.Background(), "folio-1")
	require.NoError(t, err)
	assert.True(t, resp.Valid)
	assert.Equal(t, "VALID", resp.Status)
	assert.NotEmpty(t, resp.Digest)

	resp, err = svc.Estado(context.Background(), "folio-2")
	require.NoError(t, err)
	assert.False(t, resp.Valid)
	assert.Equal(t, "VOID", resp.Status)
}

func TestListByNationalID(t *testing.T) {
	ledger := newFakeLedger()
	ledger.details["folio-1"] = detailsFixture("folio-1", models.DiplomaStatusValid)
	ledger.details["folio-2"] = detailsFixture("folio-2", models.DiplomaStatusVoid)

	svc := NewVerificationService(ledger, &fakeDirectory{}, zerolog.Nop())
	resp, err := svc.ListByNationalID(context.Background(), "TOAA040506MDFLRS08")
	require.NoError(t, err)

	assert.Equal(t, "TOAA040506MDFLRS08", resp.NationalID)
	require.Len(t, resp.Diplomas, 2)
	for _, d := range resp.Diplomas {
		if d.Status == "VOID" {
			assert.Nil(t, d.DocumentURL)
		} else {
			assert.NotNil(t, d.DocumentURL)
		}
	}
}

func TestListByNationalIDNoDiplomasYet(t *testing.T) {
	students := &fakeDirectory{students: map[int64]*models.Student{
		1: {ID: 1, FullName: "Juan Pérez López", NationalID: "PELJ051130HMCRPN01"},
	}}

	svc := NewVerificationService(newFakeLedger(), students, zerolog.Nop())
	resp, err := svc.ListByNationalID(context.Background(), "PELJ051130HMCRPN01")
	require.NoError(t, err)
	assert.Empty(t, resp.Diplomas)
}

func TestListByNationalIDUnknownStudent(t *testing.T) {
	svc := NewVerificationService(newFakeLedger(), &fakeDirectory{}, zerolog.Nop())
	_, err := svc.ListByNationalID(context.Background(), "XXXX000000XXXXXX00")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrStudentNotFound))
}
