package services

import (
	"bytes"
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/portalescolar/diplomas/internal/app/models"
	"github.com/portalescolar/diplomas/internal/pkg/hashutil"
	"github.com/portalescolar/diplomas/internal/pkg/storage"
)

func mustDigest(t *testing.T, data []byte) string {
	t.Helper()
	digest, err := hashutil.SHA256Hex(bytes.NewReader(data))
	require.NoError(t, err)
	return digest
}

func auditFixture(t *testing.T) (*fakeLedger, *fakeFetcher) {
	t.Helper()

	intact := []byte("intact document")
	tampered := []byte("tampered document")

	ledger := newFakeLedger()
	ledger.diplomas = []models.Diploma{
		{ID: 1, Folio: "folio-ok", Status: models.DiplomaStatusValid, Locator: "loc-ok", Kind: storage.KindLocal, Digest: mustDigest(t, intact)},
		{ID: 2, Folio: "folio-drift", Status: models.DiplomaStatusValid, Locator: "loc-drift", Kind: storage.KindLocal, Digest: mustDigest(t, []byte("original document"))},
		{ID: 3, Folio: "folio-gone", Status: models.DiplomaStatusValid, Locator: "loc-gone", Kind: storage.KindRemote, Digest: mustDigest(t, []byte("deleted document"))},
	}

	fetcher := &fakeFetcher{docs: map[string][]byte{
		"loc-ok":    intact,
		"loc-drift": tampered,
	}}
	return ledger, fetcher
}

func TestAuditRun(t *testing.T) {
	ledger, fetcher := auditFixture(t)
	svc := NewAuditService(ledger, fetcher, zerolog.Nop())

	report, err := svc.Run(context.Background(), false)
	require.NoError(t, err)

	assert.Equal(t, 3, report.Checked)
	assert.Equal(t, 1, report.Missing)
	assert.Equal(t, 1, report.Drifted)
	assert.Equal(t, 0, report.Repaired)
	require.Len(t, report.Findings, 2)

	byFolio := map[string]string{}
	for _, f := range report.Findings {
		byFolio[f.Folio] = f.Issue
		assert.False(t, f.Repaired)
	}
	assert.Equal(t, AuditIssueMissingDocument, byFolio["folio-gone"])
	assert.Equal(t, AuditIssueDigestMismatch, byFolio["folio-drift"])

	// Without repair the ledger is untouched.
	assert.Equal(t, mustDigest(t, []byte("original document")), ledger.diplomas[1].Digest)
}

func TestAuditRunRepair(t *testing.T) {
	ledger, fetcher := auditFixture(t)
	svc := NewAuditService(ledger, fetcher, zerolog.Nop())

	report, err := svc.Run(context.Background(), true)
	require.NoError(t, err)

	assert.Equal(t, 1, report.Drifted)
	assert.Equal(t, 1, report.Repaired)

	// Drifted digest rewritten to match the document on disk.
	assert.Equal(t, mustDigest(t, []byte("tampered document")), ledger.diplomas[1].Digest)

	// Missing documents are reported, never repaired.
	assert.Equal(t, 1, report.Missing)
	for _, f := range report.Findings {
		if f.Issue == AuditIssueMissingDocument {
			assert.False(t, f.Repaired)
		}
	}
}

func TestAuditRunCleanLedger(t *testing.T) {
	intact := []byte("doc")
	ledger := newFakeLedger()
	ledger.diplomas = []models.Diploma{
		{ID: 1, Folio: "folio-1", Locator: "loc", Kind: storage.KindLocal, Digest: mustDigest(t, intact)},
	}
	fetcher := &fakeFetcher{docs: map[string][]byte{"loc": intact}}

	report, err := NewAuditService(ledger, fetcher, zerolog.Nop()).Run(context.Background(), true)
	require.NoError(t, err)

	assert.Equal(t, 1, report.Checked)
	assert.Empty(t, report.Findings)
}
