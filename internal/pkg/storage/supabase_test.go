package storage

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/portalescolar/diplomas/internal/pkg/apperrors"
)

func newTestSupabase(t *testing.T, handler http.HandlerFunc) (*Supabase, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	s, err := NewSupabase(SupabaseConfig{
		URL:        srv.URL,
		ServiceKey: "service-key",
		Bucket:     "diplomas",
		HTTPClient: srv.Client(),
	})
	require.NoError(t, err)
	return s, srv
}

func TestNewSupabaseRequiresCredentials(t *testing.T) {
	_, err := NewSupabase(SupabaseConfig{URL: "https://xyz.supabase.co"})
	assert.Error(t, err)

	_, err = NewSupabase(SupabaseConfig{ServiceKey: "key"})
	assert.Error(t, err)
}

func TestSupabasePublish(t *testing.T) {
	var gotPath, gotAuth, gotAPIKey, gotUpsert, gotContentType string
	var gotBody []byte

	s, srv := newTestSupabase(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotAPIKey = r.Header.Get("apikey")
		gotUpsert = r.Header.Get("x-upsert")
		gotContentType = r.Header.Get("Content-Type")
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	})

	locator, kind, err := s.Publish(context.Background(), []byte("%PDF-1.4"), "DIPLOMA_1_abc.pdf")
	require.NoError(t, err)

	assert.Equal(t, KindRemote, kind)
	assert.Equal(t, srv.URL+"/storage/v1/object/public/diplomas/DIPLOMA_1_abc.pdf", locator)
	assert.Equal(t, "/storage/v1/object/diplomas/DIPLOMA_1_abc.pdf", gotPath)
	assert.Equal(t, "Bearer service-key", gotAuth)
	assert.Equal(t, "service-key", gotAPIKey)
	assert.Equal(t, "true", gotUpsert)
	assert.Equal(t, "application/pdf", gotContentType)
	assert.Equal(t, []byte("%PDF-1.4"), gotBody)
}

func TestSupabasePublishServerError(t *testing.T) {
	s, _ := newTestSupabase(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bucket quota exceeded", http.StatusInternalServerError)
	})

	_, _, err := s.Publish(context.Background(), []byte("x"), "doc.pdf")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrPublishFailed))
	assert.Contains(t, err.Error(), "bucket quota exceeded")
}

func TestSupabaseDelete(t *testing.T) {
	var gotMethod, gotPath string
	s, _ := newTestSupabase(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusOK)
	})

	removed, err := s.Delete(context.Background(), "doc.pdf")
	require.NoError(t, err)
	assert.True(t, removed)
	assert.Equal(t, http.MethodDelete, gotMethod)
	assert.Equal(t, "/storage/v1/object/diplomas/doc.pdf", gotPath)
}

func TestSupabaseDeleteMissing(t *testing.T) {
	s, _ := newTestSupabase(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	removed, err := s.Delete(context.Background(), "doc.pdf")
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestSupabasePublicLocator(t *testing.T) {
	s, err := NewSupabase(SupabaseConfig{
		URL:        "https://xyz.supabase.co/",
		ServiceKey: "key",
	})
	require.NoError(t, err)

	// Trailing slash in the URL and the default bucket are normalized.
	assert.Equal(t,
		"https://xyz.supabase.co/storage/v1/object/public/diplomas/doc.pdf",
		s.PublicLocator("doc.pdf"))
}
