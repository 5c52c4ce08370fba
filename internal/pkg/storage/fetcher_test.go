package storage

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetcherLocalByPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.pdf")
	require.NoError(t, os.WriteFile(path, []byte("local bytes"), 0o644))

	f := NewFetcher(dir, nil)
	data, err := f.Fetch(context.Background(), path, KindLocal)
	require.NoError(t, err)
	assert.Equal(t, []byte("local bytes"), data)
}

func TestFetcherLocalFallsBackToBaseName(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "doc.pdf"), []byte("moved"), 0o644))

	// Locator points at a URL from a previous deployment; only the base name
	// matches a file in the output directory.
	f := NewFetcher(dir, nil)
	data, err := f.Fetch(context.Background(), "http://old-host/pdfs/doc.pdf", KindLocal)
	require.NoError(t, err)
	assert.Equal(t, []byte("moved"), data)
}

func TestFetcherLocalMissing(t *testing.T) {
	f := NewFetcher(t.TempDir(), nil)
	_, err := f.Fetch(context.Background(), "nowhere.pdf", KindLocal)
	assert.Error(t, err)
}

func TestFetcherRemote(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("remote bytes"))
	}))
	t.Cleanup(srv.Close)

	f := NewFetcher(t.TempDir(), srv.Client())
	data, err := f.Fetch(context.Background(), srv.URL+"/doc.pdf", KindRemote)
	require.NoError(t, err)
	assert.Equal(t, []byte("remote bytes"), data)
}

func TestFetcherDigestLocal(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "doc.pdf"), []byte("abc"), 0o644))

	// Locator from an old deployment; only the base name matches.
	f := NewFetcher(dir, nil)
	digest, err := f.Digest(context.Background(), "http://old-host/pdfs/doc.pdf", KindLocal)
	require.NoError(t, err)
	assert.Equal(t, "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad", digest)
}

func TestFetcherDigestLocalMissing(t *testing.T) {
	f := NewFetcher(t.TempDir(), nil)
	_, err := f.Digest(context.Background(), "nowhere.pdf", KindLocal)
	assert.Error(t, err)
}

func TestFetcherDigestRemote(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("abc"))
	}))
	t.Cleanup(srv.Close)

	f := NewFetcher(t.TempDir(), srv.Client())
	digest, err := f.Digest(context.Background(), srv.URL+"/doc.pdf", KindRemote)
	require.NoError(t, err)
	assert.Equal(t, "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad", digest)
}

func TestFetcherRemoteNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	t.Cleanup(srv.Close)

	f := NewFetcher(t.TempDir(), srv.Client())
	_, err := f.Fetch(context.Background(), srv.URL+"/doc.pdf", KindRemote)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 404")
}
