package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/portalescolar/diplomas/internal/pkg/apperrors"
	"github.com/portalescolar/diplomas/internal/pkg/logger"
)

// Local stores documents in a directory on the local filesystem.
type Local struct {
	basePath string // The root directory where documents are written
	baseURL  string // Optional; when set, locators are URLs under this base instead of paths
}

// NewLocal creates a Local publisher rooted at basePath.
// baseURL is optional; if provided, returned locators are full URLs under it
// (this must match how the directory is served, e.g. the /pdfs static route).
func NewLocal(basePath, baseURL string) (*Local, error) {
	if err := os.MkdirAll(basePath, os.ModePerm); err != nil {
		logger.Error().Err(err).Str("path", basePath).Msg("Failed to create storage directory")
		return nil, fmt.Errorf("failed to create storage directory %s: %w", basePath, err)
	}
	logger.Info().Str("path", basePath).Msg("Local storage directory ensured")

	return &Local{
		basePath: basePath,
		baseURL:  baseURL,
	}, nil
}

// Publish writes data to basePath/name, overwriting any existing file.
func (l *Local) Publish(_ context.Context, data []byte, name string) (string, Kind, error) {
	dstPath := filepath.Join(l.basePath, filepath.Base(name))

	if err := os.WriteFile(dstPath, data, 0o644); err != nil {
		logger.Error().Err(err).Str("path", dstPath).Msg("Failed to write document")
		return "", KindLocal, fmt.Errorf("%w: %v", apperrors.ErrPublishFailed, err)
	}

	locator := l.PublicLocator(name)
	logger.Info().Str("name", name).Str("locator", locator).Msg("Document published to local storage")
	return locator, KindLocal, nil
}

// Delete removes the named document. Deleting a missing file reports false
// without an error (idempotent operation).
func (l *Local) Delete(_ context.Context, name string) (bool, error) {
	path := filepath.Join(l.basePath, filepath.Base(name))

	if _, err := os.Stat(path); os.IsNotExist(err) {
		logger.Warn().Str("path", path).Msg("Document to delete does not exist")
		return false, nil
	}

	if err := os.Remove(path); err != nil {
		logger.Error().Err(err).Str("path", path).Msg("Failed to delete document")
		return false, fmt.Errorf("failed to delete document: %w", err)
	}

	return true, nil
}

// PublicLocator composes the locator a published name resolves to: a URL
// when baseURL is configured, otherwise a slash-separated relative path.
func (l *Local) PublicLocator(name string) string {
	name = filepath.Base(name)
	if l.baseURL != "" {
		return strings.TrimRight(l.baseURL, "/") + "/" + name
	}
	return filepath.ToSlash(filepath.Join(l.basePath, name))
}

// Resolve returns the physical path for a locator previously produced by
// this publisher. Used by the audit pass to re-read published bytes.
func (l *Local) Resolve(locator string) string {
	return filepath.Join(l.basePath, filepath.Base(locator))
}
