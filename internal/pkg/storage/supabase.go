package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/portalescolar/diplomas/internal/pkg/apperrors"
	"github.com/portalescolar/diplomas/internal/pkg/logger"
)

// Supabase publishes documents to a Supabase Storage bucket through the
// Storage v1 REST API. Authentication is a static bearer credential sent on
// every request; the bucket is expected to be public so locators can be
// composed without signing.
type Supabase struct {
	baseURL string // project base URL without trailing slash
	key     string
	bucket  string
	client  *http.Client
}

// SupabaseConfig configures a Supabase publisher.
type SupabaseConfig struct {
	URL        string // e.g. https://xyz.supabase.co
	ServiceKey string
	Bucket     string
	// HTTPClient is optional; a 60s-timeout client is used when nil.
	HTTPClient *http.Client
}

// NewSupabase validates the configuration and returns a Supabase publisher.
func NewSupabase(cfg SupabaseConfig) (*Supabase, error) {
	if cfg.URL == "" || cfg.ServiceKey == "" {
		return nil, fmt.Errorf("supabase storage: url and service key are required")
	}
	bucket := cfg.Bucket
	if bucket == "" {
		bucket = "diplomas"
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}

	return &Supabase{
		baseURL: strings.TrimRight(cfg.URL, "/"),
		key:     cfg.ServiceKey,
		bucket:  bucket,
		client:  client,
	}, nil
}

func (s *Supabase) objectURL(name string) string {
	return fmt.Sprintf("%s/storage/v1/object/%s/%s", s.baseURL, s.bucket, name)
}

func (s *Supabase) setAuthHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+s.key)
	req.Header.Set("apikey", s.key)
}

// Publish uploads data under name with upsert semantics and returns the
// public URL. Any response outside 200/201/204 is a publish failure.
func (s *Supabase) Publish(ctx context.Context, data []byte, name string) (string, Kind, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.objectURL(name), bytes.NewReader(data))
	if err != nil {
		return "", KindRemote, fmt.Errorf("supabase storage: building upload request: %w", err)
	}
	s.setAuthHeaders(req)
	req.Header.Set("Content-Type", "application/pdf")
	req.Header.Set("x-upsert", "true")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", KindRemote, fmt.Errorf("%w: %v", apperrors.ErrPublishFailed, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated, http.StatusNoContent:
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", KindRemote, fmt.Errorf("%w: status %d: %s", apperrors.ErrPublishFailed, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	locator := s.PublicLocator(name)
	logger.Info().Str("name", name).Str("bucket", s.bucket).Str("locator", locator).Msg("Document published to Supabase")
	return locator, KindRemote, nil
}

// Delete removes the named object from the bucket.
func (s *Supabase) Delete(ctx context.Context, name string) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, s.objectURL(name), nil)
	if err != nil {
		return false, fmt.Errorf("supabase storage: building delete request: %w", err)
	}
	s.setAuthHeaders(req)

	resp, err := s.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("supabase storage: delete: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	return resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusNoContent, nil
}

// PublicLocator composes the public URL for name. Publicity is configured at
// bucket level in Supabase, so no request is needed.
func (s *Supabase) PublicLocator(name string) string {
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", s.baseURL, s.bucket, name)
}

// Check reports the effective configuration, for startup diagnostics.
func (s *Supabase) Check() map[string]string {
	return map[string]string{
		"url":         s.baseURL,
		"bucket":      s.bucket,
		"object_url":  s.baseURL + "/storage/v1/object/" + s.bucket,
		"public_base": s.baseURL + "/storage/v1/object/public/" + s.bucket,
	}
}
