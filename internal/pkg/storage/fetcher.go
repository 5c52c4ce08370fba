package storage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/portalescolar/diplomas/internal/pkg/hashutil"
)

// Fetcher resolves a ledger locator back to its document, for the audit and
// sync passes. Local locators are read from disk; remote locators are fetched
// over HTTPS.
type Fetcher struct {
	local  *Local
	client *http.Client
}

// NewFetcher creates a Fetcher. basePath is the local output directory;
// client is optional.
func NewFetcher(basePath string, client *http.Client) *Fetcher {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &Fetcher{local: &Local{basePath: basePath}, client: client}
}

// Fetch returns the bytes behind locator. For local locators the stored path
// is tried first, then the output directory is probed by base name — old
// ledger rows may carry paths from a different deployment layout.
func (f *Fetcher) Fetch(ctx context.Context, locator string, kind Kind) ([]byte, error) {
	switch kind {
	case KindRemote:
		resp, err := f.get(ctx, locator)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()
		return io.ReadAll(resp.Body)
	default:
		data, err := os.ReadFile(f.localPath(locator))
		if err != nil {
			return nil, fmt.Errorf("error reading local document %s: %w", locator, err)
		}
		return data, nil
	}
}

// Digest re-hashes the document behind locator without holding it in memory:
// local documents are streamed from disk, remote ones while the response body
// is read.
func (f *Fetcher) Digest(ctx context.Context, locator string, kind Kind) (string, error) {
	switch kind {
	case KindRemote:
		resp, err := f.get(ctx, locator)
		if err != nil {
			return "", err
		}
		defer resp.Body.Close()
		return hashutil.SHA256Hex(resp.Body)
	default:
		return hashutil.SHA256HexFile(f.localPath(locator))
	}
}

// localPath maps a local locator to the path to read. The stored path wins
// when it still exists; otherwise the output directory is probed by base name.
func (f *Fetcher) localPath(locator string) string {
	if _, err := os.Stat(locator); err == nil {
		return locator
	}
	return f.local.Resolve(locator)
}

func (f *Fetcher) get(ctx context.Context, locator string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, locator, nil)
	if err != nil {
		return nil, fmt.Errorf("error building fetch request: %w", err)
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error fetching remote document: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("error fetching remote document %s: status %d", locator, resp.StatusCode)
	}
	return resp, nil
}
