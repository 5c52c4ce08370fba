// Package storage persists rendered diploma documents and resolves them back
// for audit. Two backends exist: the local filesystem and Supabase Storage
// over its v1 REST API. Both publish with upsert-by-name semantics, so
// regeneration and sync flows can republish under the same destination name.
package storage

import "context"

// Kind tells how a ledger locator should be resolved. It is persisted next
// to the locator so callers never have to sniff URL prefixes.
type Kind string

const (
	KindLocal  Kind = "local"  // locator is a filesystem path relative to the output dir
	KindRemote Kind = "remote" // locator is a public HTTPS URL
)

// Publisher persists document bytes under a destination name and returns a
// stable retrieval locator. Publishing an existing name overwrites it
// (last write wins, no locking).
type Publisher interface {
	// Publish stores data under name and returns the retrieval locator.
	Publish(ctx context.Context, data []byte, name string) (string, Kind, error)
	// Delete removes the named object. Returns false when nothing was deleted.
	Delete(ctx context.Context, name string) (bool, error)
	// PublicLocator returns the locator name would have after a publish,
	// without performing any I/O.
	PublicLocator(name string) string
}
