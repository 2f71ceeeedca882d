// Package store provides the persistence backends for the shared settings
// document: a remote authoritative store with change notifications and a
// client-scoped cache for the personal tier.
package store

import "context"

// Remote is the authoritative document store shared between collaborators.
// Load returns sentinel.ErrNotFound when no document has been written yet.
// Watch delivers the full payload of every change until ctx is canceled.
type Remote interface {
	Load(ctx context.Context) ([]byte, error)
	Write(ctx context.Context, payload []byte) error
	Watch(ctx context.Context) (<-chan []byte, error)
}

// Cache is the synchronous client-local store for the personal tier. It is
// read once at startup and written on every personal-setting change.
type Cache interface {
	Load() ([]byte, error)
	Save(payload []byte) error
}
