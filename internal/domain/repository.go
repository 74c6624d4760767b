package domain

import (
	"context"
	"errors"
	"io"
)

var (
	ErrNotFound         = errors.New("not found")
	ErrLeadNotFound     = errors.New("lead not found")
	ErrPermissionDenied = errors.New("permission denied")
	ErrInvalidLead      = errors.New("invalid lead")
	ErrUnknownAPIKey    = errors.New("unknown api key")
	ErrUploadTooLarge   = errors.New("upload too large")
)

// KVStore persists opaque payloads under well-known keys.
// The whole lead collection lives under a single key; each profile under its own.
type KVStore interface {
	// Get returns the payload stored under key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Put overwrites the payload stored under key.
	Put(ctx context.Context, key string, payload []byte) error
}

// IdentityResolver maps the caller's API key to the acting username.
type IdentityResolver interface {
	// Resolve returns ErrUnknownAPIKey for keys that are missing, revoked or expired.
	// Implementations should handle caching to reduce database load.
	Resolve(ctx context.Context, key string) (string, error)
}

// BlobStore holds uploaded files and hands back a URL the client can fetch them from.
type BlobStore interface {
	Put(ctx context.Context, key string, r io.Reader, contentType string) (url string, size int64, err error)
}

// LeadEventPublisher receives change notifications for the shared collection.
type LeadEventPublisher interface {
	Publish(event LeadEvent)
}
