// Package objectstore issues signed upload/download URLs for audio and
// generated markdown, and moves bytes in and out of the bucket.
package objectstore

import (
	"context"
	"time"
)

// SignedUpload is a pre-authorized one-time upload target.
type SignedUpload struct {
	URL   string
	Token string
	Path  string
}

// Store is the narrow contract the job pipeline needs from the object
// store.
type Store interface {
	// IssueUploadURL mints a signed PUT URL for the given key.
	IssueUploadURL(ctx context.Context, key string, ttl time.Duration) (*SignedUpload, error)

	// IssueDownloadURL mints a signed GET URL for the given key.
	IssueDownloadURL(ctx context.Context, key string, ttl time.Duration) (string, error)

	// FetchBytes downloads the object at key.
	FetchBytes(ctx context.Context, key string) ([]byte, error)

	// PutBytes uploads data to key with the given content type.
	PutBytes(ctx context.Context, key string, data []byte, contentType string) error

	// Name returns the provider name (e.g. "s3", "supabase").
	Name() string
}
